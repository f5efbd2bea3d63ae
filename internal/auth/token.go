package auth

import (
	"errors"
	"time"

	"usercenter/config"

	"github.com/golang-jwt/jwt/v5"
)

// SessionCookie 会话令牌所在的 Cookie 名
const SessionCookie = "uc_session"

// SessionClaims 会话令牌负载：只携带会话 ID，用户数据留在 Redis。
// 嵌入 RegisteredClaims 统一管理过期与签发时间。
type SessionClaims struct {
	SessionID string `json:"session_id"`
	jwt.RegisteredClaims
}

// SignSessionToken 把会话 ID 签成 HS256 令牌，随 Cookie 下发给客户端。
func SignSessionToken(sessionID string) (string, error) {
	now := time.Now()
	claims := SessionClaims{
		SessionID: sessionID,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(now.Add(time.Duration(config.GlobalConfig.Auth.SessionExpire) * time.Second)),
			IssuedAt:  jwt.NewNumericDate(now),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(config.GlobalConfig.Auth.Secret))
}

// ParseSessionToken 校验签名与过期时间，返回其中的会话 ID。
func ParseSessionToken(tokenStr string) (string, error) {
	token, err := jwt.ParseWithClaims(tokenStr, &SessionClaims{}, func(token *jwt.Token) (interface{}, error) {
		return []byte(config.GlobalConfig.Auth.Secret), nil
	})
	if err != nil {
		return "", err
	}
	if claims, ok := token.Claims.(*SessionClaims); ok && token.Valid {
		return claims.SessionID, nil
	}
	return "", errors.New("invalid token")
}
