package middleware

import (
	"usercenter/api/v1/response"
	"usercenter/internal/auth"
	"usercenter/internal/bizerr"
	"usercenter/model"

	"github.com/gin-gonic/gin"
)

// 写入 gin 上下文的键
const (
	CtxSession   = "session"
	CtxLoginUser = "loginUser"
)

// SessionFromRequest 尝试从 Cookie 解出会话句柄，令牌缺失或非法时返回 false。
func SessionFromRequest(c *gin.Context, sessions *auth.SessionManager) (*auth.Session, bool) {
	token, err := c.Cookie(auth.SessionCookie)
	if err != nil || token == "" {
		return nil, false
	}
	sessionID, err := auth.ParseSessionToken(token)
	if err != nil {
		return nil, false
	}
	return sessions.Session(sessionID), true
}

// AuthMiddleware 要求请求携带有效会话且已登录，否则返回 40100。
func AuthMiddleware(sessions *auth.SessionManager) gin.HandlerFunc {
	return func(c *gin.Context) {
		sess, ok := SessionFromRequest(c, sessions)
		if !ok {
			abortNotLogin(c)
			return
		}

		// 会话里必须有登录态
		var state model.SafeUser
		found, err := sess.Get(auth.UserLoginState, &state)
		if err != nil || !found {
			abortNotLogin(c)
			return
		}

		c.Set(CtxSession, sess)
		c.Set(CtxLoginUser, &state)
		c.Next()
	}
}

func abortNotLogin(c *gin.Context) {
	response.Fail(c, bizerr.NotLogin())
	c.Abort()
}
