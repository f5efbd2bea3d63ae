package auth

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/google/uuid"
)

var ctx = context.Background()

// UserLoginState 会话里存放当前登录用户的固定属性名
const UserLoginState = "userLoginState"

// SessionManager 基于 Redis 管理会话属性包，每个会话一个 hash。
type SessionManager struct {
	rdb *redis.Client
	ttl time.Duration
}

func NewSessionManager(rdb *redis.Client, ttl time.Duration) *SessionManager {
	return &SessionManager{rdb: rdb, ttl: ttl}
}

// NewSession 分配一个新会话 ID
func (m *SessionManager) NewSession() *Session {
	return &Session{id: uuid.NewString(), m: m}
}

// Session 按 ID 取会话句柄，不校验是否存在（属性读取时自然返回 absent）。
func (m *SessionManager) Session(id string) *Session {
	return &Session{id: id, m: m}
}

// Session 是单个客户端会话的键值属性包。
type Session struct {
	id string
	m  *SessionManager
}

func (s *Session) ID() string {
	return s.id
}

func (s *Session) key() string {
	return fmt.Sprintf("uc:session:%s", s.id)
}

// Set 写入一个会话属性（JSON 序列化），并续期整个会话。
func (s *Session) Set(name string, value any) error {
	data, err := json.Marshal(value)
	if err != nil {
		return err
	}
	if err := s.m.rdb.HSet(ctx, s.key(), name, data).Err(); err != nil {
		return err
	}
	return s.m.rdb.Expire(ctx, s.key(), s.m.ttl).Err()
}

// Get 读取会话属性，第二个返回值表示属性是否存在。
func (s *Session) Get(name string, dest any) (bool, error) {
	data, err := s.m.rdb.HGet(ctx, s.key(), name).Bytes()
	if err == redis.Nil {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, json.Unmarshal(data, dest)
}

// Remove 删除会话属性，属性不存在时同样视为成功。
func (s *Session) Remove(name string) error {
	return s.m.rdb.HDel(ctx, s.key(), name).Err()
}
