package model

import (
	"time"

	"gorm.io/gorm"
)

// 用户角色 / 状态常量
const (
	DefaultRole = 0 // 普通用户
	AdminRole   = 1 // 管理员

	StatusNormal = 0
)

// User 用户模型
// account 与 planet_code 建唯一索引，由数据库兜底注册并发时的重复写入。
type User struct {
	ID         int64          `gorm:"primarykey" json:"id"`
	Account    string         `gorm:"uniqueIndex;not null;size:64" json:"account"`
	Password   string         `gorm:"not null;size:128" json:"-"` // 摘要，永不明文
	Nickname   string         `gorm:"size:100" json:"nickname"`
	AvatarURL  string         `gorm:"size:255" json:"avatarUrl"`
	Gender     int8           `json:"gender"`
	Phone      string         `gorm:"size:32" json:"phone"`
	Email      string         `gorm:"size:128" json:"email"`
	Status     int            `gorm:"default:0" json:"status"`
	Role       int            `gorm:"default:0" json:"role"`
	PlanetCode string         `gorm:"uniqueIndex;not null;size:5" json:"planetCode"`
	CreatedAt  time.Time      `json:"createTime"`
	UpdatedAt  time.Time      `json:"updateTime"`
	DeletedAt  gorm.DeletedAt `gorm:"index" json:"-"`
}

// SafeUser 脱敏后的用户视图，只在登录/查询时返回，从不落库。
// 字段为白名单拷贝，结构上不存在密码字段。
type SafeUser struct {
	ID         int64     `json:"id"`
	Nickname   string    `json:"nickname"`
	Account    string    `json:"account"`
	AvatarURL  string    `json:"avatarUrl"`
	Gender     int8      `json:"gender"`
	Phone      string    `json:"phone"`
	Email      string    `json:"email"`
	Status     int       `json:"status"`
	Role       int       `json:"role"`
	PlanetCode string    `json:"planetCode"`
	CreateTime time.Time `json:"createTime"`
}

// IsAdmin 判断是否管理员
func (u *SafeUser) IsAdmin() bool {
	return u.Role == AdminRole
}
