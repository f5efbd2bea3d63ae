package dao

import (
	"errors"

	"usercenter/model"

	"gorm.io/gorm"
)

type UserDAO struct {
	db *gorm.DB
}

// NewUserDAO 创建一个新的 UserDAO 实例
func NewUserDAO(db *gorm.DB) *UserDAO {
	return &UserDAO{db: db}
}

// CreateUser 创建新用户
func (dao *UserDAO) CreateUser(user *model.User) error {
	return dao.db.Create(user).Error
}

// CountByAccount 统计指定账号的用户数，用于注册查重
func (dao *UserDAO) CountByAccount(account string) (int64, error) {
	var count int64
	err := dao.db.Model(&model.User{}).Where("account = ?", account).Count(&count).Error
	return count, err
}

// CountByPlanetCode 统计指定星球编号的用户数
func (dao *UserDAO) CountByPlanetCode(code string) (int64, error) {
	var count int64
	err := dao.db.Model(&model.User{}).Where("planet_code = ?", code).Count(&count).Error
	return count, err
}

// FindByAccountPassword 按 (账号, 摘要) 等值匹配查用户，查不到返回 (nil, nil)。
func (dao *UserDAO) FindByAccountPassword(account, digest string) (*model.User, error) {
	var user model.User
	err := dao.db.Where("account = ? AND password = ?", account, digest).First(&user).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &user, nil
}

// GetByID 按主键查用户，查不到返回 (nil, nil)。
func (dao *UserDAO) GetByID(id int64) (*model.User, error) {
	var user model.User
	err := dao.db.First(&user, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &user, nil
}

// SearchByNickname 按昵称模糊查询，昵称为空时返回全部
func (dao *UserDAO) SearchByNickname(nickname string) ([]model.User, error) {
	var users []model.User
	tx := dao.db
	if nickname != "" {
		tx = tx.Where("nickname LIKE ?", "%"+nickname+"%")
	}
	if err := tx.Find(&users).Error; err != nil {
		return nil, err
	}
	return users, nil
}

// DeleteByID 软删除用户（gorm DeletedAt）
func (dao *UserDAO) DeleteByID(id int64) error {
	return dao.db.Delete(&model.User{}, id).Error
}
