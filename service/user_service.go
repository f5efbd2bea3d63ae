package service

import (
	"errors"
	"log"
	"strings"
	"unicode/utf8"

	"usercenter/internal/auth"
	"usercenter/internal/bizerr"
	"usercenter/internal/validator"
	"usercenter/model"
	"usercenter/utils"

	"github.com/go-sql-driver/mysql"
	"gorm.io/gorm"
)

// UserStore 是用户表的持久化边界，dao.UserDAO 为其 MySQL 实现。
type UserStore interface {
	CreateUser(user *model.User) error
	CountByAccount(account string) (int64, error)
	CountByPlanetCode(code string) (int64, error)
	FindByAccountPassword(account, digest string) (*model.User, error)
	GetByID(id int64) (*model.User, error)
	SearchByNickname(nickname string) ([]model.User, error)
	DeleteByID(id int64) error
}

// SessionStore 是单个客户端会话的属性包，auth.Session 为其 Redis 实现。
type SessionStore interface {
	Set(name string, value any) error
	Get(name string, dest any) (bool, error)
	Remove(name string) error
}

// UserService bundles the store, session manager and password salt.
type UserService struct {
	store   UserStore
	Session *auth.SessionManager
	salt    string
}

// NewUserService 创建一个新的 UserService 实例
func NewUserService(store UserStore, sessions *auth.SessionManager, salt string) *UserService {
	return &UserService{store: store, Session: sessions, salt: salt}
}

// validateRegister 注册参数校验，按序短路，首个不通过的规则决定错误。
// 不做任何 trim / 大小写归一化；长度一律按字符数算，多字节字符只计一位。
func validateRegister(account, password, checkPassword, planetCode string) *bizerr.Error {
	if isAnyBlank(account, password, checkPassword, planetCode) {
		return bizerr.Params("参数为空")
	}
	if utf8.RuneCountInString(account) < 4 {
		return bizerr.Params("用户账号过短")
	}
	if utf8.RuneCountInString(password) < 8 || password != checkPassword {
		return bizerr.Params("用户密码过短或两次密码不一致")
	}
	if utf8.RuneCountInString(planetCode) > 5 {
		return bizerr.Params("星球编号过长")
	}
	if !validator.IsValidAccount(account) {
		return bizerr.Params("账号不能包含特殊字符")
	}
	return nil
}

// validateLogin 登录参数校验，规则为注册校验的子集。
func validateLogin(account, password string) *bizerr.Error {
	if isAnyBlank(account, password) {
		return bizerr.Params("参数为空")
	}
	if utf8.RuneCountInString(account) < 4 {
		return bizerr.Params("用户账号过短")
	}
	if utf8.RuneCountInString(password) < 8 {
		return bizerr.Params("用户密码过短")
	}
	if !validator.IsValidAccount(account) {
		return bizerr.Params("账号不能包含特殊字符")
	}
	return nil
}

// Register 注册新用户，成功返回分配的用户 id。
// 账号 / 星球编号查重是两次独立点查，并发注册的竞态由数据库唯一索引兜底。
func (s *UserService) Register(account, password, checkPassword, planetCode string) (int64, error) {
	if err := validateRegister(account, password, checkPassword, planetCode); err != nil {
		return 0, err
	}

	count, err := s.store.CountByAccount(account)
	if err != nil {
		return 0, bizerr.System("查询用户失败")
	}
	if count > 0 {
		return 0, bizerr.Params("账号重复")
	}

	count, err = s.store.CountByPlanetCode(planetCode)
	if err != nil {
		return 0, bizerr.System("查询用户失败")
	}
	if count > 0 {
		return 0, bizerr.Params("编号重复")
	}

	user := &model.User{
		Account:    account,
		Password:   utils.EncryptPassword(s.salt, password),
		PlanetCode: planetCode,
	}
	if err := s.store.CreateUser(user); err != nil {
		if isDuplicateKey(err) {
			// 查重与插入之间被并发注册抢先，唯一索引兜住
			return 0, bizerr.Params("账号或编号重复")
		}
		return 0, bizerr.System("保存用户失败，请重试")
	}
	return user.ID, nil
}

// Login 校验凭证，脱敏后写入会话并返回 SafeUser。
// 账号不存在与密码错误刻意返回同一个错误，避免账号枚举。
func (s *UserService) Login(account, password string, sess SessionStore) (*model.SafeUser, error) {
	if err := validateLogin(account, password); err != nil {
		return nil, err
	}

	digest := utils.EncryptPassword(s.salt, password)
	user, err := s.store.FindByAccountPassword(account, digest)
	if err != nil {
		return nil, bizerr.System("查询用户失败")
	}
	if user == nil {
		log.Println("user login failed, account cannot match password")
		return nil, bizerr.Params("用户名或密码错误")
	}

	safeUser, err := s.GetSafetyUser(user)
	if err != nil {
		return nil, err
	}
	if err := sess.Set(auth.UserLoginState, safeUser); err != nil {
		return nil, bizerr.System("记录登录态失败")
	}
	return safeUser, nil
}

// Logout 清除会话中的登录态。幂等：没有登录态同样返回成功。
func (s *UserService) Logout(sess SessionStore) int {
	_ = sess.Remove(auth.UserLoginState)
	return 1
}

// CurrentUser 从会话读出登录态，再按 id 回查一次保证资料是新的。
func (s *UserService) CurrentUser(sess SessionStore) (*model.SafeUser, error) {
	var state model.SafeUser
	found, err := sess.Get(auth.UserLoginState, &state)
	if err != nil {
		return nil, bizerr.System("读取登录态失败")
	}
	if !found {
		return nil, bizerr.NotLogin()
	}
	user, err := s.store.GetByID(state.ID)
	if err != nil {
		return nil, bizerr.System("查询用户失败")
	}
	if user == nil {
		return nil, bizerr.NotLogin()
	}
	return s.GetSafetyUser(user)
}

// SearchUsers 按昵称模糊查询用户，仅管理员可用，结果全部脱敏。
func (s *UserService) SearchUsers(nickname string, sess SessionStore) ([]model.SafeUser, error) {
	if !s.isAdmin(sess) {
		return nil, bizerr.NoAuth()
	}
	users, err := s.store.SearchByNickname(nickname)
	if err != nil {
		return nil, bizerr.System("查询用户失败")
	}
	safeUsers := make([]model.SafeUser, 0, len(users))
	for i := range users {
		safeUser, err := s.GetSafetyUser(&users[i])
		if err != nil {
			return nil, err
		}
		safeUsers = append(safeUsers, *safeUser)
	}
	return safeUsers, nil
}

// RemoveUser 软删除用户，仅管理员可用。
func (s *UserService) RemoveUser(id int64, sess SessionStore) (bool, error) {
	if !s.isAdmin(sess) {
		return false, bizerr.NoAuth()
	}
	if id <= 0 {
		return false, bizerr.Params("用户 id 非法")
	}
	if err := s.store.DeleteByID(id); err != nil {
		return false, bizerr.System("删除用户失败")
	}
	return true, nil
}

// GetSafetyUser 用户脱敏：白名单拷贝，绝不带出密码摘要。
func (s *UserService) GetSafetyUser(user *model.User) (*model.SafeUser, error) {
	if user == nil {
		return nil, bizerr.Params("参数为空")
	}
	return &model.SafeUser{
		ID:         user.ID,
		Nickname:   user.Nickname,
		Account:    user.Account,
		AvatarURL:  user.AvatarURL,
		Gender:     user.Gender,
		Phone:      user.Phone,
		Email:      user.Email,
		Status:     user.Status,
		Role:       user.Role,
		PlanetCode: user.PlanetCode,
		CreateTime: user.CreatedAt,
	}, nil
}

func (s *UserService) isAdmin(sess SessionStore) bool {
	var state model.SafeUser
	found, err := sess.Get(auth.UserLoginState, &state)
	if err != nil || !found {
		return false
	}
	return state.IsAdmin()
}

// isAnyBlank 任一字符串为空白（空串或纯空白字符）即为 true
func isAnyBlank(values ...string) bool {
	for _, v := range values {
		if strings.TrimSpace(v) == "" {
			return true
		}
	}
	return false
}

// isDuplicateKey 识别唯一索引冲突（gorm 通用错误或 MySQL 1062）
func isDuplicateKey(err error) bool {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	var mysqlErr *mysql.MySQLError
	return errors.As(err, &mysqlErr) && mysqlErr.Number == 1062
}
