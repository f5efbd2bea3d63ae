package service

import (
	"encoding/json"
	"errors"
	"strings"
	"testing"

	"usercenter/internal/auth"
	"usercenter/internal/bizerr"
	"usercenter/model"

	"github.com/go-sql-driver/mysql"
	"github.com/stretchr/testify/require"
)

const testSalt = "Dysaniaer"

// fakeStore 内存版 UserStore，行为对齐 dao.UserDAO（查不到返回 nil,nil）。
type fakeStore struct {
	users     []*model.User
	nextID    int64
	createErr error
}

func newFakeStore() *fakeStore {
	return &fakeStore{nextID: 1}
}

func (f *fakeStore) CreateUser(user *model.User) error {
	if f.createErr != nil {
		return f.createErr
	}
	user.ID = f.nextID
	f.nextID++
	clone := *user
	f.users = append(f.users, &clone)
	return nil
}

func (f *fakeStore) CountByAccount(account string) (int64, error) {
	var n int64
	for _, u := range f.users {
		if u.Account == account {
			n++
		}
	}
	return n, nil
}

func (f *fakeStore) CountByPlanetCode(code string) (int64, error) {
	var n int64
	for _, u := range f.users {
		if u.PlanetCode == code {
			n++
		}
	}
	return n, nil
}

func (f *fakeStore) FindByAccountPassword(account, digest string) (*model.User, error) {
	for _, u := range f.users {
		if u.Account == account && u.Password == digest {
			clone := *u
			return &clone, nil
		}
	}
	return nil, nil
}

func (f *fakeStore) GetByID(id int64) (*model.User, error) {
	for _, u := range f.users {
		if u.ID == id {
			clone := *u
			return &clone, nil
		}
	}
	return nil, nil
}

func (f *fakeStore) SearchByNickname(nickname string) ([]model.User, error) {
	var out []model.User
	for _, u := range f.users {
		if nickname == "" || strings.Contains(u.Nickname, nickname) {
			out = append(out, *u)
		}
	}
	return out, nil
}

func (f *fakeStore) DeleteByID(id int64) error {
	for i, u := range f.users {
		if u.ID == id {
			f.users = append(f.users[:i], f.users[i+1:]...)
			return nil
		}
	}
	return nil
}

// fakeSession 内存版会话属性包，JSON 序列化行为与 Redis 实现一致。
type fakeSession struct {
	attrs map[string]json.RawMessage
}

func newFakeSession() *fakeSession {
	return &fakeSession{attrs: map[string]json.RawMessage{}}
}

func (f *fakeSession) Set(name string, value any) error {
	data, err := json.Marshal(value)
	if err != nil {
		return err
	}
	f.attrs[name] = data
	return nil
}

func (f *fakeSession) Get(name string, dest any) (bool, error) {
	data, ok := f.attrs[name]
	if !ok {
		return false, nil
	}
	return true, json.Unmarshal(data, dest)
}

func (f *fakeSession) Remove(name string) error {
	delete(f.attrs, name)
	return nil
}

func newTestService(store UserStore) *UserService {
	return NewUserService(store, nil, testSalt)
}

func requireBizCode(t *testing.T, err error, code int) *bizerr.Error {
	t.Helper()
	var be *bizerr.Error
	require.ErrorAs(t, err, &be)
	require.Equal(t, code, be.Code)
	return be
}

func TestRegisterValidation(t *testing.T) {
	cases := []struct {
		name                                         string
		account, password, checkPassword, planetCode string
		description                                  string
	}{
		{"blank account", "", "password1", "password1", "12345", "参数为空"},
		{"blank password", "validUser", "", "", "12345", "参数为空"},
		{"blank planet code", "validUser", "password1", "password1", "", "参数为空"},
		{"whitespace account", "   ", "password1", "password1", "12345", "参数为空"},
		{"short account", "abc", "password1", "password1", "12345", "用户账号过短"},
		// 多字节账号 3 个字符 7 字节：按字符数算仍过短
		{"multibyte short account", "用户1", "password1", "password1", "12345", "用户账号过短"},
		{"short password", "validUser", "pass1", "pass1", "12345", "用户密码过短或两次密码不一致"},
		// 多字节密码 3 个字符 9 字节：按字符数算仍过短
		{"multibyte short password", "validUser", "密碼密", "密碼密", "12345", "用户密码过短或两次密码不一致"},
		{"password mismatch", "validUser", "password1", "password2", "12345", "用户密码过短或两次密码不一致"},
		{"planet code too long", "validUser", "password1", "password1", "123456", "星球编号过长"},
		// 多字节编号 6 个字符：超长
		{"multibyte planet code too long", "validUser", "password1", "password1", "一二三四五六", "星球编号过长"},
		{"account with space", "ab cd", "password1", "password1", "12345", "账号不能包含特殊字符"},
		{"account with symbol", "user!", "password1", "password1", "12345", "账号不能包含特殊字符"},
		{"account non-ascii", "用户1111", "password1", "password1", "12345", "账号不能包含特殊字符"},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			svc := newTestService(newFakeStore())
			_, err := svc.Register(c.account, c.password, c.checkPassword, c.planetCode)
			be := requireBizCode(t, err, bizerr.CodeParamsError)
			require.Equal(t, c.description, be.Description)
		})
	}
}

func TestLoginValidation(t *testing.T) {
	cases := []struct {
		name              string
		account, password string
		description       string
	}{
		{"blank account", "", "password1", "参数为空"},
		{"blank password", "validUser", "", "参数为空"},
		{"short account", "abc", "password1", "用户账号过短"},
		{"multibyte short account", "用户1", "password1", "用户账号过短"},
		{"short password", "validUser", "pass1", "用户密码过短"},
		{"multibyte short password", "validUser", "密碼密", "用户密码过短"},
		{"account with space", "ab cd", "password1", "账号不能包含特殊字符"},
		{"account with symbol", "user!", "password1", "账号不能包含特殊字符"},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			svc := newTestService(newFakeStore())
			_, err := svc.Login(c.account, c.password, newFakeSession())
			be := requireBizCode(t, err, bizerr.CodeParamsError)
			require.Equal(t, c.description, be.Description)
		})
	}
}

// 账号过短在注册与登录两条链路上返回同一描述
func TestShortAccountSameRejection(t *testing.T) {
	svc := newTestService(newFakeStore())
	_, regErr := svc.Register("abc", "password1", "password1", "12345")
	_, loginErr := svc.Login("abc", "password1", newFakeSession())
	regBe := requireBizCode(t, regErr, bizerr.CodeParamsError)
	loginBe := requireBizCode(t, loginErr, bizerr.CodeParamsError)
	require.Equal(t, regBe.Description, loginBe.Description)
}

func TestRegisterLoginRoundTrip(t *testing.T) {
	store := newFakeStore()
	svc := newTestService(store)

	id, err := svc.Register("validUser", "password1", "password1", "12345")
	require.NoError(t, err)
	require.Positive(t, id)

	// 摘要落库，绝无明文
	require.NotEqual(t, "password1", store.users[0].Password)

	sess := newFakeSession()
	safeUser, err := svc.Login("validUser", "password1", sess)
	require.NoError(t, err)
	require.Equal(t, "validUser", safeUser.Account)
	require.Equal(t, id, safeUser.ID)

	// SafeUser 序列化后不含任何密码字段
	data, err := json.Marshal(safeUser)
	require.NoError(t, err)
	require.NotContains(t, string(data), "password")
	require.NotContains(t, string(data), store.users[0].Password)

	// 登录态已写入会话
	var state model.SafeUser
	found, err := sess.Get(auth.UserLoginState, &state)
	require.NoError(t, err)
	require.True(t, found)
	require.Equal(t, "validUser", state.Account)
}

// 星球编号限的是字符数：5 个多字节字符（15 字节）必须能注册
func TestRegisterMultibytePlanetCode(t *testing.T) {
	svc := newTestService(newFakeStore())
	id, err := svc.Register("validUser", "password1", "password1", "一二三四五")
	require.NoError(t, err)
	require.Positive(t, id)
}

func TestRegisterDuplicates(t *testing.T) {
	svc := newTestService(newFakeStore())
	_, err := svc.Register("validUser", "password1", "password1", "12345")
	require.NoError(t, err)

	_, err = svc.Register("validUser", "password1", "password1", "54321")
	be := requireBizCode(t, err, bizerr.CodeParamsError)
	require.Equal(t, "账号重复", be.Description)

	_, err = svc.Register("otherUser", "password1", "password1", "12345")
	be = requireBizCode(t, err, bizerr.CodeParamsError)
	require.Equal(t, "编号重复", be.Description)
}

// 并发注册竞态由唯一索引兜底：插入时的 1062 映射为参数错误而非系统错误
func TestRegisterDuplicateKeyBackstop(t *testing.T) {
	store := newFakeStore()
	store.createErr = &mysql.MySQLError{Number: 1062, Message: "Duplicate entry"}
	svc := newTestService(store)
	_, err := svc.Register("validUser", "password1", "password1", "12345")
	requireBizCode(t, err, bizerr.CodeParamsError)
}

func TestRegisterSaveFailure(t *testing.T) {
	store := newFakeStore()
	store.createErr = errors.New("connection reset")
	svc := newTestService(store)
	_, err := svc.Register("validUser", "password1", "password1", "12345")
	be := requireBizCode(t, err, bizerr.CodeSystemError)
	require.Equal(t, "保存用户失败，请重试", be.Description)
}

// 密码错误与账号不存在返回完全相同的错误，防账号枚举
func TestLoginGenericError(t *testing.T) {
	svc := newTestService(newFakeStore())
	_, err := svc.Register("validUser", "password1", "password1", "12345")
	require.NoError(t, err)

	_, wrongPwdErr := svc.Login("validUser", "wrongpass1", newFakeSession())
	_, noUserErr := svc.Login("ghostUser", "password1", newFakeSession())

	wrongBe := requireBizCode(t, wrongPwdErr, bizerr.CodeParamsError)
	noUserBe := requireBizCode(t, noUserErr, bizerr.CodeParamsError)
	require.Equal(t, wrongBe.Code, noUserBe.Code)
	require.Equal(t, wrongBe.Description, noUserBe.Description)
}

func TestLogout(t *testing.T) {
	svc := newTestService(newFakeStore())

	// 无会话状态下注销同样成功
	empty := newFakeSession()
	require.Equal(t, 1, svc.Logout(empty))

	_, err := svc.Register("validUser", "password1", "password1", "12345")
	require.NoError(t, err)
	sess := newFakeSession()
	_, err = svc.Login("validUser", "password1", sess)
	require.NoError(t, err)

	require.Equal(t, 1, svc.Logout(sess))
	var state model.SafeUser
	found, err := sess.Get(auth.UserLoginState, &state)
	require.NoError(t, err)
	require.False(t, found)

	// 重复注销幂等
	require.Equal(t, 1, svc.Logout(sess))
}

func TestGetSafetyUser(t *testing.T) {
	svc := newTestService(newFakeStore())

	_, err := svc.GetSafetyUser(nil)
	be := requireBizCode(t, err, bizerr.CodeParamsError)
	require.Equal(t, "参数为空", be.Description)

	user := &model.User{
		ID:         7,
		Account:    "validUser",
		Password:   "ee406ccfdab3382d425ec2cc17e9acc5",
		Nickname:   "鱼皮",
		PlanetCode: "12345",
		Role:       model.AdminRole,
	}
	safeUser, err := svc.GetSafetyUser(user)
	require.NoError(t, err)
	require.Equal(t, user.ID, safeUser.ID)
	require.Equal(t, user.Account, safeUser.Account)
	require.Equal(t, user.PlanetCode, safeUser.PlanetCode)
	require.True(t, safeUser.IsAdmin())

	data, err := json.Marshal(safeUser)
	require.NoError(t, err)
	require.NotContains(t, string(data), user.Password)
}

func TestCurrentUser(t *testing.T) {
	svc := newTestService(newFakeStore())

	_, err := svc.CurrentUser(newFakeSession())
	requireBizCode(t, err, bizerr.CodeNotLogin)

	_, err = svc.Register("validUser", "password1", "password1", "12345")
	require.NoError(t, err)
	sess := newFakeSession()
	_, err = svc.Login("validUser", "password1", sess)
	require.NoError(t, err)

	safeUser, err := svc.CurrentUser(sess)
	require.NoError(t, err)
	require.Equal(t, "validUser", safeUser.Account)
}

func TestAdminOnlyOperations(t *testing.T) {
	store := newFakeStore()
	svc := newTestService(store)

	_, err := svc.Register("plainUser", "password1", "password1", "11111")
	require.NoError(t, err)
	adminID, err := svc.Register("adminUser", "password1", "password1", "22222")
	require.NoError(t, err)
	for _, u := range store.users {
		if u.ID == adminID {
			u.Role = model.AdminRole
		}
	}

	plainSess := newFakeSession()
	_, err = svc.Login("plainUser", "password1", plainSess)
	require.NoError(t, err)
	adminSess := newFakeSession()
	_, err = svc.Login("adminUser", "password1", adminSess)
	require.NoError(t, err)

	_, err = svc.SearchUsers("", plainSess)
	requireBizCode(t, err, bizerr.CodeNoAuth)
	_, err = svc.RemoveUser(1, plainSess)
	requireBizCode(t, err, bizerr.CodeNoAuth)

	users, err := svc.SearchUsers("", adminSess)
	require.NoError(t, err)
	require.Len(t, users, 2)

	_, err = svc.RemoveUser(0, adminSess)
	requireBizCode(t, err, bizerr.CodeParamsError)

	ok, err := svc.RemoveUser(1, adminSess)
	require.NoError(t, err)
	require.True(t, ok)
	users, err = svc.SearchUsers("", adminSess)
	require.NoError(t, err)
	require.Len(t, users, 1)
}
