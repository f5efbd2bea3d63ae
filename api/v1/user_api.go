package v1

import (
	"usercenter/api/v1/request"
	"usercenter/api/v1/response"
	"usercenter/config"
	"usercenter/internal/auth"
	"usercenter/internal/metrics"
	"usercenter/middleware"
	"usercenter/service"

	"github.com/gin-gonic/gin"
)

// UserAPI exposes HTTP handlers for the account flows.
// UserAPI 聚合了所有与用户相关的 HTTP Handler。
type UserAPI struct {
	service *service.UserService
}

// NewUserAPI wires the service layer into the HTTP handlers.
func NewUserAPI(s *service.UserService) *UserAPI {
	return &UserAPI{service: s}
}

// Register handles new account creation.
func (u *UserAPI) Register(c *gin.Context) {
	var req request.RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		metrics.IncRegister("bad_request")
		response.FailParams(c, err.Error())
		return
	}
	id, err := u.service.Register(req.Account, req.Password, req.CheckPassword, req.PlanetCode)
	if err != nil {
		metrics.IncRegister("rejected")
		response.Fail(c, err)
		return
	}
	metrics.IncRegister("success")
	response.OK(c, id)
}

// Login validates credentials, opens a session and sets the session cookie.
func (u *UserAPI) Login(c *gin.Context) {
	var req request.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		metrics.IncLogin("bad_request")
		response.FailParams(c, err.Error())
		return
	}

	sess := u.service.Session.NewSession()
	safeUser, err := u.service.Login(req.Account, req.Password, sess)
	if err != nil {
		metrics.IncLogin("unauthorized")
		response.Fail(c, err)
		return
	}

	token, err := auth.SignSessionToken(sess.ID())
	if err != nil {
		metrics.IncLogin("internal_error")
		response.Fail(c, err)
		return
	}
	maxAge := int(config.GlobalConfig.Auth.SessionExpire)
	c.SetCookie(auth.SessionCookie, token, maxAge, "/", "", false, true)

	metrics.IncLogin("success")
	response.OK(c, safeUser)
}

// Logout 清除登录态并作废 Cookie。幂等：没有会话同样返回成功。
func (u *UserAPI) Logout(c *gin.Context) {
	result := 1
	if sess, ok := middleware.SessionFromRequest(c, u.service.Session); ok {
		result = u.service.Logout(sess)
	}
	c.SetCookie(auth.SessionCookie, "", -1, "/", "", false, true)
	metrics.IncLogout("success")
	response.OK(c, result)
}

// CurrentUser 返回当前登录用户（脱敏，资料回查保证最新）。
func (u *UserAPI) CurrentUser(c *gin.Context) {
	sess := c.MustGet(middleware.CtxSession).(*auth.Session)
	safeUser, err := u.service.CurrentUser(sess)
	if err != nil {
		response.Fail(c, err)
		return
	}
	response.OK(c, safeUser)
}

// SearchUsers 管理员按昵称模糊查询
func (u *UserAPI) SearchUsers(c *gin.Context) {
	sess := c.MustGet(middleware.CtxSession).(*auth.Session)
	users, err := u.service.SearchUsers(c.Query("username"), sess)
	if err != nil {
		response.Fail(c, err)
		return
	}
	response.OK(c, users)
}

// DeleteUser 管理员删除用户
func (u *UserAPI) DeleteUser(c *gin.Context) {
	var req request.DeleteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.FailParams(c, err.Error())
		return
	}
	sess := c.MustGet(middleware.CtxSession).(*auth.Session)
	ok, err := u.service.RemoveUser(req.ID, sess)
	if err != nil {
		response.Fail(c, err)
		return
	}
	response.OK(c, ok)
}
