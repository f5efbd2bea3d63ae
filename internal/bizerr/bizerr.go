package bizerr

import "fmt"

// 业务错误码，HTTP 层按 code 分支，不依赖 message 文本。
const (
	CodeSuccess     = 0
	CodeParamsError = 40000
	CodeNullError   = 40001
	CodeNotLogin    = 40100
	CodeNoAuth      = 40101
	CodeSystemError = 50000
)

var messages = map[int]string{
	CodeSuccess:     "ok",
	CodeParamsError: "请求参数错误",
	CodeNullError:   "请求数据为空",
	CodeNotLogin:    "未登录",
	CodeNoAuth:      "无权限",
	CodeSystemError: "系统内部异常",
}

// Error 统一的业务错误：机器码 + 固定 message + 自由描述。
type Error struct {
	Code        int
	Message     string
	Description string
}

func (e *Error) Error() string {
	if e.Description == "" {
		return fmt.Sprintf("biz error %d: %s", e.Code, e.Message)
	}
	return fmt.Sprintf("biz error %d: %s (%s)", e.Code, e.Message, e.Description)
}

// New 按错误码构造业务错误，description 用于补充上下文。
func New(code int, description string) *Error {
	return &Error{Code: code, Message: messages[code], Description: description}
}

// Params 参数错误
func Params(description string) *Error { return New(CodeParamsError, description) }

// System 系统内部错误（基础设施失败，区别于用户输入问题）
func System(description string) *Error { return New(CodeSystemError, description) }

// NotLogin 未登录
func NotLogin() *Error { return New(CodeNotLogin, "") }

// NoAuth 无权限
func NoAuth() *Error { return New(CodeNoAuth, "") }
