package response

import (
	"errors"
	"net/http"

	"usercenter/internal/bizerr"

	"github.com/gin-gonic/gin"
)

// BaseResponse 统一返回体：code / data / message / description。
// 前端按 code 分支，message 与 description 只做展示。
type BaseResponse struct {
	Code        int    `json:"code"`
	Data        any    `json:"data"`
	Message     string `json:"message"`
	Description string `json:"description"`
}

// OK 成功返回
func OK(c *gin.Context, data any) {
	c.JSON(http.StatusOK, BaseResponse{Code: bizerr.CodeSuccess, Data: data, Message: "ok"})
}

// Fail 把业务错误翻译成 HTTP 返回；非业务错误一律按系统错误处理。
func Fail(c *gin.Context, err error) {
	var be *bizerr.Error
	if !errors.As(err, &be) {
		be = bizerr.System("")
	}
	c.JSON(httpStatus(be.Code), BaseResponse{
		Code:        be.Code,
		Message:     be.Message,
		Description: be.Description,
	})
}

// FailParams 参数错误的便捷返回，用于 binding 失败
func FailParams(c *gin.Context, description string) {
	Fail(c, bizerr.Params(description))
}

func httpStatus(code int) int {
	switch code {
	case bizerr.CodeNotLogin:
		return http.StatusUnauthorized
	case bizerr.CodeNoAuth:
		return http.StatusForbidden
	case bizerr.CodeSystemError:
		return http.StatusInternalServerError
	default:
		return http.StatusBadRequest
	}
}
