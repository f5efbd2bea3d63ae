package request

// binding 只拦缺字段；校验规则与报错顺序统一由 service 层负责，
// 保证 HTTP 调用方和直接调用方看到同样的描述。
type RegisterRequest struct {
	Account       string `json:"account" binding:"required"`
	Password      string `json:"password" binding:"required"`
	CheckPassword string `json:"checkPassword" binding:"required"`
	PlanetCode    string `json:"planetCode" binding:"required"`
}

type LoginRequest struct {
	Account  string `json:"account" binding:"required"`
	Password string `json:"password" binding:"required"`
}

type DeleteRequest struct {
	ID int64 `json:"id" binding:"required"`
}
