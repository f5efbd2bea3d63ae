package validator

import "regexp"

// 账号只允许字母和数字，整串匹配
var accountRe = regexp.MustCompile(`^[a-zA-Z0-9]+$`)

// IsValidAccount 校验账号是否不含特殊字符
func IsValidAccount(account string) bool {
	return accountRe.MatchString(account)
}
