package utils

import (
	"crypto/md5"
	"encoding/hex"
)

// EncryptPassword 计算口令摘要：md5(盐 + 明文) 的十六进制。
// 同盐同明文结果恒定，登录时靠 (account, digest) 等值匹配查库。
// 全局静态盐 + 快速哈希是沿用的历史方案，换掉会使已落库的摘要全部失效。
func EncryptPassword(salt, plain string) string {
	sum := md5.Sum([]byte(salt + plain))
	return hex.EncodeToString(sum[:])
}
