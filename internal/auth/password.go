package auth

import (
	"strings"

	"golang.org/x/crypto/bcrypt"

	"hostelhub/internal/apperr"
)

// DefaultBcryptCost 是密码哈希的默认工作因子，可通过配置覆盖。
const DefaultBcryptCost = 10

// HashPassword 使用 bcrypt 对密码进行哈希处理。
// 空白密码是输入错误而不是哈希失败，返回 Validation 错误。
func HashPassword(password string, cost int) (string, error) {
	if strings.TrimSpace(password) == "" {
		return "", apperr.Validation("密码不能为空")
	}
	if cost <= 0 {
		cost = DefaultBcryptCost
	}
	bytes, err := bcrypt.GenerateFromPassword([]byte(password), cost)
	return string(bytes), err
}

// CheckPasswordHash 验证提供的密码是否与其 bcrypt 哈希值匹配。
// 哈希缺失时返回 false 而不是错误。
func CheckPasswordHash(password, hash string) bool {
	if hash == "" {
		return false
	}
	err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(password))
	return err == nil
}
