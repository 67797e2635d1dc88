// Package apperr 定义了 API 层统一的错误分类。
// 处理器不在本地翻译错误，统一由边界上的 StatusOf/FromDB 完成
// 分类到 HTTP 状态码的映射。
package apperr

import (
	"errors"
	"net/http"

	"gorm.io/gorm"
)

// Kind 标识错误的类别，决定响应的 HTTP 状态码。
type Kind int

const (
	KindValidation      Kind = iota // 400 缺失或非法输入
	KindUnauthenticated             // 401 缺失/无效/过期的令牌，错误的凭证
	KindForbidden                   // 403 邮箱不在名单、非队长、非成员
	KindConflict                    // 409 唯一约束冲突（重复邮箱/成员/申请）
	KindNotFound                    // 404 群组/公告/申请不存在
)

// Error 是携带分类的应用错误。
type Error struct {
	Kind    Kind
	Message string
}

func (e *Error) Error() string {
	return e.Message
}

// Validation 构造一个 400 错误。
func Validation(message string) *Error {
	return &Error{Kind: KindValidation, Message: message}
}

// Unauthenticated 构造一个 401 错误。
func Unauthenticated(message string) *Error {
	return &Error{Kind: KindUnauthenticated, Message: message}
}

// Forbidden 构造一个 403 错误。
func Forbidden(message string) *Error {
	return &Error{Kind: KindForbidden, Message: message}
}

// Conflict 构造一个 409 错误。
func Conflict(message string) *Error {
	return &Error{Kind: KindConflict, Message: message}
}

// NotFound 构造一个 404 错误。
func NotFound(message string) *Error {
	return &Error{Kind: KindNotFound, Message: message}
}

// StatusOf 返回错误对应的 HTTP 状态码。
// 未分类的错误一律映射为 500，不向调用方泄露内部细节。
func StatusOf(err error) int {
	var appErr *Error
	if !errors.As(err, &appErr) {
		return http.StatusInternalServerError
	}
	switch appErr.Kind {
	case KindValidation:
		return http.StatusBadRequest
	case KindUnauthenticated:
		return http.StatusUnauthorized
	case KindForbidden:
		return http.StatusForbidden
	case KindConflict:
		return http.StatusConflict
	case KindNotFound:
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}

// IsKind 判断 err 是否属于给定类别。
func IsKind(err error, kind Kind) bool {
	var appErr *Error
	return errors.As(err, &appErr) && appErr.Kind == kind
}

// FromDB 把持久层的原始错误翻译到统一分类，作为处理器漏检时的兜底：
// 唯一约束冲突映射为 Conflict，记录不存在映射为 NotFound。
// 依赖 gorm 的 TranslateError（见 storage.InitDB）。
func FromDB(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return Conflict("记录已存在")
	}
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return NotFound("记录不存在")
	}
	return err
}
