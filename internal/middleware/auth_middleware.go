package middleware

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"

	"hostelhub/internal/auth"
)

// contextKey 是用于在 context.Context 中存储值的自定义类型，以避免键冲突。
type contextKey string

// claimsKey 是用于在上下文中存储令牌声明的键。
const claimsKey contextKey = "claims"

// AuthMiddleware 是一个 HTTP 中间件，用于验证 Bearer JWT 并将声明注入上下文。
// 缺失、格式错误、无效、过期或已吊销的令牌都返回 401。
// 声明不会回查用户表，令牌有效期内可能落后于账号的最新状态。
func AuthMiddleware(jwtKey string, blacklist auth.TokenBlacklist) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			authHeader := r.Header.Get("Authorization")
			if authHeader == "" {
				writeUnauthorized(w, "请求未包含授权令牌")
				return
			}

			headerParts := strings.Split(authHeader, " ")
			if len(headerParts) != 2 || strings.ToLower(headerParts[0]) != "bearer" {
				writeUnauthorized(w, "授权头部格式无效，应为 Bearer {token}")
				return
			}

			claims, err := auth.ValidateToken(r.Context(), headerParts[1], jwtKey, blacklist)
			if err != nil {
				writeUnauthorized(w, "令牌无效或已过期")
				return
			}

			// 将声明存入请求上下文，处理器通过 GetClaimsFromContext 读取
			ctx := context.WithValue(r.Context(), claimsKey, claims)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// GetClaimsFromContext 从上下文中获取令牌声明。
func GetClaimsFromContext(ctx context.Context) (*auth.Claims, bool) {
	claims, ok := ctx.Value(claimsKey).(*auth.Claims)
	return claims, ok
}

// GetUserIDFromContext 从上下文中获取调用者的用户ID。
// 如果声明不存在，返回 0 和 false。
func GetUserIDFromContext(ctx context.Context) (uint, bool) {
	claims, ok := GetClaimsFromContext(ctx)
	if !ok {
		return 0, false
	}
	return claims.UserID, true
}

func writeUnauthorized(w http.ResponseWriter, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusUnauthorized)
	json.NewEncoder(w).Encode(map[string]string{"message": message})
}
