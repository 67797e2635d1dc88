package auth

import (
	"context"
	"fmt"
	"time"

	"hostelhub/internal/apperr"
	"hostelhub/internal/config"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// Claims 是 JWT 中的自定义声明，嵌入了 jwt.RegisteredClaims。
// 只携带非敏感字段：用户 ID 和邮箱。守卫不会回查用户记录，
// 所以在令牌过期前这些声明可能落后于数据库中的账号状态。
type Claims struct {
	UserID uint   `json:"id"`
	Email  string `json:"email"`
	jwt.RegisteredClaims
}

// GenerateToken 为指定用户生成一个新的 JWT。
// 有效期来自配置，默认 7 天。每个令牌带有 jti 以支持登出吊销。
func GenerateToken(userID uint, email string, authCfg config.AuthConfig) (string, error) {
	jwtID, err := uuid.NewRandom()
	if err != nil {
		return "", fmt.Errorf("生成 JWT ID 失败: %w", err)
	}

	expirationTime := time.Now().Add(authCfg.JWTExpiry)
	claims := &Claims{
		UserID: userID,
		Email:  email,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(expirationTime),
			ID:        jwtID.String(),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
			Issuer:    "hostelhub-server",
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	tokenString, err := token.SignedString([]byte(authCfg.JWTSecretKey))
	if err != nil {
		return "", fmt.Errorf("生成 JWT 失败: %w", err)
	}
	return tokenString, nil
}

// ValidateToken 验证给定的 JWT 字符串的有效性。
// 签名错误、过期或已被吊销的令牌都会返回 Unauthenticated 错误。
// blacklist 可以为 nil，此时跳过吊销检查。
func ValidateToken(ctx context.Context, tokenString string, jwtKey string, blacklist TokenBlacklist) (*Claims, error) {
	claims := &Claims{}

	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		// 确保签名算法是我们期望的
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("非预期的签名算法: %v", token.Header["alg"])
		}
		return []byte(jwtKey), nil
	})

	if err != nil || !token.Valid {
		return nil, apperr.Unauthenticated("令牌无效或已过期")
	}

	if blacklist != nil && claims.ID != "" {
		isRevoked, err := blacklist.IsBlacklisted(ctx, claims.ID)
		if err != nil {
			// 黑名单不可用时拒绝令牌，宁严勿松
			return nil, fmt.Errorf("检查 Token 黑名单失败: %w", err)
		}
		if isRevoked {
			return nil, apperr.Unauthenticated("令牌已被吊销")
		}
	}

	return claims, nil
}
