package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"hostelhub/internal/auth"
	"hostelhub/internal/config"
)

const testJWTKey = "middleware-test-secret"

// fakeBlacklist 是内存版的 TokenBlacklist，测试用。
type fakeBlacklist struct {
	revoked map[string]bool
}

func newFakeBlacklist() *fakeBlacklist {
	return &fakeBlacklist{revoked: make(map[string]bool)}
}

func (f *fakeBlacklist) Add(_ context.Context, jti string, _ time.Time) error {
	f.revoked[jti] = true
	return nil
}

func (f *fakeBlacklist) IsBlacklisted(_ context.Context, jti string) (bool, error) {
	return f.revoked[jti], nil
}

func issueToken(t *testing.T, userID uint, email string) string {
	t.Helper()
	token, err := auth.GenerateToken(userID, email, config.AuthConfig{
		JWTSecretKey: testJWTKey,
		JWTExpiry:    time.Hour,
	})
	require.NoError(t, err)
	return token
}

// serveWith 把带认证头的请求送进被中间件包裹的探针处理器。
func serveWith(t *testing.T, blacklist auth.TokenBlacklist, authHeader string) (*httptest.ResponseRecorder, *auth.Claims) {
	t.Helper()
	var captured *auth.Claims
	probe := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		claims, ok := GetClaimsFromContext(r.Context())
		require.True(t, ok, "受保护的处理器必须能读到声明")
		captured = claims
		w.WriteHeader(http.StatusOK)
	})

	handler := AuthMiddleware(testJWTKey, blacklist)(probe)
	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	if authHeader != "" {
		req.Header.Set("Authorization", authHeader)
	}
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	return rec, captured
}

func TestAuthMiddlewareValidToken(t *testing.T) {
	token := issueToken(t, 42, "alice@example.com")

	rec, claims := serveWith(t, newFakeBlacklist(), "Bearer "+token)
	assert.Equal(t, http.StatusOK, rec.Code)
	require.NotNil(t, claims)
	assert.Equal(t, uint(42), claims.UserID)
	assert.Equal(t, "alice@example.com", claims.Email)
}

func TestAuthMiddlewareMissingHeader(t *testing.T) {
	rec, _ := serveWith(t, newFakeBlacklist(), "")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Contains(t, rec.Body.String(), "message")
}

func TestAuthMiddlewareMalformedHeader(t *testing.T) {
	token := issueToken(t, 42, "alice@example.com")
	// 缺少前缀、错误方案、缺少令牌、多余字段
	for _, header := range []string{token, "Basic " + token, "Bearer", "Bearer a b"} {
		rec, _ := serveWith(t, newFakeBlacklist(), header)
		assert.Equal(t, http.StatusUnauthorized, rec.Code, header)
	}
}

func TestAuthMiddlewareInvalidToken(t *testing.T) {
	rec, _ := serveWith(t, newFakeBlacklist(), "Bearer not-a-jwt")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestAuthMiddlewareRevokedToken(t *testing.T) {
	blacklist := newFakeBlacklist()
	token := issueToken(t, 42, "alice@example.com")

	// 吊销前可用
	rec, claims := serveWith(t, blacklist, "Bearer "+token)
	require.Equal(t, http.StatusOK, rec.Code)

	// 登出后同一令牌被拒
	require.NoError(t, blacklist.Add(context.Background(), claims.ID, claims.ExpiresAt.Time))
	rec, _ = serveWith(t, blacklist, "Bearer "+token)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestGetUserIDFromContext(t *testing.T) {
	_, ok := GetUserIDFromContext(context.Background())
	assert.False(t, ok)
}
