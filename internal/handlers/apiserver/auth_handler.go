package apiserver

import (
	"encoding/json"
	"net/http"

	"hostelhub/internal/auth"
	"hostelhub/internal/middleware"
	"hostelhub/internal/models"
	"hostelhub/internal/services"
)

// AuthHandler 封装了认证相关的 HTTP 处理器方法。
type AuthHandler struct {
	AuthService    services.AuthService
	TokenBlacklist auth.TokenBlacklist
}

// NewAuthHandler 创建一个新的 AuthHandler 实例。
func NewAuthHandler(authService services.AuthService, tokenBlacklist auth.TokenBlacklist) *AuthHandler {
	return &AuthHandler{
		AuthService:    authService,
		TokenBlacklist: tokenBlacklist,
	}
}

// RegisterRequest 是用户注册请求的结构体。
type RegisterRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	Name     string `json:"name,omitempty"`
}

// LoginRequest 是用户登录请求的结构体。
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// LoginResponse 是成功登录后返回的结构体。
type LoginResponse struct {
	Message string       `json:"message"`
	Token   string       `json:"token"`
	User    *models.User `json:"user"`
}

// Register 处理用户注册请求。
func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req RegisterRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSONError(w, "请求体无效", http.StatusBadRequest)
		return
	}
	defer r.Body.Close()

	user, err := h.AuthService.Register(r.Context(), req.Email, req.Password, req.Name)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSONResponse(w, http.StatusCreated, map[string]interface{}{
		"message": "注册成功",
		"user":    user,
	})
}

// Login 处理用户登录请求。
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSONError(w, "请求体无效", http.StatusBadRequest)
		return
	}
	defer r.Body.Close()

	if req.Email == "" || req.Password == "" {
		writeJSONError(w, "邮箱和密码不能为空", http.StatusBadRequest)
		return
	}

	token, user, err := h.AuthService.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSONResponse(w, http.StatusOK, LoginResponse{Message: "登录成功", Token: token, User: user})
}

// Logout 处理用户登出请求，将当前 Token 的 JTI 加入黑名单直到其自然过期。
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	claims, ok := middleware.GetClaimsFromContext(r.Context())
	if !ok {
		writeJSONError(w, "用户未认证", http.StatusUnauthorized)
		return
	}

	if claims.ID == "" || claims.ExpiresAt == nil {
		writeJSONError(w, "令牌缺少必要声明，无法执行登出", http.StatusBadRequest)
		return
	}

	if err := h.TokenBlacklist.Add(r.Context(), claims.ID, claims.ExpiresAt.Time); err != nil {
		writeError(w, err)
		return
	}

	writeJSONResponse(w, http.StatusOK, map[string]string{"message": "登出成功"})
}

// Protected 是认证守卫的冒烟测试端点，原样返回上下文中的声明。
func (h *AuthHandler) Protected(w http.ResponseWriter, r *http.Request) {
	claims, ok := middleware.GetClaimsFromContext(r.Context())
	if !ok {
		writeJSONError(w, "用户未认证", http.StatusUnauthorized)
		return
	}

	writeJSONResponse(w, http.StatusOK, map[string]interface{}{
		"message": "认证有效",
		"id":      claims.UserID,
		"email":   claims.Email,
	})
}
