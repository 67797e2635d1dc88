package apiserver

import (
	"encoding/json"
	"net/http"

	"hostelhub/internal/middleware"
	"hostelhub/internal/services"
)

// UserHandler 封装了用户资料相关的 HTTP 处理器方法。
type UserHandler struct {
	UserService services.UserService
}

// NewUserHandler 创建一个新的 UserHandler 实例。
func NewUserHandler(userService services.UserService) *UserHandler {
	return &UserHandler{UserService: userService}
}

// UpdateProfileRequest 是更新用户资料请求的结构体。
// 指针字段缺省表示不修改。
type UpdateProfileRequest struct {
	Name  *string `json:"name"`
	Email *string `json:"email"`
}

// GetProfile 返回当前认证用户的资料。
func (h *UserHandler) GetProfile(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserIDFromContext(r.Context())
	if !ok {
		writeJSONError(w, "用户未认证", http.StatusUnauthorized)
		return
	}

	user, err := h.UserService.GetProfile(r.Context(), userID)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSONResponse(w, http.StatusOK, map[string]interface{}{"user": user})
}

// UpdateProfile 更新当前认证用户的资料。
func (h *UserHandler) UpdateProfile(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserIDFromContext(r.Context())
	if !ok {
		writeJSONError(w, "用户未认证", http.StatusUnauthorized)
		return
	}

	var req UpdateProfileRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSONError(w, "请求体无效", http.StatusBadRequest)
		return
	}
	defer r.Body.Close()

	user, err := h.UserService.UpdateProfile(r.Context(), userID, req.Name, req.Email)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSONResponse(w, http.StatusOK, map[string]interface{}{
		"message": "资料更新成功",
		"user":    user,
	})
}

// ListMyGroups 返回当前认证用户所属的群组列表。
func (h *UserHandler) ListMyGroups(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserIDFromContext(r.Context())
	if !ok {
		writeJSONError(w, "用户未认证", http.StatusUnauthorized)
		return
	}

	groups, err := h.UserService.ListGroups(r.Context(), userID)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSONResponse(w, http.StatusOK, map[string]interface{}{"groups": groups})
}
