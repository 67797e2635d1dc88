package apiserver

import (
	"encoding/json"
	"net/http"

	"hostelhub/internal/middleware"
	"hostelhub/internal/services"
)

// PostHandler 封装了群组帖子相关的 HTTP 处理器方法。
type PostHandler struct {
	PostService services.PostService
}

// NewPostHandler 创建一个新的 PostHandler 实例。
func NewPostHandler(postService services.PostService) *PostHandler {
	return &PostHandler{PostService: postService}
}

// CreatePostRequest 是发帖请求的结构体。
type CreatePostRequest struct {
	Title   string `json:"title"`
	Content string `json:"content"`
}

// Create 处理在群组中发帖的请求。
func (h *PostHandler) Create(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserIDFromContext(r.Context())
	if !ok {
		writeJSONError(w, "用户未认证", http.StatusUnauthorized)
		return
	}
	groupID, ok := pathID(r, "groupID")
	if !ok {
		writeJSONError(w, "无效的群组ID", http.StatusBadRequest)
		return
	}

	var req CreatePostRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSONError(w, "请求体无效", http.StatusBadRequest)
		return
	}
	defer r.Body.Close()

	post, err := h.PostService.CreatePost(r.Context(), userID, groupID, req.Title, req.Content)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSONResponse(w, http.StatusCreated, map[string]interface{}{
		"message": "发帖成功",
		"post":    post,
	})
}

// List 返回群组的帖子列表，最新的在前，无需认证。
func (h *PostHandler) List(w http.ResponseWriter, r *http.Request) {
	groupID, ok := pathID(r, "groupID")
	if !ok {
		writeJSONError(w, "无效的群组ID", http.StatusBadRequest)
		return
	}

	posts, err := h.PostService.ListPosts(r.Context(), groupID)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSONResponse(w, http.StatusOK, map[string]interface{}{"posts": posts})
}
