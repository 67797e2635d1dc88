package apiserver

import (
	"encoding/json"
	"net/http"

	"hostelhub/internal/middleware"
	"hostelhub/internal/models"
	"hostelhub/internal/services"
)

// NoticeHandler 封装了群组公告相关的 HTTP 处理器方法。
type NoticeHandler struct {
	NoticeService services.NoticeService
}

// NewNoticeHandler 创建一个新的 NoticeHandler 实例。
func NewNoticeHandler(noticeService services.NoticeService) *NoticeHandler {
	return &NoticeHandler{NoticeService: noticeService}
}

// CreateNoticeRequest 是发布公告请求的结构体。
type CreateNoticeRequest struct {
	Title    string                 `json:"title"`
	Content  string                 `json:"content,omitempty"`
	Priority *models.NoticePriority `json:"priority,omitempty"`
}

// UpdateNoticeRequest 是更新公告请求的结构体，指针字段缺省表示不修改。
type UpdateNoticeRequest struct {
	Title    *string                `json:"title"`
	Content  *string                `json:"content"`
	Priority *models.NoticePriority `json:"priority"`
	IsPinned *bool                  `json:"isPinned"`
}

// List 返回群组公告，按 置顶 > 优先级 > 创建时间 排序，仅成员可见。
func (h *NoticeHandler) List(w http.ResponseWriter, r *http.Request) {
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

	notices, err := h.NoticeService.ListNotices(r.Context(), userID, groupID)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSONResponse(w, http.StatusOK, map[string]interface{}{"notices": notices})
}

// Create 处理发布公告的请求，仅队长可用。
func (h *NoticeHandler) Create(w http.ResponseWriter, r *http.Request) {
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

	var req CreateNoticeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSONError(w, "请求体无效", http.StatusBadRequest)
		return
	}
	defer r.Body.Close()

	notice, err := h.NoticeService.CreateNotice(r.Context(), userID, groupID, req.Title, req.Content, req.Priority)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSONResponse(w, http.StatusCreated, map[string]interface{}{
		"message": "公告发布成功",
		"notice":  notice,
	})
}

// Update 处理更新公告的请求，仅队长可用。
func (h *NoticeHandler) Update(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserIDFromContext(r.Context())
	if !ok {
		writeJSONError(w, "用户未认证", http.StatusUnauthorized)
		return
	}
	noticeID, ok := pathID(r, "noticeID")
	if !ok {
		writeJSONError(w, "无效的公告ID", http.StatusBadRequest)
		return
	}

	var req UpdateNoticeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSONError(w, "请求体无效", http.StatusBadRequest)
		return
	}
	defer r.Body.Close()

	notice, err := h.NoticeService.UpdateNotice(r.Context(), userID, noticeID, services.NoticeUpdate{
		Title:    req.Title,
		Content:  req.Content,
		Priority: req.Priority,
		IsPinned: req.IsPinned,
	})
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSONResponse(w, http.StatusOK, map[string]interface{}{
		"message": "公告更新成功",
		"notice":  notice,
	})
}

// Delete 处理删除公告的请求，仅队长可用。
func (h *NoticeHandler) Delete(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserIDFromContext(r.Context())
	if !ok {
		writeJSONError(w, "用户未认证", http.StatusUnauthorized)
		return
	}
	noticeID, ok := pathID(r, "noticeID")
	if !ok {
		writeJSONError(w, "无效的公告ID", http.StatusBadRequest)
		return
	}

	if err := h.NoticeService.DeleteNotice(r.Context(), userID, noticeID); err != nil {
		writeError(w, err)
		return
	}

	writeJSONResponse(w, http.StatusOK, map[string]string{"message": "公告已删除"})
}

// TogglePin 切换公告的置顶状态，仅队长可用。
func (h *NoticeHandler) TogglePin(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserIDFromContext(r.Context())
	if !ok {
		writeJSONError(w, "用户未认证", http.StatusUnauthorized)
		return
	}
	noticeID, ok := pathID(r, "noticeID")
	if !ok {
		writeJSONError(w, "无效的公告ID", http.StatusBadRequest)
		return
	}

	notice, err := h.NoticeService.TogglePin(r.Context(), userID, noticeID)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSONResponse(w, http.StatusOK, map[string]interface{}{
		"message": "置顶状态已切换",
		"notice":  notice,
	})
}
