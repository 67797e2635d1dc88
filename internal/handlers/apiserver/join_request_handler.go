package apiserver

import (
	"encoding/json"
	"net/http"

	"hostelhub/internal/middleware"
	"hostelhub/internal/services"
)

// JoinRequestHandler 封装了加入申请相关的 HTTP 处理器方法。
type JoinRequestHandler struct {
	GroupService services.GroupService
}

// NewJoinRequestHandler 创建一个新的 JoinRequestHandler 实例。
func NewJoinRequestHandler(groupService services.GroupService) *JoinRequestHandler {
	return &JoinRequestHandler{GroupService: groupService}
}

// CreateJoinRequestRequest 是申请加入群组请求的结构体。
type CreateJoinRequestRequest struct {
	Message string `json:"message,omitempty"`
}

// Create 处理申请加入群组的请求。
func (h *JoinRequestHandler) Create(w http.ResponseWriter, r *http.Request) {
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

	var req CreateJoinRequestRequest
	// 请求体可以整个省略，留言是可选的
	_ = json.NewDecoder(r.Body).Decode(&req)
	defer r.Body.Close()

	request, err := h.GroupService.RequestJoin(r.Context(), userID, groupID, req.Message)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSONResponse(w, http.StatusCreated, map[string]interface{}{
		"message":     "加入申请已发送",
		"joinRequest": request,
	})
}

// List 返回群组的待处理加入申请，仅队长可见。
func (h *JoinRequestHandler) List(w http.ResponseWriter, r *http.Request) {
	callerID, ok := middleware.GetUserIDFromContext(r.Context())
	if !ok {
		writeJSONError(w, "用户未认证", http.StatusUnauthorized)
		return
	}
	groupID, ok := pathID(r, "groupID")
	if !ok {
		writeJSONError(w, "无效的群组ID", http.StatusBadRequest)
		return
	}

	requests, err := h.GroupService.ListJoinRequests(r.Context(), callerID, groupID)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSONResponse(w, http.StatusOK, map[string]interface{}{"requests": requests})
}

// Accept 接受加入申请，申请者成为群组成员。
func (h *JoinRequestHandler) Accept(w http.ResponseWriter, r *http.Request) {
	callerID, ok := middleware.GetUserIDFromContext(r.Context())
	if !ok {
		writeJSONError(w, "用户未认证", http.StatusUnauthorized)
		return
	}
	requestID, ok := pathID(r, "requestID")
	if !ok {
		writeJSONError(w, "无效的申请ID", http.StatusBadRequest)
		return
	}

	if err := h.GroupService.AcceptJoinRequest(r.Context(), callerID, requestID); err != nil {
		writeError(w, err)
		return
	}

	writeJSONResponse(w, http.StatusOK, map[string]string{"message": "已接受加入申请"})
}

// Decline 拒绝加入申请。
func (h *JoinRequestHandler) Decline(w http.ResponseWriter, r *http.Request) {
	callerID, ok := middleware.GetUserIDFromContext(r.Context())
	if !ok {
		writeJSONError(w, "用户未认证", http.StatusUnauthorized)
		return
	}
	requestID, ok := pathID(r, "requestID")
	if !ok {
		writeJSONError(w, "无效的申请ID", http.StatusBadRequest)
		return
	}

	if err := h.GroupService.DeclineJoinRequest(r.Context(), callerID, requestID); err != nil {
		writeError(w, err)
		return
	}

	writeJSONResponse(w, http.StatusOK, map[string]string{"message": "已拒绝加入申请"})
}
