package apiserver

import (
	"encoding/json"
	"net/http"

	"hostelhub/internal/middleware"
	"hostelhub/internal/services"
)

// GroupHandler 封装了群组与成员相关的 HTTP 处理器方法。
type GroupHandler struct {
	GroupService services.GroupService
}

// NewGroupHandler 创建一个新的 GroupHandler 实例。
func NewGroupHandler(groupService services.GroupService) *GroupHandler {
	return &GroupHandler{GroupService: groupService}
}

// CreateGroupRequest 是创建群组请求的结构体。
type CreateGroupRequest struct {
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
}

// RemoveMemberRequest 是队长移除成员请求的结构体。
type RemoveMemberRequest struct {
	UserID uint   `json:"userId"`
	Reason string `json:"reason,omitempty"`
}

// Create 处理创建群组请求，创建者成为队长。
func (h *GroupHandler) Create(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserIDFromContext(r.Context())
	if !ok {
		writeJSONError(w, "用户未认证", http.StatusUnauthorized)
		return
	}

	var req CreateGroupRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSONError(w, "请求体无效", http.StatusBadRequest)
		return
	}
	defer r.Body.Close()

	group, err := h.GroupService.CreateGroup(r.Context(), userID, req.Name, req.Description)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSONResponse(w, http.StatusCreated, map[string]interface{}{
		"message": "群组创建成功",
		"group":   group,
	})
}

// List 返回全部群组及成员数，无需认证。
func (h *GroupHandler) List(w http.ResponseWriter, r *http.Request) {
	groups, err := h.GroupService.ListGroups(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSONResponse(w, http.StatusOK, map[string]interface{}{"groups": groups})
}

// GetDetails 返回单个群组的详情及成员列表，无需认证。
func (h *GroupHandler) GetDetails(w http.ResponseWriter, r *http.Request) {
	groupID, ok := pathID(r, "groupID")
	if !ok {
		writeJSONError(w, "无效的群组ID", http.StatusBadRequest)
		return
	}

	group, err := h.GroupService.GetGroupDetails(r.Context(), groupID)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSONResponse(w, http.StatusOK, map[string]interface{}{"group": group})
}

// MembershipState 返回当前用户与指定群组的关系状态。
func (h *GroupHandler) MembershipState(w http.ResponseWriter, r *http.Request) {
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

	state, err := h.GroupService.MembershipState(r.Context(), userID, groupID)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSONResponse(w, http.StatusOK, map[string]interface{}{"state": state})
}

// ListMembers 返回群组成员列表，按加入时间排序。
func (h *GroupHandler) ListMembers(w http.ResponseWriter, r *http.Request) {
	groupID, ok := pathID(r, "groupID")
	if !ok {
		writeJSONError(w, "无效的群组ID", http.StatusBadRequest)
		return
	}

	members, err := h.GroupService.ListMembers(r.Context(), groupID)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSONResponse(w, http.StatusOK, map[string]interface{}{"members": members})
}

// RemoveMember 由队长移除指定成员，目标用户和原因在请求体中。
func (h *GroupHandler) RemoveMember(w http.ResponseWriter, r *http.Request) {
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

	var req RemoveMemberRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSONError(w, "请求体无效", http.StatusBadRequest)
		return
	}
	defer r.Body.Close()

	if req.UserID == 0 {
		writeJSONError(w, "缺少要移除的用户ID", http.StatusBadRequest)
		return
	}

	if err := h.GroupService.RemoveMember(r.Context(), callerID, groupID, req.UserID); err != nil {
		writeError(w, err)
		return
	}

	writeJSONResponse(w, http.StatusOK, map[string]interface{}{
		"message": "成员已移除",
		"reason":  req.Reason,
	})
}

// Leave 处理成员自助退出群组，队长退出时触发交接或解散。
func (h *GroupHandler) Leave(w http.ResponseWriter, r *http.Request) {
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

	groupDeleted, err := h.GroupService.LeaveGroup(r.Context(), userID, groupID)
	if err != nil {
		writeError(w, err)
		return
	}

	message := "已退出群组"
	if groupDeleted {
		message = "已退出群组，群组因无剩余成员已解散"
	}
	writeJSONResponse(w, http.StatusOK, map[string]string{"message": message})
}
