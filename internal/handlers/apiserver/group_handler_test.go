package apiserver

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gorilla/mux"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"hostelhub/internal/apperr"
	"hostelhub/internal/auth"
	"hostelhub/internal/config"
	"hostelhub/internal/middleware"
	"hostelhub/internal/models"
	"hostelhub/internal/services"
)

const testJWTKey = "handler-test-secret"

// stubGroupService 只覆盖被测路径用到的方法，其余继承零值接口。
type stubGroupService struct {
	services.GroupService
	details func(ctx context.Context, groupID uint) (*models.Group, error)
	leave   func(ctx context.Context, userID, groupID uint) (bool, error)
}

func (s *stubGroupService) GetGroupDetails(ctx context.Context, groupID uint) (*models.Group, error) {
	return s.details(ctx, groupID)
}

func (s *stubGroupService) LeaveGroup(ctx context.Context, userID, groupID uint) (bool, error) {
	return s.leave(ctx, userID, groupID)
}

// newTestRouter 按照 main.go 的布局挂载被测路由。
func newTestRouter(svc services.GroupService) *mux.Router {
	handler := NewGroupHandler(svc)
	r := mux.NewRouter()
	r.HandleFunc("/groups/{groupID:[0-9]+}", handler.GetDetails).Methods(http.MethodGet)

	apiRouter := r.PathPrefix("/api/v1").Subrouter()
	apiRouter.Use(middleware.AuthMiddleware(testJWTKey, nil))
	apiRouter.HandleFunc("/groups/{groupID:[0-9]+}/leave", handler.Leave).Methods(http.MethodPost)
	return r
}

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var body map[string]interface{}
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&body))
	return body
}

func TestGetDetailsOK(t *testing.T) {
	svc := &stubGroupService{
		details: func(_ context.Context, groupID uint) (*models.Group, error) {
			group := &models.Group{Name: "一组", LeaderID: 1}
			group.ID = groupID
			return group, nil
		},
	}

	req := httptest.NewRequest(http.MethodGet, "/groups/7", nil)
	rec := httptest.NewRecorder()
	newTestRouter(svc).ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	body := decodeBody(t, rec)
	group := body["group"].(map[string]interface{})
	assert.Equal(t, float64(7), group["id"])
	assert.Equal(t, "一组", group["name"])
}

// 服务层的分类错误必须原样带消息映射到对应的状态码。
func TestGetDetailsNotFound(t *testing.T) {
	svc := &stubGroupService{
		details: func(_ context.Context, _ uint) (*models.Group, error) {
			return nil, apperr.NotFound("群组不存在")
		},
	}

	req := httptest.NewRequest(http.MethodGet, "/groups/999", nil)
	rec := httptest.NewRecorder()
	newTestRouter(svc).ServeHTTP(rec, req)

	require.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "群组不存在", decodeBody(t, rec)["message"])
}

// 非数字的路径参数直接被路由拒绝。
func TestGetDetailsBadID(t *testing.T) {
	svc := &stubGroupService{
		details: func(_ context.Context, _ uint) (*models.Group, error) {
			t.Fatal("不应到达服务层")
			return nil, nil
		},
	}

	req := httptest.NewRequest(http.MethodGet, "/groups/abc", nil)
	rec := httptest.NewRecorder()
	newTestRouter(svc).ServeHTTP(rec, req)

	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestLeaveRequiresAuth(t *testing.T) {
	svc := &stubGroupService{
		leave: func(_ context.Context, _, _ uint) (bool, error) {
			t.Fatal("未认证的请求不应到达服务层")
			return false, nil
		},
	}

	req := httptest.NewRequest(http.MethodPost, "/api/v1/groups/7/leave", nil)
	rec := httptest.NewRecorder()
	newTestRouter(svc).ServeHTTP(rec, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestLeaveWithToken(t *testing.T) {
	var gotUserID, gotGroupID uint
	svc := &stubGroupService{
		leave: func(_ context.Context, userID, groupID uint) (bool, error) {
			gotUserID, gotGroupID = userID, groupID
			return true, nil
		},
	}

	token, err := auth.GenerateToken(42, "alice@example.com", config.AuthConfig{
		JWTSecretKey: testJWTKey,
		JWTExpiry:    time.Hour,
	})
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/groups/7/leave", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()
	newTestRouter(svc).ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, uint(42), gotUserID)
	assert.Equal(t, uint(7), gotGroupID)
	// 群组被解散时返回带解散说明的消息
	assert.Contains(t, decodeBody(t, rec)["message"], "解散")
}
