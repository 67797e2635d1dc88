package apiserver

import (
	"encoding/json"
	"log"
	"net/http"

	"hostelhub/internal/apperr"
	"hostelhub/internal/storage"

	"github.com/gorilla/mux"
)

// ErrorResponse 是 API 错误响应的通用结构体。
type ErrorResponse struct {
	Message string `json:"message"`
}

// writeJSONResponse 是一个辅助函数，用于发送 JSON 响应。
func writeJSONResponse(w http.ResponseWriter, statusCode int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	if data != nil {
		if err := json.NewEncoder(w).Encode(data); err != nil {
			// 头部已发送，这里只能记录
			log.Printf("无法编码 JSON 响应: %v", err)
		}
	}
}

// writeJSONError 是一个辅助函数，用于发送 JSON 格式的错误响应。
func writeJSONError(w http.ResponseWriter, message string, statusCode int) {
	writeJSONResponse(w, statusCode, ErrorResponse{Message: message})
}

// writeError 把服务层错误翻译成 HTTP 响应。
// 已分类的错误带原始消息返回；未分类的错误只记录日志，
// 对外统一是不带内部细节的 500。
func writeError(w http.ResponseWriter, err error) {
	status := apperr.StatusOf(err)
	if status == http.StatusInternalServerError {
		log.Printf("内部错误: %v", err)
		writeJSONError(w, "服务器内部错误", status)
		return
	}
	writeJSONError(w, err.Error(), status)
}

// pathID 从路由变量中解析数字ID。
func pathID(r *http.Request, name string) (uint, bool) {
	id, err := storage.StrToUint(mux.Vars(r)[name])
	if err != nil {
		return 0, false
	}
	return id, true
}
