// File: internal/pkg/response/responser.go
package response

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"emberfall-server/internal/pkg/i18n"
	"emberfall-server/internal/pkg/log"
	"emberfall-server/internal/pkg/trace"
	"emberfall-server/internal/pkg/xerrors"
)

// EmptyData 是一个用于在 API 成功响应中表示"无数据"的结构体。
// 使用一个具体的空结构体，比直接返回 nil 或 interface{} 更类型安全、意图更明确。
type EmptyData struct{}

// Response 通用的 API 响应结构体
type Response struct {
	Code      int         `json:"code"`               // 业务响应码
	Message   string      `json:"message"`            // 响应消息
	Data      interface{} `json:"data,omitempty"`     // 响应数据，成功时返回
	Error     string      `json:"error,omitempty"`    // 错误详情，失败时返回（仅开发环境）
	Timestamp int64       `json:"timestamp"`          // Unix时间戳
	TraceID   string      `json:"trace_id,omitempty"` // 请求追踪ID
}

// Writer 统一响应写入接口
type Writer interface {
	WriteSuccess(ctx context.Context, w http.ResponseWriter, data interface{}) error
	WriteError(ctx context.Context, w http.ResponseWriter, err error) error
	WriteJSON(ctx context.Context, w http.ResponseWriter, data interface{}, statusCode int) error
}

// ResponseHandler Writer 的默认实现
type ResponseHandler struct {
	logger      log.Logger
	environment string
}

// NewResponseHandler 创建响应处理器
func NewResponseHandler(logger log.Logger, environment string) Writer {
	if logger == nil {
		logger = log.GetLogger()
	}
	return &ResponseHandler{
		logger:      logger,
		environment: environment,
	}
}

// WriteSuccess 写入成功响应
func (h *ResponseHandler) WriteSuccess(ctx context.Context, w http.ResponseWriter, data interface{}) error {
	resp := &Response{
		Code:      xerrors.CodeSuccess.ToInt(),
		Message:   i18n.GetErrorMessage(xerrors.CodeSuccess, i18n.GetLanguage(ctx)),
		Data:      data,
		Timestamp: time.Now().Unix(),
		TraceID:   trace.GetTraceID(ctx),
	}
	return h.writeJSON(w, http.StatusOK, resp)
}

// WriteError 写入错误响应
// 非 AppError 一律按内部错误处理，不向客户端泄漏原始错误。
func (h *ResponseHandler) WriteError(ctx context.Context, w http.ResponseWriter, err error) error {
	appErr, ok := xerrors.AsAppError(err)
	if !ok {
		appErr = xerrors.NewWithError(xerrors.CodeInternalError, "内部服务错误", err)
	}

	// 按请求语言本地化错误消息
	message := i18n.GetErrorMessage(appErr.Code, i18n.GetLanguage(ctx))

	resp := &Response{
		Code:      appErr.Code.ToInt(),
		Message:   message,
		Timestamp: time.Now().Unix(),
		TraceID:   trace.GetTraceID(ctx),
	}

	// 开发环境附带错误详情，便于排查
	if h.environment == "development" && appErr.Err != nil {
		resp.Error = appErr.Err.Error()
	}

	if appErr.IsCritical() {
		h.logger.ErrorContext(ctx, "critical error response",
			log.Any("app_error", appErr))
	} else {
		h.logger.WarnContext(ctx, "error response",
			log.Int("code", appErr.Code.ToInt()),
			log.String("message", appErr.Message))
	}

	return h.writeJSON(w, appErr.Code.HTTPStatus(), resp)
}

// WriteJSON 直接返回 JSON 响应(跳过 Response 包装)
func (h *ResponseHandler) WriteJSON(ctx context.Context, w http.ResponseWriter, data interface{}, statusCode int) error {
	return h.writeJSON(w, statusCode, data)
}

func (h *ResponseHandler) writeJSON(w http.ResponseWriter, statusCode int, body interface{}) error {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(statusCode)

	if err := json.NewEncoder(w).Encode(body); err != nil {
		// header 已写入，此时只能记录日志
		h.logger.Error("写入JSON响应失败", err)
		return err
	}
	return nil
}
