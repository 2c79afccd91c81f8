package middleware

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"sinpd-backend/shared/database"
	"sinpd-backend/shared/database/models/notification"
)

// UnifiedResponse represents the standard API response format
type UnifiedResponse struct {
	Success bool        `json:"success"`
	Message string      `json:"message"`
	Data    interface{} `json:"data,omitempty"`
	Error   *ErrorInfo  `json:"error,omitempty"`
	Meta    *MetaInfo   `json:"meta"`
}

// ErrorInfo represents error details
type ErrorInfo struct {
	Code    string `json:"code"`
	Details string `json:"details"`
}

// MetaInfo represents response metadata
type MetaInfo struct {
	RequestID     string `json:"request_id"`
	Timestamp     string `json:"timestamp"`
	ExecutionTime string `json:"execution_time"`
	Method        string `json:"method"`
	Path          string `json:"path"`
}

// responseWriter wraps gin.ResponseWriter to capture response
type responseWriter struct {
	gin.ResponseWriter
	body   *bytes.Buffer
	status int
}

func (w *responseWriter) Write(b []byte) (int, error) {
	return w.body.Write(b)
}

func (w *responseWriter) WriteHeader(status int) {
	w.status = status
}

// UnifiedResponseMiddleware transforms JSON service responses into the
// gateway envelope and records a request log row for every call.
// Binary routes (exports, PDF, websocket upgrades) pass through
// untouched.
func UnifiedResponseMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		startTime := time.Now()

		requestID := uuid.New().String()
		c.Set("request_id", requestID)
		c.Header("X-Request-ID", requestID)

		if shouldSkipUnifiedResponse(c.Request.URL.Path) {
			c.Next()
			go saveRequestLogAsync(c, c.Writer.Status(), requestID, time.Since(startTime))
			return
		}

		w := &responseWriter{
			ResponseWriter: c.Writer,
			body:           &bytes.Buffer{},
			status:         200,
		}
		c.Writer = w

		c.Next()

		executionTime := time.Since(startTime)
		statusCode := w.status

		unified := transformToUnifiedResponse(c, w.body.String(), statusCode, requestID, executionTime)

		// The envelope changes the body size, the proxied length no
		// longer applies.
		w.ResponseWriter.Header().Del("Content-Length")
		w.ResponseWriter.Header().Set("Content-Type", "application/json")
		w.ResponseWriter.WriteHeader(statusCode)
		json.NewEncoder(w.ResponseWriter).Encode(unified)

		go saveRequestLogAsync(c, statusCode, requestID, executionTime)
	}
}

// shouldSkipUnifiedResponse names the routes whose bodies are not JSON
func shouldSkipUnifiedResponse(path string) bool {
	switch {
	case strings.HasPrefix(path, "/swagger"):
		return true
	case strings.HasPrefix(path, "/api/export/"):
		return true
	case strings.HasSuffix(path, "/pdf"):
		return true
	case strings.HasSuffix(path, "/download"):
		return true
	case strings.HasPrefix(path, "/api/notifications/ws"):
		return true
	}
	return false
}

// transformToUnifiedResponse converts original response to unified format
func transformToUnifiedResponse(c *gin.Context, originalResponse string, statusCode int, requestID string, executionTime time.Duration) UnifiedResponse {
	isSuccess := statusCode >= 200 && statusCode < 300

	unified := UnifiedResponse{
		Success: isSuccess,
		Message: getAutoMessage(c.Request.Method, statusCode, isSuccess),
		Meta: &MetaInfo{
			RequestID:     requestID,
			Timestamp:     time.Now().UTC().Format(time.RFC3339),
			ExecutionTime: fmt.Sprintf("%dms", executionTime.Milliseconds()),
			Method:        c.Request.Method,
			Path:          c.Request.URL.Path,
		},
	}

	if originalResponse == "" {
		return unified
	}

	var originalData interface{}
	if err := json.Unmarshal([]byte(originalResponse), &originalData); err != nil {
		if !isSuccess {
			unified.Error = &ErrorInfo{Code: getErrorCode(statusCode), Details: originalResponse}
		}
		return unified
	}

	if isSuccess {
		if dataMap, ok := originalData.(map[string]interface{}); ok {
			if data, exists := dataMap["data"]; exists {
				unified.Data = data
			} else {
				unified.Data = originalData
			}
			if msg, exists := dataMap["message"]; exists {
				if msgStr, ok := msg.(string); ok && msgStr != "" {
					unified.Message = msgStr
				}
			}
		} else {
			unified.Data = originalData
		}
		return unified
	}

	unified.Error = &ErrorInfo{Code: getErrorCode(statusCode), Details: originalResponse}
	if errorMap, ok := originalData.(map[string]interface{}); ok {
		if errMsg, exists := errorMap["error"]; exists {
			unified.Error.Details = fmt.Sprintf("%v", errMsg)
		}
		// Services put the human-readable Indonesian text in "message".
		if msg, exists := errorMap["message"]; exists {
			if msgStr, ok := msg.(string); ok && msgStr != "" {
				unified.Message = msgStr
			}
		}
	}
	return unified
}

// getAutoMessage generates appropriate success/error messages
func getAutoMessage(method string, statusCode int, isSuccess bool) string {
	if isSuccess {
		switch method {
		case "POST":
			return "Data berhasil disimpan"
		case "PUT", "PATCH":
			return "Data berhasil diperbarui"
		case "DELETE":
			return "Data berhasil dihapus"
		default:
			return "Data berhasil diambil"
		}
	}

	switch statusCode {
	case 400:
		return "Permintaan tidak valid"
	case 401:
		return "Autentikasi diperlukan"
	case 403:
		return "Akses ditolak"
	case 404:
		return "Data tidak ditemukan"
	case 409:
		return "Terjadi konflik data"
	case 422:
		return "Validasi gagal"
	case 429:
		return "Terlalu banyak permintaan"
	default:
		return "Terjadi kesalahan pada server"
	}
}

// getErrorCode generates error codes based on status
func getErrorCode(statusCode int) string {
	switch statusCode {
	case 400:
		return "BAD_REQUEST"
	case 401:
		return "UNAUTHORIZED"
	case 403:
		return "FORBIDDEN"
	case 404:
		return "NOT_FOUND"
	case 409:
		return "CONFLICT"
	case 422:
		return "VALIDATION_ERROR"
	case 429:
		return "RATE_LIMITED"
	case 500:
		return "INTERNAL_ERROR"
	default:
		return "UNKNOWN_ERROR"
	}
}

// saveRequestLogAsync persists the gateway request log off the hot path
func saveRequestLogAsync(c *gin.Context, statusCode int, requestID string, executionTime time.Duration) {
	defer func() {
		if r := recover(); r != nil {
			fmt.Printf("Request log failed: %v\n", r)
		}
	}()

	var userID *uuid.UUID
	if userIDStr, exists := c.Get("user_id"); exists {
		if id, err := uuid.Parse(fmt.Sprintf("%v", userIDStr)); err == nil {
			userID = &id
		}
	}

	entry := notification.RequestLog{
		UserID:     userID,
		Method:     c.Request.Method,
		Path:       c.Request.URL.Path,
		StatusCode: statusCode,
		IPAddress:  c.ClientIP(),
		Duration:   executionTime.Milliseconds(),
		RequestID:  requestID,
	}

	if db := database.GetDB(); db != nil {
		db.Create(&entry)
	}
}
