package response

import (
	"net/http"
	"net/url"

	"github.com/gin-gonic/gin"
)

// Response 统一响应结构，internal/client 按同一结构解码
// code 为 0 表示成功；details 仅在错误需要补充说明时出现（缺失列、失败字段、可选值）
type Response struct {
	Code    int         `json:"code"`
	Message string      `json:"message"`
	Data    interface{} `json:"data,omitempty"`
	Details string      `json:"details,omitempty"`
}

// CodeInternal 未归类的服务端错误
const CodeInternal = 50000

func write(c *gin.Context, status int, body Response) {
	c.JSON(status, body)
}

// ── 成功 ──

// OK 200
func OK(c *gin.Context, data interface{}) {
	write(c, http.StatusOK, Response{Message: "success", Data: data})
}

// Created 201，用于新建委员会与配置
func Created(c *gin.Context, data interface{}) {
	write(c, http.StatusCreated, Response{Message: "success", Data: data})
}

// Accepted 202，求解任务已入队
func Accepted(c *gin.Context, data interface{}) {
	write(c, http.StatusAccepted, Response{Message: "accepted", Data: data})
}

// Attachment 以附件形式返回导出文件，文件名按 RFC 5987 编码
func Attachment(c *gin.Context, filename, contentType string, data []byte) {
	c.Header("Content-Disposition", "attachment; filename*=UTF-8''"+url.PathEscape(filename))
	c.Data(http.StatusOK, contentType, data)
}

// ── 错误 ──

// Error 通用错误
func Error(c *gin.Context, httpStatus int, code int, message string) {
	write(c, httpStatus, Response{Code: code, Message: message})
}

// ErrorWithDetails 带补充说明的错误
func ErrorWithDetails(c *gin.Context, httpStatus int, code int, message, details string) {
	write(c, httpStatus, Response{Code: code, Message: message, Details: details})
}

func BadRequest(c *gin.Context, code int, message string) {
	Error(c, http.StatusBadRequest, code, message)
}

func Unauthorized(c *gin.Context, code int, message string) {
	Error(c, http.StatusUnauthorized, code, message)
}

func Forbidden(c *gin.Context, code int, message string) {
	Error(c, http.StatusForbidden, code, message)
}

func NotFound(c *gin.Context, code int, message string) {
	Error(c, http.StatusNotFound, code, message)
}

// Conflict 409，data 携带冲突状态（solved / solving / stalled / ended）
func Conflict(c *gin.Context, code int, message string, data interface{}) {
	write(c, http.StatusConflict, Response{Code: code, Message: message, Data: data})
}

// UnprocessableEntity 422，名册内容无法导入
func UnprocessableEntity(c *gin.Context, code int, message, details string) {
	ErrorWithDetails(c, http.StatusUnprocessableEntity, code, message, details)
}

// InternalError 500，具体原因只记录在日志中
func InternalError(c *gin.Context) {
	Error(c, http.StatusInternalServerError, CodeInternal, "服务器内部错误")
}
