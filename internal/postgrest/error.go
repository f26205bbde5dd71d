package postgrest

import (
	"encoding/json"
	"fmt"
)

// 常见的 PostgREST 错误码
const (
	CodeNoRows        = "PGRST116" // 期望单行但返回0行
	CodeFKViolation   = "23503"    // 外键约束失败
	CodeUniqueFailure = "23505"    // 唯一约束失败
)

// Error 后端错误信封
// 2xx 之外的响应按 PostgREST 的 JSON 错误体解析；
// 传输层错误也归一到这个结构，Code 为空。
type Error struct {
	Message string `json:"message"`
	Code    string `json:"code,omitempty"`
	Details string `json:"details,omitempty"`
	Hint    string `json:"hint,omitempty"`
	Status  int    `json:"-"` // HTTP状态码，传输错误时为0
}

// Error 实现 error 接口
func (e *Error) Error() string {
	if e.Code != "" {
		return fmt.Sprintf("postgrest: %s (code=%s)", e.Message, e.Code)
	}
	return "postgrest: " + e.Message
}

// IsUniqueViolation 是否唯一约束冲突（如用户名已存在）
func (e *Error) IsUniqueViolation() bool {
	return e.Code == CodeUniqueFailure
}

// parseErrorBody 解析错误响应体
// 后端信封缺失或不是JSON时，退化为原始文本
func parseErrorBody(status int, body []byte) *Error {
	e := &Error{Status: status}
	if len(body) > 0 {
		if err := json.Unmarshal(body, e); err != nil || e.Message == "" {
			e.Message = string(body)
		}
	}
	if e.Message == "" {
		e.Message = fmt.Sprintf("request failed with status %d", status)
	}
	return e
}

// transportError 将网络层错误归一为 *Error
func transportError(err error) *Error {
	return &Error{Message: err.Error()}
}
