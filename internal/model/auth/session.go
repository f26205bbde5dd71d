package auth

import (
	"time"
)

// Session 会话
// Token对客户端是不透明的：有效性永远由后端 validate_session 判定，
// 客户端最多做本地过期预检
type Session struct {
	Token    string    `json:"session_token"`
	UserID   string    `json:"user_id"`
	IssuedAt time.Time `json:"issued_at,omitempty"`
	Remember bool      `json:"remember,omitempty"` // 是否持久化到本地存储
}

// ValidateSessionRow validate_session RPC 的返回行
type ValidateSessionRow struct {
	IsValid     bool   `json:"is_valid"`
	UserID      string `json:"user_id,omitempty"`
	Username    string `json:"username,omitempty"`
	DisplayName string `json:"display_name,omitempty"`
}

// AuthenticateRow authenticate_user RPC 的返回行
type AuthenticateRow struct {
	IsValid     bool   `json:"is_valid"`
	UserID      string `json:"user_id,omitempty"`
	Username    string `json:"username,omitempty"`
	DisplayName string `json:"display_name,omitempty"`
}

// SessionRow create_user_session RPC 的返回行
type SessionRow struct {
	SessionToken string `json:"session_token"`
}
