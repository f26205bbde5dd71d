package auth

import (
	"time"
)

// User 用户实体
// ID使用UUID格式（string），由后端生成
type User struct {
	ID          string        `json:"id"`
	Username    string        `json:"username,omitempty"`     // 用户名（唯一，account登录方式必填）
	Email       string        `json:"email,omitempty"`        // 邮箱
	Phone       string        `json:"phone,omitempty"`        // 手机号
	DisplayName string        `json:"display_name,omitempty"` // 显示名称
	AvatarURL   string        `json:"avatar_url,omitempty"`   // 头像URL（后端托管，客户端视为不透明字符串）
	Provider    LoginProvider `json:"provider,omitempty"`     // 登录方式
	Role        UserRole      `json:"role,omitempty"`         // 角色
	CreatedAt   time.Time     `json:"created_at,omitempty"`
	UpdatedAt   time.Time     `json:"updated_at,omitempty"`
}

// Credential 带密码字段的用户行
// 仅登录回退路径读取；正常登录走 authenticate_user RPC，密码不出库
type Credential struct {
	User
	Password     string `json:"password,omitempty"`      // 历史数据遗留的明文密码
	PasswordHash string `json:"password_hash,omitempty"` // bcrypt 散列
}

// LoginProvider 登录方式
type LoginProvider string

const (
	ProviderAccount LoginProvider = "account" // 账号密码
	ProviderWechat  LoginProvider = "wechat"  // 微信授权
)

// IsValid 检查登录方式是否有效
func (p LoginProvider) IsValid() bool {
	return p == ProviderAccount || p == ProviderWechat
}

// UserRole 用户角色
type UserRole string

const (
	RoleUser  UserRole = "user"  // 普通用户
	RoleAdmin UserRole = "admin" // 管理员
)

// IsValid 检查角色是否有效
func (r UserRole) IsValid() bool {
	return r == RoleUser || r == RoleAdmin
}

// String 返回角色字符串
func (r UserRole) String() string {
	return string(r)
}
