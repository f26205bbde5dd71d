package postgrest

import (
	"net/http"
	"strings"

	"tripflow/internal/config"
)

// TokenProvider 返回当前会话token；为空时请求回退到 anon key
type TokenProvider func() string

// Client PostgREST 客户端
// 职责: 绑定后端地址与密钥，提供 From/RPC 两个入口；
// 所有请求共用一个带超时的 http.Client。
type Client struct {
	baseURL    string
	anonKey    string
	token      TokenProvider
	httpClient *http.Client
}

// NewClient 创建 PostgREST 客户端
func NewClient(cfg *config.SupabaseConfig) *Client {
	return &Client{
		baseURL: strings.TrimRight(cfg.URL, "/"),
		anonKey: cfg.AnonKey,
		httpClient: &http.Client{
			Timeout: cfg.Timeout,
		},
	}
}

// SetTokenProvider 设置会话token来源（登录后由会话层注入）
func (c *Client) SetTokenProvider(fn TokenProvider) {
	c.token = fn
}

// From 绑定资源表，返回查询构建器
func (c *Client) From(table string) *QueryBuilder {
	return newQueryBuilder(c, table)
}

// bearerToken 选择请求使用的Bearer凭证
func (c *Client) bearerToken() string {
	if c.token != nil {
		if t := c.token(); t != "" {
			return t
		}
	}
	return c.anonKey
}

// setAuthHeaders 设置 PostgREST 必需的认证头
func (c *Client) setAuthHeaders(req *http.Request) {
	req.Header.Set("apikey", c.anonKey)
	req.Header.Set("Authorization", "Bearer "+c.bearerToken())
	req.Header.Set("Content-Type", "application/json")
}
