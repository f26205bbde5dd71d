package postgrest

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
)

// RPC 调用服务端存储过程 POST /rest/v1/rpc/{fn}
// params 为具名参数对象；out 非 nil 时反序列化响应体。
// 与 QueryBuilder 不同，RPC 面向会话层，直接以 error 形式返回失败。
func (c *Client) RPC(ctx context.Context, fn string, params any, out any) error {
	payload, err := json.Marshal(params)
	if err != nil {
		return transportError(err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost,
		c.baseURL+"/rest/v1/rpc/"+fn, bytes.NewReader(payload))
	if err != nil {
		return transportError(err)
	}
	c.setAuthHeaders(req)
	req.Header.Set("Prefer", "return=representation")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return transportError(err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return transportError(err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return parseErrorBody(resp.StatusCode, raw)
	}

	if out != nil && len(raw) > 0 {
		if err := json.Unmarshal(raw, out); err != nil {
			return transportError(err)
		}
	}
	return nil
}
