package postgrest

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
)

// param 单个查询参数，保持追加顺序
type param struct {
	key   string
	value string
}

// QueryBuilder 流式查询构建器
// 一条链对应一次 REST 请求；读操作用查询串过滤，
// 写操作把负载放进请求体并剥离 order/limit 参数。
// 执行边界是显式的 Execute，构建器本身不发请求。
type QueryBuilder struct {
	client *Client
	table  string

	selectColumns string
	params        []param
	method        string
	body          any
	upsert        bool
}

func newQueryBuilder(c *Client, table string) *QueryBuilder {
	return &QueryBuilder{
		client:        c,
		table:         table,
		selectColumns: "*",
		method:        http.MethodGet,
	}
}

// Select 设置投影列，默认 *
func (q *QueryBuilder) Select(columns string) *QueryBuilder {
	if columns == "" {
		columns = "*"
	}
	q.selectColumns = columns
	return q
}

// Eq 追加等值过滤；多次调用为 AND 关系
func (q *QueryBuilder) Eq(column string, value any) *QueryBuilder {
	q.params = append(q.params, param{key: column, value: "eq." + formatValue(value)})
	return q
}

// Or 追加原样的 OR 过滤组（如 name.ilike.%x%,description.ilike.%x%）
// 表达式由调用方构造，不做校验
func (q *QueryBuilder) Or(conditions string) *QueryBuilder {
	q.params = append(q.params, param{key: "or", value: "(" + conditions + ")"})
	return q
}

// Order 设置排序，只对读操作有意义
func (q *QueryBuilder) Order(column string, ascending bool) *QueryBuilder {
	direction := "desc"
	if ascending {
		direction = "asc"
	}
	q.params = append(q.params, param{key: "order", value: column + "." + direction})
	return q
}

// Limit 限制返回行数
func (q *QueryBuilder) Limit(count int) *QueryBuilder {
	q.params = append(q.params, param{key: "limit", value: strconv.Itoa(count)})
	return q
}

// Single 等价于 Limit(1)
// 注意：不断言恰好一行，零行或多行匹配都不会报错（沿用既有语义）
func (q *QueryBuilder) Single() *QueryBuilder {
	q.params = append(q.params, param{key: "limit", value: "1"})
	return q
}

// Insert 插入一行或多行
func (q *QueryBuilder) Insert(data any) *QueryBuilder {
	q.method = http.MethodPost
	q.body = data
	return q
}

// Update 按已追加的过滤条件做部分更新
func (q *QueryBuilder) Update(data any) *QueryBuilder {
	q.method = http.MethodPatch
	q.body = data
	return q
}

// Upsert 插入，冲突时合并
func (q *QueryBuilder) Upsert(data any) *QueryBuilder {
	q.method = http.MethodPost
	q.body = data
	q.upsert = true
	return q
}

// Delete 按已追加的过滤条件删除
// 零行命中不是错误（幂等删除）
func (q *QueryBuilder) Delete() *QueryBuilder {
	q.method = http.MethodDelete
	return q
}

// BuildURL 组装请求URL
// 写操作剥离 order/limit；读操作补充 select 参数
func (q *QueryBuilder) BuildURL() string {
	base := q.client.baseURL + "/rest/v1/" + q.table

	var parts []string
	for _, p := range q.params {
		if q.method != http.MethodGet && (p.key == "order" || p.key == "limit") {
			continue
		}
		parts = append(parts, p.key+"="+url.QueryEscape(p.value))
	}
	if q.method == http.MethodGet {
		parts = append(parts, "select="+url.QueryEscape(q.selectColumns))
	}

	if len(parts) == 0 {
		return base
	}
	return base + "?" + strings.Join(parts, "&")
}

// Result 归一化的执行结果
// Data 与 Error 互斥：HTTP层失败与传输层失败都进 Error，不抛出
type Result struct {
	Data  json.RawMessage
	Error *Error
}

// Into 将 Data 反序列化到目标
func (r *Result) Into(v any) error {
	if r.Error != nil {
		return r.Error
	}
	if len(r.Data) == 0 {
		return nil
	}
	return json.Unmarshal(r.Data, v)
}

// Execute 执行请求
// 永不返回Go错误：所有失败形态都收敛到 Result.Error，
// 调用方必须显式检查（与后端的 {data, error} 约定一致）
func (q *QueryBuilder) Execute(ctx context.Context) *Result {
	var bodyReader io.Reader
	if q.body != nil && (q.method == http.MethodPost || q.method == http.MethodPatch) {
		payload, err := json.Marshal(q.body)
		if err != nil {
			return &Result{Error: transportError(err)}
		}
		bodyReader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, q.method, q.BuildURL(), bodyReader)
	if err != nil {
		return &Result{Error: transportError(err)}
	}

	q.client.setAuthHeaders(req)
	switch q.method {
	case http.MethodPost:
		if q.upsert {
			req.Header.Set("Prefer", "return=representation,resolution=merge-duplicates")
		} else {
			req.Header.Set("Prefer", "return=representation")
		}
	case http.MethodPatch, http.MethodDelete:
		req.Header.Set("Prefer", "return=representation")
	}

	resp, err := q.client.httpClient.Do(req)
	if err != nil {
		return &Result{Error: transportError(err)}
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return &Result{Error: transportError(err)}
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return &Result{Error: parseErrorBody(resp.StatusCode, raw)}
	}

	return &Result{Data: raw}
}

// formatValue 过滤值的字符串形式
func formatValue(value any) string {
	switch v := value.(type) {
	case string:
		return v
	case bool:
		return strconv.FormatBool(v)
	case int:
		return strconv.Itoa(v)
	case int64:
		return strconv.FormatInt(v, 10)
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	default:
		b, _ := json.Marshal(v)
		return strings.Trim(string(b), `"`)
	}
}
