package mockbackend

import (
	"net/url"
	"sort"
	"strconv"
	"strings"
)

// filter 单个列过滤条件
type filter struct {
	column string
	op     string
	value  string
}

// orderSpec 排序指令
type orderSpec struct {
	column string
	asc    bool
}

// query 解析后的查询：顶层过滤为 AND，or 组内为 OR
type query struct {
	filters  []filter
	orGroups [][]filter
	orders   []orderSpec
	limit    int // 0 表示不限制
}

// 非过滤用途的保留参数
var reservedParams = map[string]bool{
	"select": true,
	"order":  true,
	"limit":  true,
	"offset": true,
	"or":     true,
}

// parseQuery 解析 PostgREST 风格的查询串
func parseQuery(values url.Values) *query {
	q := &query{}

	for key, vals := range values {
		if reservedParams[key] {
			continue
		}
		for _, v := range vals {
			if f, ok := parseFilter(key, v); ok {
				q.filters = append(q.filters, f)
			}
		}
	}

	for _, v := range values["or"] {
		group := parseOrGroup(v)
		if len(group) > 0 {
			q.orGroups = append(q.orGroups, group)
		}
	}

	for _, v := range values["order"] {
		column, direction, _ := strings.Cut(v, ".")
		q.orders = append(q.orders, orderSpec{
			column: column,
			asc:    direction != "desc",
		})
	}

	if v := values.Get("limit"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			q.limit = n
		}
	}

	return q
}

// parseFilter 解析 col=op.value 形式的过滤条件
func parseFilter(column, expr string) (filter, bool) {
	op, value, ok := strings.Cut(expr, ".")
	if !ok {
		return filter{}, false
	}
	return filter{column: column, op: op, value: value}, true
}

// parseOrGroup 解析 or=(cond1,cond2,...) 组
// 组内每个条件是 col.op.value 形式
func parseOrGroup(expr string) []filter {
	expr = strings.TrimPrefix(expr, "(")
	expr = strings.TrimSuffix(expr, ")")

	var group []filter
	for _, cond := range strings.Split(expr, ",") {
		parts := strings.SplitN(cond, ".", 3)
		if len(parts) != 3 {
			continue
		}
		group = append(group, filter{column: parts[0], op: parts[1], value: parts[2]})
	}
	return group
}

// matches 行是否满足全部过滤条件
func (q *query) matches(r row) bool {
	for _, f := range q.filters {
		if !f.match(r) {
			return false
		}
	}
	for _, group := range q.orGroups {
		anyHit := false
		for _, f := range group {
			if f.match(r) {
				anyHit = true
				break
			}
		}
		if !anyHit {
			return false
		}
	}
	return true
}

// match 单条件求值
func (f filter) match(r row) bool {
	cell := cellString(r[f.column])

	switch f.op {
	case "eq":
		return cell == f.value
	case "neq":
		return cell != f.value
	case "ilike":
		return matchILike(cell, f.value)
	case "gt", "gte", "lt", "lte":
		a, errA := strconv.ParseFloat(cell, 64)
		b, errB := strconv.ParseFloat(f.value, 64)
		if errA != nil || errB != nil {
			return false
		}
		switch f.op {
		case "gt":
			return a > b
		case "gte":
			return a >= b
		case "lt":
			return a < b
		default:
			return a <= b
		}
	case "is":
		if f.value == "null" {
			return r[f.column] == nil
		}
		return cell == f.value
	default:
		return false
	}
}

// matchILike 大小写不敏感的 % 通配匹配
func matchILike(cell, pattern string) bool {
	cell = strings.ToLower(cell)
	pattern = strings.ToLower(pattern)

	leading := strings.HasPrefix(pattern, "%")
	trailing := strings.HasSuffix(pattern, "%")
	core := strings.Trim(pattern, "%")

	switch {
	case leading && trailing:
		return strings.Contains(cell, core)
	case leading:
		return strings.HasSuffix(cell, core)
	case trailing:
		return strings.HasPrefix(cell, core)
	default:
		return cell == pattern
	}
}

// sortAndLimit 应用排序与行数限制
func (q *query) sortAndLimit(rows []row) []row {
	if len(q.orders) > 0 {
		sort.SliceStable(rows, func(i, j int) bool {
			for _, o := range q.orders {
				c := compareCells(rows[i][o.column], rows[j][o.column])
				if c == 0 {
					continue
				}
				if o.asc {
					return c < 0
				}
				return c > 0
			}
			return false
		})
	}

	if q.limit > 0 && len(rows) > q.limit {
		rows = rows[:q.limit]
	}
	return rows
}

// compareCells 列值比较：数值优先，否则按字符串
func compareCells(a, b any) int {
	fa, okA := toFloat(a)
	fb, okB := toFloat(b)
	if okA && okB {
		switch {
		case fa < fb:
			return -1
		case fa > fb:
			return 1
		default:
			return 0
		}
	}
	return strings.Compare(cellString(a), cellString(b))
}

func toFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	}
	return 0, false
}

// cellString 列值的字符串形式，与客户端过滤值的序列化对齐
func cellString(v any) string {
	switch c := v.(type) {
	case nil:
		return ""
	case string:
		return c
	case bool:
		return strconv.FormatBool(c)
	case float64:
		return strconv.FormatFloat(c, 'f', -1, 64)
	case int:
		return strconv.Itoa(c)
	case int64:
		return strconv.FormatInt(c, 10)
	default:
		return ""
	}
}
