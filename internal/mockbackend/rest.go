package mockbackend

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
)

// restError PostgREST 风格的错误响应
func restError(c *gin.Context, status int, code, message string) {
	c.AbortWithStatusJSON(status, gin.H{
		"message": message,
		"code":    code,
	})
}

// requireAPIKey 校验 apikey 请求头
func (s *Server) requireAPIKey() gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.GetHeader("apikey") == "" {
			restError(c, http.StatusUnauthorized, "401", "No API key found in request")
			return
		}
		c.Next()
	}
}

// sessionUserID 从 Authorization 头解析出会话用户
// 匿名key或无效token都视为未登录，不报错
func (s *Server) sessionUserID(c *gin.Context) (string, bool) {
	header := c.GetHeader("Authorization")
	token, ok := strings.CutPrefix(header, "Bearer ")
	if !ok || token == "" {
		return "", false
	}
	if _, err := s.jwtUtil.ValidateToken(token); err != nil {
		return "", false
	}
	return s.store.SessionUser(token)
}

// handleSelect GET /rest/v1/{table}
func (s *Server) handleSelect(c *gin.Context) {
	q := parseQuery(c.Request.URL.Query())
	rows, ok := s.store.Select(c.Param("table"), q)
	if !ok {
		restError(c, http.StatusNotFound, "42P01", "relation does not exist")
		return
	}
	c.JSON(http.StatusOK, rows)
}

// handleInsert POST /rest/v1/{table}
// Prefer 带 resolution=merge-duplicates 时按冲突键合并
func (s *Server) handleInsert(c *gin.Context) {
	table := c.Param("table")
	records, err := bindRecords(c)
	if err != nil {
		restError(c, http.StatusBadRequest, "400", "invalid request body")
		return
	}

	if strings.Contains(c.GetHeader("Prefer"), "resolution=merge-duplicates") {
		rows, ok := s.store.Upsert(table, records)
		if !ok {
			restError(c, http.StatusNotFound, "42P01", "relation does not exist")
			return
		}
		c.JSON(http.StatusCreated, rows)
		return
	}

	// 用户表的用户名唯一约束
	if table == "app_users" {
		for _, r := range records {
			if username, _ := r["username"].(string); username != "" {
				if s.store.FindOne(table, "username", username) != nil {
					restError(c, http.StatusConflict, "23505",
						"duplicate key value violates unique constraint")
					return
				}
			}
		}
	}

	rows, ok := s.store.Insert(table, records)
	if !ok {
		restError(c, http.StatusNotFound, "42P01", "relation does not exist")
		return
	}
	c.JSON(http.StatusCreated, rows)
}

// handleUpdate PATCH /rest/v1/{table}
func (s *Server) handleUpdate(c *gin.Context) {
	var patch row
	if err := c.ShouldBindJSON(&patch); err != nil {
		restError(c, http.StatusBadRequest, "400", "invalid request body")
		return
	}

	q := parseQuery(c.Request.URL.Query())
	rows, ok := s.store.Update(c.Param("table"), q, patch)
	if !ok {
		restError(c, http.StatusNotFound, "42P01", "relation does not exist")
		return
	}
	c.JSON(http.StatusOK, rows)
}

// handleDelete DELETE /rest/v1/{table}
// 已登录用户删除行程时校验归属；零行命中返回空数组（幂等）
func (s *Server) handleDelete(c *gin.Context) {
	table := c.Param("table")
	q := parseQuery(c.Request.URL.Query())

	if table == "travel_plans" {
		if userID, ok := s.sessionUserID(c); ok {
			matched, _ := s.store.Select(table, q)
			for _, r := range matched {
				if owner, _ := r["user_id"].(string); owner != "" && owner != userID {
					restError(c, http.StatusForbidden, "42501", "permission denied for travel_plans")
					return
				}
			}
		}
	}

	rows, ok := s.store.Delete(table, q)
	if !ok {
		restError(c, http.StatusNotFound, "42P01", "relation does not exist")
		return
	}
	c.JSON(http.StatusOK, rows)
}

// bindRecords 解析请求体为一行或多行
func bindRecords(c *gin.Context) ([]row, error) {
	raw, err := c.GetRawData()
	if err != nil {
		return nil, err
	}

	var records []row
	if err := json.Unmarshal(raw, &records); err == nil {
		return records, nil
	}

	var single row
	if err := json.Unmarshal(raw, &single); err != nil {
		return nil, err
	}
	return []row{single}, nil
}
