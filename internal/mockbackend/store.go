package mockbackend

import (
	"sync"
	"time"

	"tripflow/internal/pkg/id"
)

// row 一条表记录，字段名与 JSON 列名一致
type row = map[string]any

// Store 内存数据存储
// 只为本地开发与测试服务：进程退出即消失，无持久化
type Store struct {
	mu       sync.RWMutex
	tables   map[string][]row
	sessions map[string]string // session token -> user_id，登出后移除
}

// NewStore 创建内存存储并灌入种子数据
func NewStore() *Store {
	s := &Store{
		tables: map[string][]row{
			"app_users":       {},
			"travel_plans":    {},
			"plan_activities": {},
			"destinations":    {},
		},
		sessions: make(map[string]string),
	}
	s.seedDestinations()
	return s
}

// Select 按过滤条件查询，返回行的副本
func (s *Store) Select(table string, q *query) ([]row, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, ok := s.tables[table]
	if !ok {
		return nil, false
	}

	matched := make([]row, 0)
	for _, r := range rows {
		if q.matches(r) {
			matched = append(matched, cloneRow(r))
		}
	}
	return q.sortAndLimit(matched), true
}

// Insert 插入记录，补齐 id 与时间戳
func (s *Store) Insert(table string, records []row) ([]row, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.tables[table]; !ok {
		return nil, false
	}

	now := time.Now().UTC().Format(time.RFC3339)
	inserted := make([]row, 0, len(records))
	for _, r := range records {
		if r["id"] == nil || r["id"] == "" {
			r["id"] = id.New()
		}
		if r["created_at"] == nil {
			r["created_at"] = now
		}
		r["updated_at"] = now
		s.tables[table] = append(s.tables[table], r)
		inserted = append(inserted, cloneRow(r))
	}
	return inserted, true
}

// Upsert 按冲突键合并插入
// app_users 以 username 为冲突键，其余表以 id 为冲突键
func (s *Store) Upsert(table string, records []row) ([]row, bool) {
	conflictKey := "id"
	if table == "app_users" {
		conflictKey = "username"
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	rows, ok := s.tables[table]
	if !ok {
		return nil, false
	}

	now := time.Now().UTC().Format(time.RFC3339)
	result := make([]row, 0, len(records))
	for _, r := range records {
		merged := false
		key := r[conflictKey]
		if key != nil && key != "" {
			for _, existing := range rows {
				if existing[conflictKey] == key {
					for k, v := range r {
						if k == "id" || k == "created_at" {
							continue
						}
						existing[k] = v
					}
					existing["updated_at"] = now
					result = append(result, cloneRow(existing))
					merged = true
					break
				}
			}
		}
		if !merged {
			if r["id"] == nil || r["id"] == "" {
				r["id"] = id.New()
			}
			if r["created_at"] == nil {
				r["created_at"] = now
			}
			r["updated_at"] = now
			s.tables[table] = append(s.tables[table], r)
			result = append(result, cloneRow(r))
		}
	}
	return result, true
}

// Update 按过滤条件部分更新，返回更新后的行
func (s *Store) Update(table string, q *query, patch row) ([]row, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	rows, ok := s.tables[table]
	if !ok {
		return nil, false
	}

	now := time.Now().UTC().Format(time.RFC3339)
	updated := make([]row, 0)
	for _, r := range rows {
		if !q.matches(r) {
			continue
		}
		for k, v := range patch {
			if k == "id" {
				continue
			}
			r[k] = v
		}
		r["updated_at"] = now
		updated = append(updated, cloneRow(r))
	}
	return updated, true
}

// Delete 按过滤条件删除，返回被删除的行；零行命中不算错误
func (s *Store) Delete(table string, q *query) ([]row, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	rows, ok := s.tables[table]
	if !ok {
		return nil, false
	}

	kept := rows[:0]
	deleted := make([]row, 0)
	for _, r := range rows {
		if q.matches(r) {
			deleted = append(deleted, cloneRow(r))
		} else {
			kept = append(kept, r)
		}
	}
	s.tables[table] = kept
	return deleted, true
}

// FindOne 按单列等值查找第一条记录
func (s *Store) FindOne(table, column string, value any) row {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, r := range s.tables[table] {
		if r[column] == value {
			return cloneRow(r)
		}
	}
	return nil
}

// PutSession 记录会话token
func (s *Store) PutSession(token, userID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sessions[token] = userID
}

// SessionUser 查询会话token对应的用户，登出后不再命中
func (s *Store) SessionUser(token string) (string, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	userID, ok := s.sessions[token]
	return userID, ok
}

// DropSession 移除会话token，幂等
func (s *Store) DropSession(token string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.sessions, token)
}

func cloneRow(r row) row {
	c := make(row, len(r))
	for k, v := range r {
		c[k] = v
	}
	return c
}

// seedDestinations 景点种子数据
func (s *Store) seedDestinations() {
	seeds := []row{
		{"name": "三亚", "description": "热带海滨度假胜地，椰林沙滩与潜水天堂", "category": "海岛", "region": "海南", "rating": 4.8, "is_featured": true},
		{"name": "丽江古城", "description": "纳西族古城，雪山脚下的慢生活", "category": "古镇", "region": "云南", "rating": 4.7, "is_featured": true},
		{"name": "西安", "description": "十三朝古都，兵马俑与城墙夜景", "category": "历史", "region": "陕西", "rating": 4.6, "is_featured": true},
		{"name": "张家界", "description": "奇峰林立的世界自然遗产", "category": "自然", "region": "湖南", "rating": 4.7, "is_featured": true},
		{"name": "成都", "description": "美食之都，大熊猫与宽窄巷子", "category": "美食", "region": "四川", "rating": 4.8, "is_featured": true},
		{"name": "杭州西湖", "description": "湖光山色，人间天堂", "category": "自然", "region": "浙江", "rating": 4.5, "is_featured": false},
		{"name": "厦门鼓浪屿", "description": "万国建筑与文艺小店的海上花园", "category": "海岛", "region": "福建", "rating": 4.4, "is_featured": false},
		{"name": "北京故宫", "description": "明清两代皇宫，世界最大宫殿建筑群", "category": "历史", "region": "北京", "rating": 4.9, "is_featured": true},
	}

	now := time.Now().UTC().Format(time.RFC3339)
	for _, r := range seeds {
		r["id"] = id.New()
		r["created_at"] = now
		r["updated_at"] = now
		s.tables["destinations"] = append(s.tables["destinations"], r)
	}
}
