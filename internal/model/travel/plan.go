package travel

import (
	"time"
)

// TravelPlan 行程
// 归属关系（user_id）由后端外键保证，客户端只信任不校验
type TravelPlan struct {
	ID             string     `json:"id,omitempty"`
	UserID         string     `json:"user_id,omitempty"`
	Title          string     `json:"title"`
	Description    string     `json:"description,omitempty"`
	Destination    string     `json:"destination,omitempty"`
	StartDate      string     `json:"start_date,omitempty"` // YYYY-MM-DD，后端date列
	EndDate        string     `json:"end_date,omitempty"`
	Days           int        `json:"days,omitempty"`
	Travelers      int        `json:"travelers,omitempty"`
	TotalBudget    float64    `json:"total_budget,omitempty"`
	TravelStyle    string     `json:"travel_style,omitempty"` // 经济/舒适/奢华
	Status         PlanStatus `json:"status,omitempty"`
	IsAIGenerated  bool       `json:"is_ai_generated"`
	Itinerary      string     `json:"itinerary,omitempty"` // 行程正文（AI原文或手动编辑）
	Tags           []string   `json:"tags,omitempty"`
	Transportation string     `json:"transportation,omitempty"`
	Accommodation  string     `json:"accommodation,omitempty"`
	CreatedAt      time.Time  `json:"created_at,omitempty"`
	UpdatedAt      time.Time  `json:"updated_at,omitempty"`
}

// PlanStatus 行程状态
type PlanStatus string

const (
	StatusPlanned   PlanStatus = "planned"
	StatusOngoing   PlanStatus = "ongoing"
	StatusCompleted PlanStatus = "completed"
	StatusCancelled PlanStatus = "cancelled"
)

// IsValid 检查状态是否有效
func (s PlanStatus) IsValid() bool {
	switch s {
	case StatusPlanned, StatusOngoing, StatusCompleted, StatusCancelled:
		return true
	}
	return false
}

// String 返回状态字符串
func (s PlanStatus) String() string {
	return string(s)
}

// CloneForDuplicate 复制行程用于"另存一份"
// 新行程不带ID（由后端生成），is_ai_generated 复位为 false，其余字段保持克隆时点的值
func (p *TravelPlan) CloneForDuplicate() *TravelPlan {
	clone := *p
	clone.ID = ""
	clone.IsAIGenerated = false
	clone.CreatedAt = time.Time{}
	clone.UpdatedAt = time.Time{}
	if p.Tags != nil {
		clone.Tags = make([]string, len(p.Tags))
		copy(clone.Tags, p.Tags)
	}
	return &clone
}

// PlanStats 用户行程统计
type PlanStats struct {
	TotalPlans  int     `json:"total_plans"`
	TotalDays   int     `json:"total_days"`
	TotalBudget float64 `json:"total_budget"`
}
