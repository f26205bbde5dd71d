package travel

// PlanActivity 行程活动
// (plan_id, day_number, order_index) 在后端唯一，保证渲染顺序确定；
// 删除行程时后端级联删除活动
type PlanActivity struct {
	ID              string  `json:"id,omitempty"`
	PlanID          string  `json:"plan_id"`
	DayNumber       int     `json:"day_number"`
	OrderIndex      int     `json:"order_index"`
	Title           string  `json:"title"`
	Description     string  `json:"description,omitempty"`
	Location        string  `json:"location,omitempty"`
	TimeSlot        string  `json:"time_slot,omitempty"`  // morning/afternoon/evening
	StartTime       string  `json:"start_time,omitempty"` // HH:MM
	EndTime         string  `json:"end_time,omitempty"`
	DurationMinutes int     `json:"duration_minutes,omitempty"`
	EstimatedCost   float64 `json:"estimated_cost,omitempty"`
}
