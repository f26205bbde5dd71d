package travel

import (
	"context"
	"time"

	"tripflow/internal/model/travel"
	"tripflow/internal/postgrest"
)

const plansTable = "travel_plans"

// PlanRepo 行程仓库
type PlanRepo struct {
	client *postgrest.Client
}

// NewPlanRepo 创建行程仓库
func NewPlanRepo(client *postgrest.Client) *PlanRepo {
	return &PlanRepo{client: client}
}

// GetByUserID 获取用户的行程，按创建时间倒序
// status 为空时不过滤状态
func (r *PlanRepo) GetByUserID(ctx context.Context, userID string, status travel.PlanStatus) ([]*travel.TravelPlan, error) {
	q := r.client.From(plansTable).
		Select("*").
		Eq("user_id", userID)
	if status != "" {
		q = q.Eq("status", string(status))
	}

	var plans []*travel.TravelPlan
	res := q.Order("created_at", false).Execute(ctx)
	if err := res.Into(&plans); err != nil {
		return nil, err
	}
	return plans, nil
}

// GetByID 按主键获取行程
func (r *PlanRepo) GetByID(ctx context.Context, id string) (*travel.TravelPlan, error) {
	var plans []*travel.TravelPlan
	res := r.client.From(plansTable).
		Select("*").
		Eq("id", id).
		Single().
		Execute(ctx)
	if err := res.Into(&plans); err != nil {
		return nil, err
	}
	if len(plans) == 0 {
		return nil, nil
	}
	return plans[0], nil
}

// List 获取公开行程列表（限制数量避免性能问题）
func (r *PlanRepo) List(ctx context.Context, limit int) ([]*travel.TravelPlan, error) {
	var plans []*travel.TravelPlan
	res := r.client.From(plansTable).
		Select("*").
		Order("created_at", false).
		Limit(limit).
		Execute(ctx)
	if err := res.Into(&plans); err != nil {
		return nil, err
	}
	return plans, nil
}

// Create 创建行程，请求 representation 返回以拿到生成的ID
func (r *PlanRepo) Create(ctx context.Context, plan *travel.TravelPlan) (*travel.TravelPlan, error) {
	if plan.Status == "" {
		plan.Status = travel.StatusPlanned
	}

	var plans []*travel.TravelPlan
	res := r.client.From(plansTable).
		Insert(plan).
		Execute(ctx)
	if err := res.Into(&plans); err != nil {
		return nil, err
	}
	if len(plans) == 0 {
		return nil, nil
	}
	return plans[0], nil
}

// Update 按主键部分更新
func (r *PlanRepo) Update(ctx context.Context, id string, patch map[string]any) (*travel.TravelPlan, error) {
	patch["updated_at"] = time.Now().UTC().Format(time.RFC3339)

	var plans []*travel.TravelPlan
	res := r.client.From(plansTable).
		Update(patch).
		Eq("id", id).
		Execute(ctx)
	if err := res.Into(&plans); err != nil {
		return nil, err
	}
	if len(plans) == 0 {
		return nil, nil
	}
	return plans[0], nil
}

// Delete 按主键删除
// 零行命中不报错；关联活动由后端级联删除
func (r *PlanRepo) Delete(ctx context.Context, id string) error {
	res := r.client.From(plansTable).
		Delete().
		Eq("id", id).
		Execute(ctx)
	if res.Error != nil {
		return res.Error
	}
	return nil
}
