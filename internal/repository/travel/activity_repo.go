package travel

import (
	"context"

	"tripflow/internal/model/travel"
	"tripflow/internal/postgrest"
)

const activitiesTable = "plan_activities"

// ActivityRepo 行程活动仓库
type ActivityRepo struct {
	client *postgrest.Client
}

// NewActivityRepo 创建行程活动仓库
func NewActivityRepo(client *postgrest.Client) *ActivityRepo {
	return &ActivityRepo{client: client}
}

// GetByPlanID 获取行程的全部活动，按天和顺序索引排序
func (r *ActivityRepo) GetByPlanID(ctx context.Context, planID string) ([]*travel.PlanActivity, error) {
	var activities []*travel.PlanActivity
	res := r.client.From(activitiesTable).
		Select("*").
		Eq("plan_id", planID).
		Order("day_number", true).
		Order("order_index", true).
		Execute(ctx)
	if err := res.Into(&activities); err != nil {
		return nil, err
	}
	return activities, nil
}

// ReplaceForPlan 整体重写行程活动：先删后插
// 两步之间没有事务，失败会留下空活动列表，调用方需重试整批
func (r *ActivityRepo) ReplaceForPlan(ctx context.Context, planID string, activities []*travel.PlanActivity) ([]*travel.PlanActivity, error) {
	if err := r.DeleteByPlanID(ctx, planID); err != nil {
		return nil, err
	}
	if len(activities) == 0 {
		return nil, nil
	}

	// 调用方给了任何顺序索引就视为权威，只在整批缺省时按天补齐
	fillOrder := true
	for _, a := range activities {
		if a.OrderIndex != 0 {
			fillOrder = false
			break
		}
	}

	perDay := make(map[int]int)
	for _, a := range activities {
		a.PlanID = planID
		if a.DayNumber == 0 {
			a.DayNumber = 1
		}
		if fillOrder {
			a.OrderIndex = perDay[a.DayNumber]
			perDay[a.DayNumber]++
		}
	}

	var saved []*travel.PlanActivity
	res := r.client.From(activitiesTable).
		Insert(activities).
		Execute(ctx)
	if err := res.Into(&saved); err != nil {
		return nil, err
	}
	return saved, nil
}

// DeleteByPlanID 删除行程的全部活动
func (r *ActivityRepo) DeleteByPlanID(ctx context.Context, planID string) error {
	res := r.client.From(activitiesTable).
		Delete().
		Eq("plan_id", planID).
		Execute(ctx)
	if res.Error != nil {
		return res.Error
	}
	return nil
}
