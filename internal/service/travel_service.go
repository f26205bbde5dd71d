package service

import (
	"context"
	"errors"

	"github.com/rs/zerolog/log"

	"tripflow/internal/model/travel"
	"tripflow/internal/postgrest"
	travelrepo "tripflow/internal/repository/travel"
)

// 行程相关错误
var (
	ErrPlanNotFound  = errors.New("行程不存在")
	ErrPlanForbidden = errors.New("无权操作他人的行程")
	ErrEmptyTitle    = errors.New("行程标题不能为空")
)

// PlanDetail 行程详情：主记录加活动列表
// Degraded 为 true 表示活动加载失败，主记录仍可用
type PlanDetail struct {
	Plan       *travel.TravelPlan
	Activities []*travel.PlanActivity
	Degraded   bool
}

// TravelService 行程服务
// 面向会话用户的行程编排：归属检查、复制、详情聚合、统计
type TravelService struct {
	client       *postgrest.Client
	plans        *travelrepo.PlanRepo
	activities   *travelrepo.ActivityRepo
	destinations *travelrepo.DestinationRepo
	session      *SessionService
}

// NewTravelService 创建行程服务
func NewTravelService(
	client *postgrest.Client,
	plans *travelrepo.PlanRepo,
	activities *travelrepo.ActivityRepo,
	destinations *travelrepo.DestinationRepo,
	session *SessionService,
) *TravelService {
	return &TravelService{
		client:       client,
		plans:        plans,
		activities:   activities,
		destinations: destinations,
		session:      session,
	}
}

// requireUserID 取当前登录用户ID
func (s *TravelService) requireUserID() (string, error) {
	user := s.session.CurrentUser()
	if user == nil {
		return "", ErrNotLoggedIn
	}
	return user.ID, nil
}

// MyPlans 当前用户的行程列表，status 为空表示不过滤
func (s *TravelService) MyPlans(ctx context.Context, status travel.PlanStatus) ([]*travel.TravelPlan, error) {
	userID, err := s.requireUserID()
	if err != nil {
		return nil, err
	}
	return s.plans.GetByUserID(ctx, userID, status)
}

// BrowsePlans 最新行程列表，不限归属，用于发现页浏览
func (s *TravelService) BrowsePlans(ctx context.Context, limit int) ([]*travel.TravelPlan, error) {
	if limit <= 0 {
		limit = 20
	}
	return s.plans.List(ctx, limit)
}

// CreatePlan 创建行程，归属当前用户
func (s *TravelService) CreatePlan(ctx context.Context, plan *travel.TravelPlan) (*travel.TravelPlan, error) {
	userID, err := s.requireUserID()
	if err != nil {
		return nil, err
	}
	if plan.Title == "" {
		return nil, ErrEmptyTitle
	}

	plan.UserID = userID
	return s.plans.Create(ctx, plan)
}

// CreatePlanWithActivities 创建行程并写入活动列表
// 活动写入失败不回滚主记录，返回的行程仍可用，详情页按降级处理
func (s *TravelService) CreatePlanWithActivities(ctx context.Context, plan *travel.TravelPlan, activities []*travel.PlanActivity) (*travel.TravelPlan, error) {
	created, err := s.CreatePlan(ctx, plan)
	if err != nil {
		return nil, err
	}
	if created == nil || len(activities) == 0 {
		return created, nil
	}

	if _, err := s.activities.ReplaceForPlan(ctx, created.ID, activities); err != nil {
		log.Warn().Err(err).Str("plan_id", created.ID).Msg("行程活动写入失败")
	}
	return created, nil
}

// UpdatePlan 更新自己的行程
func (s *TravelService) UpdatePlan(ctx context.Context, planID string, patch map[string]any) (*travel.TravelPlan, error) {
	if _, err := s.ownedPlan(ctx, planID); err != nil {
		return nil, err
	}
	return s.plans.Update(ctx, planID, patch)
}

// DeletePlan 删除自己的行程
// 优先走 delete_travel_plan RPC（后端原子删除行程及活动并校验归属）；
// RPC 缺失时回退为客户端归属检查加两次删除
func (s *TravelService) DeletePlan(ctx context.Context, planID string) error {
	userID, err := s.requireUserID()
	if err != nil {
		return err
	}

	err = s.client.RPC(ctx, "delete_travel_plan", map[string]any{
		"p_plan_id": planID,
		"p_user_id": userID,
	}, nil)
	if err == nil {
		return nil
	}

	var pgErr *postgrest.Error
	if errors.As(err, &pgErr) {
		if pgErr.Status == 403 {
			return ErrPlanForbidden
		}
		if pgErr.Code == rpcMissingCode || pgErr.Status == 404 {
			log.Warn().Msg("后端缺少 delete_travel_plan 存储过程，回退客户端删除")
			return s.fallbackDelete(ctx, planID, userID)
		}
	}
	return err
}

// fallbackDelete 客户端归属检查加逐表删除
func (s *TravelService) fallbackDelete(ctx context.Context, planID, userID string) error {
	plan, err := s.plans.GetByID(ctx, planID)
	if err != nil {
		return err
	}
	if plan == nil {
		// 删除对客户端是幂等的，零行命中不算错误
		return nil
	}
	if plan.UserID != userID {
		return ErrPlanForbidden
	}

	if err := s.activities.DeleteByPlanID(ctx, planID); err != nil {
		return err
	}
	return s.plans.Delete(ctx, planID)
}

// DuplicatePlan 复制行程为当前用户的新行程
// 可以复制他人的公开行程；新行程不继承AI生成标记
func (s *TravelService) DuplicatePlan(ctx context.Context, planID string) (*travel.TravelPlan, error) {
	userID, err := s.requireUserID()
	if err != nil {
		return nil, err
	}

	src, err := s.plans.GetByID(ctx, planID)
	if err != nil {
		return nil, err
	}
	if src == nil {
		return nil, ErrPlanNotFound
	}

	clone := src.CloneForDuplicate()
	clone.UserID = userID
	clone.Status = travel.StatusPlanned
	clone.Title = src.Title + "（副本）"

	created, err := s.plans.Create(ctx, clone)
	if err != nil {
		return nil, err
	}

	// 活动照搬到新行程；失败不回滚主记录，详情页会按降级处理
	srcActivities, err := s.activities.GetByPlanID(ctx, planID)
	if err != nil {
		log.Warn().Err(err).Str("plan_id", planID).Msg("复制行程活动读取失败")
		return created, nil
	}
	if len(srcActivities) > 0 {
		copies := make([]*travel.PlanActivity, 0, len(srcActivities))
		for _, a := range srcActivities {
			c := *a
			c.ID = ""
			c.PlanID = created.ID
			copies = append(copies, &c)
		}
		if _, err := s.activities.ReplaceForPlan(ctx, created.ID, copies); err != nil {
			log.Warn().Err(err).Str("plan_id", created.ID).Msg("复制行程活动写入失败")
		}
	}

	return created, nil
}

// GetPlanDetail 行程详情聚合
// 活动加载失败不阻塞详情展示，置 Degraded 标记
func (s *TravelService) GetPlanDetail(ctx context.Context, planID string) (*PlanDetail, error) {
	plan, err := s.plans.GetByID(ctx, planID)
	if err != nil {
		return nil, err
	}
	if plan == nil {
		return nil, ErrPlanNotFound
	}

	detail := &PlanDetail{Plan: plan}
	activities, err := s.activities.GetByPlanID(ctx, planID)
	if err != nil {
		log.Warn().Err(err).Str("plan_id", planID).Msg("行程活动加载失败，降级展示")
		detail.Degraded = true
		return detail, nil
	}
	detail.Activities = activities
	return detail, nil
}

// UserStats 当前用户的行程统计
// 客户端侧聚合，避免为统计单独建存储过程
func (s *TravelService) UserStats(ctx context.Context) (*travel.PlanStats, error) {
	plans, err := s.MyPlans(ctx, "")
	if err != nil {
		return nil, err
	}

	stats := &travel.PlanStats{TotalPlans: len(plans)}
	for _, p := range plans {
		stats.TotalDays += p.Days
		stats.TotalBudget += p.TotalBudget
	}
	return stats, nil
}

// FeaturedDestinations 热门景点
func (s *TravelService) FeaturedDestinations(ctx context.Context, limit int) ([]*travel.Destination, error) {
	return s.destinations.GetFeatured(ctx, limit)
}

// SearchDestinations 景点搜索
func (s *TravelService) SearchDestinations(ctx context.Context, keyword, category string) ([]*travel.Destination, error) {
	return s.destinations.Search(ctx, keyword, category)
}

// DestinationsByCategory 按分类浏览景点
func (s *TravelService) DestinationsByCategory(ctx context.Context, category string, limit int) ([]*travel.Destination, error) {
	return s.destinations.GetByCategory(ctx, category, limit)
}

// ownedPlan 读取行程并确认归属当前用户
func (s *TravelService) ownedPlan(ctx context.Context, planID string) (*travel.TravelPlan, error) {
	userID, err := s.requireUserID()
	if err != nil {
		return nil, err
	}

	plan, err := s.plans.GetByID(ctx, planID)
	if err != nil {
		return nil, err
	}
	if plan == nil {
		return nil, ErrPlanNotFound
	}
	if plan.UserID != userID {
		return nil, ErrPlanForbidden
	}
	return plan, nil
}
