package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog/log"

	"tripflow/internal/ai"
	"tripflow/internal/model/travel"
)

// AIPlanResult 智能行程生成结果
// 生成是尽力而为的：AI调用失败时 Success 为 false，
// 保存失败不影响 Success，错误记入 ErrMessage
type AIPlanResult struct {
	Success    bool
	Plan       *ai.ExtractedPlan  // 提取出的结构化行程
	SavedPlan  *travel.TravelPlan // 已保存的行程记录，未保存时为 nil
	AIResponse string             // AI 回复原文
	ErrMessage string
}

// AITextResult 文本类AI操作的结果
type AITextResult struct {
	Success    bool
	Content    string
	ErrMessage string
}

// AIService AI行程服务
// 提示词构造、模型调用与结果提取的编排层
type AIService struct {
	gen    ai.TextGenerator
	travel *TravelService
}

// NewAIService 创建AI行程服务
func NewAIService(gen ai.TextGenerator, travel *TravelService) *AIService {
	return &AIService{
		gen:    gen,
		travel: travel,
	}
}

// PlanItinerary 智能生成行程
// save 为 true 时把结果保存为当前用户的行程（含逐日活动）
func (s *AIService) PlanItinerary(ctx context.Context, req *ai.PlanRequest, save bool) *AIPlanResult {
	prompt := ai.BuildPlanPrompt(req)
	content, err := s.gen.Generate(ctx, ai.SystemTravelPlanner, prompt)
	if err != nil {
		return &AIPlanResult{ErrMessage: "AI生成失败: " + err.Error()}
	}

	plan := ai.ExtractPlan(content)
	overlayRequest(plan, req)

	result := &AIPlanResult{
		Success:    true,
		Plan:       plan,
		AIResponse: content,
	}

	if save {
		saved, err := s.savePlan(ctx, plan, req, content)
		if err != nil {
			log.Warn().Err(err).Msg("AI行程保存失败")
			result.ErrMessage = "行程已生成但保存失败: " + err.Error()
			return result
		}
		result.SavedPlan = saved
	}
	return result
}

// 问答类生成用更低的温度，回答求稳不求发散
const questionTemperature = 0.3

// AskQuestion 旅行问答
// 已登录时把用户近期行程作为上下文带入，取不到时不阻塞问答
func (s *AIService) AskQuestion(ctx context.Context, question string) *AITextResult {
	return s.generateText(ctx, ai.SystemTravelAssistant,
		ai.BuildQuestionPrompt(question, s.recentPlanContext(ctx)),
		ai.WithTemperature(questionTemperature))
}

// recentPlanContext 汇总当前用户最近的行程，未登录或查询失败时返回空串
func (s *AIService) recentPlanContext(ctx context.Context) string {
	plans, err := s.travel.MyPlans(ctx, "")
	if err != nil || len(plans) == 0 {
		return ""
	}
	if len(plans) > 3 {
		plans = plans[:3]
	}

	var b strings.Builder
	for _, p := range plans {
		fmt.Fprintf(&b, "- %s（%s，%d天）\n", p.Title, p.Destination, p.Days)
	}
	return strings.TrimRight(b.String(), "\n")
}

// RecommendDestinations 目的地推荐
func (s *AIService) RecommendDestinations(ctx context.Context, preferences []string, budget int, season string) *AITextResult {
	return s.generateText(ctx, ai.SystemTravelPlanner, ai.BuildRecommendPrompt(preferences, budget, season))
}

// OptimizeItinerary 行程优化建议
// 读取指定行程生成建议，并尽力把建议追加到行程文本里；追加失败只降级不报错
func (s *AIService) OptimizeItinerary(ctx context.Context, planID, requirements string) *AITextResult {
	detail, err := s.travel.GetPlanDetail(ctx, planID)
	if err != nil {
		return &AITextResult{ErrMessage: "读取行程失败: " + err.Error()}
	}

	result := s.generateText(ctx, ai.SystemTravelPlanner,
		ai.BuildOptimizePrompt(planText(detail), requirements))
	if !result.Success {
		return result
	}

	itinerary := detail.Plan.Itinerary
	if itinerary != "" {
		itinerary += "\n\n"
	}
	itinerary += "优化建议：\n" + result.Content
	if _, err := s.travel.UpdatePlan(ctx, planID, map[string]any{"itinerary": itinerary}); err != nil {
		log.Warn().Err(err).Str("plan_id", planID).Msg("优化建议保存失败")
	}
	return result
}

// TravelTips 旅行贴士
func (s *AIService) TravelTips(ctx context.Context, destination string, days int, season string) *AITextResult {
	return s.generateText(ctx, ai.SystemTravelAssistant, ai.BuildTipsPrompt(destination, days, season))
}

// DestinationDescription 景点介绍文案
// info 为已知的补充信息（地区、分类等），可为空
func (s *AIService) DestinationDescription(ctx context.Context, name, info string) *AITextResult {
	return s.generateText(ctx, ai.SystemTravelAssistant, ai.BuildDestinationDescPrompt(name, info))
}

// generateText 文本类操作的公共路径
func (s *AIService) generateText(ctx context.Context, system, prompt string, opts ...ai.GenOption) *AITextResult {
	content, err := s.gen.Generate(ctx, system, prompt, opts...)
	if err != nil {
		return &AITextResult{ErrMessage: "AI生成失败: " + err.Error()}
	}
	return &AITextResult{
		Success: true,
		Content: content,
	}
}

// overlayRequest 用请求参数补齐提取结果中缺失的字段
func overlayRequest(plan *ai.ExtractedPlan, req *ai.PlanRequest) {
	if plan.Destination == "待定" && req.Destination != "" {
		plan.Destination = req.Destination
		if strings.HasPrefix(plan.Title, "AI") {
			plan.Title = req.Destination + "之旅"
		}
	}
	if plan.Days <= 1 && req.Days > 0 {
		plan.Days = req.Days
	}
	if plan.Budget == 0 && req.Budget > 0 {
		plan.Budget = req.Budget
	}
	if len(plan.Tags) == 0 && len(req.Interests) > 0 {
		plan.Tags = req.Interests
	}
}

// savePlan 把提取结果落库为当前用户的行程
func (s *AIService) savePlan(ctx context.Context, plan *ai.ExtractedPlan, req *ai.PlanRequest, raw string) (*travel.TravelPlan, error) {
	record := &travel.TravelPlan{
		Title:          plan.Title,
		Description:    plan.Description,
		Destination:    plan.Destination,
		StartDate:      req.StartDate,
		EndDate:        deriveEndDate(req.StartDate, plan.Days),
		Days:           plan.Days,
		Travelers:      req.Travelers,
		TotalBudget:    float64(plan.Budget),
		Status:         travel.StatusPlanned,
		IsAIGenerated:  true,
		Itinerary:      raw,
		Tags:           plan.Tags,
		Transportation: plan.Transportation,
		Accommodation:  plan.Accommodation,
	}

	var activities []*travel.PlanActivity
	for _, day := range plan.Itinerary {
		for i, act := range day.Activities {
			a := &travel.PlanActivity{
				DayNumber:     day.Day,
				OrderIndex:    i,
				Title:         act.Title,
				Description:   act.Description,
				Location:      act.Location,
				EstimatedCost: act.EstimatedCost,
			}
			a.StartTime, a.EndTime = splitTimeRange(act.Time)
			activities = append(activities, a)
		}
	}

	created, err := s.travel.CreatePlanWithActivities(ctx, record, activities)
	if err != nil {
		return nil, err
	}
	if created == nil {
		return nil, fmt.Errorf("后端未返回行程记录")
	}
	return created, nil
}

// planText 把行程详情拼成优化提示词可用的文本
func planText(detail *PlanDetail) string {
	var b strings.Builder

	p := detail.Plan
	fmt.Fprintf(&b, "%s：%s，共%d天，预算%.0f元\n", p.Title, p.Destination, p.Days, p.TotalBudget)
	for _, a := range detail.Activities {
		fmt.Fprintf(&b, "第%d天 %s %s", a.DayNumber, a.StartTime, a.Title)
		if a.Location != "" {
			fmt.Fprintf(&b, "（%s）", a.Location)
		}
		b.WriteString("\n")
	}
	if len(detail.Activities) == 0 && p.Itinerary != "" {
		b.WriteString(p.Itinerary)
	}

	return b.String()
}

// deriveEndDate 由出发日期和天数推算结束日期，输入不全或日期非法时留空
func deriveEndDate(startDate string, days int) string {
	if startDate == "" || days <= 0 {
		return ""
	}
	start, err := time.Parse("2006-01-02", startDate)
	if err != nil {
		return ""
	}
	return start.AddDate(0, 0, days-1).Format("2006-01-02")
}

// splitTimeRange 拆分「09:00-11:00」形式的时间段，单点时间只填开始时间
func splitTimeRange(ts string) (start, end string) {
	for _, sep := range []string{"-", "~", "至"} {
		if i := strings.Index(ts, sep); i > 0 {
			return strings.TrimSpace(ts[:i]), strings.TrimSpace(ts[i+len(sep):])
		}
	}
	return strings.TrimSpace(ts), ""
}
