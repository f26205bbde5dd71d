package ai

import (
	"fmt"
	"strings"
)

// 系统提示词
const (
	// SystemTravelPlanner 行程规划角色
	SystemTravelPlanner = "你是一位专业的旅行规划师，擅长为用户制定详细、实用的旅行计划。" +
		"你熟悉中国及世界各地的旅游目的地、交通、住宿和美食。回答要具体、可执行。"

	// SystemTravelAssistant 旅行问答角色
	SystemTravelAssistant = "你是一位经验丰富的旅行顾问，用简洁准确的中文回答用户的旅行问题。"
)

// PlanRequest 行程生成请求参数
type PlanRequest struct {
	Destination string   // 目的地
	Days        int      // 天数
	Budget      int      // 预算（元）
	Travelers   int      // 出行人数
	Interests   []string // 兴趣偏好
	StartDate   string   // 出发日期，可为空
	Notes       string   // 附加要求，可为空
}

// BuildPlanPrompt 构造行程生成提示词
// 要求模型优先输出结构化 JSON，解析端有标签回退
func BuildPlanPrompt(req *PlanRequest) string {
	var b strings.Builder

	b.WriteString("请为我制定一份旅行计划。\n\n")
	b.WriteString(fmt.Sprintf("目的地：%s\n", req.Destination))
	if req.Days > 0 {
		b.WriteString(fmt.Sprintf("天数：%d天\n", req.Days))
	}
	if req.Budget > 0 {
		b.WriteString(fmt.Sprintf("预算：%d元\n", req.Budget))
	}
	if req.Travelers > 0 {
		b.WriteString(fmt.Sprintf("出行人数：%d人\n", req.Travelers))
	}
	if len(req.Interests) > 0 {
		b.WriteString(fmt.Sprintf("兴趣偏好：%s\n", strings.Join(req.Interests, "、")))
	}
	if req.StartDate != "" {
		b.WriteString(fmt.Sprintf("出发日期：%s\n", req.StartDate))
	}
	if req.Notes != "" {
		b.WriteString(fmt.Sprintf("其他要求：%s\n", req.Notes))
	}

	b.WriteString(`
请严格按以下 JSON 格式输出（不要输出 JSON 以外的内容）：
{
  "title": "行程标题",
  "description": "行程概述",
  "destination": "目的地",
  "days": 天数,
  "budget": 预算数字,
  "transportation": "主要交通方式",
  "accommodation": "住宿建议",
  "tags": ["标签1", "标签2"],
  "itinerary": [
    {
      "day": 1,
      "theme": "当日主题",
      "activities": [
        {
          "time": "09:00-11:00",
          "title": "活动名称",
          "location": "地点",
          "description": "活动说明",
          "estimated_cost": 费用数字
        }
      ]
    }
  ]
}`)

	return b.String()
}

// BuildQuestionPrompt 构造旅行问答提示词
// planContext 为用户近期行程的摘要，为空时省略
func BuildQuestionPrompt(question, planContext string) string {
	var b strings.Builder

	if planContext != "" {
		b.WriteString("用户近期的行程：\n")
		b.WriteString(planContext)
		b.WriteString("\n\n")
	}
	b.WriteString(fmt.Sprintf("用户的旅行问题：%s\n\n请给出实用、具体的建议。", question))

	return b.String()
}

// BuildRecommendPrompt 构造目的地推荐提示词
func BuildRecommendPrompt(preferences []string, budget int, season string) string {
	var b strings.Builder

	b.WriteString("请根据以下条件推荐3-5个旅行目的地：\n")
	if len(preferences) > 0 {
		b.WriteString(fmt.Sprintf("偏好：%s\n", strings.Join(preferences, "、")))
	}
	if budget > 0 {
		b.WriteString(fmt.Sprintf("预算：%d元\n", budget))
	}
	if season != "" {
		b.WriteString(fmt.Sprintf("出行季节：%s\n", season))
	}
	b.WriteString("\n每个目的地请说明推荐理由、最佳游玩天数和大致花费。")

	return b.String()
}

// BuildOptimizePrompt 构造行程优化提示词
// current 为现有行程的文本描述
func BuildOptimizePrompt(current, requirements string) string {
	var b strings.Builder

	b.WriteString("以下是我目前的行程安排：\n\n")
	b.WriteString(current)
	b.WriteString("\n\n")
	if requirements != "" {
		b.WriteString(fmt.Sprintf("优化要求：%s\n\n", requirements))
	}
	b.WriteString("请指出行程中不合理的地方（如路线绕行、时间过紧、费用偏高），并给出优化后的安排。")

	return b.String()
}

// BuildTipsPrompt 构造旅行贴士提示词
func BuildTipsPrompt(destination string, days int, season string) string {
	var b strings.Builder

	b.WriteString(fmt.Sprintf("我准备去%s旅行", destination))
	if days > 0 {
		b.WriteString(fmt.Sprintf("%d天", days))
	}
	if season != "" {
		b.WriteString(fmt.Sprintf("，出行季节是%s", season))
	}
	b.WriteString("，请提供实用的旅行贴士，包括：\n")
	b.WriteString("1. 天气与穿衣建议\n")
	b.WriteString("2. 当地交通\n")
	b.WriteString("3. 美食推荐\n")
	b.WriteString("4. 注意事项\n")

	return b.String()
}

// BuildDestinationDescPrompt 构造景点介绍提示词
// info 为已知的补充信息（地区、分类等），为空时省略
func BuildDestinationDescPrompt(name, info string) string {
	var b strings.Builder

	b.WriteString(fmt.Sprintf("请用100字左右介绍旅游目的地「%s」", name))
	if info != "" {
		b.WriteString(fmt.Sprintf("（%s）", info))
	}
	b.WriteString("，突出其特色亮点，适合在旅行应用中展示。")

	return b.String()
}
