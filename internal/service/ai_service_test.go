package service

import (
	"context"
	"errors"
	"testing"

	. "github.com/smartystreets/goconvey/convey"

	"tripflow/internal/ai"
	"tripflow/internal/model/travel"
)

// fakeGenerator 可控的文本生成替身
type fakeGenerator struct {
	response string
	err      error

	lastSystem      string
	lastUser        string
	lastTemperature *float32
}

func (f *fakeGenerator) Generate(ctx context.Context, system, user string, opts ...ai.GenOption) (string, error) {
	f.lastSystem = system
	f.lastUser = user

	var o ai.GenOptions
	for _, opt := range opts {
		opt(&o)
	}
	f.lastTemperature = o.Temperature

	if f.err != nil {
		return "", f.err
	}
	return f.response, nil
}

func TestAIService_AskQuestion(t *testing.T) {
	Convey("AIService.AskQuestion 旅行问答", t, func() {
		env := newTestEnv(t)

		Convey("回复原文透传", func() {
			gen := &fakeGenerator{response: "十月去北京最舒服。"}
			svc := NewAIService(gen, env.travel)

			result := svc.AskQuestion(context.Background(), "几月去北京合适？")
			So(result.Success, ShouldBeTrue)
			So(result.Content, ShouldEqual, "十月去北京最舒服。")
			So(gen.lastSystem, ShouldEqual, ai.SystemTravelAssistant)
			So(gen.lastUser, ShouldContainSubstring, "几月去北京合适？")
		})

		Convey("问答用更低的采样温度", func() {
			gen := &fakeGenerator{response: "好的。"}
			svc := NewAIService(gen, env.travel)

			svc.AskQuestion(context.Background(), "随便问问")
			So(gen.lastTemperature, ShouldNotBeNil)
			So(*gen.lastTemperature, ShouldAlmostEqual, 0.3, 0.001)
		})

		Convey("已登录时提示词带上近期行程", func() {
			ctx := context.Background()
			_, err := env.session.Register(ctx, "traveler", "password123", "")
			So(err, ShouldBeNil)
			_, err = env.travel.CreatePlan(ctx, &travel.TravelPlan{
				Title: "成都美食行", Destination: "成都", Days: 3,
			})
			So(err, ShouldBeNil)

			gen := &fakeGenerator{response: "可以顺路去乐山。"}
			svc := NewAIService(gen, env.travel)

			result := svc.AskQuestion(ctx, "周边还有什么值得去？")
			So(result.Success, ShouldBeTrue)
			So(gen.lastUser, ShouldContainSubstring, "成都美食行")
			So(gen.lastUser, ShouldContainSubstring, "周边还有什么值得去？")
		})

		Convey("生成失败时返回失败结果而非panic", func() {
			gen := &fakeGenerator{err: errors.New("connection refused")}
			svc := NewAIService(gen, env.travel)

			result := svc.AskQuestion(context.Background(), "随便问问")
			So(result.Success, ShouldBeFalse)
			So(result.ErrMessage, ShouldContainSubstring, "connection refused")
		})
	})
}

func TestAIService_OptimizeItinerary(t *testing.T) {
	Convey("AIService.OptimizeItinerary 行程优化建议", t, func() {
		env := newTestEnv(t)
		ctx := context.Background()

		_, err := env.session.Register(ctx, "traveler", "password123", "")
		So(err, ShouldBeNil)
		plan, err := env.travel.CreatePlan(ctx, &travel.TravelPlan{
			Title: "西安三日游", Destination: "西安", Days: 3, TotalBudget: 2000,
		})
		So(err, ShouldBeNil)

		Convey("建议生成后追加到行程文本", func() {
			gen := &fakeGenerator{response: "第二天景点太密，建议删掉一个。"}
			svc := NewAIService(gen, env.travel)

			result := svc.OptimizeItinerary(ctx, plan.ID, "节奏放慢")
			So(result.Success, ShouldBeTrue)
			So(result.Content, ShouldContainSubstring, "第二天景点太密")
			So(gen.lastUser, ShouldContainSubstring, "西安三日游")
			So(gen.lastUser, ShouldContainSubstring, "节奏放慢")

			detail, err := env.travel.GetPlanDetail(ctx, plan.ID)
			So(err, ShouldBeNil)
			So(detail.Plan.Itinerary, ShouldContainSubstring, "优化建议：")
			So(detail.Plan.Itinerary, ShouldContainSubstring, "第二天景点太密")
		})

		Convey("行程不存在时直接失败", func() {
			gen := &fakeGenerator{response: "不会被调用"}
			svc := NewAIService(gen, env.travel)

			result := svc.OptimizeItinerary(ctx, "00000000-0000-0000-0000-000000000000", "")
			So(result.Success, ShouldBeFalse)
			So(result.ErrMessage, ShouldContainSubstring, "读取行程失败")
		})
	})
}

func TestAIService_TravelTips(t *testing.T) {
	Convey("AIService.TravelTips 旅行贴士", t, func() {
		env := newTestEnv(t)

		gen := &fakeGenerator{response: "冬天去哈尔滨要备厚羽绒服。"}
		svc := NewAIService(gen, env.travel)

		result := svc.TravelTips(context.Background(), "哈尔滨", 5, "冬季")
		So(result.Success, ShouldBeTrue)
		So(gen.lastUser, ShouldContainSubstring, "哈尔滨")
		So(gen.lastUser, ShouldContainSubstring, "5天")
		So(gen.lastUser, ShouldContainSubstring, "冬季")
	})
}

func TestAIService_PlanItinerary(t *testing.T) {
	Convey("AIService.PlanItinerary 智能生成行程", t, func() {
		env := newTestEnv(t)
		ctx := context.Background()

		jsonResponse := "```json\n" + `{
  "title": "大理4日游",
  "description": "环洱海慢行",
  "destination": "大理",
  "days": 4,
  "budget": 2800,
  "transportation": "飞机",
  "accommodation": "民宿",
  "tags": ["自然"],
  "itinerary": [
    {
      "day": 1,
      "theme": "古城",
      "activities": [
        {"time": "10:00-12:00", "title": "大理古城", "location": "古城区", "estimated_cost": 0}
      ]
    }
  ]
}` + "\n```"

		Convey("不保存时只返回提取结果", func() {
			gen := &fakeGenerator{response: jsonResponse}
			svc := NewAIService(gen, env.travel)

			result := svc.PlanItinerary(ctx, &ai.PlanRequest{Destination: "大理", Days: 4}, false)
			So(result.Success, ShouldBeTrue)
			So(result.SavedPlan, ShouldBeNil)
			So(result.Plan.FromJSON, ShouldBeTrue)
			So(result.Plan.Title, ShouldEqual, "大理4日游")
			So(result.AIResponse, ShouldEqual, jsonResponse)
			So(gen.lastSystem, ShouldEqual, ai.SystemTravelPlanner)
			So(gen.lastUser, ShouldContainSubstring, "目的地：大理")
		})

		Convey("保存后行程与活动都能读回", func() {
			_, err := env.session.Register(ctx, "traveler", "password123", "")
			So(err, ShouldBeNil)

			gen := &fakeGenerator{response: jsonResponse}
			svc := NewAIService(gen, env.travel)

			result := svc.PlanItinerary(ctx, &ai.PlanRequest{
				Destination: "大理",
				Days:        4,
				StartDate:   "2026-10-01",
			}, true)
			So(result.Success, ShouldBeTrue)
			So(result.ErrMessage, ShouldBeEmpty)
			So(result.SavedPlan, ShouldNotBeNil)
			So(result.SavedPlan.IsAIGenerated, ShouldBeTrue)
			So(result.SavedPlan.StartDate, ShouldEqual, "2026-10-01")
			So(result.SavedPlan.EndDate, ShouldEqual, "2026-10-04")
			So(gen.lastTemperature, ShouldBeNil)

			detail, err := env.travel.GetPlanDetail(ctx, result.SavedPlan.ID)
			So(err, ShouldBeNil)
			So(detail.Plan.Title, ShouldEqual, "大理4日游")
			So(len(detail.Activities), ShouldEqual, 1)
			So(detail.Activities[0].Title, ShouldEqual, "大理古城")
			So(detail.Activities[0].StartTime, ShouldEqual, "10:00")
			So(detail.Activities[0].EndTime, ShouldEqual, "12:00")
		})

		Convey("未登录时保存失败但生成结果仍可用", func() {
			gen := &fakeGenerator{response: jsonResponse}
			svc := NewAIService(gen, env.travel)

			result := svc.PlanItinerary(ctx, &ai.PlanRequest{Destination: "大理"}, true)
			So(result.Success, ShouldBeTrue)
			So(result.SavedPlan, ShouldBeNil)
			So(result.ErrMessage, ShouldContainSubstring, "保存失败")
			So(result.Plan.Title, ShouldEqual, "大理4日游")
		})

		Convey("纯文本回复也能产出可保存的行程", func() {
			gen := &fakeGenerator{response: "标题：大理散心之旅\n目的地：大理\n预算：1500元\n建议自驾环洱海，住民宿。"}
			svc := NewAIService(gen, env.travel)

			result := svc.PlanItinerary(ctx, &ai.PlanRequest{Destination: "大理", Days: 3}, false)
			So(result.Success, ShouldBeTrue)
			So(result.Plan.FromJSON, ShouldBeFalse)
			So(result.Plan.Title, ShouldEqual, "大理散心之旅")
			So(result.Plan.Budget, ShouldEqual, 1500)
			So(result.Plan.Days, ShouldEqual, 3)
			So(result.Plan.Transportation, ShouldEqual, "自驾")
			So(result.Plan.Accommodation, ShouldEqual, "民宿")
		})

		Convey("模型调用失败时整体失败", func() {
			gen := &fakeGenerator{err: errors.New("timeout")}
			svc := NewAIService(gen, env.travel)

			result := svc.PlanItinerary(ctx, &ai.PlanRequest{Destination: "大理"}, false)
			So(result.Success, ShouldBeFalse)
			So(result.Plan, ShouldBeNil)
		})
	})
}
