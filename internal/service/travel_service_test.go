package service

import (
	"context"
	"testing"

	. "github.com/smartystreets/goconvey/convey"

	"tripflow/internal/model/travel"
)

func TestTravelService_Plans(t *testing.T) {
	Convey("TravelService 行程增删改查", t, func() {
		env := newTestEnv(t)
		ctx := context.Background()

		Convey("未登录时拒绝操作", func() {
			_, err := env.travel.MyPlans(ctx, "")
			So(err, ShouldEqual, ErrNotLoggedIn)

			_, err = env.travel.CreatePlan(ctx, &travel.TravelPlan{Title: "x"})
			So(err, ShouldEqual, ErrNotLoggedIn)
		})

		Convey("登录后的完整往返", func() {
			_, err := env.session.Register(ctx, "traveler", "password123", "")
			So(err, ShouldBeNil)

			Convey("空标题被拒绝", func() {
				_, err := env.travel.CreatePlan(ctx, &travel.TravelPlan{})
				So(err, ShouldEqual, ErrEmptyTitle)
			})

			Convey("创建后能在列表中读回", func() {
				created, err := env.travel.CreatePlan(ctx, &travel.TravelPlan{
					Title:       "云南之行",
					Destination: "大理",
					Days:        4,
					TotalBudget: 3000,
				})
				So(err, ShouldBeNil)
				So(created.ID, ShouldNotBeEmpty)
				So(created.Status, ShouldEqual, travel.StatusPlanned)

				plans, err := env.travel.MyPlans(ctx, "")
				So(err, ShouldBeNil)
				So(len(plans), ShouldEqual, 1)
				So(plans[0].Title, ShouldEqual, "云南之行")
			})

			Convey("状态过滤只返回匹配的行程", func() {
				_, err := env.travel.CreatePlan(ctx, &travel.TravelPlan{Title: "a"})
				So(err, ShouldBeNil)
				created, err := env.travel.CreatePlan(ctx, &travel.TravelPlan{Title: "b"})
				So(err, ShouldBeNil)

				_, err = env.travel.UpdatePlan(ctx, created.ID, map[string]any{"status": "completed"})
				So(err, ShouldBeNil)

				completed, err := env.travel.MyPlans(ctx, travel.StatusCompleted)
				So(err, ShouldBeNil)
				So(len(completed), ShouldEqual, 1)
				So(completed[0].Title, ShouldEqual, "b")
			})

			Convey("更新标题后读回新值", func() {
				created, err := env.travel.CreatePlan(ctx, &travel.TravelPlan{Title: "旧标题"})
				So(err, ShouldBeNil)

				updated, err := env.travel.UpdatePlan(ctx, created.ID, map[string]any{"title": "新标题"})
				So(err, ShouldBeNil)
				So(updated.Title, ShouldEqual, "新标题")
			})

			Convey("删除后列表为空，重复删除无副作用", func() {
				created, err := env.travel.CreatePlan(ctx, &travel.TravelPlan{Title: "待删除"})
				So(err, ShouldBeNil)

				So(env.travel.DeletePlan(ctx, created.ID), ShouldBeNil)
				So(env.travel.DeletePlan(ctx, created.ID), ShouldBeNil)

				plans, err := env.travel.MyPlans(ctx, "")
				So(err, ShouldBeNil)
				So(plans, ShouldBeEmpty)
			})
		})

		Convey("不能删除他人的行程", func() {
			_, err := env.session.Register(ctx, "owner", "password123", "")
			So(err, ShouldBeNil)
			created, err := env.travel.CreatePlan(ctx, &travel.TravelPlan{Title: "别人的行程"})
			So(err, ShouldBeNil)
			So(env.session.Logout(ctx), ShouldBeNil)

			_, err = env.session.Register(ctx, "intruder", "password123", "")
			So(err, ShouldBeNil)

			err = env.travel.DeletePlan(ctx, created.ID)
			So(err, ShouldEqual, ErrPlanForbidden)
		})
	})
}

func TestTravelService_DuplicatePlan(t *testing.T) {
	Convey("TravelService.DuplicatePlan 复制行程", t, func() {
		env := newTestEnv(t)
		ctx := context.Background()

		_, err := env.session.Register(ctx, "traveler", "password123", "")
		So(err, ShouldBeNil)

		src, err := env.travel.CreatePlanWithActivities(ctx, &travel.TravelPlan{
			Title:         "原行程",
			Destination:   "成都",
			Days:          2,
			IsAIGenerated: true,
			Tags:          []string{"美食"},
		}, []*travel.PlanActivity{
			{DayNumber: 1, Title: "宽窄巷子"},
			{DayNumber: 2, Title: "大熊猫基地"},
		})
		So(err, ShouldBeNil)

		Convey("副本是独立的新行程", func() {
			clone, err := env.travel.DuplicatePlan(ctx, src.ID)
			So(err, ShouldBeNil)
			So(clone.ID, ShouldNotBeEmpty)
			So(clone.ID, ShouldNotEqual, src.ID)
			So(clone.Title, ShouldEqual, "原行程（副本）")
			So(clone.Destination, ShouldEqual, "成都")
			So(clone.IsAIGenerated, ShouldBeFalse)
			So(clone.Status, ShouldEqual, travel.StatusPlanned)

			detail, err := env.travel.GetPlanDetail(ctx, clone.ID)
			So(err, ShouldBeNil)
			So(len(detail.Activities), ShouldEqual, 2)
			So(detail.Activities[0].Title, ShouldEqual, "宽窄巷子")
		})

		Convey("不存在的行程报错", func() {
			_, err := env.travel.DuplicatePlan(ctx, "00000000-0000-0000-0000-000000000000")
			So(err, ShouldEqual, ErrPlanNotFound)
		})
	})
}

func TestTravelService_GetPlanDetail(t *testing.T) {
	Convey("TravelService.GetPlanDetail 详情聚合", t, func() {
		env := newTestEnv(t)
		ctx := context.Background()

		_, err := env.session.Register(ctx, "traveler", "password123", "")
		So(err, ShouldBeNil)

		Convey("活动按天和顺序排序", func() {
			plan, err := env.travel.CreatePlanWithActivities(ctx, &travel.TravelPlan{
				Title: "有活动的行程",
			}, []*travel.PlanActivity{
				{DayNumber: 2, OrderIndex: 1, Title: "d2-b"},
				{DayNumber: 1, OrderIndex: 2, Title: "d1-b"},
				{DayNumber: 1, OrderIndex: 1, Title: "d1-a"},
				{DayNumber: 2, OrderIndex: 2, Title: "d2-c"},
			})
			So(err, ShouldBeNil)

			detail, err := env.travel.GetPlanDetail(ctx, plan.ID)
			So(err, ShouldBeNil)
			So(detail.Degraded, ShouldBeFalse)
			So(len(detail.Activities), ShouldEqual, 4)
			So(detail.Activities[0].Title, ShouldEqual, "d1-a")
			So(detail.Activities[1].Title, ShouldEqual, "d1-b")
			So(detail.Activities[2].Title, ShouldEqual, "d2-b")
			So(detail.Activities[3].Title, ShouldEqual, "d2-c")
		})

		Convey("每天的顺序索引从零起算且不被改写", func() {
			plan, err := env.travel.CreatePlanWithActivities(ctx, &travel.TravelPlan{
				Title: "两天的行程",
			}, []*travel.PlanActivity{
				{DayNumber: 1, OrderIndex: 0, Title: "d1-上午"},
				{DayNumber: 1, OrderIndex: 1, Title: "d1-下午"},
				{DayNumber: 2, OrderIndex: 0, Title: "d2-上午"},
				{DayNumber: 2, OrderIndex: 1, Title: "d2-下午"},
			})
			So(err, ShouldBeNil)

			detail, err := env.travel.GetPlanDetail(ctx, plan.ID)
			So(err, ShouldBeNil)
			So(len(detail.Activities), ShouldEqual, 4)
			So(detail.Activities[0].Title, ShouldEqual, "d1-上午")
			So(detail.Activities[1].Title, ShouldEqual, "d1-下午")
			So(detail.Activities[2].Title, ShouldEqual, "d2-上午")
			So(detail.Activities[3].Title, ShouldEqual, "d2-下午")
			So(detail.Activities[2].OrderIndex, ShouldEqual, 0)
			So(detail.Activities[3].OrderIndex, ShouldEqual, 1)
		})

		Convey("整批未给顺序索引时按天补齐", func() {
			plan, err := env.travel.CreatePlanWithActivities(ctx, &travel.TravelPlan{
				Title: "未编号的行程",
			}, []*travel.PlanActivity{
				{DayNumber: 1, Title: "d1-a"},
				{DayNumber: 1, Title: "d1-b"},
				{DayNumber: 2, Title: "d2-a"},
			})
			So(err, ShouldBeNil)

			detail, err := env.travel.GetPlanDetail(ctx, plan.ID)
			So(err, ShouldBeNil)
			So(detail.Activities[0].OrderIndex, ShouldEqual, 0)
			So(detail.Activities[1].OrderIndex, ShouldEqual, 1)
			So(detail.Activities[2].OrderIndex, ShouldEqual, 0)
		})

		Convey("不存在的行程报错", func() {
			_, err := env.travel.GetPlanDetail(ctx, "00000000-0000-0000-0000-000000000000")
			So(err, ShouldEqual, ErrPlanNotFound)
		})
	})
}

func TestTravelService_BrowsePlans(t *testing.T) {
	Convey("TravelService.BrowsePlans 全站行程浏览", t, func() {
		env := newTestEnv(t)
		ctx := context.Background()

		_, err := env.session.Register(ctx, "alice", "password123", "")
		So(err, ShouldBeNil)
		_, err = env.travel.CreatePlan(ctx, &travel.TravelPlan{Title: "alice的行程"})
		So(err, ShouldBeNil)
		So(env.session.Logout(ctx), ShouldBeNil)

		_, err = env.session.Register(ctx, "bob", "password123", "")
		So(err, ShouldBeNil)
		_, err = env.travel.CreatePlan(ctx, &travel.TravelPlan{Title: "bob的行程"})
		So(err, ShouldBeNil)
		So(env.session.Logout(ctx), ShouldBeNil)

		Convey("未登录也能看到所有人的行程", func() {
			plans, err := env.travel.BrowsePlans(ctx, 0)
			So(err, ShouldBeNil)
			So(len(plans), ShouldEqual, 2)
		})

		Convey("limit 限制返回数量", func() {
			plans, err := env.travel.BrowsePlans(ctx, 1)
			So(err, ShouldBeNil)
			So(len(plans), ShouldEqual, 1)
		})
	})
}

func TestTravelService_UserStats(t *testing.T) {
	Convey("TravelService.UserStats 客户端侧聚合", t, func() {
		env := newTestEnv(t)
		ctx := context.Background()

		_, err := env.session.Register(ctx, "traveler", "password123", "")
		So(err, ShouldBeNil)

		_, err = env.travel.CreatePlan(ctx, &travel.TravelPlan{Title: "a", Days: 3, TotalBudget: 1000})
		So(err, ShouldBeNil)
		_, err = env.travel.CreatePlan(ctx, &travel.TravelPlan{Title: "b", Days: 5, TotalBudget: 2500})
		So(err, ShouldBeNil)

		stats, err := env.travel.UserStats(ctx)
		So(err, ShouldBeNil)
		So(stats.TotalPlans, ShouldEqual, 2)
		So(stats.TotalDays, ShouldEqual, 8)
		So(stats.TotalBudget, ShouldEqual, 3500)
	})
}

func TestTravelService_Destinations(t *testing.T) {
	Convey("TravelService 景点查询", t, func() {
		env := newTestEnv(t)
		ctx := context.Background()

		Convey("热门景点按评分倒序，无需登录", func() {
			dests, err := env.travel.FeaturedDestinations(ctx, 3)
			So(err, ShouldBeNil)
			So(len(dests), ShouldEqual, 3)
			So(dests[0].Rating, ShouldBeGreaterThanOrEqualTo, dests[1].Rating)
			So(dests[1].Rating, ShouldBeGreaterThanOrEqualTo, dests[2].Rating)
			for _, d := range dests {
				So(d.IsFeatured, ShouldBeTrue)
			}
		})

		Convey("关键词命中名称或描述", func() {
			dests, err := env.travel.SearchDestinations(ctx, "古城", "")
			So(err, ShouldBeNil)
			So(len(dests), ShouldBeGreaterThanOrEqualTo, 1)
		})

		Convey("分类过滤与关键词叠加", func() {
			dests, err := env.travel.SearchDestinations(ctx, "海", "海岛")
			So(err, ShouldBeNil)
			for _, d := range dests {
				So(d.Category, ShouldEqual, "海岛")
			}
		})

		Convey("按分类浏览只返回该分类", func() {
			dests, err := env.travel.DestinationsByCategory(ctx, "海岛", 0)
			So(err, ShouldBeNil)
			So(len(dests), ShouldBeGreaterThanOrEqualTo, 1)
			for _, d := range dests {
				So(d.Category, ShouldEqual, "海岛")
			}
		})
	})
}
