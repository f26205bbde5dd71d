package ai

import (
	"testing"

	. "github.com/smartystreets/goconvey/convey"
)

func TestCleanJSONContent(t *testing.T) {
	Convey("CleanJSONContent 清理模型输出的包装", t, func() {
		Convey("剥离 markdown 代码块标记", func() {
			content := "```json\n{\"title\":\"三亚之旅\"}\n```"
			So(CleanJSONContent(content), ShouldEqual, `{"title":"三亚之旅"}`)
		})

		Convey("截取说明文字中间的 JSON 对象", func() {
			content := "好的，以下是行程：\n{\"title\":\"行程\"}\n祝旅途愉快！"
			So(CleanJSONContent(content), ShouldEqual, `{"title":"行程"}`)
		})

		Convey("纯文本原样返回", func() {
			So(CleanJSONContent("没有结构化内容"), ShouldEqual, "没有结构化内容")
		})
	})
}

func TestExtractPlan(t *testing.T) {
	Convey("ExtractPlan 优先JSON解析，失败时标签回退", t, func() {
		Convey("合法JSON直接解析", func() {
			content := "```json\n" + `{
  "title": "成都美食3日游",
  "description": "吃遍成都",
  "destination": "成都",
  "days": 3,
  "budget": 2000,
  "transportation": "高铁",
  "accommodation": "酒店",
  "tags": ["美食"],
  "itinerary": [
    {
      "day": 1,
      "theme": "市区觅食",
      "activities": [
        {"time": "09:00-11:00", "title": "宽窄巷子", "location": "青羊区", "estimated_cost": 50}
      ]
    }
  ]
}` + "\n```"

			plan := ExtractPlan(content)
			So(plan.FromJSON, ShouldBeTrue)
			So(plan.Title, ShouldEqual, "成都美食3日游")
			So(plan.Destination, ShouldEqual, "成都")
			So(plan.Days, ShouldEqual, 3)
			So(plan.Budget, ShouldEqual, 2000)
			So(plan.Transportation, ShouldEqual, "高铁")
			So(len(plan.Itinerary), ShouldEqual, 1)
			So(len(plan.Itinerary[0].Activities), ShouldEqual, 1)
			So(plan.Itinerary[0].Activities[0].Title, ShouldEqual, "宽窄巷子")
		})

		Convey("JSON即使带说明文字也优先于标签", func() {
			content := `标题：不应该用这个
以下是JSON：
{"title":"用这个","destination":"大理","days":2}`

			plan := ExtractPlan(content)
			So(plan.FromJSON, ShouldBeTrue)
			So(plan.Title, ShouldEqual, "用这个")
		})

		Convey("非JSON回复走中文标签回退", func() {
			content := `为您规划如下：
标题：西安历史5日游
目的地：西安
预算：3000元
行程共5天，建议乘坐高铁前往，入住酒店。

第1天：古城墙
09:00-12:00 参观城墙
14:00 钟楼附近自由活动

第2天：兵马俑
08:30-12:30 兵马俑博物馆`

			plan := ExtractPlan(content)
			So(plan.FromJSON, ShouldBeFalse)
			So(plan.Title, ShouldEqual, "西安历史5日游")
			So(plan.Destination, ShouldEqual, "西安")
			So(plan.Budget, ShouldEqual, 3000)
			So(plan.Days, ShouldEqual, 5)
			So(plan.Transportation, ShouldEqual, "高铁")
			So(plan.Accommodation, ShouldEqual, "酒店")
			So(len(plan.Itinerary), ShouldEqual, 2)
			So(plan.Itinerary[0].Day, ShouldEqual, 1)
			So(plan.Itinerary[0].Theme, ShouldEqual, "古城墙")
			So(len(plan.Itinerary[0].Activities), ShouldEqual, 2)
			So(plan.Itinerary[0].Activities[0].Time, ShouldEqual, "09:00-12:00")
			So(plan.Itinerary[1].Activities[0].Title, ShouldEqual, "兵马俑博物馆")
		})

		Convey("全角冒号与半角冒号都能识别", func() {
			plan := ExtractPlan("标题: 青岛周末游\n目的地: 青岛\n预算: 800元")
			So(plan.Title, ShouldEqual, "青岛周末游")
			So(plan.Destination, ShouldEqual, "青岛")
			So(plan.Budget, ShouldEqual, 800)
		})

		Convey("什么都提取不到时填充默认值", func() {
			plan := ExtractPlan("抱歉，我无法理解你的需求。")
			So(plan.Title, ShouldEqual, "AI生成行程")
			So(plan.Destination, ShouldEqual, "待定")
			So(plan.Days, ShouldEqual, 1)
			So(plan.Transportation, ShouldEqual, "待定")
			So(plan.Accommodation, ShouldEqual, "待定")
		})

		Convey("有目的地没标题时用目的地组装标题", func() {
			plan := ExtractPlan("目的地：昆明\n大概需要4天")
			So(plan.Title, ShouldEqual, "昆明之旅")
		})
	})
}

func TestExtractTags(t *testing.T) {
	Convey("ExtractTags 从文本中提取兴趣标签", t, func() {
		Convey("命中词表的词去重后返回", func() {
			tags := ExtractTags("这趟行程以美食和自然风光为主，还有美食街可以逛。", 5)
			So(tags, ShouldContain, "美食")
			So(tags, ShouldContain, "自然")

			seen := map[string]int{}
			for _, tag := range tags {
				seen[tag]++
			}
			So(seen["美食"], ShouldEqual, 1)
		})

		Convey("数量不超过上限", func() {
			text := "美食 文化 历史 自然 购物 摄影 亲子 徒步"
			tags := ExtractTags(text, 3)
			So(len(tags), ShouldBeLessThanOrEqualTo, 3)
		})

		Convey("无命中时返回空", func() {
			So(ExtractTags("今天天气不错", 5), ShouldBeEmpty)
		})
	})
}
