package mockbackend

import (
	"net/url"
	"testing"

	. "github.com/smartystreets/goconvey/convey"
)

func TestParseQuery(t *testing.T) {
	Convey("parseQuery 解析 PostgREST 风格查询串", t, func() {
		Convey("等值过滤与排序限制", func() {
			values, _ := url.ParseQuery("user_id=eq.u1&status=eq.planned&order=created_at.desc&limit=5&select=*")
			q := parseQuery(values)

			So(len(q.filters), ShouldEqual, 2)
			So(len(q.orders), ShouldEqual, 1)
			So(q.orders[0].column, ShouldEqual, "created_at")
			So(q.orders[0].asc, ShouldBeFalse)
			So(q.limit, ShouldEqual, 5)
		})

		Convey("or 组解析为独立的过滤组", func() {
			values, _ := url.ParseQuery("or=" + url.QueryEscape("(name.ilike.%海%,description.ilike.%海%)"))
			q := parseQuery(values)

			So(len(q.orGroups), ShouldEqual, 1)
			So(len(q.orGroups[0]), ShouldEqual, 2)
			So(q.orGroups[0][0].column, ShouldEqual, "name")
			So(q.orGroups[0][0].op, ShouldEqual, "ilike")
			So(q.orGroups[0][0].value, ShouldEqual, "%海%")
		})
	})
}

func TestQueryMatch(t *testing.T) {
	Convey("query.matches 行匹配语义", t, func() {
		r := row{
			"name":        "三亚",
			"description": "热带海滨度假胜地",
			"rating":      4.8,
			"is_featured": true,
		}

		Convey("顶层过滤是 AND 关系", func() {
			q := &query{filters: []filter{
				{column: "is_featured", op: "eq", value: "true"},
				{column: "name", op: "eq", value: "三亚"},
			}}
			So(q.matches(r), ShouldBeTrue)

			q.filters = append(q.filters, filter{column: "name", op: "eq", value: "丽江"})
			So(q.matches(r), ShouldBeFalse)
		})

		Convey("or 组内任一命中即可", func() {
			q := &query{orGroups: [][]filter{{
				{column: "name", op: "ilike", value: "%丽江%"},
				{column: "description", op: "ilike", value: "%海滨%"},
			}}}
			So(q.matches(r), ShouldBeTrue)
		})

		Convey("ilike 不区分大小写并支持通配", func() {
			row2 := row{"name": "Sanya Beach"}
			f := filter{column: "name", op: "ilike", value: "%beach%"}
			So(f.match(row2), ShouldBeTrue)
		})

		Convey("数值比较", func() {
			So(filter{column: "rating", op: "gte", value: "4.5"}.match(r), ShouldBeTrue)
			So(filter{column: "rating", op: "lt", value: "4.5"}.match(r), ShouldBeFalse)
		})
	})
}

func TestSortAndLimit(t *testing.T) {
	Convey("sortAndLimit 多键排序与截断", t, func() {
		rows := []row{
			{"day_number": 2.0, "order_index": 1.0, "title": "c"},
			{"day_number": 1.0, "order_index": 2.0, "title": "b"},
			{"day_number": 1.0, "order_index": 1.0, "title": "a"},
		}

		q := &query{orders: []orderSpec{
			{column: "day_number", asc: true},
			{column: "order_index", asc: true},
		}}
		sorted := q.sortAndLimit(rows)
		So(sorted[0]["title"], ShouldEqual, "a")
		So(sorted[1]["title"], ShouldEqual, "b")
		So(sorted[2]["title"], ShouldEqual, "c")

		q.limit = 2
		So(len(q.sortAndLimit(sorted)), ShouldEqual, 2)
	})
}
