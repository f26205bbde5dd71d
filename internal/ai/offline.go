package ai

import (
	"context"
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

var (
	offlineDestRe = regexp.MustCompile(`目的地[:：]\s*(\S+)`)
	offlineDaysRe = regexp.MustCompile(`天数[:：]\s*(\d+)`)
)

// offlineGenerator 无网络时的文本生成替身
// 行程类提示词产出可解析的预制JSON，其余产出固定文案
type offlineGenerator struct{}

func (g *offlineGenerator) Generate(ctx context.Context, system, user string, opts ...GenOption) (string, error) {
	if strings.Contains(user, "JSON") {
		return offlinePlanJSON(user), nil
	}
	return "（离线模式）当前未配置AI服务，以下是通用建议：提前查看目的地天气与交通，" +
		"热门景点尽量错峰，预留机动时间。配置 ai.api_key 后可获得针对性回答。", nil
}

// offlinePlanJSON 按提示词中的目的地与天数拼装预制行程
func offlinePlanJSON(prompt string) string {
	destination := "待定"
	if m := offlineDestRe.FindStringSubmatch(prompt); m != nil {
		destination = m[1]
	}
	days := 3
	if m := offlineDaysRe.FindStringSubmatch(prompt); m != nil {
		if n, err := strconv.Atoi(m[1]); err == nil && n > 0 && n <= 30 {
			days = n
		}
	}

	var itinerary strings.Builder
	for d := 1; d <= days; d++ {
		if d > 1 {
			itinerary.WriteString(",")
		}
		fmt.Fprintf(&itinerary, `{"day":%d,"theme":"第%d天","activities":[`+
			`{"time":"09:00-12:00","title":"上午游览","location":"%s","estimated_cost":100},`+
			`{"time":"14:00-17:00","title":"下午活动","location":"%s","estimated_cost":150}]}`,
			d, d, destination, destination)
	}

	return fmt.Sprintf(`{"title":"%s%d日游","description":"离线生成的基础行程，仅供参考",`+
		`"destination":"%s","days":%d,"budget":%d,"transportation":"待定",`+
		`"accommodation":"待定","tags":[],"itinerary":[%s]}`,
		destination, days, destination, days, days*600, itinerary.String())
}
