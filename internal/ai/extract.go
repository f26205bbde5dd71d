package ai

import (
	"encoding/json"
	"regexp"
	"strconv"
	"strings"
	"sync"

	"github.com/go-ego/gse"
	"github.com/rs/zerolog/log"
)

// ExtractedPlan 从 AI 回复中提取出的结构化行程
type ExtractedPlan struct {
	Title          string
	Description    string
	Destination    string
	Days           int
	Budget         int
	Transportation string
	Accommodation  string
	Tags           []string
	Itinerary      []*ItineraryDay
	FromJSON       bool // true 表示来自 JSON 解析，false 表示标签回退
}

// ItineraryDay 行程中的一天
type ItineraryDay struct {
	Day        int                  `json:"day"`
	Theme      string               `json:"theme"`
	Activities []*ItineraryActivity `json:"activities"`
}

// ItineraryActivity 行程中的单个活动
type ItineraryActivity struct {
	Time          string  `json:"time"`
	Title         string  `json:"title"`
	Location      string  `json:"location"`
	Description   string  `json:"description"`
	EstimatedCost float64 `json:"estimated_cost"`
}

// jsonPlan 模型按提示词输出的 JSON 结构
type jsonPlan struct {
	Title          string          `json:"title"`
	Description    string          `json:"description"`
	Destination    string          `json:"destination"`
	Days           int             `json:"days"`
	Budget         float64         `json:"budget"`
	Transportation string          `json:"transportation"`
	Accommodation  string          `json:"accommodation"`
	Tags           []string        `json:"tags"`
	Itinerary      []*ItineraryDay `json:"itinerary"`
}

// CleanJSONContent 清理 AI 返回内容中的 markdown 代码块标记
// 并截取第一个 { 到最后一个 } 之间的内容
func CleanJSONContent(content string) string {
	content = strings.TrimSpace(content)

	// 移除 markdown 代码块标记
	content = strings.TrimPrefix(content, "```json")
	content = strings.TrimPrefix(content, "```")
	content = strings.TrimSuffix(content, "```")
	content = strings.TrimSpace(content)

	// 截取 JSON 对象部分（模型有时在前后附带说明文字）
	start := strings.Index(content, "{")
	end := strings.LastIndex(content, "}")
	if start >= 0 && end > start {
		content = content[start : end+1]
	}

	return content
}

// ExtractPlan 从 AI 回复中提取行程
// 优先解析 JSON；失败时回退到中文标签逐行提取，保证任何回复都能产出可保存的行程
func ExtractPlan(content string) *ExtractedPlan {
	if plan, ok := extractFromJSON(content); ok {
		return plan
	}

	log.Debug().Msg("AI 回复非 JSON 格式，回退标签提取")
	return extractFromLabels(content)
}

// extractFromJSON 尝试 JSON 解析
func extractFromJSON(content string) (*ExtractedPlan, bool) {
	cleaned := CleanJSONContent(content)
	if cleaned == "" || !strings.HasPrefix(cleaned, "{") {
		return nil, false
	}

	var jp jsonPlan
	if err := json.Unmarshal([]byte(cleaned), &jp); err != nil {
		return nil, false
	}
	// 没有任何有效字段时视为解析失败
	if jp.Title == "" && jp.Destination == "" && len(jp.Itinerary) == 0 {
		return nil, false
	}

	plan := &ExtractedPlan{
		Title:          jp.Title,
		Description:    jp.Description,
		Destination:    jp.Destination,
		Days:           jp.Days,
		Budget:         int(jp.Budget),
		Transportation: jp.Transportation,
		Accommodation:  jp.Accommodation,
		Tags:           jp.Tags,
		Itinerary:      jp.Itinerary,
		FromJSON:       true,
	}
	applyDefaults(plan, content)
	return plan, true
}

// 标签回退用正则
var (
	titleRe       = regexp.MustCompile(`标题[:：]\s*(.+)`)
	destinationRe = regexp.MustCompile(`目的地[:：]\s*(.+)`)
	budgetRe      = regexp.MustCompile(`预算[:：]?\s*[￥¥]?\s*(\d+)\s*元`)
	daysRe        = regexp.MustCompile(`(\d+)\s*天`)
	dayHeaderRe   = regexp.MustCompile(`第\s*(\d+)\s*天[:：]?\s*(.*)`)
	timeSlotRe    = regexp.MustCompile(`(\d{1,2}:\d{2}(?:\s*[-~至]\s*\d{1,2}:\d{2})?)\s*[:：]?\s*(.+)`)
)

// extractFromLabels 逐行扫描中文标签
func extractFromLabels(content string) *ExtractedPlan {
	plan := &ExtractedPlan{}

	if m := titleRe.FindStringSubmatch(content); m != nil {
		plan.Title = strings.TrimSpace(m[1])
	}
	if m := destinationRe.FindStringSubmatch(content); m != nil {
		plan.Destination = strings.TrimSpace(m[1])
	}
	if m := budgetRe.FindStringSubmatch(content); m != nil {
		plan.Budget, _ = strconv.Atoi(m[1])
	}
	if m := daysRe.FindStringSubmatch(content); m != nil {
		plan.Days, _ = strconv.Atoi(m[1])
	}

	plan.Transportation = scanKeyword(content, []string{"飞机", "高铁", "火车", "自驾", "大巴", "轮船"})
	plan.Accommodation = scanKeyword(content, []string{"酒店", "民宿", "青年旅社", "客栈", "度假村"})
	plan.Itinerary = extractDays(content)
	plan.Tags = ExtractTags(content, 5)

	applyDefaults(plan, content)
	return plan
}

// extractDays 按「第N天」切分回复并提取当日活动
func extractDays(content string) []*ItineraryDay {
	var days []*ItineraryDay
	var current *ItineraryDay

	for _, line := range strings.Split(content, "\n") {
		line = strings.TrimSpace(strings.TrimLeft(line, "#*- "))
		if line == "" {
			continue
		}

		if m := dayHeaderRe.FindStringSubmatch(line); m != nil {
			n, _ := strconv.Atoi(m[1])
			current = &ItineraryDay{Day: n, Theme: strings.TrimSpace(m[2])}
			days = append(days, current)
			continue
		}
		if current == nil {
			continue
		}
		if m := timeSlotRe.FindStringSubmatch(line); m != nil {
			current.Activities = append(current.Activities, &ItineraryActivity{
				Time:  strings.TrimSpace(m[1]),
				Title: strings.TrimSpace(m[2]),
			})
		}
	}

	return days
}

// scanKeyword 返回文本中出现的第一个关键词，都没有则返回「待定」
func scanKeyword(content string, keywords []string) string {
	for _, kw := range keywords {
		if strings.Contains(content, kw) {
			return kw
		}
	}
	return "待定"
}

// applyDefaults 填充必填字段默认值
func applyDefaults(plan *ExtractedPlan, content string) {
	if plan.Title == "" {
		if plan.Destination != "" {
			plan.Title = plan.Destination + "之旅"
		} else {
			plan.Title = "AI生成行程"
		}
	}
	if plan.Destination == "" {
		plan.Destination = "待定"
	}
	if plan.Days <= 0 {
		if n := len(plan.Itinerary); n > 0 {
			plan.Days = n
		} else {
			plan.Days = 1
		}
	}
	if plan.Transportation == "" {
		plan.Transportation = "待定"
	}
	if plan.Accommodation == "" {
		plan.Accommodation = "待定"
	}
	if len(plan.Tags) == 0 {
		plan.Tags = ExtractTags(content, 5)
	}
}

// 分词器全局共享，词典只加载一次
var (
	segmenter    gse.Segmenter
	segmenterOne sync.Once
)

// 兴趣标签词表
var tagVocabulary = []string{
	"美食", "文化", "历史", "自然",
	"购物", "摄影", "亲子", "徒步",
	"海岛", "温泉", "古镇", "博物馆",
	"夜景", "动物", "滑雪", "露营",
	"登山", "潜水", "寺庙", "演出",
}

// ExtractTags 从文本中分词提取兴趣标签，最多 max 个
func ExtractTags(content string, max int) []string {
	segmenterOne.Do(func() {
		if err := segmenter.LoadDict(); err != nil {
			log.Warn().Err(err).Msg("分词词典加载失败")
		}
	})

	seen := make(map[string]bool)
	var tags []string
	for _, word := range segmenter.Cut(content, true) {
		// 分词结果可能是「自然风光」这类复合词，按词表项做包含匹配
		for _, vocab := range tagVocabulary {
			if !strings.Contains(word, vocab) || seen[vocab] {
				continue
			}
			seen[vocab] = true
			tags = append(tags, vocab)
		}
		if len(tags) >= max {
			break
		}
	}
	if len(tags) > max {
		tags = tags[:max]
	}
	return tags
}
