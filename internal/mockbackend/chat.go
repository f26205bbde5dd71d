package mockbackend

import (
	"fmt"
	"net/http"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// chatMessage OpenAI 风格的对话消息
type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// chatRequest /v1/chat/completions 请求体
type chatRequest struct {
	Model    string        `json:"model"`
	Messages []chatMessage `json:"messages"`
}

var (
	promptDestRe = regexp.MustCompile(`目的地[:：]\s*(\S+)`)
	promptDaysRe = regexp.MustCompile(`天数[:：]\s*(\d+)`)
)

// handleChatCompletions POST /v1/chat/completions
// 返回确定性的预制回复：行程类提示词回 JSON（带 markdown 代码块，
// 模拟真实模型的输出习惯），其余回纯文本
func (s *Server) handleChatCompletions(c *gin.Context) {
	var req chatRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": gin.H{"message": "invalid request body", "type": "invalid_request_error"},
		})
		return
	}

	prompt := ""
	for i := len(req.Messages) - 1; i >= 0; i-- {
		if req.Messages[i].Role == "user" {
			prompt = req.Messages[i].Content
			break
		}
	}

	var content string
	if strings.Contains(prompt, "JSON") {
		content = cannedPlanJSON(prompt)
	} else {
		content = cannedTextAnswer(prompt)
	}

	c.JSON(http.StatusOK, gin.H{
		"id":      "chatcmpl-" + uuid.New().String(),
		"object":  "chat.completion",
		"created": time.Now().Unix(),
		"model":   req.Model,
		"choices": []gin.H{{
			"index":         0,
			"message":       gin.H{"role": "assistant", "content": content},
			"finish_reason": "stop",
		}},
		"usage": gin.H{
			"prompt_tokens":     len(prompt) / 4,
			"completion_tokens": len(content) / 4,
			"total_tokens":      (len(prompt) + len(content)) / 4,
		},
	})
}

// cannedPlanJSON 按提示词中的目的地与天数生成预制行程JSON
func cannedPlanJSON(prompt string) string {
	destination := "三亚"
	if m := promptDestRe.FindStringSubmatch(prompt); m != nil {
		destination = m[1]
	}
	days := 3
	if m := promptDaysRe.FindStringSubmatch(prompt); m != nil {
		days, _ = strconv.Atoi(m[1])
	}
	if days <= 0 || days > 30 {
		days = 3
	}

	var itinerary strings.Builder
	for d := 1; d <= days; d++ {
		if d > 1 {
			itinerary.WriteString(",")
		}
		itinerary.WriteString(fmt.Sprintf(`
    {
      "day": %d,
      "theme": "第%d天：%s精华游",
      "activities": [
        {
          "time": "09:00-12:00",
          "title": "上午景点游览",
          "location": "%s市区",
          "description": "游览当地代表性景点",
          "estimated_cost": 120
        },
        {
          "time": "14:00-17:00",
          "title": "下午深度体验",
          "location": "%s周边",
          "description": "体验当地特色活动",
          "estimated_cost": 200
        }
      ]
    }`, d, d, destination, destination, destination))
	}

	return fmt.Sprintf("```json\n{\n"+
		`  "title": "%s%d日游",`+"\n"+
		`  "description": "为您定制的%s行程，兼顾经典景点与在地体验",`+"\n"+
		`  "destination": "%s",`+"\n"+
		`  "days": %d,`+"\n"+
		`  "budget": %d,`+"\n"+
		`  "transportation": "高铁",`+"\n"+
		`  "accommodation": "酒店",`+"\n"+
		`  "tags": ["美食", "自然"],`+"\n"+
		`  "itinerary": [%s`+"\n  ]\n}\n```",
		destination, days, destination, destination, days, days*800, itinerary.String())
}

// cannedTextAnswer 纯文本预制回答
func cannedTextAnswer(prompt string) string {
	return "这是一条本地测试回复。你的问题是：" + prompt +
		"\n\n建议：提前查看目的地天气，错峰出行，预留机动时间。"
}
