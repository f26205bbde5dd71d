package ai

import (
	"context"
	"errors"
	"time"

	"github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/schema"
	"github.com/rs/zerolog/log"

	"tripflow/internal/ai/component"
	"tripflow/internal/config"
)

// 常见错误
var (
	ErrEmptyResponse = errors.New("AI 返回内容为空")
)

// GenOptions 单次生成的可选参数
type GenOptions struct {
	Temperature *float32
}

// GenOption 设置单次生成参数
type GenOption func(*GenOptions)

// WithTemperature 覆盖本次生成的采样温度
// 不设置时沿用模型构造期的配置值
func WithTemperature(t float32) GenOption {
	return func(o *GenOptions) { o.Temperature = &t }
}

// TextGenerator 文本生成接口
// 由 Client 实现；测试可注入替身
type TextGenerator interface {
	Generate(ctx context.Context, system, user string, opts ...GenOption) (string, error)
}

// Client AI 客户端，封装 ChatModel 调用
type Client struct {
	chatModel model.ChatModel
	timeout   time.Duration
}

// NewClient 创建 AI 客户端
// 未配置 API key 时返回离线替身，生成预制回复而不访问网络
func NewClient(ctx context.Context, cfg *config.AIConfig) (TextGenerator, error) {
	if cfg.APIKey == "" {
		log.Warn().Msg("未配置 AI API key，使用离线预制回复")
		return &offlineGenerator{}, nil
	}

	cm, err := component.NewChatModel(ctx, cfg)
	if err != nil {
		return nil, err
	}

	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 60 * time.Second
	}

	return &Client{
		chatModel: cm,
		timeout:   timeout,
	}, nil
}

// Generate 单轮对话生成
// system 为空时只发送用户消息
func (c *Client) Generate(ctx context.Context, system, user string, opts ...GenOption) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	var o GenOptions
	for _, opt := range opts {
		opt(&o)
	}
	var modelOpts []model.Option
	if o.Temperature != nil {
		modelOpts = append(modelOpts, model.WithTemperature(*o.Temperature))
	}

	messages := make([]*schema.Message, 0, 2)
	if system != "" {
		messages = append(messages, schema.SystemMessage(system))
	}
	messages = append(messages, schema.UserMessage(user))

	start := time.Now()
	resp, err := c.chatModel.Generate(ctx, messages, modelOpts...)
	if err != nil {
		log.Error().Err(err).Dur("elapsed", time.Since(start)).Msg("AI 生成失败")
		return "", err
	}
	if resp == nil || resp.Content == "" {
		return "", ErrEmptyResponse
	}

	log.Debug().
		Dur("elapsed", time.Since(start)).
		Int("response_len", len(resp.Content)).
		Msg("AI 生成完成")

	return resp.Content, nil
}
