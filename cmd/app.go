package cmd

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/rs/zerolog/log"

	"tripflow/internal/ai"
	"tripflow/internal/config"
	"tripflow/internal/pkg/localstore"
	"tripflow/internal/postgrest"
	authrepo "tripflow/internal/repository/auth"
	travelrepo "tripflow/internal/repository/travel"
	"tripflow/internal/service"
)

// app 命令层的服务装配
// 每次命令执行装配一次：客户端、仓库、会话与行程服务
type app struct {
	cfg     *config.Config
	session *service.SessionService
	travel  *service.TravelService
}

// newApp 装配服务并恢复本地会话
func newApp(ctx context.Context) (*app, error) {
	cfg := GetConfig()
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	client := postgrest.NewClient(&cfg.Supabase)
	store, err := localstore.New(cfg.Session.StorePath)
	if err != nil {
		return nil, fmt.Errorf("failed to open local store: %w", err)
	}

	users := authrepo.NewUserRepo(client)
	session := service.NewSessionService(client, users, store, &cfg.Session)

	plans := travelrepo.NewPlanRepo(client)
	activities := travelrepo.NewActivityRepo(client)
	destinations := travelrepo.NewDestinationRepo(client)
	travel := service.NewTravelService(client, plans, activities, destinations, session)

	// 启动时恢复本地会话；失败只降级为未登录
	if _, err := session.Restore(ctx); err != nil {
		log.Debug().Err(err).Msg("session restore failed")
	}

	return &app{
		cfg:     cfg,
		session: session,
		travel:  travel,
	}, nil
}

// aiService 按配置装配AI服务
func (a *app) aiService(ctx context.Context) (*service.AIService, error) {
	gen, err := ai.NewClient(ctx, &a.cfg.AI)
	if err != nil {
		return nil, fmt.Errorf("failed to init AI client: %w", err)
	}
	return service.NewAIService(gen, a.travel), nil
}

// printJSON 以缩进JSON输出结果
func printJSON(v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	fmt.Println(string(data))
	return nil
}
