package mockbackend

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	"tripflow/internal/config"
	"tripflow/internal/mockbackend/middleware"
	"tripflow/internal/pkg/jwt"
)

// 会话token参数
// mock 后端的签名密钥是公开的，只用于本地开发与测试
const (
	sessionSecret = "tripflow-mock-session-secret"
	sessionExpiry = 7 * 24 * time.Hour
)

// Server 本地 mock 后端
// 模拟客户端依赖的两个外部服务：PostgREST 风格的 REST/RPC 接口
// 与 OpenAI 风格的 chat completions 接口
type Server struct {
	cfg     *config.Config
	engine  *gin.Engine
	store   *Store
	jwtUtil *jwt.JWT
}

// New 创建 mock 后端实例
func New(cfg *config.Config) *Server {
	switch cfg.Mock.Mode {
	case "debug":
		gin.SetMode(gin.DebugMode)
	case "test":
		gin.SetMode(gin.TestMode)
	default:
		gin.SetMode(gin.ReleaseMode)
	}

	srv := &Server{
		cfg:     cfg,
		engine:  gin.New(),
		store:   NewStore(),
		jwtUtil: jwt.NewJWT(sessionSecret, sessionExpiry),
	}
	srv.setupRoutes()
	return srv
}

// setupRoutes 设置路由
func (s *Server) setupRoutes() {
	s.engine.Use(middleware.Recovery())
	s.engine.Use(middleware.RequestID())
	s.engine.Use(middleware.Logger())

	s.engine.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	rest := s.engine.Group("/rest/v1")
	rest.Use(s.requireAPIKey())
	{
		rest.GET("/:table", s.handleSelect)
		rest.POST("/:table", s.handleInsert)
		rest.PATCH("/:table", s.handleUpdate)
		rest.DELETE("/:table", s.handleDelete)

		// /rest/v1/rpc/{fn} 复用两段参数路由，处理器里判别
		rest.POST("/:table/:fn", s.handleRPC)
	}

	s.engine.POST("/v1/chat/completions", s.handleChatCompletions)
}

// Run 启动服务并等待关闭信号
func (s *Server) Run(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:         addr,
		Handler:      s.engine,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 60 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case <-ctx.Done():
		log.Info().Msg("shutting down mock server...")
		return srv.Shutdown(context.Background())
	case err := <-errCh:
		return err
	}
}

// Engine 获取 Gin 引擎 (用于测试)
func (s *Server) Engine() *gin.Engine {
	return s.engine
}
