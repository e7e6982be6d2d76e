package server

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	"cogniverse/internal/config"
	"cogniverse/internal/handler"
	chatHandler "cogniverse/internal/handler/chat"
	conversationHandler "cogniverse/internal/handler/conversation"
	fileHandler "cogniverse/internal/handler/file"
	sessionHandler "cogniverse/internal/handler/session"
	"cogniverse/internal/pkg/jwt"
	"cogniverse/internal/server/middleware"
)

const defaultSessionSecret = "default-secret-key-change-in-production"

// Server HTTP 服务器
type Server struct {
	cfg    *config.Config
	engine *gin.Engine
	deps   *Dependencies
	jwt    *jwt.JWT
}

// New 创建服务器实例
func New(cfg *config.Config, deps *Dependencies) *Server {
	// 设置 Gin 模式
	switch cfg.Server.Mode {
	case "debug":
		gin.SetMode(gin.DebugMode)
	case "test":
		gin.SetMode(gin.TestMode)
	default:
		gin.SetMode(gin.ReleaseMode)
	}

	secret := cfg.Session.Secret
	if secret == "" {
		secret = defaultSessionSecret
		log.Warn().Msg("session secret not configured, using default (NOT SECURE for production)")
	}
	expiry := cfg.Session.TokenExpiry
	if expiry <= 0 {
		expiry = 30 * 24 * time.Hour
	}

	srv := &Server{
		cfg:    cfg,
		engine: gin.New(),
		deps:   deps,
		jwt:    jwt.NewJWT(secret, expiry),
	}
	srv.setupRoutes()
	return srv
}

// setupRoutes 设置路由
func (s *Server) setupRoutes() {
	// 全局中间件
	s.engine.Use(middleware.Recovery())
	s.engine.Use(middleware.RequestID())
	s.engine.Use(middleware.Logger())
	s.engine.Use(middleware.CORS(s.cfg.Server.AllowedOrigins...))

	// 健康检查
	healthHandler := handler.NewHealthHandler(s.deps.Checks)
	s.engine.GET("/health", healthHandler.Health)
	s.engine.GET("/ready", healthHandler.Ready)

	// Swagger 文档
	s.engine.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	convHdl := conversationHandler.NewHandler(s.deps.Sessions)
	chatHdl := chatHandler.NewHandler(s.deps.Sessions, s.deps.Chat, s.deps.Gateway)
	fileHdl := fileHandler.NewHandler(s.deps.Sessions, s.deps.Files)
	sessHdl := sessionHandler.NewHandler(s.deps.Sessions, func(model string) bool {
		_, ok := s.deps.Gateway.ModelInfo(model)
		return ok
	})

	// 上传体积由文件服务校验，这里只限制 multipart 的内存缓冲
	s.engine.MaxMultipartMemory = 32 << 20

	// API v1
	v1 := s.engine.Group("/api/v1")
	v1.GET("/models", chatHdl.Models)
	v1.GET("/files/formats", fileHdl.Formats)

	// 需要会话的接口
	sess := v1.Group("")
	sess.Use(middleware.Session(s.jwt))
	{
		// 对话管理
		conv := sess.Group("/conversations")
		conv.GET("", convHdl.List)
		conv.POST("", convHdl.Create)
		conv.DELETE("", convHdl.Clear)
		conv.GET("/current", convHdl.Current)
		conv.GET("/search", convHdl.Search)
		conv.GET("/stats", convHdl.Stats)
		conv.POST("/cleanup", convHdl.Cleanup)
		conv.GET("/:id", convHdl.Get)
		conv.PATCH("/:id", convHdl.Rename)
		conv.DELETE("/:id", convHdl.Delete)
		conv.POST("/:id/select", convHdl.Select)
		conv.GET("/:id/messages", convHdl.History)
		conv.GET("/:id/export", convHdl.Export)
		conv.PUT("/:id/favorite", convHdl.Favorite)
		conv.POST("/:id/tags", convHdl.AddTag)
		conv.DELETE("/:id/tags/:tag", convHdl.RemoveTag)

		// 对话与分析
		sess.POST("/chat", chatHdl.Chat)
		sess.POST("/documents/analyze", chatHdl.AnalyzeDocuments)
		sess.POST("/images/analyze", chatHdl.AnalyzeImage)

		// 文件
		sess.POST("/files", fileHdl.Upload)
		sess.GET("/files", fileHdl.List)
		sess.DELETE("/files", fileHdl.Clear)

		// 会话
		sess.GET("/preferences", sessHdl.GetPreferences)
		sess.PUT("/preferences", sessHdl.UpdatePreferences)
		sess.POST("/session/reset", sessHdl.Reset)
	}
}

// Run 启动服务器，ctx 取消后优雅关闭
func (s *Server) Run(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:         addr,
		Handler:      s.engine,
		ReadTimeout:  s.cfg.Server.ReadTimeout,
		WriteTimeout: s.cfg.Server.WriteTimeout,
	}

	// 启动服务器
	errCh := make(chan error, 1)
	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	// 等待关闭信号或错误
	select {
	case <-ctx.Done():
		log.Info().Msg("shutting down server...")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		err := srv.Shutdown(shutdownCtx)
		s.deps.Close(shutdownCtx)
		return err
	case err := <-errCh:
		s.deps.Close(context.Background())
		return err
	}
}

// Engine 获取 Gin 引擎 (用于测试)
func (s *Server) Engine() *gin.Engine {
	return s.engine
}
