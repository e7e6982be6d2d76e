package server

import (
	"context"
	"fmt"

	"github.com/rs/zerolog/log"
	"go.mongodb.org/mongo-driver/mongo"

	"cogniverse/internal/ai"
	"cogniverse/internal/config"
	"cogniverse/internal/handler"
	"cogniverse/internal/pkg/cache"
	"cogniverse/internal/pkg/fileproc"
	"cogniverse/internal/pkg/mongodb"
	"cogniverse/internal/pkg/storagefactory"
	sessionrepo "cogniverse/internal/repository/session"
	"cogniverse/internal/service"
)

// Dependencies 服务运行所需的全部组件
type Dependencies struct {
	Sessions *service.SessionService
	Files    *service.FileService
	Chat     *service.ChatService
	Gateway  *ai.Gateway
	Checks   map[string]handler.ReadyCheck

	mongo *mongodb.Client
	redis *cache.RedisCache
}

// AppInfo 导出文件中的应用信息
func AppInfo(cfg *config.Config) service.AppInfo {
	return service.AppInfo{Name: cfg.App.Name, Version: cfg.App.Version}
}

// BuildDependencies 按配置连接外部依赖并组装服务
// 会话后端依赖的连接失败时返回错误，其余可选依赖失败只记录告警
func BuildDependencies(ctx context.Context, cfg *config.Config) (*Dependencies, error) {
	deps := &Dependencies{Checks: map[string]handler.ReadyCheck{}}

	// 初始化 MongoDB (mongo 会话后端需要)
	var db *mongo.Database
	if cfg.Session.Backend == "mongo" {
		client, err := mongodb.New(&cfg.Mongo)
		if err != nil {
			return nil, fmt.Errorf("connect to MongoDB: %w", err)
		}
		deps.mongo = client
		db = client.Database()
		deps.Checks["mongo"] = client.Ping
		log.Info().Str("database", cfg.Mongo.Database).Msg("connected to MongoDB")
	}

	// 初始化 Redis (redis 会话后端需要)
	if cfg.Session.Backend == "redis" {
		rc, err := cache.NewRedisCache(&cfg.Redis)
		if err != nil {
			deps.Close(ctx)
			return nil, fmt.Errorf("connect to Redis: %w", err)
		}
		deps.redis = rc
		deps.Checks["redis"] = func(ctx context.Context) error { return rc.Client().Ping(ctx).Err() }
		log.Info().Str("addr", cfg.Redis.Addr).Msg("connected to Redis")
	}

	gen, err := ai.NewGenerator(ctx, &cfg.AI)
	if err != nil {
		deps.Close(ctx)
		return nil, fmt.Errorf("initialize generator: %w", err)
	}
	deps.Gateway = ai.NewGateway(gen, cfg.Gateway, cfg.App.DefaultModel,
		ai.WithCatalog(ai.ProviderCatalog(cfg.AI.Provider, cfg.AI.Model)))
	defaultModel := deps.Gateway.DefaultModel()

	store, err := sessionrepo.NewStore(&cfg.Session, defaultModel, deps.redis, db)
	if err != nil {
		deps.Close(ctx)
		return nil, err
	}
	if ms, ok := store.(*sessionrepo.MongoStore); ok {
		if err := mongodb.EnsureIndexes(db, ms); err != nil {
			log.Warn().Err(err).Msg("failed to ensure indexes")
		}
	}
	deps.Checks["session_store"] = func(ctx context.Context) error {
		_, err := store.List(ctx)
		return err
	}

	archive, err := storagefactory.NewArchive(ctx, &cfg.Storage)
	if err != nil {
		log.Warn().Err(err).Msg("failed to initialize upload archive, continuing without it")
		archive = nil
	} else if archive != nil {
		log.Info().Str("type", string(archive.Type())).Msg("upload archive enabled")
	}

	deps.Sessions = service.NewSessionService(store, service.NewSessionLocks(), AppInfo(cfg), defaultModel)
	deps.Files = service.NewFileService(NewProcessor(&cfg.Files), archive, cfg.Files.MaxPerSession)
	deps.Chat = service.NewChatService(deps.Gateway, deps.Files)
	return deps, nil
}

// NewProcessor 按配置创建文件处理管线
func NewProcessor(cfg *config.FilesConfig) *fileproc.Processor {
	opts := fileproc.Options{
		MaxFileSize:   cfg.MaxFileSize(),
		PreviewLength: cfg.PreviewLength,
	}
	if cfg.CJKSegmentation {
		opts.Words = fileproc.NewSegmentingCounter()
	}
	if cfg.OCREnabled {
		if r := fileproc.DetectTesseract(cfg.OCRCommand, cfg.OCRLanguage); r != nil {
			opts.OCR = r
		} else {
			log.Warn().Str("command", cfg.OCRCommand).Msg("OCR enabled but tesseract not found")
		}
	}
	return fileproc.NewProcessor(opts)
}

// Close 关闭外部连接
func (d *Dependencies) Close(ctx context.Context) {
	if d.mongo != nil {
		if err := d.mongo.Close(ctx); err != nil {
			log.Error().Err(err).Msg("failed to close MongoDB connection")
		}
	}
	if d.redis != nil {
		if err := d.redis.Close(); err != nil {
			log.Error().Err(err).Msg("failed to close Redis connection")
		}
	}
}
