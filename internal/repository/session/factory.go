package session

import (
	"fmt"

	"go.mongodb.org/mongo-driver/mongo"

	"cogniverse/internal/config"
	"cogniverse/internal/pkg/cache"
)

// NewStore 根据配置选择会话存储后端
func NewStore(cfg *config.SessionConfig, defaultModel string, rc *cache.RedisCache, db *mongo.Database) (Store, error) {
	switch cfg.Backend {
	case "memory", "":
		return NewMemoryStore(cfg.TTL, defaultModel), nil
	case "redis":
		if rc == nil {
			return nil, fmt.Errorf("redis session backend requires a redis connection")
		}
		return NewRedisStore(rc, cfg.TTL, defaultModel), nil
	case "mongo":
		if db == nil {
			return nil, fmt.Errorf("mongo session backend requires a mongo connection")
		}
		return NewMongoStore(db, defaultModel), nil
	case "file":
		return NewFileStore(cfg.FileDir, defaultModel)
	default:
		return nil, fmt.Errorf("unsupported session backend: %s", cfg.Backend)
	}
}
