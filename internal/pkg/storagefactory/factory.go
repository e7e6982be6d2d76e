package storagefactory

import (
	"context"
	"fmt"

	"cogniverse/internal/config"
	"cogniverse/internal/pkg/storage"
	"cogniverse/internal/pkg/storage/local"
	"cogniverse/internal/pkg/storage/oss"
)

// NewArchive 根据配置创建上传归档，Type 为空时返回 nil 表示不归档
func NewArchive(ctx context.Context, cfg *config.StorageConfig) (storage.Archive, error) {
	if cfg == nil || cfg.Type == "" {
		return nil, nil
	}

	switch storage.Type(cfg.Type) {
	case storage.TypeLocal:
		if cfg.Local == nil {
			return nil, fmt.Errorf("local storage config is required")
		}
		a, err := local.New(cfg.Local.BasePath, cfg.Local.BaseURL)
		if err != nil {
			return nil, err
		}
		return a, nil
	case storage.TypeOSS:
		if cfg.OSS == nil {
			return nil, fmt.Errorf("OSS storage config is required")
		}
		a, err := oss.New(
			cfg.OSS.Endpoint,
			cfg.OSS.Bucket,
			cfg.OSS.AccessKeyID,
			cfg.OSS.AccessKeySecret,
			cfg.OSS.PresignExpiry,
		)
		if err != nil {
			return nil, err
		}
		return a, nil
	default:
		return nil, fmt.Errorf("unsupported storage type: %s", cfg.Type)
	}
}
