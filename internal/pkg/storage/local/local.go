package local

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/cespare/xxhash/v2"
	"github.com/gabriel-vasile/mimetype"

	"cogniverse/internal/pkg/storage"
)

// Archive 本地文件系统归档
type Archive struct {
	basePath string
	baseURL  string
}

// New 创建本地归档，basePath 不存在时自动创建
func New(basePath, baseURL string) (*Archive, error) {
	if basePath == "" {
		return nil, fmt.Errorf("local storage base path is required")
	}
	abs, err := filepath.Abs(basePath)
	if err != nil {
		return nil, fmt.Errorf("resolve base path: %w", err)
	}
	if err := os.MkdirAll(abs, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create base path: %w", err)
	}
	return &Archive{basePath: abs, baseURL: strings.TrimSuffix(baseURL, "/")}, nil
}

// resolve 对象键转换为 basePath 下的路径，拒绝越界
func (a *Archive) resolve(key string) (string, error) {
	full := filepath.Join(a.basePath, filepath.FromSlash(key))
	rel, err := filepath.Rel(a.basePath, full)
	if err != nil || rel == "." || strings.HasPrefix(rel, "..") {
		return "", fmt.Errorf("invalid object key: %q", key)
	}
	return full, nil
}

// Put 写入临时文件后重命名
func (a *Archive) Put(ctx context.Context, key string, data io.Reader, contentType string) (string, error) {
	full, err := a.resolve(key)
	if err != nil {
		return "", err
	}
	if err := os.MkdirAll(filepath.Dir(full), 0o755); err != nil {
		return "", fmt.Errorf("failed to create directory: %w", err)
	}

	tmp, err := os.CreateTemp(filepath.Dir(full), ".upload-*")
	if err != nil {
		return "", fmt.Errorf("failed to create file: %w", err)
	}
	if _, err := io.Copy(tmp, data); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return "", fmt.Errorf("failed to write file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return "", fmt.Errorf("failed to write file: %w", err)
	}
	if err := os.Rename(tmp.Name(), full); err != nil {
		os.Remove(tmp.Name())
		return "", fmt.Errorf("failed to store file: %w", err)
	}
	return a.url(key), nil
}

// Get 打开对象
func (a *Archive) Get(ctx context.Context, key string) (io.ReadCloser, error) {
	full, err := a.resolve(key)
	if err != nil {
		return nil, err
	}
	f, err := os.Open(full)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", storage.ErrObjectNotFound, key)
		}
		return nil, fmt.Errorf("failed to open file: %w", err)
	}
	return f, nil
}

// Delete 删除对象
func (a *Archive) Delete(ctx context.Context, key string) error {
	full, err := a.resolve(key)
	if err != nil {
		return err
	}
	if err := os.Remove(full); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("failed to delete file: %w", err)
	}
	return nil
}

// Exists 检查对象是否存在
func (a *Archive) Exists(ctx context.Context, key string) (bool, error) {
	full, err := a.resolve(key)
	if err != nil {
		return false, err
	}
	if _, err := os.Stat(full); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return false, nil
		}
		return false, err
	}
	return true, nil
}

// Stat ETag 为内容的 xxhash
func (a *Archive) Stat(ctx context.Context, key string) (*storage.ObjectInfo, error) {
	full, err := a.resolve(key)
	if err != nil {
		return nil, err
	}
	info, err := os.Stat(full)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", storage.ErrObjectNotFound, key)
		}
		return nil, fmt.Errorf("failed to stat file: %w", err)
	}

	f, err := os.Open(full)
	if err != nil {
		return nil, fmt.Errorf("failed to open file: %w", err)
	}
	defer f.Close()

	h := xxhash.New()
	if _, err := io.Copy(h, f); err != nil {
		return nil, fmt.Errorf("failed to calculate hash: %w", err)
	}

	contentType := "application/octet-stream"
	if mt, err := mimetype.DetectFile(full); err == nil {
		contentType = mt.String()
	}

	return &storage.ObjectInfo{
		Key:          key,
		Size:         info.Size(),
		ContentType:  contentType,
		ETag:         strconv.FormatUint(h.Sum64(), 16),
		LastModified: info.ModTime(),
	}, nil
}

// DownloadURL 本地存储没有签名机制，直接返回访问地址
func (a *Archive) DownloadURL(ctx context.Context, key string, expiresIn time.Duration) (string, error) {
	if _, err := a.resolve(key); err != nil {
		return "", err
	}
	return a.url(key), nil
}

// Type 存储类型
func (a *Archive) Type() storage.Type {
	return storage.TypeLocal
}

func (a *Archive) url(key string) string {
	key = strings.ReplaceAll(key, "\\", "/")
	if a.baseURL == "" {
		return "file://" + filepath.ToSlash(filepath.Join(a.basePath, key))
	}
	return a.baseURL + "/" + key
}
