package storage

import (
	"context"
	"errors"
	"io"
	"path"
	"regexp"
	"strings"
	"time"
)

// ErrObjectNotFound 归档对象不存在
var ErrObjectNotFound = errors.New("object not found")

// Archive 上传原件归档存储
type Archive interface {
	// Put 写入对象，返回可访问的地址
	Put(ctx context.Context, key string, data io.Reader, contentType string) (string, error)

	// Get 读取对象，不存在时返回 ErrObjectNotFound
	Get(ctx context.Context, key string) (io.ReadCloser, error)

	// Delete 删除对象，不存在视为成功
	Delete(ctx context.Context, key string) error

	// Exists 检查对象是否存在
	Exists(ctx context.Context, key string) (bool, error)

	// Stat 获取对象信息
	Stat(ctx context.Context, key string) (*ObjectInfo, error)

	// DownloadURL 生成限时下载地址
	DownloadURL(ctx context.Context, key string, expiresIn time.Duration) (string, error)

	// Type 存储类型
	Type() Type
}

// ObjectInfo 归档对象信息
type ObjectInfo struct {
	Key          string
	Size         int64
	ContentType  string
	ETag         string
	LastModified time.Time
}

// Type 存储类型
type Type string

const (
	TypeLocal Type = "local" // 本地文件系统
	TypeOSS   Type = "oss"   // 阿里云OSS
)

var unsafeKeyChars = regexp.MustCompile(`[^A-Za-z0-9._-]+`)

// UploadKey 会话上传原件的对象键: uploads/<session>/<fileID>-<name>
func UploadKey(sessionID, fileID, name string) string {
	base := path.Base(strings.ReplaceAll(name, "\\", "/"))
	base = strings.Trim(unsafeKeyChars.ReplaceAllString(base, "_"), "._")
	if base == "" {
		base = "file"
	}
	return path.Join("uploads", sessionID, fileID+"-"+base)
}
