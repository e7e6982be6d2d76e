package oss

import (
	"context"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/aliyun/aliyun-oss-go-sdk/oss"

	"cogniverse/internal/pkg/storage"
)

// Archive 阿里云OSS归档
type Archive struct {
	bucket        *oss.Bucket
	bucketName    string
	endpoint      string
	presignExpiry time.Duration
}

// New 创建阿里云OSS归档
func New(endpoint, bucketName, accessKeyID, accessKeySecret string, presignExpiry int) (*Archive, error) {
	client, err := oss.New(endpoint, accessKeyID, accessKeySecret)
	if err != nil {
		return nil, fmt.Errorf("failed to create OSS client: %w", err)
	}
	bucket, err := client.Bucket(bucketName)
	if err != nil {
		return nil, fmt.Errorf("failed to get bucket: %w", err)
	}
	if presignExpiry <= 0 {
		presignExpiry = 3600
	}
	return &Archive{
		bucket:        bucket,
		bucketName:    bucketName,
		endpoint:      strings.TrimPrefix(strings.TrimPrefix(endpoint, "https://"), "http://"),
		presignExpiry: time.Duration(presignExpiry) * time.Second,
	}, nil
}

// Put 服务端上传
func (a *Archive) Put(ctx context.Context, key string, data io.Reader, contentType string) (string, error) {
	if err := a.bucket.PutObject(key, data, oss.ContentType(contentType), oss.WithContext(ctx)); err != nil {
		return "", fmt.Errorf("failed to upload object: %w", err)
	}
	return fmt.Sprintf("https://%s.%s/%s", a.bucketName, a.endpoint, key), nil
}

// Get 下载对象
func (a *Archive) Get(ctx context.Context, key string) (io.ReadCloser, error) {
	body, err := a.bucket.GetObject(key, oss.WithContext(ctx))
	if err != nil {
		if isNotFound(err) {
			return nil, fmt.Errorf("%w: %s", storage.ErrObjectNotFound, key)
		}
		return nil, fmt.Errorf("failed to download object: %w", err)
	}
	return body, nil
}

// Delete 删除对象
func (a *Archive) Delete(ctx context.Context, key string) error {
	if err := a.bucket.DeleteObject(key, oss.WithContext(ctx)); err != nil {
		return fmt.Errorf("failed to delete object: %w", err)
	}
	return nil
}

// Exists 检查对象是否存在
func (a *Archive) Exists(ctx context.Context, key string) (bool, error) {
	ok, err := a.bucket.IsObjectExist(key, oss.WithContext(ctx))
	if err != nil {
		return false, fmt.Errorf("failed to check object existence: %w", err)
	}
	return ok, nil
}

// Stat 读取对象元信息
func (a *Archive) Stat(ctx context.Context, key string) (*storage.ObjectInfo, error) {
	props, err := a.bucket.GetObjectDetailedMeta(key, oss.WithContext(ctx))
	if err != nil {
		if isNotFound(err) {
			return nil, fmt.Errorf("%w: %s", storage.ErrObjectNotFound, key)
		}
		return nil, fmt.Errorf("failed to get object info: %w", err)
	}

	size, _ := strconv.ParseInt(props.Get("Content-Length"), 10, 64)
	contentType := props.Get("Content-Type")
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	lastModified, _ := time.Parse(time.RFC1123, props.Get("Last-Modified"))

	return &storage.ObjectInfo{
		Key:          key,
		Size:         size,
		ContentType:  contentType,
		ETag:         strings.Trim(props.Get("ETag"), `"`),
		LastModified: lastModified,
	}, nil
}

// DownloadURL 签名下载地址，过期时间不超过配置值
func (a *Archive) DownloadURL(ctx context.Context, key string, expiresIn time.Duration) (string, error) {
	expiry := expiresIn
	if expiry <= 0 || expiry > a.presignExpiry {
		expiry = a.presignExpiry
	}
	url, err := a.bucket.SignURL(key, oss.HTTPGet, int64(expiry.Seconds()))
	if err != nil {
		return "", fmt.Errorf("failed to generate presigned download URL: %w", err)
	}
	return url, nil
}

// Type 存储类型
func (a *Archive) Type() storage.Type {
	return storage.TypeOSS
}

func isNotFound(err error) bool {
	if se, ok := err.(oss.ServiceError); ok {
		return se.StatusCode == 404
	}
	return false
}
