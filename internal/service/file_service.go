package service

import (
	"bytes"
	"context"
	"fmt"

	"github.com/rs/zerolog/log"

	"cogniverse/internal/pkg/fileproc"
	"cogniverse/internal/pkg/id"
	"cogniverse/internal/pkg/storage"
	sessionrepo "cogniverse/internal/repository/session"
)

// FileService 上传文件的校验、归档、处理与登记
type FileService struct {
	processor     *fileproc.Processor
	archive       storage.Archive
	maxPerSession int
}

// NewFileService 创建文件服务，archive 为 nil 时不归档原件
func NewFileService(processor *fileproc.Processor, archive storage.Archive, maxPerSession int) *FileService {
	return &FileService{processor: processor, archive: archive, maxPerSession: maxPerSession}
}

// MaxFileSize 上传上限（字节）
func (s *FileService) MaxFileSize() int64 {
	return s.processor.MaxFileSize()
}

// CheckSize 读取文件内容之前的大小校验
func (s *FileService) CheckSize(name string, size int64) error {
	if err := s.processor.CheckSize(name, size); err != nil {
		return fmt.Errorf("%w: %v", ErrFileTooLarge, err)
	}
	return nil
}

// Extract 只运行处理管线，不写入会话
func (s *FileService) Extract(ctx context.Context, up fileproc.Upload) (*fileproc.Result, error) {
	if err := s.CheckSize(up.Name, int64(len(up.Data))); err != nil {
		return nil, err
	}
	return s.processor.Process(ctx, up)
}

// Upload 处理上传并登记到会话
func (s *FileService) Upload(ctx context.Context, sess *Session, up fileproc.Upload) (*sessionrepo.UploadedFile, error) {
	size := int64(len(up.Data))
	if err := s.CheckSize(up.Name, size); err != nil {
		return nil, err
	}

	logger := log.With().Str("session_id", sess.ID()).Str("file_name", up.Name).Logger()
	fileID := id.Short()
	mediaType := fileproc.ResolveMediaType(up.Name, up.MediaType, up.Data)

	res, err := s.processor.Process(ctx, fileproc.Upload{Name: up.Name, MediaType: mediaType, Data: up.Data})
	if err != nil {
		return nil, err
	}

	// 处理成功后才归档，登记失败时删除已归档的原件
	var archiveKey, archiveURL string
	if s.archive != nil {
		key := storage.UploadKey(sess.ID(), fileID, up.Name)
		url, err := s.archive.Put(ctx, key, bytes.NewReader(up.Data), mediaType)
		if err != nil {
			logger.Warn().Err(err).Str("key", key).Msg("failed to archive upload")
		} else {
			archiveKey, archiveURL = key, url
		}
	}

	f := sessionrepo.UploadedFile{
		ID:         fileID,
		Name:       up.Name,
		MediaType:  mediaType,
		Type:       string(res.Type),
		Size:       size,
		Content:    res.Content,
		Preview:    res.Preview,
		Metadata:   res.Metadata,
		Statistics: res.Statistics,
		ArchiveURL: archiveURL,
		UploadedAt: nowFunc(),
	}
	if err := sess.AddUploadedFile(ctx, f, s.maxPerSession); err != nil {
		if archiveKey != "" {
			if derr := s.archive.Delete(ctx, archiveKey); derr != nil {
				logger.Warn().Err(derr).Str("key", archiveKey).Msg("failed to remove archived upload")
			}
		}
		return nil, err
	}

	logger.Info().Str("file_id", fileID).Str("type", f.Type).Int64("size", size).Msg("file uploaded")
	return &f, nil
}

// ClearFiles 清空会话中的上传文件
func (s *FileService) ClearFiles(ctx context.Context, sess *Session) error {
	return sess.ClearUploadedFiles(ctx)
}

// SupportedFormats 可处理的格式
func (s *FileService) SupportedFormats() map[string][]string {
	return s.processor.SupportedFormats()
}

// Capabilities 各格式提取能力说明
func (s *FileService) Capabilities() map[string]string {
	return s.processor.Capabilities()
}

// OCRAvailable OCR 是否可用
func (s *FileService) OCRAvailable() bool {
	return s.processor.OCRAvailable()
}
