// Package storage 作品附件存储。local 驱动写本地目录，s3 驱动上传到对象存储
package storage

import (
	"context"
	"fmt"
	"mime"
	"mime/multipart"
	"path/filepath"
	"strings"
	"time"

	"hackathon-platform/config"
)

// Uploaded 上传成功后的文件信息
type Uploaded struct {
	URL         string `json:"url"`
	Key         string `json:"key"`
	ContentType string `json:"content_type"`
	Size        int64  `json:"size"`
}

type Storage interface {
	Upload(ctx context.Context, fh *multipart.FileHeader) (*Uploaded, error)
}

// Presigner 支持前端直传的存储实现
type Presigner interface {
	PresignUpload(ctx context.Context, req PresignedUploadRequest) (*PresignedUploadResponse, error)
}

var Default Storage

func Init() {
	s, err := New(context.Background(), config.Get().Storage)
	if err != nil {
		panic(err)
	}
	Default = s
}

func New(ctx context.Context, cfg config.Storage) (Storage, error) {
	switch cfg.Driver {
	case "", "local":
		return NewLocal(cfg.Home, cfg.BaseURL), nil
	case "s3":
		return NewS3(ctx, cfg.S3)
	default:
		return nil, fmt.Errorf("unsupported storage driver %q", cfg.Driver)
	}
}

// objectName 生成唯一文件名（时间戳 + 原始扩展名）
func objectName(filename string) string {
	return fmt.Sprintf("%d%s", time.Now().UnixNano(), strings.ToLower(filepath.Ext(filename)))
}

func contentType(fh *multipart.FileHeader) string {
	if ct := fh.Header.Get("Content-Type"); ct != "" {
		return ct
	}
	if ct := mime.TypeByExtension(filepath.Ext(fh.Filename)); ct != "" {
		return ct
	}
	return "application/octet-stream"
}
