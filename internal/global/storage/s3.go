package storage

import (
	"context"
	"fmt"
	"mime/multipart"
	"path"
	"strings"
	"time"

	"hackathon-platform/config"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/feature/s3/manager"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

// S3 兼容 S3 协议的对象存储（MinIO、R2 等）
type S3 struct {
	cfg      config.S3
	client   *s3.Client
	uploader *manager.Uploader
}

func NewS3(ctx context.Context, cfg config.S3) (*S3, error) {
	if cfg.Bucket == "" {
		return nil, fmt.Errorf("S3 bucket 未配置")
	}
	region := cfg.Region
	if region == "" {
		region = "us-east-1"
	}

	opts := []func(*awsconfig.LoadOptions) error{awsconfig.WithRegion(region)}
	if cfg.AccessKey != "" {
		opts = append(opts, awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.AccessKey, cfg.SecretAccessKey, "")))
	}
	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("加载 S3 配置失败: %w", err)
	}

	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if cfg.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
		}
		o.UsePathStyle = cfg.UsePathStyle
	})
	return &S3{cfg: cfg, client: client, uploader: manager.NewUploader(client)}, nil
}

func (s *S3) key(filename string) string {
	return strings.TrimLeft(path.Join(strings.Trim(s.cfg.Prefix, "/"), objectName(filename)), "/")
}

// objectURL 构建访问 URL，未配置 BaseURL 时使用 Endpoint
func (s *S3) objectURL(key string) string {
	base := strings.TrimRight(s.cfg.BaseURL, "/")
	if base == "" {
		base = strings.TrimRight(s.cfg.Endpoint, "/")
	}
	if s.cfg.UsePathStyle {
		return base + "/" + s.cfg.Bucket + "/" + key
	}
	return base + "/" + key
}

func (s *S3) Upload(ctx context.Context, fh *multipart.FileHeader) (*Uploaded, error) {
	file, err := fh.Open()
	if err != nil {
		return nil, err
	}
	defer file.Close()

	key := s.key(fh.Filename)
	ct := contentType(fh)
	if _, err := s.uploader.Upload(ctx, &s3.PutObjectInput{
		Bucket:        aws.String(s.cfg.Bucket),
		Key:           aws.String(key),
		Body:          file,
		ContentType:   aws.String(ct),
		ContentLength: aws.Int64(fh.Size),
	}); err != nil {
		return nil, fmt.Errorf("上传到 S3 失败: %w", err)
	}

	return &Uploaded{URL: s.objectURL(key), Key: key, ContentType: ct, Size: fh.Size}, nil
}

// PresignedUploadRequest 预签名上传请求参数
type PresignedUploadRequest struct {
	Filename    string // 原始文件名
	ContentType string // 文件 MIME 类型
	ExpiresIn   int64  // 过期时间（秒），默认 15 分钟
}

// PresignedUploadResponse 预签名上传响应
type PresignedUploadResponse struct {
	UploadURL string            `json:"upload_url"`
	FileKey   string            `json:"file_key"`
	FileURL   string            `json:"file_url"`
	ExpiresAt time.Time         `json:"expires_at"`
	Method    string            `json:"method"`
	Headers   map[string]string `json:"headers"` // 上传时需要携带的 Headers
}

// PresignUpload 生成预签名 PUT URL，前端可直接上传到对象存储
func (s *S3) PresignUpload(ctx context.Context, req PresignedUploadRequest) (*PresignedUploadResponse, error) {
	if req.Filename == "" {
		return nil, fmt.Errorf("文件名不能为空")
	}
	if req.ExpiresIn <= 0 {
		req.ExpiresIn = 900
	}
	ct := req.ContentType
	if ct == "" {
		ct = "application/octet-stream"
	}

	key := s.key(req.Filename)
	expires := time.Duration(req.ExpiresIn) * time.Second
	presigned, err := s3.NewPresignClient(s.client).PresignPutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(s.cfg.Bucket),
		Key:         aws.String(key),
		ContentType: aws.String(ct),
	}, s3.WithPresignExpires(expires))
	if err != nil {
		return nil, fmt.Errorf("生成预签名 URL 失败: %w", err)
	}

	resp := &PresignedUploadResponse{
		UploadURL: presigned.URL,
		FileKey:   key,
		FileURL:   s.objectURL(key),
		ExpiresAt: time.Now().Add(expires),
		Method:    presigned.Method,
		Headers:   map[string]string{"Content-Type": ct},
	}
	for k, v := range presigned.SignedHeader {
		if len(v) > 0 {
			resp.Headers[k] = v[0]
		}
	}
	return resp, nil
}
