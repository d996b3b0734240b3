package services

import (
	"context"
	"fmt"
	"io"
	"path"
	"strings"

	"github.com/google/uuid"
	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
	"go.uber.org/zap"
)

// FileStorage 头像等上传文件的对象存储封装
type FileStorage struct {
	client    *minio.Client
	bucket    string
	publicURL string
	logger    *zap.Logger
}

// NewFileStorage 连接对象存储并确保桶存在
func NewFileStorage(endpoint, publicURL, accessKey, secretKey, bucket string, logger *zap.Logger) (*FileStorage, error) {
	useSSL := strings.HasPrefix(publicURL, "https://")
	client, err := minio.New(endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(accessKey, secretKey, ""),
		Secure: useSSL,
	})
	if err != nil {
		return nil, fmt.Errorf("connect object storage: %w", err)
	}

	ctx := context.Background()
	exists, err := client.BucketExists(ctx, bucket)
	if err != nil {
		return nil, fmt.Errorf("check bucket: %w", err)
	}
	if !exists {
		if err := client.MakeBucket(ctx, bucket, minio.MakeBucketOptions{}); err != nil {
			return nil, fmt.Errorf("create bucket: %w", err)
		}
		logger.Info("bucket created", zap.String("bucket", bucket))
	}

	return &FileStorage{
		client:    client,
		bucket:    bucket,
		publicURL: strings.TrimRight(publicURL, "/"),
		logger:    logger,
	}, nil
}

// Upload 上传文件并返回可公开访问的 URL，对象名用 uuid 避免重名
func (f *FileStorage) Upload(ctx context.Context, reader io.Reader, size int64, filename, contentType string) (string, error) {
	objectName := uuid.NewString() + path.Ext(filename)
	_, err := f.client.PutObject(ctx, f.bucket, objectName, reader, size, minio.PutObjectOptions{
		ContentType: contentType,
	})
	if err != nil {
		return "", fmt.Errorf("upload object: %w", err)
	}
	f.logger.Info("file uploaded",
		zap.String("bucket", f.bucket), zap.String("object", objectName))
	return f.publicURL + "/" + f.bucket + "/" + objectName, nil
}
