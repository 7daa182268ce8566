// Package objectstore stores chat attachments in MinIO and hands back
// the URL that then travels through the normal send path.
package objectstore

import (
	"context"
	"fmt"
	"log/slog"
	"mime/multipart"
	"path"

	"github.com/google/uuid"
	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
)

type Client struct {
	client *minio.Client
	bucket string
}

func NewClient(endpoint, accessKey, secretKey, bucket string, useSSL bool) (*Client, error) {
	mc, err := minio.New(endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(accessKey, secretKey, ""),
		Secure: useSSL,
	})
	if err != nil {
		return nil, fmt.Errorf("create minio client: %w", err)
	}

	ctx := context.Background()
	exists, err := mc.BucketExists(ctx, bucket)
	if err != nil {
		return nil, fmt.Errorf("check bucket existence: %w", err)
	}
	if !exists {
		if err := mc.MakeBucket(ctx, bucket, minio.MakeBucketOptions{}); err != nil {
			return nil, fmt.Errorf("create bucket: %w", err)
		}
	}

	slog.Info("object store connected", "endpoint", endpoint, "bucket", bucket)
	return &Client{client: mc, bucket: bucket}, nil
}

// UploadAttachment streams the file into the bucket under a collision
// free name and returns its URL.
func (c *Client) UploadAttachment(ctx context.Context, file *multipart.FileHeader) (string, error) {
	src, err := file.Open()
	if err != nil {
		return "", fmt.Errorf("open upload: %w", err)
	}
	defer src.Close()

	objectName := path.Join("attachments", uuid.New().String()+"-"+file.Filename)
	_, err = c.client.PutObject(ctx, c.bucket, objectName, src, file.Size, minio.PutObjectOptions{
		ContentType: file.Header.Get("Content-Type"),
	})
	if err != nil {
		return "", fmt.Errorf("upload attachment: %w", err)
	}

	return fmt.Sprintf("http://%s/%s/%s", c.client.EndpointURL().Host, c.bucket, objectName), nil
}
