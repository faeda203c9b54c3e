package media

import (
	"bytes"
	"context"
	"fmt"
	"strings"

	"github.com/Gabrielferreira1/fullstack-chat-app/internal/config"
	"github.com/aidarkhanov/nanoid/v2"
	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
)

const (
	defaultRegion  = "us-east-1"
	objectAlphabet = "0123456789abcdefghijklmnopqrstuvwxyz"
)

const publicReadPolicy = `{"Version":"2012-10-17","Statement":[{"Effect":"Allow","Principal":{"AWS":["*"]},"Action":["s3:GetObject"],"Resource":["arn:aws:s3:::%s/*"]}]}`

type MinioUploader struct {
	client    *minio.Client
	bucket    string
	publicURL string
}

// NewMinioUploader connects to the media host and makes sure the bucket
// exists with anonymous read access.
func NewMinioUploader(ctx context.Context, cfg config.MediaConfig) (*MinioUploader, error) {
	client, err := minio.New(cfg.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKey, cfg.SecretKey, ""),
		Secure: cfg.UseSSL,
		Region: defaultRegion,
	})
	if err != nil {
		return nil, fmt.Errorf("minio client: %w", err)
	}

	exists, err := client.BucketExists(ctx, cfg.Bucket)
	if err != nil {
		return nil, fmt.Errorf("check bucket: %w", err)
	}

	if !exists {
		if err := client.MakeBucket(ctx, cfg.Bucket, minio.MakeBucketOptions{Region: defaultRegion}); err != nil {
			return nil, fmt.Errorf("make bucket: %w", err)
		}
		if err := client.SetBucketPolicy(ctx, cfg.Bucket, fmt.Sprintf(publicReadPolicy, cfg.Bucket)); err != nil {
			return nil, fmt.Errorf("set bucket policy: %w", err)
		}
	}

	publicURL := cfg.PublicURL
	if publicURL == "" {
		publicURL = client.EndpointURL().String()
	}

	return &MinioUploader{
		client:    client,
		bucket:    cfg.Bucket,
		publicURL: strings.TrimRight(publicURL, "/"),
	}, nil
}

func (u *MinioUploader) Upload(ctx context.Context, folder, dataURI string) (string, error) {
	img, err := ParseDataURI(dataURI)
	if err != nil {
		return "", err
	}

	id, err := nanoid.GenerateString(objectAlphabet, 16)
	if err != nil {
		return "", fmt.Errorf("generate object name: %w", err)
	}

	object := id + img.Extension()
	if folder != "" {
		object = folder + "/" + object
	}

	_, err = u.client.PutObject(ctx, u.bucket, object, bytes.NewReader(img.Data), int64(len(img.Data)),
		minio.PutObjectOptions{ContentType: img.ContentType})
	if err != nil {
		return "", fmt.Errorf("put object: %w", err)
	}

	return u.publicURL + "/" + u.bucket + "/" + object, nil
}
