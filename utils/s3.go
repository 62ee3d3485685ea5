package utils

import (
	"context"
	"fmt"
	"io"
	"mime"
	"os"
	"path"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

// Proof documents (land deeds, survey reports) are stored in an S3-compatible
// bucket. Configuration is optional; callers should check StorageConfigured
// before uploading.

// StorageConfigured reports whether proof-document storage is set up.
func StorageConfigured() bool {
	return os.Getenv("S3_BUCKET_NAME") != "" &&
		os.Getenv("S3_ACCESS_KEY_ID") != "" &&
		os.Getenv("S3_SECRET_ACCESS_KEY") != ""
}

func getStorageConfig(ctx context.Context) (aws.Config, error) {
	accessKey := os.Getenv("S3_ACCESS_KEY_ID")
	secretKey := os.Getenv("S3_SECRET_ACCESS_KEY")
	if accessKey == "" || secretKey == "" {
		return aws.Config{}, fmt.Errorf("S3_ACCESS_KEY_ID or S3_SECRET_ACCESS_KEY is not set")
	}
	region := os.Getenv("S3_REGION")
	if region == "" {
		region = "auto"
	}
	cfg, err := config.LoadDefaultConfig(ctx,
		config.WithRegion(region),
		config.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(accessKey, secretKey, ""),
		),
	)
	if err != nil {
		return aws.Config{}, fmt.Errorf("failed to load storage config: %w", err)
	}
	return cfg, nil
}

func getStorageClient(ctx context.Context) (*s3.Client, error) {
	cfg, err := getStorageConfig(ctx)
	if err != nil {
		return nil, err
	}
	endpoint := os.Getenv("S3_ENDPOINT")
	client := s3.NewFromConfig(cfg, func(o *s3.Options) {
		if endpoint != "" {
			o.BaseEndpoint = aws.String(endpoint)
		}
	})
	return client, nil
}

func getStorageBucket() (string, error) {
	bucket := os.Getenv("S3_BUCKET_NAME")
	if bucket == "" {
		return "", fmt.Errorf("S3_BUCKET_NAME is not set")
	}
	return bucket, nil
}

// UploadProofDocument stores a proof document under objectKey.
func UploadProofDocument(ctx context.Context, objectKey string, file io.Reader) error {
	bucket, err := getStorageBucket()
	if err != nil {
		return err
	}
	client, err := getStorageClient(ctx)
	if err != nil {
		return err
	}
	contentType := mime.TypeByExtension(path.Ext(objectKey))
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	_, err = client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(bucket),
		Key:         aws.String(objectKey),
		Body:        file,
		ContentType: aws.String(contentType),
	})
	if err != nil {
		return fmt.Errorf("proof upload failed: %w", err)
	}
	return nil
}

// PresignProofURL returns a presigned GET URL for a stored proof document.
func PresignProofURL(ctx context.Context, objectKey string, expirySeconds int64) (string, error) {
	bucket, err := getStorageBucket()
	if err != nil {
		return "", err
	}
	client, err := getStorageClient(ctx)
	if err != nil {
		return "", err
	}
	presigner := s3.NewPresignClient(client)
	presigned, err := presigner.PresignGetObject(ctx,
		&s3.GetObjectInput{
			Bucket: aws.String(bucket),
			Key:    aws.String(objectKey),
		},
		func(po *s3.PresignOptions) {
			po.Expires = time.Duration(expirySeconds) * time.Second
		},
	)
	if err != nil {
		return "", fmt.Errorf("failed to presign proof URL: %w", err)
	}
	return presigned.URL, nil
}

// DeleteProofDocument removes a stored proof document.
func DeleteProofDocument(ctx context.Context, objectKey string) error {
	bucket, err := getStorageBucket()
	if err != nil {
		return err
	}
	client, err := getStorageClient(ctx)
	if err != nil {
		return err
	}
	_, err = client.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(bucket),
		Key:    aws.String(objectKey),
	})
	if err != nil {
		return fmt.Errorf("proof delete failed: %w", err)
	}
	return nil
}
