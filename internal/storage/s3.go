package storage

import (
	"bytes"
	"context"
	"fmt"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

// S3Store stores user images in one S3 bucket and serves them from a
// public base URL (the bucket endpoint or a CDN in front of it).
type S3Store struct {
	client  *s3.Client
	bucket  string
	baseURL string
}

func NewS3Store(ctx context.Context, region string, bucket string, baseURL string) (*S3Store, error) {
	cfg, err := awsconfig.LoadDefaultConfig(ctx, awsconfig.WithRegion(region))
	if err != nil {
		return nil, fmt.Errorf("load aws config: %w", err)
	}
	return &S3Store{
		client:  s3.NewFromConfig(cfg),
		bucket:  bucket,
		baseURL: strings.TrimRight(baseURL, "/"),
	}, nil
}

func (store *S3Store) Upload(ctx context.Context, data []byte, fileName string, userID uint) (string, error) {
	key := buildObjectKey(fileName, userID)

	_, err := store.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(store.bucket),
		Key:         aws.String(key),
		Body:        bytes.NewReader(data),
		ContentType: aws.String(contentTypeForExtension(key)),
	})
	if err != nil {
		return "", fmt.Errorf("upload to s3: %w", err)
	}

	return fmt.Sprintf("%s/%s", store.baseURL, key), nil
}

func (store *S3Store) Delete(ctx context.Context, imageURL string) error {
	key, err := store.keyFromURL(imageURL)
	if err != nil {
		return err
	}

	if _, err := store.client.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(store.bucket),
		Key:    aws.String(key),
	}); err != nil {
		return fmt.Errorf("delete from s3: %w", err)
	}
	return nil
}

func (store *S3Store) Replace(ctx context.Context, oldImageURL string, data []byte, fileName string, userID uint) (string, error) {
	if err := store.Delete(ctx, oldImageURL); err != nil {
		return "", err
	}
	return store.Upload(ctx, data, fileName, userID)
}

func (store *S3Store) keyFromURL(imageURL string) (string, error) {
	prefix := store.baseURL + "/"
	if !strings.HasPrefix(imageURL, prefix) {
		return "", fmt.Errorf("image url %q is outside this store", imageURL)
	}
	key := strings.TrimPrefix(imageURL, prefix)
	if key == "" {
		return "", fmt.Errorf("image url %q has no object key", imageURL)
	}
	return key, nil
}
