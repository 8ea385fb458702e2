// Package storage archives meal photos in S3.
package storage

import (
	"bytes"
	"context"
	"fmt"
	"mime"
	"path"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/google/uuid"

	"github.com/vladimiradmaev/glycocare/internal/domain"
)

// PutObjectAPI is the part of the S3 client the archive uses.
type PutObjectAPI interface {
	PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
}

// S3Archive implements domain.ImageArchive. Objects are private.
type S3Archive struct {
	client PutObjectAPI
	bucket string
	newID  func() string
}

func NewS3Archive(client PutObjectAPI, bucket string) *S3Archive {
	return &S3Archive{client: client, bucket: bucket, newID: uuid.NewString}
}

// NewS3ArchiveFromRegion loads the default AWS credential chain.
func NewS3ArchiveFromRegion(ctx context.Context, region, bucket string) (*S3Archive, error) {
	cfg, err := config.LoadDefaultConfig(ctx, config.WithRegion(region))
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}
	return NewS3Archive(s3.NewFromConfig(cfg), bucket), nil
}

// Put uploads image under meals/<user>/<uuid><ext> and returns the key.
func (a *S3Archive) Put(ctx context.Context, userID string, image domain.MealImage) (string, error) {
	contentType := image.ContentType
	if contentType == "" {
		contentType = "image/jpeg"
	}

	key := path.Join("meals", userID, a.newID()+extensionFor(contentType))

	_, err := a.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(a.bucket),
		Key:         aws.String(key),
		Body:        bytes.NewReader(image.Data),
		ContentType: aws.String(contentType),
	})
	if err != nil {
		return "", fmt.Errorf("failed to upload to S3: %w", err)
	}
	return key, nil
}

func extensionFor(contentType string) string {
	switch contentType {
	case "image/jpeg", "image/jpg":
		return ".jpg"
	case "image/png":
		return ".png"
	}
	if exts, _ := mime.ExtensionsByType(contentType); len(exts) > 0 {
		return exts[0]
	}
	if _, sub, ok := strings.Cut(contentType, "/"); ok && sub != "" {
		return "." + sub
	}
	return ""
}
