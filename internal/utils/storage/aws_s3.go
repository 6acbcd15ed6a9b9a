package storage

import (
	"bytes"
	"context"
	"errors"
	"farmket/internal/utils"
	"fmt"
	"io"
	"mime"
	"mime/multipart"
	"path/filepath"
	"slices"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

var (
	AllowImage    = []string{"image/jpeg", "image/png", "image/gif", "image/webp"}
	AllowVideo    = []string{"video/mp4", "video/webm", "video/quicktime"}
	AllowAudio    = []string{"audio/mpeg", "audio/ogg", "audio/wav", "audio/webm", "audio/mp4"}
	AllowDocument = []string{
		"application/pdf",
		"application/msword",
		"application/vnd.openxmlformats-officedocument.wordprocessingml.document",
		"application/vnd.ms-excel",
		"application/vnd.openxmlformats-officedocument.spreadsheetml.sheet",
		"text/plain",
	}

	ErrContentTypeNotAllowed = errors.New("content type not allowed")
	ErrEmptyFile             = errors.New("file is empty")
)

type (
	AwsS3 interface {
		UploadFile(ctx context.Context, fileName string, file *multipart.FileHeader, folder string, allowed ...string) (string, error)
		UploadBytes(ctx context.Context, fileName string, data []byte, contentType string, folder string, allowed ...string) (string, error)
		GetPublicLinkKey(objectKey string) string
		GetObjectKeyFromLink(link string) string
		DeleteFile(ctx context.Context, objectKey string) error
	}

	awsS3 struct {
		client *s3.Client
		bucket string
		region string
	}
)

func NewAwsS3(ctx context.Context) (AwsS3, error) {
	region := utils.GetConfig("AWS_S3_REGION")
	cfg, err := config.LoadDefaultConfig(ctx,
		config.WithRegion(region),
		config.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(
			utils.GetConfig("AWS_ACCESS_KEY"),
			utils.GetConfig("AWS_SECRET_KEY"),
			"",
		)),
	)
	if err != nil {
		return nil, err
	}

	return &awsS3{
		client: s3.NewFromConfig(cfg),
		bucket: utils.GetConfig("AWS_S3_BUCKET"),
		region: region,
	}, nil
}

func (a *awsS3) UploadFile(ctx context.Context, fileName string, file *multipart.FileHeader, folder string, allowed ...string) (string, error) {
	if file == nil || file.Size == 0 {
		return "", ErrEmptyFile
	}
	contentType := file.Header.Get("Content-Type")
	if !IsAllowed(contentType, allowed) {
		return "", ErrContentTypeNotAllowed
	}

	src, err := file.Open()
	if err != nil {
		return "", err
	}
	defer src.Close()

	key := ObjectKey(folder, fileName, contentType, filepath.Ext(file.Filename))
	return key, a.put(ctx, key, src, contentType)
}

func (a *awsS3) UploadBytes(ctx context.Context, fileName string, data []byte, contentType string, folder string, allowed ...string) (string, error) {
	if len(data) == 0 {
		return "", ErrEmptyFile
	}
	if !IsAllowed(contentType, allowed) {
		return "", ErrContentTypeNotAllowed
	}

	key := ObjectKey(folder, fileName, contentType, "")
	return key, a.put(ctx, key, bytes.NewReader(data), contentType)
}

func (a *awsS3) put(ctx context.Context, key string, body io.Reader, contentType string) error {
	_, err := a.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(a.bucket),
		Key:         aws.String(key),
		Body:        body,
		ContentType: aws.String(contentType),
	})
	return err
}

func (a *awsS3) GetPublicLinkKey(objectKey string) string {
	return fmt.Sprintf("%s/%s", a.baseURL(), objectKey)
}

func (a *awsS3) GetObjectKeyFromLink(link string) string {
	prefix := a.baseURL() + "/"
	if !strings.HasPrefix(link, prefix) {
		return ""
	}
	return strings.TrimPrefix(link, prefix)
}

func (a *awsS3) DeleteFile(ctx context.Context, objectKey string) error {
	_, err := a.client.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(a.bucket),
		Key:    aws.String(objectKey),
	})
	return err
}

func (a *awsS3) baseURL() string {
	return fmt.Sprintf("https://%s.s3.%s.amazonaws.com", a.bucket, a.region)
}

// ObjectKey builds "<folder>/<fileName><ext>". The extension comes from
// fallbackExt when given, otherwise from the content type.
// MediaType drops parameters such as "codecs=opus" from a content type.
func MediaType(contentType string) string {
	mediaType, _, err := mime.ParseMediaType(contentType)
	if err != nil {
		return strings.ToLower(strings.TrimSpace(contentType))
	}
	return mediaType
}

// IsAllowed reports whether contentType is in allowed once its parameters
// are dropped. An empty allowed list accepts anything.
func IsAllowed(contentType string, allowed []string) bool {
	return len(allowed) == 0 || slices.Contains(allowed, MediaType(contentType))
}

func ObjectKey(folder, fileName, contentType, fallbackExt string) string {
	ext := fallbackExt
	if ext == "" {
		if exts, err := mime.ExtensionsByType(MediaType(contentType)); err == nil && len(exts) > 0 {
			ext = exts[0]
		}
	}
	return fmt.Sprintf("%s/%s%s", strings.Trim(folder, "/"), fileName, strings.ToLower(ext))
}
