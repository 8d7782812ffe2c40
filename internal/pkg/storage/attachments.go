package storage

import (
	"context"
	"fmt"
	"io"
	"path"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/gofiber/fiber/v2/log"
	"github.com/google/uuid"

	"github.com/notevault/notevault/internal/pkg/config"
)

// AttachmentStore persists note attachments in S3-compatible object storage.
type AttachmentStore struct {
	s3Client *s3.Client
	cfg      config.S3Config
}

// StoredObject describes an uploaded attachment object.
type StoredObject struct {
	Key       string
	URL       string
	SizeBytes int64
}

// NewAttachmentStore creates an attachment store from the S3 configuration.
func NewAttachmentStore(cfg config.S3Config) (*AttachmentStore, error) {
	awsCfg, err := awsconfig.LoadDefaultConfig(context.TODO(),
		awsconfig.WithRegion(cfg.Region),
		awsconfig.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(
			cfg.AccessKeyID,
			cfg.SecretAccessKey,
			"",
		)),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}

	s3Client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if cfg.EndpointURL != "" {
			o.BaseEndpoint = aws.String(cfg.EndpointURL)
			// S3-compatible providers generally require path-style URLs.
			o.UsePathStyle = true
		}
	})

	store := &AttachmentStore{
		s3Client: s3Client,
		cfg:      cfg,
	}

	if _, err := s3Client.HeadBucket(context.TODO(), &s3.HeadBucketInput{
		Bucket: aws.String(cfg.Bucket),
	}); err != nil {
		log.Warnf("[Storage] bucket %s not reachable at startup: %v", cfg.Bucket, err)
	}

	return store, nil
}

// Upload stores the attachment under a fresh object key scoped to the
// uploading user and returns the stored object's key and public URL.
func (s *AttachmentStore) Upload(ctx context.Context, uid, fileName, contentType string, size int64, body io.Reader) (*StoredObject, error) {
	key := buildObjectKey(uid, fileName)

	_, err := s.s3Client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:        aws.String(s.cfg.Bucket),
		Key:           aws.String(key),
		Body:          body,
		ContentLength: aws.Int64(size),
		ContentType:   aws.String(contentType),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to upload attachment %s: %w", key, err)
	}

	return &StoredObject{
		Key:       key,
		URL:       s.PublicURL(key),
		SizeBytes: size,
	}, nil
}

// Delete removes an attachment object. Missing objects are not an error.
func (s *AttachmentStore) Delete(ctx context.Context, key string) error {
	_, err := s.s3Client.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(s.cfg.Bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return fmt.Errorf("failed to delete attachment %s: %w", key, err)
	}
	return nil
}

// PublicURL returns the browser-facing URL for an object key.
func (s *AttachmentStore) PublicURL(key string) string {
	base := strings.TrimRight(s.cfg.PublicBaseURL, "/")
	if base == "" {
		base = fmt.Sprintf("https://%s.s3.%s.amazonaws.com", s.cfg.Bucket, s.cfg.Region)
	}
	return base + "/" + key
}

// buildObjectKey namespaces objects per user; the uuid prevents collisions
// and hides original filenames from URL guessing.
func buildObjectKey(uid, fileName string) string {
	ext := strings.ToLower(path.Ext(fileName))
	return fmt.Sprintf("attachments/%s/%s%s", uid, uuid.New().String(), ext)
}
