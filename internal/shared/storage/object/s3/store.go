package s3

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"path"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	s3types "github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/google/uuid"

	"resume-matcher/internal/shared/storage/object"
	"resume-matcher/internal/shared/util"
)

// Store stages uploads in an S3 bucket. Objects are deleted once the request finishes.
type Store struct {
	client   *s3.Client
	bucket   string
	prefix   string
	kmsKeyID string
}

// New creates a new S3-backed object store.
func New(ctx context.Context, region, bucket, prefix, kmsKeyID string) (*Store, error) {
	if strings.TrimSpace(bucket) == "" {
		return nil, fmt.Errorf("s3 bucket is required")
	}

	loadOpts := []func(*awsconfig.LoadOptions) error{}
	if region != "" {
		loadOpts = append(loadOpts, awsconfig.WithRegion(region))
	}

	cfg, err := awsconfig.LoadDefaultConfig(ctx, loadOpts...)
	if err != nil {
		return nil, fmt.Errorf("load aws config: %w", err)
	}

	return &Store{
		client:   s3.NewFromConfig(cfg),
		bucket:   bucket,
		prefix:   normalizePrefix(prefix),
		kmsKeyID: strings.TrimSpace(kmsKeyID),
	}, nil
}

// Save uploads the reader contents to S3 under the namespace.
func (s *Store) Save(ctx context.Context, namespace string, fileName string, r io.Reader) (string, int64, string, error) {
	sanitizedName, err := util.SanitizeFileName(fileName)
	if err != nil {
		return "", 0, "", fmt.Errorf("sanitize file name: %w", err)
	}

	if err := ctx.Err(); err != nil {
		return "", 0, "", err
	}

	finalName := fmt.Sprintf("%s_%s", uuid.NewString(), sanitizedName)
	storageKey := path.Join(util.HashKey(namespace), finalName)
	objectKey := applyPrefix(s.prefix, storageKey)

	var sniff [512]byte
	n, readErr := io.ReadFull(r, sniff[:])
	if readErr != nil && readErr != io.EOF && readErr != io.ErrUnexpectedEOF {
		return "", 0, "", fmt.Errorf("read sniff: %w", readErr)
	}

	mimeType := http.DetectContentType(sniff[:n])

	// PutObject needs a seekable body to sign the payload; uploads are capped upstream.
	rest, err := io.ReadAll(r)
	if err != nil {
		return "", 0, "", fmt.Errorf("read body: %w", err)
	}
	body := append(sniff[:n:n], rest...)

	input := &s3.PutObjectInput{
		Bucket:      aws.String(s.bucket),
		Key:         aws.String(objectKey),
		Body:        bytes.NewReader(body),
		ContentType: aws.String(mimeType),
	}
	if s.kmsKeyID != "" {
		input.ServerSideEncryption = s3types.ServerSideEncryptionAwsKms
		input.SSEKMSKeyId = aws.String(s.kmsKeyID)
	} else {
		input.ServerSideEncryption = s3types.ServerSideEncryptionAes256
	}

	if _, err := s.client.PutObject(ctx, input); err != nil {
		return "", 0, "", fmt.Errorf("s3 put object bucket=%s key=%s: %w", s.bucket, objectKey, err)
	}

	return storageKey, int64(len(body)), mimeType, nil
}

// Open downloads a stored object for reading.
func (s *Store) Open(ctx context.Context, storageKey string) (io.ReadCloser, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	objectKey := applyPrefix(s.prefix, storageKey)
	out, err := s.client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(objectKey),
	})
	if err != nil {
		return nil, fmt.Errorf("s3 get object bucket=%s key=%s: %w", s.bucket, objectKey, err)
	}
	return out.Body, nil
}

// Delete removes a staged object.
func (s *Store) Delete(ctx context.Context, storageKey string) error {
	objectKey := applyPrefix(s.prefix, storageKey)
	_, err := s.client.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(objectKey),
	})
	if err != nil {
		var missing *s3types.NoSuchKey
		if errors.As(err, &missing) {
			return nil
		}
		return fmt.Errorf("s3 delete object bucket=%s key=%s: %w", s.bucket, objectKey, err)
	}
	return nil
}

func normalizePrefix(prefix string) string {
	return strings.Trim(strings.TrimSpace(prefix), "/")
}

func applyPrefix(prefix, key string) string {
	cleanPrefix := strings.Trim(prefix, "/")
	cleanKey := strings.TrimLeft(key, "/")
	if cleanPrefix == "" {
		return cleanKey
	}
	if cleanKey == "" {
		return cleanPrefix
	}
	return cleanPrefix + "/" + cleanKey
}

var _ object.ObjectStore = (*Store)(nil)
