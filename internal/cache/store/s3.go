package store

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"

	"github.com/vadim/contentpulse/internal/domain/analytics/entity"
)

const snapshotObjectKey = "snapshots/" + dashboardKey + ".json"

// S3Config holds S3/MinIO configuration for the snapshot store
type S3Config struct {
	Endpoint        string // e.g. "http://localhost:9000" for MinIO
	AccessKeyID     string
	SecretAccessKey string
	Bucket          string
	Region          string
}

// S3 persists the dashboard snapshot as a single JSON object
type S3 struct {
	client *s3.Client
	bucket string
}

// NewS3 creates an S3-backed snapshot store
func NewS3(cfg S3Config) *S3 {
	client := s3.New(s3.Options{
		Region:       cfg.Region,
		BaseEndpoint: aws.String(cfg.Endpoint),
		Credentials: credentials.NewStaticCredentialsProvider(
			cfg.AccessKeyID,
			cfg.SecretAccessKey,
			"",
		),
		UsePathStyle: true, // Required for MinIO
	})

	return &S3{
		client: client,
		bucket: cfg.Bucket,
	}
}

// Load retrieves the persisted snapshot object. A missing object or an
// unparsable payload is a cache miss.
func (s *S3) Load(ctx context.Context) (*entity.Snapshot, error) {
	out, err := s.client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(snapshotObjectKey),
	})
	if err != nil {
		var noKey *types.NoSuchKey
		if errors.As(err, &noKey) {
			return nil, nil
		}
		return nil, fmt.Errorf("loading snapshot from s3: %w", err)
	}
	defer out.Body.Close()

	payload, err := io.ReadAll(out.Body)
	if err != nil {
		return nil, fmt.Errorf("reading snapshot body: %w", err)
	}

	var snap entity.Snapshot
	if err := json.Unmarshal(payload, &snap); err != nil {
		return nil, nil
	}
	return &snap, nil
}

// Save uploads the snapshot, replacing the previous object
func (s *S3) Save(ctx context.Context, snap *entity.Snapshot) error {
	payload, err := json.Marshal(snap)
	if err != nil {
		return fmt.Errorf("encoding snapshot: %w", err)
	}

	_, err = s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(s.bucket),
		Key:         aws.String(snapshotObjectKey),
		Body:        bytes.NewReader(payload),
		ContentType: aws.String("application/json"),
	})
	if err != nil {
		return fmt.Errorf("uploading snapshot to s3: %w", err)
	}
	return nil
}

// Delete removes the snapshot object if present
func (s *S3) Delete(ctx context.Context) error {
	_, err := s.client.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(snapshotObjectKey),
	})
	if err != nil {
		return fmt.Errorf("deleting snapshot from s3: %w", err)
	}
	return nil
}
