package services

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/dmitrijs2005/accessconsole/internal/common"
	sc "github.com/dmitrijs2005/accessconsole/internal/server/config"
	"github.com/dmitrijs2005/accessconsole/internal/wire"
)

var (
	loadDefaultAWSConfig = config.LoadDefaultConfig

	newS3ClientFromConfig = func(cfg aws.Config, optFns ...func(*s3.Options)) objectStore {
		return s3.NewFromConfig(cfg, optFns...)
	}
)

// objectStore is the part of *s3.Client used for snapshots.
type objectStore interface {
	PutObject(ctx context.Context, in *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
	GetObject(ctx context.Context, in *s3.GetObjectInput, optFns ...func(*s3.Options)) (*s3.GetObjectOutput, error)
}

// SnapshotService saves the whole tree as one JSON object in S3-compatible
// storage and loads it back, so a site survives restarts of an in-memory
// server.
type SnapshotService struct {
	client objectStore
	bucket string
	key    string
}

func NewSnapshotService(ctx context.Context, cfg *sc.Config) (*SnapshotService, error) {
	awsCfg, err := loadDefaultAWSConfig(ctx,
		config.WithRegion(cfg.S3Region),
		config.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(
			cfg.S3RootUser,
			cfg.S3RootPassword,
			"",
		)))
	if err != nil {
		return nil, fmt.Errorf("aws config: %w", err)
	}

	client := newS3ClientFromConfig(awsCfg, func(o *s3.Options) {
		o.BaseEndpoint = aws.String(cfg.S3BaseEndpoint)
		o.UsePathStyle = true
	})

	return &SnapshotService{client: client, bucket: cfg.S3Bucket, key: cfg.SnapshotKey}, nil
}

func (s *SnapshotService) Save(ctx context.Context, r wire.Response) error {
	data, err := json.Marshal(r)
	if err != nil {
		return err
	}

	_, err = s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(s.bucket),
		Key:         aws.String(s.key),
		Body:        bytes.NewReader(data),
		ContentType: aws.String("application/json"),
	})
	if err != nil {
		return fmt.Errorf("snapshot put: %w", err)
	}
	return nil
}

// Load returns common.ErrNotFound when no snapshot has been saved yet.
func (s *SnapshotService) Load(ctx context.Context) (wire.Response, error) {
	out, err := s.client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(s.key),
	})
	if err != nil {
		var nsk *types.NoSuchKey
		if errors.As(err, &nsk) {
			return nil, common.ErrNotFound
		}
		return nil, fmt.Errorf("snapshot get: %w", err)
	}
	defer out.Body.Close()

	data, err := io.ReadAll(out.Body)
	if err != nil {
		return nil, fmt.Errorf("snapshot read: %w", err)
	}

	var r wire.Response
	if err := json.Unmarshal(data, &r); err != nil {
		return nil, fmt.Errorf("snapshot decode: %w", err)
	}
	return r, nil
}
