package uploads

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"strings"

	aws "github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

// S3 stores uploads in an S3 / MinIO bucket. Objects are public-read style:
// the returned URL points straight at the object.
type S3 struct {
	client *s3.Client
	bucket string
	base   string
}

type S3Config struct {
	Bucket   string
	Region   string
	Endpoint string // optional, for MinIO
}

func NewS3(ctx context.Context, cfg S3Config) (*S3, error) {
	if cfg.Bucket == "" {
		return nil, fmt.Errorf("uploads: s3 bucket required")
	}
	region := cfg.Region
	if region == "" {
		region = "us-east-1"
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, awsconfig.WithRegion(region))
	if err != nil {
		return nil, err
	}

	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if cfg.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
			o.UsePathStyle = true
		}
	})

	base := cfg.Endpoint
	if base == "" {
		base = fmt.Sprintf("https://%s.s3.%s.amazonaws.com", cfg.Bucket, region)
	} else {
		base = strings.TrimSuffix(base, "/") + "/" + cfg.Bucket
	}

	return &S3{client: client, bucket: cfg.Bucket, base: base}, nil
}

func (s *S3) Save(ctx context.Context, filename string, r io.Reader) (string, error) {
	key, contentType, data, err := prepare(filename, r)
	if err != nil {
		return "", err
	}

	_, err = s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(s.bucket),
		Key:         aws.String(key),
		Body:        bytes.NewReader(data),
		ContentType: aws.String(contentType),
	})
	if err != nil {
		return "", err
	}

	return s.base + "/" + key, nil
}
