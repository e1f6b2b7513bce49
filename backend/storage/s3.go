package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/url"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	smithy "github.com/aws/smithy-go/endpoints"

	"easedrop/backend/config"
)

// S3Storage keeps envelopes as objects in an S3-compatible bucket, one
// object per locator.
type S3Storage struct {
	client     *s3.Client
	bucketName string
}

type s3Resolver struct {
	Endpoint string
	Region   string
}

func (r *s3Resolver) ResolveEndpoint(_ context.Context, params s3.EndpointParameters) (smithy.Endpoint, error) {
	endpoint := strings.TrimSuffix(r.Endpoint, "/")

	fullPath := fmt.Sprintf("%s/%s", endpoint, *params.Bucket)
	uri, err := url.ParseRequestURI(fullPath)
	if err != nil {
		return smithy.Endpoint{}, err
	}

	return smithy.Endpoint{
		URI: *uri,
	}, nil
}

func NewS3Storage(cfg config.S3Config) (*S3Storage, error) {
	if len(cfg.Endpoint) == 0 || len(cfg.AccessKeyID) == 0 ||
		len(cfg.SecretKey) == 0 || len(cfg.BucketName) == 0 {
		return nil, errors.New("missing a required S3 config value: " +
			"must set EASEDROP_S3_ENDPOINT, EASEDROP_S3_ACCESS_KEY_ID, " +
			"EASEDROP_S3_SECRET_KEY and EASEDROP_S3_BUCKET_NAME")
	}

	endpoint := cfg.Endpoint
	if !strings.HasPrefix(endpoint, "http") {
		endpoint = "https://" + endpoint
	}

	credsProvider := credentials.NewStaticCredentialsProvider(
		cfg.AccessKeyID,
		cfg.SecretKey,
		"")
	awsCfg, err := awsconfig.LoadDefaultConfig(context.TODO(),
		awsconfig.WithRegion(cfg.RegionName),
		awsconfig.WithCredentialsProvider(credsProvider))
	if err != nil {
		return nil, err
	}

	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		o.EndpointResolverV2 = &s3Resolver{
			Endpoint: endpoint,
			Region:   cfg.RegionName,
		}
		o.UsePathStyle = true
		o.Region = cfg.RegionName
	})

	return &S3Storage{
		client:     client,
		bucketName: cfg.BucketName,
	}, nil
}

func (s *S3Storage) Save(locator string, data io.Reader) (int64, error) {
	input := &s3.PutObjectInput{
		Bucket:      aws.String(s.bucketName),
		Key:         aws.String(locator),
		Body:        data,
		ContentType: aws.String("application/octet-stream"),
	}

	if _, err := s.client.PutObject(context.TODO(), input); err != nil {
		return 0, err
	}

	headOutput, err := s.client.HeadObject(context.TODO(), &s3.HeadObjectInput{
		Bucket: aws.String(s.bucketName),
		Key:    aws.String(locator),
	})
	if err != nil {
		return 0, err
	}

	return *headOutput.ContentLength, nil
}

func (s *S3Storage) Retrieve(locator string) (io.ReadCloser, int64, error) {
	input := &s3.GetObjectInput{
		Bucket: aws.String(s.bucketName),
		Key:    aws.String(locator),
	}

	output, err := s.client.GetObject(context.TODO(), input)
	if err != nil {
		var noKey *types.NoSuchKey
		if errors.As(err, &noKey) {
			return nil, 0, ErrNotFound
		}
		return nil, 0, err
	}

	var length int64
	if output.ContentLength != nil {
		length = *output.ContentLength
	}

	return output.Body, length, nil
}

func (s *S3Storage) Delete(locator string) error {
	input := &s3.DeleteObjectInput{
		Bucket: aws.String(s.bucketName),
		Key:    aws.String(locator),
	}

	// DeleteObject succeeds for missing keys, which matches the
	// delete-if-exists contract
	_, err := s.client.DeleteObject(context.TODO(), input)
	return err
}
