package config

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"

	"github.com/vango-dev/formstate/internal/errors"
)

// S3 environment variables.
const (
	EnvS3Region   = "AWS_REGION"
	EnvS3Endpoint = "FORMSTATE_S3_ENDPOINT"
	envAccessKey  = "AWS_ACCESS_KEY_ID"
	envSecretKey  = "AWS_SECRET_ACCESS_KEY"
	envSession    = "AWS_SESSION_TOKEN"
)

const s3Scheme = "s3://"

// maxObjectSize caps the size of a definition read from S3.
const maxObjectSize = 1 << 20

// ObjectGetter is the part of the S3 client used to fetch definitions.
type ObjectGetter interface {
	GetObject(ctx context.Context, in *s3.GetObjectInput, optFns ...func(*s3.Options)) (*s3.GetObjectOutput, error)
}

// LoadURI loads a definition from a local path or an s3://bucket/key URI.
// S3 clients are built from the environment with NewS3Client.
func LoadURI(ctx context.Context, uri string) (*Config, error) {
	if !strings.HasPrefix(uri, s3Scheme) {
		return LoadFile(uri)
	}
	return LoadS3(ctx, NewS3Client(), uri)
}

// LoadS3 fetches an s3://bucket/key definition with client.
func LoadS3(ctx context.Context, client ObjectGetter, uri string) (*Config, error) {
	bucket, key, err := splitS3URI(uri)
	if err != nil {
		return nil, err
	}

	out, err := client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return nil, errors.New(errors.CodeInvalidConfig).
			WithDetail("Failed to fetch " + uri).
			Wrap(err)
	}
	defer out.Body.Close()

	data, err := io.ReadAll(io.LimitReader(out.Body, maxObjectSize+1))
	if err != nil {
		return nil, errors.New(errors.CodeInvalidConfig).Wrap(err)
	}
	if len(data) > maxObjectSize {
		return nil, invalid(fmt.Sprintf("%s is larger than %d bytes", uri, maxObjectSize))
	}

	cfg, err := Parse(data)
	if err != nil {
		return nil, err
	}
	cfg.configPath = uri
	return cfg, nil
}

func splitS3URI(uri string) (bucket, key string, err error) {
	rest := strings.TrimPrefix(uri, s3Scheme)
	bucket, key, ok := strings.Cut(rest, "/")
	if !ok || bucket == "" || key == "" {
		return "", "", invalid(fmt.Sprintf("%q is not an s3://bucket/key URI", uri))
	}
	return bucket, key, nil
}

// NewS3Client creates an S3 client from AWS_REGION and the static
// AWS_ACCESS_KEY_ID / AWS_SECRET_ACCESS_KEY pair. FORMSTATE_S3_ENDPOINT
// points the client at an S3-compatible store and switches to path-style
// addressing.
func NewS3Client() *s3.Client {
	opts := s3.Options{
		Region:      os.Getenv(EnvS3Region),
		Credentials: aws.NewCredentialsCache(aws.CredentialsProviderFunc(envCredentials)),
	}
	if opts.Region == "" {
		opts.Region = "us-east-1"
	}
	if endpoint := os.Getenv(EnvS3Endpoint); endpoint != "" {
		opts.BaseEndpoint = aws.String(endpoint)
		opts.UsePathStyle = true
	}
	return s3.New(opts)
}

func envCredentials(context.Context) (aws.Credentials, error) {
	creds := aws.Credentials{
		AccessKeyID:     os.Getenv(envAccessKey),
		SecretAccessKey: os.Getenv(envSecretKey),
		SessionToken:    os.Getenv(envSession),
		Source:          "environment",
	}
	if creds.AccessKeyID == "" || creds.SecretAccessKey == "" {
		return aws.Credentials{}, errors.New(errors.CodeInvalidConfig).
			WithDetail(envAccessKey + " and " + envSecretKey + " must be set to read from S3")
	}
	return creds, nil
}
