package sink

import (
	"bytes"
	"context"
	"errors"
	"fmt"

	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

// S3API is the subset of the S3 client used by S3Sink.
// Fakes implement it in tests.
type S3API interface {
	PutObject(ctx context.Context, input *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
}

// S3Options holds configuration for the S3 archive backend.
type S3Options struct {
	// Bucket is the S3 bucket name (required).
	Bucket string
	// Prefix is the key prefix within the bucket (optional).
	Prefix string
	// Region is the AWS region (optional, uses default chain if empty).
	Region string
	// Endpoint is a custom S3 endpoint URL for S3-compatible providers
	// (e.g. Cloudflare R2, MinIO). Empty uses the default AWS endpoint.
	Endpoint string
	// UsePathStyle forces path-style addressing (bucket in path, not
	// subdomain). Required by most S3-compatible providers.
	UsePathStyle bool
}

// Validate checks that required S3 configuration is present.
func (o *S3Options) Validate() error {
	if o.Bucket == "" {
		return errors.New("S3 bucket is required")
	}
	return nil
}

// NewS3Client builds an S3 client from the default AWS credential chain
// (env vars, shared config, IAM role) with the option overrides applied.
func NewS3Client(ctx context.Context, o S3Options) (S3API, error) {
	if err := o.Validate(); err != nil {
		return nil, err
	}

	var opts []func(*awsconfig.LoadOptions) error
	if o.Region != "" {
		opts = append(opts, awsconfig.WithRegion(o.Region))
	}

	cfg, err := awsconfig.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}

	var s3Opts []func(*s3.Options)
	if o.Endpoint != "" {
		endpoint := o.Endpoint
		s3Opts = append(s3Opts, func(opt *s3.Options) {
			opt.BaseEndpoint = &endpoint
		})
	}
	if o.UsePathStyle {
		s3Opts = append(s3Opts, func(opt *s3.Options) {
			opt.UsePathStyle = true
		})
	}

	return s3.NewFromConfig(cfg, s3Opts...), nil
}

// S3Sink archives one fetched file to S3. Chunks accumulate in memory and
// the object is uploaded in a single PutObject on Close, so a failed
// transfer never leaves a partial object behind.
type S3Sink struct {
	client S3API
	opts   S3Options
	key    string
	buf    bytes.Buffer
	next   int64
	ctx    context.Context
}

// NewS3Sink creates a sink uploading to <prefix>/<name> in the configured
// bucket on Close.
func NewS3Sink(ctx context.Context, client S3API, opts S3Options, name string) *S3Sink {
	key := name
	if opts.Prefix != "" {
		key = opts.Prefix + "/" + name
	}
	return &S3Sink{client: client, opts: opts, key: key, ctx: ctx}
}

// Key returns the object key the sink uploads to.
func (s *S3Sink) Key() string { return s.key }

// WriteChunk implements Sink.
func (s *S3Sink) WriteChunk(offset int64, data []byte) error {
	if offset != s.next {
		return fmt.Errorf("%w: got offset %d, want %d", ErrOutOfOrderChunk, offset, s.next)
	}
	s.buf.Write(data)
	s.next += int64(len(data))
	return nil
}

// Close uploads the accumulated object.
func (s *S3Sink) Close() error {
	input := &s3.PutObjectInput{
		Bucket: &s.opts.Bucket,
		Key:    &s.key,
		Body:   bytes.NewReader(s.buf.Bytes()),
	}
	if _, err := s.client.PutObject(s.ctx, input); err != nil {
		return fmt.Errorf("s3 upload %s: %w", s.key, err)
	}
	return nil
}

// Verify S3Sink implements Sink.
var _ Sink = (*S3Sink)(nil)
