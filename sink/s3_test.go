package sink

import (
	"bytes"
	"context"
	"errors"
	"testing"

	"github.com/aws/aws-sdk-go-v2/service/s3"
)

// fakeS3 records PutObject calls.
type fakeS3 struct {
	bucket string
	key    string
	body   []byte
	err    error
	calls  int
}

func (f *fakeS3) PutObject(_ context.Context, input *s3.PutObjectInput, _ ...func(*s3.Options)) (*s3.PutObjectOutput, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	f.bucket = *input.Bucket
	f.key = *input.Key
	var buf bytes.Buffer
	if _, err := buf.ReadFrom(input.Body); err != nil {
		return nil, err
	}
	f.body = buf.Bytes()
	return &s3.PutObjectOutput{}, nil
}

func TestS3Sink_UploadsOnClose(t *testing.T) {
	fake := &fakeS3{}
	opts := S3Options{Bucket: "archive", Prefix: "ecg"}
	s := NewS3Sink(context.Background(), fake, opts, "1.csv")

	if err := s.WriteChunk(0, []byte("head,")); err != nil {
		t.Fatalf("WriteChunk failed: %v", err)
	}
	if err := s.WriteChunk(5, []byte("tail")); err != nil {
		t.Fatalf("WriteChunk failed: %v", err)
	}
	if fake.calls != 0 {
		t.Error("upload happened before Close")
	}

	if err := s.Close(); err != nil {
		t.Fatalf("Close failed: %v", err)
	}
	if fake.calls != 1 {
		t.Fatalf("PutObject called %d times, want 1", fake.calls)
	}
	if fake.bucket != "archive" {
		t.Errorf("bucket = %q, want archive", fake.bucket)
	}
	if fake.key != "ecg/1.csv" {
		t.Errorf("key = %q, want ecg/1.csv", fake.key)
	}
	if string(fake.body) != "head,tail" {
		t.Errorf("body = %q, want %q", fake.body, "head,tail")
	}
}

func TestS3Sink_KeyWithoutPrefix(t *testing.T) {
	s := NewS3Sink(context.Background(), &fakeS3{}, S3Options{Bucket: "b"}, "file.bin")
	if s.Key() != "file.bin" {
		t.Errorf("Key = %q, want file.bin", s.Key())
	}
}

func TestS3Sink_UploadFailure(t *testing.T) {
	fake := &fakeS3{err: errors.New("denied")}
	s := NewS3Sink(context.Background(), fake, S3Options{Bucket: "b"}, "f")

	if err := s.WriteChunk(0, []byte("x")); err != nil {
		t.Fatalf("WriteChunk failed: %v", err)
	}
	if err := s.Close(); err == nil {
		t.Error("expected upload error from Close")
	}
}

func TestS3Sink_RejectsOutOfOrder(t *testing.T) {
	s := NewS3Sink(context.Background(), &fakeS3{}, S3Options{Bucket: "b"}, "f")
	if err := s.WriteChunk(1, []byte("x")); !errors.Is(err, ErrOutOfOrderChunk) {
		t.Errorf("got %v, want ErrOutOfOrderChunk", err)
	}
}

func TestS3Options_Validate(t *testing.T) {
	if err := (&S3Options{}).Validate(); err == nil {
		t.Error("empty bucket should fail validation")
	}
	if err := (&S3Options{Bucket: "b"}).Validate(); err != nil {
		t.Errorf("valid options failed: %v", err)
	}
}
