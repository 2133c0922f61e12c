package storage

import (
	"context"
	"errors"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/minio/minio-go/v7"
)

type fakeStore struct {
	exists     bool
	existsErr  error
	made       []string
	puts       []minio.PutObjectOptions
	keys       []string
	putErr     error
	lastExpiry time.Duration
	lastParams url.Values
}

func (f *fakeStore) BucketExists(_ context.Context, bucket string) (bool, error) {
	return f.exists, f.existsErr
}

func (f *fakeStore) MakeBucket(_ context.Context, bucket string, _ minio.MakeBucketOptions) error {
	f.made = append(f.made, bucket)
	f.exists = true
	return nil
}

func (f *fakeStore) FPutObject(_ context.Context, bucket, object, filePath string, opts minio.PutObjectOptions) (minio.UploadInfo, error) {
	if f.putErr != nil {
		return minio.UploadInfo{}, f.putErr
	}
	f.keys = append(f.keys, object)
	f.puts = append(f.puts, opts)
	return minio.UploadInfo{Bucket: bucket, Key: object, Size: int64(len(filePath))}, nil
}

func (f *fakeStore) PresignedGetObject(_ context.Context, bucket, object string, expiry time.Duration, params url.Values) (*url.URL, error) {
	f.lastExpiry = expiry
	f.lastParams = params
	return url.Parse("https://files.example.test/" + bucket + "/" + object + "?X-Amz-Signature=abc")
}

func TestPublishUploadsUnderJobPrefix(t *testing.T) {
	store := &fakeStore{}
	pub := NewWithStore(store, Config{Bucket: "transcripts", PresignExpiry: time.Hour}, nil)

	objects, err := pub.Publish(context.Background(), "job-42", []string{"/work/output.srt", "/work/transcript.zip"})
	if err != nil {
		t.Fatalf("Publish: %v", err)
	}
	if len(store.made) != 1 || store.made[0] != "transcripts" {
		t.Fatalf("expected bucket creation, got %v", store.made)
	}
	if len(objects) != 2 || objects[0].Key != "job-42/output.srt" || objects[1].Key != "job-42/transcript.zip" {
		t.Fatalf("unexpected objects %+v", objects)
	}
	if !strings.HasPrefix(objects[0].URL, "https://files.example.test/transcripts/job-42/output.srt") {
		t.Fatalf("unexpected url %q", objects[0].URL)
	}
	if store.puts[0].ContentType != "application/x-subrip; charset=utf-8" || store.puts[1].ContentType != "application/zip" {
		t.Fatalf("unexpected content types %+v", store.puts)
	}
	if store.lastExpiry != time.Hour {
		t.Fatalf("expiry = %v", store.lastExpiry)
	}
	if !strings.Contains(store.lastParams.Get("response-content-disposition"), `filename="transcript.zip"`) {
		t.Fatalf("unexpected disposition %v", store.lastParams)
	}
}

func TestPublishExistingBucketAndExpiryClamp(t *testing.T) {
	store := &fakeStore{exists: true}
	pub := NewWithStore(store, Config{Bucket: "b", PresignExpiry: 30 * 24 * time.Hour}, nil)
	if _, err := pub.Publish(context.Background(), "job", []string{"output.txt"}); err != nil {
		t.Fatalf("Publish: %v", err)
	}
	if len(store.made) != 0 {
		t.Fatal("bucket should not be created when it exists")
	}
	if store.lastExpiry != MaxPresignExpiry {
		t.Fatalf("expiry not clamped: %v", store.lastExpiry)
	}
	if NewWithStore(store, Config{}, nil).cfg.PresignExpiry != DefaultPresignExpiry {
		t.Fatal("expected default expiry")
	}
}

func TestPublishErrors(t *testing.T) {
	pub := NewWithStore(&fakeStore{}, Config{Bucket: "b"}, nil)
	if _, err := pub.Publish(context.Background(), " ", nil); err == nil {
		t.Fatal("expected job id error")
	}

	denied := errors.New("access denied")
	pub = NewWithStore(&fakeStore{existsErr: denied}, Config{Bucket: "b"}, nil)
	if _, err := pub.Publish(context.Background(), "job", []string{"a.txt"}); !errors.Is(err, denied) {
		t.Fatalf("expected bucket error, got %v", err)
	}

	pub = NewWithStore(&fakeStore{exists: true, putErr: denied}, Config{Bucket: "b"}, nil)
	if _, err := pub.Publish(context.Background(), "job", []string{"a.txt"}); !errors.Is(err, denied) {
		t.Fatalf("expected upload error, got %v", err)
	}
}

func TestNewRequiresEndpoint(t *testing.T) {
	if _, err := New(Config{}, nil); err == nil {
		t.Fatal("expected endpoint error")
	}
	pub, err := New(Config{Endpoint: "localhost:9000", Bucket: "b", AccessKey: "a", SecretKey: "s"}, nil)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if pub == nil {
		t.Fatal("expected publisher")
	}
}
