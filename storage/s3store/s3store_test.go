package s3store

import (
	"context"
	"errors"
	"io"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

type mockPutter struct {
	input *s3.PutObjectInput
	body  []byte
	err   error
}

func (m *mockPutter) PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error) {
	m.input = params
	if params.Body != nil {
		m.body, _ = io.ReadAll(params.Body)
	}
	if m.err != nil {
		return nil, m.err
	}
	return &s3.PutObjectOutput{}, nil
}

func TestSaveFile(t *testing.T) {
	mock := &mockPutter{}
	store := NewWithClient(mock, Config{Bucket: "images", Region: "eu-west-1"})

	url, err := store.SaveFile(context.Background(), []byte("png"), "generated-images/a.png", "image/png")
	if err != nil {
		t.Fatalf("SaveFile: %v", err)
	}

	if aws.ToString(mock.input.Bucket) != "images" {
		t.Errorf("bucket = %s", aws.ToString(mock.input.Bucket))
	}
	if aws.ToString(mock.input.Key) != "generated-images/a.png" {
		t.Errorf("key = %s", aws.ToString(mock.input.Key))
	}
	if aws.ToString(mock.input.ContentType) != "image/png" {
		t.Errorf("content type = %s", aws.ToString(mock.input.ContentType))
	}
	if string(mock.body) != "png" {
		t.Errorf("body = %q", mock.body)
	}
	if url != "https://images.s3.eu-west-1.amazonaws.com/generated-images/a.png" {
		t.Errorf("url = %s", url)
	}
}

func TestSaveFile_DefaultContentType(t *testing.T) {
	mock := &mockPutter{}
	store := NewWithClient(mock, Config{Bucket: "b"})

	if _, err := store.SaveFile(context.Background(), nil, "k", ""); err != nil {
		t.Fatal(err)
	}
	if aws.ToString(mock.input.ContentType) != "image/png" {
		t.Errorf("content type = %s", aws.ToString(mock.input.ContentType))
	}
}

func TestSaveFile_Error(t *testing.T) {
	boom := errors.New("access denied")
	store := NewWithClient(&mockPutter{err: boom}, Config{Bucket: "b"})

	_, err := store.SaveFile(context.Background(), nil, "k", "image/png")
	if !errors.Is(err, boom) {
		t.Errorf("expected wrapped error, got %v", err)
	}
}

func TestSaveFile_NoBucket(t *testing.T) {
	store := NewWithClient(&mockPutter{}, Config{})

	if _, err := store.SaveFile(context.Background(), nil, "k", ""); !errors.Is(err, ErrNoBucket) {
		t.Errorf("expected ErrNoBucket, got %v", err)
	}
}

func TestURL(t *testing.T) {
	tests := []struct {
		name string
		cfg  Config
		want string
	}{
		{
			name: "public url",
			cfg:  Config{Bucket: "b", PublicURL: "https://cdn.example.com/", Endpoint: "https://r2.example.com"},
			want: "https://cdn.example.com/x.png",
		},
		{
			name: "custom endpoint",
			cfg:  Config{Bucket: "b", Endpoint: "http://localhost:9000"},
			want: "http://localhost:9000/b/x.png",
		},
		{
			name: "aws default region",
			cfg:  Config{Bucket: "b"},
			want: "https://b.s3.us-east-1.amazonaws.com/x.png",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := NewWithClient(&mockPutter{}, tt.cfg).URL("x.png")
			if got != tt.want {
				t.Errorf("URL() = %s, want %s", got, tt.want)
			}
		})
	}
}

func TestNew_RequiresBucket(t *testing.T) {
	if _, err := New(context.Background(), Config{}); !errors.Is(err, ErrNoBucket) {
		t.Errorf("expected ErrNoBucket, got %v", err)
	}
}
