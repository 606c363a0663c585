package s3

import (
	"context"
	"net/url"
	"strings"
	"testing"
	"time"
)

func TestApplyPrefix(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		prefix string
		key    string
		want   string
	}{
		{name: "no prefix", prefix: "", key: "user/file.docx", want: "user/file.docx"},
		{name: "simple prefix", prefix: "root", key: "user/file.docx", want: "root/user/file.docx"},
		{name: "prefix trailing slash", prefix: "root/", key: "user/file.docx", want: "root/user/file.docx"},
		{name: "prefix and key slashes", prefix: "/root/", key: "/user/file.docx", want: "root/user/file.docx"},
		{name: "nested prefix", prefix: "root/sub", key: "user/file.docx", want: "root/sub/user/file.docx"},
		{name: "preview key", prefix: "resumes", key: "u/a.docx.preview", want: "resumes/u/a.docx.preview"},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if got := applyPrefix(tt.prefix, tt.key); got != tt.want {
				t.Fatalf("applyPrefix(%q, %q) = %q, want %q", tt.prefix, tt.key, got, tt.want)
			}
		})
	}
}

func TestNewRequiresBucket(t *testing.T) {
	if _, err := New(context.Background(), Options{Region: "us-east-1"}); err == nil {
		t.Fatalf("expected error for missing bucket")
	}
}

func TestPresignGetUsesEndpointAndPrefix(t *testing.T) {
	t.Setenv("AWS_EC2_METADATA_DISABLED", "true")

	store, err := New(context.Background(), Options{
		Region:    "us-east-1",
		Bucket:    "resumes-bucket",
		Prefix:    "/dev/",
		Endpoint:  "http://localhost:9000",
		AccessKey: "test",
		SecretKey: "test",
	})
	if err != nil {
		t.Fatalf("new store: %v", err)
	}

	raw, err := store.PresignGet(context.Background(), "user/file.docx.preview", 24*time.Hour)
	if err != nil {
		t.Fatalf("presign: %v", err)
	}
	u, err := url.Parse(raw)
	if err != nil {
		t.Fatalf("parse url: %v", err)
	}
	if u.Host != "localhost:9000" {
		t.Fatalf("host = %q", u.Host)
	}
	if u.Path != "/resumes-bucket/dev/user/file.docx.preview" {
		t.Fatalf("path = %q", u.Path)
	}
	if got := u.Query().Get("X-Amz-Expires"); got != "86400" {
		t.Fatalf("expires = %q", got)
	}
	if !strings.Contains(u.RawQuery, "X-Amz-Signature=") {
		t.Fatalf("missing signature in %q", u.RawQuery)
	}
}
