package local

import (
	"bytes"
	"context"
	"errors"
	"io"
	"net/url"
	"strings"
	"testing"
	"time"

	"resume-tailor/internal/shared/storage/object"
)

func TestSaveAndOpen(t *testing.T) {
	s := New(t.TempDir())
	ctx := context.Background()

	key, size, _, err := s.Save(ctx, "guest:abc", "My Resume.docx", strings.NewReader("payload"))
	if err != nil {
		t.Fatalf("save: %v", err)
	}
	if size != int64(len("payload")) {
		t.Fatalf("unexpected size %d", size)
	}
	if strings.Contains(key, "guest:abc") || !strings.HasSuffix(key, ".docx") {
		t.Fatalf("unexpected key %q", key)
	}

	got, err := object.ReadAll(ctx, s, key)
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if string(got) != "payload" {
		t.Fatalf("unexpected content %q", got)
	}
}

func TestSaveWithKeyOverwrites(t *testing.T) {
	s := New(t.TempDir())
	ctx := context.Background()

	for _, body := range []string{"first version", "second"} {
		if _, err := s.SaveWithKey(ctx, "resumes/abc.preview", "application/octet-stream", bytes.NewReader([]byte(body))); err != nil {
			t.Fatalf("save: %v", err)
		}
	}
	rc, err := s.Open(ctx, "resumes/abc.preview")
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	defer rc.Close()
	got, _ := io.ReadAll(rc)
	if string(got) != "second" {
		t.Fatalf("expected overwrite, got %q", got)
	}
}

func TestOpenRejectsTraversalAndMissing(t *testing.T) {
	s := New(t.TempDir())
	ctx := context.Background()

	if _, err := s.Open(ctx, "../etc/passwd"); err == nil {
		t.Fatalf("expected traversal to fail")
	}
	if _, err := s.Open(ctx, "missing/key"); !errors.Is(err, object.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestPresignGet(t *testing.T) {
	s := New(t.TempDir())
	s.now = func() time.Time { return time.Unix(1700000000, 0) }

	raw, err := s.PresignGet(context.Background(), "resumes/abc.preview", 24*time.Hour)
	if err != nil {
		t.Fatalf("presign: %v", err)
	}
	u, err := url.Parse(raw)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if u.Scheme != "file" || !strings.HasSuffix(u.Path, "resumes/abc.preview") {
		t.Fatalf("unexpected url %q", raw)
	}
	if u.Query().Get("expires") != "1700086400" || u.Query().Get("signature") == "" {
		t.Fatalf("unexpected query %q", u.RawQuery)
	}
}
