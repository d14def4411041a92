package uploads

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestMemory_SaveAndValidate(t *testing.T) {
	m := NewMemory()
	ctx := context.Background()

	url, err := m.Save(ctx, "photo.JPG", bytes.NewReader([]byte("fake image bytes")))
	if err != nil {
		t.Fatalf("save: %v", err)
	}
	if !strings.HasPrefix(url, "/uploads/") || !strings.HasSuffix(url, ".jpg") {
		t.Fatalf("unexpected url %q", url)
	}
	if m.Len() != 1 {
		t.Fatalf("expected 1 blob, got %d", m.Len())
	}

	if _, err := m.Save(ctx, "malware.gif", bytes.NewReader([]byte("x"))); !errors.Is(err, ErrBadFileType) {
		t.Fatalf("expected ErrBadFileType, got %v", err)
	}
	if _, err := m.Save(ctx, "noext", bytes.NewReader([]byte("x"))); !errors.Is(err, ErrBadFileType) {
		t.Fatalf("expected ErrBadFileType for missing extension, got %v", err)
	}
}

func TestSizeCap(t *testing.T) {
	m := NewMemory()
	ctx := context.Background()

	// exactly at the cap is fine
	if _, err := m.Save(ctx, "big.png", bytes.NewReader(make([]byte, MaxBytes))); err != nil {
		t.Fatalf("save at cap: %v", err)
	}

	// one byte over is not
	if _, err := m.Save(ctx, "huge.png", bytes.NewReader(make([]byte, MaxBytes+1))); !errors.Is(err, ErrTooLarge) {
		t.Fatalf("expected ErrTooLarge, got %v", err)
	}
}

func TestFilesystem_RoundTrip(t *testing.T) {
	root := t.TempDir()
	fs, err := NewFilesystem(root)
	if err != nil {
		t.Fatalf("new: %v", err)
	}

	content := []byte("png bytes")
	url, err := fs.Save(context.Background(), "pic.png", bytes.NewReader(content))
	if err != nil {
		t.Fatalf("save: %v", err)
	}

	key := strings.TrimPrefix(url, "/uploads/")
	got, err := os.ReadFile(filepath.Join(root, key))
	if err != nil {
		t.Fatalf("read back: %v", err)
	}
	if !bytes.Equal(got, content) {
		t.Fatalf("stored bytes differ")
	}
}
