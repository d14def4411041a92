package uploads

import (
	"bytes"
	"context"
	"errors"
	"io"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
)

// MaxBytes is the hard cap on a single uploaded image.
const MaxBytes = 4 * 1024 * 1024

var (
	ErrTooLarge    = errors.New("uploads: file exceeds 4MB limit")
	ErrBadFileType = errors.New("uploads: only jpg, jpeg and png are allowed")
)

// Store persists an uploaded image and returns a public URL for it. The URL is
// what gets written into Pet.ImageURL / User.ProfilePictureURL.
type Store interface {
	Save(ctx context.Context, filename string, r io.Reader) (string, error)
}

var allowedExts = map[string]string{
	".jpg":  "image/jpeg",
	".jpeg": "image/jpeg",
	".png":  "image/png",
}

// prepare validates the extension, enforces the size cap, and picks a
// collision-free object key. Shared by every driver.
func prepare(filename string, r io.Reader) (key, contentType string, data []byte, err error) {
	ext := strings.ToLower(filepath.Ext(filename))
	ct, ok := allowedExts[ext]
	if !ok {
		return "", "", nil, ErrBadFileType
	}

	// Read one byte past the cap so we can tell "exactly 4MB" from "too big".
	var buf bytes.Buffer
	n, err := io.Copy(&buf, io.LimitReader(r, MaxBytes+1))
	if err != nil {
		return "", "", nil, err
	}
	if n > MaxBytes {
		return "", "", nil, ErrTooLarge
	}

	return uuid.NewString() + ext, ct, buf.Bytes(), nil
}
