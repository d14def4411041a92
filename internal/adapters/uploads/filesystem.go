package uploads

import (
	"context"
	"io"
	"os"
	"path/filepath"
)

// Filesystem stores uploads under a local directory, served by the router at
// /uploads/. Default driver for dev.
type Filesystem struct {
	root string
}

func NewFilesystem(root string) (*Filesystem, error) {
	if root == "" {
		root = "./uploads"
	}
	if err := os.MkdirAll(root, 0o755); err != nil {
		return nil, err
	}
	return &Filesystem{root: root}, nil
}

// Root is the directory the router mounts as a static file server.
func (f *Filesystem) Root() string { return f.root }

func (f *Filesystem) Save(ctx context.Context, filename string, r io.Reader) (string, error) {
	key, _, data, err := prepare(filename, r)
	if err != nil {
		return "", err
	}

	// write to a temp file first, then move into place
	tmp, err := os.CreateTemp(f.root, ".tmp-*")
	if err != nil {
		return "", err
	}
	defer func() { _ = os.Remove(tmp.Name()) }()

	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		return "", err
	}
	if err := tmp.Close(); err != nil {
		return "", err
	}
	if err := os.Rename(tmp.Name(), filepath.Join(f.root, key)); err != nil {
		return "", err
	}

	return "/uploads/" + key, nil
}
