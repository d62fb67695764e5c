package service

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path"
	"path/filepath"
)

// ImageSource loads the raw bytes of a catalog image by file name
type ImageSource interface {
	Fetch(ctx context.Context, name string) ([]byte, error)
}

// DirImageSource reads catalog images from a local directory
type DirImageSource struct {
	dir string
}

var _ ImageSource = (*DirImageSource)(nil)

// NewDirImageSource creates a DirImageSource rooted at dir
func NewDirImageSource(dir string) *DirImageSource {
	return &DirImageSource{dir: dir}
}

// Fetch reads dir/<base name of name>
func (s *DirImageSource) Fetch(ctx context.Context, name string) ([]byte, error) {
	source := filepath.Join(s.dir, path.Base(name))
	raw, err := os.ReadFile(source)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", ErrImageNotFound, source)
		}
		return nil, fmt.Errorf("failed to read image: %w", err)
	}
	return raw, nil
}
