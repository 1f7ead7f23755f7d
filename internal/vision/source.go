package vision

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// PageSource provides page images for the grid flow, one file per page.
// Sources include rendered PDF pages, a directory of pre-rendered
// images, and live screen captures.
type PageSource interface {
	PageCount() int
	PageImage(ctx context.Context, page int) (string, error)
}

// DirectorySource serves pre-rendered page images from a directory in
// lexical order, for replaying a run or tuning thresholds without a PDF.
type DirectorySource struct {
	paths []string
}

func NewDirectorySource(dir string) (*DirectorySource, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("read image dir: %w", err)
	}

	var paths []string
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		switch strings.ToLower(filepath.Ext(e.Name())) {
		case ".png", ".jpg", ".jpeg":
			paths = append(paths, filepath.Join(dir, e.Name()))
		}
	}
	if len(paths) == 0 {
		return nil, fmt.Errorf("no page images in %s", dir)
	}
	sort.Strings(paths)
	return &DirectorySource{paths: paths}, nil
}

func (s *DirectorySource) PageCount() int { return len(s.paths) }

func (s *DirectorySource) PageImage(_ context.Context, page int) (string, error) {
	if page < 1 || page > len(s.paths) {
		return "", fmt.Errorf("page %d out of range 1..%d", page, len(s.paths))
	}
	return s.paths[page-1], nil
}
