package vision

import (
	"context"
	"fmt"
	"image"
	"image/png"
	"os"
	"path/filepath"
	"time"

	"github.com/kbinani/screenshot"
	"go.uber.org/zap"
)

// ScreenSource captures a display region as page images, for books shown
// in an on-screen viewer. Every call after the first waits the turn
// delay so the operator can flip to the next page before the grab.
type ScreenSource struct {
	display int
	region  CaptureRegion
	pages   int
	delay   time.Duration
	outDir  string
	log     *zap.Logger
}

func NewScreenSource(display int, region CaptureRegion, pages int, delay time.Duration, outDir string, log *zap.Logger) (*ScreenSource, error) {
	if log == nil {
		log = zap.NewNop()
	}
	active := screenshot.NumActiveDisplays()
	if active == 0 {
		return nil, fmt.Errorf("no active displays")
	}
	if display < 0 || display >= active {
		return nil, fmt.Errorf("display %d out of range 0..%d", display, active-1)
	}
	if pages < 1 {
		pages = 1
	}
	return &ScreenSource{
		display: display,
		region:  region,
		pages:   pages,
		delay:   delay,
		outDir:  outDir,
		log:     log,
	}, nil
}

func (s *ScreenSource) PageCount() int { return s.pages }

// PageImage grabs one frame of the configured region and saves it as the
// given page's image.
func (s *ScreenSource) PageImage(ctx context.Context, page int) (string, error) {
	if page > 1 && s.delay > 0 {
		select {
		case <-ctx.Done():
			return "", ctx.Err()
		case <-time.After(s.delay):
		}
	}

	bounds := screenshot.GetDisplayBounds(s.display)
	if !s.region.IsZero() {
		bounds = s.region.ToRectangle()
	}
	img, err := screenshot.CaptureRect(bounds)
	if err != nil {
		return "", fmt.Errorf("failed to capture screen: %w", err)
	}
	return s.save(img, page)
}

func (s *ScreenSource) save(img image.Image, page int) (string, error) {
	if err := os.MkdirAll(s.outDir, 0755); err != nil {
		return "", fmt.Errorf("create capture dir: %w", err)
	}

	path := filepath.Join(s.outDir, fmt.Sprintf("screen_%04d.png", page))
	f, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("create capture file: %w", err)
	}
	if err := png.Encode(f, img); err != nil {
		f.Close()
		return "", fmt.Errorf("encode capture: %w", err)
	}
	if err := f.Close(); err != nil {
		return "", err
	}

	s.log.Info("screen captured",
		zap.Int("page", page),
		zap.String("path", path))
	return path, nil
}
