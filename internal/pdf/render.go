package pdf

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strconv"
	"time"

	"go.uber.org/zap"
)

// Renderer rasterizes PDF pages to PNG files using pdftoppm from
// poppler-utils. pdftoppm renders the page as printed, unlike embedded
// image extraction whose object numbering need not match page order.
type Renderer struct {
	pdfPath string
	outDir  string
	dpi     int
	log     *zap.Logger
}

func NewRenderer(pdfPath, outDir string, dpi int, log *zap.Logger) *Renderer {
	if log == nil {
		log = zap.NewNop()
	}
	if dpi <= 0 {
		dpi = 144
	}
	return &Renderer{pdfPath: pdfPath, outDir: outDir, dpi: dpi, log: log}
}

// PagePath returns where RenderPage writes the given page.
func (r *Renderer) PagePath(page int) string {
	return filepath.Join(r.outDir, fmt.Sprintf("page_%04d.png", page))
}

// RenderPage rasterizes one page and returns the PNG path. An existing
// rendering of the page is reused without invoking pdftoppm again.
func (r *Renderer) RenderPage(ctx context.Context, page int) (string, error) {
	select {
	case <-ctx.Done():
		return "", ctx.Err()
	default:
	}

	dst := r.PagePath(page)
	if _, err := os.Stat(dst); err == nil {
		return dst, nil
	}

	if err := os.MkdirAll(r.outDir, 0755); err != nil {
		return "", fmt.Errorf("create render dir: %w", err)
	}

	// -singlefile keeps pdftoppm from appending its own page suffix.
	prefix := dst[:len(dst)-len(".png")]
	pageStr := strconv.Itoa(page)
	start := time.Now()
	cmd := exec.CommandContext(ctx, "pdftoppm",
		"-png",
		"-f", pageStr,
		"-l", pageStr,
		"-r", strconv.Itoa(r.dpi),
		"-singlefile",
		r.pdfPath,
		prefix,
	)
	output, err := cmd.CombinedOutput()
	if err != nil {
		return "", fmt.Errorf("pdftoppm page %d: %w (output: %s)", page, err, string(output))
	}
	if _, err := os.Stat(dst); err != nil {
		return "", fmt.Errorf("pdftoppm produced no output for page %d: %w", page, err)
	}

	r.log.Debug("page rendered",
		zap.Int("page", page),
		zap.Int("dpi", r.dpi),
		zap.Duration("elapsed", time.Since(start)))
	return dst, nil
}

// CheckRenderer verifies pdftoppm is installed and on PATH.
func CheckRenderer() error {
	if _, err := exec.LookPath("pdftoppm"); err != nil {
		return fmt.Errorf("pdftoppm not found, install poppler-utils: %w", err)
	}
	return nil
}
