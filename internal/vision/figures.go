package vision

import (
	"fmt"
	"image"
	"os"
	"path/filepath"
	"sort"

	"gocv.io/x/gocv"
	"go.uber.org/zap"
)

// Figure is a diagram-sized region cropped from a rendered page.
type Figure struct {
	Path string
	X    int
	Y    int
	W    int
	H    int
}

// FigureScanner locates diagram-sized rectangular regions on rendered
// pages and writes each crop to disk. It only segments; whether a crop
// actually shows a chessboard is the detector's call.
type FigureScanner struct {
	cfg    FigureConfig
	outDir string
	log    *zap.Logger
}

func NewFigureScanner(cfg FigureConfig, outDir string, log *zap.Logger) *FigureScanner {
	if log == nil {
		log = zap.NewNop()
	}
	return &FigureScanner{cfg: cfg, outDir: outDir, log: log}
}

// FindFigures segments the page image and returns the crops ordered top
// to bottom. Crops are named p<page>_fig<n>.png under the scanner's
// output directory.
func (s *FigureScanner) FindFigures(imagePath string, page int) ([]Figure, error) {
	img := gocv.IMRead(imagePath, gocv.IMReadColor)
	if img.Empty() {
		return nil, fmt.Errorf("unreadable page image: %s", imagePath)
	}
	defer img.Close()

	rects := s.candidateRects(img)
	if len(rects) == 0 {
		return nil, nil
	}
	if err := os.MkdirAll(s.outDir, 0755); err != nil {
		return nil, fmt.Errorf("create figure dir: %w", err)
	}

	figures := make([]Figure, 0, len(rects))
	for i, rect := range rects {
		path := filepath.Join(s.outDir, fmt.Sprintf("p%04d_fig%d.png", page, i+1))
		crop := img.Region(rect)
		cloned := crop.Clone()
		crop.Close()
		ok := gocv.IMWrite(path, cloned)
		cloned.Close()
		if !ok {
			return nil, fmt.Errorf("write figure crop %s", path)
		}
		figures = append(figures, Figure{
			Path: path,
			X:    rect.Min.X,
			Y:    rect.Min.Y,
			W:    rect.Dx(),
			H:    rect.Dy(),
		})
	}

	s.log.Debug("figures segmented",
		zap.Int("page", page),
		zap.Int("figures", len(figures)))
	return figures, nil
}

// candidateRects finds diagram-sized bounding rects on the page and
// drops any rect nested inside a larger accepted one.
func (s *FigureScanner) candidateRects(img gocv.Mat) []image.Rectangle {
	gray := gocv.NewMat()
	defer gray.Close()
	gocv.CvtColor(img, &gray, gocv.ColorBGRToGray)

	blurred := gocv.NewMat()
	defer blurred.Close()
	gocv.GaussianBlur(gray, &blurred, image.Pt(5, 5), 0, 0, gocv.BorderDefault)

	edges := gocv.NewMat()
	defer edges.Close()
	gocv.Canny(blurred, &edges, s.cfg.CannyLow, s.cfg.CannyHigh)

	contours := gocv.FindContours(edges, gocv.RetrievalExternal, gocv.ChainApproxSimple)
	defer contours.Close()

	shortSide := img.Cols()
	if img.Rows() < shortSide {
		shortSide = img.Rows()
	}

	var rects []image.Rectangle
	for i := 0; i < contours.Size(); i++ {
		rect := gocv.BoundingRect(contours.At(i))
		if figureSized(rect, shortSide, s.cfg) {
			rects = append(rects, rect)
		}
	}
	return dedupeNested(rects)
}

// figureSized checks the side-ratio and aspect bands against the page's
// shorter dimension.
func figureSized(rect image.Rectangle, shortSide int, cfg FigureConfig) bool {
	w, h := rect.Dx(), rect.Dy()
	if w == 0 || h == 0 || shortSide == 0 {
		return false
	}
	minSide := float64(shortSide) * cfg.MinSideRatio
	maxSide := float64(shortSide) * cfg.MaxSideRatio
	if float64(w) < minSide || float64(h) < minSide {
		return false
	}
	if float64(w) > maxSide || float64(h) > maxSide {
		return false
	}
	aspect := float64(w) / float64(h)
	return aspect >= cfg.MinAspect && aspect <= cfg.MaxAspect
}

// dedupeNested keeps only outermost rects, ordered top to bottom then
// left to right. Edge detection tends to produce a second, slightly
// smaller contour just inside a board's border.
func dedupeNested(rects []image.Rectangle) []image.Rectangle {
	if len(rects) == 0 {
		return nil
	}

	// Largest first so outer rects claim their insides.
	sort.SliceStable(rects, func(i, j int) bool {
		return area(rects[i]) > area(rects[j])
	})

	var kept []image.Rectangle
	for _, r := range rects {
		nested := false
		for _, k := range kept {
			if r.In(k) {
				nested = true
				break
			}
		}
		if !nested {
			kept = append(kept, r)
		}
	}

	sort.SliceStable(kept, func(i, j int) bool {
		if kept[i].Min.Y != kept[j].Min.Y {
			return kept[i].Min.Y < kept[j].Min.Y
		}
		return kept[i].Min.X < kept[j].Min.X
	})
	return kept
}

func area(r image.Rectangle) int {
	return r.Dx() * r.Dy()
}
