package vision

import (
	"fmt"
	"image"
	"os"
	"path/filepath"

	"gocv.io/x/gocv"
	"go.uber.org/zap"
)

// BoardDetector decides whether an image shows a chess diagram. Printed
// diagrams are grids of small squares, so the detector counts square-ish
// contours after edge detection rather than matching any particular
// piece set or style.
type BoardDetector struct {
	cfg         DetectorConfig
	rejectedDir string
	log         *zap.Logger
}

// NewBoardDetector creates a detector. When rejectedDir is non-empty,
// images that fail the check are copied there for threshold tuning.
func NewBoardDetector(cfg DetectorConfig, rejectedDir string, log *zap.Logger) *BoardDetector {
	if log == nil {
		log = zap.NewNop()
	}
	return &BoardDetector{cfg: cfg, rejectedDir: rejectedDir, log: log}
}

// IsChessboard reports whether the image at path looks like a chess
// diagram, along with the number of square candidates found. The count
// doubles as a confidence signal for downstream records.
func (d *BoardDetector) IsChessboard(imagePath string) (bool, int, error) {
	img := gocv.IMRead(imagePath, gocv.IMReadGrayScale)
	if img.Empty() {
		return false, 0, fmt.Errorf("unreadable image: %s", imagePath)
	}
	defer img.Close()

	squares := d.countSquares(img)
	isBoard := squares >= d.cfg.MinSquares

	d.log.Debug("board check",
		zap.String("image", imagePath),
		zap.Int("squares", squares),
		zap.Bool("chessboard", isBoard))

	if !isBoard && d.rejectedDir != "" {
		if err := d.saveRejected(imagePath); err != nil {
			d.log.Warn("could not save rejected image",
				zap.String("image", imagePath),
				zap.Error(err))
		}
	}
	return isBoard, squares, nil
}

// countSquares runs the blur/Canny/contour pass and counts contours that
// simplify to quadrilaterals within the size and aspect bands.
func (d *BoardDetector) countSquares(gray gocv.Mat) int {
	blurred := gocv.NewMat()
	defer blurred.Close()
	k := d.cfg.BlurKernel
	gocv.GaussianBlur(gray, &blurred, image.Pt(k, k), 0, 0, gocv.BorderDefault)

	edges := gocv.NewMat()
	defer edges.Close()
	gocv.Canny(blurred, &edges, d.cfg.CannyLow, d.cfg.CannyHigh)

	contours := gocv.FindContours(edges, gocv.RetrievalList, gocv.ChainApproxSimple)
	defer contours.Close()

	squares := 0
	for i := 0; i < contours.Size(); i++ {
		contour := contours.At(i)
		arc := gocv.ArcLength(contour, true)
		approx := gocv.ApproxPolyDP(contour, d.cfg.EpsilonRatio*arc, true)
		corners := approx.Size()
		approx.Close()
		if corners != 4 {
			continue
		}

		rect := gocv.BoundingRect(contour)
		if squareLike(rect, d.cfg.MinSquareSize, d.cfg.MinAspect, d.cfg.MaxAspect) {
			squares++
		}
	}
	return squares
}

// squareLike reports whether a bounding rect is big enough and close
// enough to square to count as a board cell.
func squareLike(rect image.Rectangle, minSize int, minAspect, maxAspect float64) bool {
	w, h := rect.Dx(), rect.Dy()
	if w <= minSize || h <= minSize {
		return false
	}
	aspect := float64(w) / float64(h)
	return aspect >= minAspect && aspect <= maxAspect
}

// saveRejected copies a failed candidate into the rejected bucket under
// its original name.
func (d *BoardDetector) saveRejected(imagePath string) error {
	if err := os.MkdirAll(d.rejectedDir, 0755); err != nil {
		return err
	}
	data, err := os.ReadFile(imagePath)
	if err != nil {
		return err
	}
	dst := filepath.Join(d.rejectedDir, filepath.Base(imagePath))
	return os.WriteFile(dst, data, 0644)
}
