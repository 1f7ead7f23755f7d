package vision

import (
	"fmt"
	"image"
	"os"
	"path/filepath"

	"gocv.io/x/gocv"
	"go.uber.org/zap"
)

// SectionImage is one analyzed grid cell: its tile on the page, the
// board-area crop written for detection and recognition, and the bubbles
// found in its top strip. NumberPNG is the left part of the strip where
// the printed diagram number sits, ready for the OCR collaborator.
type SectionImage struct {
	Page      int
	Index     int // 1-based, column-major within the page
	Row       int // 0-based
	Col       int // 0-based
	Rect      image.Rectangle
	Body      image.Rectangle
	Bubbles   []Bubble
	NumberPNG []byte
	Path      string // full-cell crop, debug only
	BodyPath  string // board-area crop
}

// GridAnalyzer divides page images into cells and runs the bubble
// analyzer on each cell's top strip.
type GridAnalyzer struct {
	cfg       GridConfig
	bubbles   *BubbleAnalyzer
	outDir    string
	saveCells bool
	log       *zap.Logger
}

// NewGridAnalyzer creates an analyzer writing crops under outDir. Full
// cell crops are only written when saveCells is set; board-area crops
// are always written since detection and recognition read them back.
func NewGridAnalyzer(cfg GridConfig, outDir string, saveCells bool, log *zap.Logger) *GridAnalyzer {
	if log == nil {
		log = zap.NewNop()
	}
	return &GridAnalyzer{
		cfg:       cfg,
		bubbles:   NewBubbleAnalyzer(cfg, log),
		outDir:    outDir,
		saveCells: saveCells,
		log:       log,
	}
}

// AnalyzePage divides the page image into rows×columns sections in
// column-major order and analyzes each one.
func (a *GridAnalyzer) AnalyzePage(imagePath string, page int) ([]SectionImage, error) {
	img := gocv.IMRead(imagePath, gocv.IMReadColor)
	if img.Empty() {
		return nil, fmt.Errorf("unreadable page image: %s", imagePath)
	}
	defer img.Close()

	gray := gocv.NewMat()
	defer gray.Close()
	gocv.CvtColor(img, &gray, gocv.ColorBGRToGray)

	if err := os.MkdirAll(a.outDir, 0755); err != nil {
		return nil, fmt.Errorf("create sections dir: %w", err)
	}

	tiles := Tiles(img.Cols(), img.Rows(), a.cfg.Rows, a.cfg.Columns)
	sections := make([]SectionImage, 0, len(tiles))
	for i, cell := range tiles {
		index := i + 1
		sec := SectionImage{
			Page:  page,
			Index: index,
			Row:   i % a.cfg.Rows,
			Col:   i / a.cfg.Rows,
			Rect:  cell,
			Body:  bodyRect(cell, a.cfg.BubbleAreaRatio, a.cfg.CellPadding),
		}

		strip := stripRect(cell, a.cfg.BubbleAreaRatio)
		stripMat := gray.Region(strip)
		sec.Bubbles = a.bubbles.FindBubbles(stripMat)
		stripMat.Close()
		for bi := range sec.Bubbles {
			sec.Bubbles[bi].Rect = sec.Bubbles[bi].Rect.Add(strip.Min)
		}

		if a.cfg.NumberAreaRatio > 0 {
			sec.NumberPNG = encodePNG(gray, numberRect(strip, a.cfg.NumberAreaRatio), a.log)
		}

		sec.BodyPath = filepath.Join(a.outDir, fmt.Sprintf("p%04d_s%d_board.png", page, index))
		if err := writeCrop(img, sec.Body, sec.BodyPath); err != nil {
			return nil, err
		}
		if a.saveCells {
			sec.Path = filepath.Join(a.outDir, fmt.Sprintf("p%04d_s%d.png", page, index))
			if err := writeCrop(img, cell, sec.Path); err != nil {
				return nil, err
			}
		}

		sections = append(sections, sec)
	}

	a.log.Debug("page divided",
		zap.Int("page", page),
		zap.Int("sections", len(sections)))
	return sections, nil
}

// Tiles returns the rows×columns cell rectangles of a width×height page
// in column-major order: down the left column first, then the next
// column. Cells share edges and tile the page exactly; the last row and
// column absorb division remainders.
func Tiles(width, height, rows, cols int) []image.Rectangle {
	if width <= 0 || height <= 0 || rows <= 0 || cols <= 0 {
		return nil
	}

	cellW := width / cols
	cellH := height / rows
	tiles := make([]image.Rectangle, 0, rows*cols)
	for col := 0; col < cols; col++ {
		for row := 0; row < rows; row++ {
			x0 := col * cellW
			y0 := row * cellH
			x1 := x0 + cellW
			y1 := y0 + cellH
			if col == cols-1 {
				x1 = width
			}
			if row == rows-1 {
				y1 = height
			}
			tiles = append(tiles, image.Rect(x0, y0, x1, y1))
		}
	}
	return tiles
}

// stripRect returns the top fraction of a cell holding the bubbles.
func stripRect(cell image.Rectangle, ratio float64) image.Rectangle {
	h := int(float64(cell.Dy()) * ratio)
	return image.Rect(cell.Min.X, cell.Min.Y, cell.Max.X, cell.Min.Y+h)
}

// numberRect returns the left share of the strip, where books print the
// large diagram number.
func numberRect(strip image.Rectangle, ratio float64) image.Rectangle {
	w := int(float64(strip.Dx()) * ratio)
	return image.Rect(strip.Min.X, strip.Min.Y, strip.Min.X+w, strip.Max.Y)
}

// bodyRect returns the board area below the bubble strip, inset by the
// padding on all sides. A padding too large for the cell collapses to
// the uninset body rather than an empty rect.
func bodyRect(cell image.Rectangle, ratio float64, padding int) image.Rectangle {
	stripH := int(float64(cell.Dy()) * ratio)
	body := image.Rect(cell.Min.X, cell.Min.Y+stripH, cell.Max.X, cell.Max.Y)
	inset := body.Inset(padding)
	if inset.Empty() {
		return body
	}
	return inset
}

// writeCrop clones a region of the page image out to a PNG file.
func writeCrop(img gocv.Mat, rect image.Rectangle, path string) error {
	region := img.Region(rect)
	cloned := region.Clone()
	region.Close()
	ok := gocv.IMWrite(path, cloned)
	cloned.Close()
	if !ok {
		return fmt.Errorf("write crop %s", path)
	}
	return nil
}
