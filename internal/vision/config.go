package vision

import (
	"fmt"
	"image"
)

// DetectorConfig holds the chessboard validator thresholds. A candidate
// image passes when enough square-ish contours survive the filters.
type DetectorConfig struct {
	BlurKernel    int     `json:"blur_kernel"`     // Gaussian kernel side, odd
	CannyLow      float32 `json:"canny_low"`       // Lower Canny threshold
	CannyHigh     float32 `json:"canny_high"`      // Upper Canny threshold
	EpsilonRatio  float64 `json:"epsilon_ratio"`   // Polygon approximation, fraction of arc length
	MinAspect     float64 `json:"min_aspect"`      // Width/height band for square candidates
	MaxAspect     float64 `json:"max_aspect"`
	MinSquareSize int     `json:"min_square_size"` // Minimum candidate side in pixels
	MinSquares    int     `json:"min_squares"`     // Squares required to accept a board
}

// DefaultDetectorConfig returns thresholds tuned for printed diagrams
// rendered around 144 DPI.
func DefaultDetectorConfig() DetectorConfig {
	return DetectorConfig{
		BlurKernel:    5,
		CannyLow:      10,
		CannyHigh:     50,
		EpsilonRatio:  0.03,
		MinAspect:     0.4,
		MaxAspect:     1.8,
		MinSquareSize: 5,
		MinSquares:    4,
	}
}

// Validate checks if the detector configuration is valid
func (c DetectorConfig) Validate() error {
	if c.BlurKernel < 1 || c.BlurKernel%2 == 0 {
		return fmt.Errorf("invalid blur kernel: %d (must be odd and positive)", c.BlurKernel)
	}
	if c.CannyLow <= 0 || c.CannyHigh <= c.CannyLow {
		return fmt.Errorf("invalid canny thresholds: [%.0f, %.0f]", c.CannyLow, c.CannyHigh)
	}
	if c.EpsilonRatio <= 0 || c.EpsilonRatio >= 1 {
		return fmt.Errorf("invalid epsilon ratio: %f (must be in (0,1))", c.EpsilonRatio)
	}
	if c.MinAspect <= 0 || c.MaxAspect <= c.MinAspect {
		return fmt.Errorf("invalid aspect band: [%f, %f]", c.MinAspect, c.MaxAspect)
	}
	if c.MinSquareSize < 1 {
		return fmt.Errorf("invalid minimum square size: %d", c.MinSquareSize)
	}
	if c.MinSquares < 1 {
		return fmt.Errorf("invalid minimum square count: %d", c.MinSquares)
	}
	return nil
}

// FigureConfig holds the page segmentation thresholds for locating
// diagram-sized regions on a rendered page. Side ratios are relative to
// the shorter page dimension.
type FigureConfig struct {
	CannyLow     float32 `json:"canny_low"`
	CannyHigh    float32 `json:"canny_high"`
	MinSideRatio float64 `json:"min_side_ratio"`
	MaxSideRatio float64 `json:"max_side_ratio"`
	MinAspect    float64 `json:"min_aspect"`
	MaxAspect    float64 `json:"max_aspect"`
}

func DefaultFigureConfig() FigureConfig {
	return FigureConfig{
		CannyLow:     10,
		CannyHigh:    50,
		MinSideRatio: 0.15,
		MaxSideRatio: 0.95,
		MinAspect:    0.6,
		MaxAspect:    1.6,
	}
}

// Validate checks if the figure configuration is valid
func (c FigureConfig) Validate() error {
	if c.CannyLow <= 0 || c.CannyHigh <= c.CannyLow {
		return fmt.Errorf("invalid canny thresholds: [%.0f, %.0f]", c.CannyLow, c.CannyHigh)
	}
	if c.MinSideRatio <= 0 || c.MaxSideRatio <= c.MinSideRatio || c.MaxSideRatio > 1 {
		return fmt.Errorf("invalid side ratio band: [%f, %f]", c.MinSideRatio, c.MaxSideRatio)
	}
	if c.MinAspect <= 0 || c.MaxAspect <= c.MinAspect {
		return fmt.Errorf("invalid aspect band: [%f, %f]", c.MinAspect, c.MaxAspect)
	}
	return nil
}

// GridConfig holds the section divider and bubble analyzer settings.
type GridConfig struct {
	Rows            int     `json:"rows"`
	Columns         int     `json:"columns"`
	BubbleAreaRatio float64 `json:"bubble_area_ratio"` // Top strip height, fraction of cell
	NumberAreaRatio float64 `json:"number_area_ratio"` // Left strip share holding the printed number
	CellPadding     int     `json:"cell_padding"`      // Body inset in pixels
	MinBubbleArea   float64 `json:"min_bubble_area"`   // Contour area band in px²
	MaxBubbleArea   float64 `json:"max_bubble_area"`
	MinCircularity  float64 `json:"min_circularity"` // 4πA/P² floor
	MinBubbleAspect float64 `json:"min_bubble_aspect"`
	MaxBubbleAspect float64 `json:"max_bubble_aspect"`
	DedupeDistance  float64 `json:"dedupe_distance"` // Horizontal center distance in px
	MaxBubbles      int     `json:"max_bubbles"`
}

func DefaultGridConfig() GridConfig {
	return GridConfig{
		Rows:            3,
		Columns:         2,
		BubbleAreaRatio: 0.35,
		NumberAreaRatio: 0.25,
		CellPadding:     20,
		MinBubbleArea:   30,
		MaxBubbleArea:   500,
		MinCircularity:  0.2,
		MinBubbleAspect: 0.3,
		MaxBubbleAspect: 2.0,
		DedupeDistance:  25,
		MaxBubbles:      2,
	}
}

// Validate checks if the grid configuration is valid
func (c GridConfig) Validate() error {
	if c.Rows < 1 || c.Rows > 10 {
		return fmt.Errorf("invalid rows: %d (must be 1-10)", c.Rows)
	}
	if c.Columns < 1 || c.Columns > 10 {
		return fmt.Errorf("invalid columns: %d (must be 1-10)", c.Columns)
	}
	if c.BubbleAreaRatio <= 0 || c.BubbleAreaRatio >= 1 {
		return fmt.Errorf("invalid bubble area ratio: %f (must be in (0,1))", c.BubbleAreaRatio)
	}
	if c.NumberAreaRatio < 0 || c.NumberAreaRatio >= 1 {
		return fmt.Errorf("invalid number area ratio: %f (must be in [0,1))", c.NumberAreaRatio)
	}
	if c.CellPadding < 0 {
		return fmt.Errorf("invalid cell padding: %d", c.CellPadding)
	}
	if c.MinBubbleArea <= 0 || c.MaxBubbleArea <= c.MinBubbleArea {
		return fmt.Errorf("invalid bubble area band: [%f, %f]", c.MinBubbleArea, c.MaxBubbleArea)
	}
	if c.MinCircularity <= 0 || c.MinCircularity >= 1 {
		return fmt.Errorf("invalid circularity floor: %f (must be in (0,1))", c.MinCircularity)
	}
	if c.MinBubbleAspect <= 0 || c.MaxBubbleAspect <= c.MinBubbleAspect {
		return fmt.Errorf("invalid bubble aspect band: [%f, %f]", c.MinBubbleAspect, c.MaxBubbleAspect)
	}
	if c.DedupeDistance < 0 {
		return fmt.Errorf("invalid dedupe distance: %f", c.DedupeDistance)
	}
	if c.MaxBubbles < 0 {
		return fmt.Errorf("invalid max bubbles: %d", c.MaxBubbles)
	}
	return nil
}

// String returns a string representation of the config
func (c GridConfig) String() string {
	return fmt.Sprintf(
		"Grid Config:\n"+
			"  Layout: %dx%d\n"+
			"  Bubble Strip: %.0f%%\n"+
			"  Cell Padding: %dpx\n"+
			"  Bubble Area: [%.0f, %.0f]px²\n"+
			"  Max Bubbles: %d\n",
		c.Rows, c.Columns,
		c.BubbleAreaRatio*100,
		c.CellPadding,
		c.MinBubbleArea, c.MaxBubbleArea,
		c.MaxBubbles,
	)
}

// CaptureRegion defines the screen area to capture
type CaptureRegion struct {
	X      int `json:"x"`
	Y      int `json:"y"`
	Width  int `json:"width"`
	Height int `json:"height"`
}

// ToRectangle converts CaptureRegion to image.Rectangle
func (cr CaptureRegion) ToRectangle() image.Rectangle {
	return image.Rect(cr.X, cr.Y, cr.X+cr.Width, cr.Y+cr.Height)
}

// IsZero reports whether no region was configured, meaning the whole
// display should be captured.
func (cr CaptureRegion) IsZero() bool {
	return cr.Width == 0 && cr.Height == 0
}
