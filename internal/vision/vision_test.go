package vision

import (
	"image"
	"testing"
)

func TestDefaultDetectorConfig(t *testing.T) {
	config := DefaultDetectorConfig()

	if config.BlurKernel != 5 {
		t.Errorf("Expected blur kernel 5, got %d", config.BlurKernel)
	}
	if config.CannyLow != 10 || config.CannyHigh != 50 {
		t.Errorf("Expected canny [10, 50], got [%.0f, %.0f]", config.CannyLow, config.CannyHigh)
	}
	if config.MinSquares != 4 {
		t.Errorf("Expected 4 minimum squares, got %d", config.MinSquares)
	}

	if err := config.Validate(); err != nil {
		t.Errorf("Default detector config validation failed: %v", err)
	}
}

func TestDetectorConfigValidation(t *testing.T) {
	tests := []struct {
		name      string
		modifyFn  func(*DetectorConfig)
		expectErr bool
	}{
		{
			name:      "Valid config",
			modifyFn:  func(c *DetectorConfig) {},
			expectErr: false,
		},
		{
			name: "Even blur kernel",
			modifyFn: func(c *DetectorConfig) {
				c.BlurKernel = 4
			},
			expectErr: true,
		},
		{
			name: "Inverted canny thresholds",
			modifyFn: func(c *DetectorConfig) {
				c.CannyLow = 60
				c.CannyHigh = 50
			},
			expectErr: true,
		},
		{
			name: "Epsilon ratio out of range",
			modifyFn: func(c *DetectorConfig) {
				c.EpsilonRatio = 1.5
			},
			expectErr: true,
		},
		{
			name: "Inverted aspect band",
			modifyFn: func(c *DetectorConfig) {
				c.MinAspect = 2.0
				c.MaxAspect = 1.0
			},
			expectErr: true,
		},
		{
			name: "Zero minimum square size",
			modifyFn: func(c *DetectorConfig) {
				c.MinSquareSize = 0
			},
			expectErr: true,
		},
		{
			name: "Zero minimum squares",
			modifyFn: func(c *DetectorConfig) {
				c.MinSquares = 0
			},
			expectErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			config := DefaultDetectorConfig()
			tt.modifyFn(&config)

			err := config.Validate()
			if tt.expectErr && err == nil {
				t.Error("Expected validation error, got nil")
			}
			if !tt.expectErr && err != nil {
				t.Errorf("Unexpected validation error: %v", err)
			}
		})
	}
}

func TestDefaultGridConfig(t *testing.T) {
	config := DefaultGridConfig()

	if config.Rows != 3 || config.Columns != 2 {
		t.Errorf("Expected 3x2 grid, got %dx%d", config.Rows, config.Columns)
	}
	if config.BubbleAreaRatio != 0.35 {
		t.Errorf("Expected bubble strip ratio 0.35, got %f", config.BubbleAreaRatio)
	}
	if config.MaxBubbles != 2 {
		t.Errorf("Expected max 2 bubbles, got %d", config.MaxBubbles)
	}

	if err := config.Validate(); err != nil {
		t.Errorf("Default grid config validation failed: %v", err)
	}
}

func TestGridConfigValidation(t *testing.T) {
	tests := []struct {
		name      string
		modifyFn  func(*GridConfig)
		expectErr bool
	}{
		{
			name:      "Valid config",
			modifyFn:  func(c *GridConfig) {},
			expectErr: false,
		},
		{
			name: "Zero rows",
			modifyFn: func(c *GridConfig) {
				c.Rows = 0
			},
			expectErr: true,
		},
		{
			name: "Too many columns",
			modifyFn: func(c *GridConfig) {
				c.Columns = 11
			},
			expectErr: true,
		},
		{
			name: "Strip ratio at one",
			modifyFn: func(c *GridConfig) {
				c.BubbleAreaRatio = 1.0
			},
			expectErr: true,
		},
		{
			name: "Inverted bubble area band",
			modifyFn: func(c *GridConfig) {
				c.MinBubbleArea = 600
				c.MaxBubbleArea = 500
			},
			expectErr: true,
		},
		{
			name: "Zero circularity floor",
			modifyFn: func(c *GridConfig) {
				c.MinCircularity = 0
			},
			expectErr: true,
		},
		{
			name: "Negative dedupe distance",
			modifyFn: func(c *GridConfig) {
				c.DedupeDistance = -1
			},
			expectErr: true,
		},
		{
			name: "Zero max bubbles allowed",
			modifyFn: func(c *GridConfig) {
				c.MaxBubbles = 0
			},
			expectErr: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			config := DefaultGridConfig()
			tt.modifyFn(&config)

			err := config.Validate()
			if tt.expectErr && err == nil {
				t.Error("Expected validation error, got nil")
			}
			if !tt.expectErr && err != nil {
				t.Errorf("Unexpected validation error: %v", err)
			}
		})
	}
}

func TestDefaultFigureConfig(t *testing.T) {
	config := DefaultFigureConfig()

	if err := config.Validate(); err != nil {
		t.Errorf("Default figure config validation failed: %v", err)
	}

	config.MaxSideRatio = 1.2
	if err := config.Validate(); err == nil {
		t.Error("Expected validation error for side ratio above 1, got nil")
	}
}

func TestFillStyleString(t *testing.T) {
	if Outlined.String() != "white" {
		t.Errorf("Expected outlined fill to read white, got %s", Outlined.String())
	}
	if Filled.String() != "black" {
		t.Errorf("Expected filled fill to read black, got %s", Filled.String())
	}
}

func TestCaptureRegionConversion(t *testing.T) {
	region := CaptureRegion{
		X:      100,
		Y:      200,
		Width:  800,
		Height: 600,
	}

	rect := region.ToRectangle()

	if rect.Min.X != 100 || rect.Min.Y != 200 {
		t.Errorf("Rectangle min incorrect: got (%d,%d), want (100,200)",
			rect.Min.X, rect.Min.Y)
	}
	if rect.Max.X != 900 || rect.Max.Y != 800 {
		t.Errorf("Rectangle max incorrect: got (%d,%d), want (900,800)",
			rect.Max.X, rect.Max.Y)
	}
}

func TestCaptureRegionIsZero(t *testing.T) {
	if !(CaptureRegion{}).IsZero() {
		t.Error("Expected empty region to be zero")
	}
	if (CaptureRegion{Width: 10, Height: 10}).IsZero() {
		t.Error("Expected sized region not to be zero")
	}
}

func TestTiles(t *testing.T) {
	tests := []struct {
		name   string
		width  int
		height int
		rows   int
		cols   int
	}{
		{"3x2 grid", 1240, 1754, 3, 2},
		{"odd dimensions", 1241, 1753, 3, 2},
		{"single cell", 640, 480, 1, 1},
		{"4x3 grid", 900, 1200, 4, 3},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tiles := Tiles(tt.width, tt.height, tt.rows, tt.cols)

			if len(tiles) != tt.rows*tt.cols {
				t.Fatalf("Expected %d tiles, got %d", tt.rows*tt.cols, len(tiles))
			}

			// Column-major: the first tiles walk down the left column.
			for i := 1; i < tt.rows; i++ {
				if tiles[i].Min.X != tiles[0].Min.X {
					t.Errorf("Tile %d: expected left column x %d, got %d", i, tiles[0].Min.X, tiles[i].Min.X)
				}
				if tiles[i].Min.Y != tiles[i-1].Max.Y {
					t.Errorf("Tile %d: expected to start at previous tile's bottom %d, got %d",
						i, tiles[i-1].Max.Y, tiles[i].Min.Y)
				}
			}

			// Tiles cover the page exactly with no overlap.
			covered := 0
			for i, a := range tiles {
				covered += a.Dx() * a.Dy()
				for j, b := range tiles {
					if i != j && a.Overlaps(b) {
						t.Errorf("Tiles %d and %d overlap: %v %v", i, j, a, b)
					}
				}
			}
			if covered != tt.width*tt.height {
				t.Errorf("Expected tiles to cover %d px, got %d", tt.width*tt.height, covered)
			}

			// The last column and row absorb the remainder.
			last := tiles[len(tiles)-1]
			if last.Max.X != tt.width || last.Max.Y != tt.height {
				t.Errorf("Expected last tile to end at (%d,%d), got (%d,%d)",
					tt.width, tt.height, last.Max.X, last.Max.Y)
			}
		})
	}

	if tiles := Tiles(0, 100, 3, 2); tiles != nil {
		t.Errorf("Expected nil tiles for zero width, got %d", len(tiles))
	}
}

func TestSectionRects(t *testing.T) {
	cell := image.Rect(0, 0, 600, 900)

	strip := stripRect(cell, 0.35)
	if strip.Dy() != 315 {
		t.Errorf("Expected strip height 315, got %d", strip.Dy())
	}
	if strip.Min != cell.Min || strip.Max.X != cell.Max.X {
		t.Errorf("Expected strip to span the cell top, got %v", strip)
	}

	body := bodyRect(cell, 0.35, 20)
	if body.Min.Y != 315+20 {
		t.Errorf("Expected body top %d, got %d", 315+20, body.Min.Y)
	}
	if body.Min.X != 20 || body.Max.X != 580 || body.Max.Y != 880 {
		t.Errorf("Expected padded body, got %v", body)
	}

	// Oversized padding falls back to the uninset body.
	tiny := image.Rect(0, 0, 30, 60)
	if got := bodyRect(tiny, 0.35, 40); got.Empty() {
		t.Errorf("Expected non-empty body for oversized padding, got %v", got)
	}

	num := numberRect(strip, 0.25)
	if num.Dx() != 150 {
		t.Errorf("Expected number area width 150, got %d", num.Dx())
	}
	if num.Min != strip.Min || num.Max.Y != strip.Max.Y {
		t.Errorf("Expected number area at strip left, got %v", num)
	}
}

func TestSelectBubbles(t *testing.T) {
	mk := func(x, size int) bubbleCandidate {
		return bubbleCandidate{
			rect: image.Rect(x, 0, x+size, size),
			area: float64(size * size),
			circ: 0.8,
		}
	}

	t.Run("Left to right order", func(t *testing.T) {
		got := selectBubbles([]bubbleCandidate{mk(200, 20), mk(40, 20), mk(120, 20)}, 25, 0)
		if len(got) != 3 {
			t.Fatalf("Expected 3 bubbles, got %d", len(got))
		}
		for i := 1; i < len(got); i++ {
			if got[i].rect.Min.X < got[i-1].rect.Min.X {
				t.Errorf("Bubble %d out of order: %v before %v", i, got[i-1].rect, got[i].rect)
			}
		}
	})

	t.Run("Near duplicates merge", func(t *testing.T) {
		// Centers 50 and 60: within the 25 px dedupe distance.
		got := selectBubbles([]bubbleCandidate{mk(40, 20), mk(45, 30)}, 25, 0)
		if len(got) != 1 {
			t.Fatalf("Expected 1 bubble after merge, got %d", len(got))
		}
		if got[0].area != 900 {
			t.Errorf("Expected larger candidate to win, got area %.0f", got[0].area)
		}
	})

	t.Run("Cap keeps leftmost", func(t *testing.T) {
		got := selectBubbles([]bubbleCandidate{mk(300, 20), mk(10, 20), mk(150, 20)}, 25, 2)
		if len(got) != 2 {
			t.Fatalf("Expected 2 bubbles, got %d", len(got))
		}
		if got[0].rect.Min.X != 10 || got[1].rect.Min.X != 150 {
			t.Errorf("Expected leftmost two kept, got %v %v", got[0].rect, got[1].rect)
		}
	})

	t.Run("Empty input", func(t *testing.T) {
		if got := selectBubbles(nil, 25, 2); got != nil {
			t.Errorf("Expected nil for empty input, got %v", got)
		}
	})
}
