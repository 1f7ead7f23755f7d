package engine

import (
	"image"
	"testing"
	"time"

	"github.com/thyrook/puzzlemine/internal/config"
	"github.com/thyrook/puzzlemine/internal/vision"
)

// TestDetectorSettings carries every detection threshold over to the
// vision package.
func TestDetectorSettings(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.Detection.BlurKernel = 7
	cfg.Detection.CannyLow = 20
	cfg.Detection.CannyHigh = 80
	cfg.Detection.MinSquares = 9

	dc := DetectorSettings(cfg)
	if dc.BlurKernel != 7 {
		t.Errorf("Expected blur kernel 7, got %d", dc.BlurKernel)
	}
	if dc.CannyLow != 20 || dc.CannyHigh != 80 {
		t.Errorf("Expected canny [20, 80], got [%.0f, %.0f]", dc.CannyLow, dc.CannyHigh)
	}
	if dc.MinSquares != 9 {
		t.Errorf("Expected 9 minimum squares, got %d", dc.MinSquares)
	}
	if err := dc.Validate(); err != nil {
		t.Errorf("Expected mapped settings to validate, got %v", err)
	}
}

// TestGridSettings overrides the configurable knobs and keeps the
// non-configurable bubble bands at their defaults.
func TestGridSettings(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.Grid.Rows = 4
	cfg.Grid.Columns = 3
	cfg.Grid.NumberAreaRatio = 0.3
	cfg.Grid.MinBubbleArea = 50

	gc := GridSettings(cfg)
	if gc.Rows != 4 || gc.Columns != 3 {
		t.Errorf("Expected a 4x3 grid, got %dx%d", gc.Rows, gc.Columns)
	}
	if gc.NumberAreaRatio != 0.3 {
		t.Errorf("Expected number area ratio 0.3, got %f", gc.NumberAreaRatio)
	}
	if gc.MinBubbleArea != 50 {
		t.Errorf("Expected minimum bubble area 50, got %f", gc.MinBubbleArea)
	}

	def := vision.DefaultGridConfig()
	if gc.MinBubbleAspect != def.MinBubbleAspect || gc.DedupeDistance != def.DedupeDistance {
		t.Error("Expected non-configurable bands to keep their defaults")
	}
	if err := gc.Validate(); err != nil {
		t.Errorf("Expected mapped settings to validate, got %v", err)
	}
}

// TestRecognitionSettings converts second-based knobs to durations and
// falls back to endpoint defaults for zero values.
func TestRecognitionSettings(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.Recognition.Enabled = true
	cfg.Recognition.URL = ""
	cfg.Recognition.MinDelaySec = 0
	cfg.Recognition.MaxDelaySec = 0
	cfg.Recognition.TimeoutSec = 0

	rc := RecognitionSettings(cfg)
	if !rc.Enabled {
		t.Error("Expected recognition enabled")
	}
	if rc.URL == "" {
		t.Error("Expected the default endpoint for an empty URL")
	}
	if rc.MinDelay <= 0 || rc.MaxDelay < rc.MinDelay || rc.Timeout <= 0 {
		t.Errorf("Expected default pacing for zero values, got %+v", rc)
	}

	cfg.Recognition.URL = "http://localhost:9000/predict"
	cfg.Recognition.MinDelaySec = 0.5
	cfg.Recognition.MaxDelaySec = 1.5
	cfg.Recognition.TimeoutSec = 30

	rc = RecognitionSettings(cfg)
	if rc.URL != "http://localhost:9000/predict" {
		t.Errorf("Expected the configured URL, got %s", rc.URL)
	}
	if rc.MinDelay != 500*time.Millisecond {
		t.Errorf("Expected 500ms minimum delay, got %v", rc.MinDelay)
	}
	if rc.MaxDelay != 1500*time.Millisecond {
		t.Errorf("Expected 1.5s maximum delay, got %v", rc.MaxDelay)
	}
	if rc.Timeout != 30*time.Second {
		t.Errorf("Expected 30s timeout, got %v", rc.Timeout)
	}
}

// TestScreenRegion maps the capture settings to a region, zero for
// whole-display capture.
func TestScreenRegion(t *testing.T) {
	cfg := config.DefaultConfig()
	if r := ScreenRegion(cfg); !r.IsZero() {
		t.Errorf("Expected a zero region by default, got %+v", r)
	}

	cfg.Screen.X = 100
	cfg.Screen.Y = 50
	cfg.Screen.Width = 800
	cfg.Screen.Height = 600
	r := ScreenRegion(cfg)
	if r.IsZero() {
		t.Fatal("Expected a configured region")
	}
	if r.ToRectangle() != image.Rect(100, 50, 900, 650) {
		t.Errorf("Expected (100,50)-(900,650), got %v", r.ToRectangle())
	}

	cfg.Screen.PageDelaySec = 2.5
	if d := ScreenDelay(cfg); d != 2500*time.Millisecond {
		t.Errorf("Expected 2.5s page delay, got %v", d)
	}
}
