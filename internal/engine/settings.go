package engine

import (
	"time"

	"github.com/thyrook/puzzlemine/internal/config"
	"github.com/thyrook/puzzlemine/internal/recognition"
	"github.com/thyrook/puzzlemine/internal/vision"
)

// DetectorSettings maps the detection section of the application config
// onto the vision package's thresholds.
func DetectorSettings(cfg *config.Config) vision.DetectorConfig {
	return vision.DetectorConfig{
		BlurKernel:    cfg.Detection.BlurKernel,
		CannyLow:      float32(cfg.Detection.CannyLow),
		CannyHigh:     float32(cfg.Detection.CannyHigh),
		EpsilonRatio:  cfg.Detection.EpsilonRatio,
		MinAspect:     cfg.Detection.MinAspect,
		MaxAspect:     cfg.Detection.MaxAspect,
		MinSquareSize: cfg.Detection.MinSquareSize,
		MinSquares:    cfg.Detection.MinSquares,
	}
}

// GridSettings maps the grid section of the application config onto the
// vision package's analyzer settings. Bubble aspect and dedupe bands are
// not configurable and keep their defaults.
func GridSettings(cfg *config.Config) vision.GridConfig {
	gc := vision.DefaultGridConfig()
	gc.Rows = cfg.Grid.Rows
	gc.Columns = cfg.Grid.Columns
	gc.CellPadding = cfg.Grid.CellPadding
	gc.BubbleAreaRatio = cfg.Grid.BubbleAreaRatio
	gc.NumberAreaRatio = cfg.Grid.NumberAreaRatio
	gc.MinBubbleArea = cfg.Grid.MinBubbleArea
	gc.MaxBubbleArea = cfg.Grid.MaxBubbleArea
	gc.MinCircularity = cfg.Grid.MinCircularity
	gc.MaxBubbles = cfg.Grid.MaxBubbles
	return gc
}

// RecognitionSettings maps the recognition section of the application
// config onto the client settings. Zero values fall back to the public
// endpoint defaults so a minimal config block still works.
func RecognitionSettings(cfg *config.Config) recognition.Config {
	rc := recognition.DefaultConfig()
	rc.Enabled = cfg.Recognition.Enabled
	if cfg.Recognition.URL != "" {
		rc.URL = cfg.Recognition.URL
	}
	if cfg.Recognition.MinDelaySec > 0 {
		rc.MinDelay = time.Duration(cfg.Recognition.MinDelaySec * float64(time.Second))
	}
	if cfg.Recognition.MaxDelaySec > 0 {
		rc.MaxDelay = time.Duration(cfg.Recognition.MaxDelaySec * float64(time.Second))
	}
	if cfg.Recognition.TimeoutSec > 0 {
		rc.Timeout = time.Duration(cfg.Recognition.TimeoutSec * float64(time.Second))
	}
	return rc
}

// ScreenRegion converts the screen section into a capture region. A
// zero region means the whole display.
func ScreenRegion(cfg *config.Config) vision.CaptureRegion {
	s := cfg.Screen
	return vision.CaptureRegion{X: s.X, Y: s.Y, Width: s.Width, Height: s.Height}
}

// ScreenDelay returns the page-flip pause between captures.
func ScreenDelay(cfg *config.Config) time.Duration {
	return time.Duration(cfg.Screen.PageDelaySec * float64(time.Second))
}
