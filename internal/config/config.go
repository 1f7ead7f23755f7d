package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/thyrook/puzzlemine/internal/extract"
)

// Config represents the application configuration
type Config struct {
	AppName string `json:"app_name"`
	Version string `json:"version"`

	PDFPath   string `json:"pdf_path"`
	OutputDir string `json:"output_dir"`

	Extraction  ExtractionConfig  `json:"extraction"`
	Detection   DetectionConfig   `json:"detection"`
	Grid        GridConfig        `json:"grid"`
	Screen      ScreenConfig      `json:"screen"`
	Recognition RecognitionConfig `json:"recognition"`
	Storage     StorageConfig     `json:"storage"`
	Interface   InterfaceConfig   `json:"interface"`
}

// ExtractionConfig contains block stream and assembly settings
type ExtractionConfig struct {
	HeaderPattern     string `json:"header_pattern"`
	SolutionPattern   string `json:"solution_pattern"`
	Structure         string `json:"structure"`
	MaxSearchDistance int    `json:"max_search_distance"`
	StartPage         int    `json:"start_page"`
	EndPage           int    `json:"end_page"` // 0 = last page
	MaxDiagrams       int    `json:"max_diagrams"`
	RenderDPI         int    `json:"render_dpi"`
	SaveImages        bool   `json:"save_images"`
	SaveRejected      bool   `json:"save_rejected"`
}

// DetectionConfig contains chessboard classifier thresholds
type DetectionConfig struct {
	BlurKernel    int     `json:"blur_kernel"`
	CannyLow      float64 `json:"canny_low"`
	CannyHigh     float64 `json:"canny_high"`
	EpsilonRatio  float64 `json:"epsilon_ratio"`
	MinAspect     float64 `json:"min_aspect"`
	MaxAspect     float64 `json:"max_aspect"`
	MinSquareSize int     `json:"min_square_size"`
	MinSquares    int     `json:"min_squares"`
}

// GridConfig contains grid-layout book settings
type GridConfig struct {
	Rows            int     `json:"rows"`
	Columns         int     `json:"columns"`
	CellPadding     int     `json:"cell_padding"`
	BubbleAreaRatio float64 `json:"bubble_area_ratio"` // top strip share of cell height
	NumberAreaRatio float64 `json:"number_area_ratio"` // left strip share holding the printed number
	MinBubbleArea   float64 `json:"min_bubble_area"`
	MaxBubbleArea   float64 `json:"max_bubble_area"`
	MinCircularity  float64 `json:"min_circularity"`
	MaxBubbles      int     `json:"max_bubbles"`
	StartPage       int     `json:"start_page"`
	EndPage         int     `json:"end_page"`
	FirstPuzzlePage int     `json:"first_puzzle_page"` // 0 = start_page
	NumberBase      int     `json:"number_base"`       // added to every calculated number
	OCRLanguages    string  `json:"ocr_languages"`
	SaveSections    bool    `json:"save_sections"` // keep full-cell crops for tuning
}

// ScreenConfig contains the screen-capture page source settings. A zero
// width and height captures the whole display.
type ScreenConfig struct {
	Display      int     `json:"display"`
	X            int     `json:"x"`
	Y            int     `json:"y"`
	Width        int     `json:"width"`
	Height       int     `json:"height"`
	Pages        int     `json:"pages"`
	PageDelaySec float64 `json:"page_delay_sec"` // operator time to flip pages between grabs
}

// RecognitionConfig contains external position-recognition settings
type RecognitionConfig struct {
	Enabled     bool    `json:"enabled"`
	URL         string  `json:"url"`
	MinDelaySec float64 `json:"min_delay_sec"`
	MaxDelaySec float64 `json:"max_delay_sec"`
	TimeoutSec  float64 `json:"timeout_sec"`
}

// StorageConfig contains record store settings
type StorageConfig struct {
	DBPath string `json:"db_path"`
}

// InterfaceConfig contains logging settings
type InterfaceConfig struct {
	LogLevel string `json:"log_level"`
	LogPath  string `json:"log_path"`
}

// DefaultConfig returns the baseline configuration for a typical puzzle book
func DefaultConfig() *Config {
	return &Config{
		AppName:   "puzzlemine",
		Version:   "1.1.0",
		OutputDir: "output",
		Extraction: ExtractionConfig{
			Structure:         string(extract.StructureHeaderImageSolution),
			MaxSearchDistance: 10,
			StartPage:         1,
			EndPage:           0,
			MaxDiagrams:       0,
			RenderDPI:         144,
			SaveImages:        true,
			SaveRejected:      false,
		},
		Detection: DetectionConfig{
			BlurKernel:    5,
			CannyLow:      10,
			CannyHigh:     50,
			EpsilonRatio:  0.03,
			MinAspect:     0.4,
			MaxAspect:     1.8,
			MinSquareSize: 5,
			MinSquares:    4,
		},
		Grid: GridConfig{
			Rows:            3,
			Columns:         2,
			CellPadding:     20,
			BubbleAreaRatio: 0.35,
			NumberAreaRatio: 0.25,
			MinBubbleArea:   30,
			MaxBubbleArea:   500,
			MinCircularity:  0.2,
			MaxBubbles:      2,
			StartPage:       1,
			EndPage:         0,
			FirstPuzzlePage: 0,
			NumberBase:      0,
			OCRLanguages:    "eng",
			SaveSections:    false,
		},
		Screen: ScreenConfig{
			Display:      0,
			Pages:        1,
			PageDelaySec: 3,
		},
		Recognition: RecognitionConfig{
			Enabled:     true,
			URL:         "http://app.chessvision.ai/predict",
			MinDelaySec: 1,
			MaxDelaySec: 5,
			TimeoutSec:  10,
		},
		Storage: StorageConfig{
			DBPath: "data/puzzlemine.db",
		},
		Interface: InterfaceConfig{
			LogLevel: "info",
			LogPath:  "logs/puzzlemine.log",
		},
	}
}

// Load reads and parses the configuration file, overlaying it on defaults
// so omitted keys keep their default values
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	cfg := DefaultConfig()
	if err := json.Unmarshal(data, cfg); err != nil {
		return nil, err
	}

	return cfg, nil
}

// LoadOrDefault loads the configuration file, falling back to defaults when
// the file is missing or unreadable
func LoadOrDefault(path string) *Config {
	cfg, err := Load(path)
	if err != nil {
		return DefaultConfig()
	}
	return cfg
}

// Save writes the configuration to a file
func (c *Config) Save(path string) error {
	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return err
	}

	return os.WriteFile(path, data, 0644)
}

// Validate checks the configuration before a run starts. Any error here is
// fatal: a bad pattern or grid shape cannot be recovered per item.
func (c *Config) Validate() error {
	if _, err := extract.CompilePatterns(c.Extraction.HeaderPattern, c.Extraction.SolutionPattern); err != nil {
		return err
	}
	if _, err := extract.ParseStructure(c.Extraction.Structure); err != nil {
		return err
	}
	if c.Extraction.MaxSearchDistance < 1 {
		return fmt.Errorf("max_search_distance must be at least 1, got %d", c.Extraction.MaxSearchDistance)
	}
	if c.Extraction.MaxDiagrams < 0 {
		return fmt.Errorf("max_diagrams must not be negative, got %d", c.Extraction.MaxDiagrams)
	}
	if c.Extraction.RenderDPI < 36 || c.Extraction.RenderDPI > 600 {
		return fmt.Errorf("render_dpi must be within 36..600, got %d", c.Extraction.RenderDPI)
	}
	if err := validatePageRange(c.Extraction.StartPage, c.Extraction.EndPage); err != nil {
		return fmt.Errorf("extraction: %w", err)
	}

	if c.Detection.BlurKernel < 1 || c.Detection.BlurKernel%2 == 0 {
		return fmt.Errorf("blur_kernel must be odd and positive, got %d", c.Detection.BlurKernel)
	}
	if c.Detection.MinSquares < 1 {
		return fmt.Errorf("min_squares must be at least 1, got %d", c.Detection.MinSquares)
	}
	if c.Detection.MinAspect <= 0 || c.Detection.MaxAspect <= c.Detection.MinAspect {
		return fmt.Errorf("aspect band %f..%f is empty", c.Detection.MinAspect, c.Detection.MaxAspect)
	}
	if c.Detection.CannyLow <= 0 || c.Detection.CannyHigh <= c.Detection.CannyLow {
		return fmt.Errorf("canny thresholds %f..%f are out of order", c.Detection.CannyLow, c.Detection.CannyHigh)
	}

	if c.Grid.Rows < 1 || c.Grid.Columns < 1 {
		return fmt.Errorf("grid must have at least one row and column, got %dx%d", c.Grid.Rows, c.Grid.Columns)
	}
	if c.Grid.BubbleAreaRatio <= 0 || c.Grid.BubbleAreaRatio >= 1 {
		return fmt.Errorf("bubble_area_ratio must be within (0, 1), got %f", c.Grid.BubbleAreaRatio)
	}
	if c.Grid.NumberAreaRatio < 0 || c.Grid.NumberAreaRatio >= 1 {
		return fmt.Errorf("number_area_ratio must be within [0, 1), got %f", c.Grid.NumberAreaRatio)
	}
	if c.Grid.MinBubbleArea <= 0 || c.Grid.MaxBubbleArea <= c.Grid.MinBubbleArea {
		return fmt.Errorf("bubble area band [%f, %f] is empty", c.Grid.MinBubbleArea, c.Grid.MaxBubbleArea)
	}
	if c.Grid.MinCircularity <= 0 || c.Grid.MinCircularity >= 1 {
		return fmt.Errorf("min_circularity must be within (0, 1), got %f", c.Grid.MinCircularity)
	}
	if c.Grid.MaxBubbles < 0 {
		return fmt.Errorf("max_bubbles must not be negative, got %d", c.Grid.MaxBubbles)
	}
	if err := validatePageRange(c.Grid.StartPage, c.Grid.EndPage); err != nil {
		return fmt.Errorf("grid: %w", err)
	}
	if c.Grid.FirstPuzzlePage < 0 {
		return fmt.Errorf("first_puzzle_page must not be negative, got %d", c.Grid.FirstPuzzlePage)
	}

	if c.Screen.Pages < 1 {
		return fmt.Errorf("screen pages must be at least 1, got %d", c.Screen.Pages)
	}
	if c.Screen.PageDelaySec < 0 {
		return fmt.Errorf("screen page_delay_sec must not be negative, got %f", c.Screen.PageDelaySec)
	}
	if c.Screen.Width < 0 || c.Screen.Height < 0 {
		return fmt.Errorf("screen region %dx%d is invalid", c.Screen.Width, c.Screen.Height)
	}

	if c.Recognition.MinDelaySec < 0 || c.Recognition.MaxDelaySec < c.Recognition.MinDelaySec {
		return fmt.Errorf("recognition delay interval [%f, %f] is invalid",
			c.Recognition.MinDelaySec, c.Recognition.MaxDelaySec)
	}
	if c.Recognition.TimeoutSec <= 0 {
		return fmt.Errorf("recognition timeout must be positive, got %f", c.Recognition.TimeoutSec)
	}

	return nil
}

func validatePageRange(start, end int) error {
	if start < 1 {
		return fmt.Errorf("start_page must be at least 1, got %d", start)
	}
	if end != 0 && end < start {
		return fmt.Errorf("end_page %d precedes start_page %d", end, start)
	}
	return nil
}

// EnsureDirectories creates the output, image, data and log directories
func (c *Config) EnsureDirectories() error {
	dirs := []string{
		c.OutputDir,
		c.ImagesDir(),
		c.RenderDir(),
		c.RejectedDir(),
		c.SectionsDir(),
		filepath.Dir(c.Storage.DBPath),
		filepath.Dir(c.Interface.LogPath),
	}
	for _, dir := range dirs {
		if dir == "" || dir == "." {
			continue
		}
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("create %s: %w", dir, err)
		}
	}
	return nil
}

// DiagramsCSV is the book-flow output table path
func (c *Config) DiagramsCSV() string { return filepath.Join(c.OutputDir, "diagrams.csv") }

// GridCSV is the grid-flow output table path
func (c *Config) GridCSV() string { return filepath.Join(c.OutputDir, "grid_sections.csv") }

// ImagesDir holds accepted diagram crops
func (c *Config) ImagesDir() string { return filepath.Join(c.OutputDir, "images") }

// RenderDir holds working artifacts: rendered pages and raw figure crops
func (c *Config) RenderDir() string { return filepath.Join(c.OutputDir, "render") }

// RejectedDir holds crops that failed chessboard validation
func (c *Config) RejectedDir() string { return filepath.Join(c.ImagesDir(), "rejected") }

// SectionsDir holds per-cell grid crops
func (c *Config) SectionsDir() string { return filepath.Join(c.ImagesDir(), "sections") }
