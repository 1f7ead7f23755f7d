package logger

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestSetupWritesAllLevels(t *testing.T) {
	logPath := filepath.Join(t.TempDir(), "all.log")
	if err := Setup(LevelDebug, logPath); err != nil {
		t.Fatalf("Failed to set up logger: %v", err)
	}

	Debug("debug entry")
	Info("info entry")
	Warn("warn entry")
	Error("error entry")

	data, err := os.ReadFile(logPath)
	if err != nil {
		t.Fatalf("Failed to read log file: %v", err)
	}
	content := string(data)

	for _, marker := range []string{"level=DEBUG", "level=INFO", "level=WARN", "level=ERROR"} {
		if !strings.Contains(content, marker) {
			t.Errorf("Expected %s in log output", marker)
		}
	}
}

func TestSetupFiltersBelowLevel(t *testing.T) {
	logPath := filepath.Join(t.TempDir(), "filtered.log")
	if err := Setup(LevelWarn, logPath); err != nil {
		t.Fatalf("Failed to set up logger: %v", err)
	}

	Debug("hidden")
	Info("hidden")
	Warn("visible")

	data, err := os.ReadFile(logPath)
	if err != nil {
		t.Fatalf("Failed to read log file: %v", err)
	}
	content := string(data)

	if strings.Contains(content, "hidden") {
		t.Error("Expected entries below warn level to be dropped")
	}
	if !strings.Contains(content, "visible") {
		t.Error("Expected warn entry in log output")
	}
}

func TestExtractionHelpers(t *testing.T) {
	logPath := filepath.Join(t.TempDir(), "helpers.log")
	if err := Setup(LevelDebug, logPath); err != nil {
		t.Fatalf("Failed to set up logger: %v", err)
	}

	LogPage(PageMetrics{Page: 14, TextBlocks: 9, ImageBlocks: 2, RenderMs: 120.5})
	LogDetection(DetectionMetrics{Image: "p14_fig0.png", Squares: 18, Accepted: true, LatencyMs: 4.2})
	LogRecognition(RecognitionMetrics{Image: "p14_fig0.png", FEN: "8/8/8/8/8/8/8/8", Turn: "white", Success: true})
	LogSection(SectionMetrics{Page: 14, Section: 3, Bubbles: 2, Digits: "5 outlined", Chessboard: true, DiagramNum: 27})
	LogEvent("custom_event", map[string]any{"key": "value"})

	data, err := os.ReadFile(logPath)
	if err != nil {
		t.Fatalf("Failed to read log file: %v", err)
	}
	content := string(data)

	tests := []struct {
		name   string
		marker string
	}{
		{"page", "page_processed"},
		{"detection", "board_detection"},
		{"recognition", "position_recognition"},
		{"section", "grid_section"},
		{"event", "custom_event"},
		{"page number", "page=14"},
		{"squares", "squares=18"},
		{"diagram number", "diagram=27"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if !strings.Contains(content, tt.marker) {
				t.Errorf("Expected %q in log output", tt.marker)
			}
		})
	}
}

func TestStartOperation(t *testing.T) {
	logPath := filepath.Join(t.TempDir(), "ops.log")
	if err := Setup(LevelInfo, logPath); err != nil {
		t.Fatalf("Failed to set up logger: %v", err)
	}

	done := StartOperation("render_page", map[string]any{"page": 3})
	done(nil)

	failed := StartOperation("render_page", map[string]any{"page": 4})
	failed(errors.New("pdftoppm exited"))

	data, err := os.ReadFile(logPath)
	if err != nil {
		t.Fatalf("Failed to read log file: %v", err)
	}
	content := string(data)

	if !strings.Contains(content, "operation_start") {
		t.Error("Expected operation_start entry")
	}
	if !strings.Contains(content, "operation_complete") {
		t.Error("Expected operation_complete entry")
	}
	if !strings.Contains(content, "operation_failed") {
		t.Error("Expected operation_failed entry")
	}
	if !strings.Contains(content, "pdftoppm exited") {
		t.Error("Expected the failure reason in log output")
	}
}

func TestAnalyzeLogs(t *testing.T) {
	logPath := filepath.Join(t.TempDir(), "analyze.log")
	if err := Setup(LevelDebug, logPath); err != nil {
		t.Fatalf("Failed to set up logger: %v", err)
	}

	Info("run started")
	Warn("page skipped")
	LogError(errors.New("recognition timed out"), map[string]any{"page": 7})
	LogError(errors.New("recognition timed out"), map[string]any{"page": 9})
	LogPerformance("render_page", 12.5, true)
	LogPerformance("render_page", 7.5, true)

	summary, err := AnalyzeLogs(logPath)
	if err != nil {
		t.Fatalf("Failed to analyze logs: %v", err)
	}

	if summary.TotalEntries < 6 {
		t.Errorf("Expected at least 6 entries, got %d", summary.TotalEntries)
	}
	if summary.ErrorCount != 2 {
		t.Errorf("Expected 2 errors, got %d", summary.ErrorCount)
	}
	if summary.WarningCount != 1 {
		t.Errorf("Expected 1 warning, got %d", summary.WarningCount)
	}
	if summary.AvgLatencyMs != 10.0 {
		t.Errorf("Expected average latency 10.0, got %f", summary.AvgLatencyMs)
	}
	if summary.ErrorRate <= 0 {
		t.Errorf("Expected positive error rate, got %f", summary.ErrorRate)
	}
	if summary.TopErrors["recognition timed out"] != 2 {
		t.Errorf("Expected the repeated error to be counted twice, got %v", summary.TopErrors)
	}
}

func TestAnalyzeLogsMissingFile(t *testing.T) {
	if _, err := AnalyzeLogs(filepath.Join(t.TempDir(), "nope.log")); err == nil {
		t.Error("Expected error for missing log file")
	}
}
