package logger

import (
	"bufio"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"
)

var (
	// Default logger instance
	defaultLogger *slog.Logger
)

// Level represents log level
type Level string

const (
	LevelDebug Level = "debug"
	LevelInfo  Level = "info"
	LevelWarn  Level = "warn"
	LevelError Level = "error"
)

// Setup initializes the logger with the specified configuration
func Setup(level Level, logPath string) error {
	// Parse log level
	var slogLevel slog.Level
	switch level {
	case LevelDebug:
		slogLevel = slog.LevelDebug
	case LevelInfo:
		slogLevel = slog.LevelInfo
	case LevelWarn:
		slogLevel = slog.LevelWarn
	case LevelError:
		slogLevel = slog.LevelError
	default:
		slogLevel = slog.LevelInfo
	}

	// Create log directory if it doesn't exist
	if logPath != "" {
		dir := filepath.Dir(logPath)
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create log directory: %w", err)
		}
	}

	var writers []io.Writer
	writers = append(writers, os.Stdout)

	// Add file writer if log path is specified
	if logPath != "" {
		file, err := os.OpenFile(logPath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
		if err != nil {
			return fmt.Errorf("failed to open log file: %w", err)
		}
		writers = append(writers, file)
	}

	// Create multi-writer
	multiWriter := io.MultiWriter(writers...)

	// Create handler with options
	opts := &slog.HandlerOptions{
		Level:     slogLevel,
		AddSource: false,
	}

	handler := slog.NewTextHandler(multiWriter, opts)
	defaultLogger = slog.New(handler)

	return nil
}

// Get returns the default logger instance
func Get() *slog.Logger {
	if defaultLogger == nil {
		// Initialize with default settings if not set up
		Setup(LevelInfo, "")
	}
	return defaultLogger
}

// Debug logs a debug message
func Debug(msg string, args ...any) {
	Get().Debug(msg, args...)
}

// Info logs an info message
func Info(msg string, args ...any) {
	Get().Info(msg, args...)
}

// Warn logs a warning message
func Warn(msg string, args ...any) {
	Get().Warn(msg, args...)
}

// Error logs an error message
func Error(msg string, args ...any) {
	Get().Error(msg, args...)
}

// With returns a logger with additional attributes
func With(args ...any) *slog.Logger {
	return Get().With(args...)
}

// WithGroup returns a logger with a group name
func WithGroup(name string) *slog.Logger {
	return Get().WithGroup(name)
}

// LogEvent logs a structured event
func LogEvent(event string, attrs map[string]any) {
	args := make([]any, 0, len(attrs)*2)
	for k, v := range attrs {
		args = append(args, k, v)
	}
	Get().Info(event, args...)
}

// LogPerformance logs performance metrics
func LogPerformance(operation string, duration float64, success bool) {
	Get().Info("performance",
		"operation", operation,
		"duration_ms", duration,
		"success", success,
	)
}

// LogError logs an error with context
func LogError(err error, context map[string]any) {
	args := make([]any, 0, len(context)*2+2)
	args = append(args, "error", err.Error())
	for k, v := range context {
		args = append(args, k, v)
	}
	Get().Error("error occurred", args...)
}

// ===== EXTRACTION LOGGING HELPERS =====

// PageMetrics holds per-page processing metrics
type PageMetrics struct {
	Page        int
	TextBlocks  int
	ImageBlocks int
	RenderMs    float64
}

// LogPage logs one processed page
func LogPage(metrics PageMetrics) {
	Get().Info("page_processed",
		"page", metrics.Page,
		"text_blocks", metrics.TextBlocks,
		"image_blocks", metrics.ImageBlocks,
		"render_ms", fmt.Sprintf("%.1f", metrics.RenderMs),
	)
}

// DetectionMetrics holds chessboard classification metrics
type DetectionMetrics struct {
	Image     string
	Squares   int
	Accepted  bool
	LatencyMs float64
}

// LogDetection logs one chessboard classification
func LogDetection(metrics DetectionMetrics) {
	Get().Debug("board_detection",
		"image", metrics.Image,
		"squares", metrics.Squares,
		"accepted", metrics.Accepted,
		"latency_ms", fmt.Sprintf("%.2f", metrics.LatencyMs),
	)
}

// RecognitionMetrics holds external recognition call metrics
type RecognitionMetrics struct {
	Image     string
	FEN       string
	Turn      string
	LatencyMs float64
	DelayMs   float64
	Success   bool
}

// LogRecognition logs one recognition service call
func LogRecognition(metrics RecognitionMetrics) {
	Get().Info("position_recognition",
		"image", metrics.Image,
		"fen", metrics.FEN,
		"turn", metrics.Turn,
		"latency_ms", fmt.Sprintf("%.1f", metrics.LatencyMs),
		"delay_ms", fmt.Sprintf("%.1f", metrics.DelayMs),
		"success", metrics.Success,
	)
}

// SectionMetrics holds grid section analysis metrics
type SectionMetrics struct {
	Page        int
	Section     int
	Bubbles     int
	Digits      string
	Chessboard  bool
	DiagramNum  int
	TimeElapsed float64
}

// LogSection logs one analyzed grid section
func LogSection(metrics SectionMetrics) {
	Get().Info("grid_section",
		"page", metrics.Page,
		"section", metrics.Section,
		"bubbles", metrics.Bubbles,
		"digits", metrics.Digits,
		"chessboard", metrics.Chessboard,
		"diagram", metrics.DiagramNum,
		"time", fmt.Sprintf("%.2fs", metrics.TimeElapsed),
	)
}

// StartOperation logs the start of an operation (returns cleanup function)
func StartOperation(operation string, attrs map[string]any) func(error) {
	startTime := time.Now()

	logArgs := make([]any, 0, len(attrs)*2+2)
	logArgs = append(logArgs, "operation", operation)
	for k, v := range attrs {
		logArgs = append(logArgs, k, v)
	}
	Get().Info("operation_start", logArgs...)

	// Return cleanup function
	return func(err error) {
		duration := time.Since(startTime)
		success := err == nil

		endArgs := make([]any, 0, len(attrs)*2+6)
		endArgs = append(endArgs, "operation", operation)
		endArgs = append(endArgs, "duration_ms", duration.Milliseconds())
		endArgs = append(endArgs, "success", success)
		if err != nil {
			endArgs = append(endArgs, "error", err.Error())
		}
		for k, v := range attrs {
			endArgs = append(endArgs, k, v)
		}

		if success {
			Get().Info("operation_complete", endArgs...)
		} else {
			Get().Error("operation_failed", endArgs...)
		}
	}
}

// LogSummary represents aggregated log statistics
type LogSummary struct {
	TotalEntries int
	ErrorCount   int
	WarningCount int
	InfoCount    int
	DebugCount   int
	AvgLatencyMs float64
	ErrorRate    float64
	TopErrors    map[string]int
}

// AnalyzeLogs provides summary statistics by parsing log files
func AnalyzeLogs(logFilePath string) (*LogSummary, error) {
	file, err := os.Open(logFilePath)
	if err != nil {
		return nil, fmt.Errorf("failed to open log file: %w", err)
	}
	defer file.Close()

	summary := &LogSummary{
		TopErrors: make(map[string]int),
	}

	var totalLatency float64
	var latencyCount int

	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		line := scanner.Text()
		summary.TotalEntries++

		// Count log levels
		if strings.Contains(line, "level=ERROR") {
			summary.ErrorCount++
			// Extract error messages
			if idx := strings.Index(line, "error="); idx != -1 {
				errorMsg := extractQuotedValue(line[idx:])
				if errorMsg != "" {
					summary.TopErrors[errorMsg]++
				}
			}
		} else if strings.Contains(line, "level=WARN") {
			summary.WarningCount++
		} else if strings.Contains(line, "level=INFO") {
			summary.InfoCount++
		} else if strings.Contains(line, "level=DEBUG") {
			summary.DebugCount++
		}

		// Extract latency metrics
		if idx := strings.Index(line, "duration_ms="); idx != -1 {
			latencyStr := extractNumericValue(line[idx+12:])
			if latency, err := strconv.ParseFloat(latencyStr, 64); err == nil {
				totalLatency += latency
				latencyCount++
			}
		}
	}

	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("error reading log file: %w", err)
	}

	// Calculate averages and rates
	if latencyCount > 0 {
		summary.AvgLatencyMs = totalLatency / float64(latencyCount)
	}
	if summary.TotalEntries > 0 {
		summary.ErrorRate = float64(summary.ErrorCount) / float64(summary.TotalEntries) * 100
	}

	return summary, nil
}

// extractQuotedValue extracts a value between quotes or until a space
func extractQuotedValue(s string) string {
	if idx := strings.Index(s, "\""); idx != -1 {
		s = s[idx+1:]
		if endIdx := strings.Index(s, "\""); endIdx != -1 {
			return s[:endIdx]
		}
	}
	// Fallback: extract until space
	if idx := strings.Index(s, " "); idx != -1 {
		return s[:idx]
	}
	return s
}

// extractNumericValue extracts numeric value until first non-numeric character
func extractNumericValue(s string) string {
	var result strings.Builder
	for _, ch := range s {
		if (ch >= '0' && ch <= '9') || ch == '.' || ch == '-' {
			result.WriteRune(ch)
		} else {
			break
		}
	}
	return result.String()
}
