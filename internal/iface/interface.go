package iface

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/thyrook/puzzlemine/internal/engine"
)

// Logger wraps zap logger for structured logging
type Logger struct {
	zap *zap.Logger
	mu  sync.Mutex
}

// NewLogger creates a new logger instance
func NewLogger(logPath string, level string) (*Logger, error) {
	if dir := filepath.Dir(logPath); dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("failed to create log directory: %w", err)
		}
	}

	// Parse log level
	var zapLevel zapcore.Level
	switch level {
	case "debug":
		zapLevel = zapcore.DebugLevel
	case "info":
		zapLevel = zapcore.InfoLevel
	case "warn":
		zapLevel = zapcore.WarnLevel
	case "error":
		zapLevel = zapcore.ErrorLevel
	default:
		zapLevel = zapcore.InfoLevel
	}

	// Configure encoder
	encoderConfig := zapcore.EncoderConfig{
		TimeKey:        "time",
		LevelKey:       "level",
		NameKey:        "logger",
		CallerKey:      "caller",
		MessageKey:     "msg",
		StacktraceKey:  "stacktrace",
		LineEnding:     zapcore.DefaultLineEnding,
		EncodeLevel:    zapcore.CapitalLevelEncoder,
		EncodeTime:     zapcore.ISO8601TimeEncoder,
		EncodeDuration: zapcore.StringDurationEncoder,
		EncodeCaller:   zapcore.ShortCallerEncoder,
	}

	// Create file writer
	logFile, err := os.OpenFile(logPath, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		return nil, fmt.Errorf("failed to open log file: %w", err)
	}

	// Create multi-writer (console + file)
	multiWriter := io.MultiWriter(os.Stdout, logFile)

	core := zapcore.NewCore(
		zapcore.NewConsoleEncoder(encoderConfig),
		zapcore.AddSync(multiWriter),
		zapLevel,
	)

	logger := zap.New(core, zap.AddCaller())

	return &Logger{
		zap: logger,
	}, nil
}

// Info logs an info message
func (l *Logger) Info(msg string, fields ...zap.Field) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.zap.Info(msg, fields...)
}

// Error logs an error message
func (l *Logger) Error(msg string, fields ...zap.Field) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.zap.Error(msg, fields...)
}

// Warn logs a warning message
func (l *Logger) Warn(msg string, fields ...zap.Field) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.zap.Warn(msg, fields...)
}

// Debug logs a debug message
func (l *Logger) Debug(msg string, fields ...zap.Field) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.zap.Debug(msg, fields...)
}

// Sync flushes buffered logs
func (l *Logger) Sync() error {
	return l.zap.Sync()
}

// GetZapLogger returns the underlying zap logger
func (l *Logger) GetZapLogger() *zap.Logger {
	return l.zap
}

// CLI handles command-line interface output
type CLI struct {
	logger *Logger
	mu     sync.Mutex
}

// NewCLI creates a new CLI instance
func NewCLI(logger *Logger) *CLI {
	return &CLI{
		logger: logger,
	}
}

// PrintWelcome displays the welcome message
func (c *CLI) PrintWelcome() {
	fmt.Println(strings.Repeat("=", 60))
	fmt.Println("  PuzzleMine - Chess Puzzle Diagram Extraction")
	fmt.Println(strings.Repeat("=", 60))
	fmt.Println()
}

// PrintStatus displays current pipeline status
func (c *CLI) PrintStatus(status string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	timestamp := time.Now().Format("15:04:05")
	fmt.Printf("[%s] %s\n", timestamp, status)
}

// PrintError displays an error message
func (c *CLI) PrintError(err error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	fmt.Printf("Error: %v\n", err)
	c.logger.Error("Error occurred", zap.Error(err))
}

// PrintBookSummary displays the end-of-run summary of a book extraction
func (c *CLI) PrintBookSummary(stats engine.BookStats) {
	c.mu.Lock()
	defer c.mu.Unlock()

	fmt.Println("\n" + strings.Repeat("═", 50))
	fmt.Println("  EXTRACTION SUMMARY")
	fmt.Println(strings.Repeat("═", 50))
	fmt.Printf("Pages Processed:      %d\n", stats.PagesProcessed)
	fmt.Printf("Blocks Streamed:      %d\n", stats.Blocks)
	fmt.Printf("Diagrams Assembled:   %d\n", stats.Emitted)
	fmt.Printf("  Partial Records:    %d\n", stats.Partial)
	fmt.Printf("  Duplicate Headers:  %d\n", stats.DuplicateHeaders)
	fmt.Printf("  Noise Images:       %d\n", stats.NoiseDropped)
	fmt.Printf("Images Rejected:      %d\n", stats.RejectedImages)
	fmt.Printf("Validator Errors:     %d\n", stats.CheckErrors)
	fmt.Printf("Positions Recognized: %d\n", stats.Recognized)
	fmt.Printf("Recognition Failures: %d\n", stats.RecognitionFailures)
	fmt.Printf("Elapsed:              %v\n", stats.Duration.Round(time.Second))
	fmt.Println(strings.Repeat("═", 50) + "\n")

	c.logger.Info("Run completed",
		zap.Int("pages", stats.PagesProcessed),
		zap.Int("diagrams", stats.Emitted),
		zap.Int("recognition_failures", stats.RecognitionFailures),
	)
}

// PrintGridSummary displays the end-of-run summary of a grid extraction
func (c *CLI) PrintGridSummary(stats engine.GridStats) {
	c.mu.Lock()
	defer c.mu.Unlock()

	fmt.Println("\n" + strings.Repeat("═", 50))
	fmt.Println("  GRID EXTRACTION SUMMARY")
	fmt.Println(strings.Repeat("═", 50))
	fmt.Printf("Pages Processed:      %d\n", stats.PagesProcessed)
	fmt.Printf("Pages Skipped:        %d\n", stats.PagesSkipped)
	fmt.Printf("Sections Analyzed:    %d\n", stats.Sections)
	fmt.Printf("Chessboards Found:    %d\n", stats.Boards)
	fmt.Printf("Bubbles Detected:     %d\n", stats.Bubbles)
	fmt.Printf("OCR Misses:           %d\n", stats.OCRMisses)
	fmt.Printf("Positions Recognized: %d\n", stats.Recognized)
	fmt.Printf("Recognition Failures: %d\n", stats.RecognitionFailures)
	fmt.Printf("Elapsed:              %v\n", stats.Duration.Round(time.Second))
	fmt.Println(strings.Repeat("═", 50) + "\n")

	c.logger.Info("Grid run completed",
		zap.Int("pages", stats.PagesProcessed),
		zap.Int("sections", stats.Sections),
		zap.Int("boards", stats.Boards),
	)
}

// ProgressBar displays a progress bar
type ProgressBar struct {
	total   int
	current int
	width   int
	mu      sync.Mutex
}

// NewProgressBar creates a new progress bar
func NewProgressBar(total, width int) *ProgressBar {
	return &ProgressBar{
		total: total,
		width: width,
	}
}

// Update updates the progress bar
func (pb *ProgressBar) Update(current int) {
	pb.mu.Lock()
	defer pb.mu.Unlock()

	pb.current = current
	pb.render()
}

// render displays the progress bar
func (pb *ProgressBar) render() {
	if pb.total <= 0 {
		return
	}
	percent := float64(pb.current) / float64(pb.total)
	filled := int(percent * float64(pb.width))

	bar := "["
	for i := 0; i < pb.width; i++ {
		if i < filled {
			bar += "="
		} else if i == filled {
			bar += ">"
		} else {
			bar += " "
		}
	}
	bar += fmt.Sprintf("] %.1f%%", percent*100)

	fmt.Printf("\r%s", bar)

	if pb.current >= pb.total {
		fmt.Println()
	}
}
