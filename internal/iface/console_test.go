package iface

import (
	"strings"
	"testing"

	"github.com/thyrook/puzzlemine/internal/engine"
)

func TestConsoleCreation(t *testing.T) {
	c := NewConsole(false)
	if c == nil {
		t.Fatal("Failed to create console")
	}

	q := NewConsole(true)
	if !q.quiet {
		t.Error("Quiet mode not set")
	}
}

func TestColorize(t *testing.T) {
	c := NewConsole(false)
	t.Setenv("NO_COLOR", "")

	colored := c.Colorize("text", ColorGreen)
	if !strings.HasPrefix(colored, ColorGreen) || !strings.HasSuffix(colored, ColorReset) {
		t.Errorf("Expected color wrapping, got %q", colored)
	}

	q := NewConsole(true)
	if got := q.Colorize("text", ColorGreen); got != "text" {
		t.Errorf("Expected quiet mode to skip colors, got %q", got)
	}
}

func TestColorizeRespectsNoColor(t *testing.T) {
	c := NewConsole(false)
	t.Setenv("NO_COLOR", "1")

	if got := c.Colorize("text", ColorRed); got != "text" {
		t.Errorf("Expected NO_COLOR to disable colors, got %q", got)
	}
}

func TestQuietModeSuppressesOutput(t *testing.T) {
	c := NewConsole(true)

	// Should not panic
	c.PrintBanner()
	c.PrintSuccess("done")
	c.PrintInfo("note")
	c.PrintWarning("careful")
	c.PrintSeparator()
	c.PrintProgressBar(5, 10, "pages")
	c.PrintTable([]string{"a"}, [][]string{{"b"}})
	c.PrintBox("title", []string{"line"})
	c.PrintStats(map[string]interface{}{"count": 3})
}

func TestProgressBar(t *testing.T) {
	pb := NewProgressBar(10, 20)
	if pb == nil {
		t.Fatal("Failed to create progress bar")
	}

	// Should not panic, including the completion newline
	pb.Update(0)
	pb.Update(5)
	pb.Update(10)

	// Zero total must not divide by zero
	empty := NewProgressBar(0, 20)
	empty.Update(0)
}

func TestCLISummaries(t *testing.T) {
	tmp := t.TempDir()
	logger, err := NewLogger(tmp+"/test.log", "error")
	if err != nil {
		t.Fatalf("Failed to create logger: %v", err)
	}
	defer logger.Sync()

	cli := NewCLI(logger)

	// Should not panic with zero and populated stats
	cli.PrintBookSummary(engine.BookStats{})
	cli.PrintBookSummary(engine.BookStats{
		PagesProcessed: 12,
		Blocks:         340,
		Emitted:        48,
		Partial:        3,
		Recognized:     45,
	})
	cli.PrintGridSummary(engine.GridStats{
		PagesProcessed: 6,
		Sections:       36,
		Boards:         30,
	})
}

func TestLoggerLevels(t *testing.T) {
	tmp := t.TempDir()
	logger, err := NewLogger(tmp+"/levels.log", "debug")
	if err != nil {
		t.Fatalf("Failed to create logger: %v", err)
	}
	defer logger.Sync()

	// Should not panic at any level
	logger.Debug("debug message")
	logger.Info("info message")
	logger.Warn("warn message")
	logger.Error("error message")

	if logger.GetZapLogger() == nil {
		t.Error("Expected underlying zap logger")
	}
}
