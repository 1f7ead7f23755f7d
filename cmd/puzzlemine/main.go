package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/thyrook/puzzlemine/internal/config"
	"github.com/thyrook/puzzlemine/internal/engine"
	"github.com/thyrook/puzzlemine/internal/export"
	"github.com/thyrook/puzzlemine/internal/iface"
	"github.com/thyrook/puzzlemine/internal/pdf"
	"github.com/thyrook/puzzlemine/internal/recognition"
	"github.com/thyrook/puzzlemine/internal/storage"
	"github.com/thyrook/puzzlemine/internal/vision"
)

// figureFinder bridges the vision figure scanner into the pdf region source.
type figureFinder struct {
	scanner *vision.FigureScanner
}

func (f figureFinder) FindFigures(imagePath string, page int) ([]pdf.Figure, error) {
	figs, err := f.scanner.FindFigures(imagePath, page)
	if err != nil {
		return nil, err
	}
	out := make([]pdf.Figure, len(figs))
	for i, fg := range figs {
		out[i] = pdf.Figure{Path: fg.Path, X: fg.X, Y: fg.Y, W: fg.W, H: fg.H}
	}
	return out, nil
}

func main() {
	// Command line flags
	configPath := flag.String("config", "config.json", "Path to configuration file")
	pdfPath := flag.String("pdf", "", "Path to the puzzle book PDF (overrides config)")
	startPage := flag.Int("start", 0, "First page to process (overrides config)")
	endPage := flag.Int("end", 0, "Last page to process, 0 = end of book (overrides config)")
	maxDiagrams := flag.Int("max", 0, "Stop after this many diagrams, 0 = no limit (overrides config)")

	flag.Parse()

	cfg := config.LoadOrDefault(*configPath)

	// Apply overrides
	if *pdfPath != "" {
		cfg.PDFPath = *pdfPath
	}
	if *startPage > 0 {
		cfg.Extraction.StartPage = *startPage
	}
	if *endPage > 0 {
		cfg.Extraction.EndPage = *endPage
	}
	if *maxDiagrams > 0 {
		cfg.Extraction.MaxDiagrams = *maxDiagrams
	}

	// Require a book to work on
	if cfg.PDFPath == "" {
		fmt.Println("PuzzleMine - Chess Puzzle Diagram Extraction")
		fmt.Println()
		fmt.Println("Usage:")
		fmt.Println("  Extract diagrams from a puzzle book:")
		fmt.Println("    puzzlemine -pdf=book.pdf")
		fmt.Println()
		fmt.Println("  Use a saved configuration:")
		fmt.Println("    puzzlemine -config=config.json")
		fmt.Println()
		flag.PrintDefaults()
		os.Exit(1)
	}

	if err := cfg.Validate(); err != nil {
		fmt.Fprintf(os.Stderr, "Invalid configuration: %v\n", err)
		os.Exit(1)
	}
	if err := cfg.EnsureDirectories(); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to create output directories: %v\n", err)
		os.Exit(1)
	}

	logger, err := iface.NewLogger(cfg.Interface.LogPath, cfg.Interface.LogLevel)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	cli := iface.NewCLI(logger)
	cli.PrintWelcome()

	zl := logger.GetZapLogger()

	// Rendering is not optional in the book flow: diagram crops come from
	// rasterized pages
	if err := pdf.CheckRenderer(); err != nil {
		cli.PrintError(err)
		os.Exit(1)
	}

	doc, err := pdf.OpenDocument(cfg.PDFPath, zl)
	if err != nil {
		cli.PrintError(err)
		os.Exit(1)
	}
	defer doc.Close()

	renderer := pdf.NewRenderer(cfg.PDFPath, cfg.RenderDir(), cfg.Extraction.RenderDPI, zl)
	scanner := vision.NewFigureScanner(vision.DefaultFigureConfig(), cfg.RenderDir(), zl)
	source := pdf.NewRegionSource(doc, renderer, figureFinder{scanner: scanner}, cfg.Extraction.RenderDPI, zl)

	rejectedDir := ""
	if cfg.Extraction.SaveRejected {
		rejectedDir = cfg.RejectedDir()
	}
	detector := vision.NewBoardDetector(engine.DetectorSettings(cfg), rejectedDir, zl)

	store, err := storage.NewRecordStore(cfg.Storage.DBPath)
	if err != nil {
		cli.PrintError(err)
		os.Exit(1)
	}
	defer store.Close()

	if stats, serr := store.GetStats(); serr == nil {
		cli.PrintStatus(fmt.Sprintf("Store %s: %d diagrams, %d sections",
			stats.DBPath, stats.Diagrams, stats.Sections))
	}

	writer, err := export.NewBookWriter(cfg.DiagramsCSV())
	if err != nil {
		cli.PrintError(err)
		os.Exit(1)
	}

	rec := recognition.NewClient(engine.RecognitionSettings(cfg), zl)

	runner, err := engine.NewBookRunner(cfg, source, detector, rec, store, writer, zl)
	if err != nil {
		writer.Close()
		cli.PrintError(err)
		os.Exit(1)
	}

	// Stop cleanly on Ctrl+C
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	go func() {
		<-sigChan
		logger.Info("Interrupt received, stopping extraction...")
		cancel()
	}()

	fmt.Printf("Book:    %s (%d pages)\n", cfg.PDFPath, doc.PageCount())
	fmt.Printf("Layout:  %s\n", cfg.Extraction.Structure)
	fmt.Printf("Output:  %s\n", cfg.DiagramsCSV())
	fmt.Println()
	cli.PrintStatus("Starting extraction...")

	stats, err := runner.Run(ctx)

	// Flush the CSV before reporting anything, interrupted runs included
	if cerr := writer.Close(); cerr != nil && err == nil {
		err = cerr
	}
	if err != nil && !errors.Is(err, context.Canceled) {
		cli.PrintError(err)
		store.Close()
		os.Exit(1)
	}
	if errors.Is(err, context.Canceled) {
		cli.PrintStatus("Extraction interrupted, partial results saved")
	}

	cli.PrintBookSummary(stats)
	fmt.Printf("Diagrams written to %s\n", cfg.DiagramsCSV())
}
