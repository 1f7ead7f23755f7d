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
	"github.com/thyrook/puzzlemine/internal/ocr"
	"github.com/thyrook/puzzlemine/internal/pdf"
	"github.com/thyrook/puzzlemine/internal/recognition"
	"github.com/thyrook/puzzlemine/internal/storage"
	"github.com/thyrook/puzzlemine/internal/vision"
)

// renderPages adapts the PDF renderer to the grid page source.
type renderPages struct {
	renderer *pdf.Renderer
	pages    int
}

func (r renderPages) PageCount() int { return r.pages }

func (r renderPages) PageImage(ctx context.Context, page int) (string, error) {
	return r.renderer.RenderPage(ctx, page)
}

func main() {
	// Command line flags
	configPath := flag.String("config", "config.json", "Path to configuration file")
	sourceKind := flag.String("source", "pdf", "Page source: pdf, images or screen")
	pdfPath := flag.String("pdf", "", "Path to the puzzle book PDF (overrides config)")
	imagesDir := flag.String("images", "", "Directory of pre-rendered page images (source=images)")
	startPage := flag.Int("start", 0, "First page to process (overrides config)")
	endPage := flag.Int("end", 0, "Last page to process, 0 = last available (overrides config)")
	showStats := flag.Bool("stats", false, "Show record store statistics and exit")
	reset := flag.Bool("reset", false, "Clear stored records and the resume cursor before running")

	flag.Parse()

	cfg := config.LoadOrDefault(*configPath)

	// Apply overrides
	if *pdfPath != "" {
		cfg.PDFPath = *pdfPath
	}
	if *startPage > 0 {
		cfg.Grid.StartPage = *startPage
	}
	if *endPage > 0 {
		cfg.Grid.EndPage = *endPage
	}

	// Show stats if requested
	if *showStats {
		showStoreStats(cfg.Storage.DBPath)
		return
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

	store, err := storage.NewRecordStore(cfg.Storage.DBPath)
	if err != nil {
		cli.PrintError(err)
		os.Exit(1)
	}
	defer store.Close()

	if *reset {
		if err := store.Reset(); err != nil {
			cli.PrintError(err)
			os.Exit(1)
		}
		cli.PrintStatus("Record store cleared, starting from the first page")
	}

	if stats, serr := store.GetStats(); serr == nil {
		cli.PrintStatus(fmt.Sprintf("Store %s: %d sections, resume cursor at page %d",
			stats.DBPath, stats.Sections, stats.LastPage))
	}

	// Pick the page source
	var src vision.PageSource
	switch *sourceKind {
	case "pdf":
		if cfg.PDFPath == "" {
			fmt.Println("Grid Extraction Tool")
			fmt.Println()
			fmt.Println("Usage:")
			fmt.Println("  Process a grid-layout puzzle book:")
			fmt.Println("    grid-extract -pdf=book.pdf")
			fmt.Println()
			fmt.Println("  Replay saved page images:")
			fmt.Println("    grid-extract -source=images -images=output/render")
			fmt.Println()
			fmt.Println("  Capture pages from the screen:")
			fmt.Println("    grid-extract -source=screen")
			fmt.Println()
			flag.PrintDefaults()
			os.Exit(1)
		}
		if err := pdf.CheckRenderer(); err != nil {
			cli.PrintError(err)
			os.Exit(1)
		}
		pages, err := pdf.CountPages(cfg.PDFPath)
		if err != nil {
			cli.PrintError(err)
			os.Exit(1)
		}
		renderer := pdf.NewRenderer(cfg.PDFPath, cfg.RenderDir(), cfg.Extraction.RenderDPI, zl)
		src = renderPages{renderer: renderer, pages: pages}
		cli.PrintStatus(fmt.Sprintf("Source: %s (%d pages)", cfg.PDFPath, pages))
	case "images":
		if *imagesDir == "" {
			fmt.Fprintf(os.Stderr, "-images is required with -source=images\n")
			os.Exit(1)
		}
		dirSrc, err := vision.NewDirectorySource(*imagesDir)
		if err != nil {
			cli.PrintError(err)
			os.Exit(1)
		}
		src = dirSrc
		cli.PrintStatus(fmt.Sprintf("Source: %s (%d images)", *imagesDir, dirSrc.PageCount()))
	case "screen":
		scrSrc, err := vision.NewScreenSource(cfg.Screen.Display, engine.ScreenRegion(cfg),
			cfg.Screen.Pages, engine.ScreenDelay(cfg), cfg.RenderDir(), zl)
		if err != nil {
			cli.PrintError(err)
			os.Exit(1)
		}
		src = scrSrc
		cli.PrintStatus(fmt.Sprintf("Source: display %d, %d captures", cfg.Screen.Display, cfg.Screen.Pages))
	default:
		fmt.Fprintf(os.Stderr, "Unknown source %q, expected pdf, images or screen\n", *sourceKind)
		os.Exit(1)
	}

	analyzer := vision.NewGridAnalyzer(engine.GridSettings(cfg), cfg.SectionsDir(), cfg.Grid.SaveSections, zl)
	detector := vision.NewBoardDetector(engine.DetectorSettings(cfg), "", zl)

	// Digit OCR is optional: without it bubbles keep their fill style but
	// no digit
	var reader engine.DigitReader
	if ocrReader, err := ocr.NewReader(cfg.Grid.OCRLanguages); err != nil {
		cli.PrintStatus(fmt.Sprintf("OCR unavailable, bubble digits will be blank: %v", err))
	} else if !ocrReader.Enabled() {
		ocrReader.Close()
		cli.PrintStatus("OCR not compiled in, bubble digits will be blank")
	} else {
		defer ocrReader.Close()
		reader = ocrReader
		cli.PrintStatus(fmt.Sprintf("OCR ready, languages: %s", cfg.Grid.OCRLanguages))
	}

	writer, err := export.NewGridWriter(cfg.GridCSV())
	if err != nil {
		cli.PrintError(err)
		os.Exit(1)
	}

	rec := recognition.NewClient(engine.RecognitionSettings(cfg), zl)

	runner := engine.NewGridRunner(cfg, src, analyzer, detector, reader, rec, store, writer, zl)

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

	fmt.Printf("Grid:    %dx%d cells per page\n", cfg.Grid.Rows, cfg.Grid.Columns)
	fmt.Printf("Output:  %s\n", cfg.GridCSV())
	fmt.Println()
	cli.PrintStatus("Starting grid extraction...")

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
		cli.PrintStatus("Extraction interrupted, finished pages are saved")
	}

	cli.PrintGridSummary(stats)
	fmt.Printf("Sections written to %s\n", cfg.GridCSV())
}

func showStoreStats(dbPath string) {
	store, err := storage.NewRecordStore(dbPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to open record store: %v\n", err)
		os.Exit(1)
	}
	defer store.Close()

	stats, err := store.GetStats()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to get stats: %v\n", err)
		os.Exit(1)
	}

	fmt.Println("Record Store Statistics")
	fmt.Println("========================================")
	fmt.Printf("File:          %s\n", stats.DBPath)
	fmt.Printf("Diagrams:      %d\n", stats.Diagrams)
	fmt.Printf("Sections:      %d\n", stats.Sections)
	fmt.Printf("Resume cursor: page %d\n", stats.LastPage)
	fmt.Printf("Run ID:        %s\n", stats.RunID)
	if !stats.UpdatedAt.IsZero() {
		fmt.Printf("Last updated:  %s\n", stats.UpdatedAt.Format("2006-01-02 15:04:05"))
	}
}
