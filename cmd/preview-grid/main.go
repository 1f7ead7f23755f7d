package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/thyrook/puzzlemine/internal/config"
	"github.com/thyrook/puzzlemine/internal/engine"
	"github.com/thyrook/puzzlemine/internal/iface"
	"github.com/thyrook/puzzlemine/internal/iface/logger"
	"github.com/thyrook/puzzlemine/internal/ocr"
	"github.com/thyrook/puzzlemine/internal/pdf"
	"github.com/thyrook/puzzlemine/internal/vision"
)

func main() {
	// Command line flags
	configPath := flag.String("config", "config.json", "Path to configuration file")
	page := flag.Int("page", 0, "Page to preview (required)")
	pdfPath := flag.String("pdf", "", "Path to the puzzle book PDF (overrides config)")
	imagesDir := flag.String("images", "", "Directory of pre-rendered page images instead of a PDF")
	outPath := flag.String("out", "", "Annotated image output path (default under the render directory)")

	flag.Parse()

	cfg := config.LoadOrDefault(*configPath)
	if *pdfPath != "" {
		cfg.PDFPath = *pdfPath
	}

	if *page < 1 || (cfg.PDFPath == "" && *imagesDir == "") {
		fmt.Println("Grid Preview Tool")
		fmt.Println()
		fmt.Println("Analyzes one page with the configured grid layout and writes an")
		fmt.Println("annotated image showing cells, bubbles and detector verdicts.")
		fmt.Println()
		fmt.Println("Usage:")
		fmt.Println("  preview-grid -pdf=book.pdf -page=14")
		fmt.Println("  preview-grid -images=output/render -page=14")
		fmt.Println()
		flag.PrintDefaults()
		os.Exit(1)
	}

	if err := logger.Setup(logger.LevelInfo, ""); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}

	console := iface.NewConsole(false)
	ctx := context.Background()

	// Resolve the page image
	var imgPath string
	if *imagesDir != "" {
		src, err := vision.NewDirectorySource(*imagesDir)
		if err != nil {
			console.PrintError(err)
			os.Exit(1)
		}
		p, err := src.PageImage(ctx, *page)
		if err != nil {
			console.PrintError(err)
			os.Exit(1)
		}
		imgPath = p
	} else {
		if err := pdf.CheckRenderer(); err != nil {
			console.PrintError(err)
			os.Exit(1)
		}
		renderer := pdf.NewRenderer(cfg.PDFPath, cfg.RenderDir(), cfg.Extraction.RenderDPI, nil)
		p, err := renderer.RenderPage(ctx, *page)
		if err != nil {
			console.PrintError(err)
			os.Exit(1)
		}
		imgPath = p
	}

	analyzer := vision.NewGridAnalyzer(engine.GridSettings(cfg), cfg.SectionsDir(), cfg.Grid.SaveSections, nil)
	detector := vision.NewBoardDetector(engine.DetectorSettings(cfg), "", nil)

	sections, err := analyzer.AnalyzePage(imgPath, *page)
	if err != nil {
		console.PrintError(err)
		os.Exit(1)
	}
	if len(sections) == 0 {
		console.PrintWarning("no sections found, check grid rows and columns")
		os.Exit(1)
	}

	var reader *ocr.Reader
	if r, err := ocr.NewReader(cfg.Grid.OCRLanguages); err == nil && r.Enabled() {
		reader = r
		defer reader.Close()
	} else {
		console.PrintInfo("OCR not available, digits are left blank")
	}

	// Numbering preview follows the run: position within the book times
	// cells per page, plus the configured base
	firstPuzzle := cfg.Grid.FirstPuzzlePage
	if firstPuzzle <= 0 {
		firstPuzzle = cfg.Grid.StartPage
	}
	perPage := cfg.Grid.Rows * cfg.Grid.Columns

	rows := make([][]string, 0, len(sections))
	for si := range sections {
		sec := &sections[si]
		secStart := time.Now()

		board, squares, err := detector.IsChessboard(sec.BodyPath)
		if err != nil {
			console.PrintWarning(fmt.Sprintf("section %d: board check failed: %v", sec.Index, err))
		}
		logger.LogDetection(logger.DetectionMetrics{
			Image:     sec.BodyPath,
			Squares:   squares,
			Accepted:  board,
			LatencyMs: float64(time.Since(secStart).Milliseconds()),
		})

		var digits []string
		for bi := range sec.Bubbles {
			b := &sec.Bubbles[bi]
			if reader != nil && len(b.PNG) > 0 {
				if d, err := reader.ReadDigit(b.PNG); err == nil {
					b.Digit = &d
				}
			}
			label := b.Fill.String()
			if b.Digit != nil {
				label = fmt.Sprintf("%d %s", *b.Digit, label)
			}
			digits = append(digits, label)
		}

		printed := "-"
		if reader != nil && len(sec.NumberPNG) > 0 {
			if n, err := reader.ReadNumber(sec.NumberPNG); err == nil {
				printed = strconv.Itoa(n)
			}
		}
		calculated := (sec.Page-firstPuzzle)*perPage + cfg.Grid.NumberBase + sec.Index

		logger.LogSection(logger.SectionMetrics{
			Page:        sec.Page,
			Section:     sec.Index,
			Bubbles:     len(sec.Bubbles),
			Digits:      strings.Join(digits, ","),
			Chessboard:  board,
			DiagramNum:  calculated,
			TimeElapsed: time.Since(secStart).Seconds(),
		})

		verdict := "no"
		if board {
			verdict = "yes"
		}
		rows = append(rows, []string{
			strconv.Itoa(sec.Index),
			fmt.Sprintf("r%d c%d", sec.Row, sec.Col),
			verdict,
			strconv.Itoa(squares),
			strings.Join(digits, ", "),
			fmt.Sprintf("%s / calc %d", printed, calculated),
		})
	}

	console.PrintTable(
		[]string{"Section", "Cell", "Board", "Squares", "Bubbles", "Number"},
		rows,
	)

	dst := *outPath
	if dst == "" {
		dst = filepath.Join(cfg.RenderDir(), fmt.Sprintf("preview_page_%04d.png", *page))
	}
	if err := analyzer.Annotate(imgPath, sections, dst); err != nil {
		console.PrintError(err)
		os.Exit(1)
	}
	console.PrintSuccess(fmt.Sprintf("annotated page written to %s", dst))
}
