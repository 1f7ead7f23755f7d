package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/thyrook/puzzlemine/internal/config"
	"github.com/thyrook/puzzlemine/internal/extract"
	"github.com/thyrook/puzzlemine/internal/iface"
	"github.com/thyrook/puzzlemine/internal/iface/logger"
	"github.com/thyrook/puzzlemine/internal/pdf"
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
	startPage := flag.Int("start", 1, "First page to inspect")
	endPage := flag.Int("end", 0, "Last page to inspect, 0 = end of book")
	withFigures := flag.Bool("figures", false, "Render pages and include detected figure regions")
	width := flag.Int("width", 70, "Truncate text blocks to this many characters")
	verbose := flag.Bool("verbose", false, "Enable debug logging")

	flag.Parse()

	cfg := config.LoadOrDefault(*configPath)
	if *pdfPath != "" {
		cfg.PDFPath = *pdfPath
	}

	if cfg.PDFPath == "" {
		fmt.Println("Page Inspection Tool")
		fmt.Println()
		fmt.Println("Dumps the block stream of a book so header and solution")
		fmt.Println("patterns can be checked against what the PDF actually says.")
		fmt.Println()
		fmt.Println("Usage:")
		fmt.Println("  inspect-pages -pdf=book.pdf -start=12 -end=12")
		fmt.Println("  inspect-pages -pdf=book.pdf -figures")
		fmt.Println()
		flag.PrintDefaults()
		os.Exit(1)
	}

	level := logger.LevelInfo
	if *verbose {
		level = logger.LevelDebug
	}
	if err := logger.Setup(level, ""); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}

	console := iface.NewConsole(false)

	patterns, err := extract.CompilePatterns(cfg.Extraction.HeaderPattern, cfg.Extraction.SolutionPattern)
	if err != nil {
		console.PrintError(err)
		os.Exit(1)
	}

	doc, err := pdf.OpenDocument(cfg.PDFPath, nil)
	if err != nil {
		console.PrintError(err)
		os.Exit(1)
	}
	defer doc.Close()

	// Without -figures the stream is text only and needs no rendering
	var renderer pdf.PageRenderer
	var finder pdf.FigureFinder
	if *withFigures {
		if err := pdf.CheckRenderer(); err != nil {
			console.PrintWarning(fmt.Sprintf("figures disabled: %v", err))
		} else {
			renderer = pdf.NewRenderer(cfg.PDFPath, cfg.RenderDir(), cfg.Extraction.RenderDPI, nil)
			finder = figureFinder{scanner: vision.NewFigureScanner(vision.DefaultFigureConfig(), cfg.RenderDir(), nil)}
		}
	}

	source := pdf.NewRegionSource(doc, renderer, finder, cfg.Extraction.RenderDPI, nil)
	builder := extract.NewStreamBuilder(source, nil)

	console.PrintInfo(fmt.Sprintf("%s: %d pages", cfg.PDFPath, doc.PageCount()))
	blocks := builder.Build(context.Background(), *startPage, *endPage)

	var headers, solutions, images, plain int
	page := 0
	pageText := 0
	pageImages := 0
	for _, b := range blocks {
		if b.Page != page {
			if page != 0 {
				logger.LogPage(logger.PageMetrics{Page: page, TextBlocks: pageText, ImageBlocks: pageImages})
			}
			page = b.Page
			pageText, pageImages = 0, 0
			fmt.Printf("\n---- Page %d %s\n", page, strings.Repeat("-", 58-digits(page)))
		}

		tag := ""
		body := b.ImagePath
		switch b.Kind {
		case extract.TextBlock:
			pageText++
			if patterns.IsHeader(b.Text) {
				tag = "[header]  "
				headers++
			} else if patterns.IsSolution(b.Text) {
				tag = "[solution]"
				solutions++
			} else {
				tag = "          "
				plain++
			}
			body = truncate(b.Text, *width)
		case extract.ImageBlock:
			pageImages++
			tag = "          "
			images++
		}
		fmt.Printf("[%4d] %-5s y=%7.1f %s %s\n", b.GlobalIndex, b.Kind, b.Y, tag, body)
	}
	if page != 0 {
		logger.LogPage(logger.PageMetrics{Page: page, TextBlocks: pageText, ImageBlocks: pageImages})
	}

	console.PrintTable(
		[]string{"Kind", "Count"},
		[][]string{
			{"header lines", strconv.Itoa(headers)},
			{"solution lines", strconv.Itoa(solutions)},
			{"other text", strconv.Itoa(plain)},
			{"images", strconv.Itoa(images)},
			{"total blocks", strconv.Itoa(len(blocks))},
		},
	)

	if headers == 0 && len(blocks) > 0 {
		console.PrintWarning("no block matched the header pattern, check extraction.header_pattern")
	}
}

// truncate flattens newlines and cuts the text at n runes.
func truncate(s string, n int) string {
	s = strings.Join(strings.Fields(s), " ")
	runes := []rune(s)
	if n > 3 && len(runes) > n {
		return string(runes[:n-3]) + "..."
	}
	return s
}

func digits(n int) int {
	return len(strconv.Itoa(n))
}
