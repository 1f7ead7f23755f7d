package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/thyrook/puzzlemine/internal/iface"
	"github.com/thyrook/puzzlemine/internal/iface/logger"
	"github.com/thyrook/puzzlemine/internal/pdf"
)

func main() {
	// Command line flags
	pdfPath := flag.String("pdf", "", "Path to the PDF to extract from")
	outDir := flag.String("out", "output/embedded", "Directory for extracted images")
	startPage := flag.Int("start", 1, "First page to extract from")
	endPage := flag.Int("end", 0, "Last page to extract from, 0 = end of document")

	flag.Parse()

	if *pdfPath == "" {
		fmt.Println("Embedded Image Extraction Tool")
		fmt.Println()
		fmt.Println("Dumps the image objects embedded in a PDF. Object numbering")
		fmt.Println("follows the PDF's internal order, so for most scanned books")
		fmt.Println("the files come out in page order, but this is not guaranteed.")
		fmt.Println()
		fmt.Println("Usage:")
		fmt.Println("  extract-images -pdf=book.pdf -out=output/embedded")
		fmt.Println("  extract-images -pdf=book.pdf -start=10 -end=20")
		fmt.Println()
		flag.PrintDefaults()
		os.Exit(1)
	}

	if err := logger.Setup(logger.LevelInfo, ""); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}

	console := iface.NewConsole(false)

	pages, err := pdf.CountPages(*pdfPath)
	if err != nil {
		console.PrintError(err)
		os.Exit(1)
	}
	console.PrintInfo(fmt.Sprintf("%s: %d pages", *pdfPath, pages))

	done := logger.StartOperation("extract_embedded_images", map[string]any{
		"pdf":   *pdfPath,
		"pages": pages,
		"out":   *outDir,
	})
	err = pdf.ExtractEmbeddedImages(*pdfPath, *outDir, *startPage, *endPage)
	done(err)
	if err != nil {
		console.PrintError(err)
		os.Exit(1)
	}

	count := 0
	if entries, err := os.ReadDir(*outDir); err == nil {
		for _, e := range entries {
			if !e.IsDir() {
				count++
			}
		}
	}
	console.PrintSuccess(fmt.Sprintf("%d files in %s", count, *outDir))
}
