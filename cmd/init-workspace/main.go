package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/thyrook/puzzlemine/internal/config"
	"github.com/thyrook/puzzlemine/internal/iface"
	"github.com/thyrook/puzzlemine/internal/pdf"
)

func main() {
	// Command line flags
	configPath := flag.String("config", "config.json", "Where to write the configuration file")
	outputDir := flag.String("output", "", "Output directory (default from the generated config)")
	pdfPath := flag.String("pdf", "", "Path to the puzzle book PDF to record in the config")
	force := flag.Bool("force", false, "Overwrite an existing configuration file")

	flag.Parse()

	console := iface.NewConsole(false)
	console.PrintBanner()

	if _, err := os.Stat(*configPath); err == nil && !*force {
		console.PrintWarning(fmt.Sprintf("%s already exists, use -force to overwrite", *configPath))
		os.Exit(1)
	}

	cfg := config.DefaultConfig()
	if *pdfPath != "" {
		cfg.PDFPath = *pdfPath
	}
	if *outputDir != "" {
		cfg.OutputDir = *outputDir
	}

	if err := cfg.EnsureDirectories(); err != nil {
		console.PrintError(err)
		os.Exit(1)
	}
	if err := cfg.Save(*configPath); err != nil {
		console.PrintError(err)
		os.Exit(1)
	}

	console.PrintBox("Workspace", []string{
		fmt.Sprintf("Config:      %s", *configPath),
		fmt.Sprintf("Output:      %s", cfg.OutputDir),
		fmt.Sprintf("Diagrams:    %s", cfg.DiagramsCSV()),
		fmt.Sprintf("Grid table:  %s", cfg.GridCSV()),
		fmt.Sprintf("Images:      %s", cfg.ImagesDir()),
		fmt.Sprintf("Database:    %s", cfg.Storage.DBPath),
		fmt.Sprintf("Log file:    %s", cfg.Interface.LogPath),
	})

	if err := pdf.CheckRenderer(); err != nil {
		console.PrintWarning(fmt.Sprintf("%v", err))
		console.PrintInfo("page rendering needs poppler-utils, text-only inspection works without it")
	}

	console.PrintSuccess("workspace initialized")
	fmt.Println()
	fmt.Println("Next steps:")
	fmt.Printf("  1. Review %s and set the header pattern for your book\n", *configPath)
	fmt.Println("  2. Check what the book looks like:  inspect-pages -pdf=book.pdf -start=10 -end=12")
	fmt.Println("  3. Run the extraction:              puzzlemine -pdf=book.pdf")
}
