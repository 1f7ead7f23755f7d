package iface

import (
	"fmt"
	"os"
	"strings"
)

// Console provides formatted terminal output for the utility commands.
// The main pipeline commands log through Logger; Console is for the
// inspection tools where humans read the output directly.
type Console struct {
	quiet bool
}

// NewConsole creates a new console
func NewConsole(quiet bool) *Console {
	return &Console{quiet: quiet}
}

// Color codes for terminal output
const (
	ColorReset  = "\033[0m"
	ColorRed    = "\033[31m"
	ColorGreen  = "\033[32m"
	ColorYellow = "\033[33m"
	ColorBlue   = "\033[34m"
	ColorCyan   = "\033[36m"
	ColorBold   = "\033[1m"
	ColorDim    = "\033[2m"
)

// Colorize applies color to text if terminal supports it
func (c *Console) Colorize(text string, color string) string {
	if c.quiet || os.Getenv("NO_COLOR") != "" {
		return text
	}
	return color + text + ColorReset
}

// PrintBanner displays the application banner
func (c *Console) PrintBanner() {
	if c.quiet {
		return
	}

	banner := `
╔═══════════════════════════════════════════════════════════╗
║                                                           ║
║     PuzzleMine - Chess Puzzle Diagram Extraction          ║
║     Block streams, board detection, bubble analysis       ║
║                                                           ║
╚═══════════════════════════════════════════════════════════╝
`
	fmt.Println(c.Colorize(banner, ColorCyan))
}

// PrintSuccess prints a success message in green
func (c *Console) PrintSuccess(message string) {
	if !c.quiet {
		fmt.Println(c.Colorize("✓ "+message, ColorGreen))
	}
}

// PrintInfo prints an info message in blue
func (c *Console) PrintInfo(message string) {
	if !c.quiet {
		fmt.Println(c.Colorize("ℹ "+message, ColorBlue))
	}
}

// PrintWarning prints a warning message
func (c *Console) PrintWarning(message string) {
	if !c.quiet {
		fmt.Println(c.Colorize("! "+message, ColorYellow))
	}
}

// PrintError prints an error message
func (c *Console) PrintError(err error) {
	fmt.Fprintf(os.Stderr, "Error: %v\n", err)
}

// PrintProgressBar displays a progress bar
func (c *Console) PrintProgressBar(current, total int, label string) {
	if c.quiet || total == 0 {
		return
	}

	width := 40
	percentage := float64(current) / float64(total)
	filled := int(percentage * float64(width))

	bar := "["
	for i := 0; i < width; i++ {
		if i < filled {
			bar += "█"
		} else {
			bar += "░"
		}
	}
	bar += "]"

	fmt.Printf("\r%s %s %d/%d (%.1f%%) ", label, bar, current, total, percentage*100)
	if current == total {
		fmt.Println()
	}
}

// PrintTable prints data in a formatted table
func (c *Console) PrintTable(headers []string, rows [][]string) {
	if c.quiet {
		return
	}

	// Calculate column widths
	colWidths := make([]int, len(headers))
	for i, h := range headers {
		colWidths[i] = len(h)
	}
	for _, row := range rows {
		for i, cell := range row {
			if i < len(colWidths) && len(cell) > colWidths[i] {
				colWidths[i] = len(cell)
			}
		}
	}

	// Print header
	fmt.Println()
	for i, h := range headers {
		fmt.Printf("%-*s  ", colWidths[i], h)
	}
	fmt.Println()

	// Print separator
	for _, w := range colWidths {
		fmt.Print(strings.Repeat("─", w+2))
	}
	fmt.Println()

	// Print rows
	for _, row := range rows {
		for i, cell := range row {
			if i < len(colWidths) {
				fmt.Printf("%-*s  ", colWidths[i], cell)
			}
		}
		fmt.Println()
	}
	fmt.Println()
}

// PrintBox prints text in a box
func (c *Console) PrintBox(title string, lines []string) {
	if c.quiet {
		return
	}

	// Find max width
	maxWidth := len(title)
	for _, line := range lines {
		if len(line) > maxWidth {
			maxWidth = len(line)
		}
	}

	width := maxWidth + 4 // Padding

	// Top border
	fmt.Println("┌" + strings.Repeat("─", width) + "┐")

	// Title
	padding := (width - len(title)) / 2
	fmt.Printf("│%s%s%s│\n",
		strings.Repeat(" ", padding),
		c.Colorize(title, ColorBold),
		strings.Repeat(" ", width-padding-len(title)))

	// Separator
	fmt.Println("├" + strings.Repeat("─", width) + "┤")

	// Content lines
	for _, line := range lines {
		fmt.Printf("│ %-*s │\n", width-2, line)
	}

	// Bottom border
	fmt.Println("└" + strings.Repeat("─", width) + "┘")
}

// PrintStats prints statistics in a formatted grid
func (c *Console) PrintStats(stats map[string]interface{}) {
	if c.quiet {
		return
	}

	fmt.Println("\n" + strings.Repeat("═", 70))
	fmt.Println(c.Colorize(" STATISTICS", ColorBold+ColorCyan))
	fmt.Println(strings.Repeat("═", 70))

	for key, value := range stats {
		fmt.Printf("  %-30s: ", key)

		switch v := value.(type) {
		case float64:
			fmt.Printf("%.2f", v)
		case bool:
			if v {
				fmt.Print(c.Colorize("yes", ColorGreen))
			} else {
				fmt.Print(c.Colorize("no", ColorRed))
			}
		case string:
			fmt.Print(v)
		default:
			fmt.Printf("%v", v)
		}
		fmt.Println()
	}

	fmt.Println(strings.Repeat("═", 70) + "\n")
}

// PrintSeparator prints a visual separator
func (c *Console) PrintSeparator() {
	if !c.quiet {
		fmt.Println(strings.Repeat("━", 70))
	}
}
