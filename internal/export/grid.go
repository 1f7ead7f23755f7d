package export

import (
	"bufio"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/thyrook/puzzlemine/internal/storage"
)

// gridColumns is the grid flow schema.
var gridColumns = []string{
	"page_number",
	"section_number",
	"row",
	"col",
	"chessboard_detected",
	"chessboard_confidence",
	"bubble_count",
	"bubble_numbers",
	"bubble_colors",
	"bubble_details",
	"detected_diagram_number",
	"calculated_diagram_number",
	"coordinates",
	"fen",
	"api_turn",
}

// GridWriter appends grid section rows to a CSV file. Opening an
// existing non-empty file keeps its rows so an interrupted run can
// resume; the BOM and header are written only for a fresh file.
type GridWriter struct {
	f *os.File
	q *quoteAllWriter
}

// NewGridWriter opens path in append mode.
func NewGridWriter(path string) (*GridWriter, error) {
	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		return nil, fmt.Errorf("open csv: %w", err)
	}

	info, err := f.Stat()
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("stat csv: %w", err)
	}

	fresh := info.Size() == 0
	if fresh {
		if _, err := f.Write(utf8BOM); err != nil {
			f.Close()
			return nil, fmt.Errorf("write bom: %w", err)
		}
	}

	q := newQuoteAllWriter(bufio.NewWriter(f))
	if fresh {
		if err := q.WriteRow(gridColumns); err != nil {
			f.Close()
			return nil, fmt.Errorf("write header: %w", err)
		}
	}
	return &GridWriter{f: f, q: q}, nil
}

// Write appends one section row. Bubble lists join left to right; a
// bubble whose digit OCR missed contributes an empty number element.
func (w *GridWriter) Write(rec *storage.SectionRecord) error {
	numbers := make([]string, 0, len(rec.Bubbles))
	colors := make([]string, 0, len(rec.Bubbles))
	details := make([]string, 0, len(rec.Bubbles))
	for _, b := range rec.Bubbles {
		digit := ""
		if b.Digit != nil {
			digit = strconv.Itoa(*b.Digit)
		}
		numbers = append(numbers, digit)
		colors = append(colors, b.Fill)
		details = append(details, digit+"_"+b.Fill)
	}

	detected := ""
	if rec.DetectedNumber != nil {
		detected = strconv.Itoa(*rec.DetectedNumber)
	}

	row := []string{
		strconv.Itoa(rec.Page),
		strconv.Itoa(rec.Section),
		strconv.Itoa(rec.Row),
		strconv.Itoa(rec.Col),
		strconv.FormatBool(rec.Board),
		strconv.Itoa(rec.Confidence),
		strconv.Itoa(len(rec.Bubbles)),
		strings.Join(numbers, ","),
		strings.Join(colors, ","),
		strings.Join(details, ","),
		detected,
		strconv.Itoa(rec.CalculatedNumber),
		fmt.Sprintf("(%d,%d,%d,%d)", rec.X1, rec.Y1, rec.X2, rec.Y2),
		rec.FEN,
		rec.APITurn,
	}
	return w.q.WriteRow(row)
}

// Flush pushes buffered rows to disk. The grid runner flushes after
// every completed page so an interrupt loses at most one page.
func (w *GridWriter) Flush() error {
	if err := w.q.Flush(); err != nil {
		return err
	}
	return w.f.Sync()
}

// Close flushes and closes the file.
func (w *GridWriter) Close() error {
	if err := w.q.Flush(); err != nil {
		w.f.Close()
		return err
	}
	return w.f.Close()
}
