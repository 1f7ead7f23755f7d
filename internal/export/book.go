package export

import (
	"bufio"
	"fmt"
	"os"
	"strconv"

	"github.com/thyrook/puzzlemine/internal/extract"
)

// bookColumns is the book flow schema. Column order is part of the
// output contract; downstream sheets reference columns by position.
var bookColumns = []string{
	"page",
	"diagram_number",
	"players",
	"year",
	"solution_move",
	"solution_move_with_notation",
	"solution_full_move",
	"solution_full_text",
	"solution_turn",
	"fen",
	"api_turn",
	"image_path",
	"image_page",
	"header_page",
	"solution_page",
}

// BookWriter writes assembled diagrams to a CSV file. The file is
// truncated on open; the book flow always rewrites its full output.
type BookWriter struct {
	f *os.File
	q *quoteAllWriter
}

// NewBookWriter creates path, writes the BOM and header row, and
// returns a writer ready for diagram rows.
func NewBookWriter(path string) (*BookWriter, error) {
	f, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("create csv: %w", err)
	}
	if _, err := f.Write(utf8BOM); err != nil {
		f.Close()
		return nil, fmt.Errorf("write bom: %w", err)
	}

	q := newQuoteAllWriter(bufio.NewWriter(f))
	if err := q.WriteRow(bookColumns); err != nil {
		f.Close()
		return nil, fmt.Errorf("write header: %w", err)
	}
	return &BookWriter{f: f, q: q}, nil
}

// Write appends one diagram row. Absent values become empty fields.
func (w *BookWriter) Write(d *extract.Diagram) error {
	row := []string{
		strconv.Itoa(d.Page),
		d.DiagramNumber,
		d.Players,
		d.Year,
		d.SolutionMove,
		d.SolutionMoveAnnotated,
		d.SolutionFullMove,
		d.SolutionFullText,
		d.TurnFromText,
		d.FEN,
		d.TurnFromAPI,
		d.ImagePath,
		strconv.Itoa(d.ImagePage),
		strconv.Itoa(d.HeaderPage),
		strconv.Itoa(d.SolutionPage),
	}
	return w.q.WriteRow(row)
}

// Flush pushes buffered rows to disk.
func (w *BookWriter) Flush() error {
	return w.q.Flush()
}

// Close flushes and closes the file.
func (w *BookWriter) Close() error {
	if err := w.q.Flush(); err != nil {
		w.f.Close()
		return err
	}
	return w.f.Close()
}
