// Package export writes extraction results as CSV for spreadsheet
// tools. Files carry a UTF-8 byte order mark and every field is
// quoted, with CRLF row endings.
package export

import (
	"bufio"
	"strings"
)

// utf8BOM marks the file as UTF-8 for spreadsheet imports.
var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// quoteAllWriter emits CSV rows with every field quoted. encoding/csv
// only quotes fields that need it, so the dialect is written by hand.
type quoteAllWriter struct {
	w *bufio.Writer
}

func newQuoteAllWriter(w *bufio.Writer) *quoteAllWriter {
	return &quoteAllWriter{w: w}
}

// WriteRow writes one record. Embedded quotes are doubled.
func (q *quoteAllWriter) WriteRow(fields []string) error {
	for i, f := range fields {
		if i > 0 {
			if err := q.w.WriteByte(','); err != nil {
				return err
			}
		}
		if err := q.w.WriteByte('"'); err != nil {
			return err
		}
		if _, err := q.w.WriteString(strings.ReplaceAll(f, `"`, `""`)); err != nil {
			return err
		}
		if err := q.w.WriteByte('"'); err != nil {
			return err
		}
	}
	_, err := q.w.WriteString("\r\n")
	return err
}

func (q *quoteAllWriter) Flush() error {
	return q.w.Flush()
}
