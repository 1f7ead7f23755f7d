package pdf

import (
	"fmt"
	"os"
	"sort"
	"strings"

	lpdf "github.com/ledongthuc/pdf"
	"go.uber.org/zap"
)

const (
	// Characters whose baselines sit within this many points of each
	// other belong to the same printed line.
	rowTolerance = 3.0

	// Horizontal gap, as a fraction of the font size, that separates
	// two words on a line.
	wordGapRatio = 0.3

	// Vertical gap, as a multiple of the font size, that separates two
	// paragraphs. Ordinary leading stays well below this.
	paragraphGapRatio = 1.8

	// US Letter height in points, used when a page carries no usable
	// MediaBox anywhere in its tree.
	defaultPageHeight = 792.0
)

// TextRegion is one paragraph of page text. Top is the distance of the
// region's first line from the top edge of the page, in points, so larger
// values sit lower on the page.
type TextRegion struct {
	Top  float64
	Text string
}

// Document wraps an open PDF and assembles its character-level content
// into ordered text regions.
type Document struct {
	path   string
	file   *os.File
	reader *lpdf.Reader
	log    *zap.Logger
}

// OpenDocument opens the PDF at path. The caller owns the returned
// Document and must Close it.
func OpenDocument(path string, log *zap.Logger) (*Document, error) {
	if log == nil {
		log = zap.NewNop()
	}
	f, r, err := lpdf.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open pdf %s: %w", path, err)
	}
	d := &Document{path: path, file: f, reader: r, log: log}
	log.Info("pdf opened",
		zap.String("path", path),
		zap.Int("pages", d.PageCount()))
	return d, nil
}

func (d *Document) Path() string { return d.path }

func (d *Document) PageCount() int { return d.reader.NumPage() }

func (d *Document) Close() error { return d.file.Close() }

// TextRegions returns the page's text grouped into paragraphs, ordered
// top to bottom. Lines inside a paragraph are joined with newlines, so a
// region's text always starts with its first printed line.
func (d *Document) TextRegions(pageNum int) ([]TextRegion, error) {
	if pageNum < 1 || pageNum > d.PageCount() {
		return nil, fmt.Errorf("page %d out of range 1..%d", pageNum, d.PageCount())
	}
	page := d.reader.Page(pageNum)
	if page.V.IsNull() {
		return nil, fmt.Errorf("page %d has no content", pageNum)
	}

	texts, err := pageTexts(page)
	if err != nil {
		return nil, fmt.Errorf("page %d: %w", pageNum, err)
	}

	height := pageHeight(page)
	lines := assembleLines(texts, height)
	return groupParagraphs(lines), nil
}

// pageTexts pulls the character list for a page. Content parsing panics
// on some malformed PDFs, so the panic is converted to an error and the
// page treated as unreadable.
func pageTexts(page lpdf.Page) (texts []lpdf.Text, err error) {
	defer func() {
		if r := recover(); r != nil {
			texts = nil
			err = fmt.Errorf("content parse failed: %v", r)
		}
	}()
	for _, t := range page.Content().Text {
		if strings.TrimSpace(t.S) == "" {
			continue
		}
		texts = append(texts, t)
	}
	return texts, nil
}

// pageHeight resolves the page height from the MediaBox, walking up the
// page tree for inherited boxes. Malformed documents fall back to US
// Letter.
func pageHeight(page lpdf.Page) float64 {
	defer func() {
		recover()
	}()
	node := page.V
	for i := 0; i < 10 && !node.IsNull(); i++ {
		box := node.Key("MediaBox")
		if !box.IsNull() && box.Kind() == lpdf.Array && box.Len() == 4 {
			if h := boxNumber(box.Index(3)) - boxNumber(box.Index(1)); h > 0 {
				return h
			}
		}
		node = node.Key("Parent")
	}
	return defaultPageHeight
}

func boxNumber(v lpdf.Value) float64 {
	switch v.Kind() {
	case lpdf.Integer:
		return float64(v.Int64())
	case lpdf.Real:
		return v.Float64()
	}
	return 0
}

// textLine is one assembled printed line.
type textLine struct {
	top      float64 // distance from the page top
	fontSize float64 // dominant font size on the line
	text     string
}

// assembleLines buckets characters into lines by baseline, then joins
// each line left to right, inserting spaces at word-sized gaps. PDF Y
// grows upward, so tops are converted to grow downward using the page
// height.
func assembleLines(texts []lpdf.Text, height float64) []textLine {
	if len(texts) == 0 {
		return nil
	}

	type rowBucket struct {
		yMin, yMax float64
		texts      []lpdf.Text
	}
	var rows []*rowBucket
	for _, t := range texts {
		var row *rowBucket
		for _, r := range rows {
			if t.Y >= r.yMin-rowTolerance && t.Y <= r.yMax+rowTolerance {
				row = r
				break
			}
		}
		if row == nil {
			rows = append(rows, &rowBucket{yMin: t.Y, yMax: t.Y, texts: []lpdf.Text{t}})
			continue
		}
		if t.Y < row.yMin {
			row.yMin = t.Y
		}
		if t.Y > row.yMax {
			row.yMax = t.Y
		}
		row.texts = append(row.texts, t)
	}

	// Higher Y means nearer the page top.
	sort.Slice(rows, func(i, j int) bool {
		return rows[i].yMax > rows[j].yMax
	})

	lines := make([]textLine, 0, len(rows))
	for _, row := range rows {
		sort.SliceStable(row.texts, func(i, j int) bool {
			return row.texts[i].X < row.texts[j].X
		})

		var sb strings.Builder
		var lastEnd, font float64
		for i, t := range row.texts {
			if t.FontSize > font {
				font = t.FontSize
			}
			if i > 0 {
				threshold := wordGapRatio * t.FontSize
				if threshold <= 0 {
					threshold = 3.0
				}
				if t.X-lastEnd > threshold {
					sb.WriteByte(' ')
				}
			}
			sb.WriteString(t.S)
			if end := t.X + t.W; end > lastEnd {
				lastEnd = end
			}
		}

		text := strings.TrimSpace(sb.String())
		if text == "" {
			continue
		}
		lines = append(lines, textLine{
			top:      height - row.yMax,
			fontSize: font,
			text:     text,
		})
	}
	return lines
}

// groupParagraphs merges consecutive lines into one region until the
// vertical gap exceeds the paragraph threshold for the preceding line's
// font size.
func groupParagraphs(lines []textLine) []TextRegion {
	if len(lines) == 0 {
		return nil
	}

	var regions []TextRegion
	cur := TextRegion{Top: lines[0].top, Text: lines[0].text}
	prev := lines[0]
	for _, line := range lines[1:] {
		breakGap := paragraphGapRatio * prev.fontSize
		if breakGap < 14.0 {
			breakGap = 14.0
		}
		if line.top-prev.top > breakGap {
			regions = append(regions, cur)
			cur = TextRegion{Top: line.top, Text: line.text}
		} else {
			cur.Text += "\n" + line.text
		}
		prev = line
	}
	regions = append(regions, cur)
	return regions
}
