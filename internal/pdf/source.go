package pdf

import (
	"context"

	"go.uber.org/zap"

	"github.com/thyrook/puzzlemine/internal/extract"
)

// Figure is a probable diagram cropped from a rendered page, with its
// pixel bounds on that rendering.
type Figure struct {
	Path string
	X    int
	Y    int
	W    int
	H    int
}

// FigureFinder locates probable diagram figures on a rendered page image
// and writes each crop to disk. The page number is used for naming.
type FigureFinder interface {
	FindFigures(imagePath string, page int) ([]Figure, error)
}

// TextSource provides per-page text regions, normally a Document.
type TextSource interface {
	PageCount() int
	TextRegions(page int) ([]TextRegion, error)
}

// PageRenderer rasterizes pages to image files, normally a Renderer.
type PageRenderer interface {
	RenderPage(ctx context.Context, page int) (string, error)
}

// RegionSource feeds the block stream: text regions come from the PDF's
// own content, image regions from figures detected on the rendered page.
// Figure pixel offsets are scaled back to points so both kinds interleave
// in reading order.
type RegionSource struct {
	doc      TextSource
	renderer PageRenderer
	finder   FigureFinder
	dpi      int
	log      *zap.Logger
}

func NewRegionSource(doc TextSource, renderer PageRenderer, finder FigureFinder, dpi int, log *zap.Logger) *RegionSource {
	if log == nil {
		log = zap.NewNop()
	}
	if dpi <= 0 {
		dpi = 144
	}
	return &RegionSource{doc: doc, renderer: renderer, finder: finder, dpi: dpi, log: log}
}

func (s *RegionSource) PageCount() int { return s.doc.PageCount() }

// Regions returns the page's text and figure regions. Any failure makes
// the whole page unreadable; the stream builder logs and skips it.
func (s *RegionSource) Regions(ctx context.Context, page int) ([]extract.Region, error) {
	textRegions, err := s.doc.TextRegions(page)
	if err != nil {
		return nil, err
	}

	regions := make([]extract.Region, 0, len(textRegions)+2)
	for _, tr := range textRegions {
		regions = append(regions, extract.Region{
			Kind: extract.TextBlock,
			Y:    tr.Top,
			Text: tr.Text,
		})
	}

	if s.renderer == nil || s.finder == nil {
		return regions, nil
	}

	imagePath, err := s.renderer.RenderPage(ctx, page)
	if err != nil {
		return nil, err
	}
	figures, err := s.finder.FindFigures(imagePath, page)
	if err != nil {
		return nil, err
	}

	scale := 72.0 / float64(s.dpi)
	for _, fig := range figures {
		regions = append(regions, extract.Region{
			Kind:      extract.ImageBlock,
			Y:         float64(fig.Y) * scale,
			ImagePath: fig.Path,
		})
	}

	s.log.Debug("page regions",
		zap.Int("page", page),
		zap.Int("text_blocks", len(textRegions)),
		zap.Int("image_blocks", len(figures)))
	return regions, nil
}
