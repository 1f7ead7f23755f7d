package extract

import (
	"context"
	"sort"

	"go.uber.org/zap"
)

// BlockKind distinguishes text regions from image regions.
type BlockKind int

const (
	TextBlock BlockKind = iota
	ImageBlock
)

func (k BlockKind) String() string {
	if k == ImageBlock {
		return "image"
	}
	return "text"
}

// Block is one text or image region of a page. GlobalIndex is assigned by
// the stream builder and is the only distance metric used during assembly.
type Block struct {
	Page        int // 1-based page number
	Index       int // position within the page
	GlobalIndex int // position within the whole document
	Kind        BlockKind
	Y           float64 // top edge, page coordinates, grows downward
	Text        string  // text blocks only
	ImagePath   string  // image blocks only: cropped region on disk
}

// Region is one page-local region before global ordering is assigned.
type Region struct {
	Kind      BlockKind
	Y         float64
	Text      string
	ImagePath string
}

// PageRegions supplies the per-page region lists of a document. Regions may
// arrive in any order within a page; the builder sorts them top to bottom.
// Implementations may render or shell out per page, hence the context.
type PageRegions interface {
	PageCount() int
	Regions(ctx context.Context, page int) ([]Region, error)
}

// StreamBuilder flattens a document into a single globally-indexed block
// sequence.
type StreamBuilder struct {
	src PageRegions
	log *zap.Logger
}

func NewStreamBuilder(src PageRegions, log *zap.Logger) *StreamBuilder {
	if log == nil {
		log = zap.NewNop()
	}
	return &StreamBuilder{src: src, log: log}
}

// Build walks pages startPage..endPage (1-based, inclusive; endPage <= 0
// means the last page) and emits one Block per region. Page order and
// intra-page top-to-bottom order are preserved; a page that fails to read
// contributes nothing and the walk continues. Cancelling the context stops
// the walk at the next page boundary.
func (b *StreamBuilder) Build(ctx context.Context, startPage, endPage int) []Block {
	total := b.src.PageCount()
	if startPage < 1 {
		startPage = 1
	}
	if endPage <= 0 || endPage > total {
		endPage = total
	}

	var blocks []Block
	for page := startPage; page <= endPage; page++ {
		if ctx.Err() != nil {
			b.log.Warn("page walk cancelled",
				zap.Int("page", page),
				zap.Error(ctx.Err()))
			break
		}
		regions, err := b.src.Regions(ctx, page)
		if err != nil {
			b.log.Warn("skipping unreadable page",
				zap.Int("page", page),
				zap.Error(err))
			continue
		}
		if len(regions) == 0 {
			continue
		}

		// Stable sort keeps the source's left-to-right order for
		// regions sharing a baseline.
		sort.SliceStable(regions, func(i, j int) bool {
			return regions[i].Y < regions[j].Y
		})

		for i, r := range regions {
			blocks = append(blocks, Block{
				Page:        page,
				Index:       i,
				GlobalIndex: len(blocks),
				Kind:        r.Kind,
				Y:           r.Y,
				Text:        r.Text,
				ImagePath:   r.ImagePath,
			})
		}
	}

	b.log.Info("block stream built",
		zap.Int("start_page", startPage),
		zap.Int("end_page", endPage),
		zap.Int("blocks", len(blocks)))
	return blocks
}
