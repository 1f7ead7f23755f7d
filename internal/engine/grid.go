package engine

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/thyrook/puzzlemine/internal/config"
	"github.com/thyrook/puzzlemine/internal/recognition"
	"github.com/thyrook/puzzlemine/internal/storage"
	"github.com/thyrook/puzzlemine/internal/vision"
)

// PageAnalyzer divides a rendered page into grid sections. Satisfied by
// vision.GridAnalyzer.
type PageAnalyzer interface {
	AnalyzePage(imagePath string, page int) ([]vision.SectionImage, error)
}

// DigitReader reads printed digits from PNG crops. Satisfied by
// ocr.Reader.
type DigitReader interface {
	ReadDigit(png []byte) (int, error)
	ReadNumber(png []byte) (int, error)
}

// SectionSink receives per-cell records, typically the append-mode CSV
// writer. Flush is called after every page so interrupted runs keep
// their completed pages.
type SectionSink interface {
	Write(rec *storage.SectionRecord) error
	Flush() error
}

// GridRunner drives the extraction flow for books with a fixed page
// layout of numbered puzzle cells.
type GridRunner struct {
	cfg      *config.Config
	source   vision.PageSource
	analyzer PageAnalyzer
	checker  BoardChecker
	reader   DigitReader
	rec      Recognizer
	store    *storage.RecordStore
	sink     SectionSink
	log      *zap.Logger
}

// NewGridRunner prepares a grid runner. reader, rec, store and sink may
// be nil; the matching steps are then skipped.
func NewGridRunner(cfg *config.Config, source vision.PageSource, analyzer PageAnalyzer, checker BoardChecker, reader DigitReader, rec Recognizer, store *storage.RecordStore, sink SectionSink, log *zap.Logger) *GridRunner {
	if log == nil {
		log = zap.NewNop()
	}
	return &GridRunner{
		cfg:      cfg,
		source:   source,
		analyzer: analyzer,
		checker:  checker,
		reader:   reader,
		rec:      rec,
		store:    store,
		sink:     sink,
		log:      log,
	}
}

// Run processes the configured page range, resuming after the last page
// a previous run completed. The sink is flushed before the resume
// cursor advances, so a crash can repeat a page but never lose one.
func (r *GridRunner) Run(ctx context.Context) (GridStats, error) {
	start := time.Now()
	var stats GridStats
	defer func() { stats.Duration = time.Since(start) }()

	first := r.cfg.Grid.StartPage
	if first < 1 {
		first = 1
	}
	last := r.cfg.Grid.EndPage
	if last <= 0 || last > r.source.PageCount() {
		last = r.source.PageCount()
	}

	// Numbering stays anchored to the configured start so a resumed run
	// calculates the same numbers as an uninterrupted one.
	firstPuzzle := r.cfg.Grid.FirstPuzzlePage
	if firstPuzzle <= 0 {
		firstPuzzle = first
	}
	perPage := r.cfg.Grid.Rows * r.cfg.Grid.Columns

	runID := ""
	if r.store != nil {
		runID = r.store.RunID()
	}
	r.log.Info("grid run started",
		zap.String("run_id", runID),
		zap.Int("first_page", first),
		zap.Int("last_page", last))

	if r.store != nil {
		done, err := r.store.LastPage()
		if err != nil {
			return stats, fmt.Errorf("read resume cursor: %w", err)
		}
		if done >= first {
			top := done
			if top > last {
				top = last
			}
			stats.PagesSkipped = top - first + 1
			r.log.Info("resuming after previous run",
				zap.Int("last_page", done),
				zap.Int("skipped", stats.PagesSkipped))
			first = done + 1
		}
	}

	for page := first; page <= last; page++ {
		if err := ctx.Err(); err != nil {
			return stats, err
		}
		stats.PagesProcessed++

		imagePath, err := r.source.PageImage(ctx, page)
		if err != nil {
			if ctx.Err() != nil {
				return stats, ctx.Err()
			}
			r.log.Warn("skipping unreadable page",
				zap.Int("page", page),
				zap.Error(err))
			continue
		}
		sections, err := r.analyzer.AnalyzePage(imagePath, page)
		if err != nil {
			r.log.Warn("grid analysis failed",
				zap.Int("page", page),
				zap.Error(err))
			continue
		}

		for i := range sections {
			rec, err := r.section(ctx, &sections[i], firstPuzzle, perPage, &stats)
			if err != nil {
				return stats, err
			}
			if r.store != nil {
				if err := r.store.SaveSection(rec); err != nil {
					return stats, fmt.Errorf("save section: %w", err)
				}
			}
			if r.sink != nil {
				if err := r.sink.Write(rec); err != nil {
					return stats, fmt.Errorf("export section: %w", err)
				}
			}
		}

		if r.sink != nil {
			if err := r.sink.Flush(); err != nil {
				return stats, fmt.Errorf("flush sections: %w", err)
			}
		}
		if r.store != nil {
			if err := r.store.SetLastPage(page); err != nil {
				return stats, fmt.Errorf("advance resume cursor: %w", err)
			}
		}
		r.log.Info("page analyzed",
			zap.Int("page", page),
			zap.Int("sections", len(sections)))
	}

	r.log.Info("grid run finished",
		zap.Int("pages", stats.PagesProcessed),
		zap.Int("sections", stats.Sections),
		zap.Int("boards", stats.Boards))
	return stats, nil
}

// section turns one analyzed cell into a record: board check, bubble
// digits, printed number and recognition for accepted boards.
func (r *GridRunner) section(ctx context.Context, sec *vision.SectionImage, firstPuzzle, perPage int, stats *GridStats) (*storage.SectionRecord, error) {
	stats.Sections++
	rec := &storage.SectionRecord{
		Page:             sec.Page,
		Section:          sec.Index,
		Row:              sec.Row,
		Col:              sec.Col,
		CalculatedNumber: (sec.Page-firstPuzzle)*perPage + r.cfg.Grid.NumberBase + sec.Index,
		X1:               sec.Rect.Min.X,
		Y1:               sec.Rect.Min.Y,
		X2:               sec.Rect.Max.X,
		Y2:               sec.Rect.Max.Y,
	}

	board, squares, err := r.checker.IsChessboard(sec.BodyPath)
	if err != nil {
		r.log.Warn("board check failed",
			zap.Int("page", sec.Page),
			zap.Int("section", sec.Index),
			zap.Error(err))
	}
	rec.Board = board
	rec.Confidence = squares
	if board {
		stats.Boards++
	}

	for _, b := range sec.Bubbles {
		stats.Bubbles++
		br := storage.BubbleRecord{Fill: b.Fill.String()}
		if r.reader != nil && len(b.PNG) > 0 {
			if d, err := r.reader.ReadDigit(b.PNG); err != nil {
				stats.OCRMisses++
			} else {
				br.Digit = &d
			}
		}
		rec.Bubbles = append(rec.Bubbles, br)
	}

	if r.reader != nil && len(sec.NumberPNG) > 0 {
		if n, err := r.reader.ReadNumber(sec.NumberPNG); err != nil {
			stats.OCRMisses++
		} else {
			rec.DetectedNumber = &n
		}
	}
	if rec.DetectedNumber != nil && *rec.DetectedNumber != rec.CalculatedNumber {
		r.log.Debug("printed number disagrees with calculated",
			zap.Int("page", sec.Page),
			zap.Int("section", sec.Index),
			zap.Int("detected", *rec.DetectedNumber),
			zap.Int("calculated", rec.CalculatedNumber))
	}

	if board && r.rec != nil {
		res, err := r.rec.Recognize(ctx, sec.BodyPath)
		switch {
		case err == nil:
			rec.FEN = res.FEN
			rec.APITurn = res.Turn
			stats.Recognized++
		case errors.Is(err, recognition.ErrDisabled):
		case ctx.Err() != nil:
			return nil, ctx.Err()
		default:
			stats.RecognitionFailures++
			r.log.Warn("recognition failed",
				zap.Int("page", sec.Page),
				zap.Int("section", sec.Index),
				zap.Error(err))
		}
	}
	return rec, nil
}
