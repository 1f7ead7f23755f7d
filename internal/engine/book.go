// Package engine wires the pipeline stages into runnable workflows: the
// book flow correlates header, image and solution blocks into diagram
// records, the grid flow slices fixed layouts into per-cell records.
// Both persist through the record store and stream rows to a CSV sink.
package engine

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"go.uber.org/zap"

	"github.com/thyrook/puzzlemine/internal/config"
	"github.com/thyrook/puzzlemine/internal/extract"
	"github.com/thyrook/puzzlemine/internal/recognition"
	"github.com/thyrook/puzzlemine/internal/storage"
)

// Recognizer turns a board crop into a position. Implementations may be
// rate limited; Recognize blocks until its slot comes up or ctx ends.
type Recognizer interface {
	Recognize(ctx context.Context, imagePath string) (*recognition.Result, error)
}

// BoardChecker validates that an image crop shows a chessboard and
// reports how many square contours supported the call.
type BoardChecker interface {
	IsChessboard(imagePath string) (bool, int, error)
}

// DiagramSink receives finished diagram records, typically a CSV writer.
type DiagramSink interface {
	Write(d *extract.Diagram) error
}

// BookRunner drives the extraction flow for a book with scattered
// diagrams: block stream, assembly, recognition, persistence, export.
type BookRunner struct {
	cfg       *config.Config
	source    extract.PageRegions
	checker   BoardChecker
	rec       Recognizer
	store     *storage.RecordStore
	sink      DiagramSink
	patterns  *extract.Patterns
	structure extract.Structure
	log       *zap.Logger
}

// NewBookRunner compiles the configured patterns and prepares a runner.
// rec, store and sink may be nil; the matching steps are then skipped.
func NewBookRunner(cfg *config.Config, source extract.PageRegions, checker BoardChecker, rec Recognizer, store *storage.RecordStore, sink DiagramSink, log *zap.Logger) (*BookRunner, error) {
	if log == nil {
		log = zap.NewNop()
	}
	patterns, err := extract.CompilePatterns(cfg.Extraction.HeaderPattern, cfg.Extraction.SolutionPattern)
	if err != nil {
		return nil, err
	}
	structure, err := extract.ParseStructure(cfg.Extraction.Structure)
	if err != nil {
		return nil, err
	}
	return &BookRunner{
		cfg:       cfg,
		source:    source,
		checker:   checker,
		rec:       rec,
		store:     store,
		sink:      sink,
		patterns:  patterns,
		structure: structure,
		log:       log,
	}, nil
}

// Run processes the configured page range and returns the run totals.
// Store and sink failures abort the run; per-diagram recognition
// failures are counted and the diagram is kept without a position.
func (r *BookRunner) Run(ctx context.Context) (BookStats, error) {
	start := time.Now()
	var stats BookStats
	defer func() { stats.Duration = time.Since(start) }()

	first := r.cfg.Extraction.StartPage
	if first < 1 {
		first = 1
	}
	last := r.cfg.Extraction.EndPage
	if last <= 0 || last > r.source.PageCount() {
		last = r.source.PageCount()
	}

	runID := ""
	if r.store != nil {
		runID = r.store.RunID()
	}
	r.log.Info("book run started",
		zap.String("run_id", runID),
		zap.Int("first_page", first),
		zap.Int("last_page", last))

	blocks := extract.NewStreamBuilder(r.source, r.log).Build(ctx, first, last)
	if err := ctx.Err(); err != nil {
		return stats, err
	}
	if last >= first {
		stats.PagesProcessed = last - first + 1
	}
	stats.Blocks = len(blocks)

	asm := extract.NewAssembler(r.patterns, r.checker, extract.AssemblerConfig{
		Structure:   r.structure,
		MaxDistance: r.cfg.Extraction.MaxSearchDistance,
		MaxDiagrams: r.cfg.Extraction.MaxDiagrams,
	}, r.log)
	candidates, astats := asm.Assemble(blocks)
	stats.Emitted = astats.Emitted
	stats.Partial = astats.Partial
	stats.DuplicateHeaders = astats.DuplicateHeaders
	stats.NoiseDropped = astats.NoiseDropped
	stats.RejectedImages = astats.RejectedImages
	stats.CheckErrors = astats.CheckErrors

	for i, c := range candidates {
		if err := ctx.Err(); err != nil {
			return stats, err
		}
		d := extract.BuildDiagram(c, r.patterns)

		if r.cfg.Extraction.SaveImages && d.ImagePath != "" {
			kept, err := r.keepImage(d, i+1)
			if err != nil {
				r.log.Warn("could not keep diagram image",
					zap.String("image", d.ImagePath),
					zap.Error(err))
			} else {
				d.ImagePath = kept
			}
		}

		if r.rec != nil && d.ImagePath != "" {
			res, err := r.rec.Recognize(ctx, d.ImagePath)
			switch {
			case err == nil:
				d.FEN = res.FEN
				d.TurnFromAPI = res.Turn
				stats.Recognized++
			case errors.Is(err, recognition.ErrDisabled):
			case ctx.Err() != nil:
				return stats, ctx.Err()
			default:
				stats.RecognitionFailures++
				r.log.Warn("recognition failed",
					zap.String("image", d.ImagePath),
					zap.Error(err))
			}
		}

		if r.store != nil {
			if err := r.store.SaveDiagram(d); err != nil {
				return stats, fmt.Errorf("save diagram: %w", err)
			}
		}
		if r.sink != nil {
			if err := r.sink.Write(d); err != nil {
				return stats, fmt.Errorf("export diagram: %w", err)
			}
		}
		r.log.Info("diagram extracted",
			zap.Int("page", d.Page),
			zap.String("number", d.DiagramNumber),
			zap.String("move", d.SolutionMove))
	}

	r.log.Info("book run finished",
		zap.Int("pages", stats.PagesProcessed),
		zap.Int("blocks", stats.Blocks),
		zap.Int("diagrams", stats.Emitted))
	return stats, nil
}

// keepImage copies an accepted crop from the working render area into
// the images directory under a stable page and number based name.
func (r *BookRunner) keepImage(d *extract.Diagram, seq int) (string, error) {
	dir := r.cfg.ImagesDir()
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", err
	}
	data, err := os.ReadFile(d.ImagePath)
	if err != nil {
		return "", err
	}
	number := d.DiagramNumber
	if number == "" {
		number = fmt.Sprintf("x%03d", seq)
	}
	dst := filepath.Join(dir, fmt.Sprintf("page%03d_diagram_%s.png", d.Page, number))
	if err := os.WriteFile(dst, data, 0644); err != nil {
		return "", err
	}
	return dst, nil
}
