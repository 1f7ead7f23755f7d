package extract

import (
	"fmt"

	"go.uber.org/zap"
)

// Structure selects the expected layout of one diagram's blocks in the
// stream. It decides which role anchors the search and in which directions
// the remaining roles are looked for.
type Structure string

const (
	StructureHeaderImageSolution Structure = "header_image_solution"
	StructureImageHeaderSolution Structure = "image_header_solution"
	StructureHeaderSolutionImage Structure = "header_solution_image"
	StructureFlexible            Structure = "flexible"
)

// ParseStructure validates a configured structure name.
func ParseStructure(s string) (Structure, error) {
	switch Structure(s) {
	case StructureHeaderImageSolution, StructureImageHeaderSolution,
		StructureHeaderSolutionImage, StructureFlexible:
		return Structure(s), nil
	}
	return "", fmt.Errorf("unknown diagram structure %q", s)
}

// BoardChecker reports whether an image region depicts a chessboard. The
// square count doubles as a crude confidence. Implemented by the vision
// detector; kept narrow so assembly stays free of image dependencies.
type BoardChecker interface {
	IsChessboard(imagePath string) (bool, int, error)
}

// Candidate groups the blocks correlated for one diagram. Image is always
// present on an emitted candidate; Header and Solution may be nil.
type Candidate struct {
	Header   *Block
	Image    *Block
	Solution *Block
}

// AssembleStats counts per-run assembly outcomes for the end-of-run summary.
type AssembleStats struct {
	Anchors          int
	Emitted          int
	Partial          int
	DuplicateHeaders int
	NoiseDropped     int
	RejectedImages   int
	CheckErrors      int
}

// AssemblerConfig carries the tunables of one assembly run.
type AssemblerConfig struct {
	Structure   Structure
	MaxDistance int // search window radius in global indices
	MaxDiagrams int // 0 = unlimited
}

// Assembler correlates header/image/solution triplets over a block stream.
// One Assembler may run many times; all mutable state lives in a per-run
// context so runs are independent and repeatable.
type Assembler struct {
	patterns *Patterns
	checker  BoardChecker
	cfg      AssemblerConfig
	log      *zap.Logger
}

func NewAssembler(patterns *Patterns, checker BoardChecker, cfg AssemblerConfig, log *zap.Logger) *Assembler {
	if log == nil {
		log = zap.NewNop()
	}
	return &Assembler{patterns: patterns, checker: checker, cfg: cfg, log: log}
}

// runState is the mutable context of a single assembly pass.
type runState struct {
	used   map[int]bool // globalIndex -> consumed into a diagram
	boards map[int]bool // globalIndex -> board check verdict (cached)
	keys   map[string]bool
	stats  AssembleStats
}

func newRunState() *runState {
	return &runState{
		used:   make(map[int]bool),
		boards: make(map[int]bool),
		keys:   make(map[string]bool),
	}
}

// Assemble walks the stream once and emits candidates in stream order. The
// slice must be as produced by StreamBuilder.Build: GlobalIndex equal to
// slice position. Running Assemble twice over the same stream yields the
// same candidates.
func (a *Assembler) Assemble(blocks []Block) ([]Candidate, AssembleStats) {
	st := newRunState()
	var out []Candidate

	for i := range blocks {
		if a.cfg.MaxDiagrams > 0 && len(out) >= a.cfg.MaxDiagrams {
			a.log.Info("diagram limit reached", zap.Int("max_diagrams", a.cfg.MaxDiagrams))
			break
		}
		b := &blocks[i]
		if st.used[b.GlobalIndex] {
			continue
		}
		c, ok := a.anchor(blocks, st, b)
		if !ok {
			continue
		}

		for _, blk := range []*Block{c.Header, c.Image, c.Solution} {
			if blk != nil {
				st.used[blk.GlobalIndex] = true
			}
		}
		if c.Header != nil {
			if h, ok := a.patterns.MatchHeader(c.Header.Text); ok {
				st.keys[h.Key()] = true
			}
		}
		if c.Header == nil || c.Solution == nil {
			st.stats.Partial++
		}
		st.stats.Emitted++
		out = append(out, c)

		a.log.Info("diagram assembled",
			zap.Int("anchor_index", b.GlobalIndex),
			zap.Int("image_page", c.Image.Page),
			zap.Bool("has_header", c.Header != nil),
			zap.Bool("has_solution", c.Solution != nil))
	}

	return out, st.stats
}

// anchor attempts to start a diagram at block b per the configured structure.
func (a *Assembler) anchor(blocks []Block, st *runState, b *Block) (Candidate, bool) {
	switch a.cfg.Structure {
	case StructureImageHeaderSolution:
		return a.fromImage(blocks, st, b)
	case StructureHeaderSolutionImage:
		return a.fromHeader(blocks, st, b, true)
	case StructureFlexible:
		return a.flexible(blocks, st, b)
	default:
		return a.fromHeader(blocks, st, b, false)
	}
}

// fromHeader anchors on a header block. With solutionFirst the forward
// search runs header -> solution -> image, otherwise header -> image ->
// solution; each leg's window restarts at the block just found.
func (a *Assembler) fromHeader(blocks []Block, st *runState, b *Block, solutionFirst bool) (Candidate, bool) {
	if b.Kind != TextBlock {
		return Candidate{}, false
	}
	h, ok := a.patterns.MatchHeader(b.Text)
	if !ok {
		return Candidate{}, false
	}
	if st.keys[h.Key()] {
		st.stats.DuplicateHeaders++
		return Candidate{}, false
	}
	st.stats.Anchors++

	d := a.cfg.MaxDistance
	c := Candidate{Header: b}
	if solutionFirst {
		c.Solution = nearest(blocks, b.GlobalIndex, 0, d, a.acceptSolution(st))
		if c.Solution == nil {
			return Candidate{}, false
		}
		c.Image = nearest(blocks, c.Solution.GlobalIndex, 0, d, a.acceptImage(st))
	} else {
		c.Image = nearest(blocks, b.GlobalIndex, 0, d, a.acceptImage(st))
		if c.Image != nil {
			c.Solution = nearest(blocks, c.Image.GlobalIndex, 0, d, a.acceptSolution(st))
		}
	}
	if c.Image == nil {
		return Candidate{}, false
	}
	return c, true
}

// fromImage anchors on a validated chessboard image, searching backward for
// the header and forward for the solution. An image with neither is noise.
func (a *Assembler) fromImage(blocks []Block, st *runState, b *Block) (Candidate, bool) {
	if b.Kind != ImageBlock || !a.isBoard(st, b) {
		return Candidate{}, false
	}
	st.stats.Anchors++

	d := a.cfg.MaxDistance
	c := Candidate{Image: b}
	c.Header = nearest(blocks, b.GlobalIndex, d, 0, a.acceptHeader(st))
	c.Solution = nearest(blocks, b.GlobalIndex, 0, d, a.acceptSolution(st))
	if c.Header == nil && c.Solution == nil {
		st.stats.NoiseDropped++
		return Candidate{}, false
	}
	return c, true
}

// flexible anchors on whichever role appears first in stream order and
// searches both directions independently for the remaining roles.
func (a *Assembler) flexible(blocks []Block, st *runState, b *Block) (Candidate, bool) {
	var c Candidate
	switch {
	case b.Kind == ImageBlock && a.isBoard(st, b):
		c.Image = b
	case b.Kind == TextBlock:
		if h, ok := a.patterns.MatchHeader(b.Text); ok {
			if st.keys[h.Key()] {
				st.stats.DuplicateHeaders++
				return Candidate{}, false
			}
			c.Header = b
		} else if a.patterns.IsSolution(b.Text) {
			c.Solution = b
		} else {
			return Candidate{}, false
		}
	default:
		return Candidate{}, false
	}
	st.stats.Anchors++

	from, d := b.GlobalIndex, a.cfg.MaxDistance
	if c.Header == nil {
		c.Header = nearest(blocks, from, d, d, a.acceptHeader(st))
	}
	if c.Image == nil {
		c.Image = nearest(blocks, from, d, d, a.acceptImage(st))
	}
	if c.Solution == nil {
		c.Solution = nearest(blocks, from, d, d, a.acceptSolution(st))
	}

	if c.Image == nil {
		return Candidate{}, false
	}
	if c.Header == nil && c.Solution == nil {
		st.stats.NoiseDropped++
		return Candidate{}, false
	}
	return c, true
}

// nearest returns the admissible block closest to from by absolute global
// index distance, scanning up to back positions backward and fwd positions
// forward. Backward candidates are probed first at each distance so the
// earlier index wins ties.
func nearest(blocks []Block, from, back, fwd int, accept func(*Block) bool) *Block {
	max := fwd
	if back > max {
		max = back
	}
	for d := 1; d <= max; d++ {
		if d <= back {
			if i := from - d; i >= 0 {
				if b := &blocks[i]; accept(b) {
					return b
				}
			}
		}
		if d <= fwd {
			if i := from + d; i < len(blocks) {
				if b := &blocks[i]; accept(b) {
					return b
				}
			}
		}
	}
	return nil
}

func (a *Assembler) acceptHeader(st *runState) func(*Block) bool {
	return func(b *Block) bool {
		if b.Kind != TextBlock || st.used[b.GlobalIndex] {
			return false
		}
		h, ok := a.patterns.MatchHeader(b.Text)
		if !ok {
			return false
		}
		return !st.keys[h.Key()]
	}
}

func (a *Assembler) acceptSolution(st *runState) func(*Block) bool {
	return func(b *Block) bool {
		if b.Kind != TextBlock || st.used[b.GlobalIndex] {
			return false
		}
		return a.patterns.IsSolution(b.Text)
	}
}

func (a *Assembler) acceptImage(st *runState) func(*Block) bool {
	return func(b *Block) bool {
		if b.Kind != ImageBlock || st.used[b.GlobalIndex] {
			return false
		}
		return a.isBoard(st, b)
	}
}

// isBoard consults the board checker once per block and caches the verdict
// for the rest of the run. A checker error counts as a rejection; per-item
// failures never abort assembly.
func (a *Assembler) isBoard(st *runState, b *Block) bool {
	if v, ok := st.boards[b.GlobalIndex]; ok {
		return v
	}
	ok, squares, err := a.checker.IsChessboard(b.ImagePath)
	if err != nil {
		st.stats.CheckErrors++
		a.log.Warn("board check failed",
			zap.Int("global_index", b.GlobalIndex),
			zap.String("image", b.ImagePath),
			zap.Error(err))
		ok = false
	} else if !ok {
		st.stats.RejectedImages++
		a.log.Debug("image rejected",
			zap.Int("global_index", b.GlobalIndex),
			zap.Int("squares", squares))
	}
	st.boards[b.GlobalIndex] = ok
	return ok
}
