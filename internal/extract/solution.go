package extract

import "strings"

// fullMovePrefixLen bounds SolutionFullMove for compact display. The full
// block text is always preserved unbounded in SolutionFullText.
const fullMovePrefixLen = 80

// TurnWhite and TurnBlack are the side-to-move values derived from the dot
// run of a solution line: "8.f3" is a white move, "22...Bxh2" a black reply.
const (
	TurnWhite = "white"
	TurnBlack = "black"
)

// annotationGlyphs is the fixed removal table applied to the annotated move.
// Evaluation marks, strategic arrows and typesetting glyphs are stripped;
// check (+), mate (#) and promotion (=) survive because they are part of the
// move itself.
var annotationGlyphs = []string{
	"!", "?",
	"±", "∓", "∞", "†", "‡", "≠", "≡", "½", "…", "μ",
	"↑", "↓", "→", "←", "↗", "↘", "↙", "↖", "⇄",
	"⊕", "⊖", "⊗", "⊙", "△", "▲", "▼", "⌚", "□", "○",
}

// Solution is the parsed form of a solution block.
type Solution struct {
	MoveNumber    int
	Turn          string // TurnWhite or TurnBlack
	MoveAnnotated string // first token of the move body, glyphs intact
	MoveClean     string // annotated move after glyph stripping
	FullMove      string // bounded prefix of the matched region
	FullText      string // entire block text, byte-identical
}

// ParseSolution extracts the normalized solution fields from a block's text.
// Returns false when the text does not match the solution pattern.
func (p *Patterns) ParseSolution(text string) (*Solution, bool) {
	m, ok := p.MatchSolution(text)
	if !ok {
		return nil, false
	}

	turn := TurnBlack
	if len(m.Dots) == 1 {
		turn = TurnWhite
	}

	annotated := m.MoveBody
	if fields := strings.Fields(m.MoveBody); len(fields) > 0 {
		annotated = fields[0]
	}

	full := m.Raw
	if runes := []rune(full); len(runes) > fullMovePrefixLen {
		full = string(runes[:fullMovePrefixLen])
	}

	return &Solution{
		MoveNumber:    m.MoveNumber,
		Turn:          turn,
		MoveAnnotated: annotated,
		MoveClean:     StripAnnotations(annotated),
		FullMove:      full,
		FullText:      text,
	}, true
}

// StripAnnotations removes the glyphs of the removal table from a move and
// then drops anything outside plain algebraic notation characters.
func StripAnnotations(move string) string {
	for _, g := range annotationGlyphs {
		move = strings.ReplaceAll(move, g, "")
	}

	var b strings.Builder
	b.Grow(len(move))
	for _, r := range move {
		switch {
		case r >= 'a' && r <= 'z',
			r >= 'A' && r <= 'Z',
			r >= '0' && r <= '9',
			r == '-', r == '=', r == '+', r == '#':
			b.WriteRune(r)
		}
	}
	return b.String()
}
