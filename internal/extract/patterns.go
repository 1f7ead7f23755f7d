package extract

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

// Default recognizers, tuned for headers like
// "27. Alekhine – Nimzowitsch, New York 1927" and solution lines like
// "8.f3! A nice set-up..." or "22...Bxh2+!". Books with a different
// typographic convention override these through configuration.
const (
	DefaultHeaderPattern   = `(\d+)\.\s*([A-Z][a-zA-Z'\-]+(?:\s+[A-Z][a-zA-Z'\-]+)*)\s*[–—-]\s*([A-Z][a-zA-Z'\-]+(?:\s+[A-Z][a-zA-Z'\-]+)*)\s*,.*?(\d{4})`
	DefaultSolutionPattern = `^\s*(\d+)(\.{1,3})\s*([a-hKQRBNO0-9][^\n]*)`
)

// HeaderMatch holds the captures of a diagram header line.
type HeaderMatch struct {
	Number int
	White  string
	Black  string
	Year   string
}

// Players renders the matched pair as "White - Black" with a plain hyphen
// regardless of the dash variant in the source text.
func (h *HeaderMatch) Players() string {
	return h.White + " - " + h.Black
}

// Key is the dedup identity of a header within one run.
func (h *HeaderMatch) Key() string {
	return fmt.Sprintf("%d_%s_%s", h.Number, h.Players(), h.Year)
}

// SolutionMatch holds the raw captures of a solution line. Raw is the
// entire matched region of the trimmed text.
type SolutionMatch struct {
	MoveNumber int
	Dots       string
	MoveBody   string
	Raw        string
}

// Patterns bundles the two configurable recognizers. Matching is purely
// syntactic; neither recognizer validates chess semantics.
type Patterns struct {
	header   *regexp.Regexp
	solution *regexp.Regexp
}

// CompilePatterns builds the recognizer pair. An expression that fails to
// compile is a configuration error and must halt startup.
func CompilePatterns(headerExpr, solutionExpr string) (*Patterns, error) {
	if headerExpr == "" {
		headerExpr = DefaultHeaderPattern
	}
	if solutionExpr == "" {
		solutionExpr = DefaultSolutionPattern
	}

	header, err := regexp.Compile(headerExpr)
	if err != nil {
		return nil, fmt.Errorf("invalid header pattern: %w", err)
	}
	solution, err := regexp.Compile(solutionExpr)
	if err != nil {
		return nil, fmt.Errorf("invalid solution pattern: %w", err)
	}
	return &Patterns{header: header, solution: solution}, nil
}

// MatchHeader applies the header recognizer to trimmed block text. The
// expression must expose four capture groups: number, white, black, year.
func (p *Patterns) MatchHeader(text string) (*HeaderMatch, bool) {
	m := p.header.FindStringSubmatch(strings.TrimSpace(text))
	if m == nil || len(m) < 5 {
		return nil, false
	}
	num, err := strconv.Atoi(m[1])
	if err != nil {
		return nil, false
	}
	return &HeaderMatch{
		Number: num,
		White:  strings.TrimSpace(m[2]),
		Black:  strings.TrimSpace(m[3]),
		Year:   m[4],
	}, true
}

// MatchSolution applies the solution recognizer to trimmed block text. The
// expression must expose three capture groups: move number, dot run, body.
func (p *Patterns) MatchSolution(text string) (*SolutionMatch, bool) {
	m := p.solution.FindStringSubmatch(strings.TrimSpace(text))
	if m == nil || len(m) < 4 {
		return nil, false
	}
	num, err := strconv.Atoi(m[1])
	if err != nil {
		return nil, false
	}
	return &SolutionMatch{
		MoveNumber: num,
		Dots:       m[2],
		MoveBody:   strings.TrimSpace(m[3]),
		Raw:        strings.TrimSpace(m[0]),
	}, true
}

// IsHeader reports whether the text is a diagram header line.
func (p *Patterns) IsHeader(text string) bool {
	_, ok := p.MatchHeader(text)
	return ok
}

// IsSolution reports whether the text is a solution line.
func (p *Patterns) IsSolution(text string) bool {
	_, ok := p.MatchSolution(text)
	return ok
}
