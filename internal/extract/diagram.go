package extract

import "strconv"

// Diagram is one assembled puzzle record. Empty string fields mean the
// corresponding source block was absent or an external call failed.
// TurnFromText and TurnFromAPI come from independent sources and are both
// kept even when they disagree.
type Diagram struct {
	Page          int
	DiagramNumber string
	Players       string
	Year          string

	SolutionMove          string
	SolutionMoveAnnotated string
	SolutionFullMove      string
	SolutionFullText      string
	TurnFromText          string

	FEN         string
	TurnFromAPI string

	ImagePath    string
	ImagePage    int
	HeaderPage   int
	SolutionPage int
}

// BuildDiagram parses a correlated candidate into a diagram record. Page is
// the header's page when a header exists, otherwise the image's. FEN,
// TurnFromAPI and the persisted ImagePath are filled later by the caller.
func BuildDiagram(c Candidate, p *Patterns) *Diagram {
	d := &Diagram{}
	if c.Image != nil {
		d.Page = c.Image.Page
		d.ImagePage = c.Image.Page
		d.ImagePath = c.Image.ImagePath
	}
	if c.Header != nil {
		d.HeaderPage = c.Header.Page
		d.Page = c.Header.Page
		if h, ok := p.MatchHeader(c.Header.Text); ok {
			d.DiagramNumber = strconv.Itoa(h.Number)
			d.Players = h.Players()
			d.Year = h.Year
		}
	}
	if c.Solution != nil {
		d.SolutionPage = c.Solution.Page
		if s, ok := p.ParseSolution(c.Solution.Text); ok {
			d.SolutionMove = s.MoveClean
			d.SolutionMoveAnnotated = s.MoveAnnotated
			d.SolutionFullMove = s.FullMove
			d.SolutionFullText = s.FullText
			d.TurnFromText = s.Turn
		}
	}
	return d
}
