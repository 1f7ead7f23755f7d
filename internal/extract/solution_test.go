package extract

import (
	"strings"
	"testing"
	"unicode/utf8"
)

func TestParseSolutionWhiteMove(t *testing.T) {
	p, err := CompilePatterns("", "")
	if err != nil {
		t.Fatalf("Failed to compile patterns: %v", err)
	}

	s, ok := p.ParseSolution("8.f3! A nice set-up for the kingside attack.")
	if !ok {
		t.Fatal("Expected a solution match")
	}
	if s.MoveNumber != 8 {
		t.Errorf("Expected move number 8, got %d", s.MoveNumber)
	}
	if s.Turn != TurnWhite {
		t.Errorf("Expected turn %q, got %q", TurnWhite, s.Turn)
	}
	if s.MoveAnnotated != "f3!" {
		t.Errorf("Expected annotated move %q, got %q", "f3!", s.MoveAnnotated)
	}
	if s.MoveClean != "f3" {
		t.Errorf("Expected clean move %q, got %q", "f3", s.MoveClean)
	}
}

func TestParseSolutionBlackMove(t *testing.T) {
	p, err := CompilePatterns("", "")
	if err != nil {
		t.Fatalf("Failed to compile patterns: %v", err)
	}

	s, ok := p.ParseSolution("22...Bxh2+!")
	if !ok {
		t.Fatal("Expected a solution match")
	}
	if s.MoveNumber != 22 {
		t.Errorf("Expected move number 22, got %d", s.MoveNumber)
	}
	if s.Turn != TurnBlack {
		t.Errorf("Expected turn %q, got %q", TurnBlack, s.Turn)
	}
	if s.MoveAnnotated != "Bxh2+!" {
		t.Errorf("Expected annotated move %q, got %q", "Bxh2+!", s.MoveAnnotated)
	}
	if s.MoveClean != "Bxh2+" {
		t.Errorf("Expected clean move %q, got %q", "Bxh2+", s.MoveClean)
	}
}

func TestParseSolutionTurns(t *testing.T) {
	p, err := CompilePatterns("", "")
	if err != nil {
		t.Fatalf("Failed to compile patterns: %v", err)
	}

	tests := []struct {
		name string
		text string
		turn string
	}{
		{"Single dot", "1.e4", TurnWhite},
		{"Three dots", "19...Rxd4 20.Qxd4 and the ending is lost.", TurnBlack},
		{"Two dots", "7..Nf6", TurnBlack},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s, ok := p.ParseSolution(tt.text)
			if !ok {
				t.Fatal("Expected a solution match")
			}
			if s.Turn != tt.turn {
				t.Errorf("Expected turn %q, got %q", tt.turn, s.Turn)
			}
		})
	}
}

func TestParseSolutionFullTextPreserved(t *testing.T) {
	p, err := CompilePatterns("", "")
	if err != nil {
		t.Fatalf("Failed to compile patterns: %v", err)
	}

	text := "  22...Bxh2+! 23.Kxh2 Ng4+ wins the queen. ± "
	s, ok := p.ParseSolution(text)
	if !ok {
		t.Fatal("Expected a solution match")
	}
	if s.FullText != text {
		t.Errorf("Expected full text preserved byte for byte, got %q", s.FullText)
	}
	if s.MoveClean != "Bxh2+" {
		t.Errorf("Expected clean move %q, got %q", "Bxh2+", s.MoveClean)
	}
}

func TestParseSolutionFullMovePrefix(t *testing.T) {
	p, err := CompilePatterns("", "")
	if err != nil {
		t.Fatalf("Failed to compile patterns: %v", err)
	}

	short, ok := p.ParseSolution("8.f3!")
	if !ok {
		t.Fatal("Expected a solution match")
	}
	if short.FullMove != "8.f3!" {
		t.Errorf("Expected short full move unchanged, got %q", short.FullMove)
	}

	long := "8.f3! " + strings.Repeat("The attack now plays itself. ", 10)
	s, ok := p.ParseSolution(long)
	if !ok {
		t.Fatal("Expected a solution match")
	}
	if n := utf8.RuneCountInString(s.FullMove); n > 80 {
		t.Errorf("Expected full move capped at 80 runes, got %d", n)
	}
	if !strings.HasPrefix(long, s.FullMove) {
		t.Errorf("Expected full move to be a prefix of the source text, got %q", s.FullMove)
	}
	if s.FullText != long {
		t.Error("Expected full text to keep the unbounded source text")
	}
}

func TestStripAnnotations(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"Bang", "f3!", "f3"},
		{"Double bang", "Qg6!!", "Qg6"},
		{"Dubious", "h4?!", "h4"},
		{"Check preserved", "Bxh2+!", "Bxh2+"},
		{"Mate preserved", "Qg7#", "Qg7#"},
		{"Promotion preserved", "exd8=Q+", "exd8=Q+"},
		{"Evaluation glyph", "Nf3±", "Nf3"},
		{"Castling", "O-O-O!?", "O-O-O"},
		{"Arrow", "Rg1↑", "Rg1"},
		{"Plain move untouched", "Nbd7", "Nbd7"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := StripAnnotations(tt.in); got != tt.want {
				t.Errorf("Expected %q, got %q", tt.want, got)
			}
		})
	}
}

func TestStripAnnotationsRemovesEveryTableGlyph(t *testing.T) {
	for _, g := range annotationGlyphs {
		got := StripAnnotations("Nf3" + g)
		if strings.Contains(got, g) {
			t.Errorf("Glyph %q survived stripping: %q", g, got)
		}
	}
}
