package extract

import "testing"

func TestMatchHeader(t *testing.T) {
	p, err := CompilePatterns("", "")
	if err != nil {
		t.Fatalf("Failed to compile default patterns: %v", err)
	}

	tests := []struct {
		name    string
		text    string
		match   bool
		number  int
		players string
		year    string
	}{
		{
			name:    "En dash header",
			text:    "27. Alekhine – Nimzowitsch, New York 1927",
			match:   true,
			number:  27,
			players: "Alekhine - Nimzowitsch",
			year:    "1927",
		},
		{
			name:    "Plain hyphen",
			text:    "5. Tal - Botvinnik, Moscow 1960",
			match:   true,
			number:  5,
			players: "Tal - Botvinnik",
			year:    "1960",
		},
		{
			name:    "Em dash with surrounding whitespace",
			text:    "  3. Spielmann — Tarrasch, Ostrava 1923  ",
			match:   true,
			number:  3,
			players: "Spielmann - Tarrasch",
			year:    "1923",
		},
		{
			name:    "Multi-word names",
			text:    "112. Van Wely – Den Berg, Wijk aan Zee 1995",
			match:   true,
			number:  112,
			players: "Van Wely - Den Berg",
			year:    "1995",
		},
		{
			name:  "Solution line is not a header",
			text:  "8.f3! A strong restricting move.",
			match: false,
		},
		{
			name:  "Prose is not a header",
			text:  "The rook lift decides the game.",
			match: false,
		},
		{
			name:  "Missing year",
			text:  "14. Keres – Fine, Ostend",
			match: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h, ok := p.MatchHeader(tt.text)
			if ok != tt.match {
				t.Fatalf("Expected match=%v, got %v", tt.match, ok)
			}
			if !ok {
				return
			}
			if h.Number != tt.number {
				t.Errorf("Expected number %d, got %d", tt.number, h.Number)
			}
			if h.Players() != tt.players {
				t.Errorf("Expected players %q, got %q", tt.players, h.Players())
			}
			if h.Year != tt.year {
				t.Errorf("Expected year %q, got %q", tt.year, h.Year)
			}
		})
	}
}

func TestMatchSolution(t *testing.T) {
	p, err := CompilePatterns("", "")
	if err != nil {
		t.Fatalf("Failed to compile default patterns: %v", err)
	}

	tests := []struct {
		name   string
		text   string
		match  bool
		number int
		dots   string
	}{
		{name: "White move", text: "8.f3! A nice set-up.", match: true, number: 8, dots: "."},
		{name: "Black move", text: "22...Bxh2+!", match: true, number: 22, dots: "..."},
		{name: "Space after dots", text: "10... Rxd4", match: true, number: 10, dots: "..."},
		{name: "Castling", text: "12.O-O-O!", match: true, number: 12, dots: "."},
		{name: "Header is not a solution", text: "27. Alekhine – Nimzowitsch, New York 1927", match: false},
		{name: "No move number", text: "Bxh2+ wins on the spot", match: false},
		{name: "Empty text", text: "   ", match: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m, ok := p.MatchSolution(tt.text)
			if ok != tt.match {
				t.Fatalf("Expected match=%v, got %v", tt.match, ok)
			}
			if !ok {
				return
			}
			if m.MoveNumber != tt.number {
				t.Errorf("Expected move number %d, got %d", tt.number, m.MoveNumber)
			}
			if m.Dots != tt.dots {
				t.Errorf("Expected dots %q, got %q", tt.dots, m.Dots)
			}
		})
	}
}

func TestHeaderKey(t *testing.T) {
	p, err := CompilePatterns("", "")
	if err != nil {
		t.Fatalf("Failed to compile default patterns: %v", err)
	}

	a, ok := p.MatchHeader("27. Alekhine – Nimzowitsch, New York 1927")
	if !ok {
		t.Fatal("Expected en dash header to match")
	}
	b, ok := p.MatchHeader("27. Alekhine - Nimzowitsch, New York 1927")
	if !ok {
		t.Fatal("Expected hyphen header to match")
	}
	if a.Key() != b.Key() {
		t.Errorf("Expected identical keys for dash variants, got %q and %q", a.Key(), b.Key())
	}

	c, ok := p.MatchHeader("28. Alekhine – Nimzowitsch, New York 1927")
	if !ok {
		t.Fatal("Expected header to match")
	}
	if a.Key() == c.Key() {
		t.Error("Expected different diagram numbers to produce different keys")
	}
}

func TestCompilePatternsInvalid(t *testing.T) {
	if _, err := CompilePatterns("(", ""); err == nil {
		t.Error("Expected error for invalid header pattern, got nil")
	}
	if _, err := CompilePatterns("", "["); err == nil {
		t.Error("Expected error for invalid solution pattern, got nil")
	}
}

func TestCompilePatternsCustom(t *testing.T) {
	p, err := CompilePatterns(`(\d+)\)\s+(\w+)\s+vs\s+(\w+).*?(\d{4})`, "")
	if err != nil {
		t.Fatalf("Failed to compile custom header pattern: %v", err)
	}

	h, ok := p.MatchHeader("14) Petrosian vs Spassky, 1966")
	if !ok {
		t.Fatal("Expected custom pattern to match")
	}
	if h.Number != 14 {
		t.Errorf("Expected number 14, got %d", h.Number)
	}
	if h.Players() != "Petrosian - Spassky" {
		t.Errorf("Expected players %q, got %q", "Petrosian - Spassky", h.Players())
	}
}
