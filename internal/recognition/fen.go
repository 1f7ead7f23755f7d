package recognition

import (
	"strings"

	"github.com/notnil/chess"
)

// NormalizeFEN pads a board-only FEN with default clock and castling
// fields. The recognition service often returns just the piece
// placement; a full six-field string is needed for replay tools.
func NormalizeFEN(fen string) string {
	fen = strings.TrimSpace(fen)
	if fen == "" {
		return fen
	}
	fields := strings.Fields(fen)
	defaults := []string{"", "w", "-", "-", "0", "1"}
	for len(fields) < 6 {
		fields = append(fields, defaults[len(fields)])
	}
	return strings.Join(fields, " ")
}

// ValidFEN reports whether fen describes a legal position after
// normalization. A syntactically broken or impossible position fails.
func ValidFEN(fen string) bool {
	if strings.TrimSpace(fen) == "" {
		return false
	}
	_, err := chess.FEN(NormalizeFEN(fen))
	return err == nil
}

// SideToMove extracts the side-to-move field from fen. Returns "white"
// or "black" and true when the field is present and well formed.
func SideToMove(fen string) (string, bool) {
	fields := strings.Fields(strings.TrimSpace(fen))
	if len(fields) < 2 {
		return "", false
	}
	switch fields[1] {
	case "w":
		return "white", true
	case "b":
		return "black", true
	}
	return "", false
}
