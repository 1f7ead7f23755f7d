package pdf

import (
	"strings"
	"testing"

	lpdf "github.com/ledongthuc/pdf"
)

func TestAssembleLinesJoinsCharacters(t *testing.T) {
	// "27." then a word gap then "Tal", all on one baseline.
	texts := []lpdf.Text{
		{S: "2", X: 100, Y: 700, W: 6, FontSize: 10},
		{S: "7", X: 106, Y: 700, W: 6, FontSize: 10},
		{S: ".", X: 112, Y: 700, W: 3, FontSize: 10},
		{S: "T", X: 125, Y: 700, W: 7, FontSize: 10},
		{S: "a", X: 132, Y: 700, W: 6, FontSize: 10},
		{S: "l", X: 138, Y: 700, W: 3, FontSize: 10},
	}

	lines := assembleLines(texts, 792)
	if len(lines) != 1 {
		t.Fatalf("Expected 1 line, got %d", len(lines))
	}
	if lines[0].text != "27. Tal" {
		t.Errorf("Expected %q, got %q", "27. Tal", lines[0].text)
	}
	if lines[0].top != 92 {
		t.Errorf("Expected top 92, got %f", lines[0].top)
	}
}

func TestAssembleLinesSortsWithinLine(t *testing.T) {
	texts := []lpdf.Text{
		{S: "b", X: 110, Y: 500, W: 6, FontSize: 10},
		{S: "a", X: 104, Y: 500, W: 6, FontSize: 10},
	}

	lines := assembleLines(texts, 792)
	if len(lines) != 1 || lines[0].text != "ab" {
		t.Fatalf("Expected characters reordered by X into %q, got %+v", "ab", lines)
	}
}

func TestAssembleLinesOrdersTopToBottom(t *testing.T) {
	// Higher PDF Y sits nearer the page top, so it must come first.
	texts := []lpdf.Text{
		{S: "lower", X: 100, Y: 200, W: 30, FontSize: 10},
		{S: "upper", X: 100, Y: 700, W: 30, FontSize: 10},
	}

	lines := assembleLines(texts, 792)
	if len(lines) != 2 {
		t.Fatalf("Expected 2 lines, got %d", len(lines))
	}
	if lines[0].text != "upper" || lines[1].text != "lower" {
		t.Errorf("Expected top-down order [upper lower], got [%s %s]", lines[0].text, lines[1].text)
	}
	if lines[0].top >= lines[1].top {
		t.Errorf("Expected tops increasing down the page, got %f then %f", lines[0].top, lines[1].top)
	}
}

func TestAssembleLinesToleratesBaselineJitter(t *testing.T) {
	texts := []lpdf.Text{
		{S: "a", X: 100, Y: 700, W: 6, FontSize: 10},
		{S: "b", X: 106, Y: 701.5, W: 6, FontSize: 10},
		{S: "c", X: 112, Y: 698.9, W: 6, FontSize: 10},
	}

	lines := assembleLines(texts, 792)
	if len(lines) != 1 {
		t.Fatalf("Expected jittered baselines to share one line, got %d lines", len(lines))
	}
	if lines[0].text != "abc" {
		t.Errorf("Expected %q, got %q", "abc", lines[0].text)
	}
}

func TestAssembleLinesSkipsBlankCharacters(t *testing.T) {
	texts := []lpdf.Text{
		{S: " ", X: 100, Y: 700, W: 3, FontSize: 10},
		{S: "\n", X: 103, Y: 700, W: 0, FontSize: 10},
	}
	if lines := assembleLines(texts, 792); len(lines) != 0 {
		t.Errorf("Expected no lines from whitespace-only content, got %d", len(lines))
	}
	if lines := assembleLines(nil, 792); lines != nil {
		t.Errorf("Expected nil for empty input, got %v", lines)
	}
}

func TestGroupParagraphsMergesAdjacentLines(t *testing.T) {
	lines := []textLine{
		{top: 100, fontSize: 10, text: "8.f3! A strong reply keeping the"},
		{top: 112, fontSize: 10, text: "bishop locked out of play."},
	}

	regions := groupParagraphs(lines)
	if len(regions) != 1 {
		t.Fatalf("Expected 1 region, got %d", len(regions))
	}
	want := "8.f3! A strong reply keeping the\nbishop locked out of play."
	if regions[0].Text != want {
		t.Errorf("Expected %q, got %q", want, regions[0].Text)
	}
	if regions[0].Top != 100 {
		t.Errorf("Expected region top 100, got %f", regions[0].Top)
	}
}

func TestGroupParagraphsSplitsOnLargeGap(t *testing.T) {
	lines := []textLine{
		{top: 100, fontSize: 10, text: "27. Keres – Fine, Ostend 1937"},
		{top: 400, fontSize: 10, text: "27...Rxe3"},
	}

	regions := groupParagraphs(lines)
	if len(regions) != 2 {
		t.Fatalf("Expected 2 regions, got %d", len(regions))
	}
	if strings.Contains(regions[0].Text, "Rxe3") {
		t.Error("Expected the solution line in its own region")
	}
	if regions[1].Top != 400 {
		t.Errorf("Expected second region top 400, got %f", regions[1].Top)
	}
}

func TestGroupParagraphsEmpty(t *testing.T) {
	if regions := groupParagraphs(nil); regions != nil {
		t.Errorf("Expected nil regions for no lines, got %v", regions)
	}
}
