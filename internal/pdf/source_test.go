package pdf

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"github.com/thyrook/puzzlemine/internal/extract"
)

type fakeDoc struct {
	count   int
	regions map[int][]TextRegion
	err     error
}

func (f *fakeDoc) PageCount() int { return f.count }

func (f *fakeDoc) TextRegions(page int) ([]TextRegion, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.regions[page], nil
}

type fakeRenderer struct {
	path  string
	err   error
	calls int
}

func (f *fakeRenderer) RenderPage(_ context.Context, page int) (string, error) {
	f.calls++
	if f.err != nil {
		return "", f.err
	}
	return f.path, nil
}

type fakeFinder struct {
	figures []Figure
	err     error
	gotPath string
	gotPage int
}

func (f *fakeFinder) FindFigures(imagePath string, page int) ([]Figure, error) {
	f.gotPath = imagePath
	f.gotPage = page
	if f.err != nil {
		return nil, f.err
	}
	return f.figures, nil
}

func TestRegionsCombinesTextAndFigures(t *testing.T) {
	doc := &fakeDoc{
		count: 1,
		regions: map[int][]TextRegion{
			1: {
				{Top: 92, Text: "27. Keres – Fine, Ostend 1937"},
				{Top: 300, Text: "27...Rxe3"},
			},
		},
	}
	renderer := &fakeRenderer{path: "render/page_0001.png"}
	finder := &fakeFinder{figures: []Figure{
		{Path: "figs/p0001_fig1.png", X: 100, Y: 400, W: 600, H: 600},
	}}

	// 144 DPI halves pixel offsets back to points.
	src := NewRegionSource(doc, renderer, finder, 144, nil)
	regions, err := src.Regions(context.Background(), 1)
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if len(regions) != 3 {
		t.Fatalf("Expected 3 regions, got %d", len(regions))
	}

	if regions[0].Kind != extract.TextBlock || regions[1].Kind != extract.TextBlock {
		t.Error("Expected text regions first")
	}
	fig := regions[2]
	if fig.Kind != extract.ImageBlock {
		t.Fatalf("Expected image region last, got kind %v", fig.Kind)
	}
	if fig.Y != 200 {
		t.Errorf("Expected figure Y scaled to 200pt, got %f", fig.Y)
	}
	if fig.ImagePath != "figs/p0001_fig1.png" {
		t.Errorf("Expected crop path carried through, got %q", fig.ImagePath)
	}

	if finder.gotPath != "render/page_0001.png" {
		t.Errorf("Expected finder to receive the rendered page, got %q", finder.gotPath)
	}
	if finder.gotPage != 1 {
		t.Errorf("Expected finder to receive page 1, got %d", finder.gotPage)
	}
}

func TestRegionsTextOnlyWithoutFinder(t *testing.T) {
	doc := &fakeDoc{
		count: 2,
		regions: map[int][]TextRegion{
			2: {{Top: 50, Text: "prose"}},
		},
	}

	src := NewRegionSource(doc, nil, nil, 150, nil)
	regions, err := src.Regions(context.Background(), 2)
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if len(regions) != 1 || regions[0].Kind != extract.TextBlock {
		t.Errorf("Expected a single text region, got %+v", regions)
	}
	if src.PageCount() != 2 {
		t.Errorf("Expected page count 2, got %d", src.PageCount())
	}
}

func TestRegionsRenderFailureFailsPage(t *testing.T) {
	doc := &fakeDoc{count: 1, regions: map[int][]TextRegion{1: {{Top: 10, Text: "x"}}}}
	renderer := &fakeRenderer{err: errors.New("pdftoppm missing")}

	src := NewRegionSource(doc, renderer, &fakeFinder{}, 150, nil)
	if _, err := src.Regions(context.Background(), 1); err == nil {
		t.Error("Expected render failure to surface as a page error")
	}
}

func TestRegionsTextFailureSkipsRender(t *testing.T) {
	doc := &fakeDoc{count: 1, err: errors.New("bad page")}
	renderer := &fakeRenderer{path: "x.png"}

	src := NewRegionSource(doc, renderer, &fakeFinder{}, 150, nil)
	if _, err := src.Regions(context.Background(), 1); err == nil {
		t.Fatal("Expected an error for an unreadable page")
	}
	if renderer.calls != 0 {
		t.Errorf("Expected no render attempt after a text failure, got %d", renderer.calls)
	}
}

func TestRendererPagePath(t *testing.T) {
	r := NewRenderer("book.pdf", "out/render", 150, nil)
	want := filepath.Join("out", "render", "page_0007.png")
	if got := r.PagePath(7); got != want {
		t.Errorf("Expected %q, got %q", want, got)
	}
}
