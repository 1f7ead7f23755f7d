package vision

import (
	"image"
	"math"
	"sort"

	"gocv.io/x/gocv"
	"go.uber.org/zap"
)

// FillStyle classifies a bubble's interior.
type FillStyle int

const (
	Outlined FillStyle = iota // light interior, dark ring
	Filled                    // dark interior
)

// String matches the color names used in exported records.
func (f FillStyle) String() string {
	if f == Filled {
		return "black"
	}
	return "white"
}

// Bubble is one circular marker found in a section's top strip. Digit is
// nil until OCR fills it in; PNG holds the interior crop OCR reads.
type Bubble struct {
	Rect        image.Rectangle
	Area        float64
	Circularity float64
	Fill        FillStyle
	Digit       *int
	PNG         []byte
}

type bubbleCandidate struct {
	rect image.Rectangle
	area float64
	circ float64
}

// BubbleAnalyzer finds circular markers in grayscale strip images.
type BubbleAnalyzer struct {
	cfg GridConfig
	log *zap.Logger
}

func NewBubbleAnalyzer(cfg GridConfig, log *zap.Logger) *BubbleAnalyzer {
	if log == nil {
		log = zap.NewNop()
	}
	return &BubbleAnalyzer{cfg: cfg, log: log}
}

// FindBubbles locates bubble candidates in a grayscale strip. Returned
// rects are in strip coordinates, ordered left to right, at most
// MaxBubbles of them. An empty result is a normal outcome.
func (b *BubbleAnalyzer) FindBubbles(strip gocv.Mat) []Bubble {
	if strip.Empty() {
		return nil
	}

	bin := gocv.NewMat()
	defer bin.Close()
	gocv.Threshold(strip, &bin, 0, 255, gocv.ThresholdBinaryInv|gocv.ThresholdOtsu)

	contours := gocv.FindContours(bin, gocv.RetrievalExternal, gocv.ChainApproxSimple)
	defer contours.Close()

	var cands []bubbleCandidate
	for i := 0; i < contours.Size(); i++ {
		contour := contours.At(i)
		area := gocv.ContourArea(contour)
		if area < b.cfg.MinBubbleArea || area > b.cfg.MaxBubbleArea {
			continue
		}
		perimeter := gocv.ArcLength(contour, true)
		if perimeter == 0 {
			continue
		}
		circ := 4 * math.Pi * area / (perimeter * perimeter)
		if circ < b.cfg.MinCircularity {
			continue
		}
		rect := gocv.BoundingRect(contour)
		aspect := float64(rect.Dx()) / float64(rect.Dy())
		if aspect < b.cfg.MinBubbleAspect || aspect > b.cfg.MaxBubbleAspect {
			continue
		}
		cands = append(cands, bubbleCandidate{rect: rect, area: area, circ: circ})
	}

	selected := selectBubbles(cands, b.cfg.DedupeDistance, b.cfg.MaxBubbles)
	bubbles := make([]Bubble, 0, len(selected))
	for _, cand := range selected {
		bubbles = append(bubbles, Bubble{
			Rect:        cand.rect,
			Area:        cand.area,
			Circularity: cand.circ,
			Fill:        classifyFill(strip, cand.rect),
			PNG:         encodeInterior(strip, cand.rect, b.log),
		})
	}
	return bubbles
}

// selectBubbles orders candidates left to right, merges those whose
// centers sit within dedupeDist horizontally (larger area wins), and
// caps the result at max keeping the leftmost.
func selectBubbles(cands []bubbleCandidate, dedupeDist float64, max int) []bubbleCandidate {
	if len(cands) == 0 {
		return nil
	}

	sorted := make([]bubbleCandidate, len(cands))
	copy(sorted, cands)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].rect.Min.X < sorted[j].rect.Min.X
	})

	var kept []bubbleCandidate
	for _, c := range sorted {
		cx := centerX(c.rect)
		dup := false
		for ki := range kept {
			if math.Abs(centerX(kept[ki].rect)-cx) <= dedupeDist {
				dup = true
				if c.area > kept[ki].area {
					kept[ki] = c
				}
				break
			}
		}
		if !dup {
			kept = append(kept, c)
		}
	}

	if max > 0 && len(kept) > max {
		kept = kept[:max]
	}
	return kept
}

func centerX(r image.Rectangle) float64 {
	return float64(r.Min.X+r.Max.X) / 2
}

// classifyFill samples the middle of the bubble: a dark interior means a
// filled marker, a light one an outlined marker.
func classifyFill(strip gocv.Mat, rect image.Rectangle) FillStyle {
	inner := image.Rect(
		rect.Min.X+rect.Dx()/4,
		rect.Min.Y+rect.Dy()/4,
		rect.Max.X-rect.Dx()/4,
		rect.Max.Y-rect.Dy()/4,
	)
	if inner.Empty() {
		inner = rect
	}

	region := strip.Region(inner)
	mean := region.Mean()
	region.Close()

	if mean.Val1 < 128 {
		return Filled
	}
	return Outlined
}

// encodeInterior crops the bubble with a small margin and encodes it as
// PNG bytes for the OCR collaborator.
func encodeInterior(strip gocv.Mat, rect image.Rectangle, log *zap.Logger) []byte {
	return encodePNG(strip, rect.Inset(-2), log)
}

// encodePNG clips rect to src and returns the region as PNG bytes, or
// nil when the clip is empty or encoding fails.
func encodePNG(src gocv.Mat, rect image.Rectangle, log *zap.Logger) []byte {
	bounds := image.Rect(0, 0, src.Cols(), src.Rows())
	r := rect.Intersect(bounds)
	if r.Empty() {
		return nil
	}

	region := src.Region(r)
	cloned := region.Clone()
	region.Close()
	buf, err := gocv.IMEncode(gocv.PNGFileExt, cloned)
	cloned.Close()
	if err != nil {
		log.Warn("could not encode crop", zap.Error(err))
		return nil
	}
	defer buf.Close()

	data := make([]byte, len(buf.GetBytes()))
	copy(data, buf.GetBytes())
	return data
}
