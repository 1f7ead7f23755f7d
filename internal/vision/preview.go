package vision

import (
	"fmt"
	"image"
	"image/color"
	"strconv"

	"gocv.io/x/gocv"
)

// Annotate draws the grid layout over a page image: cell borders with
// section numbers, the bubble strip boundary, and each detected bubble
// with its fill and digit. Meant for threshold tuning, not the pipeline.
func (a *GridAnalyzer) Annotate(imagePath string, sections []SectionImage, outPath string) error {
	img := gocv.IMRead(imagePath, gocv.IMReadColor)
	if img.Empty() {
		return fmt.Errorf("unreadable page image: %s", imagePath)
	}
	defer img.Close()

	green := color.RGBA{R: 0, G: 200, B: 0}
	blue := color.RGBA{R: 0, G: 120, B: 255}
	red := color.RGBA{R: 230, G: 40, B: 40}

	for _, sec := range sections {
		gocv.Rectangle(&img, sec.Rect, green, 2)

		strip := stripRect(sec.Rect, a.cfg.BubbleAreaRatio)
		gocv.Line(&img,
			image.Pt(strip.Min.X, strip.Max.Y),
			image.Pt(strip.Max.X, strip.Max.Y),
			blue, 1)

		gocv.PutText(&img, strconv.Itoa(sec.Index),
			image.Pt(sec.Rect.Min.X+8, sec.Rect.Min.Y+24),
			gocv.FontHersheySimplex, 0.7, green, 2)

		for _, b := range sec.Bubbles {
			gocv.Rectangle(&img, b.Rect, red, 1)
			label := b.Fill.String()
			if b.Digit != nil {
				label = fmt.Sprintf("%d %s", *b.Digit, label)
			}
			gocv.PutText(&img, label,
				image.Pt(b.Rect.Min.X, b.Rect.Max.Y+14),
				gocv.FontHersheyPlain, 1.0, red, 1)
		}
	}

	if !gocv.IMWrite(outPath, img) {
		return fmt.Errorf("write annotated page %s", outPath)
	}
	return nil
}
