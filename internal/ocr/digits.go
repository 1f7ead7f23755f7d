// Package ocr reads digits from small image crops: the number inside a
// bubble marker and the printed diagram number beside a section. It
// wraps the Tesseract engine via gosseract behind the "ocr" build tag;
// without the tag every read reports a miss and the pipeline records
// empty digits instead of failing.
package ocr

import (
	"errors"
	"strconv"
	"strings"
	"unicode"
)

// ErrDisabled is returned by readers built without the "ocr" tag. A
// miss, not a fault: callers record an empty digit and continue.
var ErrDisabled = errors.New("ocr support not compiled in (build with -tags ocr)")

// ParseDigit extracts a single digit from raw OCR output. Engines pad
// results with whitespace and stray punctuation, so everything except
// digit runes is dropped first. Only a lone surviving digit counts.
func ParseDigit(text string) (int, bool) {
	digits := keepDigits(text)
	if len(digits) != 1 {
		return 0, false
	}
	return int(digits[0] - '0'), true
}

// ParseNumber extracts a multi-digit number from raw OCR output. The
// first unbroken digit run wins; diagram numbers are printed as a
// single token so anything after a gap is engine noise.
func ParseNumber(text string) (int, bool) {
	text = strings.TrimSpace(text)
	start := -1
	for i, r := range text {
		if unicode.IsDigit(r) {
			start = i
			break
		}
	}
	if start < 0 {
		return 0, false
	}
	end := start
	for end < len(text) && text[end] >= '0' && text[end] <= '9' {
		end++
	}
	n, err := strconv.Atoi(text[start:end])
	if err != nil {
		return 0, false
	}
	return n, true
}

func keepDigits(text string) string {
	var b strings.Builder
	for _, r := range text {
		if unicode.IsDigit(r) {
			b.WriteRune(r)
		}
	}
	return b.String()
}
