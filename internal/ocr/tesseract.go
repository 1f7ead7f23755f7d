//go:build ocr

package ocr

import (
	"fmt"
	"sync"

	"github.com/otiai10/gosseract/v2"
)

// Reader performs digit OCR through Tesseract. A Reader owns one
// gosseract client and serializes access to it; the engine's native
// handle is not safe for concurrent use.
type Reader struct {
	mu     sync.Mutex
	client *gosseract.Client
}

// NewReader creates a Tesseract-backed reader. languages is a "+"
// separated list ("eng", "eng+rus"); empty keeps the engine default.
// Close the reader to release the native handle.
func NewReader(languages string) (*Reader, error) {
	client := gosseract.NewClient()
	if languages != "" {
		if err := client.SetLanguage(languages); err != nil {
			client.Close()
			return nil, fmt.Errorf("set ocr language: %w", err)
		}
	}
	if err := client.SetWhitelist("0123456789"); err != nil {
		client.Close()
		return nil, fmt.Errorf("set ocr whitelist: %w", err)
	}
	return &Reader{client: client}, nil
}

// Enabled reports whether real OCR is compiled in.
func (r *Reader) Enabled() bool { return true }

// ReadDigit recognizes a single digit in a bubble interior crop.
func (r *Reader) ReadDigit(png []byte) (int, error) {
	text, err := r.recognize(png, gosseract.PSM_SINGLE_CHAR)
	if err != nil {
		return 0, err
	}
	digit, ok := ParseDigit(text)
	if !ok {
		return 0, fmt.Errorf("no single digit in %q", text)
	}
	return digit, nil
}

// ReadNumber recognizes a multi-digit number in a strip crop, such as
// the printed diagram number left of the bubbles.
func (r *Reader) ReadNumber(png []byte) (int, error) {
	text, err := r.recognize(png, gosseract.PSM_SINGLE_LINE)
	if err != nil {
		return 0, err
	}
	n, ok := ParseNumber(text)
	if !ok {
		return 0, fmt.Errorf("no number in %q", text)
	}
	return n, nil
}

func (r *Reader) recognize(png []byte, mode gosseract.PageSegMode) (string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if err := r.client.SetPageSegMode(mode); err != nil {
		return "", fmt.Errorf("set page seg mode: %w", err)
	}
	if err := r.client.SetImageFromBytes(png); err != nil {
		return "", fmt.Errorf("set image: %w", err)
	}
	text, err := r.client.Text()
	if err != nil {
		return "", fmt.Errorf("ocr failed: %w", err)
	}
	return text, nil
}

// Close releases the Tesseract handle.
func (r *Reader) Close() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.client == nil {
		return nil
	}
	err := r.client.Close()
	r.client = nil
	return err
}
