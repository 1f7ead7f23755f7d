//go:build !ocr

package ocr

// Reader is the no-op stand-in used when Tesseract is not compiled in.
// Construction succeeds so the pipeline runs end to end; every read
// reports ErrDisabled and the caller records an empty digit.
type Reader struct{}

// NewReader returns a disabled reader. The languages argument is
// accepted for signature parity with the real build.
func NewReader(languages string) (*Reader, error) {
	return &Reader{}, nil
}

// Enabled reports whether real OCR is compiled in.
func (r *Reader) Enabled() bool { return false }

// ReadDigit always misses without the "ocr" build tag.
func (r *Reader) ReadDigit(png []byte) (int, error) {
	return 0, ErrDisabled
}

// ReadNumber always misses without the "ocr" build tag.
func (r *Reader) ReadNumber(png []byte) (int, error) {
	return 0, ErrDisabled
}

// Close is a no-op on the stub.
func (r *Reader) Close() error { return nil }
