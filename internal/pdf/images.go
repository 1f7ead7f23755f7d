package pdf

import (
	"fmt"
	"os"

	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"
)

// CountPages returns the page count of a PDF without fully opening it.
// Validation is relaxed so slightly out-of-spec scans still count.
func CountPages(path string) (int, error) {
	f, err := os.Open(path)
	if err != nil {
		return 0, fmt.Errorf("open pdf: %w", err)
	}
	defer f.Close()

	n, err := api.PageCount(f, nil)
	if err != nil {
		return 0, fmt.Errorf("count pages in %s: %w", path, err)
	}
	return n, nil
}

// ExtractEmbeddedImages dumps every embedded image object from the
// selected pages into outDir. Pages are 1-based; endPage <= 0 means the
// last page. Object numbering follows the PDF's internal order, which
// for scanned books usually tracks page order but is not guaranteed to.
func ExtractEmbeddedImages(path, outDir string, startPage, endPage int) error {
	if err := os.MkdirAll(outDir, 0755); err != nil {
		return fmt.Errorf("create image dir: %w", err)
	}

	conf := model.NewDefaultConfiguration()
	conf.ValidationMode = model.ValidationRelaxed

	var selected []string
	if startPage > 1 || endPage > 0 {
		if startPage < 1 {
			startPage = 1
		}
		if endPage > 0 {
			selected = []string{fmt.Sprintf("%d-%d", startPage, endPage)}
		} else {
			selected = []string{fmt.Sprintf("%d-", startPage)}
		}
	}

	if err := api.ExtractImagesFile(path, outDir, selected, conf); err != nil {
		return fmt.Errorf("extract images from %s: %w", path, err)
	}
	return nil
}
