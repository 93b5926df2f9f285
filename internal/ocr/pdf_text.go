package ocr

import (
	"fmt"
	"os"

	"github.com/ledongthuc/pdf"
)

// pdfPageTexts returns the plain text of every page; any page failure fails the document.
func pdfPageTexts(path string) (texts []string, err error) {
	// the pdf reader panics on some malformed xref tables
	defer func() {
		if r := recover(); r != nil {
			texts, err = nil, fmt.Errorf("pdf parser panic: %v", r)
		}
	}()

	f, r, err := pdf.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open pdf: %w", err)
	}
	defer func(f *os.File) {
		_ = f.Close()
	}(f)

	n := r.NumPage()
	texts = make([]string, 0, n)
	for i := 1; i <= n; i++ {
		page := r.Page(i)
		if page.V.IsNull() {
			texts = append(texts, "")
			continue
		}
		txt, err := page.GetPlainText(nil)
		if err != nil {
			return nil, fmt.Errorf("page %d: %w", i, err)
		}
		texts = append(texts, txt)
	}
	return texts, nil
}
