package ocr

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"github.com/joseph-ayodele/bill-scanner/constants"
)

func (e *Extractor) pdfToOCR(ctx context.Context, path string) (ExtractionResult, error) {
	res := ExtractionResult{Method: constants.MethodPDFOCR, Language: e.cfg.TesseractLang}

	tmpDir, err := os.MkdirTemp("", "bs-pp-*")
	if err != nil {
		return res, err
	}
	defer func(dir string) {
		if err := os.RemoveAll(dir); err != nil {
			e.logger.Warn("failed to remove temp dir", "dir", dir, "error", err)
		}
	}(tmpDir)

	prefix := filepath.Join(tmpDir, "page")
	// pdftoppm -r 300 -png <in.pdf> <tmp/page>
	_, errb, err := e.runner.Run(ctx, e.cfg.Pdftoppm, "-r", fmt.Sprintf("%d", e.cfg.DPI), "-png", path, prefix)
	if err != nil {
		res.Warnings = append(res.Warnings, string(errb))
		return res, fmt.Errorf("pdftoppm: %w", err)
	}

	// prefix-1.png, prefix-2.png, ...
	matches, _ := filepath.Glob(prefix + "-*.png")
	sortPages(matches)
	if len(matches) == 0 {
		res.Warnings = append(res.Warnings, "pdftoppm produced no images")
		return res, nil
	}

	var b strings.Builder
	for i, img := range matches {
		src := img
		if e.cfg.Enhance {
			enhanced := filepath.Join(tmpDir, fmt.Sprintf("enh-%d.png", i+1))
			if err := EnhanceImage(img, enhanced); err != nil {
				res.Warnings = append(res.Warnings, err.Error())
			} else {
				src = enhanced
			}
		}
		txt, err := e.recognizer.Recognize(ctx, src)
		if err != nil {
			return res, fmt.Errorf("ocr page %d: %w", i+1, err)
		}
		b.WriteString(txt)
		b.WriteString("\n")
	}
	res.Text = b.String()
	res.Pages = len(matches)
	res.Confidence = heuristicConfidence(res.Text)
	e.logger.Info("ocr done", "path", path, "pages", res.Pages, "chars", len(res.Text), "confidence", res.Confidence)
	return res, nil
}

// sortPages orders page-N.png by N; pdftoppm zero-pads only for large documents.
func sortPages(paths []string) {
	sort.Slice(paths, func(i, j int) bool {
		ni, nj := pageNumber(paths[i]), pageNumber(paths[j])
		if ni != nj {
			return ni < nj
		}
		return paths[i] < paths[j]
	})
}

func pageNumber(path string) int {
	base := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	idx := strings.LastIndex(base, "-")
	if idx < 0 {
		return 0
	}
	n, err := strconv.Atoi(base[idx+1:])
	if err != nil {
		return 0
	}
	return n
}
