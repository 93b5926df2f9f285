package ocr

import (
	"context"
	"fmt"
	"regexp"
)

// Recognizer turns one page image into text.
type Recognizer interface {
	Recognize(ctx context.Context, imagePath string) (string, error)
}

// form-feed and runs of box-drawing noise tesseract emits on ruled invoices
var reBoxNoise = regexp.MustCompile(`[\f\x{2500}-\x{257F}]+`)

// TesseractRecognizer shells out to the tesseract CLI.
type TesseractRecognizer struct {
	runner      Runner
	bin         string
	lang        string
	tessdataDir string
}

func NewTesseractRecognizer(r Runner, bin, lang, tessdataDir string) *TesseractRecognizer {
	if r == nil {
		r = ExecRunner{}
	}
	if bin == "" {
		bin = "tesseract"
	}
	if lang == "" {
		lang = "eng"
	}
	return &TesseractRecognizer{runner: r, bin: bin, lang: lang, tessdataDir: tessdataDir}
}

func (t *TesseractRecognizer) Recognize(ctx context.Context, imagePath string) (string, error) {
	args := []string{imagePath, "stdout", "-l", t.lang}
	if t.tessdataDir != "" {
		args = append(args, "--tessdata-dir", t.tessdataDir)
	}

	// tesseract <file> stdout -l <lang>
	out, errb, err := t.runner.Run(ctx, t.bin, args...)
	if err != nil {
		return "", fmt.Errorf("tesseract: %w: %s", err, truncate(string(errb), 512))
	}
	return reBoxNoise.ReplaceAllString(string(out), ""), nil
}
