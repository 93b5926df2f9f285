package ocr

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"testing"

	"github.com/joseph-ayodele/bill-scanner/constants"
)

// fakeRunner emulates pdftoppm by writing `pages` empty PNGs next to the requested prefix.
type fakeRunner struct {
	pages int
	calls []string
}

func (f *fakeRunner) Run(_ context.Context, name string, args ...string) ([]byte, []byte, error) {
	f.calls = append(f.calls, name)
	prefix := args[len(args)-1]
	for i := 1; i <= f.pages; i++ {
		if err := os.WriteFile(prefix+"-"+strconv.Itoa(i)+".png", nil, 0o644); err != nil {
			return nil, nil, err
		}
	}
	return nil, nil, nil
}

type fakeRecognizer struct {
	calls []string
	err   error
}

func (f *fakeRecognizer) Recognize(_ context.Context, imagePath string) (string, error) {
	f.calls = append(f.calls, filepath.Base(imagePath))
	if f.err != nil {
		return "", f.err
	}
	return "text of " + filepath.Base(imagePath), nil
}

func newTestExtractor(pages []string, pageErr error, runner *fakeRunner, rec *fakeRecognizer) *Extractor {
	e := NewExtractor(Config{}, nil, WithRunner(runner), WithRecognizer(rec))
	e.textLayer = func(string) ([]string, error) { return pages, pageErr }
	return e
}

func TestExtract_TextLayerSkipsOCR(t *testing.T) {
	runner := &fakeRunner{pages: 2}
	rec := &fakeRecognizer{}
	e := newTestExtractor([]string{"Invoice 42", "", "Total 500"}, nil, runner, rec)

	res, err := e.Extract(context.Background(), "bill.pdf")
	if err != nil {
		t.Fatalf("Extract: %v", err)
	}
	if res.Text != "Invoice 42\nTotal 500\n" {
		t.Fatalf("text = %q", res.Text)
	}
	if res.Method != constants.MethodPDFText {
		t.Fatalf("method = %q", res.Method)
	}
	if res.Pages != 3 {
		t.Fatalf("pages = %d, want 3", res.Pages)
	}
	if len(runner.calls) != 0 || len(rec.calls) != 0 {
		t.Fatalf("ocr must not run when a text layer exists: runner=%v recognizer=%v", runner.calls, rec.calls)
	}
}

func TestExtract_BlankTextLayerFallsBackToOCR(t *testing.T) {
	runner := &fakeRunner{pages: 2}
	rec := &fakeRecognizer{}
	e := newTestExtractor([]string{"  ", "\n\t"}, nil, runner, rec)

	res, err := e.Extract(context.Background(), "scan.PDF")
	if err != nil {
		t.Fatalf("Extract: %v", err)
	}
	if res.Method != constants.MethodPDFOCR {
		t.Fatalf("method = %q", res.Method)
	}
	if want := "text of page-1.png\ntext of page-2.png\n"; res.Text != want {
		t.Fatalf("text = %q, want %q", res.Text, want)
	}
	if res.Pages != 2 {
		t.Fatalf("pages = %d", res.Pages)
	}
	if len(runner.calls) != 1 || runner.calls[0] != "pdftoppm" {
		t.Fatalf("runner calls = %v", runner.calls)
	}
	if res.Language != "eng" {
		t.Fatalf("language = %q", res.Language)
	}
}

func TestExtract_PageErrorFailsWholeDocument(t *testing.T) {
	rec := &fakeRecognizer{}
	e := newTestExtractor(nil, errors.New("bad xref"), &fakeRunner{}, rec)

	if _, err := e.Extract(context.Background(), "bill.pdf"); err == nil {
		t.Fatalf("expected error")
	}
	if len(rec.calls) != 0 {
		t.Fatalf("ocr must not run after a text layer error")
	}
}

func TestExtract_RecognizerErrorFails(t *testing.T) {
	rec := &fakeRecognizer{err: errors.New("tesseract missing")}
	e := newTestExtractor([]string{""}, nil, &fakeRunner{pages: 1}, rec)

	_, err := e.Extract(context.Background(), "bill.pdf")
	if err == nil || !strings.Contains(err.Error(), "tesseract missing") {
		t.Fatalf("err = %v", err)
	}
}

func TestExtract_NoRenderedPagesIsEmptyResult(t *testing.T) {
	e := newTestExtractor(nil, nil, &fakeRunner{pages: 0}, &fakeRecognizer{})

	res, err := e.Extract(context.Background(), "bill.pdf")
	if err != nil {
		t.Fatalf("Extract: %v", err)
	}
	if res.Text != "" || len(res.Warnings) == 0 {
		t.Fatalf("res = %+v", res)
	}
}

func TestExtract_RejectsNonPDF(t *testing.T) {
	e := newTestExtractor(nil, nil, &fakeRunner{}, &fakeRecognizer{})
	if _, err := e.Extract(context.Background(), "photo.docx"); err == nil {
		t.Fatalf("expected unsupported extension error")
	}
}

func TestSortPages_Numeric(t *testing.T) {
	in := []string{"/t/page-10.png", "/t/page-2.png", "/t/page-1.png"}
	sortPages(in)
	if in[0] != "/t/page-1.png" || in[1] != "/t/page-2.png" || in[2] != "/t/page-10.png" {
		t.Fatalf("order = %v", in)
	}
}

func TestTesseractRecognizer_Args(t *testing.T) {
	r := &argRunner{out: "INVOICE\f"}
	rec := NewTesseractRecognizer(r, "", "", "/opt/tessdata")
	txt, err := rec.Recognize(context.Background(), "p.png")
	if err != nil {
		t.Fatalf("Recognize: %v", err)
	}
	if txt != "INVOICE" {
		t.Fatalf("txt = %q", txt)
	}
	want := "tesseract p.png stdout -l eng --tessdata-dir /opt/tessdata"
	if got := strings.Join(r.cmd, " "); got != want {
		t.Fatalf("cmd = %q, want %q", got, want)
	}
}

type argRunner struct {
	out string
	cmd []string
}

func (a *argRunner) Run(_ context.Context, name string, args ...string) ([]byte, []byte, error) {
	a.cmd = append([]string{name}, args...)
	return []byte(a.out), nil, nil
}

func TestHeuristicConfidence(t *testing.T) {
	low := heuristicConfidence("hello")
	high := heuristicConfidence("TAX INVOICE 12/03/2024 Total Rs 1,250.00 GSTIN 29ABCDE1234F1Z5 billed to Acme Corporation, Bangalore for services rendered during March")
	if low >= high {
		t.Fatalf("low=%v high=%v", low, high)
	}
	if high > 1.0 {
		t.Fatalf("confidence above 1: %v", high)
	}
}
