package ocr

import (
	"testing"

	"github.com/Azure/azure-sdk-for-go/services/cognitiveservices/v3.0/computervision"
)

func words(ws ...string) *[]computervision.OcrWord {
	out := make([]computervision.OcrWord, 0, len(ws))
	for i := range ws {
		out = append(out, computervision.OcrWord{Text: &ws[i]})
	}
	return &out
}

func TestOCRResultText(t *testing.T) {
	result := computervision.OcrResult{
		Regions: &[]computervision.OcrRegion{
			{Lines: &[]computervision.OcrLine{
				{Words: words("Invoice", "No:", "42")},
				{Words: words("Total", "500")},
			}},
			{Lines: nil},
			{Lines: &[]computervision.OcrLine{{Words: nil}, {Words: words("Thanks")}}},
		},
	}
	want := "Invoice No: 42\nTotal 500\nThanks\n"
	if got := ocrResultText(result); got != want {
		t.Fatalf("got %q, want %q", got, want)
	}
	if got := ocrResultText(computervision.OcrResult{}); got != "" {
		t.Fatalf("empty result = %q", got)
	}
}
