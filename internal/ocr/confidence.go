package ocr

import (
	"regexp"
	"strings"
)

var (
	reDate    = regexp.MustCompile(`\b\d{1,4}[-/.]\d{1,2}[-/.]\d{1,4}\b`)
	reCurr    = regexp.MustCompile(`\b(usd|eur|gbp|cad|aud|inr|rs|jpy)\b|[$£€₹]`)
	reAmount  = regexp.MustCompile(`\b\d{1,3}(,\d{3})*(\.\d{2})\b|\b\d+\.\d{2}\b`)
	reInvoice = regexp.MustCompile(`\b(invoice|bill|gstin?|total|amount)\b`)
)

// heuristicConfidence scores OCR output by how invoice-like it looks, in 0..1.
func heuristicConfidence(txt string) float32 {
	txtL := strings.ToLower(txt)
	score := float32(0.2)
	if reDate.MatchString(txtL) {
		score += 0.2
	}
	if reCurr.MatchString(txtL) {
		score += 0.15
	}
	if reAmount.MatchString(txtL) {
		score += 0.15
	}
	if reInvoice.MatchString(txtL) {
		score += 0.15
	}
	if len(txt) > 120 {
		score += 0.1
	}
	if score > 1.0 {
		score = 1.0
	}
	return score
}
