package llm

import "strings"

// DefaultPrompt asks for the nine invoice attributes as bare JSON.
const DefaultPrompt = `
Scan this bill and tell me the following details in JSON format:
1. Name of the Vendor
2. Name of the company on which this bill has been raise
3. Nature of expense
4. Is TDS Applicable on this bill? If yes, what is the rate and amount?
5. Is GST under RCM applicable?
6. Is GST Input included in the bill?
7. Is the nature of IGST or CGST and SGST as per Place of Supply in GST correct?
8. What is the final amount payable to the vendor?
9. Are there any remarks mentioned in the bill?
Return ONLY valid JSON without any extra text, explanation, or markdown formatting.
`

// BillTextMarker separates the instructions from the document text.
const BillTextMarker = "\n\nBill Text:\n"

// ResolvePrompt returns override verbatim unless it is blank.
func ResolvePrompt(override string) string {
	if strings.TrimSpace(override) == "" {
		return DefaultPrompt
	}
	return override
}

// BuildPrompt appends the extracted bill text to the instructions.
func BuildPrompt(prompt, text string) string {
	return prompt + BillTextMarker + text
}
