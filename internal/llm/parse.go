package llm

import (
	"errors"
	"fmt"
	"regexp"
	"strings"

	"github.com/joseph-ayodele/bill-scanner/internal/record"
)

// ErrUnparsable means the model answer held no usable JSON object.
var ErrUnparsable = errors.New("model response is not a JSON object")

// greedy: first '{' to last '}', across newlines
var reJSONObject = regexp.MustCompile(`(?s)\{.*\}`)

// IsolateJSON trims the answer and narrows it to the outermost brace span, when one exists.
func IsolateJSON(text string) string {
	cleaned := strings.TrimSpace(text)
	if m := reJSONObject.FindString(cleaned); m != "" {
		return m
	}
	return cleaned
}

// ParseRecord isolates and decodes the model answer into an ordered record.
// The returned string is the isolated text, useful for raw display when parsing fails.
func ParseRecord(text string) (*record.Record, string, error) {
	cleaned := IsolateJSON(text)
	if err := ValidateJSONAgainstSchema(RecordSchema, []byte(cleaned)); err != nil {
		return nil, cleaned, fmt.Errorf("%w: %v", ErrUnparsable, err)
	}
	rec, err := record.Decode([]byte(cleaned))
	if err != nil {
		return nil, cleaned, fmt.Errorf("%w: %v", ErrUnparsable, err)
	}
	return rec, cleaned, nil
}
