package llm

import (
	"errors"
	"reflect"
	"strings"
	"testing"
)

func TestIsolateJSON(t *testing.T) {
	cases := []struct {
		in, want string
	}{
		{`Here is the data: {"Vendor":"Acme","Amount":500}`, `{"Vendor":"Acme","Amount":500}`},
		{"```json\n{\"a\":{\"b\":1}}\n```", `{"a":{"b":1}}`},
		{"  no braces at all  ", "no braces at all"},
		{"{\"a\":1}\nand later {\"b\":2}", "{\"a\":1}\nand later {\"b\":2}"},
	}
	for _, tc := range cases {
		if got := IsolateJSON(tc.in); got != tc.want {
			t.Fatalf("IsolateJSON(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}

func TestParseRecord_ProseWrapped(t *testing.T) {
	rec, cleaned, err := ParseRecord(`Here is the data: {"Vendor":"Acme","Amount":500}`)
	if err != nil {
		t.Fatalf("ParseRecord: %v", err)
	}
	if cleaned != `{"Vendor":"Acme","Amount":500}` {
		t.Fatalf("cleaned = %q", cleaned)
	}
	if got := rec.Keys(); !reflect.DeepEqual(got, []string{"Vendor", "Amount"}) {
		t.Fatalf("keys = %v", got)
	}
	if v, _ := rec.Get("Amount"); v != int64(500) {
		t.Fatalf("Amount = %#v", v)
	}
}

func TestParseRecord_NoBraces(t *testing.T) {
	_, cleaned, err := ParseRecord("Sorry, I could not read this bill.")
	if !errors.Is(err, ErrUnparsable) {
		t.Fatalf("err = %v, want ErrUnparsable", err)
	}
	if cleaned != "Sorry, I could not read this bill." {
		t.Fatalf("cleaned = %q", cleaned)
	}
}

func TestParseRecord_SpanningTwoObjectsIsUnparsable(t *testing.T) {
	_, _, err := ParseRecord(`{"a":1} and {"b":2}`)
	if !errors.Is(err, ErrUnparsable) {
		t.Fatalf("err = %v, want ErrUnparsable", err)
	}
}

func TestResolvePrompt(t *testing.T) {
	if ResolvePrompt("") != DefaultPrompt || ResolvePrompt(" \n ") != DefaultPrompt {
		t.Fatalf("blank override must resolve to default")
	}
	if got := ResolvePrompt("  custom  "); got != "  custom  " {
		t.Fatalf("override must be verbatim, got %q", got)
	}
}

func TestBuildPrompt(t *testing.T) {
	got := BuildPrompt("P", "line1\n")
	if got != "P\n\nBill Text:\nline1\n" {
		t.Fatalf("got %q", got)
	}
	if !strings.Contains(DefaultPrompt, "Return ONLY valid JSON") {
		t.Fatalf("default prompt lost its formatting instruction")
	}
}

func TestValidateJSONAgainstSchema(t *testing.T) {
	if err := ValidateJSONAgainstSchema(RecordSchema, []byte(`{"x":1}`)); err != nil {
		t.Fatalf("object rejected: %v", err)
	}
	if err := ValidateJSONAgainstSchema(RecordSchema, []byte(`[1]`)); err == nil {
		t.Fatalf("array accepted")
	}
}
