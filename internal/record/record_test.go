package record

import (
	"errors"
	"reflect"
	"strings"
	"testing"

	"github.com/joseph-ayodele/bill-scanner/internal/common"
)

func TestDecode_KeepsOrderAndTypes(t *testing.T) {
	rec, err := Decode([]byte(`{"Vendor":"Acme","Amount":500,"Tax":12.5,"Paid":true,"Notes":null}`))
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if got, want := rec.Keys(), []string{"Vendor", "Amount", "Tax", "Paid", "Notes"}; !reflect.DeepEqual(got, want) {
		t.Fatalf("keys = %v, want %v", got, want)
	}
	if v, _ := rec.Get("Amount"); v != int64(500) {
		t.Fatalf("Amount = %#v", v)
	}
	if v, _ := rec.Get("Tax"); v != 12.5 {
		t.Fatalf("Tax = %#v", v)
	}
	if v, _ := rec.Get("Paid"); v != true {
		t.Fatalf("Paid = %#v", v)
	}
	if v, ok := rec.Get("Notes"); !ok || v != nil {
		t.Fatalf("Notes = %#v ok=%v", v, ok)
	}
}

func TestDecode_RejectsNonObject(t *testing.T) {
	for _, in := range []string{`[1,2]`, `"text"`, `42`} {
		if _, err := Decode([]byte(in)); !errors.Is(err, ErrNotObject) {
			t.Fatalf("Decode(%s) err = %v, want ErrNotObject", in, err)
		}
	}
	for _, in := range []string{`{"a":1`, `{"a":1} trailing`, ``} {
		if _, err := Decode([]byte(in)); err == nil {
			t.Fatalf("Decode(%q) expected error", in)
		}
	}
}

func TestDecode_DuplicateKeyKeepsFirstPosition(t *testing.T) {
	rec, err := Decode([]byte(`{"a":1,"b":2,"a":3}`))
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if got := rec.Keys(); !reflect.DeepEqual(got, []string{"a", "b"}) {
		t.Fatalf("keys = %v", got)
	}
	if v, _ := rec.Get("a"); v != int64(3) {
		t.Fatalf("a = %#v", v)
	}
}

func TestMarshalJSON_Ordered(t *testing.T) {
	in := `{"z":1,"a":{"y":"x","b":[1,{"k":true}]},"m":null}`
	rec, err := Decode([]byte(in))
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	out, err := rec.MarshalJSON()
	if err != nil {
		t.Fatalf("MarshalJSON: %v", err)
	}
	if string(out) != in {
		t.Fatalf("got %s, want %s", out, in)
	}
}

func TestManualFields_ApplyOverwritesInPlace(t *testing.T) {
	rec, err := Decode([]byte(`{"Vendor":"Acme","Bill Source":"model guess","Amount":500}`))
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	m := ManualFields{BillSource: "Email", BillGivenBy: "Ravi", HODApproval: "Yes", FinalApproval: "Pending"}
	m.Apply(rec)

	want := []string{"Vendor", "Bill Source", "Amount", "Bill Given By", "HOD Approval", "Final Approval"}
	if got := rec.Keys(); !reflect.DeepEqual(got, want) {
		t.Fatalf("keys = %v, want %v", got, want)
	}
	for k, v := range map[string]string{
		"Bill Source":    "Email",
		"Bill Given By":  "Ravi",
		"HOD Approval":   "Yes",
		"Final Approval": "Pending",
	} {
		if got, _ := rec.Get(k); got != v {
			t.Fatalf("%s = %#v, want %q", k, got, v)
		}
	}
}

func TestManualFields_Validate(t *testing.T) {
	ok := ManualFields{BillSource: "a", BillGivenBy: "b", HODApproval: "c", FinalApproval: "d"}
	if err := ok.Validate(); err != nil {
		t.Fatalf("Validate: %v", err)
	}
	long := ManualFields{BillSource: " a ", BillGivenBy: strings.Repeat("b", 600), HODApproval: "c", FinalApproval: "d"}
	if err := long.Validate(); err != nil {
		t.Fatalf("Validate long: %v", err)
	}
	bad := ManualFields{BillSource: "a", BillGivenBy: "  ", HODApproval: "c"}
	err := bad.Validate()
	if !errors.Is(err, common.ErrValidation) {
		t.Fatalf("err = %v, want ErrValidation", err)
	}
}

func TestFlatten(t *testing.T) {
	rec, err := Decode([]byte(`{"Vendor":{"Name":"Acme","Address":{"City":"Pune"}},"Items":["a","b"],"Empty":{},"Amount":500}`))
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	row, err := Flatten(rec)
	if err != nil {
		t.Fatalf("Flatten: %v", err)
	}
	want := []string{"Vendor.Name", "Vendor.Address.City", "Items", "Amount"}
	if got := row.Keys(); !reflect.DeepEqual(got, want) {
		t.Fatalf("columns = %v, want %v", got, want)
	}
	if v, _ := row.Get("Items"); v != `["a","b"]` {
		t.Fatalf("Items = %#v", v)
	}
	if v, _ := row.Get("Vendor.Address.City"); v != "Pune" {
		t.Fatalf("city = %#v", v)
	}
	if v, _ := row.Get("Amount"); v != int64(500) {
		t.Fatalf("Amount = %#v", v)
	}
}
