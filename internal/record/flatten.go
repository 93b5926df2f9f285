package record

import (
	"encoding/json"
	"fmt"
)

// Separator joins nested keys into one column name.
const Separator = "."

// Flatten turns a nested record into a single spreadsheet row.
// Nested objects become dotted columns, arrays their JSON text; empty objects yield no column.
func Flatten(rec *Record) (*Record, error) {
	out := New()
	if err := flattenInto(out, "", rec); err != nil {
		return nil, err
	}
	return out, nil
}

func flattenInto(out *Record, prefix string, rec *Record) error {
	for _, k := range rec.keys {
		col := k
		if prefix != "" {
			col = prefix + Separator + k
		}
		switch v := rec.values[k].(type) {
		case *Record:
			if err := flattenInto(out, col, v); err != nil {
				return err
			}
		case []any:
			b, err := json.Marshal(v)
			if err != nil {
				return fmt.Errorf("record: flatten %q: %w", col, err)
			}
			out.Set(col, string(b))
		default:
			out.Set(col, v)
		}
	}
	return nil
}
