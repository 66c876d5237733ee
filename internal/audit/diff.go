package audit

import (
	"fmt"
	"time"
)

// MaskToken replaces credential values in audit payloads. Hashes and
// plaintext never reach the audit table.
const MaskToken = "********"

// Kind selects the normalization rule for a field before comparison.
type Kind int

const (
	KindText Kind = iota
	KindBit       // booleans stored as 0/1
	KindDate      // compared as YYYY-MM-DD, time component ignored
)

// Field is one snapshot value with its comparison kind.
type Field struct {
	Kind  Kind
	Value any
}

func Text(v any) Field { return Field{Kind: KindText, Value: v} }
func Bit(v any) Field  { return Field{Kind: KindBit, Value: v} }
func Date(v any) Field { return Field{Kind: KindDate, Value: v} }

// Snapshot is a record's field set at one point in time. Only fields the
// caller considers for change belong in it.
type Snapshot map[string]Field

// Change is one field-level difference in normalized form.
type Change struct {
	Old string
	New string
}

// excluded holds provenance fields that never appear in a diff regardless of
// what callers put in the snapshots.
var excluded = map[string]bool{
	"CreatedDate": true,
	"CreatedBy":   true,
}

// Diff computes the minimal field-level change set between two snapshots. A
// field is changed iff its normalized string form differs. Fields present
// only in the after snapshot compare against the empty string.
func Diff(before, after Snapshot) map[string]Change {
	changes := make(map[string]Change)
	for name, next := range after {
		if excluded[name] {
			continue
		}
		prev, ok := before[name]
		if !ok {
			prev = Field{Kind: next.Kind}
		}
		oldNorm := Normalize(prev)
		newNorm := Normalize(next)
		if oldNorm != newNorm {
			changes[name] = Change{Old: oldNorm, New: newNorm}
		}
	}
	return changes
}

// Normalize renders a field for comparison: bits collapse to "0"/"1", dates
// to YYYY-MM-DD, everything else to its plain string form with nil as "".
func Normalize(f Field) string {
	switch f.Kind {
	case KindBit:
		return normalizeBit(f.Value)
	case KindDate:
		return normalizeDate(f.Value)
	default:
		return normalizeText(f.Value)
	}
}

func normalizeText(v any) string {
	switch x := v.(type) {
	case nil:
		return ""
	case string:
		return x
	case *string:
		if x == nil {
			return ""
		}
		return *x
	default:
		return fmt.Sprint(v)
	}
}

func normalizeBit(v any) string {
	switch x := v.(type) {
	case nil:
		return "0"
	case bool:
		if x {
			return "1"
		}
		return "0"
	case int:
		if x != 0 {
			return "1"
		}
		return "0"
	default:
		s := normalizeText(v)
		if s == "1" || s == "true" {
			return "1"
		}
		return "0"
	}
}

func normalizeDate(v any) string {
	switch x := v.(type) {
	case nil:
		return ""
	case time.Time:
		return x.Format("2006-01-02")
	case *time.Time:
		if x == nil {
			return ""
		}
		return x.Format("2006-01-02")
	case string:
		if len(x) >= 10 {
			return x[:10]
		}
		return x
	case *string:
		if x == nil {
			return ""
		}
		return normalizeDate(*x)
	default:
		return normalizeText(v)
	}
}
