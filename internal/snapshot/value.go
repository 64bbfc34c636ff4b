// Tabularium - Logical Database Backup and Restore Engine
// Copyright 2026 The Tabularium Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tabularium/tabularium

package snapshot

import (
	"strconv"
	"time"

	"github.com/goccy/go-json"
)

// Kind identifies the type of a captured cell value. The set is closed:
// every value a snapshot can carry is one of these five kinds.
type Kind int

const (
	KindNull Kind = iota
	KindBool
	KindNumber
	KindText
	KindTimestamp
)

// String returns a human-readable kind name.
func (k Kind) String() string {
	switch k {
	case KindNull:
		return "null"
	case KindBool:
		return "bool"
	case KindNumber:
		return "number"
	case KindText:
		return "text"
	case KindTimestamp:
		return "timestamp"
	default:
		return "unknown"
	}
}

// Value is a single captured cell. The zero Value is null.
//
// Numbers are carried as json.Number so wide integers survive a round trip
// without float64 truncation. Timestamps serialize as RFC 3339 UTC text,
// keeping the on-disk form unambiguous and locale-independent.
type Value struct {
	kind Kind
	b    bool
	num  json.Number
	text string
	ts   time.Time
}

// Null returns the null value.
func Null() Value {
	return Value{kind: KindNull}
}

// Bool returns a boolean value.
func Bool(b bool) Value {
	return Value{kind: KindBool, b: b}
}

// Number returns a numeric value from a JSON number literal.
func Number(n json.Number) Value {
	return Value{kind: KindNumber, num: n}
}

// NumberInt returns a numeric value from an integer.
func NumberInt(i int64) Value {
	return Value{kind: KindNumber, num: json.Number(strconv.FormatInt(i, 10))}
}

// NumberFloat returns a numeric value from a finite float.
// Callers must reject NaN and infinities first; they have no JSON form.
func NumberFloat(f float64) Value {
	return Value{kind: KindNumber, num: json.Number(strconv.FormatFloat(f, 'g', -1, 64))}
}

// Text returns a string value.
func Text(s string) Value {
	return Value{kind: KindText, text: s}
}

// Timestamp returns a temporal value.
func Timestamp(t time.Time) Value {
	return Value{kind: KindTimestamp, ts: t.UTC()}
}

// Kind returns the value's kind.
func (v Value) Kind() Kind { return v.kind }

// IsNull reports whether the value is null.
func (v Value) IsNull() bool { return v.kind == KindNull }

// Bool returns the boolean content. Valid only for KindBool.
func (v Value) Bool() bool { return v.b }

// Number returns the numeric content. Valid only for KindNumber.
func (v Value) Number() json.Number { return v.num }

// Text returns the string content. Valid only for KindText.
func (v Value) Text() string { return v.text }

// Time returns the temporal content. Valid only for KindTimestamp.
func (v Value) Time() time.Time { return v.ts }

// Native converts the value to the representation database drivers accept:
// nil, bool, int64, float64, string, or time.Time. Numbers too wide for
// both int64 and float64 fall back to their literal string and rely on the
// destination engine's cast.
func (v Value) Native() any {
	switch v.kind {
	case KindNull:
		return nil
	case KindBool:
		return v.b
	case KindNumber:
		if i, err := v.num.Int64(); err == nil {
			return i
		}
		if f, err := v.num.Float64(); err == nil {
			return f
		}
		return v.num.String()
	case KindText:
		return v.text
	case KindTimestamp:
		return v.ts
	default:
		return nil
	}
}

// Equal reports semantic equality. Numbers compare by literal (the codec
// preserves literals exactly), timestamps by instant.
func (v Value) Equal(o Value) bool {
	if v.kind != o.kind {
		return false
	}
	switch v.kind {
	case KindNull:
		return true
	case KindBool:
		return v.b == o.b
	case KindNumber:
		return v.num == o.num
	case KindText:
		return v.text == o.text
	case KindTimestamp:
		return v.ts.Equal(o.ts)
	default:
		return false
	}
}

// String renders the value for logs and error messages.
func (v Value) String() string {
	switch v.kind {
	case KindNull:
		return "null"
	case KindBool:
		return strconv.FormatBool(v.b)
	case KindNumber:
		return v.num.String()
	case KindText:
		return strconv.Quote(v.text)
	case KindTimestamp:
		return v.ts.UTC().Format(time.RFC3339Nano)
	default:
		return "unknown"
	}
}

// MarshalJSON renders the value as a JSON scalar.
func (v Value) MarshalJSON() ([]byte, error) {
	switch v.kind {
	case KindNull:
		return []byte("null"), nil
	case KindBool:
		if v.b {
			return []byte("true"), nil
		}
		return []byte("false"), nil
	case KindNumber:
		if v.num == "" {
			return []byte("0"), nil
		}
		return []byte(v.num), nil
	case KindText:
		return json.Marshal(v.text)
	case KindTimestamp:
		return json.Marshal(v.ts.UTC().Format(time.RFC3339Nano))
	default:
		return []byte("null"), nil
	}
}

// textOrTimestamp classifies a decoded JSON string: strict RFC 3339 strings
// return to KindTimestamp so captured temporal values keep their kind
// across a round trip; everything else stays text.
func textOrTimestamp(s string) Value {
	if t, ok := parseTimestampText(s); ok {
		return Timestamp(t)
	}
	return Text(s)
}

// parseTimestampText accepts only full RFC 3339 forms ("2026-01-02T15:04:05Z",
// fractional seconds and numeric offsets included). The cheap shape gate
// keeps ordinary text from paying a time.Parse on every string cell.
func parseTimestampText(s string) (time.Time, bool) {
	if len(s) < 20 || s[4] != '-' || s[7] != '-' || (s[10] != 'T' && s[10] != 't') {
		return time.Time{}, false
	}
	t, err := time.Parse(time.RFC3339Nano, s)
	if err != nil {
		return time.Time{}, false
	}
	return t, true
}
