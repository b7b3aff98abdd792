package statement

import (
	"bytes"
	"encoding/json"
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// Record is a raw document as returned by the document store. Field types are
// whatever the upstream writer stored; accessors coerce on read.
type Record map[string]any

// DecodeRecord parses a JSON object into a Record. Numbers are kept as
// json.Number so amounts never pass through float64.
func DecodeRecord(data []byte) (Record, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	var rec Record
	if err := dec.Decode(&rec); err != nil {
		return nil, fmt.Errorf("statement: decode record: %w", err)
	}
	return rec, nil
}

// Lookup returns the first present value among keys. Exact keys are tried
// first, then a case and punctuation insensitive match.
func (r Record) Lookup(keys ...string) (any, bool) {
	if len(r) == 0 {
		return nil, false
	}
	for _, key := range keys {
		if v, ok := r[key]; ok && v != nil {
			return v, true
		}
	}
	names := make([]string, 0, len(r))
	for name := range r {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, key := range keys {
		want := normalizeKey(key)
		for _, name := range names {
			if normalizeKey(name) == want && r[name] != nil {
				return r[name], true
			}
		}
	}
	return nil, false
}

// String returns the first present value among keys rendered as text.
func (r Record) String(keys ...string) string {
	v, ok := r.Lookup(keys...)
	if !ok {
		return ""
	}
	return textOf(v)
}

// Decimal returns the first present value among keys coerced to a decimal.
// Absent or non-numeric values yield zero.
func (r Record) Decimal(keys ...string) decimal.Decimal {
	v, ok := r.Lookup(keys...)
	if !ok {
		return decimal.Zero
	}
	d, _ := CoerceDecimal(v)
	return d
}

// HasNumber reports whether one of keys holds a numeric value.
func (r Record) HasNumber(keys ...string) bool {
	v, ok := r.Lookup(keys...)
	if !ok {
		return false
	}
	_, ok = CoerceDecimal(v)
	return ok
}

// Records returns the nested object list stored under key.
func (r Record) Records(keys ...string) []Record {
	v, ok := r.Lookup(keys...)
	if !ok {
		return nil
	}
	list, ok := v.([]any)
	if !ok {
		if typed, ok := v.([]Record); ok {
			return typed
		}
		if typed, ok := v.([]map[string]any); ok {
			out := make([]Record, 0, len(typed))
			for _, item := range typed {
				out = append(out, Record(item))
			}
			return out
		}
		return nil
	}
	out := make([]Record, 0, len(list))
	for _, item := range list {
		switch typed := item.(type) {
		case map[string]any:
			out = append(out, Record(typed))
		case Record:
			out = append(out, typed)
		}
	}
	return out
}

// CoerceDecimal converts upstream numeric representations to a decimal. The
// boolean is false when the value is absent or not numeric.
func CoerceDecimal(v any) (decimal.Decimal, bool) {
	switch typed := v.(type) {
	case nil:
		return decimal.Zero, false
	case decimal.Decimal:
		return typed, true
	case float64:
		return decimal.NewFromFloat(typed), true
	case float32:
		return decimal.NewFromFloat32(typed), true
	case int:
		return decimal.NewFromInt(int64(typed)), true
	case int32:
		return decimal.NewFromInt32(typed), true
	case int64:
		return decimal.NewFromInt(typed), true
	case uint:
		return decimal.NewFromInt(int64(typed)), true
	case uint32:
		return decimal.NewFromInt(int64(typed)), true
	case uint64:
		return decimal.NewFromInt(int64(typed)), true
	case json.Number:
		d, err := decimal.NewFromString(typed.String())
		if err != nil {
			return decimal.Zero, false
		}
		return d, true
	case string:
		return parseAmount(typed)
	default:
		return decimal.Zero, false
	}
}

func parseAmount(s string) (decimal.Decimal, bool) {
	s = strings.TrimSpace(s)
	s = strings.TrimPrefix(s, "R")
	s = strings.Map(func(r rune) rune {
		if r == ',' || r == ' ' || r == '\u00a0' {
			return -1
		}
		return r
	}, s)
	if s == "" {
		return decimal.Zero, false
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, false
	}
	return d, true
}

func textOf(v any) string {
	switch typed := v.(type) {
	case string:
		return strings.TrimSpace(typed)
	case json.Number:
		return typed.String()
	case float64:
		return strconv.FormatFloat(typed, 'f', -1, 64)
	case int:
		return strconv.Itoa(typed)
	case int64:
		return strconv.FormatInt(typed, 10)
	case bool:
		return strconv.FormatBool(typed)
	case decimal.Decimal:
		return typed.String()
	case time.Time:
		return typed.UTC().Format("2006-01-02")
	default:
		return ""
	}
}

func normalizeKey(key string) string {
	var b strings.Builder
	for _, r := range strings.ToLower(key) {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') || r == '+' {
			b.WriteRune(r)
		}
	}
	return b.String()
}
