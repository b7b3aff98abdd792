package statement

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
)

// RollupThresholdDays is the first bucket folded into Days120Plus.
const RollupThresholdDays = 120

// BalanceTolerance is the rounding tolerance for balance reconciliation.
var BalanceTolerance = decimal.RequireFromString("0.01")

// AgingResult is the output of CalculateAging.
type AgingResult struct {
	Buckets        AgingBuckets
	ClosingBalance decimal.Decimal
	Warnings       []string
}

// CalculateAging folds a raw aged-analysis record into the five statement
// buckets. Every bucket at or above 120 days is summed into Days120Plus.
// A pre-rolled 120+ bucket is ignored when the record also carries the raw
// buckets it summarises. Inconsistent data is reported in Warnings, never
// rejected.
func CalculateAging(raw Record) AgingResult {
	var result AgingResult
	if len(raw) == 0 {
		return result
	}

	keys := make([]string, 0, len(raw))
	for key := range raw {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	type bucket struct {
		key    string
		days   int
		rolled bool
		value  decimal.Decimal
	}
	var buckets []bucket
	hasRawOver120 := false
	for _, key := range keys {
		days, ok := bucketThreshold(key)
		if !ok {
			if looksLikeBucket(key) {
				result.Warnings = append(result.Warnings, fmt.Sprintf("aging bucket %q not recognised", key))
			}
			continue
		}
		value, numeric := CoerceDecimal(raw[key])
		if !numeric {
			if raw[key] != nil && textOf(raw[key]) != "" {
				result.Warnings = append(result.Warnings, fmt.Sprintf("aging bucket %q is not numeric", key))
			}
			continue
		}
		if value.IsNegative() {
			result.Warnings = append(result.Warnings, fmt.Sprintf("aging bucket %q is negative (%s)", key, value.StringFixed(2)))
		}
		rolled := isRolledUpBucket(key, days)
		if days >= RollupThresholdDays && !rolled {
			hasRawOver120 = true
		}
		buckets = append(buckets, bucket{key: key, days: days, rolled: rolled, value: value})
	}

	for _, b := range buckets {
		if b.rolled && hasRawOver120 {
			result.Warnings = append(result.Warnings, fmt.Sprintf("aging bucket %q ignored: record also carries the buckets it rolls up", b.key))
			continue
		}
		switch {
		case b.days >= RollupThresholdDays:
			result.Buckets.Days120Plus = result.Buckets.Days120Plus.Add(b.value)
		case b.days >= 90:
			result.Buckets.Days90 = result.Buckets.Days90.Add(b.value)
		case b.days >= 60:
			result.Buckets.Days60 = result.Buckets.Days60.Add(b.value)
		case b.days >= 30:
			result.Buckets.Days30 = result.Buckets.Days30.Add(b.value)
		default:
			result.Buckets.Current = result.Buckets.Current.Add(b.value)
		}
	}

	result.ClosingBalance = result.Buckets.Total()
	if result.ClosingBalance.IsNegative() {
		result.Warnings = append(result.Warnings, fmt.Sprintf("closing balance is negative (%s)", result.ClosingBalance.StringFixed(2)))
	}
	if raw.HasNumber("closingBalance", "closing_balance", "total", "totalBalance") {
		declared := raw.Decimal("closingBalance", "closing_balance", "total", "totalBalance")
		if declared.Sub(result.ClosingBalance).Abs().GreaterThan(BalanceTolerance) {
			result.Warnings = append(result.Warnings, fmt.Sprintf("declared closing balance %s differs from bucket total %s",
				declared.StringFixed(2), result.ClosingBalance.StringFixed(2)))
		}
	}
	return result
}

// bucketThreshold parses the day threshold from bucket keys such as
// "current", "30 Days", "days60", "120", "390+ days" or "31-60 days". A
// range yields its lower bound.
func bucketThreshold(key string) (int, bool) {
	if normalizeKey(key) == "current" {
		return 0, true
	}
	if lower, rest, ok := splitRange(strings.ToLower(key)); ok {
		if !bucketSuffix(normalizeKey(rest)) {
			return 0, false
		}
		return lower, true
	}
	norm := normalizeKey(key)
	start, end, ok := digitRun(norm, 0)
	if !ok {
		return 0, false
	}
	days, err := strconv.Atoi(norm[start:end])
	if err != nil {
		return 0, false
	}
	if !bucketSuffix(norm[:start] + norm[end:]) {
		return 0, false
	}
	return days, true
}

// splitRange recognises "<from>-<to>" and "<from> to <to>" keys and returns
// the lower bound and the key text around the range.
func splitRange(key string) (int, string, bool) {
	start, end, ok := digitRun(key, 0)
	if !ok {
		return 0, "", false
	}
	i := skipSeparators(key, end)
	switch {
	case i < len(key) && key[i] == '-':
		i++
	case strings.HasPrefix(key[i:], "to"):
		i += 2
	default:
		return 0, "", false
	}
	i = skipSeparators(key, i)
	toStart, toEnd, ok := digitRun(key, i)
	if !ok || toStart != i {
		return 0, "", false
	}
	lower, err := strconv.Atoi(key[start:end])
	if err != nil {
		return 0, "", false
	}
	return lower, key[:start] + key[toEnd:], true
}

func digitRun(s string, from int) (int, int, bool) {
	start := strings.IndexAny(s[from:], "0123456789")
	if start < 0 {
		return 0, 0, false
	}
	start += from
	end := start
	for end < len(s) && s[end] >= '0' && s[end] <= '9' {
		end++
	}
	return start, end, true
}

func skipSeparators(s string, i int) int {
	for i < len(s) && (s[i] == ' ' || s[i] == '_') {
		i++
	}
	return i
}

func bucketSuffix(rest string) bool {
	switch strings.ReplaceAll(rest, "+", "") {
	case "", "day", "days", "plus", "daysplus", "dayplus":
		return true
	}
	return false
}

// isRolledUpBucket reports whether key is an already summed 120+ bucket
// such as "days120Plus" or "120+ days".
func isRolledUpBucket(key string, days int) bool {
	if days != RollupThresholdDays {
		return false
	}
	norm := normalizeKey(key)
	return strings.Contains(norm, "+") || strings.Contains(norm, "plus")
}

// looksLikeBucket reports whether an unparsed key still reads like an aging
// bucket and deserves a warning.
func looksLikeBucket(key string) bool {
	norm := normalizeKey(key)
	if norm == "" {
		return false
	}
	return strings.Contains(norm, "day") || (norm[0] >= '0' && norm[0] <= '9')
}
