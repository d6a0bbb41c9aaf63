// Package timefmt normalizes the heterogeneous timestamp representations the
// aggregator feeds deliver (ISO-8601 with zone suffix, date-only, naive) into
// one canonical local-civil-time string, and produces a zone-insensitive form
// for equality comparisons.
//
// Every timestamp the dashboard persists is a "YYYY-MM-DD HH:MM:SS" string in
// Brasília civil time (fixed UTC-3). Timestamps stay strings end to end:
// conflict detection compares wall-clock components, and a canonical string
// survives round trips through the store unchanged.
package timefmt

import (
	"strings"
	"time"

	"github.com/RenatoMoratti/finance-app/internal/logger"
)

// Layout is the canonical timestamp layout used across the store.
const Layout = "2006-01-02 15:04:05"

// brasilia is the fixed UTC-3 zone all civil timestamps are expressed in.
// Brazil abolished DST in 2019, so a fixed offset is correct year-round.
var brasilia = time.FixedZone("-03", -3*60*60)

// Now returns the current Brasília civil time in the canonical layout.
func Now() string {
	return time.Now().In(brasilia).Format(Layout)
}

// ToCanonical converts an ISO-8601 timestamp into the canonical civil form.
//
// Values without a 'T' date-time separator or without a zone marker are
// already canonical (or date-only) and are returned unchanged. For zoned
// values, sub-second precision is dropped and:
//   - exactly-midnight-UTC values are treated as pure calendar dates and kept
//     as "YYYY-MM-DD 00:00:00" with no zone shift, so date-only feeds do not
//     drift across a day boundary;
//   - any other time of day is converted to Brasília civil time.
//
// ToCanonical never fails: on a malformed input it logs a warning and returns
// the original string.
func ToCanonical(raw string) string {
	if raw == "" {
		return raw
	}
	if !strings.Contains(raw, "T") || !hasZoneMarker(raw) {
		return raw
	}

	t, err := time.Parse(time.RFC3339, stripFraction(raw))
	if err != nil {
		logger.Get().Warnw("could not canonicalize timestamp", "value", raw, "error", err)
		return raw
	}

	utc := t.UTC()
	if utc.Hour() == 0 && utc.Minute() == 0 && utc.Second() == 0 {
		return utc.Format("2006-01-02") + " 00:00:00"
	}
	return utc.In(brasilia).Format(Layout)
}

// NormalizeForComparison reduces a timestamp to a strict
// "YYYY-MM-DD HH:MM:SS" string for equality checks. Zone offsets and 'Z'
// markers are stripped rather than applied: two representations of the same
// wall clock must compare equal even when one carries a zone and the other
// does not, otherwise every sync would see false diffs. Missing minutes or
// seconds are zero-padded. If the result does not parse under the strict
// layout, the trimmed original is returned.
func NormalizeForComparison(raw string) string {
	s := strings.TrimSpace(raw)
	if s == "" {
		return ""
	}

	stripped := stripZone(s)

	var datePart, timePart string
	switch {
	case strings.Contains(stripped, "T"):
		parts := strings.SplitN(stripped, "T", 2)
		datePart = parts[0]
		timePart = parts[1]
	case strings.Contains(stripped, " "):
		parts := strings.SplitN(stripped, " ", 2)
		datePart = parts[0]
		timePart = parts[1]
	default:
		datePart = stripped
		timePart = "00:00:00"
	}

	// Drop sub-second precision.
	if i := strings.IndexByte(timePart, '.'); i >= 0 {
		timePart = timePart[:i]
	}

	switch strings.Count(timePart, ":") {
	case 0:
		timePart += ":00:00"
	case 1:
		timePart += ":00"
	}

	normalized := datePart + " " + timePart
	if _, err := time.Parse(Layout, normalized); err != nil {
		return s
	}
	return normalized
}

// Equal reports whether two raw timestamps denote the same moment under
// comparison normalization.
func Equal(a, b string) bool {
	return NormalizeForComparison(a) == NormalizeForComparison(b)
}

// hasZoneMarker reports whether s carries an explicit zone: a trailing 'Z'
// or a +hh:mm / -hh:mm offset after the time portion.
func hasZoneMarker(s string) bool {
	if strings.HasSuffix(s, "Z") {
		return true
	}
	t := strings.IndexByte(s, 'T')
	if t < 0 {
		return false
	}
	rest := s[t+1:]
	return strings.ContainsAny(rest, "+") || strings.LastIndexByte(rest, '-') > strings.IndexByte(rest, ':')
}

// stripZone removes a trailing 'Z' or an explicit offset from s.
func stripZone(s string) string {
	s = strings.TrimSuffix(s, "Z")
	if i := strings.IndexByte(s, '+'); i >= 0 {
		return s[:i]
	}
	// A '-' only counts as an offset when it appears after the time part;
	// earlier hyphens are date separators.
	if c := strings.IndexByte(s, ':'); c >= 0 {
		if i := strings.LastIndexByte(s, '-'); i > c {
			return s[:i]
		}
	}
	return s
}

// stripFraction removes a fractional-seconds component, keeping any suffix
// (zone marker) that follows the digits.
func stripFraction(s string) string {
	i := strings.IndexByte(s, '.')
	if i < 0 {
		return s
	}
	j := i + 1
	for j < len(s) && s[j] >= '0' && s[j] <= '9' {
		j++
	}
	return s[:i] + s[j:]
}
