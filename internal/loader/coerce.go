package loader

import (
	"math"
	"strconv"
	"strings"
	"time"
)

// naTokens are the cell values read as "not a number" rather than text.
// The set matches the defaults of the pandas CSV reader the dataset
// tooling uses, so both sides agree on what an empty cell is.
var naTokens = map[string]struct{}{
	"":         {},
	"#N/A":     {},
	"#N/A N/A": {},
	"#NA":      {},
	"-1.#IND":  {},
	"-1.#QNAN": {},
	"-NaN":     {},
	"-nan":     {},
	"1.#IND":   {},
	"1.#QNAN":  {},
	"<NA>":     {},
	"N/A":      {},
	"NA":       {},
	"NULL":     {},
	"NaN":      {},
	"None":     {},
	"n/a":      {},
	"nan":      {},
	"null":     {},
}

// IsMissing reports whether a raw cell is the not-a-number sentinel.
func IsMissing(s string) bool {
	if _, ok := naTokens[s]; ok {
		return true
	}
	return strings.EqualFold(s, "nan")
}

// SafeString returns the cell as text, or nil when it is missing.
func SafeString(s string) *string {
	if IsMissing(s) {
		return nil
	}
	return &s
}

// Unix seconds of 0001-01-01T00:00:00Z and 9999-12-31T23:59:59Z.
const (
	minEpochSeconds = -62135596800
	maxEpochSeconds = 253402300799
)

// SafeTimestamp reads the cell as Unix seconds and renders it as an
// ISO-8601 UTC string. Missing, unparsable, non-finite and out-of-range
// values yield nil.
func SafeTimestamp(s string) *string {
	if IsMissing(s) {
		return nil
	}
	f, ok := parseFloat(s)
	if !ok {
		return nil
	}
	iso, ok := FormatEpoch(f)
	if !ok {
		return nil
	}
	return &iso
}

// FormatEpoch renders fractional Unix seconds as
// 2006-01-02T15:04:05[.ffffff]+00:00. The fraction is rounded half-to-even
// to microseconds and only printed when non-zero. ok is false for values
// outside years 1 through 9999.
func FormatEpoch(f float64) (string, bool) {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return "", false
	}
	whole, frac := math.Modf(f)
	us := math.RoundToEven(frac * 1e6)
	switch {
	case us >= 1e6:
		whole++
		us -= 1e6
	case us < 0:
		whole--
		us += 1e6
	}
	if whole < minEpochSeconds || whole > maxEpochSeconds {
		return "", false
	}

	t := time.Unix(int64(whole), int64(us)*int64(time.Microsecond)).UTC()
	layout := "2006-01-02T15:04:05+00:00"
	if us != 0 {
		layout = "2006-01-02T15:04:05.000000+00:00"
	}
	return t.Format(layout), true
}

// SafeInt parses the cell as a decimal number and truncates it toward zero.
// Missing, unparsable, non-finite and out-of-int64-range values yield nil.
func SafeInt(s string) *int64 {
	if IsMissing(s) {
		return nil
	}
	f, ok := parseFloat(s)
	if !ok || math.IsNaN(f) || math.IsInf(f, 0) {
		return nil
	}
	t := math.Trunc(f)
	if t < math.MinInt64 || t >= math.MaxInt64 {
		return nil
	}
	v := int64(t)
	return &v
}

// parseFloat accepts decimal and exponent notation with surrounding spaces.
// Hexadecimal floats are rejected.
func parseFloat(s string) (float64, bool) {
	s = strings.TrimSpace(s)
	if s == "" || strings.ContainsAny(s, "xX_") {
		return 0, false
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, false
	}
	return f, true
}
