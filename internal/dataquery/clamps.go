package dataquery

import "time"

// Ceilings applied by every query tool. Out-of-range input is corrected
// into range, never rejected, because the caller is usually an LLM.
const (
	MaxLimit     = 500
	DefaultLimit = 50

	MaxRangeDays     = 90
	DefaultRangeDays = 7
)

const dateLayout = "2006-01-02"

// clampLimit corrects limit into [1, MaxLimit]. Zero and negative values
// are indistinguishable from an omitted JSON field after decoding, so both
// take the default rather than the lower boundary.
func clampLimit(limit int) int {
	switch {
	case limit <= 0:
		return DefaultLimit
	case limit > MaxLimit:
		return MaxLimit
	default:
		return limit
	}
}

// clampRange parses a lenient (from, to) pair of YYYY-MM-DD strings.
// Unparseable or absent bounds are derived from the other bound or from the
// default recent window; an inverted pair is swapped; a span longer than
// MaxRangeDays is shortened by pulling to back toward from.
func clampRange(fromStr, toStr string) (string, string) {
	now := time.Now().UTC().Truncate(24 * time.Hour)

	from, fromOK := parseDate(fromStr)
	to, toOK := parseDate(toStr)

	switch {
	case !fromOK && !toOK:
		to = now
		from = now.AddDate(0, 0, -(DefaultRangeDays - 1))
	case !fromOK:
		from = to.AddDate(0, 0, -(DefaultRangeDays - 1))
	case !toOK:
		to = from.AddDate(0, 0, DefaultRangeDays-1)
	}

	if from.After(to) {
		from, to = to, from
	}
	if to.Sub(from) > time.Duration(MaxRangeDays-1)*24*time.Hour {
		to = from.AddDate(0, 0, MaxRangeDays-1)
	}

	return from.Format(dateLayout), to.Format(dateLayout)
}

func parseDate(s string) (time.Time, bool) {
	if s == "" {
		return time.Time{}, false
	}
	t, err := time.Parse(dateLayout, s)
	if err != nil {
		return time.Time{}, false
	}
	return t, true
}
