package ingest

import (
	"fmt"
	"regexp"
	"time"
)

// Direct-parse layouts tried before the pattern fallbacks. Covers the
// formats seen in real carrier exports so far.
var timestampLayouts = []string{
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02",
	time.RFC1123,
	time.UnixDate,
}

var timestampPatterns = []struct {
	re *regexp.Regexp
	// order maps capture groups to year, month, day
	year, month, day int
}{
	// YYYY-MM-DD HH:MM:SS
	{regexp.MustCompile(`(\d{4})-(\d{2})-(\d{2})\s+(\d{2}):(\d{2}):(\d{2})`), 1, 2, 3},
	// MM/DD/YYYY HH:MM:SS
	{regexp.MustCompile(`(\d{2})/(\d{2})/(\d{4})\s+(\d{2}):(\d{2}):(\d{2})`), 3, 1, 2},
	// DD-MM-YYYY HH:MM:SS
	{regexp.MustCompile(`(\d{2})-(\d{2})-(\d{4})\s+(\d{2}):(\d{2}):(\d{2})`), 3, 2, 1},
}

// ResolveTimestamp parses a timestamp in any of the supported formats.
// Unparseable input resolves to the current wall clock, so a record is
// never lost to a mangled date column.
func ResolveTimestamp(text string) time.Time {
	return resolveTimestamp(text, time.Now())
}

func resolveTimestamp(text string, now time.Time) time.Time {
	for _, layout := range timestampLayouts {
		if t, err := time.Parse(layout, text); err == nil {
			return t
		}
	}

	for _, p := range timestampPatterns {
		m := p.re.FindStringSubmatch(text)
		if m == nil {
			continue
		}
		reordered := fmt.Sprintf("%s-%s-%sT%s:%s:%s", m[p.year], m[p.month], m[p.day], m[4], m[5], m[6])
		if t, err := time.Parse("2006-01-02T15:04:05", reordered); err == nil {
			return t
		}
	}

	return now
}
