// Package dateparse turns the free-text ages job boards print ("il y a 2
// jours", "3 days ago", "Aujourd'hui", ISO strings) into absolute timestamps.
// French and English vocabularies are both understood because the upstream
// sites mix them freely.
package dateparse

import (
	"regexp"
	"strconv"
	"strings"
	"time"
)

var (
	daysRegex  = regexp.MustCompile(`(\d+)\s*(jour|day|j|d)`)
	hoursRegex = regexp.MustCompile(`(\d+)\s*(heure|hour|h)`)
	weeksRegex = regexp.MustCompile(`(\d+)\s*(semaine|week|w|s)`)

	isoDateRegex = regexp.MustCompile(`^\d{4}-\d{2}-\d{2}`)
)

// absoluteLayouts are tried in order by the fallback parser.
var absoluteLayouts = []string{
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02",
	time.RFC1123,
	time.RFC1123Z,
	"Jan 2, 2006",
	"2 January 2006",
	"January 2, 2006",
}

// Parse converts a temporal expression into a timestamp relative to the
// current clock. ok is false when the text carries no recognizable date.
func Parse(text string) (time.Time, bool) {
	return ParseAt(text, time.Now())
}

// ParseAt is Parse with an injected clock so filters and tests stay
// deterministic. It is total: any input yields (zero, false) at worst.
//
// Precedence, first match wins:
//  1. "instant"/"maintenant"/"now"/"juste"/"moment" -> now
//  2. "aujourd'hui"/"today"/"nouvelle"              -> now
//  3. "hier"/"yesterday"                            -> now - 1 day
//  4. N jour|day|j|d                                -> now - N days
//  5. N heure|hour|h                                -> now - N hours
//  6. N semaine|week|w|s                            -> now - N weeks
//  7. absolute layouts (ISO first)                  -> parsed value
//
// The numeric buckets are ordered so the single-letter units ("j", "d", "h",
// "s") only fire when the longer unit of an earlier bucket did not.
func ParseAt(text string, now time.Time) (time.Time, bool) {
	if strings.TrimSpace(text) == "" {
		return time.Time{}, false
	}

	lower := strings.ToLower(text)

	for _, k := range []string{"instant", "maintenant", "now", "juste", "moment"} {
		if strings.Contains(lower, k) {
			return now, true
		}
	}

	for _, k := range []string{"aujourd'hui", "today", "nouvelle"} {
		if strings.Contains(lower, k) {
			return now, true
		}
	}

	if strings.Contains(lower, "hier") || strings.Contains(lower, "yesterday") {
		return now.AddDate(0, 0, -1), true
	}

	if m := daysRegex.FindStringSubmatch(lower); m != nil {
		n, _ := strconv.Atoi(m[1])
		return now.AddDate(0, 0, -n), true
	}

	if m := hoursRegex.FindStringSubmatch(lower); m != nil {
		n, _ := strconv.Atoi(m[1])
		return now.Add(-time.Duration(n) * time.Hour), true
	}

	if m := weeksRegex.FindStringSubmatch(lower); m != nil {
		n, _ := strconv.Atoi(m[1])
		return now.AddDate(0, 0, -7*n), true
	}

	return parseAbsolute(text)
}

func parseAbsolute(text string) (time.Time, bool) {
	trimmed := strings.TrimSpace(text)

	//ISO prefix first: "2026-01-27" or "2026-01-27T10:00:00Z"
	if isoDateRegex.MatchString(trimmed) {
		for _, layout := range []string{time.RFC3339, "2006-01-02T15:04:05", "2006-01-02 15:04:05"} {
			if t, err := time.Parse(layout, trimmed); err == nil {
				return t, true
			}
		}
		if t, err := time.Parse("2006-01-02", trimmed[:10]); err == nil {
			return t, true
		}
	}

	//dd/mm/yyyy, the common French rendering
	if strings.Count(trimmed, "/") == 2 {
		parts := strings.Split(trimmed, "/")
		day, errD := strconv.Atoi(strings.TrimSpace(parts[0]))
		month, errM := strconv.Atoi(strings.TrimSpace(parts[1]))
		year, errY := strconv.Atoi(strings.TrimSpace(parts[2]))
		if errD == nil && errM == nil && errY == nil &&
			day >= 1 && day <= 31 && month >= 1 && month <= 12 && year >= 1000 {
			return time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC), true
		}
	}

	for _, layout := range absoluteLayouts {
		if t, err := time.Parse(layout, trimmed); err == nil {
			return t, true
		}
	}

	return time.Time{}, false
}
