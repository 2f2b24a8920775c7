package catalog

import (
	"strings"
	"time"

	"github.com/araddon/dateparse"
)

// Layouts the catalog exports commonly use. Anything else goes through
// dateparse.
var releaseDateLayouts = []string{
	"January 2, 2006",
	"Jan 2, 2006",
	"Jan 2 2006",
	"2 Jan 2006",
	"2 January 2006",
	"2006-01-02",
	"2006-01-02 15:04:05",
	"2006/01/02",
	"1/2/2006",
	"2-Jan-06",
	"2006",
	time.RFC3339,
}

// ParseReleaseDate parses a Release_Date cell into a UTC calendar date.
// Unparseable values report false.
func ParseReleaseDate(value string) (time.Time, bool) {
	value = strings.TrimSpace(value)
	if value == "" {
		return time.Time{}, false
	}
	value = strings.Replace(value, "Sept ", "Sep ", 1)

	for _, layout := range releaseDateLayouts {
		if t, err := time.Parse(layout, value); err == nil {
			return calendarDate(t), true
		}
	}

	t, err := dateparse.ParseIn(value, time.UTC)
	if err != nil {
		return time.Time{}, false
	}
	return calendarDate(t), true
}

func calendarDate(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
