package catalog

import (
	"strconv"
	"time"

	"cine-stats/storage"

	"github.com/go-gota/gota/dataframe"
	"github.com/go-gota/gota/series"
	"github.com/pkg/errors"
)

// Sentinel values substituted for missing cells.
const (
	SentinelNoDirector     = "No Director"
	SentinelNoCast         = "No Cast"
	SentinelUnknownCountry = "Unknown Country"
	SentinelUnknown        = "Unknown"
)

// Sentinels maps each filled column to its placeholder.
var Sentinels = map[string]string{
	ColumnDirector: SentinelNoDirector,
	ColumnCast:     SentinelNoCast,
	ColumnCountry:  SentinelUnknownCountry,
	ColumnRating:   SentinelUnknown,
	ColumnDuration: SentinelUnknown,
}

var sentinelOrder = []string{ColumnDirector, ColumnCast, ColumnCountry, ColumnRating, ColumnDuration}

const naText = "NaN"

// clean parses release dates, fills sentinels, forward fills release dates and
// derives the Year column. Leading rows without a date stay missing.
func clean(df dataframe.DataFrame) (dataframe.DataFrame, error) {
	dates := parseReleaseDates(df.Col(ColumnReleaseDate))

	for _, name := range sentinelOrder {
		df = df.Mutate(fillMissing(df.Col(name), Sentinels[name]))
		if df.Err != nil {
			return df, errors.Wrapf(df.Err, "failed to fill %s", name)
		}
	}

	dates = forwardFill(dates)

	dateText := make([]string, len(dates))
	yearText := make([]string, len(dates))
	for i, d := range dates {
		if d == nil {
			dateText[i] = naText
			yearText[i] = naText
			continue
		}
		dateText[i] = d.Format(storage.DateLayout)
		yearText[i] = strconv.Itoa(d.Year())
	}

	df = df.Mutate(series.New(dateText, series.String, ColumnReleaseDate))
	if df.Err != nil {
		return df, errors.Wrap(df.Err, "failed to store release dates")
	}
	df = df.Mutate(series.New(yearText, series.Int, ColumnYear))
	if df.Err != nil {
		return df, errors.Wrap(df.Err, "failed to derive year")
	}
	return df, nil
}

func parseReleaseDates(col series.Series) []*time.Time {
	dates := make([]*time.Time, col.Len())
	for i := range dates {
		e := col.Elem(i)
		if e.IsNA() {
			continue
		}
		if d, ok := ParseReleaseDate(e.String()); ok {
			dates[i] = &d
		}
	}
	return dates
}

func fillMissing(col series.Series, sentinel string) series.Series {
	values := make([]string, col.Len())
	for i := range values {
		e := col.Elem(i)
		if e.IsNA() {
			values[i] = sentinel
		} else {
			values[i] = e.String()
		}
	}
	return series.New(values, series.String, col.Name)
}

// forwardFill replaces nil entries with the nearest preceding non-nil entry.
func forwardFill[T any](values []*T) []*T {
	filled := make([]*T, len(values))
	var last *T
	for i, v := range values {
		if v != nil {
			last = v
		}
		filled[i] = last
	}
	return filled
}
