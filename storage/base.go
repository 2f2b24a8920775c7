package storage

import (
	"strings"
	"time"
)

// DateLayout is the canonical text form of a cleaned release date.
const DateLayout = "2006-01-02"

// Tag kinds stored in title_tags.
const (
	TagCast  = "cast"
	TagGenre = "genre"
)

// Title is one cleaned catalog row. Columns that cleaning never fills are pointers.
type Title struct {
	Title       *string
	Director    string
	Cast        string
	Country     string
	ReleaseDate *time.Time
	Year        *int
	Rating      string
	Duration    string
	Category    *string // "Movie" or "TV Show"
	ListedIn    *string
}

// Count is one group of a grouped count.
type Count struct {
	Key   string
	Count int
}

// YearCategoryCount is one cell of the year x category matrix.
type YearCategoryCount struct {
	Year     int
	Category string
	Count    int
}

// SplitNames splits a comma separated list cell such as Cast or Listed_In.
func SplitNames(cell string) []string {
	var names []string
	for _, part := range strings.Split(cell, ",") {
		if name := strings.TrimSpace(part); name != "" {
			names = append(names, name)
		}
	}
	return names
}
