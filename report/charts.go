package report

import (
	"context"
	"image/color"
	"math"
	"sort"
	"strconv"
	"strings"

	"cine-stats/catalog"
	"cine-stats/storage"

	"github.com/pkg/errors"
	"gonum.org/v1/gonum/stat"
)

// TopN bounds every top-N chart.
const TopN = 10

// DurationBins is the bucket count of the movie duration histogram.
const DurationBins = 30

// Querier answers the grouped queries the charts need.
type Querier interface {
	CountBy(ctx context.Context, q storage.CountQuery) ([]storage.Count, error)
	CountTags(ctx context.Context, kind string, limit int) ([]storage.Count, error)
	CountByYearAndCategory(ctx context.Context) ([]storage.YearCategoryCount, error)
	DurationsFor(ctx context.Context, category string) ([]string, error)
}

// Source is the loaded catalog a chart reads from.
type Source struct {
	Table *catalog.Table
	Store Querier
}

// Builder computes one figure.
type Builder func(ctx context.Context, src Source) (Figure, error)

func CategoryCounts(ctx context.Context, src Source) (Figure, error) {
	counts, err := src.Store.CountBy(ctx, storage.CountQuery{Column: storage.ColumnCategory})
	if err != nil {
		return Figure{}, errors.Wrap(err, "failed to count categories")
	}
	return countsFigure(counts, Figure{
		Name:   "category-distribution",
		Title:  "Distribution of Category (Movie vs TV Show)",
		XLabel: "Category",
		YLabel: "Count",
		Kind:   Bar,
		Colors: []color.Color{SkyBlue, Salmon},
	}), nil
}

func TitlesPerYear(ctx context.Context, src Source) (Figure, error) {
	counts, err := src.Store.CountBy(ctx, storage.CountQuery{Column: storage.ColumnYear, ByKey: true})
	if err != nil {
		return Figure{}, errors.Wrap(err, "failed to count titles per year")
	}
	return countsFigure(counts, Figure{
		Name:   "titles-over-years",
		Title:  "Number of Titles Over the Years",
		XLabel: "Year",
		YLabel: "Number of Releases",
		Kind:   Line,
		Colors: []color.Color{Teal},
	}), nil
}

func TopCountries(ctx context.Context, src Source) (Figure, error) {
	counts, err := src.Store.CountBy(ctx, storage.CountQuery{Column: storage.ColumnCountry, Limit: TopN})
	if err != nil {
		return Figure{}, errors.Wrap(err, "failed to count countries")
	}
	return countsFigure(counts, Figure{
		Name:   "top-countries",
		Title:  "Top 10 Countries by Number of Titles",
		XLabel: "Number of Titles",
		YLabel: "Country",
		Kind:   HorizontalBar,
		Colors: []color.Color{ForestGreen},
	}), nil
}

func RatingCounts(ctx context.Context, src Source) (Figure, error) {
	counts, err := src.Store.CountBy(ctx, storage.CountQuery{Column: storage.ColumnRating})
	if err != nil {
		return Figure{}, errors.Wrap(err, "failed to count ratings")
	}
	return countsFigure(counts, Figure{
		Name:   "rating-distribution",
		Title:  "Distribution of Ratings",
		XLabel: "Count",
		YLabel: "Rating",
		Kind:   HorizontalBar,
		Colors: []color.Color{Purple},
	}), nil
}

func TopDirectors(ctx context.Context, src Source) (Figure, error) {
	counts, err := src.Store.CountBy(ctx, storage.CountQuery{
		Column:  storage.ColumnDirector,
		Exclude: []string{catalog.SentinelNoDirector},
		Limit:   TopN,
	})
	if err != nil {
		return Figure{}, errors.Wrap(err, "failed to count directors")
	}
	return countsFigure(counts, Figure{
		Name:   "top-directors",
		Title:  "Top 10 Directors by Number of Titles",
		XLabel: "Number of Titles",
		YLabel: "Director",
		Kind:   HorizontalBar,
		Colors: []color.Color{DarkBlue},
	}), nil
}

// CategoryByYear plots one series per category. Years without titles of a
// category are NaN.
func CategoryByYear(ctx context.Context, src Source) (Figure, error) {
	rows, err := src.Store.CountByYearAndCategory(ctx)
	if err != nil {
		return Figure{}, errors.Wrap(err, "failed to count categories per year")
	}
	labels, series := pivotByYear(rows, math.NaN())
	return Figure{
		Name:   "movies-vs-shows",
		Title:  "Movies vs TV Shows Over the Years",
		XLabel: "Year",
		YLabel: "Number of Releases",
		Kind:   Area,
		Labels: labels,
		Series: series,
	}, nil
}

func MovieDurations(ctx context.Context, src Source) (Figure, error) {
	durations, err := src.Store.DurationsFor(ctx, catalog.CategoryMovie)
	if err != nil {
		return Figure{}, errors.Wrap(err, "failed to read movie durations")
	}
	var minutes []float64
	for _, d := range durations {
		if m, ok := ParseMinutes(d); ok {
			minutes = append(minutes, m)
		}
	}
	return Figure{
		Name:    "movie-duration",
		Title:   "Distribution of Movie Durations",
		XLabel:  "Duration (minutes)",
		YLabel:  "Count",
		Kind:    Histogram,
		Colors:  []color.Color{Coral},
		Samples: minutes,
		Bins:    DurationBins,
	}, nil
}

func TopCast(ctx context.Context, src Source) (Figure, error) {
	counts, err := src.Store.CountTags(ctx, storage.TagCast, TopN)
	if err != nil {
		return Figure{}, errors.Wrap(err, "failed to count cast members")
	}
	return countsFigure(counts, Figure{
		Name:   "top-cast",
		Title:  "Top 10 Most Frequent Cast Members",
		XLabel: "Appearances",
		YLabel: "Actor/Actress",
		Kind:   HorizontalBar,
		Colors: []color.Color{Orange},
	}), nil
}

// UnknownPercentages measures the share of cells holding the literal "Unknown"
// sentinel per column. Columns without any are left out.
func UnknownPercentages(_ context.Context, src Source) (Figure, error) {
	type share struct {
		column  string
		percent float64
	}

	total := src.Table.Len()
	var shares []share
	if total > 0 {
		for _, name := range src.Table.Columns() {
			n := 0
			for _, v := range src.Table.Column(name) {
				if v == catalog.SentinelUnknown {
					n++
				}
			}
			if n > 0 {
				shares = append(shares, share{name, 100 * float64(n) / float64(total)})
			}
		}
	}
	sort.SliceStable(shares, func(i, j int) bool { return shares[i].percent < shares[j].percent })

	fig := Figure{
		Name:   "unknown-data",
		Title:  "Percentage of 'Unknown' Values per Column",
		XLabel: "Percentage",
		YLabel: "Column",
		Kind:   HorizontalBar,
		Colors: []color.Color{Grey},
	}
	values := make([]float64, len(shares))
	for i, s := range shares {
		fig.Labels = append(fig.Labels, s.column)
		values[i] = s.percent
	}
	fig.Series = []Series{{Name: "percent", Values: values}}
	return fig, nil
}

// Correlation computes pairwise Pearson correlation over numeric columns
// using the rows where both columns are present.
func Correlation(_ context.Context, src Source) (Figure, error) {
	names := src.Table.NumericColumns()
	columns := make([][]float64, len(names))
	for i, name := range names {
		columns[i] = src.Table.Floats(name)
	}

	matrix := make([][]float64, len(names))
	for i := range names {
		matrix[i] = make([]float64, len(names))
		for j := range names {
			matrix[i][j] = pairwiseCorrelation(columns[i], columns[j])
		}
	}

	return Figure{
		Name:   "correlation-heatmap",
		Title:  "Correlation Heatmap",
		Kind:   Heatmap,
		Labels: names,
		Matrix: matrix,
	}, nil
}

// Growth stacks the per category yearly counts with empty cells as zero.
func Growth(ctx context.Context, src Source) (Figure, error) {
	rows, err := src.Store.CountByYearAndCategory(ctx)
	if err != nil {
		return Figure{}, errors.Wrap(err, "failed to count categories per year")
	}
	labels, series := pivotByYear(rows, 0)
	return Figure{
		Name:   "growth",
		Title:  "Growth: Movies and TV Shows by Year",
		XLabel: "Year",
		YLabel: "Number of Releases",
		Kind:   StackedBar,
		Colors: []color.Color{Teal, Orange},
		Labels: labels,
		Series: series,
	}, nil
}

func TopGenres(ctx context.Context, src Source) (Figure, error) {
	counts, err := src.Store.CountTags(ctx, storage.TagGenre, TopN)
	if err != nil {
		return Figure{}, errors.Wrap(err, "failed to count genres")
	}
	return countsFigure(counts, Figure{
		Name:   "top-genres",
		Title:  "Top 10 Content Genres",
		XLabel: "Count",
		YLabel: "Genre",
		Kind:   HorizontalBar,
		Colors: []color.Color{Purple},
	}), nil
}

// ParseMinutes reads a Duration cell such as "90 min". Cells in any other unit,
// including the "Unknown" sentinel, report false.
func ParseMinutes(duration string) (float64, bool) {
	value := strings.TrimSpace(duration)
	trimmed := strings.TrimSuffix(value, "min")
	if trimmed == value {
		return 0, false
	}
	m, err := strconv.ParseFloat(strings.TrimSpace(trimmed), 64)
	if err != nil || math.IsNaN(m) || math.IsInf(m, 0) {
		return 0, false
	}
	return m, true
}

func countsFigure(counts []storage.Count, fig Figure) Figure {
	values := make([]float64, len(counts))
	labels := make([]string, len(counts))
	for i, c := range counts {
		labels[i] = c.Key
		values[i] = float64(c.Count)
	}
	fig.Labels = labels
	fig.Series = []Series{{Name: "count", Values: values}}
	return fig
}

// pivotByYear turns (year, category, count) rows ordered by year into one
// series per category, categories sorted by name.
func pivotByYear(rows []storage.YearCategoryCount, fill float64) ([]string, []Series) {
	var years []int
	yearIndex := make(map[int]int)
	categoryIndex := make(map[string]int)
	var categories []string

	for _, r := range rows {
		if _, ok := yearIndex[r.Year]; !ok {
			yearIndex[r.Year] = len(years)
			years = append(years, r.Year)
		}
		if _, ok := categoryIndex[r.Category]; !ok {
			categoryIndex[r.Category] = len(categories)
			categories = append(categories, r.Category)
		}
	}
	sort.Strings(categories)
	for i, c := range categories {
		categoryIndex[c] = i
	}

	series := make([]Series, len(categories))
	for i, c := range categories {
		values := make([]float64, len(years))
		for j := range values {
			values[j] = fill
		}
		series[i] = Series{Name: c, Values: values}
	}
	for _, r := range rows {
		series[categoryIndex[r.Category]].Values[yearIndex[r.Year]] = float64(r.Count)
	}

	labels := make([]string, len(years))
	for i, y := range years {
		labels[i] = strconv.Itoa(y)
	}
	return labels, series
}

func pairwiseCorrelation(x, y []float64) float64 {
	var xs, ys []float64
	for i := range x {
		if math.IsNaN(x[i]) || math.IsNaN(y[i]) {
			continue
		}
		xs = append(xs, x[i])
		ys = append(ys, y[i])
	}
	if len(xs) < 2 {
		return math.NaN()
	}
	return stat.Correlation(xs, ys, nil)
}
