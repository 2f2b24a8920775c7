package report

import (
	"context"

	"github.com/pkg/errors"
)

// Definition binds a chart builder to its menu label.
type Definition struct {
	Key   string
	Label string
	Build Builder
}

var definitions = []Definition{
	{Key: "category-distribution", Label: "Distribution of Category (Movie vs TV Show)", Build: CategoryCounts},
	{Key: "titles-over-years", Label: "Number of Titles Over the Years", Build: TitlesPerYear},
	{Key: "top-countries", Label: "Top 10 Countries by Number of Titles", Build: TopCountries},
	{Key: "rating-distribution", Label: "Distribution of Ratings", Build: RatingCounts},
	{Key: "top-directors", Label: "Top 10 Directors", Build: TopDirectors},
	{Key: "movies-vs-shows", Label: "Movies vs TV Shows Over the Years", Build: CategoryByYear},
	{Key: "movie-duration", Label: "Distribution of Movie Durations", Build: MovieDurations},
	{Key: "top-cast", Label: "Top 10 Cast Members", Build: TopCast},
	{Key: "unknown-data", Label: "Percentage of Unknown Data per Column", Build: UnknownPercentages},
	{Key: "correlation-heatmap", Label: "Correlation Heatmap", Build: Correlation},
	{Key: "growth", Label: "Growth of Movies and TV Shows by Year", Build: Growth},
	{Key: "top-genres", Label: "Top 10 Genres", Build: TopGenres},
}

// Definitions lists every chart in menu order.
func Definitions() []Definition {
	defs := make([]Definition, len(definitions))
	copy(defs, definitions)
	return defs
}

func Lookup(key string) (Definition, bool) {
	for _, d := range definitions {
		if d.Key == key {
			return d, true
		}
	}
	return Definition{}, false
}

// Build runs the chart registered under key.
func Build(ctx context.Context, key string, src Source) (Figure, error) {
	def, ok := Lookup(key)
	if !ok {
		return Figure{}, errors.Errorf("unknown chart %q", key)
	}
	fig, err := def.Build(ctx, src)
	if err != nil {
		return Figure{}, errors.Wrapf(err, "failed to build %s", key)
	}
	return fig, nil
}
