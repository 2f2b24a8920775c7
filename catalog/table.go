package catalog

import (
	"bufio"
	"io"
	"os"
	"strconv"
	"strings"
	"time"

	"cine-stats/storage"

	"github.com/go-gota/gota/dataframe"
	"github.com/go-gota/gota/series"
	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
)

// Column names of a catalog export.
const (
	ColumnTitle       = "Title"
	ColumnDirector    = "Director"
	ColumnCast        = "Cast"
	ColumnCountry     = "Country"
	ColumnReleaseDate = "Release_Date"
	ColumnRating      = "Rating"
	ColumnDuration    = "Duration"
	ColumnCategory    = "Category"
	ColumnListedIn    = "Listed_In"
	ColumnYear        = "Year"
)

// Category values.
const (
	CategoryMovie  = "Movie"
	CategoryTVShow = "TV Show"
)

// RequiredColumns must be present in every loaded file.
var RequiredColumns = []string{
	ColumnTitle,
	ColumnDirector,
	ColumnCast,
	ColumnCountry,
	ColumnReleaseDate,
	ColumnRating,
	ColumnDuration,
	ColumnCategory,
	ColumnListedIn,
}

var missingValues = []string{"", "NA", "NaN", "<nil>"}

const utf8BOM = "\ufeff"

// Table is a cleaned catalog. It is never modified after Read returns.
type Table struct {
	frame dataframe.DataFrame
	nulls map[string]int
}

// Info summarizes the shape and typing of a Table.
type Info struct {
	Rows    int
	Cols    int
	Columns []string
	Types   []series.Type
	// Nulls counts missing cells per column as read, before cleaning.
	Nulls map[string]int
}

// Load reads and cleans the CSV file at path.
func Load(path string) (*Table, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, &LoadError{Path: path, Err: err}
	}
	defer f.Close()

	t, err := Read(f)
	if err != nil {
		var loadErr *LoadError
		if errors.As(err, &loadErr) {
			loadErr.Path = path
		}
		return nil, err
	}

	rows, cols := t.frame.Dims()
	log.WithFields(log.Fields{
		"path": path,
		"rows": rows,
		"cols": cols,
	}).Info("dataset loaded")
	return t, nil
}

// Read parses and cleans a CSV stream with a header row.
func Read(r io.Reader) (*Table, error) {
	br := bufio.NewReader(r)
	if b, err := br.Peek(len(utf8BOM)); err == nil && string(b) == utf8BOM {
		br.Discard(len(utf8BOM))
	}

	types := make(map[string]series.Type, len(RequiredColumns))
	for _, name := range RequiredColumns {
		types[name] = series.String
	}

	df := dataframe.ReadCSV(br,
		dataframe.HasHeader(true),
		dataframe.DetectTypes(true),
		dataframe.WithLazyQuotes(true),
		dataframe.NaNValues(missingValues),
		dataframe.WithTypes(types),
	)
	if df.Err != nil {
		return nil, &LoadError{Err: errors.Wrap(df.Err, "malformed csv")}
	}
	if df.Nrow() == 0 {
		return nil, &LoadError{Err: errors.New("dataset has no rows")}
	}

	if missing := missingColumns(df.Names()); len(missing) > 0 {
		return nil, &LoadError{Err: errors.Errorf("missing expected columns: %s", strings.Join(missing, ", "))}
	}

	nulls := countNulls(df)

	cleaned, err := clean(df)
	if err != nil {
		return nil, &LoadError{Err: err}
	}

	return &Table{frame: cleaned, nulls: nulls}, nil
}

func missingColumns(names []string) []string {
	present := make(map[string]bool, len(names))
	for _, n := range names {
		present[n] = true
	}
	var missing []string
	for _, n := range RequiredColumns {
		if !present[n] {
			missing = append(missing, n)
		}
	}
	return missing
}

func countNulls(df dataframe.DataFrame) map[string]int {
	nulls := make(map[string]int, df.Ncol())
	for _, name := range df.Names() {
		n := 0
		for _, isNA := range df.Col(name).IsNaN() {
			if isNA {
				n++
			}
		}
		nulls[name] = n
	}
	return nulls
}

func (t *Table) Len() int {
	return t.frame.Nrow()
}

func (t *Table) Columns() []string {
	return t.frame.Names()
}

// Head returns the first n rows.
func (t *Table) Head(n int) dataframe.DataFrame {
	if n > t.frame.Nrow() {
		n = t.frame.Nrow()
	}
	idx := make([]int, n)
	for i := range idx {
		idx[i] = i
	}
	return t.frame.Subset(idx)
}

func (t *Table) Info() Info {
	rows, cols := t.frame.Dims()
	nulls := make(map[string]int, len(t.nulls))
	for k, v := range t.nulls {
		nulls[k] = v
	}
	return Info{
		Rows:    rows,
		Cols:    cols,
		Columns: t.frame.Names(),
		Types:   t.frame.Types(),
		Nulls:   nulls,
	}
}

// Column returns the cells of a column as text. Missing cells are empty strings.
func (t *Table) Column(name string) []string {
	col := t.frame.Col(name)
	if col.Err != nil {
		return nil
	}
	values := make([]string, col.Len())
	for i := range values {
		if e := col.Elem(i); !e.IsNA() {
			values[i] = e.String()
		}
	}
	return values
}

// Floats returns a numeric column with NaN for missing cells.
func (t *Table) Floats(name string) []float64 {
	col := t.frame.Col(name)
	if col.Err != nil {
		return nil
	}
	return col.Float()
}

// NumericColumns lists int and float columns in frame order.
func (t *Table) NumericColumns() []string {
	var names []string
	types := t.frame.Types()
	for i, name := range t.frame.Names() {
		if types[i] == series.Int || types[i] == series.Float {
			names = append(names, name)
		}
	}
	return names
}

// Titles converts the table into typed rows in file order.
func (t *Table) Titles() []storage.Title {
	n := t.frame.Nrow()
	cols := make(map[string]series.Series, len(RequiredColumns)+1)
	for _, name := range append([]string{ColumnYear}, RequiredColumns...) {
		cols[name] = t.frame.Col(name)
	}

	text := func(name string, i int) *string {
		e := cols[name].Elem(i)
		if e.IsNA() {
			return nil
		}
		s := e.String()
		return &s
	}
	filled := func(name string, i int) string {
		if s := text(name, i); s != nil {
			return *s
		}
		return ""
	}

	titles := make([]storage.Title, n)
	for i := 0; i < n; i++ {
		title := storage.Title{
			Title:    text(ColumnTitle, i),
			Director: filled(ColumnDirector, i),
			Cast:     filled(ColumnCast, i),
			Country:  filled(ColumnCountry, i),
			Rating:   filled(ColumnRating, i),
			Duration: filled(ColumnDuration, i),
			Category: text(ColumnCategory, i),
			ListedIn: text(ColumnListedIn, i),
		}
		if s := text(ColumnReleaseDate, i); s != nil {
			if d, err := time.Parse(storage.DateLayout, *s); err == nil {
				title.ReleaseDate = &d
			}
		}
		if s := text(ColumnYear, i); s != nil {
			if y, err := strconv.Atoi(*s); err == nil {
				title.Year = &y
			}
		}
		titles[i] = title
	}
	return titles
}
