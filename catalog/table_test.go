package catalog

import (
	"math"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/go-gota/gota/series"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const header = "Show_Id,Category,Title,Director,Cast,Country,Release_Date,Rating,Duration,Type,Listed_In,Description\n"

const completeCSV = header +
	`s1,Movie,Alpha,Ann Lee,"A, B",United States,"August 14, 2020",TV-MA,93 min,,"Dramas, Thrillers",First
s2,TV Show,Beta,Bo Chan,"B, C",India,2019-12-23,TV-14,2 Seasons,,International TV Shows,Second
s3,Movie,Gamma,Ann Lee,C,United States,"December 20, 2018",R,78 min,,Comedies,Third
`

const sparseCSV = header +
	`s1,Movie,Alpha,,,,not a date,,,,Dramas,First
s2,TV Show,Beta,Bo Chan,B,India,"March 1, 2017",TV-14,1 Season,,Docuseries,Second
s3,Movie,Gamma,,C,,,,95 min,,,Third
s4,Movie,Delta,Dee,,UK,"May 5, 2019",PG,,,Comedies,Fourth
`

func writeCSV(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "catalog.csv")
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestLoadCompleteFile(t *testing.T) {
	table, err := Load(writeCSV(t, completeCSV))
	require.NoError(t, err)

	assert.Equal(t, 3, table.Len())
	assert.Equal(t, []string{"Ann Lee", "Bo Chan", "Ann Lee"}, table.Column(ColumnDirector))
	assert.Equal(t, []string{"A, B", "B, C", "C"}, table.Column(ColumnCast))
	assert.Equal(t, []string{"93 min", "2 Seasons", "78 min"}, table.Column(ColumnDuration))
	assert.Equal(t, []string{"2020-08-14", "2019-12-23", "2018-12-20"}, table.Column(ColumnReleaseDate))
	assert.Equal(t, []string{"2020", "2019", "2018"}, table.Column(ColumnYear))

	info := table.Info()
	assert.Equal(t, 3, info.Rows)
	assert.Equal(t, 13, info.Cols)
	assert.Equal(t, ColumnYear, info.Columns[len(info.Columns)-1])
	assert.Equal(t, series.Int, info.Types[len(info.Types)-1])
	assert.Equal(t, 3, info.Nulls["Type"])
	assert.Equal(t, 0, info.Nulls[ColumnDirector])
}

func TestLoadFillsSentinels(t *testing.T) {
	table, err := Load(writeCSV(t, sparseCSV))
	require.NoError(t, err)

	assert.Equal(t, []string{SentinelNoDirector, "Bo Chan", SentinelNoDirector, "Dee"}, table.Column(ColumnDirector))
	assert.Equal(t, []string{SentinelNoCast, "B", "C", SentinelNoCast}, table.Column(ColumnCast))
	assert.Equal(t, []string{SentinelUnknownCountry, "India", SentinelUnknownCountry, "UK"}, table.Column(ColumnCountry))
	assert.Equal(t, []string{SentinelUnknown, "TV-14", SentinelUnknown, "PG"}, table.Column(ColumnRating))
	assert.Equal(t, []string{SentinelUnknown, "1 Season", "95 min", SentinelUnknown}, table.Column(ColumnDuration))

	// Listed_In is never filled
	assert.Equal(t, []string{"Dramas", "Docuseries", "", "Comedies"}, table.Column(ColumnListedIn))

	for _, name := range sentinelOrder {
		for _, v := range table.Column(name) {
			assert.NotEmpty(t, v, "column %s still has missing cells", name)
		}
	}

	info := table.Info()
	assert.Equal(t, 2, info.Nulls[ColumnDirector])
	assert.Equal(t, 1, info.Nulls[ColumnReleaseDate])
}

func TestLoadForwardFillsReleaseDates(t *testing.T) {
	table, err := Load(writeCSV(t, sparseCSV))
	require.NoError(t, err)

	// the first row has no preceding date and stays missing
	assert.Equal(t, []string{"", "2017-03-01", "2017-03-01", "2019-05-05"}, table.Column(ColumnReleaseDate))
	assert.Equal(t, []string{"", "2017", "2017", "2019"}, table.Column(ColumnYear))

	years := table.Floats(ColumnYear)
	require.Len(t, years, 4)
	assert.True(t, math.IsNaN(years[0]), "missing year should be NaN")
	assert.Equal(t, 2017.0, years[1])
}

func TestLoadKeepsYearOfLooseDateFormats(t *testing.T) {
	csv := header +
		`s1,Movie,Alpha,Ann Lee,A,US,"January 1, 2015",PG,90 min,,Dramas,First
s2,Movie,Beta,Bo Chan,B,UK,25 Sep 2021,PG,95 min,,Dramas,Second
s3,TV Show,Gamma,Cy Dee,C,US,"Sept 3, 2019",TV-14,1 Season,,Docuseries,Third
`
	table, err := Load(writeCSV(t, csv))
	require.NoError(t, err)

	assert.Equal(t, []string{"2015-01-01", "2021-09-25", "2019-09-03"}, table.Column(ColumnReleaseDate))
	assert.Equal(t, []string{"2015", "2021", "2019"}, table.Column(ColumnYear))
}

func TestTitles(t *testing.T) {
	table, err := Load(writeCSV(t, sparseCSV))
	require.NoError(t, err)

	titles := table.Titles()
	require.Len(t, titles, 4)

	assert.Nil(t, titles[0].ReleaseDate)
	assert.Nil(t, titles[0].Year)
	assert.Equal(t, SentinelNoDirector, titles[0].Director)
	require.NotNil(t, titles[0].Title)
	assert.Equal(t, "Alpha", *titles[0].Title)

	require.NotNil(t, titles[2].Year)
	assert.Equal(t, 2017, *titles[2].Year)
	assert.Nil(t, titles[2].ListedIn)
	require.NotNil(t, titles[2].Category)
	assert.Equal(t, CategoryMovie, *titles[2].Category)
}

func TestNumericColumns(t *testing.T) {
	csv := "Title,Director,Cast,Country,Release_Date,Rating,Duration,Category,Listed_In,Score,Flag\n" +
		"A,D,C,US,2020-01-01,PG,90 min,Movie,Dramas,7.5,true\n" +
		"B,D,C,US,2021-01-01,PG,91 min,Movie,Dramas,8,false\n"

	table, err := Read(strings.NewReader(csv))
	require.NoError(t, err)

	assert.Equal(t, []string{"Score", ColumnYear}, table.NumericColumns())
}

func TestHead(t *testing.T) {
	table, err := Read(strings.NewReader(completeCSV))
	require.NoError(t, err)

	assert.Equal(t, 2, table.Head(2).Nrow())
	assert.Equal(t, 3, table.Head(10).Nrow())
}

func TestReadStripsByteOrderMark(t *testing.T) {
	table, err := Read(strings.NewReader("\ufeff" + completeCSV))
	require.NoError(t, err)
	assert.Equal(t, "Show_Id", table.Columns()[0])
}

func TestLoadErrors(t *testing.T) {
	tests := []struct {
		name    string
		path    func(t *testing.T) string
		message string
	}{
		{
			name: "missing file",
			path: func(t *testing.T) string {
				return filepath.Join(t.TempDir(), "absent.csv")
			},
			message: "no such file",
		},
		{
			name: "missing columns",
			path: func(t *testing.T) string {
				return writeCSV(t, "Title,Category\nA,Movie\n")
			},
			message: "missing expected columns: Director, Cast, Country, Release_Date, Rating, Duration, Listed_In",
		},
		{
			name: "ragged rows",
			path: func(t *testing.T) string {
				return writeCSV(t, header+"s1,Movie\n")
			},
			message: "malformed csv",
		},
		{
			name: "header only",
			path: func(t *testing.T) string {
				return writeCSV(t, header)
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := tt.path(t)
			table, err := Load(path)
			require.Error(t, err)
			assert.Nil(t, table)

			var loadErr *LoadError
			require.True(t, errors.As(err, &loadErr))
			assert.Equal(t, path, loadErr.Path)
			if tt.message != "" {
				assert.Contains(t, err.Error(), tt.message)
			}
		})
	}
}
