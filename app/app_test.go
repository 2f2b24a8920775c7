package app

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"cine-stats/catalog"
	"cine-stats/render"
	"cine-stats/storage"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const fixtureCSV = "Title,Director,Cast,Country,Release_Date,Rating,Duration,Category,Listed_In\n" +
	`Alpha,Ann Lee,"A, B",United States,"January 1, 2019",PG,90 min,Movie,Dramas
Beta,Bo Chan,"B, C",United Kingdom,"March 3, 2020",TV-14,2 Seasons,TV Show,"Comedies, Dramas"
Gamma,,,United States,"June 6, 2020",,120 min,Movie,Thrillers
`

type notification struct {
	level, title, message string
}

type recordingNotifier struct {
	got []notification
}

func (n *recordingNotifier) Success(title, message string) {
	n.got = append(n.got, notification{"success", title, message})
}

func (n *recordingNotifier) Warning(title, message string) {
	n.got = append(n.got, notification{"warning", title, message})
}

func (n *recordingNotifier) Error(title, message string) {
	n.got = append(n.got, notification{"error", title, message})
}

func (n *recordingNotifier) titles() []string {
	var titles []string
	for _, g := range n.got {
		titles = append(titles, g.level+":"+g.title)
	}
	return titles
}

func writeCSV(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "catalog.csv")
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func newSession(t *testing.T, out *bytes.Buffer) *Session {
	t.Helper()
	store := storage.NewSQLiteStorage(storage.MemoryDSN)
	require.NoError(t, store.Initialize())
	t.Cleanup(func() { store.Close() })
	return NewSession(store, render.NewTableRenderer(out), out)
}

func TestSessionRequiresLoad(t *testing.T) {
	var out bytes.Buffer
	s := newSession(t, &out)
	ctx := context.Background()

	var notLoaded *NotLoadedError
	assert.True(t, errors.As(s.ShowHead(ctx), &notLoaded))
	assert.True(t, errors.As(s.ShowInfo(ctx), &notLoaded))

	_, err := s.Chart(ctx, "top-cast")
	assert.True(t, errors.As(err, &notLoaded))
	assert.ErrorIs(t, err, ErrNotLoaded)
	assert.Equal(t, "charting", notLoaded.Action)
}

func TestSessionLoadKeepsPreviousTableOnFailure(t *testing.T) {
	var out bytes.Buffer
	s := newSession(t, &out)
	ctx := context.Background()

	path := writeCSV(t, fixtureCSV)
	require.NoError(t, s.Load(ctx, path))
	require.True(t, s.Loaded())
	assert.Equal(t, path, s.Path())

	err := s.Load(ctx, filepath.Join(t.TempDir(), "missing.csv"))
	var loadErr *catalog.LoadError
	require.True(t, errors.As(err, &loadErr))

	assert.Equal(t, path, s.Path())
	assert.Equal(t, 3, s.Table().Len())

	fig, err := s.Chart(ctx, "category-distribution")
	require.NoError(t, err)
	assert.Equal(t, []float64{2, 1}, fig.Series[0].Values)
}

func TestMenu(t *testing.T) {
	var out bytes.Buffer
	s := newSession(t, &out)
	n := &recordingNotifier{}
	path := writeCSV(t, fixtureCSV)

	input := strings.Join([]string{"2", "1", path, "2", "4", "99", "abc", "0"}, "\n") + "\n"
	m := NewMenu(s, n, strings.NewReader(input), &out, "unused.csv")

	require.NoError(t, m.Run(context.Background()))

	assert.Equal(t, []string{
		"warning:No dataset",
		"success:Loaded",
		"success:Chart",
		"warning:Invalid choice",
		"warning:Invalid choice",
	}, n.titles())
	assert.Equal(t, "3 rows from "+path, n.got[1].message)

	text := out.String()
	assert.Contains(t, text, "1. Load Dataset")
	assert.Contains(t, text, "15. Top 10 Genres")
	assert.Contains(t, text, "0. Exit")
	assert.Contains(t, text, "Alpha")
	assert.Contains(t, text, "Distribution of Category (Movie vs TV Show)")
}

func TestMenuDefaultPathAndEOF(t *testing.T) {
	var out bytes.Buffer
	s := newSession(t, &out)
	n := &recordingNotifier{}
	path := writeCSV(t, fixtureCSV)

	m := NewMenu(s, n, strings.NewReader("1\n\n"), &out, path)

	require.NoError(t, m.Run(context.Background()))
	assert.True(t, s.Loaded())
	assert.Equal(t, path, s.Path())
}

func TestMenuReportsLoadFailure(t *testing.T) {
	var out bytes.Buffer
	s := newSession(t, &out)
	n := &recordingNotifier{}

	m := NewMenu(s, n, strings.NewReader("1\n"+filepath.Join(t.TempDir(), "absent.csv")+"\n0\n"), &out, "")

	require.NoError(t, m.Run(context.Background()))
	assert.Equal(t, []string{"error:Load failed"}, n.titles())
	assert.False(t, s.Loaded())
}

func TestBatch(t *testing.T) {
	var out bytes.Buffer
	s := newSession(t, &out)
	n := &recordingNotifier{}
	path := writeCSV(t, fixtureCSV)

	require.NoError(t, NewBatch(s, n, path).Run(context.Background()))

	assert.Equal(t, []string{"success:Done"}, n.titles())
	assert.Equal(t, "15 steps completed for "+path, n.got[0].message)
	assert.Contains(t, out.String(), "Top 10 Content Genres")
}

func TestBatchContinuesAfterChartFailure(t *testing.T) {
	var out bytes.Buffer
	s := newSession(t, &out)
	n := &recordingNotifier{}

	// no "Unknown" cells, so the unknown data chart is empty
	csv := strings.Replace(fixtureCSV, "June 6, 2020\",,", "June 6, 2020\",R,", 1)
	path := writeCSV(t, csv)

	require.NoError(t, NewBatch(s, n, path).Run(context.Background()))

	assert.Equal(t, []string{"warning:Empty chart", "warning:Done"}, n.titles())
	assert.Equal(t, "1 of 15 steps failed", n.got[1].message)
	assert.Contains(t, out.String(), "Top 10 Content Genres")
}

func TestBatchStopsWhenLoadFails(t *testing.T) {
	var out bytes.Buffer
	s := newSession(t, &out)
	n := &recordingNotifier{}

	err := NewBatch(s, n, filepath.Join(t.TempDir(), "absent.csv")).Run(context.Background())

	var loadErr *catalog.LoadError
	require.True(t, errors.As(err, &loadErr))
	assert.Equal(t, []string{"error:Load failed"}, n.titles())
	assert.Empty(t, out.String())
}

func TestBatchSelectedCharts(t *testing.T) {
	var out bytes.Buffer
	s := newSession(t, &out)
	n := &recordingNotifier{}
	path := writeCSV(t, fixtureCSV)

	b := NewBatch(s, n, path, WithCharts("category-distribution", "top-genres"))
	require.NoError(t, b.Run(context.Background()))

	assert.Equal(t, []string{"success:Done"}, n.titles())
	assert.Equal(t, "3 steps completed for "+path, n.got[0].message)
	text := out.String()
	assert.Contains(t, text, "Distribution of Category (Movie vs TV Show)")
	assert.Contains(t, text, "Top 10 Content Genres")
	assert.NotContains(t, text, "Alpha")
}

func TestBatchSelectedChartsRejectsUnknownKey(t *testing.T) {
	var out bytes.Buffer
	s := newSession(t, &out)
	n := &recordingNotifier{}

	err := NewBatch(s, n, writeCSV(t, fixtureCSV), WithCharts("pie")).Run(context.Background())

	assert.EqualError(t, err, `unknown chart "pie"`)
	assert.False(t, s.Loaded())
	assert.Empty(t, n.got)
}

func TestBatchSelectedChartsStopsWhenLoadFails(t *testing.T) {
	var out bytes.Buffer
	s := newSession(t, &out)
	n := &recordingNotifier{}

	err := NewBatch(s, n, filepath.Join(t.TempDir(), "absent.csv"), WithCharts("top-genres")).Run(context.Background())

	var loadErr *catalog.LoadError
	require.True(t, errors.As(err, &loadErr))
	assert.Equal(t, []string{"error:Load failed"}, n.titles())
	assert.Empty(t, out.String())
}
