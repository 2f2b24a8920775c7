package app

import (
	"context"
	"io"

	"cine-stats/catalog"
	"cine-stats/render"
	"cine-stats/report"
	"cine-stats/storage"

	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
)

// ErrNotLoaded is the cause of every NotLoadedError.
var ErrNotLoaded = errors.New("no dataset loaded")

// NotLoadedError is returned by actions invoked before a successful load.
type NotLoadedError struct {
	Action string
}

func (e *NotLoadedError) Error() string {
	return "load a dataset before " + e.Action + ": " + ErrNotLoaded.Error()
}

func (e *NotLoadedError) Unwrap() error {
	return ErrNotLoaded
}

// Store is the query engine a session loads titles into.
type Store interface {
	report.Querier
	ReplaceTitles(ctx context.Context, titles []storage.Title) error
}

// Session owns the loaded table. Only Load replaces it.
type Session struct {
	store    Store
	renderer render.Renderer
	out      io.Writer
	table    *catalog.Table
	path     string
}

func NewSession(store Store, renderer render.Renderer, out io.Writer) *Session {
	return &Session{
		store:    store,
		renderer: renderer,
		out:      out,
	}
}

// Loaded reports whether a dataset is available.
func (s *Session) Loaded() bool {
	return s.table != nil
}

// Table returns the loaded table, or nil.
func (s *Session) Table() *catalog.Table {
	return s.table
}

// Path returns the file the current table was loaded from.
func (s *Session) Path() string {
	return s.path
}

// Load reads, cleans and indexes the file at path. On failure the previously
// loaded table stays in place.
func (s *Session) Load(ctx context.Context, path string) error {
	table, err := catalog.Load(path)
	if err != nil {
		return err
	}

	if err := s.store.ReplaceTitles(ctx, table.Titles()); err != nil {
		return errors.Wrap(err, "failed to index dataset")
	}

	s.table = table
	s.path = path
	return nil
}

func (s *Session) ShowHead(_ context.Context) error {
	if !s.Loaded() {
		return &NotLoadedError{Action: "showing rows"}
	}
	render.WriteHead(s.out, s.table)
	return nil
}

func (s *Session) ShowInfo(_ context.Context) error {
	if !s.Loaded() {
		return &NotLoadedError{Action: "showing info"}
	}
	render.WriteInfo(s.out, s.table.Info())
	return nil
}

// Chart builds and renders the chart registered under key.
func (s *Session) Chart(ctx context.Context, key string) (report.Figure, error) {
	if !s.Loaded() {
		return report.Figure{}, &NotLoadedError{Action: "charting"}
	}

	fig, err := report.Build(ctx, key, report.Source{Table: s.table, Store: s.store})
	if err != nil {
		return report.Figure{}, err
	}

	if err := s.renderer.Render(fig); err != nil {
		return fig, err
	}

	log.WithField("chart", key).Debug("chart rendered")
	return fig, nil
}
