package app

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strconv"
	"strings"

	"cine-stats/catalog"
	"cine-stats/notifier"
	"cine-stats/render"
	"cine-stats/report"

	"github.com/fatih/color"
	"github.com/pkg/errors"
)

const menuTitle = "Catalog Data Analysis"

type action struct {
	label string
	run   func(ctx context.Context) error
}

// Menu is the interactive front end of a Session.
type Menu struct {
	session     *Session
	notifier    notifier.Notifier
	scanner     *bufio.Scanner
	out         io.Writer
	defaultPath string
	actions     []action
}

// NewMenu reads choices from in and writes prompts to out. An empty answer to
// the load prompt selects defaultPath.
func NewMenu(session *Session, n notifier.Notifier, in io.Reader, out io.Writer, defaultPath string) *Menu {
	m := &Menu{
		session:     session,
		notifier:    n,
		scanner:     bufio.NewScanner(in),
		out:         out,
		defaultPath: defaultPath,
	}

	m.actions = []action{
		{label: "Load Dataset", run: m.load},
		{label: "Show First Rows", run: session.ShowHead},
		{label: "Show Dataset Info", run: session.ShowInfo},
	}
	for _, def := range report.Definitions() {
		key := def.Key
		m.actions = append(m.actions, action{
			label: def.Label,
			run: func(ctx context.Context) error {
				fig, err := session.Chart(ctx, key)
				if err != nil {
					return err
				}
				m.notifier.Success("Chart", fig.Title)
				return nil
			},
		})
	}
	return m
}

// Run shows the menu until the user exits, input ends or ctx is done.
func (m *Menu) Run(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			return nil
		default:
		}

		m.display()
		choice, ok := m.readLine()
		if !ok {
			fmt.Fprintln(m.out)
			return m.scanner.Err()
		}
		if choice == "0" {
			return nil
		}

		n, err := strconv.Atoi(choice)
		if err != nil || n < 1 || n > len(m.actions) {
			m.notifier.Warning("Invalid choice", fmt.Sprintf("enter a number between 0 and %d", len(m.actions)))
			continue
		}

		if err := m.actions[n-1].run(ctx); err != nil {
			Notify(m.notifier, err)
		}
	}
}

func (m *Menu) display() {
	fmt.Fprintln(m.out, color.CyanString("\n=== %s ===", menuTitle))
	for i, a := range m.actions {
		fmt.Fprintf(m.out, "%d. %s\n", i+1, a.label)
	}
	fmt.Fprintln(m.out, "0. Exit")
	fmt.Fprintf(m.out, "\nEnter your choice (0-%d): ", len(m.actions))
}

func (m *Menu) readLine() (string, bool) {
	if !m.scanner.Scan() {
		return "", false
	}
	return strings.TrimSpace(m.scanner.Text()), true
}

func (m *Menu) load(ctx context.Context) error {
	fmt.Fprintf(m.out, "Enter dataset path [%s]: ", m.defaultPath)
	path, ok := m.readLine()
	if !ok {
		return errors.New("no dataset path entered")
	}
	if path == "" {
		path = m.defaultPath
	}

	if err := m.session.Load(ctx, path); err != nil {
		return err
	}
	m.notifier.Success("Loaded", fmt.Sprintf("%d rows from %s", m.session.Table().Len(), path))
	return nil
}

// Notify reports err through n with a title matching its kind.
func Notify(n notifier.Notifier, err error) {
	var (
		notLoaded *NotLoadedError
		loadErr   *catalog.LoadError
	)
	switch {
	case errors.As(err, &notLoaded):
		n.Warning("No dataset", err.Error())
	case errors.As(err, &loadErr):
		n.Error("Load failed", err.Error())
	case errors.Is(err, render.ErrNothingToPlot):
		n.Warning("Empty chart", err.Error())
	default:
		n.Error("Error", err.Error())
	}
}
