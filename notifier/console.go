package notifier

import (
	"fmt"
	"io"

	"github.com/fatih/color"
)

// Notifier surfaces user facing outcomes.
type Notifier interface {
	Success(title, message string)
	Warning(title, message string)
	Error(title, message string)
}

// ConsoleNotifier prints coloured notifications to a terminal.
type ConsoleNotifier struct {
	w       io.Writer
	success *color.Color
	warning *color.Color
	failure *color.Color
}

// NewConsoleNotifier creates a notifier writing to w.
func NewConsoleNotifier(w io.Writer) *ConsoleNotifier {
	return &ConsoleNotifier{
		w:       w,
		success: color.New(color.FgGreen, color.Bold),
		warning: color.New(color.FgYellow, color.Bold),
		failure: color.New(color.FgRed, color.Bold),
	}
}

func (n *ConsoleNotifier) Success(title, message string) {
	n.print(n.success, title, message)
}

func (n *ConsoleNotifier) Warning(title, message string) {
	n.print(n.warning, title, message)
}

func (n *ConsoleNotifier) Error(title, message string) {
	n.print(n.failure, title, message)
}

func (n *ConsoleNotifier) print(c *color.Color, title, message string) {
	fmt.Fprintf(n.w, "%s %s\n", c.Sprintf("[%s]", title), message)
}
