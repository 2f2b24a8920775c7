package notifier

import (
	"bytes"
	"testing"

	"github.com/fatih/color"
	"github.com/stretchr/testify/assert"
)

func TestConsoleNotifier(t *testing.T) {
	color.NoColor = true

	var buf bytes.Buffer
	n := NewConsoleNotifier(&buf)

	n.Success("Loaded", "3 rows")
	n.Warning("Empty", "nothing to plot")
	n.Error("Error", "no dataset loaded")

	assert.Equal(t, "[Loaded] 3 rows\n[Empty] nothing to plot\n[Error] no dataset loaded\n", buf.String())
}
