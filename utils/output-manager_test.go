package utils

import (
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPrintProgressBar(t *testing.T) {
	bar := PrintProgressBar(5, 10, 10)
	assert.Contains(t, bar, strings.Repeat(StyleSymbols["hline"], 5)+strings.Repeat(" ", 5))
	assert.Contains(t, bar, "50.0%")

	assert.Contains(t, PrintProgressBar(3, 0, 10), "0.0%")
	assert.Contains(t, PrintProgressBar(20, 10, 10), strings.Repeat(StyleSymbols["hline"], 10))
}

func TestManagerRender(t *testing.T) {
	m := NewManager()
	assert.Contains(t, m.render(), "Waiting...")

	m.Progress(2, 4, "Paper B")
	out := m.render()
	assert.Contains(t, out, "2/4")
	assert.Contains(t, out, "Paper B")
	assert.Contains(t, out, "50.0%")

	m.Complete("")
	out = m.render()
	assert.Contains(t, out, "Completed")
	assert.Contains(t, out, StyleSymbols["pass"])
	assert.NotContains(t, out, "Paper B")

	failed := NewManager()
	failed.SetMessage("Download failed")
	failed.ReportError(errors.New("boom"))
	out = failed.render()
	assert.Contains(t, out, "Download failed")
	assert.Contains(t, out, StyleSymbols["fail"])
}

func TestManagerDisplayLifecycle(t *testing.T) {
	m := NewManager()
	m.StartDisplay()
	m.Progress(1, 1, "only")
	m.Complete("done")
	m.StopDisplay()
	assert.True(t, m.complete)
}
