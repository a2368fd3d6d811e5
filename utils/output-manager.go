package utils

import (
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/charmbracelet/lipgloss"
)

var (
	// Core styles
	successStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("37"))  // dark green
	errorStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("9"))   // red
	warningStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("11"))  // yellow
	pendingStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("12"))  // blue
	infoStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("14"))  // cyan
	debugStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("250")) // light grey
	streamStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("240")) // grey

	// Additional config
	basePadding = 2
)

var StyleSymbols = map[string]string{
	"pass":    "✓",
	"fail":    "✗",
	"warning": "!",
	"pending": "◉",
	"info":    "ℹ",
	"arrow":   "→",
	"bullet":  "•",
	"dot":     "·",
	"hline":   "━",
}

func PrintSuccess(text string) {
	fmt.Println(successStyle.Render(text))
}
func PrintError(text string) {
	fmt.Println(errorStyle.Render(text))
}
func PrintWarning(text string) {
	fmt.Println(warningStyle.Render(text))
}
func PrintInfo(text string) {
	fmt.Println(infoStyle.Render(text))
}
func FSuccess(text string) string {
	return successStyle.Render(text)
}
func FError(text string) string {
	return errorStyle.Render(text)
}
func FWarning(text string) string {
	return warningStyle.Render(text)
}

// =========================================== ================
// =========================================== Progress Manager
// =========================================== ================

// Manager renders a two-line live status (message + progress bar) for long runs
// such as article downloads
type Manager struct {
	status      string
	message     string
	progress    string
	complete    bool
	startTime   time.Time
	lastUpdated time.Time
	mutex       sync.RWMutex
	err         error
	doneCh      chan struct{}
	displayTick time.Duration
	displayWg   sync.WaitGroup
}

func NewManager() *Manager {
	return &Manager{
		status:      "pending",
		startTime:   time.Now(),
		lastUpdated: time.Now(),
		doneCh:      make(chan struct{}),
		displayTick: 200 * time.Millisecond,
	}
}

func (m *Manager) SetMessage(message string) {
	m.mutex.Lock()
	defer m.mutex.Unlock()
	m.message = message
	m.lastUpdated = time.Now()
}

func (m *Manager) SetStatus(status string) {
	m.mutex.Lock()
	defer m.mutex.Unlock()
	m.status = status
	m.lastUpdated = time.Now()
}

func (m *Manager) Complete(message string) {
	m.mutex.Lock()
	defer m.mutex.Unlock()
	m.progress = ""
	if message == "" {
		message = "Completed"
	}
	m.message = message
	m.complete = true
	m.status = "success"
	m.lastUpdated = time.Now()
}

func (m *Manager) ReportError(err error) {
	m.mutex.Lock()
	defer m.mutex.Unlock()
	m.complete = true
	m.status = "error"
	m.err = err
	m.lastUpdated = time.Now()
}

// Progress matches the download progress callback: done of total items, last one named label
func (m *Manager) Progress(done, total int, label string) {
	m.mutex.Lock()
	defer m.mutex.Unlock()
	m.status = "pending"
	m.message = fmt.Sprintf("%d/%d", done, total)
	m.progress = PrintProgressBar(int64(done), int64(total), 30) + debugStyle.Render(label)
	m.lastUpdated = time.Now()
}

func PrintProgressBar(current, total int64, width int) string {
	if width <= 0 {
		width = 30
	}
	percent := 0.0
	if total > 0 {
		percent = float64(max(0, current)) / float64(total)
	}
	filled := min(int(percent*float64(width)), width)
	bar := StyleSymbols["bullet"]
	bar += strings.Repeat(StyleSymbols["hline"], filled)
	bar += strings.Repeat(" ", width-filled)
	bar += StyleSymbols["bullet"]
	return debugStyle.Render(fmt.Sprintf("%s %.1f%% %s ", bar, percent*100, StyleSymbols["bullet"]))
}

func statusIndicator(status string) string {
	switch status {
	case "success", "pass":
		return successStyle.Render(StyleSymbols["pass"])
	case "error", "fail":
		return errorStyle.Render(StyleSymbols["fail"])
	case "warning":
		return warningStyle.Render(StyleSymbols["warning"])
	case "pending":
		return pendingStyle.Render(StyleSymbols["pending"])
	default:
		return infoStyle.Render(StyleSymbols["bullet"])
	}
}

func styleMessage(status, message string) string {
	switch status {
	case "success":
		return successStyle.Render(message)
	case "error":
		return errorStyle.Render(message)
	case "warning":
		return warningStyle.Render(message)
	default:
		return pendingStyle.Render(message)
	}
}

// render returns the status lines for the current state
func (m *Manager) render() string {
	m.mutex.RLock()
	defer m.mutex.RUnlock()
	pad := strings.Repeat(" ", basePadding)
	indent := strings.Repeat(" ", basePadding+4)
	indicator := statusIndicator(m.status)
	switch {
	case m.complete:
		elapsed := m.lastUpdated.Sub(m.startTime).Round(time.Second)
		return fmt.Sprintf("%s%s %s %s\n\n", pad, indicator, debugStyle.Render(elapsed.String()), styleMessage(m.status, m.message))
	case m.message == "":
		return fmt.Sprintf("%s%s %s\n%s%s\n", pad, indicator, pendingStyle.Render("Waiting..."), indent, streamStyle.Render(m.progress))
	default:
		elapsed := time.Since(m.startTime).Round(time.Second)
		return fmt.Sprintf("%s%s %s %s\n%s%s\n", pad, indicator, debugStyle.Render(elapsed.String()), styleMessage(m.status, m.message), indent, streamStyle.Render(m.progress))
	}
}

func (m *Manager) updateDisplay() {
	fmt.Print("\033[2A\033[J") // clear 2 lines
	fmt.Print(m.render())
}

func (m *Manager) StartDisplay() {
	fmt.Println()
	m.displayWg.Add(1)
	go func() {
		defer m.displayWg.Done()
		ticker := time.NewTicker(m.displayTick)
		defer ticker.Stop()
		fmt.Print("\n\n")
		m.updateDisplay()
		for {
			select {
			case <-ticker.C:
				m.updateDisplay()
			case <-m.doneCh:
				m.mutex.Lock()
				m.progress = ""
				m.mutex.Unlock()
				m.updateDisplay()
				m.displayError()
				return
			}
		}
	}()
}

func (m *Manager) StopDisplay() {
	close(m.doneCh)
	m.displayWg.Wait()
}

func (m *Manager) displayError() {
	m.mutex.RLock()
	defer m.mutex.RUnlock()
	if m.err == nil {
		return
	}
	fmt.Println()
	fmt.Println(strings.Repeat(" ", basePadding) + errorStyle.Bold(true).Render("Encountered Error:"))
	fmt.Printf("%s%s\n", strings.Repeat(" ", basePadding+2), debugStyle.Render(m.err.Error()))
}
