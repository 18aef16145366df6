package notify

import (
	"context"
	"fmt"
	"io"
	"strings"
	"sync"

	"github.com/charmbracelet/lipgloss"

	"github.com/manav03panchal/aircare/internal/errors"
	"github.com/manav03panchal/aircare/internal/model"
)

// Notifier raises a notification somewhere.
type Notifier interface {
	Notify(ctx context.Context, n *model.Notification) error
}

// NotifierFunc adapts a function to Notifier.
type NotifierFunc func(ctx context.Context, n *model.Notification) error

// Notify calls f.
func (f NotifierFunc) Notify(ctx context.Context, n *model.Notification) error {
	return f(ctx, n)
}

// Multi raises a notification on every sink in order. A failing sink does
// not stop the others; their errors are joined.
type Multi []Notifier

// Notify implements Notifier.
func (m Multi) Notify(ctx context.Context, n *model.Notification) error {
	var errs []error
	for _, sink := range m {
		if sink == nil {
			continue
		}
		if err := sink.Notify(ctx, n); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

var (
	boxStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("#F59E0B")).
			Padding(0, 1)

	boxTitleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#F59E0B"))

	fieldNameStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#6B7280"))
)

// Terminal writes notifications to a writer, boxed when color is enabled.
type Terminal struct {
	mu    sync.Mutex
	w     io.Writer
	color bool
}

// NewTerminal creates a terminal notifier.
func NewTerminal(w io.Writer, color bool) *Terminal {
	return &Terminal{w: w, color: color}
}

// Notify implements Notifier.
func (t *Terminal) Notify(_ context.Context, n *model.Notification) error {
	text := Render(n, t.color)

	t.mu.Lock()
	defer t.mu.Unlock()
	_, err := fmt.Fprintln(t.w, text)
	return err
}

// Render formats a notification for a terminal.
func Render(n *model.Notification, color bool) string {
	if !color {
		var b strings.Builder
		b.WriteString("== " + n.Title + " ==\n")
		if n.Message != "" {
			b.WriteString(n.Message + "\n")
		}
		b.WriteString(n.Body())
		return strings.TrimRight(b.String(), "\n")
	}

	lines := []string{boxTitleStyle.Render(n.Title)}
	if n.Message != "" {
		lines = append(lines, n.Message)
	}
	for _, f := range n.Fields {
		lines = append(lines, fieldNameStyle.Render(f.Name+":")+" "+f.Value)
	}
	return boxStyle.Render(strings.Join(lines, "\n"))
}
