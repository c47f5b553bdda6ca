package notify

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/charmbracelet/lipgloss"
)

var (
	timeStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("244"))
	tagStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("42")).Bold(true)
	failStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("196")).Bold(true)
)

// ConsoleSender prints one line per event, for interactive runs.
type ConsoleSender struct {
	out io.Writer
}

// NewConsoleSender creates a console sender. A nil writer means stdout.
func NewConsoleSender(out io.Writer) *ConsoleSender {
	if out == nil {
		out = os.Stdout
	}

	return &ConsoleSender{out: out}
}

// Name returns the sender name.
func (s *ConsoleSender) Name() string {
	return "console"
}

// Send writes the event as a single styled line.
func (s *ConsoleSender) Send(_ context.Context, event *Event) error {
	tag := tagStyle.Render(event.Type)
	if !event.Success {
		tag = failStyle.Render(event.Type)
	}

	_, err := fmt.Fprintf(s.out, "%s %s %s\n",
		timeStyle.Render(event.Timestamp.Format("15:04:05")),
		tag,
		eventText(event))

	return err
}

// eventText renders the human-readable part of the console line.
func eventText(e *Event) string {
	switch e.Type {
	case EventSetup:
		if !e.Success {
			return fmt.Sprintf("environment %s setup failed: %s", e.Env, e.Error)
		}

		return fmt.Sprintf("environment %s is ready", e.Env)
	case EventLaunch:
		if !e.Success {
			return fmt.Sprintf("could not launch %s: %s", e.File, e.Error)
		}

		return fmt.Sprintf("launched %s in environment %s", e.File, e.Env)
	case EventCrawl:
		if !e.Success {
			return fmt.Sprintf("crawl for %q failed: %s", e.Term, e.Error)
		}

		return fmt.Sprintf("fetched %d articles for %q", e.Count, e.Term)
	case EventProcess:
		if !e.Success {
			return fmt.Sprintf("%s failed: %s", e.File, e.Error)
		}

		return fmt.Sprintf("%s: %d entities, %d relations", e.File, e.Entities, e.Relations)
	case EventBatch:
		if !e.Success {
			return fmt.Sprintf("run %s finished with failures: %s", e.Run, e.Error)
		}

		return fmt.Sprintf("run %s: %d files, %d entities, %d relations",
			e.Run, e.Count, e.Entities, e.Relations)
	case EventError:
		return e.Error
	default:
		if e.File != "" {
			return fmt.Sprintf("%s %s", e.Type, e.File)
		}

		return e.Type
	}
}
