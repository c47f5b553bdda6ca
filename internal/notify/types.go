// Package notify dispatches pipeline progress events to registered
// senders. Long running commands publish events as they go; senders
// decide how to surface them (console line, structured log).
package notify

import (
	"context"
	"time"
)

// Event carries everything a sender needs to describe one pipeline
// step. Fields that do not apply to the event type stay zero.
type Event struct {
	// Type is the event type (setup, crawl, process, ...).
	Type string

	// Env is the conda environment involved, if any.
	Env string

	// Term is the search term for crawl events.
	Term string

	// File is the input file the event concerns.
	File string

	// Run identifies the batch run the event belongs to.
	Run string

	// Count is the primary quantity of the event: articles fetched
	// for a crawl, files completed for a batch run.
	Count int

	// Entities and Relations report extraction output sizes.
	Entities  int
	Relations int

	// Timestamp is when the event occurred.
	Timestamp time.Time

	// Success indicates whether the step succeeded.
	Success bool

	// Error holds failure details when Success is false.
	Error string

	// Extra carries additional event-specific data.
	Extra map[string]string
}

// Sender is the interface for notification senders.
type Sender interface {
	// Send delivers a notification for the given event.
	Send(ctx context.Context, event *Event) error

	// Name returns the sender's name for logging purposes.
	Name() string
}

// Event types published by the pipeline commands.
const (
	EventSetup   = "setup"
	EventLaunch  = "launch"
	EventCrawl   = "crawl"
	EventProcess = "process"
	EventBatch   = "batch"
	EventError   = "error"
)

// NewEvent creates an event of the given type, stamped now and marked
// successful until WithError says otherwise.
func NewEvent(eventType string) *Event {
	return &Event{
		Type:      eventType,
		Timestamp: time.Now(),
		Success:   true,
		Extra:     make(map[string]string),
	}
}

// WithEnv sets the conda environment on the event.
func (e *Event) WithEnv(env string) *Event {
	e.Env = env
	return e
}

// WithTerm sets the search term on the event.
func (e *Event) WithTerm(term string) *Event {
	e.Term = term
	return e
}

// WithFile sets the input file on the event.
func (e *Event) WithFile(file string) *Event {
	e.File = file
	return e
}

// WithRun sets the batch run identifier on the event.
func (e *Event) WithRun(run string) *Event {
	e.Run = run
	return e
}

// WithCount sets the primary quantity on the event.
func (e *Event) WithCount(count int) *Event {
	e.Count = count
	return e
}

// WithGraph sets the extracted entity and relation counts.
func (e *Event) WithGraph(entities, relations int) *Event {
	e.Entities = entities
	e.Relations = relations

	return e
}

// WithError sets the error on the event and marks it as failed.
func (e *Event) WithError(err string) *Event {
	e.Error = err
	e.Success = false

	return e
}

// WithExtra adds extra data to the event.
func (e *Event) WithExtra(key, value string) *Event {
	if e.Extra == nil {
		e.Extra = make(map[string]string)
	}

	e.Extra[key] = value

	return e
}
