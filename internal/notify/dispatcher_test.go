package notify

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"
)

// recordingSender captures everything dispatched to it.
type recordingSender struct {
	name   string
	mu     sync.Mutex
	events []*Event
}

func (s *recordingSender) Send(_ context.Context, event *Event) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.events = append(s.events, event)

	return nil
}

func (s *recordingSender) Name() string {
	return s.name
}

func (s *recordingSender) count() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	return len(s.events)
}

// panickySender blows up on every send.
type panickySender struct{}

func (panickySender) Send(context.Context, *Event) error {
	panic("boom")
}

func (panickySender) Name() string {
	return "panicky"
}

func TestDispatcherSyncDelivery(t *testing.T) {
	first := &recordingSender{name: "first"}
	second := &recordingSender{name: "second"}

	d := NewDispatcher(Options{})
	d.Register(first)
	d.Register(second)

	event := NewEvent(EventProcess).WithFile("batch_1.json")
	d.Dispatch(context.Background(), event)

	require.Equal(t, 1, first.count())
	require.Equal(t, 1, second.count())
	require.Equal(t, "batch_1.json", first.events[0].File)
}

func TestDispatcherAsyncDelivery(t *testing.T) {
	first := &recordingSender{name: "first"}
	second := &recordingSender{name: "second"}

	d := NewDispatcher(Options{Async: true})
	d.Register(first)
	d.Register(second)

	d.Dispatch(context.Background(), NewEvent(EventCrawl))
	d.Dispatch(context.Background(), NewEvent(EventBatch))
	d.Wait()

	require.Equal(t, 2, first.count())
	require.Equal(t, 2, second.count())
}

func TestDispatcherUnregister(t *testing.T) {
	keep := &recordingSender{name: "keep"}
	drop := &recordingSender{name: "drop"}

	d := NewDispatcher(Options{})
	d.Register(keep)
	d.Register(drop)
	d.Unregister("drop")

	d.Dispatch(context.Background(), NewEvent(EventSetup))

	require.Equal(t, 1, keep.count())
	require.Equal(t, 0, drop.count())
	require.Len(t, d.Senders(), 1)
}

func TestDispatcherRecoversFromPanickingSender(t *testing.T) {
	after := &recordingSender{name: "after"}

	d := NewDispatcher(Options{})
	d.Register(panickySender{})
	d.Register(after)

	require.NotPanics(t, func() {
		d.Dispatch(context.Background(), NewEvent(EventError))
	})

	require.Equal(t, 1, after.count())
}

func TestDispatcherNoSenders(t *testing.T) {
	d := NewDispatcher(Options{})

	require.False(t, d.HasSenders())
	require.NotPanics(t, func() {
		d.Dispatch(context.Background(), NewEvent(EventLaunch))
	})
}

func TestDispatcherHasSenders(t *testing.T) {
	d := NewDispatcher(Options{})
	require.False(t, d.HasSenders())

	d.Register(&recordingSender{name: "one"})
	require.True(t, d.HasSenders())
}
