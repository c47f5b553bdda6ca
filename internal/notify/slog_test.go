package notify

import (
	"bytes"
	"context"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestSlogSenderInfo(t *testing.T) {
	var buf bytes.Buffer

	logger := slog.New(slog.NewTextHandler(&buf, nil))
	s := NewSlogSender(logger)

	event := NewEvent(EventCrawl).WithEnv("kg").WithTerm("silicosis").WithCount(120)
	require.NoError(t, s.Send(context.Background(), event))

	out := buf.String()
	require.Contains(t, out, "level=INFO")
	require.Contains(t, out, "pipeline event")
	require.Contains(t, out, "type=crawl")
	require.Contains(t, out, "env=kg")
	require.Contains(t, out, "term=silicosis")
	require.Contains(t, out, "count=120")
	require.NotContains(t, out, "entities=")
}

func TestSlogSenderError(t *testing.T) {
	var buf bytes.Buffer

	logger := slog.New(slog.NewTextHandler(&buf, nil))
	s := NewSlogSender(logger)

	event := NewEvent(EventProcess).WithFile("broken.json").WithError("exit status 1")
	require.NoError(t, s.Send(context.Background(), event))

	out := buf.String()
	require.Contains(t, out, "level=ERROR")
	require.Contains(t, out, "pipeline event failed")
	require.Contains(t, out, "file=broken.json")
	require.Contains(t, out, `error="exit status 1"`)
}

func TestSlogSenderExtras(t *testing.T) {
	var buf bytes.Buffer

	logger := slog.New(slog.NewTextHandler(&buf, nil))
	s := NewSlogSender(logger)

	event := NewEvent(EventBatch).
		WithRun("batch_run_20250301_120000").
		WithExtra("format", "json").
		WithExtra("workers", "4")
	require.NoError(t, s.Send(context.Background(), event))

	out := buf.String()
	require.Contains(t, out, "run=batch_run_20250301_120000")
	require.Contains(t, out, "format=json")
	require.Contains(t, out, "workers=4")
}

func TestSlogSenderName(t *testing.T) {
	require.Equal(t, "slog", NewSlogSender(nil).Name())
}
