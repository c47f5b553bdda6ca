package notify

import (
	"context"
	"log/slog"
	"maps"
	"slices"
)

// SlogSender forwards events to a structured logger, for runs whose
// output is collected rather than watched.
type SlogSender struct {
	logger *slog.Logger
}

// NewSlogSender creates a sender that logs events through logger.
func NewSlogSender(logger *slog.Logger) *SlogSender {
	if logger == nil {
		logger = slog.Default()
	}

	return &SlogSender{logger: logger}
}

// Name returns the sender name.
func (s *SlogSender) Name() string {
	return "slog"
}

// Send logs the event with its non-zero fields as attributes. Failed
// events log at error level.
func (s *SlogSender) Send(ctx context.Context, event *Event) error {
	args := []any{slog.String("type", event.Type)}

	if event.Env != "" {
		args = append(args, slog.String("env", event.Env))
	}

	if event.Term != "" {
		args = append(args, slog.String("term", event.Term))
	}

	if event.File != "" {
		args = append(args, slog.String("file", event.File))
	}

	if event.Run != "" {
		args = append(args, slog.String("run", event.Run))
	}

	if event.Count > 0 {
		args = append(args, slog.Int("count", event.Count))
	}

	if event.Entities > 0 || event.Relations > 0 {
		args = append(args,
			slog.Int("entities", event.Entities),
			slog.Int("relations", event.Relations))
	}

	for _, key := range slices.Sorted(maps.Keys(event.Extra)) {
		args = append(args, slog.String(key, event.Extra[key]))
	}

	if !event.Success {
		args = append(args, slog.String("error", event.Error))
		s.logger.ErrorContext(ctx, "pipeline event failed", args...)

		return nil
	}

	s.logger.InfoContext(ctx, "pipeline event", args...)

	return nil
}
