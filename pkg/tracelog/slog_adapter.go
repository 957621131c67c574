package tracelog

import (
	"context"
	"log/slog"
)

// SlogAdapter writes trace events to an slog.Logger.
// Useful for development when you want to see codec events in console.
type SlogAdapter struct {
	logger *slog.Logger
}

// NewSlogAdapter creates a SlogAdapter that writes to the given slog.Logger.
func NewSlogAdapter(logger *slog.Logger) *SlogAdapter {
	return &SlogAdapter{logger: logger}
}

// Log writes the event to the slog logger at Debug level.
func (a *SlogAdapter) Log(event Event) {
	attrs := []slog.Attr{
		slog.String("session", event.SessionID),
		slog.String("direction", event.Direction.String()),
		slog.String("category", event.Category.String()),
	}

	if event.Path != "" {
		attrs = append(attrs, slog.String("path", event.Path))
	}

	switch {
	case event.Property != nil:
		attrs = append(attrs,
			slog.String("name", event.Property.Name),
			slog.String("type", event.Property.Type),
			slog.Int("offset", event.Property.Offset),
			slog.Int("size", int(event.Property.Size)),
		)
		if event.Property.Depth > 0 {
			attrs = append(attrs, slog.Int("depth", event.Property.Depth))
		}
		if event.Property.Count != nil {
			attrs = append(attrs, slog.Int("count", int(*event.Property.Count)))
		}
	case event.Header != nil:
		attrs = append(attrs,
			slog.Int("version", int(event.Header.Version)),
			slog.String("name", event.Header.Name),
			slog.String("map", event.Header.MapName),
			slog.Int("property_start", event.Header.PropertyStart),
		)
	case event.Finding != nil:
		attrs = append(attrs,
			slog.String("kind", event.Finding.Kind),
			slog.String("name", event.Finding.Name),
			slog.Int("offset", event.Finding.Offset),
			slog.String("detail", event.Finding.Detail),
		)
	case event.Error != nil:
		attrs = append(attrs,
			slog.String("error", event.Error.Message),
			slog.Int("offset", event.Error.Offset),
			slog.String("context", event.Error.Context),
		)
	}

	a.logger.LogAttrs(context.Background(), slog.LevelDebug, "codec trace", attrs...)
}

// Compile-time interface satisfaction check.
var _ Logger = (*SlogAdapter)(nil)
