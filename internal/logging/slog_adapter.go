// Tabularium - Logical Database Backup and Restore Engine
// Copyright 2026 The Tabularium Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tabularium/tabularium

/* slog_adapter.go - Bridge between log/slog and zerolog

Some third-party libraries (notably the suture supervisor via sutureslog)
expect a *slog.Logger. This adapter routes slog records through the
package's zerolog backend so all output shares one format, one level
configuration, and one set of rotating-file writers.

Level mapping:

	slog.LevelDebug -> zerolog.DebugLevel
	slog.LevelInfo  -> zerolog.InfoLevel
	slog.LevelWarn  -> zerolog.WarnLevel
	slog.LevelError -> zerolog.ErrorLevel

Attributes and groups are flattened into zerolog fields; group names are
joined with "." (group "store" attr "driver" becomes field "store.driver").
*/
//nolint:staticcheck // File documentation, not package doc
package logging

import (
	"context"
	"log/slog"

	"github.com/rs/zerolog"
)

// SlogHandler implements slog.Handler backed by zerolog.
type SlogHandler struct {
	logger zerolog.Logger
	attrs  []slog.Attr
	groups []string
}

// NewSlogHandler creates a slog.Handler that writes through the global
// zerolog logger.
func NewSlogHandler() *SlogHandler {
	return &SlogHandler{logger: Logger()}
}

// NewSlogHandlerWithLogger creates a slog.Handler backed by a specific
// zerolog logger. Useful in tests where output is captured in a buffer.
//
//nolint:gocritic // zerolog.Logger is designed to be passed by value
func NewSlogHandlerWithLogger(logger zerolog.Logger) *SlogHandler {
	return &SlogHandler{logger: logger}
}

// NewSlogLogger returns a *slog.Logger that writes through the global
// zerolog logger. Pass this to libraries that require slog.
func NewSlogLogger() *slog.Logger {
	return slog.New(NewSlogHandler())
}

// Enabled reports whether the handler processes records at the given level.
func (h *SlogHandler) Enabled(_ context.Context, level slog.Level) bool {
	return slogToZerologLevel(level) >= h.logger.GetLevel()
}

// Handle converts an slog.Record into a zerolog event and writes it.
func (h *SlogHandler) Handle(_ context.Context, record slog.Record) error {
	event := h.logger.WithLevel(slogToZerologLevel(record.Level))

	// Attrs accumulated through WithAttrs come first, then the record's own.
	for _, attr := range h.attrs {
		event = addAttr(event, h.groups, attr)
	}
	record.Attrs(func(attr slog.Attr) bool {
		event = addAttr(event, h.groups, attr)
		return true
	})

	event.Msg(record.Message)
	return nil
}

// WithAttrs returns a new handler with the given attributes appended.
func (h *SlogHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	if len(attrs) == 0 {
		return h
	}
	newAttrs := make([]slog.Attr, 0, len(h.attrs)+len(attrs))
	newAttrs = append(newAttrs, h.attrs...)
	newAttrs = append(newAttrs, attrs...)
	return &SlogHandler{
		logger: h.logger,
		attrs:  newAttrs,
		groups: h.groups,
	}
}

// WithGroup returns a new handler with the given group name pushed onto
// the group stack.
func (h *SlogHandler) WithGroup(name string) slog.Handler {
	if name == "" {
		return h
	}
	newGroups := make([]string, 0, len(h.groups)+1)
	newGroups = append(newGroups, h.groups...)
	newGroups = append(newGroups, name)
	return &SlogHandler{
		logger: h.logger,
		attrs:  h.attrs,
		groups: newGroups,
	}
}

// addAttr flattens a single slog attribute into a zerolog event.
// Group prefixes are joined with ".".
func addAttr(event *zerolog.Event, groups []string, attr slog.Attr) *zerolog.Event {
	attr.Value = attr.Value.Resolve()

	key := attr.Key
	for i := len(groups) - 1; i >= 0; i-- {
		key = groups[i] + "." + key
	}

	switch attr.Value.Kind() {
	case slog.KindString:
		return event.Str(key, attr.Value.String())
	case slog.KindInt64:
		return event.Int64(key, attr.Value.Int64())
	case slog.KindUint64:
		return event.Uint64(key, attr.Value.Uint64())
	case slog.KindFloat64:
		return event.Float64(key, attr.Value.Float64())
	case slog.KindBool:
		return event.Bool(key, attr.Value.Bool())
	case slog.KindDuration:
		return event.Dur(key, attr.Value.Duration())
	case slog.KindTime:
		return event.Time(key, attr.Value.Time())
	case slog.KindGroup:
		for _, groupAttr := range attr.Value.Group() {
			event = addAttr(event, append(groups, attr.Key), groupAttr)
		}
		return event
	default:
		return event.Interface(key, attr.Value.Any())
	}
}

// slogToZerologLevel maps slog levels onto zerolog levels.
func slogToZerologLevel(level slog.Level) zerolog.Level {
	switch {
	case level < slog.LevelInfo:
		return zerolog.DebugLevel
	case level < slog.LevelWarn:
		return zerolog.InfoLevel
	case level < slog.LevelError:
		return zerolog.WarnLevel
	default:
		return zerolog.ErrorLevel
	}
}
