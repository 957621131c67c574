// Package tracelog provides structured trace logging for the arkprofile
// codec.
//
// The decoder and encoder emit one event per property they walk, plus
// events for container headers, recoverable findings, and fatal errors.
// A trace gives a complete machine-readable record of how a container
// was interpreted, which is the primary debugging aid when a save file
// round-trips incorrectly or fails verification.
//
// # Basic Usage
//
// Attach a Logger implementation to a Decoder, Encoder, or profile call:
//
//	// For development: log to console via slog
//	dec.Logger = tracelog.NewSlogAdapter(slog.Default())
//
//	// For analysis: write a binary trace file
//	dec.Logger, _ = tracelog.NewFileLogger("profile.aptrace")
//
//	// Both at once
//	dec.Logger = tracelog.NewMultiLogger(...)
//
// # File Format
//
// Trace files are a concatenation of CBOR-encoded events (integer keys,
// RFC3339Nano timestamps). Reader iterates them back, optionally
// filtered.
package tracelog
