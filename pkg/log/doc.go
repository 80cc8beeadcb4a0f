// Package log provides structured protocol capture for the Lightwave
// client.
//
// It is separate from operational logging (slog): a protocol capture is a
// complete machine-readable trace of frames, decoded envelopes, state
// changes and correlation anomalies, suitable for replaying a session
// while chasing protocol defects.
//
// Applications pick an implementation of the Logger interface:
//
//	// Development: protocol events on the console via slog
//	protocol := log.NewSlogAdapter(slog.Default())
//
//	// Production: binary capture file
//	protocol, _ := log.NewFileLogger("session.lwlog")
//
//	// Both at once
//	protocol := log.NewMultiLogger(
//	    log.NewSlogAdapter(slog.Default()),
//	    fileLogger,
//	)
//
// Capture files are a CBOR event stream with integer keys; Reader streams
// them back, optionally filtered.
package log
