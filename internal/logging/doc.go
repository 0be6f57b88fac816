// Package logging provides structured logging utilities for schedulr.
//
// Everything logs through log/slog with a fixed set of attribute keys so
// that tool invocations, provider calls and scheduling requests can be
// correlated. Recipient addresses are never logged in the clear; use
// UserHash instead.
//
// Usage:
//
//	logger := logging.WithTool(slog.Default(), "send_scheduling_email")
//	logger.Info("proposal sent",
//	    logging.RequestID(id),
//	    logging.UserHash(target.Email),
//	    logging.Slots(len(offered)))
package logging
