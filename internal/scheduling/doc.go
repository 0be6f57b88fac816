// Package scheduling owns the lifecycle of a meeting scheduling request.
//
// A Store keeps every outstanding request in memory for the lifetime of
// the process. A Workflow drives the request through its states:
//
//	pending --(valid slot selected)--> scheduled
//	pending --(invalid slot index)---> error
//
// Proposals and confirmations leave the process through a Notifier, a
// confirmed meeting is recorded through a MeetingRecorder and the calendar
// invite is produced by an InviteEncoder. The Google backed implementations
// live in the gmail, calendar and ical packages; tests use in-memory fakes.
//
// Failures are reported with the sentinel errors ErrNotFound,
// ErrInvalidIndex, ErrDelivery, ErrUpstream and ErrNotConfigured. Callers
// classify them with errors.Is.
package scheduling
