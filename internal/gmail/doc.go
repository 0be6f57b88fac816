// Package gmail sends scheduling emails through the Gmail API.
//
// Sender implements scheduling.Notifier. Messages are built as raw RFC 2822
// text; confirmations carrying a calendar invite are sent as multipart/mixed
// with a text/calendar attachment so mail clients offer to accept it.
package gmail
