package google

import (
	calendar "google.golang.org/api/calendar/v3"
	gmail "google.golang.org/api/gmail/v1"
	people "google.golang.org/api/people/v1"
)

// Scopes are the OAuth scopes schedulr needs:
// free/busy and event insert, reading contacts, and sending mail.
var Scopes = []string{
	calendar.CalendarScope,
	people.ContactsReadonlyScope,
	gmail.GmailSendScope,
}
