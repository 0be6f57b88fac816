// Package ical encodes meeting confirmations as iCalendar (RFC 5545) invites.
package ical
