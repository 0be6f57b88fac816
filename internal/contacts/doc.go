// Package contacts lists the Google People connections of an account.
package contacts
