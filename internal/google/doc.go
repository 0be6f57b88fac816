// Package google provides OAuth2 credentials for the Google APIs schedulr calls.
//
// Obtaining tokens (the consent flow) is outside the scope of this package.
// Tokens are either read from per-account JSON files written by another
// tool, or supplied directly through configuration. The TokenProvider
// interface hides which of the two is in use from the API clients.
package google
