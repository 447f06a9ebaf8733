package domain

import "time"

// AuthorizationCode is a short-lived, single-use credential exchanged for
// tokens. Redemption is destructive: the code record is deleted on first
// use, so a second redemption finds nothing.
type AuthorizationCode struct {
	Code        string
	ExpiresAt   *time.Time
	Scope       string
	RedirectURI string
	Client      ClientRef
	User        UserRef
}
