package domain

import "time"

// Token is the token material a protocol engine asks the model to persist.
// A nil expiry means the token does not expire. An empty RefreshToken means
// the grant did not issue one.
type Token struct {
	AccessToken           string
	AccessTokenExpiresAt  *time.Time
	RefreshToken          string
	RefreshTokenExpiresAt *time.Time
	Scope                 string
}

// IssuedToken is a Token augmented with the client and user it was issued
// to, returned from SaveToken in exactly the shape the engine expects back.
type IssuedToken struct {
	Token
	Client ClientRef
	User   UserRef
}

// AccessToken is a stored access token lifted into the domain.
type AccessToken struct {
	AccessToken          string
	AccessTokenExpiresAt *time.Time
	Scope                string
	Client               ClientRef
	User                 UserRef
}

// RefreshToken is a stored refresh token lifted into the domain. It carries
// the access token it was issued alongside; revocation removes the pair.
type RefreshToken struct {
	AccessToken           string
	RefreshToken          string
	RefreshTokenExpiresAt *time.Time
	Scope                 string
	Client                ClientRef
	User                  UserRef
}
