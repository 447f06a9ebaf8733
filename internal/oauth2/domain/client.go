// Package domain defines the OAuth2 objects exchanged between the grant
// model, the entity repositories and the protocol engine. These are the only
// shapes that cross the model boundary; stored password hashes never appear
// on them.
package domain

import (
	"slices"

	"github.com/jellydator/validation"
)

// Grant type names a client may be permitted to use.
const (
	GrantAuthorizationCode = "authorization_code"
	GrantPassword          = "password"
	GrantClientCredentials = "client_credentials"
	GrantRefreshToken      = "refresh_token"
)

// Grants is the set of all valid grant type names.
var Grants = []string{
	GrantAuthorizationCode,
	GrantPassword,
	GrantClientCredentials,
	GrantRefreshToken,
}

// ClientRef is a lightweight reference to a client by id.
type ClientRef struct {
	ID string
}

// UserRef is a lightweight reference to a credential by its stable id.
type UserRef struct {
	ID string
}

// Client is a stored OAuth client lifted into the domain. The stored secret
// is checked during lookup and never carried on this type.
type Client struct {
	ID           string
	RedirectURIs []string
	Grants       []string
	User         UserRef
}

// ClientRegistration is the full shape a provisioning caller supplies when
// creating or updating a client. Validation happens here, at the boundary
// where the data is first constructed; the repositories trust their callers.
type ClientRegistration struct {
	ClientID     string
	ClientSecret string
	UserID       string
	Description  string
	Grants       []string
	RedirectURIs []string
}

func (r ClientRegistration) Validate() error {
	needsRedirect := slices.Contains(r.Grants, GrantAuthorizationCode)

	return validation.ValidateStruct(&r,
		validation.Field(&r.ClientID, validation.Required),
		validation.Field(&r.ClientSecret, validation.Required),
		validation.Field(&r.UserID, validation.Required),
		validation.Field(&r.Grants,
			validation.Required,
			validation.Each(validation.In(
				GrantAuthorizationCode,
				GrantPassword,
				GrantClientCredentials,
				GrantRefreshToken,
			)),
		),
		validation.Field(&r.RedirectURIs,
			validation.When(needsRedirect, validation.Required),
		),
	)
}
