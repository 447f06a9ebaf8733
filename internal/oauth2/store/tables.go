package store

import (
	"errors"
	"fmt"
)

// ErrNotFound reports that a record a caller insisted on does not exist.
// Lookups in this codebase return nil for absent records; only operations
// that require an existing record (e.g. cascading credential delete) use it.
var ErrNotFound = errors.New("store: not found")

// Secondary index names, as provisioned on the backing tables.
const (
	// IndexCredentialsByID looks credentials up by their stable id rather
	// than the username primary key.
	IndexCredentialsByID = "IdUsernameGSI"

	// IndexClientsByUser lists a user's clients by owning credential id.
	IndexClientsByUser = "UserIdClientIdGSI"
)

// Tables names the five backing tables. All entity records live one table
// per entity type.
type Tables struct {
	Credentials    string
	Clients        string
	Authorizations string
	AccessTokens   string
	RefreshTokens  string
}

// TablesForStage returns the conventional table names for a deployment
// stage, e.g. "oauth2-dev-credentials".
func TablesForStage(stage string) Tables {
	return Tables{
		Credentials:    fmt.Sprintf("oauth2-%s-credentials", stage),
		Clients:        fmt.Sprintf("oauth2-%s-oAuthClients", stage),
		Authorizations: fmt.Sprintf("oauth2-%s-oAuthorizations", stage),
		AccessTokens:   fmt.Sprintf("oauth2-%s-oAuthAccessTokens", stage),
		RefreshTokens:  fmt.Sprintf("oauth2-%s-oAuthRefreshTokens", stage),
	}
}

// KeySchema returns each table's primary key field, matching the key schema
// the backing store was provisioned with.
func (t Tables) KeySchema() map[string]string {
	return map[string]string{
		t.Credentials:    "username",
		t.Clients:        "client_id",
		t.Authorizations: "code",
		t.AccessTokens:   "access_token",
		t.RefreshTokens:  "refresh_token",
	}
}
