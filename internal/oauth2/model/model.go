// Package model implements the grant model: the callback surface an OAuth2
// protocol engine drives to look up clients and users, persist tokens and
// authorization codes, and revoke them again.
//
// Failure semantics are uniform across the surface: "not found" and
// "authentication failed" are nil (or false) results with a nil error, so an
// engine can tell an expected rejection from a storage failure. Storage
// errors propagate unmodified.
package model

import (
	"context"
	"log/slog"
	"strings"

	"github.com/aussiebroadwan/grantstore/internal/oauth2/domain"
	"github.com/aussiebroadwan/grantstore/internal/oauth2/store"
	"github.com/aussiebroadwan/grantstore/pkg/cryptox"
	"github.com/aussiebroadwan/grantstore/pkg/slogx"
)

// Model is the contract a protocol engine invokes. GrantModel is the only
// implementation; the interface exists so engines and the authorization
// bridge can be tested against a fake.
type Model interface {
	GetClient(ctx context.Context, clientID, clientSecret string) (*domain.Client, error)
	GetUserFromClient(ctx context.Context, client domain.ClientRef) (*domain.Credential, error)
	GetUser(ctx context.Context, username, password string) (*domain.Credential, error)

	GetAccessToken(ctx context.Context, accessToken string) (*domain.AccessToken, error)
	GetRefreshToken(ctx context.Context, refreshToken string) (*domain.RefreshToken, error)
	GetAuthorizationCode(ctx context.Context, code string) (*domain.AuthorizationCode, error)

	SaveToken(ctx context.Context, token domain.Token, client domain.ClientRef, user domain.UserRef) (*domain.IssuedToken, error)
	RevokeToken(ctx context.Context, token domain.RefreshToken) (bool, error)
	SaveAuthorizationCode(ctx context.Context, code domain.AuthorizationCode, client domain.ClientRef, user domain.UserRef) (*domain.AuthorizationCode, error)
	RevokeAuthorizationCode(ctx context.Context, code domain.AuthorizationCode) (bool, error)

	VerifyScope(ctx context.Context, token domain.AccessToken, scope string) (bool, error)
}

// GrantModel implements Model over a key-value Store.
type GrantModel struct {
	store  store.Store
	tables store.Tables
	hasher *cryptox.PasswordHasher
	logger *slog.Logger
}

var _ Model = (*GrantModel)(nil)

func New(s store.Store, tables store.Tables, hasher *cryptox.PasswordHasher, logger *slog.Logger) *GrantModel {
	return &GrantModel{
		store:  s,
		tables: tables,
		hasher: hasher,
		logger: slogx.Component(logger, "model"),
	}
}

// GetClient looks a client up by id. When clientSecret is non-empty the
// stored secret must match exactly; a missing client and a wrong secret are
// both reported as nil, so callers cannot tell the two apart. An empty
// clientSecret skips the check, for clients that authenticate by other means.
func (m *GrantModel) GetClient(ctx context.Context, clientID, clientSecret string) (*domain.Client, error) {
	m.logger.DebugContext(ctx, "getting client", slog.String("client_id", clientID))

	items, err := m.store.Query(ctx, m.tables.Clients, clientByID(clientID))
	if err != nil {
		return nil, err
	}

	item := store.First(items)
	if item == nil {
		return nil, nil
	}
	if clientSecret != "" && item.String("client_secret") != clientSecret {
		return nil, nil
	}
	return clientFromRecord(item), nil
}

// GetUserFromClient resolves the credential owning a client, for the
// client_credentials grant. Returns nil when the client or its owner cannot
// be resolved.
func (m *GrantModel) GetUserFromClient(ctx context.Context, client domain.ClientRef) (*domain.Credential, error) {
	m.logger.DebugContext(ctx, "getting user from client", slog.String("client_id", client.ID))

	items, err := m.store.Query(ctx, m.tables.Clients, clientByID(client.ID))
	if err != nil {
		return nil, err
	}
	item := store.First(items)
	if item == nil {
		return nil, nil
	}

	owners, err := m.store.Query(ctx, m.tables.Credentials, credentialByID(item.String("user_id")))
	if err != nil {
		return nil, err
	}
	owner := store.First(owners)
	if owner == nil {
		return nil, nil
	}
	return credentialFromRecord(owner), nil
}

// GetUser authenticates a resource owner for the password grant. The result
// is nil when the password is missing, the username is unknown, or the hash
// does not match; the three cases are indistinguishable. On success the
// credential carries only id and username.
func (m *GrantModel) GetUser(ctx context.Context, username, password string) (*domain.Credential, error) {
	m.logger.DebugContext(ctx, "getting user", slog.String("username", username))

	if password == "" {
		return nil, nil
	}

	items, err := m.store.Query(ctx, m.tables.Credentials, credentialByUsername(username))
	if err != nil {
		return nil, err
	}
	item := store.First(items)
	if item == nil {
		return nil, nil
	}
	if !m.hasher.Verify(password, item.String("password")) {
		return nil, nil
	}
	return credentialFromRecord(item), nil
}

// GetAccessToken returns the stored access token, or nil when absent.
func (m *GrantModel) GetAccessToken(ctx context.Context, accessToken string) (*domain.AccessToken, error) {
	m.logger.DebugContext(ctx, "getting access token")

	items, err := m.store.Query(ctx, m.tables.AccessTokens, accessTokenByValue(accessToken))
	if err != nil {
		return nil, err
	}
	item := store.First(items)
	if item == nil {
		return nil, nil
	}
	return accessTokenFromRecord(item), nil
}

// GetRefreshToken returns the stored refresh token, or nil when absent.
func (m *GrantModel) GetRefreshToken(ctx context.Context, refreshToken string) (*domain.RefreshToken, error) {
	m.logger.DebugContext(ctx, "getting refresh token")

	items, err := m.store.Query(ctx, m.tables.RefreshTokens, refreshTokenByValue(refreshToken))
	if err != nil {
		return nil, err
	}
	item := store.First(items)
	if item == nil {
		return nil, nil
	}
	return refreshTokenFromRecord(item), nil
}

// GetAuthorizationCode returns the stored authorization code, or nil when
// absent. Redemption deletes the record, so a redeemed code is absent here.
func (m *GrantModel) GetAuthorizationCode(ctx context.Context, code string) (*domain.AuthorizationCode, error) {
	m.logger.DebugContext(ctx, "getting authorization code")

	items, err := m.store.Query(ctx, m.tables.Authorizations, authorizationCodeByValue(code))
	if err != nil {
		return nil, err
	}
	item := store.First(items)
	if item == nil {
		return nil, nil
	}
	return authorizationCodeFromRecord(item), nil
}

// SaveToken persists the access token record, then the refresh token record
// when the token carries one. Fail-fast: the refresh put only happens if the
// access put succeeded. Returns the token merged with the client and user it
// was issued to, the shape the engine hands back to its caller.
func (m *GrantModel) SaveToken(ctx context.Context, token domain.Token, client domain.ClientRef, user domain.UserRef) (*domain.IssuedToken, error) {
	m.logger.DebugContext(ctx, "saving token",
		slog.String("client_id", client.ID),
		slog.String("user_id", user.ID),
		slog.Bool("refresh", token.RefreshToken != ""),
	)

	if err := m.store.Put(ctx, m.tables.AccessTokens, accessTokenRecord(token, client, user)); err != nil {
		return nil, err
	}
	if token.RefreshToken != "" {
		if err := m.store.Put(ctx, m.tables.RefreshTokens, refreshTokenRecord(token, client, user)); err != nil {
			return nil, err
		}
	}

	return &domain.IssuedToken{Token: token, Client: client, User: user}, nil
}

// RevokeToken revokes a refresh token and its paired access token. The
// refresh token is looked up by value; when absent, nothing is deleted and
// the result is false. When found, the paired access token is deleted first,
// then the refresh token. The two deletes are separate operations with no
// transaction; a failure between them can orphan one record, which then ages
// out through its own expiry.
func (m *GrantModel) RevokeToken(ctx context.Context, token domain.RefreshToken) (bool, error) {
	m.logger.DebugContext(ctx, "revoking token")

	items, err := m.store.Query(ctx, m.tables.RefreshTokens, refreshTokenByValue(token.RefreshToken))
	if err != nil {
		return false, err
	}
	item := store.First(items)
	if item == nil {
		return false, nil
	}

	err = m.store.Delete(ctx, m.tables.AccessTokens, store.Record{
		"access_token": item.String("access_token"),
	})
	if err != nil {
		return false, err
	}
	err = m.store.Delete(ctx, m.tables.RefreshTokens, store.Record{
		"refresh_token": item.String("refresh_token"),
	})
	if err != nil {
		return false, err
	}
	return true, nil
}

// SaveAuthorizationCode persists one authorization code record. Scope,
// redirect URI and expiry are written only when set. Returns the code merged
// with its client and user.
func (m *GrantModel) SaveAuthorizationCode(ctx context.Context, code domain.AuthorizationCode, client domain.ClientRef, user domain.UserRef) (*domain.AuthorizationCode, error) {
	m.logger.DebugContext(ctx, "saving authorization code",
		slog.String("client_id", client.ID),
		slog.String("user_id", user.ID),
	)

	if err := m.store.Put(ctx, m.tables.Authorizations, authorizationCodeRecord(code, client, user)); err != nil {
		return nil, err
	}

	issued := code
	issued.Client = client
	issued.User = user
	return &issued, nil
}

// RevokeAuthorizationCode deletes a code after a successful lookup, keyed by
// the code value alone. Absent codes report false with no side effects.
// Redemption is exactly revoke-after-lookup, which makes codes single-use:
// the second redemption finds nothing.
func (m *GrantModel) RevokeAuthorizationCode(ctx context.Context, code domain.AuthorizationCode) (bool, error) {
	m.logger.DebugContext(ctx, "revoking authorization code")

	items, err := m.store.Query(ctx, m.tables.Authorizations, authorizationCodeByValue(code.Code))
	if err != nil {
		return false, err
	}
	if store.First(items) == nil {
		return false, nil
	}

	err = m.store.Delete(ctx, m.tables.Authorizations, store.Record{
		"code": code.Code,
	})
	if err != nil {
		return false, err
	}
	return true, nil
}

// VerifyScope reports whether every requested scope token was granted. Both
// scopes split on whitespace into sets; the check is order-independent and
// ignores duplicates. A token granted no scope at all always fails, even for
// an empty request.
func (m *GrantModel) VerifyScope(_ context.Context, token domain.AccessToken, scope string) (bool, error) {
	granted := strings.Fields(token.Scope)
	if len(granted) == 0 {
		return false, nil
	}

	set := make(map[string]struct{}, len(granted))
	for _, s := range granted {
		set[s] = struct{}{}
	}
	for _, s := range strings.Fields(scope) {
		if _, ok := set[s]; !ok {
			return false, nil
		}
	}
	return true, nil
}
