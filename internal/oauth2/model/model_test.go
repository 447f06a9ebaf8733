package model

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/aussiebroadwan/grantstore/internal/oauth2/domain"
	"github.com/aussiebroadwan/grantstore/internal/oauth2/store"
	"github.com/aussiebroadwan/grantstore/internal/oauth2/store/drivers/sqlite"
	"github.com/aussiebroadwan/grantstore/pkg/cryptox"
)

// countingStore wraps a Store to count writes, so tests can assert exactly
// how many persists and deletes an operation performed.
type countingStore struct {
	store.Store
	puts    int
	deletes int
}

func (c *countingStore) Put(ctx context.Context, table string, item store.Record) error {
	c.puts++
	return c.Store.Put(ctx, table, item)
}

func (c *countingStore) Delete(ctx context.Context, table string, key store.Record) error {
	c.deletes++
	return c.Store.Delete(ctx, table, key)
}

func newTestModel(t *testing.T) (*GrantModel, *countingStore, store.Tables, *cryptox.PasswordHasher) {
	t.Helper()

	tables := store.TablesForStage("test")
	backing, err := sqlite.NewStore(":memory:", tables.KeySchema(), nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = backing.Close() })
	require.NoError(t, backing.ApplyMigrations())

	counting := &countingStore{Store: backing}
	hasher := cryptox.NewPasswordHasher("test-salt")
	return New(counting, tables, hasher, nil), counting, tables, hasher
}

func seedCredential(t *testing.T, s store.Store, tables store.Tables, hasher *cryptox.PasswordHasher, id, username, password string) {
	t.Helper()
	require.NoError(t, s.Put(context.Background(), tables.Credentials, store.Record{
		"id":       id,
		"username": username,
		"password": hasher.Hash(password),
	}))
}

func seedClient(t *testing.T, s store.Store, tables store.Tables, item store.Record) {
	t.Helper()
	require.NoError(t, s.Put(context.Background(), tables.Clients, item))
}

func TestGetClient(t *testing.T) {
	ctx := context.Background()
	m, s, tables, _ := newTestModel(t)

	seedClient(t, s, tables, store.Record{
		"client_id":     "c1",
		"client_secret": "shh",
		"user_id":       "u1",
		"grants":        []string{"authorization_code", "refresh_token"},
		"redirect_uris": []string{"https://app.example/cb"},
	})

	t.Run("matching secret returns the client", func(t *testing.T) {
		client, err := m.GetClient(ctx, "c1", "shh")
		require.NoError(t, err)
		require.NotNil(t, client)
		require.Equal(t, "c1", client.ID)
		require.Equal(t, "u1", client.User.ID)
		require.Equal(t, []string{"authorization_code", "refresh_token"}, client.Grants)
		require.Equal(t, []string{"https://app.example/cb"}, client.RedirectURIs)
	})

	t.Run("wrong secret and unknown id are indistinguishable", func(t *testing.T) {
		client, err := m.GetClient(ctx, "c1", "wrong")
		require.NoError(t, err)
		require.Nil(t, client)

		client, err = m.GetClient(ctx, "missing", "shh")
		require.NoError(t, err)
		require.Nil(t, client)
	})

	t.Run("empty secret skips the check", func(t *testing.T) {
		client, err := m.GetClient(ctx, "c1", "")
		require.NoError(t, err)
		require.NotNil(t, client)
	})
}

func TestGetUser(t *testing.T) {
	ctx := context.Background()
	m, s, tables, hasher := newTestModel(t)

	seedCredential(t, s, tables, hasher, "u1", "alice", "s3cret")

	t.Run("correct password returns the projection", func(t *testing.T) {
		user, err := m.GetUser(ctx, "alice", "s3cret")
		require.NoError(t, err)
		require.NotNil(t, user)
		require.Equal(t, &domain.Credential{ID: "u1", Username: "alice"}, user)
	})

	t.Run("wrong password, unknown user and empty password are uniform", func(t *testing.T) {
		for _, tc := range []struct{ username, password string }{
			{"alice", "wrong"},
			{"bob", "s3cret"},
			{"alice", ""},
		} {
			user, err := m.GetUser(ctx, tc.username, tc.password)
			require.NoError(t, err)
			require.Nil(t, user)
		}
	})
}

func TestGetUserFromClient(t *testing.T) {
	ctx := context.Background()
	m, s, tables, hasher := newTestModel(t)

	seedCredential(t, s, tables, hasher, "u1", "alice", "s3cret")
	seedClient(t, s, tables, store.Record{"client_id": "c1", "user_id": "u1"})
	seedClient(t, s, tables, store.Record{"client_id": "orphan", "user_id": "gone"})

	user, err := m.GetUserFromClient(ctx, domain.ClientRef{ID: "c1"})
	require.NoError(t, err)
	require.Equal(t, &domain.Credential{ID: "u1", Username: "alice"}, user)

	user, err = m.GetUserFromClient(ctx, domain.ClientRef{ID: "missing"})
	require.NoError(t, err)
	require.Nil(t, user)

	user, err = m.GetUserFromClient(ctx, domain.ClientRef{ID: "orphan"})
	require.NoError(t, err)
	require.Nil(t, user)
}

func TestSaveTokenWithRefresh(t *testing.T) {
	ctx := context.Background()
	m, s, _, _ := newTestModel(t)

	accessExp := time.Unix(1700003600, 0).UTC()
	token := domain.Token{
		AccessToken:          "AT1",
		AccessTokenExpiresAt: &accessExp,
		RefreshToken:         "RT1",
		Scope:                "read write",
	}

	issued, err := m.SaveToken(ctx, token, domain.ClientRef{ID: "c1"}, domain.UserRef{ID: "u1"})
	require.NoError(t, err)
	require.Equal(t, 2, s.puts)
	require.Equal(t, token, issued.Token)
	require.Equal(t, domain.ClientRef{ID: "c1"}, issued.Client)
	require.Equal(t, domain.UserRef{ID: "u1"}, issued.User)

	stored, err := m.GetAccessToken(ctx, "AT1")
	require.NoError(t, err)
	require.NotNil(t, stored)
	require.Equal(t, accessExp, stored.AccessTokenExpiresAt.UTC())
	require.Equal(t, "read write", stored.Scope)

	refresh, err := m.GetRefreshToken(ctx, "RT1")
	require.NoError(t, err)
	require.NotNil(t, refresh)
	require.Equal(t, "AT1", refresh.AccessToken)
	require.Nil(t, refresh.RefreshTokenExpiresAt)
}

func TestSaveTokenWithoutRefresh(t *testing.T) {
	ctx := context.Background()
	m, s, tables, _ := newTestModel(t)

	_, err := m.SaveToken(ctx, domain.Token{AccessToken: "AT1"},
		domain.ClientRef{ID: "c1"}, domain.UserRef{ID: "u1"})
	require.NoError(t, err)
	require.Equal(t, 1, s.puts)

	items, err := s.List(ctx, tables.RefreshTokens)
	require.NoError(t, err)
	require.Empty(t, items)

	// No scope and no expiry means the stored record has neither field.
	stored, err := s.Query(ctx, tables.AccessTokens, store.Criteria{
		Where:  "access_token = :access_token",
		Values: map[string]any{":access_token": "AT1"},
	})
	require.NoError(t, err)
	require.Len(t, stored, 1)
	require.False(t, stored[0].Has("scope"))
	require.False(t, stored[0].Has("access_token_expires_on"))
}

func TestRevokeToken(t *testing.T) {
	ctx := context.Background()
	m, s, _, _ := newTestModel(t)

	_, err := m.SaveToken(ctx, domain.Token{AccessToken: "AT1", RefreshToken: "RT1"},
		domain.ClientRef{ID: "c1"}, domain.UserRef{ID: "u1"})
	require.NoError(t, err)

	t.Run("unknown token deletes nothing", func(t *testing.T) {
		revoked, err := m.RevokeToken(ctx, domain.RefreshToken{RefreshToken: "missing"})
		require.NoError(t, err)
		require.False(t, revoked)
		require.Zero(t, s.deletes)
	})

	t.Run("known token removes the pair", func(t *testing.T) {
		revoked, err := m.RevokeToken(ctx, domain.RefreshToken{RefreshToken: "RT1"})
		require.NoError(t, err)
		require.True(t, revoked)
		require.Equal(t, 2, s.deletes)

		access, err := m.GetAccessToken(ctx, "AT1")
		require.NoError(t, err)
		require.Nil(t, access)

		refresh, err := m.GetRefreshToken(ctx, "RT1")
		require.NoError(t, err)
		require.Nil(t, refresh)
	})
}

func TestAuthorizationCodeIsSingleUse(t *testing.T) {
	ctx := context.Background()
	m, _, _, _ := newTestModel(t)

	exp := time.Unix(1700000600, 0).UTC()
	code := domain.AuthorizationCode{
		Code:        "abc",
		ExpiresAt:   &exp,
		Scope:       "read",
		RedirectURI: "https://app.example/cb",
	}

	issued, err := m.SaveAuthorizationCode(ctx, code, domain.ClientRef{ID: "c1"}, domain.UserRef{ID: "u1"})
	require.NoError(t, err)
	require.Equal(t, domain.ClientRef{ID: "c1"}, issued.Client)
	require.Equal(t, domain.UserRef{ID: "u1"}, issued.User)

	stored, err := m.GetAuthorizationCode(ctx, "abc")
	require.NoError(t, err)
	require.NotNil(t, stored)
	require.Equal(t, exp, stored.ExpiresAt.UTC())
	require.Equal(t, "https://app.example/cb", stored.RedirectURI)

	revoked, err := m.RevokeAuthorizationCode(ctx, domain.AuthorizationCode{Code: "abc"})
	require.NoError(t, err)
	require.True(t, revoked)

	stored, err = m.GetAuthorizationCode(ctx, "abc")
	require.NoError(t, err)
	require.Nil(t, stored)

	revoked, err = m.RevokeAuthorizationCode(ctx, domain.AuthorizationCode{Code: "abc"})
	require.NoError(t, err)
	require.False(t, revoked)
}

func TestSaveAuthorizationCodeOmitsEmptyFields(t *testing.T) {
	ctx := context.Background()
	m, s, tables, _ := newTestModel(t)

	_, err := m.SaveAuthorizationCode(ctx, domain.AuthorizationCode{Code: "bare"},
		domain.ClientRef{ID: "c1"}, domain.UserRef{ID: "u1"})
	require.NoError(t, err)

	items, err := s.Query(ctx, tables.Authorizations, store.Criteria{
		Where:  "code = :code",
		Values: map[string]any{":code": "bare"},
	})
	require.NoError(t, err)
	require.Len(t, items, 1)
	require.False(t, items[0].Has("scope"))
	require.False(t, items[0].Has("redirect_uri"))
	require.False(t, items[0].Has("code_expires_on"))
}

func TestVerifyScope(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	m := &GrantModel{}

	tests := []struct {
		name      string
		granted   string
		requested string
		want      bool
	}{
		{"subset passes", "read write admin", "read write", true},
		{"order and duplicates are irrelevant", "write read", "read read write", true},
		{"missing scope fails", "read", "read write", false},
		{"no granted scope always fails", "", "", false},
		{"no granted scope fails any request", "", "read", false},
		{"empty request against granted scope passes", "read", "", true},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			ok, err := m.VerifyScope(ctx, domain.AccessToken{Scope: tc.granted}, tc.requested)
			require.NoError(t, err)
			require.Equal(t, tc.want, ok)
		})
	}
}
