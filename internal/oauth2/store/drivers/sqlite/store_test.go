package sqlite

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/aussiebroadwan/grantstore/internal/oauth2/store"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()

	s, err := NewStore(":memory:", map[string]string{
		"clients":     "client_id",
		"credentials": "username",
	}, nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })

	require.NoError(t, s.ApplyMigrations())
	return s
}

func TestPutAndQueryByPrimaryKey(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	item := store.Record{
		"client_id":     "c1",
		"client_secret": "shh",
		"user_id":       "u1",
		"grants":        []string{"password"},
	}
	require.NoError(t, s.Put(ctx, "clients", item))

	items, err := s.Query(ctx, "clients", store.Criteria{
		Where:  "client_id = :client_id",
		Values: map[string]any{":client_id": "c1"},
	})
	require.NoError(t, err)
	require.Len(t, items, 1)
	require.Equal(t, "shh", items[0].String("client_secret"))
	require.Equal(t, []string{"password"}, items[0].StringSlice("grants"))
}

func TestPutIsAnUpsert(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	require.NoError(t, s.Put(ctx, "clients", store.Record{"client_id": "c1", "client_secret": "old"}))
	require.NoError(t, s.Put(ctx, "clients", store.Record{"client_id": "c1", "client_secret": "new"}))

	items, err := s.List(ctx, "clients")
	require.NoError(t, err)
	require.Len(t, items, 1)
	require.Equal(t, "new", items[0].String("client_secret"))
}

func TestQueryBySecondaryField(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	require.NoError(t, s.Put(ctx, "clients", store.Record{"client_id": "c1", "user_id": "u1"}))
	require.NoError(t, s.Put(ctx, "clients", store.Record{"client_id": "c2", "user_id": "u1"}))
	require.NoError(t, s.Put(ctx, "clients", store.Record{"client_id": "c3", "user_id": "u2"}))

	items, err := s.Query(ctx, "clients", store.Criteria{
		Index:  "UserIdClientIdGSI",
		Where:  "user_id = :user_id",
		Values: map[string]any{":user_id": "u1"},
	})
	require.NoError(t, err)
	require.Len(t, items, 2)
}

func TestQueryEmptyResultIsNotAnError(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	items, err := s.Query(ctx, "clients", store.Criteria{
		Where:  "client_id = :client_id",
		Values: map[string]any{":client_id": "missing"},
	})
	require.NoError(t, err)
	require.Empty(t, items)
	require.Nil(t, store.First(items))
}

func TestDeleteIsIdempotent(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	require.NoError(t, s.Put(ctx, "credentials", store.Record{"id": "u1", "username": "alice"}))
	require.NoError(t, s.Delete(ctx, "credentials", store.Record{"username": "alice"}))
	require.NoError(t, s.Delete(ctx, "credentials", store.Record{"username": "alice"}))

	items, err := s.List(ctx, "credentials")
	require.NoError(t, err)
	require.Empty(t, items)
}

func TestNumbersSurviveTheRoundTrip(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	require.NoError(t, s.Put(ctx, "credentials", store.Record{
		"username":   "alice",
		"id":         "u1",
		"expires_on": int64(1700000000),
	}))

	items, err := s.Query(ctx, "credentials", store.Criteria{
		Where:  "username = :username",
		Values: map[string]any{":username": "alice"},
	})
	require.NoError(t, err)
	require.Len(t, items, 1)

	expires, ok := items[0].Int64("expires_on")
	require.True(t, ok)
	require.Equal(t, int64(1700000000), expires)

	_, ok = items[0].Int64("missing")
	require.False(t, ok)
}

func TestUnknownTableIsRejected(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	err := s.Put(ctx, "unknown", store.Record{"id": "x"})
	require.Error(t, err)
}

func TestParseWhere(t *testing.T) {
	t.Parallel()

	field, placeholder, err := parseWhere("user_id = :user_id")
	require.NoError(t, err)
	require.Equal(t, "user_id", field)
	require.Equal(t, ":user_id", placeholder)

	_, _, err = parseWhere("user_id > :user_id")
	require.Error(t, err)
}
