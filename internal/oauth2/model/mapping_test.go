package model

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/aussiebroadwan/grantstore/internal/oauth2/store"
)

func TestExpiryMapping(t *testing.T) {
	t.Parallel()

	at := time.Unix(1700000000, 0).UTC()

	item := store.Record{}
	setExpiry(item, "access_token_expires_on", &at)
	require.Equal(t, int64(1700000000), item["access_token_expires_on"])
	require.Equal(t, &at, expiryFromRecord(item, "access_token_expires_on"))

	bare := store.Record{}
	setExpiry(bare, "access_token_expires_on", nil)
	require.False(t, bare.Has("access_token_expires_on"))
	require.Nil(t, expiryFromRecord(bare, "access_token_expires_on"))
}

func TestClientFromRecordDefaults(t *testing.T) {
	t.Parallel()

	client := clientFromRecord(store.Record{
		"client_id": "c1",
		"user_id":   "u1",
		"grants":    []string{"password"},
	})
	require.Equal(t, "c1", client.ID)
	require.Equal(t, "u1", client.User.ID)
	require.Nil(t, client.RedirectURIs)
}

func TestCredentialProjectionDropsTheHash(t *testing.T) {
	t.Parallel()

	cred := credentialFromRecord(store.Record{
		"id":       "u1",
		"username": "alice",
		"password": "2c26b46b68ffc68ff99b453c1d304134",
	})
	require.Equal(t, "u1", cred.ID)
	require.Equal(t, "alice", cred.Username)
}
