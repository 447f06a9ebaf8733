// Package clients is the typed repository over the OAuth clients table. It
// is consumed by provisioning tooling and by the credential cascade; the
// grant model reads the same table through its own criteria.
package clients

import (
	"context"
	"log/slog"

	"github.com/aussiebroadwan/grantstore/internal/oauth2/domain"
	"github.com/aussiebroadwan/grantstore/internal/oauth2/store"
	"github.com/aussiebroadwan/grantstore/pkg/slogx"
)

type Repository struct {
	store  store.Store
	tables store.Tables
	logger *slog.Logger
}

func NewRepository(s store.Store, tables store.Tables, logger *slog.Logger) *Repository {
	return &Repository{
		store:  s,
		tables: tables,
		logger: slogx.Component(logger, "clients"),
	}
}

// Get returns the stored client record, or nil when absent. Uniqueness of
// client_id is an application invariant, so the first matching item wins.
func (r *Repository) Get(ctx context.Context, clientID string) (store.Record, error) {
	r.logger.DebugContext(ctx, "getting client", slog.String("client_id", clientID))

	items, err := r.store.Query(ctx, r.tables.Clients, store.Criteria{
		Where:  "client_id = :client_id",
		Values: map[string]any{":client_id": clientID},
	})
	if err != nil {
		return nil, err
	}
	return store.First(items), nil
}

// Put upserts a client record; the same call creates a client or rotates
// its secret. An empty redirect URI list is omitted from the stored record
// entirely, never written as an empty list.
func (r *Repository) Put(ctx context.Context, reg domain.ClientRegistration) error {
	r.logger.DebugContext(ctx, "upserting client",
		slog.String("client_id", reg.ClientID),
		slog.String("user_id", reg.UserID),
		slog.Any("grants", reg.Grants),
	)

	item := store.Record{
		"client_id":     reg.ClientID,
		"client_secret": reg.ClientSecret,
		"user_id":       reg.UserID,
		"description":   reg.Description,
		"grants":        reg.Grants,
	}
	if len(reg.RedirectURIs) > 0 {
		item["redirect_uris"] = reg.RedirectURIs
	}

	return r.store.Put(ctx, r.tables.Clients, item)
}

// Delete removes a client by id. Outstanding token records for the client
// are left to expire naturally.
func (r *Repository) Delete(ctx context.Context, clientID string) error {
	r.logger.DebugContext(ctx, "deleting client", slog.String("client_id", clientID))

	return r.store.Delete(ctx, r.tables.Clients, store.Record{
		"client_id": clientID,
	})
}

// List returns every client record.
func (r *Repository) List(ctx context.Context) ([]store.Record, error) {
	r.logger.DebugContext(ctx, "listing clients")

	return r.store.List(ctx, r.tables.Clients)
}

// ListForUser returns the client records owned by a credential id, via the
// secondary index. Reads through the index are eventually consistent with
// writes.
func (r *Repository) ListForUser(ctx context.Context, userID string) ([]store.Record, error) {
	r.logger.DebugContext(ctx, "listing clients for user", slog.String("user_id", userID))

	return r.store.Query(ctx, r.tables.Clients, store.Criteria{
		Index:  store.IndexClientsByUser,
		Where:  "user_id = :user_id",
		Values: map[string]any{":user_id": userID},
	})
}
