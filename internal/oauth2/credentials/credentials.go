// Package credentials is the typed repository over the credentials table.
// Credentials are looked up by username (the natural key) or by their
// stable id through a secondary index; deleting a credential cascades to
// the clients it owns.
package credentials

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/aussiebroadwan/grantstore/internal/oauth2/clients"
	"github.com/aussiebroadwan/grantstore/internal/oauth2/domain"
	"github.com/aussiebroadwan/grantstore/internal/oauth2/store"
	"github.com/aussiebroadwan/grantstore/pkg/slogx"
)

type Repository struct {
	store   store.Store
	tables  store.Tables
	clients *clients.Repository
	logger  *slog.Logger
}

func NewRepository(s store.Store, tables store.Tables, c *clients.Repository, logger *slog.Logger) *Repository {
	return &Repository{
		store:   s,
		tables:  tables,
		clients: c,
		logger:  slogx.Component(logger, "credentials"),
	}
}

// Get returns the stored credential record for a username, or nil when
// absent. The record includes the password hash; only provisioning callers
// and the grant model see it.
func (r *Repository) Get(ctx context.Context, username string) (store.Record, error) {
	r.logger.DebugContext(ctx, "getting credential", slog.String("username", username))

	items, err := r.store.Query(ctx, r.tables.Credentials, store.Criteria{
		Where:  "username = :username",
		Values: map[string]any{":username": username},
	})
	if err != nil {
		return nil, err
	}
	return store.First(items), nil
}

// GetByID returns the credential record for a stable id via the secondary
// index, or nil when absent.
func (r *Repository) GetByID(ctx context.Context, id string) (store.Record, error) {
	r.logger.DebugContext(ctx, "getting credential by id", slog.String("id", id))

	items, err := r.store.Query(ctx, r.tables.Credentials, store.Criteria{
		Index:  store.IndexCredentialsByID,
		Where:  "id = :id",
		Values: map[string]any{":id": id},
	})
	if err != nil {
		return nil, err
	}
	return store.First(items), nil
}

// Put upserts a credential record. Updates replace the password hash while
// preserving id and username.
func (r *Repository) Put(ctx context.Context, reg domain.CredentialRegistration) error {
	r.logger.DebugContext(ctx, "upserting credential",
		slog.String("id", reg.ID),
		slog.String("username", reg.Username),
	)

	return r.store.Put(ctx, r.tables.Credentials, store.Record{
		"id":       reg.ID,
		"username": reg.Username,
		"password": reg.PasswordHash,
	})
}

// Delete removes a credential and cascades to the clients it owns: list the
// user's clients, delete each, then delete the credential. The cascade is
// fail-fast and not transactional; a failure leaves the remaining clients
// and the credential in place for a retry. Token records are not cascaded
// and age out via their own expiry.
//
// Returns store.ErrNotFound when no credential exists for the username.
func (r *Repository) Delete(ctx context.Context, username string) error {
	r.logger.DebugContext(ctx, "deleting credential", slog.String("username", username))

	item, err := r.Get(ctx, username)
	if err != nil {
		return err
	}
	if item == nil {
		return fmt.Errorf("credential %q: %w", username, store.ErrNotFound)
	}

	owned, err := r.clients.ListForUser(ctx, item.String("id"))
	if err != nil {
		return err
	}
	for _, client := range owned {
		if err := r.clients.Delete(ctx, client.String("client_id")); err != nil {
			return err
		}
	}

	return r.store.Delete(ctx, r.tables.Credentials, store.Record{
		"username": username,
	})
}

// List returns every credential record.
func (r *Repository) List(ctx context.Context) ([]store.Record, error) {
	r.logger.DebugContext(ctx, "listing credentials")

	return r.store.List(ctx, r.tables.Credentials)
}
