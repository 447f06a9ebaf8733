// Package store defines the key-value storage contract the OAuth2 core is
// built on. Drivers translate the generic query/put/delete/list operations
// onto a concrete backend (DynamoDB in production, SQLite locally). The
// contract deliberately exposes nothing relational: tables are named
// collections of flat records with a primary key and optional secondary
// indexes, provisioned out-of-band.
package store

import "context"

// Criteria describes a primary-key or secondary-index query. Where is a
// key-condition expression of the form "field = :name" with the bound value
// carried in Values under ":name". Index names a secondary index; empty
// means the table's primary key.
type Criteria struct {
	Index  string
	Where  string
	Values map[string]any
}

// Store is the storage adapter contract.
//
// Query returns matching records in index order; an empty result is not an
// error, callers treat "no items" as absent. Put is an upsert: the same call
// creates or overwrites. Delete by key is a no-op when the record does not
// exist. Uniqueness of natural keys is an application invariant, not a
// storage constraint, so reads that expect one record still take the first
// of a possibly multi-item result.
type Store interface {
	Query(ctx context.Context, table string, criteria Criteria) ([]Record, error)
	Put(ctx context.Context, table string, item Record) error
	Delete(ctx context.Context, table string, key Record) error
	List(ctx context.Context, table string) ([]Record, error)
	Ping(ctx context.Context) error
	Close() error
}

// First models the "take the first matching item" rule explicitly: the first
// record of a query result, or nil when the result is empty.
func First(items []Record) Record {
	if len(items) == 0 {
		return nil
	}
	return items[0]
}
