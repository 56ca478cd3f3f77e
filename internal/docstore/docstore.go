package docstore

import (
	"context"
	"encoding/json"
	"errors"
)

// Collection names other collaborators depend on.
const (
	CollectionUsers         = "users"
	CollectionJobs          = "jobs"
	CollectionCompanies     = "companies"
	CollectionEvents        = "events"
	CollectionNews          = "news"
	CollectionNotifications = "notifications"
	CollectionApplications  = "applications"
)

var (
	ErrNotFound    = errors.New("document not found")
	ErrConflict    = errors.New("transaction conflict")
	ErrUnavailable = errors.New("document store unavailable")
)

// Document is a raw record read from a collection.
type Document struct {
	ID   string
	Data json.RawMessage
}

func (d Document) Decode(v any) error {
	return json.Unmarshal(d.Data, v)
}

// Tx is the view of the store inside a running transaction. Reads performed
// through a Tx are consistent with the writes it buffers: a commit fails with
// ErrConflict if any document (or collection count) it read changed underneath
// it, and RunTransaction retries the whole function.
type Tx interface {
	Get(ctx context.Context, collection, id string) (Document, error)
	Count(ctx context.Context, collection string) (int64, error)
	Insert(ctx context.Context, collection string, v any) (string, error)
	Set(ctx context.Context, collection, id string, v any) error
}

// Store is the document store capability the services run on. Two
// implementations exist: Postgres for a configured deployment and Memory as
// the in-process fixture. Core logic never branches on which one it holds.
type Store interface {
	Get(ctx context.Context, collection, id string) (Document, error)
	List(ctx context.Context, collection string) ([]Document, error)
	Count(ctx context.Context, collection string) (int64, error)
	Insert(ctx context.Context, collection string, v any) (string, error)
	Set(ctx context.Context, collection, id string, v any) error
	Delete(ctx context.Context, collection, id string) error
	RunTransaction(ctx context.Context, fn func(ctx context.Context, tx Tx) error) error
	Close()
}
