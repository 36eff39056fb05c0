// internal/core/ports/record_store.go
package ports

import (
	"context"
	"encoding/json"
	"time"
)

// Collection names. Every persisted entity lives in one of these.
const (
	CollectionInventory = "inventory"
	CollectionCustomers = "customers"
	CollectionSales     = "sales"
	CollectionLogs      = "logs"
)

// ListParams narrows a List call. Zero values mean no filtering.
type ListParams struct {
	Since *time.Time
	Until *time.Time
}

// RecordOps is the raw CRUD surface over named collections of JSON records.
// Ids are assigned by the store: monotonic per collection, never reused even
// after deletion.
type RecordOps interface {
	// Create persists a new record, assigns a fresh id and returns it. The
	// stored document carries the assigned id in its "id" field.
	Create(ctx context.Context, collection string, data json.RawMessage) (int64, error)
	// Get returns a single record or domain.ErrNotFound.
	Get(ctx context.Context, collection string, id int64) (json.RawMessage, error)
	// List returns all matching records in store order.
	List(ctx context.Context, collection string, params ListParams) ([]json.RawMessage, error)
	// Update fully overwrites the record with the given id. A missing id is
	// inserted (upsert), and the collection counter never falls behind it.
	Update(ctx context.Context, collection string, id int64, data json.RawMessage) error
	// Delete removes the record. Deleting a missing id is a no-op success.
	Delete(ctx context.Context, collection string, id int64) error
}

// RecordStore is the persistence port for the record collections. RunAtomic
// executes fn inside a single transaction; any error rolls every operation
// back. The sale commit depends on this to keep the sales and inventory
// collections consistent.
type RecordStore interface {
	RecordOps

	RunAtomic(ctx context.Context, fn func(ops RecordOps) error) error

	// DeleteOlderThan prunes records created before cutoff, returning the
	// number of rows removed. Used by background cleanup only.
	DeleteOlderThan(ctx context.Context, collection string, cutoff time.Time) (int64, error)
}

// Collection is a typed convenience wrapper over RecordOps for one
// collection, handling the JSON round trip.
type Collection[T any] struct {
	ops  RecordOps
	name string
}

// NewCollection binds a typed collection to the given ops. Ops may be a
// RecordStore or the transactional ops handed to a RunAtomic callback.
func NewCollection[T any](ops RecordOps, name string) Collection[T] {
	return Collection[T]{ops: ops, name: name}
}

// Create persists rec and returns the assigned id.
func (c Collection[T]) Create(ctx context.Context, rec *T) (int64, error) {
	data, err := json.Marshal(rec)
	if err != nil {
		return 0, err
	}
	return c.ops.Create(ctx, c.name, data)
}

// Get fetches a single record by id.
func (c Collection[T]) Get(ctx context.Context, id int64) (*T, error) {
	data, err := c.ops.Get(ctx, c.name, id)
	if err != nil {
		return nil, err
	}
	rec := new(T)
	if err := json.Unmarshal(data, rec); err != nil {
		return nil, err
	}
	return rec, nil
}

// All returns every record in the collection in store order.
func (c Collection[T]) All(ctx context.Context) ([]T, error) {
	return c.Select(ctx, ListParams{})
}

// Select returns the records matching params in store order.
func (c Collection[T]) Select(ctx context.Context, params ListParams) ([]T, error) {
	raws, err := c.ops.List(ctx, c.name, params)
	if err != nil {
		return nil, err
	}
	recs := make([]T, 0, len(raws))
	for _, raw := range raws {
		var rec T
		if err := json.Unmarshal(raw, &rec); err != nil {
			return nil, err
		}
		recs = append(recs, rec)
	}
	return recs, nil
}

// Update overwrites the record with the given id.
func (c Collection[T]) Update(ctx context.Context, id int64, rec *T) error {
	data, err := json.Marshal(rec)
	if err != nil {
		return err
	}
	return c.ops.Update(ctx, c.name, id, data)
}

// Delete removes the record with the given id, succeeding even if absent.
func (c Collection[T]) Delete(ctx context.Context, id int64) error {
	return c.ops.Delete(ctx, c.name, id)
}
