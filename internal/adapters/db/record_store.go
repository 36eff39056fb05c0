// internal/adapters/db/record_store.go
package db

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/bengkelpos/pos-be/internal/core/domain"
	"github.com/bengkelpos/pos-be/internal/core/ports"
)

// psql is the statement builder configured for PostgreSQL placeholders
var psql = sq.StatementBuilder.PlaceholderFormat(sq.Dollar)

// querier is the subset of pgx operations shared by a pool and a transaction,
// letting the same statements run in both contexts.
type querier interface {
	Query(ctx context.Context, sql string, args ...interface{}) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...interface{}) pgx.Row
	Exec(ctx context.Context, sql string, args ...interface{}) (pgconn.CommandTag, error)
}

// createSQL assigns the next id for the collection and inserts the record
// with that id stamped into the document, in a single statement. The counter
// row only ever moves forward, so ids are never reused even after deletes.
const createSQL = `
	WITH seq AS (
		INSERT INTO collection_ids (collection, next_id)
		VALUES ($1, 1)
		ON CONFLICT (collection)
		DO UPDATE SET next_id = collection_ids.next_id + 1
		RETURNING next_id
	)
	INSERT INTO records (collection, id, data)
	SELECT $1, seq.next_id, jsonb_set($2::jsonb, '{id}', to_jsonb(seq.next_id))
	FROM seq
	RETURNING id`

// upsertSQL overwrites the record with the given id, inserting it if absent,
// and bumps the id counter so a later create can never collide with an
// explicitly written id.
const upsertSQL = `
	WITH bump AS (
		INSERT INTO collection_ids (collection, next_id)
		VALUES ($1, $2)
		ON CONFLICT (collection)
		DO UPDATE SET next_id = GREATEST(collection_ids.next_id, $2::bigint)
	)
	INSERT INTO records (collection, id, data)
	VALUES ($1, $2, jsonb_set($3::jsonb, '{id}', to_jsonb($2::bigint)))
	ON CONFLICT (collection, id)
	DO UPDATE SET data = EXCLUDED.data, updated_at = NOW()`

// recordOps implements ports.RecordOps over any querier.
type recordOps struct {
	q querier
}

func (r recordOps) Create(ctx context.Context, collection string, data json.RawMessage) (int64, error) {
	var id int64
	err := r.q.QueryRow(ctx, createSQL, collection, data).Scan(&id)
	if err != nil {
		return 0, storageErr("create", collection, err)
	}
	return id, nil
}

func (r recordOps) Get(ctx context.Context, collection string, id int64) (json.RawMessage, error) {
	var data json.RawMessage
	err := r.q.QueryRow(ctx,
		`SELECT data FROM records WHERE collection = $1 AND id = $2`,
		collection, id,
	).Scan(&data)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, storageErr("get", collection, err)
	}
	return data, nil
}

func (r recordOps) List(ctx context.Context, collection string, params ports.ListParams) ([]json.RawMessage, error) {
	builder := psql.Select("data").
		From("records").
		Where(sq.Eq{"collection": collection}).
		OrderBy("id ASC")

	if params.Since != nil {
		builder = builder.Where(sq.GtOrEq{"created_at": *params.Since})
	}
	if params.Until != nil {
		builder = builder.Where(sq.Lt{"created_at": *params.Until})
	}

	query, args, err := builder.ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build list query: %w", err)
	}

	rows, err := r.q.Query(ctx, query, args...)
	if err != nil {
		return nil, storageErr("list", collection, err)
	}
	defer rows.Close()

	var results []json.RawMessage
	for rows.Next() {
		var data json.RawMessage
		if err := rows.Scan(&data); err != nil {
			return nil, storageErr("list", collection, err)
		}
		results = append(results, data)
	}
	if err := rows.Err(); err != nil {
		return nil, storageErr("list", collection, err)
	}

	return results, nil
}

func (r recordOps) Update(ctx context.Context, collection string, id int64, data json.RawMessage) error {
	if _, err := r.q.Exec(ctx, upsertSQL, collection, id, data); err != nil {
		return storageErr("update", collection, err)
	}
	return nil
}

// Delete removes the record. A missing id is not an error.
func (r recordOps) Delete(ctx context.Context, collection string, id int64) error {
	if _, err := r.q.Exec(ctx,
		`DELETE FROM records WHERE collection = $1 AND id = $2`,
		collection, id,
	); err != nil {
		return storageErr("delete", collection, err)
	}
	return nil
}

// RecordStore is the PostgreSQL implementation of ports.RecordStore. All
// collections share one table keyed by (collection, id), with per-collection
// id counters in collection_ids.
type RecordStore struct {
	recordOps
	db     *Database
	logger *slog.Logger
}

// Compile-time checks
var (
	_ ports.RecordStore = (*RecordStore)(nil)
	_ ports.RecordOps   = recordOps{}
)

// NewRecordStore creates a record store backed by the given database.
func NewRecordStore(database *Database, logger *slog.Logger) *RecordStore {
	return &RecordStore{
		recordOps: recordOps{q: database},
		db:        database,
		logger:    logger.With(slog.String("repository", "record_store")),
	}
}

// RunAtomic executes fn with record operations bound to a single
// transaction. Any error from fn rolls back everything fn wrote.
func (s *RecordStore) RunAtomic(ctx context.Context, fn func(ops ports.RecordOps) error) error {
	return s.db.Transaction(ctx, func(tx pgx.Tx) error {
		return fn(recordOps{q: tx})
	})
}

// DeleteOlderThan prunes records created before cutoff and returns the
// number of rows removed.
func (s *RecordStore) DeleteOlderThan(ctx context.Context, collection string, cutoff time.Time) (int64, error) {
	tag, err := s.db.Exec(ctx,
		`DELETE FROM records WHERE collection = $1 AND created_at < $2`,
		collection, cutoff,
	)
	if err != nil {
		return 0, storageErr("delete_older_than", collection, err)
	}

	removed := tag.RowsAffected()
	if removed > 0 {
		s.logger.Info("pruned old records",
			slog.String("collection", collection),
			slog.Int64("removed", removed),
		)
	}
	return removed, nil
}

func storageErr(op, collection string, err error) error {
	return &domain.StorageError{Op: op, Collection: collection, Err: err}
}
