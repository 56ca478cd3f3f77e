package docstore

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Postgres stores each document as a JSONB row keyed by (collection, id).
// Transactions run at serializable isolation; serialization failures are
// retried so callers see the same conflict-retry contract as Memory.
type Postgres struct {
	pool *pgxpool.Pool
}

func NewPool(ctx context.Context, databaseURL string) (*pgxpool.Pool, error) {
	pool, err := pgxpool.New(ctx, databaseURL)
	if err != nil {
		return nil, err
	}
	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := pool.Ping(pingCtx); err != nil {
		pool.Close()
		return nil, err
	}
	return pool, nil
}

func NewPostgres(pool *pgxpool.Pool) *Postgres {
	return &Postgres{pool: pool}
}

func (p *Postgres) EnsureSchema(ctx context.Context) error {
	_, err := p.pool.Exec(ctx, `
		CREATE TABLE IF NOT EXISTS documents (
			collection text NOT NULL,
			id text NOT NULL,
			data jsonb NOT NULL,
			seq bigserial,
			PRIMARY KEY (collection, id)
		)
	`)
	if err != nil {
		return storeError(err)
	}
	return nil
}

func (p *Postgres) Get(ctx context.Context, collection, id string) (Document, error) {
	var data []byte
	row := p.pool.QueryRow(ctx, `SELECT data FROM documents WHERE collection = $1 AND id = $2`, collection, id)
	if err := row.Scan(&data); err != nil {
		return Document{}, storeError(err)
	}
	return Document{ID: id, Data: data}, nil
}

func (p *Postgres) List(ctx context.Context, collection string) ([]Document, error) {
	rows, err := p.pool.Query(ctx, `SELECT id, data FROM documents WHERE collection = $1 ORDER BY seq`, collection)
	if err != nil {
		return nil, storeError(err)
	}
	defer rows.Close()
	var docs []Document
	for rows.Next() {
		var doc Document
		if err := rows.Scan(&doc.ID, &doc.Data); err != nil {
			return nil, storeError(err)
		}
		docs = append(docs, doc)
	}
	if err := rows.Err(); err != nil {
		return nil, storeError(err)
	}
	return docs, nil
}

func (p *Postgres) Count(ctx context.Context, collection string) (int64, error) {
	var count int64
	row := p.pool.QueryRow(ctx, `SELECT count(*) FROM documents WHERE collection = $1`, collection)
	if err := row.Scan(&count); err != nil {
		return 0, storeError(err)
	}
	return count, nil
}

func (p *Postgres) Insert(ctx context.Context, collection string, v any) (string, error) {
	data, err := marshalDoc(v)
	if err != nil {
		return "", err
	}
	id := uuid.NewString()
	_, err = p.pool.Exec(ctx, `INSERT INTO documents (collection, id, data) VALUES ($1, $2, $3)`, collection, id, data)
	if err != nil {
		return "", storeError(err)
	}
	return id, nil
}

func (p *Postgres) Set(ctx context.Context, collection, id string, v any) error {
	data, err := marshalDoc(v)
	if err != nil {
		return err
	}
	_, err = p.pool.Exec(ctx, `
		INSERT INTO documents (collection, id, data) VALUES ($1, $2, $3)
		ON CONFLICT (collection, id) DO UPDATE SET data = EXCLUDED.data
	`, collection, id, data)
	if err != nil {
		return storeError(err)
	}
	return nil
}

func (p *Postgres) Delete(ctx context.Context, collection, id string) error {
	_, err := p.pool.Exec(ctx, `DELETE FROM documents WHERE collection = $1 AND id = $2`, collection, id)
	if err != nil {
		return storeError(err)
	}
	return nil
}

func (p *Postgres) RunTransaction(ctx context.Context, fn func(ctx context.Context, tx Tx) error) error {
	for attempt := 0; attempt < maxTxAttempts; attempt++ {
		if err := ctx.Err(); err != nil {
			return err
		}
		err := p.runOnce(ctx, fn)
		if err == nil {
			return nil
		}
		if !isSerializationFailure(err) {
			return err
		}
	}
	return ErrConflict
}

func (p *Postgres) runOnce(ctx context.Context, fn func(ctx context.Context, tx Tx) error) error {
	tx, err := p.pool.BeginTx(ctx, pgx.TxOptions{IsoLevel: pgx.Serializable})
	if err != nil {
		return storeError(err)
	}
	if err := fn(ctx, &pgTx{tx: tx}); err != nil {
		_ = tx.Rollback(ctx)
		return err
	}
	if err := tx.Commit(ctx); err != nil {
		if isSerializationFailure(err) {
			return err
		}
		return storeError(err)
	}
	return nil
}

func (p *Postgres) Close() {
	p.pool.Close()
}

type pgTx struct {
	tx pgx.Tx
}

func (t *pgTx) Get(ctx context.Context, collection, id string) (Document, error) {
	var data []byte
	row := t.tx.QueryRow(ctx, `SELECT data FROM documents WHERE collection = $1 AND id = $2`, collection, id)
	if err := row.Scan(&data); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Document{}, ErrNotFound
		}
		return Document{}, err
	}
	return Document{ID: id, Data: data}, nil
}

func (t *pgTx) Count(ctx context.Context, collection string) (int64, error) {
	var count int64
	row := t.tx.QueryRow(ctx, `SELECT count(*) FROM documents WHERE collection = $1`, collection)
	if err := row.Scan(&count); err != nil {
		return 0, err
	}
	return count, nil
}

func (t *pgTx) Insert(ctx context.Context, collection string, v any) (string, error) {
	data, err := marshalDoc(v)
	if err != nil {
		return "", err
	}
	id := uuid.NewString()
	_, err = t.tx.Exec(ctx, `INSERT INTO documents (collection, id, data) VALUES ($1, $2, $3)`, collection, id, data)
	if err != nil {
		return "", err
	}
	return id, nil
}

func (t *pgTx) Set(ctx context.Context, collection, id string, v any) error {
	data, err := marshalDoc(v)
	if err != nil {
		return err
	}
	_, err = t.tx.Exec(ctx, `
		INSERT INTO documents (collection, id, data) VALUES ($1, $2, $3)
		ON CONFLICT (collection, id) DO UPDATE SET data = EXCLUDED.data
	`, collection, id, data)
	return err
}

func isSerializationFailure(err error) bool {
	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) {
		return false
	}
	return pgErr.Code == "40001" || pgErr.Code == "40P01"
}

func storeError(err error) error {
	if errors.Is(err, pgx.ErrNoRows) {
		return ErrNotFound
	}
	return fmt.Errorf("%w: %v", ErrUnavailable, err)
}
