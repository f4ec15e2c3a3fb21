package repo

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

// DBTX é o que as consultas precisam: pool ou transação.
type DBTX interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// Queries agrupa o acesso ao Postgres.
type Queries struct {
	db   DBTX
	pool *pgxpool.Pool
}

// New cria as consultas sobre o pool.
func New(pool *pgxpool.Pool) *Queries {
	return &Queries{db: pool, pool: pool}
}

// WithTx devolve consultas que rodam dentro de tx.
func (q *Queries) WithTx(tx pgx.Tx) *Queries {
	return &Queries{db: tx, pool: q.pool}
}

// Ping confirma que o banco responde.
func (q *Queries) Ping(ctx context.Context) error {
	return q.pool.Ping(ctx)
}
