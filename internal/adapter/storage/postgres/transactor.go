package postgres

import (
	"context"

	"github.com/jackc/pgx/v5"
)

// ledgerTxOptions keeps ledger writes at READ COMMITTED. The conditional
// debit and the settle CAS re-check their WHERE clause after a row lock wait,
// which SERIALIZABLE would turn into a retryable error instead.
var ledgerTxOptions = pgx.TxOptions{
	IsoLevel:   pgx.ReadCommitted,
	AccessMode: pgx.ReadWrite,
}

// Transactor implements ports.DBTransactor on a Pool.
type Transactor struct {
	pool Pool
}

func NewTransactor(pool Pool) *Transactor {
	return &Transactor{pool: pool}
}

// Begin opens a read-write transaction for one ledger or application unit of work.
func (t *Transactor) Begin(ctx context.Context) (pgx.Tx, error) {
	return t.pool.BeginTx(ctx, ledgerTxOptions)
}
