package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jhoicas/bodega-api/internal/application/ledger"
	"github.com/jhoicas/bodega-api/internal/application/workflow"
	"github.com/jhoicas/bodega-api/internal/domain/repository"
)

var (
	_ ledger.TxRunner   = (*TxRunner)(nil)
	_ workflow.TxRunner = (*TxRunner)(nil)
)

// TxRunner ejecuta callbacks dentro de una transacción PostgreSQL.
type TxRunner struct {
	pool *pgxpool.Pool
}

// NewTxRunner construye el runner con el pool.
func NewTxRunner(pool *pgxpool.Pool) *TxRunner {
	return &TxRunner{pool: pool}
}

// Run transacción con repos de stock y libro (un movimiento suelto o la reconciliación).
func (r *TxRunner) Run(ctx context.Context, fn func(
	stockRepo repository.StockLevelRepository,
	ledgerRepo repository.LedgerRepository,
) error) error {
	return r.inTx(ctx, func(tx pgx.Tx) error {
		return fn(NewStockLevelRepository(tx), NewLedgerRepository(tx))
	})
}

// RunDocument transacción con repos de documentos, stock y libro (operaciones de documentos,
// incluida la confirmación completa).
func (r *TxRunner) RunDocument(ctx context.Context, fn func(
	docRepo repository.DocumentRepository,
	stockRepo repository.StockLevelRepository,
	ledgerRepo repository.LedgerRepository,
) error) error {
	return r.inTx(ctx, func(tx pgx.Tx) error {
		return fn(NewDocumentRepository(tx), NewStockLevelRepository(tx), NewLedgerRepository(tx))
	})
}

// inTx hace Commit si fn no falla; en cualquier otro caso Rollback.
func (r *TxRunner) inTx(ctx context.Context, fn func(tx pgx.Tx) error) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	if err := fn(tx); err != nil {
		return err
	}
	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	return nil
}
