package pgdb

import (
	"context"

	"github.com/DRSN-tech/catalog-api/pkg/e"
	"github.com/DRSN-tech/catalog-api/pkg/tr"
	transaction "github.com/avito-tech/go-transaction-manager/drivers/pgxv5/v2"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// SessionManager выдаёт на каждый вызов отдельное соединение из пула и транзакцию на нём.
type SessionManager struct {
	pool *pgxpool.Pool
}

func NewSessionManager(pool *pgxpool.Pool) *SessionManager {
	return &SessionManager{pool: pool}
}

// WithinSession выполняет fn внутри транзакции на выделенном соединении.
// Транзакция доступна репозиториям через tr.TxFromCtx.
func (s *SessionManager) WithinSession(ctx context.Context, fn func(ctx context.Context) error) error {
	const op = "SessionManager.WithinSession"

	conn, err := s.pool.Acquire(ctx)
	if err != nil {
		return e.Wrap(op, err)
	}
	defer conn.Release()

	txCtx, tx, err := transaction.NewTransaction(ctx, pgx.TxOptions{}, conn)
	if err != nil {
		return e.Wrap(op, err)
	}
	// При любой ошибке (включая панику в fn) транзакция откатывается до возврата соединения в пул
	defer func() {
		if tx.IsActive() {
			_ = tx.Rollback(context.WithoutCancel(txCtx))
		}
	}()

	pgxTx, ok := tx.Transaction().(pgx.Tx)
	if !ok {
		return e.Wrap(op, e.ErrTransactionNotFound)
	}

	if err = fn(tr.WithTx(txCtx, pgxTx)); err != nil {
		return err
	}

	if err = tx.Commit(txCtx); err != nil {
		return e.Wrap(op, err)
	}

	return nil
}
