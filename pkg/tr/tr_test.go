package tr

import (
	"context"
	"testing"

	"github.com/DRSN-tech/catalog-api/pkg/e"
	"github.com/jackc/pgx/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeTx встраивает интерфейс, чтобы удовлетворить pgx.Tx без реального соединения.
type fakeTx struct {
	pgx.Tx
}

func TestTxFromCtx(t *testing.T) {
	t.Run("no transaction", func(t *testing.T) {
		tx, err := TxFromCtx(context.Background())
		assert.Nil(t, tx)
		assert.ErrorIs(t, err, e.ErrTransactionNotFound)
	})

	t.Run("transaction stored", func(t *testing.T) {
		want := &fakeTx{}
		ctx := WithTx(context.Background(), want)

		got, err := TxFromCtx(ctx)
		require.NoError(t, err)
		assert.Same(t, want, got)
	})

	t.Run("plain string key is not a transaction", func(t *testing.T) {
		//nolint:staticcheck
		ctx := context.WithValue(context.Background(), "tx", &fakeTx{})

		_, err := TxFromCtx(ctx)
		assert.ErrorIs(t, err, e.ErrTransactionNotFound)
	})
}
