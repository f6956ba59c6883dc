package repositories

import (
	"github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/yigit/alumnihub/internal/db"
)

// psql is the shared statement builder using $n placeholders
var psql = squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)

// conn returns tx when the caller runs inside a transaction, the pool otherwise
func conn(pool *pgxpool.Pool, tx pgx.Tx) db.Querier {
	if tx != nil {
		return tx
	}
	return pool
}

// requireTx guards the row-locking reads that are only meaningful inside a transaction
func requireTx(tx pgx.Tx, op string) error {
	if tx == nil {
		return &missingTxError{op: op}
	}
	return nil
}

type missingTxError struct{ op string }

func (e *missingTxError) Error() string {
	return e.op + " requires a transaction"
}
