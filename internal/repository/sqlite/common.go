package sqlite

import (
	"context"
	"database/sql"
	stderrors "errors"

	"taskdeck/internal/errors"
)

// Querier is satisfied by *sql.DB and *sql.Tx.
type Querier interface {
	QueryRowContext(ctx context.Context, query string, args ...interface{}) *sql.Row
	QueryContext(ctx context.Context, query string, args ...interface{}) (*sql.Rows, error)
	ExecContext(ctx context.Context, query string, args ...interface{}) (sql.Result, error)
}

// QuerySingle scans one row. A missing row is a not-found error for
// entityType/id; anything else is a database error.
func QuerySingle[T any](ctx context.Context, q Querier, query string, scan func(Scanner) (*T, error), entityType, id string, args ...interface{}) (*T, error) {
	result, err := scan(q.QueryRowContext(ctx, query, args...))
	switch {
	case stderrors.Is(err, sql.ErrNoRows):
		return nil, errors.NewNotFoundError(entityType, id)
	case err != nil:
		return nil, errors.NewDatabaseError("scan "+entityType, err)
	}
	return result, nil
}

func QueryMultiple[T any](ctx context.Context, q Querier, query string, scan func(Rows) ([]*T, error), entityType string, args ...interface{}) ([]*T, error) {
	rows, err := q.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, errors.NewDatabaseError("query "+entityType, err)
	}
	defer rows.Close()

	results, err := scan(rows)
	if err != nil {
		return nil, errors.NewDatabaseError("scan "+entityType, err)
	}
	return results, nil
}

func Execute(ctx context.Context, q Querier, operation, query string, args ...interface{}) error {
	if _, err := q.ExecContext(ctx, query, args...); err != nil {
		return errors.NewDatabaseError(operation, err)
	}
	return nil
}
