package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/mearah/craftbom/internal/domain"
	"github.com/mearah/craftbom/internal/logger"
)

// Postgres error codes relevant to the store invariants
const (
	pgCodeUniqueViolation     = "23505"
	pgCodeForeignKeyViolation = "23503"
	pgCodeCheckViolation      = "23514"
)

// SafeRollback rolls back a transaction and logs any error that isn't ErrTxClosed
func SafeRollback(ctx context.Context, tx pgx.Tx) {
	if err := tx.Rollback(ctx); err != nil && !errors.Is(err, pgx.ErrTxClosed) {
		logger.FromContext(ctx).Error("Failed to rollback transaction", "error", err)
	}
}

// mapConstraintError converts Postgres constraint violations into the domain
// integrity error so callers can errors.Is against a single sentinel.
func mapConstraintError(err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case pgCodeUniqueViolation:
			return fmt.Errorf("%w: %s", domain.ErrIntegrityViolation, domain.ErrMsgDuplicateName)
		case pgCodeForeignKeyViolation:
			return fmt.Errorf("%w: referenced item does not exist", domain.ErrIntegrityViolation)
		case pgCodeCheckViolation:
			return fmt.Errorf("%w: %s", domain.ErrIntegrityViolation, pgErr.ConstraintName)
		}
	}
	return err
}

// scanItem scans one items row in column order (kind, id, name,
// output_quantity, description, unit_cost).
func scanItem(row pgx.Row) (*domain.Item, error) {
	var item domain.Item
	var description *string
	if err := row.Scan(&item.Kind, &item.ID, &item.Name, &item.OutputQuantity, &description, &item.UnitCost); err != nil {
		return nil, err
	}
	if description != nil {
		item.Description = *description
	}
	return &item, nil
}
