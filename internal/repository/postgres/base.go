package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	apperrors "github.com/jwalitptl/clinic-directory/pkg/errors"
	"github.com/jwalitptl/clinic-directory/pkg/patch"
)

const (
	pqUniqueViolation   = "23505"
	pqUndefinedFunction = "42883"
)

// BaseRepository provides common functionality for all repositories
type BaseRepository struct {
	db *sqlx.DB
}

// NewBaseRepository creates a new base repository
func NewBaseRepository(db *sqlx.DB) BaseRepository {
	return BaseRepository{db: db}
}

// GetDB returns the database instance
func (r *BaseRepository) GetDB() *sqlx.DB {
	return r.db
}

// WithTx executes a function within a transaction
func (r *BaseRepository) WithTx(ctx context.Context, fn func(*sqlx.Tx) error) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}

	defer func() {
		if p := recover(); p != nil {
			tx.Rollback()
			panic(p)
		}
	}()

	if err := fn(tx); err != nil {
		tx.Rollback()
		return err
	}

	return tx.Commit()
}

// mapError translates driver errors into the application taxonomy.
func mapError(resource, op string, err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, sql.ErrNoRows) {
		return apperrors.NotFound(resource, err)
	}
	var pqErr *pq.Error
	if errors.As(err, &pqErr) && pqErr.Code == pqUniqueViolation {
		return apperrors.Conflict(resource+" already exists", err)
	}
	return fmt.Errorf("failed to %s %s: %w", op, resource, err)
}

func isUndefinedFunction(err error) bool {
	var pqErr *pq.Error
	return errors.As(err, &pqErr) && pqErr.Code == pqUndefinedFunction
}

// setClause renders patch columns as a SET list with placeholders starting at
// $first. JSON columns are cast to jsonb; Merge concatenates onto the stored
// object. Column names come from a fixed schema, never from the request.
func setClause(cols []patch.Column, first int) (string, []interface{}) {
	parts := make([]string, 0, len(cols))
	args := make([]interface{}, 0, len(cols))
	n := first

	for _, col := range cols {
		if col.Mode == patch.Clear {
			parts = append(parts, col.Name+" = NULL")
			continue
		}
		placeholder := fmt.Sprintf("$%d", n)
		n++
		args = append(args, col.Value)

		switch {
		case col.Kind == patch.JSON && col.Mode == patch.Merge:
			parts = append(parts, fmt.Sprintf("%s = COALESCE(%s, '{}'::jsonb) || %s::jsonb", col.Name, col.Name, placeholder))
		case col.Kind == patch.JSON:
			parts = append(parts, fmt.Sprintf("%s = %s::jsonb", col.Name, placeholder))
		default:
			parts = append(parts, fmt.Sprintf("%s = %s", col.Name, placeholder))
		}
	}
	return strings.Join(parts, ", "), args
}

func rowsAffected(res sql.Result, resource string) error {
	rows, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rows == 0 {
		return apperrors.NotFound(resource, nil)
	}
	return nil
}
