package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/parkos/parklot/internal/domain/models"
)

// GetOperatorByUsername fetches an operator for login.
func (s *Store) GetOperatorByUsername(ctx context.Context, username string) (*models.Operator, error) {
	query := `SELECT id, username, password_hash, display_name, role
		FROM operators WHERE username = $1`

	var op models.Operator
	err := s.db.QueryRowContext(ctx, query, username).
		Scan(&op.ID, &op.Username, &op.PasswordHash, &op.DisplayName, &op.Role)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, models.ErrNotFound
		}
		return nil, fmt.Errorf("query operator: %w", err)
	}
	return &op, nil
}

// CreateOperator inserts a new operator account.
func (s *Store) CreateOperator(ctx context.Context, op *models.Operator) error {
	query := `INSERT INTO operators (id, username, password_hash, display_name, role)
		VALUES ($1, $2, $3, $4, $5)`

	_, err := s.db.ExecContext(ctx, query, op.ID, op.Username, op.PasswordHash, op.DisplayName, op.Role)
	if err != nil {
		return fmt.Errorf("insert operator: %w", err)
	}
	return nil
}

// CountOperators reports how many accounts exist, used to decide whether the
// bootstrap admin needs to be created.
func (s *Store) CountOperators(ctx context.Context) (int, error) {
	var n int
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM operators`).Scan(&n); err != nil {
		return 0, fmt.Errorf("count operators: %w", err)
	}
	return n, nil
}
