package postgres

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/parkos/parklot/internal/domain/models"
)

// insertAudit writes one audit row inside the caller's transaction. Values
// are serialized to JSON; strings pass through as-is.
func insertAudit(ctx context.Context, q DBTX, operation, tableName, recordID string, oldValues, newValues any) error {
	query := `INSERT INTO audit_log (operation, table_name, record_id, old_values, new_values)
		VALUES ($1, $2, $3, $4, $5)`

	_, err := q.ExecContext(ctx, query, operation, tableName, recordID,
		auditValue(oldValues), auditValue(newValues))
	if err != nil {
		return fmt.Errorf("insert audit row: %w", err)
	}
	return nil
}

func auditValue(v any) string {
	switch val := v.(type) {
	case nil:
		return ""
	case string:
		return val
	default:
		b, err := json.Marshal(val)
		if err != nil {
			return ""
		}
		return string(b)
	}
}

// AuditTrail lists the audit rows for one record, oldest first.
func (s *Store) AuditTrail(ctx context.Context, tableName, recordID string) ([]models.AuditRecord, error) {
	query := `SELECT id, operation, table_name, record_id, old_values, new_values, created_at
		FROM audit_log WHERE table_name = $1 AND record_id = $2 ORDER BY id`

	rows, err := s.db.QueryContext(ctx, query, tableName, recordID)
	if err != nil {
		return nil, fmt.Errorf("query audit trail: %w", err)
	}
	defer rows.Close()

	var out []models.AuditRecord
	for rows.Next() {
		var r models.AuditRecord
		if err := rows.Scan(&r.ID, &r.Operation, &r.TableName, &r.RecordID, &r.OldValues, &r.NewValues, &r.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan audit row: %w", err)
		}
		out = append(out, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate audit rows: %w", err)
	}
	return out, nil
}
