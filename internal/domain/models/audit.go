package models

import "time"

// Audit operations.
const (
	AuditOpInsert = "INSERT"
	AuditOpUpdate = "UPDATE"
	AuditOpDelete = "DELETE"
)

// AuditRecord tracks a mutation to a business row. Entries are never deleted,
// so the audit log is the only place exits and payment changes leave a trail.
type AuditRecord struct {
	ID        int64     `json:"id"`
	Operation string    `json:"operation"`
	TableName string    `json:"table_name"`
	RecordID  string    `json:"record_id"`
	OldValues string    `json:"old_values,omitempty"`
	NewValues string    `json:"new_values,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}
