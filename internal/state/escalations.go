package state

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/ShayCichocki/orgmux/pkg/models"
)

// SaveEscalation inserts or replaces an escalation record.
func (db *DB) SaveEscalation(record *models.EscalationRecord) error {
	db.mu.Lock()
	defer db.mu.Unlock()

	var resolvedAt any
	if record.ResolvedAt != nil {
		resolvedAt = formatTime(*record.ResolvedAt)
	}

	_, err := db.conn.Exec(`
		INSERT OR REPLACE INTO escalations
			(id, task_id, role, reason, recommendation, priority, status, decision, created_at, resolved_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`,
		record.ID, record.TaskID, record.Role, record.Reason, record.Recommendation,
		string(record.Priority), string(record.Status), record.Decision,
		formatTime(record.CreatedAt), resolvedAt,
	)
	if err != nil {
		return fmt.Errorf("save escalation %s: %w", record.ID, err)
	}
	return nil
}

// ResolveEscalationRecord marks a pending record resolved with the decision.
// Already-resolved and unknown records are left untouched.
func (db *DB) ResolveEscalationRecord(id, decision string, resolvedAt time.Time) error {
	db.mu.Lock()
	defer db.mu.Unlock()

	_, err := db.conn.Exec(`
		UPDATE escalations SET status = 'resolved', decision = ?, resolved_at = ?
		WHERE id = ? AND status = 'pending'
	`, decision, formatTime(resolvedAt), id)
	if err != nil {
		return fmt.Errorf("resolve escalation %s: %w", id, err)
	}
	return nil
}

// PendingEscalations returns unresolved records, oldest first.
func (db *DB) PendingEscalations() ([]*models.EscalationRecord, error) {
	return db.queryEscalations(`
		SELECT id, task_id, role, reason, recommendation, priority, status, decision, created_at, resolved_at
		FROM escalations WHERE status = 'pending' ORDER BY created_at
	`)
}

// ListEscalations returns all records, newest first.
func (db *DB) ListEscalations() ([]*models.EscalationRecord, error) {
	return db.queryEscalations(`
		SELECT id, task_id, role, reason, recommendation, priority, status, decision, created_at, resolved_at
		FROM escalations ORDER BY created_at DESC
	`)
}

func (db *DB) queryEscalations(query string) ([]*models.EscalationRecord, error) {
	db.mu.RLock()
	defer db.mu.RUnlock()

	rows, err := db.conn.Query(query)
	if err != nil {
		return nil, fmt.Errorf("query escalations: %w", err)
	}
	defer rows.Close()

	var records []*models.EscalationRecord
	for rows.Next() {
		var record models.EscalationRecord
		var priority, status, createdAt string
		var taskID, recommendation, decision, resolvedAt sql.NullString

		if err := rows.Scan(
			&record.ID, &taskID, &record.Role, &record.Reason, &recommendation,
			&priority, &status, &decision, &createdAt, &resolvedAt,
		); err != nil {
			return nil, fmt.Errorf("scan escalation: %w", err)
		}

		record.TaskID = taskID.String
		record.Recommendation = recommendation.String
		record.Decision = decision.String
		record.Priority = models.Priority(priority)
		record.Status = models.EscalationStatus(status)
		record.ResolvedAt = parseNullableTime(resolvedAt)
		if t, err := parseTime(createdAt); err == nil {
			record.CreatedAt = t
		}
		records = append(records, &record)
	}
	return records, rows.Err()
}
