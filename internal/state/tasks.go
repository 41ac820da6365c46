package state

import (
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/ShayCichocki/orgmux/pkg/models"
)

// SaveTask inserts or replaces a task row.
func (db *DB) SaveTask(task *models.Task) error {
	db.mu.Lock()
	defer db.mu.Unlock()

	var dueDate any
	if task.DueDate != nil {
		dueDate = formatTime(*task.DueDate)
	}
	var completedAt any
	if task.CompletedAt != nil {
		completedAt = formatTime(*task.CompletedAt)
	}

	_, err := db.conn.Exec(`
		INSERT OR REPLACE INTO tasks
			(id, description, role, status, priority, score, due_date, blocked_by, retry_count, error, created_at, completed_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`,
		task.ID, task.Description, task.Role, string(task.Status), string(task.Priority),
		task.Score, dueDate, strings.Join(task.BlockedBy, ","), task.RetryCount,
		task.Error, formatTime(task.CreatedAt), completedAt,
	)
	if err != nil {
		return fmt.Errorf("save task %s: %w", task.ID, err)
	}
	return nil
}

// UpdateTaskStatus updates a task's lifecycle fields.
func (db *DB) UpdateTaskStatus(id string, status models.TaskStatus, score, retryCount int, taskErr string) error {
	db.mu.Lock()
	defer db.mu.Unlock()

	var completedAt any
	if status.Terminal() {
		completedAt = formatTime(time.Now())
	}

	_, err := db.conn.Exec(`
		UPDATE tasks SET status = ?, score = ?, retry_count = ?, error = ?, completed_at = COALESCE(?, completed_at)
		WHERE id = ?
	`, string(status), score, retryCount, taskErr, completedAt, id)
	if err != nil {
		return fmt.Errorf("update task %s status: %w", id, err)
	}
	return nil
}

// LoadPendingTasks returns tasks whose last saved status was pending or
// queued, for re-queueing on startup.
func (db *DB) LoadPendingTasks() ([]*models.Task, error) {
	db.mu.RLock()
	defer db.mu.RUnlock()

	rows, err := db.conn.Query(`
		SELECT id, description, role, status, priority, score, due_date, blocked_by, retry_count, error, created_at, completed_at
		FROM tasks
		WHERE status IN ('pending', 'queued')
		ORDER BY created_at
	`)
	if err != nil {
		return nil, fmt.Errorf("load pending tasks: %w", err)
	}
	defer rows.Close()

	var tasks []*models.Task
	for rows.Next() {
		task, err := scanTask(rows)
		if err != nil {
			return nil, err
		}
		tasks = append(tasks, task)
	}
	return tasks, rows.Err()
}

// TaskCounts returns the number of tasks per status.
func (db *DB) TaskCounts() (map[models.TaskStatus]int, error) {
	db.mu.RLock()
	defer db.mu.RUnlock()

	rows, err := db.conn.Query(`SELECT status, COUNT(*) FROM tasks GROUP BY status`)
	if err != nil {
		return nil, fmt.Errorf("count tasks: %w", err)
	}
	defer rows.Close()

	counts := make(map[models.TaskStatus]int)
	for rows.Next() {
		var status string
		var count int
		if err := rows.Scan(&status, &count); err != nil {
			return nil, fmt.Errorf("scan task count: %w", err)
		}
		counts[models.TaskStatus(status)] = count
	}
	return counts, rows.Err()
}

// scanTask builds a Task from the canonical column list.
func scanTask(rows *sql.Rows) (*models.Task, error) {
	var task models.Task
	var status, priority string
	var dueDate, blockedBy, taskErr, completedAt sql.NullString
	var createdAt string

	if err := rows.Scan(
		&task.ID, &task.Description, &task.Role, &status, &priority, &task.Score,
		&dueDate, &blockedBy, &task.RetryCount, &taskErr, &createdAt, &completedAt,
	); err != nil {
		return nil, fmt.Errorf("scan task: %w", err)
	}

	task.Status = models.TaskStatus(status)
	task.Priority = models.Priority(priority)
	task.DueDate = parseNullableTime(dueDate)
	task.CompletedAt = parseNullableTime(completedAt)
	if taskErr.Valid {
		task.Error = taskErr.String
	}
	if blockedBy.Valid && blockedBy.String != "" {
		task.BlockedBy = strings.Split(blockedBy.String, ",")
	}
	if t, err := parseTime(createdAt); err == nil {
		task.CreatedAt = t
	}
	return &task, nil
}
