package repository

import (
	"context"
	"database/sql"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/iliyamo/task-management/internal/model"
)

const taskColumns = "id,title,description,status,priority,due_date,assigned_to_id,created_by_id,created_at,updated_at"

// TaskQuery defines filters and pagination for listing tasks. Zero-value
// fields do not filter; Page and PageSize are normalized by the caller.
type TaskQuery struct {
	Status       string
	Priority     string
	AssignedToID string
	Page         int
	PageSize     int
}

// TaskRepo persists tasks.
type TaskRepo struct{ DB *sql.DB }

func NewTaskRepo(db *sql.DB) *TaskRepo { return &TaskRepo{DB: db} }

// Create inserts a task and fills in the generated ID and timestamps.
func (r *TaskRepo) Create(ctx context.Context, t *model.Task) error {
	if t.ID == "" {
		t.ID = uuid.NewString()
	}
	if t.Status == "" {
		t.Status = model.StatusPending
	}
	if t.Priority == "" {
		t.Priority = model.PriorityMedium
	}
	now := time.Now().UTC().Truncate(time.Second)
	_, err := r.DB.ExecContext(ctx,
		"INSERT INTO tasks (id, title, description, status, priority, due_date, assigned_to_id, created_by_id, created_at, updated_at) VALUES (?,?,?,?,?,?,?,?,?,?)",
		t.ID, t.Title, t.Description, t.Status, t.Priority,
		nullTime(t.DueDate), nullStr(t.AssignedToID), t.CreatedByID, now, now)
	if err != nil {
		return err
	}
	t.CreatedAt = now
	t.UpdatedAt = now
	return nil
}

// GetByID fetches a task by id. A missing row is reported as ErrTaskNotFound.
func (r *TaskRepo) GetByID(ctx context.Context, id string) (model.Task, error) {
	row := r.DB.QueryRowContext(ctx,
		"SELECT "+taskColumns+" FROM tasks WHERE id=? LIMIT 1", id)
	t, err := scanTask(row)
	if err == sql.ErrNoRows {
		return model.Task{}, ErrTaskNotFound
	}
	return t, err
}

// List returns one page of tasks matching the query plus the total count of
// matches, ordered by creation time descending. Filters combine with AND.
func (r *TaskRepo) List(ctx context.Context, q TaskQuery) ([]model.Task, int64, error) {
	where := []string{}
	args := []any{}

	if q.Status != "" {
		where = append(where, "status = ?")
		args = append(args, q.Status)
	}
	if q.Priority != "" {
		where = append(where, "priority = ?")
		args = append(args, q.Priority)
	}
	if q.AssignedToID != "" {
		where = append(where, "assigned_to_id = ?")
		args = append(args, q.AssignedToID)
	}

	cond := "1=1"
	if len(where) > 0 {
		cond = strings.Join(where, " AND ")
	}

	var total int64
	if err := r.DB.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM tasks WHERE "+cond, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	limit := q.PageSize
	offset := (q.Page - 1) * q.PageSize

	dataSQL := "SELECT " + taskColumns + " FROM tasks WHERE " + cond +
		" ORDER BY created_at DESC LIMIT ? OFFSET ?"
	argsData := append(append([]any{}, args...), limit, offset)

	rows, err := r.DB.QueryContext(ctx, dataSQL, argsData...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	out := make([]model.Task, 0, limit)
	for rows.Next() {
		t, err := scanTask(rows)
		if err != nil {
			return nil, 0, err
		}
		out = append(out, t)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, err
	}
	return out, total, nil
}

// ListByAssignee returns every task assigned to the given user, newest first.
func (r *TaskRepo) ListByAssignee(ctx context.Context, userID string) ([]model.Task, error) {
	rows, err := r.DB.QueryContext(ctx,
		"SELECT "+taskColumns+" FROM tasks WHERE assigned_to_id=? ORDER BY created_at DESC",
		userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []model.Task{}
	for rows.Next() {
		t, err := scanTask(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, t)
	}
	return out, rows.Err()
}

// Update rewrites the mutable columns of an existing task.
func (r *TaskRepo) Update(ctx context.Context, t *model.Task) error {
	now := time.Now().UTC().Truncate(time.Second)
	_, err := r.DB.ExecContext(ctx,
		"UPDATE tasks SET title=?, description=?, status=?, priority=?, due_date=?, assigned_to_id=?, updated_at=? WHERE id=?",
		t.Title, t.Description, t.Status, t.Priority,
		nullTime(t.DueDate), nullStr(t.AssignedToID), now, t.ID)
	if err != nil {
		return err
	}
	t.UpdatedAt = now
	return nil
}

// Delete removes a task. Deleting a missing task reports ErrTaskNotFound.
func (r *TaskRepo) Delete(ctx context.Context, id string) error {
	res, err := r.DB.ExecContext(ctx, "DELETE FROM tasks WHERE id=?", id)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrTaskNotFound
	}
	return nil
}

// Assign points a task's assigned_to_id at the given user. Existence of both
// the task and the user is checked by the handler beforehand, so zero
// affected rows (same assignee twice) is not an error.
func (r *TaskRepo) Assign(ctx context.Context, taskID, userID string) error {
	_, err := r.DB.ExecContext(ctx,
		"UPDATE tasks SET assigned_to_id=?, updated_at=? WHERE id=?",
		userID, time.Now().UTC().Truncate(time.Second), taskID)
	return err
}

func scanTask(row rowScanner) (model.Task, error) {
	var (
		t        model.Task
		due      sql.NullTime
		assigned sql.NullString
	)
	err := row.Scan(&t.ID, &t.Title, &t.Description, &t.Status, &t.Priority,
		&due, &assigned, &t.CreatedByID, &t.CreatedAt, &t.UpdatedAt)
	if err != nil {
		return model.Task{}, err
	}
	if due.Valid {
		d := due.Time
		t.DueDate = &d
	}
	if assigned.Valid {
		a := assigned.String
		t.AssignedToID = &a
	}
	return t, nil
}

func nullTime(t *time.Time) sql.NullTime {
	if t == nil {
		return sql.NullTime{}
	}
	return sql.NullTime{Time: *t, Valid: true}
}

func nullStr(s *string) sql.NullString {
	if s == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: *s, Valid: true}
}
