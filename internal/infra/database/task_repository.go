package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/xavierca1/imob-crm/internal/entity"
)

type TaskRepository struct {
	DB *sql.DB
}

func NewTaskRepository(db *sql.DB) *TaskRepository {
	return &TaskRepository{DB: db}
}

func (r *TaskRepository) Create(ctx context.Context, task *entity.Task) error {
	query := `
		INSERT INTO lead_tasks (id, lead_id, title, due_date, completed, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`
	_, err := r.DB.ExecContext(ctx, query,
		task.ID, task.LeadID, task.Title, task.DueDate, task.Completed, task.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("falha ao criar tarefa: %w", err)
	}
	return nil
}

func (r *TaskRepository) ListByLead(ctx context.Context, leadID string) ([]entity.Task, error) {
	query := `
		SELECT id, lead_id, title, due_date, completed, created_at
		FROM lead_tasks
		WHERE lead_id = $1
		ORDER BY completed, due_date, id
	`
	return r.query(ctx, query, leadID)
}

func (r *TaskRepository) FindByID(ctx context.Context, id string) (*entity.Task, error) {
	query := `
		SELECT id, lead_id, title, due_date, completed, created_at
		FROM lead_tasks
		WHERE id = $1
	`
	var t entity.Task
	err := r.DB.QueryRowContext(ctx, query, id).Scan(&t.ID, &t.LeadID, &t.Title, &t.DueDate, &t.Completed, &t.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, &entity.NotFoundError{Resource: "tarefa", ID: id}
	}
	if err != nil {
		return nil, fmt.Errorf("falha ao buscar tarefa: %w", err)
	}
	return &t, nil
}

func (r *TaskRepository) SetCompleted(ctx context.Context, id string, completed bool) error {
	res, err := r.DB.ExecContext(ctx, `UPDATE lead_tasks SET completed = $2 WHERE id = $1`, id, completed)
	if err != nil {
		return fmt.Errorf("falha ao atualizar tarefa: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return &entity.NotFoundError{Resource: "tarefa", ID: id}
	}
	return nil
}

// ClaimOverdue marca reminded_at e devolve só as linhas marcadas nesta chamada,
// então duas instâncias do worker nunca lembram a mesma tarefa.
func (r *TaskRepository) ClaimOverdue(ctx context.Context, now time.Time) ([]entity.Task, error) {
	query := `
		UPDATE lead_tasks SET reminded_at = $1
		WHERE completed = FALSE
		  AND reminded_at IS NULL
		  AND due_date < $1
		RETURNING id, lead_id, title, due_date, completed, created_at
	`
	return r.query(ctx, query, now)
}

func (r *TaskRepository) query(ctx context.Context, query string, args ...any) ([]entity.Task, error) {
	rows, err := r.DB.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("falha ao consultar tarefas: %w", err)
	}
	defer rows.Close()

	tasks := []entity.Task{}
	for rows.Next() {
		var t entity.Task
		if err := rows.Scan(&t.ID, &t.LeadID, &t.Title, &t.DueDate, &t.Completed, &t.CreatedAt); err != nil {
			return nil, fmt.Errorf("falha ao ler tarefa: %w", err)
		}
		tasks = append(tasks, t)
	}
	return tasks, rows.Err()
}
