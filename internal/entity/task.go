package entity

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
)

type Task struct {
	ID        string    `json:"id"`
	LeadID    string    `json:"lead_id"`
	Title     string    `json:"title"`
	DueDate   time.Time `json:"due_date"`
	Completed bool      `json:"completed"`
	CreatedAt time.Time `json:"created_at"`
}

func NewTask(leadID, title string, dueDate time.Time) (*Task, error) {
	title = strings.TrimSpace(title)
	if leadID == "" {
		return nil, &ValidationError{Field: "lead_id", Message: "is required"}
	}
	if title == "" {
		return nil, &ValidationError{Field: "title", Message: "is required"}
	}
	if dueDate.IsZero() {
		return nil, &ValidationError{Field: "due_date", Message: "is required"}
	}

	return &Task{
		ID:        uuid.New().String(),
		LeadID:    leadID,
		Title:     title,
		DueDate:   dueDate,
		CreatedAt: time.Now(),
	}, nil
}

type TaskRepositoryInterface interface {
	Create(ctx context.Context, task *Task) error
	ListByLead(ctx context.Context, leadID string) ([]Task, error)
	FindByID(ctx context.Context, id string) (*Task, error)
	SetCompleted(ctx context.Context, id string, completed bool) error
	// ClaimOverdue marca como lembradas as tarefas vencidas e devolve as que acabou de marcar.
	ClaimOverdue(ctx context.Context, now time.Time) ([]Task, error)
}
