package database

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/xavierca1/imob-crm/internal/entity"
)

type TimelineRepository struct {
	DB *sql.DB
}

func NewTimelineRepository(db *sql.DB) *TimelineRepository {
	return &TimelineRepository{DB: db}
}

func (r *TimelineRepository) Insert(ctx context.Context, event *entity.TimelineEvent) error {
	query := `
		INSERT INTO lead_timeline (id, lead_id, type, description, created_at)
		VALUES ($1, $2, $3, $4, $5)
	`

	_, err := r.DB.ExecContext(ctx, query,
		event.ID,
		event.LeadID,
		string(event.Type),
		event.Description,
		event.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("falha ao gravar evento do lead %s: %w", event.LeadID, err)
	}
	return nil
}

func (r *TimelineRepository) ListByLead(ctx context.Context, leadID string) ([]entity.TimelineEvent, error) {
	query := `
		SELECT id, lead_id, type, description, created_at
		FROM lead_timeline
		WHERE lead_id = $1
		ORDER BY created_at DESC, id
	`

	rows, err := r.DB.QueryContext(ctx, query, leadID)
	if err != nil {
		return nil, fmt.Errorf("falha ao listar timeline: %w", err)
	}
	defer rows.Close()

	events := []entity.TimelineEvent{}
	for rows.Next() {
		var e entity.TimelineEvent
		if err := rows.Scan(&e.ID, &e.LeadID, &e.Type, &e.Description, &e.CreatedAt); err != nil {
			return nil, fmt.Errorf("falha ao ler evento: %w", err)
		}
		events = append(events, e)
	}
	return events, rows.Err()
}
