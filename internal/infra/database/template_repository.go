package database

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/xavierca1/imob-crm/internal/entity"
)

type TemplateRepository struct {
	DB *sql.DB
}

func NewTemplateRepository(db *sql.DB) *TemplateRepository {
	return &TemplateRepository{DB: db}
}

func (r *TemplateRepository) ListActive(ctx context.Context) ([]entity.MessageTemplate, error) {
	query := `
		SELECT id, title, content, active
		FROM message_templates
		WHERE active = TRUE
		ORDER BY title, id
	`

	rows, err := r.DB.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("falha ao listar templates: %w", err)
	}
	defer rows.Close()

	templates := []entity.MessageTemplate{}
	for rows.Next() {
		var t entity.MessageTemplate
		if err := rows.Scan(&t.ID, &t.Title, &t.Content, &t.Active); err != nil {
			return nil, fmt.Errorf("falha ao ler template: %w", err)
		}
		templates = append(templates, t)
	}
	return templates, rows.Err()
}
