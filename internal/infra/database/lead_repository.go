package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/xavierca1/imob-crm/internal/entity"
)

type LeadRepository struct {
	DB *sql.DB
}

func NewLeadRepository(db *sql.DB) *LeadRepository {
	return &LeadRepository{DB: db}
}

const leadColumns = `
		l.id, l.name, l.email, l.phone, l.status,
		l.property_id, l.value, l.probability, l.deal_value, l.assigned_agent_id,
		l.created_at, l.updated_at,
		p.id, p.title, p.price, a.name
	FROM leads l
	LEFT JOIN properties p ON p.id = l.property_id
	LEFT JOIN profiles a ON a.id = p.agent_id`

func (r *LeadRepository) Create(ctx context.Context, lead *entity.Lead) error {
	query := `
		INSERT INTO leads (
			id, name, email, phone, status,
			property_id, value, probability, deal_value, assigned_agent_id,
			created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
	`

	_, err := r.DB.ExecContext(ctx, query,
		lead.ID,
		lead.Name,
		nullString(lead.Email),
		nullString(lead.Phone),
		string(lead.Status),
		lead.PropertyID,
		lead.Value,
		lead.Probability,
		lead.DealValue,
		lead.AssignedAgentID,
		lead.CreatedAt,
		lead.UpdatedAt,
	)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return &entity.ValidationError{Field: "id", Message: "lead already exists"}
		}
		log.Printf("❌ Erro crítico no banco ao criar lead: %v", err)
		return fmt.Errorf("falha ao criar lead: %w", err)
	}
	return nil
}

// List devolve os leads do filtro, mais novos primeiro, já com o resumo do imóvel.
func (r *LeadRepository) List(ctx context.Context, filter entity.LeadFilter) ([]entity.Lead, error) {
	query := `SELECT ` + leadColumns
	var args []any
	if filter.AssignedAgentID != "" {
		query += ` WHERE l.assigned_agent_id = $1`
		args = append(args, filter.AssignedAgentID)
	}
	query += ` ORDER BY l.created_at DESC, l.id`

	rows, err := r.DB.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("falha ao listar leads: %w", err)
	}
	defer rows.Close()

	leads := []entity.Lead{}
	for rows.Next() {
		lead, err := scanLead(rows)
		if err != nil {
			return nil, err
		}
		leads = append(leads, *lead)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("falha ao ler leads: %w", err)
	}
	return leads, nil
}

func (r *LeadRepository) FindByID(ctx context.Context, id string) (*entity.Lead, error) {
	query := `SELECT ` + leadColumns + ` WHERE l.id = $1`

	lead, err := scanLead(r.DB.QueryRowContext(ctx, query, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, &entity.NotFoundError{Resource: "lead", ID: id}
	}
	return lead, err
}

// Update grava o estado completo do lead; é o lado remoto das mutações otimistas.
func (r *LeadRepository) Update(ctx context.Context, lead *entity.Lead) error {
	query := `
		UPDATE leads SET
			status = $2,
			value = $3,
			probability = $4,
			deal_value = $5,
			assigned_agent_id = $6,
			updated_at = $7
		WHERE id = $1
	`

	res, err := r.DB.ExecContext(ctx, query,
		lead.ID,
		string(lead.Status),
		lead.Value,
		lead.Probability,
		lead.DealValue,
		lead.AssignedAgentID,
		lead.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("falha ao atualizar lead %s: %w", lead.ID, err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return &entity.NotFoundError{Resource: "lead", ID: lead.ID}
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanLead(row rowScanner) (*entity.Lead, error) {
	var (
		lead                         entity.Lead
		email, phone, status         sql.NullString
		propertyID, agentID          sql.NullString
		value, dealValue             sql.NullFloat64
		propID, propTitle, agentName sql.NullString
		propPrice                    sql.NullFloat64
	)

	err := row.Scan(
		&lead.ID, &lead.Name, &email, &phone, &status,
		&propertyID, &value, &lead.Probability, &dealValue, &agentID,
		&lead.CreatedAt, &lead.UpdatedAt,
		&propID, &propTitle, &propPrice, &agentName,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("falha ao ler lead: %w", err)
	}

	lead.Email = email.String
	lead.Phone = phone.String
	// Linhas antigas guardam o rótulo em português.
	lead.Status, err = entity.ParseLeadStatus(status.String)
	if err != nil {
		log.Printf("⚠️ Lead %s com status desconhecido '%s', tratado como novo", lead.ID, status.String)
		lead.Status = entity.StatusNew
	}
	if propertyID.Valid {
		lead.PropertyID = &propertyID.String
	}
	if agentID.Valid {
		lead.AssignedAgentID = &agentID.String
	}
	if value.Valid {
		lead.Value = &value.Float64
	}
	if dealValue.Valid {
		lead.DealValue = &dealValue.Float64
	}
	if propID.Valid {
		lead.Property = &entity.PropertySummary{
			ID:        propID.String,
			Title:     propTitle.String,
			Price:     propPrice.Float64,
			AgentName: agentName.String,
		}
	}
	return &lead, nil
}
