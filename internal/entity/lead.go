package entity

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
)

// LeadStatus é a chave canônica (inglês, minúscula) de uma etapa do funil.
// Os rótulos em português só existem na borda da UI (ver Label / ParseLeadStatus).
type LeadStatus string

const (
	StatusNew        LeadStatus = "new"
	StatusContacted  LeadStatus = "contacted"
	StatusQualifying LeadStatus = "qualifying"
	StatusVisit      LeadStatus = "visit"
	StatusProposal   LeadStatus = "proposal"
	StatusClosed     LeadStatus = "closed"
	StatusLost       LeadStatus = "lost"
)

var statusLabels = map[LeadStatus]string{
	StatusNew:        "Novo",
	StatusContacted:  "Em Contato",
	StatusQualifying: "Em Atendimento",
	StatusVisit:      "Visita",
	StatusProposal:   "Proposta",
	StatusClosed:     "Fechado",
	StatusLost:       "Perdido",
}

// PipelineColumns são as colunas do kanban, em ordem. LOST é alvo válido mas não vira coluna.
var PipelineColumns = []LeadStatus{
	StatusNew,
	StatusContacted,
	StatusQualifying,
	StatusVisit,
	StatusProposal,
	StatusClosed,
}

func (s LeadStatus) Valid() bool {
	_, ok := statusLabels[s]
	return ok
}

// Terminal indica CLOSED e LOST.
func (s LeadStatus) Terminal() bool {
	return s == StatusClosed || s == StatusLost
}

func (s LeadStatus) Label() string {
	if l, ok := statusLabels[s]; ok {
		return l
	}
	return string(s)
}

// ParseLeadStatus aceita tanto a chave ("new") quanto o rótulo ("Novo"), sem diferenciar maiúsculas.
func ParseLeadStatus(raw string) (LeadStatus, error) {
	v := strings.TrimSpace(raw)
	if v == "" {
		return "", &ValidationError{Field: "status", Message: "is required"}
	}
	for key, label := range statusLabels {
		if strings.EqualFold(v, string(key)) || strings.EqualFold(v, label) {
			return key, nil
		}
	}
	return "", &ValidationError{Field: "status", Message: "unknown status " + v}
}

// PropertySummary é o recorte do imóvel de origem que acompanha o lead na listagem.
type PropertySummary struct {
	ID        string  `json:"id"`
	Title     string  `json:"title"`
	Price     float64 `json:"price"`
	AgentName string  `json:"agent_name,omitempty"`
}

// Lead é um cliente em potencial percorrendo o funil.
// DealValue é não-nulo se e somente se Status == StatusClosed.
type Lead struct {
	ID              string           `json:"id"`
	Name            string           `json:"name"`
	Email           string           `json:"email,omitempty"`
	Phone           string           `json:"phone,omitempty"`
	Status          LeadStatus       `json:"status"`
	PropertyID      *string          `json:"property_id,omitempty"`
	Value           *float64         `json:"value,omitempty"`
	Probability     int              `json:"probability"`
	DealValue       *float64         `json:"deal_value,omitempty"`
	AssignedAgentID *string          `json:"assigned_agent_id,omitempty"`
	Property        *PropertySummary `json:"property,omitempty"`
	CreatedAt       time.Time        `json:"created_at"`
	UpdatedAt       time.Time        `json:"updated_at"`
}

// NewLead cria um lead recém-chegado do site público.
func NewLead(name, email, phone string, propertyID *string) (*Lead, error) {
	now := time.Now()
	lead := &Lead{
		ID:          uuid.New().String(),
		Name:        strings.TrimSpace(name),
		Email:       strings.TrimSpace(email),
		Phone:       strings.TrimSpace(phone),
		Status:      StatusNew,
		PropertyID:  propertyID,
		Probability: 20,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	if err := lead.Validate(); err != nil {
		return nil, err
	}
	return lead, nil
}

func (l *Lead) Validate() error {
	if l.Name == "" {
		return &ValidationError{Field: "name", Message: "is required"}
	}
	if l.Email == "" && l.Phone == "" {
		return &ValidationError{Field: "contact", Message: "email or phone is required"}
	}
	if !l.Status.Valid() {
		return &ValidationError{Field: "status", Message: "unknown status " + string(l.Status)}
	}
	return nil
}

// FirstName devolve o trecho do nome antes do primeiro espaço.
func (l *Lead) FirstName() string {
	name := strings.TrimSpace(l.Name)
	if i := strings.Index(name, " "); i >= 0 {
		return name[:i]
	}
	return name
}

// Clone devolve uma cópia profunda; snapshots de rollback dependem disso.
func (l Lead) Clone() Lead {
	c := l
	c.PropertyID = cloneString(l.PropertyID)
	c.AssignedAgentID = cloneString(l.AssignedAgentID)
	c.Value = cloneFloat(l.Value)
	c.DealValue = cloneFloat(l.DealValue)
	if l.Property != nil {
		p := *l.Property
		c.Property = &p
	}
	return c
}

var validProbabilities = map[int]bool{20: true, 50: true, 80: true, 100: true}

// LeadPatch é a edição genérica de campos do lead, fora da troca de status.
type LeadPatch struct {
	Value           *float64 `json:"value,omitempty"`
	ClearValue      bool     `json:"clear_value,omitempty"`
	Probability     *int     `json:"probability,omitempty"`
	AssignedAgentID *string  `json:"assigned_agent_id,omitempty"`
}

func (p LeadPatch) Validate() error {
	if p.Value != nil && *p.Value < 0 {
		return &ValidationError{Field: "value", Message: "must be >= 0"}
	}
	if p.Probability != nil && !validProbabilities[*p.Probability] {
		return &ValidationError{Field: "probability", Message: "must be one of 20, 50, 80, 100"}
	}
	return nil
}

// Apply devolve um novo lead com o patch aplicado; o original não é tocado.
func (p LeadPatch) Apply(l Lead, now time.Time) Lead {
	next := l.Clone()
	if p.ClearValue {
		next.Value = nil
	}
	if p.Value != nil {
		next.Value = cloneFloat(p.Value)
	}
	if p.Probability != nil {
		next.Probability = *p.Probability
	}
	if p.AssignedAgentID != nil {
		next.AssignedAgentID = cloneString(p.AssignedAgentID)
	}
	next.UpdatedAt = now
	return next
}

// LeadFilter restringe a listagem; AssignedAgentID vazio significa todos.
type LeadFilter struct {
	AssignedAgentID string
}

type LeadRepositoryInterface interface {
	Create(ctx context.Context, lead *Lead) error
	List(ctx context.Context, filter LeadFilter) ([]Lead, error)
	FindByID(ctx context.Context, id string) (*Lead, error)
	// Update persiste os campos mutáveis do funil (status, valores, probabilidade, corretor).
	Update(ctx context.Context, lead *Lead) error
}

func cloneString(s *string) *string {
	if s == nil {
		return nil
	}
	v := *s
	return &v
}

func cloneFloat(f *float64) *float64 {
	if f == nil {
		return nil
	}
	v := *f
	return &v
}
