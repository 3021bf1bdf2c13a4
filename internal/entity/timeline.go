package entity

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
)

type TimelineEventType string

const (
	EventStatusChange TimelineEventType = "status_change"
	EventWhatsApp     TimelineEventType = "whatsapp"
	EventNote         TimelineEventType = "note"
	EventSystem       TimelineEventType = "system"
)

func (t TimelineEventType) Valid() bool {
	switch t {
	case EventStatusChange, EventWhatsApp, EventNote, EventSystem:
		return true
	}
	return false
}

// TimelineEvent é imutável depois de criado; o log é só de inclusão.
type TimelineEvent struct {
	ID          string            `json:"id"`
	LeadID      string            `json:"lead_id"`
	Type        TimelineEventType `json:"type"`
	Description string            `json:"description"`
	CreatedAt   time.Time         `json:"created_at"`
}

func NewTimelineEvent(leadID string, eventType TimelineEventType, description string) (*TimelineEvent, error) {
	if leadID == "" {
		return nil, &ValidationError{Field: "lead_id", Message: "is required"}
	}
	if !eventType.Valid() {
		return nil, &ValidationError{Field: "type", Message: "unknown event type " + string(eventType)}
	}
	description = strings.TrimSpace(description)
	if description == "" {
		return nil, &ValidationError{Field: "description", Message: "is required"}
	}

	return &TimelineEvent{
		ID:          uuid.New().String(),
		LeadID:      leadID,
		Type:        eventType,
		Description: description,
		CreatedAt:   time.Now(),
	}, nil
}

// TimelineRepositoryInterface não expõe edição nem remoção: é trilha de auditoria.
type TimelineRepositoryInterface interface {
	Insert(ctx context.Context, event *TimelineEvent) error
	ListByLead(ctx context.Context, leadID string) ([]TimelineEvent, error)
}
