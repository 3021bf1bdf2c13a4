package usecase

import (
	"context"

	"github.com/xavierca1/imob-crm/internal/entity"
)

// MessagingChannel é o canal externo de saída (WhatsApp). Dispara e esquece:
// não há confirmação de entrega para o núcleo.
type MessagingChannel interface {
	Open(ctx context.Context, phoneDigits, text string) error
}

type LeadNotifier interface {
	NotifyNewLead(lead entity.Lead, propertyTitle string) error
}

type PipelineMetrics interface {
	TransitionApplied(from, to entity.LeadStatus)
	MutationRolledBack(op string)
	MatchesServed(count int)
	MessageSent(templateTitle string)
}

type noopMetrics struct{}

func (noopMetrics) TransitionApplied(entity.LeadStatus, entity.LeadStatus) {}
func (noopMetrics) MutationRolledBack(string)                             {}
func (noopMetrics) MatchesServed(int)                                     {}
func (noopMetrics) MessageSent(string)                                    {}

func metricsOrNoop(m PipelineMetrics) PipelineMetrics {
	if m == nil {
		return noopMetrics{}
	}
	return m
}
