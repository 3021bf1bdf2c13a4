package usecase

import (
	"context"
	"log"
	"strings"

	"github.com/xavierca1/imob-crm/internal/entity"
)

type CaptureLeadUseCase struct {
	Leads      entity.LeadRepositoryInterface
	Properties entity.PropertyRepositoryInterface
	Timeline   *TimelineService
	Notifier   LeadNotifier
}

func NewCaptureLeadUseCase(
	leads entity.LeadRepositoryInterface,
	properties entity.PropertyRepositoryInterface,
	timeline *TimelineService,
	notifier LeadNotifier,
) *CaptureLeadUseCase {
	return &CaptureLeadUseCase{
		Leads:      leads,
		Properties: properties,
		Timeline:   timeline,
		Notifier:   notifier,
	}
}

// Execute registra um lead vindo do site público em NEW.
func (uc *CaptureLeadUseCase) Execute(ctx context.Context, input CaptureLeadInput) (*entity.Lead, error) {
	if err := joinValidation(ValidateCaptureLeadInput(input)); err != nil {
		return nil, err
	}

	var propertyID *string
	var propertyTitle string
	if pid := strings.TrimSpace(input.PropertyID); pid != "" {
		property, err := uc.Properties.Get(ctx, pid)
		switch {
		case err == nil:
			propertyID = &property.ID
			propertyTitle = property.Title
		case entity.IsNotFound(err):
			log.Printf("⚠️ Lead do site citou imóvel inexistente %s; seguindo sem imóvel", pid)
		default:
			// Sem como confirmar o imóvel agora; o vínculo é mantido.
			log.Printf("⚠️ Não foi possível confirmar o imóvel %s: %v", pid, err)
			propertyID = &pid
		}
	}

	lead, err := entity.NewLead(input.Name, input.Email, input.Phone, propertyID)
	if err != nil {
		return nil, err
	}
	if propertyID != nil {
		lead.Property = &entity.PropertySummary{ID: *propertyID, Title: propertyTitle}
	}

	if err := uc.Leads.Create(ctx, lead); err != nil {
		return nil, entity.NewRemoteError("criar lead", err)
	}
	log.Printf("📥 Novo lead %s (%s) recebido pelo site", lead.ID, lead.Name)

	if _, err := uc.Timeline.AddEvent(ctx, lead.ID, entity.EventSystem, "Lead recebido pelo site"); err != nil {
		log.Printf("⚠️ Lead %s criado sem registro de entrada na timeline: %v", lead.ID, err)
	}
	if msg := strings.TrimSpace(input.Message); msg != "" {
		if _, err := uc.Timeline.AddEvent(ctx, lead.ID, entity.EventNote, "Mensagem do cliente: "+msg); err != nil {
			log.Printf("⚠️ Mensagem do lead %s não registrada: %v", lead.ID, err)
		}
	}

	if uc.Notifier != nil {
		notified := lead.Clone()
		go func() {
			if err := uc.Notifier.NotifyNewLead(notified, propertyTitle); err != nil {
				log.Printf("⚠️ Falha ao avisar a equipe sobre o lead %s: %v", notified.ID, err)
			}
		}()
	}

	return lead, nil
}
