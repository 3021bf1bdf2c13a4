package usecase

import (
	"context"
	"log"
	"time"

	"github.com/xavierca1/imob-crm/internal/entity"
)

// LeadDetail é tudo que a tela de detalhe precisa de uma vez.
type LeadDetail struct {
	Lead      entity.Lead              `json:"lead"`
	Property  *entity.Property         `json:"property,omitempty"`
	Timeline  []entity.TimelineEvent   `json:"timeline"`
	Tasks     []entity.Task            `json:"tasks"`
	Templates []entity.MessageTemplate `json:"templates"`
	Matches   []entity.Property        `json:"matches"`
}

type LeadDetailUseCase struct {
	Stores     *StoreRegistry
	Properties entity.PropertyRepositoryInterface
	Tasks      entity.TaskRepositoryInterface
	Templates  entity.TemplateRepositoryInterface
	Timeline   *TimelineService
	Matcher    *SmartMatchService
	Messaging  *MessagingService
}

func NewLeadDetailUseCase(
	stores *StoreRegistry,
	properties entity.PropertyRepositoryInterface,
	tasks entity.TaskRepositoryInterface,
	templates entity.TemplateRepositoryInterface,
	timeline *TimelineService,
	matcher *SmartMatchService,
	messaging *MessagingService,
) *LeadDetailUseCase {
	return &LeadDetailUseCase{
		Stores:     stores,
		Properties: properties,
		Tasks:      tasks,
		Templates:  templates,
		Timeline:   timeline,
		Matcher:    matcher,
		Messaging:  messaging,
	}
}

// FetchFullLeadData carrega lead, imóvel de origem, timeline, tarefas, templates
// ativos e comparáveis. Templates e comparáveis degradam para lista vazia.
func (uc *LeadDetailUseCase) FetchFullLeadData(ctx context.Context, viewer entity.Viewer, leadID string) (*LeadDetail, error) {
	lead, err := uc.Stores.For(viewer).Lookup(ctx, viewer, leadID)
	if err != nil {
		return nil, err
	}

	detail := &LeadDetail{
		Lead:      lead,
		Templates: []entity.MessageTemplate{},
		Matches:   []entity.Property{},
	}

	if lead.PropertyID != nil {
		property, err := uc.Properties.Get(ctx, *lead.PropertyID)
		if err != nil {
			log.Printf("⚠️ Imóvel de origem %s do lead %s indisponível: %v", *lead.PropertyID, leadID, err)
		} else {
			detail.Property = property
			if detail.Lead.Property == nil {
				detail.Lead.Property = &entity.PropertySummary{ID: property.ID, Title: property.Title, Price: property.Price}
			}
			detail.Matches = uc.Matcher.FindMatches(ctx, *property)
		}
	}

	detail.Timeline, err = uc.Timeline.OpenView(ctx, viewer.ID, leadID)
	if err != nil {
		return nil, err
	}

	tasks, err := uc.Tasks.ListByLead(ctx, leadID)
	if err != nil {
		uc.Timeline.CloseView(viewer.ID, leadID)
		return nil, entity.NewRemoteError("listar tarefas", err)
	}
	detail.Tasks = nonNilTasks(tasks)

	templates, err := uc.Templates.ListActive(ctx)
	if err != nil {
		log.Printf("⚠️ Templates indisponíveis: %v", err)
	} else if templates != nil {
		detail.Templates = templates
	}

	return detail, nil
}

// CloseLeadView encerra o detalhe aberto pelo viewer; a timeline local do lead
// deixa de ser recarregada quando ninguém mais está com ele aberto.
func (uc *LeadDetailUseCase) CloseLeadView(viewer entity.Viewer, leadID string) {
	uc.Timeline.CloseView(viewer.ID, leadID)
}

// LeadTimeline devolve a timeline do lead, servida da cópia local se o detalhe
// estiver aberto.
func (uc *LeadDetailUseCase) LeadTimeline(ctx context.Context, viewer entity.Viewer, leadID string) ([]entity.TimelineEvent, error) {
	if _, err := uc.Stores.For(viewer).Lookup(ctx, viewer, leadID); err != nil {
		return nil, err
	}
	return uc.Timeline.Timeline(ctx, viewer.ID, leadID)
}

func (uc *LeadDetailUseCase) SendTemplate(ctx context.Context, viewer entity.Viewer, leadID, templateID string) (*SendTemplateResult, error) {
	store := uc.Stores.For(viewer)
	if _, err := store.Lookup(ctx, viewer, leadID); err != nil {
		return nil, err
	}

	templates, err := uc.Templates.ListActive(ctx)
	if err != nil {
		return nil, entity.NewRemoteError("listar templates", err)
	}
	for _, tpl := range templates {
		if tpl.ID == templateID {
			return uc.Messaging.SendTemplate(ctx, store, tpl, leadID)
		}
	}
	return nil, &entity.NotFoundError{Resource: "template", ID: templateID}
}

// AddTimelineLog registra uma ação manual (nota, ligação etc.) na timeline.
func (uc *LeadDetailUseCase) AddTimelineLog(ctx context.Context, viewer entity.Viewer, leadID string, eventType entity.TimelineEventType, description string) (*entity.TimelineEvent, error) {
	if _, err := uc.Stores.For(viewer).Lookup(ctx, viewer, leadID); err != nil {
		return nil, err
	}
	return uc.Timeline.AddEvent(ctx, leadID, eventType, description)
}

func (uc *LeadDetailUseCase) UpdateLeadValue(ctx context.Context, viewer entity.Viewer, leadID string, value *float64) error {
	store := uc.Stores.For(viewer)
	if _, err := store.Lookup(ctx, viewer, leadID); err != nil {
		return err
	}
	return store.UpdateLeadValue(ctx, leadID, value)
}

func (uc *LeadDetailUseCase) AddTask(ctx context.Context, viewer entity.Viewer, leadID, title string, dueDate time.Time) (*entity.Task, error) {
	if _, err := uc.Stores.For(viewer).Lookup(ctx, viewer, leadID); err != nil {
		return nil, err
	}

	task, err := entity.NewTask(leadID, title, dueDate)
	if err != nil {
		return nil, err
	}
	if err := uc.Tasks.Create(ctx, task); err != nil {
		return nil, entity.NewRemoteError("criar tarefa", err)
	}
	return task, nil
}

func (uc *LeadDetailUseCase) SetTaskCompleted(ctx context.Context, viewer entity.Viewer, taskID string, completed bool) (*entity.Task, error) {
	task, err := uc.Tasks.FindByID(ctx, taskID)
	if err != nil {
		return nil, entity.NewRemoteError("buscar tarefa", err)
	}
	if _, err := uc.Stores.For(viewer).Lookup(ctx, viewer, task.LeadID); err != nil {
		if entity.IsNotFound(err) {
			return nil, &entity.NotFoundError{Resource: "tarefa", ID: taskID}
		}
		return nil, err
	}

	if err := uc.Tasks.SetCompleted(ctx, taskID, completed); err != nil {
		return nil, entity.NewRemoteError("atualizar tarefa", err)
	}
	task.Completed = completed
	return task, nil
}

func nonNilTasks(tasks []entity.Task) []entity.Task {
	if tasks == nil {
		return []entity.Task{}
	}
	return tasks
}
