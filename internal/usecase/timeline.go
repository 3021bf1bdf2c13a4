package usecase

import (
	"context"
	"log"
	"sort"
	"sync"

	"github.com/xavierca1/imob-crm/internal/entity"
)

// TimelineService grava eventos no remoto. Enquanto algum viewer está com o
// detalhe de um lead aberto, a timeline desse lead fica em memória e é
// recarregada a cada evento novo. Não há edição nem remoção.
type TimelineService struct {
	repo entity.TimelineRepositoryInterface

	mu    sync.RWMutex
	views map[string]map[string]struct{} // leadID -> viewers com o detalhe aberto
	cache map[string][]entity.TimelineEvent
}

func NewTimelineService(repo entity.TimelineRepositoryInterface) *TimelineService {
	return &TimelineService{
		repo:  repo,
		views: make(map[string]map[string]struct{}),
		cache: make(map[string][]entity.TimelineEvent),
	}
}

// AddEvent escreve no remoto e, se o lead estiver aberto em algum detalhe,
// recarrega a timeline local. Falha de escrita é devolvida sem retentativa.
func (t *TimelineService) AddEvent(ctx context.Context, leadID string, eventType entity.TimelineEventType, description string) (*entity.TimelineEvent, error) {
	event, err := entity.NewTimelineEvent(leadID, eventType, description)
	if err != nil {
		return nil, err
	}

	if err := t.repo.Insert(ctx, event); err != nil {
		log.Printf("❌ Falha ao gravar evento '%s' do lead %s: %v", eventType, leadID, err)
		return nil, entity.NewRemoteError("gravar timeline", err)
	}

	if !t.isOpen(leadID) {
		return event, nil
	}
	if _, err := t.ListEvents(ctx, leadID); err != nil {
		log.Printf("⚠️ Evento gravado, mas a releitura da timeline do lead %s falhou: %v", leadID, err)
		t.mu.Lock()
		if _, open := t.views[leadID]; open {
			t.cache[leadID] = append([]entity.TimelineEvent{*event}, t.cache[leadID]...)
		}
		t.mu.Unlock()
	}
	return event, nil
}

// ListEvents devolve os eventos do lead, mais recentes primeiro.
func (t *TimelineService) ListEvents(ctx context.Context, leadID string) ([]entity.TimelineEvent, error) {
	events, err := t.repo.ListByLead(ctx, leadID)
	if err != nil {
		return nil, entity.NewRemoteError("listar timeline", err)
	}

	sorted := make([]entity.TimelineEvent, len(events))
	copy(sorted, events)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].CreatedAt.After(sorted[j].CreatedAt)
	})

	t.mu.Lock()
	if _, open := t.views[leadID]; open {
		t.cache[leadID] = sorted
	}
	t.mu.Unlock()

	out := make([]entity.TimelineEvent, len(sorted))
	copy(out, sorted)
	return out, nil
}

// OpenView marca o detalhe do lead como aberto para o viewer e carrega a timeline.
func (t *TimelineService) OpenView(ctx context.Context, viewerID, leadID string) ([]entity.TimelineEvent, error) {
	t.mu.Lock()
	if t.views[leadID] == nil {
		t.views[leadID] = make(map[string]struct{})
	}
	t.views[leadID][viewerID] = struct{}{}
	t.mu.Unlock()

	events, err := t.ListEvents(ctx, leadID)
	if err != nil {
		t.CloseView(viewerID, leadID)
		return nil, err
	}
	return events, nil
}

// CloseView encerra o detalhe do viewer. Sem nenhum detalhe aberto, a timeline
// local do lead é descartada e deixa de receber recargas.
func (t *TimelineService) CloseView(viewerID, leadID string) {
	t.mu.Lock()
	defer t.mu.Unlock()

	viewers := t.views[leadID]
	delete(viewers, viewerID)
	if len(viewers) == 0 {
		delete(t.views, leadID)
		delete(t.cache, leadID)
	}
}

// Timeline devolve a timeline do lead: a cópia local quando o viewer está com o
// detalhe aberto, senão uma leitura do remoto.
func (t *TimelineService) Timeline(ctx context.Context, viewerID, leadID string) ([]entity.TimelineEvent, error) {
	t.mu.RLock()
	_, open := t.views[leadID][viewerID]
	cached, ok := t.cache[leadID]
	t.mu.RUnlock()

	if open && ok {
		out := make([]entity.TimelineEvent, len(cached))
		copy(out, cached)
		return out, nil
	}
	return t.ListEvents(ctx, leadID)
}

func (t *TimelineService) isOpen(leadID string) bool {
	t.mu.RLock()
	defer t.mu.RUnlock()
	_, open := t.views[leadID]
	return open
}
