package usecase

import (
	"context"
	"log"
	"sync"
	"time"

	"github.com/xavierca1/imob-crm/internal/entity"
)

// LeadsSnapshot é o que os assinantes recebem a cada mudança.
type LeadsSnapshot struct {
	Leads   []entity.Lead `json:"leads"`
	Loading bool          `json:"loading"`
}

// LeadStore guarda a cópia de trabalho dos leads de um viewer.
// O remoto é o sistema de registro; aqui ficam as mutações otimistas.
//
// Mutações concorrentes no mesmo lead são last-write-wins em memória: um
// rollback restaura o snapshot capturado por aquela mutação, mesmo que outra
// tenha sido aplicada depois.
type LeadStore struct {
	repo     entity.LeadRepositoryInterface
	timeline *TimelineService
	metrics  PipelineMetrics
	now      func() time.Time
	onCommit func(origin *LeadStore, lead entity.Lead)

	mu        sync.RWMutex
	viewer    entity.Viewer
	leads     []entity.Lead
	loading   bool
	populated bool
	subs      map[int]func(LeadsSnapshot)
	nextSub   int
}

func NewLeadStore(repo entity.LeadRepositoryInterface, timeline *TimelineService, metrics PipelineMetrics) *LeadStore {
	return &LeadStore{
		repo:     repo,
		timeline: timeline,
		metrics:  metricsOrNoop(metrics),
		now:      time.Now,
		subs:     make(map[int]func(LeadsSnapshot)),
	}
}

// Subscribe registra fn para receber snapshots. A função devolvida cancela a assinatura;
// depois dela nenhum snapshot novo é entregue.
func (s *LeadStore) Subscribe(fn func(LeadsSnapshot)) (unsubscribe func()) {
	s.mu.Lock()
	id := s.nextSub
	s.nextSub++
	s.subs[id] = fn
	s.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			s.mu.Lock()
			delete(s.subs, id)
			s.mu.Unlock()
		})
	}
}

func (s *LeadStore) publish() {
	s.mu.RLock()
	snap := s.snapshotLocked()
	fns := make([]func(LeadsSnapshot), 0, len(s.subs))
	for _, fn := range s.subs {
		fns = append(fns, fn)
	}
	s.mu.RUnlock()

	for _, fn := range fns {
		fn(snap)
	}
}

func (s *LeadStore) subscriberCount() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.subs)
}

func (s *LeadStore) snapshotLocked() LeadsSnapshot {
	leads := make([]entity.Lead, len(s.leads))
	for i, l := range s.leads {
		leads[i] = l.Clone()
	}
	return LeadsSnapshot{Leads: leads, Loading: s.loading}
}

func (s *LeadStore) Snapshot() LeadsSnapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.snapshotLocked()
}

func (s *LeadStore) Leads() []entity.Lead {
	return s.Snapshot().Leads
}

func (s *LeadStore) Loading() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.loading
}

func (s *LeadStore) Lead(id string) (entity.Lead, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if i := s.indexLocked(id); i >= 0 {
		return s.leads[i].Clone(), true
	}
	return entity.Lead{}, false
}

func (s *LeadStore) indexLocked(id string) int {
	for i := range s.leads {
		if s.leads[i].ID == id {
			return i
		}
	}
	return -1
}

// Refresh busca os leads no escopo do viewer. Pode ser chamado quantas vezes for
// preciso; o indicador de loading só aparece na primeira carga. Em caso de erro o
// snapshot anterior é mantido.
func (s *LeadStore) Refresh(ctx context.Context, viewer entity.Viewer) error {
	if err := viewer.Validate(); err != nil {
		return err
	}

	s.mu.Lock()
	s.viewer = viewer
	first := !s.populated
	if first {
		s.loading = true
	}
	s.mu.Unlock()
	if first {
		s.publish()
	}

	leads, err := s.repo.List(ctx, viewer.LeadFilter())
	if err != nil {
		log.Printf("❌ Erro ao atualizar leads do viewer %s: %v", viewer.ID, err)
		if first {
			s.mu.Lock()
			s.loading = false
			s.mu.Unlock()
			s.publish()
		}
		return entity.NewRemoteError("listar leads", err)
	}

	visible := make([]entity.Lead, 0, len(leads))
	for _, l := range leads {
		if viewer.CanSee(l) {
			visible = append(visible, l.Clone())
		}
	}

	s.mu.Lock()
	s.leads = visible
	s.populated = true
	s.loading = false
	s.mu.Unlock()
	s.publish()
	return nil
}

// EnsureLoaded faz a primeira carga se ainda não houve nenhuma.
func (s *LeadStore) EnsureLoaded(ctx context.Context, viewer entity.Viewer) error {
	s.mu.RLock()
	populated := s.populated
	s.mu.RUnlock()
	if populated {
		return nil
	}
	return s.Refresh(ctx, viewer)
}

// Lookup procura o lead na cópia local e, se não achar, recarrega uma vez.
func (s *LeadStore) Lookup(ctx context.Context, viewer entity.Viewer, id string) (entity.Lead, error) {
	if err := s.EnsureLoaded(ctx, viewer); err != nil {
		return entity.Lead{}, err
	}
	if l, ok := s.Lead(id); ok && viewer.CanSee(l) {
		return l, nil
	}
	if err := s.Refresh(ctx, viewer); err != nil {
		return entity.Lead{}, err
	}
	if l, ok := s.Lead(id); ok && viewer.CanSee(l) {
		return l, nil
	}
	return entity.Lead{}, &entity.NotFoundError{Resource: "lead", ID: id}
}

// mutate aplica fn localmente, publica, grava no remoto e desfaz em caso de falha.
func (s *LeadStore) mutate(
	ctx context.Context,
	op string,
	id string,
	fn func(entity.Lead) (entity.Lead, bool, error),
) (before, after entity.Lead, changed bool, err error) {
	s.mu.Lock()
	idx := s.indexLocked(id)
	if idx < 0 {
		s.mu.Unlock()
		return before, after, false, &entity.NotFoundError{Resource: "lead", ID: id}
	}
	snapshot := s.leads[idx].Clone()
	next, changed, err := fn(snapshot.Clone())
	if err != nil || !changed {
		s.mu.Unlock()
		return snapshot, snapshot, false, err
	}
	s.leads[idx] = next.Clone()
	s.mu.Unlock()
	s.publish()

	persist := next.Clone()
	if err := s.repo.Update(ctx, &persist); err != nil {
		s.restore(snapshot)
		s.metrics.MutationRolledBack(op)
		log.Printf("↩️ Rollback de '%s' no lead %s: %v", op, id, err)
		return snapshot, snapshot, false, entity.NewRemoteError(op, err)
	}

	s.mu.RLock()
	viewer := s.viewer
	s.mu.RUnlock()
	if viewer.ID != "" && !viewer.CanSee(next) {
		s.applyConfirmed(next)
	}

	if s.onCommit != nil {
		s.onCommit(s, next)
	}
	return snapshot, next, true, nil
}

func (s *LeadStore) restore(snapshot entity.Lead) {
	s.mu.Lock()
	if i := s.indexLocked(snapshot.ID); i >= 0 {
		s.leads[i] = snapshot
	}
	s.mu.Unlock()
	s.publish()
}

// applyConfirmed reflete uma mutação confirmada por outro store respeitando o
// escopo do viewer: o lead sai quando deixa de ser visível e entra quando passa
// a ser (só depois da primeira carga).
func (s *LeadStore) applyConfirmed(lead entity.Lead) {
	s.mu.Lock()
	i := s.indexLocked(lead.ID)
	visible := s.viewer.ID == "" || s.viewer.CanSee(lead)

	changed := true
	switch {
	case i >= 0 && visible:
		s.leads[i] = lead.Clone()
	case i >= 0:
		s.leads = append(s.leads[:i:i], s.leads[i+1:]...)
	case visible && s.populated && s.viewer.ID != "":
		s.leads = append(s.leads, lead.Clone())
	default:
		changed = false
	}
	s.mu.Unlock()

	if changed {
		s.publish()
	}
}

// ApplyIntent leva o lead ao status pedido. Validação acontece antes de qualquer
// mutação; a entrada status_change só é escrita depois da confirmação remota.
func (s *LeadStore) ApplyIntent(ctx context.Context, intent entity.TransitionIntent) error {
	before, after, changed, err := s.mutate(ctx, "atualizar status", intent.LeadID, func(l entity.Lead) (entity.Lead, bool, error) {
		return entity.ApplyTransition(l, intent.Target, intent.DealValue, s.now())
	})
	if err != nil || !changed {
		return err
	}

	s.metrics.TransitionApplied(before.Status, after.Status)

	if s.timeline != nil {
		desc := entity.TransitionDescription(before.Status, after.Status, intent.Reason)
		if _, err := s.timeline.AddEvent(ctx, intent.LeadID, entity.EventStatusChange, desc); err != nil {
			log.Printf("⚠️ Status do lead %s salvo, mas a timeline falhou: %v", intent.LeadID, err)
		}
	}
	return nil
}

func (s *LeadStore) UpdateLeadStatus(ctx context.Context, id string, status entity.LeadStatus) error {
	return s.ApplyIntent(ctx, entity.TransitionIntent{LeadID: id, Target: status})
}

// PatchLead aplica uma edição genérica de campos com o mesmo protocolo otimista.
func (s *LeadStore) PatchLead(ctx context.Context, id string, patch entity.LeadPatch) error {
	if err := patch.Validate(); err != nil {
		return err
	}
	_, _, _, err := s.mutate(ctx, "atualizar lead", id, func(l entity.Lead) (entity.Lead, bool, error) {
		return patch.Apply(l, s.now()), true, nil
	})
	return err
}

// UpdateLeadValue grava o valor estimado; nil limpa o campo.
func (s *LeadStore) UpdateLeadValue(ctx context.Context, id string, value *float64) error {
	patch := entity.LeadPatch{Value: value, ClearValue: value == nil}
	return s.PatchLead(ctx, id, patch)
}
