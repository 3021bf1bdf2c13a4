package usecase

import (
	"context"
	"log"
	"sync"
	"time"

	"github.com/xavierca1/imob-crm/internal/entity"
)

// StoreRegistry mantém um LeadStore por viewer. Quando um store confirma uma
// mutação, os demais recebem a versão nova dentro do próprio escopo.
type StoreRegistry struct {
	repo     entity.LeadRepositoryInterface
	timeline *TimelineService
	metrics  PipelineMetrics
	now      func() time.Time

	mu     sync.Mutex
	stores map[string]*registeredStore
}

type registeredStore struct {
	store    *LeadStore
	lastUsed time.Time
}

func NewStoreRegistry(repo entity.LeadRepositoryInterface, timeline *TimelineService, metrics PipelineMetrics) *StoreRegistry {
	return &StoreRegistry{
		repo:     repo,
		timeline: timeline,
		metrics:  metrics,
		now:      time.Now,
		stores:   make(map[string]*registeredStore),
	}
}

func (r *StoreRegistry) For(viewer entity.Viewer) *LeadStore {
	r.mu.Lock()
	defer r.mu.Unlock()

	key := string(viewer.Role) + ":" + viewer.ID
	if rs, ok := r.stores[key]; ok {
		rs.lastUsed = r.now()
		return rs.store
	}
	s := NewLeadStore(r.repo, r.timeline, r.metrics)
	s.viewer = viewer
	s.onCommit = r.broadcast
	r.stores[key] = &registeredStore{store: s, lastUsed: r.now()}
	return s
}

// EvictIdle descarta stores sem assinantes que não são usados desde before.
// Devolve quantos saíram.
func (r *StoreRegistry) EvictIdle(before time.Time) int {
	r.mu.Lock()
	defer r.mu.Unlock()

	evicted := 0
	for key, rs := range r.stores {
		if rs.lastUsed.Before(before) && rs.store.subscriberCount() == 0 {
			delete(r.stores, key)
			evicted++
		}
	}
	return evicted
}

// StartJanitor roda EvictIdle a cada interval até o contexto ser cancelado.
func (r *StoreRegistry) StartJanitor(ctx context.Context, interval, idle time.Duration) {
	if interval <= 0 {
		interval = time.Minute
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if n := r.EvictIdle(r.now().Add(-idle)); n > 0 {
				log.Printf("🧹 %d store(s) de leads ociosos descartados", n)
			}
		}
	}
}

func (r *StoreRegistry) broadcast(origin *LeadStore, lead entity.Lead) {
	r.mu.Lock()
	others := make([]*LeadStore, 0, len(r.stores))
	for _, rs := range r.stores {
		if rs.store != origin {
			others = append(others, rs.store)
		}
	}
	r.mu.Unlock()

	for _, s := range others {
		s.applyConfirmed(lead)
	}
}
