package usecase_test

import (
	"context"
	"sync"
	"time"

	"github.com/stretchr/testify/mock"

	"github.com/xavierca1/imob-crm/internal/entity"
)

// MockLeadRepository
type MockLeadRepository struct {
	mock.Mock
}

func (m *MockLeadRepository) Create(ctx context.Context, lead *entity.Lead) error {
	args := m.Called(ctx, lead)
	return args.Error(0)
}

func (m *MockLeadRepository) List(ctx context.Context, filter entity.LeadFilter) ([]entity.Lead, error) {
	args := m.Called(ctx, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]entity.Lead), args.Error(1)
}

func (m *MockLeadRepository) FindByID(ctx context.Context, id string) (*entity.Lead, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.Lead), args.Error(1)
}

func (m *MockLeadRepository) Update(ctx context.Context, lead *entity.Lead) error {
	args := m.Called(ctx, lead)
	return args.Error(0)
}

// MockPropertyRepository
type MockPropertyRepository struct {
	mock.Mock
}

func (m *MockPropertyRepository) Get(ctx context.Context, id string) (*entity.Property, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.Property), args.Error(1)
}

func (m *MockPropertyRepository) Query(ctx context.Context, filter entity.PropertyFilter) ([]entity.Property, error) {
	args := m.Called(ctx, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]entity.Property), args.Error(1)
}

// MockTemplateRepository
type MockTemplateRepository struct {
	mock.Mock
}

func (m *MockTemplateRepository) ListActive(ctx context.Context) ([]entity.MessageTemplate, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]entity.MessageTemplate), args.Error(1)
}

// MockTaskRepository
type MockTaskRepository struct {
	mock.Mock
}

func (m *MockTaskRepository) Create(ctx context.Context, task *entity.Task) error {
	args := m.Called(ctx, task)
	return args.Error(0)
}

func (m *MockTaskRepository) ListByLead(ctx context.Context, leadID string) ([]entity.Task, error) {
	args := m.Called(ctx, leadID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]entity.Task), args.Error(1)
}

func (m *MockTaskRepository) FindByID(ctx context.Context, id string) (*entity.Task, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.Task), args.Error(1)
}

func (m *MockTaskRepository) SetCompleted(ctx context.Context, id string, completed bool) error {
	args := m.Called(ctx, id, completed)
	return args.Error(0)
}

func (m *MockTaskRepository) ClaimOverdue(ctx context.Context, now time.Time) ([]entity.Task, error) {
	args := m.Called(ctx, now)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]entity.Task), args.Error(1)
}

// MockChannel
type MockChannel struct {
	mock.Mock
}

func (m *MockChannel) Open(ctx context.Context, phoneDigits, text string) error {
	args := m.Called(ctx, phoneDigits, text)
	return args.Error(0)
}

// MockNotifier
type MockNotifier struct {
	mock.Mock
}

func (m *MockNotifier) NotifyNewLead(lead entity.Lead, propertyTitle string) error {
	args := m.Called(lead, propertyTitle)
	return args.Error(0)
}

// memTimeline é um repositório de timeline em memória; guarda a ordem de inserção.
type memTimeline struct {
	mu        sync.Mutex
	events    []entity.TimelineEvent
	insertErr error
	listErr   error
	inserts   int
	lists     int
}

func (r *memTimeline) Insert(_ context.Context, event *entity.TimelineEvent) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.inserts++
	if r.insertErr != nil {
		return r.insertErr
	}
	r.events = append(r.events, *event)
	return nil
}

func (r *memTimeline) ListByLead(_ context.Context, leadID string) ([]entity.TimelineEvent, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.lists++
	if r.listErr != nil {
		return nil, r.listErr
	}
	var out []entity.TimelineEvent
	for _, e := range r.events {
		if e.LeadID == leadID {
			out = append(out, e)
		}
	}
	return out, nil
}

func (r *memTimeline) listCalls() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.lists
}

// typesFor devolve os tipos dos eventos do lead na ordem em que foram gravados.
func (r *memTimeline) typesFor(leadID string) []entity.TimelineEventType {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []entity.TimelineEventType
	for _, e := range r.events {
		if e.LeadID == leadID {
			out = append(out, e.Type)
		}
	}
	return out
}

func strPtr(s string) *string { return &s }

func floatPtr(f float64) *float64 { return &f }

func agentViewer() entity.Viewer {
	return entity.Viewer{ID: "agent-1", Name: "Carlos", Role: entity.RoleAgent}
}

func adminViewer() entity.Viewer {
	return entity.Viewer{ID: "admin-1", Name: "Paula", Role: entity.RoleAdmin}
}

func newLead(id string, status entity.LeadStatus, agentID string) entity.Lead {
	created := time.Date(2026, 5, 4, 10, 0, 0, 0, time.UTC)
	return entity.Lead{
		ID:              id,
		Name:            "Maria Silva",
		Phone:           "+55 (11) 98888-7777",
		Status:          status,
		Probability:     20,
		AssignedAgentID: strPtr(agentID),
		PropertyID:      strPtr("prop-1"),
		Property:        &entity.PropertySummary{ID: "prop-1", Title: "Casa X", Price: 1000000},
		CreatedAt:       created,
		UpdatedAt:       created,
	}
}
