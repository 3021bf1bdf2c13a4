package usecase_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/xavierca1/imob-crm/internal/entity"
	"github.com/xavierca1/imob-crm/internal/usecase"
)

type detailFixture struct {
	leads      *MockLeadRepository
	properties *MockPropertyRepository
	tasks      *MockTaskRepository
	templates  *MockTemplateRepository
	channel    *MockChannel
	timeline   *memTimeline
	uc         *usecase.LeadDetailUseCase
}

func newDetailFixture(leads ...entity.Lead) *detailFixture {
	f := &detailFixture{
		leads:      new(MockLeadRepository),
		properties: new(MockPropertyRepository),
		tasks:      new(MockTaskRepository),
		templates:  new(MockTemplateRepository),
		channel:    new(MockChannel),
		timeline:   &memTimeline{},
	}
	f.leads.On("List", mock.Anything, entity.LeadFilter{AssignedAgentID: "agent-1"}).Return(leads, nil)

	timeline := usecase.NewTimelineService(f.timeline)
	registry := usecase.NewStoreRegistry(f.leads, timeline, nil)
	f.uc = usecase.NewLeadDetailUseCase(
		registry,
		f.properties,
		f.tasks,
		f.templates,
		timeline,
		usecase.NewSmartMatchService(f.properties, nil),
		usecase.NewMessagingService(f.channel, timeline, nil),
	)
	return f
}

func TestFetchFullLeadData(t *testing.T) {
	f := newDetailFixture(newLead("l1", entity.StatusVisit, "agent-1"))
	f.properties.On("Get", mock.Anything, "prop-1").Return(&entity.Property{
		ID: "prop-1", Title: "Casa X", Price: 1000000, Type: entity.PropertyHouse, Location: entity.Location{City: "Campinas"},
	}, nil)
	f.properties.On("Query", mock.Anything, mock.Anything).Return([]entity.Property{
		house("m1", 1050000, "Campinas"),
	}, nil)
	f.tasks.On("ListByLead", mock.Anything, "l1").Return([]entity.Task{{ID: "t1", LeadID: "l1", Title: "Ligar"}}, nil)
	f.templates.On("ListActive", mock.Anything).Return([]entity.MessageTemplate{availabilityTemplate}, nil)
	f.timeline.events = []entity.TimelineEvent{{ID: "e1", LeadID: "l1", Type: entity.EventSystem, Description: "entrada"}}

	detail, err := f.uc.FetchFullLeadData(context.Background(), agentViewer(), "l1")

	require.NoError(t, err)
	assert.Equal(t, "l1", detail.Lead.ID)
	assert.Equal(t, "Casa X", detail.Property.Title)
	assert.Len(t, detail.Matches, 1)
	assert.Len(t, detail.Tasks, 1)
	assert.Len(t, detail.Templates, 1)
	assert.Len(t, detail.Timeline, 1)
}

// TestFetchFullLeadDataDegradesOptionalParts - Templates e imóvel fora do ar não derrubam a tela
func TestFetchFullLeadDataDegradesOptionalParts(t *testing.T) {
	f := newDetailFixture(newLead("l1", entity.StatusVisit, "agent-1"))
	f.properties.On("Get", mock.Anything, "prop-1").Return(nil, errors.New("timeout"))
	f.tasks.On("ListByLead", mock.Anything, "l1").Return(nil, nil)
	f.templates.On("ListActive", mock.Anything).Return(nil, errors.New("timeout"))

	detail, err := f.uc.FetchFullLeadData(context.Background(), agentViewer(), "l1")

	require.NoError(t, err)
	assert.Nil(t, detail.Property)
	assert.NotNil(t, detail.Matches)
	assert.Empty(t, detail.Matches)
	assert.NotNil(t, detail.Templates)
	assert.NotNil(t, detail.Tasks)
	f.properties.AssertNotCalled(t, "Query", mock.Anything, mock.Anything)
}

// TestFetchFullLeadDataOutOfScope - Corretor não abre lead de outro corretor
func TestFetchFullLeadDataOutOfScope(t *testing.T) {
	f := newDetailFixture(newLead("l1", entity.StatusVisit, "agent-1"))

	_, err := f.uc.FetchFullLeadData(context.Background(), agentViewer(), "l-de-outro")

	assert.True(t, entity.IsNotFound(err))
}

func TestDetailSendTemplateByID(t *testing.T) {
	f := newDetailFixture(newLead("l1", entity.StatusNew, "agent-1"))
	f.templates.On("ListActive", mock.Anything).Return([]entity.MessageTemplate{availabilityTemplate}, nil)
	f.channel.On("Open", mock.Anything, mock.Anything, mock.Anything).Return(nil)
	f.leads.On("Update", mock.Anything, mock.Anything).Return(nil)

	result, err := f.uc.SendTemplate(context.Background(), agentViewer(), "l1", "tpl-1")
	require.NoError(t, err)
	assert.True(t, result.Escalated)

	_, err = f.uc.SendTemplate(context.Background(), agentViewer(), "l1", "tpl-x")
	assert.True(t, entity.IsNotFound(err))
}

func TestDetailAddTimelineLogAndValue(t *testing.T) {
	f := newDetailFixture(newLead("l1", entity.StatusVisit, "agent-1"))
	f.leads.On("Update", mock.Anything, mock.MatchedBy(func(l *entity.Lead) bool {
		return l.Value != nil && *l.Value == 1200000
	})).Return(nil)

	event, err := f.uc.AddTimelineLog(context.Background(), agentViewer(), "l1", entity.EventNote, "Visita confirmada")
	require.NoError(t, err)
	assert.Equal(t, entity.EventNote, event.Type)

	require.NoError(t, f.uc.UpdateLeadValue(context.Background(), agentViewer(), "l1", floatPtr(1200000)))
}

func TestDetailTasks(t *testing.T) {
	f := newDetailFixture(newLead("l1", entity.StatusVisit, "agent-1"))
	due := time.Date(2026, 7, 1, 14, 0, 0, 0, time.UTC)
	f.tasks.On("Create", mock.Anything, mock.MatchedBy(func(task *entity.Task) bool {
		return task.LeadID == "l1" && task.Title == "Enviar proposta" && task.DueDate.Equal(due)
	})).Return(nil)
	f.tasks.On("FindByID", mock.Anything, "t1").Return(&entity.Task{ID: "t1", LeadID: "l1", Title: "Enviar proposta"}, nil)
	f.tasks.On("FindByID", mock.Anything, "t2").Return(&entity.Task{ID: "t2", LeadID: "l-de-outro"}, nil)
	f.tasks.On("SetCompleted", mock.Anything, "t1", true).Return(nil)

	task, err := f.uc.AddTask(context.Background(), agentViewer(), "l1", "Enviar proposta", due)
	require.NoError(t, err)
	assert.False(t, task.Completed)

	done, err := f.uc.SetTaskCompleted(context.Background(), agentViewer(), "t1", true)
	require.NoError(t, err)
	assert.True(t, done.Completed)

	_, err = f.uc.SetTaskCompleted(context.Background(), agentViewer(), "t2", true)
	assert.True(t, entity.IsNotFound(err))
	f.tasks.AssertNotCalled(t, "SetCompleted", mock.Anything, "t2", mock.Anything)

	// Timeline não recebe nada de tarefas.
	assert.Empty(t, f.timeline.typesFor("l1"))
}

// TestDetailViewLifecycle - Detalhe aberto recebe as notas novas; fechado, não
func TestDetailViewLifecycle(t *testing.T) {
	lead := newLead("l1", entity.StatusVisit, "agent-1")
	lead.PropertyID = nil
	f := newDetailFixture(lead)
	f.tasks.On("ListByLead", mock.Anything, "l1").Return(nil, nil)
	f.templates.On("ListActive", mock.Anything).Return(nil, nil)
	ctx := context.Background()

	_, err := f.uc.FetchFullLeadData(ctx, agentViewer(), "l1")
	require.NoError(t, err)

	_, err = f.uc.AddTimelineLog(ctx, agentViewer(), "l1", entity.EventNote, "Cliente ligou")
	require.NoError(t, err)
	listsBefore := f.timeline.listCalls()
	events, err := f.uc.LeadTimeline(ctx, agentViewer(), "l1")
	require.NoError(t, err)
	require.Len(t, events, 1)
	assert.Equal(t, listsBefore, f.timeline.listCalls())

	f.uc.CloseLeadView(agentViewer(), "l1")
	_, err = f.uc.AddTimelineLog(ctx, agentViewer(), "l1", entity.EventNote, "Depois de fechar")
	require.NoError(t, err)
	assert.Equal(t, listsBefore, f.timeline.listCalls())
}
