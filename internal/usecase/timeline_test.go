package usecase_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/xavierca1/imob-crm/internal/entity"
	"github.com/xavierca1/imob-crm/internal/usecase"
)

func TestListEventsNewestFirst(t *testing.T) {
	base := time.Date(2026, 6, 1, 8, 0, 0, 0, time.UTC)
	repo := &memTimeline{events: []entity.TimelineEvent{
		{ID: "e1", LeadID: "l1", Type: entity.EventSystem, Description: "entrada", CreatedAt: base},
		{ID: "e2", LeadID: "l1", Type: entity.EventNote, Description: "ligação", CreatedAt: base.Add(time.Hour)},
		{ID: "e3", LeadID: "l1", Type: entity.EventWhatsApp, Description: "template", CreatedAt: base.Add(2 * time.Hour)},
		{ID: "x", LeadID: "l2", Type: entity.EventNote, Description: "outro lead", CreatedAt: base},
	}}
	svc := usecase.NewTimelineService(repo)

	events, err := svc.ListEvents(context.Background(), "l1")

	require.NoError(t, err)
	require.Len(t, events, 3)
	assert.Equal(t, "e3", events[0].ID)
	assert.Equal(t, "e1", events[2].ID)
}

func TestAddEventRefreshesOpenView(t *testing.T) {
	repo := &memTimeline{}
	svc := usecase.NewTimelineService(repo)
	ctx := context.Background()

	opened, err := svc.OpenView(ctx, "agent-1", "l1")
	require.NoError(t, err)
	assert.Empty(t, opened)

	event, err := svc.AddEvent(ctx, "l1", entity.EventNote, "  Cliente pediu visita sábado ")

	require.NoError(t, err)
	assert.Equal(t, "Cliente pediu visita sábado", event.Description)
	listsBefore := repo.listCalls()
	local, err := svc.Timeline(ctx, "agent-1", "l1")
	require.NoError(t, err)
	require.Len(t, local, 1)
	assert.Equal(t, event.ID, local[0].ID)
	assert.Equal(t, listsBefore, repo.listCalls(), "detalhe aberto é servido da cópia local")
}

// TestClosedViewStopsReceivingUpdates - Detalhe fechado não recarrega nem guarda nada
func TestClosedViewStopsReceivingUpdates(t *testing.T) {
	repo := &memTimeline{}
	svc := usecase.NewTimelineService(repo)
	ctx := context.Background()

	_, err := svc.OpenView(ctx, "agent-1", "l1")
	require.NoError(t, err)
	svc.CloseView("agent-1", "l1")

	listsBefore := repo.listCalls()
	_, err = svc.AddEvent(ctx, "l1", entity.EventNote, "depois de fechar")
	require.NoError(t, err)
	assert.Equal(t, listsBefore, repo.listCalls())

	// Sem detalhe aberto a leitura vai ao remoto.
	events, err := svc.Timeline(ctx, "agent-1", "l1")
	require.NoError(t, err)
	assert.Len(t, events, 1)
	assert.Equal(t, listsBefore+1, repo.listCalls())
}

func TestCloseViewKeepsTimelineForOtherViewers(t *testing.T) {
	repo := &memTimeline{}
	svc := usecase.NewTimelineService(repo)
	ctx := context.Background()

	_, err := svc.OpenView(ctx, "agent-1", "l1")
	require.NoError(t, err)
	_, err = svc.OpenView(ctx, "admin-1", "l1")
	require.NoError(t, err)
	svc.CloseView("agent-1", "l1")

	event, err := svc.AddEvent(ctx, "l1", entity.EventNote, "nota")
	require.NoError(t, err)

	listsBefore := repo.listCalls()
	local, err := svc.Timeline(ctx, "admin-1", "l1")
	require.NoError(t, err)
	require.Len(t, local, 1)
	assert.Equal(t, event.ID, local[0].ID)
	assert.Equal(t, listsBefore, repo.listCalls())
}

func TestAddEventWithoutOpenViewSkipsReload(t *testing.T) {
	repo := &memTimeline{}
	svc := usecase.NewTimelineService(repo)

	_, err := svc.AddEvent(context.Background(), "l1", entity.EventSystem, "Lead recebido pelo site")

	require.NoError(t, err)
	assert.Equal(t, 0, repo.listCalls())
}

// TestAddEventFailureDoesNotRetry - Falha de escrita volta para quem chamou
func TestAddEventFailureDoesNotRetry(t *testing.T) {
	repo := &memTimeline{insertErr: errors.New("unavailable")}
	svc := usecase.NewTimelineService(repo)

	_, err := svc.AddEvent(context.Background(), "l1", entity.EventNote, "nota")

	assert.True(t, entity.IsRemoteError(err))
	assert.Equal(t, 1, repo.inserts)
}

func TestAddEventValidation(t *testing.T) {
	repo := &memTimeline{}
	svc := usecase.NewTimelineService(repo)

	_, err := svc.AddEvent(context.Background(), "l1", entity.TimelineEventType("email"), "x")
	assert.True(t, entity.IsValidationError(err))
	_, err = svc.AddEvent(context.Background(), "l1", entity.EventNote, "   ")
	assert.True(t, entity.IsValidationError(err))
	assert.Equal(t, 0, repo.inserts)
}

// TestAddEventKeepsEventWhenReloadFails - Releitura falhou, evento entra na cópia local
func TestAddEventKeepsEventWhenReloadFails(t *testing.T) {
	repo := &memTimeline{}
	svc := usecase.NewTimelineService(repo)
	ctx := context.Background()
	_, err := svc.OpenView(ctx, "agent-1", "l1")
	require.NoError(t, err)

	repo.mu.Lock()
	repo.listErr = errors.New("read replica lag")
	repo.mu.Unlock()
	event, err := svc.AddEvent(ctx, "l1", entity.EventNote, "nota")

	require.NoError(t, err)
	local, err := svc.Timeline(ctx, "agent-1", "l1")
	require.NoError(t, err)
	require.Len(t, local, 1)
	assert.Equal(t, event.ID, local[0].ID)
}
