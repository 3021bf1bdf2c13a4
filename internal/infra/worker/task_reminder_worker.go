package worker

import (
	"context"
	"log"
	"time"

	"github.com/xavierca1/imob-crm/internal/entity"
)

type timelineWriter interface {
	AddEvent(ctx context.Context, leadID string, eventType entity.TimelineEventType, description string) (*entity.TimelineEvent, error)
}

// TaskReminderWorker varre tarefas vencidas e deixa um aviso na timeline do lead.
// Cada tarefa é lembrada uma vez só.
type TaskReminderWorker struct {
	tasks        entity.TaskRepositoryInterface
	timeline     timelineWriter
	tickInterval time.Duration
	now          func() time.Time
}

func NewTaskReminderWorker(tasks entity.TaskRepositoryInterface, timeline timelineWriter, tickInterval time.Duration) *TaskReminderWorker {
	if tickInterval <= 0 {
		tickInterval = time.Minute
	}
	return &TaskReminderWorker{
		tasks:        tasks,
		timeline:     timeline,
		tickInterval: tickInterval,
		now:          time.Now,
	}
}

func (w *TaskReminderWorker) Start(ctx context.Context) {
	log.Printf("🕒 Task Reminder Worker iniciado (a cada %s)", w.tickInterval)

	ticker := time.NewTicker(w.tickInterval)
	defer ticker.Stop()

	w.sweep(ctx)

	for {
		select {
		case <-ctx.Done():
			log.Println("⚠️ Task Reminder Worker encerrado")
			return
		case <-ticker.C:
			w.sweep(ctx)
		}
	}
}

func (w *TaskReminderWorker) sweep(ctx context.Context) int {
	overdue, err := w.tasks.ClaimOverdue(ctx, w.now())
	if err != nil {
		log.Printf("❌ Erro ao buscar tarefas atrasadas: %v", err)
		return 0
	}

	reminded := 0
	for _, task := range overdue {
		if _, err := w.timeline.AddEvent(ctx, task.LeadID, entity.EventSystem, "Tarefa atrasada: "+task.Title); err != nil {
			log.Printf("⚠️ Lembrete da tarefa %s não registrado: %v", task.ID, err)
			continue
		}
		reminded++
	}

	if reminded > 0 {
		log.Printf("⏰ %d tarefa(s) atrasada(s) registradas na timeline", reminded)
	}
	return reminded
}
