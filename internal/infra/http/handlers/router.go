package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/xavierca1/imob-crm/internal/infra/http/middleware"
)

type Router struct {
	Leads       *LeadHandler
	Pipeline    *PipelineHandler
	Detail      *DetailHandler
	Health      *HealthHandler
	CORSOrigins []string
}

func (rt Router) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(chimw.Logger)
	r.Use(chimw.Recoverer)
	r.Use(middleware.Metrics)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: rt.CORSOrigins,
		AllowedMethods: []string{"GET", "POST", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders: []string{"Content-Type", "X-User-ID", "X-User-Role", "X-User-Name"},
	}))

	if rt.Health != nil {
		r.Get("/health", rt.Health.Handle)
	}
	r.Handle("/metrics", promhttp.Handler())
	r.Post("/public/leads", rt.Leads.CaptureLead)

	r.Group(func(r chi.Router) {
		r.Use(middleware.Viewer)

		r.Get("/leads", rt.Pipeline.ListLeads)
		r.Get("/leads/stream", rt.Pipeline.Stream)
		r.Patch("/leads/{id}", rt.Pipeline.PatchLead)
		r.Patch("/leads/{id}/status", rt.Pipeline.UpdateStatus)
		r.Patch("/leads/{id}/value", rt.Pipeline.UpdateValue)

		r.Get("/leads/{id}", rt.Detail.GetLead)
		r.Delete("/leads/{id}/view", rt.Detail.CloseLead)
		r.Get("/leads/{id}/timeline", rt.Detail.GetTimeline)
		r.Post("/leads/{id}/timeline", rt.Detail.AddTimelineLog)
		r.Post("/leads/{id}/messages", rt.Detail.SendTemplate)
		r.Post("/leads/{id}/tasks", rt.Detail.AddTask)
		r.Patch("/tasks/{taskId}", rt.Detail.SetTaskCompleted)
		r.Get("/templates", rt.Detail.ListTemplates)
	})

	return r
}
