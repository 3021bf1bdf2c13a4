package handlers

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/xavierca1/imob-crm/internal/entity"
	"github.com/xavierca1/imob-crm/internal/usecase"
)

type DetailHandler struct {
	DetailUC  *usecase.LeadDetailUseCase
	Templates entity.TemplateRepositoryInterface
}

func NewDetailHandler(detailUC *usecase.LeadDetailUseCase, templates entity.TemplateRepositoryInterface) *DetailHandler {
	return &DetailHandler{DetailUC: detailUC, Templates: templates}
}

// GetLead (GET /leads/{id})
func (h *DetailHandler) GetLead(w http.ResponseWriter, r *http.Request) {
	viewer, ok := viewerOrUnauthorized(w, r)
	if !ok {
		return
	}

	detail, err := h.DetailUC.FetchFullLeadData(r.Context(), viewer, chi.URLParam(r, "id"))
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, detail)
}

// CloseLead (DELETE /leads/{id}/view) encerra o detalhe aberto pelo viewer.
func (h *DetailHandler) CloseLead(w http.ResponseWriter, r *http.Request) {
	viewer, ok := viewerOrUnauthorized(w, r)
	if !ok {
		return
	}
	h.DetailUC.CloseLeadView(viewer, chi.URLParam(r, "id"))
	w.WriteHeader(http.StatusNoContent)
}

// GetTimeline (GET /leads/{id}/timeline)
func (h *DetailHandler) GetTimeline(w http.ResponseWriter, r *http.Request) {
	viewer, ok := viewerOrUnauthorized(w, r)
	if !ok {
		return
	}

	events, err := h.DetailUC.LeadTimeline(r.Context(), viewer, chi.URLParam(r, "id"))
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, events)
}

type AddTimelineRequest struct {
	Type        string `json:"type"`
	Description string `json:"description"`
}

// AddTimelineLog (POST /leads/{id}/timeline)
func (h *DetailHandler) AddTimelineLog(w http.ResponseWriter, r *http.Request) {
	viewer, ok := viewerOrUnauthorized(w, r)
	if !ok {
		return
	}

	var req AddTimelineRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	eventType := entity.TimelineEventType(req.Type)
	if eventType == "" {
		eventType = entity.EventNote
	}

	event, err := h.DetailUC.AddTimelineLog(r.Context(), viewer, chi.URLParam(r, "id"), eventType, req.Description)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, event)
}

type SendTemplateRequest struct {
	TemplateID string `json:"template_id"`
}

type SendTemplateResponse struct {
	*usecase.SendTemplateResult
	Warnings []string `json:"warnings,omitempty"`
}

// SendTemplate (POST /leads/{id}/messages)
func (h *DetailHandler) SendTemplate(w http.ResponseWriter, r *http.Request) {
	viewer, ok := viewerOrUnauthorized(w, r)
	if !ok {
		return
	}

	var req SendTemplateRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if req.TemplateID == "" {
		writeDomainError(w, &entity.ValidationError{Field: "template_id", Message: "is required"})
		return
	}

	result, err := h.DetailUC.SendTemplate(r.Context(), viewer, chi.URLParam(r, "id"), req.TemplateID)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, SendTemplateResponse{SendTemplateResult: result, Warnings: result.Warnings()})
}

type AddTaskRequest struct {
	Title   string    `json:"title"`
	DueDate time.Time `json:"due_date"`
}

// AddTask (POST /leads/{id}/tasks)
func (h *DetailHandler) AddTask(w http.ResponseWriter, r *http.Request) {
	viewer, ok := viewerOrUnauthorized(w, r)
	if !ok {
		return
	}

	var req AddTaskRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	task, err := h.DetailUC.AddTask(r.Context(), viewer, chi.URLParam(r, "id"), req.Title, req.DueDate)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, task)
}

type SetTaskRequest struct {
	Completed bool `json:"completed"`
}

// SetTaskCompleted (PATCH /tasks/{taskId})
func (h *DetailHandler) SetTaskCompleted(w http.ResponseWriter, r *http.Request) {
	viewer, ok := viewerOrUnauthorized(w, r)
	if !ok {
		return
	}

	var req SetTaskRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	task, err := h.DetailUC.SetTaskCompleted(r.Context(), viewer, chi.URLParam(r, "taskId"), req.Completed)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, task)
}

// ListTemplates (GET /templates)
func (h *DetailHandler) ListTemplates(w http.ResponseWriter, r *http.Request) {
	templates, err := h.Templates.ListActive(r.Context())
	if err != nil {
		writeDomainError(w, entity.NewRemoteError("listar templates", err))
		return
	}
	if templates == nil {
		templates = []entity.MessageTemplate{}
	}
	writeJSON(w, http.StatusOK, templates)
}
