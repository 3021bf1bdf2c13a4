package handlers

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/xavierca1/imob-crm/internal/entity"
	"github.com/xavierca1/imob-crm/internal/usecase"
)

// PipelineHandler expõe o quadro kanban do funil.
type PipelineHandler struct {
	Stores    *usecase.StoreRegistry
	Heartbeat time.Duration
}

func NewPipelineHandler(stores *usecase.StoreRegistry) *PipelineHandler {
	return &PipelineHandler{Stores: stores, Heartbeat: 25 * time.Second}
}

type BoardColumn struct {
	Status entity.LeadStatus `json:"status"`
	Label  string            `json:"label"`
	Total  float64           `json:"total"`
	Leads  []entity.Lead     `json:"leads"`
}

type BoardResponse struct {
	Loading bool          `json:"loading"`
	Columns []BoardColumn `json:"columns"`
	Lost    []entity.Lead `json:"lost"`
}

// BuildBoard agrupa os leads nas colunas do funil; Total soma o valor estimado.
func BuildBoard(snap usecase.LeadsSnapshot) BoardResponse {
	board := BoardResponse{Loading: snap.Loading, Lost: []entity.Lead{}}
	index := make(map[entity.LeadStatus]int, len(entity.PipelineColumns))
	for i, status := range entity.PipelineColumns {
		index[status] = i
		board.Columns = append(board.Columns, BoardColumn{Status: status, Label: status.Label(), Leads: []entity.Lead{}})
	}

	for _, lead := range snap.Leads {
		if lead.Status == entity.StatusLost {
			board.Lost = append(board.Lost, lead)
			continue
		}
		i, ok := index[lead.Status]
		if !ok {
			continue
		}
		col := &board.Columns[i]
		col.Leads = append(col.Leads, lead)
		switch {
		case lead.Status == entity.StatusClosed && lead.DealValue != nil:
			col.Total += *lead.DealValue
		case lead.Value != nil:
			col.Total += *lead.Value
		}
	}
	return board
}

// ListLeads (GET /leads?refresh=true)
func (h *PipelineHandler) ListLeads(w http.ResponseWriter, r *http.Request) {
	viewer, ok := viewerOrUnauthorized(w, r)
	if !ok {
		return
	}
	store := h.Stores.For(viewer)

	var err error
	if refresh, _ := strconv.ParseBool(r.URL.Query().Get("refresh")); refresh {
		err = store.Refresh(r.Context(), viewer)
	} else {
		err = store.EnsureLoaded(r.Context(), viewer)
	}
	if err != nil {
		writeDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, BuildBoard(store.Snapshot()))
}

// Stream (GET /leads/stream) envia o quadro inteiro a cada mudança, via SSE.
func (h *PipelineHandler) Stream(w http.ResponseWriter, r *http.Request) {
	viewer, ok := viewerOrUnauthorized(w, r)
	if !ok {
		return
	}
	flusher, ok := w.(http.Flusher)
	if !ok {
		writeErrorResponse(w, http.StatusInternalServerError, "streaming_unsupported", "streaming não suportado")
		return
	}

	store := h.Stores.For(viewer)
	if err := store.EnsureLoaded(r.Context(), viewer); err != nil {
		writeDomainError(w, err)
		return
	}

	updates := make(chan usecase.LeadsSnapshot, 16)
	unsubscribe := store.Subscribe(func(snap usecase.LeadsSnapshot) {
		select {
		case updates <- snap:
		default:
			// cliente lento: descarta, o próximo snapshot é completo
		}
	})
	defer unsubscribe()

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.WriteHeader(http.StatusOK)

	if err := writeBoardEvent(w, store.Snapshot()); err != nil {
		return
	}
	flusher.Flush()

	heartbeat := time.NewTicker(h.Heartbeat)
	defer heartbeat.Stop()

	for {
		select {
		case <-r.Context().Done():
			return
		case snap := <-updates:
			if err := writeBoardEvent(w, snap); err != nil {
				return
			}
			flusher.Flush()
		case <-heartbeat.C:
			if _, err := fmt.Fprint(w, ": ping\n\n"); err != nil {
				return
			}
			flusher.Flush()
		}
	}
}

func writeBoardEvent(w http.ResponseWriter, snap usecase.LeadsSnapshot) error {
	data, err := json.Marshal(BuildBoard(snap))
	if err != nil {
		return err
	}
	_, err = fmt.Fprintf(w, "event: board\ndata: %s\n\n", data)
	return err
}

type UpdateStatusRequest struct {
	Status    string   `json:"status"`
	DealValue *float64 `json:"deal_value"`
	Reason    string   `json:"reason"`
}

// UpdateStatus (PATCH /leads/{id}/status) aceita a chave ou o rótulo em português.
func (h *PipelineHandler) UpdateStatus(w http.ResponseWriter, r *http.Request) {
	viewer, ok := viewerOrUnauthorized(w, r)
	if !ok {
		return
	}
	leadID := chi.URLParam(r, "id")

	var req UpdateStatusRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	target, err := entity.ParseLeadStatus(req.Status)
	if err != nil {
		writeDomainError(w, err)
		return
	}

	store := h.Stores.For(viewer)
	if _, err := store.Lookup(r.Context(), viewer, leadID); err != nil {
		writeDomainError(w, err)
		return
	}

	intent := entity.TransitionIntent{LeadID: leadID, Target: target, DealValue: req.DealValue, Reason: req.Reason}
	if err := store.ApplyIntent(r.Context(), intent); err != nil {
		writeDomainError(w, err)
		return
	}
	h.writeLead(w, store, leadID)
}

type UpdateValueRequest struct {
	Value *float64 `json:"value"`
}

// UpdateValue (PATCH /leads/{id}/value); null limpa o valor.
func (h *PipelineHandler) UpdateValue(w http.ResponseWriter, r *http.Request) {
	viewer, ok := viewerOrUnauthorized(w, r)
	if !ok {
		return
	}
	leadID := chi.URLParam(r, "id")

	var req UpdateValueRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	store := h.Stores.For(viewer)
	if _, err := store.Lookup(r.Context(), viewer, leadID); err != nil {
		writeDomainError(w, err)
		return
	}
	if err := store.UpdateLeadValue(r.Context(), leadID, req.Value); err != nil {
		writeDomainError(w, err)
		return
	}
	h.writeLead(w, store, leadID)
}

// PatchLead (PATCH /leads/{id})
func (h *PipelineHandler) PatchLead(w http.ResponseWriter, r *http.Request) {
	viewer, ok := viewerOrUnauthorized(w, r)
	if !ok {
		return
	}
	leadID := chi.URLParam(r, "id")

	var patch entity.LeadPatch
	if !decodeJSON(w, r, &patch) {
		return
	}
	if patch.AssignedAgentID != nil && !viewer.IsAdmin() {
		writeErrorResponse(w, http.StatusForbidden, "forbidden", "só administradores redistribuem leads")
		return
	}

	store := h.Stores.For(viewer)
	if _, err := store.Lookup(r.Context(), viewer, leadID); err != nil {
		writeDomainError(w, err)
		return
	}
	if err := store.PatchLead(r.Context(), leadID, patch); err != nil {
		writeDomainError(w, err)
		return
	}
	h.writeLead(w, store, leadID)
}

func (h *PipelineHandler) writeLead(w http.ResponseWriter, store *usecase.LeadStore, leadID string) {
	lead, ok := store.Lead(leadID)
	if !ok {
		writeDomainError(w, &entity.NotFoundError{Resource: "lead", ID: leadID})
		return
	}
	writeJSON(w, http.StatusOK, lead)
}
