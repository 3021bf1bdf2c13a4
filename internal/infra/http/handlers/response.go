package handlers

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"

	"github.com/xavierca1/imob-crm/internal/entity"
	"github.com/xavierca1/imob-crm/internal/infra/http/middleware"
)

type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
	Field   string `json:"field,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(body)
}

func writeErrorResponse(w http.ResponseWriter, status int, code, message string) {
	writeJSON(w, status, ErrorResponse{Error: code, Message: message})
}

// writeDomainError traduz os erros de domínio para status HTTP.
func writeDomainError(w http.ResponseWriter, err error) {
	var validation *entity.ValidationError
	var notFound *entity.NotFoundError
	var remote *entity.RemoteError

	switch {
	case errors.As(err, &validation):
		writeJSON(w, http.StatusUnprocessableEntity, ErrorResponse{
			Error:   "validation_error",
			Message: validation.Message,
			Field:   validation.Field,
		})
	case errors.As(err, &notFound):
		writeErrorResponse(w, http.StatusNotFound, "not_found", notFound.Error())
	case errors.As(err, &remote):
		log.Printf("❌ Falha remota em %s: %v", remote.Op, remote.Err)
		writeErrorResponse(w, http.StatusBadGateway, "remote_error", "Falha ao falar com o servidor: "+remote.Op)
	default:
		log.Printf("❌ Erro inesperado: %v", err)
		writeErrorResponse(w, http.StatusInternalServerError, "internal_error", "Erro interno")
	}
}

func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) bool {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		writeErrorResponse(w, http.StatusBadRequest, "invalid_json", "JSON inválido")
		return false
	}
	return true
}

func viewerOrUnauthorized(w http.ResponseWriter, r *http.Request) (entity.Viewer, bool) {
	viewer, ok := middleware.ViewerFrom(r.Context())
	if !ok {
		writeErrorResponse(w, http.StatusUnauthorized, "unauthorized", "viewer ausente")
	}
	return viewer, ok
}
