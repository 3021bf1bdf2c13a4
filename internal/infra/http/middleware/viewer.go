package middleware

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"

	"github.com/xavierca1/imob-crm/internal/entity"
)

type viewerKey struct{}

// Viewer lê a identidade repassada pelo gateway de autenticação.
func Viewer(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		viewer := entity.Viewer{
			ID:   strings.TrimSpace(r.Header.Get("X-User-ID")),
			Name: strings.TrimSpace(r.Header.Get("X-User-Name")),
			Role: entity.Role(strings.ToLower(strings.TrimSpace(r.Header.Get("X-User-Role")))),
		}
		if viewer.Role == "" {
			viewer.Role = entity.RoleAgent
		}
		if err := viewer.Validate(); err != nil {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusUnauthorized)
			json.NewEncoder(w).Encode(map[string]string{
				"error":   "unauthorized",
				"message": err.Error(),
			})
			return
		}
		next.ServeHTTP(w, r.WithContext(WithViewer(r.Context(), viewer)))
	})
}

func WithViewer(ctx context.Context, viewer entity.Viewer) context.Context {
	return context.WithValue(ctx, viewerKey{}, viewer)
}

func ViewerFrom(ctx context.Context) (entity.Viewer, bool) {
	v, ok := ctx.Value(viewerKey{}).(entity.Viewer)
	return v, ok
}
