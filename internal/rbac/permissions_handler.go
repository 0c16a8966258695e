package rbac

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/meridian-erp/meridian-erp/internal/platform/httpx"
	"github.com/meridian-erp/meridian-erp/internal/shared"
)

// PermissionsHandler exposes the permission catalogue and per-actor
// effective checks so settings screens can render grant toggles.
type PermissionsHandler struct {
	logger    *slog.Logger
	evaluator *Evaluator
}

// NewPermissionsHandler builds the handler.
func NewPermissionsHandler(logger *slog.Logger, evaluator *Evaluator) *PermissionsHandler {
	return &PermissionsHandler{logger: logger, evaluator: evaluator}
}

// MountRoutes registers permission routes.
func (h *PermissionsHandler) MountRoutes(r chi.Router) {
	r.Get("/permissions", h.listKnown)
	r.Get("/permissions/effective", h.effective)
}

func (h *PermissionsHandler) listKnown(w http.ResponseWriter, r *http.Request) {
	httpx.JSON(w, http.StatusOK, map[string]any{"permissions": KnownPermissions})
}

func (h *PermissionsHandler) effective(w http.ResponseWriter, r *http.Request) {
	actor := shared.ActorFromContext(r.Context())
	if actor == nil {
		httpx.RespondError(w, httpx.ErrUnauthorized)
		return
	}
	granted := make(map[PermissionKey]bool, len(KnownPermissions))
	for _, key := range KnownPermissions {
		granted[key] = h.evaluator.HasPermission(r.Context(), actor, key)
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"permissions": granted})
}
