// internal/app/features/logout/handler.go
package logout

import (
	"net/http"

	"github.com/dalemusser/sfahub/internal/app/system/auditlog"
	"github.com/dalemusser/sfahub/internal/app/system/auth"
	"go.uber.org/zap"
)

type Handler struct {
	Log        *zap.Logger
	SessionMgr *auth.SessionManager
	Audit      *auditlog.Logger
}

func NewHandler(sessionMgr *auth.SessionManager, audit *auditlog.Logger, logger *zap.Logger) *Handler {
	return &Handler{
		Log:        logger,
		SessionMgr: sessionMgr,
		Audit:      audit,
	}
}

func (h *Handler) end(w http.ResponseWriter, r *http.Request) {
	if u, ok := auth.CurrentUser(r); ok {
		h.Audit.Logout(r.Context(), r, u.ID, u.WorkspaceID)
	}
	if err := h.SessionMgr.Logout(w, r); err != nil {
		h.Log.Error("logout: save session", zap.Error(err))
	}
}

// ServeLogout handles GET /logout: clears the session and sends the
// browser home.
func (h *Handler) ServeLogout(w http.ResponseWriter, r *http.Request) {
	h.end(w, r)
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

// HandleLogoutPost handles POST /logout for API clients.
func (h *Handler) HandleLogoutPost(w http.ResponseWriter, r *http.Request) {
	h.end(w, r)
	w.WriteHeader(http.StatusNoContent)
}
