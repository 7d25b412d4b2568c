// internal/app/features/settings/goal.go
package settings

import (
	"net/http"

	uierrors "github.com/dalemusser/sfahub/internal/app/features/errors"
	"github.com/dalemusser/sfahub/internal/app/system/inputval"
	"github.com/dalemusser/sfahub/internal/app/system/timeouts"
)

type goalInput struct {
	OutboundCount int `json:"outbound_count" validate:"min=0,max=100000" label:"Outbound calls"`
	VisitCount    int `json:"visit_count" validate:"min=0,max=100000" label:"Visits"`
}

// ServeGoal handles GET /settings/goal.
func (h *Handler) ServeGoal(w http.ResponseWriter, r *http.Request) {
	a, ok := actor(w, r)
	if !ok {
		return
	}
	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Short(), h.Log, "goal get")
	defer cancel()

	g, err := h.Settings.GetGoal(ctx, a.UserID)
	if err != nil {
		uierrors.Handle(w, r, h.Log, err, "/")
		return
	}
	uierrors.JSON(w, http.StatusOK, g)
}

// HandleGoal handles PUT /settings/goal.
func (h *Handler) HandleGoal(w http.ResponseWriter, r *http.Request) {
	a, ok := actor(w, r)
	if !ok {
		return
	}
	var in goalInput
	if err := uierrors.Decode(w, r, &in); err != nil {
		uierrors.Handle(w, r, h.Log, err, "/settings/goal")
		return
	}
	if err := inputval.Validate(&in).Err(); err != nil {
		uierrors.Handle(w, r, h.Log, err, "/settings/goal")
		return
	}

	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Short(), h.Log, "goal save")
	defer cancel()

	g, err := h.Settings.SaveGoal(ctx, a.UserID, in.OutboundCount, in.VisitCount)
	if err != nil {
		uierrors.Handle(w, r, h.Log, err, "/settings/goal")
		return
	}
	uierrors.JSON(w, http.StatusOK, g)
}
