// internal/app/features/groups/groupedit.go
package groups

import (
	"errors"
	"net/http"

	uierrors "github.com/dalemusser/sfahub/internal/app/features/errors"
	groupstore "github.com/dalemusser/sfahub/internal/app/store/groups"
	"github.com/dalemusser/sfahub/internal/app/system/timeouts"
)

// HandleUpdate handles PUT /groups/{id}.
func (h *Handler) HandleUpdate(w http.ResponseWriter, r *http.Request) {
	a, ok := actor(w, r)
	if !ok {
		return
	}
	id, ok := h.groupID(w, r)
	if !ok {
		return
	}
	in, ok := h.decode(w, r)
	if !ok {
		return
	}

	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Short(), h.Log, "group update")
	defer cancel()

	err := h.Groups.Rename(ctx, a.WorkspaceID, id, in.Name, a.UserID)
	if errors.Is(err, groupstore.ErrDuplicateGroupName) {
		err = errDuplicateName
	}
	if err != nil {
		uierrors.Handle(w, r, h.Log, err, listURL)
		return
	}

	g, err := h.Groups.Get(ctx, a.WorkspaceID, id)
	if err != nil {
		uierrors.Handle(w, r, h.Log, err, listURL)
		return
	}
	h.Audit.GroupUpdated(ctx, r, a, g)
	uierrors.JSON(w, http.StatusOK, g)
}
