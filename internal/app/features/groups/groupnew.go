// internal/app/features/groups/groupnew.go
package groups

import (
	"errors"
	"net/http"

	uierrors "github.com/dalemusser/sfahub/internal/app/features/errors"
	groupstore "github.com/dalemusser/sfahub/internal/app/store/groups"
	"github.com/dalemusser/sfahub/internal/app/system/inputval"
	"github.com/dalemusser/sfahub/internal/app/system/timeouts"
	"github.com/dalemusser/sfahub/internal/domain/errs"
	"github.com/dalemusser/sfahub/internal/domain/models"
)

type groupInput struct {
	Name string `json:"name" validate:"required,max=255" label:"Group name"`
}

func (h *Handler) decode(w http.ResponseWriter, r *http.Request) (groupInput, bool) {
	var in groupInput
	if err := uierrors.Decode(w, r, &in); err != nil {
		uierrors.Handle(w, r, h.Log, err, listURL)
		return in, false
	}
	if err := inputval.Validate(&in).Err(); err != nil {
		uierrors.Handle(w, r, h.Log, err, listURL)
		return in, false
	}
	return in, true
}

var errDuplicateName = errs.Invalid("name", "A group with this name already exists.")

// HandleCreate handles POST /groups.
func (h *Handler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	a, ok := actor(w, r)
	if !ok {
		return
	}
	in, ok := h.decode(w, r)
	if !ok {
		return
	}

	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Short(), h.Log, "group create")
	defer cancel()

	g, err := h.Groups.Create(ctx, models.Group{
		WorkspaceID: a.WorkspaceID,
		Name:        in.Name,
		CreatedBy:   &a.UserID,
		UpdatedBy:   &a.UserID,
	})
	if errors.Is(err, groupstore.ErrDuplicateGroupName) {
		err = errDuplicateName
	}
	if err != nil {
		uierrors.Handle(w, r, h.Log, err, listURL)
		return
	}

	h.Audit.GroupCreated(ctx, r, a, g)
	w.Header().Set("Location", listURL+"/"+g.ID.Hex())
	uierrors.JSON(w, http.StatusCreated, g)
}
