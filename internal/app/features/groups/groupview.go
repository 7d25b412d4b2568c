// internal/app/features/groups/groupview.go
package groups

import (
	"net/http"

	uierrors "github.com/dalemusser/sfahub/internal/app/features/errors"
	"github.com/dalemusser/sfahub/internal/app/system/timeouts"
	"github.com/dalemusser/sfahub/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type groupView struct {
	models.Group
	MemberIDs []primitive.ObjectID `json:"member_ids"`
}

// ServeGroup handles GET /groups/{id}.
func (h *Handler) ServeGroup(w http.ResponseWriter, r *http.Request) {
	a, ok := actor(w, r)
	if !ok {
		return
	}
	id, ok := h.groupID(w, r)
	if !ok {
		return
	}

	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Short(), h.Log, "group get")
	defer cancel()

	g, err := h.Groups.Get(ctx, a.WorkspaceID, id)
	if err != nil {
		uierrors.Handle(w, r, h.Log, err, listURL)
		return
	}
	members, err := h.Memberships.MemberIDs(ctx, g.ID)
	if err != nil {
		uierrors.Handle(w, r, h.Log, err, listURL)
		return
	}
	if members == nil {
		members = []primitive.ObjectID{}
	}
	uierrors.JSON(w, http.StatusOK, groupView{Group: g, MemberIDs: members})
}
