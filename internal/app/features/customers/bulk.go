// internal/app/features/customers/bulk.go
package customers

import (
	"encoding/json"
	"net/http"
	"strconv"

	uierrors "github.com/dalemusser/sfahub/internal/app/features/errors"
	"github.com/dalemusser/sfahub/internal/app/system/bulkaction"
	"github.com/dalemusser/sfahub/internal/app/system/timeouts"
	"github.com/dalemusser/sfahub/internal/domain/errs"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type bulkInput struct {
	IDs    []string    `json:"ids"`
	Action json.Number `json:"action"`
}

// HandleBulk handles POST /customers/bulk. Records the actor cannot edit
// are skipped; the counts travel in X-Bulk-Updated and X-Bulk-Skipped and
// the caller is sent back to the list.
func (h *Handler) HandleBulk(w http.ResponseWriter, r *http.Request) {
	a, ok := actor(w, r)
	if !ok {
		return
	}

	var in bulkInput
	if err := uierrors.Decode(w, r, &in); err != nil {
		uierrors.Handle(w, r, h.Log, err, listURL)
		return
	}
	action, err := bulkaction.ParseAction(in.Action.String())
	if err != nil {
		uierrors.Handle(w, r, h.Log, err, listURL)
		return
	}
	ids := make([]primitive.ObjectID, 0, len(in.IDs))
	for _, s := range in.IDs {
		id, err := primitive.ObjectIDFromHex(s)
		if err != nil {
			uierrors.Handle(w, r, h.Log, errs.Invalid("ids", "Selection contains an invalid record ID."), listURL)
			return
		}
		ids = append(ids, id)
	}
	ids = uniqueIDs(ids)

	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Long(), h.Log, "customers bulk")
	defer cancel()

	sum, err := h.Bulk.Apply(ctx, ids, action, a)
	if err != nil {
		uierrors.Handle(w, r, h.Log, err, listURL)
		return
	}
	w.Header().Set("X-Bulk-Updated", strconv.Itoa(len(sum.Updated)))
	w.Header().Set("X-Bulk-Skipped", strconv.Itoa(len(sum.Skipped)))
	uierrors.Redirect(w, r, listURL)
}
