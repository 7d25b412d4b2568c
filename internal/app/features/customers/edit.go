// internal/app/features/customers/edit.go
package customers

import (
	"net/http"

	uierrors "github.com/dalemusser/sfahub/internal/app/features/errors"
	customerstore "github.com/dalemusser/sfahub/internal/app/store/customers"
	"github.com/dalemusser/sfahub/internal/app/system/htmlsanitize"
	"github.com/dalemusser/sfahub/internal/app/system/inputval"
	"github.com/dalemusser/sfahub/internal/app/system/timeouts"
	"github.com/dalemusser/sfahub/internal/domain/models"
	"go.uber.org/zap"
)

// ServeCustomer handles GET /customers/{id}. Records the actor cannot see
// answer like missing ones.
func (h *Handler) ServeCustomer(w http.ResponseWriter, r *http.Request) {
	a, ok := actor(w, r)
	if !ok {
		return
	}
	id, ok := h.recordID(w, r)
	if !ok {
		return
	}

	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Short(), h.Log, "customer get")
	defer cancel()

	c, err := h.Customers.GetViewable(ctx, id, a)
	if err != nil {
		uierrors.Handle(w, r, h.Log, err, listURL)
		return
	}
	uierrors.JSON(w, http.StatusOK, c)
}

// HandleCreate handles POST /customers.
func (h *Handler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	a, ok := actor(w, r)
	if !ok {
		return
	}

	var in models.Customer
	if err := uierrors.Decode(w, r, &in); err != nil {
		uierrors.Handle(w, r, h.Log, err, listURL)
		return
	}
	if in.PublicStatus == "" {
		in.PublicStatus = models.PublicPrivate
	}
	if in.ActionStatus == "" {
		in.ActionStatus = models.ActionNotStarted
	}
	customerstore.NormalizeFields(&in)
	htmlsanitize.Fields(&in.Remarks)
	if err := inputval.Validate(&in).Err(); err != nil {
		uierrors.Handle(w, r, h.Log, err, listURL)
		return
	}

	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Medium(), h.Log, "customer create")
	defer cancel()

	if err := h.checkSharing(ctx, a, &in); err != nil {
		uierrors.Handle(w, r, h.Log, err, listURL)
		return
	}
	h.locate(ctx, a, &in)

	c, err := h.Customers.Create(ctx, in, a)
	if err != nil {
		uierrors.Handle(w, r, h.Log, err, listURL)
		return
	}
	h.Log.Info("customer created", zap.String("customer_id", c.ID.Hex()), zap.String("actor_id", a.UserID.Hex()))
	w.Header().Set("Location", listURL+"/"+c.ID.Hex())
	uierrors.JSON(w, http.StatusCreated, c)
}

// HandleUpdate handles PUT /customers/{id}. Unset status fields, sales
// person and potential keep their stored values.
func (h *Handler) HandleUpdate(w http.ResponseWriter, r *http.Request) {
	a, ok := actor(w, r)
	if !ok {
		return
	}
	id, ok := h.recordID(w, r)
	if !ok {
		return
	}

	var in models.Customer
	if err := uierrors.Decode(w, r, &in); err != nil {
		uierrors.Handle(w, r, h.Log, err, listURL)
		return
	}

	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Medium(), h.Log, "customer update")
	defer cancel()

	cur, err := h.Customers.GetEditable(ctx, id, a)
	if err != nil {
		uierrors.Handle(w, r, h.Log, err, listURL)
		return
	}
	in.ID = cur.ID
	if in.PublicStatus == "" {
		in.PublicStatus = cur.PublicStatus
	}
	if in.ActionStatus == "" {
		in.ActionStatus = cur.ActionStatus
	}
	if in.SalesPerson == nil {
		in.SalesPerson = cur.SalesPerson
	}
	if in.Potential == 0 {
		in.Potential = cur.Potential
	}
	customerstore.NormalizeFields(&in)
	htmlsanitize.Fields(&in.Remarks)
	if err := inputval.Validate(&in).Err(); err != nil {
		uierrors.Handle(w, r, h.Log, err, listURL)
		return
	}
	if err := h.checkSharing(ctx, a, &in); err != nil {
		uierrors.Handle(w, r, h.Log, err, listURL)
		return
	}
	h.locate(ctx, a, &in)

	c, err := h.Customers.Update(ctx, id, in, a)
	if err != nil {
		uierrors.Handle(w, r, h.Log, err, listURL)
		return
	}
	uierrors.JSON(w, http.StatusOK, c)
}

// HandleDelete handles DELETE /customers/{id}.
func (h *Handler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	a, ok := actor(w, r)
	if !ok {
		return
	}
	id, ok := h.recordID(w, r)
	if !ok {
		return
	}

	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Short(), h.Log, "customer delete")
	defer cancel()

	if err := h.Customers.SoftDelete(ctx, id, a); err != nil {
		uierrors.Handle(w, r, h.Log, err, listURL)
		return
	}
	h.Log.Info("customer deleted", zap.String("customer_id", id.Hex()), zap.String("actor_id", a.UserID.Hex()))
	w.WriteHeader(http.StatusNoContent)
}
