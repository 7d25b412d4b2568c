// internal/app/features/contacts/edit.go
package contacts

import (
	"context"
	"errors"
	"net/http"
	"time"

	uierrors "github.com/dalemusser/sfahub/internal/app/features/errors"
	"github.com/dalemusser/sfahub/internal/app/policy/contactpolicy"
	customerstore "github.com/dalemusser/sfahub/internal/app/store/customers"
	"github.com/dalemusser/sfahub/internal/app/system/authz"
	"github.com/dalemusser/sfahub/internal/app/system/htmlsanitize"
	"github.com/dalemusser/sfahub/internal/app/system/inputval"
	"github.com/dalemusser/sfahub/internal/app/system/normalize"
	"github.com/dalemusser/sfahub/internal/app/system/timeouts"
	"github.com/dalemusser/sfahub/internal/domain/errs"
	"github.com/dalemusser/sfahub/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

func clean(c *models.Contact) {
	c.TelNumber = normalize.Digits(c.TelNumber, normalize.Phone)
	c.MailAddress = normalize.Email(c.MailAddress)
	htmlsanitize.Fields(&c.TargetPerson, &c.Remarks)
}

// load returns a contact a may edit. Anything else reads as not found or
// denied.
func (h *Handler) load(ctx context.Context, a authz.Actor, id primitive.ObjectID) (models.Contact, error) {
	c, err := h.Contacts.Get(ctx, a.WorkspaceID, id)
	if err != nil {
		return models.Contact{}, err
	}
	cust, err := h.Customers.Get(ctx, a.WorkspaceID, c.CustomerID)
	if errors.Is(err, customerstore.ErrNotFound) {
		return models.Contact{}, errs.ErrNotFound
	}
	if err != nil {
		return models.Contact{}, err
	}
	if !contactpolicy.CanEdit(&c, &cust, a) {
		return models.Contact{}, errs.ErrPermissionDenied
	}
	return c, nil
}

// ServeContact handles GET /contacts/{id}.
func (h *Handler) ServeContact(w http.ResponseWriter, r *http.Request) {
	a, ok := actor(w, r)
	if !ok {
		return
	}
	id, ok := h.recordID(w, r)
	if !ok {
		return
	}

	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Short(), h.Log, "contact get")
	defer cancel()

	c, err := h.Contacts.Get(ctx, a.WorkspaceID, id)
	if err != nil {
		uierrors.Handle(w, r, h.Log, err, listURL)
		return
	}
	cust, err := h.Customers.Get(ctx, a.WorkspaceID, c.CustomerID)
	if err != nil || !contactpolicy.CanView(&c, &cust, a) {
		uierrors.Redirect(w, r, listURL)
		return
	}
	uierrors.JSON(w, http.StatusOK, c)
}

// HandleCreate handles POST /contacts. The actor becomes the operator and
// the matching contact flag is set on the customer.
func (h *Handler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	a, ok := actor(w, r)
	if !ok {
		return
	}

	var in models.Contact
	if err := uierrors.Decode(w, r, &in); err != nil {
		uierrors.Handle(w, r, h.Log, err, listURL)
		return
	}
	clean(&in)
	if err := inputval.Validate(&in).Err(); err != nil {
		uierrors.Handle(w, r, h.Log, err, listURL)
		return
	}
	if in.CustomerID.IsZero() {
		uierrors.Handle(w, r, h.Log, errs.Invalid("customer_id", "Select a customer."), listURL)
		return
	}

	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Medium(), h.Log, "contact create")
	defer cancel()

	cust, err := h.Customers.Get(ctx, a.WorkspaceID, in.CustomerID)
	if err != nil && !errors.Is(err, customerstore.ErrNotFound) {
		uierrors.Handle(w, r, h.Log, err, listURL)
		return
	}
	if err != nil || !contactpolicy.CanAttach(&cust, a) {
		uierrors.Handle(w, r, h.Log, errs.Invalid("customer_id", "Select a customer you can see."), listURL)
		return
	}

	in.WorkspaceID = a.WorkspaceID
	in.OperatorID = a.UserID
	if in.ContactAt.IsZero() {
		in.ContactAt = time.Now().UTC()
	}
	c, err := h.Contacts.Create(ctx, in)
	if err != nil {
		uierrors.Handle(w, r, h.Log, err, listURL)
		return
	}
	h.markCustomer(ctx, c)

	w.Header().Set("Location", listURL+"/"+c.ID.Hex())
	uierrors.JSON(w, http.StatusCreated, c)
}

// HandleUpdate handles PUT /contacts/{id}.
func (h *Handler) HandleUpdate(w http.ResponseWriter, r *http.Request) {
	a, ok := actor(w, r)
	if !ok {
		return
	}
	id, ok := h.recordID(w, r)
	if !ok {
		return
	}

	var in models.Contact
	if err := uierrors.Decode(w, r, &in); err != nil {
		uierrors.Handle(w, r, h.Log, err, listURL)
		return
	}
	clean(&in)
	if err := inputval.Validate(&in).Err(); err != nil {
		uierrors.Handle(w, r, h.Log, err, listURL)
		return
	}

	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Medium(), h.Log, "contact update")
	defer cancel()

	cur, err := h.load(ctx, a, id)
	if err != nil {
		uierrors.Handle(w, r, h.Log, err, listURL)
		return
	}
	in.ID = cur.ID
	in.WorkspaceID = cur.WorkspaceID
	in.CustomerID = cur.CustomerID
	in.OperatorID = cur.OperatorID
	if in.ContactAt.IsZero() {
		in.ContactAt = cur.ContactAt
	}

	c, err := h.Contacts.Update(ctx, in)
	if err != nil {
		uierrors.Handle(w, r, h.Log, err, listURL)
		return
	}
	h.markCustomer(ctx, c)
	uierrors.JSON(w, http.StatusOK, c)
}

// HandleDelete handles DELETE /contacts/{id}.
func (h *Handler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	a, ok := actor(w, r)
	if !ok {
		return
	}
	id, ok := h.recordID(w, r)
	if !ok {
		return
	}

	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Short(), h.Log, "contact delete")
	defer cancel()

	if _, err := h.load(ctx, a, id); err != nil {
		uierrors.Handle(w, r, h.Log, err, listURL)
		return
	}
	if err := h.Contacts.SoftDelete(ctx, a.WorkspaceID, id); err != nil {
		uierrors.Handle(w, r, h.Log, err, listURL)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) markCustomer(ctx context.Context, c models.Contact) {
	if err := h.Customers.MarkContacted(ctx, c.WorkspaceID, c.CustomerID, c.ContactType, c.VisitedFlg); err != nil {
		h.Log.Warn("mark customer contacted",
			zap.String("contact_id", c.ID.Hex()),
			zap.String("customer_id", c.CustomerID.Hex()),
			zap.Error(err))
	}
}
