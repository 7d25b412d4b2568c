// internal/app/features/customers/list.go
package customers

import (
	"net/http"

	uierrors "github.com/dalemusser/sfahub/internal/app/features/errors"
	"github.com/dalemusser/sfahub/internal/app/policy/contactpolicy"
	"github.com/dalemusser/sfahub/internal/app/policy/customerpolicy"
	contactstore "github.com/dalemusser/sfahub/internal/app/store/contacts"
	customerstore "github.com/dalemusser/sfahub/internal/app/store/customers"
	"github.com/dalemusser/sfahub/internal/app/system/normalize"
	"github.com/dalemusser/sfahub/internal/app/system/paging"
	"github.com/dalemusser/sfahub/internal/app/system/search"
	"github.com/dalemusser/sfahub/internal/app/system/timeouts"
	"github.com/dalemusser/sfahub/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

var searchParams = search.Params(customerstore.SearchFields)

type listResponse struct {
	Customers []models.Customer      `json:"customers"`
	Page      paging.Page            `json:"page"`
	Breadth   customerpolicy.Breadth `json:"breadth"`
	OrderBy   string                 `json:"order_by"`
	Query     string                 `json:"query"`
}

// ServeList handles GET /customers.
//
// Without search parameters the criteria encoded in "prev" are reused.
// Finished records are hidden unless action_status_ex is sent, even blank.
func (h *Handler) ServeList(w http.ResponseWriter, r *http.Request) {
	a, ok := actor(w, r)
	if !ok {
		return
	}

	q := r.URL.Query()
	crit, encoded := search.Criteria(q, q.Get("prev"), searchParams)
	if _, set := crit["action_status_ex"]; !set && !q.Has("action_status_ex") {
		crit["action_status_ex"] = customerstore.DefaultExcludedStatus
	}
	searchFilter, err := customerstore.SearchFilter(crit)
	if err != nil {
		uierrors.Handle(w, r, h.Log, err, listURL)
		return
	}

	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Medium(), h.Log, "customers list")
	defer cancel()

	breadth := customerpolicy.ParseBreadth(q.Get("breadth"))
	var peers []primitive.ObjectID
	if breadth == customerpolicy.Group {
		if peers, err = h.Memberships.PeersOf(ctx, a.UserID); err != nil {
			uierrors.Handle(w, r, h.Log, err, listURL)
			return
		}
	}

	filter := bson.M{"$and": []bson.M{customerpolicy.Scope(a, breadth, peers), searchFilter}}
	total, err := h.Customers.Count(ctx, filter)
	if err != nil {
		uierrors.Handle(w, r, h.Log, err, listURL)
		return
	}
	page := paging.Resolve(paging.ParsePage(r), paging.ListPageSize, total)

	orderBy := normalize.QueryParam(q.Get("order_by"))
	rows, err := h.Customers.List(ctx, filter, customerpolicy.Ordering(orderBy), page)
	if err != nil {
		uierrors.Handle(w, r, h.Log, err, listURL)
		return
	}
	if rows == nil {
		rows = []models.Customer{}
	}

	uierrors.JSON(w, http.StatusOK, listResponse{
		Customers: rows,
		Page:      page,
		Breadth:   breadth,
		OrderBy:   orderBy,
		Query:     encoded,
	})
}

// ServeDuplicates handles GET /customers/duplicates?tel=... and reports how
// many visible records already carry the number.
func (h *Handler) ServeDuplicates(w http.ResponseWriter, r *http.Request) {
	a, ok := actor(w, r)
	if !ok {
		return
	}
	tel := normalize.Digits(normalize.QueryParam(r.URL.Query().Get("tel")), normalize.Phone)

	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Short(), h.Log, "customers duplicates")
	defer cancel()

	n, err := h.Customers.CountDuplicates(ctx, tel, a)
	if err != nil {
		uierrors.Handle(w, r, h.Log, err, listURL)
		return
	}
	uierrors.JSON(w, http.StatusOK, map[string]any{"tel": tel, "count": n})
}

// ServeMap handles GET /customers/map.
func (h *Handler) ServeMap(w http.ResponseWriter, r *http.Request) {
	a, ok := actor(w, r)
	if !ok {
		return
	}

	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Medium(), h.Log, "customers map")
	defer cancel()

	points, err := h.Customers.MapPoints(ctx, a)
	if err != nil {
		uierrors.Handle(w, r, h.Log, err, listURL)
		return
	}
	if points == nil {
		points = []customerstore.MapPoint{}
	}
	uierrors.JSON(w, http.StatusOK, map[string]any{"points": points})
}

// ServeContacts handles GET /customers/{id}/contacts: the contact history
// of one viewable customer, newest first by default.
func (h *Handler) ServeContacts(w http.ResponseWriter, r *http.Request) {
	a, ok := actor(w, r)
	if !ok {
		return
	}
	id, ok := h.recordID(w, r)
	if !ok {
		return
	}

	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Medium(), h.Log, "customer contacts")
	defer cancel()

	if _, err := h.Customers.GetViewable(ctx, id, a); err != nil {
		uierrors.Handle(w, r, h.Log, err, listURL)
		return
	}

	filter := contactstore.ByCustomer(a, id)
	total, err := h.Contacts.Count(ctx, filter)
	if err != nil {
		uierrors.Handle(w, r, h.Log, err, listURL)
		return
	}
	page := paging.Resolve(paging.ParsePage(r), paging.ListPageSize, total)
	rows, err := h.Contacts.List(ctx, filter, contactpolicy.Ordering(r.URL.Query().Get("order_by")), page)
	if err != nil {
		uierrors.Handle(w, r, h.Log, err, listURL)
		return
	}
	if rows == nil {
		rows = []models.Contact{}
	}
	uierrors.JSON(w, http.StatusOK, map[string]any{"contacts": rows, "page": page})
}
