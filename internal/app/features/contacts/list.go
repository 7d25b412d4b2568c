// internal/app/features/contacts/list.go
package contacts

import (
	"net/http"

	uierrors "github.com/dalemusser/sfahub/internal/app/features/errors"
	"github.com/dalemusser/sfahub/internal/app/policy/contactpolicy"
	contactstore "github.com/dalemusser/sfahub/internal/app/store/contacts"
	"github.com/dalemusser/sfahub/internal/app/system/normalize"
	"github.com/dalemusser/sfahub/internal/app/system/paging"
	"github.com/dalemusser/sfahub/internal/app/system/timeouts"
	"github.com/dalemusser/sfahub/internal/app/system/timezones"
	"github.com/dalemusser/sfahub/internal/domain/errs"
	"github.com/dalemusser/sfahub/internal/domain/models"
)

// ServeList handles GET /contacts: the actor's own contacts.
func (h *Handler) ServeList(w http.ResponseWriter, r *http.Request) {
	a, ok := actor(w, r)
	if !ok {
		return
	}

	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Medium(), h.Log, "contacts list")
	defer cancel()

	filter := contactstore.ByOperator(a)
	total, err := h.Contacts.Count(ctx, filter)
	if err != nil {
		uierrors.Handle(w, r, h.Log, err, "/")
		return
	}
	page := paging.Resolve(paging.ParsePage(r), paging.ListPageSize, total)
	orderBy := normalize.QueryParam(r.URL.Query().Get("order_by"))
	rows, err := h.Contacts.List(ctx, filter, contactpolicy.Ordering(orderBy), page)
	if err != nil {
		uierrors.Handle(w, r, h.Log, err, "/")
		return
	}
	if rows == nil {
		rows = []models.Contact{}
	}
	uierrors.JSON(w, http.StatusOK, map[string]any{"contacts": rows, "page": page, "order_by": orderBy})
}

// ServeVisits handles GET /contacts/visits?date=YYYY-MM-DD. The date
// defaults to today in the handler's zone.
func (h *Handler) ServeVisits(w http.ResponseWriter, r *http.Request) {
	a, ok := actor(w, r)
	if !ok {
		return
	}

	date := h.today()
	if raw := normalize.QueryParam(r.URL.Query().Get("date")); raw != "" {
		d, ok := timezones.ParseDate(raw)
		if !ok {
			uierrors.Handle(w, r, h.Log, errs.Invalid("date", "Enter a date as YYYY-MM-DD."), listURL)
			return
		}
		date = d
	}

	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Short(), h.Log, "contacts visits")
	defer cancel()

	rows, err := h.Contacts.Visits(ctx, a, date)
	if err != nil {
		uierrors.Handle(w, r, h.Log, err, listURL)
		return
	}
	if rows == nil {
		rows = []models.Contact{}
	}
	uierrors.JSON(w, http.StatusOK, map[string]any{"date": date, "visits": rows})
}

// ServeCounts handles GET /contacts/counts?from=...&to=... Both bounds are
// inclusive dates. A missing from means the first of the current month; a
// missing to means today.
func (h *Handler) ServeCounts(w http.ResponseWriter, r *http.Request) {
	a, ok := actor(w, r)
	if !ok {
		return
	}

	q := r.URL.Query()
	today := h.today()
	from, to := normalize.QueryParam(q.Get("from")), normalize.QueryParam(q.Get("to"))
	if from == "" {
		from = today[:len("2006-01")] + "-01"
	}
	if to == "" {
		to = today
	}
	start, end, ok := timezones.DayRange(from, to, h.Location)
	if !ok {
		uierrors.Handle(w, r, h.Log, errs.Invalid("from", "Enter a valid date range."), listURL)
		return
	}
	p := contactstore.Period{
		From:  start.Format(timezones.DateLayout),
		To:    end.AddDate(0, 0, -1).Format(timezones.DateLayout),
		Start: start.UTC(),
		End:   end.UTC(),
	}

	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Short(), h.Log, "contacts counts")
	defer cancel()

	counts, err := h.Contacts.CountActivity(ctx, a, p)
	if err != nil {
		uierrors.Handle(w, r, h.Log, err, listURL)
		return
	}
	uierrors.JSON(w, http.StatusOK, struct {
		From string `json:"from"`
		To   string `json:"to"`
		contactstore.Counts
	}{p.From, p.To, counts})
}
