// internal/app/features/groups/list.go
package groups

import (
	"net/http"

	uierrors "github.com/dalemusser/sfahub/internal/app/features/errors"
	"github.com/dalemusser/sfahub/internal/app/system/paging"
	"github.com/dalemusser/sfahub/internal/app/system/timeouts"
	"github.com/dalemusser/sfahub/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type listResponse struct {
	Groups []models.Group `json:"groups"`
	paging.Result
	Prev string `json:"prev,omitempty"`
	Next string `json:"next,omitempty"`
}

// ServeList handles GET /groups: the workspace's groups by name, ten at a
// time, navigated with the before/after cursors.
func (h *Handler) ServeList(w http.ResponseWriter, r *http.Request) {
	a, ok := actor(w, r)
	if !ok {
		return
	}

	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Medium(), h.Log, "groups list")
	defer cancel()

	before, after := paging.ParseCursors(r)
	cfg := paging.ConfigureKeyset(before, after, paging.SmallPageSize)
	rows, res, err := h.Groups.List(ctx, a.WorkspaceID, cfg)
	if err != nil {
		uierrors.Handle(w, r, h.Log, err, "/")
		return
	}
	if rows == nil {
		rows = []models.Group{}
	}

	out := listResponse{Groups: rows, Result: res}
	prev, next := paging.BuildCursors(rows,
		func(g models.Group) string { return g.NameCI },
		func(g models.Group) primitive.ObjectID { return g.ID })
	if res.HasPrev {
		out.Prev = prev
	}
	if res.HasNext {
		out.Next = next
	}
	uierrors.JSON(w, http.StatusOK, out)
}

// ServeOptions handles GET /groups/options: every group of the workspace,
// for sharing pickers.
func (h *Handler) ServeOptions(w http.ResponseWriter, r *http.Request) {
	a, ok := actor(w, r)
	if !ok {
		return
	}

	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Short(), h.Log, "group options")
	defer cancel()

	rows, err := h.Groups.ListAll(ctx, a.WorkspaceID)
	if err != nil {
		uierrors.Handle(w, r, h.Log, err, "/")
		return
	}
	opts := make([]map[string]any, 0, len(rows))
	for _, g := range rows {
		opts = append(opts, map[string]any{"id": g.ID, "name": g.Name})
	}
	uierrors.JSON(w, http.StatusOK, map[string]any{"groups": opts})
}
