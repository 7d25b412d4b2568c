// internal/app/features/addresses/handler.go
package addresses

import (
	"net/http"

	uierrors "github.com/dalemusser/sfahub/internal/app/features/errors"
	addressstore "github.com/dalemusser/sfahub/internal/app/store/addresses"
	"github.com/dalemusser/sfahub/internal/app/system/authz"
	"github.com/dalemusser/sfahub/internal/app/system/htmlsanitize"
	"github.com/dalemusser/sfahub/internal/app/system/inputval"
	"github.com/dalemusser/sfahub/internal/app/system/paging"
	"github.com/dalemusser/sfahub/internal/app/system/timeouts"
	"github.com/dalemusser/sfahub/internal/domain/models"
	"github.com/go-chi/chi/v5"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

const listURL = "/addresses"

type Handler struct {
	DB        *mongo.Database
	Log       *zap.Logger
	Addresses *addressstore.Store
}

func NewHandler(db *mongo.Database, logger *zap.Logger) *Handler {
	return &Handler{DB: db, Log: logger, Addresses: addressstore.New(db)}
}

func actor(w http.ResponseWriter, r *http.Request) (authz.Actor, bool) {
	a, ok := authz.ActorFrom(r)
	if !ok || !a.InWorkspace() {
		uierrors.Redirect(w, r, "/")
		return authz.Actor{}, false
	}
	return a, true
}

func (h *Handler) recordID(w http.ResponseWriter, r *http.Request) (primitive.ObjectID, bool) {
	id, err := primitive.ObjectIDFromHex(chi.URLParam(r, "id"))
	if err != nil {
		uierrors.Handle(w, r, h.Log, addressstore.ErrNotFound, listURL)
		return primitive.NilObjectID, false
	}
	return id, true
}

// decode reads, cleans and validates an address-book entry.
func (h *Handler) decode(w http.ResponseWriter, r *http.Request) (models.Address, bool) {
	var in models.Address
	if err := uierrors.Decode(w, r, &in); err != nil {
		uierrors.Handle(w, r, h.Log, err, listURL)
		return in, false
	}
	addressstore.NormalizeFields(&in)
	htmlsanitize.Fields(&in.Remarks)
	if err := inputval.Validate(&in).Err(); err != nil {
		uierrors.Handle(w, r, h.Log, err, listURL)
		return in, false
	}
	return in, true
}

// ServeList handles GET /addresses. Unrelated entries come first, newest
// first within each group.
func (h *Handler) ServeList(w http.ResponseWriter, r *http.Request) {
	a, ok := actor(w, r)
	if !ok {
		return
	}

	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Medium(), h.Log, "addresses list")
	defer cancel()

	total, err := h.Addresses.Count(ctx, a.WorkspaceID)
	if err != nil {
		uierrors.Handle(w, r, h.Log, err, "/")
		return
	}
	page := paging.Resolve(paging.ParsePage(r), paging.ListPageSize, total)
	rows, err := h.Addresses.List(ctx, a.WorkspaceID, page)
	if err != nil {
		uierrors.Handle(w, r, h.Log, err, "/")
		return
	}
	if rows == nil {
		rows = []models.Address{}
	}
	uierrors.JSON(w, http.StatusOK, map[string]any{"addresses": rows, "page": page})
}

func (h *Handler) ServeAddress(w http.ResponseWriter, r *http.Request) {
	a, ok := actor(w, r)
	if !ok {
		return
	}
	id, ok := h.recordID(w, r)
	if !ok {
		return
	}

	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Short(), h.Log, "address get")
	defer cancel()

	addr, err := h.Addresses.Get(ctx, a.WorkspaceID, id)
	if err != nil {
		uierrors.Handle(w, r, h.Log, err, listURL)
		return
	}
	uierrors.JSON(w, http.StatusOK, addr)
}

func (h *Handler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	a, ok := actor(w, r)
	if !ok {
		return
	}
	in, ok := h.decode(w, r)
	if !ok {
		return
	}

	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Short(), h.Log, "address create")
	defer cancel()

	addr, err := h.Addresses.Create(ctx, in, a.WorkspaceID, a.UserID)
	if err != nil {
		uierrors.Handle(w, r, h.Log, err, listURL)
		return
	}
	w.Header().Set("Location", listURL+"/"+addr.ID.Hex())
	uierrors.JSON(w, http.StatusCreated, addr)
}

func (h *Handler) HandleUpdate(w http.ResponseWriter, r *http.Request) {
	a, ok := actor(w, r)
	if !ok {
		return
	}
	id, ok := h.recordID(w, r)
	if !ok {
		return
	}
	in, ok := h.decode(w, r)
	if !ok {
		return
	}
	in.ID = id
	in.WorkspaceID = a.WorkspaceID

	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Short(), h.Log, "address update")
	defer cancel()

	addr, err := h.Addresses.Update(ctx, in, a.UserID)
	if err != nil {
		uierrors.Handle(w, r, h.Log, err, listURL)
		return
	}
	uierrors.JSON(w, http.StatusOK, addr)
}

// HandleDelete handles DELETE /addresses/{id}. The entry is removed for good.
func (h *Handler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	a, ok := actor(w, r)
	if !ok {
		return
	}
	id, ok := h.recordID(w, r)
	if !ok {
		return
	}

	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Short(), h.Log, "address delete")
	defer cancel()

	if err := h.Addresses.Delete(ctx, a.WorkspaceID, id); err != nil {
		uierrors.Handle(w, r, h.Log, err, listURL)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
