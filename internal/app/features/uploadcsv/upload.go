// internal/app/features/uploadcsv/upload.go
package uploadcsv

import (
	"encoding/csv"
	"errors"
	"io"
	"mime/multipart"
	"net/http"

	uierrors "github.com/dalemusser/sfahub/internal/app/features/errors"
	"github.com/dalemusser/sfahub/internal/app/system/authz"
	"github.com/dalemusser/sfahub/internal/app/system/csvimport"
	"github.com/dalemusser/sfahub/internal/app/system/csvutil"
	"github.com/dalemusser/sfahub/internal/app/system/timeouts"
	"go.uber.org/zap"
)

func actor(w http.ResponseWriter, r *http.Request) (authz.Actor, bool) {
	a, ok := authz.ActorFrom(r)
	if !ok || !a.InWorkspace() {
		uierrors.Redirect(w, r, "/")
		return authz.Actor{}, false
	}
	return a, true
}

// openUpload limits the body, parses the multipart form and opens the
// "csv" file part. It writes the error response itself.
func (h *Handler) openUpload(w http.ResponseWriter, r *http.Request) (multipart.File, bool) {
	r.Body = http.MaxBytesReader(w, r.Body, csvutil.MaxUploadSize)
	if err := r.ParseMultipartForm(csvutil.MaxUploadSize); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			uierrors.Message(w, http.StatusRequestEntityTooLarge, "CSV file is too large. Maximum size is 5 MB.")
			return nil, false
		}
		uierrors.Message(w, http.StatusBadRequest, "Upload must be multipart/form-data with a \"csv\" file.")
		return nil, false
	}
	file, _, err := r.FormFile("csv")
	if err != nil {
		uierrors.Message(w, http.StatusBadRequest, "CSV file is required.")
		return nil, false
	}
	return file, true
}

// HandleCustomers handles POST /upload_csv/customers.
func (h *Handler) HandleCustomers(w http.ResponseWriter, r *http.Request) {
	a, ok := actor(w, r)
	if !ok {
		return
	}
	file, ok := h.openUpload(w, r)
	if !ok {
		return
	}
	defer file.Close()

	opts, err := customerOptions(r)
	if err != nil {
		uierrors.Handle(w, r, h.Log, err, "/customers")
		return
	}

	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Batch(), h.Log, "customer csv import")
	defer cancel()

	if err := h.checkOverrides(ctx, a, opts); err != nil {
		uierrors.Handle(w, r, h.Log, err, "/customers")
		return
	}
	res, err := h.Importer.ImportCustomers(ctx, file, opts, a)
	h.respond(w, r, res, err, "/customers")
}

// HandleAddresses handles POST /upload_csv/addresses.
func (h *Handler) HandleAddresses(w http.ResponseWriter, r *http.Request) {
	a, ok := actor(w, r)
	if !ok {
		return
	}
	file, ok := h.openUpload(w, r)
	if !ok {
		return
	}
	defer file.Close()

	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Batch(), h.Log, "address csv import")
	defer cancel()

	res, err := h.Importer.ImportAddresses(ctx, file, csvimport.AddressOptions{UTF8: formBool(r, "utf8")}, a)
	h.respond(w, r, res, err, "/addresses")
}

func (h *Handler) respond(w http.ResponseWriter, r *http.Request, res csvimport.Result, err error, listURL string) {
	var parseErr *csv.ParseError
	switch {
	case err == nil:
		uierrors.JSON(w, http.StatusCreated, res)
	case errors.Is(err, csvutil.ErrTooManyRows):
		uierrors.Message(w, http.StatusUnprocessableEntity, "CSV file has too many rows. The limit is 20000.")
	case errors.Is(err, csvimport.ErrEmpty), errors.Is(err, io.ErrUnexpectedEOF):
		uierrors.Message(w, http.StatusUnprocessableEntity, "CSV file is empty.")
	case errors.As(err, &parseErr):
		uierrors.JSON(w, http.StatusUnprocessableEntity, map[string]any{
			"message": "CSV file could not be parsed.",
			"row":     parseErr.StartLine,
		})
	case errors.Is(err, csvimport.ErrTransactionsUnavailable):
		h.Log.Error("csv import refused", zap.Error(err))
		uierrors.Message(w, http.StatusServiceUnavailable, "Imports are unavailable: the database does not support transactions.")
	default:
		uierrors.Handle(w, r, h.Log, err, listURL)
	}
}
