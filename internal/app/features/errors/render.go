// internal/app/features/errors/render.go
package errors

import (
	"encoding/json"
	stderrors "errors"
	"io"
	"net/http"

	"github.com/dalemusser/sfahub/internal/domain/errs"
	"go.uber.org/zap"
)

// MaxJSONBody caps request bodies read by Decode.
const MaxJSONBody = 1 << 20

// JSON writes v with the given status.
func JSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// Message writes {"message": msg}.
func Message(w http.ResponseWriter, status int, msg string) {
	JSON(w, status, map[string]string{"message": msg})
}

// Redirect answers with 303 See Other.
func Redirect(w http.ResponseWriter, r *http.Request, to string) {
	http.Redirect(w, r, to, http.StatusSeeOther)
}

// Decode reads a JSON request body into v. A malformed body is returned
// as a ValidationError on the "body" field.
func Decode(w http.ResponseWriter, r *http.Request, v any) error {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, MaxJSONBody))
	if err := dec.Decode(v); err != nil && !stderrors.Is(err, io.EOF) {
		return errs.Invalid("body", "Request body is not valid JSON.")
	}
	return nil
}

// Handle maps err onto a response:
//   - *errs.ValidationError: 422 with messages by field
//   - errs.ErrNotFound, errs.ErrPermissionDenied: 303 to listURL
//   - import errors: 422 with the failing row
//   - token errors: 400
//   - errs.ErrInvalidTransition: 409
//   - anything else: logged, 500
func Handle(w http.ResponseWriter, r *http.Request, log *zap.Logger, err error, listURL string) {
	var (
		ve       *errs.ValidationError
		mismatch *errs.ImportColumnMismatch
		rowErr   *errs.ImportRowError
	)
	switch {
	case stderrors.As(err, &mismatch):
		JSON(w, http.StatusUnprocessableEntity, map[string]any{"message": mismatch.Error(), "row": mismatch.Row})
	case stderrors.As(err, &rowErr):
		body := map[string]any{"message": rowErr.Error(), "row": rowErr.Row}
		if stderrors.As(rowErr.Err, &ve) {
			body["errors"] = ve.ByField()
		}
		JSON(w, http.StatusUnprocessableEntity, body)
	case stderrors.As(err, &ve):
		JSON(w, http.StatusUnprocessableEntity, map[string]any{"message": "Please correct the highlighted fields.", "errors": ve.ByField()})
	case stderrors.Is(err, errs.ErrNotFound), stderrors.Is(err, errs.ErrPermissionDenied):
		Redirect(w, r, listURL)
	case stderrors.Is(err, errs.ErrTokenExpired), stderrors.Is(err, errs.ErrTokenInvalid):
		Message(w, http.StatusBadRequest, "This link is invalid or has expired.")
	case stderrors.Is(err, errs.ErrInvalidTransition):
		Message(w, http.StatusConflict, "That change does not apply to this user's current state.")
	default:
		if log == nil {
			log = zap.L()
		}
		log.Error("request failed", zap.String("path", r.URL.Path), zap.Error(err))
		Message(w, http.StatusInternalServerError, "Something went wrong.")
	}
}
