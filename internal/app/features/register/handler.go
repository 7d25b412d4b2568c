// internal/app/features/register/handler.go
package register

import (
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	uierrors "github.com/dalemusser/sfahub/internal/app/features/errors"
	userstore "github.com/dalemusser/sfahub/internal/app/store/users"
	"github.com/dalemusser/sfahub/internal/app/system/auditlog"
	"github.com/dalemusser/sfahub/internal/app/system/inputval"
	"github.com/dalemusser/sfahub/internal/app/system/mailer"
	"github.com/dalemusser/sfahub/internal/app/system/timeouts"
	"github.com/dalemusser/sfahub/internal/app/system/token"
	"github.com/dalemusser/sfahub/internal/domain/errs"
	"github.com/dalemusser/sfahub/internal/domain/models"
	"github.com/go-chi/chi/v5"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

// Options controls self sign-up.
type Options struct {
	Enabled     bool          // register_new_user
	BaseURL     string        // prefix for emailed links
	TokenMaxAge time.Duration // activation link lifetime
}

type Handler struct {
	DB     *mongo.Database
	Log    *zap.Logger
	Users  *userstore.Store
	Signer *token.Signer
	Mailer mailer.Mailer
	Audit  *auditlog.Logger
	Opts   Options
}

func NewHandler(db *mongo.Database, signer *token.Signer, m mailer.Mailer, audit *auditlog.Logger, opts Options, logger *zap.Logger) *Handler {
	return &Handler{
		DB:     db,
		Log:    logger,
		Users:  userstore.New(db),
		Signer: signer,
		Mailer: m,
		Audit:  audit,
		Opts:   opts,
	}
}

type registerInput struct {
	Email     string `json:"email" validate:"required,email,max=254" label:"Email"`
	Password  string `json:"password" validate:"required,min=8,max=128" label:"Password"`
	FirstName string `json:"first_name" validate:"required,max=30" label:"First name"`
	LastName  string `json:"last_name" validate:"required,max=150" label:"Last name"`
}

// HandleRegister handles POST /register. The account stays inactive until
// the emailed activation link is used.
func (h *Handler) HandleRegister(w http.ResponseWriter, r *http.Request) {
	if !h.Opts.Enabled {
		uierrors.Message(w, http.StatusNotFound, "Sign-up is not available.")
		return
	}

	var in registerInput
	if err := uierrors.Decode(w, r, &in); err != nil {
		uierrors.Handle(w, r, h.Log, err, "/register")
		return
	}
	if err := inputval.Validate(&in).Err(); err != nil {
		uierrors.Handle(w, r, h.Log, err, "/register")
		return
	}

	hash, err := userstore.HashPassword(in.Password)
	if err != nil {
		uierrors.Handle(w, r, h.Log, err, "/register")
		return
	}

	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Medium(), h.Log, "register")
	defer cancel()

	u, err := h.Users.Create(ctx, models.User{
		Email:        in.Email,
		FirstName:    in.FirstName,
		LastName:     in.LastName,
		PasswordHash: hash,
		Role:         models.RoleGeneral,
		IsActive:     false,
	})
	if errors.Is(err, userstore.ErrDuplicateEmail) {
		uierrors.Handle(w, r, h.Log, errs.Invalid("email", "This email address is already registered."), "/register")
		return
	}
	if err != nil {
		uierrors.Handle(w, r, h.Log, err, "/register")
		return
	}

	tok, err := h.Signer.Sign(u.ID.Hex(), token.SaltActivation)
	if err != nil {
		uierrors.Handle(w, r, h.Log, err, "/register")
		return
	}
	link := strings.TrimRight(h.Opts.BaseURL, "/") + "/register/activate/" + url.PathEscape(tok)
	if err := h.Mailer.Send(ctx, mailer.ActivationEmail(u.Email, link, ExpiresIn(h.Opts.TokenMaxAge))); err != nil {
		h.Log.Error("register: send activation mail", zap.String("user_id", u.ID.Hex()), zap.Error(err))
		uierrors.Message(w, http.StatusBadGateway, "Your account was created but the activation email could not be sent.")
		return
	}

	h.Audit.UserRegistered(ctx, r, u.ID)
	uierrors.JSON(w, http.StatusCreated, map[string]any{"id": u.ID.Hex(), "email": u.Email})
}

// HandleActivate handles GET /register/activate/{token}.
func (h *Handler) HandleActivate(w http.ResponseWriter, r *http.Request) {
	payload, err := h.Signer.Verify(chi.URLParam(r, "token"), token.SaltActivation, h.Opts.TokenMaxAge)
	if err != nil {
		uierrors.Handle(w, r, h.Log, err, "/register")
		return
	}
	id, err := primitive.ObjectIDFromHex(payload)
	if err != nil {
		uierrors.Handle(w, r, h.Log, errs.ErrTokenInvalid, "/register")
		return
	}

	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Short(), h.Log, "activate account")
	defer cancel()

	switch err := h.Users.Activate(ctx, id); {
	case errors.Is(err, errs.ErrInvalidTransition):
		// Already active, or the user no longer exists.
		uierrors.Message(w, http.StatusBadRequest, "This account is already active.")
		return
	case err != nil:
		uierrors.Handle(w, r, h.Log, err, "/register")
		return
	}

	h.Audit.AccountActivated(ctx, r, id)
	uierrors.JSON(w, http.StatusOK, map[string]any{"activated": true})
}

// ExpiresIn phrases a link lifetime for an email body.
func ExpiresIn(d time.Duration) string {
	switch {
	case d <= 0:
		return "a while"
	case d%(24*time.Hour) == 0:
		return plural(int(d/(24*time.Hour)), "day")
	case d%time.Hour == 0:
		return plural(int(d/time.Hour), "hour")
	case d%time.Minute == 0:
		return plural(int(d/time.Minute), "minute")
	}
	return d.String()
}

func plural(n int, unit string) string {
	if n == 1 {
		return "1 " + unit
	}
	return fmt.Sprintf("%d %ss", n, unit)
}
