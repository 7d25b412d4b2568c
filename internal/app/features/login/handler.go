// internal/app/features/login/handler.go
package login

import (
	"errors"
	"net/http"

	uierrors "github.com/dalemusser/sfahub/internal/app/features/errors"
	userstore "github.com/dalemusser/sfahub/internal/app/store/users"
	"github.com/dalemusser/sfahub/internal/app/system/auditlog"
	"github.com/dalemusser/sfahub/internal/app/system/auth"
	"github.com/dalemusser/sfahub/internal/app/system/inputval"
	"github.com/dalemusser/sfahub/internal/app/system/ratelimit"
	"github.com/dalemusser/sfahub/internal/app/system/timeouts"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

type Handler struct {
	DB         *mongo.Database
	Log        *zap.Logger
	SessionMgr *auth.SessionManager
	Users      *userstore.Store
	Limiter    *ratelimit.LoginLimiter
	Audit      *auditlog.Logger
}

// NewHandler wires the login handler. limiter and audit may be nil.
func NewHandler(db *mongo.Database, sessionMgr *auth.SessionManager, limiter *ratelimit.LoginLimiter, audit *auditlog.Logger, logger *zap.Logger) *Handler {
	return &Handler{
		DB:         db,
		Log:        logger,
		SessionMgr: sessionMgr,
		Users:      userstore.New(db),
		Limiter:    limiter,
		Audit:      audit,
	}
}

type loginInput struct {
	Email    string `json:"email" validate:"required,email,max=254" label:"Email"`
	Password string `json:"password" validate:"required,max=128" label:"Password"`
}

// ServeLogin handles GET /login and reports who, if anyone, is signed in.
func (h *Handler) ServeLogin(w http.ResponseWriter, r *http.Request) {
	u, ok := auth.CurrentUser(r)
	if !ok {
		uierrors.JSON(w, http.StatusOK, map[string]any{"signed_in": false})
		return
	}
	uierrors.JSON(w, http.StatusOK, map[string]any{
		"signed_in": true,
		"user": map[string]any{
			"id":                  u.ID,
			"name":                u.Name,
			"email":               u.Email,
			"role":                u.Role,
			"workspace_id":        u.WorkspaceID,
			"is_workspace_active": u.WorkspaceActive,
		},
	})
}

// HandleLoginPost handles POST /login with {"email", "password"}.
func (h *Handler) HandleLoginPost(w http.ResponseWriter, r *http.Request) {
	var in loginInput
	if err := uierrors.Decode(w, r, &in); err != nil {
		uierrors.Handle(w, r, h.Log, err, "/login")
		return
	}
	if err := inputval.Validate(&in).Err(); err != nil {
		uierrors.Handle(w, r, h.Log, err, "/login")
		return
	}

	if h.Limiter != nil {
		if block := h.Limiter.Check(r, in.Email); block != ratelimit.BlockNone {
			h.Audit.LoginRateLimited(r.Context(), r, in.Email)
			w.Header().Set("Retry-After", "60")
			uierrors.Message(w, http.StatusTooManyRequests, "Too many login attempts. Please wait a few minutes and try again.")
			return
		}
	}

	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Short(), h.Log, "login")
	defer cancel()

	userID, err := h.Users.Authenticate(ctx, in.Email, in.Password)
	switch {
	case errors.Is(err, userstore.ErrBadCredentials):
		h.Audit.LoginFailed(ctx, r, in.Email, "bad credentials")
		uierrors.Message(w, http.StatusUnauthorized, "Invalid email or password.")
		return
	case errors.Is(err, userstore.ErrInactive):
		h.Audit.LoginFailed(ctx, r, in.Email, "account inactive")
		uierrors.Message(w, http.StatusForbidden, "This account has not been activated yet.")
		return
	case err != nil:
		uierrors.Handle(w, r, h.Log, err, "/login")
		return
	}

	if err := h.SessionMgr.Login(w, r, userID); err != nil {
		h.Log.Error("login: save session", zap.String("user_id", userID), zap.Error(err))
		uierrors.Message(w, http.StatusInternalServerError, "Something went wrong.")
		return
	}
	if h.Limiter != nil {
		h.Limiter.ResetEmail(in.Email)
	}

	oid, _ := primitive.ObjectIDFromHex(userID)
	u, err := h.Users.GetByID(ctx, oid)
	if err != nil {
		h.Log.Warn("login: reload user", zap.String("user_id", userID), zap.Error(err))
		uierrors.JSON(w, http.StatusOK, map[string]any{"id": userID})
		return
	}
	h.Audit.LoginSuccess(ctx, r, u)
	uierrors.JSON(w, http.StatusOK, u)
}
