// internal/app/features/settings/workspace.go
package settings

import (
	"net/http"

	uierrors "github.com/dalemusser/sfahub/internal/app/features/errors"
	"github.com/dalemusser/sfahub/internal/app/policy/workspacepolicy"
	"github.com/dalemusser/sfahub/internal/app/system/authz"
	"github.com/dalemusser/sfahub/internal/app/system/htmlsanitize"
	"github.com/dalemusser/sfahub/internal/app/system/inputval"
	"github.com/dalemusser/sfahub/internal/app/system/timeouts"
	"github.com/dalemusser/sfahub/internal/domain/models"
	"go.uber.org/zap"
)

type environmentInput struct {
	IPPhoneCallURL string `json:"ip_phone_call_url" validate:"omitempty,max=512,httpurl" label:"IP phone URL"`
	MapsJSAPIKey   string `json:"maps_js_api_key" validate:"max=128" label:"Maps JavaScript API key"`
	GeocodeAPIKey  string `json:"geocode_api_key" validate:"max=128" label:"Geocoding API key"`
	WebhookURL1    string `json:"webhook_url1" validate:"omitempty,max=512,httpurl" label:"Webhook URL 1"`
	WebhookURL2    string `json:"webhook_url2" validate:"omitempty,max=512,httpurl" label:"Webhook URL 2"`
	WebhookURL3    string `json:"webhook_url3" validate:"omitempty,max=512,httpurl" label:"Webhook URL 3"`
}

type displayInput struct {
	OptionalCode1Name   string `json:"optional_code1_display_name" validate:"max=512" label:"Optional code 1 name"`
	OptionalCode1Active bool   `json:"optional_code1_active"`
	OptionalCode2Name   string `json:"optional_code2_display_name" validate:"max=512" label:"Optional code 2 name"`
	OptionalCode2Active bool   `json:"optional_code2_active"`
	OptionalCode3Name   string `json:"optional_code3_display_name" validate:"max=512" label:"Optional code 3 name"`
	OptionalCode3Active bool   `json:"optional_code3_active"`
}

// ownerOnly writes the refusal for a non-owner save.
func (h *Handler) ownerOnly(w http.ResponseWriter, r *http.Request, a authz.Actor) bool {
	if err := workspacepolicy.CanEditSettings(a); err != nil {
		h.Log.Info("settings save refused", zap.String("user_id", a.UserID.Hex()), zap.String("role", string(a.Role)))
		uierrors.Message(w, http.StatusForbidden, "Only the workspace owner can change these settings.")
		return false
	}
	return true
}

// ServeEnvironment handles GET /settings/environment. The geocoding key is
// server-side only and is shown to owners alone.
func (h *Handler) ServeEnvironment(w http.ResponseWriter, r *http.Request) {
	a, ok := actor(w, r)
	if !ok {
		return
	}
	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Short(), h.Log, "environment get")
	defer cancel()

	s, err := h.Settings.Get(ctx, a.WorkspaceID)
	if err != nil {
		uierrors.Handle(w, r, h.Log, err, "/")
		return
	}
	env := s.Environment
	if workspacepolicy.CanEditSettings(a) != nil {
		env.GeocodeAPIKey = ""
	}
	uierrors.JSON(w, http.StatusOK, env)
}

// HandleEnvironment handles PUT /settings/environment.
func (h *Handler) HandleEnvironment(w http.ResponseWriter, r *http.Request) {
	a, ok := actor(w, r)
	if !ok || !h.ownerOnly(w, r, a) {
		return
	}
	var in environmentInput
	if err := uierrors.Decode(w, r, &in); err != nil {
		uierrors.Handle(w, r, h.Log, err, "/settings/environment")
		return
	}
	if err := inputval.Validate(&in).Err(); err != nil {
		uierrors.Handle(w, r, h.Log, err, "/settings/environment")
		return
	}

	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Short(), h.Log, "environment save")
	defer cancel()

	env := models.EnvironmentSetting(in)
	if err := h.Settings.SaveEnvironment(ctx, a.WorkspaceID, env, a.UserID); err != nil {
		uierrors.Handle(w, r, h.Log, err, "/settings/environment")
		return
	}
	uierrors.JSON(w, http.StatusOK, env)
}

// ServeDisplay handles GET /settings/display.
func (h *Handler) ServeDisplay(w http.ResponseWriter, r *http.Request) {
	a, ok := actor(w, r)
	if !ok {
		return
	}
	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Short(), h.Log, "display get")
	defer cancel()

	s, err := h.Settings.Get(ctx, a.WorkspaceID)
	if err != nil {
		uierrors.Handle(w, r, h.Log, err, "/")
		return
	}
	uierrors.JSON(w, http.StatusOK, s.Display)
}

// HandleDisplay handles PUT /settings/display.
func (h *Handler) HandleDisplay(w http.ResponseWriter, r *http.Request) {
	a, ok := actor(w, r)
	if !ok || !h.ownerOnly(w, r, a) {
		return
	}
	var in displayInput
	if err := uierrors.Decode(w, r, &in); err != nil {
		uierrors.Handle(w, r, h.Log, err, "/settings/display")
		return
	}
	htmlsanitize.Fields(&in.OptionalCode1Name, &in.OptionalCode2Name, &in.OptionalCode3Name)
	if err := inputval.Validate(&in).Err(); err != nil {
		uierrors.Handle(w, r, h.Log, err, "/settings/display")
		return
	}

	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Short(), h.Log, "display save")
	defer cancel()

	disp := models.DisplaySetting(in)
	if err := h.Settings.SaveDisplay(ctx, a.WorkspaceID, disp, a.UserID); err != nil {
		uierrors.Handle(w, r, h.Log, err, "/settings/display")
		return
	}
	uierrors.JSON(w, http.StatusOK, disp)
}
