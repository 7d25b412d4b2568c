// internal/domain/models/settings.go
package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// GoalSetting holds a user's own activity targets (one per user).
type GoalSetting struct {
	ID            primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	UserID        primitive.ObjectID `bson:"user_id" json:"user_id"`
	OutboundCount int                `bson:"outbound_count" json:"outbound_count"`
	VisitCount    int                `bson:"visit_count" json:"visit_count"`
	UpdatedAt     time.Time          `bson:"updated_at" json:"updated_at"`
}

// WorkspaceSettings is the per-workspace configuration edited by the owner.
// One document per workspace_id holds both the environment block and the
// customer display block.
type WorkspaceSettings struct {
	ID          primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	WorkspaceID primitive.ObjectID `bson:"workspace_id" json:"workspace_id"`

	Environment EnvironmentSetting `bson:"environment" json:"environment"`
	Display     DisplaySetting     `bson:"display" json:"display"`

	UpdatedAt   time.Time           `bson:"updated_at" json:"updated_at"`
	UpdatedByID *primitive.ObjectID `bson:"updated_by_id,omitempty" json:"updated_by_id,omitempty"`
}

// EnvironmentSetting holds integration endpoints and API keys.
type EnvironmentSetting struct {
	IPPhoneCallURL string `bson:"ip_phone_call_url" json:"ip_phone_call_url"`
	MapsJSAPIKey   string `bson:"maps_js_api_key" json:"maps_js_api_key"`
	GeocodeAPIKey  string `bson:"geocode_api_key" json:"geocode_api_key"`
	WebhookURL1    string `bson:"webhook_url1" json:"webhook_url1"`
	WebhookURL2    string `bson:"webhook_url2" json:"webhook_url2"`
	WebhookURL3    string `bson:"webhook_url3" json:"webhook_url3"`
}

// DisplaySetting names and toggles the three optional customer codes.
type DisplaySetting struct {
	OptionalCode1Name   string `bson:"optional_code1_display_name" json:"optional_code1_display_name"`
	OptionalCode1Active bool   `bson:"optional_code1_active" json:"optional_code1_active"`
	OptionalCode2Name   string `bson:"optional_code2_display_name" json:"optional_code2_display_name"`
	OptionalCode2Active bool   `bson:"optional_code2_active" json:"optional_code2_active"`
	OptionalCode3Name   string `bson:"optional_code3_display_name" json:"optional_code3_display_name"`
	OptionalCode3Active bool   `bson:"optional_code3_active" json:"optional_code3_active"`
}

// DefaultDisplay is used until the owner saves a display setting: every
// optional code is shown under a generic name.
func DefaultDisplay() DisplaySetting {
	return DisplaySetting{
		OptionalCode1Name: "Optional code 1", OptionalCode1Active: true,
		OptionalCode2Name: "Optional code 2", OptionalCode2Active: true,
		OptionalCode3Name: "Optional code 3", OptionalCode3Active: true,
	}
}
