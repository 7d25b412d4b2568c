// internal/app/store/audit/store.go
package audit

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// Event categories
const (
	CategoryAuth       = "auth"
	CategoryMembership = "membership"
)

// Auth event types
const (
	EventLoginSuccess     = "login_success"
	EventLoginFailed      = "login_failed"
	EventLoginRateLimited = "login_rate_limited"
	EventLogout           = "logout"
	EventUserRegistered   = "user_registered"
	EventAccountActivated = "account_activated"
	EventInviteConfirmed  = "invite_confirmed"
)

// Membership event types
const (
	EventWorkspaceCreated = "workspace_created"
	EventWorkspaceRenamed = "workspace_renamed"
	EventJoinRequested    = "join_requested"
	EventMemberAccepted   = "member_accepted"
	EventMemberRejected   = "member_rejected"
	EventMemberReleased   = "member_released"
	EventRoleChanged      = "role_changed"
	EventUserInvited      = "user_invited"
	EventGroupCreated     = "group_created"
	EventGroupUpdated     = "group_updated"
	EventGroupMembersSet  = "group_members_set"
)

// Event is one audit record.
type Event struct {
	ID          primitive.ObjectID  `bson:"_id,omitempty"`
	Timestamp   time.Time           `bson:"timestamp"`
	WorkspaceID *primitive.ObjectID `bson:"workspace_id,omitempty"`

	Category  string `bson:"category"`
	EventType string `bson:"event_type"`

	ActorID  *primitive.ObjectID `bson:"actor_id,omitempty"`  // who acted
	TargetID *primitive.ObjectID `bson:"target_id,omitempty"` // user or group acted on

	IP        string `bson:"ip"`
	UserAgent string `bson:"user_agent,omitempty"`

	Success       bool   `bson:"success"`
	FailureReason string `bson:"failure_reason,omitempty"`

	Details map[string]string `bson:"details,omitempty"`
}

// QueryFilter narrows Query. Zero fields are ignored.
type QueryFilter struct {
	WorkspaceID *primitive.ObjectID
	TargetID    *primitive.ObjectID
	Category    string
	EventType   string
	Since       *time.Time
	Until       *time.Time // exclusive
	Limit       int64
	Offset      int64
}

func (f QueryFilter) doc() bson.M {
	q := bson.M{}
	if f.WorkspaceID != nil {
		q["workspace_id"] = *f.WorkspaceID
	}
	if f.TargetID != nil {
		q["target_id"] = *f.TargetID
	}
	if f.Category != "" {
		q["category"] = f.Category
	}
	if f.EventType != "" {
		q["event_type"] = f.EventType
	}
	ts := bson.M{}
	if f.Since != nil {
		ts["$gte"] = *f.Since
	}
	if f.Until != nil {
		ts["$lt"] = *f.Until
	}
	if len(ts) > 0 {
		q["timestamp"] = ts
	}
	return q
}

type Store struct {
	c *mongo.Collection
}

func New(db *mongo.Database) *Store {
	return &Store{c: db.Collection("audit_events")}
}

// Log records an audit event.
func (s *Store) Log(ctx context.Context, event Event) error {
	if event.ID.IsZero() {
		event.ID = primitive.NewObjectID()
	}
	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now().UTC()
	}
	_, err := s.c.InsertOne(ctx, event)
	return err
}

// Query returns matching events, newest first. Limit defaults to 100.
func (s *Store) Query(ctx context.Context, f QueryFilter) ([]Event, error) {
	limit := f.Limit
	if limit <= 0 {
		limit = 100
	}
	cur, err := s.c.Find(ctx, f.doc(), options.Find().
		SetSort(bson.D{{Key: "timestamp", Value: -1}, {Key: "_id", Value: -1}}).
		SetSkip(f.Offset).
		SetLimit(limit))
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var events []Event
	if err := cur.All(ctx, &events); err != nil {
		return nil, err
	}
	return events, nil
}

// Count returns how many events match f. Limit and Offset are ignored.
func (s *Store) Count(ctx context.Context, f QueryFilter) (int64, error) {
	return s.c.CountDocuments(ctx, f.doc())
}
