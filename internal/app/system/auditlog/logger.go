// internal/app/system/auditlog/logger.go
package auditlog

import (
	"context"
	"net/http"
	"strconv"

	"github.com/dalemusser/sfahub/internal/app/store/audit"
	"github.com/dalemusser/sfahub/internal/app/system/authz"
	"github.com/dalemusser/sfahub/internal/app/system/ratelimit"
	"github.com/dalemusser/sfahub/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

// Destinations for a category of events.
const (
	ModeAll = "all" // MongoDB + zap
	ModeDB  = "db"
	ModeLog = "log"
	ModeOff = "off"
)

// ValidMode reports whether m is one of the destinations above.
func ValidMode(m string) bool {
	switch m {
	case ModeAll, ModeDB, ModeLog, ModeOff:
		return true
	}
	return false
}

// Config picks a destination per category.
type Config struct {
	Auth       string
	Membership string
}

// Logger writes audit events to zap and, when configured, to the
// audit_events collection. A nil *Logger is a no-op.
type Logger struct {
	store  *audit.Store
	zapLog *zap.Logger
	config Config
}

// New creates a Logger. store may be nil when no category uses the db.
func New(store *audit.Store, zapLog *zap.Logger, config Config) *Logger {
	if zapLog == nil {
		zapLog = zap.L()
	}
	return &Logger{store: store, zapLog: zapLog, config: config}
}

func (l *Logger) logToZap(event audit.Event) {
	fields := []zap.Field{
		zap.Bool("audit", true),
		zap.String("category", event.Category),
		zap.String("event_type", event.EventType),
		zap.Bool("success", event.Success),
		zap.String("ip", event.IP),
	}
	if event.ActorID != nil {
		fields = append(fields, zap.String("actor_id", event.ActorID.Hex()))
	}
	if event.TargetID != nil {
		fields = append(fields, zap.String("target_id", event.TargetID.Hex()))
	}
	if event.WorkspaceID != nil {
		fields = append(fields, zap.String("workspace_id", event.WorkspaceID.Hex()))
	}
	if event.FailureReason != "" {
		fields = append(fields, zap.String("failure_reason", event.FailureReason))
	}
	for k, v := range event.Details {
		fields = append(fields, zap.String("detail_"+k, v))
	}

	if event.Success {
		l.zapLog.Info("audit event", fields...)
	} else {
		l.zapLog.Warn("audit event", fields...)
	}
}

// Log records event according to the category's mode. Unknown categories
// go everywhere.
func (l *Logger) Log(ctx context.Context, event audit.Event) {
	if l == nil {
		return
	}

	mode := ModeAll
	switch event.Category {
	case audit.CategoryAuth:
		mode = l.config.Auth
	case audit.CategoryMembership:
		mode = l.config.Membership
	}
	if mode == ModeOff {
		return
	}

	if mode == ModeAll || mode == ModeLog || l.store == nil {
		l.logToZap(event)
	}
	if (mode == ModeAll || mode == ModeDB) && l.store != nil {
		if err := l.store.Log(ctx, event); err != nil {
			l.zapLog.Error("failed to store audit event",
				zap.Error(err),
				zap.String("event_type", event.EventType))
		}
	}
}

func idPtr(id primitive.ObjectID) *primitive.ObjectID {
	if id.IsZero() {
		return nil
	}
	return &id
}

func wsPtr(id *primitive.ObjectID) *primitive.ObjectID {
	if id == nil || id.IsZero() {
		return nil
	}
	return id
}

func base(r *http.Request, category, typ string) audit.Event {
	e := audit.Event{Category: category, EventType: typ, Success: true}
	if r != nil {
		e.IP = ratelimit.ClientIP(r)
		e.UserAgent = r.UserAgent()
	}
	return e
}

// --- Authentication ---

// LoginSuccess logs a password login.
func (l *Logger) LoginSuccess(ctx context.Context, r *http.Request, u models.User) {
	e := base(r, audit.CategoryAuth, audit.EventLoginSuccess)
	e.ActorID = idPtr(u.ID)
	e.WorkspaceID = wsPtr(u.WorkspaceID)
	l.Log(ctx, e)
}

// LoginFailed logs a rejected login. reason is never shown to the caller.
func (l *Logger) LoginFailed(ctx context.Context, r *http.Request, email, reason string) {
	e := base(r, audit.CategoryAuth, audit.EventLoginFailed)
	e.Success = false
	e.FailureReason = reason
	e.Details = map[string]string{"email": email}
	l.Log(ctx, e)
}

// LoginRateLimited logs a login refused by the rate limiter.
func (l *Logger) LoginRateLimited(ctx context.Context, r *http.Request, email string) {
	e := base(r, audit.CategoryAuth, audit.EventLoginRateLimited)
	e.Success = false
	e.FailureReason = "rate limit exceeded"
	e.Details = map[string]string{"email": email}
	l.Log(ctx, e)
}

// Logout logs a sign-out. IDs come from the session as hex strings.
func (l *Logger) Logout(ctx context.Context, r *http.Request, userIDHex, workspaceIDHex string) {
	e := base(r, audit.CategoryAuth, audit.EventLogout)
	if id, err := primitive.ObjectIDFromHex(userIDHex); err == nil {
		e.ActorID = &id
	}
	if id, err := primitive.ObjectIDFromHex(workspaceIDHex); err == nil {
		e.WorkspaceID = &id
	}
	l.Log(ctx, e)
}

// UserRegistered logs a self sign-up.
func (l *Logger) UserRegistered(ctx context.Context, r *http.Request, userID primitive.ObjectID) {
	e := base(r, audit.CategoryAuth, audit.EventUserRegistered)
	e.TargetID = idPtr(userID)
	l.Log(ctx, e)
}

// AccountActivated logs an activation link being used.
func (l *Logger) AccountActivated(ctx context.Context, r *http.Request, userID primitive.ObjectID) {
	e := base(r, audit.CategoryAuth, audit.EventAccountActivated)
	e.TargetID = idPtr(userID)
	l.Log(ctx, e)
}

// InviteConfirmed logs an invited user completing their account.
func (l *Logger) InviteConfirmed(ctx context.Context, r *http.Request, u models.User) {
	e := base(r, audit.CategoryAuth, audit.EventInviteConfirmed)
	e.TargetID = idPtr(u.ID)
	e.WorkspaceID = wsPtr(u.WorkspaceID)
	l.Log(ctx, e)
}

// --- Membership ---

func (l *Logger) membership(ctx context.Context, r *http.Request, typ string, a authz.Actor, target primitive.ObjectID, details map[string]string) {
	e := base(r, audit.CategoryMembership, typ)
	e.ActorID = idPtr(a.UserID)
	e.TargetID = idPtr(target)
	e.WorkspaceID = idPtr(a.WorkspaceID)
	e.Details = details
	l.Log(ctx, e)
}

// WorkspaceCreated logs a new workspace; the creator is its first owner.
func (l *Logger) WorkspaceCreated(ctx context.Context, r *http.Request, userID primitive.ObjectID, ws models.Workspace) {
	e := base(r, audit.CategoryMembership, audit.EventWorkspaceCreated)
	e.ActorID = idPtr(userID)
	e.WorkspaceID = idPtr(ws.ID)
	e.Details = map[string]string{"name": ws.Name}
	l.Log(ctx, e)
}

// WorkspaceRenamed logs an owner renaming the workspace.
func (l *Logger) WorkspaceRenamed(ctx context.Context, r *http.Request, a authz.Actor, name string) {
	l.membership(ctx, r, audit.EventWorkspaceRenamed, a, primitive.NilObjectID, map[string]string{"name": name})
}

// JoinRequested logs an unaffiliated user asking to join ws.
func (l *Logger) JoinRequested(ctx context.Context, r *http.Request, userID, ws primitive.ObjectID) {
	e := base(r, audit.CategoryMembership, audit.EventJoinRequested)
	e.ActorID = idPtr(userID)
	e.TargetID = idPtr(userID)
	e.WorkspaceID = idPtr(ws)
	l.Log(ctx, e)
}

// MemberAccepted logs a pending member being confirmed.
func (l *Logger) MemberAccepted(ctx context.Context, r *http.Request, a authz.Actor, target primitive.ObjectID) {
	l.membership(ctx, r, audit.EventMemberAccepted, a, target, nil)
}

// MemberRejected logs a join request being turned down.
func (l *Logger) MemberRejected(ctx context.Context, r *http.Request, a authz.Actor, target primitive.ObjectID) {
	l.membership(ctx, r, audit.EventMemberRejected, a, target, nil)
}

// MemberReleased logs an active member being removed.
func (l *Logger) MemberReleased(ctx context.Context, r *http.Request, a authz.Actor, target primitive.ObjectID) {
	l.membership(ctx, r, audit.EventMemberReleased, a, target, nil)
}

// RoleChanged logs a role update.
func (l *Logger) RoleChanged(ctx context.Context, r *http.Request, a authz.Actor, target primitive.ObjectID, from, to models.Role) {
	l.membership(ctx, r, audit.EventRoleChanged, a, target, map[string]string{"from": string(from), "to": string(to)})
}

// UserInvited logs an invitation being sent.
func (l *Logger) UserInvited(ctx context.Context, r *http.Request, a authz.Actor, target primitive.ObjectID, email string) {
	l.membership(ctx, r, audit.EventUserInvited, a, target, map[string]string{"email": email})
}

// GroupCreated logs a new group.
func (l *Logger) GroupCreated(ctx context.Context, r *http.Request, a authz.Actor, g models.Group) {
	l.membership(ctx, r, audit.EventGroupCreated, a, g.ID, map[string]string{"name": g.Name})
}

// GroupUpdated logs a group rename.
func (l *Logger) GroupUpdated(ctx context.Context, r *http.Request, a authz.Actor, g models.Group) {
	l.membership(ctx, r, audit.EventGroupUpdated, a, g.ID, map[string]string{"name": g.Name})
}

// GroupMembersSet logs a group's member list being replaced.
func (l *Logger) GroupMembersSet(ctx context.Context, r *http.Request, a authz.Actor, groupID primitive.ObjectID, count int) {
	l.membership(ctx, r, audit.EventGroupMembersSet, a, groupID, map[string]string{"members": strconv.Itoa(count)})
}
