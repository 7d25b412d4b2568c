// internal/app/features/auditlog/list.go
package auditlog

import (
	"net/http"
	"strings"
	"time"

	uierrors "github.com/dalemusser/sfahub/internal/app/features/errors"
	"github.com/dalemusser/sfahub/internal/app/policy/workspacepolicy"
	"github.com/dalemusser/sfahub/internal/app/store/audit"
	"github.com/dalemusser/sfahub/internal/app/system/authz"
	"github.com/dalemusser/sfahub/internal/app/system/paging"
	"github.com/dalemusser/sfahub/internal/app/system/timeouts"
	"github.com/dalemusser/sfahub/internal/app/system/timezones"
	"github.com/dalemusser/sfahub/internal/domain/errs"
	"github.com/dalemusser/waffle/pantry/query"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

const pageSize = 50

// eventTypes lists the filterable types per category.
var eventTypes = map[string][]string{
	audit.CategoryAuth: {
		audit.EventLoginSuccess, audit.EventLoginFailed, audit.EventLoginRateLimited,
		audit.EventLogout, audit.EventUserRegistered, audit.EventAccountActivated,
		audit.EventInviteConfirmed,
	},
	audit.CategoryMembership: {
		audit.EventWorkspaceCreated, audit.EventWorkspaceRenamed, audit.EventJoinRequested,
		audit.EventMemberAccepted, audit.EventMemberRejected, audit.EventMemberReleased,
		audit.EventRoleChanged, audit.EventUserInvited,
		audit.EventGroupCreated, audit.EventGroupUpdated, audit.EventGroupMembersSet,
	},
}

type listItem struct {
	ID         string            `json:"id"`
	Timestamp  time.Time         `json:"timestamp"`
	Category   string            `json:"category"`
	EventType  string            `json:"event_type"`
	ActorID    string            `json:"actor_id,omitempty"`
	ActorName  string            `json:"actor_name,omitempty"`
	TargetID   string            `json:"target_id,omitempty"`
	TargetName string            `json:"target_name,omitempty"`
	IP         string            `json:"ip"`
	Success    bool              `json:"success"`
	Reason     string            `json:"failure_reason,omitempty"`
	Details    map[string]string `json:"details,omitempty"`
}

type listResponse struct {
	Events []listItem  `json:"events"`
	Page   paging.Page `json:"page"`
}

// parseFilter reads category, event_type, target, from and to. Unknown
// values are field errors rather than silently ignored.
func (h *Handler) parseFilter(r *http.Request, ws primitive.ObjectID) (audit.QueryFilter, error) {
	f := audit.QueryFilter{WorkspaceID: &ws}
	ve := &errs.ValidationError{}

	f.Category = strings.TrimSpace(query.Get(r, "category"))
	if f.Category != "" {
		if _, ok := eventTypes[f.Category]; !ok {
			ve.Add("category", "Unknown category.")
		}
	}
	f.EventType = strings.TrimSpace(query.Get(r, "event_type"))
	if f.EventType != "" && !knownType(f.Category, f.EventType) {
		ve.Add("event_type", "Unknown event type.")
	}
	if t := query.Get(r, "target"); t != "" {
		id, err := primitive.ObjectIDFromHex(t)
		if err != nil {
			ve.Add("target", "Invalid ID.")
		} else {
			f.TargetID = &id
		}
	}

	from, to := query.Get(r, "from"), query.Get(r, "to")
	if from != "" || to != "" {
		if from == "" {
			from = "2000-01-01"
		}
		if to == "" {
			to = time.Now().In(h.Location).Format("2006-01-02")
		}
		start, end, ok := timezones.DayRange(from, to, h.Location)
		if !ok {
			ve.Add("from", "Use YYYY-MM-DD, with from on or before to.")
		} else {
			f.Since, f.Until = &start, &end
		}
	}
	return f, ve.OrNil()
}

func knownType(category, typ string) bool {
	for c, types := range eventTypes {
		if category != "" && c != category {
			continue
		}
		for _, t := range types {
			if t == typ {
				return true
			}
		}
	}
	return false
}

// ServeList handles GET /audit: the actor's workspace events, newest first.
func (h *Handler) ServeList(w http.ResponseWriter, r *http.Request) {
	a, ok := authz.ActorFrom(r)
	if !ok {
		uierrors.Message(w, http.StatusUnauthorized, "Please sign in.")
		return
	}
	if err := workspacepolicy.CanViewAudit(a); err != nil {
		uierrors.Handle(w, r, h.Log, err, "/")
		return
	}

	f, err := h.parseFilter(r, a.WorkspaceID)
	if err != nil {
		uierrors.Handle(w, r, h.Log, err, "/audit")
		return
	}

	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Medium(), h.Log, "audit list")
	defer cancel()

	total, err := h.Events.Count(ctx, f)
	if err != nil {
		uierrors.Handle(w, r, h.Log, err, "/")
		return
	}
	pg := paging.Resolve(paging.ParsePage(r), pageSize, total)
	f.Limit = int64(pg.Size)
	f.Offset = int64((pg.Number - 1) * pg.Size)

	events, err := h.Events.Query(ctx, f)
	if err != nil {
		uierrors.Handle(w, r, h.Log, err, "/")
		return
	}

	seen := map[primitive.ObjectID]struct{}{}
	var ids []primitive.ObjectID
	for _, e := range events {
		for _, id := range []*primitive.ObjectID{e.ActorID, e.TargetID} {
			if id == nil {
				continue
			}
			if _, dup := seen[*id]; !dup {
				seen[*id] = struct{}{}
				ids = append(ids, *id)
			}
		}
	}
	names, err := h.Users.NamesByIDs(ctx, ids)
	if err != nil {
		// Names are a convenience; IDs are still shown.
		h.Log.Warn("audit name lookup failed", zap.Error(err))
		names = nil
	}

	items := make([]listItem, 0, len(events))
	for _, e := range events {
		it := listItem{
			ID:        e.ID.Hex(),
			Timestamp: e.Timestamp,
			Category:  e.Category,
			EventType: e.EventType,
			IP:        e.IP,
			Success:   e.Success,
			Reason:    e.FailureReason,
			Details:   e.Details,
		}
		if e.ActorID != nil {
			it.ActorID = e.ActorID.Hex()
			it.ActorName = names[*e.ActorID]
		}
		if e.TargetID != nil {
			it.TargetID = e.TargetID.Hex()
			it.TargetName = names[*e.TargetID]
		}
		items = append(items, it)
	}

	uierrors.JSON(w, http.StatusOK, listResponse{Events: items, Page: pg})
}
