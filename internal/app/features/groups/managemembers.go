// internal/app/features/groups/managemembers.go
package groups

import (
	"errors"
	"net/http"

	uierrors "github.com/dalemusser/sfahub/internal/app/features/errors"
	"github.com/dalemusser/sfahub/internal/app/policy/workspacepolicy"
	membershipstore "github.com/dalemusser/sfahub/internal/app/store/memberships"
	"github.com/dalemusser/sfahub/internal/app/system/timeouts"
	"github.com/dalemusser/sfahub/internal/domain/errs"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type membersInput struct {
	UserIDs []string `json:"user_ids"`
}

// HandleSetMembers handles PUT /groups/{id}/members. The body lists the
// complete member set; admins and owners only.
func (h *Handler) HandleSetMembers(w http.ResponseWriter, r *http.Request) {
	a, ok := actor(w, r)
	if !ok {
		return
	}
	if err := workspacepolicy.CanManageGroups(a); err != nil {
		uierrors.Handle(w, r, h.Log, err, listURL)
		return
	}
	id, ok := h.groupID(w, r)
	if !ok {
		return
	}

	var in membersInput
	if err := uierrors.Decode(w, r, &in); err != nil {
		uierrors.Handle(w, r, h.Log, err, listURL)
		return
	}
	userIDs := make([]primitive.ObjectID, 0, len(in.UserIDs))
	for _, s := range in.UserIDs {
		uid, err := primitive.ObjectIDFromHex(s)
		if err != nil {
			uierrors.Handle(w, r, h.Log, errs.Invalid("user_ids", "Contains an invalid ID."), listURL)
			return
		}
		userIDs = append(userIDs, uid)
	}

	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Medium(), h.Log, "group members")
	defer cancel()

	if _, err := h.Groups.Get(ctx, a.WorkspaceID, id); err != nil {
		uierrors.Handle(w, r, h.Log, err, listURL)
		return
	}
	res, err := h.Memberships.SetMembers(ctx, a.WorkspaceID, id, userIDs)
	if errors.Is(err, membershipstore.ErrNotMember) {
		err = errs.Invalid("user_ids", "Only members of this workspace can be added.")
	}
	if err != nil {
		uierrors.Handle(w, r, h.Log, err, listURL)
		return
	}

	members, err := h.Memberships.MemberIDs(ctx, id)
	if err != nil {
		uierrors.Handle(w, r, h.Log, err, listURL)
		return
	}
	h.Audit.GroupMembersSet(ctx, r, a, id, len(members))
	if members == nil {
		members = []primitive.ObjectID{}
	}
	uierrors.JSON(w, http.StatusOK, map[string]any{
		"added":      res.Added,
		"removed":    res.Removed,
		"member_ids": members,
	})
}
