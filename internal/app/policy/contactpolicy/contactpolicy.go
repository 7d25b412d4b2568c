// Package contactpolicy decides access to contact-history entries.
//
// A contact inherits its tenancy from the target customer: it is visible
// when both live in the actor's workspace and neither is deleted. It is
// editable by its operator, or by anyone who may edit the customer.
package contactpolicy

import (
	"strings"

	"github.com/dalemusser/sfahub/internal/app/policy/customerpolicy"
	"github.com/dalemusser/sfahub/internal/app/system/authz"
	"github.com/dalemusser/sfahub/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson"
)

// CanAttach reports whether a may record a new contact against cust.
func CanAttach(cust *models.Customer, a authz.Actor) bool {
	return liveInWorkspace(cust, a) && customerpolicy.IsViewable(cust, a)
}

// CanView reports whether a may read c, whose target customer is cust.
func CanView(c *models.Contact, cust *models.Customer, a authz.Actor) bool {
	if c == nil || c.DeleteFlg || c.WorkspaceID != a.WorkspaceID {
		return false
	}
	return liveInWorkspace(cust, a) && c.CustomerID == cust.ID
}

// CanEdit reports whether a may update or delete c.
func CanEdit(c *models.Contact, cust *models.Customer, a authz.Actor) bool {
	if !CanView(c, cust, a) {
		return false
	}
	return c.OperatorID == a.UserID || customerpolicy.IsEditable(cust, a)
}

func liveInWorkspace(cust *models.Customer, a authz.Actor) bool {
	return cust != nil && !cust.DeleteFlg && !a.WorkspaceID.IsZero() && cust.WorkspaceID == a.WorkspaceID
}

// Base limits a contact query to live entries in the actor's workspace.
func Base(a authz.Actor) bson.M {
	return bson.M{"workspace_id": a.WorkspaceID, "delete_flg": false}
}

// Ordering resolves a requested sort key for contact lists. Unknown keys
// fall back to most recent contact first.
func Ordering(requested string) bson.D {
	field, dir := strings.TrimPrefix(requested, "-"), 1
	if strings.HasPrefix(requested, "-") {
		dir = -1
	}
	switch field {
	case "contact_at", "contact_type":
		return bson.D{{Key: field, Value: dir}, {Key: "_id", Value: dir}}
	default:
		return bson.D{{Key: "contact_at", Value: -1}, {Key: "_id", Value: -1}}
	}
}
