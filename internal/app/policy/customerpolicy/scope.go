// internal/app/policy/customerpolicy/scope.go
package customerpolicy

import (
	"strings"

	"github.com/dalemusser/sfahub/internal/app/system/authz"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Breadth selects how far a customer listing reaches beyond the actor's
// own records.
type Breadth string

const (
	Mine  Breadth = "mine"
	Group Breadth = "group"
	All   Breadth = "all"
)

// ParseBreadth maps a query value to a Breadth, defaulting to Mine.
func ParseBreadth(s string) Breadth {
	switch Breadth(strings.ToLower(strings.TrimSpace(s))) {
	case Group:
		return Group
	case All:
		return All
	default:
		return Mine
	}
}

// Base limits a query to live records in the actor's workspace.
func Base(a authz.Actor) bson.M {
	return bson.M{"workspace_id": a.WorkspaceID, "delete_flg": false}
}

// Scope builds the listing filter for a at the given breadth.
//
// peers is only read for Group and must hold every user sharing a group
// with the actor; the actor is added if missing. Each breadth narrows the
// sales_person owner and the viewable rules always apply, so
// All ⊇ Group ⊇ Mine.
func Scope(a authz.Actor, mode Breadth, peers []primitive.ObjectID) bson.M {
	and := []bson.M{Base(a)}

	switch mode {
	case Mine:
		and = append(and, bson.M{"sales_person": a.UserID})
	case Group:
		if !containsID(peers, a.UserID) {
			peers = append(append([]primitive.ObjectID{}, peers...), a.UserID)
		}
		and = append(and, bson.M{"sales_person": bson.M{"$in": peers}})
	}

	and = append(and, ViewableFilter(a))
	return bson.M{"$and": and}
}

// Ordering resolves a requested sort key against the allow-list. A leading
// "-" sorts descending. Unknown keys fall back to newest first.
func Ordering(requested string) bson.D {
	field, dir := strings.TrimPrefix(requested, "-"), 1
	if strings.HasPrefix(requested, "-") {
		dir = -1
	}
	switch field {
	case "customer_name", "zip_code":
		return bson.D{{Key: field, Value: dir}, {Key: "_id", Value: dir}}
	default:
		return bson.D{{Key: "created_at", Value: -1}, {Key: "_id", Value: -1}}
	}
}
