// Package customerpolicy decides which customer records an actor may see
// and change.
//
// Sharing rules:
//   - The author (matched by e-mail) can always edit.
//   - public_status "2" makes a record editable by every workspace member,
//     "1" makes it viewable.
//   - shared_edit_users / shared_edit_groups grant edit to named users or
//     to members of named groups; the _view_ variants grant view.
//   - Anything editable is also viewable.
//
// Each rule is written once in the clause table below and yields both the
// in-memory predicate and the MongoDB filter, so list queries and direct
// record checks agree.
package customerpolicy

import (
	"github.com/dalemusser/sfahub/internal/app/system/authz"
	"github.com/dalemusser/sfahub/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// clause is one sharing rule in both of its forms. filter returns nil when
// the rule can never match for the actor (e.g. no group memberships).
type clause struct {
	match  func(rec *models.Customer, a authz.Actor) bool
	filter func(a authz.Actor) bson.M
}

var editClauses = []clause{
	{ // author
		match:  func(rec *models.Customer, a authz.Actor) bool { return rec.Author == a.Email },
		filter: func(a authz.Actor) bson.M { return bson.M{"author": a.Email} },
	},
	{ // edit-shared
		match:  func(rec *models.Customer, _ authz.Actor) bool { return rec.PublicStatus == models.PublicEditShared },
		filter: func(authz.Actor) bson.M { return bson.M{"public_status": models.PublicEditShared} },
	},
	{
		match:  func(rec *models.Customer, a authz.Actor) bool { return containsID(rec.SharedEditUsers, a.UserID) },
		filter: func(a authz.Actor) bson.M { return bson.M{"shared_edit_users": a.UserID} },
	},
	{
		match:  func(rec *models.Customer, a authz.Actor) bool { return intersects(rec.SharedEditGroups, a.GroupIDs) },
		filter: groupFilter("shared_edit_groups"),
	},
}

var viewClauses = []clause{
	{ // view-shared
		match:  func(rec *models.Customer, _ authz.Actor) bool { return rec.PublicStatus == models.PublicViewShared },
		filter: func(authz.Actor) bson.M { return bson.M{"public_status": models.PublicViewShared} },
	},
	{
		match:  func(rec *models.Customer, a authz.Actor) bool { return containsID(rec.SharedViewUsers, a.UserID) },
		filter: func(a authz.Actor) bson.M { return bson.M{"shared_view_users": a.UserID} },
	},
	{
		match:  func(rec *models.Customer, a authz.Actor) bool { return intersects(rec.SharedViewGroups, a.GroupIDs) },
		filter: groupFilter("shared_view_groups"),
	},
}

func groupFilter(field string) func(authz.Actor) bson.M {
	return func(a authz.Actor) bson.M {
		if len(a.GroupIDs) == 0 {
			return nil
		}
		return bson.M{field: bson.M{"$in": a.GroupIDs}}
	}
}

// IsEditable reports whether a may update or delete rec.
func IsEditable(rec *models.Customer, a authz.Actor) bool {
	return anyMatch(editClauses, rec, a)
}

// IsViewable reports whether a may read rec.
func IsViewable(rec *models.Customer, a authz.Actor) bool {
	return anyMatch(editClauses, rec, a) || anyMatch(viewClauses, rec, a)
}

// EditableFilter is the query form of IsEditable.
func EditableFilter(a authz.Actor) bson.M {
	return bson.M{"$or": filters(a, editClauses)}
}

// ViewableFilter is the query form of IsViewable.
func ViewableFilter(a authz.Actor) bson.M {
	return bson.M{"$or": filters(a, editClauses, viewClauses)}
}

func anyMatch(cs []clause, rec *models.Customer, a authz.Actor) bool {
	if rec == nil {
		return false
	}
	for _, c := range cs {
		if c.match(rec, a) {
			return true
		}
	}
	return false
}

func filters(a authz.Actor, sets ...[]clause) []bson.M {
	var out []bson.M
	for _, cs := range sets {
		for _, c := range cs {
			if f := c.filter(a); f != nil {
				out = append(out, f)
			}
		}
	}
	return out
}

func containsID(ids []primitive.ObjectID, id primitive.ObjectID) bool {
	for _, x := range ids {
		if x == id {
			return true
		}
	}
	return false
}

func intersects(a, b []primitive.ObjectID) bool {
	for _, x := range a {
		if containsID(b, x) {
			return true
		}
	}
	return false
}
