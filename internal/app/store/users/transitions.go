package userstore

import (
	"context"
	"time"

	"github.com/dalemusser/sfahub/internal/app/system/txn"
	"github.com/dalemusser/sfahub/internal/domain/errs"
	"github.com/dalemusser/sfahub/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

// Membership transitions are conditional updates: the filter encodes the
// required source state, so a target in any other state matches nothing
// and the call returns errs.ErrInvalidTransition.

var unaffiliated = bson.A{
	bson.M{"workspace_id": bson.M{"$exists": false}},
	bson.M{"workspace_id": nil},
}

func (s *Store) transition(ctx context.Context, filter, update bson.M) error {
	res, err := s.c.UpdateOne(ctx, filter, update)
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return errs.ErrInvalidTransition
	}
	return nil
}

func stamp(set bson.M) bson.M {
	set["updated_at"] = time.Now().UTC()
	return set
}

// RequestJoin moves an unaffiliated user to pending membership in ws with
// the general role.
func (s *Store) RequestJoin(ctx context.Context, userID, ws primitive.ObjectID) error {
	return s.transition(ctx,
		bson.M{"_id": userID, "$or": unaffiliated},
		bson.M{"$set": stamp(bson.M{
			"workspace_id":        ws,
			"is_workspace_active": false,
			"role":                models.RoleGeneral,
		})})
}

// JoinAsOwner makes an unaffiliated user the active owner of ws. Used right
// after the user creates ws.
func (s *Store) JoinAsOwner(ctx context.Context, userID, ws primitive.ObjectID) error {
	return s.transition(ctx,
		bson.M{"_id": userID, "$or": unaffiliated},
		bson.M{"$set": stamp(bson.M{
			"workspace_id":        ws,
			"is_workspace_active": true,
			"role":                models.RoleOwner,
		})})
}

// Accept confirms a pending member of ws.
func (s *Store) Accept(ctx context.Context, ws, userID primitive.ObjectID) error {
	return s.transition(ctx,
		bson.M{"_id": userID, "workspace_id": ws, "is_workspace_active": false},
		bson.M{"$set": stamp(bson.M{"is_workspace_active": true})})
}

// Reject clears a pending request to join ws.
func (s *Store) Reject(ctx context.Context, ws, userID primitive.ObjectID) error {
	return s.transition(ctx,
		bson.M{"_id": userID, "workspace_id": ws, "is_workspace_active": false},
		bson.M{
			"$set":   stamp(bson.M{"role": models.RoleGeneral}),
			"$unset": bson.M{"workspace_id": ""},
		})
}

// Release removes an active member from ws: workspace cleared, role reset
// to general, and every group membership in ws dropped, in one transaction
// where the server supports it.
func (s *Store) Release(ctx context.Context, ws, userID primitive.ObjectID, log *zap.Logger) error {
	return txn.Run(ctx, s.db, log, func(ctx context.Context) error {
		if err := s.transition(ctx,
			bson.M{"_id": userID, "workspace_id": ws, "is_workspace_active": true},
			bson.M{
				"$set":   stamp(bson.M{"role": models.RoleGeneral, "is_workspace_active": false}),
				"$unset": bson.M{"workspace_id": ""},
			}); err != nil {
			return err
		}
		_, err := s.db.Collection("group_memberships").DeleteMany(ctx, bson.M{"workspace_id": ws, "user_id": userID})
		return err
	})
}

// SetRole changes the role of a member of ws.
func (s *Store) SetRole(ctx context.Context, ws, userID primitive.ObjectID, role models.Role) error {
	if !role.Valid() {
		return errBadRole
	}
	res, err := s.c.UpdateOne(ctx,
		bson.M{"_id": userID, "workspace_id": ws},
		bson.M{"$set": stamp(bson.M{"role": role})})
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

// Activate marks an inactive account active. An already active account is
// errs.ErrInvalidTransition.
func (s *Store) Activate(ctx context.Context, userID primitive.ObjectID) error {
	return s.transition(ctx,
		bson.M{"_id": userID, "is_active": false},
		bson.M{"$set": stamp(bson.M{"is_active": true})})
}

// CompleteInvite sets the invited user's name and password and activates
// the account.
func (s *Store) CompleteInvite(ctx context.Context, userID primitive.ObjectID, first, last, passwordHash string) error {
	return s.transition(ctx,
		bson.M{"_id": userID, "is_active": false},
		bson.M{"$set": stamp(bson.M{
			"first_name":    first,
			"last_name":     last,
			"password_hash": passwordHash,
			"is_active":     true,
		})})
}
