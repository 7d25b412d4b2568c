// Package bulkaction applies one action to many customer records.
//
// Records are handled one at a time. A record that is missing or that the
// actor may not edit is skipped; the rest are updated. There is no
// cross-record atomicity, and concurrent edits resolve as last write wins.
package bulkaction

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/dalemusser/sfahub/internal/app/policy/customerpolicy"
	customerstore "github.com/dalemusser/sfahub/internal/app/store/customers"
	"github.com/dalemusser/sfahub/internal/app/system/authz"
	"github.com/dalemusser/sfahub/internal/app/system/geocode"
	"github.com/dalemusser/sfahub/internal/app/system/metrics"
	"github.com/dalemusser/sfahub/internal/domain/errs"
	"github.com/dalemusser/sfahub/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

// Action is a bulk action code.
type Action int

const (
	SetNotStarted Action = 0
	SetPlanned    Action = 1
	SetInProgress Action = 2
	SetFinished   Action = 3
	AssignToMe    Action = 10
	Delete        Action = 99
)

// Valid reports whether a is a known code.
func (a Action) Valid() bool {
	switch a {
	case SetNotStarted, SetPlanned, SetInProgress, SetFinished, AssignToMe, Delete:
		return true
	}
	return false
}

func (a Action) String() string { return strconv.Itoa(int(a)) }

// ParseAction reads an action code from a form or JSON value.
func ParseAction(s string) (Action, error) {
	n, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil || !Action(n).Valid() {
		return 0, errs.Invalid("action", "Select a valid action.")
	}
	return Action(n), nil
}

// Customers is the record access the coordinator needs.
type Customers interface {
	Get(ctx context.Context, workspaceID, id primitive.ObjectID) (models.Customer, error)
	Apply(ctx context.Context, workspaceID, id primitive.ObjectID, set bson.M) (bool, error)
}

// KeySource yields a workspace's geocoding API key.
type KeySource interface {
	GeocodeKey(ctx context.Context, workspaceID primitive.ObjectID) (string, error)
}

type Coordinator struct {
	Customers Customers
	Geocoder  geocode.Geocoder
	Settings  KeySource
	Log       *zap.Logger
}

// Summary lists which records were changed and which were left alone.
type Summary struct {
	Updated []primitive.ObjectID `json:"updated"`
	Skipped []primitive.ObjectID `json:"skipped"`
}

// Apply runs action over ids on behalf of a. An unknown action is a
// ValidationError and nothing is touched. A storage failure stops the run
// and is returned along with what was done so far.
func (c *Coordinator) Apply(ctx context.Context, ids []primitive.ObjectID, action Action, a authz.Actor) (Summary, error) {
	var sum Summary
	if !action.Valid() {
		return sum, errs.Invalid("action", "Select a valid action.")
	}

	key := c.geocodeKey(ctx, action, a)
	for _, id := range ids {
		updated, err := c.applyOne(ctx, id, action, a, key)
		if err != nil {
			metrics.RecordBulk(action.String(), metrics.OutcomeError)
			return sum, fmt.Errorf("bulk action %s on %s: %w", action, id.Hex(), err)
		}
		if updated {
			sum.Updated = append(sum.Updated, id)
			metrics.RecordBulk(action.String(), metrics.OutcomeOK)
		} else {
			sum.Skipped = append(sum.Skipped, id)
			metrics.RecordBulk(action.String(), metrics.OutcomeSkipped)
		}
	}

	c.logger().Info("bulk action applied",
		zap.String("action", action.String()),
		zap.String("actor_id", a.UserID.Hex()),
		zap.Int("updated", len(sum.Updated)),
		zap.Int("skipped", len(sum.Skipped)))
	return sum, nil
}

func (c *Coordinator) applyOne(ctx context.Context, id primitive.ObjectID, action Action, a authz.Actor, key string) (bool, error) {
	rec, err := c.Customers.Get(ctx, a.WorkspaceID, id)
	if errors.Is(err, customerstore.ErrNotFound) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	if !customerpolicy.IsEditable(&rec, a) {
		return false, nil
	}

	set := bson.M{"modifier": a.Email, "updated_at": time.Now().UTC()}
	switch action {
	case Delete:
		set["delete_flg"] = true
	case AssignToMe:
		set["sales_person"] = a.UserID
	default:
		set["action_status"] = models.ActionStatus(action.String())
	}

	if action != Delete {
		changed, gerr := geocode.Locate(ctx, c.Geocoder, key, &rec)
		if gerr != nil {
			c.logger().Warn("geocode failed", zap.String("customer_id", id.Hex()), zap.Error(gerr))
		}
		if changed {
			set["latitude"] = *rec.Latitude
			set["longitude"] = *rec.Longitude
		}
	}

	return c.Customers.Apply(ctx, a.WorkspaceID, id, set)
}

func (c *Coordinator) geocodeKey(ctx context.Context, action Action, a authz.Actor) string {
	if action == Delete || c.Geocoder == nil || c.Settings == nil {
		return ""
	}
	key, err := c.Settings.GeocodeKey(ctx, a.WorkspaceID)
	if err != nil {
		c.logger().Warn("load geocode key", zap.Error(err))
		return ""
	}
	return key
}

func (c *Coordinator) logger() *zap.Logger {
	if c.Log != nil {
		return c.Log
	}
	return zap.L()
}
