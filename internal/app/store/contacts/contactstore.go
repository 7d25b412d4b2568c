// internal/app/store/contacts/contactstore.go
package contactstore

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/dalemusser/sfahub/internal/app/policy/contactpolicy"
	"github.com/dalemusser/sfahub/internal/app/system/authz"
	"github.com/dalemusser/sfahub/internal/app/system/paging"
	"github.com/dalemusser/sfahub/internal/domain/errs"
	"github.com/dalemusser/sfahub/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

var ErrNotFound = fmt.Errorf("contact %w", errs.ErrNotFound)

type Store struct {
	c *mongo.Collection
}

func New(db *mongo.Database) *Store {
	return &Store{c: db.Collection("contacts")}
}

// Create inserts a contact. Workspace, customer and operator must already
// be set by the caller.
func (s *Store) Create(ctx context.Context, c models.Contact) (models.Contact, error) {
	now := time.Now().UTC()
	c.ID = primitive.NewObjectID()
	c.DeleteFlg = false
	c.CreatedAt = now
	c.UpdatedAt = now
	if _, err := s.c.InsertOne(ctx, c); err != nil {
		return models.Contact{}, err
	}
	return c, nil
}

// Get loads a live contact in a workspace.
func (s *Store) Get(ctx context.Context, workspaceID, id primitive.ObjectID) (models.Contact, error) {
	var c models.Contact
	err := s.c.FindOne(ctx, bson.M{"_id": id, "workspace_id": workspaceID, "delete_flg": false}).Decode(&c)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return models.Contact{}, ErrNotFound
	}
	return c, err
}

// Update replaces the editable fields of a live contact. Owner fields
// (workspace, customer, operator) never change.
func (s *Store) Update(ctx context.Context, c models.Contact) (models.Contact, error) {
	c.UpdatedAt = time.Now().UTC()
	set := bson.M{
		"contact_type":    c.ContactType,
		"target_person":   c.TargetPerson,
		"contact_at":      c.ContactAt,
		"tel_number":      c.TelNumber,
		"mail_address":    c.MailAddress,
		"called_flg":      c.CalledFlg,
		"visited_flg":     c.VisitedFlg,
		"visit_date_plan": c.VisitDatePlan,
		"visit_date_act":  c.VisitDateAct,
		"start_time_plan": c.StartTimePlan,
		"end_time_plan":   c.EndTimePlan,
		"start_time_act":  c.StartTimeAct,
		"end_time_act":    c.EndTimeAct,
		"remarks":         c.Remarks,
		"updated_at":      c.UpdatedAt,
	}
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
	var out models.Contact
	err := s.c.FindOneAndUpdate(ctx,
		bson.M{"_id": c.ID, "workspace_id": c.WorkspaceID, "delete_flg": false},
		bson.M{"$set": set}, opts,
	).Decode(&out)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return models.Contact{}, ErrNotFound
	}
	return out, err
}

// SoftDelete flags a contact as deleted.
func (s *Store) SoftDelete(ctx context.Context, workspaceID, id primitive.ObjectID) error {
	res, err := s.c.UpdateOne(ctx,
		bson.M{"_id": id, "workspace_id": workspaceID, "delete_flg": false},
		bson.M{"$set": bson.M{"delete_flg": true, "updated_at": time.Now().UTC()}},
	)
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

// ByOperator filters a's own contacts.
func ByOperator(a authz.Actor) bson.M {
	f := contactpolicy.Base(a)
	f["operator_id"] = a.UserID
	return f
}

// ByCustomer filters the contacts recorded against one customer.
func ByCustomer(a authz.Actor, customerID primitive.ObjectID) bson.M {
	f := contactpolicy.Base(a)
	f["customer_id"] = customerID
	return f
}

// List returns one page of contacts matching filter.
func (s *Store) List(ctx context.Context, filter bson.M, sort bson.D, page paging.Page) ([]models.Contact, error) {
	return s.find(ctx, filter, page.ApplyToFind(options.Find().SetSort(sort)))
}

// Count returns the number of contacts matching filter.
func (s *Store) Count(ctx context.Context, filter bson.M) (int64, error) {
	return s.c.CountDocuments(ctx, filter)
}

// Visits returns a's visit entries planned for date (YYYY-MM-DD), earliest
// start first.
func (s *Store) Visits(ctx context.Context, a authz.Actor, date string) ([]models.Contact, error) {
	f := ByOperator(a)
	f["contact_type"] = models.ContactVisit
	f["visit_date_plan"] = date
	sort := bson.D{{Key: "start_time_plan", Value: 1}, {Key: "_id", Value: 1}}
	return s.find(ctx, f, options.Find().SetSort(sort))
}

func (s *Store) find(ctx context.Context, filter bson.M, opts *options.FindOptions) ([]models.Contact, error) {
	cur, err := s.c.Find(ctx, filter, opts)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var out []models.Contact
	if err := cur.All(ctx, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// Counts summarizes a's activity over a period.
type Counts struct {
	Outbound  int64 `json:"outbound_count"`
	VisitPlan int64 `json:"visit_plan_count"`
	Visits    int64 `json:"visit_count"`
}

// Period bounds an activity count. From and To are inclusive dates
// (YYYY-MM-DD); Start and End are the matching half-open instants.
type Period struct {
	From, To   string
	Start, End time.Time
}

// CountActivity counts a's outbound calls made, visits planned and visits
// made in p.
func (s *Store) CountActivity(ctx context.Context, a authz.Actor, p Period) (Counts, error) {
	var out Counts
	queries := []struct {
		dst    *int64
		filter bson.M
	}{
		{&out.Outbound, bson.M{"called_flg": true, "contact_at": bson.M{"$gte": p.Start, "$lt": p.End}}},
		{&out.VisitPlan, bson.M{"visit_date_plan": bson.M{"$gte": p.From, "$lte": p.To}}},
		{&out.Visits, bson.M{"visited_flg": true, "visit_date_act": bson.M{"$gte": p.From, "$lte": p.To}}},
	}
	for _, q := range queries {
		f := ByOperator(a)
		for k, v := range q.filter {
			f[k] = v
		}
		n, err := s.c.CountDocuments(ctx, f)
		if err != nil {
			return Counts{}, err
		}
		*q.dst = n
	}
	return out, nil
}
