// internal/app/store/customers/customerstore.go
package customerstore

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/dalemusser/sfahub/internal/app/policy/customerpolicy"
	"github.com/dalemusser/sfahub/internal/app/system/authz"
	"github.com/dalemusser/sfahub/internal/app/system/normalize"
	"github.com/dalemusser/sfahub/internal/app/system/paging"
	"github.com/dalemusser/sfahub/internal/domain/errs"
	"github.com/dalemusser/sfahub/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

var ErrNotFound = fmt.Errorf("customer %w", errs.ErrNotFound)

type Store struct {
	c *mongo.Collection
}

func New(db *mongo.Database) *Store {
	return &Store{c: db.Collection("customers")}
}

// NormalizeFields rewrites the phone, postal and corporate number fields
// into their stored form.
func NormalizeFields(c *models.Customer) {
	c.CorporateNumber = normalize.Digits(c.CorporateNumber, normalize.CorporateNumber)
	c.TelNumber1 = normalize.Digits(c.TelNumber1, normalize.Phone)
	c.TelNumber2 = normalize.Digits(c.TelNumber2, normalize.Phone)
	c.TelNumber3 = normalize.Digits(c.TelNumber3, normalize.Phone)
	c.FaxNumber = normalize.Digits(c.FaxNumber, normalize.Phone)
	c.ZipCode = normalize.Digits(c.ZipCode, normalize.Postal)
	c.MailAddress = normalize.Email(c.MailAddress)
}

// CountDuplicates counts the live records in a's workspace that a can see
// and that carry phone in any of their three phone fields. Each record is
// counted once. An empty phone counts nothing.
func (s *Store) CountDuplicates(ctx context.Context, phone string, a authz.Actor) (int64, error) {
	if phone == "" {
		return 0, nil
	}
	filter := bson.M{"$and": []bson.M{
		customerpolicy.Base(a),
		{"$or": []bson.M{
			{"tel_number1": phone},
			{"tel_number2": phone},
			{"tel_number3": phone},
		}},
		customerpolicy.ViewableFilter(a),
	}}
	return s.c.CountDocuments(ctx, filter)
}

// CountDuplicatesAll runs CountDuplicates for each of phones.
func (s *Store) CountDuplicatesAll(ctx context.Context, phones [3]string, a authz.Actor) ([3]int64, error) {
	var out [3]int64
	for i, p := range phones {
		n, err := s.CountDuplicates(ctx, p, a)
		if err != nil {
			return out, err
		}
		out[i] = n
	}
	return out, nil
}

// Prepare fills the fields every new record gets from its creator:
// workspace, author and modifier, sales person and potential defaults,
// normalized fields and timestamps. Duplicate counts are left to the caller.
func Prepare(c *models.Customer, a authz.Actor, now time.Time) {
	c.ID = primitive.NewObjectID()
	c.WorkspaceID = a.WorkspaceID
	c.Author = a.Email
	c.Modifier = a.Email
	if c.SalesPerson == nil {
		id := a.UserID
		c.SalesPerson = &id
	}
	if c.Potential == 0 {
		c.Potential = models.DefaultPotential
	}
	if c.PublicStatus == "" {
		c.PublicStatus = models.PublicPrivate
	}
	if c.ActionStatus == "" {
		c.ActionStatus = models.ActionNotStarted
	}
	c.DeleteFlg = false
	c.CreatedAt = now
	c.UpdatedAt = now
	NormalizeFields(c)
}

// Create prepares c for a, computes its duplicate counts and inserts it.
func (s *Store) Create(ctx context.Context, c models.Customer, a authz.Actor) (models.Customer, error) {
	Prepare(&c, a, time.Now().UTC())
	counts, err := s.CountDuplicatesAll(ctx, c.Phones(), a)
	if err != nil {
		return models.Customer{}, err
	}
	c.DuplicateCounts = counts
	if err := s.Insert(ctx, c); err != nil {
		return models.Customer{}, err
	}
	return c, nil
}

// Insert stores an already prepared record.
func (s *Store) Insert(ctx context.Context, c models.Customer) error {
	_, err := s.c.InsertOne(ctx, c)
	return err
}

// Get loads a live record from a workspace, ignoring sharing rules.
func (s *Store) Get(ctx context.Context, workspaceID, id primitive.ObjectID) (models.Customer, error) {
	return s.findOne(ctx, bson.M{"_id": id, "workspace_id": workspaceID, "delete_flg": false})
}

// GetViewable loads a record a may read.
func (s *Store) GetViewable(ctx context.Context, id primitive.ObjectID, a authz.Actor) (models.Customer, error) {
	return s.findOne(ctx, bson.M{"$and": []bson.M{
		{"_id": id}, customerpolicy.Base(a), customerpolicy.ViewableFilter(a),
	}})
}

// GetEditable loads a record a may change.
func (s *Store) GetEditable(ctx context.Context, id primitive.ObjectID, a authz.Actor) (models.Customer, error) {
	return s.findOne(ctx, editable(id, a))
}

func editable(id primitive.ObjectID, a authz.Actor) bson.M {
	return bson.M{"$and": []bson.M{
		{"_id": id}, customerpolicy.Base(a), customerpolicy.EditableFilter(a),
	}}
}

func (s *Store) findOne(ctx context.Context, filter bson.M) (models.Customer, error) {
	var c models.Customer
	if err := s.c.FindOne(ctx, filter).Decode(&c); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return models.Customer{}, ErrNotFound
		}
		return models.Customer{}, err
	}
	return c, nil
}

// Update replaces the user-editable fields of record id with those of c,
// provided a may edit it. Duplicate counts are recomputed. The record's
// identity, author and creation time never change.
func (s *Store) Update(ctx context.Context, id primitive.ObjectID, c models.Customer, a authz.Actor) (models.Customer, error) {
	NormalizeFields(&c)
	counts, err := s.CountDuplicatesAll(ctx, c.Phones(), a)
	if err != nil {
		return models.Customer{}, err
	}
	c.DuplicateCounts = counts
	c.Modifier = a.Email
	c.UpdatedAt = time.Now().UTC()

	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
	var out models.Customer
	err = s.c.FindOneAndUpdate(ctx, editable(id, a), bson.M{"$set": contentSet(c)}, opts).Decode(&out)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return models.Customer{}, ErrNotFound
	}
	return out, err
}

func contentSet(c models.Customer) bson.M {
	return bson.M{
		"corporate_number":     c.CorporateNumber,
		"optional_code1":       c.OptionalCode1,
		"optional_code2":       c.OptionalCode2,
		"optional_code3":       c.OptionalCode3,
		"customer_name":        c.CustomerName,
		"department_name":      c.DepartmentName,
		"tel_number1":          c.TelNumber1,
		"tel_number2":          c.TelNumber2,
		"tel_number3":          c.TelNumber3,
		"fax_number":           c.FaxNumber,
		"mail_address":         c.MailAddress,
		"representative":       c.Representative,
		"contact_name":         c.ContactName,
		"zip_code":             c.ZipCode,
		"address1":             c.Address1,
		"address2":             c.Address2,
		"address3":             c.Address3,
		"latitude":             c.Latitude,
		"longitude":            c.Longitude,
		"url1":                 c.URL1,
		"url2":                 c.URL2,
		"url3":                 c.URL3,
		"industry_code":        c.IndustryCode,
		"data_source":          c.DataSource,
		"contracted_flg":       c.ContractedFlg,
		"potential":            c.Potential,
		"tel_limit_flg":        c.TelLimitFlg,
		"fax_limit_flg":        c.FaxLimitFlg,
		"mail_limit_flg":       c.MailLimitFlg,
		"attention_flg":        c.AttentionFlg,
		"related_document_url": c.RelatedDocumentURL,
		"remarks":              c.Remarks,
		"public_status":        c.PublicStatus,
		"shared_edit_groups":   c.SharedEditGroups,
		"shared_view_groups":   c.SharedViewGroups,
		"shared_edit_users":    c.SharedEditUsers,
		"shared_view_users":    c.SharedViewUsers,
		"sales_person":         c.SalesPerson,
		"action_status":        c.ActionStatus,
		"tel_called_flg":       c.TelCalledFlg,
		"mail_sent_flg":        c.MailSentFlg,
		"fax_sent_flg":         c.FaxSentFlg,
		"dm_sent_flg":          c.DMSentFlg,
		"visited_flg":          c.VisitedFlg,
		"duplicate_counts":     c.DuplicateCounts,
		"modifier":             c.Modifier,
		"updated_at":           c.UpdatedAt,
	}
}

// Apply sets fields on a live record in a workspace. It reports whether
// a record matched. Callers check editability first.
func (s *Store) Apply(ctx context.Context, workspaceID, id primitive.ObjectID, set bson.M) (bool, error) {
	res, err := s.c.UpdateOne(ctx,
		bson.M{"_id": id, "workspace_id": workspaceID, "delete_flg": false},
		bson.M{"$set": set},
	)
	if err != nil {
		return false, err
	}
	return res.MatchedCount > 0, nil
}

// SoftDelete flags record id as deleted when a may edit it.
func (s *Store) SoftDelete(ctx context.Context, id primitive.ObjectID, a authz.Actor) error {
	res, err := s.c.UpdateOne(ctx, editable(id, a), bson.M{"$set": bson.M{
		"delete_flg": true,
		"modifier":   a.Email,
		"updated_at": time.Now().UTC(),
	}})
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

// MarkContacted sets the contact flag matching a contact-history entry.
// Nothing happens for channels without a flag.
func (s *Store) MarkContacted(ctx context.Context, workspaceID, id primitive.ObjectID, ct models.ContactType, visited bool) error {
	var flag string
	switch ct {
	case models.ContactVisit:
		if !visited {
			return nil
		}
		flag = "visited_flg"
	case models.ContactOutboundCall:
		flag = "tel_called_flg"
	case models.ContactMail:
		flag = "mail_sent_flg"
	case models.ContactFax:
		flag = "fax_sent_flg"
	case models.ContactDM:
		flag = "dm_sent_flg"
	default:
		return nil
	}
	_, err := s.Apply(ctx, workspaceID, id, bson.M{flag: true})
	return err
}

// List returns one page of records matching filter.
func (s *Store) List(ctx context.Context, filter bson.M, sort bson.D, page paging.Page) ([]models.Customer, error) {
	find := page.ApplyToFind(options.Find().SetSort(sort))
	cur, err := s.c.Find(ctx, filter, find)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var out []models.Customer
	if err := cur.All(ctx, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// Count returns the number of records matching filter.
func (s *Store) Count(ctx context.Context, filter bson.M) (int64, error) {
	return s.c.CountDocuments(ctx, filter)
}

// MapPoint is the projection used for map display.
type MapPoint struct {
	ID           primitive.ObjectID  `bson:"_id" json:"id"`
	CustomerName string              `bson:"customer_name" json:"customer_name"`
	Latitude     float64             `bson:"latitude" json:"lat"`
	Longitude    float64             `bson:"longitude" json:"lng"`
	ActionStatus models.ActionStatus `bson:"action_status" json:"action_status"`
}

// MapPoints returns the records a can see that have coordinates.
func (s *Store) MapPoints(ctx context.Context, a authz.Actor) ([]MapPoint, error) {
	filter := bson.M{"$and": []bson.M{
		customerpolicy.Base(a),
		{"latitude": bson.M{"$type": "double"}, "longitude": bson.M{"$type": "double"}},
		customerpolicy.ViewableFilter(a),
	}}
	proj := bson.M{"customer_name": 1, "latitude": 1, "longitude": 1, "action_status": 1}
	cur, err := s.c.Find(ctx, filter, options.Find().SetProjection(proj))
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var out []MapPoint
	if err := cur.All(ctx, &out); err != nil {
		return nil, err
	}
	return out, nil
}
