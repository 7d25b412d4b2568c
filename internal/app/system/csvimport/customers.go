// internal/app/system/csvimport/customers.go
package csvimport

import (
	"context"
	"errors"
	"io"
	"time"

	customerstore "github.com/dalemusser/sfahub/internal/app/store/customers"
	"github.com/dalemusser/sfahub/internal/app/system/authz"
	"github.com/dalemusser/sfahub/internal/app/system/csvutil"
	"github.com/dalemusser/sfahub/internal/app/system/inputval"
	"github.com/dalemusser/sfahub/internal/app/system/metrics"
	"github.com/dalemusser/sfahub/internal/domain/errs"
	"github.com/dalemusser/sfahub/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// CustomerOptions are the form-level settings of a customer import. Zero
// values leave the per-row or default value in place.
type CustomerOptions struct {
	UTF8 bool

	PublicStatus models.PublicStatus
	SalesPerson  *primitive.ObjectID
	ActionStatus models.ActionStatus

	// DataSource and Potential fill blank cells.
	DataSource string
	Potential  int

	SharedEditGroups []primitive.ObjectID
	SharedViewGroups []primitive.ObjectID
	SharedEditUsers  []primitive.ObjectID
	SharedViewUsers  []primitive.ObjectID
}

// ImportCustomers reads a customer CSV and inserts every data row as a
// customer owned by a. See the package doc for atomicity.
func (im *Importer) ImportCustomers(ctx context.Context, r io.Reader, opts CustomerOptions, a authz.Actor) (Result, error) {
	rows, err := readRows(r, opts.UTF8, CustomerColumns)
	if err != nil {
		metrics.RecordImport("customers", err)
		return Result{}, err
	}

	now := time.Now().UTC()
	recs := make([]models.Customer, 0, len(rows))
	for _, row := range rows {
		if err := csvutil.CheckColumns(row, CustomerColumns); err != nil {
			metrics.RecordImport("customers", err)
			return Result{}, err
		}
		c, err := customerFromRow(row, opts, a, now)
		if err != nil {
			metrics.RecordImport("customers", err)
			return Result{}, &errs.ImportRowError{Row: row.Row, Err: err}
		}
		recs = append(recs, c)
	}

	store := customerstore.New(im.DB)
	return im.commit(ctx, "customers", len(recs), func(ctx context.Context) error {
		for i := range recs {
			counts, err := store.CountDuplicatesAll(ctx, recs[i].Phones(), a)
			if err != nil {
				return &errs.ImportRowError{Row: rows[i].Row, Err: err}
			}
			recs[i].DuplicateCounts = counts
			if err := store.Insert(ctx, recs[i]); err != nil {
				return &errs.ImportRowError{Row: rows[i].Row, Err: err}
			}
		}
		return nil
	})
}

func customerFromRow(row csvutil.Record, opts CustomerOptions, a authz.Actor, now time.Time) (models.Customer, error) {
	var ve errs.ValidationError
	flag := func(i int, field string) bool {
		b, err := csvutil.ParseBool(row.Field(i))
		if err != nil {
			ve.Add(field, err.Error())
		}
		return b
	}
	coord := func(i int, field string) *float64 {
		f, err := csvutil.ParseOptionalFloat(row.Field(i))
		if err != nil {
			ve.Add(field, err.Error())
		}
		return f
	}

	c := models.Customer{
		CorporateNumber: row.Field(0),
		OptionalCode1:   row.Field(1),
		OptionalCode2:   row.Field(2),
		OptionalCode3:   row.Field(3),
		CustomerName:    row.Field(4),
		DepartmentName:  row.Field(5),
		TelNumber1:      row.Field(6),
		TelNumber2:      row.Field(7),
		TelNumber3:      row.Field(8),
		FaxNumber:       row.Field(9),
		MailAddress:     row.Field(10),
		Representative:  row.Field(11),
		ContactName:     row.Field(12),
		ZipCode:         row.Field(13),
		Address1:        row.Field(14),
		Address2:        row.Field(15),
		Address3:        row.Field(16),
		Latitude:        coord(17, "latitude"),
		Longitude:       coord(18, "longitude"),
		URL1:            row.Field(19),
		URL2:            row.Field(20),
		URL3:            row.Field(21),
		IndustryCode:    row.Field(22),
		DataSource:      row.Field(23),
		ContractedFlg:   flag(24, "contracted_flg"),
		TelLimitFlg:     flag(26, "tel_limit_flg"),
		FaxLimitFlg:     flag(27, "fax_limit_flg"),
		MailLimitFlg:    flag(28, "mail_limit_flg"),
		AttentionFlg:    flag(29, "attention_flg"),
		Remarks:         row.Field(30),
	}
	if c.DataSource == "" {
		c.DataSource = opts.DataSource
	}
	def := int64(opts.Potential)
	if def == 0 {
		def = models.DefaultPotential
	}
	potential, err := csvutil.ParseOptionalInt(row.Field(25), def)
	if err != nil {
		ve.Add("potential", err.Error())
	}
	c.Potential = int(potential)

	c.PublicStatus = opts.PublicStatus
	c.ActionStatus = opts.ActionStatus
	c.SalesPerson = opts.SalesPerson
	c.SharedEditGroups = opts.SharedEditGroups
	c.SharedViewGroups = opts.SharedViewGroups
	c.SharedEditUsers = opts.SharedEditUsers
	c.SharedViewUsers = opts.SharedViewUsers

	customerstore.Prepare(&c, a, now)

	var fe *errs.ValidationError
	if errors.As(inputval.Validate(&c).Err(), &fe) {
		ve.Merge(fe)
	}
	return c, ve.OrNil()
}
