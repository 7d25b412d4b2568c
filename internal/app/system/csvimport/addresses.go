// internal/app/system/csvimport/addresses.go
package csvimport

import (
	"context"
	"io"
	"time"

	addressstore "github.com/dalemusser/sfahub/internal/app/store/addresses"
	"github.com/dalemusser/sfahub/internal/app/system/authz"
	"github.com/dalemusser/sfahub/internal/app/system/csvutil"
	"github.com/dalemusser/sfahub/internal/app/system/inputval"
	"github.com/dalemusser/sfahub/internal/app/system/metrics"
	"github.com/dalemusser/sfahub/internal/domain/errs"
	"github.com/dalemusser/sfahub/internal/domain/models"
)

// AddressOptions are the settings of an address-book import.
type AddressOptions struct {
	UTF8 bool
}

// ImportAddresses reads an address-book CSV and inserts every data row
// into a's workspace. Column 0 and columns 29-33 are ignored.
func (im *Importer) ImportAddresses(ctx context.Context, r io.Reader, opts AddressOptions, a authz.Actor) (Result, error) {
	rows, err := readRows(r, opts.UTF8, AddressColumns)
	if err != nil {
		metrics.RecordImport("addresses", err)
		return Result{}, err
	}

	now := time.Now().UTC()
	recs := make([]models.Address, 0, len(rows))
	for _, row := range rows {
		if err := csvutil.CheckColumns(row, AddressColumns); err != nil {
			metrics.RecordImport("addresses", err)
			return Result{}, err
		}
		addr := addressFromRow(row)
		addressstore.Prepare(&addr, a.WorkspaceID, a.UserID, now)
		if err := inputval.Validate(&addr).Err(); err != nil {
			metrics.RecordImport("addresses", err)
			return Result{}, &errs.ImportRowError{Row: row.Row, Err: err}
		}
		recs = append(recs, addr)
	}

	store := addressstore.New(im.DB)
	return im.commit(ctx, "addresses", len(recs), func(ctx context.Context) error {
		for i := range recs {
			if err := store.Insert(ctx, recs[i]); err != nil {
				return &errs.ImportRowError{Row: rows[i].Row, Err: err}
			}
		}
		return nil
	})
}

func addressFromRow(row csvutil.Record) models.Address {
	return models.Address{
		LastName:           row.Field(1),
		FirstName:          row.Field(2),
		LastNameKana:       row.Field(3),
		FirstNameKana:      row.Field(4),
		Post:               row.Field(5),
		CustomerName:       row.Field(6),
		CustomerNameKana:   row.Field(7),
		MailAddress:        row.Field(8),
		PhoneNumber:        row.Field(9),
		FaxNumber:          row.Field(10),
		MajorOrganization:  row.Field(11),
		MiddleOrganization: row.Field(12),
		Country:            row.Field(13),
		ZipCode:            row.Field(14),
		Address1:           row.Field(15),
		Address2:           row.Field(16),
		Address3:           row.Field(17),
		DepartmentName:     row.Field(18),
		MobilePhoneNumber:  row.Field(19),
		URL:                row.Field(20),
		ZipCode2:           row.Field(21),
		Prefectures2:       row.Field(22),
		City2:              row.Field(23),
		Street2:            row.Field(24),
		BuildingName2:      row.Field(25),
		Office2:            row.Field(26),
		PhoneNumber2:       row.Field(27),
		FaxNumber2:         row.Field(28),
	}
}
