package csvimport_test

import (
	"context"
	"strings"
	"testing"

	"github.com/dalemusser/sfahub/internal/app/system/authz"
	"github.com/dalemusser/sfahub/internal/app/system/csvimport"
	"github.com/dalemusser/sfahub/internal/domain/errs"
	"github.com/dalemusser/sfahub/internal/domain/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

// The cases below fail before any write, so the importer needs no database.

func offlineActor() authz.Actor {
	return authz.Actor{
		UserID:          primitive.NewObjectID(),
		Email:           "me@example.com",
		WorkspaceID:     primitive.NewObjectID(),
		WorkspaceActive: true,
		Role:            models.RoleGeneral,
	}
}

func withField(row []string, i int, v string) []string {
	row[i] = v
	return row
}

func TestImportCustomers_RowChecksOffline(t *testing.T) {
	good := func() []string { return customerRow("Acme", "03-1111-2222") }
	hdr := header(csvimport.CustomerColumns)

	tests := []struct {
		name string
		in   string

		wantMismatchRow int // set when an *ImportColumnMismatch is expected
		wantActual      int
		wantRowErr      int // set when an *ImportRowError is expected
		wantFields      []string
	}{
		{
			name:       "bad row reported before a later short row",
			in:         csvText(hdr, good(), withField(good(), 17, "not-a-number"), good()[:30]),
			wantRowErr: 3,
			wantFields: []string{"latitude"},
		},
		{
			name:            "short row reported before a later bad row",
			in:              csvText(hdr, good(), good()[:30], withField(good(), 17, "not-a-number")),
			wantMismatchRow: 3,
			wantActual:      30,
		},
		{
			name:            "blank line is a zero-column row",
			in:              csvText(hdr, good()) + "\n" + csvText(good()[:30]),
			wantMismatchRow: 3,
			wantActual:      0,
		},
		{
			name:            "quoted newline advances the line count",
			in:              csvText(hdr, withField(good(), 30, "\"line one\nline two\""), good()[:29]),
			wantMismatchRow: 4,
			wantActual:      29,
		},
		{
			name:       "bad boolean",
			in:         csvText(hdr, withField(good(), 24, "maybe")),
			wantRowErr: 2,
			wantFields: []string{"contracted_flg"},
		},
		{
			name:       "bad potential",
			in:         csvText(hdr, good(), withField(good(), 25, "lots")),
			wantRowErr: 3,
			wantFields: []string{"potential"},
		},
		{
			name:       "missing customer name",
			in:         csvText(hdr, good(), good(), customerRow("", "")),
			wantRowErr: 4,
			wantFields: []string{"customer_name"},
		},
		{
			name:            "header width",
			in:              csvText(header(30), good()[:30]),
			wantMismatchRow: 1,
			wantActual:      30,
		},
	}

	im := csvimport.New(nil, zap.NewNop())
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := im.ImportCustomers(context.Background(), strings.NewReader(tt.in), csvimport.CustomerOptions{UTF8: true}, offlineActor())
			require.Error(t, err)

			if tt.wantMismatchRow > 0 {
				var mm *errs.ImportColumnMismatch
				require.ErrorAs(t, err, &mm)
				assert.Equal(t, tt.wantMismatchRow, mm.Row)
				assert.Equal(t, csvimport.CustomerColumns, mm.Expected)
				assert.Equal(t, tt.wantActual, mm.Actual)
				return
			}

			var rowErr *errs.ImportRowError
			require.ErrorAs(t, err, &rowErr)
			assert.Equal(t, tt.wantRowErr, rowErr.Row)

			var ve *errs.ValidationError
			require.ErrorAs(t, err, &ve)
			assert.Equal(t, tt.wantFields, ve.SortedFields())
		})
	}
}

func TestImportCustomers_EmptyOffline(t *testing.T) {
	_, err := csvimport.New(nil, zap.NewNop()).ImportCustomers(context.Background(), strings.NewReader(""), csvimport.CustomerOptions{UTF8: true}, offlineActor())
	assert.ErrorIs(t, err, csvimport.ErrEmpty)
}

func TestImportAddresses_RowChecksOffline(t *testing.T) {
	hdr := header(csvimport.AddressColumns)
	good := func() []string { return addressRow("Yamada") }

	tests := []struct {
		name            string
		in              string
		wantMismatchRow int
		wantRowErr      int
	}{
		{"bad email before short row", csvText(hdr, withField(good(), 8, "not-an-email"), good()[:33]), 0, 2},
		{"short row before bad email", csvText(hdr, good()[:33], withField(good(), 8, "not-an-email")), 2, 0},
		{"blank line", csvText(hdr, good(), good()) + "\n" + csvText(good()), 4, 0},
	}

	im := csvimport.New(nil, zap.NewNop())
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := im.ImportAddresses(context.Background(), strings.NewReader(tt.in), csvimport.AddressOptions{UTF8: true}, offlineActor())
			require.Error(t, err)

			if tt.wantMismatchRow > 0 {
				var mm *errs.ImportColumnMismatch
				require.ErrorAs(t, err, &mm)
				assert.Equal(t, tt.wantMismatchRow, mm.Row)
				return
			}
			var rowErr *errs.ImportRowError
			require.ErrorAs(t, err, &rowErr)
			assert.Equal(t, tt.wantRowErr, rowErr.Row)
		})
	}
}
