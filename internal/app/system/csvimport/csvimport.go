// Package csvimport loads customer and address-book CSV files.
//
// An import is all or nothing. Every row is parsed and validated before
// anything is written, and the writes share one transaction. A deployment
// without transactions fails the import rather than committing part of it.
package csvimport

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/dalemusser/sfahub/internal/app/system/csvutil"
	"github.com/dalemusser/sfahub/internal/app/system/metrics"
	"github.com/dalemusser/sfahub/internal/app/system/txn"
	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

// Column counts, header row included.
const (
	CustomerColumns = 31
	AddressColumns  = 34
)

var (
	// ErrTransactionsUnavailable means the import was refused because the
	// database cannot guarantee atomicity.
	ErrTransactionsUnavailable = errors.New("csv import requires a replica set with transaction support")
	// ErrEmpty means the file has no header row.
	ErrEmpty = errors.New("csv file is empty")
)

type Importer struct {
	DB  *mongo.Database
	Log *zap.Logger
}

func New(db *mongo.Database, log *zap.Logger) *Importer {
	return &Importer{DB: db, Log: log}
}

// Result describes a committed import.
type Result struct {
	BatchID string `json:"batch_id"`
	Rows    int    `json:"rows"`
}

// readRows decodes r, checks the header width and returns the data rows.
// Data row widths are checked by the caller, in row order with the rest of
// the row checks, so the first failing row is the one reported.
func readRows(r io.Reader, utf8 bool, width int) ([]csvutil.Record, error) {
	recs, err := csvutil.ReadAll(r, csvutil.ReadOptions{UTF8: utf8})
	if err != nil {
		return nil, err
	}
	if len(recs) == 0 {
		return nil, ErrEmpty
	}
	if err := csvutil.CheckColumns(recs[0], width); err != nil {
		return nil, err
	}
	return recs[1:], nil
}

// commit runs write in a required transaction and records the outcome.
func (im *Importer) commit(ctx context.Context, kind string, rows int, write func(ctx context.Context) error) (Result, error) {
	res := Result{BatchID: uuid.NewString(), Rows: rows}
	err := txn.RunRequired(ctx, im.DB, write)
	if errors.Is(err, txn.ErrNotSupported) {
		err = fmt.Errorf("%w: %v", ErrTransactionsUnavailable, err)
	}
	im.finish(kind, res, err)
	if err != nil {
		return Result{}, err
	}
	return res, nil
}

func (im *Importer) finish(kind string, res Result, err error) {
	metrics.RecordImport(kind, err)
	log := im.Log
	if log == nil {
		log = zap.L()
	}
	if err != nil {
		log.Warn("csv import failed", zap.String("kind", kind), zap.String("batch_id", res.BatchID), zap.Error(err))
		return
	}
	log.Info("csv import committed", zap.String("kind", kind), zap.String("batch_id", res.BatchID), zap.Int("rows", res.Rows))
}
