// internal/app/system/csvutil/reader.go
package csvutil

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/dalemusser/sfahub/internal/domain/errs"
	"golang.org/x/text/encoding/japanese"
	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"
)

// ErrTooManyRows is returned when a file has more data rows than allowed.
var ErrTooManyRows = errors.New("csv has too many rows")

// ReadOptions controls ReadAll.
type ReadOptions struct {
	// UTF8 reads the input as UTF-8 (BOM stripped). Otherwise it is
	// decoded from Shift_JIS / CP932, the spreadsheet export default.
	UTF8 bool
	// MaxRows caps data rows (header excluded). Zero means MaxRows.
	MaxRows int
}

// Record is one CSV row. Row is the 1-based line the row starts on. A
// blank line between rows is returned as a Record with no Fields.
type Record struct {
	Row    int
	Fields []string
}

// Decoder wraps r with the text decoding chosen by opts.
func Decoder(r io.Reader, opts ReadOptions) io.Reader {
	if opts.UTF8 {
		return transform.NewReader(r, unicode.BOMOverride(unicode.UTF8.NewDecoder()))
	}
	return transform.NewReader(r, japanese.ShiftJIS.NewDecoder())
}

// ReadAll decodes r and returns every row, header included. Rows may have
// any number of fields; callers check widths with CheckColumns, which
// rejects blank lines. Blank lines after the last row are ignored.
func ReadAll(r io.Reader, opts ReadOptions) ([]Record, error) {
	limit := opts.MaxRows
	if limit <= 0 {
		limit = MaxRows
	}

	reader := csv.NewReader(Decoder(r, opts))
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true

	var out []Record
	add := func(rec Record) error {
		out = append(out, rec)
		if len(out)-1 > limit {
			return ErrTooManyRows
		}
		return nil
	}

	next := 1
	for {
		rec, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read csv: %w", err)
		}
		line, _ := reader.FieldPos(0)
		// encoding/csv skips empty lines; put them back.
		for ; next < line; next++ {
			if err := add(Record{Row: next}); err != nil {
				return nil, err
			}
		}
		if err := add(Record{Row: line, Fields: rec}); err != nil {
			return nil, err
		}
		last, _ := reader.FieldPos(len(rec) - 1)
		next = last + strings.Count(rec[len(rec)-1], "\n") + 1
	}
	return out, nil
}

// CheckColumns returns an *errs.ImportColumnMismatch unless rec has
// exactly want fields.
func CheckColumns(rec Record, want int) error {
	if len(rec.Fields) != want {
		return &errs.ImportColumnMismatch{Row: rec.Row, Expected: want, Actual: len(rec.Fields)}
	}
	return nil
}

// Field returns the trimmed value at i, or "" when the row is short.
func (r Record) Field(i int) string {
	if i < 0 || i >= len(r.Fields) {
		return ""
	}
	return strings.TrimSpace(r.Fields[i])
}

// ParseBool accepts 1/0, true/false and yes/no in any case. Blank is false.
func ParseBool(s string) (bool, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "0", "false", "no":
		return false, nil
	case "1", "true", "yes":
		return true, nil
	}
	return false, fmt.Errorf("invalid boolean %q", s)
}

// ParseOptionalFloat returns nil for blank input.
func ParseOptionalFloat(s string) (*float64, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, nil
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return nil, fmt.Errorf("invalid number %q", s)
	}
	return &f, nil
}

// ParseOptionalInt returns def for blank input.
func ParseOptionalInt(s string, def int64) (int64, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return def, nil
	}
	n, err := strconv.ParseInt(strings.ReplaceAll(s, ",", ""), 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid integer %q", s)
	}
	return n, nil
}
