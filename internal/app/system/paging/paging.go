// internal/app/system/paging/paging.go
package paging

import (
	"net/http"
	"strconv"

	wafflemongo "github.com/dalemusser/waffle/pantry/mongo"
	"github.com/dalemusser/waffle/pantry/query"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// ListPageSize is used by customer, contact and address listings.
const ListPageSize = 30

// SmallPageSize is used by the user and group listings.
const SmallPageSize = 10

// ParsePage extracts the 1-based "page" query parameter. Returns 1 when
// absent or invalid.
func ParsePage(r *http.Request) int {
	n, err := strconv.Atoi(query.Get(r, "page"))
	if err != nil || n < 1 {
		return 1
	}
	return n
}

// Page is a resolved offset page.
type Page struct {
	Number int   `json:"page"`
	Size   int   `json:"page_size"`
	Total  int64 `json:"total"`
	Pages  int   `json:"pages"`
}

// Resolve clamps requested against total. A page past the last one
// resets to the first page.
func Resolve(requested, size int, total int64) Page {
	if size < 1 {
		size = ListPageSize
	}
	pages := int((total + int64(size) - 1) / int64(size))
	if pages < 1 {
		pages = 1
	}
	if requested < 1 || requested > pages {
		requested = 1
	}
	return Page{Number: requested, Size: size, Total: total, Pages: pages}
}

// HasNext reports whether another page follows.
func (p Page) HasNext() bool { return p.Number < p.Pages }

// HasPrev reports whether a page precedes this one.
func (p Page) HasPrev() bool { return p.Number > 1 }

// ApplyToFind sets skip and limit for this page.
func (p Page) ApplyToFind(find *options.FindOptions) *options.FindOptions {
	return find.SetSkip(int64((p.Number - 1) * p.Size)).SetLimit(int64(p.Size))
}

// Keyset paging, used where a list is ordered by a case-folded name.

// ParseCursors reads the "before" and "after" query parameters.
func ParseCursors(r *http.Request) (before, after string) {
	return query.Get(r, "before"), query.Get(r, "after")
}

// Direction indicates the keyset paging direction.
type Direction int

const (
	Forward  Direction = iota // ascending, "gt" window
	Backward                  // descending, "lt" window
)

// KeysetConfig is the decoded cursor state of one keyset request.
type KeysetConfig struct {
	Direction Direction
	SortOrder int
	Size      int
	Cursor    *wafflemongo.Cursor
}

// ConfigureKeyset determines direction and decodes whichever cursor is set.
func ConfigureKeyset(before, after string, size int) KeysetConfig {
	cfg := KeysetConfig{Direction: Forward, SortOrder: 1, Size: size}
	if before != "" {
		cfg.Direction = Backward
		cfg.SortOrder = -1
		if c, ok := wafflemongo.DecodeCursor(before); ok {
			cfg.Cursor = &c
		}
	} else if after != "" {
		if c, ok := wafflemongo.DecodeCursor(after); ok {
			cfg.Cursor = &c
		}
	}
	return cfg
}

// ApplyToFind sorts by sortField then _id and fetches one extra row to
// detect a following page.
func (cfg KeysetConfig) ApplyToFind(find *options.FindOptions, sortField string) *options.FindOptions {
	return find.SetSort(bson.D{
		{Key: sortField, Value: cfg.SortOrder},
		{Key: "_id", Value: cfg.SortOrder},
	}).SetLimit(int64(cfg.Size + 1))
}

// KeysetWindow returns the cursor filter, or nil on the first page.
func (cfg KeysetConfig) KeysetWindow(sortField string) bson.M {
	if cfg.Cursor == nil {
		return nil
	}
	dir := "gt"
	if cfg.Direction == Backward {
		dir = "lt"
	}
	return wafflemongo.KeysetWindow(sortField, dir, cfg.Cursor.CI, cfg.Cursor.ID)
}

// Result carries keyset navigation flags.
type Result struct {
	HasPrev bool `json:"has_prev"`
	HasNext bool `json:"has_next"`
}

// TrimPage drops the look-ahead row fetched by ApplyToFind, restores
// ascending order after a backward fetch, and reports navigation flags.
func TrimPage[T any](rows *[]T, cfg KeysetConfig) Result {
	var res Result
	if cfg.Direction == Backward {
		if len(*rows) > cfg.Size {
			*rows = (*rows)[:cfg.Size]
			res.HasPrev = true
		}
		Reverse(*rows)
		res.HasNext = true
		return res
	}
	if len(*rows) > cfg.Size {
		*rows = (*rows)[:cfg.Size]
		res.HasNext = true
	}
	res.HasPrev = cfg.Cursor != nil
	return res
}

// Reverse reverses a slice in place.
func Reverse[T any](rows []T) {
	for i, j := 0, len(rows)-1; i < j; i, j = i+1, j-1 {
		rows[i], rows[j] = rows[j], rows[i]
	}
}

// BuildCursors encodes the prev/next cursors from the first and last rows.
func BuildCursors[T any](rows []T, keyFn func(T) string, idFn func(T) primitive.ObjectID) (prev, next string) {
	if len(rows) == 0 {
		return "", ""
	}
	first, last := rows[0], rows[len(rows)-1]
	return wafflemongo.EncodeCursor(keyFn(first), idFn(first)),
		wafflemongo.EncodeCursor(keyFn(last), idFn(last))
}
