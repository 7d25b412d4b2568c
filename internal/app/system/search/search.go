// internal/app/system/search/search.go
package search

import (
	"net/url"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/dalemusser/sfahub/internal/domain/errs"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Kind says how a query parameter becomes a filter clause.
type Kind int

const (
	Contains Kind = iota // case-insensitive substring
	Exact                // equality on the raw string
	Bool                 // "1/0/true/false" equality
	Not                  // inequality on the raw string
	IntGte
	IntLte
	FloatGte
	FloatLte
	DateGte // YYYY-MM-DD, inclusive from midnight UTC
	DateLte // YYYY-MM-DD, inclusive until the end of that day
	ObjectID
)

// Field maps one query parameter to one document field.
type Field struct {
	Param string
	Field string
	Kind  Kind
}

// DateLayout is the date format accepted by date range parameters.
const DateLayout = "2006-01-02"

// Build turns criteria into an $and of clauses. Blank values are ignored.
// Every malformed value is reported; the filter is nil when any is.
func Build(criteria map[string]string, fields []Field) (bson.M, error) {
	var (
		and []bson.M
		ve  errs.ValidationError
	)
	for _, f := range fields {
		raw := strings.TrimSpace(criteria[f.Param])
		if raw == "" {
			continue
		}
		clause, ok := f.clause(raw)
		if !ok {
			ve.Add(f.Param, "Enter a valid value.")
			continue
		}
		and = append(and, clause)
	}
	if ve.HasErrors() {
		return nil, &ve
	}
	if len(and) == 0 {
		return bson.M{}, nil
	}
	return bson.M{"$and": and}, nil
}

func (f Field) clause(raw string) (bson.M, bool) {
	switch f.Kind {
	case Contains:
		return bson.M{f.Field: primitive.Regex{Pattern: regexp.QuoteMeta(raw), Options: "i"}}, true
	case Exact:
		return bson.M{f.Field: raw}, true
	case Not:
		return bson.M{f.Field: bson.M{"$ne": raw}}, true
	case Bool:
		b, err := strconv.ParseBool(strings.ToLower(raw))
		return bson.M{f.Field: b}, err == nil
	case IntGte, IntLte:
		n, err := strconv.Atoi(raw)
		return bson.M{f.Field: bson.M{f.op(): n}}, err == nil
	case FloatGte, FloatLte:
		x, err := strconv.ParseFloat(raw, 64)
		return bson.M{f.Field: bson.M{f.op(): x}}, err == nil
	case DateGte:
		d, err := time.Parse(DateLayout, raw)
		return bson.M{f.Field: bson.M{"$gte": d}}, err == nil
	case DateLte:
		d, err := time.Parse(DateLayout, raw)
		return bson.M{f.Field: bson.M{"$lt": d.AddDate(0, 0, 1)}}, err == nil
	case ObjectID:
		id, err := primitive.ObjectIDFromHex(raw)
		return bson.M{f.Field: id}, err == nil
	}
	return nil, false
}

func (f Field) op() string {
	switch f.Kind {
	case IntGte, FloatGte:
		return "$gte"
	default:
		return "$lte"
	}
}

// Params lists the parameter names of fields.
func Params(fields []Field) []string {
	out := make([]string, 0, len(fields))
	for _, f := range fields {
		out = append(out, f.Param)
	}
	return out
}

// Criteria picks the non-blank values of params from q. When none are set
// and prev holds an encoded earlier query, that query's values are used
// instead. The effective query is returned encoded for the caller to send
// back as prev next time.
func Criteria(q url.Values, prev string, params []string) (map[string]string, string) {
	crit := pick(q, params)
	if len(crit) == 0 && prev != "" {
		if pq, err := url.ParseQuery(prev); err == nil {
			crit = pick(pq, params)
		}
	}

	enc := url.Values{}
	for k, v := range crit {
		enc.Set(k, v)
	}
	return crit, enc.Encode()
}

func pick(q url.Values, params []string) map[string]string {
	crit := make(map[string]string)
	for _, p := range params {
		if v := strings.TrimSpace(q.Get(p)); v != "" {
			crit[p] = v
		}
	}
	return crit
}
