// internal/app/features/uploadcsv/types.go
package uploadcsv

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/dalemusser/sfahub/internal/app/system/csvimport"
	"github.com/dalemusser/sfahub/internal/domain/errs"
	"github.com/dalemusser/sfahub/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func formBool(r *http.Request, key string) bool {
	switch strings.ToLower(strings.TrimSpace(r.FormValue(key))) {
	case "1", "true", "on", "yes":
		return true
	}
	return false
}

// formIDs collects object IDs from repeated or comma-separated values.
// Duplicates are dropped.
func formIDs(r *http.Request, key string, ve *errs.ValidationError) []primitive.ObjectID {
	var out []primitive.ObjectID
	seen := map[primitive.ObjectID]struct{}{}
	for _, v := range r.MultipartForm.Value[key] {
		for _, part := range strings.Split(v, ",") {
			part = strings.TrimSpace(part)
			if part == "" {
				continue
			}
			id, err := primitive.ObjectIDFromHex(part)
			if err != nil {
				ve.Add(key, "Contains an invalid ID.")
				return nil
			}
			if _, dup := seen[id]; !dup {
				seen[id] = struct{}{}
				out = append(out, id)
			}
		}
	}
	return out
}

// customerOptions reads the form-level settings of a customer import.
func customerOptions(r *http.Request) (csvimport.CustomerOptions, error) {
	ve := new(errs.ValidationError)
	opts := csvimport.CustomerOptions{
		UTF8:             formBool(r, "utf8"),
		PublicStatus:     models.PublicStatus(strings.TrimSpace(r.FormValue("public_status"))),
		ActionStatus:     models.ActionStatus(strings.TrimSpace(r.FormValue("action_status"))),
		DataSource:       strings.TrimSpace(r.FormValue("data_source")),
		SharedEditGroups: formIDs(r, "shared_edit_groups", ve),
		SharedViewGroups: formIDs(r, "shared_view_groups", ve),
		SharedEditUsers:  formIDs(r, "shared_edit_users", ve),
		SharedViewUsers:  formIDs(r, "shared_view_users", ve),
	}
	if opts.PublicStatus != "" && !opts.PublicStatus.Valid() {
		ve.Add("public_status", "Select a valid public status.")
	}
	if opts.ActionStatus != "" && !opts.ActionStatus.Valid() {
		ve.Add("action_status", "Select a valid action status.")
	}
	if len(opts.DataSource) > 40 {
		ve.Add("data_source", "Data source must be at most 40 characters.")
	}
	if s := strings.TrimSpace(r.FormValue("potential")); s != "" {
		n, err := strconv.Atoi(s)
		if err != nil || n < 0 {
			ve.Add("potential", "Potential must be a non-negative whole number.")
		}
		opts.Potential = n
	}
	if s := strings.TrimSpace(r.FormValue("sales_person")); s != "" {
		id, err := primitive.ObjectIDFromHex(s)
		if err != nil {
			ve.Add("sales_person", "Select a member of this workspace.")
		} else {
			opts.SalesPerson = &id
		}
	}
	return opts, ve.OrNil()
}
