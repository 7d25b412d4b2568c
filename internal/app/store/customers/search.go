// internal/app/store/customers/search.go
package customerstore

import (
	"github.com/dalemusser/sfahub/internal/app/system/normalize"
	"github.com/dalemusser/sfahub/internal/app/system/search"
	"go.mongodb.org/mongo-driver/bson"
)

// SearchFields are the listing query parameters.
var SearchFields = []search.Field{
	{Param: "corporate_number", Field: "corporate_number", Kind: search.Contains},
	{Param: "optional_code1", Field: "optional_code1", Kind: search.Contains},
	{Param: "optional_code2", Field: "optional_code2", Kind: search.Contains},
	{Param: "optional_code3", Field: "optional_code3", Kind: search.Contains},
	{Param: "customer_name", Field: "customer_name", Kind: search.Contains},
	{Param: "department_name", Field: "department_name", Kind: search.Contains},
	{Param: "tel_number1", Field: "tel_number1", Kind: search.Contains},
	{Param: "tel_number2", Field: "tel_number2", Kind: search.Contains},
	{Param: "tel_number3", Field: "tel_number3", Kind: search.Contains},
	{Param: "fax_number", Field: "fax_number", Kind: search.Contains},
	{Param: "mail_address", Field: "mail_address", Kind: search.Contains},
	{Param: "representative", Field: "representative", Kind: search.Contains},
	{Param: "contact_name", Field: "contact_name", Kind: search.Contains},
	{Param: "zip_code", Field: "zip_code", Kind: search.Contains},
	{Param: "address1", Field: "address1", Kind: search.Contains},
	{Param: "address2", Field: "address2", Kind: search.Contains},
	{Param: "address3", Field: "address3", Kind: search.Contains},
	{Param: "url1", Field: "url1", Kind: search.Contains},
	{Param: "industry_code", Field: "industry_code", Kind: search.Contains},
	{Param: "data_source", Field: "data_source", Kind: search.Contains},
	{Param: "remarks", Field: "remarks", Kind: search.Contains},

	{Param: "action_status", Field: "action_status", Kind: search.Exact},
	{Param: "action_status_ex", Field: "action_status", Kind: search.Not},
	{Param: "public_status", Field: "public_status", Kind: search.Exact},
	{Param: "sales_person", Field: "sales_person", Kind: search.ObjectID},

	{Param: "contracted_flg", Field: "contracted_flg", Kind: search.Bool},
	{Param: "tel_limit_flg", Field: "tel_limit_flg", Kind: search.Bool},
	{Param: "fax_limit_flg", Field: "fax_limit_flg", Kind: search.Bool},
	{Param: "mail_limit_flg", Field: "mail_limit_flg", Kind: search.Bool},
	{Param: "attention_flg", Field: "attention_flg", Kind: search.Bool},
	{Param: "tel_called_flg", Field: "tel_called_flg", Kind: search.Bool},
	{Param: "mail_sent_flg", Field: "mail_sent_flg", Kind: search.Bool},
	{Param: "fax_sent_flg", Field: "fax_sent_flg", Kind: search.Bool},
	{Param: "dm_sent_flg", Field: "dm_sent_flg", Kind: search.Bool},
	{Param: "visited_flg", Field: "visited_flg", Kind: search.Bool},

	{Param: "potential_gte", Field: "potential", Kind: search.IntGte},
	{Param: "potential_lte", Field: "potential", Kind: search.IntLte},
	{Param: "latitude_gte", Field: "latitude", Kind: search.FloatGte},
	{Param: "latitude_lte", Field: "latitude", Kind: search.FloatLte},
	{Param: "longitude_gte", Field: "longitude", Kind: search.FloatGte},
	{Param: "longitude_lte", Field: "longitude", Kind: search.FloatLte},
	{Param: "created_at_gte", Field: "created_at", Kind: search.DateGte},
	{Param: "created_at_lte", Field: "created_at", Kind: search.DateLte},
}

// DefaultExcludedStatus hides finished records unless the caller says
// otherwise.
const DefaultExcludedStatus = "3"

// SearchFilter turns listing criteria into a filter. Phone, postal and
// corporate number criteria are normalized the way the fields are stored.
func SearchFilter(criteria map[string]string) (bson.M, error) {
	return search.Build(normalize.SearchCriteria(criteria), SearchFields)
}
