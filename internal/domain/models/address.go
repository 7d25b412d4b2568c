// internal/domain/models/address.go
package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Address is an address-book entry (business card). It is scoped to a
// workspace only and is not subject to customer sharing rules.
type Address struct {
	ID          primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	WorkspaceID primitive.ObjectID `bson:"workspace_id" json:"workspace_id"`

	LastName           string `bson:"last_name" json:"last_name" validate:"max=20" label:"Last name"`
	FirstName          string `bson:"first_name" json:"first_name" validate:"max=20" label:"First name"`
	LastNameKana       string `bson:"last_name_kana" json:"last_name_kana" validate:"max=20" label:"Last name (kana)"`
	FirstNameKana      string `bson:"first_name_kana" json:"first_name_kana" validate:"max=20" label:"First name (kana)"`
	Post               string `bson:"post" json:"post" validate:"max=256" label:"Post"`
	CustomerName       string `bson:"customer_name" json:"customer_name" validate:"max=40" label:"Company"`
	CustomerNameKana   string `bson:"customer_name_kana" json:"customer_name_kana" validate:"max=40" label:"Company (kana)"`
	MailAddress        string `bson:"mail_address" json:"mail_address" validate:"omitempty,email,max=256" label:"Email"`
	PhoneNumber        string `bson:"phone_number" json:"phone_number" validate:"max=15" label:"Phone"`
	FaxNumber          string `bson:"fax_number" json:"fax_number" validate:"max=15" label:"Fax"`
	MajorOrganization  string `bson:"major_organization" json:"major_organization" validate:"max=20" label:"Division"`
	MiddleOrganization string `bson:"middle_organization" json:"middle_organization" validate:"max=20" label:"Section"`
	Country            string `bson:"country" json:"country" validate:"max=20" label:"Country"`
	ZipCode            string `bson:"zip_code" json:"zip_code" validate:"max=8" label:"Postal code"`
	Address1           string `bson:"address1" json:"address1" validate:"max=40" label:"Address 1"`
	Address2           string `bson:"address2" json:"address2" validate:"max=80" label:"Address 2"`
	Address3           string `bson:"address3" json:"address3" validate:"max=40" label:"Address 3"`
	DepartmentName     string `bson:"department_name" json:"department_name" validate:"max=256" label:"Department"`
	MobilePhoneNumber  string `bson:"mobile_phone_number" json:"mobile_phone_number" validate:"max=15" label:"Mobile"`
	URL                string `bson:"url" json:"url" validate:"omitempty,httpurl,max=512" label:"URL"`

	// Secondary (office) address block
	ZipCode2      string `bson:"zip_code_2" json:"zip_code_2" validate:"max=8" label:"Office postal code"`
	Prefectures2  string `bson:"prefectures_2" json:"prefectures_2" validate:"max=10" label:"Office prefecture"`
	City2         string `bson:"city_2" json:"city_2" validate:"max=20" label:"Office city"`
	Street2       string `bson:"address_2" json:"address_2" validate:"max=80" label:"Office address"`
	BuildingName2 string `bson:"building_name_2" json:"building_name_2" validate:"max=40" label:"Office building"`
	Office2       string `bson:"office_2" json:"office_2" validate:"max=40" label:"Office"`
	PhoneNumber2  string `bson:"phone_number_2" json:"phone_number_2" validate:"max=15" label:"Office phone"`
	FaxNumber2    string `bson:"fax_number_2" json:"fax_number_2" validate:"max=15" label:"Office fax"`

	Remarks    string `bson:"remarks" json:"remarks" validate:"max=4096" label:"Remarks"`
	RelatedFlg bool   `bson:"related_flg" json:"related_flg"`

	AuthorID   primitive.ObjectID `bson:"author_id" json:"author_id"`
	ModifierID primitive.ObjectID `bson:"modifier_id" json:"modifier_id"`
	CreatedAt  time.Time          `bson:"created_at" json:"created_at"`
	UpdatedAt  time.Time          `bson:"updated_at" json:"updated_at"`
}
