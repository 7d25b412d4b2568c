// internal/domain/models/customer.go
package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// ActionStatus is the sales workflow stage of a customer record.
type ActionStatus string

const (
	ActionNotStarted ActionStatus = "0"
	ActionPlanned    ActionStatus = "1"
	ActionInProgress ActionStatus = "2"
	ActionFinished   ActionStatus = "3"
)

// Valid reports whether s is a known stage.
func (s ActionStatus) Valid() bool {
	switch s {
	case ActionNotStarted, ActionPlanned, ActionInProgress, ActionFinished:
		return true
	}
	return false
}

// PublicStatus is the record-level default visibility.
type PublicStatus string

const (
	PublicPrivate    PublicStatus = "0"
	PublicViewShared PublicStatus = "1"
	PublicEditShared PublicStatus = "2"
)

// Valid reports whether s is a known visibility.
func (s PublicStatus) Valid() bool {
	switch s {
	case PublicPrivate, PublicViewShared, PublicEditShared:
		return true
	}
	return false
}

// DefaultPotential is used when a record is created without a potential.
const DefaultPotential = 80000

// Customer is the primary business record. It is never physically deleted:
// DeleteFlg gates every query.
//
// Author and Modifier hold e-mail strings, not user references, so they
// survive renames and account removal.
type Customer struct {
	ID          primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	WorkspaceID primitive.ObjectID `bson:"workspace_id" json:"workspace_id"`

	CorporateNumber string `bson:"corporate_number" json:"corporate_number" validate:"omitempty,digits,max=13" label:"Corporate number"`
	OptionalCode1   string `bson:"optional_code1" json:"optional_code1" validate:"max=16" label:"Optional code 1"`
	OptionalCode2   string `bson:"optional_code2" json:"optional_code2" validate:"max=16" label:"Optional code 2"`
	OptionalCode3   string `bson:"optional_code3" json:"optional_code3" validate:"max=16" label:"Optional code 3"`
	CustomerName    string `bson:"customer_name" json:"customer_name" validate:"required,max=40" label:"Customer name"`
	DepartmentName  string `bson:"department_name" json:"department_name" validate:"max=256" label:"Department"`
	TelNumber1      string `bson:"tel_number1" json:"tel_number1" validate:"omitempty,digits,max=15" label:"Phone 1"`
	TelNumber2      string `bson:"tel_number2" json:"tel_number2" validate:"omitempty,digits,max=15" label:"Phone 2"`
	TelNumber3      string `bson:"tel_number3" json:"tel_number3" validate:"omitempty,digits,max=15" label:"Phone 3"`
	FaxNumber       string `bson:"fax_number" json:"fax_number" validate:"omitempty,digits,max=15" label:"Fax"`
	MailAddress     string `bson:"mail_address" json:"mail_address" validate:"omitempty,email,max=256" label:"Email"`
	Representative  string `bson:"representative" json:"representative" validate:"max=30" label:"Representative"`
	ContactName     string `bson:"contact_name" json:"contact_name" validate:"max=30" label:"Contact name"`
	ZipCode         string `bson:"zip_code" json:"zip_code" validate:"omitempty,digits,max=8" label:"Postal code"`
	Address1        string `bson:"address1" json:"address1" validate:"max=40" label:"Address 1"`
	Address2        string `bson:"address2" json:"address2" validate:"max=40" label:"Address 2"`
	Address3        string `bson:"address3" json:"address3" validate:"max=40" label:"Address 3"`

	Latitude  *float64 `bson:"latitude,omitempty" json:"latitude,omitempty" validate:"omitempty,gte=-90,lte=90" label:"Latitude"`
	Longitude *float64 `bson:"longitude,omitempty" json:"longitude,omitempty" validate:"omitempty,gte=-180,lte=180" label:"Longitude"`

	URL1               string `bson:"url1" json:"url1" validate:"omitempty,httpurl,max=512" label:"URL 1"`
	URL2               string `bson:"url2" json:"url2" validate:"omitempty,httpurl,max=512" label:"URL 2"`
	URL3               string `bson:"url3" json:"url3" validate:"omitempty,httpurl,max=512" label:"URL 3"`
	IndustryCode       string `bson:"industry_code" json:"industry_code" validate:"max=40" label:"Industry code"`
	DataSource         string `bson:"data_source" json:"data_source" validate:"max=40" label:"Data source"`
	ContractedFlg      bool   `bson:"contracted_flg" json:"contracted_flg"`
	Potential          int    `bson:"potential" json:"potential" validate:"gte=0" label:"Potential"`
	TelLimitFlg        bool   `bson:"tel_limit_flg" json:"tel_limit_flg"`
	FaxLimitFlg        bool   `bson:"fax_limit_flg" json:"fax_limit_flg"`
	MailLimitFlg       bool   `bson:"mail_limit_flg" json:"mail_limit_flg"`
	AttentionFlg       bool   `bson:"attention_flg" json:"attention_flg"`
	RelatedDocumentURL string `bson:"related_document_url" json:"related_document_url" validate:"omitempty,httpurl,max=512" label:"Related document URL"`
	Remarks            string `bson:"remarks" json:"remarks" validate:"max=4096" label:"Remarks"`

	// Sharing
	PublicStatus     PublicStatus         `bson:"public_status" json:"public_status" validate:"publicstatus" label:"Public status"`
	SharedEditGroups []primitive.ObjectID `bson:"shared_edit_groups" json:"shared_edit_groups"`
	SharedViewGroups []primitive.ObjectID `bson:"shared_view_groups" json:"shared_view_groups"`
	SharedEditUsers  []primitive.ObjectID `bson:"shared_edit_users" json:"shared_edit_users"`
	SharedViewUsers  []primitive.ObjectID `bson:"shared_view_users" json:"shared_view_users"`

	// Workflow
	SalesPerson  *primitive.ObjectID `bson:"sales_person,omitempty" json:"sales_person,omitempty"`
	ActionStatus ActionStatus        `bson:"action_status" json:"action_status" validate:"actionstatus" label:"Action status"`
	TelCalledFlg bool                `bson:"tel_called_flg" json:"tel_called_flg"`
	MailSentFlg  bool                `bson:"mail_sent_flg" json:"mail_sent_flg"`
	FaxSentFlg   bool                `bson:"fax_sent_flg" json:"fax_sent_flg"`
	DMSentFlg    bool                `bson:"dm_sent_flg" json:"dm_sent_flg"`
	VisitedFlg   bool                `bson:"visited_flg" json:"visited_flg"`

	// DuplicateCounts holds, per tel_number1..3, how many other visible
	// records shared that number when this one was last saved.
	DuplicateCounts [3]int64 `bson:"duplicate_counts" json:"duplicate_counts"`

	DeleteFlg bool      `bson:"delete_flg" json:"-"`
	Author    string    `bson:"author" json:"author"`
	Modifier  string    `bson:"modifier" json:"modifier"`
	CreatedAt time.Time `bson:"created_at" json:"created_at"`
	UpdatedAt time.Time `bson:"updated_at" json:"updated_at"`
}

// Phones returns the three phone fields in order.
func (c Customer) Phones() [3]string {
	return [3]string{c.TelNumber1, c.TelNumber2, c.TelNumber3}
}

// GeocodeAddress is the address string sent to the geocoder.
func (c Customer) GeocodeAddress() string {
	return c.Address1 + c.Address2
}

// HasCoordinates reports whether both latitude and longitude are set.
func (c Customer) HasCoordinates() bool {
	return c.Latitude != nil && c.Longitude != nil
}
