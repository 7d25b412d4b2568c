// internal/domain/models/contact.go
package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// ContactType is the channel of a contact-history entry.
type ContactType string

const (
	ContactVisit        ContactType = "0"
	ContactInboundCall  ContactType = "1"
	ContactOutboundCall ContactType = "2"
	ContactMail         ContactType = "3"
	ContactFax          ContactType = "4"
	ContactDM           ContactType = "5"
)

// Valid reports whether t is a known channel.
func (t ContactType) Valid() bool {
	switch t {
	case ContactVisit, ContactInboundCall, ContactOutboundCall, ContactMail, ContactFax, ContactDM:
		return true
	}
	return false
}

// Contact is one visit, call, mail, fax or DM against a customer.
// Operator and customer always share WorkspaceID.
//
// Dates are stored as "YYYY-MM-DD" and times as "HH:MM" so that a plan for
// a given day does not depend on the server time zone.
type Contact struct {
	ID          primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	WorkspaceID primitive.ObjectID `bson:"workspace_id" json:"workspace_id"`
	CustomerID  primitive.ObjectID `bson:"customer_id" json:"customer_id"`
	OperatorID  primitive.ObjectID `bson:"operator_id" json:"operator_id"`

	ContactType  ContactType `bson:"contact_type" json:"contact_type" validate:"contacttype" label:"Contact type"`
	TargetPerson string      `bson:"target_person" json:"target_person" validate:"max=40" label:"Target person"`
	ContactAt    time.Time   `bson:"contact_at" json:"contact_at"`
	TelNumber    string      `bson:"tel_number" json:"tel_number" validate:"omitempty,digits,max=15" label:"Phone"`
	MailAddress  string      `bson:"mail_address" json:"mail_address" validate:"omitempty,email,max=256" label:"Email"`
	CalledFlg    bool        `bson:"called_flg" json:"called_flg"`
	VisitedFlg   bool        `bson:"visited_flg" json:"visited_flg"`

	VisitDatePlan string `bson:"visit_date_plan,omitempty" json:"visit_date_plan,omitempty" validate:"omitempty,datetime=2006-01-02" label:"Planned visit date"`
	VisitDateAct  string `bson:"visit_date_act,omitempty" json:"visit_date_act,omitempty" validate:"omitempty,datetime=2006-01-02" label:"Visit date"`
	StartTimePlan string `bson:"start_time_plan,omitempty" json:"start_time_plan,omitempty" validate:"omitempty,datetime=15:04" label:"Planned start"`
	EndTimePlan   string `bson:"end_time_plan,omitempty" json:"end_time_plan,omitempty" validate:"omitempty,datetime=15:04" label:"Planned end"`
	StartTimeAct  string `bson:"start_time_act,omitempty" json:"start_time_act,omitempty" validate:"omitempty,datetime=15:04" label:"Start"`
	EndTimeAct    string `bson:"end_time_act,omitempty" json:"end_time_act,omitempty" validate:"omitempty,datetime=15:04" label:"End"`

	Remarks   string    `bson:"remarks" json:"remarks" validate:"max=4096" label:"Remarks"`
	DeleteFlg bool      `bson:"delete_flg" json:"-"`
	CreatedAt time.Time `bson:"created_at" json:"created_at"`
	UpdatedAt time.Time `bson:"updated_at" json:"updated_at"`
}
