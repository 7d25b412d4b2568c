// internal/domain/models/user.go
package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// User is an account plus its workspace affiliation.
//
// Two independent flags describe a user:
//   - IsActive: the account itself is confirmed (activation or invite accepted).
//   - IsWorkspaceActive: membership in WorkspaceID is confirmed rather than pending.
//
// Group membership lives in group_memberships, not on the user.
type User struct {
	ID           primitive.ObjectID  `bson:"_id,omitempty" json:"id"`
	Email        string              `bson:"email" json:"email"` // unique, lower-case
	FirstName    string              `bson:"first_name" json:"first_name"`
	LastName     string              `bson:"last_name" json:"last_name"`
	PasswordHash string              `bson:"password_hash,omitempty" json:"-"`
	WorkspaceID  *primitive.ObjectID `bson:"workspace_id,omitempty" json:"workspace_id,omitempty"`

	IsWorkspaceActive bool `bson:"is_workspace_active" json:"is_workspace_active"`
	Role              Role `bson:"role" json:"role"`
	IsActive          bool `bson:"is_active" json:"is_active"`
	IsStaff           bool `bson:"is_staff" json:"is_staff"`

	DateJoined time.Time `bson:"date_joined" json:"date_joined"`
	CreatedAt  time.Time `bson:"created_at" json:"created_at"`
	UpdatedAt  time.Time `bson:"updated_at" json:"updated_at"`
}

// FullName joins last and first name the way the address book shows them.
func (u User) FullName() string {
	switch {
	case u.LastName == "":
		return u.FirstName
	case u.FirstName == "":
		return u.LastName
	}
	return u.LastName + " " + u.FirstName
}
