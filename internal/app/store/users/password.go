package userstore

import (
	"context"
	"errors"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"golang.org/x/crypto/bcrypt"
)

// PasswordCost is the bcrypt cost for stored password hashes.
const PasswordCost = 12

var (
	// ErrBadCredentials covers both an unknown e-mail and a wrong password.
	ErrBadCredentials = errors.New("invalid email or password")
	// ErrInactive means the account has not been activated yet.
	ErrInactive = errors.New("account is not active")
)

// HashPassword hashes a password with bcrypt.
func HashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), PasswordCost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}

// Authenticate checks email and password and returns the user ID.
func (s *Store) Authenticate(ctx context.Context, email, password string) (userID string, err error) {
	u, err := s.GetByEmail(ctx, email)
	if errors.Is(err, ErrNotFound) {
		return "", ErrBadCredentials
	}
	if err != nil {
		return "", err
	}
	if u.PasswordHash == "" || bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password)) != nil {
		return "", ErrBadCredentials
	}
	if !u.IsActive {
		return "", ErrInactive
	}
	return u.ID.Hex(), nil
}

// ChangePassword replaces the password of userID after checking current.
// A wrong current password is ErrBadCredentials.
func (s *Store) ChangePassword(ctx context.Context, userID primitive.ObjectID, current, next string) error {
	u, err := s.GetByID(ctx, userID)
	if err != nil {
		return err
	}
	if u.PasswordHash == "" || bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(current)) != nil {
		return ErrBadCredentials
	}
	hash, err := HashPassword(next)
	if err != nil {
		return err
	}
	_, err = s.c.UpdateOne(ctx, bson.M{"_id": userID},
		bson.M{"$set": stamp(bson.M{"password_hash": hash})})
	return err
}
