// Package token signs short opaque strings (user IDs) for emailed links:
// account activation and workspace invites.
//
// A token is a securecookie value whose cookie name is the salt, so a
// token minted for one purpose never verifies for another. The issue time
// travels inside the payload so an elapsed token reports ErrTokenExpired
// rather than a generic failure.
package token

import (
	"crypto/sha256"
	"errors"
	"fmt"
	"time"

	"github.com/dalemusser/sfahub/internal/domain/errs"
	"github.com/gorilla/securecookie"
)

// Salts used by the service.
const (
	SaltActivation = "register.activation"
	SaltInvite     = "workspace.invite"
)

type claims struct {
	P string `json:"p"`
	T int64  `json:"t"`
}

// Signer mints and verifies tokens with keys derived from one secret.
type Signer struct {
	sc  *securecookie.SecureCookie
	now func() time.Time
}

// NewSigner derives the HMAC and AES keys from secret.
func NewSigner(secret string) (*Signer, error) {
	if secret == "" {
		return nil, errors.New("token: empty secret")
	}
	hashKey := sha256.Sum256([]byte("hash:" + secret))
	blockKey := sha256.Sum256([]byte("block:" + secret))

	sc := securecookie.New(hashKey[:], blockKey[:])
	sc.SetSerializer(securecookie.JSONEncoder{})
	sc.MaxAge(0) // expiry is checked against the embedded issue time
	sc.MaxLength(0)
	return &Signer{sc: sc, now: time.Now}, nil
}

// Sign returns a URL-safe token carrying payload, bound to salt.
func (s *Signer) Sign(payload, salt string) (string, error) {
	tok, err := s.sc.Encode(salt, claims{P: payload, T: s.now().Unix()})
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}
	return tok, nil
}

// Verify returns the payload of tok. A zero maxAge disables expiry.
func (s *Signer) Verify(tok, salt string, maxAge time.Duration) (string, error) {
	var c claims
	if err := s.sc.Decode(salt, tok, &c); err != nil {
		return "", errs.ErrTokenInvalid
	}
	if maxAge > 0 && s.now().Sub(time.Unix(c.T, 0)) > maxAge {
		return "", errs.ErrTokenExpired
	}
	return c.P, nil
}
