// Package session issues and verifies stateless signed session tokens.
//
// A token is an HS256 JWT whose subject is the user id. It carries an
// issued-at claim but no expiry: once issued it stays valid for as long as
// the signing key does. Nothing is stored server-side.
package session

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/gofrs/uuid/v5"
	"github.com/golang-jwt/jwt/v5"

	"github.com/and161185/contact-keeper/internal/errs"
	"github.com/and161185/contact-keeper/internal/model"
)

// Issuer signs and verifies session tokens with a process-wide key.
type Issuer struct {
	signKey []byte
	now     func() time.Time
}

// NewIssuer constructs an Issuer. The key must be non-empty.
func NewIssuer(signKey []byte) (*Issuer, error) {
	if len(signKey) == 0 {
		return nil, errors.New("session: empty signing key")
	}
	key := append([]byte(nil), signKey...)
	return &Issuer{signKey: key, now: time.Now}, nil
}

// Issue creates a signed token binding userID.
func (i *Issuer) Issue(userID uuid.UUID) (model.Session, error) {
	if userID == uuid.Nil {
		return model.Session{}, errors.New("session: empty user id")
	}
	now := i.now().UTC().Truncate(time.Second)
	claims := jwt.RegisteredClaims{
		Subject:  userID.String(),
		IssuedAt: jwt.NewNumericDate(now),
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(i.signKey)
	if err != nil {
		return model.Session{}, fmt.Errorf("session: sign: %w", err)
	}
	return model.Session{Token: signed, UserID: userID, IssuedAt: now}, nil
}

// Verify checks the signature and returns the bound user id.
// Any failure is reported as errs.ErrInvalidToken.
func (i *Issuer) Verify(token string) (uuid.UUID, error) {
	token = strings.TrimSpace(token)
	if token == "" {
		return uuid.Nil, errs.ErrInvalidToken
	}

	var claims jwt.RegisteredClaims
	parsed, err := jwt.ParseWithClaims(token, &claims, func(*jwt.Token) (any, error) {
		return i.signKey, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil || !parsed.Valid {
		return uuid.Nil, errs.ErrInvalidToken
	}

	id, err := uuid.FromString(claims.Subject)
	if err != nil || id == uuid.Nil {
		return uuid.Nil, errs.ErrInvalidToken
	}
	return id, nil
}
