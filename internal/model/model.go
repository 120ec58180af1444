// Package model defines domain entities used by services and repositories.
package model

import (
	"time"

	"github.com/gofrs/uuid/v5"
)

// User represents an account stored on the server. The raw password is never stored.
type User struct {
	ID        uuid.UUID // PK
	Name      string
	Email     string // unique, compared as stored (no case folding)
	PwdHash   []byte // Argon2id(password, SaltAuth)
	SaltAuth  []byte // per-user auth salt
	CreatedAt time.Time
}

// Session is the result of a successful login.
type Session struct {
	Token    string
	UserID   uuid.UUID
	IssuedAt time.Time
}

// Contact is a single address-book entry. UserID is stamped at creation and never changes.
type Contact struct {
	ID         uuid.UUID // server-generated PK
	UserID     uuid.UUID // FK -> users.id, owner
	Name       string
	Phone      string
	Email      string
	Notes      string
	Tags       []string
	IsFavorite bool
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

// ContactFields is the allow-listed input for creating a contact.
type ContactFields struct {
	Name       string
	Phone      string
	Email      string
	Notes      string
	Tags       []string
	IsFavorite bool
}

// ContactPatch is a partial update; nil fields are left untouched.
type ContactPatch struct {
	Name       *string
	Phone      *string
	Email      *string
	Notes      *string
	Tags       *[]string
	IsFavorite *bool
}

// Empty reports whether the patch changes nothing.
func (p ContactPatch) Empty() bool {
	return p.Name == nil && p.Phone == nil && p.Email == nil &&
		p.Notes == nil && p.Tags == nil && p.IsFavorite == nil
}

// Apply returns a copy of c with the patch applied.
func (p ContactPatch) Apply(c Contact) Contact {
	if p.Name != nil {
		c.Name = *p.Name
	}
	if p.Phone != nil {
		c.Phone = *p.Phone
	}
	if p.Email != nil {
		c.Email = *p.Email
	}
	if p.Notes != nil {
		c.Notes = *p.Notes
	}
	if p.Tags != nil {
		c.Tags = append([]string{}, (*p.Tags)...)
	}
	if p.IsFavorite != nil {
		c.IsFavorite = *p.IsFavorite
	}
	return c
}
