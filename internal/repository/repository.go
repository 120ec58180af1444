// Package repository defines storage interfaces implemented by concrete backends.
package repository

import (
	"context"

	"github.com/gofrs/uuid/v5"

	"github.com/and161185/contact-keeper/internal/model"
)

// UserRepository is the credential store.
type UserRepository interface {
	// Create inserts a new user. Email uniqueness is enforced by the store;
	// a duplicate returns errs.ErrAlreadyExists and leaves state untouched.
	Create(ctx context.Context, u *model.User) error
	// GetByEmail loads a user by exact email; errs.ErrUserNotFound if absent.
	GetByEmail(ctx context.Context, email string) (*model.User, error)
}

// ContactRepository stores contacts. Every call is scoped by the owning user id.
type ContactRepository interface {
	// Create inserts c; c.UserID must already be stamped by the caller.
	Create(ctx context.Context, c *model.Contact) error
	// List returns all contacts owned by userID.
	List(ctx context.Context, userID uuid.UUID) ([]model.Contact, error)
	// Update applies patch to the contact matching (id, userID);
	// errs.ErrNotFound if no such contact exists for that owner.
	Update(ctx context.Context, userID, id uuid.UUID, patch model.ContactPatch) (*model.Contact, error)
	// Delete removes the contact matching (id, userID). Missing rows are not an error.
	Delete(ctx context.Context, userID, id uuid.UUID) error
}

// Pinger reports store liveness.
type Pinger interface {
	Ping(ctx context.Context) error
}
