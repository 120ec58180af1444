// Package memory provides in-process repository implementations for dev mode and tests.
//
// The store owns its consistency: email uniqueness and owner scoping are
// enforced under the store mutex, so callers need no coordination of their own.
package memory

import (
	"context"
	"sync"
	"time"

	"github.com/gofrs/uuid/v5"

	"github.com/and161185/contact-keeper/internal/errs"
	"github.com/and161185/contact-keeper/internal/model"
)

// Store holds users and contacts in memory.
type Store struct {
	mu       sync.RWMutex
	users    map[string]model.User // by email
	contacts map[uuid.UUID]model.Contact
	order    []uuid.UUID // insertion order of contacts
	now      func() time.Time
}

// New returns an empty store.
func New() *Store {
	return &Store{
		users:    map[string]model.User{},
		contacts: map[uuid.UUID]model.Contact{},
		now:      time.Now,
	}
}

// Ping always succeeds.
func (s *Store) Ping(context.Context) error { return nil }

// Users returns the UserRepository view of the store.
func (s *Store) Users() *UserRepo { return &UserRepo{s: s} }

// Contacts returns the ContactRepository view of the store.
func (s *Store) Contacts() *ContactRepo { return &ContactRepo{s: s} }

// UserRepo implements UserRepository over Store.
type UserRepo struct{ s *Store }

// Create inserts u unless its email is taken.
func (r *UserRepo) Create(ctx context.Context, u *model.User) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if _, taken := r.s.users[u.Email]; taken {
		return errs.ErrAlreadyExists
	}
	u.CreatedAt = r.s.now().UTC()
	r.s.users[u.Email] = cloneUser(*u)
	return nil
}

// GetByEmail looks up a user by exact email.
func (r *UserRepo) GetByEmail(ctx context.Context, email string) (*model.User, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	u, ok := r.s.users[email]
	if !ok {
		return nil, errs.ErrUserNotFound
	}
	c := cloneUser(u)
	return &c, nil
}

// ContactRepo implements ContactRepository over Store.
type ContactRepo struct{ s *Store }

// Create inserts c.
func (r *ContactRepo) Create(ctx context.Context, c *model.Contact) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if _, exists := r.s.contacts[c.ID]; exists {
		return errs.ErrAlreadyExists
	}
	now := r.s.now().UTC()
	c.CreatedAt, c.UpdatedAt = now, now
	if c.Tags == nil {
		c.Tags = []string{}
	}
	r.s.contacts[c.ID] = cloneContact(*c)
	r.s.order = append(r.s.order, c.ID)
	return nil
}

// List returns the owner's contacts in insertion order.
func (r *ContactRepo) List(ctx context.Context, userID uuid.UUID) ([]model.Contact, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	out := []model.Contact{}
	for _, id := range r.s.order {
		c, ok := r.s.contacts[id]
		if ok && c.UserID == userID {
			out = append(out, cloneContact(c))
		}
	}
	return out, nil
}

// Update patches the contact matching (id, userID).
func (r *ContactRepo) Update(
	ctx context.Context, userID, id uuid.UUID, p model.ContactPatch,
) (*model.Contact, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	c, ok := r.s.contacts[id]
	if !ok || c.UserID != userID {
		return nil, errs.ErrNotFound
	}
	c = p.Apply(c)
	c.UpdatedAt = r.s.now().UTC()
	r.s.contacts[id] = cloneContact(c)
	out := cloneContact(c)
	return &out, nil
}

// Delete removes the contact matching (id, userID), if any.
func (r *ContactRepo) Delete(ctx context.Context, userID, id uuid.UUID) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	c, ok := r.s.contacts[id]
	if !ok || c.UserID != userID {
		return nil
	}
	delete(r.s.contacts, id)
	for i, oid := range r.s.order {
		if oid == id {
			r.s.order = append(r.s.order[:i], r.s.order[i+1:]...)
			break
		}
	}
	return nil
}

func cloneUser(u model.User) model.User {
	u.PwdHash = append([]byte(nil), u.PwdHash...)
	u.SaltAuth = append([]byte(nil), u.SaltAuth...)
	return u
}

func cloneContact(c model.Contact) model.Contact {
	c.Tags = append([]string{}, c.Tags...)
	return c
}
