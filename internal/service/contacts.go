package service

import (
	"context"
	"errors"

	"github.com/gofrs/uuid/v5"

	"github.com/and161185/contact-keeper/internal/errs"
	"github.com/and161185/contact-keeper/internal/model"
	"github.com/and161185/contact-keeper/internal/repository"
)

// ContactService defines owner-scoped operations over contacts.
type ContactService interface {
	// Create stores a new contact owned by userID.
	Create(ctx context.Context, userID uuid.UUID, f model.ContactFields) (model.Contact, error)
	// List returns every contact owned by userID.
	List(ctx context.Context, userID uuid.UUID) ([]model.Contact, error)
	// Update patches a contact owned by userID; errs.ErrNotFound otherwise.
	Update(ctx context.Context, userID, id uuid.UUID, p model.ContactPatch) (model.Contact, error)
	// Delete removes a contact owned by userID; succeeds if there is none.
	Delete(ctx context.Context, userID, id uuid.UUID) error
}

type ContactServiceImpl struct {
	repo repository.ContactRepository
}

// NewContactService constructs ContactService.
func NewContactService(repo repository.ContactRepository) *ContactServiceImpl {
	return &ContactServiceImpl{repo: repo}
}

var errNoOwner = errors.New("validation: empty userID")

// Create assigns a fresh id and stamps the owner; the owner is never taken from input.
func (s *ContactServiceImpl) Create(ctx context.Context, userID uuid.UUID, f model.ContactFields) (model.Contact, error) {
	if userID == uuid.Nil {
		return model.Contact{}, errNoOwner
	}
	id, err := uuid.NewV4()
	if err != nil {
		return model.Contact{}, err
	}
	tags := append([]string{}, f.Tags...)
	c := &model.Contact{
		ID:         id,
		UserID:     userID,
		Name:       f.Name,
		Phone:      f.Phone,
		Email:      f.Email,
		Notes:      f.Notes,
		Tags:       tags,
		IsFavorite: f.IsFavorite,
	}
	if err := s.repo.Create(ctx, c); err != nil {
		return model.Contact{}, err
	}
	return *c, nil
}

// List returns the caller's contacts.
func (s *ContactServiceImpl) List(ctx context.Context, userID uuid.UUID) ([]model.Contact, error) {
	if userID == uuid.Nil {
		return nil, errNoOwner
	}
	return s.repo.List(ctx, userID)
}

// Update applies p to the caller's contact id.
func (s *ContactServiceImpl) Update(ctx context.Context, userID, id uuid.UUID, p model.ContactPatch) (model.Contact, error) {
	if userID == uuid.Nil {
		return model.Contact{}, errNoOwner
	}
	if id == uuid.Nil {
		return model.Contact{}, errs.ErrNotFound
	}
	c, err := s.repo.Update(ctx, userID, id, p)
	if err != nil {
		return model.Contact{}, err
	}
	if c == nil {
		return model.Contact{}, errs.ErrNotFound
	}
	return *c, nil
}

// Delete removes the caller's contact id.
func (s *ContactServiceImpl) Delete(ctx context.Context, userID, id uuid.UUID) error {
	if userID == uuid.Nil {
		return errNoOwner
	}
	if id == uuid.Nil {
		return nil
	}
	return s.repo.Delete(ctx, userID, id)
}
