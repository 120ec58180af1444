// Package convert maps between JSON wire types and domain models.
//
// Input types list exactly the fields a client may set. Anything else in a
// request body (owner id, record id, timestamps) has no field to land in.
package convert

import (
	"fmt"
	"time"

	"github.com/gofrs/uuid/v5"

	"github.com/and161185/contact-keeper/internal/model"
)

// RegisterRequest is the POST /register body.
type RegisterRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

// LoginRequest is the POST /login body.
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// PublicUser is the only user view ever sent to clients.
type PublicUser struct {
	Name  string `json:"name"`
	Email string `json:"email"`
}

// RegisterResponse is the POST /register success body.
type RegisterResponse struct {
	Msg  string     `json:"msg"`
	User PublicUser `json:"user"`
}

// LoginResponse is the POST /login success body.
type LoginResponse struct {
	Token string `json:"token"`
}

// Message is the generic {msg} body used for errors and deletes.
type Message struct {
	Msg string `json:"msg"`
}

// ContactInput is the allow-listed contact body for create and update.
// A nil field means "not sent".
type ContactInput struct {
	Name       *string   `json:"name,omitempty"`
	Phone      *string   `json:"phone,omitempty"`
	Email      *string   `json:"email,omitempty"`
	Notes      *string   `json:"notes,omitempty"`
	Tags       *[]string `json:"tags,omitempty"`
	IsFavorite *bool     `json:"isFavorite,omitempty"`
}

// Fields converts input for creation; absent fields take zero values.
func (in ContactInput) Fields() model.ContactFields {
	var f model.ContactFields
	if in.Name != nil {
		f.Name = *in.Name
	}
	if in.Phone != nil {
		f.Phone = *in.Phone
	}
	if in.Email != nil {
		f.Email = *in.Email
	}
	if in.Notes != nil {
		f.Notes = *in.Notes
	}
	if in.Tags != nil {
		f.Tags = append([]string{}, (*in.Tags)...)
	}
	if in.IsFavorite != nil {
		f.IsFavorite = *in.IsFavorite
	}
	return f
}

// Patch converts input for a partial update.
func (in ContactInput) Patch() model.ContactPatch {
	return model.ContactPatch{
		Name:       in.Name,
		Phone:      in.Phone,
		Email:      in.Email,
		Notes:      in.Notes,
		Tags:       in.Tags,
		IsFavorite: in.IsFavorite,
	}
}

// Contact is the contact representation sent to clients.
type Contact struct {
	ID         string    `json:"_id"`
	UserID     string    `json:"userId"`
	Name       string    `json:"name"`
	Phone      string    `json:"phone"`
	Email      string    `json:"email"`
	Notes      string    `json:"notes"`
	Tags       []string  `json:"tags"`
	IsFavorite bool      `json:"isFavorite"`
	CreatedAt  time.Time `json:"createdAt"`
	UpdatedAt  time.Time `json:"updatedAt"`
}

// ToContact converts a model contact to its wire form.
func ToContact(c model.Contact) Contact {
	tags := c.Tags
	if tags == nil {
		tags = []string{}
	}
	return Contact{
		ID:         c.ID.String(),
		UserID:     c.UserID.String(),
		Name:       c.Name,
		Phone:      c.Phone,
		Email:      c.Email,
		Notes:      c.Notes,
		Tags:       tags,
		IsFavorite: c.IsFavorite,
		CreatedAt:  c.CreatedAt,
		UpdatedAt:  c.UpdatedAt,
	}
}

// ToContacts converts a list; the result is never nil.
func ToContacts(cs []model.Contact) []Contact {
	out := make([]Contact, 0, len(cs))
	for _, c := range cs {
		out = append(out, ToContact(c))
	}
	return out
}

// FromContact parses a wire contact back into the model.
func FromContact(w Contact) (model.Contact, error) {
	id, err := uuid.FromString(w.ID)
	if err != nil {
		return model.Contact{}, fmt.Errorf("bad contact id %q: %w", w.ID, err)
	}
	var owner uuid.UUID
	if w.UserID != "" {
		if owner, err = uuid.FromString(w.UserID); err != nil {
			return model.Contact{}, fmt.Errorf("bad owner id %q: %w", w.UserID, err)
		}
	}
	tags := w.Tags
	if tags == nil {
		tags = []string{}
	}
	return model.Contact{
		ID:         id,
		UserID:     owner,
		Name:       w.Name,
		Phone:      w.Phone,
		Email:      w.Email,
		Notes:      w.Notes,
		Tags:       tags,
		IsFavorite: w.IsFavorite,
		CreatedAt:  w.CreatedAt,
		UpdatedAt:  w.UpdatedAt,
	}, nil
}
