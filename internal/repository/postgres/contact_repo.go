package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/gofrs/uuid/v5"
	"github.com/jackc/pgx/v5"

	"github.com/and161185/contact-keeper/internal/errs"
	"github.com/and161185/contact-keeper/internal/model"
)

// ContactRepo implements ContactRepository using PostgreSQL.
// Every statement carries user_id in its predicate.
type ContactRepo struct{ db *DB }

// NewContactRepo constructs a contact repository.
func NewContactRepo(db *DB) *ContactRepo { return &ContactRepo{db: db} }

const contactCols = `id, user_id, name, phone, email, notes, tags, is_favorite, created_at, updated_at`

// Create inserts a contact row and fills in the server timestamps.
func (r *ContactRepo) Create(ctx context.Context, c *model.Contact) error {
	const q = `
INSERT INTO contacts (id, user_id, name, phone, email, notes, tags, is_favorite)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
RETURNING created_at, updated_at`
	tags := c.Tags
	if tags == nil {
		tags = []string{}
	}
	err := r.db.Pool.QueryRow(ctx, q,
		c.ID, c.UserID, c.Name, c.Phone, c.Email, c.Notes, tags, c.IsFavorite,
	).Scan(&c.CreatedAt, &c.UpdatedAt)
	if err != nil {
		return fmt.Errorf("insert contact: %w", err)
	}
	c.Tags = tags
	return nil
}

// List returns the owner's contacts in insertion order.
func (r *ContactRepo) List(ctx context.Context, userID uuid.UUID) ([]model.Contact, error) {
	const q = `
SELECT ` + contactCols + `
FROM contacts
WHERE user_id=$1
ORDER BY created_at ASC, id ASC`
	rows, err := r.db.Pool.Query(ctx, q, userID)
	if err != nil {
		return nil, fmt.Errorf("select contacts: %w", err)
	}
	defer rows.Close()

	out := []model.Contact{}
	for rows.Next() {
		c, err := scanContact(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

// Update applies a partial patch to the contact matching (id, user_id).
func (r *ContactRepo) Update(
	ctx context.Context, userID, id uuid.UUID, p model.ContactPatch,
) (*model.Contact, error) {
	const q = `
UPDATE contacts SET
  name = COALESCE($3, name),
  phone = COALESCE($4, phone),
  email = COALESCE($5, email),
  notes = COALESCE($6, notes),
  tags = COALESCE($7, tags),
  is_favorite = COALESCE($8, is_favorite),
  updated_at = now()
WHERE id=$1 AND user_id=$2
RETURNING ` + contactCols
	row := r.db.Pool.QueryRow(ctx, q,
		id, userID, p.Name, p.Phone, p.Email, p.Notes, tagsArg(p.Tags), p.IsFavorite,
	)
	c, err := scanContact(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, errs.ErrNotFound
		}
		return nil, err
	}
	return &c, nil
}

// Delete removes the contact matching (id, user_id); zero rows affected is fine.
func (r *ContactRepo) Delete(ctx context.Context, userID, id uuid.UUID) error {
	const q = `DELETE FROM contacts WHERE id=$1 AND user_id=$2`
	if _, err := r.db.Pool.Exec(ctx, q, id, userID); err != nil {
		return fmt.Errorf("delete contact: %w", err)
	}
	return nil
}

func scanContact(row pgx.Row) (model.Contact, error) {
	var c model.Contact
	err := row.Scan(&c.ID, &c.UserID, &c.Name, &c.Phone, &c.Email, &c.Notes,
		&c.Tags, &c.IsFavorite, &c.CreatedAt, &c.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return model.Contact{}, err
		}
		return model.Contact{}, fmt.Errorf("scan contact: %w", err)
	}
	if c.Tags == nil {
		c.Tags = []string{}
	}
	return c, nil
}

// tagsArg keeps "not provided" as SQL NULL so COALESCE preserves the column.
func tagsArg(tags *[]string) any {
	if tags == nil {
		return nil
	}
	if *tags == nil {
		return []string{}
	}
	return *tags
}
