package postgres

import (
	"context"
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/gofrs/uuid/v5"
	"github.com/jackc/pgx/v5"
	pgxmock "github.com/pashagolub/pgxmock/v3"
	"github.com/stretchr/testify/require"

	"github.com/and161185/contact-keeper/internal/errs"
	"github.com/and161185/contact-keeper/internal/model"
)

var contactColNames = []string{
	"id", "user_id", "name", "phone", "email", "notes", "tags", "is_favorite", "created_at", "updated_at",
}

func TestContactRepo_Create_StampsTimestamps(t *testing.T) {
	db, mock := newDB(t)
	defer mock.Close()
	r := NewContactRepo(db)

	ctx := context.Background()
	ts := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	c := &model.Contact{
		ID:     uuid.Must(uuid.NewV4()),
		UserID: uuid.Must(uuid.NewV4()),
		Name:   "A",
		Phone:  "123",
		Tags:   []string{"x"},
	}

	mock.ExpectQuery(`INSERT INTO contacts \(id, user_id, name, phone, email, notes, tags, is_favorite\) VALUES \(\$1, \$2, \$3, \$4, \$5, \$6, \$7, \$8\) RETURNING created_at, updated_at`).
		WithArgs(c.ID, c.UserID, "A", "123", "", "", []string{"x"}, false).
		WillReturnRows(pgxmock.NewRows([]string{"created_at", "updated_at"}).AddRow(ts, ts))

	require.NoError(t, r.Create(ctx, c))
	require.Equal(t, ts, c.CreatedAt)
	require.Equal(t, ts, c.UpdatedAt)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestContactRepo_Create_NilTagsStoredAsEmpty(t *testing.T) {
	db, mock := newDB(t)
	defer mock.Close()
	r := NewContactRepo(db)

	c := &model.Contact{ID: uuid.Must(uuid.NewV4()), UserID: uuid.Must(uuid.NewV4()), Name: "B"}
	mock.ExpectQuery(`INSERT INTO contacts`).
		WithArgs(c.ID, c.UserID, "B", "", "", "", []string{}, false).
		WillReturnRows(pgxmock.NewRows([]string{"created_at", "updated_at"}).AddRow(time.Now(), time.Now()))

	require.NoError(t, r.Create(context.Background(), c))
	require.NotNil(t, c.Tags)
	require.Empty(t, c.Tags)
}

func TestContactRepo_List_ScopedByOwner(t *testing.T) {
	db, mock := newDB(t)
	defer mock.Close()
	r := NewContactRepo(db)

	ctx := context.Background()
	owner := uuid.Must(uuid.NewV4())
	id1 := uuid.Must(uuid.NewV4())
	id2 := uuid.Must(uuid.NewV4())
	now := time.Now()

	mock.ExpectQuery(`SELECT id, user_id, name, phone, email, notes, tags, is_favorite, created_at, updated_at FROM contacts WHERE user_id=\$1 ORDER BY created_at ASC, id ASC`).
		WithArgs(owner).
		WillReturnRows(pgxmock.NewRows(contactColNames).
			AddRow(id1, owner, "A", "1", "a@x", "", []string{"x"}, true, now, now).
			AddRow(id2, owner, "B", "2", "", "n", []string(nil), false, now, now))

	out, err := r.List(ctx, owner)
	require.NoError(t, err)
	require.Len(t, out, 2)
	require.Equal(t, id1, out[0].ID)
	require.True(t, out[0].IsFavorite)
	require.Equal(t, []string{"x"}, out[0].Tags)
	require.NotNil(t, out[1].Tags)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestContactRepo_List_EmptyIsNotNil(t *testing.T) {
	db, mock := newDB(t)
	defer mock.Close()
	r := NewContactRepo(db)

	owner := uuid.Must(uuid.NewV4())
	mock.ExpectQuery(`FROM contacts WHERE user_id=\$1`).
		WithArgs(owner).
		WillReturnRows(pgxmock.NewRows(contactColNames))

	out, err := r.List(context.Background(), owner)
	require.NoError(t, err)
	require.NotNil(t, out)
	require.Empty(t, out)
}

func TestContactRepo_List_QueryError(t *testing.T) {
	db, mock := newDB(t)
	defer mock.Close()
	r := NewContactRepo(db)

	owner := uuid.Must(uuid.NewV4())
	mock.ExpectQuery(`FROM contacts`).WithArgs(owner).WillReturnError(errors.New("boom"))

	_, err := r.List(context.Background(), owner)
	require.Error(t, err)
}

var updateContactRe = regexp.QuoteMeta(`UPDATE contacts SET name = COALESCE($3, name), phone = COALESCE($4, phone), email = COALESCE($5, email), notes = COALESCE($6, notes), tags = COALESCE($7, tags), is_favorite = COALESCE($8, is_favorite), updated_at = now() WHERE id=$1 AND user_id=$2 RETURNING`)

func TestContactRepo_Update_PartialPatch(t *testing.T) {
	db, mock := newDB(t)
	defer mock.Close()
	r := NewContactRepo(db)

	ctx := context.Background()
	owner := uuid.Must(uuid.NewV4())
	id := uuid.Must(uuid.NewV4())
	fav := true
	p := model.ContactPatch{IsFavorite: &fav}
	now := time.Now()

	mock.ExpectQuery(updateContactRe).
		WithArgs(id, owner, p.Name, p.Phone, p.Email, p.Notes, nil, p.IsFavorite).
		WillReturnRows(pgxmock.NewRows(contactColNames).
			AddRow(id, owner, "A", "123", "", "", []string{"x"}, true, now, now))

	c, err := r.Update(ctx, owner, id, p)
	require.NoError(t, err)
	require.True(t, c.IsFavorite)
	require.Equal(t, "A", c.Name)
	require.Equal(t, []string{"x"}, c.Tags)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestContactRepo_Update_ReplacesTags(t *testing.T) {
	db, mock := newDB(t)
	defer mock.Close()
	r := NewContactRepo(db)

	owner := uuid.Must(uuid.NewV4())
	id := uuid.Must(uuid.NewV4())
	tags := []string{"work", "vip"}
	p := model.ContactPatch{Tags: &tags}
	now := time.Now()

	mock.ExpectQuery(updateContactRe).
		WithArgs(id, owner, p.Name, p.Phone, p.Email, p.Notes, tags, p.IsFavorite).
		WillReturnRows(pgxmock.NewRows(contactColNames).
			AddRow(id, owner, "A", "", "", "", tags, false, now, now))

	c, err := r.Update(context.Background(), owner, id, p)
	require.NoError(t, err)
	require.Equal(t, tags, c.Tags)
}

func TestContactRepo_Update_NotOwnedIsNotFound(t *testing.T) {
	db, mock := newDB(t)
	defer mock.Close()
	r := NewContactRepo(db)

	stranger := uuid.Must(uuid.NewV4())
	id := uuid.Must(uuid.NewV4())
	name := "hijack"
	p := model.ContactPatch{Name: &name}

	mock.ExpectQuery(updateContactRe).
		WithArgs(id, stranger, p.Name, p.Phone, p.Email, p.Notes, nil, p.IsFavorite).
		WillReturnError(pgx.ErrNoRows)

	_, err := r.Update(context.Background(), stranger, id, p)
	require.ErrorIs(t, err, errs.ErrNotFound)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestContactRepo_Delete_IdempotentAndScoped(t *testing.T) {
	db, mock := newDB(t)
	defer mock.Close()
	r := NewContactRepo(db)

	ctx := context.Background()
	owner := uuid.Must(uuid.NewV4())
	id := uuid.Must(uuid.NewV4())

	mock.ExpectExec(`DELETE FROM contacts WHERE id=\$1 AND user_id=\$2`).
		WithArgs(id, owner).
		WillReturnResult(pgxmock.NewResult("DELETE", 1))
	require.NoError(t, r.Delete(ctx, owner, id))

	mock.ExpectExec(`DELETE FROM contacts WHERE id=\$1 AND user_id=\$2`).
		WithArgs(id, owner).
		WillReturnResult(pgxmock.NewResult("DELETE", 0))
	require.NoError(t, r.Delete(ctx, owner, id))

	mock.ExpectExec(`DELETE FROM contacts WHERE id=\$1 AND user_id=\$2`).
		WithArgs(id, owner).
		WillReturnError(errors.New("boom"))
	require.Error(t, r.Delete(ctx, owner, id))

	require.NoError(t, mock.ExpectationsWereMet())
}
