// Package service contains application services for authentication and contacts.
package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/gofrs/uuid/v5"

	pkgcrypto "github.com/and161185/contact-keeper/internal/crypto"
	"github.com/and161185/contact-keeper/internal/errs"
	"github.com/and161185/contact-keeper/internal/model"
	"github.com/and161185/contact-keeper/internal/repository"
)

// AuthService defines registration and login.
type AuthService interface {
	// Register creates a new user with a derived password verifier.
	Register(ctx context.Context, name, email, password string) (model.User, error)
	// Login checks credentials and issues a session token.
	Login(ctx context.Context, email, password string) (model.Session, error)
}

// TokenIssuer produces session tokens; implemented by *session.Issuer.
type TokenIssuer interface {
	Issue(userID uuid.UUID) (model.Session, error)
}

type AuthServiceImpl struct {
	users  repository.UserRepository
	tokens TokenIssuer
	unify  bool
}

// AuthOption tweaks AuthServiceImpl.
type AuthOption func(*AuthServiceImpl)

// WithUnifiedLoginErrors makes Login report errs.ErrInvalidCredentials for both
// unknown email and wrong password.
func WithUnifiedLoginErrors(on bool) AuthOption {
	return func(s *AuthServiceImpl) { s.unify = on }
}

// NewAuthService constructs AuthService with required dependencies.
func NewAuthService(users repository.UserRepository, tokens TokenIssuer, opts ...AuthOption) *AuthServiceImpl {
	s := &AuthServiceImpl{users: users, tokens: tokens}
	for _, o := range opts {
		o(s)
	}
	return s
}

func blank(s string) bool { return strings.TrimSpace(s) == "" }

// Register validates input, derives the verifier and stores the user.
// The returned user never carries the verifier.
func (s *AuthServiceImpl) Register(ctx context.Context, name, email, password string) (model.User, error) {
	if blank(name) || blank(email) || blank(password) {
		return model.User{}, fmt.Errorf("%w: name, email and password are required", errs.ErrBadRequest)
	}
	uid, err := uuid.NewV4()
	if err != nil {
		return model.User{}, err
	}
	pwdHash, salt, err := pkgcrypto.NewVerifier(password)
	if err != nil {
		return model.User{}, err
	}

	u := &model.User{
		ID:       uid,
		Name:     name,
		Email:    email,
		PwdHash:  pwdHash,
		SaltAuth: salt,
	}
	if err := s.users.Create(ctx, u); err != nil {
		if errors.Is(err, errs.ErrAlreadyExists) {
			return model.User{}, err
		}
		return model.User{}, fmt.Errorf("create user: %w", err)
	}
	return model.User{ID: u.ID, Name: u.Name, Email: u.Email, CreatedAt: u.CreatedAt}, nil
}

// Login authenticates by email and password.
func (s *AuthServiceImpl) Login(ctx context.Context, email, password string) (model.Session, error) {
	if blank(email) || blank(password) {
		return model.Session{}, fmt.Errorf("%w: email and password are required", errs.ErrBadRequest)
	}

	u, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, errs.ErrUserNotFound) {
			return model.Session{}, s.authFailed(errs.ErrUserNotFound)
		}
		return model.Session{}, fmt.Errorf("lookup user: %w", err)
	}
	if !pkgcrypto.VerifyPassword([]byte(password), u.SaltAuth, u.PwdHash) {
		return model.Session{}, s.authFailed(errs.ErrWrongPassword)
	}

	sess, err := s.tokens.Issue(u.ID)
	if err != nil {
		return model.Session{}, fmt.Errorf("issue token: %w", err)
	}
	return sess, nil
}

func (s *AuthServiceImpl) authFailed(err error) error {
	if s.unify {
		return errs.ErrInvalidCredentials
	}
	return err
}
