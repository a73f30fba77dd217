// Package auth implements the authentication core: password hashing, token
// issue/verify, and the login orchestration that composes them over a
// credential store. The HTTP-facing guard lives in internal/middleware and
// consumes the TokenIssuer from here.
package auth

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/iliyamo/task-management/internal/model"
)

// ErrInvalidCredentials covers both an unknown email and a wrong password.
// The two cases are deliberately indistinguishable so login responses cannot
// be used to enumerate accounts.
var ErrInvalidCredentials = errors.New("invalid credentials")

// CredentialStore is the read-only slice of the user repository the auth
// service needs. Lookup is exact-match on the email as stored.
type CredentialStore interface {
	GetByEmail(ctx context.Context, email string) (model.User, error)
}

// PublicProfile is the sanitized user shape returned after a successful
// login. It never carries the password hash.
type PublicProfile struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
	Role  string `json:"role"`
}

// LoginResult bundles the issued token with its expiry and the profile of
// the user it was issued for.
type LoginResult struct {
	Token     string
	ExpiresAt time.Time
	User      PublicProfile
}

// Service orchestrates login: look up the credential record, verify the
// password, issue a token. Dependencies are injected explicitly at startup.
type Service struct {
	store  CredentialStore
	hasher PasswordHasher
	tokens *TokenIssuer
}

// NewService wires the orchestrator from its three collaborators.
func NewService(store CredentialStore, hasher PasswordHasher, tokens *TokenIssuer) *Service {
	return &Service{store: store, hasher: hasher, tokens: tokens}
}

// Login authenticates email+password and issues an access token. Any
// authentication failure, whether the user does not exist or the password is
// wrong, is reported as ErrInvalidCredentials; other errors are store
// failures and bubble up unchanged.
func (s *Service) Login(ctx context.Context, email, password string) (LoginResult, error) {
	u, err := s.store.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return LoginResult{}, ErrInvalidCredentials
		}
		return LoginResult{}, err
	}
	if !s.hasher.Verify(password, u.PasswordHash) {
		return LoginResult{}, ErrInvalidCredentials
	}
	token, exp, err := s.tokens.Issue(u.ID, u.Email, u.Role)
	if err != nil {
		return LoginResult{}, err
	}
	return LoginResult{
		Token:     token,
		ExpiresAt: exp,
		User:      profileOf(u),
	}, nil
}

// ValidateCredentials is the side-effect-free variant of Login: it returns
// the public profile without issuing a token, or nil when the email or the
// password is wrong (uniformly, no distinction). Only store failures other
// than a missing row produce an error.
func (s *Service) ValidateCredentials(ctx context.Context, email, password string) (*PublicProfile, error) {
	u, err := s.store.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	if !s.hasher.Verify(password, u.PasswordHash) {
		return nil, nil
	}
	p := profileOf(u)
	return &p, nil
}

func profileOf(u model.User) PublicProfile {
	return PublicProfile{ID: u.ID, Name: u.Name, Email: u.Email, Role: u.Role}
}
