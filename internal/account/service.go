// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Quillboard Contributors

package account

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/oklog/ulid/v2"
	"github.com/samber/oops"
)

// RegisterInput carries the raw, untrusted registration fields.
type RegisterInput struct {
	Username        string
	Email           string
	Password        string
	ConfirmPassword string
}

// LoginInput carries the raw, untrusted login fields.
type LoginInput struct {
	Username string
	Password string
}

// Session is the result of a successful registration or login: the user's
// public fields merged with a freshly issued token. It is constructed
// deliberately rather than by merging maps, and is never persisted.
type Session struct {
	ID        ulid.ULID
	Username  string
	Email     string
	CreatedAt time.Time
	Token     string
}

// Service orchestrates the register/login credential flow.
type Service struct {
	users  UserRepository
	hasher PasswordHasher
	tokens *TokenIssuer
	logger *slog.Logger
	now    func() time.Time
}

// NewService creates a Service.
func NewService(users UserRepository, hasher PasswordHasher, tokens *TokenIssuer) (*Service, error) {
	return NewServiceWithLogger(users, hasher, tokens, slog.Default())
}

// NewServiceWithLogger creates a Service with an explicit logger.
func NewServiceWithLogger(users UserRepository, hasher PasswordHasher, tokens *TokenIssuer, logger *slog.Logger) (*Service, error) {
	if users == nil {
		return nil, oops.Errorf("user repository is required")
	}
	if hasher == nil {
		return nil, oops.Errorf("password hasher is required")
	}
	if tokens == nil {
		return nil, oops.Errorf("token issuer is required")
	}
	if logger == nil {
		return nil, oops.Errorf("logger is required")
	}
	return &Service{
		users:  users,
		hasher: hasher,
		tokens: tokens,
		logger: logger,
		now:    time.Now,
	}, nil
}

// WithClock overrides the service's time source. Intended for tests.
func (s *Service) WithClock(now func() time.Time) *Service {
	s.now = now
	return s
}

// Register creates a new user and issues a session token.
//
// The flow: validate input, pre-check username availability, hash the
// password, persist the record, issue the token. The pre-check is a fast
// path for friendlier errors; it races with concurrent registrations, so
// the store's unique constraint (surfaced by Create as ErrUsernameTaken)
// is the authoritative duplicate signal. Exactly one record is written on
// success; none on any failure path.
func (s *Service) Register(ctx context.Context, in RegisterInput) (*Session, error) {
	valid, fields := ValidateRegisterInput(in.Username, in.Email, in.Password, in.ConfirmPassword)
	if !valid {
		return nil, NewValidationError(fields)
	}

	_, err := s.users.GetByUsername(ctx, in.Username)
	switch {
	case err == nil:
		return nil, NewDuplicateUsernameError()
	case !errors.Is(err, ErrNotFound):
		return nil, oops.Code("ACCOUNT_REGISTER_FAILED").
			With("operation", "check username availability").
			With("username", in.Username).
			Wrap(err)
	}

	hash, err := s.hasher.Hash(in.Password)
	if err != nil {
		return nil, oops.Code("ACCOUNT_REGISTER_FAILED").
			With("operation", "hash password").
			Wrap(err)
	}

	user := &User{
		ID:           ulid.Make(),
		Username:     in.Username,
		Email:        in.Email,
		PasswordHash: hash,
		CreatedAt:    s.now().UTC(),
	}

	if err := s.users.Create(ctx, user); err != nil {
		if errors.Is(err, ErrUsernameTaken) {
			// Lost the race to a concurrent registration; the constraint
			// violation is the same outcome as the pre-check.
			return nil, NewDuplicateUsernameError()
		}
		return nil, oops.Code("ACCOUNT_REGISTER_FAILED").
			With("operation", "create user").
			With("username", in.Username).
			Wrap(err)
	}

	token, err := s.tokens.Issue(user)
	if err != nil {
		return nil, oops.Code("ACCOUNT_REGISTER_FAILED").
			With("operation", "issue token").
			Wrap(err)
	}

	s.logger.InfoContext(ctx, "user registered",
		"user_id", user.ID.String(),
		"username", user.Username,
	)

	return s.session(user, token), nil
}

// Login verifies credentials and issues a session token. Read-only.
//
// Unknown usernames and wrong passwords produce different messages
// ("User not found" vs "Wrong credentials"). That distinction is a known
// enumeration side-channel, preserved here because the callers display it.
func (s *Service) Login(ctx context.Context, in LoginInput) (*Session, error) {
	valid, fields := ValidateLoginInput(in.Username, in.Password)
	if !valid {
		return nil, NewValidationError(fields)
	}

	user, err := s.users.GetByUsername(ctx, in.Username)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, NewUserNotFoundError()
		}
		return nil, oops.Code("ACCOUNT_LOGIN_FAILED").
			With("operation", "get user by username").
			With("username", in.Username).
			Wrap(err)
	}

	match, err := s.hasher.Verify(in.Password, user.PasswordHash)
	if err != nil {
		return nil, oops.Code("ACCOUNT_LOGIN_FAILED").
			With("operation", "verify password").
			With("user_id", user.ID.String()).
			Wrap(err)
	}
	if !match {
		return nil, NewInvalidCredentialsError()
	}

	token, err := s.tokens.Issue(user)
	if err != nil {
		return nil, oops.Code("ACCOUNT_LOGIN_FAILED").
			With("operation", "issue token").
			Wrap(err)
	}

	return s.session(user, token), nil
}

// Authenticate resolves a session token back to its user. The token must
// verify and the account must still exist; a token minted for a since-deleted
// account does not authenticate.
func (s *Service) Authenticate(ctx context.Context, token string) (*User, error) {
	claims, err := s.tokens.Parse(token)
	if err != nil {
		return nil, NewInvalidCredentialsError()
	}

	id, err := ulid.Parse(claims.ID)
	if err != nil {
		return nil, NewInvalidCredentialsError()
	}

	user, err := s.users.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, NewUserNotFoundError()
		}
		return nil, oops.Code("ACCOUNT_AUTHENTICATE_FAILED").
			With("operation", "get user by id").
			With("user_id", claims.ID).
			Wrap(err)
	}

	return user, nil
}

func (s *Service) session(user *User, token string) *Session {
	return &Session{
		ID:        user.ID,
		Username:  user.Username,
		Email:     user.Email,
		CreatedAt: user.CreatedAt,
		Token:     token,
	}
}
