// Package auth registers users and authenticates them against stored
// password hashes. It is framework-agnostic and is used by the CLI and
// any future transport alike.
package auth

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"newsdesk/internal/domain/entity"
	"newsdesk/internal/repository"
	"newsdesk/pkg/security/password"
)

// CredentialRequirements defines password policy requirements.
// The zero value accepts any non-empty password.
type CredentialRequirements struct {
	MinPasswordLength int
	WeakPasswords     []string
}

// Check validates a candidate password against the policy.
// Weak passwords match case-insensitively.
func (r CredentialRequirements) Check(plain string) error {
	if plain == "" {
		return fmt.Errorf("%w: password must not be empty", ErrWeakCredentials)
	}
	if len(plain) < r.MinPasswordLength {
		return fmt.Errorf("%w: password must be at least %d characters", ErrWeakCredentials, r.MinPasswordLength)
	}
	lower := strings.ToLower(plain)
	for _, weak := range r.WeakPasswords {
		if lower == strings.ToLower(weak) {
			return fmt.Errorf("%w: password is too common", ErrWeakCredentials)
		}
	}
	return nil
}

type Service struct {
	Repo         repository.UserRepository
	Hasher       password.Hasher
	Requirements CredentialRequirements
}

func NewService(repo repository.UserRepository, hasher password.Hasher, req CredentialRequirements) *Service {
	return &Service{Repo: repo, Hasher: hasher, Requirements: req}
}

// Register stores a new user with a hashed password.
func (s *Service) Register(ctx context.Context, username, plain string) (*entity.User, error) {
	username = strings.TrimSpace(username)
	if username == "" {
		return nil, fmt.Errorf("%w: username must not be empty", ErrWeakCredentials)
	}
	if err := s.Requirements.Check(plain); err != nil {
		return nil, err
	}

	existing, err := s.Repo.GetUser(ctx, username)
	if err != nil {
		return nil, fmt.Errorf("get user: %w", err)
	}
	if existing != nil {
		return nil, ErrNameNotUnique
	}

	hash, err := s.Hasher.Hash(plain)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}
	user := entity.NewUser(username, hash)
	if err := s.Repo.AddUser(ctx, user); err != nil {
		// lost a race with a concurrent registration
		if errors.Is(err, repository.ErrIntegrity) {
			return nil, ErrNameNotUnique
		}
		return nil, fmt.Errorf("add user: %w", err)
	}
	return user, nil
}

func (s *Service) GetUser(ctx context.Context, username string) (*entity.User, error) {
	user, err := s.Repo.GetUser(ctx, username)
	if err != nil {
		return nil, fmt.Errorf("get user: %w", err)
	}
	if user == nil {
		return nil, ErrUnknownUser
	}
	return user, nil
}

// Authenticate returns the user when plain matches the stored hash.
func (s *Service) Authenticate(ctx context.Context, username, plain string) (*entity.User, error) {
	user, err := s.Repo.GetUser(ctx, username)
	if err != nil {
		return nil, fmt.Errorf("get user: %w", err)
	}
	if user == nil {
		return nil, ErrAuthentication
	}
	if err := s.Hasher.Compare(user.Password, plain); err != nil {
		return nil, ErrAuthentication
	}
	return user, nil
}
