package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/tmvalente/drivelog/internal/domain"
	"golang.org/x/crypto/bcrypt"
)

// maxPasswordBytes is the bcrypt input limit. Go's bcrypt rejects longer
// inputs outright, so both hashing and verification truncate first; only the
// first 72 bytes of a password are significant.
const maxPasswordBytes = 72

// AuthService handles driver registration and per-request credential checks.
// There are no sessions or tokens; every request carries credentials.
type AuthService struct {
	users      domain.UserRepository
	bcryptCost int
}

// NewAuthService creates a new AuthService.
func NewAuthService(users domain.UserRepository, bcryptCost int) *AuthService {
	return &AuthService{users: users, bcryptCost: bcryptCost}
}

// Register creates a new user account.
func (s *AuthService) Register(ctx context.Context, name, password string) (*domain.User, error) {
	if name == "" || password == "" {
		return nil, fmt.Errorf("%w: name and password are required", domain.ErrInvalidInput)
	}

	hash, err := bcrypt.GenerateFromPassword(truncatePassword(password), s.bcryptCost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	user := &domain.User{
		Name:         name,
		PasswordHash: string(hash),
	}

	if err := s.users.Create(ctx, user); err != nil {
		if errors.Is(err, domain.ErrDuplicateUser) {
			return nil, domain.ErrDuplicateUser
		}
		return nil, fmt.Errorf("create user: %w", err)
	}

	return user, nil
}

// Verify checks a name/password pair and returns the matching user.
// Unknown names and wrong passwords both return ErrInvalidCredentials so
// callers cannot enumerate usernames.
func (s *AuthService) Verify(ctx context.Context, name, password string) (*domain.User, error) {
	user, err := s.users.GetByName(ctx, name)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.ErrInvalidCredentials
		}
		return nil, fmt.Errorf("get user: %w", err)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), truncatePassword(password)); err != nil {
		return nil, domain.ErrInvalidCredentials
	}

	return user, nil
}

func truncatePassword(password string) []byte {
	b := []byte(password)
	if len(b) > maxPasswordBytes {
		b = b[:maxPasswordBytes]
	}
	return b
}
