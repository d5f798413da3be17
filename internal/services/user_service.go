package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"fintrack/internal/auth"
	"fintrack/internal/core"
	"fintrack/internal/store"
)

// ErrInvalidCredentials covers both unknown email and wrong password on
// login, so a caller cannot probe which addresses are registered.
var ErrInvalidCredentials = errors.New("invalid credentials")

// MinPasswordLength is the minimum accepted password length.
const MinPasswordLength = 6

// UserService implements registration, login and profile management.
type UserService struct {
	store store.Store
}

func NewUserService(st store.Store) *UserService {
	return &UserService{store: st}
}

// Register creates a new account. The email is lowercased before the
// uniqueness check so addresses differing only by case collide.
func (s *UserService) Register(ctx context.Context, name, email, password string) (*core.User, error) {
	name = strings.TrimSpace(name)
	email = strings.ToLower(strings.TrimSpace(email))
	if name == "" || email == "" || password == "" {
		return nil, core.Validationf("required fields: name, email, password")
	}
	if len(password) < MinPasswordLength {
		return nil, core.Validationf("password must be at least %d characters", MinPasswordLength)
	}

	hash, err := auth.HashPassword(password)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	u := core.User{
		ID:           uuid.NewString(),
		Name:         name,
		Email:        email,
		PasswordHash: hash,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := u.Validate(); err != nil {
		return nil, err
	}

	if err := s.store.CreateUser(ctx, &u); err != nil {
		if errors.Is(err, store.ErrEmailTaken) {
			return nil, store.ErrEmailTaken
		}
		return nil, fmt.Errorf("create user: %w", err)
	}
	return &u, nil
}

// Login verifies the credentials and returns the account. Unknown email
// and wrong password both come back as ErrInvalidCredentials.
func (s *UserService) Login(ctx context.Context, email, password string) (*core.User, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" || password == "" {
		return nil, core.Validationf("required fields: email, password")
	}

	u, err := s.store.GetUserByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, fmt.Errorf("lookup user: %w", err)
	}
	if !auth.CheckPassword(u.PasswordHash, password) {
		return nil, ErrInvalidCredentials
	}
	return u, nil
}

// GetProfile fetches the account by id.
func (s *UserService) GetProfile(ctx context.Context, userID string) (*core.User, error) {
	return s.store.GetUserByID(ctx, userID)
}

// UpdateProfileInput is the partial profile update body. Setting
// NewPassword requires the matching CurrentPassword.
type UpdateProfileInput struct {
	Name            *string
	Email           *string
	CurrentPassword string
	NewPassword     string
}

// UpdateProfile applies the supplied fields to the account. A password
// change verifies the current password first; a mismatch is a validation
// failure, not an authorization one.
func (s *UserService) UpdateProfile(ctx context.Context, userID string, in UpdateProfileInput) (*core.User, error) {
	u, err := s.store.GetUserByID(ctx, userID)
	if err != nil {
		return nil, err
	}

	if in.Name != nil {
		u.Name = strings.TrimSpace(*in.Name)
	}
	if in.Email != nil {
		u.Email = strings.ToLower(strings.TrimSpace(*in.Email))
	}
	if in.NewPassword != "" {
		if in.CurrentPassword == "" {
			return nil, core.Validationf("current password is required to change password")
		}
		if !auth.CheckPassword(u.PasswordHash, in.CurrentPassword) {
			return nil, core.Validationf("current password is incorrect")
		}
		if len(in.NewPassword) < MinPasswordLength {
			return nil, core.Validationf("password must be at least %d characters", MinPasswordLength)
		}
		hash, err := auth.HashPassword(in.NewPassword)
		if err != nil {
			return nil, err
		}
		u.PasswordHash = hash
	}

	if err := u.Validate(); err != nil {
		return nil, err
	}
	u.UpdatedAt = time.Now().UTC()

	if err := s.store.UpdateUser(ctx, u); err != nil {
		if errors.Is(err, store.ErrEmailTaken) {
			return nil, store.ErrEmailTaken
		}
		return nil, fmt.Errorf("update user: %w", err)
	}
	return u, nil
}

// DeleteAccount removes the account and every transaction it owns after
// re-verifying the password. It returns how many transactions were
// removed.
func (s *UserService) DeleteAccount(ctx context.Context, userID, password string) (int64, error) {
	if password == "" {
		return 0, core.Validationf("password is required to delete account")
	}

	u, err := s.store.GetUserByID(ctx, userID)
	if err != nil {
		return 0, err
	}
	if !auth.CheckPassword(u.PasswordHash, password) {
		return 0, core.Validationf("password is incorrect")
	}

	removed, err := s.store.DeleteOwnerTransactions(ctx, userID)
	if err != nil {
		return 0, fmt.Errorf("delete owner transactions: %w", err)
	}
	if err := s.store.DeleteUser(ctx, userID); err != nil {
		return removed, fmt.Errorf("delete user: %w", err)
	}
	return removed, nil
}
