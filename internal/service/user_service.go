package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"movie-catalog/internal/auth"
	"movie-catalog/internal/domain"
	"movie-catalog/internal/repository"
)

var (
	// ErrInvalidInput marks validation failures on caller-supplied fields.
	ErrInvalidInput = errors.New("invalid input")
	// ErrInvalidCredentials indicates the supplied password does not verify.
	ErrInvalidCredentials = errors.New("invalid credentials")
	// ErrUserNotFound indicates no user matches the supplied username or email.
	ErrUserNotFound = errors.New("user not found")
	// ErrUserAlreadyExists is returned when signing up with a taken username or email.
	ErrUserAlreadyExists = errors.New("username or email already exists")
)

// UserService describes user lifecycle operations.
type UserService interface {
	Signup(ctx context.Context, username, email, password string) (*domain.User, error)
	Authenticate(ctx context.Context, usernameOrEmail, password string) (*domain.User, error)
	GetByID(ctx context.Context, id int64) (*domain.User, error)
}

type userService struct {
	users repository.UserRepository
}

func NewUserService(users repository.UserRepository) UserService {
	return &userService{users: users}
}

func (s *userService) Signup(ctx context.Context, username, email, password string) (*domain.User, error) {
	username = strings.TrimSpace(username)
	email = strings.TrimSpace(email)
	password = strings.TrimSpace(password)

	if username == "" {
		return nil, fmt.Errorf("%w: username is required", ErrInvalidInput)
	}
	if email == "" || !strings.Contains(email, "@") {
		return nil, fmt.Errorf("%w: a valid email is required", ErrInvalidInput)
	}
	if password == "" {
		return nil, fmt.Errorf("%w: password is required", ErrInvalidInput)
	}
	if len(password) < 8 {
		return nil, fmt.Errorf("%w: password must be at least 8 characters", ErrInvalidInput)
	}

	hash, err := auth.HashPassword(password)
	if err != nil {
		return nil, err
	}

	user := &domain.User{
		Username:     username,
		Email:        email,
		PasswordHash: hash,
	}

	if _, err := s.users.Create(ctx, user); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, ErrUserAlreadyExists
		}
		return nil, err
	}

	return sanitizeUser(user), nil
}

func (s *userService) Authenticate(ctx context.Context, usernameOrEmail, password string) (*domain.User, error) {
	usernameOrEmail = strings.TrimSpace(usernameOrEmail)
	password = strings.TrimSpace(password)
	if usernameOrEmail == "" || password == "" {
		return nil, ErrInvalidCredentials
	}

	user, err := s.users.GetByUsernameOrEmail(ctx, usernameOrEmail)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}

	if !auth.CheckPassword(password, user.PasswordHash) {
		return nil, ErrInvalidCredentials
	}

	return sanitizeUser(user), nil
}

func (s *userService) GetByID(ctx context.Context, id int64) (*domain.User, error) {
	user, err := s.users.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	return sanitizeUser(user), nil
}

// sanitizeUser strips the password hash before a user leaves the service layer.
func sanitizeUser(user *domain.User) *domain.User {
	if user == nil {
		return nil
	}
	return &domain.User{
		ID:        user.ID,
		Username:  user.Username,
		Email:     user.Email,
		CreatedAt: user.CreatedAt,
		UpdatedAt: user.UpdatedAt,
	}
}
