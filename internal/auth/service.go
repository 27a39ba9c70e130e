package auth

import (
	"context"
	"errors"
	"fmt"

	"github.com/go-playground/validator/v10"
	"gorm.io/gorm"

	"github.com/plumekit/plume/internal/model"
	"github.com/plumekit/plume/internal/repository"
)

var (
	ErrInvalidLogin  = errors.New("invalid username or password")
	ErrUsernameTaken = errors.New("username already taken")
)

var validate = validator.New()

// SignupInput is validated before any row is written.
type SignupInput struct {
	Username string `validate:"required,min=3,max=150,alphanumunicode"`
	Email    string `validate:"omitempty,email"`
	Password string `validate:"required,min=6"`
}

// Service implements the account flows the boundary needs: it is the
// narrow interface the platform assumes an auth system behind.
type Service struct {
	users repository.UserRepository
}

func NewService(users repository.UserRepository) *Service {
	return &Service{users: users}
}

func (s *Service) SignUp(ctx context.Context, in SignupInput) (*model.User, error) {
	if err := validate.Struct(in); err != nil {
		return nil, err
	}
	if _, err := s.users.GetByUsername(ctx, in.Username); err == nil {
		return nil, ErrUsernameTaken
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("check username: %w", err)
	}
	hash, err := HashPassword(in.Password)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}
	user := &model.User{Username: in.Username, Email: in.Email, PasswordHash: hash}
	if err := s.users.Create(ctx, user); err != nil {
		return nil, fmt.Errorf("create user: %w", err)
	}
	return user, nil
}

// Login never says which of username or password was wrong.
func (s *Service) Login(ctx context.Context, username, password string) (*model.User, error) {
	user, err := s.users.GetByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrInvalidLogin
		}
		return nil, fmt.Errorf("get user: %w", err)
	}
	if !CheckPassword(user.PasswordHash, password) {
		return nil, ErrInvalidLogin
	}
	return user, nil
}
