package user

import (
	"context"
	"strings"

	"riparo-be/internal/apperror"
	"riparo-be/internal/logger"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

type RegisterInput struct {
	Email    string
	Password string
	FullName string
	Phone    *string
}

type Service interface {
	Register(ctx context.Context, input RegisterInput) (*User, error)
	Login(ctx context.Context, email, password string) (*User, string, error)
}

type service struct {
	repo Repository
}

func NewService(repo Repository) Service {
	return &service{repo: repo}
}

func (s *service) Register(ctx context.Context, input RegisterInput) (*User, error) {
	email := strings.ToLower(strings.TrimSpace(input.Email))
	if email == "" || input.Password == "" || strings.TrimSpace(input.FullName) == "" {
		return nil, apperror.Validation("missing_fields", "email, password and full name are required")
	}
	if len(input.Password) < 8 {
		return nil, apperror.Validation("weak_password", "password must be at least 8 characters")
	}

	existing, err := s.repo.GetByEmail(ctx, email)
	if err != nil {
		return nil, apperror.FromRepository(err)
	}
	if existing != nil {
		return nil, apperror.Conflict("email_exists", "email already registered")
	}

	hash, err := HashPassword(input.Password)
	if err != nil {
		return nil, err
	}

	u := &User{
		ID:           uuid.NewString(),
		Email:        email,
		PasswordHash: hash,
		FullName:     strings.TrimSpace(input.FullName),
		Phone:        input.Phone,
		Role:         RoleCustomer,
	}

	if err := s.repo.Create(ctx, u); err != nil {
		return nil, apperror.FromRepository(err)
	}

	logger.FromCtx(ctx).Info("user registered", zap.String("user_id", u.ID))
	return u, nil
}

func (s *service) Login(ctx context.Context, email, password string) (*User, string, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	u, err := s.repo.GetByEmail(ctx, email)
	if err != nil {
		return nil, "", apperror.FromRepository(err)
	}
	if u == nil || !CheckPasswordHash(password, u.PasswordHash) {
		return nil, "", apperror.Unauthorized("invalid credentials")
	}

	token, err := GenerateJWT(u.ID, u.Role, u.TechnicianID)
	if err != nil {
		return nil, "", err
	}
	return u, token, nil
}
