package service

import (
	"context"
	"errors"
	"strings"

	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"

	"brokerdash/internal/apperr"
	"brokerdash/internal/model"
	"brokerdash/internal/repository"
	"brokerdash/pkg/rbac"
	"brokerdash/pkg/util"
)

type AuthService struct {
	userRepo  *repository.UserRepository
	jwtSecret string
	logger    *zap.Logger
}

func NewAuthService(userRepo *repository.UserRepository, jwtSecret string, logger *zap.Logger) *AuthService {
	return &AuthService{
		userRepo:  userRepo,
		jwtSecret: jwtSecret,
		logger:    logger,
	}
}

// Register creates a new user. New users default to the assistant role;
// admins are promoted directly in the database.
func (s *AuthService) Register(ctx context.Context, email, password, name string) (*model.User, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" {
		return nil, apperr.Validation("email is required")
	}
	if len(password) < 8 {
		return nil, apperr.Validation("password must be at least 8 characters")
	}

	existing, err := s.userRepo.FindByEmail(ctx, email)
	if err != nil && !errors.Is(err, pgx.ErrNoRows) {
		return nil, apperr.Upstream(err)
	}
	if existing != nil {
		return nil, apperr.Validation("email already exists")
	}

	hash, err := util.HashPassword(password)
	if err != nil {
		return nil, err
	}

	u := &model.User{
		Email:        email,
		PasswordHash: hash,
		Name:         name,
		Role:         rbac.RoleAssistant,
	}

	if err := s.userRepo.CreateUser(ctx, u); err != nil {
		return nil, apperr.Upstream(err)
	}

	return u, nil
}

// Login checks credentials and returns a JWT carrying the user's role.
func (s *AuthService) Login(ctx context.Context, email, password string) (string, *model.User, error) {
	email = strings.ToLower(strings.TrimSpace(email))

	u, err := s.userRepo.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return "", nil, apperr.Forbidden("invalid email or password")
		}
		return "", nil, apperr.Upstream(err)
	}

	if !util.CheckPassword(password, u.PasswordHash) {
		return "", nil, apperr.Forbidden("invalid email or password")
	}

	token, err := util.GenerateJWT(u.ID.String(), rbac.NormalizeRole(u.Role), s.jwtSecret)
	if err != nil {
		return "", nil, err
	}

	return token, u, nil
}
