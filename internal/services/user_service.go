package services

import (
	"context"
	"errors"

	"harir-backend/internal/auth"
	"harir-backend/internal/cache"
	"harir-backend/internal/models"
	"harir-backend/internal/repositories"
)

type UserService struct {
	UserRepo   *repositories.UserRepository
	JWTManager *auth.JWTManager
}

func NewUserService(userRepo *repositories.UserRepository, jwtManager *auth.JWTManager) *UserService {
	return &UserService{
		UserRepo:   userRepo,
		JWTManager: jwtManager,
	}
}

// CreateUser creates a new account with a hashed password
func (s *UserService) CreateUser(ctx context.Context, req *models.CreateUserRequest) (*models.User, error) {
	if req.Name == "" || req.Email == "" {
		return nil, errors.New("name and email are required")
	}
	if len(req.Password) < 8 {
		return nil, errors.New("password must be at least 8 characters")
	}
	role := req.Role
	if role == "" {
		role = "operator"
	}
	if role != "admin" && role != "operator" && role != "guard" {
		return nil, errors.New("role must be 'admin', 'operator', or 'guard'")
	}

	hash, err := auth.HashPassword(req.Password)
	if err != nil {
		return nil, err
	}

	user := &models.User{
		Name:         req.Name,
		Email:        req.Email,
		PasswordHash: hash,
		Role:         role,
	}
	if err := s.UserRepo.Create(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}

// Login verifies credentials and issues a JWT. Verified credentials are
// cached in redis so repeat logins skip the bcrypt comparison.
func (s *UserService) Login(ctx context.Context, req *models.LoginRequest) (*models.LoginResponse, error) {
	user, err := s.UserRepo.GetByEmail(ctx, req.Email)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, errors.New("invalid email or password")
		}
		return nil, err
	}
	if !user.IsActive {
		return nil, errors.New("account suspended")
	}

	if _, cached := cache.GetCachedAuth(ctx, req.Email, req.Password); !cached {
		if !auth.VerifyPassword(user.PasswordHash, req.Password) {
			return nil, errors.New("invalid email or password")
		}
		cache.CacheAuth(ctx, req.Email, req.Password, int64(user.ID))
	}

	token, err := s.JWTManager.GenerateToken(user)
	if err != nil {
		return nil, err
	}
	return &models.LoginResponse{Token: token, User: user}, nil
}

// ListUsers returns all accounts
func (s *UserService) ListUsers(ctx context.Context) ([]*models.User, error) {
	return s.UserRepo.List(ctx)
}
