package user

import (
	"context"
	"errors"

	"classfit/internal/auth"
)

var (
	ErrEmailExists        = errors.New("email already exists")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrUserNotFound       = errors.New("user not found")
	ErrInvalidRole        = errors.New("invalid role")
	ErrRoleNotAllowed     = errors.New("not authorized to create this role")
)

type Service interface {
	Register(ctx context.Context, req RegisterRequest, callerRole Role) (*User, string, string, error)
	Login(ctx context.Context, req LoginRequest) (*User, string, string, error)
	GetByID(ctx context.Context, userID string) (*User, error)
	UpdateProfile(ctx context.Context, userID string, req UpdateProfileRequest) (*User, string, error)
	List(ctx context.Context) ([]User, error)
	ListTrainers(ctx context.Context) ([]User, error)
	RefreshToken(ctx context.Context, refreshToken string) (string, *User, error)
}

type service struct {
	repo      Repository
	jwtSecret string
}

func NewService(repo Repository, jwtSecret string) Service {
	return &service{
		repo:      repo,
		jwtSecret: jwtSecret,
	}
}

func (s *service) Register(ctx context.Context, req RegisterRequest, callerRole Role) (*User, string, string, error) {
	role := req.Role
	if role == "" {
		role = RoleTrainee
	}
	if !role.Valid() {
		return nil, "", "", ErrInvalidRole
	}
	if role.Privileged() && callerRole != RoleAdmin {
		return nil, "", "", ErrRoleNotAllowed
	}

	exists, err := s.repo.EmailExists(ctx, req.Email)
	if err != nil {
		return nil, "", "", err
	}
	if exists {
		return nil, "", "", ErrEmailExists
	}

	passwordHash, err := auth.HashPassword(req.Password)
	if err != nil {
		return nil, "", "", err
	}

	user, err := s.repo.Create(ctx, req.Name, req.Email, passwordHash, role)
	if err != nil {
		return nil, "", "", err
	}

	accessToken, refreshToken, err := auth.GenerateTokens(user.ID, user.Email, string(user.Role), s.jwtSecret)
	if err != nil {
		return nil, "", "", err
	}

	return user, accessToken, refreshToken, nil
}

func (s *service) Login(ctx context.Context, req LoginRequest) (*User, string, string, error) {
	user, err := s.repo.FindByEmail(ctx, req.Email)
	if err != nil {
		return nil, "", "", ErrInvalidCredentials
	}

	if !auth.CheckPassword(user.PasswordHash, req.Password) {
		return nil, "", "", ErrInvalidCredentials
	}

	accessToken, refreshToken, err := auth.GenerateTokens(user.ID, user.Email, string(user.Role), s.jwtSecret)
	if err != nil {
		return nil, "", "", err
	}

	return user, accessToken, refreshToken, nil
}

func (s *service) GetByID(ctx context.Context, userID string) (*User, error) {
	user, err := s.repo.FindByID(ctx, userID)
	if err != nil {
		return nil, ErrUserNotFound
	}
	return user, nil
}

func (s *service) UpdateProfile(ctx context.Context, userID string, req UpdateProfileRequest) (*User, string, error) {
	user, err := s.repo.FindByID(ctx, userID)
	if err != nil {
		return nil, "", ErrUserNotFound
	}

	name := user.Name
	if req.Name != "" {
		name = req.Name
	}

	email := user.Email
	if req.Email != "" && req.Email != user.Email {
		exists, err := s.repo.EmailExists(ctx, req.Email)
		if err != nil {
			return nil, "", err
		}
		if exists {
			return nil, "", ErrEmailExists
		}
		email = req.Email
	}

	passwordHash := user.PasswordHash
	if req.Password != "" {
		passwordHash, err = auth.HashPassword(req.Password)
		if err != nil {
			return nil, "", err
		}
	}

	updated, err := s.repo.Update(ctx, userID, name, email, passwordHash)
	if err != nil {
		return nil, "", err
	}

	accessToken, err := auth.GenerateAccessToken(updated.ID, updated.Email, string(updated.Role), s.jwtSecret)
	if err != nil {
		return nil, "", err
	}

	return updated, accessToken, nil
}

func (s *service) List(ctx context.Context) ([]User, error) {
	return s.repo.ListAll(ctx)
}

func (s *service) ListTrainers(ctx context.Context) ([]User, error) {
	return s.repo.ListByRole(ctx, RoleTrainer)
}

func (s *service) RefreshToken(ctx context.Context, refreshToken string) (string, *User, error) {
	_, claims, err := auth.RefreshAccessToken(refreshToken, s.jwtSecret)
	if err != nil {
		return "", nil, err
	}

	user, err := s.repo.FindByID(ctx, claims.UserID)
	if err != nil {
		return "", nil, ErrUserNotFound
	}

	newAccessToken, err := auth.GenerateAccessToken(user.ID, user.Email, string(user.Role), s.jwtSecret)
	if err != nil {
		return "", nil, err
	}

	return newAccessToken, user, nil
}
