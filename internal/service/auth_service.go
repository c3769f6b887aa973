package service

import (
	"context"
	"errors"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/wizzchat/wizzchat/internal/cache"
	"github.com/wizzchat/wizzchat/internal/domain"
	"github.com/wizzchat/wizzchat/internal/repository"
	"github.com/wizzchat/wizzchat/pkg/jwt"
	"github.com/wizzchat/wizzchat/pkg/log"
)

type authService struct {
	repo     repository.UserRepository
	tokens   *jwt.Manager
	cache    cache.UserCache // nil disables caching
	cacheTTL time.Duration
}

// NewAuthService creates the auth service. Pass a nil cache to run without
// Redis.
func NewAuthService(repo repository.UserRepository, tokens *jwt.Manager, userCache cache.UserCache, cacheTTL time.Duration) AuthService {
	return &authService{
		repo:     repo,
		tokens:   tokens,
		cache:    userCache,
		cacheTTL: cacheTTL,
	}
}

func (s *authService) Register(ctx context.Context, req *domain.RegisterRequest) (*domain.AuthResponse, error) {
	l := log.Ctx(ctx)

	hashed, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		l.Error().Err(err).Msg("failed to hash password")
		return nil, err
	}

	user := &domain.User{
		Email:        req.Email,
		Username:     req.Username,
		PasswordHash: string(hashed),
		MessageColor: req.MessageColor,
	}

	if err := s.repo.Create(ctx, user); err != nil {
		return nil, err
	}

	token, err := s.tokens.Generate(user.ID, user.Username)
	if err != nil {
		l.Error().Err(err).Str(log.FieldUserID, user.ID).Msg("failed to generate token after register")
		return nil, err
	}

	l.Info().Str(log.FieldUserID, user.ID).Str(log.FieldUsername, user.Username).Msg("user registered")

	return &domain.AuthResponse{
		User:        user.ToResponse(),
		AccessToken: token,
	}, nil
}

func (s *authService) Login(ctx context.Context, req *domain.LoginRequest) (*domain.AuthResponse, error) {
	l := log.Ctx(ctx)

	user, err := s.repo.GetByEmail(ctx, req.Email)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return nil, ErrInvalidCredentials
		}
		l.Error().Err(err).Msg("failed to get user by email")
		return nil, err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)); err != nil {
		return nil, ErrInvalidCredentials
	}

	if err := s.repo.SetOnline(ctx, user.ID, true); err != nil {
		l.Warn().Err(err).Str(log.FieldUserID, user.ID).Msg("failed to set online flag")
	}
	user.IsOnline = true
	s.invalidate(ctx, user.ID)

	token, err := s.tokens.Generate(user.ID, user.Username)
	if err != nil {
		l.Error().Err(err).Str(log.FieldUserID, user.ID).Msg("failed to generate token after login")
		return nil, err
	}

	l.Info().Str(log.FieldUserID, user.ID).Msg("user logged in")

	return &domain.AuthResponse{
		User:        user.ToResponse(),
		AccessToken: token,
	}, nil
}

func (s *authService) Logout(ctx context.Context, userID string) error {
	if err := s.repo.SetOnline(ctx, userID, false); err != nil {
		return err
	}
	s.invalidate(ctx, userID)

	l := log.Ctx(ctx)
	l.Info().Str(log.FieldUserID, userID).Msg("user logged out")
	return nil
}

func (s *authService) Profile(ctx context.Context, userID string) (*domain.UserResponse, error) {
	user, err := s.getUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	resp := user.ToResponse()
	return &resp, nil
}

func (s *authService) UpdateProfile(ctx context.Context, userID string, req *domain.UpdateProfileRequest) (*domain.UserResponse, error) {
	user, err := s.repo.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}

	if req.Username != nil {
		user.Username = *req.Username
	}
	if req.MessageColor != nil {
		user.MessageColor = *req.MessageColor
	}

	if err := s.repo.Update(ctx, user); err != nil {
		return nil, err
	}
	s.invalidate(ctx, userID)

	resp := user.ToResponse()
	return &resp, nil
}

func (s *authService) ListUsers(ctx context.Context) ([]domain.UserResponse, error) {
	users, err := s.repo.List(ctx)
	if err != nil {
		return nil, err
	}

	responses := make([]domain.UserResponse, 0, len(users))
	for i := range users {
		responses = append(responses, users[i].ToResponse())
	}
	return responses, nil
}

// getUser reads through the cache when one is configured.
func (s *authService) getUser(ctx context.Context, userID string) (*domain.User, error) {
	if s.cache == nil {
		return s.repo.GetByID(ctx, userID)
	}

	cached, err := s.cache.Get(ctx, userID)
	if err == nil {
		return cached, nil
	}
	if !errors.Is(err, cache.ErrCacheMiss) {
		l := log.Ctx(ctx)
		l.Warn().Err(err).Str(log.FieldUserID, userID).Msg("user cache read failed")
	}

	user, err := s.repo.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}

	if err := s.cache.Set(ctx, user, s.cacheTTL); err != nil {
		l := log.Ctx(ctx)
		l.Warn().Err(err).Str(log.FieldUserID, userID).Msg("user cache write failed")
	}
	return user, nil
}

func (s *authService) invalidate(ctx context.Context, userID string) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Delete(ctx, userID); err != nil {
		l := log.Ctx(ctx)
		l.Warn().Err(err).Str(log.FieldUserID, userID).Msg("user cache invalidation failed")
	}
}
