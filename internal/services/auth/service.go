// Package auth handles registration, login and token refresh.
package auth

import (
	"context"
	"errors"
	"strings"
	"time"

	"moonex/internal/logger"
	"moonex/internal/models"
	"moonex/internal/repositories"
	"moonex/internal/utils"

	"github.com/sirupsen/logrus"
	"golang.org/x/crypto/bcrypt"
)

var (
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrEmailTaken         = errors.New("email already registered")
	ErrWeakPassword       = errors.New("password must be at least 8 characters")
)

type Service interface {
	Register(ctx context.Context, email, password, fullName string) (*models.User, error)
	Login(ctx context.Context, email, password string) (*models.User, string, string, error)
	RefreshTokens(ctx context.Context, refreshToken string) (string, string, error)
	GetUserByID(ctx context.Context, userID uint) (*models.User, error)
	GetUserTokenVersion(ctx context.Context, userID uint) (int, error)
}

type service struct {
	userRepo repositories.UserRepository
	log      *logrus.Entry
}

func NewService(userRepo repositories.UserRepository) Service {
	return &service{
		userRepo: userRepo,
		log:      logger.WithComponent("auth"),
	}
}

func (s *service) Register(ctx context.Context, email, password, fullName string) (*models.User, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" || !strings.Contains(email, "@") {
		return nil, errors.New("valid email is required")
	}
	if len(password) < 8 {
		return nil, ErrWeakPassword
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, errors.New("failed to hash password")
	}

	user := &models.User{
		Email:        email,
		Password:     string(hashed),
		FullName:     strings.TrimSpace(fullName),
		TokenVersion: 1,
	}
	if err := s.userRepo.Create(ctx, user); err != nil {
		if errors.Is(err, repositories.ErrDuplicateEmail) {
			return nil, ErrEmailTaken
		}
		return nil, err
	}

	s.log.WithField("user_id", user.ID).Info("user registered")
	return user, nil
}

func (s *service) Login(ctx context.Context, email, password string) (*models.User, string, string, error) {
	user, err := s.userRepo.GetByEmail(ctx, strings.ToLower(strings.TrimSpace(email)))
	if err != nil {
		return nil, "", "", ErrInvalidCredentials
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(password)); err != nil {
		s.log.WithField("user_id", user.ID).Debug("login failed: bad password")
		return nil, "", "", ErrInvalidCredentials
	}

	accessToken, refreshToken, err := utils.GenerateTokens(&models.UserClaims{
		UserID:       user.ID,
		Email:        user.Email,
		TokenVersion: user.TokenVersion,
	})
	if err != nil {
		return nil, "", "", errors.New("error generating tokens")
	}

	// Best effort; a failed stamp must not fail the login.
	if err := s.userRepo.UpdateLastLogin(ctx, user.ID); err != nil {
		s.log.WithError(err).WithField("user_id", user.ID).Warn("failed to record last login")
	} else {
		now := time.Now().UTC()
		user.LastLoginAt = &now
	}

	return user, accessToken, refreshToken, nil
}

func (s *service) RefreshTokens(ctx context.Context, refreshToken string) (string, string, error) {
	_, claims, err := utils.ParseToken(refreshToken)
	if err != nil {
		return "", "", errors.New("invalid refresh token")
	}

	user, err := s.userRepo.GetByID(ctx, claims.UserID)
	if err != nil {
		return "", "", errors.New("user not found")
	}
	if user.TokenVersion != claims.TokenVersion {
		return "", "", errors.New("token version mismatch")
	}

	return utils.GenerateTokens(&models.UserClaims{
		UserID:       user.ID,
		Email:        user.Email,
		TokenVersion: user.TokenVersion,
	})
}

func (s *service) GetUserByID(ctx context.Context, userID uint) (*models.User, error) {
	return s.userRepo.GetByID(ctx, userID)
}

func (s *service) GetUserTokenVersion(ctx context.Context, userID uint) (int, error) {
	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		return 0, err
	}
	return user.TokenVersion, nil
}
