package auth

import (
	"context"
	"errors"
	"fmt"

	apperrors "freelink/internal/errors"
	"freelink/internal/logging"
	"freelink/internal/models"
	"freelink/internal/repositories"
	"freelink/internal/validation"

	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

type service struct {
	store    repositories.Store
	tokens   TokenIssuer
	currency string
	logger   *zap.Logger
}

func NewService(store repositories.Store, tokens TokenIssuer, currency string, logger *zap.Logger) Service {
	return &service{
		store:    store,
		tokens:   tokens,
		currency: currency,
		logger:   logging.OrNop(logger).Named("auth"),
	}
}

func (s *service) Register(ctx context.Context, in RegisterInput) (*models.User, error) {
	if !in.IsClient && !in.IsFreelancer {
		return nil, apperrors.ErrInvalidInput.Withf("a user must be a client or a freelancer")
	}
	if !validation.StrongPassword(in.Password) {
		return nil, apperrors.ErrInvalidInput.Withf("password must be at least 8 characters with upper, lower, digit and special characters")
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(in.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	user := &models.User{
		Username:     in.Username,
		Email:        in.Email,
		Phone:        in.Phone,
		Password:     string(hashed),
		IsClient:     in.IsClient,
		IsFreelancer: in.IsFreelancer,
	}

	err = s.store.WithinTx(ctx, func(tx repositories.Store) error {
		if err := tx.Users().Create(ctx, user); err != nil {
			return err
		}
		return tx.Wallets().Create(ctx, &models.Wallet{UserID: user.ID, Currency: s.currency})
	})
	if err != nil {
		if errors.Is(err, repositories.ErrDuplicate) {
			return nil, apperrors.ErrUserExists
		}
		s.logger.Error("registration failed", zap.String("username", in.Username), zap.Error(err))
		return nil, fmt.Errorf("failed to register user: %w", err)
	}

	s.logger.Info("user registered", zap.Uint("user_id", user.ID), zap.String("role", user.Role()))
	return user, nil
}

func (s *service) Login(ctx context.Context, login, password string) (*models.User, string, string, error) {
	user, err := s.store.Users().GetByLogin(ctx, login)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			s.logger.Info("login failed: unknown identifier")
			return nil, "", "", apperrors.ErrInvalidCredentials
		}
		return nil, "", "", fmt.Errorf("failed to get user: %w", err)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(password)); err != nil {
		s.logger.Info("login failed: incorrect password", zap.Uint("user_id", user.ID))
		return nil, "", "", apperrors.ErrInvalidCredentials
	}

	access, refresh, err := s.issue(user)
	if err != nil {
		return nil, "", "", err
	}
	return user, access, refresh, nil
}

func (s *service) RefreshTokens(ctx context.Context, refreshToken string) (string, string, error) {
	claims, err := s.tokens.ParseRefreshToken(refreshToken)
	if err != nil {
		return "", "", apperrors.ErrInvalidToken.Withf("invalid refresh token")
	}

	user, err := s.store.Users().GetByID(ctx, claims.UserID)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return "", "", apperrors.ErrInvalidToken.Withf("user no longer exists")
		}
		return "", "", fmt.Errorf("failed to get user: %w", err)
	}

	if user.TokenVersion != claims.TokenVersion {
		return "", "", apperrors.ErrInvalidToken.Withf("token has been revoked")
	}

	return s.issue(user)
}

func (s *service) Logout(ctx context.Context, userID uint) error {
	return s.bumpTokenVersion(ctx, userID, nil)
}

func (s *service) ChangePassword(ctx context.Context, userID uint, oldPassword, newPassword string) error {
	if !validation.StrongPassword(newPassword) {
		return apperrors.ErrInvalidInput.Withf("password must be at least 8 characters with upper, lower, digit and special characters")
	}

	return s.bumpTokenVersion(ctx, userID, func(user *models.User) error {
		if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(oldPassword)); err != nil {
			return apperrors.ErrInvalidCredentials.Withf("old password does not match")
		}
		hashed, err := bcrypt.GenerateFromPassword([]byte(newPassword), bcrypt.DefaultCost)
		if err != nil {
			return fmt.Errorf("failed to hash password: %w", err)
		}
		user.Password = string(hashed)
		return nil
	})
}

func (s *service) GetUserByID(ctx context.Context, userID uint) (*models.User, error) {
	user, err := s.store.Users().GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, apperrors.ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	return user, nil
}

func (s *service) GetUserTokenVersion(ctx context.Context, userID uint) (int, error) {
	user, err := s.GetUserByID(ctx, userID)
	if err != nil {
		return 0, err
	}
	return user.TokenVersion, nil
}

func (s *service) VerifyUser(ctx context.Context, actorID, userID uint) (*models.User, error) {
	actor, err := s.GetUserByID(ctx, actorID)
	if err != nil {
		return nil, err
	}
	if !actor.IsStaff {
		return nil, apperrors.ErrForbidden.Withf("only staff can verify users")
	}

	var user *models.User
	err = s.store.WithinTx(ctx, func(tx repositories.Store) error {
		u, err := tx.Users().GetByID(ctx, userID)
		if err != nil {
			return err
		}
		u.IsVerified = true
		if err := tx.Users().Update(ctx, u); err != nil {
			return err
		}
		user = u
		return nil
	})
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, apperrors.ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to verify user: %w", err)
	}

	s.logger.Info("user verified", zap.Uint("user_id", userID), zap.Uint("staff_id", actorID))
	return user, nil
}

// bumpTokenVersion invalidates every outstanding token of the user after
// applying change, if any.
func (s *service) bumpTokenVersion(ctx context.Context, userID uint, change func(*models.User) error) error {
	err := s.store.WithinTx(ctx, func(tx repositories.Store) error {
		user, err := tx.Users().GetByID(ctx, userID)
		if err != nil {
			return err
		}
		if change != nil {
			if err := change(user); err != nil {
				return err
			}
		}
		user.TokenVersion++
		return tx.Users().Update(ctx, user)
	})
	if err == nil {
		return nil
	}
	if errors.Is(err, repositories.ErrNotFound) {
		return apperrors.ErrUserNotFound
	}
	if _, ok := apperrors.As(err); ok {
		return err
	}
	s.logger.Error("token version update failed", zap.Uint("user_id", userID), zap.Error(err))
	return fmt.Errorf("failed to update user: %w", err)
}

func (s *service) issue(user *models.User) (string, string, error) {
	role := user.Role()
	access, refresh, err := s.tokens.GenerateTokens(&models.UserClaims{
		UserID:       user.ID,
		Username:     user.Username,
		Role:         role,
		Permissions:  models.GetDefaultPermissions(role),
		TokenVersion: user.TokenVersion,
	})
	if err != nil {
		s.logger.Error("token generation failed", zap.Uint("user_id", user.ID), zap.Error(err))
		return "", "", fmt.Errorf("error generating tokens: %w", err)
	}
	return access, refresh, nil
}
