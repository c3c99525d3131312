package auth

import (
	"context"

	"freelink/internal/models"
)

// RegisterInput carries a self-service signup. Staff accounts are only
// created by the admin seeding command.
type RegisterInput struct {
	Username     string
	Email        string
	Phone        string
	Password     string
	IsClient     bool
	IsFreelancer bool
}

type Service interface {
	Register(ctx context.Context, in RegisterInput) (*models.User, error)
	Login(ctx context.Context, login, password string) (*models.User, string, string, error)
	RefreshTokens(ctx context.Context, refreshToken string) (string, string, error)
	Logout(ctx context.Context, userID uint) error
	ChangePassword(ctx context.Context, userID uint, oldPassword, newPassword string) error
	GetUserByID(ctx context.Context, userID uint) (*models.User, error)
	GetUserTokenVersion(ctx context.Context, userID uint) (int, error)
	// VerifyUser marks a user verified. Only staff may do it.
	VerifyUser(ctx context.Context, actorID, userID uint) (*models.User, error)
}

// TokenIssuer signs and parses the token pair handed out at login.
type TokenIssuer interface {
	GenerateTokens(claims *models.UserClaims) (string, string, error)
	ParseRefreshToken(token string) (*models.UserClaims, error)
}
