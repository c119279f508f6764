package usecases

import (
	"context"
	"crypto/subtle"

	"go.uber.org/zap"
	"splitdine-admin.backend/internal/domain/entities"
	domainerrors "splitdine-admin.backend/internal/domain/errors"
	"splitdine-admin.backend/pkg/crypto"
	"splitdine-admin.backend/pkg/jwt"
	"splitdine-admin.backend/pkg/logger"
)

// Operator is the console account allowed to manage restaurants
type Operator struct {
	Email        string
	PasswordHash string
}

// AuthUsecase authenticates the console operator
type AuthUsecase struct {
	operator   Operator
	jwtService *jwt.JWTService
}

// NewAuthUsecase creates a new auth usecase
func NewAuthUsecase(operator Operator, jwtService *jwt.JWTService) *AuthUsecase {
	operator.Email = entities.NormalizeEmail(operator.Email)
	return &AuthUsecase{
		operator:   operator,
		jwtService: jwtService,
	}
}

func (u *AuthUsecase) matchesOperator(email string) bool {
	if u.operator.Email == "" {
		return false
	}
	return subtle.ConstantTimeCompare([]byte(entities.NormalizeEmail(email)), []byte(u.operator.Email)) == 1
}

// Login authenticates the operator and returns tokens
func (u *AuthUsecase) Login(ctx context.Context, input *entities.LoginInput) (*entities.AuthResponse, error) {
	if !u.matchesOperator(input.Email) || !crypto.CheckPassword(input.Password, u.operator.PasswordHash) {
		logger.Warn(ctx, "Operator login rejected", zap.String("email", input.Email))
		return nil, domainerrors.ErrInvalidCredentials
	}

	tokenPair, err := u.jwtService.GenerateTokenPair(u.operator.Email, string(entities.UserRoleAdmin))
	if err != nil {
		return nil, err
	}

	logger.Info(ctx, "Operator logged in", zap.String("email", u.operator.Email))
	return &entities.AuthResponse{
		AccessToken:  tokenPair.AccessToken,
		RefreshToken: tokenPair.RefreshToken,
		Email:        u.operator.Email,
		Role:         string(entities.UserRoleAdmin),
	}, nil
}

// RefreshToken generates new tokens from a refresh token
func (u *AuthUsecase) RefreshToken(ctx context.Context, refreshToken string) (*jwt.TokenPair, error) {
	claims, err := u.jwtService.ValidateTokenOfType(refreshToken, jwt.TokenTypeRefresh)
	if err != nil {
		return nil, domainerrors.ErrUnauthorized
	}
	// Ensure the operator account is still the configured one
	if !u.matchesOperator(claims.Email) {
		return nil, domainerrors.ErrUnauthorized
	}
	return u.jwtService.GenerateTokenPair(u.operator.Email, claims.Role)
}

// VerifyPassword re-authenticates the operator before an irreversible action
func (u *AuthUsecase) VerifyPassword(ctx context.Context, email, password string) error {
	if !u.matchesOperator(email) || !crypto.CheckPassword(password, u.operator.PasswordHash) {
		logger.Warn(ctx, "Operator re-authentication failed", zap.String("email", email))
		return domainerrors.ErrInvalidCredentials
	}
	return nil
}
