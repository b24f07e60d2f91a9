package apistub

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/prudhvinik1/grftalk/internal/repositories"
	"github.com/prudhvinik1/grftalk/internal/utils"
)

var (
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrInvalidToken       = errors.New("invalid token")
)

type AuthService struct {
	accounts   repositories.AccountRepository
	jwtSecret  string
	jwtExpiry  time.Duration
	bcryptCost int
	now        func() time.Time
}

type TokenClaims struct {
	AccountID uuid.UUID
	TokenID   string
}

func NewAuthService(accounts repositories.AccountRepository, jwtSecret string, jwtExpiry time.Duration, bcryptCost int, now func() time.Time) *AuthService {
	if now == nil {
		now = time.Now
	}
	return &AuthService{
		accounts:   accounts,
		jwtSecret:  jwtSecret,
		jwtExpiry:  jwtExpiry,
		bcryptCost: bcryptCost,
		now:        now,
	}
}

// Register creates the account and returns it with a fresh token.
func (s *AuthService) Register(ctx context.Context, name, email, password string) (*repositories.Account, string, error) {
	hashedPassword, err := utils.HashPassword(password, s.bcryptCost)
	if err != nil {
		return nil, "", fmt.Errorf("failed to hash password: %w", err)
	}

	account := &repositories.Account{
		Name:         name,
		Email:        email,
		PasswordHash: hashedPassword,
		LastAccess:   s.now(),
	}
	if err := s.accounts.Create(ctx, account); err != nil {
		return nil, "", err
	}

	token, err := s.generateToken(account.ID)
	if err != nil {
		return nil, "", fmt.Errorf("failed to generate token: %w", err)
	}
	return account, token, nil
}

func (s *AuthService) Login(ctx context.Context, email, password string) (*repositories.Account, string, error) {
	account, err := s.accounts.GetByEmail(ctx, email)
	if errors.Is(err, repositories.ErrNotFound) {
		return nil, "", ErrInvalidCredentials
	}
	if err != nil {
		return nil, "", fmt.Errorf("failed to get account: %w", err)
	}

	if !utils.CheckPassword(account.PasswordHash, password) {
		return nil, "", ErrInvalidCredentials
	}

	token, err := s.generateToken(account.ID)
	if err != nil {
		return nil, "", fmt.Errorf("failed to generate token: %w", err)
	}
	return account, token, nil
}

func (s *AuthService) HashPassword(password string) (string, error) {
	return utils.HashPassword(password, s.bcryptCost)
}

func (s *AuthService) generateToken(accountID uuid.UUID) (string, error) {
	now := s.now()
	claims := jwt.MapClaims{
		"sub": accountID.String(),
		"jti": uuid.NewString(),
		"exp": now.Add(s.jwtExpiry).Unix(),
		"iat": now.Unix(),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(s.jwtSecret))
}

func (s *AuthService) VerifyToken(tokenString string) (*TokenClaims, error) {
	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return []byte(s.jwtSecret), nil
	}, jwt.WithTimeFunc(s.now))

	if err != nil || !token.Valid {
		return nil, ErrInvalidToken
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return nil, ErrInvalidToken
	}

	accountIDStr, ok := claims["sub"].(string)
	if !ok {
		return nil, ErrInvalidToken
	}
	accountID, err := uuid.Parse(accountIDStr)
	if err != nil {
		return nil, ErrInvalidToken
	}

	tokenID, _ := claims["jti"].(string)

	return &TokenClaims{AccountID: accountID, TokenID: tokenID}, nil
}
