package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"moveis-catalog/internal/domain"
	"moveis-catalog/internal/repository"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

const (
	BcryptCost = 10

	// MinSecretLength is the shortest HMAC key accepted for signing tokens.
	MinSecretLength = 32

	DefaultAccessTokenExpiration  = 15 * time.Minute
	DefaultRefreshTokenExpiration = 7 * 24 * time.Hour
)

var (
	ErrInvalidCredentials = errors.New("invalid username or password")
	ErrInvalidToken       = errors.New("invalid token")
	ErrTokenExpired       = errors.New("token has expired")
	ErrWeakPassword       = errors.New("admin password must have at least 8 characters")
	ErrWeakSecret         = fmt.Errorf("jwt secret must have at least %d bytes", MinSecretLength)
)

// AuthService authenticates back-office admins with signed, expiring tokens.
type AuthService interface {
	EnsureAdmin(ctx context.Context, username, password string) (admin *domain.Admin, created bool, err error)
	Login(ctx context.Context, username, password string) (accessToken, refreshToken string, admin *domain.Admin, err error)
	Logout(ctx context.Context, refreshToken string) error
	RefreshToken(ctx context.Context, refreshToken string) (newAccessToken string, err error)
	ValidateToken(tokenString string) (*Claims, error)
	GetAdminByID(ctx context.Context, adminID uuid.UUID) (*domain.Admin, error)
}

// Claims represents the JWT claims
type Claims struct {
	AdminID uuid.UUID `json:"admin_id"`
	Role    string    `json:"role"`
	jwt.RegisteredClaims
}

type TokenConfig struct {
	Secret        string
	AccessExpiry  time.Duration
	RefreshExpiry time.Duration
}

type authService struct {
	adminRepo   repository.AdminRepository
	sessionRepo repository.SessionRepository
	tokens      TokenConfig
	now         func() time.Time
}

func NewAuthService(
	adminRepo repository.AdminRepository,
	sessionRepo repository.SessionRepository,
	tokens TokenConfig,
) (AuthService, error) {
	if len(tokens.Secret) < MinSecretLength {
		return nil, ErrWeakSecret
	}
	if tokens.AccessExpiry <= 0 {
		tokens.AccessExpiry = DefaultAccessTokenExpiration
	}
	if tokens.RefreshExpiry <= 0 {
		tokens.RefreshExpiry = DefaultRefreshTokenExpiration
	}
	return &authService{
		adminRepo:   adminRepo,
		sessionRepo: sessionRepo,
		tokens:      tokens,
		now:         time.Now,
	}, nil
}

// EnsureAdmin creates the bootstrap account when no admin with username exists.
// An existing account is returned untouched, its password is not reset.
func (s *authService) EnsureAdmin(ctx context.Context, username, password string) (*domain.Admin, bool, error) {
	existing, err := s.adminRepo.FindByUsername(ctx, username)
	if err == nil {
		return existing, false, nil
	}
	if !errors.Is(err, repository.ErrAdminNotFound) {
		return nil, false, fmt.Errorf("failed to check existing admin: %w", err)
	}

	if len(password) < 8 {
		return nil, false, ErrWeakPassword
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(password), BcryptCost)
	if err != nil {
		return nil, false, fmt.Errorf("failed to hash password: %w", err)
	}

	now := s.now()
	admin := &domain.Admin{
		ID:           uuid.New(),
		Username:     username,
		PasswordHash: string(hashedPassword),
		Role:         domain.RoleAdmin,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := s.adminRepo.Create(ctx, admin); err != nil {
		return nil, false, fmt.Errorf("failed to create admin: %w", err)
	}

	return admin, true, nil
}

func (s *authService) Login(ctx context.Context, username, password string) (accessToken, refreshToken string, admin *domain.Admin, err error) {
	admin, err = s.adminRepo.FindByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, repository.ErrAdminNotFound) {
			return "", "", nil, ErrInvalidCredentials
		}
		return "", "", nil, fmt.Errorf("failed to find admin: %w", err)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(admin.PasswordHash), []byte(password)); err != nil {
		return "", "", nil, ErrInvalidCredentials
	}

	accessToken, err = s.generateAccessToken(admin)
	if err != nil {
		return "", "", nil, fmt.Errorf("failed to generate access token: %w", err)
	}

	refreshToken, err = s.generateRefreshToken(ctx, admin)
	if err != nil {
		return "", "", nil, fmt.Errorf("failed to generate refresh token: %w", err)
	}

	return accessToken, refreshToken, admin, nil
}

// Logout revokes the session. Unknown tokens count as already logged out.
func (s *authService) Logout(ctx context.Context, refreshToken string) error {
	if err := s.sessionRepo.Revoke(ctx, refreshToken); err != nil {
		if errors.Is(err, repository.ErrSessionNotFound) {
			return nil
		}
		return fmt.Errorf("failed to revoke session: %w", err)
	}
	return nil
}

func (s *authService) RefreshToken(ctx context.Context, refreshTokenString string) (string, error) {
	session, err := s.sessionRepo.FindByToken(ctx, refreshTokenString)
	if err != nil {
		if errors.Is(err, repository.ErrSessionNotFound) || errors.Is(err, repository.ErrSessionRevoked) {
			return "", ErrInvalidToken
		}
		return "", fmt.Errorf("failed to find session: %w", err)
	}

	if s.now().After(session.ExpiresAt) {
		return "", ErrTokenExpired
	}

	admin, err := s.adminRepo.FindByID(ctx, session.AdminID)
	if err != nil {
		if errors.Is(err, repository.ErrAdminNotFound) {
			return "", ErrInvalidToken
		}
		return "", fmt.Errorf("failed to find admin: %w", err)
	}

	newAccessToken, err := s.generateAccessToken(admin)
	if err != nil {
		return "", fmt.Errorf("failed to generate access token: %w", err)
	}

	return newAccessToken, nil
}

// ValidateToken checks the signature and expiry of an access token.
func (s *authService) ValidateToken(tokenString string) (*Claims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return []byte(s.tokens.Secret), nil
	}, jwt.WithTimeFunc(s.now))
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, ErrTokenExpired
		}
		return nil, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return nil, ErrInvalidToken
	}

	return claims, nil
}

func (s *authService) GetAdminByID(ctx context.Context, adminID uuid.UUID) (*domain.Admin, error) {
	admin, err := s.adminRepo.FindByID(ctx, adminID)
	if err != nil {
		return nil, fmt.Errorf("failed to get admin: %w", err)
	}
	return admin, nil
}

func (s *authService) generateAccessToken(admin *domain.Admin) (string, error) {
	now := s.now()
	claims := &Claims{
		AdminID: admin.ID,
		Role:    admin.Role,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   admin.Username,
			ExpiresAt: jwt.NewNumericDate(now.Add(s.tokens.AccessExpiry)),
			IssuedAt:  jwt.NewNumericDate(now),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(s.tokens.Secret))
}

// generateRefreshToken issues an opaque token backed by an admin_sessions row.
func (s *authService) generateRefreshToken(ctx context.Context, admin *domain.Admin) (string, error) {
	now := s.now()
	session := &domain.Session{
		ID:        uuid.New(),
		AdminID:   admin.ID,
		Token:     uuid.New().String(),
		ExpiresAt: now.Add(s.tokens.RefreshExpiry),
		CreatedAt: now,
	}

	if err := s.sessionRepo.Create(ctx, session); err != nil {
		return "", err
	}

	return session.Token, nil
}
