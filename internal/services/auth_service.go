package services

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"recruithub/config"
	"recruithub/internal/domain"
	"recruithub/internal/repository"
	hub_errors "recruithub/pkg/errors"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

type AuthService struct {
	userRepo  repository.UserRepository
	jwtSecret []byte
	accessTTL time.Duration
}

func NewAuthService(userRepo repository.UserRepository, cfg *config.Config) *AuthService {
	return &AuthService{
		userRepo:  userRepo,
		jwtSecret: []byte(cfg.JWTSecret),
		accessTTL: time.Duration(cfg.JWTExpiryMin) * time.Minute,
	}
}

type RegisterInput struct {
	Name     string
	Email    string
	Password string
}

type LoginInput struct {
	Email    string
	Password string
}

type AuthResult struct {
	User        domain.PublicUser
	AccessToken string
	ExpiresAt   time.Time
}

type AccessClaims struct {
	UserID string `json:"sub"`
	jwt.RegisteredClaims
}

func (s *AuthService) Register(ctx context.Context, in RegisterInput) (AuthResult, error) {
	if err := validateRegister(in); err != nil {
		return AuthResult{}, err
	}

	hash, err := hashPassword(in.Password)
	if err != nil {
		return AuthResult{}, err
	}

	newUser := &domain.User{
		ID:           uuid.New(),
		Name:         strings.TrimSpace(in.Name),
		Email:        strings.ToLower(strings.TrimSpace(in.Email)),
		PasswordHash: hash,
		CreatedAt:    time.Now(),
		UpdatedAt:    time.Now(),
	}

	if err := s.userRepo.Create(ctx, newUser); err != nil {
		return AuthResult{}, err
	}

	token, expiresAt, err := s.newAccessToken(newUser.ID)
	if err != nil {
		return AuthResult{}, err
	}

	return AuthResult{User: newUser.Public(), AccessToken: token, ExpiresAt: expiresAt}, nil
}

func (s *AuthService) Login(ctx context.Context, in LoginInput) (AuthResult, error) {
	if in.Email == "" || in.Password == "" {
		return AuthResult{}, hub_errors.ErrInvalidInput
	}

	u, err := s.userRepo.GetByEmail(ctx, strings.ToLower(strings.TrimSpace(in.Email)))
	if err != nil {
		if errors.Is(err, hub_errors.ErrNotFound) {
			return AuthResult{}, hub_errors.ErrUnauthorized
		}
		return AuthResult{}, err
	}

	if err := comparePassword(u.PasswordHash, in.Password); err != nil {
		return AuthResult{}, hub_errors.ErrUnauthorized
	}

	token, expiresAt, err := s.newAccessToken(u.ID)
	if err != nil {
		return AuthResult{}, err
	}

	return AuthResult{User: u.Public(), AccessToken: token, ExpiresAt: expiresAt}, nil
}

func (s *AuthService) ParseAccessToken(tokenString string) (uuid.UUID, error) {
	if tokenString == "" {
		return uuid.Nil, hub_errors.ErrUnauthorized
	}

	parsed, err := jwt.ParseWithClaims(tokenString, &AccessClaims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, hub_errors.ErrUnauthorized
		}
		return s.jwtSecret, nil
	})
	if err != nil {
		return uuid.Nil, hub_errors.ErrUnauthorized
	}

	claims, ok := parsed.Claims.(*AccessClaims)
	if !ok || !parsed.Valid {
		return uuid.Nil, hub_errors.ErrUnauthorized
	}

	userID, err := uuid.Parse(claims.UserID)
	if err != nil {
		return uuid.Nil, hub_errors.ErrUnauthorized
	}
	return userID, nil
}

// AuthenticateToken resolves a token to its live user record. Used by the
// WebSocket handshake, where a stale token for a deleted account must fail.
func (s *AuthService) AuthenticateToken(ctx context.Context, tokenString string) (domain.User, error) {
	userID, err := s.ParseAccessToken(tokenString)
	if err != nil {
		return domain.User{}, err
	}
	u, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, hub_errors.ErrNotFound) {
			return domain.User{}, hub_errors.ErrUnauthorized
		}
		return domain.User{}, err
	}
	return u, nil
}

func (s *AuthService) newAccessToken(userID uuid.UUID) (string, time.Time, error) {
	now := time.Now()
	expiresAt := now.Add(s.accessTTL)

	claims := AccessClaims{
		UserID: userID.String(),
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   userID.String(),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
			IssuedAt:  jwt.NewNumericDate(now),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(s.jwtSecret)
	if err != nil {
		return "", time.Time{}, err
	}
	return signed, expiresAt, nil
}

func validateRegister(in RegisterInput) error {
	if strings.TrimSpace(in.Name) == "" || strings.TrimSpace(in.Email) == "" {
		return hub_errors.ErrInvalidInput
	}
	if len(in.Password) < 8 {
		return hub_errors.ErrInvalidInput
	}
	return nil
}

func hashPassword(password string) (string, error) {
	bytes, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(bytes), nil
}

func comparePassword(hash, password string) error {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password))
}

// HTTPStatus maps a service error onto the response status the REST layer
// reports.
func HTTPStatus(err error) int {
	switch {
	case errors.Is(err, hub_errors.ErrInvalidInput), errors.Is(err, hub_errors.ErrTooLarge):
		return http.StatusBadRequest
	case errors.Is(err, hub_errors.ErrUnauthorized):
		return http.StatusUnauthorized
	case errors.Is(err, hub_errors.ErrForbidden):
		return http.StatusForbidden
	case errors.Is(err, hub_errors.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, hub_errors.ErrAlreadyExists), errors.Is(err, hub_errors.ErrConflict):
		return http.StatusConflict
	case errors.Is(err, hub_errors.ErrUnavailable):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}
