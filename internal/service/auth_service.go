package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"task-manager/internal/domain"
	"task-manager/internal/repository"
)

// AuthService coordina registro y login de usuarios.
type AuthService struct {
	logger *zap.Logger
	users  repository.UserRepository
	hasher PasswordHasher
	tokens *JWTService
}

func NewAuthService(logger *zap.Logger, users repository.UserRepository, hasher PasswordHasher, tokens *JWTService) *AuthService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AuthService{
		logger: logger,
		users:  users,
		hasher: hasher,
		tokens: tokens,
	}
}

type RegisterInput struct {
	Name     string
	Email    string
	Password string
}

// LoginResult es el bearer token emitido en un login exitoso.
type LoginResult struct {
	Token     string    `json:"token"`
	ExpiresIn int64     `json:"expires_in"`
	ExpiresAt time.Time `json:"-"`
}

// Register crea un usuario. Solo exige presencia de los campos; el formato
// del email y la fuerza de la contraseña no se validan en esta capa.
func (s *AuthService) Register(ctx context.Context, input RegisterInput) (domain.User, error) {
	if s.users == nil || s.hasher == nil {
		return domain.User{}, domain.NewInternalError(errors.New("auth service not configured"))
	}

	name := strings.TrimSpace(input.Name)
	email := normalizeEmail(input.Email)
	switch {
	case name == "":
		return domain.User{}, domain.NewValidationError("name", "Name is required")
	case email == "":
		return domain.User{}, domain.NewValidationError("email", "Email is required")
	case input.Password == "":
		return domain.User{}, domain.NewValidationError("password", "Password is required")
	}

	hash, err := s.hasher.Hash(input.Password)
	if err != nil {
		if errors.Is(err, bcrypt.ErrPasswordTooLong) {
			return domain.User{}, domain.NewValidationError("password", "Password should be at most 72 bytes long")
		}
		return domain.User{}, domain.NewInternalError(err)
	}

	user, err := s.users.Create(ctx, domain.User{
		Name:         name,
		Email:        email,
		PasswordHash: hash,
	})
	if err != nil {
		if errors.Is(err, repository.ErrDuplicateEmail) {
			return domain.User{}, domain.ErrDuplicateEmail
		}
		s.logger.Error("create user failed", zap.Error(err))
		return domain.User{}, domain.NewInternalError(err)
	}

	return user, nil
}

// Login devuelve el mismo error para email desconocido y contraseña incorrecta.
func (s *AuthService) Login(ctx context.Context, emailAddr, password string) (LoginResult, error) {
	if s.users == nil || s.hasher == nil || s.tokens == nil {
		return LoginResult{}, domain.NewInternalError(errors.New("auth service not configured"))
	}

	emailAddr = normalizeEmail(emailAddr)
	if emailAddr == "" || password == "" {
		return LoginResult{}, domain.ErrInvalidCredentials
	}

	user, err := s.users.GetByEmail(ctx, emailAddr)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return LoginResult{}, domain.ErrInvalidCredentials
		}
		s.logger.Error("lookup user failed", zap.Error(err))
		return LoginResult{}, domain.NewInternalError(err)
	}
	if user.PasswordHash == "" {
		return LoginResult{}, domain.ErrInvalidCredentials
	}
	if err := s.hasher.Compare(user.PasswordHash, password); err != nil {
		return LoginResult{}, domain.ErrInvalidCredentials
	}

	token, expiresAt, err := s.tokens.Issue(user.ID)
	if err != nil {
		s.logger.Error("jwt issue failed", zap.Error(err))
		return LoginResult{}, domain.NewInternalError(err)
	}
	return LoginResult{
		Token:     token,
		ExpiresIn: int64(s.tokens.TTL().Seconds()),
		ExpiresAt: expiresAt,
	}, nil
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
