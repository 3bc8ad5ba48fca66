package auth

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	"github.com/yourusername/betting-tracker/internal/logger"
	"github.com/yourusername/betting-tracker/internal/metrics"
	"github.com/yourusername/betting-tracker/internal/models"
	"github.com/yourusername/betting-tracker/internal/repository"
)

// Credentials is the login and registration payload
type Credentials struct {
	Username string      `json:"username" validate:"required,min=3,max=30"`
	Password string      `json:"password" validate:"required,min=1,max=72"`
	Role     models.Role `json:"role" validate:"omitempty,oneof=user admin"`
}

// Session is an authenticated user with a freshly issued token
type Session struct {
	User  *models.User
	Token string
}

// Service implements registration, login and username changes
type Service struct {
	users             repository.UserRepository
	tokens            *TokenManager
	limiter           Limiter
	audit             *logger.AuditLogger
	validate          *validator.Validate
	allowRegistration bool
}

// NewService creates an auth service
func NewService(users repository.UserRepository, tokens *TokenManager, limiter Limiter, audit *logger.AuditLogger, allowRegistration bool) *Service {
	return &Service{
		users:             users,
		tokens:            tokens,
		limiter:           limiter,
		audit:             audit,
		validate:          validator.New(),
		allowRegistration: allowRegistration,
	}
}

// Tokens returns the token manager used for sessions
func (s *Service) Tokens() *TokenManager {
	return s.tokens
}

// ValidationError describes a rejected payload
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}

func (s *Service) validateCredentials(c *Credentials) error {
	c.Username = strings.TrimSpace(c.Username)
	err := s.validate.Struct(c)
	if err == nil {
		return nil
	}
	var fieldErrs validator.ValidationErrors
	if errors.As(err, &fieldErrs) && len(fieldErrs) > 0 && fieldErrs[0].Tag() != "required" {
		switch fieldErrs[0].Field() {
		case "Username":
			return &ValidationError{Message: "Username must be between 3 and 30 characters."}
		case "Password":
			return &ValidationError{Message: "Password must be at most 72 bytes."}
		case "Role":
			return &ValidationError{Message: "Role must be user or admin."}
		}
	}
	return &ValidationError{Message: "Username and password are required."}
}

// Register creates an account and signs the new user in
func (s *Service) Register(ctx context.Context, c Credentials) (*Session, error) {
	if !s.allowRegistration {
		return nil, ErrRegistrationClosed
	}
	if err := s.validateCredentials(&c); err != nil {
		return nil, err
	}
	role := c.Role
	if role == "" {
		role = models.RoleUser
	}

	hash, err := HashPassword(c.Password)
	if err != nil {
		return nil, err
	}
	user := &models.User{Username: c.Username, PasswordHash: hash, Role: role}
	if err := s.users.Create(ctx, user); err != nil {
		return nil, err
	}
	s.audit.LogRegistration(user.ID.String(), user.Username, string(user.Role))

	return s.session(user)
}

// Login verifies credentials. Attempts are throttled per client key.
func (s *Service) Login(ctx context.Context, c Credentials, clientKey string) (*Session, error) {
	c.Username = strings.TrimSpace(c.Username)
	if c.Username == "" || c.Password == "" {
		return nil, &ValidationError{Message: "Username and password are required."}
	}

	allowed, err := s.limiter.Allow(ctx, clientKey)
	if err != nil {
		return nil, err
	}
	if !allowed {
		metrics.RecordLoginAttempt(logger.LoginThrottled)
		s.audit.LogLogin(c.Username, logger.LoginThrottled, clientKey)
		return nil, ErrThrottled
	}

	user, err := s.users.GetByUsername(ctx, c.Username)
	if errors.Is(err, models.ErrNotFound) {
		return nil, s.failedLogin(c.Username, clientKey)
	}
	if err != nil {
		return nil, err
	}
	if err := CheckPassword(user.PasswordHash, c.Password); err != nil {
		if errors.Is(err, ErrInvalidCredentials) {
			return nil, s.failedLogin(c.Username, clientKey)
		}
		return nil, err
	}

	if err := s.limiter.Reset(ctx, clientKey); err != nil {
		return nil, err
	}
	metrics.RecordLoginAttempt(logger.LoginSucceeded)
	s.audit.LogLogin(user.Username, logger.LoginSucceeded, clientKey)
	return s.session(user)
}

func (s *Service) failedLogin(username, clientKey string) error {
	metrics.RecordLoginAttempt(logger.LoginFailed)
	s.audit.LogLogin(username, logger.LoginFailed, clientKey)
	return ErrInvalidCredentials
}

// ChangeUsername renames the user and issues a token carrying the new name.
// Renaming to the current name only re-issues the token.
func (s *Service) ChangeUsername(ctx context.Context, id uuid.UUID, username string) (*Session, error) {
	username = strings.TrimSpace(username)
	if len(username) < 3 || len(username) > 30 {
		return nil, &ValidationError{Message: "Username must be between 3 and 30 characters."}
	}

	user, err := s.users.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if user.Username != username {
		if err := s.users.UpdateUsername(ctx, id, username); err != nil {
			return nil, err
		}
		s.audit.LogUsernameChange(id.String(), user.Username, username)
		user.Username = username
	}
	return s.session(user)
}

// Authenticate verifies a session token
func (s *Service) Authenticate(token string) (*Claims, error) {
	return s.tokens.Parse(token)
}

func (s *Service) session(user *models.User) (*Session, error) {
	token, _, err := s.tokens.Issue(user)
	if err != nil {
		return nil, fmt.Errorf("failed to issue session: %w", err)
	}
	return &Session{User: user, Token: token}, nil
}
