package service

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/spec-kit/shop-service/internal/auth"
	"github.com/spec-kit/shop-service/internal/config"
	"github.com/spec-kit/shop-service/internal/domain"
	"github.com/spec-kit/shop-service/internal/events"
	"github.com/spec-kit/shop-service/internal/repository"
	apperrors "github.com/spec-kit/shop-service/pkg/util/errorutil"
)

const (
	msgInvalidCredentials = "invalid credentials"
	msgUserInactive       = "user inactive"
)

// AuthService coordinates registration and login flows.
type AuthService struct {
	users       repository.UserRepository
	attempts    repository.LoginAttemptStore
	dispatcher  events.Dispatcher
	logger      *zap.Logger
	tokenMgr    *auth.TokenManager
	bcryptCost  int
	maxAttempts int
	window      time.Duration

	dummyOnce sync.Once
	dummyHash string
}

// AuthDependencies encapsulates repo requirements for auth service.
type AuthDependencies struct {
	UserRepo      repository.UserRepository
	LoginAttempts repository.LoginAttemptStore
	Dispatcher    events.Dispatcher
	Logger        *zap.Logger
}

// NewAuthService builds the service. LoginAttempts may be nil, which
// disables throttling.
func NewAuthService(cfg config.Config, deps AuthDependencies) *AuthService {
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AuthService{
		users:       deps.UserRepo,
		attempts:    deps.LoginAttempts,
		dispatcher:  deps.Dispatcher,
		logger:      logger,
		tokenMgr:    auth.NewTokenManager(cfg.Auth.JWTSecret, cfg.Auth.AccessTokenTTLMinutes),
		bcryptCost:  cfg.Auth.BcryptCost,
		maxAttempts: cfg.Auth.LoginMaxAttempts,
		window:      cfg.Auth.LoginWindow(),
	}
}

// RegisterUser creates a new standard account and issues its first token.
func (s *AuthService) RegisterUser(ctx context.Context, name, email, password string) (*domain.User, string, time.Time, error) {
	email = normalizeEmail(email)

	hash, err := auth.HashPassword(password, s.bcryptCost)
	if err != nil {
		return nil, "", time.Time{}, apperrors.NewInternalError(err)
	}

	user := &domain.User{
		Name:         strings.TrimSpace(name),
		Email:        email,
		PasswordHash: hash,
		Role:         domain.RoleUser,
		Active:       true,
	}
	if err := s.users.Create(ctx, user); err != nil {
		if errors.Is(err, domain.ErrEmailTaken) {
			return nil, "", time.Time{}, apperrors.NewConflict("user already exists with this email", map[string]any{"email": email})
		}
		return nil, "", time.Time{}, apperrors.NewInternalError(err)
	}

	token, exp, err := s.tokenMgr.GenerateToken(user.ID)
	if err != nil {
		return nil, "", time.Time{}, apperrors.NewInternalError(err)
	}

	s.publishEvent(ctx, events.Event{
		Type:        events.EventUserRegistered,
		AggregateID: user.ID,
		UserID:      user.ID,
		Payload:     events.UserRegisteredPayload{Name: user.Name, Email: user.Email},
	})
	return user, token, exp, nil
}

// LoginUser authenticates a user. Unknown emails and wrong passwords are
// indistinguishable to the caller.
func (s *AuthService) LoginUser(ctx context.Context, email, password string) (*domain.User, string, time.Time, error) {
	email = normalizeEmail(email)

	if s.throttled(ctx, email) {
		return nil, "", time.Time{}, apperrors.NewTooManyRequests("too many failed login attempts, try again later")
	}

	user, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		if !errors.Is(err, domain.ErrNotFound) {
			return nil, "", time.Time{}, apperrors.NewInternalError(err)
		}
		_ = auth.ComparePassword(s.dummyPasswordHash(), password)
		s.recordFailure(ctx, email)
		return nil, "", time.Time{}, apperrors.NewBadRequest("INVALID_CREDENTIALS", msgInvalidCredentials)
	}
	if err := auth.ComparePassword(user.PasswordHash, password); err != nil {
		s.recordFailure(ctx, email)
		return nil, "", time.Time{}, apperrors.NewBadRequest("INVALID_CREDENTIALS", msgInvalidCredentials)
	}
	if !user.Active {
		return nil, "", time.Time{}, apperrors.NewBadRequest("USER_INACTIVE", msgUserInactive)
	}

	s.resetFailures(ctx, email)

	token, exp, err := s.tokenMgr.GenerateToken(user.ID)
	if err != nil {
		return nil, "", time.Time{}, apperrors.NewInternalError(err)
	}
	user.PasswordHash = ""
	return user, token, exp, nil
}

// TokenManager exposes the underlying token manager for middleware usage.
func (s *AuthService) TokenManager() *auth.TokenManager {
	return s.tokenMgr
}

// Redis trouble must never lock users out, so the helpers below log and
// carry on.

func (s *AuthService) throttled(ctx context.Context, email string) bool {
	if s.attempts == nil || s.maxAttempts <= 0 {
		return false
	}
	n, err := s.attempts.Failures(ctx, email)
	if err != nil {
		s.logger.Warn("login attempts lookup failed", zap.Error(err))
		return false
	}
	return n >= s.maxAttempts
}

func (s *AuthService) recordFailure(ctx context.Context, email string) {
	if s.attempts == nil || s.maxAttempts <= 0 {
		return
	}
	if _, err := s.attempts.RecordFailure(ctx, email, s.window); err != nil {
		s.logger.Warn("login attempts record failed", zap.Error(err))
	}
}

func (s *AuthService) resetFailures(ctx context.Context, email string) {
	if s.attempts == nil {
		return
	}
	if err := s.attempts.Reset(ctx, email); err != nil {
		s.logger.Warn("login attempts reset failed", zap.Error(err))
	}
}

func (s *AuthService) dummyPasswordHash() string {
	s.dummyOnce.Do(func() {
		hash, err := auth.HashPassword(uuid.NewString(), s.bcryptCost)
		if err != nil {
			s.logger.Error("dummy hash generation failed", zap.Error(err))
			return
		}
		s.dummyHash = hash
	})
	return s.dummyHash
}

func (s *AuthService) publishEvent(ctx context.Context, event events.Event) {
	publishEvent(ctx, s.dispatcher, event)
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
