// Package auth handles registration, login and bearer-token sessions.
package auth

import (
	"context"
	"errors"
	"fmt"
	"net/mail"
	"strings"
	"time"

	apperrors "github.com/gmsas95/nutritrack/internal/errors"
	"github.com/gmsas95/nutritrack/internal/result"
	"github.com/gmsas95/nutritrack/internal/security"
	"github.com/gmsas95/nutritrack/internal/store"
	"github.com/gmsas95/nutritrack/internal/usecase"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

// Claims are carried by every access token. The session ID lets logout
// revoke a token before it expires.
type Claims struct {
	SessionID string `json:"sid"`
	jwt.RegisteredClaims
}

// Session is what a successful register or login hands back.
type Session struct {
	Token     string      `json:"token"`
	ExpiresAt time.Time   `json:"expires_at"`
	User      *store.User `json:"user"`
}

type Config struct {
	Secret          string
	TTL             time.Duration
	BcryptCost      int
	MinPasswordSize int
}

type Service struct {
	users    usecase.UserRepository
	sessions usecase.SessionStore
	cfg      Config
	now      func() time.Time
	logger   *zap.Logger
}

func NewService(cfg Config, users usecase.UserRepository, sessions usecase.SessionStore, logger *zap.Logger) *Service {
	if cfg.TTL <= 0 {
		cfg.TTL = 7 * 24 * time.Hour
	}
	if cfg.BcryptCost == 0 {
		cfg.BcryptCost = bcrypt.DefaultCost
	}
	if cfg.MinPasswordSize <= 0 {
		cfg.MinPasswordSize = 8
	}
	return &Service{
		users:    users,
		sessions: sessions,
		cfg:      cfg,
		now:      time.Now,
		logger:   logger,
	}
}

// Register creates an account and opens a session for it.
func (s *Service) Register(ctx context.Context, email, password, displayName string) result.Result[*Session] {
	addr, err := mail.ParseAddress(strings.TrimSpace(email))
	if err != nil {
		return result.Fail[*Session](apperrors.New(apperrors.ErrBadRequest.Code, "invalid email address", err))
	}
	if len(password) < s.cfg.MinPasswordSize {
		return result.Fail[*Session](apperrors.New(apperrors.ErrBadRequest.Code,
			fmt.Sprintf("password must be at least %d characters", s.cfg.MinPasswordSize)))
	}
	if err := security.ValidateName("display_name", displayName); err != nil {
		return result.Fail[*Session](err)
	}

	hash, err := HashPassword(password, s.cfg.BcryptCost)
	if err != nil {
		return result.Fail[*Session](apperrors.Wrap(err, apperrors.ErrInternal.Code, "failed to hash password"))
	}

	user := &store.User{
		Email:        addr.Address,
		PasswordHash: hash,
		DisplayName:  strings.TrimSpace(displayName),
	}
	if err := s.users.CreateUser(ctx, user); err != nil {
		return result.Fail[*Session](err)
	}

	s.logger.Info("User registered", zap.String("user_id", user.ID))
	return s.open(user)
}

// Login checks credentials. Unknown email and wrong password fail the same
// way.
func (s *Service) Login(ctx context.Context, email, password string) result.Result[*Session] {
	user, err := s.users.GetUserByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, apperrors.ErrUserNotFound) {
			return result.Fail[*Session](apperrors.ErrInvalidCredentials)
		}
		return result.Fail[*Session](err)
	}
	if !CheckPassword(user.PasswordHash, password) {
		return result.Fail[*Session](apperrors.ErrInvalidCredentials)
	}
	return s.open(user)
}

// Logout revokes the session behind token.
func (s *Service) Logout(token string) result.Result[struct{}] {
	claims, err := s.parse(token)
	if err != nil {
		return result.Fail[struct{}](err)
	}
	if err := s.sessions.DeleteSession(claims.SessionID); err != nil {
		return result.Fail[struct{}](apperrors.Wrap(err, apperrors.ErrInternal.Code, "failed to revoke session"))
	}
	return result.Ok(struct{}{})
}

// Authenticate returns the user ID behind a valid, unrevoked token.
func (s *Service) Authenticate(token string) (string, error) {
	claims, err := s.parse(token)
	if err != nil {
		return "", err
	}
	userID, err := s.sessions.GetSession(claims.SessionID)
	if err != nil {
		return "", err
	}
	if userID != claims.Subject {
		return "", apperrors.ErrUnauthorized
	}
	return userID, nil
}

func (s *Service) open(user *store.User) result.Result[*Session] {
	now := s.now()
	sessionID := uuid.NewString()
	expires := now.Add(s.cfg.TTL)

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{
		SessionID: sessionID,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   user.ID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(expires),
		},
	})
	signed, err := token.SignedString([]byte(s.cfg.Secret))
	if err != nil {
		return result.Fail[*Session](apperrors.Wrap(err, apperrors.ErrInternal.Code, "failed to generate token"))
	}

	if err := s.sessions.SaveSession(sessionID, user.ID, s.cfg.TTL); err != nil {
		return result.Fail[*Session](apperrors.Wrap(err, apperrors.ErrInternal.Code, "failed to store session"))
	}
	return result.Ok(&Session{Token: signed, ExpiresAt: expires, User: user})
}

func (s *Service) parse(tokenString string) (*Claims, error) {
	tokenString = strings.TrimSpace(strings.TrimPrefix(tokenString, "Bearer "))
	if tokenString == "" {
		return nil, apperrors.New(apperrors.ErrUnauthorized.Code, "missing token")
	}

	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
		}
		return []byte(s.cfg.Secret), nil
	}, jwt.WithTimeFunc(s.now))
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, apperrors.WrapAs(apperrors.ErrSessionExpired, err)
		}
		return nil, apperrors.New(apperrors.ErrUnauthorized.Code, "invalid token", err)
	}
	if !token.Valid || claims.SessionID == "" || claims.Subject == "" {
		return nil, apperrors.New(apperrors.ErrUnauthorized.Code, "invalid token")
	}
	return claims, nil
}

func HashPassword(password string, cost int) (string, error) {
	b, err := bcrypt.GenerateFromPassword([]byte(password), cost)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

func CheckPassword(hash, password string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) == nil
}
