package domain

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"github.com/qs-lzh/film-catalog/internal/cache"
	"github.com/qs-lzh/film-catalog/internal/model"
	"github.com/qs-lzh/film-catalog/internal/repository"
	"github.com/qs-lzh/film-catalog/internal/service"
	"github.com/qs-lzh/film-catalog/internal/util"
	"github.com/qs-lzh/film-catalog/internal/validation"
)

type Credentials struct {
	Email    string `json:"email" validate:"required,email" msg:"Please enter a valid email."`
	Password string `json:"password" validate:"min=6,nospace,hasletter,hasdigit" msg_min:"Password must be at least 6 characters." msg_nospace:"Password must not contain spaces." msg_hasletter:"Password must contain at least one letter." msg_hasdigit:"Password must contain at least one number."`
}

type Session struct {
	Token string            `json:"token"`
	User  model.SessionUser `json:"user"`
}

type AuthService interface {
	Register(ctx context.Context, email, password string) (*Session, error)
	Login(ctx context.Context, email, password string) (*Session, error)
	Logout(ctx context.Context, token string) error
	CurrentUser(ctx context.Context, token string) (*model.SessionUser, error)
}

type authService struct {
	repo  repository.UserRepo
	cache *cache.RedisCache
	ttl   time.Duration
	cost  int
	log   *zap.Logger
}

var _ AuthService = (*authService)(nil)

func NewAuthService(userRepo repository.UserRepo, cache *cache.RedisCache, sessionTTL time.Duration, log *zap.Logger) *authService {
	return &authService{
		repo:  userRepo,
		cache: cache,
		ttl:   sessionTTL,
		cost:  bcrypt.DefaultCost,
		log:   log,
	}
}

func (s *authService) Register(ctx context.Context, email, password string) (*Session, error) {
	creds := Credentials{Email: util.Normalize(email), Password: password}
	if err := validation.Struct(&creds); err != nil {
		return nil, err
	}

	if _, err := s.repo.GetByEmail(ctx, creds.Email); err == nil {
		return nil, service.ErrDuplicateEmail
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(creds.Password), s.cost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	user := &model.User{
		ID:           uuid.NewString(),
		Email:        creds.Email,
		PasswordHash: string(hash),
	}
	if err := s.repo.Create(ctx, user); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, service.ErrDuplicateEmail
		}
		return nil, err
	}

	s.log.Info("user registered", zap.String("user_id", user.ID))
	return s.startSession(ctx, user)
}

func (s *authService) Login(ctx context.Context, email, password string) (*Session, error) {
	user, err := s.repo.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			s.log.Info("login failed: unknown email")
			return nil, service.ErrInvalidCredentials
		}
		return nil, err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		s.log.Info("login failed: password mismatch", zap.String("user_id", user.ID))
		return nil, service.ErrInvalidCredentials
	}

	return s.startSession(ctx, user)
}

func (s *authService) Logout(ctx context.Context, token string) error {
	if token == "" {
		return nil
	}
	return s.cache.Delete(ctx, cache.MakeSessionKey(token), cache.MakeSessionUserKey(token))
}

// CurrentUser returns nil for anonymous requests. The cached identity is
// trusted only when it belongs to the session's user; otherwise it is rebuilt
// from the users table, and a session whose user is gone is torn down.
func (s *authService) CurrentUser(ctx context.Context, token string) (*model.SessionUser, error) {
	if token == "" {
		return nil, nil
	}

	var sess cache.SessionValue
	if !s.cache.Read(ctx, cache.MakeSessionKey(token), &sess) || sess.UserID == "" {
		return nil, nil
	}

	var cached model.SessionUser
	if s.cache.Read(ctx, cache.MakeSessionUserKey(token), &cached) && cached.ID == sess.UserID {
		return &cached, nil
	}

	user, err := s.repo.GetByID(ctx, sess.UserID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			s.log.Warn("session references missing user", zap.String("user_id", sess.UserID))
			if err := s.Logout(ctx, token); err != nil {
				s.log.Warn("session teardown failed", zap.Error(err))
			}
			return nil, nil
		}
		return nil, err
	}

	fresh := model.SessionUser{ID: user.ID, Email: user.Email}
	s.cache.Write(ctx, cache.MakeSessionUserKey(token), fresh, s.ttl)
	return &fresh, nil
}

func (s *authService) startSession(ctx context.Context, user *model.User) (*Session, error) {
	token := uuid.NewString()
	identity := model.SessionUser{ID: user.ID, Email: user.Email}

	if err := s.cache.Set(ctx, cache.MakeSessionKey(token), cache.SessionValue{UserID: user.ID}, s.ttl); err != nil {
		return nil, fmt.Errorf("store session: %w", err)
	}
	s.cache.Write(ctx, cache.MakeSessionUserKey(token), identity, s.ttl)

	return &Session{Token: token, User: identity}, nil
}
