package auth

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/mail"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/redis/go-redis/v9"
	"github.com/suPer8Hu/wyr-platform/internal/common"
	"github.com/suPer8Hu/wyr-platform/internal/models"
	"gorm.io/gorm"
)

var (
	ErrValidation         = errors.New("validation failed")
	ErrConflict           = errors.New("username or email already exists")
	ErrInvalidCredentials = errors.New("invalid username or password")
	ErrUnauthenticated    = errors.New("unauthenticated")
)

// SessionCache is an optional fast path in front of the user_sessions table.
type SessionCache interface {
	CacheSession(ctx context.Context, tokenID string, userID uint64, ttl time.Duration) error
	GetSession(ctx context.Context, tokenID string) (uint64, error)
	DeleteSession(ctx context.Context, tokenID string) error
}

// Identity is an authenticated caller.
type Identity struct {
	UserID  uint64
	TokenID string
}

type Service struct {
	db     *gorm.DB
	cache  SessionCache
	secret string
	ttl    time.Duration
	now    func() time.Time
}

// NewService builds the account service. cache may be nil.
func NewService(db *gorm.DB, secret string, ttl time.Duration, cache SessionCache) *Service {
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	return &Service{db: db, cache: cache, secret: secret, ttl: ttl, now: func() time.Time { return time.Now().UTC() }}
}

func validateRegistration(username, email, password string) error {
	if n := utf8.RuneCountInString(username); n < 3 || n > 50 {
		return fmt.Errorf("%w: username must be 3-50 characters", ErrValidation)
	}
	if len(email) > 255 {
		return fmt.Errorf("%w: email too long", ErrValidation)
	}
	if _, err := mail.ParseAddress(email); err != nil || !strings.Contains(email, "@") {
		return fmt.Errorf("%w: invalid email", ErrValidation)
	}
	if len(password) < 6 || len(password) > 72 {
		return fmt.Errorf("%w: password must be 6-72 characters", ErrValidation)
	}
	return nil
}

// Register creates an account and logs it in.
func (s *Service) Register(ctx context.Context, username, email, password string) (*models.User, string, error) {
	username = strings.TrimSpace(username)
	email = strings.TrimSpace(email)
	if err := validateRegistration(username, email, password); err != nil {
		return nil, "", err
	}

	var cnt int64
	if err := s.db.WithContext(ctx).Model(&models.User{}).
		Where("username = ? OR email = ?", username, email).
		Count(&cnt).Error; err != nil {
		return nil, "", err
	}
	if cnt > 0 {
		return nil, "", ErrConflict
	}

	hash, err := HashPassword(password)
	if err != nil {
		return nil, "", err
	}

	user := &models.User{Username: username, Email: email, PasswordHash: hash}
	if err := s.db.WithContext(ctx).Create(user).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, "", ErrConflict
		}
		return nil, "", err
	}

	token, err := s.openSession(ctx, user.ID)
	if err != nil {
		return nil, "", err
	}
	return user, token, nil
}

func (s *Service) Login(ctx context.Context, username, password string) (*models.User, string, error) {
	username = strings.TrimSpace(username)
	if username == "" || password == "" {
		return nil, "", fmt.Errorf("%w: username and password required", ErrValidation)
	}

	var user models.User
	if err := s.db.WithContext(ctx).Where("username = ?", username).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, "", ErrInvalidCredentials
		}
		return nil, "", err
	}
	if !CheckPassword(user.PasswordHash, password) {
		return nil, "", ErrInvalidCredentials
	}

	token, err := s.openSession(ctx, user.ID)
	if err != nil {
		return nil, "", err
	}
	return &user, token, nil
}

func (s *Service) openSession(ctx context.Context, userID uint64) (string, error) {
	tokenID, err := common.NewULID()
	if err != nil {
		return "", err
	}
	sess := &models.UserSession{
		UserID:    userID,
		TokenID:   tokenID,
		ExpiresAt: s.now().Add(s.ttl),
	}
	if err := s.db.WithContext(ctx).Create(sess).Error; err != nil {
		return "", err
	}
	token, err := SignJWT(userID, tokenID, s.secret, s.ttl)
	if err != nil {
		return "", err
	}
	if s.cache != nil {
		if err := s.cache.CacheSession(ctx, tokenID, userID, s.ttl); err != nil {
			log.Printf("[auth] cache session failed uid=%d err=%v", userID, err)
		}
	}
	return token, nil
}

// Resolve maps a bearer token to its caller. Any token that is malformed,
// expired or logged out yields ErrUnauthenticated.
func (s *Service) Resolve(ctx context.Context, token string) (*Identity, error) {
	token = strings.TrimSpace(token)
	if token == "" {
		return nil, ErrUnauthenticated
	}
	claims, err := ParseJWT(token, s.secret)
	if err != nil {
		return nil, ErrUnauthenticated
	}

	if s.cache != nil {
		uid, err := s.cache.GetSession(ctx, claims.ID)
		switch {
		case err == nil && uid == claims.UserID:
			return &Identity{UserID: uid, TokenID: claims.ID}, nil
		case err != nil && !errors.Is(err, redis.Nil):
			log.Printf("[auth] cache lookup failed jti=%s err=%v", claims.ID, err)
		}
	}

	var sess models.UserSession
	err = s.db.WithContext(ctx).
		Where("token_id = ? AND user_id = ? AND expires_at > ?", claims.ID, claims.UserID, s.now()).
		First(&sess).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUnauthenticated
		}
		return nil, err
	}

	if s.cache != nil {
		if err := s.cache.CacheSession(ctx, sess.TokenID, sess.UserID, sess.ExpiresAt.Sub(s.now())); err != nil {
			log.Printf("[auth] cache session failed uid=%d err=%v", sess.UserID, err)
		}
	}
	return &Identity{UserID: sess.UserID, TokenID: sess.TokenID}, nil
}

// Logout revokes the session behind token.
func (s *Service) Logout(ctx context.Context, token string) error {
	id, err := s.Resolve(ctx, token)
	if err != nil {
		return err
	}
	if err := s.db.WithContext(ctx).
		Where("token_id = ?", id.TokenID).
		Delete(&models.UserSession{}).Error; err != nil {
		return err
	}
	if s.cache != nil {
		if err := s.cache.DeleteSession(ctx, id.TokenID); err != nil {
			log.Printf("[auth] cache delete failed jti=%s err=%v", id.TokenID, err)
		}
	}
	return nil
}

func (s *Service) GetUser(ctx context.Context, userID uint64) (*models.User, error) {
	var user models.User
	if err := s.db.WithContext(ctx).First(&user, userID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUnauthenticated
		}
		return nil, err
	}
	return &user, nil
}
