package service

import (
	"context"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"encoding/hex"
	"errors"
	"net/mail"
	"strings"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/smallbiznis/bizledger/internal/auth/domain"
	"github.com/smallbiznis/bizledger/internal/auth/password"
	"github.com/smallbiznis/bizledger/internal/cache"
	"github.com/smallbiznis/bizledger/internal/clock"
	"github.com/smallbiznis/bizledger/internal/config"
	"github.com/smallbiznis/bizledger/internal/observability/metrics"
	"github.com/smallbiznis/bizledger/internal/ratelimit"
	"github.com/smallbiznis/bizledger/pkg/db"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

const (
	sessionTokenBytes = 32
	defaultSessionTTL = 7 * 24 * time.Hour

	// principalCacheTTL bounds how long a revoked session can still authenticate on
	// another replica.
	principalCacheTTL = 30 * time.Second
)

type Params struct {
	fx.In

	DB      *gorm.DB
	Log     *zap.Logger
	GenID   *snowflake.Node
	Clock   clock.Clock
	Config  config.Config
	Repo    domain.Repository
	Limiter *ratelimit.LoginLimiter `optional:"true"`
	Metrics *metrics.Metrics        `optional:"true"`
}

type Service struct {
	db         *gorm.DB
	log        *zap.Logger
	genID      *snowflake.Node
	clock      clock.Clock
	repo       domain.Repository
	limiter    *ratelimit.LoginLimiter
	metrics    *metrics.Metrics
	sessionTTL time.Duration
	principals cache.Cache[string, cachedPrincipal]
}

type cachedPrincipal struct {
	principal domain.Principal
	expiresAt time.Time
}

func New(p Params) domain.Service {
	ttl := p.Config.SessionTTL
	if ttl <= 0 {
		ttl = defaultSessionTTL
	}
	return &Service{
		db:         p.DB,
		log:        p.Log.Named("auth.service"),
		genID:      p.GenID,
		clock:      p.Clock,
		repo:       p.Repo,
		limiter:    p.Limiter,
		metrics:    p.Metrics,
		sessionTTL: ttl,
		principals: cache.NewTTLCache[string, cachedPrincipal](),
	}
}

var passthrough = []error{
	domain.ErrInvalidCredentials,
	domain.ErrInvalidEmail,
	domain.ErrWeakPassword,
	domain.ErrInvalidRole,
	domain.ErrUserNotFound,
	domain.ErrUserExists,
	domain.ErrCannotDeleteSelf,
	domain.ErrSessionNotFound,
	domain.ErrSessionExpired,
	domain.ErrSessionRevoked,
	domain.ErrInvalidSession,
	domain.ErrRateLimited,
}

func (s *Service) CreateUser(ctx context.Context, req domain.CreateUserRequest) (*domain.User, error) {
	email, err := normalizeEmail(req.Email)
	if err != nil {
		return nil, domain.ErrInvalidEmail
	}
	if len(strings.TrimSpace(req.Password)) < password.MinLength {
		return nil, domain.ErrWeakPassword
	}
	role, err := domain.ParseRole(req.Role)
	if err != nil {
		return nil, err
	}

	if _, err := s.repo.FindUserByEmail(ctx, s.db, email); err == nil {
		return nil, domain.ErrUserExists
	} else if !errors.Is(err, domain.ErrUserNotFound) {
		return nil, db.Wrap("user.find", err)
	}

	hashed, err := password.Hash(req.Password)
	if err != nil {
		return nil, err
	}

	name := strings.TrimSpace(req.Name)
	if name == "" {
		name = defaultDisplayName(email)
	}
	now := s.clock.Now().UTC()
	user := &domain.User{
		ID:           s.genID.Generate().String(),
		Name:         name,
		Email:        email,
		PasswordHash: hashed,
		Role:         role,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := s.repo.CreateUser(ctx, s.db, user); err != nil {
		if db.IsDuplicateKeyErr(err) {
			return nil, domain.ErrUserExists
		}
		return nil, db.Wrap("user.create", err)
	}

	s.log.Info("user created", zap.String("user_id", user.ID), zap.String("role", string(user.Role)))
	return user, nil
}

// DeleteUser removes the account and revokes its sessions in one transaction.
func (s *Service) DeleteUser(ctx context.Context, actor domain.Principal, id string) error {
	id = strings.TrimSpace(id)
	if id == "" {
		return domain.ErrUserNotFound
	}
	if id == actor.UserID {
		return domain.ErrCannotDeleteSelf
	}

	var revoked []string
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		hashes, err := s.repo.RevokeUserSessions(ctx, tx, id, s.clock.Now().UTC())
		if err != nil {
			return db.Wrap("session.revoke_user", err)
		}
		affected, err := s.repo.DeleteUser(ctx, tx, id)
		if err != nil {
			return db.Wrap("user.delete", err)
		}
		if affected == 0 {
			return domain.ErrUserNotFound
		}
		revoked = hashes
		return nil
	})
	if err != nil {
		return db.Wrap("user.delete", err, passthrough...)
	}

	for _, hash := range revoked {
		s.principals.Delete(hash)
	}
	s.log.Info("user deleted", zap.String("user_id", id), zap.String("actor_id", actor.UserID))
	return nil
}

// Bootstrap creates the first account when the user table is empty.
func (s *Service) Bootstrap(ctx context.Context, req domain.CreateUserRequest) (bool, error) {
	count, err := s.repo.Count(ctx, s.db)
	if err != nil {
		return false, db.Wrap("user.count", err)
	}
	if count > 0 {
		return false, nil
	}
	if _, err := s.CreateUser(ctx, req); err != nil {
		return false, err
	}
	return true, nil
}

func (s *Service) Login(ctx context.Context, req domain.LoginRequest) (*domain.LoginResult, error) {
	res, err := s.limiter.Allow(ctx, req.IPAddress)
	if err != nil {
		return nil, err
	}
	if !res.Allowed {
		s.metrics.RecordLoginAttempt(ctx, "rate_limited")
		return nil, domain.ErrRateLimited
	}

	result, err := s.login(ctx, req)
	switch {
	case err == nil:
		s.metrics.RecordLoginAttempt(ctx, "success")
	case errors.Is(err, domain.ErrInvalidCredentials):
		s.metrics.RecordLoginAttempt(ctx, "failure")
	default:
		s.metrics.RecordLoginAttempt(ctx, "error")
	}
	return result, err
}

func (s *Service) login(ctx context.Context, req domain.LoginRequest) (*domain.LoginResult, error) {
	email, err := normalizeEmail(req.Email)
	if err != nil {
		return nil, domain.ErrInvalidCredentials
	}
	if strings.TrimSpace(req.Password) == "" {
		return nil, domain.ErrInvalidCredentials
	}

	user, err := s.repo.FindUserByEmail(ctx, s.db, email)
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			return nil, domain.ErrInvalidCredentials
		}
		return nil, db.Wrap("user.find", err)
	}
	if !password.Verify(req.Password, user.PasswordHash) {
		s.log.Debug("password mismatch", zap.String("user_id", user.ID))
		return nil, domain.ErrInvalidCredentials
	}

	rawToken, err := newSessionToken()
	if err != nil {
		return nil, err
	}

	now := s.clock.Now().UTC()
	session := &domain.Session{
		ID:               s.genID.Generate().String(),
		UserID:           user.ID,
		SessionTokenHash: hashToken(rawToken),
		UserAgent:        strings.TrimSpace(req.UserAgent),
		IPAddress:        strings.TrimSpace(req.IPAddress),
		ExpiresAt:        now.Add(s.sessionTTL),
		CreatedAt:        now,
		LastSeenAt:       now,
	}
	if err := s.repo.CreateSession(ctx, s.db, session); err != nil {
		return nil, db.Wrap("session.create", err)
	}

	return &domain.LoginResult{
		User:      user,
		RawToken:  rawToken,
		ExpiresAt: session.ExpiresAt,
		SessionID: session.ID,
	}, nil
}

func (s *Service) Logout(ctx context.Context, rawToken string) error {
	token := strings.TrimSpace(rawToken)
	if token == "" {
		return domain.ErrInvalidSession
	}

	hash := hashToken(token)
	s.principals.Delete(hash)

	session, err := s.repo.GetSessionByTokenHash(ctx, s.db, hash)
	if err != nil {
		if errors.Is(err, domain.ErrSessionNotFound) {
			return domain.ErrInvalidSession
		}
		return db.Wrap("session.find", err)
	}
	if session.RevokedAt != nil {
		return nil
	}
	return db.Wrap("session.revoke", s.repo.RevokeSession(ctx, s.db, session.ID, s.clock.Now().UTC()), passthrough...)
}

func (s *Service) Authenticate(ctx context.Context, rawToken string) (*domain.Principal, error) {
	token := strings.TrimSpace(rawToken)
	if token == "" {
		return nil, domain.ErrInvalidSession
	}

	hash := hashToken(token)
	now := s.clock.Now().UTC()
	if cached, ok := s.principals.Get(hash); ok {
		if now.Before(cached.expiresAt) {
			principal := cached.principal
			return &principal, nil
		}
		s.principals.Delete(hash)
	}

	session, err := s.repo.GetSessionByTokenHash(ctx, s.db, hash)
	if err != nil {
		if errors.Is(err, domain.ErrSessionNotFound) {
			return nil, domain.ErrInvalidSession
		}
		return nil, db.Wrap("session.find", err)
	}
	if session.RevokedAt != nil {
		return nil, domain.ErrSessionRevoked
	}
	if !now.Before(session.ExpiresAt) {
		return nil, domain.ErrSessionExpired
	}

	user, err := s.repo.FindUserByID(ctx, s.db, session.UserID)
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			return nil, domain.ErrInvalidSession
		}
		return nil, db.Wrap("user.find", err)
	}
	if err := s.repo.UpdateLastSeen(ctx, s.db, session.ID, now); err != nil {
		return nil, db.Wrap("session.touch", err, passthrough...)
	}

	principal := domain.Principal{
		SessionID: session.ID,
		UserID:    user.ID,
		Name:      user.Name,
		Email:     user.Email,
		Role:      user.Role,
	}
	s.principals.Set(hash, cachedPrincipal{principal: principal, expiresAt: session.ExpiresAt}, principalCacheTTL)
	return &principal, nil
}

func normalizeEmail(raw string) (string, error) {
	addr, err := mail.ParseAddress(strings.TrimSpace(raw))
	if err != nil {
		return "", err
	}
	return strings.ToLower(strings.TrimSpace(addr.Address)), nil
}

func defaultDisplayName(email string) string {
	local, _, _ := strings.Cut(email, "@")
	if strings.TrimSpace(local) != "" {
		return strings.TrimSpace(local)
	}
	return email
}

func newSessionToken() (string, error) {
	buf := make([]byte, sessionTokenBytes)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return base64.RawURLEncoding.EncodeToString(buf), nil
}

func hashToken(raw string) string {
	sum := sha256.Sum256([]byte(raw))
	return hex.EncodeToString(sum[:])
}
