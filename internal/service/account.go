package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"regexp"
	"strings"
	"time"

	"github.com/iliyamo/tour-reservation/internal/clock"
	"github.com/iliyamo/tour-reservation/internal/model"
	"github.com/iliyamo/tour-reservation/internal/utils"
)

// UserStore persists user accounts.
type UserStore interface {
	Create(ctx context.Context, username, passwordHash string) (model.User, error)
	GetByUsername(ctx context.Context, username string) (model.User, error)
	GetByID(ctx context.Context, id uint64) (model.User, error)
	UpdateProfile(ctx context.Context, id uint64, p model.ProfileUpdate) (model.User, error)
}

// WalletCreator opens the wallet every new user receives.
type WalletCreator interface {
	Create(ctx context.Context, userID uint64) (model.Wallet, error)
}

// TokenStore keeps hashed refresh tokens.
type TokenStore interface {
	StoreRefresh(ctx context.Context, userID uint64, tokenHash string, exp time.Time) error
	ValidateRefresh(ctx context.Context, tokenHash string) (uint64, error)
	RevokeByHash(ctx context.Context, tokenHash string) error
	RevokeAllForUser(ctx context.Context, userID uint64) error
}

// TokenSettings configures credential handling.
type TokenSettings struct {
	Secret     string
	AccessTTL  time.Duration
	RefreshTTL time.Duration
	BcryptCost int
}

// Session is what a successful register, login or refresh hands back.
type Session struct {
	User    model.User
	Access  utils.AccessToken
	Refresh utils.RefreshToken
}

var usernamePattern = regexp.MustCompile(`^[A-Za-z0-9_.]{3,32}$`)

// AccountService registers users and issues their tokens.
type AccountService struct {
	uow      UnitOfWork
	users    UserStore
	wallets  WalletCreator
	tokens   TokenStore
	clock    clock.Clock
	settings TokenSettings
	logger   *slog.Logger
}

func NewAccountService(uow UnitOfWork, users UserStore, wallets WalletCreator, tokens TokenStore, clk clock.Clock, settings TokenSettings, logger *slog.Logger) *AccountService {
	if logger == nil {
		logger = slog.Default()
	}
	return &AccountService{
		uow:      uow,
		users:    users,
		wallets:  wallets,
		tokens:   tokens,
		clock:    clk,
		settings: settings,
		logger:   logger,
	}
}

// Register creates the user and its empty wallet in one transaction and
// signs the user in.
func (s *AccountService) Register(ctx context.Context, username, password string) (Session, error) {
	username = strings.TrimSpace(username)
	if !usernamePattern.MatchString(username) {
		return Session{}, fmt.Errorf("%w: username must be 3-32 letters, digits, dots or underscores", model.ErrValidation)
	}
	if err := utils.CheckPassword(password); err != nil {
		return Session{}, fmt.Errorf("%w: %v", model.ErrValidation, err)
	}
	hash, err := utils.HashPassword(password, s.settings.BcryptCost)
	if err != nil {
		return Session{}, err
	}

	var user model.User
	err = s.uow.WithTx(ctx, func(ctx context.Context) error {
		u, err := s.users.Create(ctx, username, hash)
		if err != nil {
			return err
		}
		if _, err := s.wallets.Create(ctx, u.ID); err != nil {
			return err
		}
		user = u
		return nil
	})
	if err != nil {
		return Session{}, err
	}
	s.logger.Info("user registered", slog.Uint64("user_id", user.ID))
	return s.issue(ctx, user)
}

// Login checks the password and issues a new token pair.
func (s *AccountService) Login(ctx context.Context, username, password string) (Session, error) {
	u, err := s.users.GetByUsername(ctx, username)
	if errors.Is(err, model.ErrNotFound) {
		return Session{}, model.ErrInvalidCredentials
	}
	if err != nil {
		return Session{}, err
	}
	if !utils.VerifyPassword(u.PasswordHash, password) {
		return Session{}, model.ErrInvalidCredentials
	}
	return s.issue(ctx, u)
}

// Refresh rotates a refresh token: the presented one is revoked and a new
// pair is issued.
func (s *AccountService) Refresh(ctx context.Context, raw string) (Session, error) {
	hash := utils.HashRefreshRaw(strings.TrimSpace(raw))
	userID, err := s.tokens.ValidateRefresh(ctx, hash)
	if errors.Is(err, model.ErrNotFound) {
		return Session{}, model.ErrInvalidCredentials
	}
	if err != nil {
		return Session{}, err
	}
	// A concurrent refresh with the same token loses here.
	if err := s.tokens.RevokeByHash(ctx, hash); err != nil {
		if errors.Is(err, model.ErrNotFound) {
			return Session{}, model.ErrInvalidCredentials
		}
		return Session{}, err
	}
	u, err := s.users.GetByID(ctx, userID)
	if errors.Is(err, model.ErrNotFound) {
		return Session{}, model.ErrInvalidCredentials
	}
	if err != nil {
		return Session{}, err
	}
	return s.issue(ctx, u)
}

// Logout revokes one refresh token.
func (s *AccountService) Logout(ctx context.Context, raw string) error {
	err := s.tokens.RevokeByHash(ctx, utils.HashRefreshRaw(strings.TrimSpace(raw)))
	if errors.Is(err, model.ErrNotFound) {
		return model.ErrInvalidCredentials
	}
	return err
}

// LogoutAll revokes every refresh token of the user.
func (s *AccountService) LogoutAll(ctx context.Context, userID uint64) error {
	return s.tokens.RevokeAllForUser(ctx, userID)
}

func (s *AccountService) issue(ctx context.Context, u model.User) (Session, error) {
	now := s.clock.Now()
	access, err := utils.NewAccessToken(s.settings.Secret, u.ID, now, s.settings.AccessTTL)
	if err != nil {
		return Session{}, fmt.Errorf("issue access token: %w", err)
	}
	refresh, err := utils.NewRefreshToken(now, s.settings.RefreshTTL)
	if err != nil {
		return Session{}, fmt.Errorf("issue refresh token: %w", err)
	}
	if err := s.tokens.StoreRefresh(ctx, u.ID, utils.HashRefreshRaw(refresh.Raw), refresh.Exp); err != nil {
		return Session{}, err
	}
	return Session{User: u, Access: access, Refresh: refresh}, nil
}
