package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/todovault/todovault/internal/api/domain"
	"github.com/todovault/todovault/internal/api/store"
	"github.com/todovault/todovault/pkg/cryptox"
	"github.com/todovault/todovault/pkg/idx"
	"github.com/todovault/todovault/pkg/jwtx"
)

// UserService implements registration, login and the refresh-token flow.
// Every path that authenticates a user ends with a token pair being issued
// and the refresh half persisted, which rotates out whatever token the user
// held before.
type UserService struct {
	store  store.Store
	tokens *TokenService
}

func NewUserService(s store.Store, tokens *TokenService) *UserService {
	return &UserService{store: s, tokens: tokens}
}

// Register creates a new account and signs the user in immediately.
func (s *UserService) Register(ctx context.Context, email, password, name string) (domain.User, domain.TokenPair, error) {
	if email == "" || password == "" {
		return domain.User{}, domain.TokenPair{}, ErrWrongCredentials
	}

	if _, err := s.store.Users().GetUserByEmail(ctx, email); err == nil {
		return domain.User{}, domain.TokenPair{}, ErrEmailTaken
	} else if !errors.Is(err, store.ErrNotFound) {
		return domain.User{}, domain.TokenPair{}, fmt.Errorf("lookup user: %w", err)
	}

	hash, err := cryptox.HashPassword(password)
	if err != nil {
		return domain.User{}, domain.TokenPair{}, fmt.Errorf("hash password: %w", err)
	}

	user := domain.User{
		ID:           idx.New().String(),
		Email:        email,
		Name:         name,
		PasswordHash: hash,
	}

	pair, err := s.tokens.IssuePair(user)
	if err != nil {
		return domain.User{}, domain.TokenPair{}, fmt.Errorf("issue tokens: %w", err)
	}

	err = s.store.WithTx(ctx, func(tx store.Tx) error {
		if err := tx.Users().CreateUser(ctx, user); err != nil {
			return err
		}
		return tx.RefreshTokens().UpsertRefreshToken(ctx, user.ID, pair.RefreshToken)
	})
	if err != nil {
		if errors.Is(err, store.ErrAlreadyExists) {
			return domain.User{}, domain.TokenPair{}, ErrEmailTaken
		}
		return domain.User{}, domain.TokenPair{}, fmt.Errorf("create user: %w", err)
	}

	return user, pair, nil
}

// Login authenticates by email and password and rotates the refresh token.
func (s *UserService) Login(ctx context.Context, email, password string) (domain.User, domain.TokenPair, error) {
	user, err := s.store.Users().GetUserByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return domain.User{}, domain.TokenPair{}, ErrUserNotFound
		}
		return domain.User{}, domain.TokenPair{}, fmt.Errorf("lookup user: %w", err)
	}

	if err := cryptox.VerifyPassword(password, user.PasswordHash); err != nil {
		if errors.Is(err, cryptox.ErrPasswordMismatch) {
			return domain.User{}, domain.TokenPair{}, ErrWrongPassword
		}
		return domain.User{}, domain.TokenPair{}, fmt.Errorf("verify password: %w", err)
	}

	pair, err := s.issueAndRotate(ctx, user)
	if err != nil {
		return domain.User{}, domain.TokenPair{}, err
	}
	return user, pair, nil
}

// Refresh exchanges a previously issued refresh token for a new pair. The
// stored-token lookup runs before the signature check so a rotated-out token
// is rejected even when it is still cryptographically valid.
func (s *UserService) Refresh(ctx context.Context, token string) (domain.User, domain.TokenPair, error) {
	stored, err := s.store.RefreshTokens().GetRefreshTokenByValue(ctx, token)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return domain.User{}, domain.TokenPair{}, ErrRefreshNotFound
		}
		return domain.User{}, domain.TokenPair{}, fmt.Errorf("lookup refresh token: %w", err)
	}

	if _, err := s.tokens.VerifyRefresh(token); err != nil {
		if errors.Is(err, jwtx.ErrExpired) {
			return domain.User{}, domain.TokenPair{}, ErrRefreshExpired
		}
		return domain.User{}, domain.TokenPair{}, ErrRefreshNotFound
	}

	user, err := s.store.Users().GetUserByID(ctx, stored.UserID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return domain.User{}, domain.TokenPair{}, ErrRefreshNotFound
		}
		return domain.User{}, domain.TokenPair{}, fmt.Errorf("lookup user: %w", err)
	}

	pair, err := s.issueAndRotate(ctx, user)
	if err != nil {
		return domain.User{}, domain.TokenPair{}, err
	}
	return user, pair, nil
}

func (s *UserService) issueAndRotate(ctx context.Context, user domain.User) (domain.TokenPair, error) {
	pair, err := s.tokens.IssuePair(user)
	if err != nil {
		return domain.TokenPair{}, fmt.Errorf("issue tokens: %w", err)
	}
	if err := s.store.RefreshTokens().UpsertRefreshToken(ctx, user.ID, pair.RefreshToken); err != nil {
		return domain.TokenPair{}, fmt.Errorf("rotate refresh token: %w", err)
	}
	return pair, nil
}
