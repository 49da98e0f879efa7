// Package services contains the server-side business logic: account
// handling, project lifecycle, and document/logo assets. Services consult
// the membership resolver before touching anything a requester might not be
// allowed to reach.
package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/mlebedeva/projectdock/internal/common"
	"github.com/mlebedeva/projectdock/internal/server/auth"
	"github.com/mlebedeva/projectdock/internal/server/config"
	"github.com/mlebedeva/projectdock/internal/server/models"
	"github.com/mlebedeva/projectdock/internal/server/repositories/repomanager"
)

const minPasswordLength = 8

// UserService provides authentication-related operations:
//   - Register: create accounts
//   - Login: verify credentials and mint an access token
//   - ResolveIdentity: map a bearer token back to a user id
type UserService struct {
	db                    *sql.DB
	repos                 repomanager.RepositoryManager
	jwtSecret             []byte
	tokenValidityDuration time.Duration
}

func NewUserService(db *sql.DB, m repomanager.RepositoryManager, cfg *config.Config) *UserService {
	return &UserService{
		db:                    db,
		repos:                 m,
		jwtSecret:             []byte(cfg.SecretKey),
		tokenValidityDuration: cfg.AccessTokenValidityDuration,
	}
}

// Register creates a new user. A duplicate email yields ErrConflict.
func (s *UserService) Register(ctx context.Context, email, password string) (*models.User, error) {
	email = strings.TrimSpace(strings.ToLower(email))
	if email == "" || !strings.Contains(email, "@") {
		return nil, fmt.Errorf("%w: invalid email", common.ErrValidation)
	}
	if len(password) < minPasswordLength {
		return nil, fmt.Errorf("%w: password must be at least %d characters", common.ErrValidation, minPasswordLength)
	}

	hash, err := auth.HashPassword(password)
	if err != nil {
		return nil, common.ErrInternal
	}

	user := &models.User{Email: email, PasswordHash: hash}
	repo := s.repos.Users(s.db)
	u, err := repo.Create(ctx, user)
	if err != nil {
		if errors.Is(err, common.ErrConflict) {
			return nil, fmt.Errorf("%w: email already in use", common.ErrConflict)
		}
		return nil, fmt.Errorf("error creating user: %w", err)
	}
	return u, nil
}

// Login verifies the credentials and, on success, returns a signed access
// token. Unknown email and wrong password are indistinguishable to the
// caller.
func (s *UserService) Login(ctx context.Context, email, password string) (string, error) {
	email = strings.TrimSpace(strings.ToLower(email))

	repo := s.repos.Users(s.db)
	user, err := repo.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, common.ErrNotFound) {
			return "", common.ErrUnauthorized
		}
		return "", common.ErrInternal
	}

	if !auth.CheckPassword(user.PasswordHash, password) {
		return "", common.ErrUnauthorized
	}

	token, err := auth.GenerateToken(user.ID, s.jwtSecret, s.tokenValidityDuration)
	if err != nil {
		return "", common.ErrInternal
	}
	return token, nil
}

// ResolveIdentity maps a bearer token to a user id. Any verification failure
// yields ErrUnauthorized.
func (s *UserService) ResolveIdentity(ctx context.Context, token string) (string, error) {
	userID, err := auth.GetUserIDFromToken(token, s.jwtSecret)
	if err != nil {
		return "", common.ErrUnauthorized
	}
	return userID, nil
}
