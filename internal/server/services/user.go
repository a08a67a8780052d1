// Package services contains server-side business logic. This file implements
// UserService, which handles registration, login, profile maintenance, and
// issuing JWT access tokens.
package services

import (
	"context"
	"crypto/subtle"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"golang.org/x/crypto/argon2"

	"github.com/dmitrijs2005/secureshare/internal/common"
	"github.com/dmitrijs2005/secureshare/internal/server/auth"
	"github.com/dmitrijs2005/secureshare/internal/server/config"
	"github.com/dmitrijs2005/secureshare/internal/server/models"
	"github.com/dmitrijs2005/secureshare/internal/server/repositories/repomanager"
)

// argon2id parameters for password hashing.
const (
	argonTime    = 1
	argonMemory  = 64 * 1024
	argonThreads = 4
	argonKeyLen  = 32
	saltLen      = 32
)

// UserService provides account operations:
// - Register: create users with salted argon2id password hashes
// - Login: verify credentials and mint access tokens
// - Profile/UpdateUserName/UpdatePassword: read and maintain the account
type UserService struct {
	db                          *sql.DB
	repomanager                 repomanager.RepositoryManager
	jwtSecret                   []byte
	accessTokenValidityDuration time.Duration
}

// NewUserService constructs a UserService using repositories and server config.
func NewUserService(db *sql.DB, m repomanager.RepositoryManager, cfg *config.Config) *UserService {
	return &UserService{
		db:                          db,
		repomanager:                 m,
		jwtSecret:                   []byte(cfg.SecretKey),
		accessTokenValidityDuration: cfg.AccessTokenValidityDuration,
	}
}

// Register creates a new user with the given username, email, and password.
// The password is hashed with argon2id under a fresh per-user salt; the
// plaintext is never stored.
func (s *UserService) Register(ctx context.Context, userName, email, password string) (*models.User, error) {
	salt := common.GenerateRandByteArray(saltLen)
	user := &models.User{
		UserName:     userName,
		Email:        email,
		Salt:         salt,
		PasswordHash: s.hashPassword(password, salt),
	}
	repo := s.repomanager.Users(s.db)
	u, err := repo.Create(ctx, user)
	if err != nil {
		return nil, fmt.Errorf("error creating user: %v", err)
	}
	return u, nil
}

// Login verifies the password against the stored hash and, on success,
// returns a signed access token together with the user record.
func (s *UserService) Login(ctx context.Context, userName, password string) (*models.User, string, error) {
	repo := s.repomanager.Users(s.db)
	user, err := repo.GetByLogin(ctx, userName)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return nil, "", common.ErrorUnauthorized
		}
		return nil, "", common.ErrorInternal
	}
	if !s.checkPassword(user, password) {
		return nil, "", common.ErrorUnauthorized
	}
	token, err := auth.GenerateToken(user.ID, s.jwtSecret, s.accessTokenValidityDuration)
	if err != nil {
		return nil, "", common.ErrorInternal
	}
	return user, token, nil
}

// Profile returns the account record for the authenticated user.
func (s *UserService) Profile(ctx context.Context, userID string) (*models.User, error) {
	return s.repomanager.Users(s.db).GetByID(ctx, userID)
}

// UpdateUserName renames the account. A name held by another user is a
// conflict; renaming to the current name is a no-op that succeeds.
func (s *UserService) UpdateUserName(ctx context.Context, userID, userName string) (*models.User, error) {
	repo := s.repomanager.Users(s.db)

	existing, err := repo.GetByLogin(ctx, userName)
	if err == nil && existing.ID != userID {
		return nil, common.ErrorConflict
	}
	if err != nil && !errors.Is(err, common.ErrorNotFound) {
		return nil, common.ErrorInternal
	}

	user, err := repo.UpdateUserName(ctx, userID, userName)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) || errors.Is(err, common.ErrorConflict) {
			return nil, err
		}
		return nil, fmt.Errorf("error updating user: %v", err)
	}
	return user, nil
}

// UpdatePassword verifies the current password and re-hashes the new one
// under a fresh salt. Outstanding access tokens stay valid until they expire.
func (s *UserService) UpdatePassword(ctx context.Context, userID, currentPassword, newPassword string) error {
	repo := s.repomanager.Users(s.db)

	user, err := repo.GetByID(ctx, userID)
	if err != nil {
		return err
	}
	if !s.checkPassword(user, currentPassword) {
		return common.ErrorUnauthorized
	}

	salt := common.GenerateRandByteArray(saltLen)
	if err := repo.UpdatePassword(ctx, userID, salt, s.hashPassword(newPassword, salt)); err != nil {
		return fmt.Errorf("error updating password: %v", err)
	}
	return nil
}

func (s *UserService) hashPassword(password string, salt []byte) []byte {
	return argon2.IDKey([]byte(password), salt, argonTime, argonMemory, argonThreads, argonKeyLen)
}

func (s *UserService) checkPassword(user *models.User, candidate string) bool {
	hash := s.hashPassword(candidate, user.Salt)
	return subtle.ConstantTimeCompare(user.PasswordHash, hash) == 1
}
