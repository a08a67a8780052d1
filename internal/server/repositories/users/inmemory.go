package users

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/dmitrijs2005/secureshare/internal/common"
	"github.com/dmitrijs2005/secureshare/internal/server/models"
)

// InMemoryRepository is a map-backed Repository used in tests.
type InMemoryRepository struct {
	mu    sync.RWMutex
	users map[string]*models.User
}

func NewInMemoryRepository() *InMemoryRepository {
	return &InMemoryRepository{users: make(map[string]*models.User)}
}

func (r *InMemoryRepository) Create(ctx context.Context, user *models.User) (*models.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, u := range r.users {
		if u.UserName == user.UserName {
			return nil, common.ErrorInternal
		}
	}

	clone := *user
	clone.ID = uuid.NewString()
	clone.CreatedAt = time.Now()
	r.users[clone.ID] = &clone

	result := clone
	return &result, nil
}

func (r *InMemoryRepository) GetByLogin(ctx context.Context, userName string) (*models.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, u := range r.users {
		if u.UserName == userName {
			clone := *u
			return &clone, nil
		}
	}
	return nil, common.ErrorNotFound
}

func (r *InMemoryRepository) UpdateUserName(ctx context.Context, id, userName string) (*models.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	u, ok := r.users[id]
	if !ok {
		return nil, common.ErrorNotFound
	}
	for _, other := range r.users {
		if other.ID != id && other.UserName == userName {
			return nil, common.ErrorConflict
		}
	}
	u.UserName = userName
	clone := *u
	return &clone, nil
}

func (r *InMemoryRepository) UpdatePassword(ctx context.Context, id string, salt, passwordHash []byte) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	u, ok := r.users[id]
	if !ok {
		return common.ErrorNotFound
	}
	u.Salt = salt
	u.PasswordHash = passwordHash
	return nil
}

func (r *InMemoryRepository) GetByID(ctx context.Context, id string) (*models.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	u, ok := r.users[id]
	if !ok {
		return nil, common.ErrorNotFound
	}
	clone := *u
	return &clone, nil
}
