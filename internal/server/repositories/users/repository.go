// Package users implements user-account storage.
package users

import (
	"context"

	"github.com/dmitrijs2005/secureshare/internal/server/models"
)

type Repository interface {
	Create(ctx context.Context, user *models.User) (*models.User, error)
	GetByLogin(ctx context.Context, userName string) (*models.User, error)
	GetByID(ctx context.Context, id string) (*models.User, error)
	UpdateUserName(ctx context.Context, id, userName string) (*models.User, error)
	UpdatePassword(ctx context.Context, id string, salt, passwordHash []byte) error
}
