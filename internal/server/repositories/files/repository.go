// Package files implements the file-record side of the record store: file
// metadata, share grants, verification challenges, and the append-only
// access audit trail.
package files

import (
	"context"
	"time"

	"github.com/dmitrijs2005/secureshare/internal/server/models"
)

type Repository interface {
	Create(ctx context.Context, file *models.File) (*models.File, error)
	GetByID(ctx context.Context, id string) (*models.File, error)
	GetByIDAndOwner(ctx context.Context, id, ownerID string) (*models.File, error)
	GetByOwner(ctx context.Context, ownerID string) ([]*models.File, error)
	GetByShareToken(ctx context.Context, token string) (*models.File, error)
	Delete(ctx context.Context, id string) error

	// SetShareGrant overwrites the file's share token and expiry; any prior
	// grant dies immediately.
	SetShareGrant(ctx context.Context, id, token string, expiry time.Time) error
	// SetVerificationChallenge overwrites the single verification-code slot.
	SetVerificationChallenge(ctx context.Context, id, code string, expiry time.Time) error

	AppendAccessRecord(ctx context.Context, fileID, ipAddress string, accessTime time.Time) error
	ListAccessRecords(ctx context.Context, fileID string) ([]*models.AccessRecord, error)
}
