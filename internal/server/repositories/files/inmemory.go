package files

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/dmitrijs2005/secureshare/internal/common"
	"github.com/dmitrijs2005/secureshare/internal/server/models"
)

// InMemoryRepository is a map-backed Repository used by tests and by the
// end-to-end scenarios that do not want a running database.
type InMemoryRepository struct {
	mu      sync.RWMutex
	files   map[string]*models.File
	records []*models.AccessRecord
	nextRec int64
}

func NewInMemoryRepository() *InMemoryRepository {
	return &InMemoryRepository{files: make(map[string]*models.File)}
}

func (r *InMemoryRepository) Create(ctx context.Context, file *models.File) (*models.File, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	created := *file
	created.ID = uuid.NewString()
	if created.UploadedAt.IsZero() {
		created.UploadedAt = time.Now()
	}
	r.files[created.ID] = &created

	clone := created
	return &clone, nil
}

func (r *InMemoryRepository) GetByID(ctx context.Context, id string) (*models.File, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	item, ok := r.files[id]
	if !ok {
		return nil, common.ErrorNotFound
	}
	clone := *item
	return &clone, nil
}

func (r *InMemoryRepository) GetByIDAndOwner(ctx context.Context, id, ownerID string) (*models.File, error) {
	item, err := r.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if item.OwnerID != ownerID {
		return nil, common.ErrorNotFound
	}
	return item, nil
}

func (r *InMemoryRepository) GetByOwner(ctx context.Context, ownerID string) ([]*models.File, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var result []*models.File
	for _, item := range r.files {
		if item.OwnerID == ownerID {
			clone := *item
			result = append(result, &clone)
		}
	}
	sort.Slice(result, func(i, j int) bool {
		return result[i].UploadedAt.After(result[j].UploadedAt)
	})
	return result, nil
}

func (r *InMemoryRepository) GetByShareToken(ctx context.Context, token string) (*models.File, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, item := range r.files {
		if item.ShareToken != "" && item.ShareToken == token {
			clone := *item
			return &clone, nil
		}
	}
	return nil, common.ErrorNotFound
}

func (r *InMemoryRepository) Delete(ctx context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.files[id]; !ok {
		return common.ErrorNotFound
	}
	delete(r.files, id)
	return nil
}

func (r *InMemoryRepository) SetShareGrant(ctx context.Context, id, token string, expiry time.Time) error {
	return r.update(id, func(f *models.File) {
		f.ShareToken = token
		f.ShareExpiry = expiry
	})
}

func (r *InMemoryRepository) SetVerificationChallenge(ctx context.Context, id, code string, expiry time.Time) error {
	return r.update(id, func(f *models.File) {
		f.VerificationCode = code
		f.VerificationCodeExpiry = expiry
	})
}

func (r *InMemoryRepository) AppendAccessRecord(ctx context.Context, fileID, ipAddress string, accessTime time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.nextRec++
	r.records = append(r.records, &models.AccessRecord{
		ID:         r.nextRec,
		FileID:     fileID,
		IPAddress:  ipAddress,
		AccessTime: accessTime,
	})
	return nil
}

func (r *InMemoryRepository) ListAccessRecords(ctx context.Context, fileID string) ([]*models.AccessRecord, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var result []*models.AccessRecord
	for _, rec := range r.records {
		if rec.FileID == fileID {
			clone := *rec
			result = append(result, &clone)
		}
	}
	return result, nil
}

func (r *InMemoryRepository) update(id string, fn func(*models.File)) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	item, ok := r.files[id]
	if !ok {
		return common.ErrorNotFound
	}
	fn(item)
	return nil
}
