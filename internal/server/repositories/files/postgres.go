package files

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/dmitrijs2005/secureshare/internal/common"
	"github.com/dmitrijs2005/secureshare/internal/dbx"
	"github.com/dmitrijs2005/secureshare/internal/server/models"
)

// PostgresRepository implements file-record storage over a dbx.DBTX
// (*sql.DB or *sql.Tx).
type PostgresRepository struct {
	db dbx.DBTX
}

// NewPostgresRepository constructs a repository bound to the given DBTX.
func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

const fileColumns = `id, user_id, file_name, file_type, file_size, storage_key, encryption_iv,
	upload_date, share_token, share_expiry, verification_code, verification_code_expiry`

func (r *PostgresRepository) Create(ctx context.Context, file *models.File) (*models.File, error) {
	query := `
		INSERT INTO files (user_id, file_name, file_type, file_size, storage_key, encryption_iv)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id, upload_date;
	`
	created := *file
	err := r.db.QueryRowContext(ctx, query,
		file.OwnerID, file.Name, file.ContentType, file.Size, file.StorageKey, file.EncryptionIV).
		Scan(&created.ID, &created.UploadedAt)
	if err != nil {
		return nil, fmt.Errorf("failed to insert file: %w", err)
	}
	return &created, nil
}

func (r *PostgresRepository) GetByID(ctx context.Context, id string) (*models.File, error) {
	query := `SELECT ` + fileColumns + ` FROM files WHERE id=$1`
	return r.getOne(ctx, query, id)
}

func (r *PostgresRepository) GetByIDAndOwner(ctx context.Context, id, ownerID string) (*models.File, error) {
	query := `SELECT ` + fileColumns + ` FROM files WHERE id=$1 AND user_id=$2`
	return r.getOne(ctx, query, id, ownerID)
}

func (r *PostgresRepository) GetByShareToken(ctx context.Context, token string) (*models.File, error) {
	query := `SELECT ` + fileColumns + ` FROM files WHERE share_token=$1`
	return r.getOne(ctx, query, token)
}

func (r *PostgresRepository) GetByOwner(ctx context.Context, ownerID string) ([]*models.File, error) {
	query := `SELECT ` + fileColumns + ` FROM files WHERE user_id=$1 ORDER BY upload_date DESC`
	rows, err := r.db.QueryContext(ctx, query, ownerID)
	if err != nil {
		return nil, fmt.Errorf("failed to select files: %w", err)
	}
	defer rows.Close()

	var result []*models.File
	for rows.Next() {
		item, err := scanFile(rows.Scan)
		if err != nil {
			return nil, err
		}
		result = append(result, item)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}

func (r *PostgresRepository) Delete(ctx context.Context, id string) error {
	return r.execOne(ctx, `DELETE FROM files WHERE id=$1`, id)
}

func (r *PostgresRepository) SetShareGrant(ctx context.Context, id, token string, expiry time.Time) error {
	query := `UPDATE files SET share_token=$2, share_expiry=$3 WHERE id=$1`
	return r.execOne(ctx, query, id, token, expiry)
}

func (r *PostgresRepository) SetVerificationChallenge(ctx context.Context, id, code string, expiry time.Time) error {
	query := `UPDATE files SET verification_code=$2, verification_code_expiry=$3 WHERE id=$1`
	return r.execOne(ctx, query, id, code, expiry)
}

func (r *PostgresRepository) AppendAccessRecord(ctx context.Context, fileID, ipAddress string, accessTime time.Time) error {
	query := `INSERT INTO access_records (file_id, ip_address, access_time) VALUES ($1, $2, $3)`
	_, err := r.db.ExecContext(ctx, query, fileID, ipAddress, accessTime)
	if err != nil {
		return fmt.Errorf("failed to append access record: %w", err)
	}
	return nil
}

func (r *PostgresRepository) ListAccessRecords(ctx context.Context, fileID string) ([]*models.AccessRecord, error) {
	query := `SELECT id, file_id, ip_address, access_time FROM access_records WHERE file_id=$1 ORDER BY id`
	rows, err := r.db.QueryContext(ctx, query, fileID)
	if err != nil {
		return nil, fmt.Errorf("failed to select access records: %w", err)
	}
	defer rows.Close()

	var result []*models.AccessRecord
	for rows.Next() {
		var item models.AccessRecord
		if err := rows.Scan(&item.ID, &item.FileID, &item.IPAddress, &item.AccessTime); err != nil {
			return nil, err
		}
		result = append(result, &item)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}

// --- helpers below ---

func (r *PostgresRepository) getOne(ctx context.Context, query string, args ...any) (*models.File, error) {
	item, err := scanFile(r.db.QueryRowContext(ctx, query, args...).Scan)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("failed to select file: %w", err)
	}
	return item, nil
}

func (r *PostgresRepository) execOne(ctx context.Context, query string, args ...any) error {
	result, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	ra, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected error: %w", err)
	}
	if ra == 0 {
		return common.ErrorNotFound
	}
	if ra != 1 {
		return fmt.Errorf("unexpected rows affected: %d", ra)
	}
	return nil
}

func scanFile(scan func(dest ...any) error) (*models.File, error) {
	var item models.File
	var shareToken, verificationCode sql.NullString
	var shareExpiry, codeExpiry sql.NullTime

	if err := scan(&item.ID, &item.OwnerID, &item.Name, &item.ContentType, &item.Size,
		&item.StorageKey, &item.EncryptionIV, &item.UploadedAt,
		&shareToken, &shareExpiry, &verificationCode, &codeExpiry); err != nil {
		return nil, err
	}

	item.ShareToken = shareToken.String
	item.ShareExpiry = shareExpiry.Time
	item.VerificationCode = verificationCode.String
	item.VerificationCodeExpiry = codeExpiry.Time
	return &item, nil
}
