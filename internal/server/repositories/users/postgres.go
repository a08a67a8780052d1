package users

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/secureshare/internal/common"
	"github.com/dmitrijs2005/secureshare/internal/dbx"
	"github.com/dmitrijs2005/secureshare/internal/server/models"
)

// PostgresRepository implements user storage over a dbx.DBTX.
type PostgresRepository struct {
	db dbx.DBTX
}

func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) Create(ctx context.Context, user *models.User) (*models.User, error) {
	query := `
		INSERT INTO users (username, email, salt, password_hash)
		VALUES ($1, $2, $3, $4)
		RETURNING id, created_at;
	`
	created := *user
	err := r.db.QueryRowContext(ctx, query, user.UserName, user.Email, user.Salt, user.PasswordHash).
		Scan(&created.ID, &created.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("failed to insert user: %w", err)
	}
	return &created, nil
}

func (r *PostgresRepository) GetByLogin(ctx context.Context, userName string) (*models.User, error) {
	query := `SELECT id, username, email, salt, password_hash, created_at FROM users WHERE username=$1`
	return r.getOne(ctx, query, userName)
}

func (r *PostgresRepository) GetByID(ctx context.Context, id string) (*models.User, error) {
	query := `SELECT id, username, email, salt, password_hash, created_at FROM users WHERE id=$1`
	return r.getOne(ctx, query, id)
}

func (r *PostgresRepository) UpdateUserName(ctx context.Context, id, userName string) (*models.User, error) {
	query := `
		UPDATE users SET username=$2 WHERE id=$1
		RETURNING id, username, email, salt, password_hash, created_at;
	`
	return r.getOne(ctx, query, id, userName)
}

func (r *PostgresRepository) UpdatePassword(ctx context.Context, id string, salt, passwordHash []byte) error {
	query := `UPDATE users SET salt=$2, password_hash=$3 WHERE id=$1`
	res, err := r.db.ExecContext(ctx, query, id, salt, passwordHash)
	if err != nil {
		return fmt.Errorf("failed to update password: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to update password: %w", err)
	}
	if affected == 0 {
		return common.ErrorNotFound
	}
	return nil
}

func (r *PostgresRepository) getOne(ctx context.Context, query string, args ...any) (*models.User, error) {
	var item models.User
	err := r.db.QueryRowContext(ctx, query, args...).
		Scan(&item.ID, &item.UserName, &item.Email, &item.Salt, &item.PasswordHash, &item.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("failed to select user: %w", err)
	}
	return &item, nil
}
