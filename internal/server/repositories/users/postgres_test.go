package users

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"

	"github.com/dmitrijs2005/secureshare/internal/common"
	"github.com/dmitrijs2005/secureshare/internal/server/models"
)

func newRepoWithMock(t *testing.T) (*PostgresRepository, sqlmock.Sqlmock, *sql.DB) {
	t.Helper()
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	if err != nil {
		t.Fatalf("sqlmock.New error: %v", err)
	}
	return NewPostgresRepository(db), mock, db
}

func TestCreate_Success(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	created := time.Now()
	mock.ExpectQuery(`(?s)^\s*INSERT\s+INTO\s+users\b.*RETURNING\s+id,\s*created_at`).
		WithArgs("alice", "alice@example.com", []byte("salt"), []byte("hash")).
		WillReturnRows(sqlmock.NewRows([]string{"id", "created_at"}).AddRow("u1", created))

	user, err := repo.Create(context.Background(), &models.User{
		UserName:     "alice",
		Email:        "alice@example.com",
		Salt:         []byte("salt"),
		PasswordHash: []byte("hash"),
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if user.ID != "u1" {
		t.Fatalf("unexpected user: %+v", user)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestGetByLogin_NotFound(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	mock.ExpectQuery(`SELECT\s+.*\s+FROM\s+users\s+WHERE\s+username=\$1`).
		WithArgs("nobody").
		WillReturnError(sql.ErrNoRows)

	_, err := repo.GetByLogin(context.Background(), "nobody")
	if !errors.Is(err, common.ErrorNotFound) {
		t.Fatalf("want ErrorNotFound, got %v", err)
	}
}

func TestGetByID_Success(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	mock.ExpectQuery(`SELECT\s+.*\s+FROM\s+users\s+WHERE\s+id=\$1`).
		WithArgs("u1").
		WillReturnRows(sqlmock.NewRows([]string{"id", "username", "email", "salt", "password_hash", "created_at"}).
			AddRow("u1", "alice", "alice@example.com", []byte("s"), []byte("h"), time.Now()))

	user, err := repo.GetByID(context.Background(), "u1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if user.UserName != "alice" || user.Email != "alice@example.com" {
		t.Fatalf("unexpected user: %+v", user)
	}
}

func TestUpdateUserName_Success(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	mock.ExpectQuery(`(?s)UPDATE\s+users\s+SET\s+username=\$2\s+WHERE\s+id=\$1.*RETURNING`).
		WithArgs("u1", "alicia").
		WillReturnRows(sqlmock.NewRows([]string{"id", "username", "email", "salt", "password_hash", "created_at"}).
			AddRow("u1", "alicia", "alice@example.com", []byte("s"), []byte("h"), time.Now()))

	user, err := repo.UpdateUserName(context.Background(), "u1", "alicia")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if user.UserName != "alicia" {
		t.Fatalf("unexpected user: %+v", user)
	}
}

func TestUpdateUserName_NotFound(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	mock.ExpectQuery(`UPDATE\s+users\s+SET\s+username=\$2`).
		WithArgs("missing", "alicia").
		WillReturnError(sql.ErrNoRows)

	if _, err := repo.UpdateUserName(context.Background(), "missing", "alicia"); !errors.Is(err, common.ErrorNotFound) {
		t.Fatalf("want ErrorNotFound, got %v", err)
	}
}

func TestUpdatePassword_Success(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	mock.ExpectExec(`UPDATE\s+users\s+SET\s+salt=\$2,\s*password_hash=\$3\s+WHERE\s+id=\$1`).
		WithArgs("u1", []byte("new-salt"), []byte("new-hash")).
		WillReturnResult(sqlmock.NewResult(0, 1))

	if err := repo.UpdatePassword(context.Background(), "u1", []byte("new-salt"), []byte("new-hash")); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestUpdatePassword_NotFound(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	mock.ExpectExec(`UPDATE\s+users\s+SET\s+salt=\$2`).
		WithArgs("missing", []byte("s"), []byte("h")).
		WillReturnResult(sqlmock.NewResult(0, 0))

	if err := repo.UpdatePassword(context.Background(), "missing", []byte("s"), []byte("h")); !errors.Is(err, common.ErrorNotFound) {
		t.Fatalf("want ErrorNotFound, got %v", err)
	}
}
