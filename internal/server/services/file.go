package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/dmitrijs2005/secureshare/internal/blobstore"
	"github.com/dmitrijs2005/secureshare/internal/common"
	"github.com/dmitrijs2005/secureshare/internal/cryptox"
	"github.com/dmitrijs2005/secureshare/internal/server/models"
	"github.com/dmitrijs2005/secureshare/internal/server/repositories/repomanager"
)

// FileService owns the file lifecycle: encrypted intake, listing, decrypted
// delivery, and removal. Plaintext only ever exists in the upload spool and
// in the ephemeral decryption area; the blob store sees ciphertext only.
type FileService struct {
	db          *sql.DB
	repomanager repomanager.RepositoryManager
	store       blobstore.Store
	cipher      *cryptox.StreamCipher
	decryptor   *cryptox.TempDecryptor
}

// NewFileService constructs a FileService over the given record store, blob
// store, and cipher pipeline.
func NewFileService(db *sql.DB, m repomanager.RepositoryManager, store blobstore.Store, cipher *cryptox.StreamCipher, decryptor *cryptox.TempDecryptor) *FileService {
	return &FileService{
		db:          db,
		repomanager: m,
		store:       store,
		cipher:      cipher,
		decryptor:   decryptor,
	}
}

// Upload encrypts the spooled plaintext at spoolPath into the blob store and
// persists the file record. The spool file is removed only after the
// encrypted blob is safely stored; if encryption or storage fails, the spool
// file survives for the caller to dispose of.
func (s *FileService) Upload(ctx context.Context, ownerID, name, contentType, spoolPath string) (*models.File, error) {
	src, err := os.Open(spoolPath)
	if err != nil {
		return nil, fmt.Errorf("%w: open spool file: %v", common.ErrStorageIO, err)
	}
	defer src.Close()

	info, err := src.Stat()
	if err != nil {
		return nil, fmt.Errorf("%w: stat spool file: %v", common.ErrStorageIO, err)
	}

	key := blobstore.MakeStorageKey()
	iv, err := s.encryptToStore(ctx, key, src, cryptox.EncryptedSize(info.Size()))
	if err != nil {
		return nil, err
	}

	file := &models.File{
		OwnerID:      ownerID,
		Name:         name,
		ContentType:  contentType,
		Size:         info.Size(),
		UploadedAt:   time.Now(),
		StorageKey:   key,
		EncryptionIV: iv,
	}

	repo := s.repomanager.Files(s.db)
	created, err := repo.Create(ctx, file)
	if err != nil {
		s.store.Delete(ctx, key)
		return nil, fmt.Errorf("error creating file record: %v", err)
	}

	// Retire the plaintext spool copy. The encrypted blob is the only copy
	// from here on.
	src.Close()
	if err := os.Remove(spoolPath); err != nil {
		return nil, fmt.Errorf("%w: remove spool file: %v", common.ErrStorageIO, err)
	}

	return created, nil
}

// encryptToStore pipes the plaintext through the stream cipher into the blob
// store without buffering the whole file, and returns the hex-encoded IV.
// blobSize is the encrypted length the store should expect; the pipe reader
// handed to it cannot be sized after the fact.
func (s *FileService) encryptToStore(ctx context.Context, key string, src io.Reader, blobSize int64) (string, error) {
	type encResult struct {
		iv  string
		err error
	}

	pr, pw := io.Pipe()
	done := make(chan encResult, 1)
	go func() {
		iv, err := s.cipher.Encrypt(pw, src)
		pw.CloseWithError(err)
		done <- encResult{iv: iv, err: err}
	}()

	if err := s.store.Save(ctx, key, pr, blobSize); err != nil {
		pr.CloseWithError(err)
		<-done
		return "", err
	}

	res := <-done
	if res.err != nil {
		s.store.Delete(ctx, key)
		return "", res.err
	}
	return res.iv, nil
}

// Download returns the file record together with a decrypted read stream for
// the owner. The caller must invoke the release callback when streaming ends.
func (s *FileService) Download(ctx context.Context, ownerID, fileID string) (*models.File, io.ReadCloser, cryptox.ReleaseFunc, error) {
	repo := s.repomanager.Files(s.db)
	file, err := repo.GetByIDAndOwner(ctx, fileID, ownerID)
	if err != nil {
		return nil, nil, nil, err
	}

	rc, release, err := s.openDecrypted(ctx, file)
	if err != nil {
		return nil, nil, nil, err
	}
	return file, rc, release, nil
}

// DownloadShared opens a decrypted stream for a file already authorized
// through the share verification flow.
func (s *FileService) DownloadShared(ctx context.Context, file *models.File) (io.ReadCloser, cryptox.ReleaseFunc, error) {
	return s.openDecrypted(ctx, file)
}

func (s *FileService) openDecrypted(ctx context.Context, file *models.File) (io.ReadCloser, cryptox.ReleaseFunc, error) {
	blob, err := s.store.Open(ctx, file.StorageKey)
	if err != nil {
		return nil, nil, err
	}
	defer blob.Close()

	return s.decryptor.OpenForRead(blob, file.Name)
}

// List returns the owner's files, newest first.
func (s *FileService) List(ctx context.Context, ownerID string) ([]*models.File, error) {
	repo := s.repomanager.Files(s.db)
	return repo.GetByOwner(ctx, ownerID)
}

// Delete removes the blob and the file record. A blob already gone from the
// store does not block record removal.
func (s *FileService) Delete(ctx context.Context, ownerID, fileID string) error {
	repo := s.repomanager.Files(s.db)
	file, err := repo.GetByIDAndOwner(ctx, fileID, ownerID)
	if err != nil {
		return err
	}

	if err := s.store.Delete(ctx, file.StorageKey); err != nil && !errors.Is(err, common.ErrorNotFound) {
		return err
	}
	return repo.Delete(ctx, file.ID)
}
