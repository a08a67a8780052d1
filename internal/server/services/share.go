package services

import (
	"context"
	"crypto/subtle"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/dmitrijs2005/secureshare/internal/common"
	"github.com/dmitrijs2005/secureshare/internal/notify"
	"github.com/dmitrijs2005/secureshare/internal/server/config"
	"github.com/dmitrijs2005/secureshare/internal/server/models"
	"github.com/dmitrijs2005/secureshare/internal/server/repositories/repomanager"
)

// shareTokenBytes is the entropy of a share token; hex-encoded it becomes a
// 32-character URL path segment.
const shareTokenBytes = 16

// ShareService runs the share lifecycle: granting time-limited share tokens,
// issuing verification challenges to requesters, and verifying codes against
// the single live challenge slot per file.
//
// The challenge slot is read and written only under a per-file lock, and the
// record is re-read once the lock is held, so concurrent access requests
// cannot act on a stale slot snapshot.
type ShareService struct {
	db          *sql.DB
	repomanager repomanager.RepositoryManager
	notifier    notify.Notifier
	locker      *keyedMutex

	shareValidity time.Duration
	codeValidity  time.Duration
	appURL        string

	now func() time.Time
}

// NewShareService constructs a ShareService over the record store and the
// out-of-band notifier.
func NewShareService(db *sql.DB, m repomanager.RepositoryManager, n notify.Notifier, cfg *config.Config) *ShareService {
	return &ShareService{
		db:            db,
		repomanager:   m,
		notifier:      n,
		locker:        newKeyedMutex(),
		shareValidity: cfg.ShareLinkValidityDuration,
		codeValidity:  cfg.VerificationCodeValidityDuration,
		appURL:        strings.TrimRight(cfg.AppURL, "/"),
		now:           time.Now,
	}
}

// Share grants a fresh share token on the owner's file and returns the
// updated record plus the public share URL. Any prior grant on the file dies
// immediately; its token stops resolving.
func (s *ShareService) Share(ctx context.Context, ownerID, fileID string) (*models.File, string, error) {
	repo := s.repomanager.Files(s.db)
	file, err := repo.GetByIDAndOwner(ctx, fileID, ownerID)
	if err != nil {
		return nil, "", err
	}

	token, err := common.MakeRandHexString(shareTokenBytes)
	if err != nil {
		return nil, "", common.ErrorInternal
	}
	expiry := s.now().Add(s.shareValidity)

	if err := repo.SetShareGrant(ctx, file.ID, token, expiry); err != nil {
		return nil, "", fmt.Errorf("error saving share grant: %v", err)
	}

	file.ShareToken = token
	file.ShareExpiry = expiry
	return file, s.ShareURL(token), nil
}

// ShareURL builds the public link for a share token.
func (s *ShareService) ShareURL(token string) string {
	return fmt.Sprintf("%s/api/share/%s", s.appURL, token)
}

// Info resolves an unexpired share token to the file record and its owner,
// for displaying what is being shared before any code exchange. No
// verification code is needed.
func (s *ShareService) Info(ctx context.Context, token string) (*models.File, *models.User, error) {
	file, err := s.resolveShare(ctx, token)
	if err != nil {
		return nil, nil, err
	}

	owner, err := s.repomanager.Users(s.db).GetByID(ctx, file.OwnerID)
	if err != nil {
		return nil, nil, common.ErrorInternal
	}
	return file, owner, nil
}

// RequestAccess issues a fresh 6-digit verification challenge for the shared
// file and delivers it to the owner out of band. The challenge is persisted
// only after the notifier confirms delivery; if delivery fails, the previous
// challenge (if any) stays live and nothing changes.
//
// Each call overwrites the single challenge slot, so a second request
// invalidates the first code.
func (s *ShareService) RequestAccess(ctx context.Context, token, requesterAddr string) error {
	file, unlock, err := s.lockedResolve(ctx, token)
	if err != nil {
		return err
	}
	defer unlock()

	code, err := common.MakeVerificationCode()
	if err != nil {
		return common.ErrorInternal
	}
	expiry := s.now().Add(s.codeValidity)

	owner, err := s.repomanager.Users(s.db).GetByID(ctx, file.OwnerID)
	if err != nil {
		return common.ErrorInternal
	}

	msg, err := notify.NewShareCodeMessage(notify.ShareCode{
		OwnerEmail:    owner.Email,
		FileName:      file.Name,
		Code:          code,
		RequesterAddr: requesterAddr,
		ValidFor:      s.codeValidity,
	})
	if err != nil {
		return common.ErrorInternal
	}

	if err := s.notifier.Notify(ctx, msg); err != nil {
		return err
	}

	if err := s.repomanager.Files(s.db).SetVerificationChallenge(ctx, file.ID, code, expiry); err != nil {
		return fmt.Errorf("error saving verification challenge: %v", err)
	}
	return nil
}

// VerifyAccess checks the code against the file's live challenge and, on
// success, appends one access record with the requester address. The code is
// not consumed: repeat verifications keep succeeding until the challenge
// expires or is overwritten.
func (s *ShareService) VerifyAccess(ctx context.Context, token, code, requesterAddr string) (*models.File, error) {
	file, unlock, err := s.lockedResolve(ctx, token)
	if err != nil {
		return nil, err
	}
	defer unlock()

	if !s.codeMatches(file, code) {
		return nil, common.ErrInvalidOrExpired
	}

	repo := s.repomanager.Files(s.db)
	if err := repo.AppendAccessRecord(ctx, file.ID, requesterAddr, s.now()); err != nil {
		return nil, fmt.Errorf("error recording access: %v", err)
	}
	return file, nil
}

// ResolveAccess re-checks the code for a shared download and returns the file
// record. It does not append to the audit trail; the verification step that
// preceded the download already did.
func (s *ShareService) ResolveAccess(ctx context.Context, token, code string) (*models.File, error) {
	file, err := s.resolveShare(ctx, token)
	if err != nil {
		return nil, err
	}
	if !s.codeMatches(file, code) {
		return nil, common.ErrInvalidOrExpired
	}
	return file, nil
}

// AccessHistory returns the append-only audit trail of the owner's file.
func (s *ShareService) AccessHistory(ctx context.Context, ownerID, fileID string) ([]*models.AccessRecord, error) {
	repo := s.repomanager.Files(s.db)
	file, err := repo.GetByIDAndOwner(ctx, fileID, ownerID)
	if err != nil {
		return nil, err
	}
	return repo.ListAccessRecords(ctx, file.ID)
}

// lockedResolve resolves the token, takes the file's lock, and resolves the
// token again. The second read is the one callers act on: the first only
// discovers the lock key, so any challenge-slot write that landed between
// the two reads is visible once the lock is held.
func (s *ShareService) lockedResolve(ctx context.Context, token string) (*models.File, func(), error) {
	file, err := s.resolveShare(ctx, token)
	if err != nil {
		return nil, nil, err
	}

	unlock := s.locker.Lock(file.ID)
	file, err = s.resolveShare(ctx, token)
	if err != nil {
		unlock()
		return nil, nil, err
	}
	return file, unlock, nil
}

// resolveShare maps a token to its file record, requiring the grant expiry to
// be strictly in the future. An expiry equal to now is already expired.
func (s *ShareService) resolveShare(ctx context.Context, token string) (*models.File, error) {
	if token == "" {
		return nil, common.ErrInvalidOrExpired
	}

	file, err := s.repomanager.Files(s.db).GetByShareToken(ctx, token)
	if err != nil {
		return nil, common.ErrInvalidOrExpired
	}
	if !file.ShareExpiry.After(s.now()) {
		return nil, common.ErrInvalidOrExpired
	}
	return file, nil
}

func (s *ShareService) codeMatches(file *models.File, code string) bool {
	if file.VerificationCode == "" || code == "" {
		return false
	}
	if !file.VerificationCodeExpiry.After(s.now()) {
		return false
	}
	return subtle.ConstantTimeCompare([]byte(file.VerificationCode), []byte(code)) == 1
}
