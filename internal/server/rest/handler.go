package rest

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/dmitrijs2005/secureshare/internal/common"
	"github.com/dmitrijs2005/secureshare/internal/server/models"
)

func (s *Server) routes() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("POST /api/auth/register", s.handleRegister)
	mux.HandleFunc("POST /api/auth/login", s.handleLogin)

	mux.Handle("GET /api/profile", s.requireAuth(s.handleProfile))
	mux.Handle("PUT /api/profile", s.requireAuth(s.handleUpdateProfile))
	mux.Handle("PUT /api/profile/password", s.requireAuth(s.handleUpdatePassword))

	mux.Handle("GET /api/files", s.requireAuth(s.handleList))
	mux.Handle("POST /api/files/upload", s.requireAuth(s.handleUpload))
	mux.Handle("GET /api/files/{id}/download", s.requireAuth(s.handleDownload))
	mux.Handle("DELETE /api/files/{id}", s.requireAuth(s.handleDelete))
	mux.Handle("POST /api/files/{id}/share", s.requireAuth(s.handleShare))
	mux.Handle("GET /api/files/{id}/access", s.requireAuth(s.handleAccessHistory))

	mux.HandleFunc("GET /api/share/{token}/info", s.handleShareInfo)
	mux.HandleFunc("POST /api/share/{token}/request-access", s.handleRequestAccess)
	mux.HandleFunc("POST /api/share/{token}/verify-access", s.handleVerifyAccess)
	mux.HandleFunc("GET /api/share/{token}/download", s.handleSharedDownload)

	return s.logRequests(mux)
}

// --- DTOs ---

type registerRequest struct {
	UserName string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

type loginRequest struct {
	UserName string `json:"username"`
	Password string `json:"password"`
}

type userResponse struct {
	ID        string    `json:"id"`
	UserName  string    `json:"username"`
	Email     string    `json:"email"`
	CreatedAt time.Time `json:"created_at"`
}

type updateProfileRequest struct {
	UserName string `json:"username"`
}

type updatePasswordRequest struct {
	CurrentPassword string `json:"current_password"`
	NewPassword     string `json:"new_password"`
}

type loginResponse struct {
	AccessToken string       `json:"access_token"`
	User        userResponse `json:"user"`
}

type fileResponse struct {
	ID          string     `json:"id"`
	Name        string     `json:"name"`
	ContentType string     `json:"content_type"`
	Size        int64      `json:"size"`
	UploadedAt  time.Time  `json:"uploaded_at"`
	Shared      bool       `json:"shared"`
	ShareExpiry *time.Time `json:"share_expiry,omitempty"`
}

type shareResponse struct {
	ShareToken  string    `json:"share_token"`
	ShareURL    string    `json:"share_url"`
	ShareExpiry time.Time `json:"share_expiry"`
}

type shareInfoResponse struct {
	FileName    string `json:"file_name"`
	ContentType string `json:"content_type"`
	FileSize    int64  `json:"file_size"`
	SharedBy    string `json:"shared_by"`
}

type verifyRequest struct {
	Code string `json:"code"`
}

type accessRecordResponse struct {
	IPAddress  string    `json:"ip_address"`
	AccessTime time.Time `json:"access_time"`
}

type messageResponse struct {
	Message string `json:"message"`
}

func newUserResponse(u *models.User) userResponse {
	return userResponse{ID: u.ID, UserName: u.UserName, Email: u.Email, CreatedAt: u.CreatedAt}
}

func newFileResponse(f *models.File) fileResponse {
	resp := fileResponse{
		ID:          f.ID,
		Name:        f.Name,
		ContentType: f.ContentType,
		Size:        f.Size,
		UploadedAt:  f.UploadedAt,
	}
	if f.ShareToken != "" && f.ShareExpiry.After(time.Now()) {
		resp.Shared = true
		expiry := f.ShareExpiry
		resp.ShareExpiry = &expiry
	}
	return resp
}

// --- auth ---

func (s *Server) handleRegister(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}
	if req.UserName == "" || req.Email == "" || req.Password == "" {
		http.Error(w, "username, email and password are required", http.StatusBadRequest)
		return
	}

	user, err := s.users.Register(r.Context(), req.UserName, req.Email, req.Password)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	s.writeJSON(w, http.StatusCreated, newUserResponse(user))
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}

	user, token, err := s.users.Login(r.Context(), req.UserName, req.Password)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	s.writeJSON(w, http.StatusOK, loginResponse{
		AccessToken: token,
		User:        newUserResponse(user),
	})
}

// --- profile routes ---

func (s *Server) handleProfile(w http.ResponseWriter, r *http.Request) {
	user, err := s.users.Profile(r.Context(), userIDFromContext(r.Context()))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusOK, newUserResponse(user))
}

func (s *Server) handleUpdateProfile(w http.ResponseWriter, r *http.Request) {
	var req updateProfileRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}
	if req.UserName == "" {
		http.Error(w, "username is required", http.StatusBadRequest)
		return
	}

	user, err := s.users.UpdateUserName(r.Context(), userIDFromContext(r.Context()), req.UserName)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusOK, newUserResponse(user))
}

func (s *Server) handleUpdatePassword(w http.ResponseWriter, r *http.Request) {
	var req updatePasswordRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}
	if req.CurrentPassword == "" || req.NewPassword == "" {
		http.Error(w, "current and new passwords are required", http.StatusBadRequest)
		return
	}

	if err := s.users.UpdatePassword(r.Context(), userIDFromContext(r.Context()), req.CurrentPassword, req.NewPassword); err != nil {
		s.writeError(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusOK, messageResponse{Message: "password updated"})
}

// --- owner file routes ---

func (s *Server) handleList(w http.ResponseWriter, r *http.Request) {
	list, err := s.files.List(r.Context(), userIDFromContext(r.Context()))
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	resp := make([]fileResponse, 0, len(list))
	for _, f := range list {
		resp = append(resp, newFileResponse(f))
	}
	s.writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleUpload(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, s.maxUploadBytes)

	src, header, err := r.FormFile("file")
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			http.Error(w, "file too large", http.StatusRequestEntityTooLarge)
			return
		}
		http.Error(w, "multipart field \"file\" is required", http.StatusBadRequest)
		return
	}
	defer src.Close()

	spool, err := os.CreateTemp(s.spoolDir, "upload_*")
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	defer os.Remove(spool.Name())

	if _, err := io.Copy(spool, src); err != nil {
		spool.Close()
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			http.Error(w, "file too large", http.StatusRequestEntityTooLarge)
			return
		}
		s.writeError(w, r, err)
		return
	}
	if err := spool.Close(); err != nil {
		s.writeError(w, r, err)
		return
	}

	contentType := header.Header.Get("Content-Type")
	if contentType == "" {
		contentType = "application/octet-stream"
	}

	file, err := s.files.Upload(r.Context(), userIDFromContext(r.Context()), header.Filename, contentType, spool.Name())
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	s.writeJSON(w, http.StatusCreated, newFileResponse(file))
}

func (s *Server) handleDownload(w http.ResponseWriter, r *http.Request) {
	file, rc, release, err := s.files.Download(r.Context(), userIDFromContext(r.Context()), r.PathValue("id"))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	defer release()

	s.streamFile(w, r, file, rc)
}

func (s *Server) handleDelete(w http.ResponseWriter, r *http.Request) {
	if err := s.files.Delete(r.Context(), userIDFromContext(r.Context()), r.PathValue("id")); err != nil {
		s.writeError(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusOK, messageResponse{Message: "file deleted"})
}

func (s *Server) handleShare(w http.ResponseWriter, r *http.Request) {
	file, url, err := s.shares.Share(r.Context(), userIDFromContext(r.Context()), r.PathValue("id"))
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	s.writeJSON(w, http.StatusOK, shareResponse{
		ShareToken:  file.ShareToken,
		ShareURL:    url,
		ShareExpiry: file.ShareExpiry,
	})
}

func (s *Server) handleAccessHistory(w http.ResponseWriter, r *http.Request) {
	records, err := s.shares.AccessHistory(r.Context(), userIDFromContext(r.Context()), r.PathValue("id"))
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	resp := make([]accessRecordResponse, 0, len(records))
	for _, rec := range records {
		resp = append(resp, accessRecordResponse{IPAddress: rec.IPAddress, AccessTime: rec.AccessTime})
	}
	s.writeJSON(w, http.StatusOK, resp)
}

// --- public share routes ---

func (s *Server) handleShareInfo(w http.ResponseWriter, r *http.Request) {
	file, owner, err := s.shares.Info(r.Context(), r.PathValue("token"))
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	s.writeJSON(w, http.StatusOK, shareInfoResponse{
		FileName:    file.Name,
		ContentType: file.ContentType,
		FileSize:    file.Size,
		SharedBy:    owner.UserName,
	})
}

func (s *Server) handleRequestAccess(w http.ResponseWriter, r *http.Request) {
	if err := s.shares.RequestAccess(r.Context(), r.PathValue("token"), requesterAddr(r)); err != nil {
		s.writeError(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusOK, messageResponse{Message: "verification code sent to file owner"})
}

func (s *Server) handleVerifyAccess(w http.ResponseWriter, r *http.Request) {
	var req verifyRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}

	if _, err := s.shares.VerifyAccess(r.Context(), r.PathValue("token"), req.Code, requesterAddr(r)); err != nil {
		s.writeError(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusOK, messageResponse{Message: "access verified"})
}

func (s *Server) handleSharedDownload(w http.ResponseWriter, r *http.Request) {
	code := r.URL.Query().Get("code")
	if code == "" {
		http.Error(w, "query parameter \"code\" is required", http.StatusBadRequest)
		return
	}

	file, err := s.shares.ResolveAccess(r.Context(), r.PathValue("token"), code)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	rc, release, err := s.files.DownloadShared(r.Context(), file)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	defer release()

	s.streamFile(w, r, file, rc)
}

// --- helpers ---

// streamFile copies decrypted content to the client. The caller holds the
// release callback; the deferred call covers completed, failed, and aborted
// streams alike.
func (s *Server) streamFile(w http.ResponseWriter, r *http.Request, file *models.File, rc io.Reader) {
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", file.Name))
	w.Header().Set("Content-Type", file.ContentType)
	w.Header().Set("Content-Length", strconv.FormatInt(file.Size, 10))

	if _, err := io.Copy(w, rc); err != nil {
		// Headers are already out; all we can do is note the broken stream.
		s.logger.Warn(r.Context(), "download stream interrupted", "file_id", file.ID, "error", err.Error())
	}
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.logger.Error(context.Background(), "response encoding error", "error", err.Error())
	}
}

func (s *Server) writeError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, common.ErrInvalidOrExpired):
		http.Error(w, "share link invalid or expired", http.StatusNotFound)
	case errors.Is(err, common.ErrorNotFound):
		http.Error(w, "not found", http.StatusNotFound)
	case errors.Is(err, common.ErrorUnauthorized), errors.Is(err, common.ErrInvalidToken):
		http.Error(w, "unauthorized", http.StatusUnauthorized)
	case errors.Is(err, common.ErrorConflict):
		http.Error(w, "username is already taken", http.StatusConflict)
	case errors.Is(err, common.ErrNotifierFailure):
		s.logger.Error(r.Context(), "notifier failure", "error", err.Error())
		http.Error(w, "could not notify file owner", http.StatusBadGateway)
	default:
		s.logger.Error(r.Context(), "request failed", "method", r.Method, "path", r.URL.Path, "error", err.Error())
		http.Error(w, "internal error", http.StatusInternalServerError)
	}
}

// requesterAddr extracts the client address, honoring X-Forwarded-For when a
// proxy sits in front.
func requesterAddr(r *http.Request) string {
	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		if i := strings.IndexByte(xff, ','); i >= 0 {
			return strings.TrimSpace(xff[:i])
		}
		return strings.TrimSpace(xff)
	}
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
