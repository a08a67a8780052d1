package api

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLogin_SetsToken(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/api/auth/login", r.URL.Path)
		var req map[string]string
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "alice", req["username"])

		json.NewEncoder(w).Encode(loginResponse{
			AccessToken: "tok123",
			User:        User{ID: "u1", UserName: "alice"},
		})
	}))
	defer srv.Close()

	c := New(srv.URL)
	token, user, err := c.Login(context.Background(), "alice", "pw")
	require.NoError(t, err)
	assert.Equal(t, "tok123", token)
	assert.Equal(t, "alice", user.UserName)
	assert.Equal(t, "tok123", c.token)
}

func TestListFiles_SendsBearerToken(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "Bearer tok123", r.Header.Get("Authorization"))
		json.NewEncoder(w).Encode([]FileInfo{{ID: "f1", Name: "a.txt"}})
	}))
	defer srv.Close()

	c := New(srv.URL)
	c.SetToken("tok123")

	files, err := c.ListFiles(context.Background())
	require.NoError(t, err)
	require.Len(t, files, 1)
	assert.Equal(t, "a.txt", files[0].Name)
}

func TestUpdatePassword_SendsBothPasswords(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPut, r.Method)
		require.Equal(t, "/api/profile/password", r.URL.Path)
		var req map[string]string
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "old", req["current_password"])
		assert.Equal(t, "new", req["new_password"])
		json.NewEncoder(w).Encode(messageResponse{Message: "password updated"})
	}))
	defer srv.Close()

	c := New(srv.URL)
	c.SetToken("tok123")
	require.NoError(t, c.UpdatePassword(context.Background(), "old", "new"))
}

func TestUpload_SendsMultipart(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/api/files/upload", r.URL.Path)
		file, header, err := r.FormFile("file")
		require.NoError(t, err)
		defer file.Close()

		assert.Equal(t, "payload.txt", header.Filename)
		var buf bytes.Buffer
		buf.ReadFrom(file)
		assert.Equal(t, "contents", buf.String())

		w.WriteHeader(http.StatusCreated)
		json.NewEncoder(w).Encode(FileInfo{ID: "f1", Name: header.Filename})
	}))
	defer srv.Close()

	path := filepath.Join(t.TempDir(), "payload.txt")
	require.NoError(t, os.WriteFile(path, []byte("contents"), 0o600))

	c := New(srv.URL)
	c.SetToken("tok")
	info, err := c.Upload(context.Background(), path)
	require.NoError(t, err)
	assert.Equal(t, "f1", info.ID)
}

func TestDownload_UsesDispositionName(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Disposition", `attachment; filename="report.pdf"`)
		w.Write([]byte("decrypted bytes"))
	}))
	defer srv.Close()

	dir := t.TempDir()
	c := New(srv.URL)
	c.SetToken("tok")

	path, err := c.Download(context.Background(), "f1", dir)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "report.pdf"), path)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "decrypted bytes", string(data))
}

func TestAPIError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "share link invalid or expired", http.StatusNotFound)
	}))
	defer srv.Close()

	c := New(srv.URL)
	_, err := c.ShareInfo(context.Background(), "deadbeef")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "404")
	assert.Contains(t, err.Error(), "share link invalid or expired")
}

func TestVerifyAccess(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/api/share/tok123/verify-access", r.URL.Path)
		var req map[string]string
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "123456", req["code"])
		json.NewEncoder(w).Encode(messageResponse{Message: "access verified"})
	}))
	defer srv.Close()

	c := New(srv.URL)
	require.NoError(t, c.VerifyAccess(context.Background(), "tok123", "123456"))
}
