// Package api implements the HTTP client for the server's REST API.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// Client talks to one server. Authenticated calls require a token set via
// SetToken (obtained from Login).
type Client struct {
	baseURL string
	token   string
	http    *http.Client
}

func New(baseURL string) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: 60 * time.Second},
	}
}

func (c *Client) SetToken(token string) { c.token = token }

// --- DTOs mirrored from the server ---

type User struct {
	ID        string    `json:"id"`
	UserName  string    `json:"username"`
	Email     string    `json:"email"`
	CreatedAt time.Time `json:"created_at"`
}

type loginResponse struct {
	AccessToken string `json:"access_token"`
	User        User   `json:"user"`
}

type FileInfo struct {
	ID          string     `json:"id"`
	Name        string     `json:"name"`
	ContentType string     `json:"content_type"`
	Size        int64      `json:"size"`
	UploadedAt  time.Time  `json:"uploaded_at"`
	Shared      bool       `json:"shared"`
	ShareExpiry *time.Time `json:"share_expiry,omitempty"`
}

type ShareGrant struct {
	ShareToken  string    `json:"share_token"`
	ShareURL    string    `json:"share_url"`
	ShareExpiry time.Time `json:"share_expiry"`
}

type ShareInfo struct {
	FileName    string `json:"file_name"`
	ContentType string `json:"content_type"`
	FileSize    int64  `json:"file_size"`
	SharedBy    string `json:"shared_by"`
}

type AccessRecord struct {
	IPAddress  string    `json:"ip_address"`
	AccessTime time.Time `json:"access_time"`
}

type messageResponse struct {
	Message string `json:"message"`
}

// --- operations ---

func (c *Client) Register(ctx context.Context, username, email, password string) (*User, error) {
	var out User
	err := c.doJSON(ctx, http.MethodPost, "/api/auth/register",
		map[string]string{"username": username, "email": email, "password": password}, &out)
	if err != nil {
		return nil, err
	}
	return &out, nil
}

// Login authenticates and stores the returned token on the client.
func (c *Client) Login(ctx context.Context, username, password string) (string, *User, error) {
	var out loginResponse
	err := c.doJSON(ctx, http.MethodPost, "/api/auth/login",
		map[string]string{"username": username, "password": password}, &out)
	if err != nil {
		return "", nil, err
	}
	c.token = out.AccessToken
	return out.AccessToken, &out.User, nil
}

func (c *Client) Profile(ctx context.Context) (*User, error) {
	var out User
	if err := c.doJSON(ctx, http.MethodGet, "/api/profile", nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// UpdateUserName renames the account and returns the updated record.
func (c *Client) UpdateUserName(ctx context.Context, username string) (*User, error) {
	var out User
	err := c.doJSON(ctx, http.MethodPut, "/api/profile",
		map[string]string{"username": username}, &out)
	if err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) UpdatePassword(ctx context.Context, currentPassword, newPassword string) error {
	return c.doJSON(ctx, http.MethodPut, "/api/profile/password",
		map[string]string{"current_password": currentPassword, "new_password": newPassword}, nil)
}

func (c *Client) ListFiles(ctx context.Context) ([]FileInfo, error) {
	var out []FileInfo
	if err := c.doJSON(ctx, http.MethodGet, "/api/files", nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// Upload sends the local file at path as a multipart upload.
func (c *Client) Upload(ctx context.Context, path string) (*FileInfo, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	part, err := mw.CreateFormFile("file", filepath.Base(path))
	if err != nil {
		return nil, err
	}
	if _, err := io.Copy(part, f); err != nil {
		return nil, err
	}
	if err := mw.Close(); err != nil {
		return nil, err
	}

	req, err := c.newRequest(ctx, http.MethodPost, "/api/files/upload", &buf)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", mw.FormDataContentType())

	var out FileInfo
	if err := c.send(req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Download fetches the decrypted file into dir and returns the path written.
func (c *Client) Download(ctx context.Context, fileID, dir string) (string, error) {
	return c.downloadTo(ctx, fmt.Sprintf("/api/files/%s/download", fileID), dir)
}

func (c *Client) Delete(ctx context.Context, fileID string) error {
	return c.doJSON(ctx, http.MethodDelete, "/api/files/"+fileID, nil, nil)
}

func (c *Client) Share(ctx context.Context, fileID string) (*ShareGrant, error) {
	var out ShareGrant
	if err := c.doJSON(ctx, http.MethodPost, fmt.Sprintf("/api/files/%s/share", fileID), nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) AccessHistory(ctx context.Context, fileID string) ([]AccessRecord, error) {
	var out []AccessRecord
	if err := c.doJSON(ctx, http.MethodGet, fmt.Sprintf("/api/files/%s/access", fileID), nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) ShareInfo(ctx context.Context, token string) (*ShareInfo, error) {
	var out ShareInfo
	if err := c.doJSON(ctx, http.MethodGet, fmt.Sprintf("/api/share/%s/info", token), nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) RequestAccess(ctx context.Context, token string) (string, error) {
	var out messageResponse
	if err := c.doJSON(ctx, http.MethodPost, fmt.Sprintf("/api/share/%s/request-access", token), nil, &out); err != nil {
		return "", err
	}
	return out.Message, nil
}

func (c *Client) VerifyAccess(ctx context.Context, token, code string) error {
	return c.doJSON(ctx, http.MethodPost, fmt.Sprintf("/api/share/%s/verify-access", token),
		map[string]string{"code": code}, nil)
}

// FetchShared downloads a shared file with a verified code into dir.
func (c *Client) FetchShared(ctx context.Context, token, code, dir string) (string, error) {
	return c.downloadTo(ctx, fmt.Sprintf("/api/share/%s/download?code=%s", token, code), dir)
}

// --- plumbing ---

func (c *Client) newRequest(ctx context.Context, method, path string, body io.Reader) (*http.Request, error) {
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return nil, err
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}
	return req, nil
}

func (c *Client) doJSON(ctx context.Context, method, path string, in, out any) error {
	var body io.Reader
	if in != nil {
		b, err := json.Marshal(in)
		if err != nil {
			return err
		}
		body = bytes.NewReader(b)
	}

	req, err := c.newRequest(ctx, method, path, body)
	if err != nil {
		return err
	}
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	return c.send(req, out)
}

func (c *Client) send(req *http.Request, out any) error {
	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return apiError(resp)
	}
	if out == nil {
		io.Copy(io.Discard, resp.Body)
		return nil
	}
	return json.NewDecoder(resp.Body).Decode(out)
}

func (c *Client) downloadTo(ctx context.Context, path, dir string) (string, error) {
	req, err := c.newRequest(ctx, http.MethodGet, path, nil)
	if err != nil {
		return "", err
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", apiError(resp)
	}

	name := fileNameFromDisposition(resp.Header.Get("Content-Disposition"))
	if name == "" {
		name = "download"
	}
	dst := filepath.Join(dir, filepath.Base(name))

	f, err := os.OpenFile(dst, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0o600)
	if err != nil {
		return "", err
	}
	if _, err := io.Copy(f, resp.Body); err != nil {
		f.Close()
		os.Remove(dst)
		return "", err
	}
	if err := f.Close(); err != nil {
		os.Remove(dst)
		return "", err
	}
	return dst, nil
}

func apiError(resp *http.Response) error {
	body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
	msg := strings.TrimSpace(string(body))
	if msg == "" {
		msg = resp.Status
	}
	return fmt.Errorf("server responded %d: %s", resp.StatusCode, msg)
}

func fileNameFromDisposition(cd string) string {
	const marker = `filename="`
	i := strings.Index(cd, marker)
	if i < 0 {
		return ""
	}
	rest := cd[i+len(marker):]
	j := strings.IndexByte(rest, '"')
	if j < 0 {
		return ""
	}
	return rest[:j]
}
