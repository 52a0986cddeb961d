package lateapi

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"time"
)

// DefaultBaseURL is the production endpoint of the posting API.
const DefaultBaseURL = "https://getlate.dev/api/v1"

// Client is the HTTP implementation of the API interface. Transport retry
// and timeout policy lives here, not in the approval flow.
type Client struct {
	hc      *http.Client
	baseURL string
	token   string
}

// ClientOpts are optional Client settings.
type ClientOpts struct {
	BaseURL string
	Timeout time.Duration
}

// NewClient creates a Client authenticating with the given bearer token.
func NewClient(token string, opts *ClientOpts) *Client {
	if opts == nil {
		opts = &ClientOpts{}
	}
	baseURL := opts.BaseURL
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	timeout := opts.Timeout
	if timeout == 0 {
		timeout = 30 * time.Second
	}
	return &Client{
		hc:      &http.Client{Timeout: timeout},
		baseURL: baseURL,
		token:   token,
	}
}

// ListAccounts returns the connected social accounts.
func (c *Client) ListAccounts(ctx context.Context) ([]Account, error) {
	var res struct {
		Accounts []Account `json:"accounts"`
	}
	if err := c.do(ctx, http.MethodGet, "/accounts", nil, nil, &res); err != nil {
		return nil, err
	}
	return res.Accounts, nil
}

// ListProfiles returns the configured brand profiles.
func (c *Client) ListProfiles(ctx context.Context) ([]Profile, error) {
	var res struct {
		Profiles []Profile `json:"profiles"`
	}
	if err := c.do(ctx, http.MethodGet, "/profiles", nil, nil, &res); err != nil {
		return nil, err
	}
	return res.Profiles, nil
}

// ListPosts returns remote posts matching the filter.
func (c *Client) ListPosts(ctx context.Context, filter ListPostsFilter) ([]Post, error) {
	q := url.Values{}
	if filter.Platform != "" {
		q.Set("platform", filter.Platform)
	}
	if filter.AccountID != "" {
		q.Set("account_id", filter.AccountID)
	}
	if filter.Status != "" {
		q.Set("status", filter.Status)
	}
	var res struct {
		Posts []Post `json:"posts"`
	}
	if err := c.do(ctx, http.MethodGet, "/posts", q, nil, &res); err != nil {
		return nil, err
	}
	return res.Posts, nil
}

// CreatePost schedules a new remote post.
func (c *Client) CreatePost(ctx context.Context, params CreatePostParams) (*Post, error) {
	var post Post
	if err := c.do(ctx, http.MethodPost, "/posts", nil, params, &post); err != nil {
		return nil, err
	}
	return &post, nil
}

// DeletePost removes a scheduled remote post.
func (c *Client) DeletePost(ctx context.Context, id string) error {
	return c.do(ctx, http.MethodDelete, "/posts/"+url.PathEscape(id), nil, nil, nil)
}

// UpdatePost partially updates a scheduled remote post.
func (c *Client) UpdatePost(ctx context.Context, id string, fields UpdatePostFields) (*Post, error) {
	var post Post
	if err := c.do(ctx, http.MethodPatch, "/posts/"+url.PathEscape(id), nil, fields, &post); err != nil {
		return nil, err
	}
	return &post, nil
}

// UploadMedia uploads a local media file and returns its hosted reference.
func (c *Client) UploadMedia(ctx context.Context, path string) (*Media, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open media: %w", err)
	}
	defer f.Close()

	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	part, err := mw.CreateFormFile("file", filepath.Base(path))
	if err != nil {
		return nil, err
	}
	if _, err := io.Copy(part, f); err != nil {
		return nil, fmt.Errorf("read media: %w", err)
	}
	if err := mw.Close(); err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/media", &body)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", "Bearer "+c.token)
	req.Header.Set("Content-Type", mw.FormDataContentType())

	res, err := c.hc.Do(req)
	if err != nil {
		return nil, err
	}
	defer res.Body.Close()
	b, err := io.ReadAll(res.Body)
	if err != nil {
		return nil, err
	}
	if res.StatusCode >= 400 {
		return nil, apiError(res.StatusCode, b)
	}
	var media Media
	if err := json.Unmarshal(b, &media); err != nil {
		return nil, fmt.Errorf("decode media response: %w", err)
	}
	return &media, nil
}

func (c *Client) do(ctx context.Context, method, endpoint string, query url.Values, payload, out any) error {
	var body io.Reader
	if payload != nil {
		b, err := json.Marshal(payload)
		if err != nil {
			return err
		}
		body = bytes.NewReader(b)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+endpoint, body)
	if err != nil {
		return err
	}
	req.Header.Set("Authorization", "Bearer "+c.token)
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if query != nil {
		req.URL.RawQuery = query.Encode()
	}

	res, err := c.hc.Do(req)
	if err != nil {
		return err
	}
	defer res.Body.Close()
	b, err := io.ReadAll(res.Body)
	if err != nil {
		return err
	}
	if res.StatusCode >= 400 {
		return apiError(res.StatusCode, b)
	}
	if out == nil {
		return nil
	}
	if err := json.Unmarshal(b, out); err != nil {
		return fmt.Errorf("decode %s response: %w", endpoint, err)
	}
	return nil
}

// apiError extracts the server's message field when present so the raw
// reason is surfaced verbatim to the per-item result.
func apiError(status int, body []byte) *Error {
	var r struct {
		Message string `json:"message"`
		Error   string `json:"error"`
	}
	_ = json.Unmarshal(body, &r)
	msg := r.Message
	if msg == "" {
		msg = r.Error
	}
	if msg == "" {
		msg = fmt.Sprintf("posting api request failed (status=%d)", status)
	}
	return &Error{Status: status, Message: msg}
}

var _ API = (*Client)(nil)
