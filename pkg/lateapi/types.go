// Package lateapi implements the client for the remote post-scheduling API.
// The daemon only ever talks to the API through the API interface so the
// approval flow can be exercised against fakes.
package lateapi

import (
	"context"
	"errors"
	"strings"
	"time"
)

// Account is a connected social account posts can be published through.
type Account struct {
	ID       string `json:"id"`
	Platform string `json:"platform"`
	Username string `json:"username"`
	Active   bool   `json:"active"`
}

// Profile is a brand profile grouping several accounts.
type Profile struct {
	ID       string   `json:"id"`
	Name     string   `json:"name"`
	Accounts []string `json:"accounts"`
}

// Post is a scheduled or published remote post.
type Post struct {
	ID           string     `json:"id"`
	Platform     string     `json:"platform"`
	AccountID    string     `json:"account_id"`
	Content      string     `json:"content"`
	ScheduledFor *time.Time `json:"scheduled_for,omitempty"`
	PublishedURL string     `json:"published_url,omitempty"`
	Status       string     `json:"status"`
}

// Media is a hosted media reference returned by UploadMedia.
type Media struct {
	URL  string `json:"url"`
	Type string `json:"type"`
}

// TikTokOptions carries the consent and visibility flags TikTok requires on
// every created post.
type TikTokOptions struct {
	PrivacyLevel      string `json:"privacy_level"`
	AllowComments     bool   `json:"allow_comments"`
	CommercialContent bool   `json:"commercial_content"`
	BrandOrganic      bool   `json:"brand_organic"`
}

// CreatePostParams is the input for CreatePost.
type CreatePostParams struct {
	Platform     string         `json:"platform"`
	AccountID    string         `json:"account_id"`
	Content      string         `json:"content"`
	ScheduledFor time.Time      `json:"scheduled_for"`
	MediaURL     string         `json:"media_url,omitempty"`
	Hashtags     []string       `json:"hashtags,omitempty"`
	TikTok       *TikTokOptions `json:"tiktok,omitempty"`
}

// UpdatePostFields is the partial update input for UpdatePost.
type UpdatePostFields struct {
	Content      string     `json:"content,omitempty"`
	ScheduledFor *time.Time `json:"scheduled_for,omitempty"`
}

// ListPostsFilter narrows ListPosts.
type ListPostsFilter struct {
	Platform  string `json:"platform,omitempty"`
	AccountID string `json:"account_id,omitempty"`
	Status    string `json:"status,omitempty"`
}

// API is the surface of the remote posting service the daemon depends on.
type API interface {
	ListAccounts(ctx context.Context) ([]Account, error)
	ListProfiles(ctx context.Context) ([]Profile, error)
	ListPosts(ctx context.Context, filter ListPostsFilter) ([]Post, error)
	CreatePost(ctx context.Context, params CreatePostParams) (*Post, error)
	UploadMedia(ctx context.Context, path string) (*Media, error)
	DeletePost(ctx context.Context, id string) error
	UpdatePost(ctx context.Context, id string, fields UpdatePostFields) (*Post, error)
}

// Error is a non-success response from the posting API.
type Error struct {
	Status  int
	Message string
}

func (e *Error) Error() string {
	if e.Message != "" {
		return e.Message
	}
	return "posting api request failed"
}

// RateLimited reports whether this error signals quota exhaustion: HTTP 429
// or a recognized "daily limit" message.
func (e *Error) RateLimited() bool {
	if e.Status == 429 {
		return true
	}
	return strings.Contains(strings.ToLower(e.Message), "daily limit")
}

// IsRateLimited reports whether err is, or wraps, a quota-exhaustion API
// error.
func IsRateLimited(err error) bool {
	var le *Error
	return errors.As(err, &le) && le.RateLimited()
}
