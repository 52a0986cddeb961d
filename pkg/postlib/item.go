// Package postlib provides the core structures for managing the post review
// queue: durable queue items on the filesystem, the weekly schedule template,
// the slot allocator, and the serialized approval queue.
package postlib

import (
	"sort"
	"time"
)

// ItemStatus is the lifecycle state of a queue item.
type ItemStatus string

const (
	// StatusPendingReview marks an item awaiting human review under pending/.
	StatusPendingReview ItemStatus = "pending_review"
	// StatusPublished marks an item committed to the remote API under published/.
	StatusPublished ItemStatus = "published"
)

// ItemMetadata holds everything about a queue item except its post body.
// It is serialized as metadata.json inside the item's directory.
type ItemMetadata struct {
	// ID is the unique identifier of the queue item.
	ID string `json:"id"`
	// Platform is the destination platform key, e.g. "youtube" or "tiktok".
	Platform string `json:"platform"`
	// AccountID overrides the platform's default posting account when set.
	AccountID string `json:"account_id,omitempty"`
	// SourceVideo is the identifier of the video this post was cut from.
	SourceVideo string `json:"source_video,omitempty"`
	// SourceClip is the identifier of the clip within the source video.
	SourceClip string `json:"source_clip,omitempty"`
	// ClipType selects a clip-type specific slot table, e.g. "short" or "long".
	ClipType string `json:"clip_type,omitempty"`
	// SourceMediaPath is where the clip's media originally came from.
	SourceMediaPath string `json:"source_media_path,omitempty"`
	// Hashtags attached to the post.
	Hashtags []string `json:"hashtags,omitempty"`
	// Links embedded in the post.
	Links []string `json:"links,omitempty"`
	// CharacterCount is the length of the post content at creation time.
	CharacterCount int `json:"character_count,omitempty"`
	// PlatformCharLimit is the platform's character budget for this post.
	PlatformCharLimit int `json:"platform_char_limit,omitempty"`
	// SuggestedSlot is an advisory posting instant computed at creation time.
	SuggestedSlot *time.Time `json:"suggested_slot,omitempty"`
	// ScheduledFor is the instant the remote post was scheduled at.
	ScheduledFor *time.Time `json:"scheduled_for,omitempty"`
	// Status is the item's lifecycle state.
	Status ItemStatus `json:"status"`
	// LatePostID is the remote post identifier returned by the posting API.
	LatePostID string `json:"late_post_id,omitempty"`
	// PublishedURL is the public URL of the remote post, when known.
	PublishedURL string `json:"published_url,omitempty"`
	// CreatedAt is when the item entered the queue.
	CreatedAt time.Time `json:"created_at"`
	// ReviewedAt is when the item content was last edited.
	ReviewedAt *time.Time `json:"reviewed_at,omitempty"`
	// PublishedAt is when the item was approved and committed.
	PublishedAt *time.Time `json:"published_at,omitempty"`
}

// QueueItem is a queue item materialized from disk. The store owns the
// backing files; callers always receive independent copies.
type QueueItem struct {
	ItemMetadata

	// PostContent is the post body read from post.md.
	PostContent string `json:"post_content"`
	// MediaPath is the absolute path of the item's media file, if any.
	MediaPath string `json:"media_path,omitempty"`
	// HasMedia reports whether a media file is attached to the item.
	HasMedia bool `json:"has_media"`
	// FolderPath is the item's directory on disk.
	FolderPath string `json:"folder_path"`
}

// ItemGroup clusters pending items that were cut from the same source clip,
// so a reviewer sees all platform variants of one clip together.
type ItemGroup struct {
	SourceVideo string       `json:"source_video"`
	SourceClip  string       `json:"source_clip"`
	Items       []*QueueItem `json:"items"`
}

// ItemUpdate carries the fields UpdateItem may change. Nil fields are left
// untouched; metadata is shallow-merged field by field.
type ItemUpdate struct {
	PostContent *string       `json:"post_content,omitempty"`
	Metadata    *MetadataEdit `json:"metadata,omitempty"`
}

// MetadataEdit is the editable subset of ItemMetadata.
type MetadataEdit struct {
	AccountID     *string    `json:"account_id,omitempty"`
	ClipType      *string    `json:"clip_type,omitempty"`
	Hashtags      *[]string  `json:"hashtags,omitempty"`
	Links         *[]string  `json:"links,omitempty"`
	SuggestedSlot *time.Time `json:"suggested_slot,omitempty"`
}

// Approval carries the remote identifiers stamped onto an item when it moves
// from pending to published.
type Approval struct {
	LatePostID   string    `json:"late_post_id"`
	ScheduledFor time.Time `json:"scheduled_for"`
	PublishedURL string    `json:"published_url,omitempty"`
	AccountID    string    `json:"account_id,omitempty"`
}

// ItemSlice attaches sorting by ascending CreatedAt, the stable review order.
type ItemSlice []*QueueItem

func (s ItemSlice) Len() int      { return len(s) }
func (s ItemSlice) Swap(i, j int) { s[i], s[j] = s[j], s[i] }
func (s ItemSlice) Less(i, j int) bool {
	if s[i].CreatedAt.Equal(s[j].CreatedAt) {
		return s[i].ID < s[j].ID
	}
	return s[i].CreatedAt.Before(s[j].CreatedAt)
}

// GroupItems clusters items by source video and clip, preserving the
// ascending CreatedAt order of the input within and across groups.
func GroupItems(items []*QueueItem) []*ItemGroup {
	sort.Sort(ItemSlice(items))
	var groups []*ItemGroup
	index := make(map[string]*ItemGroup)
	for _, item := range items {
		key := item.SourceVideo + "\x00" + item.SourceClip
		g, ok := index[key]
		if !ok {
			g = &ItemGroup{
				SourceVideo: item.SourceVideo,
				SourceClip:  item.SourceClip,
			}
			index[key] = g
			groups = append(groups, g)
		}
		g.Items = append(g.Items, item)
	}
	return groups
}
