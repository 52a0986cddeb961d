package postlib

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/spf13/afero"
)

const (
	pendingDir   = "pending"
	publishedDir = "published"

	metadataFile = "metadata.json"
	contentFile  = "post.md"
	mediaPrefix  = "media"
)

// ItemState reports which root an item currently lives in.
type ItemState string

const (
	// StatePending means the item directory is under pending/.
	StatePending ItemState = "pending"
	// StatePublished means the item directory is under published/.
	StatePublished ItemState = "published"
	// StateAbsent means no live item has this id.
	StateAbsent ItemState = ""
)

// Store is the durable queue: one directory per item under either the
// pending or the published root, never both. Moving the directory between
// the roots is the lifecycle transition, so a crash can never leave an item
// half-approved.
type Store struct {
	fs   afero.Fs
	root string
	now  func() time.Time
	mu   sync.Mutex
}

// NewStore opens (creating if needed) the queue rooted at outputDir/queue.
func NewStore(fs afero.Fs, outputDir string) (*Store, error) {
	s := &Store{
		fs:   fs,
		root: path.Join(outputDir, "queue"),
		now:  time.Now,
	}
	for _, dir := range []string{pendingDir, publishedDir} {
		if err := fs.MkdirAll(path.Join(s.root, dir), 0755); err != nil {
			return nil, fmt.Errorf("create queue root: %w", err)
		}
	}
	return s, nil
}

func (s *Store) itemDir(state ItemState, id string) string {
	root := pendingDir
	if state == StatePublished {
		root = publishedDir
	}
	return path.Join(s.root, root, id)
}

// ItemExists reports which root holds the item, or StateAbsent.
func (s *Store) ItemExists(id string) ItemState {
	if ok, _ := afero.DirExists(s.fs, s.itemDir(StatePending, id)); ok {
		return StatePending
	}
	if ok, _ := afero.DirExists(s.fs, s.itemDir(StatePublished, id)); ok {
		return StatePublished
	}
	return StateAbsent
}

// CreateItem materializes a new pending item: directory, metadata.json,
// post.md and an optional media copy. An id collision with any live item is
// a caller bug and fails loudly with ErrItemExists.
func (s *Store) CreateItem(meta ItemMetadata, content, mediaPath string) (*QueueItem, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if meta.ID == "" {
		return nil, fmt.Errorf("create item: id is required")
	}
	if s.ItemExists(meta.ID) != StateAbsent {
		return nil, fmt.Errorf("create item %s: %w", meta.ID, ErrItemExists)
	}

	dir := s.itemDir(StatePending, meta.ID)
	if err := s.fs.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("create item dir: %w", err)
	}
	meta.Status = StatusPendingReview
	if meta.CreatedAt.IsZero() {
		meta.CreatedAt = s.now()
	}
	meta.CharacterCount = len([]rune(content))

	if mediaPath != "" {
		if err := s.copyMedia(dir, mediaPath); err != nil {
			_ = s.fs.RemoveAll(dir)
			return nil, err
		}
	}
	if err := afero.WriteFile(s.fs, path.Join(dir, contentFile), []byte(content), 0644); err != nil {
		_ = s.fs.RemoveAll(dir)
		return nil, fmt.Errorf("write post content: %w", err)
	}
	if err := s.writeMetadata(dir, &meta); err != nil {
		_ = s.fs.RemoveAll(dir)
		return nil, err
	}
	return s.readItem(dir, &meta)
}

// GetItem returns the pending item with this id, or nil if absent. Published
// items are not returned here; the review surface only edits pending ones.
func (s *Store) GetItem(id string) (*QueueItem, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.getPending(id)
}

func (s *Store) getPending(id string) (*QueueItem, error) {
	dir := s.itemDir(StatePending, id)
	if ok, _ := afero.DirExists(s.fs, dir); !ok {
		return nil, nil
	}
	return s.loadItem(dir)
}

// GetPendingItems lists pending items sorted ascending by CreatedAt,
// regardless of how the filesystem enumerates the directories.
func (s *Store) GetPendingItems() ([]*QueueItem, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	entries, err := afero.ReadDir(s.fs, path.Join(s.root, pendingDir))
	if err != nil {
		return nil, fmt.Errorf("list pending: %w", err)
	}
	items := make([]*QueueItem, 0, len(entries))
	for _, e := range entries {
		if !e.IsDir() {
			continue
		}
		item, err := s.loadItem(path.Join(s.root, pendingDir, e.Name()))
		if err != nil {
			return nil, err
		}
		items = append(items, item)
	}
	sort.Sort(ItemSlice(items))
	return items, nil
}

// GetGroupedPendingItems clusters pending items by their source clip.
func (s *Store) GetGroupedPendingItems() ([]*ItemGroup, error) {
	items, err := s.GetPendingItems()
	if err != nil {
		return nil, err
	}
	return GroupItems(items), nil
}

// UpdateItem applies an edit to a pending item and stamps ReviewedAt.
// Returns nil for an absent id.
func (s *Store) UpdateItem(id string, upd ItemUpdate) (*QueueItem, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	item, err := s.getPending(id)
	if err != nil || item == nil {
		return nil, err
	}
	dir := s.itemDir(StatePending, id)
	meta := item.ItemMetadata

	if upd.PostContent != nil {
		if err := afero.WriteFile(s.fs, path.Join(dir, contentFile), []byte(*upd.PostContent), 0644); err != nil {
			return nil, fmt.Errorf("write post content: %w", err)
		}
		meta.CharacterCount = len([]rune(*upd.PostContent))
	}
	if m := upd.Metadata; m != nil {
		if m.AccountID != nil {
			meta.AccountID = *m.AccountID
		}
		if m.ClipType != nil {
			meta.ClipType = *m.ClipType
		}
		if m.Hashtags != nil {
			meta.Hashtags = *m.Hashtags
		}
		if m.Links != nil {
			meta.Links = *m.Links
		}
		if m.SuggestedSlot != nil {
			meta.SuggestedSlot = m.SuggestedSlot
		}
	}
	reviewed := s.now()
	meta.ReviewedAt = &reviewed

	if err := s.writeMetadata(dir, &meta); err != nil {
		return nil, err
	}
	return s.loadItem(dir)
}

// ApproveItem moves the item from pending to published, stamping the remote
// identifiers and PublishedAt. Returns ErrItemNotFound for an absent id.
func (s *Store) ApproveItem(id string, a Approval) (*QueueItem, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.approve(id, a)
}

// ApproveBulk commits several approvals in one pass. It stops at the first
// failing id so a partial batch never goes unreported.
func (s *Store) ApproveBulk(ids []string, approvals map[string]Approval) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, id := range ids {
		a, ok := approvals[id]
		if !ok {
			return fmt.Errorf("approve bulk: no approval fields for %s", id)
		}
		if _, err := s.approve(id, a); err != nil {
			return fmt.Errorf("approve bulk %s: %w", id, err)
		}
	}
	return nil
}

func (s *Store) approve(id string, a Approval) (*QueueItem, error) {
	item, err := s.getPending(id)
	if err != nil {
		return nil, err
	}
	if item == nil {
		return nil, ErrItemNotFound
	}

	meta := item.ItemMetadata
	meta.Status = StatusPublished
	meta.LatePostID = a.LatePostID
	scheduled := a.ScheduledFor
	meta.ScheduledFor = &scheduled
	published := s.now()
	meta.PublishedAt = &published
	if a.PublishedURL != "" {
		meta.PublishedURL = a.PublishedURL
	}
	if a.AccountID != "" {
		meta.AccountID = a.AccountID
	}

	src := s.itemDir(StatePending, id)
	dst := s.itemDir(StatePublished, id)
	if err := s.writeMetadata(src, &meta); err != nil {
		return nil, err
	}
	if err := s.fs.Rename(src, dst); err != nil {
		return nil, fmt.Errorf("move item to published: %w", err)
	}
	return s.loadItem(dst)
}

// RejectItem deletes the item directory recursively. Rejecting an id that is
// already gone is a silent no-op; rejections keep no audit trail.
func (s *Store) RejectItem(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	dir := s.itemDir(StatePending, id)
	if ok, _ := afero.DirExists(s.fs, dir); !ok {
		return nil
	}
	if err := s.fs.RemoveAll(dir); err != nil {
		return fmt.Errorf("reject item %s: %w", id, err)
	}
	return nil
}

// GetPublishedItems lists committed items, most useful for building the
// booked-slot set and for display.
func (s *Store) GetPublishedItems() ([]*QueueItem, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	entries, err := afero.ReadDir(s.fs, path.Join(s.root, publishedDir))
	if err != nil {
		return nil, fmt.Errorf("list published: %w", err)
	}
	items := make([]*QueueItem, 0, len(entries))
	for _, e := range entries {
		if !e.IsDir() {
			continue
		}
		item, err := s.loadItem(path.Join(s.root, publishedDir, e.Name()))
		if err != nil {
			return nil, err
		}
		items = append(items, item)
	}
	sort.Sort(ItemSlice(items))
	return items, nil
}

func (s *Store) writeMetadata(dir string, meta *ItemMetadata) error {
	b, err := json.MarshalIndent(meta, "", "  ")
	if err != nil {
		return fmt.Errorf("encode metadata: %w", err)
	}
	if err := afero.WriteFile(s.fs, path.Join(dir, metadataFile), append(b, '\n'), 0644); err != nil {
		return fmt.Errorf("write metadata: %w", err)
	}
	return nil
}

func (s *Store) loadItem(dir string) (*QueueItem, error) {
	b, err := afero.ReadFile(s.fs, path.Join(dir, metadataFile))
	if err != nil {
		return nil, fmt.Errorf("read metadata: %w", err)
	}
	var meta ItemMetadata
	if err := json.Unmarshal(b, &meta); err != nil {
		return nil, fmt.Errorf("decode metadata %s: %w", dir, err)
	}
	return s.readItem(dir, &meta)
}

func (s *Store) readItem(dir string, meta *ItemMetadata) (*QueueItem, error) {
	content, err := afero.ReadFile(s.fs, path.Join(dir, contentFile))
	if err != nil && !os.IsNotExist(err) {
		return nil, fmt.Errorf("read post content: %w", err)
	}
	item := &QueueItem{
		ItemMetadata: *meta,
		PostContent:  string(content),
		FolderPath:   dir,
	}
	if media := s.findMedia(dir); media != "" {
		item.MediaPath = media
		item.HasMedia = true
	}
	return item, nil
}

func (s *Store) findMedia(dir string) string {
	entries, err := afero.ReadDir(s.fs, dir)
	if err != nil {
		return ""
	}
	for _, e := range entries {
		name := e.Name()
		if e.IsDir() || name == metadataFile || name == contentFile {
			continue
		}
		if strings.HasPrefix(name, mediaPrefix+".") {
			return path.Join(dir, name)
		}
	}
	return ""
}

func (s *Store) copyMedia(dir, mediaPath string) error {
	src, err := s.fs.Open(mediaPath)
	if err != nil {
		return fmt.Errorf("open media: %w", err)
	}
	defer src.Close()

	ext := path.Ext(mediaPath)
	if ext == "" {
		ext = ".bin"
	}
	dst, err := s.fs.Create(path.Join(dir, mediaPrefix+ext))
	if err != nil {
		return fmt.Errorf("create media copy: %w", err)
	}
	defer dst.Close()
	if _, err := io.Copy(dst, src); err != nil {
		return fmt.Errorf("copy media: %w", err)
	}
	return nil
}
