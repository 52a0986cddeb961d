package postlib

import (
	"errors"
	"testing"
	"time"

	"github.com/spf13/afero"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	store, err := NewStore(afero.NewMemMapFs(), "out")
	if err != nil {
		t.Fatalf("NewStore: %v", err)
	}
	return store
}

func mustCreate(t *testing.T, s *Store, id, platform string, createdAt time.Time) *QueueItem {
	t.Helper()
	item, err := s.CreateItem(ItemMetadata{
		ID:        id,
		Platform:  platform,
		CreatedAt: createdAt,
	}, "post body for "+id, "")
	if err != nil {
		t.Fatalf("CreateItem %s: %v", id, err)
	}
	return item
}

// TestCreateAndGetItem verifies a created item round-trips through the
// filesystem with its content and pending status.
func TestCreateAndGetItem(t *testing.T) {
	s := newTestStore(t)
	created := mustCreate(t, s, "item-1", "youtube", time.Now())

	if created.Status != StatusPendingReview {
		t.Fatalf("expected pending_review status, got %s", created.Status)
	}
	got, err := s.GetItem("item-1")
	if err != nil {
		t.Fatalf("GetItem: %v", err)
	}
	if got == nil {
		t.Fatalf("expected item, got nil")
	}
	if got.PostContent != "post body for item-1" {
		t.Fatalf("unexpected content %q", got.PostContent)
	}
	if got.CharacterCount != len("post body for item-1") {
		t.Fatalf("expected character count %d, got %d", len("post body for item-1"), got.CharacterCount)
	}
	if s.ItemExists("item-1") != StatePending {
		t.Fatalf("expected item-1 in pending state")
	}
}

// TestGetItemAbsent verifies an unknown id returns nil without error.
func TestGetItemAbsent(t *testing.T) {
	s := newTestStore(t)
	got, err := s.GetItem("ghost")
	if err != nil {
		t.Fatalf("GetItem: %v", err)
	}
	if got != nil {
		t.Fatalf("expected nil for absent id, got %+v", got)
	}
}

// TestCreateItemIdCollision verifies creating over a live id fails loudly,
// including when the collision is with a published item.
func TestCreateItemIdCollision(t *testing.T) {
	s := newTestStore(t)
	mustCreate(t, s, "item-1", "youtube", time.Now())

	if _, err := s.CreateItem(ItemMetadata{ID: "item-1", Platform: "youtube"}, "dup", ""); !errors.Is(err, ErrItemExists) {
		t.Fatalf("expected ErrItemExists, got %v", err)
	}

	if _, err := s.ApproveItem("item-1", Approval{LatePostID: "lp-1", ScheduledFor: time.Now()}); err != nil {
		t.Fatalf("ApproveItem: %v", err)
	}
	if _, err := s.CreateItem(ItemMetadata{ID: "item-1", Platform: "youtube"}, "dup", ""); !errors.Is(err, ErrItemExists) {
		t.Fatalf("expected ErrItemExists against published item, got %v", err)
	}
}

// TestCreateItemCopiesMedia verifies the media file is copied into the item
// directory and surfaced through HasMedia/MediaPath.
func TestCreateItemCopiesMedia(t *testing.T) {
	fs := afero.NewMemMapFs()
	if err := afero.WriteFile(fs, "clips/take1.mp4", []byte("fake video bytes"), 0644); err != nil {
		t.Fatalf("write media fixture: %v", err)
	}
	s, err := NewStore(fs, "out")
	if err != nil {
		t.Fatalf("NewStore: %v", err)
	}

	item, err := s.CreateItem(ItemMetadata{ID: "item-1", Platform: "tiktok"}, "body", "clips/take1.mp4")
	if err != nil {
		t.Fatalf("CreateItem: %v", err)
	}
	if !item.HasMedia {
		t.Fatalf("expected HasMedia")
	}
	b, err := afero.ReadFile(fs, item.MediaPath)
	if err != nil {
		t.Fatalf("read copied media: %v", err)
	}
	if string(b) != "fake video bytes" {
		t.Fatalf("media copy corrupted: %q", b)
	}
}

// TestPendingItemsSortedByCreatedAt verifies listing order is ascending
// CreatedAt regardless of creation (and therefore enumeration) order.
func TestPendingItemsSortedByCreatedAt(t *testing.T) {
	s := newTestStore(t)
	base := time.Date(2026, time.September, 1, 12, 0, 0, 0, time.UTC)
	mustCreate(t, s, "newest", "youtube", base.Add(2*time.Hour))
	mustCreate(t, s, "oldest", "youtube", base)
	mustCreate(t, s, "middle", "youtube", base.Add(time.Hour))

	items, err := s.GetPendingItems()
	if err != nil {
		t.Fatalf("GetPendingItems: %v", err)
	}
	want := []string{"oldest", "middle", "newest"}
	if len(items) != len(want) {
		t.Fatalf("expected %d items, got %d", len(want), len(items))
	}
	for i, id := range want {
		if items[i].ID != id {
			t.Fatalf("position %d: expected %s, got %s", i, id, items[i].ID)
		}
	}
}

// TestGroupedPendingItems verifies grouping clusters by source video and
// clip while preserving review order.
func TestGroupedPendingItems(t *testing.T) {
	s := newTestStore(t)
	base := time.Date(2026, time.September, 1, 12, 0, 0, 0, time.UTC)
	for i, spec := range []struct {
		id, video, clip string
	}{
		{"a", "vid1", "clip1"},
		{"b", "vid1", "clip2"},
		{"c", "vid1", "clip1"},
		{"d", "vid2", "clip1"},
	} {
		if _, err := s.CreateItem(ItemMetadata{
			ID:          spec.id,
			Platform:    "youtube",
			SourceVideo: spec.video,
			SourceClip:  spec.clip,
			CreatedAt:   base.Add(time.Duration(i) * time.Minute),
		}, "body", ""); err != nil {
			t.Fatalf("CreateItem %s: %v", spec.id, err)
		}
	}

	groups, err := s.GetGroupedPendingItems()
	if err != nil {
		t.Fatalf("GetGroupedPendingItems: %v", err)
	}
	if len(groups) != 3 {
		t.Fatalf("expected 3 groups, got %d", len(groups))
	}
	if groups[0].SourceClip != "clip1" || len(groups[0].Items) != 2 {
		t.Fatalf("expected first group vid1/clip1 with 2 items, got %+v", groups[0])
	}
	if groups[0].Items[0].ID != "a" || groups[0].Items[1].ID != "c" {
		t.Fatalf("expected review order a,c within group, got %s,%s",
			groups[0].Items[0].ID, groups[0].Items[1].ID)
	}
}

// TestUpdateItemMergesMetadata verifies UpdateItem shallow-merges edits and
// stamps ReviewedAt, and returns nil for an absent id.
func TestUpdateItemMergesMetadata(t *testing.T) {
	s := newTestStore(t)
	mustCreate(t, s, "item-1", "youtube", time.Now())

	content := "rewritten body"
	account := "acct-9"
	updated, err := s.UpdateItem("item-1", ItemUpdate{
		PostContent: &content,
		Metadata:    &MetadataEdit{AccountID: &account},
	})
	if err != nil {
		t.Fatalf("UpdateItem: %v", err)
	}
	if updated.PostContent != content {
		t.Fatalf("expected updated content, got %q", updated.PostContent)
	}
	if updated.AccountID != account {
		t.Fatalf("expected merged account id, got %q", updated.AccountID)
	}
	if updated.Platform != "youtube" {
		t.Fatalf("untouched field changed: platform %q", updated.Platform)
	}
	if updated.ReviewedAt == nil {
		t.Fatalf("expected ReviewedAt to be stamped")
	}

	absent, err := s.UpdateItem("ghost", ItemUpdate{PostContent: &content})
	if err != nil {
		t.Fatalf("UpdateItem absent: %v", err)
	}
	if absent != nil {
		t.Fatalf("expected nil for absent id")
	}
}

// TestApproveTransition verifies the pending->published move: the pending
// copy disappears, the published one carries the remote identifiers, and
// PublishedAt is stamped.
func TestApproveTransition(t *testing.T) {
	s := newTestStore(t)
	mustCreate(t, s, "item-1", "youtube", time.Now())

	slot := time.Date(2026, time.September, 3, 9, 0, 0, 0, time.UTC)
	approved, err := s.ApproveItem("item-1", Approval{
		LatePostID:   "lp-42",
		ScheduledFor: slot,
		PublishedURL: "https://youtu.be/xyz",
	})
	if err != nil {
		t.Fatalf("ApproveItem: %v", err)
	}
	if approved.Status != StatusPublished {
		t.Fatalf("expected published status, got %s", approved.Status)
	}
	if approved.LatePostID != "lp-42" || approved.PublishedAt == nil {
		t.Fatalf("expected remote identifiers stamped, got %+v", approved.ItemMetadata)
	}
	if approved.ScheduledFor == nil || !approved.ScheduledFor.Equal(slot) {
		t.Fatalf("expected scheduledFor %v, got %v", slot, approved.ScheduledFor)
	}

	if got, _ := s.GetItem("item-1"); got != nil {
		t.Fatalf("expected no pending item after approval")
	}
	if s.ItemExists("item-1") != StatePublished {
		t.Fatalf("expected item-1 in published state")
	}
}

// TestApproveAbsent verifies approving an unknown id reports ErrItemNotFound.
func TestApproveAbsent(t *testing.T) {
	s := newTestStore(t)
	if _, err := s.ApproveItem("ghost", Approval{LatePostID: "lp"}); !errors.Is(err, ErrItemNotFound) {
		t.Fatalf("expected ErrItemNotFound, got %v", err)
	}
}

// TestApproveBulk verifies the batched commit moves every id.
func TestApproveBulk(t *testing.T) {
	s := newTestStore(t)
	mustCreate(t, s, "a", "youtube", time.Now())
	mustCreate(t, s, "b", "tiktok", time.Now())

	slot := time.Date(2026, time.September, 3, 9, 0, 0, 0, time.UTC)
	err := s.ApproveBulk([]string{"a", "b"}, map[string]Approval{
		"a": {LatePostID: "lp-a", ScheduledFor: slot},
		"b": {LatePostID: "lp-b", ScheduledFor: slot.Add(3 * time.Hour)},
	})
	if err != nil {
		t.Fatalf("ApproveBulk: %v", err)
	}
	if s.ItemExists("a") != StatePublished || s.ItemExists("b") != StatePublished {
		t.Fatalf("expected both items published")
	}

	published, err := s.GetPublishedItems()
	if err != nil {
		t.Fatalf("GetPublishedItems: %v", err)
	}
	if len(published) != 2 {
		t.Fatalf("expected 2 published items, got %d", len(published))
	}
}

// TestRejectTransition verifies rejection removes the item without a trace
// and that rejecting an absent id is a silent no-op.
func TestRejectTransition(t *testing.T) {
	s := newTestStore(t)
	mustCreate(t, s, "item-1", "youtube", time.Now())

	if err := s.RejectItem("item-1"); err != nil {
		t.Fatalf("RejectItem: %v", err)
	}
	if s.ItemExists("item-1") != StateAbsent {
		t.Fatalf("expected item-1 to be gone")
	}
	if err := s.RejectItem("item-1"); err != nil {
		t.Fatalf("RejectItem on absent id should be a no-op, got %v", err)
	}
}
