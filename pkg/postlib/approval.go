package postlib

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/postline/postline/pkg/lateapi"
)

// ItemResult is the outcome of one item within an approval batch.
type ItemResult struct {
	ItemID       string     `json:"item_id"`
	Success      bool       `json:"success"`
	ScheduledFor *time.Time `json:"scheduled_for,omitempty"`
	LatePostID   string     `json:"late_post_id,omitempty"`
	Error        string     `json:"error,omitempty"`
	RateLimited  bool       `json:"rate_limited,omitempty"`
}

// ApprovalResult summarizes one approval batch.
type ApprovalResult struct {
	Scheduled            int           `json:"scheduled"`
	Failed               int           `json:"failed"`
	Results              []*ItemResult `json:"results"`
	RateLimitedPlatforms []string      `json:"rate_limited_platforms,omitempty"`
}

type approvalJob struct {
	itemIDs []string
	settle  chan *ApprovalResult
}

// ApprovalQueue turns "approve these items" requests into scheduled remote
// posts. All jobs flow through one worker goroutine, so a batch always runs
// to completion before the next one starts; that total ordering is the only
// mechanism preventing two concurrent approvals from racing the allocator
// into a double booking. No locks are needed beyond it.
type ApprovalQueue struct {
	store *Store
	alloc *Allocator
	api   lateapi.API

	ctx  context.Context
	jobs chan *approvalJob
}

// NewApprovalQueue creates the queue and starts its worker. The worker exits
// when ctx is cancelled; jobs still queued at that point settle with a
// shutdown failure instead of hanging their callers.
func NewApprovalQueue(ctx context.Context, store *Store, alloc *Allocator, api lateapi.API) *ApprovalQueue {
	q := &ApprovalQueue{
		store: store,
		alloc: alloc,
		api:   api,
		ctx:   ctx,
		jobs:  make(chan *approvalJob, 64),
	}
	go q.drain()
	return q
}

// Enqueue submits a batch and returns immediately. The returned channel
// settles exactly once with the batch result; it never closes unsettled and
// never delivers an error by itself, per-item failures are inside the result.
func (q *ApprovalQueue) Enqueue(itemIDs []string) <-chan *ApprovalResult {
	job := &approvalJob{
		itemIDs: append([]string(nil), itemIDs...),
		settle:  make(chan *ApprovalResult, 1),
	}
	select {
	case q.jobs <- job:
	case <-q.ctx.Done():
		job.settle <- failAll(job.itemIDs, "approval queue is shut down")
	}
	return job.settle
}

func (q *ApprovalQueue) drain() {
	for {
		select {
		case <-q.ctx.Done():
			// Keep settling submissions after shutdown so an Enqueue that
			// raced the cancellation never leaves its caller hanging. The
			// queue lives for the daemon's lifetime, so this loop ends with
			// the process.
			for job := range q.jobs {
				job.settle <- failAll(job.itemIDs, "approval queue is shut down")
			}
			return
		case job := <-q.jobs:
			job.settle <- q.runJob(job.itemIDs)
		}
	}
}

// runJob executes one batch, converting a panic into uniform failures for
// every id that has no result yet so the settle channel always fires and the
// drain loop survives to the next job.
func (q *ApprovalQueue) runJob(ids []string) (res *ApprovalResult) {
	res = &ApprovalResult{}
	defer func() {
		r := recover()
		if r == nil {
			return
		}
		log.Printf("postlib: approval batch recovered: %v", r)
		seen := make(map[string]bool, len(res.Results))
		for _, ir := range res.Results {
			seen[ir.ItemID] = true
		}
		for _, id := range ids {
			if !seen[id] {
				res.Results = append(res.Results, &ItemResult{
					ItemID: id,
					Error:  fmt.Sprintf("internal error: %v", r),
				})
			}
		}
		tally(res)
	}()
	q.processBatch(ids, res)
	tally(res)
	return res
}

// processBatch walks the batch in order. A single item's failure never
// aborts the loop; a rate-limited platform short-circuits the rest of its
// items without further allocator or API calls.
func (q *ApprovalQueue) processBatch(ids []string, res *ApprovalResult) {
	cfg, err := q.alloc.Schedules.Load()
	if err != nil {
		for _, id := range ids {
			res.Results = append(res.Results, &ItemResult{ItemID: id, Error: err.Error()})
		}
		return
	}
	loc := cfg.Location()

	booked, err := q.buildBookedSet(loc)
	if err != nil {
		for _, id := range ids {
			res.Results = append(res.Results, &ItemResult{ItemID: id, Error: err.Error()})
		}
		return
	}

	rateLimited := make(map[string]bool)
	var stagedIDs []string
	staged := make(map[string]Approval)

	for _, id := range ids {
		item, err := q.store.GetItem(id)
		if err != nil {
			res.Results = append(res.Results, &ItemResult{ItemID: id, Error: err.Error()})
			continue
		}
		if item == nil {
			res.Results = append(res.Results, &ItemResult{ItemID: id, Error: "item not found"})
			continue
		}
		platform := item.Platform

		if rateLimited[platform] {
			res.Results = append(res.Results, &ItemResult{
				ItemID:      id,
				Error:       "platform " + platform + " is rate limited",
				RateLimited: true,
			})
			continue
		}

		slot, err := q.alloc.NextSlot(platform, item.ClipType, booked)
		if err != nil {
			res.Results = append(res.Results, &ItemResult{ItemID: id, Error: err.Error()})
			continue
		}

		accountID, err := q.resolveAccount(item)
		if err != nil {
			res.Results = append(res.Results, &ItemResult{ItemID: id, Error: err.Error()})
			continue
		}

		var mediaURL string
		if item.HasMedia {
			media, err := q.api.UploadMedia(q.ctx, item.MediaPath)
			if err != nil {
				res.Results = append(res.Results, &ItemResult{
					ItemID: id,
					Error:  "media upload failed: " + err.Error(),
				})
				continue
			}
			mediaURL = media.URL
		}

		post, err := q.api.CreatePost(q.ctx, buildPostParams(item, accountID, slot, mediaURL))
		if err != nil {
			if lateapi.IsRateLimited(err) {
				rateLimited[platform] = true
				res.RateLimitedPlatforms = append(res.RateLimitedPlatforms, platform)
				res.Results = append(res.Results, &ItemResult{
					ItemID:      id,
					Error:       (&RateLimitError{Platform: platform, Message: err.Error()}).Error(),
					RateLimited: true,
				})
			} else {
				res.Results = append(res.Results, &ItemResult{ItemID: id, Error: err.Error()})
			}
			continue
		}

		booked.Reserve(platform, slot, loc)
		stagedIDs = append(stagedIDs, id)
		staged[id] = Approval{
			LatePostID:   post.ID,
			ScheduledFor: slot,
			PublishedURL: post.PublishedURL,
			AccountID:    accountID,
		}
		scheduled := slot
		res.Results = append(res.Results, &ItemResult{
			ItemID:       id,
			Success:      true,
			ScheduledFor: &scheduled,
			LatePostID:   post.ID,
		})
	}

	q.commit(stagedIDs, staged, res)
}

// commit moves the staged successes to published in one store pass.
func (q *ApprovalQueue) commit(ids []string, staged map[string]Approval, res *ApprovalResult) {
	var err error
	switch len(ids) {
	case 0:
		return
	case 1:
		_, err = q.store.ApproveItem(ids[0], staged[ids[0]])
	default:
		err = q.store.ApproveBulk(ids, staged)
	}
	if err == nil {
		return
	}
	// The remote posts exist but the local move failed; surface it on every
	// staged item so the caller can reconcile.
	failed := make(map[string]bool, len(ids))
	for _, id := range ids {
		failed[id] = true
	}
	for _, ir := range res.Results {
		if failed[ir.ItemID] {
			ir.Success = false
			ir.Error = "commit failed: " + err.Error()
		}
	}
}

// CommittedBookings derives the booked set allocation must respect right
// now: the store's published items plus the remote service's scheduled
// posts. Read-only callers (slot preview, calendar) use it to see the same
// world the next approval batch will.
func (q *ApprovalQueue) CommittedBookings() (*BookedSet, error) {
	cfg, err := q.alloc.Schedules.Load()
	if err != nil {
		return nil, err
	}
	return q.buildBookedSet(cfg.Location())
}

// buildBookedSet derives the committed bookings from published items in the
// store plus the remote API's own view of scheduled posts. A remote listing
// failure degrades to store-only data rather than blocking the batch.
func (q *ApprovalQueue) buildBookedSet(loc *time.Location) (*BookedSet, error) {
	booked := NewBookedSet()
	published, err := q.store.GetPublishedItems()
	if err != nil {
		return nil, err
	}
	for _, item := range published {
		if item.ScheduledFor != nil {
			booked.Add(item.Platform, *item.ScheduledFor, loc)
		}
	}
	posts, err := q.api.ListPosts(q.ctx, lateapi.ListPostsFilter{Status: "scheduled"})
	if err != nil {
		log.Printf("postlib: remote post listing failed, using store bookings only: %v", err)
		return booked, nil
	}
	for _, p := range posts {
		if p.ScheduledFor != nil {
			booked.Add(p.Platform, *p.ScheduledFor, loc)
		}
	}
	return booked, nil
}

func (q *ApprovalQueue) resolveAccount(item *QueueItem) (string, error) {
	if item.AccountID != "" {
		return item.AccountID, nil
	}
	sched, err := q.alloc.Schedules.PlatformSchedule(item.Platform, item.ClipType)
	if err != nil {
		return "", err
	}
	if sched.DefaultAccount == "" {
		return "", ErrNoAccount
	}
	return sched.DefaultAccount, nil
}

func buildPostParams(item *QueueItem, accountID string, slot time.Time, mediaURL string) lateapi.CreatePostParams {
	params := lateapi.CreatePostParams{
		Platform:     item.Platform,
		AccountID:    accountID,
		Content:      item.PostContent,
		ScheduledFor: slot,
		MediaURL:     mediaURL,
		Hashtags:     item.Hashtags,
	}
	if item.Platform == "tiktok" {
		params.TikTok = &lateapi.TikTokOptions{
			PrivacyLevel:  "PUBLIC_TO_EVERYONE",
			AllowComments: true,
		}
	}
	return params
}

func failAll(ids []string, msg string) *ApprovalResult {
	res := &ApprovalResult{}
	for _, id := range ids {
		res.Results = append(res.Results, &ItemResult{ItemID: id, Error: msg})
	}
	tally(res)
	return res
}

func tally(res *ApprovalResult) {
	res.Scheduled, res.Failed = 0, 0
	for _, ir := range res.Results {
		if ir.Success {
			res.Scheduled++
		} else {
			res.Failed++
		}
	}
}
