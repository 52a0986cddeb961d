package server

import (
	"context"
	"time"

	"github.com/creachadair/jrpc2"
	"github.com/creachadair/jrpc2/handler"
	"github.com/creachadair/jrpc2/jhttp"
	"github.com/google/uuid"

	"github.com/postline/postline/pkg/postlib"
)

// Custom JSON-RPC error codes for queue operations.
const (
	codeItemNotFound    = jrpc2.Code(-32001)
	codeNoAvailableSlot = jrpc2.Code(-32002)
	codeInvalidParams   = jrpc2.Code(-32602)
)

// RPCConfig holds configuration for the JSON-RPC endpoint.
type RPCConfig struct {
	Secret    string // Auth token (required -- empty means RPC disabled)
	ListenAll bool   // If true, bind to 0.0.0.0 instead of 127.0.0.1
	Version   string // Daemon version
}

// RPCServer manages the JSON-RPC 2.0 bridge and method handlers.
type RPCServer struct {
	bridge    jhttp.Bridge
	methods   handler.Map
	notifier  *RPCNotifier
	secret    string
	listenAll bool
	version   string
	store     *postlib.Store
	alloc     *postlib.Allocator
	queue     *postlib.ApprovalQueue
}

// VersionResult is the response for system.getVersion.
type VersionResult struct {
	Version string `json:"version"`
}

// ItemParam is a common input with just an item id.
type ItemParam struct {
	ID string `json:"id"`
}

// ItemResult is the response for queue.get and queue.create.
type ItemResult struct {
	Item *postlib.QueueItem `json:"item"`
}

// QueueListParams is the input for queue.list.
type QueueListParams struct {
	Status string `json:"status,omitempty"` // "pending" (default), "published", "all"
}

// QueueListResult is the response for queue.list.
type QueueListResult struct {
	Items []*postlib.QueueItem `json:"items"`
}

// QueueCreateParams is the input for queue.create.
type QueueCreateParams struct {
	ID          string   `json:"id,omitempty"`
	Platform    string   `json:"platform"`
	AccountID   string   `json:"accountId,omitempty"`
	SourceVideo string   `json:"sourceVideo,omitempty"`
	SourceClip  string   `json:"sourceClip,omitempty"`
	ClipType    string   `json:"clipType,omitempty"`
	Hashtags    []string `json:"hashtags,omitempty"`
	Links       []string `json:"links,omitempty"`
	PostContent string   `json:"postContent"`
	MediaPath   string   `json:"mediaPath,omitempty"`
}

// QueueUpdateParams is the input for queue.update.
type QueueUpdateParams struct {
	ID          string                `json:"id"`
	PostContent *string               `json:"postContent,omitempty"`
	Metadata    *postlib.MetadataEdit `json:"metadata,omitempty"`
}

// QueueApproveParams is the input for queue.approve.
type QueueApproveParams struct {
	IDs []string `json:"ids"`
}

// NextSlotParams is the input for schedule.nextSlot.
type NextSlotParams struct {
	Platform string `json:"platform"`
	ClipType string `json:"clipType,omitempty"`
	Count    int    `json:"count,omitempty"`
}

// NextSlotResult is the response for schedule.nextSlot.
type NextSlotResult struct {
	Platform string      `json:"platform"`
	Slots    []time.Time `json:"slots"`
}

// CalendarParams is the input for schedule.calendar.
type CalendarParams struct {
	Days int `json:"days,omitempty"`
}

// CalendarResult is the response for schedule.calendar.
type CalendarResult struct {
	Entries []*postlib.CalendarEntry `json:"entries"`
}

// EmptyResult is a placeholder for methods that return no data.
type EmptyResult struct{}

// NewRPCServer creates a new RPCServer with method handlers and HTTP bridge.
func NewRPCServer(cfg *RPCConfig, store *postlib.Store, alloc *postlib.Allocator, queue *postlib.ApprovalQueue, notifier *RPCNotifier) *RPCServer {
	rs := &RPCServer{
		secret:    cfg.Secret,
		listenAll: cfg.ListenAll,
		version:   cfg.Version,
		store:     store,
		alloc:     alloc,
		queue:     queue,
		notifier:  notifier,
	}

	rs.methods = handler.Map{
		"system.getVersion": handler.New(rs.systemGetVersion),
		"queue.list":        handler.New(rs.queueList),
		"queue.get":         handler.New(rs.queueGet),
		"queue.create":      handler.New(rs.queueCreate),
		"queue.update":      handler.New(rs.queueUpdate),
		"queue.approve":     handler.New(rs.queueApprove),
		"queue.reject":      handler.New(rs.queueReject),
		"schedule.nextSlot": handler.New(rs.scheduleNextSlot),
		"schedule.calendar": handler.New(rs.scheduleCalendar),
	}

	rs.bridge = jhttp.NewBridge(rs.methods, nil)
	return rs
}

func (rs *RPCServer) systemGetVersion(_ context.Context) (*VersionResult, error) {
	return &VersionResult{Version: rs.version}, nil
}

// queueList returns queue items, pending by default.
func (rs *RPCServer) queueList(_ context.Context, p *QueueListParams) (*QueueListResult, error) {
	var items []*postlib.QueueItem
	var err error
	switch p.Status {
	case "", "pending":
		items, err = rs.store.GetPendingItems()
	case "published":
		items, err = rs.store.GetPublishedItems()
	case "all":
		items, err = rs.store.GetPendingItems()
		if err == nil {
			var published []*postlib.QueueItem
			published, err = rs.store.GetPublishedItems()
			items = append(items, published...)
		}
	default:
		return nil, &jrpc2.Error{Code: codeInvalidParams, Message: "unknown status: " + p.Status}
	}
	if err != nil {
		return nil, err
	}
	return &QueueListResult{Items: items}, nil
}

// queueGet returns a single pending item.
func (rs *RPCServer) queueGet(_ context.Context, p *ItemParam) (*ItemResult, error) {
	item, err := rs.store.GetItem(p.ID)
	if err != nil {
		return nil, err
	}
	if item == nil {
		return nil, &jrpc2.Error{Code: codeItemNotFound, Message: "item not found"}
	}
	return &ItemResult{Item: item}, nil
}

// queueCreate adds a new item to the review queue.
func (rs *RPCServer) queueCreate(_ context.Context, p *QueueCreateParams) (*ItemResult, error) {
	if p.Platform == "" {
		return nil, &jrpc2.Error{Code: codeInvalidParams, Message: "missing required param: platform"}
	}
	if p.PostContent == "" {
		return nil, &jrpc2.Error{Code: codeInvalidParams, Message: "missing required param: postContent"}
	}
	id := p.ID
	if id == "" {
		id = uuid.NewString()
	}
	item, err := rs.store.CreateItem(postlib.ItemMetadata{
		ID:          id,
		Platform:    p.Platform,
		AccountID:   p.AccountID,
		SourceVideo: p.SourceVideo,
		SourceClip:  p.SourceClip,
		ClipType:    p.ClipType,
		Hashtags:    p.Hashtags,
		Links:       p.Links,
	}, p.PostContent, p.MediaPath)
	if err != nil {
		return nil, &jrpc2.Error{Code: codeInvalidParams, Message: err.Error()}
	}
	if rs.notifier != nil {
		rs.notifier.Broadcast("queue.itemCreated", &ItemCreatedNotification{
			ID:       item.ID,
			Platform: item.Platform,
		})
	}
	return &ItemResult{Item: item}, nil
}

// queueUpdate edits a pending item's content or metadata.
func (rs *RPCServer) queueUpdate(_ context.Context, p *QueueUpdateParams) (*ItemResult, error) {
	item, err := rs.store.UpdateItem(p.ID, postlib.ItemUpdate{
		PostContent: p.PostContent,
		Metadata:    p.Metadata,
	})
	if err != nil {
		return nil, err
	}
	if item == nil {
		return nil, &jrpc2.Error{Code: codeItemNotFound, Message: "item not found"}
	}
	return &ItemResult{Item: item}, nil
}

// queueApprove runs an approval batch and pushes a completion notification
// to connected WebSocket clients.
func (rs *RPCServer) queueApprove(_ context.Context, p *QueueApproveParams) (*postlib.ApprovalResult, error) {
	if len(p.IDs) == 0 {
		return nil, &jrpc2.Error{Code: codeInvalidParams, Message: "missing required param: ids"}
	}
	res := <-rs.queue.Enqueue(p.IDs)
	if rs.notifier != nil {
		rs.notifier.Broadcast("queue.approvalCompleted", &ApprovalCompletedNotification{
			Scheduled:            res.Scheduled,
			Failed:               res.Failed,
			RateLimitedPlatforms: res.RateLimitedPlatforms,
		})
	}
	return res, nil
}

// queueReject removes a pending item. Rejecting an unknown id succeeds.
func (rs *RPCServer) queueReject(_ context.Context, p *ItemParam) (*EmptyResult, error) {
	if err := rs.store.RejectItem(p.ID); err != nil {
		return nil, err
	}
	if rs.notifier != nil {
		rs.notifier.Broadcast("queue.itemRejected", &ItemRejectedNotification{ID: p.ID})
	}
	return &EmptyResult{}, nil
}

// scheduleNextSlot previews the next free posting instants for a platform.
func (rs *RPCServer) scheduleNextSlot(_ context.Context, p *NextSlotParams) (*NextSlotResult, error) {
	if p.Platform == "" {
		return nil, &jrpc2.Error{Code: codeInvalidParams, Message: "missing required param: platform"}
	}
	count := p.Count
	if count <= 0 {
		count = 1
	}
	booked, err := rs.queue.CommittedBookings()
	if err != nil {
		return nil, err
	}
	slots, err := rs.alloc.AvailableSlots(p.Platform, p.ClipType, count, booked)
	if err != nil {
		return nil, err
	}
	if len(slots) == 0 {
		return nil, &jrpc2.Error{Code: codeNoAvailableSlot, Message: postlib.ErrNoAvailableSlot.Error()}
	}
	return &NextSlotResult{Platform: p.Platform, Slots: slots}, nil
}

// scheduleCalendar projects upcoming slots across all platforms.
func (rs *RPCServer) scheduleCalendar(_ context.Context, p *CalendarParams) (*CalendarResult, error) {
	booked, err := rs.queue.CommittedBookings()
	if err != nil {
		return nil, err
	}
	entries, err := rs.alloc.Calendar(p.Days, booked)
	if err != nil {
		return nil, err
	}
	return &CalendarResult{Entries: entries}, nil
}

// Close shuts down the jrpc2 bridge, releasing internal goroutines.
func (rs *RPCServer) Close() {
	rs.bridge.Close()
}
