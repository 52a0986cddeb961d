package common

import (
	"time"

	"github.com/postline/postline/pkg/postlib"
)

type InputItemId struct {
	ItemId string `json:"item_id"`
}

type CreateParams struct {
	ItemId      string   `json:"item_id,omitempty"`
	Platform    string   `json:"platform"`
	AccountId   string   `json:"account_id,omitempty"`
	SourceVideo string   `json:"source_video,omitempty"`
	SourceClip  string   `json:"source_clip,omitempty"`
	ClipType    string   `json:"clip_type,omitempty"`
	Hashtags    []string `json:"hashtags,omitempty"`
	Links       []string `json:"links,omitempty"`
	PostContent string   `json:"post_content"`
	MediaPath   string   `json:"media_path,omitempty"`
}

type ItemResponse struct {
	Item *postlib.QueueItem `json:"item"`
}

type ListParams struct {
	Grouped       bool `json:"grouped,omitempty"`
	ShowPublished bool `json:"show_published,omitempty"`
}

type ListResponse struct {
	Items  []*postlib.QueueItem `json:"items,omitempty"`
	Groups []*postlib.ItemGroup `json:"groups,omitempty"`
}

type UpdateParams struct {
	ItemId      string                `json:"item_id"`
	PostContent *string               `json:"post_content,omitempty"`
	Metadata    *postlib.MetadataEdit `json:"metadata,omitempty"`
}

type ApproveParams struct {
	ItemIds []string `json:"item_ids"`
}

type ApproveResponse struct {
	Result *postlib.ApprovalResult `json:"result"`
}

type RejectResponse struct {
	ItemId   string `json:"item_id"`
	Rejected bool   `json:"rejected"`
}

type NextSlotParams struct {
	Platform string `json:"platform"`
	ClipType string `json:"clip_type,omitempty"`
	Count    int    `json:"count,omitempty"`
}

type NextSlotResponse struct {
	Platform string      `json:"platform"`
	Slots    []time.Time `json:"slots"`
}

type CalendarParams struct {
	Days int `json:"days,omitempty"`
}

type CalendarResponse struct {
	Entries []*postlib.CalendarEntry `json:"entries"`
}

type ExistsResponse struct {
	ItemId string            `json:"item_id"`
	State  postlib.ItemState `json:"state"`
}
