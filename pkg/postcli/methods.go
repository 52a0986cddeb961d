package postcli

import (
	"encoding/json"

	"github.com/postline/postline/common"
)

func invoke[T any](c *Client, method common.UpdateType, message any) (*T, error) {
	resp, err := c.invoke(method, message)
	if err != nil {
		return nil, err
	}
	var d T
	return &d, json.Unmarshal(resp, &d)
}

// List returns queue items. With nil opts it lists pending items flat.
func (c *Client) List(opts *common.ListParams) (*common.ListResponse, error) {
	if opts == nil {
		opts = &common.ListParams{}
	}
	return invoke[common.ListResponse](c, common.UPDATE_LIST, opts)
}

// Get fetches a single pending item by id.
func (c *Client) Get(itemId string) (*common.ItemResponse, error) {
	return invoke[common.ItemResponse](c, common.UPDATE_GET, &common.InputItemId{ItemId: itemId})
}

// Create adds a new item to the review queue.
func (c *Client) Create(params *common.CreateParams) (*common.ItemResponse, error) {
	return invoke[common.ItemResponse](c, common.UPDATE_CREATE, params)
}

// Update edits a pending item's content or metadata.
func (c *Client) Update(params *common.UpdateParams) (*common.ItemResponse, error) {
	return invoke[common.ItemResponse](c, common.UPDATE_UPDATE, params)
}

// Approve schedules the given items and commits successes to published.
func (c *Client) Approve(itemIds ...string) (*common.ApproveResponse, error) {
	return invoke[common.ApproveResponse](c, common.UPDATE_APPROVE, &common.ApproveParams{ItemIds: itemIds})
}

// Reject discards a pending item. Rejecting an unknown id is not an error.
func (c *Client) Reject(itemId string) (*common.RejectResponse, error) {
	return invoke[common.RejectResponse](c, common.UPDATE_REJECT, &common.InputItemId{ItemId: itemId})
}

// Exists reports which queue root holds the item, if any.
func (c *Client) Exists(itemId string) (*common.ExistsResponse, error) {
	return invoke[common.ExistsResponse](c, common.UPDATE_EXISTS, &common.InputItemId{ItemId: itemId})
}

// NextSlot previews upcoming free posting instants for a platform.
func (c *Client) NextSlot(params *common.NextSlotParams) (*common.NextSlotResponse, error) {
	return invoke[common.NextSlotResponse](c, common.UPDATE_NEXT_SLOT, params)
}

// Calendar projects upcoming slots across all platforms.
func (c *Client) Calendar(days int) (*common.CalendarResponse, error) {
	return invoke[common.CalendarResponse](c, common.UPDATE_CALENDAR, &common.CalendarParams{Days: days})
}

// Stop asks the daemon to shut down.
func (c *Client) Stop() error {
	_, err := c.invoke(common.UPDATE_STOP, nil)
	return err
}
