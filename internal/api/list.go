package api

import (
	"encoding/json"

	"github.com/postline/postline/common"
	"github.com/postline/postline/internal/server"
	"github.com/postline/postline/pkg/postlib"
)

func (s *Api) listHandler(sconn *server.SyncConn, body json.RawMessage) (common.UpdateType, any, error) {
	var m common.ListParams
	if err := json.Unmarshal(body, &m); err != nil {
		return common.UPDATE_LIST, nil, err
	}
	if m.Grouped {
		groups, err := s.store.GetGroupedPendingItems()
		if err != nil {
			return common.UPDATE_LIST, nil, err
		}
		return common.UPDATE_LIST, &common.ListResponse{Groups: groups}, nil
	}
	var items []*postlib.QueueItem
	var err error
	if m.ShowPublished {
		items, err = s.store.GetPublishedItems()
	} else {
		items, err = s.store.GetPendingItems()
	}
	if err != nil {
		return common.UPDATE_LIST, nil, err
	}
	return common.UPDATE_LIST, &common.ListResponse{Items: items}, nil
}
