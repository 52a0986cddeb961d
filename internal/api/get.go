package api

import (
	"encoding/json"
	"errors"

	"github.com/postline/postline/common"
	"github.com/postline/postline/internal/server"
)

func (s *Api) getHandler(sconn *server.SyncConn, body json.RawMessage) (common.UpdateType, any, error) {
	var m common.InputItemId
	if err := json.Unmarshal(body, &m); err != nil {
		return common.UPDATE_GET, nil, err
	}
	if m.ItemId == "" {
		return common.UPDATE_GET, nil, errors.New("item_id is required")
	}
	item, err := s.store.GetItem(m.ItemId)
	if err != nil {
		return common.UPDATE_GET, nil, err
	}
	if item == nil {
		return common.UPDATE_GET, nil, errors.New("item not found")
	}
	return common.UPDATE_GET, &common.ItemResponse{Item: item}, nil
}
