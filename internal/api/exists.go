package api

import (
	"encoding/json"
	"errors"

	"github.com/postline/postline/common"
	"github.com/postline/postline/internal/server"
)

func (s *Api) existsHandler(sconn *server.SyncConn, body json.RawMessage) (common.UpdateType, any, error) {
	var m common.InputItemId
	if err := json.Unmarshal(body, &m); err != nil {
		return common.UPDATE_EXISTS, nil, err
	}
	if m.ItemId == "" {
		return common.UPDATE_EXISTS, nil, errors.New("item_id is required")
	}
	return common.UPDATE_EXISTS, &common.ExistsResponse{
		ItemId: m.ItemId,
		State:  s.store.ItemExists(m.ItemId),
	}, nil
}
