package api

import (
	"encoding/json"
	"errors"

	"github.com/postline/postline/common"
	"github.com/postline/postline/internal/server"
	"github.com/postline/postline/pkg/postlib"
)

func (s *Api) updateHandler(sconn *server.SyncConn, body json.RawMessage) (common.UpdateType, any, error) {
	var m common.UpdateParams
	if err := json.Unmarshal(body, &m); err != nil {
		return common.UPDATE_UPDATE, nil, err
	}
	if m.ItemId == "" {
		return common.UPDATE_UPDATE, nil, errors.New("item_id is required")
	}
	item, err := s.store.UpdateItem(m.ItemId, postlib.ItemUpdate{
		PostContent: m.PostContent,
		Metadata:    m.Metadata,
	})
	if err != nil {
		return common.UPDATE_UPDATE, nil, err
	}
	if item == nil {
		return common.UPDATE_UPDATE, nil, errors.New("item not found")
	}
	return common.UPDATE_UPDATE, &common.ItemResponse{Item: item}, nil
}
