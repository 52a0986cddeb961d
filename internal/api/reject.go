package api

import (
	"encoding/json"
	"errors"

	"github.com/postline/postline/common"
	"github.com/postline/postline/internal/server"
)

func (s *Api) rejectHandler(sconn *server.SyncConn, body json.RawMessage) (common.UpdateType, any, error) {
	var m common.InputItemId
	if err := json.Unmarshal(body, &m); err != nil {
		return common.UPDATE_REJECT, nil, err
	}
	if m.ItemId == "" {
		return common.UPDATE_REJECT, nil, errors.New("item_id is required")
	}
	if err := s.store.RejectItem(m.ItemId); err != nil {
		return common.UPDATE_REJECT, nil, err
	}
	return common.UPDATE_REJECT, &common.RejectResponse{ItemId: m.ItemId, Rejected: true}, nil
}
