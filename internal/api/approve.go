package api

import (
	"encoding/json"
	"errors"

	"github.com/postline/postline/common"
	"github.com/postline/postline/internal/server"
)

func (s *Api) approveHandler(sconn *server.SyncConn, body json.RawMessage) (common.UpdateType, any, error) {
	var m common.ApproveParams
	if err := json.Unmarshal(body, &m); err != nil {
		return common.UPDATE_APPROVE, nil, err
	}
	if len(m.ItemIds) == 0 {
		return common.UPDATE_APPROVE, nil, errors.New("item_ids is required")
	}
	res := <-s.queue.Enqueue(m.ItemIds)
	s.log.Printf("Approval batch done: %d scheduled, %d failed", res.Scheduled, res.Failed)
	return common.UPDATE_APPROVE, &common.ApproveResponse{Result: res}, nil
}
