package api

import (
	"encoding/json"
	"errors"

	"github.com/postline/postline/common"
	"github.com/postline/postline/internal/server"
	"github.com/postline/postline/pkg/postlib"
)

func (s *Api) nextSlotHandler(sconn *server.SyncConn, body json.RawMessage) (common.UpdateType, any, error) {
	var m common.NextSlotParams
	if err := json.Unmarshal(body, &m); err != nil {
		return common.UPDATE_NEXT_SLOT, nil, err
	}
	if m.Platform == "" {
		return common.UPDATE_NEXT_SLOT, nil, errors.New("platform is required")
	}
	count := m.Count
	if count <= 0 {
		count = 1
	}
	booked, err := s.queue.CommittedBookings()
	if err != nil {
		return common.UPDATE_NEXT_SLOT, nil, err
	}
	slots, err := s.alloc.AvailableSlots(m.Platform, m.ClipType, count, booked)
	if err != nil {
		return common.UPDATE_NEXT_SLOT, nil, err
	}
	if len(slots) == 0 {
		return common.UPDATE_NEXT_SLOT, nil, postlib.ErrNoAvailableSlot
	}
	return common.UPDATE_NEXT_SLOT, &common.NextSlotResponse{Platform: m.Platform, Slots: slots}, nil
}
