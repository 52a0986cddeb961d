package api

import (
	"encoding/json"

	"github.com/postline/postline/common"
	"github.com/postline/postline/internal/server"
)

func (s *Api) calendarHandler(sconn *server.SyncConn, body json.RawMessage) (common.UpdateType, any, error) {
	var m common.CalendarParams
	if err := json.Unmarshal(body, &m); err != nil {
		return common.UPDATE_CALENDAR, nil, err
	}
	booked, err := s.queue.CommittedBookings()
	if err != nil {
		return common.UPDATE_CALENDAR, nil, err
	}
	entries, err := s.alloc.Calendar(m.Days, booked)
	if err != nil {
		return common.UPDATE_CALENDAR, nil, err
	}
	return common.UPDATE_CALENDAR, &common.CalendarResponse{Entries: entries}, nil
}
