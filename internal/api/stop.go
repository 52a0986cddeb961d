package api

import (
	"encoding/json"
	"errors"

	"github.com/postline/postline/common"
	"github.com/postline/postline/internal/server"
)

func (s *Api) stopHandler(sconn *server.SyncConn, _ json.RawMessage) (common.UpdateType, any, error) {
	if s.stop == nil {
		return common.UPDATE_STOP, nil, errors.New("daemon does not support remote stop")
	}
	s.log.Println("Stop requested, shutting down")
	// Run after the response is written so the client sees the ack.
	go s.stop()
	return common.UPDATE_STOP, "stopping", nil
}
