package api

import (
	"encoding/json"
	"errors"

	"github.com/google/uuid"

	"github.com/postline/postline/common"
	"github.com/postline/postline/internal/server"
	"github.com/postline/postline/pkg/postlib"
)

func (s *Api) createHandler(sconn *server.SyncConn, body json.RawMessage) (common.UpdateType, any, error) {
	var m common.CreateParams
	if err := json.Unmarshal(body, &m); err != nil {
		return common.UPDATE_CREATE, nil, err
	}
	if m.Platform == "" {
		return common.UPDATE_CREATE, nil, errors.New("platform is required")
	}
	if m.PostContent == "" {
		return common.UPDATE_CREATE, nil, errors.New("post_content is required")
	}
	id := m.ItemId
	if id == "" {
		id = uuid.NewString()
	}
	item, err := s.store.CreateItem(postlib.ItemMetadata{
		ID:          id,
		Platform:    m.Platform,
		AccountID:   m.AccountId,
		SourceVideo: m.SourceVideo,
		SourceClip:  m.SourceClip,
		ClipType:    m.ClipType,
		Hashtags:    m.Hashtags,
		Links:       m.Links,
	}, m.PostContent, m.MediaPath)
	if err != nil {
		return common.UPDATE_CREATE, nil, err
	}
	s.log.Println("Created queue item:", item.ID)
	return common.UPDATE_CREATE, &common.ItemResponse{Item: item}, nil
}
