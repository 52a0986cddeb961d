package api

import (
	"log"

	"github.com/postline/postline/common"
	"github.com/postline/postline/internal/server"
	"github.com/postline/postline/pkg/postlib"
)

type Api struct {
	log   *log.Logger
	store *postlib.Store
	alloc *postlib.Allocator
	queue *postlib.ApprovalQueue
	stop  func()
}

// NewApi wires the queue domain into socket handlers. stop is invoked by the
// stop method to shut the daemon down; it may be nil.
func NewApi(l *log.Logger, store *postlib.Store, alloc *postlib.Allocator, queue *postlib.ApprovalQueue, stop func()) (*Api, error) {
	return &Api{
		log:   l,
		store: store,
		alloc: alloc,
		queue: queue,
		stop:  stop,
	}, nil
}

func (s *Api) RegisterHandlers(server *server.Server) {
	// queue methods
	server.RegisterHandler(common.UPDATE_LIST, s.listHandler)
	server.RegisterHandler(common.UPDATE_GET, s.getHandler)
	server.RegisterHandler(common.UPDATE_CREATE, s.createHandler)
	server.RegisterHandler(common.UPDATE_UPDATE, s.updateHandler)
	server.RegisterHandler(common.UPDATE_APPROVE, s.approveHandler)
	server.RegisterHandler(common.UPDATE_REJECT, s.rejectHandler)
	server.RegisterHandler(common.UPDATE_EXISTS, s.existsHandler)

	// schedule methods
	server.RegisterHandler(common.UPDATE_NEXT_SLOT, s.nextSlotHandler)
	server.RegisterHandler(common.UPDATE_CALENDAR, s.calendarHandler)

	// daemon methods
	server.RegisterHandler(common.UPDATE_STOP, s.stopHandler)
}
