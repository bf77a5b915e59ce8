package realtime

import (
	"context"
	"errors"
	"sync"

	"github.com/rs/zerolog"

	"github.com/xavierca1/automatik-diagnostic/internal/entity"
)

const subscriptionBuffer = 4

var ErrHubClosed = errors.New("realtime hub closed")

// Hub distribui eventos de resultado para as assinaturas de cada registro.
type Hub struct {
	mu     sync.Mutex
	subs   map[string]map[*subscription]struct{}
	closed bool
	log    zerolog.Logger
}

func NewHub(log zerolog.Logger) *Hub {
	return &Hub{
		subs: make(map[string]map[*subscription]struct{}),
		log:  log,
	}
}

func (h *Hub) Subscribe(ctx context.Context, recordID string) (entity.ResultSubscription, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	h.mu.Lock()
	defer h.mu.Unlock()

	if h.closed {
		return nil, ErrHubClosed
	}

	sub := &subscription{
		hub:      h,
		recordID: recordID,
		events:   make(chan entity.ResultEvent, subscriptionBuffer),
		errs:     make(chan error, 1),
	}
	if h.subs[recordID] == nil {
		h.subs[recordID] = make(map[*subscription]struct{})
	}
	h.subs[recordID][sub] = struct{}{}

	return sub, nil
}

// Publish nunca bloqueia: com o buffer cheio descarta o evento mais antigo.
func (h *Hub) Publish(event entity.ResultEvent) {
	h.mu.Lock()
	defer h.mu.Unlock()

	for sub := range h.subs[event.RecordID] {
		select {
		case sub.events <- event:
		default:
			select {
			case <-sub.events:
			default:
			}
			select {
			case sub.events <- event:
			default:
				h.log.Warn().Str("record_id", event.RecordID).Msg("⚠️ Evento descartado, assinatura lenta")
			}
		}
	}
}

// Fail entrega err a todas as assinaturas abertas.
func (h *Hub) Fail(err error) {
	h.mu.Lock()
	defer h.mu.Unlock()

	for _, subs := range h.subs {
		for sub := range subs {
			select {
			case sub.errs <- err:
			default:
			}
		}
	}
}

func (h *Hub) Subscribers(recordID string) int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.subs[recordID])
}

// Close termina as assinaturas abertas e recusa novas.
func (h *Hub) Close() {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.closed {
		return
	}
	h.closed = true
	for id, subs := range h.subs {
		for sub := range subs {
			sub.closeLocked()
		}
		delete(h.subs, id)
	}
}

type subscription struct {
	hub      *Hub
	recordID string
	events   chan entity.ResultEvent
	errs     chan error
	done     bool
}

func (s *subscription) Events() <-chan entity.ResultEvent { return s.events }
func (s *subscription) Errors() <-chan error              { return s.errs }

func (s *subscription) Close() {
	s.hub.mu.Lock()
	defer s.hub.mu.Unlock()

	if subs, ok := s.hub.subs[s.recordID]; ok {
		delete(subs, s)
		if len(subs) == 0 {
			delete(s.hub.subs, s.recordID)
		}
	}
	s.closeLocked()
}

func (s *subscription) closeLocked() {
	if s.done {
		return
	}
	s.done = true
	close(s.events)
	close(s.errs)
}
