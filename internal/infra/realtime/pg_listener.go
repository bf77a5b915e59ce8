package realtime

import (
	"context"
	"fmt"
	"time"

	"github.com/lib/pq"
	"github.com/rs/zerolog"

	"github.com/xavierca1/automatik-diagnostic/internal/entity"
)

// NotifyChannel é o canal usado pelo trigger blog_diagnostics_notify.
const NotifyChannel = "blog_diagnostics_updates"

type ResultsFinder interface {
	FindResultsByID(ctx context.Context, id string) (string, error)
}

type notificationSource interface {
	NotificationChannel() <-chan *pq.Notification
	Ping() error
	Close() error
}

type pqSource struct {
	*pq.Listener
}

func (s pqSource) NotificationChannel() <-chan *pq.Notification {
	return s.Notify
}

// PgListener traz os NOTIFY do Postgres para o Hub. O payload é só o id; o resultado
// é relido do banco porque NOTIFY aceita no máximo 8000 bytes.
type PgListener struct {
	source       notificationSource
	hub          *Hub
	finder       ResultsFinder
	pingInterval time.Duration
	log          zerolog.Logger
}

func NewPgListener(databaseURL string, hub *Hub, finder ResultsFinder, log zerolog.Logger) (*PgListener, error) {
	l := &PgListener{
		hub:          hub,
		finder:       finder,
		pingInterval: 90 * time.Second,
		log:          log,
	}

	listener := pq.NewListener(databaseURL, 10*time.Second, time.Minute, l.onEvent)
	if err := listener.Listen(NotifyChannel); err != nil {
		listener.Close()
		return nil, fmt.Errorf("falha no LISTEN %s: %w", NotifyChannel, err)
	}
	l.source = pqSource{listener}

	return l, nil
}

func (l *PgListener) onEvent(event pq.ListenerEventType, err error) {
	switch event {
	case pq.ListenerEventConnected:
		l.log.Info().Str("channel", NotifyChannel).Msg("🔌 Listener Postgres conectado")
	case pq.ListenerEventDisconnected:
		l.log.Error().Err(err).Msg("❌ Listener Postgres desconectado")
		l.hub.Fail(fmt.Errorf("listener desconectado: %w", err))
	case pq.ListenerEventReconnected:
		l.log.Info().Msg("🔌 Listener Postgres reconectado")
	case pq.ListenerEventConnectionAttemptFailed:
		l.log.Warn().Err(err).Msg("⚠️ Tentativa de reconexão do listener falhou")
	}
}

// Run consome notificações até ctx ser cancelado.
func (l *PgListener) Run(ctx context.Context) error {
	ticker := time.NewTicker(l.pingInterval)
	defer ticker.Stop()

	notifications := l.source.NotificationChannel()
	for {
		select {
		case <-ctx.Done():
			return l.source.Close()

		case n, ok := <-notifications:
			if !ok {
				return nil
			}
			if n == nil {
				// pq manda nil depois de reconectar
				continue
			}
			l.handle(ctx, n.Extra)

		case <-ticker.C:
			go func() {
				if err := l.source.Ping(); err != nil {
					l.log.Warn().Err(err).Msg("⚠️ Ping do listener falhou")
				}
			}()
		}
	}
}

func (l *PgListener) handle(ctx context.Context, recordID string) {
	if l.hub.Subscribers(recordID) == 0 {
		return
	}

	results, err := l.finder.FindResultsByID(ctx, recordID)
	if err != nil {
		l.log.Error().Err(err).Str("record_id", recordID).Msg("❌ Falha ao reler resultado notificado")
		return
	}

	l.hub.Publish(entity.ResultEvent{RecordID: recordID, Results: results})
}
