package worker

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"github.com/xavierca1/automatik-diagnostic/internal/infra/http/middleware"
)

type PendingCounter interface {
	CountPendingOlderThan(ctx context.Context, age time.Duration) (int, error)
}

// StaleDiagnosticWorker mede quantos diagnósticos passaram do prazo sem resultado.
// Nada é apagado: o registro continua disponível se o worker externo responder depois.
type StaleDiagnosticWorker struct {
	repo         PendingCounter
	staleAfter   time.Duration
	tickInterval time.Duration
	log          zerolog.Logger
}

func NewStaleDiagnosticWorker(repo PendingCounter, staleAfter time.Duration, log zerolog.Logger) *StaleDiagnosticWorker {
	return &StaleDiagnosticWorker{
		repo:         repo,
		staleAfter:   staleAfter,
		tickInterval: time.Minute,
		log:          log,
	}
}

func (w *StaleDiagnosticWorker) Start(ctx context.Context) {
	w.log.Info().Dur("stale_after", w.staleAfter).Msg("🕒 Stale Diagnostic Worker iniciado")

	ticker := time.NewTicker(w.tickInterval)
	defer ticker.Stop()

	w.sweep(ctx)

	for {
		select {
		case <-ctx.Done():
			w.log.Info().Msg("⚠️ Stale Diagnostic Worker encerrado")
			return
		case <-ticker.C:
			w.sweep(ctx)
		}
	}
}

func (w *StaleDiagnosticWorker) sweep(ctx context.Context) int {
	count, err := w.repo.CountPendingOlderThan(ctx, w.staleAfter)
	if err != nil {
		w.log.Error().Err(err).Msg("❌ Erro ao contar diagnósticos pendentes")
		return -1
	}

	middleware.SetStaleDiagnostics(count)
	if count > 0 {
		w.log.Warn().Int("count", count).Msg("⏱️ Diagnósticos sem resultado após o prazo")
	}
	return count
}
