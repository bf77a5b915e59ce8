// Package watcher espera o resultado assíncrono de um diagnóstico.
//
// Uma chamada a Watch é uma única operação cancelável: resolve no primeiro entre
// entrega, timeout, erro de assinatura ou cancelamento do contexto, e libera a
// assinatura e os timers em todos os caminhos.
package watcher

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/xavierca1/automatik-diagnostic/internal/entity"
)

const (
	DefaultTimeout = 120 * time.Second
	DefaultTick    = time.Second
)

var (
	ErrMissingRecordID    = errors.New("record ID is required")
	ErrTimeout            = errors.New("tempo limite esgotado aguardando resultado")
	ErrSubscriptionClosed = errors.New("subscription closed")
)

// SubscriptionError envolve falhas do canal de notificações.
type SubscriptionError struct {
	Err error
}

func (e *SubscriptionError) Error() string {
	return fmt.Sprintf("subscription error: %v", e.Err)
}

func (e *SubscriptionError) Unwrap() error {
	return e.Err
}

type State int

const (
	Idle State = iota
	Waiting
	Delivered
	TimedOut
	Failed
	Cancelled
)

func (s State) String() string {
	switch s {
	case Idle:
		return "IDLE"
	case Waiting:
		return "WAITING"
	case Delivered:
		return "DELIVERED"
	case TimedOut:
		return "TIMED_OUT"
	case Failed:
		return "FAILED"
	case Cancelled:
		return "CANCELLED"
	default:
		return "UNKNOWN"
	}
}

func (s State) Terminal() bool {
	return s >= Delivered
}

type Progress struct {
	Elapsed time.Duration
	Bound   time.Duration
	Ratio   float64
}

type Outcome struct {
	RecordID string
	State    State
	Results  string
	Elapsed  time.Duration
}

type ResultFetcher interface {
	FindResultsByID(ctx context.Context, id string) (string, error)
}

type Watcher struct {
	subscriber entity.ResultSubscriber
	fetcher    ResultFetcher
	timeout    time.Duration
	tick       time.Duration
	log        zerolog.Logger
}

// New monta o watcher. fetcher pode ser nil; timeout e tick <= 0 usam os padrões.
func New(subscriber entity.ResultSubscriber, fetcher ResultFetcher, timeout, tick time.Duration, log zerolog.Logger) *Watcher {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	if tick <= 0 {
		tick = DefaultTick
	}
	return &Watcher{
		subscriber: subscriber,
		fetcher:    fetcher,
		timeout:    timeout,
		tick:       tick,
		log:        log,
	}
}

func (w *Watcher) Timeout() time.Duration {
	return w.timeout
}

// Watch bloqueia até o resultado do registro chegar. onProgress é chamado a cada tick
// na goroutine de quem chamou e pode ser nil.
func (w *Watcher) Watch(ctx context.Context, recordID string, onProgress func(Progress)) (Outcome, error) {
	recordID = strings.TrimSpace(recordID)
	if recordID == "" {
		return Outcome{State: Idle}, ErrMissingRecordID
	}

	sub, err := w.subscriber.Subscribe(ctx, recordID)
	if err != nil {
		return Outcome{RecordID: recordID, State: Failed}, &SubscriptionError{Err: err}
	}
	defer sub.Close()

	s := &session{recordID: recordID, state: Waiting, start: time.Now()}
	log := w.log.With().Str("record_id", recordID).Logger()
	log.Debug().Dur("timeout", w.timeout).Msg("⏳ Aguardando resultado do diagnóstico")

	// O resultado pode ter sido gravado antes da assinatura existir.
	if w.fetcher != nil {
		results, err := w.fetcher.FindResultsByID(ctx, recordID)
		switch {
		case err == nil && entity.HasResult(results):
			s.finish(Delivered, results, nil)
			return s.outcome()
		case err != nil:
			log.Warn().Err(err).Msg("⚠️ Falha na leitura inicial do resultado, seguindo com a assinatura")
		}
	}

	timer := time.NewTimer(w.timeout)
	defer timer.Stop()
	ticker := time.NewTicker(w.tick)
	defer ticker.Stop()

	for !s.state.Terminal() {
		select {
		case <-ctx.Done():
			s.finish(Cancelled, "", ctx.Err())

		case ev, ok := <-sub.Events():
			if !ok {
				s.finish(Failed, "", &SubscriptionError{Err: ErrSubscriptionClosed})
				continue
			}
			if ev.RecordID != recordID || !entity.HasResult(ev.Results) {
				continue
			}
			s.finish(Delivered, ev.Results, nil)

		case err, ok := <-sub.Errors():
			if !ok {
				s.finish(Failed, "", &SubscriptionError{Err: ErrSubscriptionClosed})
				continue
			}
			s.finish(Failed, "", &SubscriptionError{Err: err})

		case <-ticker.C:
			if onProgress != nil {
				onProgress(s.progress(w.timeout))
			}

		case <-timer.C:
			if onProgress != nil {
				onProgress(Progress{Elapsed: w.timeout, Bound: w.timeout, Ratio: 1})
			}
			s.finish(TimedOut, "", ErrTimeout)
		}
	}

	log.Info().Str("state", s.state.String()).Dur("elapsed", time.Since(s.start)).Msg("🏁 Espera encerrada")
	return s.outcome()
}

// session guarda o estado de uma espera; só a primeira transição terminal vale.
type session struct {
	recordID string
	state    State
	results  string
	err      error
	start    time.Time
	elapsed  time.Duration
}

func (s *session) finish(to State, results string, err error) bool {
	if s.state != Waiting || !to.Terminal() {
		return false
	}
	s.state = to
	s.results = results
	s.err = err
	s.elapsed = time.Since(s.start)
	return true
}

func (s *session) progress(bound time.Duration) Progress {
	elapsed := time.Since(s.start)
	ratio := float64(elapsed) / float64(bound)
	if ratio > 1 {
		ratio = 1
	}
	return Progress{Elapsed: elapsed, Bound: bound, Ratio: ratio}
}

func (s *session) outcome() (Outcome, error) {
	return Outcome{
		RecordID: s.recordID,
		State:    s.state,
		Results:  s.results,
		Elapsed:  s.elapsed,
	}, s.err
}
