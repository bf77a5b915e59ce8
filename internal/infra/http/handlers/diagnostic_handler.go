package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"

	"github.com/xavierca1/automatik-diagnostic/internal/entity"
	"github.com/xavierca1/automatik-diagnostic/internal/infra/http/middleware"
	"github.com/xavierca1/automatik-diagnostic/internal/usecase"
	"github.com/xavierca1/automatik-diagnostic/internal/watcher"
)

const timeoutMessage = "O backend não respondeu dentro do tempo limite."

type DiagnosticStarter interface {
	Execute(ctx context.Context, input usecase.StartDiagnosticInput) (*usecase.StartDiagnosticOutput, error)
}

type ResultsReader interface {
	FindResultsByID(ctx context.Context, id string) (string, error)
}

type ResultWatcher interface {
	Watch(ctx context.Context, recordID string, onProgress func(watcher.Progress)) (watcher.Outcome, error)
}

type DiagnosticHandler struct {
	Starter DiagnosticStarter
	Results ResultsReader
	Watcher ResultWatcher
	Log     zerolog.Logger
}

func NewDiagnosticHandler(starter DiagnosticStarter, results ResultsReader, w ResultWatcher, log zerolog.Logger) *DiagnosticHandler {
	return &DiagnosticHandler{
		Starter: starter,
		Results: results,
		Watcher: w,
		Log:     log,
	}
}

type DiagnosticResultResponse struct {
	RecordID string                  `json:"record_id"`
	Ready    bool                    `json:"ready"`
	Results  string                  `json:"results"`
	Report   entity.DiagnosticReport `json:"report"`
}

type progressEvent struct {
	ElapsedSeconds float64 `json:"elapsed_seconds"`
	BoundSeconds   float64 `json:"bound_seconds"`
	Percent        float64 `json:"percent"`
}

type deliveredEvent struct {
	Results string                  `json:"results"`
	Report  entity.DiagnosticReport `json:"report"`
}

type messageEvent struct {
	Error   string `json:"error,omitempty"`
	Message string `json:"message"`
}

// Start cria o registro e dispara a análise.
func (h *DiagnosticHandler) Start(w http.ResponseWriter, r *http.Request) {
	var input usecase.StartDiagnosticInput
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		writeJSON(w, http.StatusBadRequest, ErrorResponse{Error: "INVALID_JSON", Message: "JSON inválido"})
		return
	}

	output, err := h.Starter.Execute(r.Context(), input)
	if err != nil {
		status, resp := statusFor(err)
		if status >= http.StatusInternalServerError {
			h.Log.Error().Err(err).Str("url", input.URL).Msg("❌ Falha ao iniciar diagnóstico")
			if resp.Error == usecase.CodeUpstream {
				middleware.RecordIntegrationError("analysis_webhook")
			}
		}
		writeJSON(w, status, resp)
		return
	}

	middleware.RecordDiagnosticStarted()
	writeJSON(w, http.StatusCreated, output)
}

func (h *DiagnosticHandler) Get(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	results, err := h.Results.FindResultsByID(r.Context(), id)
	if errors.Is(err, entity.ErrDiagnosticNotFound) {
		writeJSON(w, http.StatusNotFound, ErrorResponse{Error: usecase.CodeNotFound, Message: "Diagnóstico não encontrado"})
		return
	}
	if err != nil {
		h.Log.Error().Err(err).Str("record_id", id).Msg("❌ Falha ao buscar diagnóstico")
		writeJSON(w, http.StatusInternalServerError, ErrorResponse{Error: usecase.CodeDatabase, Message: "Erro ao buscar diagnóstico"})
		return
	}

	writeJSON(w, http.StatusOK, DiagnosticResultResponse{
		RecordID: id,
		Ready:    entity.HasResult(results),
		Results:  results,
		Report:   entity.ParseReport(results),
	})
}

// Events transmite o progresso da espera via SSE e termina com delivered, timeout ou failed.
func (h *DiagnosticHandler) Events(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	if _, err := h.Results.FindResultsByID(r.Context(), id); errors.Is(err, entity.ErrDiagnosticNotFound) {
		writeJSON(w, http.StatusNotFound, ErrorResponse{Error: usecase.CodeNotFound, Message: "Diagnóstico não encontrado"})
		return
	}

	flusher, ok := w.(http.Flusher)
	if !ok {
		writeJSON(w, http.StatusInternalServerError, ErrorResponse{Error: "STREAMING_UNSUPPORTED", Message: "streaming not supported"})
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.Header().Set("X-Accel-Buffering", "no")
	w.WriteHeader(http.StatusOK)
	flusher.Flush()

	send := func(event string, data interface{}) {
		payload, err := json.Marshal(data)
		if err != nil {
			h.Log.Error().Err(err).Str("event", event).Msg("falha ao serializar evento SSE")
			return
		}
		fmt.Fprintf(w, "event: %s\ndata: %s\n\n", event, payload)
		flusher.Flush()
	}

	outcome, err := h.Watcher.Watch(r.Context(), id, func(p watcher.Progress) {
		send("progress", progressEvent{
			ElapsedSeconds: p.Elapsed.Seconds(),
			BoundSeconds:   p.Bound.Seconds(),
			Percent:        p.Ratio * 100,
		})
	})
	middleware.RecordWatchOutcome(outcome.State.String())

	switch outcome.State {
	case watcher.Delivered:
		send("delivered", deliveredEvent{Results: outcome.Results, Report: entity.ParseReport(outcome.Results)})
	case watcher.TimedOut:
		send("timeout", messageEvent{Message: timeoutMessage})
	case watcher.Cancelled:
		h.Log.Debug().Str("record_id", id).Msg("cliente encerrou o stream")
	default:
		h.Log.Error().Err(err).Str("record_id", id).Str("state", outcome.State.String()).Msg("❌ Falha aguardando resultado")
		send("failed", messageEvent{Error: usecase.CodeSubscription, Message: "Erro na análise"})
	}
}
