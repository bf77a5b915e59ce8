package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/rs/zerolog"

	"github.com/xavierca1/automatik-diagnostic/internal/infra/http/middleware"
	"github.com/xavierca1/automatik-diagnostic/internal/usecase"
)

type ResultDeliverer interface {
	Execute(ctx context.Context, input usecase.ResultWebhookInput) (*usecase.ResultWebhookOutput, error)
}

// WebhookHandler recebe o resultado do worker de análise.
type WebhookHandler struct {
	Deliverer ResultDeliverer
	Log       zerolog.Logger
}

func NewWebhookHandler(deliverer ResultDeliverer, log zerolog.Logger) *WebhookHandler {
	return &WebhookHandler{Deliverer: deliverer, Log: log}
}

type webhookErrorDetails struct {
	RecordID   string          `json:"record_id"`
	Results    json.RawMessage `json:"results,omitempty"`
	Validation interface{}     `json:"validation,omitempty"`
}

func (h *WebhookHandler) Handle(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.Header().Set("Allow", http.MethodPost)
		writeJSON(w, http.StatusMethodNotAllowed, ErrorResponse{Error: "Method not allowed"})
		return
	}

	var input usecase.ResultWebhookInput
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		writeJSON(w, http.StatusBadRequest, ErrorResponse{Error: "Invalid JSON", Details: err.Error()})
		return
	}

	h.Log.Info().Str("record_id", input.RecordID).Msg("📨 Webhook de resultado recebido")

	output, err := h.Deliverer.Execute(r.Context(), input)
	if err != nil {
		details := webhookErrorDetails{RecordID: input.RecordID}

		var de *usecase.DomainError
		if errors.As(err, &de) {
			status := http.StatusBadRequest
			if de.Code == usecase.CodeNotFound {
				status = http.StatusNotFound
			}
			details.Validation = de.Fields
			writeJSON(w, status, ErrorResponse{Error: de.Message, Details: details})
			return
		}

		h.Log.Error().Err(err).Str("record_id", input.RecordID).Msg("❌ Erro ao gravar resultado")
		message := "failed to update record"
		var te *usecase.TechnicalError
		if errors.As(err, &te) {
			message = te.Message
		}
		details.Results = input.Results
		writeJSON(w, http.StatusInternalServerError, ErrorResponse{Error: message, Details: details})
		return
	}

	middleware.RecordResultReceived()
	writeJSON(w, http.StatusOK, output)
}
