package usecase

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/rs/zerolog"

	"github.com/xavierca1/automatik-diagnostic/internal/entity"
)

type DeliverResultUseCase struct {
	Repo      entity.DiagnosticRepositoryInterface
	Publisher ResultPublisher
	Mailer    ReportMailer
	Log       zerolog.Logger
}

// publisher e mailer podem ser nil.
func NewDeliverResultUseCase(
	repo entity.DiagnosticRepositoryInterface,
	publisher ResultPublisher,
	mailer ReportMailer,
	log zerolog.Logger,
) *DeliverResultUseCase {
	return &DeliverResultUseCase{
		Repo:      repo,
		Publisher: publisher,
		Mailer:    mailer,
		Log:       log,
	}
}

func (uc *DeliverResultUseCase) Execute(ctx context.Context, input ResultWebhookInput) (*ResultWebhookOutput, error) {
	if strings.TrimSpace(input.RecordID) == "" {
		return nil, &DomainError{
			Code:    CodeValidation,
			Message: "Missing required field: record_id",
			Fields:  []ValidationError{{"record_id", "is required"}},
		}
	}

	results, err := ResultsToText(input.Results)
	if err != nil {
		return nil, &DomainError{
			Code:    CodeValidation,
			Message: "Failed to process results",
			Fields:  []ValidationError{{"results", err.Error()}},
		}
	}

	update := entity.DiagnosticUpdate{
		URL:         input.URL,
		Nome:        input.Nome,
		Email:       input.Email,
		Telefone:    input.Telefone,
		Faturamento: input.Faturamento,
		Results:     results,
	}

	record, err := uc.Repo.UpdateFromWebhook(ctx, input.RecordID, update)
	if err != nil {
		if errors.Is(err, entity.ErrDiagnosticNotFound) {
			return nil, &DomainError{
				Code:    CodeNotFound,
				Message: "record not found: " + input.RecordID,
			}
		}
		return nil, &TechnicalError{
			Code:    CodeDatabase,
			Message: "failed to update record",
			Err:     err,
		}
	}

	uc.Log.Info().Str("record_id", record.ID).Bool("has_result", entity.HasResult(results)).Msg("📥 Resultado do diagnóstico gravado")

	if uc.Publisher != nil {
		uc.Publisher.Publish(entity.ResultEvent{RecordID: record.ID, Results: record.Results})
	}

	if uc.Mailer != nil && record.Email != "" && entity.HasResult(record.Results) {
		go func(r entity.DiagnosticRecord) {
			if err := uc.Mailer.SendDiagnosticReport(r.Email, r.Nome, r.URL, entity.ParseReport(r.Results)); err != nil {
				uc.Log.Error().Err(err).Str("record_id", r.ID).Msg("⚠️ Falha ao enviar relatório por email")
			}
		}(*record)
	}

	return &ResultWebhookOutput{
		Message:    "Record updated successfully",
		Record:     record,
		UpdateData: update,
	}, nil
}

// ResultsToText guarda strings como estão e serializa qualquer outro JSON; valores falsos
// (null, false, zero, "") viram vazio.
func ResultsToText(raw json.RawMessage) (string, error) {
	trimmed := bytes.TrimSpace(raw)
	switch string(trimmed) {
	case "", "null", "false", "0":
		return "", nil
	}

	if c := trimmed[0]; c == '-' || (c >= '0' && c <= '9') {
		var n float64
		if err := json.Unmarshal(trimmed, &n); err != nil {
			return "", fmt.Errorf("invalid results number: %w", err)
		}
		if n == 0 {
			return "", nil
		}
	}

	if trimmed[0] == '"' {
		var s string
		if err := json.Unmarshal(trimmed, &s); err != nil {
			return "", fmt.Errorf("invalid results string: %w", err)
		}
		return s, nil
	}

	var compact bytes.Buffer
	if err := json.Compact(&compact, trimmed); err != nil {
		return "", fmt.Errorf("invalid results payload: %w", err)
	}
	return compact.String(), nil
}
