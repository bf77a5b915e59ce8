package usecase

import (
	"context"

	"github.com/xavierca1/automatik-diagnostic/internal/entity"
)

// AnalysisDispatcher entrega o pedido de análise ao workflow externo (direto ou via fila).
type AnalysisDispatcher interface {
	Dispatch(ctx context.Context, req entity.AnalysisRequest) error
}

type ResultPublisher interface {
	Publish(event entity.ResultEvent)
}

type ReportMailer interface {
	SendDiagnosticReport(to, nome, blogURL string, report entity.DiagnosticReport) error
}
