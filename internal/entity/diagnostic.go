package entity

import (
	"context"
	"errors"
	"strings"
	"time"
)

// WorkflowStartedAck é a resposta que o n8n grava em results antes do diagnóstico real.
const WorkflowStartedAck = `{"message":"Workflow was started"}`

var (
	ErrDiagnosticNotFound = errors.New("diagnóstico não encontrado")
	ErrMissingURL         = errors.New("blog URL is required")
)

type DiagnosticRecord struct {
	ID          string    `json:"id"`
	URL         string    `json:"url"`
	Nome        string    `json:"nome"`
	Email       string    `json:"email"`
	Telefone    string    `json:"telefone"`
	Faturamento string    `json:"faturamento"`
	Results     string    `json:"results"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// DiagnosticUpdate são as colunas que o webhook de resultado sobrescreve.
// Campos de contato nil mantêm o valor gravado; Results é sempre escrito.
type DiagnosticUpdate struct {
	URL         *string `json:"url,omitempty"`
	Nome        *string `json:"nome,omitempty"`
	Email       *string `json:"email,omitempty"`
	Telefone    *string `json:"telefone,omitempty"`
	Faturamento *string `json:"faturamento,omitempty"`
	Results     string  `json:"results"`
}

// HasResult diz se o payload é um resultado de verdade (não vazio e não o ack do workflow).
func HasResult(results string) bool {
	r := strings.TrimSpace(results)
	return r != "" && r != WorkflowStartedAck
}

type DiagnosticRepositoryInterface interface {
	Create(ctx context.Context, record *DiagnosticRecord) error
	FindResultsByID(ctx context.Context, id string) (string, error)
	UpdateFromWebhook(ctx context.Context, id string, update DiagnosticUpdate) (*DiagnosticRecord, error)
	CountPendingOlderThan(ctx context.Context, age time.Duration) (int, error)
}

// ResultEvent é a notificação de mudança de um registro.
type ResultEvent struct {
	RecordID string `json:"id"`
	Results  string `json:"results"`
}

type ResultSubscription interface {
	Events() <-chan ResultEvent
	Errors() <-chan error
	Close()
}

type ResultSubscriber interface {
	Subscribe(ctx context.Context, recordID string) (ResultSubscription, error)
}
