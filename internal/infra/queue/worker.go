package queue

import (
	"context"
	"encoding/json"
	"fmt"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/rs/zerolog"

	"github.com/xavierca1/automatik-diagnostic/internal/entity"
	"github.com/xavierca1/automatik-diagnostic/internal/infra/http/middleware"
)

// AnalysisForwarder é o cliente do webhook de análise.
type AnalysisForwarder interface {
	Dispatch(ctx context.Context, req entity.AnalysisRequest) error
}

type Worker struct {
	Channel   *amqp.Channel
	Forwarder AnalysisForwarder
	Log       zerolog.Logger
}

func NewWorker(ch *amqp.Channel, forwarder AnalysisForwarder, log zerolog.Logger) *Worker {
	return &Worker{
		Channel:   ch,
		Forwarder: forwarder,
		Log:       log,
	}
}

// Start consome a fila até ctx ser cancelado ou o canal fechar.
func (w *Worker) Start(ctx context.Context, queueName string) error {
	msgs, err := w.Channel.Consume(
		queueName, // fila
		"",        // consumer
		false,     // auto-ack (manual é mais seguro)
		false,     // exclusive
		false,     // no-local
		false,     // no-wait
		nil,       // args
	)
	if err != nil {
		return fmt.Errorf("falha ao registrar consumidor RabbitMQ: %w", err)
	}

	w.Log.Info().Str("queue", queueName).Msg(" [*] Worker rodando e aguardando na fila")
	return w.consume(ctx, msgs)
}

func (w *Worker) consume(ctx context.Context, msgs <-chan amqp.Delivery) error {
	for {
		select {
		case <-ctx.Done():
			return nil
		case d, ok := <-msgs:
			if !ok {
				return fmt.Errorf("canal de consumo fechado")
			}
			w.process(ctx, d)
		}
	}
}

func (w *Worker) process(ctx context.Context, d amqp.Delivery) {
	var req entity.AnalysisRequest
	if err := json.Unmarshal(d.Body, &req); err != nil {
		w.Log.Error().Err(err).Msg("❌ [WORKER] JSON Inválido")
		// Mensagem malformada: rejeita sem requeue para não travar a fila.
		d.Nack(false, false)
		return
	}

	log := w.Log.With().Str("record_id", req.RecordID).Logger()
	if err := w.Forwarder.Dispatch(ctx, req); err != nil {
		log.Error().Err(err).Msg("❌ [WORKER] Erro ao chamar webhook de análise")
		middleware.RecordIntegrationError("analysis_webhook")
		d.Nack(false, false)
		return
	}

	log.Info().Str("url", req.URL).Msg("✅ [WORKER] Pedido de análise entregue")
	d.Ack(false)
}
