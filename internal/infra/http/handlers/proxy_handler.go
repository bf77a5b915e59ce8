package handlers

import (
	"context"
	"io"
	"net/http"

	"github.com/rs/zerolog"

	"github.com/xavierca1/automatik-diagnostic/internal/infra/http/middleware"
	"github.com/xavierca1/automatik-diagnostic/internal/infra/integration/mautic"
)

const maxProxyBody = 1 << 20

type FormForwarder interface {
	Forward(ctx context.Context, contentType string, body []byte) (*mautic.ForwardResult, error)
}

// ProxyHandler repassa o formulário ao Mautic, escondendo CORS e autenticação do navegador.
type ProxyHandler struct {
	Forwarder FormForwarder
	Log       zerolog.Logger
}

func NewProxyHandler(forwarder FormForwarder, log zerolog.Logger) *ProxyHandler {
	return &ProxyHandler{Forwarder: forwarder, Log: log}
}

func (h *ProxyHandler) Handle(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.Header().Set("Allow", http.MethodPost)
		writeJSON(w, http.StatusMethodNotAllowed, ErrorResponse{Error: "Método não permitido"})
		return
	}

	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxProxyBody))
	if err != nil {
		h.fail(w, err)
		return
	}

	h.Log.Debug().Int("bytes", len(body)).Msg("Body recebido no proxy")

	res, err := h.Forwarder.Forward(r.Context(), r.Header.Get("Content-Type"), body)
	if err != nil {
		middleware.RecordIntegrationError("mautic")
		h.fail(w, err)
		return
	}

	if res.ContentType != "" {
		w.Header().Set("Content-Type", res.ContentType)
	}
	w.WriteHeader(res.StatusCode)
	w.Write(res.Body)
}

func (h *ProxyHandler) fail(w http.ResponseWriter, err error) {
	h.Log.Error().Err(err).Msg("❌ Erro no proxy Mautic")
	writeJSON(w, http.StatusInternalServerError, ErrorResponse{
		Error:   "Erro ao repassar para o Mautic",
		Details: err.Error(),
	})
}
