package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/xavierca1/automatik-diagnostic/internal/usecase"
)

type ErrorResponse struct {
	Error   string      `json:"error"`
	Message string      `json:"message,omitempty"`
	Details interface{} `json:"details,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

// statusFor traduz erros de usecase; erros técnicos nunca expõem o detalhe interno.
func statusFor(err error) (int, ErrorResponse) {
	var de *usecase.DomainError
	if errors.As(err, &de) {
		status := http.StatusBadRequest
		if de.Code == usecase.CodeNotFound {
			status = http.StatusNotFound
		}
		return status, ErrorResponse{Error: de.Code, Message: de.Message, Details: de.Fields}
	}

	var te *usecase.TechnicalError
	if errors.As(err, &te) {
		return http.StatusInternalServerError, ErrorResponse{Error: te.Code, Message: te.Message}
	}

	return http.StatusInternalServerError, ErrorResponse{Error: "INTERNAL_ERROR", Message: "Erro inesperado"}
}
