package handlers_test

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/xavierca1/automatik-diagnostic/internal/entity"
	"github.com/xavierca1/automatik-diagnostic/internal/infra/http/handlers"
	"github.com/xavierca1/automatik-diagnostic/internal/usecase"
)

func TestWebhookSuccess(t *testing.T) {
	deliverer := new(MockDeliverer)
	url := "https://a.com"
	update := entity.DiagnosticUpdate{URL: &url, Results: "✅ SEO ok"}
	deliverer.On("Execute", mock.Anything, mock.MatchedBy(func(in usecase.ResultWebhookInput) bool {
		return in.RecordID == "abc123" && string(in.Results) == `"✅ SEO ok"`
	})).Return(&usecase.ResultWebhookOutput{
		Message:    "Record updated successfully",
		Record:     &entity.DiagnosticRecord{ID: "abc123", URL: "https://a.com", Results: "✅ SEO ok"},
		UpdateData: update,
	}, nil)

	body := `{"record_id":"abc123","url":"https://a.com","results":"✅ SEO ok"}`
	w := httptest.NewRecorder()
	handlers.NewWebhookHandler(deliverer, zerolog.Nop()).Handle(w, httptest.NewRequest(http.MethodPost, "/webhook/results", strings.NewReader(body)))

	require.Equal(t, http.StatusOK, w.Code)
	var resp map[string]json.RawMessage
	require.NoError(t, json.NewDecoder(w.Body).Decode(&resp))
	assert.Contains(t, resp, "message")
	assert.Contains(t, resp, "record")
	assert.Contains(t, resp, "update_data")
}

func TestWebhookMissingRecordID(t *testing.T) {
	deliverer := new(MockDeliverer)
	deliverer.On("Execute", mock.Anything, mock.Anything).Return(nil, &usecase.DomainError{
		Code:    usecase.CodeValidation,
		Message: "Missing required field: record_id",
	})

	w := httptest.NewRecorder()
	handlers.NewWebhookHandler(deliverer, zerolog.Nop()).Handle(w, httptest.NewRequest(http.MethodPost, "/webhook/results", strings.NewReader(`{"results":"x"}`)))

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "Missing required field: record_id")
}

func TestWebhookNotFound(t *testing.T) {
	deliverer := new(MockDeliverer)
	deliverer.On("Execute", mock.Anything, mock.Anything).Return(nil, &usecase.DomainError{Code: usecase.CodeNotFound, Message: "record not found: x"})

	w := httptest.NewRecorder()
	handlers.NewWebhookHandler(deliverer, zerolog.Nop()).Handle(w, httptest.NewRequest(http.MethodPost, "/webhook/results", strings.NewReader(`{"record_id":"x"}`)))

	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestWebhookDatabaseError(t *testing.T) {
	deliverer := new(MockDeliverer)
	deliverer.On("Execute", mock.Anything, mock.Anything).Return(nil, &usecase.TechnicalError{
		Code:    usecase.CodeDatabase,
		Message: "failed to update record",
		Err:     errors.New("pq: relation does not exist"),
	})

	w := httptest.NewRecorder()
	handlers.NewWebhookHandler(deliverer, zerolog.Nop()).Handle(w, httptest.NewRequest(http.MethodPost, "/webhook/results", strings.NewReader(`{"record_id":"abc123","results":{"score":1}}`)))

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	var resp struct {
		Error   string `json:"error"`
		Details struct {
			RecordID string          `json:"record_id"`
			Results  json.RawMessage `json:"results"`
		} `json:"details"`
	}
	require.NoError(t, json.NewDecoder(w.Body).Decode(&resp))
	assert.Equal(t, "failed to update record", resp.Error)
	assert.Equal(t, "abc123", resp.Details.RecordID)
	assert.JSONEq(t, `{"score":1}`, string(resp.Details.Results))
}

func TestWebhookRejectsBadInput(t *testing.T) {
	h := handlers.NewWebhookHandler(new(MockDeliverer), zerolog.Nop())

	w := httptest.NewRecorder()
	h.Handle(w, httptest.NewRequest(http.MethodGet, "/webhook/results", nil))
	assert.Equal(t, http.StatusMethodNotAllowed, w.Code)

	w = httptest.NewRecorder()
	h.Handle(w, httptest.NewRequest(http.MethodPost, "/webhook/results", strings.NewReader("{")))
	assert.Equal(t, http.StatusBadRequest, w.Code)
}
