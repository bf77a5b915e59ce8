package handlers_test

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/xavierca1/automatik-diagnostic/internal/entity"
	"github.com/xavierca1/automatik-diagnostic/internal/infra/http/handlers"
	"github.com/xavierca1/automatik-diagnostic/internal/usecase"
	"github.com/xavierca1/automatik-diagnostic/internal/watcher"
)

func newDiagnosticRouter(h *handlers.DiagnosticHandler) http.Handler {
	r := chi.NewRouter()
	r.Post("/diagnostics", h.Start)
	r.Get("/diagnostics/{id}", h.Get)
	r.Get("/diagnostics/{id}/events", h.Events)
	return r
}

type sseEvent struct {
	Name string
	Data string
}

func readEvents(t *testing.T, body string) []sseEvent {
	t.Helper()
	var events []sseEvent
	var current sseEvent
	scanner := bufio.NewScanner(strings.NewReader(body))
	for scanner.Scan() {
		line := scanner.Text()
		switch {
		case strings.HasPrefix(line, "event: "):
			current.Name = strings.TrimPrefix(line, "event: ")
		case strings.HasPrefix(line, "data: "):
			current.Data = strings.TrimPrefix(line, "data: ")
		case line == "" && current.Name != "":
			events = append(events, current)
			current = sseEvent{}
		}
	}
	return events
}

func TestStartDiagnosticCreated(t *testing.T) {
	starter := new(MockStarter)
	starter.On("Execute", mock.Anything, mock.MatchedBy(func(in usecase.StartDiagnosticInput) bool {
		return in.URL == "https://a.com" && in.Faturamento == "10k"
	})).Return(&usecase.StartDiagnosticOutput{RecordID: "abc123", Status: usecase.StatusWaiting}, nil)

	h := handlers.NewDiagnosticHandler(starter, new(MockResults), &stubWatcher{}, zerolog.Nop())
	body := `{"url":"https://a.com","nome":"X","email":"x@x.com","telefone":"11999999999","faturamento_com_blog":"10k"}`
	w := httptest.NewRecorder()
	newDiagnosticRouter(h).ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/diagnostics", strings.NewReader(body)))

	assert.Equal(t, http.StatusCreated, w.Code)
	assert.JSONEq(t, `{"record_id":"abc123","status":"WAITING"}`, w.Body.String())
}

func TestStartDiagnosticInvalidJSON(t *testing.T) {
	h := handlers.NewDiagnosticHandler(new(MockStarter), new(MockResults), &stubWatcher{}, zerolog.Nop())
	w := httptest.NewRecorder()
	newDiagnosticRouter(h).ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/diagnostics", strings.NewReader("invalid json")))

	assert.Equal(t, http.StatusBadRequest, w.Code)
	var resp map[string]interface{}
	json.NewDecoder(w.Body).Decode(&resp)
	assert.Equal(t, "INVALID_JSON", resp["error"])
}

func TestStartDiagnosticValidationError(t *testing.T) {
	starter := new(MockStarter)
	starter.On("Execute", mock.Anything, mock.Anything).Return(nil, &usecase.DomainError{
		Code:    usecase.CodeValidation,
		Message: "validation failed: url (is required)",
		Fields:  []usecase.ValidationError{{Field: "url", Message: "is required"}},
	})

	h := handlers.NewDiagnosticHandler(starter, new(MockResults), &stubWatcher{}, zerolog.Nop())
	w := httptest.NewRecorder()
	newDiagnosticRouter(h).ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/diagnostics", strings.NewReader(`{}`)))

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), `"VALIDATION_ERROR"`)
	assert.Contains(t, w.Body.String(), `"field":"url"`)
}

func TestStartDiagnosticUpstreamErrorHidesDetail(t *testing.T) {
	starter := new(MockStarter)
	starter.On("Execute", mock.Anything, mock.Anything).Return(nil, &usecase.TechnicalError{
		Code:    usecase.CodeUpstream,
		Message: "Erro ao enviar o formulário.",
		Err:     errors.New("dial tcp 10.0.0.7:443: connection refused"),
	})

	h := handlers.NewDiagnosticHandler(starter, new(MockResults), &stubWatcher{}, zerolog.Nop())
	w := httptest.NewRecorder()
	newDiagnosticRouter(h).ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/diagnostics", strings.NewReader(`{"url":"https://a.com"}`)))

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Contains(t, w.Body.String(), "Erro ao enviar o formulário.")
	assert.NotContains(t, w.Body.String(), "10.0.0.7")
}

func TestGetDiagnostic(t *testing.T) {
	results := new(MockResults)
	results.On("FindResultsByID", mock.Anything, "abc123").Return("✅ SEO ok\n❌ Missing alt tags", nil)
	results.On("FindResultsByID", mock.Anything, "pending").Return("", nil)
	results.On("FindResultsByID", mock.Anything, "missing").Return("", entity.ErrDiagnosticNotFound)

	router := newDiagnosticRouter(handlers.NewDiagnosticHandler(new(MockStarter), results, &stubWatcher{}, zerolog.Nop()))

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/diagnostics/abc123", nil))
	require.Equal(t, http.StatusOK, w.Code)
	var resp handlers.DiagnosticResultResponse
	require.NoError(t, json.NewDecoder(w.Body).Decode(&resp))
	assert.True(t, resp.Ready)
	assert.True(t, resp.Report.HasFailures)
	assert.Len(t, resp.Report.Lines, 2)

	w = httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/diagnostics/pending", nil))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"ready":false`)

	w = httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/diagnostics/missing", nil))
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestEventsDelivered(t *testing.T) {
	results := new(MockResults)
	results.On("FindResultsByID", mock.Anything, "abc123").Return("", nil)

	w := &stubWatcher{
		progress: []watcher.Progress{
			{Elapsed: time.Second, Bound: 120 * time.Second, Ratio: 1.0 / 120},
			{Elapsed: 2 * time.Second, Bound: 120 * time.Second, Ratio: 2.0 / 120},
		},
		outcome: watcher.Outcome{State: watcher.Delivered, Results: "✅ SEO ok\n❌ Missing alt tags"},
	}

	rec := httptest.NewRecorder()
	newDiagnosticRouter(handlers.NewDiagnosticHandler(new(MockStarter), results, w, zerolog.Nop())).
		ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/diagnostics/abc123/events", nil))

	assert.Equal(t, "text/event-stream", rec.Header().Get("Content-Type"))
	events := readEvents(t, rec.Body.String())
	require.Len(t, events, 3)
	assert.Equal(t, "progress", events[0].Name)
	assert.Equal(t, "delivered", events[2].Name)

	var delivered struct {
		Results string                  `json:"results"`
		Report  entity.DiagnosticReport `json:"report"`
	}
	require.NoError(t, json.Unmarshal([]byte(events[2].Data), &delivered))
	assert.Equal(t, "✅ SEO ok\n❌ Missing alt tags", delivered.Results)
	assert.Equal(t, []entity.ReportLine{{Passed: true, Text: "SEO ok"}, {Passed: false, Text: "Missing alt tags"}}, delivered.Report.Lines)
}

func TestEventsTimeoutAndFailure(t *testing.T) {
	results := new(MockResults)
	results.On("FindResultsByID", mock.Anything, mock.Anything).Return("", nil)

	cases := []struct {
		watcher *stubWatcher
		event   string
		text    string
	}{
		{&stubWatcher{outcome: watcher.Outcome{State: watcher.TimedOut}, err: watcher.ErrTimeout}, "timeout", "tempo limite"},
		{&stubWatcher{outcome: watcher.Outcome{State: watcher.Failed}, err: &watcher.SubscriptionError{Err: errors.New("x")}}, "failed", "Erro na análise"},
	}

	for _, c := range cases {
		rec := httptest.NewRecorder()
		newDiagnosticRouter(handlers.NewDiagnosticHandler(new(MockStarter), results, c.watcher, zerolog.Nop())).
			ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/diagnostics/abc123/events", nil))

		events := readEvents(t, rec.Body.String())
		require.Len(t, events, 1)
		assert.Equal(t, c.event, events[0].Name)
		assert.Contains(t, events[0].Data, c.text)
	}
}

func TestEventsUnknownRecord(t *testing.T) {
	results := new(MockResults)
	results.On("FindResultsByID", mock.Anything, "missing").Return("", entity.ErrDiagnosticNotFound)

	rec := httptest.NewRecorder()
	newDiagnosticRouter(handlers.NewDiagnosticHandler(new(MockStarter), results, &stubWatcher{}, zerolog.Nop())).
		ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/diagnostics/missing/events", nil))

	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestEventsWithRealWatcherTimeout(t *testing.T) {
	results := new(MockResults)
	results.On("FindResultsByID", mock.Anything, "abc123").Return("", nil)

	sub := &channelSubscriber{events: make(chan entity.ResultEvent), errs: make(chan error)}
	w := watcher.New(sub, results, 30*time.Millisecond, 10*time.Millisecond, zerolog.Nop())

	rec := httptest.NewRecorder()
	newDiagnosticRouter(handlers.NewDiagnosticHandler(new(MockStarter), results, w, zerolog.Nop())).
		ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/diagnostics/abc123/events", nil))

	events := readEvents(t, rec.Body.String())
	require.NotEmpty(t, events)
	assert.Equal(t, "progress", events[0].Name)
	assert.Equal(t, "timeout", events[len(events)-1].Name)
}

type channelSubscriber struct {
	events chan entity.ResultEvent
	errs   chan error
}

func (c *channelSubscriber) Subscribe(ctx context.Context, recordID string) (entity.ResultSubscription, error) {
	return c, nil
}

func (c *channelSubscriber) Events() <-chan entity.ResultEvent { return c.events }
func (c *channelSubscriber) Errors() <-chan error              { return c.errs }
func (c *channelSubscriber) Close()                            {}
