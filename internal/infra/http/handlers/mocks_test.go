package handlers_test

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/xavierca1/automatik-diagnostic/internal/infra/integration/mautic"
	"github.com/xavierca1/automatik-diagnostic/internal/usecase"
	"github.com/xavierca1/automatik-diagnostic/internal/watcher"
)

type MockForwarder struct {
	mock.Mock
}

func (m *MockForwarder) Forward(ctx context.Context, contentType string, body []byte) (*mautic.ForwardResult, error) {
	args := m.Called(ctx, contentType, body)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*mautic.ForwardResult), args.Error(1)
}

type MockStarter struct {
	mock.Mock
}

func (m *MockStarter) Execute(ctx context.Context, input usecase.StartDiagnosticInput) (*usecase.StartDiagnosticOutput, error) {
	args := m.Called(ctx, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*usecase.StartDiagnosticOutput), args.Error(1)
}

type MockResults struct {
	mock.Mock
}

func (m *MockResults) FindResultsByID(ctx context.Context, id string) (string, error) {
	args := m.Called(ctx, id)
	return args.String(0), args.Error(1)
}

type MockDeliverer struct {
	mock.Mock
}

func (m *MockDeliverer) Execute(ctx context.Context, input usecase.ResultWebhookInput) (*usecase.ResultWebhookOutput, error) {
	args := m.Called(ctx, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*usecase.ResultWebhookOutput), args.Error(1)
}

// stubWatcher emite os progressos configurados e devolve o desfecho fixo.
type stubWatcher struct {
	progress []watcher.Progress
	outcome  watcher.Outcome
	err      error
}

func (s *stubWatcher) Watch(ctx context.Context, recordID string, onProgress func(watcher.Progress)) (watcher.Outcome, error) {
	for _, p := range s.progress {
		onProgress(p)
	}
	s.outcome.RecordID = recordID
	return s.outcome, s.err
}
