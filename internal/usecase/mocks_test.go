package usecase_test

import (
	"context"
	"time"

	"github.com/stretchr/testify/mock"

	"github.com/xavierca1/automatik-diagnostic/internal/entity"
)

type MockDiagnosticRepository struct {
	mock.Mock
}

func (m *MockDiagnosticRepository) Create(ctx context.Context, record *entity.DiagnosticRecord) error {
	args := m.Called(ctx, record)
	return args.Error(0)
}

func (m *MockDiagnosticRepository) FindResultsByID(ctx context.Context, id string) (string, error) {
	args := m.Called(ctx, id)
	return args.String(0), args.Error(1)
}

func (m *MockDiagnosticRepository) UpdateFromWebhook(ctx context.Context, id string, update entity.DiagnosticUpdate) (*entity.DiagnosticRecord, error) {
	args := m.Called(ctx, id, update)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.DiagnosticRecord), args.Error(1)
}

func (m *MockDiagnosticRepository) CountPendingOlderThan(ctx context.Context, age time.Duration) (int, error) {
	args := m.Called(ctx, age)
	return args.Int(0), args.Error(1)
}

type MockDispatcher struct {
	mock.Mock
}

func (m *MockDispatcher) Dispatch(ctx context.Context, req entity.AnalysisRequest) error {
	args := m.Called(ctx, req)
	return args.Error(0)
}

type MockPublisher struct {
	mock.Mock
}

func (m *MockPublisher) Publish(event entity.ResultEvent) {
	m.Called(event)
}

type MockMailer struct {
	mock.Mock
	sent chan string
}

func (m *MockMailer) SendDiagnosticReport(to, nome, blogURL string, report entity.DiagnosticReport) error {
	args := m.Called(to, nome, blogURL, report)
	if m.sent != nil {
		m.sent <- to
	}
	return args.Error(0)
}

func strPtr(s string) *string {
	return &s
}
