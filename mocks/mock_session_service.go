package mocks

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"

	"boothscan/internal/domain"
	"boothscan/internal/intake"
	"boothscan/internal/service"
)

// MockSessionService is a mock implementation of service.SessionService.
type MockSessionService struct {
	mock.Mock
}

func (m *MockSessionService) Create(ctx context.Context) (*service.SessionInfo, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.SessionInfo), args.Error(1)
}

func (m *MockSessionService) Get(ctx context.Context, id uuid.UUID) (*service.SessionInfo, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.SessionInfo), args.Error(1)
}

func (m *MockSessionService) Delete(ctx context.Context, id uuid.UUID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockSessionService) AddFiles(ctx context.Context, id uuid.UUID, candidates []intake.Candidate) (*intake.AddResult, error) {
	args := m.Called(ctx, id, candidates)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*intake.AddResult), args.Error(1)
}

func (m *MockSessionService) ListFiles(ctx context.Context, id uuid.UUID) ([]domain.CandidateFile, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.CandidateFile), args.Error(1)
}

func (m *MockSessionService) RemoveFile(ctx context.Context, id, fileID uuid.UUID) error {
	args := m.Called(ctx, id, fileID)
	return args.Error(0)
}

func (m *MockSessionService) ClearFiles(ctx context.Context, id uuid.UUID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockSessionService) Submit(ctx context.Context, id uuid.UUID) (*service.Submission, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.Submission), args.Error(1)
}

func (m *MockSessionService) Reset(ctx context.Context, id uuid.UUID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockSessionService) Status(ctx context.Context, id uuid.UUID) (*service.PipelineStatus, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.PipelineStatus), args.Error(1)
}

func (m *MockSessionService) Results(ctx context.Context, id uuid.UUID) ([]domain.ExtractionResult, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.ExtractionResult), args.Error(1)
}

func (m *MockSessionService) Export(ctx context.Context, id uuid.UUID, index int, profile domain.ExportProfile, format domain.ExportFormat) (*service.ExportOutput, error) {
	args := m.Called(ctx, id, index, profile, format)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.ExportOutput), args.Error(1)
}

func (m *MockSessionService) EvictIdle(now time.Time) int {
	args := m.Called(now)
	return args.Int(0)
}
