package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"boothscan/internal/port"
)

// MockExtractionClient is a mock implementation of port.ExtractionClient.
type MockExtractionClient struct {
	mock.Mock
}

func (m *MockExtractionClient) Extract(ctx context.Context, req port.ExtractRequest) (*port.ExtractResponse, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*port.ExtractResponse), args.Error(1)
}
