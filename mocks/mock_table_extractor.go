package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"fleetdesk/internal/port"
)

// MockTableExtractor is a mock implementation of port.TableExtractor.
type MockTableExtractor struct {
	mock.Mock
}

func (m *MockTableExtractor) AnalyzeDocument(ctx context.Context, input port.DocumentInput) (*port.TableOutput, error) {
	args := m.Called(ctx, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*port.TableOutput), args.Error(1)
}
