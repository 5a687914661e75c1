package reviewer

import (
	"context"

	"github.com/stretchr/testify/mock"
)

// MockAIClient is a testify mock of AIClient.
type MockAIClient struct {
	mock.Mock
}

// Generate records the call and returns the configured answer.
func (m *MockAIClient) Generate(ctx context.Context, system, prompt string) (string, error) {
	args := m.Called(ctx, system, prompt)
	return args.String(0), args.Error(1)
}
