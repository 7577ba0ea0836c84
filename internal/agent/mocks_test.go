package agent

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/Keyring-Network/keyring-gavryn/relay/internal/llm"
	"github.com/Keyring-Network/keyring-gavryn/relay/internal/scrape"
)

type MockProvider struct {
	mock.Mock
}

func (m *MockProvider) Complete(ctx context.Context, messages []llm.Message, tools []llm.Tool) (*llm.Completion, error) {
	args := m.Called(ctx, messages, tools)
	completion, _ := args.Get(0).(*llm.Completion)
	return completion, args.Error(1)
}

type MockLookup struct {
	mock.Mock
}

func (m *MockLookup) Technology(ctx context.Context, url string) scrape.Result {
	args := m.Called(ctx, url)
	return args.Get(0).(scrape.Result)
}
