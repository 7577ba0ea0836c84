package api

import (
	"context"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/mock"

	"github.com/Keyring-Network/keyring-gavryn/relay/internal/config"
	"github.com/Keyring-Network/keyring-gavryn/relay/internal/events"
	"github.com/Keyring-Network/keyring-gavryn/relay/internal/logger/logtest"
	"github.com/Keyring-Network/keyring-gavryn/relay/internal/scrape"
)

type MockGateway struct {
	mock.Mock
	// Script is emitted, in order, before Run returns.
	Script []events.Event
}

func (m *MockGateway) Run(ctx context.Context, message string, emit func(events.Event)) error {
	args := m.Called(ctx, message)
	for _, event := range m.Script {
		emit(event)
	}
	return args.Error(0)
}

type MockSearch struct {
	mock.Mock
}

func (m *MockSearch) Companies(ctx context.Context, name string) scrape.Result {
	args := m.Called(ctx, name)
	return args.Get(0).(scrape.Result)
}

func (m *MockSearch) ForumPosts(ctx context.Context, term string) scrape.Result {
	args := m.Called(ctx, term)
	return args.Get(0).(scrape.Result)
}

func (m *MockSearch) ShortPosts(ctx context.Context, term string) scrape.Result {
	args := m.Called(ctx, term)
	return args.Get(0).(scrape.Result)
}

func newTestServer(t *testing.T, gateway ChatGateway, search SearchService, cfg config.Config) *httptest.Server {
	t.Helper()
	server := NewServer(gateway, search, cfg, logtest.New(t))
	return httptest.NewServer(server.Router())
}
