package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/Keyring-Network/keyring-gavryn/relay/internal/agent"
	"github.com/Keyring-Network/keyring-gavryn/relay/internal/api"
	"github.com/Keyring-Network/keyring-gavryn/relay/internal/apify"
	"github.com/Keyring-Network/keyring-gavryn/relay/internal/config"
	"github.com/Keyring-Network/keyring-gavryn/relay/internal/llm"
	"github.com/Keyring-Network/keyring-gavryn/relay/internal/logger"
	"github.com/Keyring-Network/keyring-gavryn/relay/internal/prompt"
	"github.com/Keyring-Network/keyring-gavryn/relay/internal/scrape"
)

type server interface {
	Start(ctx context.Context, addr string) error
}

var (
	loadConfig     = config.Load
	newLogger      = logger.NewStructured
	loadPrompt     = prompt.Load
	newProvider    = llm.NewProvider
	newActorClient = func(cfg apify.Config) scrape.Runner {
		return apify.NewClient(cfg)
	}
	newServer = func(gateway api.ChatGateway, search api.SearchService, cfg config.Config, log logger.Logger) server {
		return api.NewServer(gateway, search, cfg, log)
	}
	notifyContext = signal.NotifyContext
)

func main() {
	if err := run(); err != nil {
		log.Fatal(err)
	}
}

func run() error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	logr := newLogger(cfg.LogLevel, cfg.LogFormat)

	ctx, cancel := notifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	systemPrompt, err := loadPrompt(cfg.SystemPromptFile)
	if err != nil {
		return err
	}
	provider, err := newProvider(llm.Config{
		Provider:         cfg.LLMProvider,
		Model:            cfg.LLMModel,
		BaseURL:          cfg.LLMBaseURL,
		OpenAIAPIKey:     cfg.OpenAIAPIKey,
		OpenRouterAPIKey: cfg.OpenRouterAPIKey,
		Timeout:          cfg.LLMTimeout,
	})
	if err != nil {
		return err
	}
	runner := newActorClient(apify.Config{
		Token:         cfg.ApifyAPIToken,
		BaseURL:       cfg.ApifyBaseURL,
		WaitForFinish: cfg.ApifyWait,
	})

	search := scrape.NewService(runner, logr)
	tools, err := agent.NewToolset(agent.TechnologyTool(search))
	if err != nil {
		return err
	}
	gateway := agent.NewGateway(provider, tools, systemPrompt, logr)

	srv := newServer(gateway, search, cfg, logr)
	logr.Info("relay listening", map[string]any{
		"addr":     cfg.Addr(),
		"provider": cfg.LLMProvider,
		"model":    cfg.LLMModel,
	})
	if err := srv.Start(ctx, cfg.Addr()); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	logr.Info("relay stopped", nil)
	return nil
}
