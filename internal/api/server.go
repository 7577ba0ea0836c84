package api

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/Keyring-Network/keyring-gavryn/relay/internal/config"
	"github.com/Keyring-Network/keyring-gavryn/relay/internal/events"
	"github.com/Keyring-Network/keyring-gavryn/relay/internal/logger"
	"github.com/Keyring-Network/keyring-gavryn/relay/internal/metrics"
	"github.com/Keyring-Network/keyring-gavryn/relay/internal/scrape"
)

const defaultHeartbeat = 15 * time.Second

type Server struct {
	gateway   ChatGateway
	search    SearchService
	cfg       config.Config
	logger    logger.Logger
	heartbeat time.Duration
}

// ChatGateway answers one chat message with a sequence of events.
type ChatGateway interface {
	Run(ctx context.Context, message string, emit func(events.Event)) error
}

type SearchService interface {
	Companies(ctx context.Context, name string) scrape.Result
	ForumPosts(ctx context.Context, term string) scrape.Result
	ShortPosts(ctx context.Context, term string) scrape.Result
}

func NewServer(gateway ChatGateway, search SearchService, cfg config.Config, log logger.Logger) *Server {
	heartbeat := cfg.StreamHeartbeat
	if heartbeat <= 0 {
		heartbeat = defaultHeartbeat
	}
	return &Server{
		gateway:   gateway,
		search:    search,
		cfg:       cfg,
		logger:    log.With(map[string]any{"stage": "API"}),
		heartbeat: heartbeat,
	}
}

func (s *Server) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(quietRequestLogger)
	r.Use(middleware.Recoverer)
	r.Use(corsMiddleware)

	r.Post("/chat", s.chat)
	r.Post("/linkedin", s.searchHandler(linkedInSearch))
	r.Post("/reddit", s.searchHandler(redditSearch))
	r.Post("/twitter", s.searchHandler(twitterSearch))
	r.Get("/health", s.health)
	r.Get("/ready", s.ready)
	r.Method(http.MethodGet, "/metrics", metrics.Handler())

	return r
}

func quietRequestLogger(next http.Handler) http.Handler {
	logged := middleware.Logger(next)
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if shouldSuppressRequestLog(r.Method, r.URL.Path) {
			next.ServeHTTP(w, r)
			return
		}
		logged.ServeHTTP(w, r)
	})
}

func shouldSuppressRequestLog(method string, path string) bool {
	if method == http.MethodOptions {
		return true
	}
	switch strings.TrimSpace(path) {
	case "/health", "/ready", "/metrics":
		return method == http.MethodGet
	}
	return false
}

// corsMiddleware allows any origin. A request Origin is echoed back so that
// credentialed requests are accepted.
func corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		header := w.Header()
		if origin := r.Header.Get("Origin"); origin != "" {
			header.Set("Access-Control-Allow-Origin", origin)
			header.Set("Access-Control-Allow-Credentials", "true")
			header.Add("Vary", "Origin")
		} else {
			header.Set("Access-Control-Allow-Origin", "*")
		}
		if r.Method == http.MethodOptions {
			methods := r.Header.Get("Access-Control-Request-Method")
			if methods == "" {
				methods = "GET, POST, PUT, PATCH, DELETE, OPTIONS"
			}
			header.Set("Access-Control-Allow-Methods", methods)
			if requested := r.Header.Get("Access-Control-Request-Headers"); requested != "" {
				header.Set("Access-Control-Allow-Headers", requested)
			} else {
				header.Set("Access-Control-Allow-Headers", "*")
			}
			w.WriteHeader(http.StatusNoContent)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (s *Server) health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, map[string]string{"status": "ok"})
}

type readinessResponse struct {
	Status     string            `json:"status"`
	Subsystems map[string]string `json:"subsystems"`
}

// ready reports which remote credentials are configured. Missing credentials
// only fail at first use, so the endpoint always answers 200.
func (s *Server) ready(w http.ResponseWriter, r *http.Request) {
	llmKey := s.cfg.OpenAIAPIKey
	if s.cfg.LLMProvider == "openrouter" {
		llmKey = s.cfg.OpenRouterAPIKey
	}
	subsystems := map[string]string{
		"llm":   credentialStatus(llmKey),
		"apify": credentialStatus(s.cfg.ApifyAPIToken),
	}
	status := "ok"
	for _, state := range subsystems {
		if state != "ok" {
			status = "degraded"
		}
	}
	writeJSON(w, readinessResponse{Status: status, Subsystems: subsystems})
}

func credentialStatus(value string) string {
	if strings.TrimSpace(value) == "" {
		return "missing"
	}
	return "ok"
}

// decodeBody fills dst from a JSON body. Bodies that are absent or not
// valid JSON leave dst untouched.
func decodeBody(r *http.Request, dst any) {
	if r.Body == nil {
		return
	}
	_ = json.NewDecoder(r.Body).Decode(dst)
}

func writeJSON(w http.ResponseWriter, value any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_ = json.NewEncoder(w).Encode(value)
}

func errorResponse(message string) map[string]string {
	return map[string]string{"error": message}
}

func (s *Server) Start(ctx context.Context, addr string) error {
	server := &http.Server{
		Addr:              addr,
		Handler:           s.Router(),
		ReadHeaderTimeout: 10 * time.Second,
	}
	go func() {
		<-ctx.Done()
		_ = server.Shutdown(context.Background())
	}()
	return server.ListenAndServe()
}
