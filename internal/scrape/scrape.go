package scrape

import (
	"context"

	"github.com/Keyring-Network/keyring-gavryn/relay/internal/apify"
	"github.com/Keyring-Network/keyring-gavryn/relay/internal/logger"
)

// Runner executes a remote actor to completion and returns its dataset.
type Runner interface {
	Run(ctx context.Context, actorID string, input any) ([]apify.Item, error)
}

// Result is the outcome of one adapter call. A failed result carries the
// user-facing reason and no items.
type Result struct {
	Items  []apify.Item
	Reason string
}

func (r Result) OK() bool {
	return r.Reason == ""
}

// Records returns the items of a successful result, or a one-element
// sequence holding an "error" key for a failed one.
func (r Result) Records() []apify.Item {
	if !r.OK() {
		return []apify.Item{{"error": r.Reason}}
	}
	if r.Items == nil {
		return []apify.Item{}
	}
	return r.Items
}

type adapter struct {
	label   string
	actorID string
	noun    string
	reason  string
}

var (
	technologyAdapter = adapter{label: "AGENT TOOL", actorID: TechnologyActor, noun: "technologies", reason: "Failed to retrieve technology data."}
	companyAdapter    = adapter{label: "LINKEDIN", actorID: CompanyActor, noun: "LinkedIn companies", reason: "Failed to retrieve LinkedIn data."}
	forumAdapter      = adapter{label: "REDDIT", actorID: ForumActor, noun: "Reddit posts", reason: "Failed to retrieve Reddit data."}
	postAdapter       = adapter{label: "TWITTER", actorID: PostActor, noun: "Twitter posts", reason: "Failed to retrieve Twitter data."}
)

type Service struct {
	runner Runner
	logger logger.Logger
}

func NewService(runner Runner, log logger.Logger) *Service {
	return &Service{runner: runner, logger: log}
}

// Technology fingerprints the technology stack of the site at url. The url
// is passed to the actor as given.
func (s *Service) Technology(ctx context.Context, url string) Result {
	return s.run(ctx, technologyAdapter, url, TechnologyInput(url))
}

func (s *Service) Companies(ctx context.Context, name string) Result {
	return s.run(ctx, companyAdapter, name, CompanyInput(name))
}

func (s *Service) ForumPosts(ctx context.Context, term string) Result {
	return s.run(ctx, forumAdapter, term, ForumInput(term))
}

func (s *Service) ShortPosts(ctx context.Context, term string) Result {
	return s.run(ctx, postAdapter, term, PostInput(term))
}

func (s *Service) run(ctx context.Context, a adapter, term string, input any) Result {
	s.logger.Info(a.label+": searching", map[string]any{"term": term})
	s.logger.Info("APIFY: calling actor", map[string]any{"actor": a.actorID, "term": term})

	items, err := s.runner.Run(ctx, a.actorID, input)
	if err != nil {
		s.logger.WithError(err).Error("APIFY: actor run failed", map[string]any{
			"actor": a.actorID,
			"stage": a.label,
			"term":  term,
		})
		return Result{Reason: a.reason}
	}
	if items == nil {
		items = []apify.Item{}
	}
	s.logger.Info("APIFY: actor run finished", map[string]any{
		"actor": a.actorID,
		"count": len(items),
		"kind":  a.noun,
		"term":  term,
	})
	return Result{Items: items}
}
