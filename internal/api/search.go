package api

import (
	"context"
	"net/http"
	"strings"

	"github.com/Keyring-Network/keyring-gavryn/relay/internal/apify"
	"github.com/Keyring-Network/keyring-gavryn/relay/internal/metrics"
	"github.com/Keyring-Network/keyring-gavryn/relay/internal/scrape"
)

type searchEndpoint struct {
	platform string
	field    string
	missing  string
	lookup   func(s SearchService, ctx context.Context, term string) scrape.Result
}

var (
	linkedInSearch = searchEndpoint{
		platform: "LinkedIn",
		field:    "company",
		missing:  "Company name not found",
		lookup:   SearchService.Companies,
	}
	redditSearch = searchEndpoint{
		platform: "Reddit",
		field:    "search",
		missing:  "Search term not found",
		lookup:   SearchService.ForumPosts,
	}
	twitterSearch = searchEndpoint{
		platform: "Twitter",
		field:    "search",
		missing:  "Search term not found",
		lookup:   SearchService.ShortPosts,
	}
)

type searchResponse struct {
	Success bool         `json:"success"`
	Data    []apify.Item `json:"data"`
}

func (s *Server) searchHandler(endpoint searchEndpoint) http.HandlerFunc {
	platform := strings.ToLower(endpoint.platform)
	return func(w http.ResponseWriter, r *http.Request) {
		body := map[string]any{}
		decodeBody(r, &body)
		term, _ := body[endpoint.field].(string)
		term = strings.TrimSpace(term)
		if term == "" {
			metrics.SearchRequestsTotal.WithLabelValues(platform, "invalid").Inc()
			writeJSON(w, errorResponse(endpoint.missing))
			return
		}

		s.logger.Info("search requested", map[string]any{"platform": endpoint.platform, "term": term})
		// The actor run finishes even if the caller goes away.
		result := endpoint.lookup(s.search, context.WithoutCancel(r.Context()), term)
		if !result.OK() {
			metrics.SearchRequestsTotal.WithLabelValues(platform, "failed").Inc()
			writeJSON(w, errorResponse(endpoint.platform+" search failed: "+result.Reason))
			return
		}

		metrics.SearchRequestsTotal.WithLabelValues(platform, "ok").Inc()
		writeJSON(w, searchResponse{Success: true, Data: result.Records()})
	}
}
