package scrape

import "strings"

const (
	TechnologyActor = "canadesk/builtwith"
	CompanyActor    = "bebity~linkedin-premium-actor"
	ForumActor      = "trudax~reddit-scraper-lite"
	PostActor       = "web.harvester~twitter-scraper"
)

// Input bundles are structs rather than maps so the JSON sent to an actor
// keeps a fixed field order.

type ProxyConfig struct {
	UseApifyProxy    bool     `json:"useApifyProxy"`
	ApifyProxyGroups []string `json:"apifyProxyGroups"`
}

func residentialProxy() ProxyConfig {
	return ProxyConfig{UseApifyProxy: true, ApifyProxyGroups: []string{"RESIDENTIAL"}}
}

type TechnologyRunInput struct {
	URL string `json:"url"`
}

func TechnologyInput(url string) TechnologyRunInput {
	return TechnologyRunInput{URL: url}
}

type CompanyRunInput struct {
	Action   string   `json:"action"`
	Keywords []string `json:"keywords"`
	IsURL    bool     `json:"isUrl"`
	IsName   bool     `json:"isName"`
	Limit    int      `json:"limit"`
}

func CompanyInput(name string) CompanyRunInput {
	return CompanyRunInput{
		Action:   "get-companies",
		Keywords: []string{name},
		IsURL:    false,
		IsName:   false,
		Limit:    10,
	}
}

type ForumRunInput struct {
	DebugMode           bool        `json:"debugMode"`
	IgnoreStartURLs     bool        `json:"ignoreStartUrls"`
	IncludeNSFW         bool        `json:"includeNSFW"`
	MaxComments         int         `json:"maxComments"`
	MaxCommunitiesCount int         `json:"maxCommunitiesCount"`
	MaxItems            int         `json:"maxItems"`
	MaxPostCount        int         `json:"maxPostCount"`
	MaxUserCount        int         `json:"maxUserCount"`
	Proxy               ProxyConfig `json:"proxy"`
	ScrollTimeout       int         `json:"scrollTimeout"`
	SearchComments      bool        `json:"searchComments"`
	SearchCommunities   bool        `json:"searchCommunities"`
	SearchPosts         bool        `json:"searchPosts"`
	SearchUsers         bool        `json:"searchUsers"`
	Searches            []string    `json:"searches"`
	SkipComments        bool        `json:"skipComments"`
	SkipCommunity       bool        `json:"skipCommunity"`
	SkipUserPosts       bool        `json:"skipUserPosts"`
	Sort                string      `json:"sort"`
}

func ForumInput(term string) ForumRunInput {
	return ForumRunInput{
		IncludeNSFW:         true,
		MaxComments:         10,
		MaxCommunitiesCount: 2,
		MaxItems:            10,
		MaxPostCount:        10,
		MaxUserCount:        2,
		Proxy:               residentialProxy(),
		ScrollTimeout:       40,
		SearchPosts:         true,
		Searches:            []string{term},
		Sort:                "new",
	}
}

type PostRunInput struct {
	StartURLs           []string    `json:"startUrls"`
	Handles             []string    `json:"handles"`
	UserQueries         []string    `json:"userQueries"`
	TweetsDesired       int         `json:"tweetsDesired"`
	ProfilesDesired     int         `json:"profilesDesired"`
	WithReplies         bool        `json:"withReplies"`
	IncludeUserInfo     bool        `json:"includeUserInfo"`
	StoreUserIfNoTweets bool        `json:"storeUserIfNoTweets"`
	ProxyConfig         ProxyConfig `json:"proxyConfig"`
}

// PostInput maps a term to the handle and query fields. A leading "@" is
// stripped for the handle; any "@" in the term disables the free-text query.
func PostInput(term string) PostRunInput {
	handle := strings.TrimPrefix(term, "@")
	queries := []string{}
	if !strings.Contains(term, "@") {
		queries = append(queries, term)
	}
	return PostRunInput{
		StartURLs:           []string{},
		Handles:             []string{handle},
		UserQueries:         queries,
		TweetsDesired:       3,
		ProfilesDesired:     1,
		WithReplies:         false,
		IncludeUserInfo:     true,
		StoreUserIfNoTweets: false,
		ProxyConfig:         residentialProxy(),
	}
}
