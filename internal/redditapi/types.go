package redditapi

// Post is a single submission as returned by the search endpoint.
type Post struct {
	ID          string  `json:"id"`
	Title       string  `json:"title"`
	Author      string  `json:"author"`
	Subreddit   string  `json:"subreddit"`
	Permalink   string  `json:"permalink"`
	SelfText    string  `json:"selftext"`
	CreatedUTC  float64 `json:"created_utc"`
	NumComments int     `json:"num_comments"`
	Score       int     `json:"score"`
	UpvoteRatio float64 `json:"upvote_ratio"`
}

// listing mirrors the wire shape of a search response: a Listing envelope
// wrapping thing envelopes.
type listing struct {
	Data struct {
		Children []struct {
			Data Post `json:"data"`
		} `json:"children"`
	} `json:"data"`
}

// tokenResponse is the OAuth token endpoint reply.
type tokenResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
	ExpiresIn   int    `json:"expires_in"`
	Error       string `json:"error"`
}

// Strategy pairs a sort order with a time window for one search call.
type Strategy struct {
	Sort string // "relevance", "new", "top"
	Time string // "year", "month"
}

// strategyPresets diversify result composition across queries instead of
// repeating the same ranking for every call.
var strategyPresets = []Strategy{
	{Sort: "relevance", Time: "year"},
	{Sort: "new", Time: "month"},
	{Sort: "top", Time: "month"},
}

// StrategyFor returns the preset for a query at the given position index,
// chosen round-robin.
func StrategyFor(index int) Strategy {
	if index < 0 {
		index = -index
	}
	return strategyPresets[index%len(strategyPresets)]
}
