package model

import (
	"github.com/google/go-querystring/query"
)

// PersonalFeed selects the followed-authors feed.
const PersonalFeed = "me"

// FeedParams select a page of articles. At most one of Feed, Author, Tag and
// Favorited is expected to be set; that is a convention of the callers.
type FeedParams struct {
	Limit     int    `url:"limit"`
	Offset    int    `url:"offset"`
	Feed      string `url:"-"`
	Author    string `url:"author,omitempty"`
	Tag       string `url:"tag,omitempty"`
	Favorited string `url:"favorited,omitempty"`
}

// DefaultFeedParams is the first page of the global feed.
func DefaultFeedParams() FeedParams {
	return FeedParams{Limit: 20}
}

// Path returns the API path, query included, for p.
func (p FeedParams) Path() string {
	base := "articles"
	if p.Feed == PersonalFeed {
		base = "articles/feed"
	}
	v, err := query.Values(p)
	if err != nil {
		// only reachable for non-struct input
		return base
	}

	return base + "?" + v.Encode()
}
