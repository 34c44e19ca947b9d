package model

import (
	"net/url"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFeedParamsPath(t *testing.T) {
	cases := []struct {
		name   string
		params FeedParams
		path   string
		query  url.Values
	}{
		{
			name:   "global",
			params: DefaultFeedParams(),
			path:   "articles",
			query:  url.Values{"limit": {"20"}, "offset": {"0"}},
		},
		{
			name:   "personal feed",
			params: FeedParams{Limit: 10, Offset: 20, Feed: PersonalFeed},
			path:   "articles/feed",
			query:  url.Values{"limit": {"10"}, "offset": {"20"}},
		},
		{
			name:   "by author",
			params: FeedParams{Limit: 5, Author: "jake"},
			path:   "articles",
			query:  url.Values{"limit": {"5"}, "offset": {"0"}, "author": {"jake"}},
		},
		{
			name:   "by tag",
			params: FeedParams{Limit: 20, Offset: 40, Tag: "go lang"},
			path:   "articles",
			query:  url.Values{"limit": {"20"}, "offset": {"40"}, "tag": {"go lang"}},
		},
		{
			name:   "favorited by",
			params: FeedParams{Limit: 20, Favorited: "ann"},
			path:   "articles",
			query:  url.Values{"limit": {"20"}, "offset": {"0"}, "favorited": {"ann"}},
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := tc.params.Path()
			parts := strings.SplitN(got, "?", 2)
			require.Len(t, parts, 2)
			assert.Equal(t, tc.path, parts[0])

			q, err := url.ParseQuery(parts[1])
			require.NoError(t, err)
			assert.Equal(t, tc.query, q)
		})
	}
}

func TestErrorsFrom(t *testing.T) {
	assert.Nil(t, ErrorsFrom(nil))
	assert.Equal(t, Errors{NetworkField: {"boom"}}, ErrorsFrom(errString("boom")))
	assert.Equal(t, Errors{"email": {"is invalid"}}, ErrorsFrom(fieldErr{"email": {"is invalid"}}))
}

func TestErrorsString(t *testing.T) {
	errs := Errors{}.Add("title", "can't be blank").Add("body", "can't be blank")
	assert.Equal(t, "body can't be blank\ntitle can't be blank", errs.String())
}

type errString string

func (e errString) Error() string { return string(e) }

type fieldErr Errors

func (e fieldErr) Error() string { return "field error" }
func (e fieldErr) FieldErrors() Errors { return Errors(e) }
