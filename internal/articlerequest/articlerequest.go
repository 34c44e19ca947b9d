// Package articlerequest holds the request payloads of the articles
// resource.
package articlerequest

import (
	"errors"
	"net/http"
	"strings"

	"github.com/SergeyParamoshkin/conduit/internal/model"
)

// ArticleRequest is the request payload for creating and updating articles.
type ArticleRequest struct {
	Article *model.ArticleForm `json:"article"`
}

func (a *ArticleRequest) Bind(r *http.Request) error {
	// a.Article is nil if no Article fields are sent in the request. Return an
	// error to avoid a nil pointer dereference.
	if a.Article == nil {
		return errors.New("missing required article fields")
	}

	a.Article.Title = strings.TrimSpace(a.Article.Title)
	if a.Article.TagList != nil {
		a.Article.TagList = cleanTags(a.Article.TagList)
	}

	return nil
}

// cleanTags trims tags and drops blanks and duplicates, keeping order.
func cleanTags(tags []string) []string {
	seen := make(map[string]bool, len(tags))
	out := make([]string, 0, len(tags))
	for _, t := range tags {
		t = strings.TrimSpace(t)
		if t == "" || seen[t] {
			continue
		}
		seen[t] = true
		out = append(out, t)
	}

	return out
}

// CommentRequest is the request payload for adding a comment.
type CommentRequest struct {
	Comment *model.NewComment `json:"comment"`
}

func (c *CommentRequest) Bind(r *http.Request) error {
	if c.Comment == nil {
		return errors.New("missing required comment fields")
	}
	c.Comment.Body = strings.TrimSpace(c.Comment.Body)

	return nil
}
