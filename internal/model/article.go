package model

import "time"

// Article data model as served by the Conduit API. Slug is the unique id.
type Article struct {
	Slug           string    `json:"slug"`
	Title          string    `json:"title"`
	Description    string    `json:"description"`
	Body           string    `json:"body"`
	TagList        []string  `json:"tagList"`
	CreatedAt      time.Time `json:"createdAt"`
	UpdatedAt      time.Time `json:"updatedAt"`
	Favorited      bool      `json:"favorited"`
	FavoritesCount int       `json:"favoritesCount"`
	Author         Profile   `json:"author"`
}

// ArticleForm is the editable subset of an Article.
type ArticleForm struct {
	Title       string   `json:"title"`
	Description string   `json:"description"`
	Body        string   `json:"body"`
	TagList     []string `json:"tagList"`
}

// FormOf returns the editable fields of a.
func FormOf(a Article) ArticleForm {
	return ArticleForm{
		Title:       a.Title,
		Description: a.Description,
		Body:        a.Body,
		TagList:     a.TagList,
	}
}

// Comment belongs to exactly one article. IDs are never reused.
type Comment struct {
	ID        int       `json:"id"`
	Body      string    `json:"body"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
	Author    Profile   `json:"author"`
}

// NewComment is the body of a comment create request.
type NewComment struct {
	Body string `json:"body"`
}
