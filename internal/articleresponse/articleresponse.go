package articleresponse

import (
	"net/http"

	"github.com/SergeyParamoshkin/conduit/internal/model"
)

// ArticleResponse is the response payload for the Article data model.
//
// Render runs before the payload is marshalled; it fills the fields the
// Conduit clients expect to be present.
type ArticleResponse struct {
	model.ArticleResponse
}

func NewArticleResponse(a model.Article) *ArticleResponse {
	return &ArticleResponse{ArticleResponse: model.ArticleResponse{Article: a}}
}

func (rd *ArticleResponse) Render(w http.ResponseWriter, r *http.Request) error {
	rd.Article = normalize(rd.Article)

	return nil
}

type ArticleListResponse struct {
	model.ArticleListResponse
}

func NewArticleListResponse(articles []model.Article, count int) *ArticleListResponse {
	return &ArticleListResponse{ArticleListResponse: model.ArticleListResponse{
		Articles:      articles,
		ArticlesCount: count,
	}}
}

func (rd *ArticleListResponse) Render(w http.ResponseWriter, r *http.Request) error {
	list := make([]model.Article, len(rd.Articles))
	for i, a := range rd.Articles {
		list[i] = normalize(a)
	}
	rd.Articles = list

	return nil
}

func normalize(a model.Article) model.Article {
	if a.TagList == nil {
		a.TagList = []string{}
	}

	return a
}

type CommentResponse struct {
	model.CommentResponse
}

func NewCommentResponse(c model.Comment) *CommentResponse {
	return &CommentResponse{CommentResponse: model.CommentResponse{Comment: c}}
}

func (rd *CommentResponse) Render(w http.ResponseWriter, r *http.Request) error {
	return nil
}

type CommentListResponse struct {
	model.CommentListResponse
}

func NewCommentListResponse(comments []model.Comment) *CommentListResponse {
	return &CommentListResponse{CommentListResponse: model.CommentListResponse{Comments: comments}}
}

func (rd *CommentListResponse) Render(w http.ResponseWriter, r *http.Request) error {
	if rd.Comments == nil {
		rd.Comments = []model.Comment{}
	}

	return nil
}

type TagListResponse struct {
	model.TagListResponse
}

func NewTagListResponse(tags []string) *TagListResponse {
	return &TagListResponse{TagListResponse: model.TagListResponse{Tags: tags}}
}

func (rd *TagListResponse) Render(w http.ResponseWriter, r *http.Request) error {
	if rd.Tags == nil {
		rd.Tags = []string{}
	}

	return nil
}
