package model

// Envelopes exchanged with the Conduit API. Every resource travels wrapped
// in an object keyed by its name.

type UserResponse struct {
	User User `json:"user"`
}

type ProfileResponse struct {
	Profile Profile `json:"profile"`
}

type ArticleResponse struct {
	Article Article `json:"article"`
}

type ArticleListResponse struct {
	Articles      []Article `json:"articles"`
	ArticlesCount int       `json:"articlesCount"`
}

type CommentResponse struct {
	Comment Comment `json:"comment"`
}

type CommentListResponse struct {
	Comments []Comment `json:"comments"`
}

type TagListResponse struct {
	Tags []string `json:"tags"`
}

type LoginRequest struct {
	User Credentials `json:"user"`
}

type RegisterRequest struct {
	User Registration `json:"user"`
}

type UpdateUserRequest struct {
	User UserUpdate `json:"user"`
}

type ArticleRequest struct {
	Article ArticleForm `json:"article"`
}

type CommentRequest struct {
	Comment NewComment `json:"comment"`
}
