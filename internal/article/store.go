package article

import (
	"sort"
	"strconv"
	"strings"
	"sync"
	"time"
	"unicode"

	"github.com/pkg/errors"

	"github.com/SergeyParamoshkin/conduit/internal/model"
)

var (
	ErrNotFound  = errors.New("article not found")
	ErrForbidden = errors.New("not the author")
)

// Article is a stored article. Author and favorites are user ids.
type Article struct {
	Slug        string
	Title       string
	Description string
	Body        string
	TagList     []string
	CreatedAt   time.Time
	UpdatedAt   time.Time
	AuthorID    int64
	FavoritedBy map[int64]bool
}

// Comment is a stored comment.
type Comment struct {
	ID        int
	Body      string
	CreatedAt time.Time
	UpdatedAt time.Time
	AuthorID  int64
}

// Query selects articles. A nil Authors matches any author, an empty one
// none. A zero FavoritedBy matches regardless of favorites.
type Query struct {
	Tag         string
	Authors     []int64
	FavoritedBy int64
	Limit       int
	Offset      int
}

// Store keeps articles and their comments in memory.
type Store struct {
	mu          sync.RWMutex
	articles    []*Article
	comments    map[string][]*Comment
	nextComment int
	now         func() time.Time
}

func NewStore() *Store {
	return &Store{
		comments: map[string][]*Comment{},
		now:      time.Now,
	}
}

func clone(a *Article) Article {
	c := *a
	c.TagList = append([]string(nil), a.TagList...)
	c.FavoritedBy = make(map[int64]bool, len(a.FavoritedBy))
	for id := range a.FavoritedBy {
		c.FavoritedBy[id] = true
	}

	return c
}

// List returns one page of the articles matching q, newest first, and the
// number of matches.
func (s *Store) List(q Query) ([]Article, int) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var authors map[int64]bool
	if q.Authors != nil {
		authors = make(map[int64]bool, len(q.Authors))
		for _, id := range q.Authors {
			authors[id] = true
		}
	}

	var matched []*Article
	for i := len(s.articles) - 1; i >= 0; i-- {
		a := s.articles[i]
		if authors != nil && !authors[a.AuthorID] {
			continue
		}
		if q.Tag != "" && !hasTag(a.TagList, q.Tag) {
			continue
		}
		if q.FavoritedBy != 0 && !a.FavoritedBy[q.FavoritedBy] {
			continue
		}
		matched = append(matched, a)
	}

	total := len(matched)
	if q.Offset >= total {
		return []Article{}, total
	}
	matched = matched[q.Offset:]
	if q.Limit > 0 && q.Limit < len(matched) {
		matched = matched[:q.Limit]
	}

	page := make([]Article, len(matched))
	for i, a := range matched {
		page[i] = clone(a)
	}

	return page, total
}

func hasTag(tags []string, tag string) bool {
	for _, t := range tags {
		if t == tag {
			return true
		}
	}

	return false
}

func (s *Store) get(slug string) (*Article, error) {
	for _, a := range s.articles {
		if a.Slug == slug {
			return a, nil
		}
	}

	return nil, ErrNotFound
}

func (s *Store) Get(slug string) (Article, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	a, err := s.get(slug)
	if err != nil {
		return Article{}, err
	}

	return clone(a), nil
}

func validate(form model.ArticleForm) model.Errors {
	var errs model.Errors
	if form.Title == "" {
		errs = errs.Add("title", "can't be blank")
	}
	if form.Description == "" {
		errs = errs.Add("description", "can't be blank")
	}
	if form.Body == "" {
		errs = errs.Add("body", "can't be blank")
	}

	return errs
}

// Create stores a new article by author. The slug is derived from the title
// and made unique.
func (s *Store) Create(author int64, form model.ArticleForm) (Article, model.Errors) {
	if errs := validate(form); errs != nil {
		return Article{}, errs
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	a := &Article{
		Slug:        s.uniqueSlug(Slugify(form.Title)),
		Title:       form.Title,
		Description: form.Description,
		Body:        form.Body,
		TagList:     append([]string(nil), form.TagList...),
		CreatedAt:   now,
		UpdatedAt:   now,
		AuthorID:    author,
		FavoritedBy: map[int64]bool{},
	}
	s.articles = append(s.articles, a)

	return clone(a), nil
}

func (s *Store) uniqueSlug(base string) string {
	if base == "" {
		base = "article"
	}
	slug := base
	for n := 2; ; n++ {
		if _, err := s.get(slug); err != nil {
			return slug
		}
		slug = base + "-" + strconv.Itoa(n)
	}
}

// Slugify lowercases title and joins its words with dashes.
func Slugify(title string) string {
	var b strings.Builder
	dash := false
	for _, r := range strings.ToLower(title) {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			if dash && b.Len() > 0 {
				b.WriteByte('-')
			}
			b.WriteRune(r)
			dash = false

			continue
		}
		dash = true
	}

	return b.String()
}

// Update changes the non-empty fields of form on the article with slug. A
// nil tag list leaves the tags unchanged. The slug never changes.
func (s *Store) Update(slug string, author int64, form model.ArticleForm) (Article, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	a, err := s.get(slug)
	if err != nil {
		return Article{}, err
	}
	if a.AuthorID != author {
		return Article{}, ErrForbidden
	}

	if form.Title != "" {
		a.Title = form.Title
	}
	if form.Description != "" {
		a.Description = form.Description
	}
	if form.Body != "" {
		a.Body = form.Body
	}
	if form.TagList != nil {
		a.TagList = append([]string(nil), form.TagList...)
	}
	a.UpdatedAt = s.now()

	return clone(a), nil
}

// Delete removes the article with slug and its comments.
func (s *Store) Delete(slug string, author int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i, a := range s.articles {
		if a.Slug != slug {
			continue
		}
		if a.AuthorID != author {
			return ErrForbidden
		}
		s.articles = append(s.articles[:i], s.articles[i+1:]...)
		delete(s.comments, slug)

		return nil
	}

	return ErrNotFound
}

// Favorite marks the article favorited by user, or unmarks it when on is
// false.
func (s *Store) Favorite(slug string, user int64, on bool) (Article, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	a, err := s.get(slug)
	if err != nil {
		return Article{}, err
	}
	if on {
		a.FavoritedBy[user] = true
	} else {
		delete(a.FavoritedBy, user)
	}

	return clone(a), nil
}

// Tags lists every tag in use, sorted.
func (s *Store) Tags() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()

	seen := map[string]bool{}
	tags := []string{}
	for _, a := range s.articles {
		for _, t := range a.TagList {
			if !seen[t] {
				seen[t] = true
				tags = append(tags, t)
			}
		}
	}
	sort.Strings(tags)

	return tags
}

// Comments lists the comments of the article with slug, newest first.
func (s *Store) Comments(slug string) ([]Comment, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if _, err := s.get(slug); err != nil {
		return nil, err
	}
	stored := s.comments[slug]
	out := make([]Comment, 0, len(stored))
	for i := len(stored) - 1; i >= 0; i-- {
		out = append(out, *stored[i])
	}

	return out, nil
}

// AddComment stores a comment by author. Comment ids are never reused.
func (s *Store) AddComment(slug string, author int64, body string) (Comment, model.Errors, error) {
	if body == "" {
		return Comment{}, model.Errors{"body": {"can't be blank"}}, nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, err := s.get(slug); err != nil {
		return Comment{}, nil, err
	}
	s.nextComment++
	now := s.now()
	c := &Comment{ID: s.nextComment, Body: body, CreatedAt: now, UpdatedAt: now, AuthorID: author}
	s.comments[slug] = append(s.comments[slug], c)

	return *c, nil, nil
}

// DeleteComment removes comment id of the article with slug.
func (s *Store) DeleteComment(slug string, id int, author int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	list := s.comments[slug]
	for i, c := range list {
		if c.ID != id {
			continue
		}
		if c.AuthorID != author {
			return ErrForbidden
		}
		s.comments[slug] = append(list[:i], list[i+1:]...)

		return nil
	}

	return errors.Wrapf(ErrNotFound, "comment %d", id)
}
