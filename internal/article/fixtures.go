package article

import (
	"time"

	"github.com/pkg/errors"

	"github.com/SergeyParamoshkin/conduit/internal/model"
	"github.com/SergeyParamoshkin/conduit/internal/user"
)

type fixture struct {
	author string
	form   model.ArticleForm
}

// Article fixture data
var fixtures = []fixture{
	{"peter", model.ArticleForm{Title: "Hi", Description: "A first post", Body: "Hello, world.", TagList: []string{"welcome"}}},
	{"julia", model.ArticleForm{Title: "sup", Description: "Checking in", Body: "Not much.", TagList: []string{"welcome", "chat"}}},
	{"peter", model.ArticleForm{Title: "alo", Description: "Phones", Body: "Who is calling?", TagList: []string{"chat"}}},
	{"julia", model.ArticleForm{Title: "bonjour", Description: "En français", Body: "Salut tout le monde.", TagList: []string{"french"}}},
	{"peter", model.ArticleForm{Title: "whats up", Description: "Weekly notes", Body: "Still shipping."}},
}

// Seed stores the fixture articles, one minute apart, by the fixture users
// of users. Julia comments on and favorites Peter's first post.
func Seed(s *Store, users *user.Store) error {
	start := time.Now().Add(-time.Duration(len(fixtures)) * time.Minute)
	now := s.now
	defer func() { s.now = now }()

	for i, f := range fixtures {
		u, err := users.ByUsername(f.author)
		if err != nil {
			return errors.Wrapf(err, "seed article %q", f.form.Title)
		}
		at := start.Add(time.Duration(i) * time.Minute)
		s.now = func() time.Time { return at }
		if _, errs := s.Create(u.ID, f.form); errs != nil {
			return errors.Errorf("seed article %q: %s", f.form.Title, errs)
		}
	}

	julia, err := users.ByUsername("julia")
	if err != nil {
		return errors.Wrap(err, "seed comments")
	}
	if _, err := s.Favorite("hi", julia.ID, true); err != nil {
		return err
	}
	if _, _, err := s.AddComment("hi", julia.ID, "Welcome aboard!"); err != nil {
		return err
	}

	return nil
}
