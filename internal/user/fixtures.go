package user

import (
	"github.com/pkg/errors"

	"github.com/SergeyParamoshkin/conduit/internal/model"
)

// FixturePassword is the password of every fixture user.
const FixturePassword = "password"

// Fixtures are the users a fresh development server starts with.
var Fixtures = []model.Registration{
	{Username: "peter", Email: "peter@conduit.dev", Password: FixturePassword},
	{Username: "julia", Email: "julia@conduit.dev", Password: FixturePassword},
}

// Seed registers the fixture users. Julia follows Peter.
func Seed(s *Store) error {
	ids := map[string]int64{}
	for _, reg := range Fixtures {
		u, errs, err := s.Create(reg)
		if err != nil {
			return err
		}
		if errs != nil {
			return errors.Errorf("seed %s: %s", reg.Username, errs)
		}
		ids[u.Username] = u.ID
	}
	s.Follow(ids["julia"], ids["peter"], true)

	return nil
}
