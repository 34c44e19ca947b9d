// Package user serves accounts, sessions and profiles of the development
// Conduit API.
package user

import (
	"sort"
	"sync"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"golang.org/x/crypto/bcrypt"

	"github.com/SergeyParamoshkin/conduit/internal/model"
)

var (
	ErrNotFound           = errors.New("user not found")
	ErrInvalidCredentials = errors.New("invalid credentials")
)

// User data model.
type User struct {
	ID       int64
	Username string
	Email    string
	Bio      string
	Image    string

	hash []byte
}

// Model returns u as the signed-in user holding token.
func (u User) Model(token string) model.User {
	return model.User{
		Username: u.Username,
		Email:    u.Email,
		Bio:      u.Bio,
		Image:    u.Image,
		Token:    token,
	}
}

// Store keeps users, their session tokens and who follows whom in memory.
type Store struct {
	mu      sync.RWMutex
	cost    int
	nextID  int64
	users   map[int64]*User
	tokens  map[string]int64
	follows map[int64]map[int64]bool
}

type Option func(*Store)

// WithHashCost sets the bcrypt cost of stored passwords.
func WithHashCost(cost int) Option {
	return func(s *Store) {
		s.cost = cost
	}
}

func NewStore(opts ...Option) *Store {
	s := &Store{
		cost:    bcrypt.DefaultCost,
		users:   map[int64]*User{},
		tokens:  map[string]int64{},
		follows: map[int64]map[int64]bool{},
	}
	for _, opt := range opts {
		opt(s)
	}

	return s
}

// Create registers a user. Validation failures are returned as field errors
// with a nil error.
func (s *Store) Create(reg model.Registration) (User, model.Errors, error) {
	var errs model.Errors
	if reg.Username == "" {
		errs = errs.Add("username", "can't be blank")
	}
	if reg.Email == "" {
		errs = errs.Add("email", "can't be blank")
	}
	if reg.Password == "" {
		errs = errs.Add("password", "can't be blank")
	}
	if errs != nil {
		return User{}, errs, nil
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(reg.Password), s.cost)
	if err != nil {
		return User{}, nil, errors.Wrap(err, "hash password")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if errs := s.taken(0, reg.Username, reg.Email); errs != nil {
		return User{}, errs, nil
	}

	s.nextID++
	u := &User{ID: s.nextID, Username: reg.Username, Email: reg.Email, hash: hash}
	s.users[u.ID] = u

	return *u, nil, nil
}

// taken reports username and email clashes with users other than id.
func (s *Store) taken(id int64, username, email string) model.Errors {
	var errs model.Errors
	for _, u := range s.users {
		if u.ID == id {
			continue
		}
		if username != "" && u.Username == username {
			errs = errs.Add("username", "has already been taken")
		}
		if email != "" && u.Email == email {
			errs = errs.Add("email", "has already been taken")
		}
	}

	return errs
}

// Authenticate returns the user with email if password matches.
func (s *Store) Authenticate(email, password string) (User, error) {
	s.mu.RLock()
	var found *User
	for _, u := range s.users {
		if u.Email == email {
			found = u

			break
		}
	}
	var u User
	if found != nil {
		u = *found
	}
	s.mu.RUnlock()

	if found == nil {
		return User{}, ErrInvalidCredentials
	}
	if err := bcrypt.CompareHashAndPassword(u.hash, []byte(password)); err != nil {
		return User{}, ErrInvalidCredentials
	}

	return u, nil
}

// IssueToken starts a session for the user with id.
func (s *Store) IssueToken(id int64) string {
	token := uuid.NewString()

	s.mu.Lock()
	defer s.mu.Unlock()
	s.tokens[token] = id

	return token
}

// ByToken returns the user a session token belongs to.
func (s *Store) ByToken(token string) (User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	id, ok := s.tokens[token]
	if !ok {
		return User{}, ErrNotFound
	}

	return s.byID(id)
}

func (s *Store) ByID(id int64) (User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.byID(id)
}

func (s *Store) byID(id int64) (User, error) {
	u, ok := s.users[id]
	if !ok {
		return User{}, ErrNotFound
	}

	return *u, nil
}

func (s *Store) ByUsername(username string) (User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, u := range s.users {
		if u.Username == username {
			return *u, nil
		}
	}

	return User{}, ErrNotFound
}

// Update applies upd to the user with id. Empty username, email and
// password are left unchanged.
func (s *Store) Update(id int64, upd model.UserUpdate) (User, model.Errors, error) {
	var hash []byte
	if upd.Password != "" {
		var err error
		if hash, err = bcrypt.GenerateFromPassword([]byte(upd.Password), s.cost); err != nil {
			return User{}, nil, errors.Wrap(err, "hash password")
		}
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	u, ok := s.users[id]
	if !ok {
		return User{}, nil, ErrNotFound
	}
	if errs := s.taken(id, upd.Username, upd.Email); errs != nil {
		return User{}, errs, nil
	}

	if upd.Username != "" {
		u.Username = upd.Username
	}
	if upd.Email != "" {
		u.Email = upd.Email
	}
	if hash != nil {
		u.hash = hash
	}
	u.Bio = upd.Bio
	u.Image = upd.Image

	return *u, nil, nil
}

// Follow makes follower follow followed, or stop following when on is false.
func (s *Store) Follow(follower, followed int64, on bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	set := s.follows[follower]
	if set == nil {
		set = map[int64]bool{}
		s.follows[follower] = set
	}
	if on {
		set[followed] = true
	} else {
		delete(set, followed)
	}
}

func (s *Store) Following(follower, followed int64) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.follows[follower][followed]
}

// Followed lists the ids follower follows, ascending.
func (s *Store) Followed(follower int64) []int64 {
	s.mu.RLock()
	defer s.mu.RUnlock()

	ids := make([]int64, 0, len(s.follows[follower]))
	for id := range s.follows[follower] {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })

	return ids
}

// Profile is u as seen by viewer. A zero viewer is an anonymous visitor.
func (s *Store) Profile(viewer int64, u User) model.Profile {
	return model.Profile{
		Username:  u.Username,
		Bio:       u.Bio,
		Image:     u.Image,
		Following: viewer != 0 && s.Following(viewer, u.ID),
	}
}
