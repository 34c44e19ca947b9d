package userpayload

import (
	"errors"
	"net/http"
	"strings"

	"github.com/SergeyParamoshkin/conduit/internal/model"
)

// DefaultImage is shown for users without an avatar.
const DefaultImage = "https://static.productionready.io/images/smiley-cyrus.jpg"

//--
// Request payloads. Each resource travels in an envelope keyed by its name;
// Bind rejects a request without one.
//--

var errMissingUser = errors.New("missing required user fields")

type LoginRequest struct {
	User *model.Credentials `json:"user"`
}

// Bind on LoginRequest will run after the unmarshalling is complete, its
// a good time to focus some post-processing after a decoding.
func (l *LoginRequest) Bind(r *http.Request) error {
	if l.User == nil {
		return errMissingUser
	}
	l.User.Email = normalizeEmail(l.User.Email)

	return nil
}

type RegisterRequest struct {
	User *model.Registration `json:"user"`
}

func (rr *RegisterRequest) Bind(r *http.Request) error {
	if rr.User == nil {
		return errMissingUser
	}
	rr.User.Username = strings.TrimSpace(rr.User.Username)
	rr.User.Email = normalizeEmail(rr.User.Email)

	return nil
}

type UpdateUserRequest struct {
	User *model.UserUpdate `json:"user"`
}

func (u *UpdateUserRequest) Bind(r *http.Request) error {
	if u.User == nil {
		return errMissingUser
	}
	u.User.Username = strings.TrimSpace(u.User.Username)
	u.User.Email = normalizeEmail(u.User.Email)

	return nil
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

//--
// Response payloads.
//--

type UserResponse struct {
	model.UserResponse
}

func NewUserResponse(u model.User) *UserResponse {
	return &UserResponse{UserResponse: model.UserResponse{User: u}}
}

func (u *UserResponse) Render(w http.ResponseWriter, r *http.Request) error {
	if u.User.Image == "" {
		u.User.Image = DefaultImage
	}

	return nil
}

type ProfileResponse struct {
	model.ProfileResponse
}

func NewProfileResponse(p model.Profile) *ProfileResponse {
	return &ProfileResponse{ProfileResponse: model.ProfileResponse{Profile: p}}
}

func (p *ProfileResponse) Render(w http.ResponseWriter, r *http.Request) error {
	if p.Profile.Image == "" {
		p.Profile.Image = DefaultImage
	}

	return nil
}
