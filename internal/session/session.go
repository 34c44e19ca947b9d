// Package session holds the events actors use to report identity changes to
// the app actor.
package session

import "github.com/SergeyParamoshkin/conduit/internal/model"

// LogIn signs User in. Auth sends it to its parent after a successful login
// or signup.
type LogIn struct {
	User model.User
}

func (LogIn) Kind() string { return "logIn" }

// LogOut signs the current user out.
type LogOut struct{}

func (LogOut) Kind() string { return "logOut" }

// UpdateUser replaces the signed-in user's data.
type UpdateUser struct {
	User model.User
}

func (UpdateUser) Kind() string { return "updateUser" }
