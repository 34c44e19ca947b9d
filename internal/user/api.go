package user

import (
	"net/http"

	"github.com/go-chi/render"
	"go.uber.org/zap"

	"github.com/SergeyParamoshkin/conduit/internal/errresponse"
	"github.com/SergeyParamoshkin/conduit/internal/model"
	"github.com/SergeyParamoshkin/conduit/internal/userpayload"
)

// API serves the users, user and profiles resources.
type API struct {
	Store  *Store
	Logger *zap.SugaredLogger
}

func NewAPI(s *Store, logger *zap.SugaredLogger) *API {
	return &API{Store: s, Logger: logger}
}

func (a *API) render(w http.ResponseWriter, r *http.Request, v render.Renderer) {
	if err := render.Render(w, r, v); err != nil {
		if err := render.Render(w, r, errresponse.ErrRender(err)); err != nil {
			a.Logger.Errorw(err.Error())
		}
	}
}

// Register creates an account and signs it in.
func (a *API) Register(w http.ResponseWriter, r *http.Request) {
	data := &userpayload.RegisterRequest{}
	if err := render.Bind(r, data); err != nil {
		a.render(w, r, errresponse.ErrInvalidRequest(err))

		return
	}

	u, errs, err := a.Store.Create(*data.User)
	if err != nil {
		a.Logger.Errorw("register", "error", err)
		a.render(w, r, errresponse.ErrRender(err))

		return
	}
	if errs != nil {
		a.render(w, r, errresponse.ErrValidation(errs))

		return
	}

	token := a.Store.IssueToken(u.ID)
	a.Logger.Infow("user registered", "username", u.Username)
	render.Status(r, http.StatusCreated)
	a.render(w, r, userpayload.NewUserResponse(u.Model(token)))
}

// Login signs a user in by email and password.
func (a *API) Login(w http.ResponseWriter, r *http.Request) {
	data := &userpayload.LoginRequest{}
	if err := render.Bind(r, data); err != nil {
		a.render(w, r, errresponse.ErrInvalidRequest(err))

		return
	}

	u, err := a.Store.Authenticate(data.User.Email, data.User.Password)
	if err != nil {
		a.render(w, r, errresponse.ErrValidation(model.Errors{"email or password": {"is invalid"}}))

		return
	}

	a.render(w, r, userpayload.NewUserResponse(u.Model(a.Store.IssueToken(u.ID))))
}

// Current returns the signed-in user.
func (a *API) Current(w http.ResponseWriter, r *http.Request) {
	u, _ := FromContext(r.Context())
	a.render(w, r, userpayload.NewUserResponse(u.Model(tokenFrom(r))))
}

// Update changes the signed-in user.
func (a *API) Update(w http.ResponseWriter, r *http.Request) {
	u, _ := FromContext(r.Context())

	data := &userpayload.UpdateUserRequest{}
	if err := render.Bind(r, data); err != nil {
		a.render(w, r, errresponse.ErrInvalidRequest(err))

		return
	}

	updated, errs, err := a.Store.Update(u.ID, *data.User)
	if err != nil {
		a.Logger.Errorw("update user", "error", err)
		a.render(w, r, errresponse.ErrRender(err))

		return
	}
	if errs != nil {
		a.render(w, r, errresponse.ErrValidation(errs))

		return
	}

	a.render(w, r, userpayload.NewUserResponse(updated.Model(tokenFrom(r))))
}

// GetProfile returns the profile loaded by ProfileCtx.
func (a *API) GetProfile(w http.ResponseWriter, r *http.Request) {
	// ProfileCtx guarantees the value.
	u := r.Context().Value(ctxKeyProfile).(User)
	a.render(w, r, userpayload.NewProfileResponse(a.Store.Profile(ViewerID(r.Context()), u)))
}

func (a *API) Follow(w http.ResponseWriter, r *http.Request) {
	a.follow(w, r, true)
}

func (a *API) Unfollow(w http.ResponseWriter, r *http.Request) {
	a.follow(w, r, false)
}

func (a *API) follow(w http.ResponseWriter, r *http.Request, on bool) {
	viewer := ViewerID(r.Context())
	u := r.Context().Value(ctxKeyProfile).(User)
	if u.ID == viewer {
		a.render(w, r, errresponse.ErrValidation(model.Errors{"profile": {"can't follow yourself"}}))

		return
	}

	a.Store.Follow(viewer, u.ID, on)
	a.render(w, r, userpayload.NewProfileResponse(a.Store.Profile(viewer, u)))
}
