// Package errresponse renders API failures in the Conduit error shape:
// {"errors": {"field": ["message", ...]}}.
package errresponse

import (
	"net/http"

	"github.com/go-chi/render"

	"github.com/SergeyParamoshkin/conduit/internal/model"
)

// ErrResponse renderer type for handling all sorts of errors.
type ErrResponse struct {
	Err            error `json:"-"` // low-level runtime error
	HTTPStatusCode int   `json:"-"` // http response status code

	Errors model.Errors `json:"errors"`
}

func (e *ErrResponse) Render(w http.ResponseWriter, r *http.Request) error {
	render.Status(r, e.HTTPStatusCode)

	return nil
}

// ErrInvalidRequest is a request body that could not be bound.
func ErrInvalidRequest(err error) render.Renderer {
	return &ErrResponse{
		Err:            err,
		HTTPStatusCode: http.StatusUnprocessableEntity,
		Errors:         model.Errors{"body": {err.Error()}},
	}
}

// ErrValidation reports field errors.
func ErrValidation(errs model.Errors) render.Renderer {
	return &ErrResponse{
		HTTPStatusCode: http.StatusUnprocessableEntity,
		Errors:         errs,
	}
}

func ErrRender(err error) render.Renderer {
	return &ErrResponse{
		Err:            err,
		HTTPStatusCode: http.StatusUnprocessableEntity,
		Errors:         model.Errors{"render": {err.Error()}},
	}
}

// ErrNotFound reports a missing resource of the named kind.
func ErrNotFound(resource string) render.Renderer {
	return &ErrResponse{
		HTTPStatusCode: http.StatusNotFound,
		Errors:         model.Errors{resource: {"not found"}},
	}
}

var ErrUnauthorized = &ErrResponse{
	HTTPStatusCode: http.StatusUnauthorized,
	Errors:         model.Errors{"token": {"is missing or invalid"}},
}

// ErrForbidden reports an attempt to change somebody else's resource.
func ErrForbidden(resource string) render.Renderer {
	return &ErrResponse{
		HTTPStatusCode: http.StatusForbidden,
		Errors:         model.Errors{resource: {"is not yours"}},
	}
}
