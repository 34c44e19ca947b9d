package actor

import "net/http"

// Effect is a side effect requested by a reducer.
type Effect interface {
	effect()
}

// Navigate asks the host router to go to Path.
type Navigate struct {
	Path string
}

// PersistToken writes the auth token to durable storage.
type PersistToken struct {
	Token string
}

// ClearToken removes the auth token from durable storage.
type ClearToken struct{}

// SendParent queues Event for the parent actor.
type SendParent struct {
	Event Event
}

// Request starts a task performing one API call. Out receives the decoded
// response and is handed back as Done.Output. A nil Out discards the body.
type Request struct {
	ID     string
	Method string
	Path   string
	Body   any
	Out    any
}

// Cancel stops the task with ID, if any. Its result is dropped.
type Cancel struct {
	ID string
}

func (Navigate) effect() {}
func (PersistToken) effect() {}
func (ClearToken) effect() {}
func (SendParent) effect() {}
func (Request) effect() {}
func (Cancel) effect() {}

// Get is a GET request task.
func Get(id, path string, out any) Request {
	return Request{ID: id, Method: http.MethodGet, Path: path, Out: out}
}

// Post is a POST request task.
func Post(id, path string, body, out any) Request {
	return Request{ID: id, Method: http.MethodPost, Path: path, Body: body, Out: out}
}

// Put is a PUT request task.
func Put(id, path string, body, out any) Request {
	return Request{ID: id, Method: http.MethodPut, Path: path, Body: body, Out: out}
}

// Del is a DELETE request task.
func Del(id, path string, out any) Request {
	return Request{ID: id, Method: http.MethodDelete, Path: path, Out: out}
}
