// Package navigate holds the client routes and a recording router.
package navigate

import (
	"net/url"
	"sync"
)

const (
	Home     = "/"
	Register = "/register"
	Login    = "/login"
)

// Article is the page of the article with slug.
func Article(slug string) string {
	return "/article/" + url.PathEscape(slug)
}

// Profile is the page of username.
func Profile(username string) string {
	return "/profile/" + url.PathEscape(username)
}

// History records every path navigated to. The zero value is at Home.
type History struct {
	mu    sync.RWMutex
	paths []string
	hook  func(path string)
}

// NewHistory returns a history that also calls hook, if not nil, on every
// navigation.
func NewHistory(hook func(path string)) *History {
	return &History{hook: hook}
}

func (h *History) Navigate(path string) {
	h.mu.Lock()
	h.paths = append(h.paths, path)
	hook := h.hook
	h.mu.Unlock()

	if hook != nil {
		hook(path)
	}
}

// Current is the last path navigated to.
func (h *History) Current() string {
	h.mu.RLock()
	defer h.mu.RUnlock()

	if len(h.paths) == 0 {
		return Home
	}

	return h.paths[len(h.paths)-1]
}

// Paths returns every path navigated to, oldest first.
func (h *History) Paths() []string {
	h.mu.RLock()
	defer h.mu.RUnlock()

	return append([]string(nil), h.paths...)
}
