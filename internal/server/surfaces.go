package server

import (
	"sync"

	"github.com/driftline/driftline/internal/view"
)

// memorySurfaces is the server-side render target: it retains the last
// committed output so the shell page can be served with current content.
type memorySurfaces struct {
	mu  sync.RWMutex
	out view.Rendered
	set bool
}

func (s *memorySurfaces) Mount(html string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.out.Mount = html
	s.set = true
}

func (s *memorySurfaces) Nav(html string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.out.Nav = html
}

func (s *memorySurfaces) Title(text string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.out.Title = text
}

// Current returns the last committed output and whether a commit has
// happened yet.
func (s *memorySurfaces) Current() (view.Rendered, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.out, s.set
}
