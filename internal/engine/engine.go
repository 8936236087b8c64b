// Package engine coordinates route commits against the current content
// snapshot. The Controller is a two-state machine (Idle, Transitioning)
// that serializes renders, coalesces requests arriving mid-transition,
// and defers content refreshes until the in-flight transition completes,
// so racing navigations and poll updates never corrupt the surfaces.
//
// All host capabilities are injected: the render surfaces, the
// before-paint scheduler, the optional animated-transition primitive, and
// the external fragment writer. This keeps both the animated and the
// immediate commit paths unit-testable without a rendering environment.
package engine

import (
	"context"
	"sync"
	"time"

	"github.com/driftline/driftline/internal/content"
	apperrors "github.com/driftline/driftline/internal/errors"
	"github.com/driftline/driftline/internal/logging"
	"github.com/driftline/driftline/internal/router"
	"github.com/driftline/driftline/internal/view"
)

// State is the controller's transition state.
type State int

const (
	StateIdle State = iota
	StateTransitioning
)

// String returns the string representation of the state
func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateTransitioning:
		return "transitioning"
	default:
		return "unknown"
	}
}

// Surfaces receives committed output. Implementations must tolerate being
// called from the scheduler's goroutine.
type Surfaces interface {
	Mount(html string)
	Nav(html string)
	Title(text string)
}

// FrameScheduler defers a commit to a before-paint boundary. The commit
// must never run synchronously inside the call.
type FrameScheduler func(commit func())

// DefaultFrameScheduler approximates a frame boundary with a short timer.
func DefaultFrameScheduler(commit func()) {
	time.AfterFunc(16*time.Millisecond, commit)
}

// Transitioner wraps a commit in an animated surface transition. Run must
// return once the transition settled, success or failure.
type Transitioner interface {
	Run(commit func()) error
}

// FragmentWriter requests a change of the externally visible fragment.
// The host echoes the change back through HandleFragment.
type FragmentWriter interface {
	Set(fragment string)
}

// RenderFunc produces surface output for a resolved route. Defaults to
// view.RenderRoute.
type RenderFunc func(route string, snap *content.Snapshot) (view.Rendered, error)

// Options configures a Controller.
type Options struct {
	Surfaces        Surfaces
	Schedule        FrameScheduler
	Transitioner    Transitioner
	ViewTransitions bool
	Fragment        FragmentWriter
	Render          RenderFunc
	OnRouteChange   func(route string)
	Logger          logging.Logger
}

// Controller owns the navigation state. CurrentRoute is only ever a route
// that was valid against the snapshot active at its commit time.
type Controller struct {
	surfaces      Surfaces
	schedule      FrameScheduler
	transitioner  Transitioner
	animate       bool
	fragWriter    FragmentWriter
	render        RenderFunc
	onRouteChange func(route string)
	logger        logging.Logger

	mu       sync.Mutex
	snap     *content.Snapshot
	state    State
	current  string
	fragment string
	// pending coalesces render requests that arrive mid-transition: only
	// the most recent survives, and it commits as soon as the in-flight
	// transition finishes.
	pending        *string
	refreshPending bool
}

// NewController creates a controller with the given capabilities.
// Surfaces are required.
func NewController(opts Options) (*Controller, error) {
	if opts.Surfaces == nil {
		return nil, &apperrors.MountError{Selector: "(surfaces)"}
	}
	if opts.Schedule == nil {
		opts.Schedule = DefaultFrameScheduler
	}
	if opts.Render == nil {
		opts.Render = view.RenderRoute
	}
	if opts.Logger == nil {
		opts.Logger = logging.NopLogger{}
	}

	return &Controller{
		surfaces:      opts.Surfaces,
		schedule:      opts.Schedule,
		transitioner:  opts.Transitioner,
		animate:       opts.ViewTransitions && opts.Transitioner != nil,
		fragWriter:    opts.Fragment,
		render:        opts.Render,
		onRouteChange: opts.OnRouteChange,
		logger:        opts.Logger.WithComponent("engine"),
	}, nil
}

// State returns the current transition state.
func (c *Controller) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// CurrentRoute returns the last committed route, or "" before the first
// commit.
func (c *Controller) CurrentRoute() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.current
}

// Navigate normalizes a requested token. When the canonical fragment
// differs from the current external representation it only requests the
// representation change; the echo through HandleFragment performs the
// render. When the representation already matches, it renders directly.
func (c *Controller) Navigate(requested string) {
	c.mu.Lock()
	snap := c.snap
	route := router.Normalize(requested, snap)
	frag := router.Fragment(route)
	matches := frag == c.fragment
	c.mu.Unlock()

	if !matches && c.fragWriter != nil {
		c.fragWriter.Set(frag)
		return
	}
	c.RenderRoute(route)
}

// HandleFragment resolves an externally observed fragment (the echo of a
// Navigate, or browser back/forward) and renders it.
func (c *Controller) HandleFragment(raw string) {
	c.mu.Lock()
	snap := c.snap
	c.mu.Unlock()

	route := router.Resolve(raw, snap)
	c.RenderRoute(route)
}

// OnContentChange publishes a new snapshot to the controller. When idle,
// the current route is re-resolved against the new snapshot and
// re-rendered; a route whose article disappeared degrades to the default.
// Mid-transition the refresh is deferred until the transition completes,
// so the surfaces are never mutated mid-animation.
func (c *Controller) OnContentChange(snap *content.Snapshot) {
	c.mu.Lock()
	c.snap = snap
	if c.state == StateTransitioning {
		c.refreshPending = true
		c.mu.Unlock()
		return
	}
	current := c.current
	c.mu.Unlock()

	route := router.Resolve(current, snap)
	c.RenderRoute(route)
}

// RenderRoute commits a resolved route. No-op before the first snapshot.
// If a transition is in flight the request is coalesced: it supersedes
// any earlier pending request and commits right after the in-flight
// transition finishes.
func (c *Controller) RenderRoute(route string) {
	c.mu.Lock()
	if c.snap == nil {
		c.mu.Unlock()
		return
	}
	if c.state == StateTransitioning {
		r := route
		c.pending = &r
		c.mu.Unlock()
		return
	}

	c.state = StateTransitioning
	c.current = route
	c.fragment = router.Fragment(route)
	snap := c.snap
	c.mu.Unlock()

	if c.onRouteChange != nil {
		c.onRouteChange(route)
	}

	c.schedule(func() {
		c.commit(route, snap)
	})
}

// commit runs at the scheduled frame boundary: render, apply to surfaces
// (animated when the capability is enabled), then return to Idle and
// drain whatever coalesced while the transition was in flight.
func (c *Controller) commit(route string, snap *content.Snapshot) {
	defer c.finish(route)

	out, err := c.render(route, snap)
	if err != nil {
		c.logger.Error(context.Background(), err, "render failed", "route", route)
		return
	}

	apply := func() {
		c.surfaces.Mount(out.Mount)
		c.surfaces.Nav(out.Nav)
		c.surfaces.Title(out.Title)
	}

	if c.animate {
		if err := c.transitioner.Run(apply); err != nil {
			terr := &apperrors.TransitionError{Route: route, Cause: err}
			c.logger.Warn(context.Background(), terr, "animated transition failed, committing without animation")
			apply()
		}
		return
	}
	apply()
}

// finish flips the machine back to Idle. It always runs, success or
// failure, so a failed transition primitive can never leave the state
// stuck at Transitioning. A coalesced route wins over a deferred content
// refresh; a pending route equal to the one just committed is redundant
// and dropped unless content changed underneath it.
func (c *Controller) finish(committed string) {
	c.mu.Lock()
	c.state = StateIdle
	pending := c.pending
	refresh := c.refreshPending
	c.pending = nil
	c.refreshPending = false
	snap := c.snap
	c.mu.Unlock()

	if pending != nil {
		if *pending != committed || refresh {
			c.RenderRoute(router.Normalize(*pending, snap))
		}
		return
	}
	if refresh {
		c.RenderRoute(router.Resolve(committed, snap))
	}
}
