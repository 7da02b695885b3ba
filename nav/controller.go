// Package nav holds the page navigation state machine: which section of
// the scrolling page is active, whether a category archive replaces the
// page, and how scrolling and navigation requests move between the two.
//
// A Controller is not safe for concurrent use. It is driven from a single
// event loop; the host owns all scheduling, including the handoff delay.
package nav

import (
	"time"

	"github.com/grant/suneater/types"
)

// Defaults used when no option overrides them.
const (
	DefaultThreshold    = 0.2
	DefaultHandoffDelay = 100 * time.Millisecond
	// InitialSection is active when a Controller is created.
	InitialSection = "hero"
)

// Mode is the top-level navigation state.
type Mode int

const (
	OnPage Mode = iota
	InArchive
)

func (m Mode) String() string {
	switch m {
	case OnPage:
		return "on_page"
	case InArchive:
		return "in_archive"
	default:
		return "unknown"
	}
}

// Bounds locates a section on the page, in lines from the page top.
type Bounds struct {
	Top    int
	Height int
}

// BoundsFunc reports where a section currently is. It returns false when
// the section is not mounted.
type BoundsFunc func() (Bounds, bool)

// Section is one scroll anchor of the page.
type Section struct {
	ID     string
	Bounds BoundsFunc
}

// Registry is the ordered list of page sections.
type Registry []Section

// Lookup returns the bounds of a mounted section.
func (r Registry) Lookup(id string) (Bounds, bool) {
	for _, s := range r {
		if s.ID != id {
			continue
		}
		if s.Bounds == nil {
			return Bounds{}, false
		}
		return s.Bounds()
	}
	return Bounds{}, false
}

// Scroller moves the page.
type Scroller interface {
	ScrollTo(top int, smooth bool)
	ScrollTop()
}

// Viewport is the visible window of the page.
type Viewport struct {
	Top    int
	Height int
}

// Archive is the full listing shown while InArchive.
type Archive struct {
	Category types.CategoryID
	Title    string
	Subtitle string
	Items    []types.ContentItem
}

// State is a snapshot of the navigation state. Archive is nil while
// OnPage. ActiveSectionID is kept while InArchive so it can be restored.
type State struct {
	ActiveSectionID string
	Archive         *Archive
}

// Mode reports which of the two states the snapshot is in.
func (s State) Mode() Mode {
	if s.Archive != nil {
		return InArchive
	}
	return OnPage
}

// Option configures a Controller.
type Option func(*Controller)

// WithThreshold sets the visible fraction at which an entering section
// becomes active. Values outside (0, 1] are ignored.
func WithThreshold(t float64) Option {
	return func(c *Controller) {
		if t > 0 && t <= 1 {
			c.threshold = t
		}
	}
}

// WithHandoffDelay sets the delay a host should wait before calling
// Mounted when it cannot detect mounting itself. Negative values are
// ignored.
func WithHandoffDelay(d time.Duration) Option {
	return func(c *Controller) {
		if d >= 0 {
			c.handoffDelay = d
		}
	}
}

// Controller is the navigation state machine.
type Controller struct {
	registry     Registry
	scroller     Scroller
	threshold    float64
	handoffDelay time.Duration

	active  string
	archive *Archive
	pending string
	// entered holds sections currently at or above the threshold.
	entered map[string]bool
}

// New creates a Controller in OnPage at the initial section.
func New(registry Registry, scroller Scroller, opts ...Option) *Controller {
	c := &Controller{
		registry:     registry,
		scroller:     scroller,
		threshold:    DefaultThreshold,
		handoffDelay: DefaultHandoffDelay,
		active:       InitialSection,
		entered:      make(map[string]bool),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Threshold returns the configured visibility threshold.
func (c *Controller) Threshold() float64 { return c.threshold }

// HandoffDelay returns the configured fallback handoff delay.
func (c *Controller) HandoffDelay() time.Duration { return c.handoffDelay }

// Mode returns the current top-level state.
func (c *Controller) Mode() Mode {
	if c.archive != nil {
		return InArchive
	}
	return OnPage
}

// Active returns the last recorded active section.
func (c *Controller) Active() string { return c.active }

// Pending returns the section waiting for Mounted, if any.
func (c *Controller) Pending() (string, bool) {
	return c.pending, c.pending != ""
}

// State returns a snapshot of the current state.
func (c *Controller) State() State {
	s := State{ActiveSectionID: c.active}
	if c.archive != nil {
		a := *c.archive
		a.Items = append([]types.ContentItem(nil), c.archive.Items...)
		s.Archive = &a
	}
	return s
}

// Navigate requests the section with the given id.
//
// On the page it scrolls there and marks it active immediately; the
// active section reflects intent, not the confirmed viewport position.
// In an archive it returns to the page and defers the scroll until the
// host calls Mounted. Unknown ids are ignored. It reports whether the
// request was accepted.
func (c *Controller) Navigate(id string) bool {
	if c.archive != nil {
		c.archive = nil
		c.pending = id
		return true
	}
	return c.scrollAndSet(id)
}

// Mounted tells the controller that the page is rendered again after an
// archive. A pending navigation runs now. It reports whether one ran.
func (c *Controller) Mounted() bool {
	if c.archive != nil || c.pending == "" {
		return false
	}
	id := c.pending
	c.pending = ""
	return c.scrollAndSet(id)
}

func (c *Controller) scrollAndSet(id string) bool {
	b, ok := c.registry.Lookup(id)
	if !ok {
		return false
	}
	if c.scroller != nil {
		c.scroller.ScrollTo(b.Top, true)
	}
	c.active = id
	return true
}

// EnterArchive shows the full listing of a category, from any state, and
// resets the scroll position. A pending handoff is dropped.
func (c *Controller) EnterArchive(category types.CategoryID, title, subtitle string, items []types.ContentItem) {
	c.archive = &Archive{
		Category: category,
		Title:    title,
		Subtitle: subtitle,
		Items:    append([]types.ContentItem(nil), items...),
	}
	c.pending = ""
	clear(c.entered)
	if c.scroller != nil {
		c.scroller.ScrollTop()
	}
}

// ExitArchive returns to the page with the last recorded active section.
func (c *Controller) ExitArchive() {
	c.archive = nil
}

// Observe feeds the current viewport to passive section tracking. A
// section whose visible fraction crosses the threshold while entering
// becomes active; when several enter at once the last in page order wins.
// Observation is disabled in an archive. It reports whether the active
// section changed.
func (c *Controller) Observe(vp Viewport) bool {
	if c.archive != nil || vp.Height <= 0 {
		return false
	}
	prev := c.active
	for _, s := range c.registry {
		if s.Bounds == nil {
			continue
		}
		b, ok := s.Bounds()
		if !ok {
			delete(c.entered, s.ID)
			continue
		}
		in := Ratio(b, vp) >= c.threshold
		if in && !c.entered[s.ID] {
			c.active = s.ID
		}
		c.entered[s.ID] = in
	}
	return c.active != prev
}

// Sync records which sections are in view without changing the active
// section. Hosts call it after a programmatic scroll settles so that the
// sections it passed over do not count as entering later.
func (c *Controller) Sync(vp Viewport) {
	if c.archive != nil || vp.Height <= 0 {
		return
	}
	for _, s := range c.registry {
		if s.Bounds == nil {
			continue
		}
		b, ok := s.Bounds()
		if !ok {
			delete(c.entered, s.ID)
			continue
		}
		c.entered[s.ID] = Ratio(b, vp) >= c.threshold
	}
}

// Ratio returns the visible fraction of a section. A section taller than
// the viewport counts as fully visible when it fills the viewport.
func Ratio(b Bounds, vp Viewport) float64 {
	if b.Height <= 0 || vp.Height <= 0 {
		return 0
	}
	top := max(b.Top, vp.Top)
	bottom := min(b.Top+b.Height, vp.Top+vp.Height)
	if bottom <= top {
		return 0
	}
	return float64(bottom-top) / float64(min(b.Height, vp.Height))
}
