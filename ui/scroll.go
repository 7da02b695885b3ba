package ui

import (
	"math"
	"time"

	"github.com/charmbracelet/harmonica"
)

const fps = 60

var frameInterval = time.Second / fps

// smoothScroller animates the page offset with a critically damped
// spring. It implements nav.Scroller; the model applies Offset to the
// page viewport on every frame.
type smoothScroller struct {
	spring    harmonica.Spring
	pos       float64
	vel       float64
	target    float64
	maxOffset int
	animating bool
}

func newSmoothScroller() *smoothScroller {
	return &smoothScroller{spring: harmonica.NewSpring(harmonica.FPS(fps), 8.0, 1.0)}
}

// ScrollTo moves toward top, animated when smooth is set.
func (s *smoothScroller) ScrollTo(top int, smooth bool) {
	s.target = float64(s.clamp(top))
	if !smooth {
		s.pos, s.vel = s.target, 0
		s.animating = false
		return
	}
	s.animating = s.pos != s.target
}

// ScrollTop jumps to the top without animation.
func (s *smoothScroller) ScrollTop() {
	s.ScrollTo(0, false)
}

// Step advances one frame and reports whether the animation finished.
func (s *smoothScroller) Step() bool {
	if !s.animating {
		return true
	}
	s.pos, s.vel = s.spring.Update(s.pos, s.vel, s.target)
	if math.Abs(s.target-s.pos) < 0.5 && math.Abs(s.vel) < 0.5 {
		s.pos, s.vel = s.target, 0
		s.animating = false
	}
	return !s.animating
}

// Offset is the current whole-line position.
func (s *smoothScroller) Offset() int {
	return s.clamp(int(math.Round(s.pos)))
}

// Animating reports whether frames are still needed.
func (s *smoothScroller) Animating() bool { return s.animating }

// Sync adopts an offset set by the user, cancelling any animation.
func (s *smoothScroller) Sync(offset int) {
	s.pos, s.vel, s.target = float64(offset), 0, float64(offset)
	s.animating = false
}

// SetMax bounds future targets to the scrollable range.
func (s *smoothScroller) SetMax(n int) {
	s.maxOffset = max(n, 0)
}

func (s *smoothScroller) clamp(v int) int {
	return min(max(v, 0), s.maxOffset)
}
