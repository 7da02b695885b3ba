package nav

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/grant/suneater/types"
)

type scrollCall struct {
	top    int
	smooth bool
}

type fakeScroller struct {
	calls []scrollCall
}

func (f *fakeScroller) ScrollTo(top int, smooth bool) {
	f.calls = append(f.calls, scrollCall{top, smooth})
}

func (f *fakeScroller) ScrollTop() {
	f.calls = append(f.calls, scrollCall{0, false})
}

func fixed(top, height int) BoundsFunc {
	return func() (Bounds, bool) { return Bounds{Top: top, Height: height}, true }
}

func unmounted() (Bounds, bool) { return Bounds{}, false }

func pageRegistry() Registry {
	return Registry{
		{ID: "hero", Bounds: fixed(0, 20)},
		{ID: "about", Bounds: fixed(20, 30)},
		{ID: "workflows", Bounds: fixed(50, 25)},
		{ID: "prompts", Bounds: fixed(75, 25)},
		{ID: "code", Bounds: fixed(100, 25)},
	}
}

func sampleItems() []types.ContentItem {
	return []types.ContentItem{
		types.NewContentItem("a", "first", types.IconCode, []string{"code", "GO"}, ""),
		types.NewContentItem("b", "second", types.IconCode, nil, "#"),
	}
}

func TestNew_InitialState(t *testing.T) {
	c := New(pageRegistry(), &fakeScroller{})

	assert.Equal(t, OnPage, c.Mode())
	assert.Equal(t, "hero", c.Active())
	assert.Nil(t, c.State().Archive)
	assert.Equal(t, DefaultThreshold, c.Threshold())
	assert.Equal(t, DefaultHandoffDelay, c.HandoffDelay())
}

func TestNavigate_OnPageScrollsAndSetsOptimistically(t *testing.T) {
	s := &fakeScroller{}
	c := New(pageRegistry(), s)

	require.True(t, c.Navigate("workflows"))
	assert.Equal(t, "workflows", c.Active())
	assert.Equal(t, []scrollCall{{50, true}}, s.calls)
}

func TestNavigate_Idempotent(t *testing.T) {
	c := New(pageRegistry(), &fakeScroller{})

	c.Navigate("prompts")
	first := c.State()
	c.Navigate("prompts")

	assert.Equal(t, first, c.State())
	assert.Equal(t, OnPage, c.Mode())
}

func TestNavigate_UnknownIsNoop(t *testing.T) {
	tests := []struct {
		name     string
		registry Registry
		id       string
	}{
		{"missing id", pageRegistry(), "contact"},
		{"not mounted", Registry{{ID: "about", Bounds: unmounted}}, "about"},
		{"nil bounds", Registry{{ID: "about"}}, "about"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := &fakeScroller{}
			c := New(tt.registry, s)

			assert.False(t, c.Navigate(tt.id))
			assert.Equal(t, "hero", c.Active())
			assert.Empty(t, s.calls)
		})
	}
}

func TestEnterArchive_FromAnyState(t *testing.T) {
	s := &fakeScroller{}
	c := New(pageRegistry(), s)
	c.Navigate("about")

	c.EnterArchive(types.Workflows, "WORKFLOWS", "all of them", sampleItems())
	require.Equal(t, InArchive, c.Mode())
	st := c.State()
	require.NotNil(t, st.Archive)
	assert.Equal(t, types.Workflows, st.Archive.Category)
	assert.Len(t, st.Archive.Items, 2)
	assert.Equal(t, scrollCall{0, false}, s.calls[len(s.calls)-1])

	// Entering another archive while in one is allowed.
	c.EnterArchive(types.Code, "CODE", "", nil)
	assert.Equal(t, types.Code, c.State().Archive.Category)
	assert.Equal(t, InArchive, c.State().Mode())
}

func TestExitArchive_RestoresActiveSection(t *testing.T) {
	for _, id := range []string{"hero", "about", "workflows", "prompts", "code"} {
		t.Run(id, func(t *testing.T) {
			c := New(pageRegistry(), &fakeScroller{})
			c.Navigate(id)
			before := c.Active()

			c.EnterArchive(types.Data, "DATA", "", sampleItems())
			assert.Equal(t, InArchive, c.Mode())
			c.ExitArchive()

			assert.Equal(t, OnPage, c.Mode())
			assert.Equal(t, before, c.Active())
			assert.Nil(t, c.State().Archive)
		})
	}
}

func TestNavigate_FromArchiveWaitsForMount(t *testing.T) {
	s := &fakeScroller{}
	c := New(pageRegistry(), s)
	c.EnterArchive(types.Prompts, "PROMPTS", "", sampleItems())
	s.calls = nil

	require.True(t, c.Navigate("code"))
	assert.Equal(t, OnPage, c.Mode())
	assert.Equal(t, "hero", c.Active(), "active must not change before mount")
	assert.Empty(t, s.calls)
	pending, ok := c.Pending()
	require.True(t, ok)
	assert.Equal(t, "code", pending)

	require.True(t, c.Mounted())
	assert.Equal(t, "code", c.Active())
	assert.Equal(t, []scrollCall{{100, true}}, s.calls)

	// A second mount signal has nothing left to do.
	assert.False(t, c.Mounted())
}

func TestNavigate_FromArchiveToUnknownSection(t *testing.T) {
	c := New(pageRegistry(), &fakeScroller{})
	c.Navigate("about")
	c.EnterArchive(types.Scripts, "SCRIPTS", "", nil)

	c.Navigate("nowhere")
	assert.False(t, c.Mounted())
	assert.Equal(t, OnPage, c.Mode())
	assert.Equal(t, "about", c.Active())
}

func TestEnterArchive_DropsPendingHandoff(t *testing.T) {
	c := New(pageRegistry(), &fakeScroller{})
	c.EnterArchive(types.Scripts, "SCRIPTS", "", nil)
	c.Navigate("code")

	c.EnterArchive(types.Data, "DATA", "", nil)
	_, ok := c.Pending()
	assert.False(t, ok)

	c.ExitArchive()
	assert.False(t, c.Mounted())
	assert.Equal(t, "hero", c.Active())
}

func TestObserve_EnteringSectionBecomesActive(t *testing.T) {
	c := New(pageRegistry(), &fakeScroller{})

	// Only hero visible.
	require.False(t, c.Observe(Viewport{Top: 0, Height: 20}))
	assert.Equal(t, "hero", c.Active())

	// about shows 4 of its 20 comparable lines: exactly the threshold.
	require.True(t, c.Observe(Viewport{Top: 4, Height: 20}))
	assert.Equal(t, "about", c.Active())

	// Staying in view does not retrigger.
	assert.False(t, c.Observe(Viewport{Top: 5, Height: 20}))

	// hero leaves, then enters again.
	assert.False(t, c.Observe(Viewport{Top: 30, Height: 20}))
	assert.True(t, c.Observe(Viewport{Top: 0, Height: 20}))
	assert.Equal(t, "hero", c.Active())
}

func TestObserve_BelowThresholdIgnored(t *testing.T) {
	c := New(pageRegistry(), &fakeScroller{})
	c.Observe(Viewport{Top: 0, Height: 20})

	// about visible 3/20 = 0.15
	assert.False(t, c.Observe(Viewport{Top: 3, Height: 20}))
	assert.Equal(t, "hero", c.Active())
}

func TestObserve_CustomThreshold(t *testing.T) {
	c := New(pageRegistry(), &fakeScroller{}, WithThreshold(0.5))
	c.Observe(Viewport{Top: 0, Height: 20})

	assert.False(t, c.Observe(Viewport{Top: 5, Height: 20}))
	assert.True(t, c.Observe(Viewport{Top: 10, Height: 20}))
	assert.Equal(t, "about", c.Active())
}

func TestObserve_DisabledInArchive(t *testing.T) {
	c := New(pageRegistry(), &fakeScroller{})
	c.Navigate("about")
	c.EnterArchive(types.Workflows, "WORKFLOWS", "", nil)

	assert.False(t, c.Observe(Viewport{Top: 100, Height: 25}))
	assert.Equal(t, "about", c.Active())
	assert.Equal(t, InArchive, c.Mode())
}

func TestObserve_LastEnteringWins(t *testing.T) {
	c := New(pageRegistry(), &fakeScroller{})

	// First observation with a tall viewport: everything enters at once.
	assert.True(t, c.Observe(Viewport{Top: 0, Height: 200}))
	assert.Equal(t, "code", c.Active())
}

func TestSync_DoesNotChangeActive(t *testing.T) {
	c := New(pageRegistry(), &fakeScroller{})
	c.Navigate("workflows")

	// workflows and prompts both in view after the scroll settles.
	c.Sync(Viewport{Top: 50, Height: 40})
	assert.Equal(t, "workflows", c.Active())

	// A small manual scroll does not make either of them "enter".
	assert.False(t, c.Observe(Viewport{Top: 52, Height: 40}))
	assert.Equal(t, "workflows", c.Active())

	// code entering for the first time does.
	assert.True(t, c.Observe(Viewport{Top: 70, Height: 40}))
	assert.Equal(t, "code", c.Active())
}

func TestOptions_InvalidValuesIgnored(t *testing.T) {
	c := New(nil, nil, WithThreshold(0), WithThreshold(1.5), WithHandoffDelay(-time.Second))

	assert.Equal(t, DefaultThreshold, c.Threshold())
	assert.Equal(t, DefaultHandoffDelay, c.HandoffDelay())
	assert.False(t, c.Navigate("hero"))
}

func TestRatio(t *testing.T) {
	tests := []struct {
		name string
		b    Bounds
		vp   Viewport
		want float64
	}{
		{"fully visible", Bounds{10, 5}, Viewport{0, 20}, 1},
		{"outside", Bounds{30, 5}, Viewport{0, 20}, 0},
		{"half", Bounds{15, 10}, Viewport{0, 20}, 0.5},
		{"taller than viewport", Bounds{0, 100}, Viewport{10, 20}, 1},
		{"zero height", Bounds{0, 0}, Viewport{0, 20}, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.want, Ratio(tt.b, tt.vp), 1e-9)
		})
	}
}

func TestModeString(t *testing.T) {
	assert.Equal(t, "on_page", OnPage.String())
	assert.Equal(t, "in_archive", InArchive.String())
}
