package ui

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/list"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"go.uber.org/zap"

	"github.com/grant/suneater/catalog"
	"github.com/grant/suneater/nav"
	"github.com/grant/suneater/provider"
	"github.com/grant/suneater/types"
)

// Options configures a Model.
type Options struct {
	// Context bounds the category fetches.
	Context context.Context
	Catalog *catalog.Catalog
	// Providers holds one provider per category. Categories without one
	// show their fallback items.
	Providers    map[types.CategoryID]*provider.Provider[types.ContentItem]
	Threshold    float64
	HandoffDelay time.Duration
	Logger       *zap.Logger
}

// Model is the main TUI model
type Model struct {
	ctx        context.Context
	catalog    *catalog.Catalog
	sections   []types.Section
	categories map[types.CategoryID]types.Category
	providers  map[types.CategoryID]*provider.Provider[types.ContentItem]
	logger     *zap.Logger

	nav      *nav.Controller
	scroller *smoothScroller
	layout   *layout

	page    viewport.Model
	archive list.Model
	spinner spinner.Model
	help    help.Model
	keys    keyMap

	about      string
	aboutWidth int
	pageOffset int
	width      int
	height     int
	inFlight   int
	// animationID identifies the running scroll animation.
	animationID int
	statusMsg   string
}

// NewModel creates a Model showing the page at the hero section.
func NewModel(opts Options) Model {
	ctx := opts.Context
	if ctx == nil {
		ctx = context.Background()
	}
	cat := opts.Catalog
	if cat == nil {
		cat = catalog.Default()
	}
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	categories := make(map[types.CategoryID]types.Category)
	for _, c := range cat.Categories() {
		categories[c.ID()] = c
	}
	sections := cat.Sections()

	l := list.New([]list.Item{}, ItemDelegate{}, 0, 0)
	l.SetShowHelp(false)
	l.SetFilteringEnabled(true)
	l.SetStatusBarItemName("item", "items")
	l.Styles.Title = TitleStyle

	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = lipgloss.NewStyle().Foreground(DraculaPink)

	scroller := newSmoothScroller()
	lay := newLayout()
	lay.mounted = true

	navOpts := []nav.Option{nav.WithThreshold(opts.Threshold)}
	if opts.HandoffDelay > 0 {
		navOpts = append(navOpts, nav.WithHandoffDelay(opts.HandoffDelay))
	}

	m := Model{
		ctx:        ctx,
		catalog:    cat,
		sections:   sections,
		categories: categories,
		providers:  opts.Providers,
		logger:     logger,
		nav:        nav.New(lay.registry(sections), scroller, navOpts...),
		scroller:   scroller,
		layout:     lay,
		page:       viewport.New(0, 0),
		archive:    l,
		spinner:    s,
		help:       help.New(),
		keys:       keys,
		inFlight:   len(opts.Providers),
	}
	m.renderPage()
	return m
}

// Init starts one fetch per category.
func (m Model) Init() tea.Cmd {
	var cmds []tea.Cmd
	for _, c := range m.catalog.Categories() {
		if p, ok := m.providers[c.ID()]; ok {
			cmds = append(cmds, fetchCategory(m.ctx, c.ID(), p))
		}
	}
	if len(cmds) > 0 {
		cmds = append(cmds, m.spinner.Tick)
	}
	return tea.Batch(cmds...)
}

// Update handles messages
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.resizePanes()
		m.nav.Sync(m.window())
		return m, nil

	case itemsMsg:
		m.inFlight = max(m.inFlight-1, 0)
		if msg.err != nil {
			m.logger.Debug("Category shows fallback", zap.String("category", msg.category.String()), zap.Error(msg.err))
		}
		m.renderPage()
		return m, nil

	case spinner.TickMsg:
		if m.inFlight == 0 {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case pageMountedMsg:
		if _, ok := m.nav.Pending(); !ok {
			return m, nil
		}
		if m.width == 0 {
			// No size yet: the page has not really been laid out.
			return m, signalMounted(m.nav.HandoffDelay())
		}
		if !m.nav.Mounted() {
			return m, nil
		}
		cmd := m.startScroll()
		return m, cmd

	case scrollFrameMsg:
		if msg.animationID != m.animationID {
			return m, nil
		}
		done := m.scroller.Step()
		m.page.SetYOffset(m.scroller.Offset())
		if done {
			m.nav.Sync(m.window())
			return m, nil
		}
		return m, scrollFrame(m.animationID)

	case copiedMsg:
		if msg.err != nil {
			m.logger.Warn("Clipboard write failed", zap.Error(msg.err))
			m.statusMsg = "Clipboard unavailable"
		} else {
			m.statusMsg = "Copied " + msg.link
		}
		return m, nil

	case tea.MouseMsg:
		var cmd tea.Cmd
		if m.nav.Mode() == nav.InArchive {
			m.archive, cmd = m.archive.Update(msg)
			return m, cmd
		}
		m.page, cmd = m.page.Update(msg)
		m.afterManualScroll()
		return m, cmd

	case tea.KeyMsg:
		return m.handleKey(msg)
	}

	return m, nil
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	inArchive := m.nav.Mode() == nav.InArchive
	filtering := inArchive && m.archive.FilterState() == list.Filtering

	if msg.String() == "ctrl+c" || (!filtering && key.Matches(msg, m.keys.Quit)) {
		m.closeProviders()
		return m, tea.Quit
	}
	if filtering {
		var cmd tea.Cmd
		m.archive, cmd = m.archive.Update(msg)
		return m, cmd
	}

	switch {
	case key.Matches(msg, m.keys.Help):
		m.help.ShowAll = !m.help.ShowAll
		m.resizePanes()
		return m, nil
	case key.Matches(msg, m.keys.Next):
		return m.navigate(m.sectionAfter(1))
	case key.Matches(msg, m.keys.Prev):
		return m.navigate(m.sectionAfter(-1))
	case key.Matches(msg, m.keys.Jump):
		idx := int(msg.String()[0] - '1')
		if idx >= 0 && idx < len(m.sections) {
			return m.navigate(m.sections[idx].ID)
		}
		return m, nil
	case key.Matches(msg, m.keys.Copy):
		cmd := m.copyActiveLink()
		return m, cmd
	}

	if inArchive {
		if key.Matches(msg, m.keys.Back) && m.archive.FilterState() == list.Unfiltered {
			m.exitArchive()
			return m, nil
		}
		var cmd tea.Cmd
		m.archive, cmd = m.archive.Update(msg)
		return m, cmd
	}

	switch {
	case key.Matches(msg, m.keys.Enter):
		cmd := m.enterArchive(m.activeCategory())
		return m, cmd
	case key.Matches(msg, m.keys.Top):
		m.page.GotoTop()
		m.afterManualScroll()
		return m, nil
	case key.Matches(msg, m.keys.Bottom):
		m.page.GotoBottom()
		m.afterManualScroll()
		return m, nil
	}

	var cmd tea.Cmd
	m.page, cmd = m.page.Update(msg)
	m.afterManualScroll()
	return m, cmd
}

// navigate routes a section request through the controller. Leaving an
// archive defers the scroll until the page reports itself mounted.
func (m Model) navigate(id string) (tea.Model, tea.Cmd) {
	wasArchive := m.nav.Mode() == nav.InArchive
	if !m.nav.Navigate(id) {
		return m, nil
	}
	if wasArchive {
		m.showPage()
		m.page.SetYOffset(m.scroller.Offset())
		return m, signalMounted(0)
	}
	cmd := m.startScroll()
	return m, cmd
}

func (m *Model) enterArchive(id types.CategoryID) tea.Cmd {
	cat, ok := m.categories[id]
	if !ok {
		return nil
	}
	items := m.itemsFor(id)
	m.pageOffset = m.page.YOffset
	m.nav.EnterArchive(id, cat.ArchiveTitle(), cat.ArchiveSubtitle(), items)
	m.layout.mounted = false

	listItems := make([]list.Item, len(items))
	for i, it := range items {
		listItems[i] = it
	}
	m.archive.ResetFilter()
	m.archive.Title = glyph(cat.Icon()) + " " + cat.ArchiveTitle()
	cmd := m.archive.SetItems(listItems)
	m.archive.Select(0)
	m.statusMsg = ""
	return cmd
}

func (m *Model) exitArchive() {
	m.nav.ExitArchive()
	m.showPage()
	m.scroller.Sync(m.pageOffset)
	m.page.SetYOffset(m.pageOffset)
	m.nav.Sync(m.window())
}

func (m *Model) showPage() {
	m.layout.mounted = true
	m.renderPage()
}

func (m *Model) startScroll() tea.Cmd {
	if !m.scroller.Animating() {
		m.page.SetYOffset(m.scroller.Offset())
		m.nav.Sync(m.window())
		return nil
	}
	m.animationID++
	return scrollFrame(m.animationID)
}

func (m *Model) afterManualScroll() {
	m.animationID++
	m.scroller.Sync(m.page.YOffset)
	m.nav.Observe(m.window())
}

func (m Model) window() nav.Viewport {
	return nav.Viewport{Top: m.page.YOffset, Height: m.page.Height}
}

func (m Model) itemsFor(id types.CategoryID) []types.ContentItem {
	if p, ok := m.providers[id]; ok {
		return p.Items()
	}
	return m.categories[id].Fallback()
}

func (m Model) activeCategory() types.CategoryID {
	for _, s := range m.sections {
		if s.ID == m.nav.Active() {
			return s.Category
		}
	}
	return ""
}

func (m Model) sectionAfter(delta int) string {
	n := len(m.sections)
	if n == 0 {
		return ""
	}
	idx := 0
	for i, s := range m.sections {
		if s.ID == m.nav.Active() {
			idx = i
			break
		}
	}
	return m.sections[((idx+delta)%n+n)%n].ID
}

func (m *Model) copyActiveLink() tea.Cmd {
	var item types.ContentItem
	found := false
	if m.nav.Mode() == nav.InArchive {
		item, found = m.archive.SelectedItem().(types.ContentItem)
	} else if id := m.activeCategory(); id != "" {
		for _, it := range catalog.Preview(m.itemsFor(id)) {
			if it.HasLink() {
				item, found = it, true
				break
			}
		}
	}
	if !found || !item.HasLink() {
		m.statusMsg = "No link to copy"
		return nil
	}
	return copyLink(item.Link())
}

func (m *Model) closeProviders() {
	for _, p := range m.providers {
		p.Close()
	}
}

func (m *Model) renderPage() {
	width := m.page.Width
	if width == 0 {
		width = 80
	}
	if m.about == "" || m.aboutWidth != width {
		m.about = renderMarkdown(m.catalog.Profile().About, width)
		m.aboutWidth = width
	}

	items := make(map[types.CategoryID][]types.ContentItem, len(m.categories))
	for id := range m.categories {
		items[id] = m.itemsFor(id)
	}
	content, bounds := renderPage(pageContent{
		profile:    m.catalog.Profile(),
		sections:   m.sections,
		categories: m.categories,
		items:      items,
		about:      m.about,
		width:      width,
		minHeight:  m.page.Height,
	})
	m.layout.bounds = bounds
	m.page.SetContent(content)
	m.scroller.SetMax(lipgloss.Height(content) - m.page.Height)
}

// resizePanes adjusts the dimensions of the page and archive list
func (m *Model) resizePanes() {
	m.help.Width = m.width
	navbarHeight := 1
	statusHeight := 1
	helpHeight := lipgloss.Height(m.help.View(m.keys))
	bodyHeight := max(m.height-navbarHeight-statusHeight-helpHeight, 0)

	m.page.Width = m.width
	m.page.Height = bodyHeight
	// The archive shows its subtitle above the list.
	m.archive.SetSize(m.width, max(bodyHeight-1, 0))
	m.renderPage()
}

// View renders the current view
func (m Model) View() string {
	var body string
	if st := m.nav.State(); st.Archive != nil {
		body = lipgloss.JoinVertical(lipgloss.Left,
			SectionSubtitleStyle.Render(truncate(st.Archive.Subtitle, max(m.width, 1))),
			m.archive.View(),
		)
	} else {
		body = m.page.View()
	}
	return lipgloss.JoinVertical(lipgloss.Left,
		m.renderNavbar(),
		body,
		m.renderStatus(),
		m.help.View(m.keys),
	)
}

func (m Model) renderNavbar() string {
	active := m.nav.Active()
	parts := []string{BrandStyle.Render(m.catalog.Profile().Brand)}
	for i, s := range m.sections {
		label := fmt.Sprintf("%d %s", i+1, s.Label)
		if s.ID == active && m.nav.Mode() == nav.OnPage {
			parts = append(parts, ActiveTabStyle.Render(label))
		} else {
			parts = append(parts, InactiveTabStyle.Render(label))
		}
	}
	bar := strings.Join(parts, "")
	if m.width > 0 && lipgloss.Width(bar) > m.width {
		return lipgloss.NewStyle().MaxWidth(m.width).Render(bar)
	}
	return bar
}

func (m Model) renderStatus() string {
	left := m.statusMsg
	if m.inFlight > 0 {
		left = fmt.Sprintf("%s syncing %d categories", m.spinner.View(), m.inFlight)
	}

	live := 0
	for _, p := range m.providers {
		if p.Remote() {
			live++
		}
	}
	right := fmt.Sprintf("live %d/%d", live, len(m.categories))

	gap := max(m.width-lipgloss.Width(left)-lipgloss.Width(right), 1)
	return StatusBarStyle.Render(left + strings.Repeat(" ", gap) + right)
}
