package ui

import (
	"context"
	"time"

	"github.com/atotto/clipboard"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/grant/suneater/provider"
	"github.com/grant/suneater/types"
)

// clipboardWriteAll is a package-level variable to allow mocking in tests.
var clipboardWriteAll = clipboard.WriteAll

// Message types for async operations

// itemsMsg reports that one category fetch finished. The items live in
// the provider; err is for logging only.
type itemsMsg struct {
	category types.CategoryID
	err      error
}

// pageMountedMsg signals that the page is rendered again after an archive.
type pageMountedMsg struct{}

// scrollFrameMsg advances the smooth scroll animation by one frame.
// Frames from a superseded animation carry an old id and are dropped.
type scrollFrameMsg struct {
	animationID int
}

type copiedMsg struct {
	link string
	err  error
}

// fetchCategory returns a tea.Cmd that refreshes one category provider.
func fetchCategory(ctx context.Context, category types.CategoryID, p *provider.Provider[types.ContentItem]) tea.Cmd {
	return func() tea.Msg {
		return itemsMsg{category: category, err: p.Refresh(ctx)}
	}
}

// signalMounted returns a tea.Cmd delivering pageMountedMsg after delay,
// or on the next loop iteration when delay is zero.
func signalMounted(delay time.Duration) tea.Cmd {
	if delay <= 0 {
		return func() tea.Msg { return pageMountedMsg{} }
	}
	return tea.Tick(delay, func(time.Time) tea.Msg { return pageMountedMsg{} })
}

func scrollFrame(animationID int) tea.Cmd {
	return tea.Tick(frameInterval, func(time.Time) tea.Msg { return scrollFrameMsg{animationID: animationID} })
}

func copyLink(link string) tea.Cmd {
	return func() tea.Msg {
		return copiedMsg{link: link, err: clipboardWriteAll(link)}
	}
}
