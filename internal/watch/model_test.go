package watch

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeCapturer struct {
	mu    sync.Mutex
	calls []string
	out   string
	err   error
}

func (f *fakeCapturer) Capture(_ context.Context, session string, scrollBack int) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, session)
	return f.out, f.err
}

func runes(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func newSizedModel(t *testing.T, c Capturer) *Model {
	t.Helper()
	m := NewModel(context.Background(), c, Options{Session: "dev", Interval: time.Hour})
	m.Update(tea.WindowSizeMsg{Width: 80, Height: 24})
	return m
}

func TestNewModel_DefaultInterval(t *testing.T) {
	m := NewModel(context.Background(), &fakeCapturer{}, Options{Session: "dev"})
	assert.Equal(t, DefaultInterval, m.opts.Interval)
	assert.True(t, m.following)
}

func TestCapture_UsesSessionAndScrollBack(t *testing.T) {
	fc := &fakeCapturer{out: "$ ls\nREADME\n"}
	m := NewModel(context.Background(), fc, Options{Session: "work", ScrollBack: 50})

	msg := m.capture()()
	cm, ok := msg.(captureMsg)
	require.True(t, ok)
	assert.Equal(t, "$ ls\nREADME\n", cm.content)
	assert.NoError(t, cm.err)
	assert.Equal(t, []string{"work"}, fc.calls)
}

func TestUpdate_CaptureSetsContentAndSchedulesTick(t *testing.T) {
	m := newSizedModel(t, &fakeCapturer{})
	m.inFlight = true

	_, cmd := m.Update(captureMsg{content: "line1\nline2\n", at: time.Now()})
	assert.NotNil(t, cmd, "next tick should be scheduled")
	assert.False(t, m.inFlight)
	assert.Equal(t, 1, m.captures)
	assert.Contains(t, m.View(), "line2")
}

func TestUpdate_CaptureErrorKeepsLastContent(t *testing.T) {
	m := newSizedModel(t, &fakeCapturer{})
	m.Update(captureMsg{content: "still here", at: time.Now()})
	m.Update(captureMsg{err: errors.New("tmux capture-pane: can't find session: dev"), at: time.Now()})

	view := m.View()
	assert.Contains(t, view, "still here")
	assert.Contains(t, view, "capture failed: tmux capture-pane: can't find session: dev")
}

func TestUpdate_TickSkippedWhileInFlight(t *testing.T) {
	m := newSizedModel(t, &fakeCapturer{})
	m.inFlight = true
	_, cmd := m.Update(tickMsg(time.Now()))
	assert.Nil(t, cmd)
}

func TestPause(t *testing.T) {
	fc := &fakeCapturer{}
	m := newSizedModel(t, fc)

	m.Update(runes("p"))
	assert.True(t, m.paused)

	_, cmd := m.Update(tickMsg(time.Now()))
	assert.Nil(t, cmd, "paused view must not capture")

	_, cmd = m.Update(captureMsg{content: "x", at: time.Now()})
	assert.Nil(t, cmd, "paused view must not schedule a tick")
	assert.Contains(t, m.View(), "paused")

	_, cmd = m.Update(runes("p"))
	require.NotNil(t, cmd, "resuming should capture immediately")
	assert.False(t, m.paused)
}

func TestQuit(t *testing.T) {
	m := newSizedModel(t, &fakeCapturer{})
	_, cmd := m.Update(runes("q"))
	require.NotNil(t, cmd)
	_, ok := cmd().(tea.QuitMsg)
	assert.True(t, ok)
}

func TestFollowAndTop(t *testing.T) {
	m := newSizedModel(t, &fakeCapturer{})
	m.Update(captureMsg{content: strings.Repeat("row\n", 200), at: time.Now()})
	assert.True(t, m.viewport.AtBottom())

	m.Update(runes("g"))
	assert.False(t, m.following)
	assert.True(t, m.viewport.AtTop())

	// New content does not yank the view while not following.
	m.Update(captureMsg{content: strings.Repeat("row\n", 201), at: time.Now()})
	assert.True(t, m.viewport.AtTop())

	m.Update(runes("G"))
	assert.True(t, m.following)
	assert.True(t, m.viewport.AtBottom())
}

func TestView_BeforeSize(t *testing.T) {
	m := NewModel(context.Background(), &fakeCapturer{}, Options{Session: "dev"})
	assert.Equal(t, "Loading dev...", m.View())
}
