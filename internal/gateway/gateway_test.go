package gateway

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/steveyegge/shelluse/internal/tmux"
)

// fakeRunner records every request and replays canned results in order.
type fakeRunner struct {
	calls   []tmux.Request
	results []fakeResult
}

type fakeResult struct {
	out string
	err error
}

func (f *fakeRunner) Run(_ context.Context, req tmux.Request) (string, error) {
	f.calls = append(f.calls, req)
	if len(f.results) == 0 {
		return "", nil
	}
	r := f.results[0]
	f.results = f.results[1:]
	return r.out, r.err
}

func newTestGateway(t *testing.T, allowed []string, results ...fakeResult) (*Gateway, *fakeRunner) {
	t.Helper()
	r := &fakeRunner{results: results}
	g, err := New(allowed, r)
	require.NoError(t, err)
	g.newBufferName = func() string { return "shelluse-test" }
	return g, r
}

func args(req tmux.Request) []string { return req.Args }

func TestNew_EmptyAllowlist(t *testing.T) {
	_, err := New(nil, &fakeRunner{})
	assert.ErrorIs(t, err, ErrEmptyAllowlist)

	_, err = New([]string{}, &fakeRunner{})
	assert.ErrorIs(t, err, ErrEmptyAllowlist)
}

func TestNew_NilRunner(t *testing.T) {
	_, err := New([]string{"dev"}, nil)
	assert.Error(t, err)
}

func TestNew_CopiesAllowlist(t *testing.T) {
	allowed := []string{"dev", "work"}
	g, _ := newTestGateway(t, allowed)
	allowed[0] = "other"

	assert.Equal(t, []string{"dev", "work"}, g.ListSessions())
}

func TestListSessions(t *testing.T) {
	g, r := newTestGateway(t, []string{"dev", "work"})

	got := g.ListSessions()
	assert.Equal(t, []string{"dev", "work"}, got)
	assert.Empty(t, r.calls)

	// Mutating the result must not leak into the gateway.
	got[0] = "x"
	assert.Equal(t, []string{"dev", "work"}, g.ListSessions())
}

func TestCapture_IncludesScrollback(t *testing.T) {
	g, r := newTestGateway(t, []string{"dev"}, fakeResult{out: "screen\n\n"})

	out, err := g.Capture(context.Background(), "dev", 50)
	require.NoError(t, err)
	assert.Equal(t, "screen\n\n", out, "capture output is returned untrimmed")
	require.Len(t, r.calls, 1)
	assert.Equal(t, []string{"capture-pane", "-t", "dev", "-p", "-S", "-50"}, args(r.calls[0]))
	assert.False(t, r.calls[0].HasInput)
}

func TestCapture_ZeroScrollback(t *testing.T) {
	g, r := newTestGateway(t, []string{"dev"}, fakeResult{out: "$ "})

	_, err := g.Capture(context.Background(), "dev", 0)
	require.NoError(t, err)
	assert.Equal(t, []string{"capture-pane", "-t", "dev", "-p", "-S", "-0"}, args(r.calls[0]))
}

func TestCapture_NegativeScrollback(t *testing.T) {
	g, r := newTestGateway(t, []string{"dev"})

	_, err := g.Capture(context.Background(), "dev", -1)
	assert.ErrorIs(t, err, ErrInvalidArgument)
	assert.Empty(t, r.calls)

	var argErr *InvalidArgumentError
	require.ErrorAs(t, err, &argErr)
	assert.Equal(t, "scroll_back", argErr.Name)
}

func TestSendKeys_Verbatim(t *testing.T) {
	tests := []struct {
		name string
		keys string
	}{
		{"enter", "Enter"},
		{"control", "C-c"},
		{"escape", "Escape"},
		{"text that looks like a key", "Enter Enter"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g, r := newTestGateway(t, []string{"dev"})

			require.NoError(t, g.SendKeys(context.Background(), "dev", tt.keys))
			require.Len(t, r.calls, 1)
			assert.Equal(t, []string{"send-keys", "-t", "dev", tt.keys}, args(r.calls[0]))
		})
	}
}

func TestSendText_Bracketed(t *testing.T) {
	g, r := newTestGateway(t, []string{"dev"})

	require.NoError(t, g.SendText(context.Background(), "dev", "echo hi", true))

	require.Len(t, r.calls, 2)
	assert.Equal(t, []string{"load-buffer", "-b", "shelluse-test", "-"}, args(r.calls[0]))
	assert.True(t, r.calls[0].HasInput)
	assert.Equal(t, "echo hi", r.calls[0].Input)
	assert.Equal(t, []string{"paste-buffer", "-b", "shelluse-test", "-d", "-p", "-t", "dev"}, args(r.calls[1]))
	assert.False(t, r.calls[1].HasInput)
}

func TestSendText_Unbracketed(t *testing.T) {
	g, r := newTestGateway(t, []string{"dev"})

	require.NoError(t, g.SendText(context.Background(), "dev", "echo hi\n", false))

	require.Len(t, r.calls, 2)
	assert.Equal(t, "echo hi\n", r.calls[0].Input)
	assert.Equal(t, []string{"paste-buffer", "-b", "shelluse-test", "-d", "-t", "dev"}, args(r.calls[1]))
	assert.NotContains(t, args(r.calls[1]), "-p")
}

func TestSendText_PayloadUnaltered(t *testing.T) {
	payloads := []string{
		"",
		"line1\nline2\n",
		"tabs\tand\rcarriage",
		"; kill-server \\; send-keys C-c",
		"#{pane_id} $HOME `id` 'quoted' \"double\"",
		"unicode ✓ 日本語 \x1b[31mred\x1b[0m",
	}
	for _, p := range payloads {
		g, r := newTestGateway(t, []string{"dev"})
		require.NoError(t, g.SendText(context.Background(), "dev", p, true))
		require.Len(t, r.calls, 2)
		assert.Equal(t, p, r.calls[0].Input)
		assert.True(t, r.calls[0].HasInput)
	}
}

func TestSendText_UniqueBufferNames(t *testing.T) {
	r := &fakeRunner{}
	g, err := New([]string{"dev"}, r)
	require.NoError(t, err)

	require.NoError(t, g.SendText(context.Background(), "dev", "a", true))
	require.NoError(t, g.SendText(context.Background(), "dev", "b", true))
	require.Len(t, r.calls, 4)

	first, second := r.calls[0].Args[2], r.calls[2].Args[2]
	assert.Contains(t, first, bufferPrefix)
	assert.NotEqual(t, first, second)
	// load and paste of one call share the same buffer
	assert.Equal(t, first, r.calls[1].Args[2])
}

func TestSendText_LoadFailureSkipsPaste(t *testing.T) {
	loadErr := &tmux.CommandError{Args: []string{"load-buffer"}, Message: "no server running on /tmp/tmux-0/default"}
	g, r := newTestGateway(t, []string{"dev"}, fakeResult{err: loadErr})

	err := g.SendText(context.Background(), "dev", "x", true)
	assert.ErrorIs(t, err, tmux.ErrCommandFailed)
	assert.Len(t, r.calls, 1)
}

func TestSendText_PasteFailureDropsBuffer(t *testing.T) {
	pasteErr := &tmux.CommandError{Args: []string{"paste-buffer"}, Message: "can't find session: dev"}
	g, r := newTestGateway(t, []string{"dev"}, fakeResult{}, fakeResult{err: pasteErr})

	err := g.SendText(context.Background(), "dev", "x", true)
	assert.ErrorIs(t, err, tmux.ErrCommandFailed)
	assert.Contains(t, err.Error(), "can't find session: dev")
	require.Len(t, r.calls, 3)
	assert.Equal(t, []string{"delete-buffer", "-b", "shelluse-test"}, args(r.calls[2]))
}

func TestScroll_CopyModeAndRepeats(t *testing.T) {
	g, r := newTestGateway(t, []string{"dev"})

	require.NoError(t, g.Scroll(context.Background(), "dev", Up, 2))

	require.Len(t, r.calls, 3)
	assert.Equal(t, []string{"copy-mode", "-t", "dev"}, args(r.calls[0]))
	assert.Equal(t, []string{"send-keys", "-t", "dev", "-X", "halfpage-up"}, args(r.calls[1]))
	assert.Equal(t, []string{"send-keys", "-t", "dev", "-X", "halfpage-up"}, args(r.calls[2]))
}

func TestScroll_Down(t *testing.T) {
	g, r := newTestGateway(t, []string{"dev"})

	require.NoError(t, g.Scroll(context.Background(), "dev", Down, 1))

	require.Len(t, r.calls, 2)
	assert.Equal(t, []string{"send-keys", "-t", "dev", "-X", "halfpage-down"}, args(r.calls[1]))
}

func TestScroll_InvalidArguments(t *testing.T) {
	tests := []struct {
		name      string
		direction Direction
		amount    int
		field     string
	}{
		{"zero amount", Down, 0, "amount"},
		{"negative amount", Up, -3, "amount"},
		{"sideways", Direction("sideways"), 1, "direction"},
		{"left", Direction("left"), 1, "direction"},
		{"wrong case", Direction("Up"), 1, "direction"},
		{"empty direction", Direction(""), 1, "direction"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g, r := newTestGateway(t, []string{"dev"})

			err := g.Scroll(context.Background(), "dev", tt.direction, tt.amount)
			assert.ErrorIs(t, err, ErrInvalidArgument)
			assert.Empty(t, r.calls)

			var argErr *InvalidArgumentError
			require.ErrorAs(t, err, &argErr)
			assert.Equal(t, tt.field, argErr.Name)
		})
	}
}

func TestScroll_StopsOnFirstFailure(t *testing.T) {
	stepErr := &tmux.CommandError{Args: []string{"send-keys"}, Message: "not in a mode"}
	g, r := newTestGateway(t, []string{"dev"}, fakeResult{}, fakeResult{err: stepErr})

	err := g.Scroll(context.Background(), "dev", Up, 5)
	assert.ErrorIs(t, err, tmux.ErrCommandFailed)
	assert.Len(t, r.calls, 2)
}

func TestExitScrollMode_SendsCancel(t *testing.T) {
	g, r := newTestGateway(t, []string{"dev"})

	require.NoError(t, g.ExitScrollMode(context.Background(), "dev"))

	require.Len(t, r.calls, 1)
	assert.Equal(t, []string{"send-keys", "-t", "dev", "-X", "cancel"}, args(r.calls[0]))
}

func TestUnauthorizedSession_EveryOperation(t *testing.T) {
	ctx := context.Background()
	ops := map[string]func(g *Gateway, session string) error{
		"capture": func(g *Gateway, s string) error {
			_, err := g.Capture(ctx, s, 0)
			return err
		},
		"capture with invalid scrollback": func(g *Gateway, s string) error {
			_, err := g.Capture(ctx, s, -1)
			return err
		},
		"send_keys": func(g *Gateway, s string) error {
			return g.SendKeys(ctx, s, "Enter")
		},
		"send_text": func(g *Gateway, s string) error {
			return g.SendText(ctx, s, "echo hi", true)
		},
		"scroll": func(g *Gateway, s string) error {
			return g.Scroll(ctx, s, Up, 1)
		},
		"scroll with invalid args": func(g *Gateway, s string) error {
			return g.Scroll(ctx, s, Direction("sideways"), 0)
		},
		"exit_scroll_mode": func(g *Gateway, s string) error {
			return g.ExitScrollMode(ctx, s)
		},
		"type": func(g *Gateway, s string) error {
			return g.Type(ctx, s, "ls", true)
		},
	}
	sessions := []string{"other", "Dev", "dev ", " dev", "", "dev:0"}

	for name, op := range ops {
		for _, s := range sessions {
			t.Run(name+"/"+s, func(t *testing.T) {
				g, r := newTestGateway(t, []string{"dev", "work"})

				err := op(g, s)
				assert.ErrorIs(t, err, ErrUnauthorizedSession)
				assert.Contains(t, err.Error(), "not in allowed list")
				assert.Contains(t, err.Error(), "dev, work")
				assert.Empty(t, r.calls)

				var authErr *UnauthorizedError
				require.ErrorAs(t, err, &authErr)
				assert.Equal(t, s, authErr.Session)
			})
		}
	}
}

func TestCommandFailure_MessageVerbatim(t *testing.T) {
	cmdErr := &tmux.CommandError{Args: []string{"capture-pane"}, ExitCode: 1, Message: "no server running on /tmp/tmux-1000/default"}
	g, _ := newTestGateway(t, []string{"dev"}, fakeResult{err: cmdErr})

	_, err := g.Capture(context.Background(), "dev", 0)
	require.Error(t, err)
	assert.ErrorIs(t, err, tmux.ErrCommandFailed)
	assert.Contains(t, err.Error(), "no server running on /tmp/tmux-1000/default")
	assert.True(t, tmux.IsNoServer(err))
}

func TestBinaryNotFound_PassesThrough(t *testing.T) {
	nf := &tmux.BinaryNotFoundError{Binary: "/nope/tmux", Cause: errors.New("no such file")}
	g, _ := newTestGateway(t, []string{"dev"}, fakeResult{err: nf})

	err := g.SendKeys(context.Background(), "dev", "Enter")
	assert.ErrorIs(t, err, tmux.ErrBinaryNotFound)
	assert.Equal(t, "binary_not_found", Kind(err))
}

func TestType(t *testing.T) {
	t.Run("enter submits unbracketed", func(t *testing.T) {
		g, r := newTestGateway(t, []string{"dev"})

		require.NoError(t, g.Type(context.Background(), "dev", "ls -la", true))
		require.Len(t, r.calls, 3)
		assert.Equal(t, "ls -la", r.calls[0].Input)
		assert.NotContains(t, args(r.calls[1]), "-p")
		assert.Equal(t, []string{"send-keys", "-t", "dev", "Enter"}, args(r.calls[2]))
	})

	t.Run("no enter pastes bracketed", func(t *testing.T) {
		g, r := newTestGateway(t, []string{"dev"})

		require.NoError(t, g.Type(context.Background(), "dev", "line1\nline2", false))
		require.Len(t, r.calls, 2)
		assert.Contains(t, args(r.calls[1]), "-p")
	})

	t.Run("failed paste skips enter", func(t *testing.T) {
		g, r := newTestGateway(t, []string{"dev"}, fakeResult{err: &tmux.CommandError{Message: "boom"}})

		err := g.Type(context.Background(), "dev", "ls", true)
		assert.ErrorIs(t, err, tmux.ErrCommandFailed)
		assert.Len(t, r.calls, 1)
	})
}

func TestParseDirection(t *testing.T) {
	d, err := ParseDirection("up")
	require.NoError(t, err)
	assert.Equal(t, Up, d)

	d, err = ParseDirection("down")
	require.NoError(t, err)
	assert.Equal(t, Down, d)

	_, err = ParseDirection("DOWN")
	assert.ErrorIs(t, err, ErrInvalidArgument)
}

func TestKind(t *testing.T) {
	tests := []struct {
		err  error
		want string
	}{
		{nil, ""},
		{&UnauthorizedError{Session: "x"}, "unauthorized_session"},
		{&InvalidArgumentError{Name: "amount"}, "invalid_argument"},
		{&tmux.BinaryNotFoundError{Binary: "tmux", Cause: errors.New("x")}, "binary_not_found"},
		{&tmux.CommandError{Message: "x"}, "command_failed"},
		{context.Canceled, "other"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, Kind(tt.err))
	}
}
