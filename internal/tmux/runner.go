// Package tmux runs tmux subcommands on behalf of the session gateway.
//
// A Runner executes exactly one tmux invocation per call and classifies
// every failure into one of two kinds: the binary could not be started
// (ErrBinaryNotFound) or tmux ran and exited non-zero (ErrCommandFailed).
// Two runners exist: LocalRunner talks to the default tmux server and
// SocketRunner routes every call through an explicit control socket.
package tmux

import (
	"bytes"
	"context"
	"fmt"
	"os/exec"
	"strings"
	"time"

	"github.com/steveyegge/shelluse/internal/debug"
	"github.com/steveyegge/shelluse/internal/telemetry"
)

// DefaultBinary is the tmux executable looked up on PATH when none is configured.
const DefaultBinary = "tmux"

// Request is a single tmux invocation: the subcommand argv and an optional
// payload fed to standard input.
type Request struct {
	Args []string

	// Input is written to tmux's stdin verbatim when HasInput is set.
	Input    string
	HasInput bool
}

// Command builds a Request without stdin.
func Command(args ...string) Request {
	return Request{Args: args}
}

// CommandWithInput builds a Request whose input is piped to stdin.
func CommandWithInput(input string, args ...string) Request {
	return Request{Args: args, Input: input, HasInput: true}
}

// Subcommand returns the tmux subcommand name, or "" for an empty request.
func (r Request) Subcommand() string {
	if len(r.Args) == 0 {
		return ""
	}
	return r.Args[0]
}

// Runner executes one tmux invocation and returns its captured stdout.
type Runner interface {
	Run(ctx context.Context, req Request) (string, error)
}

// LocalRunner invokes tmux directly against the default server.
type LocalRunner struct {
	bin string
}

// NewLocalRunner creates a runner for the given tmux binary.
// An empty bin means DefaultBinary.
func NewLocalRunner(bin string) *LocalRunner {
	if bin == "" {
		bin = DefaultBinary
	}
	return &LocalRunner{bin: bin}
}

// Binary returns the tmux executable this runner invokes.
func (r *LocalRunner) Binary() string { return r.bin }

// Run executes `tmux ARGS...`.
func (r *LocalRunner) Run(ctx context.Context, req Request) (string, error) {
	return execute(ctx, r.bin, nil, req)
}

// SocketRunner invokes tmux with -S so every command targets the server
// listening on a specific socket path (e.g. a host socket mounted into a
// container).
type SocketRunner struct {
	bin    string
	socket string
}

// NewSocketRunner creates a runner bound to socketPath.
// An empty bin means DefaultBinary.
func NewSocketRunner(socketPath, bin string) *SocketRunner {
	if bin == "" {
		bin = DefaultBinary
	}
	return &SocketRunner{bin: bin, socket: socketPath}
}

// Binary returns the tmux executable this runner invokes.
func (r *SocketRunner) Binary() string { return r.bin }

// Socket returns the control socket path.
func (r *SocketRunner) Socket() string { return r.socket }

// Run executes `tmux -S SOCKET ARGS...`.
func (r *SocketRunner) Run(ctx context.Context, req Request) (string, error) {
	// -S is a server flag and must precede the subcommand.
	return execute(ctx, r.bin, []string{"-S", r.socket}, req)
}

// execute is the single place a tmux child process is spawned. Both runners
// go through it so their success and failure semantics cannot drift.
func execute(ctx context.Context, bin string, prefix []string, req Request) (out string, err error) {
	if ctx == nil {
		ctx = context.Background()
	}
	allArgs := make([]string, 0, len(prefix)+len(req.Args))
	allArgs = append(allArgs, prefix...)
	allArgs = append(allArgs, req.Args...)

	start := time.Now()
	defer func() {
		telemetry.RecordInvocation(ctx, req.Subcommand(), time.Since(start), err)
	}()

	cmd := exec.CommandContext(ctx, bin, allArgs...)
	configureProcessGroup(cmd)

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	if req.HasInput {
		cmd.Stdin = strings.NewReader(req.Input)
	}

	if req.HasInput {
		debug.Log("tmux", "exec %s %s (stdin %d bytes)", bin, strings.Join(allArgs, " "), len(req.Input))
	} else {
		debug.Log("tmux", "exec %s %s", bin, strings.Join(allArgs, " "))
	}

	runErr := cmd.Run()
	if runErr != nil {
		err = translateError(ctx, bin, req.Args, runErr, stdout.String(), stderr.String())
		debug.Log("tmux", "%s failed after %s: %v", req.Subcommand(), time.Since(start).Round(time.Millisecond), err)
		return "", err
	}

	debug.Log("tmux", "%s ok (%d bytes out)", req.Subcommand(), stdout.Len())
	return stdout.String(), nil
}

// String renders a request for diagnostics. Stdin content is never included.
func (r Request) String() string {
	s := "tmux " + strings.Join(r.Args, " ")
	if r.HasInput {
		s += fmt.Sprintf(" <stdin %d bytes>", len(r.Input))
	}
	return s
}
