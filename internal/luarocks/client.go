// SPDX-License-Identifier: MPL-2.0

package luarocks

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"strings"

	"github.com/charmbracelet/log"

	"github.com/llynx/llynx/pkg/addon"
)

const (
	// DefaultBinary is the LuaRocks executable looked up on PATH.
	DefaultBinary = "luarocks"
	// DefaultServer is the manifest that hosts Lua language server addons.
	DefaultServer = "https://luarocks.org/m/lls-addons"
)

var (
	// ErrNotFound is returned when the LuaRocks executable cannot be started.
	ErrNotFound = errors.New("luarocks executable not found")
	// ErrFailed is returned when LuaRocks exits with a non-zero status.
	ErrFailed = errors.New("luarocks command failed")
)

type (
	// ExecCommandFunc creates the exec.Cmd for a LuaRocks invocation.
	// Tests inject a helper process here.
	ExecCommandFunc func(ctx context.Context, name string, arg ...string) *exec.Cmd

	// Option configures a Client.
	Option func(*Client)

	// CommandError describes a failed LuaRocks invocation. It wraps
	// ErrNotFound or ErrFailed for errors.Is() compatibility.
	CommandError struct {
		Args   []string
		Stderr string
		Err    error
	}

	// Client runs LuaRocks against one rocks tree and one addon server.
	Client struct {
		binaryPath  string
		tree        string
		server      string
		execCommand ExecCommandFunc
		workDir     func() (string, error)
		logger      *log.Logger
	}
)

// Error implements the error interface.
func (e *CommandError) Error() string {
	msg := fmt.Sprintf("luarocks %s: %v", strings.Join(e.Args, " "), e.Err)
	if e.Stderr != "" {
		msg += ": " + e.Stderr
	}
	return msg
}

// Unwrap returns the underlying cause.
func (e *CommandError) Unwrap() error { return e.Err }

// WithServer sets the server searched for online addons.
func WithServer(server string) Option {
	return func(c *Client) {
		c.server = server
	}
}

// WithExecCommand sets a custom exec command function for testing.
func WithExecCommand(fn ExecCommandFunc) Option {
	return func(c *Client) {
		c.execCommand = fn
	}
}

// WithWorkDir sets the directory installed locations are made relative to.
func WithWorkDir(dir string) Option {
	return func(c *Client) {
		c.workDir = func() (string, error) { return dir, nil }
	}
}

// WithLogger sets the logger commands are reported to.
func WithLogger(logger *log.Logger) Option {
	return func(c *Client) {
		c.logger = logger
	}
}

// New creates a Client for the LuaRocks executable at binaryPath managing tree.
func New(binaryPath, tree string, opts ...Option) *Client {
	c := &Client{
		binaryPath:  binaryPath,
		tree:        tree,
		server:      DefaultServer,
		execCommand: exec.CommandContext,
		workDir:     os.Getwd,
		logger:      log.New(io.Discard),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Tree returns the rocks tree the client manages.
func (c *Client) Tree() string {
	return c.tree
}

// ListArgs builds the arguments that list installed rocks.
func (c *Client) ListArgs(filter, version string) []string {
	args := []string{"--tree", c.tree, "list", "--porcelain"}
	if filter != "" {
		args = append(args, filter)
		if version != "" {
			args = append(args, version)
		}
	}
	return args
}

// SearchArgs builds the arguments that search the addon server.
func (c *Client) SearchArgs(filter string) []string {
	if filter == "" {
		filter = "--all"
	}
	return []string{"--only-server", c.server, "search", "--porcelain", filter}
}

// InstallArgs builds the arguments that install a rock into the tree.
func (c *Client) InstallArgs(name, version string) []string {
	args := []string{"--tree", c.tree, "install", name}
	if version != "" {
		args = append(args, version)
	}
	return args
}

// RemoveArgs builds the arguments that remove a rock from the tree.
func (c *Client) RemoveArgs(name, version string) []string {
	args := []string{"--tree", c.tree, "remove", name}
	if version != "" {
		args = append(args, version)
	}
	return args
}

// output runs LuaRocks and returns its stdout.
func (c *Client) output(ctx context.Context, args []string) ([]byte, error) {
	var stdout, stderr bytes.Buffer
	if err := c.run(ctx, args, &stdout, &stderr); err != nil {
		var cmdErr *CommandError
		if errors.As(err, &cmdErr) {
			cmdErr.Stderr = strings.TrimSpace(stderr.String())
		}
		return nil, err
	}
	return stdout.Bytes(), nil
}

// run executes LuaRocks with its output attached to the given writers.
func (c *Client) run(ctx context.Context, args []string, stdout, stderr io.Writer) error {
	cmd := c.execCommand(ctx, c.binaryPath, args...)
	cmd.Stdout = stdout
	cmd.Stderr = stderr

	c.logger.Info("executing", "command", c.binaryPath+" "+strings.Join(args, " "))
	err := cmd.Run()
	if err == nil {
		return nil
	}

	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		return &CommandError{Args: args, Err: fmt.Errorf("%w: exit status %d", ErrFailed, exitErr.ExitCode())}
	}
	return &CommandError{Args: args, Err: fmt.Errorf("%w: %w", ErrNotFound, err)}
}

// Install installs name (optionally at version) into the tree, streaming
// LuaRocks output to stdout and stderr.
func (c *Client) Install(ctx context.Context, name, version string, stdout, stderr io.Writer) error {
	return c.run(ctx, c.InstallArgs(name, version), stdout, stderr)
}

// Remove removes name (optionally only version) from the tree, streaming
// LuaRocks output to stdout and stderr.
func (c *Client) Remove(ctx context.Context, name, version string, stdout, stderr io.Writer) error {
	return c.run(ctx, c.RemoveArgs(name, version), stdout, stderr)
}

// Installed lists the rocks installed in the tree whose name matches filter.
// Each addon's Location is its installation directory, relative to the
// working directory when it lies below it.
func (c *Client) Installed(ctx context.Context, filter string) ([]addon.Addon, error) {
	return c.Lookup(ctx, filter, "")
}

// Lookup lists installed rocks matching name and, when given, version.
func (c *Client) Lookup(ctx context.Context, name, version string) ([]addon.Addon, error) {
	out, err := c.output(ctx, c.ListArgs(name, version))
	if err != nil {
		return nil, err
	}

	cwd, err := c.workDir()
	if err != nil {
		return nil, fmt.Errorf("determine working directory: %w", err)
	}
	return parseInstalled(out, cwd)
}

// Online lists the addons on the server whose name matches filter.
func (c *Client) Online(ctx context.Context, filter string) ([]addon.Addon, error) {
	out, err := c.output(ctx, c.SearchArgs(filter))
	if err != nil {
		return nil, err
	}
	return parseOnline(out)
}
