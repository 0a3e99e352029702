// SPDX-License-Identifier: MPL-2.0

package luarocks

import (
	"bytes"
	"context"
	"errors"
	"path/filepath"
	"slices"
	"strings"
	"testing"

	"github.com/charmbracelet/log"

	"github.com/llynx/llynx/internal/aggregate"
	"github.com/llynx/llynx/pkg/addon"
)

func newTestClient(t *testing.T, recorder *mockCommandRecorder, opts ...Option) *Client {
	t.Helper()
	opts = append([]Option{WithExecCommand(recorder.commandFunc(t)), WithWorkDir("/work")}, opts...)
	return New("luarocks", ".lls_addons", opts...)
}

func TestClient_Args(t *testing.T) {
	t.Parallel()

	c := New("luarocks", "tree", WithServer("https://example.org/m/addons"))

	tests := []struct {
		name string
		got  []string
		want []string
	}{
		{"list all", c.ListArgs("", ""), []string{"--tree", "tree", "list", "--porcelain"}},
		{"list filter", c.ListArgs("lfs", ""), []string{"--tree", "tree", "list", "--porcelain", "lfs"}},
		{"list version", c.ListArgs("lfs", "1.0-1"), []string{"--tree", "tree", "list", "--porcelain", "lfs", "1.0-1"}},
		{"list version without name", c.ListArgs("", "1.0-1"), []string{"--tree", "tree", "list", "--porcelain"}},
		{"search all", c.SearchArgs(""), []string{"--only-server", "https://example.org/m/addons", "search", "--porcelain", "--all"}},
		{"search filter", c.SearchArgs("love"), []string{"--only-server", "https://example.org/m/addons", "search", "--porcelain", "love"}},
		{"install", c.InstallArgs("busted", ""), []string{"--tree", "tree", "install", "busted"}},
		{"install version", c.InstallArgs("busted", "2.0-1"), []string{"--tree", "tree", "install", "busted", "2.0-1"}},
		{"remove", c.RemoveArgs("busted", ""), []string{"--tree", "tree", "remove", "busted"}},
		{"remove version", c.RemoveArgs("busted", "2.0-1"), []string{"--tree", "tree", "remove", "busted", "2.0-1"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if !slices.Equal(tt.got, tt.want) {
				t.Errorf("args = %v, want %v", tt.got, tt.want)
			}
		})
	}
}

func TestNew_Defaults(t *testing.T) {
	t.Parallel()

	c := New(DefaultBinary, ".lls_addons")
	if c.server != DefaultServer {
		t.Errorf("server = %q, want %q", c.server, DefaultServer)
	}
	if c.Tree() != ".lls_addons" {
		t.Errorf("Tree() = %q", c.Tree())
	}
	if c.execCommand == nil || c.workDir == nil || c.logger == nil {
		t.Error("New() left a collaborator unset")
	}
}

func TestClient_Installed(t *testing.T) {
	t.Parallel()

	rocks := filepath.Join("/work", ".lls_addons", "lib", "luarocks", "rocks-5.1")
	recorder := &mockCommandRecorder{
		stdout: "busted\t2.0-1\tinstalled\t" + rocks + "\n" +
			"lfs\t1.0-1\tinstalled\t/opt/rocks\n",
	}
	c := newTestClient(t, recorder)

	got, err := c.Installed(context.Background(), "")
	if err != nil {
		t.Fatalf("Installed() error = %v", err)
	}

	want := []addon.Addon{
		{Name: "busted", Version: "2.0-1", Location: filepath.Join(".lls_addons", "lib", "luarocks", "rocks-5.1", "busted", "2.0-1")},
		{Name: "lfs", Version: "1.0-1", Location: filepath.Join("/opt/rocks", "lfs", "1.0-1")},
	}
	if !slices.Equal(got, want) {
		t.Errorf("Installed() = %v, want %v", got, want)
	}
	recorder.assertArgs(t, []string{"--tree", ".lls_addons", "list", "--porcelain"})
}

func TestClient_Lookup(t *testing.T) {
	t.Parallel()

	recorder := &mockCommandRecorder{stdout: "busted\t2.0-1\tinstalled\t/work/rocks\n"}
	c := newTestClient(t, recorder)

	got, err := c.Lookup(context.Background(), "busted", "2.0-1")
	if err != nil {
		t.Fatalf("Lookup() error = %v", err)
	}
	if len(got) != 1 || got[0].Location != filepath.Join("rocks", "busted", "2.0-1") {
		t.Errorf("Lookup() = %v", got)
	}
	recorder.assertArgs(t, []string{"--tree", ".lls_addons", "list", "--porcelain", "busted", "2.0-1"})
}

func TestClient_Installed_Empty(t *testing.T) {
	t.Parallel()

	recorder := &mockCommandRecorder{}
	got, err := newTestClient(t, recorder).Installed(context.Background(), "nothing")
	if err != nil {
		t.Fatalf("Installed() error = %v", err)
	}
	if len(got) != 0 {
		t.Errorf("Installed() = %v, want empty", got)
	}
}

func TestClient_Installed_MalformedRecords(t *testing.T) {
	t.Parallel()

	t.Run("single", func(t *testing.T) {
		t.Parallel()

		recorder := &mockCommandRecorder{stdout: "busted\t2.0-1\tinstalled\t/r\nbroken\n"}
		_, err := newTestClient(t, recorder).Installed(context.Background(), "")

		var recErr *RecordError
		if !errors.As(err, &recErr) {
			t.Fatalf("error = %v, want *RecordError", err)
		}
		if recErr.Line != 2 {
			t.Errorf("Line = %d, want 2", recErr.Line)
		}
		if !errors.Is(err, ErrMalformedRecord) {
			t.Error("error does not wrap ErrMalformedRecord")
		}
	})

	t.Run("several", func(t *testing.T) {
		t.Parallel()

		recorder := &mockCommandRecorder{stdout: "one\ntwo\tfields\n"}
		_, err := newTestClient(t, recorder).Installed(context.Background(), "")

		if aggregate.Classify(err) != aggregate.KindComposite {
			t.Fatalf("error = %v, want composite", err)
		}
		if n := len(aggregate.Errors(err)); n != 2 {
			t.Errorf("len(Errors) = %d, want 2", n)
		}
	})
}

func TestClient_Online(t *testing.T) {
	t.Parallel()

	recorder := &mockCommandRecorder{
		stdout: "love2d\t11.4-1\trockspec\thttps://luarocks.org/m/lls-addons\n" +
			"love2d\t11.4-1\tsrc\thttps://luarocks.org/m/lls-addons\n" +
			"busted\t2.2.0-1\trockspec\thttps://luarocks.org/m/lls-addons\n",
	}
	c := newTestClient(t, recorder, WithServer("https://luarocks.org/m/lls-addons"))

	got, err := c.Online(context.Background(), "")
	if err != nil {
		t.Fatalf("Online() error = %v", err)
	}

	want := []addon.Addon{
		{Name: "love2d", Version: "11.4-1"},
		{Name: "busted", Version: "2.2.0-1"},
	}
	if !slices.Equal(got, want) {
		t.Errorf("Online() = %v, want %v", got, want)
	}
	for _, a := range got {
		if a.HasLocation() {
			t.Errorf("online addon %s has a location", a)
		}
	}
	recorder.assertArgs(t, []string{"--only-server", "https://luarocks.org/m/lls-addons", "search", "--porcelain", "--all"})
}

func TestClient_CommandFailure(t *testing.T) {
	t.Parallel()

	recorder := &mockCommandRecorder{exitCode: 1, stderr: "Error: tree is locked\n"}
	_, err := newTestClient(t, recorder).Installed(context.Background(), "")

	if !errors.Is(err, ErrFailed) {
		t.Fatalf("error = %v, want ErrFailed", err)
	}
	var cmdErr *CommandError
	if !errors.As(err, &cmdErr) {
		t.Fatalf("error = %v, want *CommandError", err)
	}
	if cmdErr.Stderr != "Error: tree is locked" {
		t.Errorf("Stderr = %q", cmdErr.Stderr)
	}
	if !strings.Contains(err.Error(), "list --porcelain") {
		t.Errorf("error should contain the arguments, got: %v", err)
	}
}

func TestClient_NotFound(t *testing.T) {
	t.Parallel()

	c := New(filepath.Join(t.TempDir(), "luarocks-missing"), ".lls_addons")
	_, err := c.Online(context.Background(), "")

	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("error = %v, want ErrNotFound", err)
	}
}

func TestClient_InstallStreamsOutput(t *testing.T) {
	t.Parallel()

	recorder := &mockCommandRecorder{stdout: "busted 2.0-1 is now installed\n", stderr: "warning\n"}
	var logs bytes.Buffer
	logger := log.NewWithOptions(&logs, log.Options{Level: log.InfoLevel})
	c := newTestClient(t, recorder, WithLogger(logger))

	var stdout, stderr bytes.Buffer
	if err := c.Install(context.Background(), "busted", "2.0-1", &stdout, &stderr); err != nil {
		t.Fatalf("Install() error = %v", err)
	}

	if stdout.String() != "busted 2.0-1 is now installed\n" {
		t.Errorf("stdout = %q", stdout.String())
	}
	if stderr.String() != "warning\n" {
		t.Errorf("stderr = %q", stderr.String())
	}
	if !strings.Contains(logs.String(), "executing") {
		t.Errorf("expected command to be logged, got %q", logs.String())
	}
	recorder.assertArgs(t, []string{"--tree", ".lls_addons", "install", "busted", "2.0-1"})
}

func TestClient_RemoveFailure(t *testing.T) {
	t.Parallel()

	recorder := &mockCommandRecorder{exitCode: 3}
	var stdout, stderr bytes.Buffer
	err := newTestClient(t, recorder).Remove(context.Background(), "busted", "", &stdout, &stderr)

	if !errors.Is(err, ErrFailed) {
		t.Fatalf("error = %v, want ErrFailed", err)
	}
	if !strings.Contains(err.Error(), "exit status 3") {
		t.Errorf("error should carry the exit status, got: %v", err)
	}
	recorder.assertArgs(t, []string{"--tree", ".lls_addons", "remove", "busted"})
}

func TestRelativeTo(t *testing.T) {
	t.Parallel()

	tests := []struct {
		dir, path, want string
	}{
		{"/work", "/work/a/b", filepath.Join("a", "b")},
		{"/work", "/workshop/a", "/workshop/a"},
		{"/work", "/opt/a", "/opt/a"},
		{"/work", "rel/a", "rel/a"},
		{"", "/work/a", "/work/a"},
	}

	for _, tt := range tests {
		if got := relativeTo(tt.dir, tt.path); got != tt.want {
			t.Errorf("relativeTo(%q, %q) = %q, want %q", tt.dir, tt.path, got, tt.want)
		}
	}
}
