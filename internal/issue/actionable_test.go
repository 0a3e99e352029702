// SPDX-License-Identifier: MPL-2.0

package issue

import (
	"errors"
	"fmt"
	"strings"
	"testing"
)

func TestActionableError_Error(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		err      *ActionableError
		expected string
	}{
		{
			name:     "operation only",
			err:      &ActionableError{Operation: "list addons"},
			expected: "failed to list addons",
		},
		{
			name:     "operation with resource",
			err:      &ActionableError{Operation: "enable addon", Resource: "love2d"},
			expected: "failed to enable addon: love2d",
		},
		{
			name: "full context",
			err: &ActionableError{
				Operation: "read settings",
				Resource:  ".vscode/settings.json",
				Cause:     errors.New("unexpected token"),
			},
			expected: "failed to read settings: .vscode/settings.json: unexpected token",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if got := tt.err.Error(); got != tt.expected {
				t.Errorf("Error() = %q, want %q", got, tt.expected)
			}
		})
	}
}

func TestActionableError_ErrorsIs(t *testing.T) {
	t.Parallel()

	cause := errors.New("specific error")
	wrapped := WrapWithContext(cause, "remove addon", "busted")

	if !errors.Is(wrapped, cause) {
		t.Error("errors.Is should find the wrapped cause")
	}
	if WrapWithContext(nil, "remove addon", "busted") != nil {
		t.Error("WrapWithContext(nil) should return nil")
	}
}

func TestActionableError_Format(t *testing.T) {
	t.Parallel()

	inner := errors.New("exit status 1")
	err := &ActionableError{
		Operation:   "install addon",
		Resource:    "love2d",
		Suggestions: []string{"Check your network connection", "Run with -vvv"},
		Cause:       fmt.Errorf("luarocks install: %w", inner),
	}

	plain := err.Format(false)
	for _, want := range []string{"failed to install addon: love2d", "• Check your network connection", "• Run with -vvv"} {
		if !strings.Contains(plain, want) {
			t.Errorf("Format(false) missing %q:\n%s", want, plain)
		}
	}
	if strings.Contains(plain, "Error chain:") {
		t.Errorf("Format(false) should not include the error chain:\n%s", plain)
	}

	verbose := err.Format(true)
	for _, want := range []string{"Error chain:", "1. luarocks install: exit status 1", "2. exit status 1"} {
		if !strings.Contains(verbose, want) {
			t.Errorf("Format(true) missing %q:\n%s", want, verbose)
		}
	}
}

func TestErrorContext_Build(t *testing.T) {
	t.Parallel()

	t.Run("without operation", func(t *testing.T) {
		t.Parallel()
		ctx := NewErrorContext().WithResource("x")
		if ctx.Build() != nil {
			t.Error("Build() should return nil without an operation")
		}
		if ctx.BuildError() != nil {
			t.Error("BuildError() should return untyped nil without an operation")
		}
	})

	t.Run("all fields", func(t *testing.T) {
		t.Parallel()
		cause := errors.New("boom")
		ae := NewErrorContext().
			WithOperation("disable addon").
			WithResource("busted").
			WithSuggestion("one").
			WithSuggestions("two", "three").
			WithIssue(AddonNotInstalledId).
			Wrap(cause).
			Build()

		if ae.Operation != "disable addon" || ae.Resource != "busted" {
			t.Errorf("unexpected operation/resource: %+v", ae)
		}
		if len(ae.Suggestions) != 3 || !ae.HasSuggestions() {
			t.Errorf("Suggestions = %v, want 3", ae.Suggestions)
		}
		if ae.Issue != AddonNotInstalledId {
			t.Errorf("Issue = %d, want %d", ae.Issue, AddonNotInstalledId)
		}
		if !errors.Is(ae, cause) {
			t.Error("built error should wrap the cause")
		}
	})
}

func TestIssueOf(t *testing.T) {
	t.Parallel()

	linked := NewErrorContext().WithOperation("enable addon").WithIssue(AddonNotInstalledId).BuildError()
	outer := NewErrorContext().WithOperation("run command").Wrap(fmt.Errorf("wrapped: %w", linked)).BuildError()

	tests := []struct {
		name string
		err  error
		want Id
	}{
		{"nil", nil, 0},
		{"plain", errors.New("plain"), 0},
		{"direct", linked, AddonNotInstalledId},
		{"nested below unlinked", outer, AddonNotInstalledId},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if got := IssueOf(tt.err); got != tt.want {
				t.Errorf("IssueOf() = %d, want %d", got, tt.want)
			}
		})
	}
}
