package cmd

import (
	"bytes"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTruncateString(t *testing.T) {
	tests := []struct {
		in     string
		maxLen int
		want   string
	}{
		{"short", 10, "short"},
		{"exactly-10", 10, "exactly-10"},
		{"this is a longer string", 10, "this is..."},
		{"abc", 2, "ab"},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, truncateString(tt.in, tt.maxLen))
	}
}

// Every menu action must resolve to a runnable command; a menu entry
// pointing at nothing is a wiring bug.
func TestMenuActionsResolve(t *testing.T) {
	for choice, args := range menuActions {
		target, _, err := rootCmd.Find(args)
		require.NoError(t, err, "menu action %q", choice)
		assert.NotNil(t, target.RunE, "menu action %q resolves to a group, not a command", choice)
	}
}

// Commands that require file arguments must surface their usage error
// from the menu instead of running without input.
func TestDispatchMenuChoiceValidatesArgs(t *testing.T) {
	for _, choice := range []string{"build", "merge"} {
		err := dispatchMenuChoice(rootCmd, choice)
		require.Error(t, err, "menu action %q", choice)
		assert.Contains(t, err.Error(), "arg", "menu action %q", choice)
	}
}

func TestDispatchMenuChoiceUnknown(t *testing.T) {
	err := dispatchMenuChoice(rootCmd, "nonsense")
	require.ErrorContains(t, err, "unknown menu action")
}

// The launched application's exit status travels through cobra's error
// return and comes back out of a wrapped chain intact.
func TestExitErrorCarriesCode(t *testing.T) {
	err := fmt.Errorf("launch failed: %w", &exitError{code: 3})

	var exit *exitError

	require.True(t, errors.As(err, &exit))
	assert.Equal(t, 3, exit.code)
	assert.Equal(t, "exit status 3", exit.Error())
}

func TestNewTableRenders(t *testing.T) {
	var buf bytes.Buffer

	table := newTable(&buf, []string{"A", "B"})
	table.Append([]string{"1", "2"})
	table.Render()

	out := buf.String()
	assert.Contains(t, out, "A")
	assert.Contains(t, out, "1")
}
