package cli

import (
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/require"
)

func TestMenuEnterSelectsAction(t *testing.T) {
	m := NewMainMenu()

	updated, _ := m.Update(tea.KeyMsg{Type: tea.KeyEnter})

	menu, ok := updated.(MainMenuModel)
	require.True(t, ok)
	require.Equal(t, "setup", menu.GetChoice())
}

func TestMenuQuitLeavesNoChoice(t *testing.T) {
	m := NewMainMenu()

	updated, _ := m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("q")})

	menu, ok := updated.(MainMenuModel)
	require.True(t, ok)
	require.Empty(t, menu.GetChoice())
	require.Equal(t, "Goodbye!\n", menu.View())
}

func TestItemDelegateRendersDescriptionForSelection(t *testing.T) {
	m := NewMainMenu()

	var b strings.Builder

	// Index 0 is the cursor position of a fresh menu.
	itemDelegate{}.Render(&b, m.list, 0, m.list.Items()[0])
	require.Contains(t, b.String(), "Set Up Environment")
	require.Contains(t, b.String(), "Create the kg conda environment")

	b.Reset()

	itemDelegate{}.Render(&b, m.list, 1, m.list.Items()[1])
	require.Contains(t, b.String(), "Launch Application")
	require.NotContains(t, b.String(), "Run the knowledge-graph app")
}
