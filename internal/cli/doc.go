// Package cli provides the terminal user interface components for kgctl.
//
// The package uses [Bubbletea] for building interactive terminal UIs and
// [Lipgloss] for styling. Components follow the standard Bubbletea
// Model-View-Update (MVU) architecture.
//
// The main component is the interactive menu shown when kgctl is invoked
// without arguments. Create it with [NewMainMenu], run it through
// tea.NewProgram, and read the selected action with GetChoice; the cmd
// package maps the action back onto the matching subcommand.
//
// # Styling
//
// Use Lipgloss for consistent styling across components. Common styles
// are defined as package-level variables for reuse.
//
// [Bubbletea]: https://github.com/charmbracelet/bubbletea
// [Lipgloss]: https://github.com/charmbracelet/lipgloss
package cli
