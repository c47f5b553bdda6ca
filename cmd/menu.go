package cmd

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/litkg/kgctl/internal/cli"
)

// menuActions maps a menu selection to the argument list of the command
// it stands for.
var menuActions = map[string][]string{
	"setup":   {"setup"},
	"run":     {"run"},
	"doctor":  {"doctor"},
	"crawl":   {"crawl", "pubmed"},
	"process": {"process"},
	"build":   {"graph", "build"},
	"merge":   {"graph", "merge"},
	"status":  {"status"},
	"config":  {"config", "show"},
}

// runMenu shows the interactive menu and dispatches the selection to the
// matching subcommand.
func runMenu(cmd *cobra.Command) error {
	model, err := tea.NewProgram(cli.NewMainMenu()).Run()
	if err != nil {
		return fmt.Errorf("failed to run menu: %w", err)
	}

	menu, ok := model.(cli.MainMenuModel)
	if !ok {
		return nil
	}

	choice := menu.GetChoice()
	if choice == "" || choice == "exit" {
		return nil
	}

	return dispatchMenuChoice(cmd.Root(), choice)
}

// dispatchMenuChoice resolves a menu selection against the command tree
// and runs it. The target's own argument validation applies, so commands
// that need a file argument fail with their usage hint instead of
// running without input.
func dispatchMenuChoice(root *cobra.Command, choice string) error {
	args, ok := menuActions[choice]
	if !ok {
		return fmt.Errorf("unknown menu action %q", choice)
	}

	target, targetArgs, err := root.Find(args)
	if err != nil {
		return err
	}

	if target.RunE == nil {
		return nil
	}

	if target.Args != nil {
		if err := target.Args(target, targetArgs); err != nil {
			return fmt.Errorf("%s: %w (see `kgctl %s --help`)", choice, err, strings.Join(args, " "))
		}
	}

	return target.RunE(target, targetArgs)
}
