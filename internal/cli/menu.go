package cli

import (
	"fmt"
	"io"

	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

var (
	titleStyle        = lipgloss.NewStyle().MarginLeft(2)
	itemStyle         = lipgloss.NewStyle().PaddingLeft(4)
	selectedItemStyle = lipgloss.NewStyle().PaddingLeft(2).Foreground(lipgloss.Color("170"))
	descriptionStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("244"))
	paginationStyle   = list.DefaultStyles().PaginationStyle.PaddingLeft(4)
	helpStyle         = list.DefaultStyles().HelpStyle.PaddingLeft(4).PaddingBottom(1)
)

type menuItem struct {
	title       string
	description string
	action      string
}

func (i menuItem) FilterValue() string { return i.title }

type itemDelegate struct{}

func (d itemDelegate) Height() int                             { return 1 }
func (d itemDelegate) Spacing() int                            { return 0 }
func (d itemDelegate) Update(_ tea.Msg, _ *list.Model) tea.Cmd { return nil }
// Render shows the plain title for unselected rows; the selected row
// gains a marker and its description.
func (d itemDelegate) Render(w io.Writer, m list.Model, index int, listItem list.Item) {
	i, ok := listItem.(menuItem)
	if !ok {
		return
	}

	if index != m.Index() {
		_, _ = fmt.Fprint(w, itemStyle.Render(i.title))

		return
	}

	_, _ = fmt.Fprint(w, selectedItemStyle.Render("> "+i.title)+"  "+descriptionStyle.Render(i.description))
}

type MainMenuModel struct {
	list     list.Model
	choice   string
	quitting bool
}

func (m MainMenuModel) Init() tea.Cmd {
	return nil
}

func (m MainMenuModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.list.SetWidth(msg.Width)

		return m, nil

	case tea.KeyMsg:
		switch keypress := msg.String(); keypress {
		case "ctrl+c", "q":
			m.quitting = true

			return m, tea.Quit

		case "enter":
			if i, ok := m.list.SelectedItem().(menuItem); ok {
				m.choice = i.action
			}

			return m, tea.Quit
		}
	}

	var cmd tea.Cmd

	m.list, cmd = m.list.Update(msg)

	return m, cmd
}

func (m MainMenuModel) View() string {
	if m.choice != "" {
		return ""
	}

	if m.quitting {
		return "Goodbye!\n"
	}

	return "\n" + m.list.View()
}

func (m MainMenuModel) GetChoice() string {
	return m.choice
}

func NewMainMenu() MainMenuModel {
	items := []list.Item{
		menuItem{title: "Set Up Environment", description: "Create the kg conda environment and install packages", action: "setup"},
		menuItem{title: "Launch Application", description: "Run the knowledge-graph app inside the environment", action: "run"},
		menuItem{title: "Doctor", description: "Diagnose the installation", action: "doctor"},
		menuItem{title: "Crawl PubMed", description: "Download literature matching the configured search", action: "crawl"},
		menuItem{title: "Process Files", description: "Run the extractor over crawl results", action: "process"},
		menuItem{title: "Build Graph", description: "Export visualizations and statistics", action: "build"},
		menuItem{title: "Merge Graphs", description: "Combine knowledge-graph files", action: "merge"},
		menuItem{title: "Status", description: "Show environment and run history", action: "status"},
		menuItem{title: "Configuration", description: "Show the configuration", action: "config"},
		menuItem{title: "Exit", description: "Exit kgctl", action: "exit"},
	}

	// Wide enough for the selected row's description; resized on the
	// first WindowSizeMsg anyway.
	const defaultWidth = 72

	l := list.New(items, itemDelegate{}, defaultWidth, 15)
	l.Title = "kgctl - Knowledge Graph Toolkit"
	l.SetShowStatusBar(false)
	l.SetFilteringEnabled(false)
	l.Styles.Title = titleStyle
	l.Styles.PaginationStyle = paginationStyle
	l.Styles.HelpStyle = helpStyle

	return MainMenuModel{list: l}
}
