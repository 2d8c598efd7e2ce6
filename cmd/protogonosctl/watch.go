package main

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"protogonos/internal/model"
)

var (
	watchTitleStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("62"))
	watchBestStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("42"))
	watchMeanStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("220"))
	watchWorstStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("203"))
)

// watchUpdateMsg carries one completed generation's diagnostics into the
// dashboard's event loop.
type watchUpdateMsg struct {
	diagnostics model.GenerationDiagnostics
	population  int
}

// watchDoneMsg signals the run goroutine has finished (successfully or
// not); the dashboard exits once it arrives.
type watchDoneMsg struct{ err error }

type watchModel struct {
	scenario string
	history  []model.GenerationDiagnostics
	err      error
	done     bool
}

func newWatchModel(scenario string) watchModel {
	return watchModel{scenario: scenario}
}

func (m watchModel) Init() tea.Cmd { return nil }

func (m watchModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case watchUpdateMsg:
		m.history = append(m.history, msg.diagnostics)
		return m, nil
	case watchDoneMsg:
		m.err = msg.err
		m.done = true
		return m, tea.Quit
	case tea.KeyMsg:
		if msg.String() == "ctrl+c" || msg.String() == "q" {
			return m, tea.Quit
		}
	}
	return m, nil
}

func (m watchModel) View() string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s\n", watchTitleStyle.Render(fmt.Sprintf("protogonosctl run — scenario %s", m.scenario)))
	if len(m.history) == 0 {
		b.WriteString("waiting for generation 0...\n")
		return b.String()
	}
	for _, d := range m.history {
		fmt.Fprintf(&b, "gen %3d  pop %3d  best %s  mean %s  worst %s\n",
			d.Generation, d.PopulationN,
			watchBestStyle.Render(fmt.Sprintf("%8.4f", d.BestScore)),
			watchMeanStyle.Render(fmt.Sprintf("%8.4f", d.MeanScore)),
			watchWorstStyle.Render(fmt.Sprintf("%8.4f", d.WorstScore)),
		)
	}
	if m.done {
		if m.err != nil {
			fmt.Fprintf(&b, "\nrun failed: %v\n", m.err)
		} else {
			b.WriteString("\nrun complete\n")
		}
	}
	return b.String()
}
