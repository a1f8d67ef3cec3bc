package main

import (
	"fmt"
	"log"
	"os"
	"strings"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/table"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/dd0wney/cluso-cascade/pkg/export"
	"github.com/dd0wney/cluso-cascade/pkg/trajectory"
)

// Styles
var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#FF00FF")).
			MarginLeft(2).
			MarginTop(1)

	headerStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#00FFFF")).
			BorderStyle(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("#00FFFF")).
			Padding(0, 1)

	activeTabStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#FFFFFF")).
			Background(lipgloss.Color("#FF00FF")).
			Padding(0, 2)

	inactiveTabStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("#666666")).
				Padding(0, 2)

	contentStyle = lipgloss.NewStyle().
			MarginLeft(2).
			MarginTop(1)

	statsBoxStyle = lipgloss.NewStyle().
			BorderStyle(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("#00FF00")).
			Padding(1, 2).
			MarginRight(2)

	criticalStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FF0000")).
			Bold(true)

	warnStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FFFF00"))

	helpStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#888888")).
			MarginTop(1).
			MarginLeft(2)
)

type view int

const (
	overviewView view = iota
	pointsView
	decisionsView
	branchesView
)

const viewCount = 4

type keyMap struct {
	Tab      key.Binding
	ShiftTab key.Binding
	Up       key.Binding
	Down     key.Binding
	Quit     key.Binding
}

var keys = keyMap{
	Tab: key.NewBinding(
		key.WithKeys("tab"),
		key.WithHelp("tab", "next view"),
	),
	ShiftTab: key.NewBinding(
		key.WithKeys("shift+tab"),
		key.WithHelp("shift+tab", "prev view"),
	),
	Up: key.NewBinding(
		key.WithKeys("up", "k"),
		key.WithHelp("↑/k", "up"),
	),
	Down: key.NewBinding(
		key.WithKeys("down", "j"),
		key.WithHelp("↓/j", "down"),
	),
	Quit: key.NewBinding(
		key.WithKeys("q", "ctrl+c"),
		key.WithHelp("q", "quit"),
	),
}

func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Tab, k.Up, k.Down, k.Quit}
}

func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Tab, k.ShiftTab},
		{k.Up, k.Down},
		{k.Quit},
	}
}

type model struct {
	traj        *trajectory.Trajectory
	source      string
	currentView view
	pointTable  table.Model
	help        help.Model
	keys        keyMap
	width       int
	height      int
}

func initialModel(traj *trajectory.Trajectory, source string) model {
	columns := []table.Column{
		{Title: "t (years)", Width: 10},
		{Title: "Primary", Width: 9},
		{Title: "Bounds", Width: 16},
		{Title: "Stability", Width: 10},
		{Title: "Cohesion", Width: 9},
		{Title: "Wave", Width: 5},
		{Title: "Marks", Width: 6},
	}

	rows := make([]table.Row, len(traj.Baseline))
	for i, p := range traj.Baseline {
		marks := ""
		if p.DecisionRef != nil {
			marks += "◆"
		}
		if p.InflectionRef != nil {
			marks += "⚡"
		}
		wave := "-"
		if p.WaveNumber >= 0 {
			wave = fmt.Sprintf("%d", p.WaveNumber)
		}
		rows[i] = table.Row{
			fmt.Sprintf("%.2f", p.Timestamp),
			fmt.Sprintf("%.3f", p.State.PrimaryMetric),
			fmt.Sprintf("[%.3f, %.3f]", p.Bounds.Lower, p.Bounds.Upper),
			fmt.Sprintf("%.3f", p.State.StabilityIndex),
			fmt.Sprintf("%.3f", p.State.SocialCohesion),
			wave,
			marks,
		}
	}

	t := table.New(
		table.WithColumns(columns),
		table.WithRows(rows),
		table.WithFocused(true),
		table.WithHeight(14),
	)

	s := table.DefaultStyles()
	s.Header = s.Header.
		BorderStyle(lipgloss.NormalBorder()).
		BorderForeground(lipgloss.Color("#00FFFF")).
		BorderBottom(true).
		Bold(true)
	s.Selected = s.Selected.
		Foreground(lipgloss.Color("#FFFFFF")).
		Background(lipgloss.Color("#FF00FF")).
		Bold(false)
	t.SetStyles(s)

	return model{
		traj:       traj,
		source:     source,
		pointTable: t,
		help:       help.New(),
		keys:       keys,
	}
}

func (m model) Init() tea.Cmd {
	return nil
}

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.help.Width = msg.Width

	case tea.KeyMsg:
		switch {
		case key.Matches(msg, m.keys.Quit):
			return m, tea.Quit

		case key.Matches(msg, m.keys.Tab):
			m.currentView = (m.currentView + 1) % viewCount

		case key.Matches(msg, m.keys.ShiftTab):
			if m.currentView == 0 {
				m.currentView = viewCount - 1
			} else {
				m.currentView--
			}
		}
	}

	if m.currentView == pointsView {
		m.pointTable, cmd = m.pointTable.Update(msg)
	}
	return m, cmd
}

func (m model) View() string {
	if m.width == 0 {
		return "Initializing..."
	}

	var s strings.Builder

	s.WriteString(titleStyle.Render("🔮 What-If Trajectory Browser"))
	s.WriteString("\n\n")
	s.WriteString(m.renderTabs())
	s.WriteString("\n\n")

	switch m.currentView {
	case overviewView:
		s.WriteString(m.renderOverview())
	case pointsView:
		s.WriteString(m.renderPoints())
	case decisionsView:
		s.WriteString(m.renderDecisions())
	case branchesView:
		s.WriteString(m.renderBranches())
	}

	s.WriteString("\n\n")
	s.WriteString(helpStyle.Render(m.help.ShortHelpView(m.keys.ShortHelp())))

	return s.String()
}

func (m model) renderTabs() string {
	tabs := []string{"Overview", "Points", "Decisions", "Branches"}
	var renderedTabs []string

	for i, tab := range tabs {
		if view(i) == m.currentView {
			renderedTabs = append(renderedTabs, activeTabStyle.Render(tab))
		} else {
			renderedTabs = append(renderedTabs, inactiveTabStyle.Render(tab))
		}
	}

	return lipgloss.JoinHorizontal(lipgloss.Top, renderedTabs...)
}

func (m model) renderOverview() string {
	meta := m.traj.Metadata
	first := m.traj.Baseline[0].State
	last := m.traj.Baseline[len(m.traj.Baseline)-1].State

	saturated := "no"
	if meta.Saturated {
		saturated = criticalStyle.Render("yes")
	}
	domains := make([]string, len(meta.AffectedDomains))
	for i, d := range meta.AffectedDomains {
		domains[i] = string(d)
	}

	scenarioContent := fmt.Sprintf(`📋 Scenario
━━━━━━━━━━━━━━━
Breach:      %s
Horizon:     %.1f years (%s)
Points:      %d
Source:      %s

🌊 Cascade
━━━━━━━━━━━━━━━
Depth:       %d waves
Impact:      %.4f
Saturated:   %s
Domains:     %s
Loops:       %d`,
		meta.Breach.NodeID,
		m.traj.TimeHorizon, m.traj.Granularity,
		len(m.traj.Baseline),
		m.source,
		meta.CascadeDepth,
		meta.CumulativeImpact,
		saturated,
		strings.Join(domains, ", "),
		meta.FeedbackLoops,
	)

	stateContent := fmt.Sprintf(`📉 State drift
━━━━━━━━━━━━━━━
Primary:     %.3f → %.3f
%s
Stability:   %.3f → %.3f
%s
Cohesion:    %.3f → %.3f
%s

Annotations
━━━━━━━━━━━━━━━
Decisions:   %d
Inflections: %d
Branches:    %d`,
		first.PrimaryMetric, last.PrimaryMetric, bar(last.PrimaryMetric, 24),
		first.StabilityIndex, last.StabilityIndex, bar(last.StabilityIndex, 24),
		first.SocialCohesion, last.SocialCohesion, bar(last.SocialCohesion, 24),
		len(m.traj.DecisionPoints),
		len(m.traj.InflectionPoints),
		len(m.traj.Branches),
	)

	return contentStyle.Render(lipgloss.JoinHorizontal(lipgloss.Top,
		statsBoxStyle.Render(scenarioContent),
		statsBoxStyle.Render(stateContent),
	))
}

func (m model) renderPoints() string {
	var s strings.Builder

	s.WriteString(headerStyle.Render("Trajectory Points"))
	s.WriteString("\n\n")
	s.WriteString(m.pointTable.View())
	s.WriteString("\n\n")
	s.WriteString(helpStyle.Render("◆ decision point • ⚡ inflection point"))

	return contentStyle.Render(s.String())
}

func (m model) renderDecisions() string {
	var s strings.Builder

	s.WriteString(headerStyle.Render("Decision Points"))
	s.WriteString("\n\n")

	if len(m.traj.DecisionPoints) == 0 {
		s.WriteString(helpStyle.Render("No decision points above the criticality floor"))
	}
	for i, dp := range m.traj.DecisionPoints {
		header := fmt.Sprintf("%d. t=%.2fy  criticality %.2f %s  window %.0f months",
			i+1, dp.Timestamp, dp.Criticality, bar(dp.Criticality, 20), dp.InterventionWindow)
		if dp.Criticality >= 0.7 {
			header = criticalStyle.Render(header)
		}
		s.WriteString(header)
		s.WriteString("\n")
		s.WriteString(fmt.Sprintf("   %s\n", dp.RecommendedAction))
		for _, p := range dp.Pathways {
			s.WriteString(fmt.Sprintf("   • %-26s p=%.2f  impact ×%.2f  (%s, %s)\n",
				p.Action, p.Probability, p.ImpactModifier, p.CostTier, p.Timeframe))
		}
		s.WriteString("\n")
	}

	if len(m.traj.InflectionPoints) > 0 {
		s.WriteString(headerStyle.Render("Inflection Points"))
		s.WriteString("\n\n")
		for _, ip := range m.traj.InflectionPoints {
			line := fmt.Sprintf("t=%.2fy  %-19s %s", ip.Timestamp, ip.Type, ip.TriggeringCondition)
			if ip.Type == trajectory.InflectionThresholdCrossing {
				line = warnStyle.Render(line)
			}
			s.WriteString(line)
			s.WriteString("\n")
		}
	}

	return contentStyle.Render(s.String())
}

func (m model) renderBranches() string {
	var s strings.Builder

	s.WriteString(headerStyle.Render("Alternative Futures"))
	s.WriteString("\n\n")

	if len(m.traj.Branches) == 0 {
		s.WriteString(helpStyle.Render("No branches in this document\n\nRun the analysis with decision points to fork alternatives"))
		return contentStyle.Render(s.String())
	}

	baselineEnd := m.traj.Baseline[len(m.traj.Baseline)-1].State.PrimaryMetric
	s.WriteString(fmt.Sprintf("%-30s %.3f %s\n\n", "baseline", baselineEnd, bar(baselineEnd, 30)))

	for _, b := range m.traj.Branches {
		end := b.Points[len(b.Points)-1].State.PrimaryMetric
		s.WriteString(fmt.Sprintf("%-30s %.3f %s\n", b.Action, end, bar(end, 30)))
		s.WriteString(helpStyle.Render(fmt.Sprintf("   fork t=%.2fy  p=%.2f  Δ%+.3f\n",
			m.traj.Baseline[b.ForkIndex].Timestamp, b.Probability, end-baselineEnd)))
		s.WriteString("\n")
	}

	return contentStyle.Render(s.String())
}

// bar renders a horizontal gauge for a value in [0,1].
func bar(v float64, width int) string {
	if v < 0 {
		v = 0
	}
	if v > 1 {
		v = 1
	}
	filled := int(v * float64(width))
	return strings.Repeat("█", filled) + strings.Repeat("░", width-filled)
}

func main() {
	path := "./out/trajectory.json"
	if len(os.Args) > 1 {
		path = os.Args[1]
	}

	data, err := os.ReadFile(path)
	if err != nil {
		log.Fatalf("Failed to read trajectory document: %v", err)
	}
	traj, err := export.UnmarshalTrajectory(data)
	if err != nil {
		log.Fatalf("Failed to parse trajectory document: %v", err)
	}
	if len(traj.Baseline) == 0 {
		log.Fatalf("Trajectory document has no baseline points")
	}

	p := tea.NewProgram(initialModel(traj, path), tea.WithAltScreen())
	if _, err := p.Run(); err != nil {
		log.Fatalf("Error running program: %v", err)
	}
}
