// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package main

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/lilithlinux/lilim/internal/asset"
	"github.com/lilithlinux/lilim/internal/config"
)

// =============================================================================
// STYLES
// =============================================================================

var (
	brandPrimary = lipgloss.Color("#B91C1C") // Lilith red
	brandAccent  = lipgloss.Color("#10B981") // Emerald
	brandError   = lipgloss.Color("#EF4444") // Red
	textMuted    = lipgloss.Color("#6B7280") // Gray

	titleStyle = lipgloss.NewStyle().
			Foreground(brandPrimary).
			Bold(true).
			MarginBottom(1)

	successStyle = lipgloss.NewStyle().
			Foreground(brandAccent).
			Bold(true)

	errorStyle = lipgloss.NewStyle().
			Foreground(brandError).
			Bold(true)

	dimStyle = lipgloss.NewStyle().
			Foreground(textMuted)

	selectedStyle = lipgloss.NewStyle().
			Foreground(brandPrimary).
			Bold(true)

	unselectedStyle = lipgloss.NewStyle().
			Foreground(textMuted)

	boxStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(brandPrimary).
			Padding(1, 2)
)

const logo = `
    ██╗     ██╗██╗     ██╗███╗   ███╗
    ██║     ██║██║     ██║████╗ ████║
    ██║     ██║██║     ██║██╔████╔██║
    ██║     ██║██║     ██║██║╚██╔╝██║
    ███████╗██║███████╗██║██║ ╚═╝ ██║
    ╚══════╝╚═╝╚══════╝╚═╝╚═╝     ╚═╝
`

// =============================================================================
// SETUP MODEL
// =============================================================================

// Phase represents the current setup phase
type Phase int

const (
	PhaseSelect Phase = iota
	PhaseDownload
	PhaseComplete
)

// tickMsg drives download progress polling.
type tickMsg time.Time

// Setup is the main setup model
type Setup struct {
	phase    Phase
	cfg      *config.Config
	manager  *asset.Manager
	catalog  []asset.Spec
	selected int
	width    int

	spinner  spinner.Model
	progress progress.Model
	err      string
}

// NewSetup creates the setup model over the built-in catalog.
func NewSetup(cfg *config.Config) *Setup {
	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = lipgloss.NewStyle().Foreground(brandPrimary)

	p := progress.New(progress.WithDefaultGradient())

	catalog := asset.Catalog()
	selected := 0
	for i, spec := range catalog {
		if spec.Recommended {
			selected = i
		}
	}

	return &Setup{
		cfg:      cfg,
		manager:  asset.NewManager(catalog, asset.Config{StepPercent: cfg.Download.StepPercent, StepInterval: cfg.Download.StepInterval()}),
		catalog:  catalog,
		selected: selected,
		spinner:  s,
		progress: p,
	}
}

// Init starts the spinner.
func (m *Setup) Init() tea.Cmd {
	return m.spinner.Tick
}

func tick() tea.Cmd {
	return tea.Tick(100*time.Millisecond, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

// Update handles messages
func (m *Setup) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)

	case tea.WindowSizeMsg:
		m.width = msg.Width
		w := msg.Width - 20
		if w < 20 {
			w = 20
		}
		if w > 80 {
			w = 80
		}
		m.progress.Width = w
		return m, nil

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case progress.FrameMsg:
		pm, cmd := m.progress.Update(msg)
		m.progress = pm.(progress.Model)
		return m, cmd

	case tickMsg:
		if m.phase != PhaseDownload {
			return m, nil
		}
		st, ok := m.manager.Progress(m.catalog[m.selected].ID)
		if !ok {
			m.err = "asset vanished from the catalog"
			return m, nil
		}
		cmd := m.progress.SetPercent(float64(st.Progress) / 100)
		if st.State == asset.StateInstalled {
			return m, tea.Batch(cmd, m.finish())
		}
		return m, tea.Batch(cmd, tick())

	case finishMsg:
		return m.handleFinish(msg)
	}

	return m, nil
}

// finishMsg signals config was written after install.
type finishMsg struct{ err error }

func (m *Setup) finish() tea.Cmd {
	return func() tea.Msg {
		m.cfg.Assets.Active = m.catalog[m.selected].ID
		dir, err := config.Dir()
		if err == nil {
			err = m.cfg.SaveTOML(dir)
		}
		return finishMsg{err: err}
	}
}

func (m *Setup) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "ctrl+c", "q":
		return m, tea.Quit

	case "up", "k":
		if m.phase == PhaseSelect && m.selected > 0 {
			m.selected--
		}
		return m, nil

	case "down", "j":
		if m.phase == PhaseSelect && m.selected < len(m.catalog)-1 {
			m.selected++
		}
		return m, nil

	case "enter", " ":
		switch m.phase {
		case PhaseSelect:
			m.phase = PhaseDownload
			if err := m.manager.RequestDownload(m.catalog[m.selected].ID); err != nil {
				m.err = err.Error()
				return m, nil
			}
			return m, tick()
		case PhaseComplete:
			return m, tea.Quit
		}
	}
	return m, nil
}

func (m *Setup) handleFinish(msg finishMsg) (tea.Model, tea.Cmd) {
	if msg.err != nil {
		m.err = msg.err.Error()
	}
	m.phase = PhaseComplete
	return m, nil
}

// =============================================================================
// VIEW
// =============================================================================

// View renders the current phase.
func (m *Setup) View() string {
	var b strings.Builder
	b.WriteString(titleStyle.Render(logo))
	b.WriteString("\n")

	switch m.phase {
	case PhaseSelect:
		b.WriteString(titleStyle.Render("Choose a local model"))
		b.WriteString("\n\n")
		for i, spec := range m.catalog {
			line := fmt.Sprintf("%s  %s RAM, %s download",
				spec.Name, humanBytes(spec.RAMUsageBytes), humanBytes(spec.DownloadSizeBytes))
			if spec.Recommended {
				line += "  (recommended)"
			}
			if i == m.selected {
				b.WriteString(selectedStyle.Render("> " + line))
			} else {
				b.WriteString(unselectedStyle.Render("  " + line))
			}
			b.WriteString("\n")
		}
		b.WriteString("\n")
		b.WriteString(dimStyle.Render("up/down to choose, enter to download, q to quit"))

	case PhaseDownload:
		spec := m.catalog[m.selected]
		b.WriteString(m.spinner.View())
		b.WriteString(fmt.Sprintf(" Downloading %s (%s)...\n\n", spec.Name, humanBytes(spec.DownloadSizeBytes)))
		b.WriteString(m.progress.View())
		b.WriteString("\n")

	case PhaseComplete:
		if m.err != "" {
			b.WriteString(errorStyle.Render("Setup failed: " + m.err))
		} else {
			spec := m.catalog[m.selected]
			b.WriteString(successStyle.Render(fmt.Sprintf("%s installed and set active.", spec.Name)))
			b.WriteString("\n\n")
			b.WriteString(dimStyle.Render("Run `lilim chat` to start talking."))
		}
		b.WriteString("\n\n")
		b.WriteString(dimStyle.Render("enter to exit"))
	}

	if m.err != "" && m.phase != PhaseComplete {
		b.WriteString("\n\n")
		b.WriteString(errorStyle.Render(m.err))
	}

	return boxStyle.Render(b.String())
}

func humanBytes(n int64) string {
	if n >= 1_000_000_000 {
		return fmt.Sprintf("%.1fGB", float64(n)/1e9)
	}
	return fmt.Sprintf("%dMB", n/1_000_000)
}
