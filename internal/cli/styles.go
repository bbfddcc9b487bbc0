// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package cli

import "github.com/charmbracelet/lipgloss"

var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("161")) // Lilith red

	headerStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("245")) // Light gray

	valueStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("255")) // White

	okStyle = lipgloss.NewStyle().
		Foreground(lipgloss.Color("42")) // Green

	warnStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("214")) // Orange

	errStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("196")) // Red

	prefixStyle = lipgloss.NewStyle().
			Italic(true).
			Foreground(lipgloss.Color("132")) // Muted magenta

	degradedStyle = lipgloss.NewStyle().
			Italic(true).
			Foreground(lipgloss.Color("214"))
)
