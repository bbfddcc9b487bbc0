// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package cli

import (
	"fmt"
	"os"
	"strings"

	"github.com/charmbracelet/glamour"
	"github.com/muesli/termenv"
	"golang.org/x/term"

	"github.com/lilithlinux/lilim/internal/chat"
)

// isTTY reports whether stdout is an interactive terminal.
func isTTY() bool {
	return term.IsTerminal(int(os.Stdout.Fd()))
}

// newRenderer builds a markdown renderer matched to the terminal
// background, or nil when output is piped.
func newRenderer() *glamour.TermRenderer {
	if !isTTY() {
		return nil
	}

	style := glamour.WithStandardStyle("light")
	if termenv.HasDarkBackground() {
		style = glamour.WithStandardStyle("dark")
	}

	r, err := glamour.NewTermRenderer(style, glamour.WithWordWrap(100))
	if err != nil {
		return nil
	}
	return r
}

// printAnswer writes one assistant message to stdout.
func printAnswer(r *glamour.TermRenderer, msg chat.Message) {
	if msg.Prefix != "" {
		fmt.Println(prefixStyle.Render(msg.Prefix))
	}
	if msg.Degraded {
		fmt.Println(degradedStyle.Render("(cloud unavailable, answering locally)"))
	}

	if r != nil {
		if out, err := r.Render(msg.Content); err == nil {
			fmt.Print(out)
			return
		}
	}
	fmt.Println(strings.TrimRight(msg.Content, "\n"))
}
