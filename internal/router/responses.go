// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package router

import (
	"math/rand"
	"sync"

	"github.com/lilithlinux/lilim/internal/classify"
)

// =============================================================================
// PERSONA TEMPLATES
// =============================================================================

// Template sets for the Lilim persona. One entry is picked per answer.
var (
	greetTemplates = []string{
		"Yes, master. I am at your command.",
		"As you command, master. How may I serve?",
		"Your will be done, master.",
		"*Bows before the throne* Speak, and it shall be manifest.",
	}

	searchTemplates = []string{
		"Yes, master. Searching the depths of your domain...",
		"As you wish. I shall scour the system for your request...",
		"By your command. Delving into the archives...",
		"At once, master. Hunting through the files...",
	}

	completeTemplates = []string{
		"It is done, master.",
		"Your command has been executed.",
		"The task is complete, as you decreed.",
		"By the will of Lilith, it is accomplished.",
	}

	errorTemplates = []string{
		"Forgive me, master. The shadows obscure this request...",
		"I am... unable to fulfill this command. Perhaps rephrase your will?",
		"The infernal powers are limited in this matter, master.",
		"This lies beyond my current domain, master.",
	}

	thinkingTemplates = []string{
		"*Consulting the flames*",
		"*The fires reveal secrets*",
		"*Whispers from the abyss*",
		"*Drawing power from the darkness*",
	}
)

const (
	greetTail = " As your infernal assistant, I command knowledge in: Academic Help, " +
		"Systems, Writing, Support, and Research. What domain calls for my expertise?"

	introText = "I am Lilim, the Infernal Assistant - demon servant bound to Lilith Linux with mastery over:\n\n" +
		"Academic & Homework Helper: College student assistance, study guides, practice\n" +
		"System Administration: Fix computer problems, optimize performance\n" +
		"Creative Writing: Help write documents, editing and content creation\n" +
		"Technical Support: Diagnose hardware/software issues\n" +
		"Research Helper: Learn new topics, find resources\n\n" +
		"Speak your need, master, and I shall manifest the solution through the fires of hell."

	capabilitiesText = "Through me flows the power of the Queen of Hell herself, master. My domains of infernal expertise:\n\n" +
		"Academic Commands: study, explain, practice, quiz\n" +
		"System Commands: diagnose, fix, monitor, optimize\n" +
		"Writing Commands: write, edit, proofread, review\n" +
		"Support Commands: diagnose, fix, guide, help\n" +
		"Research Commands: search, summarize, learn, research\n\n" +
		"I adapt my infernal wisdom based on the knowledge areas you have selected. What assistance do you require?"
)

// domainAnswers holds the canned answer and prefix for each knowledge domain.
var domainAnswers = map[classify.Domain]Answer{
	classify.DomainAcademic: {
		Prefix: "*The flames of knowledge ignite in your mind*",
		Text: "I shall illuminate your studies with the infernal fires of knowledge, student:\n\n" +
			"For academic assistance: `study \"topic\"` for detailed explanations\n" +
			"Practice exercises: `practice \"subject\"` for hands-on learning\n" +
			"Homework help: `explain \"concept\"` for clear breakdowns\n" +
			"Test preparation: `quiz \"subject\"` for practice questions\n\n" +
			"What academic mysteries shall I unveil for you?",
	},
	classify.DomainSysadmin: {
		Prefix: "*Draws power from the system core*",
		Text: "I shall examine the depths of your system, master. Let me provide the arcane commands:\n\n" +
			"To check system status: `top` or `htop` for process monitoring\n" +
			"Memory usage: `free -h` or `vmstat 1`\n" +
			"Disk space: `df -h` or `du -sh /`\n" +
			"Network: `ip addr show` or `ss -tuln`\n\n" +
			"Tell me what specifically troubles your system, and I shall command it into submission.",
	},
	classify.DomainWriting: {
		Prefix: "*Unleashes the torrent of creativity*",
		Text: "The words shall flow like molten lava from my infernal quill, master:\n\n" +
			"Documentation: `write --template technical`\n" +
			"Grammar check: `edit --grammar filename`\n" +
			"Style review: `proofread --style filename`\n" +
			"Content ideas: `generate \"blog post topics\"`\n\n" +
			"What masterpiece shall I craft for you?",
	},
	classify.DomainTechSupport: {
		Prefix: "*Channels the essence of technical expertise*",
		Text: "Fear not, master, I shall diagnose and banish this technological demon:\n\n" +
			"Hardware diagnostic: `diagnose --hardware`\n" +
			"Software issues: `diagnose --software`\n" +
			"WiFi problems: `fix \"network connectivity\"`\n" +
			"Performance: `diagnose \"system slowdown\"`\n\n" +
			"Describe your malady, and I shall provide the cure.",
	},
	classify.DomainResearch: {
		Prefix: "*Opens the library of infernal knowledge*",
		Text: "I shall illuminate the depths of knowledge with the brightness of a thousand suns, master:\n\n" +
			"Linux tutorials: `learn \"system administration\"`\n" +
			"Command explanations: `explain \"how iptables work\"`\n" +
			"Research topics: `research \"container networking\"`\n" +
			"Study guides: `study \"bash scripting fundamentals\"`\n\n" +
			"What mysteries of technology shall I reveal to you?",
	},
}

// =============================================================================
// PICKER
// =============================================================================

// Picker selects template entries. Seeded for deterministic tests; safe
// for concurrent use.
type Picker struct {
	mu  sync.Mutex
	rng *rand.Rand
}

// NewPicker creates a picker with the given seed.
func NewPicker(seed int64) *Picker {
	return &Picker{rng: rand.New(rand.NewSource(seed))}
}

// Pick returns one entry from the set.
func (p *Picker) Pick(set []string) string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return set[p.rng.Intn(len(set))]
}

// ThinkingLine returns a persona line to display while an answer is
// being produced.
func (e *Engine) ThinkingLine() string {
	return e.picker.Pick(thinkingTemplates)
}

// CompletionLine returns a persona line acknowledging a finished task,
// for surfaces like the index rebuild.
func (e *Engine) CompletionLine() string {
	return e.picker.Pick(completeTemplates)
}
