// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package classify

import "testing"

func TestClassify(t *testing.T) {
	tests := []struct {
		name  string
		query string
		want  Category
	}{
		{"find keyword", "find my resume pdf", CategorySearch},
		{"search keyword", "search for config files", CategorySearch},
		{"locate keyword", "locate the kernel logs", CategorySearch},
		{"where keyword", "where is my thesis draft", CategorySearch},
		{"hello", "hello", CategoryGreet},
		{"hi embedded", "hi there", CategoryGreet},
		{"greetings", "greetings, assistant", CategoryGreet},
		{"who are you", "who are you?", CategoryIntro},
		{"what are you", "what are you exactly", CategoryIntro},
		{"help", "help me out", CategoryCapabilities},
		{"can you", "can you summarize documents", CategoryCapabilities},
		{"command", "what command lists open ports", CategoryCommand},
		{"how to run", "how to run a backup", CategoryCommand},
		{"apt", "apt install something", CategoryCommand},
		{"write code", "write code for a parser", CategoryCloud},
		{"debug", "debug my stack trace", CategoryCloud},
		{"explain why", "explain why it crashes", CategoryCloud},
		{"compare", "compare ext4 and btrfs", CategoryCloud},
		{"general fallback", "tell me about the weather", CategoryGeneral},
		{"empty string", "", CategoryGeneral},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Classify(tt.query)
			if got != tt.want {
				t.Errorf("Classify(%q) = %v, want %v", tt.query, got, tt.want)
			}
		})
	}
}

func TestClassifyPriority(t *testing.T) {
	// "find" outranks "help", search outranks capabilities.
	if got := Classify("help me find my notes"); got != CategorySearch {
		t.Errorf("overlapping query = %v, want %v", got, CategorySearch)
	}
	// "hello" outranks "can you".
	if got := Classify("hello, can you help"); got != CategoryGreet {
		t.Errorf("overlapping query = %v, want %v", got, CategoryGreet)
	}
	// Substring matching is deliberate: "history" contains "hi", so greet
	// wins over the later cloud "debug" keyword.
	if got := Classify("show history of debug sessions"); got != CategoryGreet {
		t.Errorf("hi-substring query = %v, want %v", got, CategoryGreet)
	}
}

func TestClassifyCaseInsensitive(t *testing.T) {
	if got := Classify("FIND My Resume"); got != CategorySearch {
		t.Errorf("uppercase query = %v, want %v", got, CategorySearch)
	}
	if got := Classify("HELLO"); got != CategoryGreet {
		t.Errorf("uppercase greet = %v, want %v", got, CategoryGreet)
	}
}

func TestCategoryString(t *testing.T) {
	tests := []struct {
		cat  Category
		want string
	}{
		{CategorySearch, "search"},
		{CategoryGreet, "greet"},
		{CategoryIntro, "intro"},
		{CategoryCapabilities, "capabilities"},
		{CategoryCommand, "local-command"},
		{CategoryCloud, "cloud"},
		{CategoryGeneral, "general"},
		{Category(99), "Category(99)"},
	}
	for _, tt := range tests {
		if got := tt.cat.String(); got != tt.want {
			t.Errorf("Category(%d).String() = %q, want %q", int(tt.cat), got, tt.want)
		}
	}
}

func TestIsCanned(t *testing.T) {
	canned := []Category{CategoryGreet, CategoryIntro, CategoryCapabilities}
	for _, c := range canned {
		if !c.IsCanned() {
			t.Errorf("%v.IsCanned() = false, want true", c)
		}
	}
	notCanned := []Category{CategorySearch, CategoryCommand, CategoryCloud, CategoryGeneral}
	for _, c := range notCanned {
		if c.IsCanned() {
			t.Errorf("%v.IsCanned() = true, want false", c)
		}
	}
}

func TestMatchDomain(t *testing.T) {
	all := DomainOrder

	tests := []struct {
		name    string
		query   string
		enabled []Domain
		want    Domain
		wantOK  bool
	}{
		{"academic study", "help me study for my exam", all, DomainAcademic, true},
		{"sysadmin cpu", "why is cpu usage so high", all, DomainSysadmin, true},
		{"writing readme", "improve this readme", all, DomainWriting, true},
		{"techsupport fix", "fix my broken audio", all, DomainTechSupport, true},
		{"research tutorial", "tutorial on containers", all, DomainResearch, true},
		{"no match", "good morning", all, "", false},
		{"no domains enabled", "study session", nil, "", false},
		{"academic disabled falls to research", "study session", []Domain{DomainResearch}, DomainResearch, true},
		{"disabled never matches", "kernel panic on boot", []Domain{DomainWriting}, "", false},
		{"order academic before research", "learn about photosynthesis", all, DomainAcademic, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := MatchDomain(tt.query, tt.enabled)
			if got != tt.want || ok != tt.wantOK {
				t.Errorf("MatchDomain(%q, %v) = (%q, %v), want (%q, %v)",
					tt.query, tt.enabled, got, ok, tt.want, tt.wantOK)
			}
		})
	}
}

func TestKnownDomain(t *testing.T) {
	for _, d := range DomainOrder {
		if !KnownDomain(string(d)) {
			t.Errorf("KnownDomain(%q) = false, want true", d)
		}
	}
	if KnownDomain("cooking") {
		t.Error("KnownDomain(\"cooking\") = true, want false")
	}
}
