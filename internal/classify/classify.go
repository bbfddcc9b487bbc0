// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package classify maps free-text queries to route categories.
//
// Classification is two-pass: an enabled knowledge-domain keyword match is
// checked first by the router, then the generic category pass below. Both
// passes are total - any text gets a category, falling back to general.
package classify

import (
	"fmt"
	"strings"
)

// ============================================================================
// CATEGORY TYPE
// ============================================================================

// Category is the route category assigned to a query.
type Category int

const (
	// CategorySearch routes to the direct filesystem search.
	CategorySearch Category = iota
	// CategoryGreet is answered from the greeting template set, no backend.
	CategoryGreet
	// CategoryIntro is answered with the assistant introduction, no backend.
	CategoryIntro
	// CategoryCapabilities is answered with the capability listing, no backend.
	CategoryCapabilities
	// CategoryCommand routes to local inference (command help).
	CategoryCommand
	// CategoryCloud routes to the quota-limited provider chain.
	CategoryCloud
	// CategoryGeneral is the default, routed to local inference.
	CategoryGeneral
)

// String returns the human-readable name of the category.
func (c Category) String() string {
	switch c {
	case CategorySearch:
		return "search"
	case CategoryGreet:
		return "greet"
	case CategoryIntro:
		return "intro"
	case CategoryCapabilities:
		return "capabilities"
	case CategoryCommand:
		return "local-command"
	case CategoryCloud:
		return "cloud"
	case CategoryGeneral:
		return "general"
	default:
		return fmt.Sprintf("Category(%d)", c)
	}
}

// IsCanned returns true if the category is answered from a template set
// without any backend call.
func (c Category) IsCanned() bool {
	return c == CategoryGreet || c == CategoryIntro || c == CategoryCapabilities
}

// ============================================================================
// GENERIC CLASSIFICATION
// ============================================================================

// Classify assigns exactly one category to a query. Matching is
// case-insensitive substring containment, evaluated in fixed priority
// order so earlier categories win on overlap. Never fails - text that
// matches nothing is general.
func Classify(text string) Category {
	q := strings.ToLower(text)

	// File lookups
	if strings.Contains(q, "find") ||
		strings.Contains(q, "search") ||
		strings.Contains(q, "locate") ||
		strings.Contains(q, "where") {
		return CategorySearch
	}

	// Greetings
	if strings.Contains(q, "hello") ||
		strings.Contains(q, "hi") ||
		strings.Contains(q, "greetings") {
		return CategoryGreet
	}

	// Identity questions
	if strings.Contains(q, "who are you") ||
		strings.Contains(q, "what are you") {
		return CategoryIntro
	}

	// Capability questions
	if strings.Contains(q, "help") ||
		strings.Contains(q, "can you") {
		return CategoryCapabilities
	}

	// Command help stays local
	if strings.Contains(q, "command") ||
		strings.Contains(q, "how to run") ||
		strings.Contains(q, "apt") {
		return CategoryCommand
	}

	// Heavy reasoning goes to the cloud chain
	if strings.Contains(q, "write code") ||
		strings.Contains(q, "debug") ||
		strings.Contains(q, "explain why") ||
		strings.Contains(q, "compare") {
		return CategoryCloud
	}

	return CategoryGeneral
}

// ============================================================================
// DOMAIN PASS
// ============================================================================

// Domain identifies a selectable knowledge domain. Domain-scoped answers
// are generated locally and take precedence over generic classification.
type Domain string

const (
	DomainAcademic    Domain = "academic"
	DomainSysadmin    Domain = "sysadmin"
	DomainWriting     Domain = "writing"
	DomainTechSupport Domain = "techsupport"
	DomainResearch    Domain = "research"
)

// DomainOrder fixes the evaluation order of the domain pass. Keyword sets
// overlap (e.g. "study" is both academic and research), so first hit wins
// and the order is part of the contract.
var DomainOrder = []Domain{
	DomainAcademic,
	DomainSysadmin,
	DomainWriting,
	DomainTechSupport,
	DomainResearch,
}

// domainKeywords maps each domain to its trigger keyword set.
var domainKeywords = map[Domain][]string{
	DomainAcademic:    {"study", "learn", "homework", "college", "school", "quiz", "practice"},
	DomainSysadmin:    {"network", "cpu", "memory", "disk", "service", "system", "boot", "kernel", "process"},
	DomainWriting:     {"write", "document", "readme", "text", "grammar", "edit"},
	DomainTechSupport: {"help", "problem", "issue", "fix", "troubleshoot", "error"},
	DomainResearch:    {"learn", "research", "study", "tutorial", "guide", "find"},
}

// KnownDomain reports whether id names a defined domain.
func KnownDomain(id string) bool {
	_, ok := domainKeywords[Domain(id)]
	return ok
}

// MatchDomain returns the first enabled domain whose keyword set matches the
// text, in DomainOrder. Disabled domains never match, regardless of keywords.
func MatchDomain(text string, enabled []Domain) (Domain, bool) {
	if len(enabled) == 0 {
		return "", false
	}

	on := make(map[Domain]bool, len(enabled))
	for _, d := range enabled {
		on[d] = true
	}

	q := strings.ToLower(text)
	for _, d := range DomainOrder {
		if !on[d] {
			continue
		}
		for _, kw := range domainKeywords[d] {
			if strings.Contains(q, kw) {
				return d, true
			}
		}
	}
	return "", false
}
