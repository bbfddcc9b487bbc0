// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package router

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/lilithlinux/lilim/internal/classify"
	"github.com/lilithlinux/lilim/internal/index"
	"github.com/lilithlinux/lilim/internal/quota"
	"github.com/lilithlinux/lilim/internal/util"
)

// SearchResultLimit caps how many paths a file search answer lists.
const SearchResultLimit = 20

// Config assembles an Engine. Providers must appear in the same order as
// the ledger's chain.
type Config struct {
	Domains   []classify.Domain
	Local     LocalInference
	Providers []CloudProvider
	Ledger    *quota.Ledger
	Search    FileSearch

	// SearchTimeout bounds file searches (default 5s).
	SearchTimeout time.Duration
	// InferTimeout bounds local and cloud inference (default 30s).
	InferTimeout time.Duration
	// Seed drives template selection. Zero uses the current time.
	Seed int64
}

// Engine routes queries to the backend that should answer them. Safe for
// concurrent use; quota decisions are serialized by the ledger.
type Engine struct {
	domains       []classify.Domain
	local         LocalInference
	providers     map[string]CloudProvider
	ledger        *quota.Ledger
	search        FileSearch
	searchTimeout time.Duration
	inferTimeout  time.Duration
	picker        *Picker
}

// NewEngine builds an engine from the config, filling zero timeouts
// with defaults.
func NewEngine(cfg Config) *Engine {
	if cfg.SearchTimeout == 0 {
		cfg.SearchTimeout = 5 * time.Second
	}
	if cfg.InferTimeout == 0 {
		cfg.InferTimeout = 30 * time.Second
	}
	if cfg.Seed == 0 {
		cfg.Seed = time.Now().UnixNano()
	}

	providers := make(map[string]CloudProvider, len(cfg.Providers))
	for _, p := range cfg.Providers {
		providers[p.Name()] = p
	}

	return &Engine{
		domains:       cfg.Domains,
		local:         cfg.Local,
		providers:     providers,
		ledger:        cfg.Ledger,
		search:        cfg.Search,
		searchTimeout: cfg.SearchTimeout,
		inferTimeout:  cfg.InferTimeout,
		picker:        NewPicker(cfg.Seed),
	}
}

// Route answers one query. It never returns an error for backend failures;
// those degrade to a fallback answer instead, so the caller always has
// something to show.
func (e *Engine) Route(ctx context.Context, text string) Answer {
	// Enabled knowledge domains outrank generic classification.
	if d, ok := classify.MatchDomain(text, e.domains); ok {
		ans := domainAnswers[d]
		ans.Backend = BackendCanned
		log.Printf("ROUTING: %q -> domain %s (backend=%s)", util.TruncateForLog(text, 60), d, ans.Backend)
		return ans
	}

	category := classify.Classify(text)

	var ans Answer
	switch category {
	case classify.CategorySearch:
		ans = e.routeSearch(ctx, text)
	case classify.CategoryGreet:
		ans = Answer{
			Text:    e.picker.Pick(greetTemplates) + greetTail,
			Prefix:  "*The flames settle, ready to serve*",
			Backend: BackendCanned,
		}
	case classify.CategoryIntro:
		ans = Answer{
			Text:    introText,
			Prefix:  "*Manifests fully with complete knowledge*",
			Backend: BackendCanned,
		}
	case classify.CategoryCapabilities:
		ans = Answer{
			Text:    capabilitiesText,
			Prefix:  "*Demonstrates the fullness of infernal power*",
			Backend: BackendCanned,
		}
	case classify.CategoryCloud:
		ans = e.routeCloud(ctx, text)
	default:
		// Command help and general queries stay on the local model.
		ans = e.routeLocal(ctx, text)
	}

	log.Printf("ROUTING: %q -> %s (backend=%s degraded=%v)",
		util.TruncateForLog(text, 60), category, ans.Backend, ans.Degraded)
	return ans
}

// =============================================================================
// SEARCH ROUTE
// =============================================================================

// SearchTerms extracts the display terms from a search query: lowercase,
// with the words "find" and "search" removed and whitespace collapsed.
func SearchTerms(text string) string {
	q := strings.ToLower(text)
	q = strings.ReplaceAll(q, "find", "")
	q = strings.ReplaceAll(q, "search", "")
	return util.CollapseSpaces(q)
}

func (e *Engine) routeSearch(ctx context.Context, text string) Answer {
	terms := SearchTerms(text)
	if terms == "" {
		return Answer{
			Text:    "No files found. Try: sudo updatedb",
			Prefix:  e.picker.Pick(searchTemplates),
			Backend: BackendSearch,
		}
	}

	ctx, cancel := context.WithTimeout(ctx, e.searchTimeout)
	defer cancel()

	paths, err := e.search.Search(ctx, strings.Fields(terms), SearchResultLimit)
	if errors.Is(err, index.ErrNotIndexed) {
		// The hint is accurate here: the index has never been built.
		return Answer{
			Text:    "No files found. Try: sudo updatedb",
			Prefix:  e.picker.Pick(searchTemplates),
			Backend: BackendSearch,
		}
	}
	if err != nil {
		log.Printf("Warning: file search failed: %v", err)
		return Answer{
			Text:     e.picker.Pick(errorTemplates),
			Backend:  BackendSearch,
			Degraded: true,
		}
	}
	if len(paths) == 0 {
		return Answer{
			Text:    "No files found. Try: sudo updatedb",
			Prefix:  e.picker.Pick(searchTemplates),
			Backend: BackendSearch,
		}
	}

	return Answer{
		Text:    fmt.Sprintf("Found %d files matching '%s':\n%s", len(paths), terms, strings.Join(paths, "\n")),
		Prefix:  e.picker.Pick(searchTemplates),
		Backend: BackendSearch,
	}
}

// =============================================================================
// CLOUD ROUTE
// =============================================================================

func (e *Engine) routeCloud(ctx context.Context, text string) Answer {
	// Failed providers are skipped for the rest of this request only; a
	// failed call consumes no quota, so without the exclusion set the
	// ledger would hand back the same provider forever.
	var excluded []string

	for {
		st, ok := e.ledger.NextEligible(excluded...)
		if !ok {
			break
		}
		p := e.providers[st.Name]
		if p == nil {
			excluded = append(excluded, st.Name)
			continue
		}

		out, err := e.cloudInfer(ctx, p, text)
		if err != nil {
			log.Printf("Warning: provider %s failed: %v", st.Name, err)
			excluded = append(excluded, st.Name)
			continue
		}

		e.ledger.RecordUse(st.Name)
		return Answer{Text: out, Backend: BackendCloud(st.Name)}
	}

	// Chain exhausted; the local model answers in degraded mode.
	ans := e.routeLocal(ctx, text)
	ans.Degraded = true
	return ans
}

func (e *Engine) cloudInfer(ctx context.Context, p CloudProvider, text string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, e.inferTimeout)
	defer cancel()
	return p.Infer(ctx, text)
}

// =============================================================================
// LOCAL ROUTE
// =============================================================================

func (e *Engine) routeLocal(ctx context.Context, text string) Answer {
	ctx, cancel := context.WithTimeout(ctx, e.inferTimeout)
	defer cancel()

	out, err := e.local.Infer(ctx, text)
	if err != nil {
		log.Printf("Warning: local inference failed: %v", err)
		return Answer{
			Text:     e.picker.Pick(errorTemplates),
			Backend:  BackendLocal,
			Degraded: true,
		}
	}
	return Answer{Text: out, Backend: BackendLocal}
}
