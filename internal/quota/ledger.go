// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package quota

import (
	"log"
	"sync"
)

// ProviderSpec declares one provider's position in the chain and its
// daily request budget. Chain order is the slice order given to NewLedger.
type ProviderSpec struct {
	Name       string
	DailyLimit int
}

// ProviderStatus is a point-in-time view of one provider's budget.
type ProviderStatus struct {
	Name       string
	DailyLimit int
	Used       int
}

// Remaining returns the requests left today.
func (p ProviderStatus) Remaining() int {
	if p.Used >= p.DailyLimit {
		return 0
	}
	return p.DailyLimit - p.Used
}

// Ledger tracks daily usage across the provider chain. All methods are
// safe for concurrent use; a single mutex covers the counters so two
// callers can never both consume the last slot of a provider's budget.
type Ledger struct {
	mu    sync.Mutex
	specs []ProviderSpec
	used  map[string]int
	date  string
	store *Store

	// now is stubbed in tests to cross day boundaries.
	now func() string
}

// NewLedger builds a ledger for the given chain, seeding counters from the
// store if the persisted record is from today. Records from earlier days
// are discarded, which is how the midnight reset happens across restarts.
func NewLedger(specs []ProviderSpec, store *Store) *Ledger {
	l := &Ledger{
		specs: specs,
		used:  make(map[string]int),
		store: store,
		now:   Today,
	}
	l.date = l.now()

	if store != nil {
		if rec, ok := store.Load(); ok && rec.Date == l.date {
			for name, n := range rec.Used {
				l.used[name] = n
			}
		}
	}
	return l
}

// rollover resets counters when the day has changed since the last call.
// Caller holds mu.
func (l *Ledger) rollover() {
	today := l.now()
	if today == l.date {
		return
	}
	l.date = today
	l.used = make(map[string]int)
	l.persist()
}

// persist writes the current counters, best effort. Caller holds mu.
func (l *Ledger) persist() {
	if l.store == nil {
		return
	}
	rec := UsageRecord{Date: l.date, Used: make(map[string]int, len(l.used))}
	for name, n := range l.used {
		rec.Used[name] = n
	}
	if err := l.store.Save(rec); err != nil {
		log.Printf("Warning: failed to persist usage: %v", err)
	}
}

// NextEligible returns the first provider in chain order with budget left
// today, skipping any names in exclude. Returns ok=false when every
// provider is exhausted or excluded.
func (l *Ledger) NextEligible(exclude ...string) (ProviderStatus, bool) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.rollover()

	skip := make(map[string]bool, len(exclude))
	for _, name := range exclude {
		skip[name] = true
	}

	for _, spec := range l.specs {
		if skip[spec.Name] {
			continue
		}
		if l.used[spec.Name] < spec.DailyLimit {
			return ProviderStatus{
				Name:       spec.Name,
				DailyLimit: spec.DailyLimit,
				Used:       l.used[spec.Name],
			}, true
		}
	}
	return ProviderStatus{}, false
}

// RecordUse consumes one request from the named provider's budget and
// persists the new counter. The count never exceeds the daily limit, so
// callers racing for the last slot cannot overshoot it. Unknown names
// are ignored.
func (l *Ledger) RecordUse(name string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.rollover()

	for _, spec := range l.specs {
		if spec.Name != name {
			continue
		}
		if l.used[name] < spec.DailyLimit {
			l.used[name]++
			l.persist()
		}
		return
	}
}

// Usage returns a snapshot of every provider's status in chain order.
func (l *Ledger) Usage() []ProviderStatus {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.rollover()

	out := make([]ProviderStatus, 0, len(l.specs))
	for _, spec := range l.specs {
		out = append(out, ProviderStatus{
			Name:       spec.Name,
			DailyLimit: spec.DailyLimit,
			Used:       l.used[spec.Name],
		})
	}
	return out
}
