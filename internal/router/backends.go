// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package router decides where each query is answered: a canned template,
// the filename index, the local model, or the quota-limited cloud chain.
package router

import "context"

// LocalInference answers a prompt with the local model.
type LocalInference interface {
	Infer(ctx context.Context, text string) (string, error)
}

// CloudProvider answers a prompt via one cloud API in the fallback chain.
type CloudProvider interface {
	Name() string
	Infer(ctx context.Context, text string) (string, error)
}

// FileSearch finds indexed files whose names match every term.
type FileSearch interface {
	Search(ctx context.Context, terms []string, limit int) ([]string, error)
}

// Backend identifies what produced an answer.
type Backend string

const (
	// BackendCanned means a template answered with no backend call.
	BackendCanned Backend = "canned"
	// BackendSearch means the filename index answered.
	BackendSearch Backend = "search"
	// BackendLocal means the local model answered.
	BackendLocal Backend = "local"
)

// BackendCloud names the cloud backend for one provider.
func BackendCloud(provider string) Backend {
	return Backend("cloud:" + provider)
}

// Answer is the routed result of one query.
type Answer struct {
	// Text is the answer body.
	Text string
	// Prefix is an optional persona flourish shown before the body.
	Prefix string
	// Backend identifies what produced the answer.
	Backend Backend
	// Degraded is true when the preferred backend was unavailable and a
	// fallback produced the answer instead.
	Degraded bool
}
