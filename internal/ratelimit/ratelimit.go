// Package ratelimit implements fixed-window admission control keyed by
// client identifier and route family.
//
// The window is fixed, not sliding: a client may be admitted up to twice
// the nominal rate across a window boundary.
package ratelimit

import (
	"context"
	"sort"
	"strings"
	"time"
)

// Policy is the limit applied to one route family
type Policy struct {
	Name   string
	Prefix string
	Max    int
	Window time.Duration
}

// Result is the outcome of one counted request
type Result struct {
	Allowed   bool
	Limit     int
	Remaining int
	ResetAt   time.Time
}

// RetryAfter returns how long a rejected client should wait
func (r Result) RetryAfter(now time.Time) time.Duration {
	d := r.ResetAt.Sub(now)
	if d < time.Second {
		return time.Second
	}
	return d
}

// Store counts requests per key inside fixed windows
type Store interface {
	Hit(ctx context.Context, key string, max int, window time.Duration) (Result, error)
}

// Policies resolves the policy for a request path by longest matching prefix
type Policies struct {
	fallback Policy
	ordered  []Policy
}

// NewPolicies builds a policy table. fallback applies when no prefix matches.
func NewPolicies(fallback Policy, policies ...Policy) *Policies {
	ordered := append([]Policy(nil), policies...)
	sort.SliceStable(ordered, func(i, j int) bool {
		return len(ordered[i].Prefix) > len(ordered[j].Prefix)
	})
	return &Policies{fallback: fallback, ordered: ordered}
}

// Match returns the policy for path
func (p *Policies) Match(path string) Policy {
	for _, policy := range p.ordered {
		if hasPathPrefix(path, policy.Prefix) {
			return policy
		}
	}
	return p.fallback
}

func hasPathPrefix(path, prefix string) bool {
	if !strings.HasPrefix(path, prefix) {
		return false
	}
	return len(path) == len(prefix) || strings.HasSuffix(prefix, "/") || path[len(prefix)] == '/'
}

// Limiter admits or rejects requests for a client on a path
type Limiter struct {
	store    Store
	policies *Policies
}

// NewLimiter creates a limiter over store
func NewLimiter(store Store, policies *Policies) *Limiter {
	return &Limiter{store: store, policies: policies}
}

// Allow counts one request from client against the policy matching path
func (l *Limiter) Allow(ctx context.Context, client, path string) (Result, Policy, error) {
	policy := l.policies.Match(path)
	res, err := l.store.Hit(ctx, Key(policy, client), policy.Max, policy.Window)
	return res, policy, err
}

// Key builds the counter key shared by every store implementation
func Key(policy Policy, client string) string {
	return policy.Name + ":" + client
}
