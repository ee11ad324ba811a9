package util

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"sync"
	"time"

	"github.com/temoto/robotstxt"
)

// RobotsGate answers whether a URL may be fetched under the target host's
// robots.txt policy. Parsed policies are cached per host for the lifetime
// of the gate.
type RobotsGate struct {
	client    *http.Client
	userAgent string

	mu     sync.Mutex
	byHost map[string]*robotstxt.RobotsData
}

// NewRobotsGate creates a gate that identifies itself with the given user
// agent when fetching robots.txt.
func NewRobotsGate(userAgent string, timeout time.Duration) *RobotsGate {
	return &RobotsGate{
		client:    NewHTTPClient(timeout, "", ""),
		userAgent: userAgent,
		byHost:    make(map[string]*robotstxt.RobotsData),
	}
}

// Allowed reports whether the URL may be fetched. Hosts whose robots.txt
// is missing or unreachable allow everything.
func (g *RobotsGate) Allowed(ctx context.Context, rawURL string) (bool, error) {
	target, err := url.Parse(rawURL)
	if err != nil {
		return false, fmt.Errorf("parse URL: %w", err)
	}

	policy := g.policy(ctx, target)
	if policy == nil {
		return true, nil
	}
	return policy.TestAgent(target.Path, g.userAgent), nil
}

// policy returns the host's robots.txt policy, fetching and caching it on
// first use. A nil policy means the host could not be consulted; failures
// are not cached so a later call may succeed.
func (g *RobotsGate) policy(ctx context.Context, target *url.URL) *robotstxt.RobotsData {
	g.mu.Lock()
	cached, ok := g.byHost[target.Host]
	g.mu.Unlock()
	if ok {
		return cached
	}

	fetched := g.fetch(ctx, target)
	if fetched != nil {
		g.mu.Lock()
		g.byHost[target.Host] = fetched
		g.mu.Unlock()
	}
	return fetched
}

func (g *RobotsGate) fetch(ctx context.Context, target *url.URL) *robotstxt.RobotsData {
	robotsURL := fmt.Sprintf("%s://%s/robots.txt", target.Scheme, target.Host)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, robotsURL, nil)
	if err != nil {
		return nil
	}
	req.Header.Set("User-Agent", g.userAgent)

	resp, err := g.client.Do(req)
	if err != nil {
		return nil
	}
	defer func() { _ = resp.Body.Close() }()

	// FromResponse maps 4xx to allow-all and 5xx to disallow-all.
	policy, err := robotstxt.FromResponse(resp)
	if err != nil {
		return nil
	}
	return policy
}
