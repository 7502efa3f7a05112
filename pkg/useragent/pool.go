package useragent

import (
	"math/rand"
	"sync/atomic"
)

// defaultAgents is a small set of current desktop browser User-Agents used for
// SERP corroboration requests. API traffic does not use this pool; the Reddit
// client identifies itself with a descriptive agent instead.
var defaultAgents = []string{
	"Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/126.0.0.0 Safari/537.36",
	"Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/126.0.0.0 Safari/537.36",
	"Mozilla/5.0 (Windows NT 10.0; Win64; x64; rv:127.0) Gecko/20100101 Firefox/127.0",
	"Mozilla/5.0 (Macintosh; Intel Mac OS X 10.15; rv:127.0) Gecko/20100101 Firefox/127.0",
	"Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/605.1.15 (KHTML, like Gecko) Version/17.5 Safari/605.1.15",
	"Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/126.0.0.0 Safari/537.36 Edg/126.0.0.0",
}

// Pool rotates User-Agent strings. Safe for concurrent use.
type Pool struct {
	agents  []string
	counter atomic.Uint64
}

// NewPool creates a pool from the given agents, falling back to the built-in
// set when empty. The input slice is copied.
func NewPool(agents []string) *Pool {
	if len(agents) == 0 {
		agents = defaultAgents
	}
	copied := make([]string, len(agents))
	copy(copied, agents)
	return &Pool{agents: copied}
}

// Next returns the next agent round-robin.
func (p *Pool) Next() string {
	idx := p.counter.Add(1) - 1
	return p.agents[idx%uint64(len(p.agents))]
}

// Random returns a uniformly random agent.
func (p *Pool) Random() string {
	return p.agents[rand.Intn(len(p.agents))]
}

// Size returns the number of agents in the pool.
func (p *Pool) Size() int {
	return len(p.agents)
}
