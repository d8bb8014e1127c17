// Package routepool runs route queries on a fixed-size worker pool, so
// planning a commute never blocks the trigger queue that requested it.
// Each query is handed a Router already aimed at the worldstate.Reader
// the caller wants priced against (live congestion, or a predicted
// future snapshot); the pool itself only owns the goroutines and the
// per-query result channel.
package routepool

import "metrosim/internal/routegraph"

// Result is what a queued query eventually delivers: the route it
// found, if any.
type Result struct {
	Route routegraph.Route
	Found bool
}

type job struct {
	router *routegraph.Router
	input  routegraph.QueryInput
	now    *float64
	result chan Result
}

// Pool is a fixed number of goroutines draining a shared job queue.
// Queries submitted after Close panic, matching a closed-channel send.
type Pool struct {
	jobs chan job
}

// New starts a pool of size worker goroutines. size is clamped to at
// least 1.
func New(size int) *Pool {
	if size < 1 {
		size = 1
	}
	p := &Pool{jobs: make(chan job)}
	for i := 0; i < size; i++ {
		go p.worker()
	}
	return p
}

func (p *Pool) worker() {
	for j := range p.jobs {
		route, found := j.router.Query(j.input, j.now)
		j.result <- Result{Route: route, Found: found}
	}
}

// QueryAsync submits a route query and returns a capacity-1 channel the
// result is sent to exactly once, as soon as some worker picks it up.
// router should already be cloned (see routegraph.Router.Clone) against
// the worldstate.Reader this particular query should be priced against.
func (p *Pool) QueryAsync(router *routegraph.Router, input routegraph.QueryInput, now *float64) <-chan Result {
	result := make(chan Result, 1)
	p.jobs <- job{router: router, input: input, now: now, result: result}
	return result
}

// Close stops accepting new queries. Workers drain whatever is already
// queued, then exit.
func (p *Pool) Close() {
	close(p.jobs)
}
