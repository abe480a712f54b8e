package graph

import (
	"sort"

	"golang.org/x/sync/errgroup"
)

// minParallelNodes is the node count below which sharding costs more than it saves.
const minParallelNodes = 64

// Builder turns a note list into a similarity graph.
type Builder struct {
	linkThreshold float64
	workers       int
	score         ScoreFunc
}

// NewBuilder creates a sequential builder with the given link threshold.
func NewBuilder(linkThreshold float64) *Builder {
	return &Builder{linkThreshold: linkThreshold, workers: 1, score: CosineScore}
}

// WithWorkers shards the pair loop across n goroutines. n <= 1 keeps it sequential.
func (b *Builder) WithWorkers(n int) *Builder {
	if n < 1 {
		n = 1
	}
	b.workers = n
	return b
}

// WithScorer replaces the pair scorer, e.g. with a memoizing wrapper.
func (b *Builder) WithScorer(fn ScoreFunc) *Builder {
	if fn != nil {
		b.score = fn
	}
	return b
}

// LinkThreshold returns the configured link threshold.
func (b *Builder) LinkThreshold() float64 { return b.linkThreshold }

// Build scores every eligible pair and returns nodes in input order with edges in
// (outer index, inner index) ascending order, regardless of sharding.
func (b *Builder) Build(nodes []Node) Result {
	views := make([]NodeView, len(nodes))
	for i, n := range nodes {
		views[i] = n.View()
	}

	res := Result{Nodes: views, Edges: []Edge{}}
	if len(nodes) < 2 {
		return res
	}

	var outcomes []pairOutcome
	if b.workers > 1 && len(nodes) >= minParallelNodes {
		outcomes = b.scoreSharded(nodes)
	} else {
		outcomes = b.scoreRange(nodes, 0, 1)
	}

	for _, o := range outcomes {
		if o.err != nil {
			res.Skipped = append(res.Skipped, SkippedPair{
				Source: nodes[o.i].ID, Target: nodes[o.j].ID, Err: o.err,
			})
			continue
		}
		res.Edges = append(res.Edges, Edge{
			Source: nodes[o.i].ID, Target: nodes[o.j].ID, Similarity: o.sim,
		})
	}
	return res
}

// pairOutcome is either an edge (err == nil) or a skipped pair.
type pairOutcome struct {
	i, j int
	sim  float64
	err  error
}

// scoreRange scores outer rows start, start+stride, ... and returns edges and skips only.
func (b *Builder) scoreRange(nodes []Node, start, stride int) []pairOutcome {
	var out []pairOutcome
	for i := start; i < len(nodes); i += stride {
		if !nodes[i].Embedding.Present() {
			continue
		}
		for j := i + 1; j < len(nodes); j++ {
			if !nodes[j].Embedding.Present() {
				continue
			}
			sim, err := b.score(nodes[i], nodes[j])
			if err != nil {
				out = append(out, pairOutcome{i: i, j: j, err: err})
				continue
			}
			if sim > b.linkThreshold {
				out = append(out, pairOutcome{i: i, j: j, sim: sim})
			}
		}
	}
	return out
}

// scoreSharded stripes outer rows across workers so the triangular loop stays balanced,
// then restores the sequential order.
func (b *Builder) scoreSharded(nodes []Node) []pairOutcome {
	shards := make([][]pairOutcome, b.workers)

	var g errgroup.Group
	for w := 0; w < b.workers; w++ {
		g.Go(func() error {
			shards[w] = b.scoreRange(nodes, w, b.workers)
			return nil
		})
	}
	_ = g.Wait() // workers never fail

	var merged []pairOutcome
	for _, s := range shards {
		merged = append(merged, s...)
	}
	sort.Slice(merged, func(x, y int) bool {
		if merged[x].i != merged[y].i {
			return merged[x].i < merged[y].i
		}
		return merged[x].j < merged[y].j
	})
	return merged
}
