// Package graph builds the similarity graph over one user's notes.
//
// Every unordered pair of notes with present embeddings is scored once; pairs scoring
// strictly above the link threshold become edges. Cost is O(n²·d), which bounds the
// practical collection size of a single synchronous call. An approximate nearest
// neighbour index is the upgrade path past that ceiling.
package graph

import (
	"github.com/kailas-cloud/notegraph/internal/domain/vector"
)

// DefaultLinkThreshold is the similarity an edge must exceed to be materialized.
const DefaultLinkThreshold = 0.5

// Node is the builder input: a note projection plus its optional embedding.
type Node struct {
	ID               string
	Title            string
	Tags             []string
	Embedding        vector.Vector
	EmbeddingVersion int
}

// View projects the node for display.
func (n Node) View() NodeView {
	return NodeView{ID: n.ID, Title: n.Title, Tags: n.Tags}
}

// NodeView is the display-facing part of a node.
type NodeView struct {
	ID    string
	Title string
	Tags  []string
}

// Edge links two notes. Source precedes Target in the input order.
type Edge struct {
	Source     string
	Target     string
	Similarity float64
}

// SkippedPair records a pair that could not be scored, e.g. after a model change
// left two notes with embeddings of different dimensionality.
type SkippedPair struct {
	Source string
	Target string
	Err    error
}

// Result is a fully computed graph.
type Result struct {
	Nodes   []NodeView
	Edges   []Edge
	Skipped []SkippedPair
}

// InsufficientData reports whether fewer than two nodes were supplied.
func (r Result) InsufficientData() bool { return len(r.Nodes) < 2 }

// ScoreFunc scores a pair of nodes with present embeddings.
type ScoreFunc func(a, b Node) (float64, error)

// CosineScore scores nodes by the cosine similarity of their embeddings.
func CosineScore(a, b Node) (float64, error) {
	return vector.Cosine(a.Embedding, b.Embedding)
}
