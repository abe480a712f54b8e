package graph

import "sort"

// DefaultRelatedLimit is the number of neighbours returned when no limit is given.
const DefaultRelatedLimit = 5

// Neighbour is a candidate note ranked by similarity to a target note.
type Neighbour struct {
	Node       NodeView
	Similarity float64
}

// Related ranks candidates by similarity to target, highest first, and keeps at most
// limit of them (limit <= 0 keeps all). The target itself, candidates without an
// embedding, and candidates that cannot be scored are left out. A target without an
// embedding has no neighbours.
func Related(target Node, candidates []Node, limit int, score ScoreFunc) []Neighbour {
	if score == nil {
		score = CosineScore
	}
	if !target.Embedding.Present() {
		return []Neighbour{}
	}

	out := make([]Neighbour, 0, len(candidates))
	for _, c := range candidates {
		if c.ID == target.ID || !c.Embedding.Present() {
			continue
		}
		sim, err := score(target, c)
		if err != nil {
			continue
		}
		out = append(out, Neighbour{Node: c.View(), Similarity: sim})
	}

	sort.SliceStable(out, func(i, j int) bool { return out[i].Similarity > out[j].Similarity })
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out
}
