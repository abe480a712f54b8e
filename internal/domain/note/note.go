package note

import (
	"fmt"
	"strings"
	"time"

	"github.com/kailas-cloud/notegraph/internal/domain/graph"
	"github.com/kailas-cloud/notegraph/internal/domain/vector"
)

const (
	// MaxTitleLength is the maximum title length in bytes.
	MaxTitleLength = 512
	// MaxContentSize is the maximum note content size in bytes.
	MaxContentSize = 163840 // 160KB
	// MaxTags is the maximum number of tags kept per note.
	MaxTags = 3
)

// Note is the note aggregate (immutable value object).
type Note struct {
	id               string
	userID           string
	title            string
	content          string
	summary          string
	tags             []string
	createdAt        time.Time
	updatedAt        time.Time
	embedding        vector.Vector
	embeddingVersion int
}

// New validates and creates a Note without summary, tags or embedding.
func New(id, userID, title, content string, now time.Time) (Note, error) {
	if id == "" {
		return Note{}, fmt.Errorf("note ID is required")
	}
	if userID == "" {
		return Note{}, fmt.Errorf("user ID is required")
	}
	if err := validateTitle(title); err != nil {
		return Note{}, err
	}
	if err := validateContent(content); err != nil {
		return Note{}, err
	}
	return Note{
		id:        id,
		userID:    userID,
		title:     title,
		content:   content,
		createdAt: now,
		updatedAt: now,
	}, nil
}

// Reconstruct creates a Note without validation (storage hydration).
func Reconstruct(
	id, userID, title, content, summary string, tags []string,
	createdAt, updatedAt time.Time, embedding vector.Vector, embeddingVersion int,
) Note {
	return Note{
		id: id, userID: userID, title: title, content: content, summary: summary, tags: tags,
		createdAt: createdAt, updatedAt: updatedAt,
		embedding: embedding, embeddingVersion: embeddingVersion,
	}
}

// ID returns the note identifier.
func (n *Note) ID() string { return n.id }

// UserID returns the owner.
func (n *Note) UserID() string { return n.userID }

// Title returns the title.
func (n *Note) Title() string { return n.title }

// Content returns the body text.
func (n *Note) Content() string { return n.content }

// Summary returns the generated summary (may be empty).
func (n *Note) Summary() string { return n.summary }

// Tags returns the generated tag names in order.
func (n *Note) Tags() []string { return n.tags }

// CreatedAt returns the creation time.
func (n *Note) CreatedAt() time.Time { return n.createdAt }

// UpdatedAt returns the last edit time.
func (n *Note) UpdatedAt() time.Time { return n.updatedAt }

// Embedding returns the embedding, nil when none was produced.
func (n *Note) Embedding() vector.Vector { return n.embedding }

// EmbeddingVersion increments each time the embedding is replaced.
func (n *Note) EmbeddingVersion() int { return n.embeddingVersion }

// EmbeddingText is the text the embedding is computed from.
func (n *Note) EmbeddingText() string { return n.title + "\n" + n.content }

// SetAnnotations sets summary and tags in place. Tags are trimmed, deduplicated and
// capped at MaxTags, keeping first occurrences.
func (n *Note) SetAnnotations(summary string, tags []string) {
	n.summary = strings.TrimSpace(summary)
	n.tags = NormalizeTags(tags)
}

// SetEmbedding replaces the embedding wholesale. An empty vector clears it.
func (n *Note) SetEmbedding(v vector.Vector) {
	if v.Present() {
		n.embedding = v.Clone()
	} else {
		n.embedding = nil
	}
	n.embeddingVersion++
}

// Edit applies a title and/or content change. It reports whether the embedded text
// changed, in which case the embedding must be recomputed.
func (n *Note) Edit(title, content *string, now time.Time) (bool, error) {
	changed := false
	if title != nil && *title != n.title {
		if err := validateTitle(*title); err != nil {
			return false, err
		}
		n.title = *title
		changed = true
	}
	if content != nil && *content != n.content {
		if err := validateContent(*content); err != nil {
			return false, err
		}
		n.content = *content
		changed = true
	}
	if changed {
		n.updatedAt = now
	}
	return changed, nil
}

// GraphNode projects the note for graph building.
func (n *Note) GraphNode() graph.Node {
	return graph.Node{
		ID:               n.id,
		Title:            n.title,
		Tags:             n.tags,
		Embedding:        n.embedding,
		EmbeddingVersion: n.embeddingVersion,
	}
}

// NormalizeTags trims, drops empties and duplicates, and caps the list at MaxTags.
func NormalizeTags(tags []string) []string {
	out := make([]string, 0, len(tags))
	seen := make(map[string]struct{}, len(tags))
	for _, t := range tags {
		t = strings.TrimSpace(t)
		if t == "" {
			continue
		}
		if _, ok := seen[t]; ok {
			continue
		}
		seen[t] = struct{}{}
		out = append(out, t)
		if len(out) == MaxTags {
			break
		}
	}
	return out
}

func validateTitle(title string) error {
	if strings.TrimSpace(title) == "" {
		return fmt.Errorf("title is required")
	}
	if len(title) > MaxTitleLength {
		return fmt.Errorf("title too long (max %d bytes)", MaxTitleLength)
	}
	return nil
}

func validateContent(content string) error {
	if strings.TrimSpace(content) == "" {
		return fmt.Errorf("content is required")
	}
	if len(content) > MaxContentSize {
		return fmt.Errorf("content too large (max %d bytes)", MaxContentSize)
	}
	return nil
}
