package note

import (
	"encoding/binary"
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"time"

	domnote "github.com/kailas-cloud/notegraph/internal/domain/note"
	"github.com/kailas-cloud/notegraph/internal/domain/vector"
)

const (
	fieldUserID           = "user_id"
	fieldTitle            = "title"
	fieldContent          = "content"
	fieldSummary          = "summary"
	fieldTags             = "tags"
	fieldCreatedAt        = "created_at"
	fieldUpdatedAt        = "updated_at"
	fieldEmbedding        = "embedding"
	fieldEmbeddingVersion = "embedding_version"
)

// buildHashFields converts a domain Note into a flat map[string]string for HSET.
// An absent embedding is stored as an empty field so an update clears it.
func buildHashFields(n *domnote.Note) (map[string]string, error) {
	tags := n.Tags()
	if tags == nil {
		tags = []string{}
	}
	rawTags, err := json.Marshal(tags)
	if err != nil {
		return nil, fmt.Errorf("marshal tags: %w", err)
	}

	return map[string]string{
		fieldUserID:           n.UserID(),
		fieldTitle:            n.Title(),
		fieldContent:          n.Content(),
		fieldSummary:          n.Summary(),
		fieldTags:             string(rawTags),
		fieldCreatedAt:        n.CreatedAt().Format(time.RFC3339Nano),
		fieldUpdatedAt:        n.UpdatedAt().Format(time.RFC3339Nano),
		fieldEmbedding:        vectorToBytes(n.Embedding()),
		fieldEmbeddingVersion: strconv.Itoa(n.EmbeddingVersion()),
	}, nil
}

// parseHashFields converts a flat hash map back into a domain Note.
func parseHashFields(id string, m map[string]string) (domnote.Note, error) {
	createdAt, err := time.Parse(time.RFC3339Nano, m[fieldCreatedAt])
	if err != nil {
		return domnote.Note{}, fmt.Errorf("note %s: parse created_at: %w", id, err)
	}
	updatedAt, err := time.Parse(time.RFC3339Nano, m[fieldUpdatedAt])
	if err != nil {
		return domnote.Note{}, fmt.Errorf("note %s: parse updated_at: %w", id, err)
	}

	var tags []string
	if raw := m[fieldTags]; raw != "" {
		if err := json.Unmarshal([]byte(raw), &tags); err != nil {
			return domnote.Note{}, fmt.Errorf("note %s: parse tags: %w", id, err)
		}
	}

	version := 0
	if raw := m[fieldEmbeddingVersion]; raw != "" {
		version, err = strconv.Atoi(raw)
		if err != nil {
			return domnote.Note{}, fmt.Errorf("note %s: parse embedding_version: %w", id, err)
		}
	}

	return domnote.Reconstruct(
		id, m[fieldUserID], m[fieldTitle], m[fieldContent], m[fieldSummary], tags,
		createdAt, updatedAt, bytesToVector(m[fieldEmbedding]), version,
	), nil
}

// vectorToBytes serializes []float32 to a binary string (4 bytes per float, little-endian).
func vectorToBytes(v vector.Vector) string {
	buf := make([]byte, len(v)*4)
	for i, f := range v {
		binary.LittleEndian.PutUint32(buf[i*4:], math.Float32bits(f))
	}
	return string(buf)
}

// bytesToVector deserializes a binary string back to a vector. Empty or malformed input
// yields an absent embedding.
func bytesToVector(s string) vector.Vector {
	b := []byte(s)
	if len(b) == 0 || len(b)%4 != 0 {
		return nil
	}
	v := make(vector.Vector, len(b)/4)
	for i := range v {
		v[i] = math.Float32frombits(binary.LittleEndian.Uint32(b[i*4:]))
	}
	return v
}
