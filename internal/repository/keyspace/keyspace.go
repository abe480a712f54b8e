// Package keyspace defines the storage key layout shared by the repositories.
package keyspace

import "github.com/kailas-cloud/notegraph/internal/domain"

// Keyspace builds keys under a common prefix.
type Keyspace struct {
	prefix string
}

// New creates a keyspace. An empty prefix falls back to domain.DefaultKeyPrefix.
func New(prefix string) Keyspace {
	if prefix == "" {
		prefix = domain.DefaultKeyPrefix
	}
	return Keyspace{prefix: prefix}
}

// Prefix returns the key prefix.
func (k Keyspace) Prefix() string { return k.prefix }

// Note is the hash holding a note.
func (k Keyspace) Note(id string) string { return k.prefix + "note:" + id }

// NoteEntries is the set of review entry IDs belonging to a note.
func (k Keyspace) NoteEntries(noteID string) string { return k.prefix + "note:" + noteID + ":reviews" }

// UserNotes is the sorted set of a user's note IDs scored by creation time (unix ms).
func (k Keyspace) UserNotes(userID string) string { return k.prefix + "user:" + userID + ":notes" }

// Entry is the hash holding a review entry.
func (k Keyspace) Entry(id string) string { return k.prefix + "review:" + id }

// UserDue is the sorted set of a user's review entry IDs scored by due time (unix ms).
func (k Keyspace) UserDue(userID string) string { return k.prefix + "user:" + userID + ":due" }

// EmbeddingCache is the cache entry for a content hash.
func (k Keyspace) EmbeddingCache(hash string) string { return k.prefix + "emb_cache:" + hash }
