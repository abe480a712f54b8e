// Package note defines the note aggregate: user-authored title and content plus the
// generated summary, tags and embedding.
package note
