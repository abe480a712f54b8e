package domain

import (
	"errors"

	"github.com/kailas-cloud/notegraph/internal/domain/review"
	"github.com/kailas-cloud/notegraph/internal/domain/vector"
)

var (
	// ErrNoteNotFound signals a missing note.
	ErrNoteNotFound = errors.New("note not found")
	// ErrEntryNotFound signals a missing review schedule entry.
	ErrEntryNotFound = review.ErrEntryNotFound
	// ErrConflict signals a note that changed between read and write.
	ErrConflict = errors.New("note was modified concurrently")
	// ErrInvalidInput signals a request that failed validation.
	ErrInvalidInput = errors.New("invalid input")
	// ErrDimensionMismatch signals two embeddings of different length.
	ErrDimensionMismatch = vector.ErrDimensionMismatch
	// ErrAIProviderError signals an embedding or summarization provider failure.
	ErrAIProviderError = errors.New("ai provider error")
)
