package domain

import (
	"errors"
	"testing"

	"github.com/kailas-cloud/notegraph/internal/domain/review"
	"github.com/kailas-cloud/notegraph/internal/domain/vector"
)

func TestSentinelsAliasSubpackages(t *testing.T) {
	if !errors.Is(vector.ErrDimensionMismatch, ErrDimensionMismatch) {
		t.Error("ErrDimensionMismatch must match vector.ErrDimensionMismatch")
	}
	if !errors.Is(review.ErrEntryNotFound, ErrEntryNotFound) {
		t.Error("ErrEntryNotFound must match review.ErrEntryNotFound")
	}
	if errors.Is(ErrNoteNotFound, ErrEntryNotFound) {
		t.Error("note and entry not-found must stay distinct")
	}
}
