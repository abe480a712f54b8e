package review

import (
	"fmt"
	"strconv"
	"time"

	domreview "github.com/kailas-cloud/notegraph/internal/domain/review"
)

const (
	fieldNoteID      = "note_id"
	fieldUserID      = "user_id"
	fieldStage       = "stage"
	fieldDueAt       = "due_at"
	fieldCompleted   = "completed"
	fieldCompletedAt = "completed_at"

	completedYes = "1"
	completedNo  = "0"
)

// EncodeEntry converts an entry into hash fields.
func EncodeEntry(e domreview.Entry) map[string]string {
	m := map[string]string{
		fieldNoteID:      e.NoteID(),
		fieldUserID:      e.UserID(),
		fieldStage:       strconv.Itoa(e.Stage()),
		fieldDueAt:       formatTime(e.DueAt()),
		fieldCompleted:   completedNo,
		fieldCompletedAt: "",
	}
	if at := e.CompletedAt(); at != nil {
		m[fieldCompleted] = completedYes
		m[fieldCompletedAt] = formatTime(*at)
	}
	return m
}

// DueScore is the due index score of an entry.
func DueScore(e domreview.Entry) float64 {
	return float64(e.DueAt().UnixMilli())
}

func decodeEntry(id string, m map[string]string) (domreview.Entry, error) {
	stage, err := strconv.Atoi(m[fieldStage])
	if err != nil {
		return domreview.Entry{}, fmt.Errorf("entry %s: parse stage: %w", id, err)
	}
	dueAt, err := parseTime(m[fieldDueAt])
	if err != nil {
		return domreview.Entry{}, fmt.Errorf("entry %s: parse due_at: %w", id, err)
	}

	var completedAt *time.Time
	if m[fieldCompleted] == completedYes {
		at, err := parseTime(m[fieldCompletedAt])
		if err != nil {
			return domreview.Entry{}, fmt.Errorf("entry %s: parse completed_at: %w", id, err)
		}
		completedAt = &at
	}

	return domreview.Reconstruct(id, m[fieldNoteID], m[fieldUserID], stage, dueAt, completedAt), nil
}

func formatTime(t time.Time) string {
	return t.Format(time.RFC3339Nano)
}

func parseTime(s string) (time.Time, error) {
	return time.Parse(time.RFC3339Nano, s)
}
