// Package review implements the fixed-stage spaced-repetition schedule.
//
// A note gets one entry per configured day offset when it is created. Each entry starts
// Pending and moves to Completed exactly once; there is no way back.
package review

import (
	"errors"
	"fmt"
	"time"
)

// ErrEntryNotFound signals a reference to an unknown schedule entry.
var ErrEntryNotFound = errors.New("review entry not found")

// State is the lifecycle state of a schedule entry.
type State string

const (
	// Pending entries are waiting to be reviewed, whether due yet or not.
	Pending State = "pending"
	// Completed is terminal.
	Completed State = "completed"
)

// Entry is one stage of a note's review schedule (immutable value object).
type Entry struct {
	id          string
	noteID      string
	userID      string
	stage       int
	dueAt       time.Time
	completedAt *time.Time
}

// Reconstruct creates an Entry without validation (storage hydration).
func Reconstruct(id, noteID, userID string, stage int, dueAt time.Time, completedAt *time.Time) Entry {
	return Entry{
		id: id, noteID: noteID, userID: userID, stage: stage,
		dueAt: dueAt, completedAt: completedAt,
	}
}

// ID returns the entry identifier.
func (e Entry) ID() string { return e.id }

// NoteID returns the owning note.
func (e Entry) NoteID() string { return e.noteID }

// UserID returns the owner of the note.
func (e Entry) UserID() string { return e.userID }

// Stage returns the 1-based stage number.
func (e Entry) Stage() int { return e.stage }

// DueAt returns the target review time.
func (e Entry) DueAt() time.Time { return e.dueAt }

// CompletedAt returns the completion time, or nil while pending.
func (e Entry) CompletedAt() *time.Time { return e.completedAt }

// Completed reports whether the entry reached the terminal state.
func (e Entry) Completed() bool { return e.completedAt != nil }

// State returns Pending or Completed.
func (e Entry) State() State {
	if e.Completed() {
		return Completed
	}
	return Pending
}

// Complete returns the entry marked completed at now. Completing an already completed
// entry returns it unchanged, keeping the first completion time; changed reports which
// case applied.
func (e Entry) Complete(now time.Time) (entry Entry, changed bool) {
	if e.Completed() {
		return e, false
	}
	at := now
	e.completedAt = &at
	return e, true
}

// CompleteByID completes the entry with the given id within a snapshot.
func CompleteByID(entries []Entry, id string, now time.Time) (Entry, error) {
	for _, e := range entries {
		if e.id == id {
			done, _ := e.Complete(now)
			return done, nil
		}
	}
	return Entry{}, fmt.Errorf("entry %s: %w", id, ErrEntryNotFound)
}
