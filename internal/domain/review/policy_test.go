package review

import (
	"errors"
	"fmt"
	"testing"
	"time"
)

var kst = time.FixedZone("KST", 9*60*60)

func seqIDs() IDFunc {
	n := 0
	return func() string {
		n++
		return fmt.Sprintf("e%d", n)
	}
}

func mustPolicy(t *testing.T, offsets []int, loc *time.Location) Policy {
	t.Helper()
	p, err := NewPolicy(offsets, loc)
	if err != nil {
		t.Fatalf("NewPolicy: %v", err)
	}
	return p
}

// --- NewPolicy ---

func TestNewPolicy_Invalid(t *testing.T) {
	tests := []struct {
		name    string
		offsets []int
	}{
		{"empty", nil},
		{"zero", []int{0, 3}},
		{"negative", []int{-1}},
		{"descending", []int{7, 3}},
		{"duplicate", []int{3, 3}},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := NewPolicy(tc.offsets, kst); err == nil {
				t.Errorf("expected error for offsets %v", tc.offsets)
			}
		})
	}
}

func TestNewPolicy_CopiesOffsets(t *testing.T) {
	offsets := []int{1, 2}
	p := mustPolicy(t, offsets, kst)
	offsets[0] = 99
	if p.Offsets()[0] != 1 {
		t.Error("policy must not alias caller slice")
	}
	got := p.Offsets()
	got[1] = 42
	if p.Offsets()[1] != 2 {
		t.Error("Offsets must return a copy")
	}
}

func TestNewPolicy_NilLocationIsLocal(t *testing.T) {
	p := mustPolicy(t, []int{1}, nil)
	if p.Location() != time.Local {
		t.Errorf("expected time.Local, got %v", p.Location())
	}
}

func TestDefaultPolicy(t *testing.T) {
	p := DefaultPolicy()
	want := []int{3, 7, 14, 30}
	got := p.Offsets()
	if len(got) != len(want) {
		t.Fatalf("expected %v, got %v", want, got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("expected %v, got %v", want, got)
		}
	}
}

// --- Initialize ---

func TestInitialize_Completeness(t *testing.T) {
	now := time.Date(2025, 3, 10, 15, 30, 0, 0, kst)
	p := mustPolicy(t, []int{3, 7, 14, 30}, kst)

	entries := p.Initialize("note-1", "user-1", now, seqIDs())

	if len(entries) != 4 {
		t.Fatalf("expected 4 entries, got %d", len(entries))
	}
	for i, days := range []int{3, 7, 14, 30} {
		e := entries[i]
		if e.Stage() != i+1 {
			t.Errorf("entry %d: stage %d, want %d", i, e.Stage(), i+1)
		}
		want := now.Add(time.Duration(days) * 24 * time.Hour)
		if !e.DueAt().Equal(want) {
			t.Errorf("entry %d: dueAt %v, want %v", i, e.DueAt(), want)
		}
		if e.State() != Pending || e.Completed() || e.CompletedAt() != nil {
			t.Errorf("entry %d: expected pending", i)
		}
		if e.NoteID() != "note-1" || e.UserID() != "user-1" {
			t.Errorf("entry %d: wrong owner %s/%s", i, e.NoteID(), e.UserID())
		}
		if e.ID() != fmt.Sprintf("e%d", i+1) {
			t.Errorf("entry %d: unexpected id %s", i, e.ID())
		}
	}
}

func TestInitialize_DueAtAscending(t *testing.T) {
	now := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	entries := mustPolicy(t, []int{1, 2, 5, 8, 13}, kst).Initialize("n", "u", now, seqIDs())
	for i := 1; i < len(entries); i++ {
		if !entries[i].DueAt().After(entries[i-1].DueAt()) {
			t.Fatalf("dueAt not ascending at %d", i)
		}
	}
}

func TestInitialize_UsesPolicyLocation(t *testing.T) {
	now := time.Date(2025, 1, 1, 20, 0, 0, 0, time.UTC)
	entries := mustPolicy(t, []int{1}, kst).Initialize("n", "u", now, seqIDs())
	if entries[0].DueAt().Location() != kst {
		t.Errorf("expected dueAt in policy location, got %v", entries[0].DueAt().Location())
	}
	if !entries[0].DueAt().Equal(now.Add(24 * time.Hour)) {
		t.Error("location must not change the instant")
	}
}

// --- Complete ---

func TestComplete_Idempotent(t *testing.T) {
	e := Reconstruct("e1", "n", "u", 1, time.Date(2025, 1, 4, 0, 0, 0, 0, kst), nil)
	first := time.Date(2025, 1, 4, 9, 0, 0, 0, kst)
	second := first.Add(3 * time.Hour)

	done, changed := e.Complete(first)
	if !changed || !done.Completed() || done.State() != Completed {
		t.Fatal("first completion must transition to completed")
	}
	again, changed := done.Complete(second)
	if changed {
		t.Error("second completion must be a no-op")
	}
	if !again.CompletedAt().Equal(first) {
		t.Errorf("completedAt changed: %v, want %v", again.CompletedAt(), first)
	}
	if e.Completed() {
		t.Error("Complete must not mutate the receiver")
	}
}

func TestCompleteByID(t *testing.T) {
	now := time.Date(2025, 1, 4, 9, 0, 0, 0, kst)
	entries := mustPolicy(t, []int{3, 7}, kst).Initialize("n", "u", now, seqIDs())

	done, err := CompleteByID(entries, "e2", now)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if done.ID() != "e2" || !done.Completed() {
		t.Errorf("expected e2 completed, got %+v", done)
	}

	_, err = CompleteByID(entries, "missing", now)
	if !errors.Is(err, ErrEntryNotFound) {
		t.Fatalf("expected ErrEntryNotFound, got %v", err)
	}
}

// --- DueToday ---

func TestDueToday_Window(t *testing.T) {
	day := func(d, h, m int) time.Time { return time.Date(2025, 5, d, h, m, 0, 0, kst) }
	entries := []Entry{
		Reconstruct("tomorrow", "n", "u", 5, day(21, 0, 0), nil),
		Reconstruct("late", "n", "u", 4, day(20, 23, 59), nil),
		Reconstruct("yesterday", "n", "u", 1, day(19, 23, 59), nil),
		Reconstruct("noon", "n", "u", 3, day(20, 12, 0), nil),
		Reconstruct("midnight", "n", "u", 2, day(20, 0, 0), nil),
	}

	got := DueToday(entries, day(20, 12, 0), kst)

	want := []string{"midnight", "noon", "late"}
	if len(got) != len(want) {
		t.Fatalf("expected %v, got %d entries", want, len(got))
	}
	for i, id := range want {
		if got[i].ID() != id {
			t.Errorf("position %d: got %s, want %s", i, got[i].ID(), id)
		}
	}
}

func TestDueToday_ExcludesCompleted(t *testing.T) {
	now := time.Date(2025, 5, 20, 12, 0, 0, 0, kst)
	at := now
	entries := []Entry{
		Reconstruct("done", "n", "u", 1, now, &at),
		Reconstruct("open", "n", "u", 2, now, nil),
	}
	got := DueToday(entries, now, kst)
	if len(got) != 1 || got[0].ID() != "open" {
		t.Fatalf("expected only open entry, got %+v", got)
	}
}

func TestDueToday_NowInOtherZone(t *testing.T) {
	// 2025-05-19 16:00 UTC is 2025-05-20 01:00 KST
	now := time.Date(2025, 5, 19, 16, 0, 0, 0, time.UTC)
	e := Reconstruct("e", "n", "u", 1, time.Date(2025, 5, 20, 10, 0, 0, 0, kst), nil)

	if got := DueToday([]Entry{e}, now, kst); len(got) != 1 {
		t.Errorf("expected entry due on the KST day, got %d", len(got))
	}
	if got := DueToday([]Entry{e}, now, time.UTC); len(got) != 0 {
		t.Errorf("expected no entry on the UTC day, got %d", len(got))
	}
}

func TestDayWindow(t *testing.T) {
	now := time.Date(2025, 12, 31, 18, 45, 0, 0, kst)
	start, end := DayWindow(now, kst)
	if !start.Equal(time.Date(2025, 12, 31, 0, 0, 0, 0, kst)) {
		t.Errorf("unexpected start %v", start)
	}
	if !end.Equal(time.Date(2026, 1, 1, 0, 0, 0, 0, kst)) {
		t.Errorf("unexpected end %v", end)
	}
}

func TestPolicyDueToday_UsesLocation(t *testing.T) {
	p := mustPolicy(t, []int{1}, kst)
	now := time.Date(2025, 5, 20, 12, 0, 0, 0, kst)
	e := Reconstruct("e", "n", "u", 1, time.Date(2025, 5, 20, 8, 0, 0, 0, kst), nil)
	if got := p.DueToday([]Entry{e}, now); len(got) != 1 {
		t.Errorf("expected 1 entry, got %d", len(got))
	}
}

// --- Open ---

func TestOpen(t *testing.T) {
	base := time.Date(2025, 5, 20, 0, 0, 0, 0, kst)
	at := base
	entries := []Entry{
		Reconstruct("c", "n", "u", 3, base.Add(72*time.Hour), nil),
		Reconstruct("a", "n", "u", 1, base.Add(24*time.Hour), &at),
		Reconstruct("b", "n", "u", 2, base.Add(48*time.Hour), nil),
	}
	got := Open(entries)
	if len(got) != 2 || got[0].ID() != "b" || got[1].ID() != "c" {
		t.Fatalf("expected [b c], got %+v", got)
	}
}
