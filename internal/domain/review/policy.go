package review

import (
	"fmt"
	"sort"
	"time"
)

// Day is the length of one offset step.
const Day = 24 * time.Hour

// DefaultOffsets are the review offsets in days after note creation.
var DefaultOffsets = []int{3, 7, 14, 30}

// IDFunc generates entry identifiers.
type IDFunc func() string

// Policy holds the stage offsets and the location used to cut days.
// The same location must serve both schedule creation and due-today queries.
type Policy struct {
	offsets []int
	loc     *time.Location
}

// NewPolicy validates offsets (non-empty, positive, strictly ascending) and binds a
// location. A nil location means time.Local.
func NewPolicy(offsetsDays []int, loc *time.Location) (Policy, error) {
	if len(offsetsDays) == 0 {
		return Policy{}, fmt.Errorf("review offsets are required")
	}
	for i, d := range offsetsDays {
		if d <= 0 {
			return Policy{}, fmt.Errorf("review offset %d must be positive, got %d", i, d)
		}
		if i > 0 && d <= offsetsDays[i-1] {
			return Policy{}, fmt.Errorf("review offsets must be strictly ascending, got %v", offsetsDays)
		}
	}
	if loc == nil {
		loc = time.Local
	}
	offsets := make([]int, len(offsetsDays))
	copy(offsets, offsetsDays)
	return Policy{offsets: offsets, loc: loc}, nil
}

// DefaultPolicy returns the 3/7/14/30 day policy in the local timezone.
func DefaultPolicy() Policy {
	p, _ := NewPolicy(DefaultOffsets, time.Local)
	return p
}

// Offsets returns a copy of the day offsets.
func (p Policy) Offsets() []int {
	out := make([]int, len(p.offsets))
	copy(out, p.offsets)
	return out
}

// Location returns the day-cutting location.
func (p Policy) Location() *time.Location {
	if p.loc == nil {
		return time.Local
	}
	return p.loc
}

// Initialize creates one pending entry per offset: stage i+1 is due at now + offset[i] days.
// The whole set is returned at once so callers can persist it as a unit.
func (p Policy) Initialize(noteID, userID string, now time.Time, newID IDFunc) []Entry {
	base := now.In(p.Location())
	entries := make([]Entry, len(p.offsets))
	for i, d := range p.offsets {
		entries[i] = Entry{
			id:     newID(),
			noteID: noteID,
			userID: userID,
			stage:  i + 1,
			dueAt:  base.Add(time.Duration(d) * Day),
		}
	}
	return entries
}

// DueToday returns the pending entries due on now's calendar day in the policy location.
func (p Policy) DueToday(entries []Entry, now time.Time) []Entry {
	return DueToday(entries, now, p.Location())
}

// DayWindow returns [local midnight of now, next local midnight) in loc.
func DayWindow(now time.Time, loc *time.Location) (start, end time.Time) {
	if loc == nil {
		loc = time.Local
	}
	local := now.In(loc)
	start = time.Date(local.Year(), local.Month(), local.Day(), 0, 0, 0, 0, loc)
	end = start.AddDate(0, 0, 1)
	return start, end
}

// DueToday filters a snapshot to pending entries with dueAt in DayWindow(now, loc),
// ordered by dueAt ascending.
func DueToday(entries []Entry, now time.Time, loc *time.Location) []Entry {
	start, end := DayWindow(now, loc)

	out := make([]Entry, 0, len(entries))
	for _, e := range entries {
		if e.Completed() {
			continue
		}
		if e.dueAt.Before(start) || !e.dueAt.Before(end) {
			continue
		}
		out = append(out, e)
	}
	sortByDue(out)
	return out
}

// Open returns the pending entries ordered by dueAt ascending.
func Open(entries []Entry) []Entry {
	out := make([]Entry, 0, len(entries))
	for _, e := range entries {
		if !e.Completed() {
			out = append(out, e)
		}
	}
	sortByDue(out)
	return out
}

func sortByDue(entries []Entry) {
	sort.SliceStable(entries, func(i, j int) bool { return entries[i].dueAt.Before(entries[j].dueAt) })
}
