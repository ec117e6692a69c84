package date

import (
	"fmt"
	"iter"
)

// Range represents an inclusive range of dates.
type Range struct{ From, To Date }

// Contains return true if date is included in the range (boundaries included).
func (r Range) Contains(date Date) bool { return !date.Before(r.From) && !date.After(r.To) }

// Days returns the inclusive number of days in the range.
func (r Range) Days() int { return r.To.Sub(r.From) + 1 }

func (r Range) String() string { return fmt.Sprintf("[%s..%s]", r.From, r.To) }

// InvalidRangeError reports date bounds that cannot form a timeline.
type InvalidRangeError struct{ From, To Date }

func (e *InvalidRangeError) Error() string {
	return fmt.Sprintf("invalid date range: start %s is after end %s", e.From, e.To)
}

// Timeline is the canonical ordered sequence of calendar days between two
// dates, inclusive on both ends. It is contiguous: one entry per day, no
// gaps, strictly increasing.
type Timeline struct {
	from Date
	days int
}

// NewTimeline builds the timeline spanning [from..to]. It returns an
// *InvalidRangeError when from is after to.
func NewTimeline(from, to Date) (Timeline, error) {
	if from.After(to) {
		return Timeline{}, &InvalidRangeError{From: from, To: to}
	}
	return Timeline{from: from, days: to.Sub(from) + 1}, nil
}

// Len returns the number of days in the timeline.
func (t Timeline) Len() int { return t.days }

// Start returns the first day of the timeline.
func (t Timeline) Start() Date { return t.from }

// End returns the last day of the timeline.
func (t Timeline) End() Date { return t.from.Add(t.days - 1) }

// Range returns the timeline bounds as a Range.
func (t Timeline) Range() Range { return Range{From: t.Start(), To: t.End()} }

// At returns the i-th day of the timeline.
func (t Timeline) At(i int) Date {
	if i < 0 || i >= t.days {
		panic(fmt.Sprintf("timeline index %d out of range [0..%d)", i, t.days))
	}
	return t.from.Add(i)
}

// Index returns the position of day in the timeline, or -1 if outside it.
func (t Timeline) Index(day Date) int {
	i := day.Sub(t.from)
	if i < 0 || i >= t.days {
		return -1
	}
	return i
}

// Contains reports whether day falls within the timeline.
func (t Timeline) Contains(day Date) bool { return t.Index(day) >= 0 }

// Days returns an iterator over all days of the timeline, in order.
func (t Timeline) Days() iter.Seq[Date] {
	return func(yield func(Date) bool) {
		for i := 0; i < t.days; i++ {
			if !yield(t.from.Add(i)) {
				return
			}
		}
	}
}
