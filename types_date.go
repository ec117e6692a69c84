package profit

import "github.com/MauererM/profit/date"

// Date is re-exported so that most callers only need this package.
type Date = date.Date

// Timeline is re-exported so that most callers only need this package.
type Timeline = date.Timeline

// Today returns the current date.
func Today() Date { return date.Today() }

// NewTimeline builds the inclusive timeline spanning [from..to].
func NewTimeline(from, to Date) (Timeline, error) { return date.NewTimeline(from, to) }

// ParseDate parses a Date from a string in ISO-8601 format.
func ParseDate(s string) (Date, error) { return date.Parse(s) }
