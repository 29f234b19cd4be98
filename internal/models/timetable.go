package models

import "time"

// DateLayout is the wire format for all calendar dates.
const DateLayout = "2006-01-02"

// TimeLayout is the wire format for wall-clock times within a day.
const TimeLayout = "15:04"

// Weekdays is the canonical Monday-first week backing every schedule.
var Weekdays = []time.Weekday{
	time.Monday,
	time.Tuesday,
	time.Wednesday,
	time.Thursday,
	time.Friday,
	time.Saturday,
	time.Sunday,
}

// DayName returns the stored English name for a weekday. time.Weekday's
// String is locale independent, which keeps the schedule join key stable.
func DayName(d time.Weekday) string { return d.String() }

// ParseDay maps a stored day name back to its weekday. The second return
// is false for unknown names.
func ParseDay(name string) (time.Weekday, bool) {
	for _, d := range Weekdays {
		if d.String() == name {
			return d, true
		}
	}
	return time.Sunday, false
}

// FormatDate renders a timestamp as its wire format calendar date.
func FormatDate(t time.Time) string { return t.Format(DateLayout) }

// ClassSession is one recurring class slot within a weekday.
type ClassSession struct {
	ID        string `json:"id"`
	Subject   string `json:"subject"`
	StartTime string `json:"startTime"`
	EndTime   string `json:"endTime"`
	Room      string `json:"room,omitempty"`
}

// DayTimetable holds the ordered classes for a single weekday.
type DayTimetable struct {
	Day     string         `json:"day"`
	Classes []ClassSession `json:"classes"`
}

// ExtraClass is a one-off session pinned to a specific date.
type ExtraClass struct {
	ID        string `json:"id"`
	Date      string `json:"date"`
	Subject   string `json:"subject"`
	StartTime string `json:"startTime"`
	EndTime   string `json:"endTime"`
	Room      string `json:"room,omitempty"`
}

// Holiday suppresses recurring and extra sessions on its date. Exams are
// not suppressed.
type Holiday struct {
	Date   string `json:"date"`
	Reason string `json:"reason,omitempty"`
}

// Exam is an assessment on a specific date, independent of holidays.
type Exam struct {
	ID      string `json:"id"`
	Date    string `json:"date"`
	Subject string `json:"subject"`
	Type    string `json:"type"`
	Time    string `json:"time,omitempty"`
	Room    string `json:"room,omitempty"`
}

// Timetable is the root schedule aggregate. Schedule always carries
// exactly seven day entries, Monday first.
type Timetable struct {
	ID           string         `json:"id"`
	Name         string         `json:"name"`
	Schedule     []DayTimetable `json:"schedule"`
	ExtraClasses []ExtraClass   `json:"extraClasses"`
	Holidays     []Holiday      `json:"holidays"`
	Exams        []Exam         `json:"exams"`
	CreatedAt    int64          `json:"createdAt"`
}

// DaySchedule returns the recurring classes for the given weekday, or nil
// when the schedule has no entry for it.
func (t *Timetable) DaySchedule(day time.Weekday) []ClassSession {
	if t == nil {
		return nil
	}
	name := DayName(day)
	for _, d := range t.Schedule {
		if d.Day == name {
			return d.Classes
		}
	}
	return nil
}

// IsHoliday reports whether the given wire-format date is marked as a holiday.
func (t *Timetable) IsHoliday(date string) bool {
	if t == nil {
		return false
	}
	for _, h := range t.Holidays {
		if h.Date == date {
			return true
		}
	}
	return false
}

// SessionKind distinguishes where a resolved session came from.
type SessionKind string

const (
	SessionRecurring SessionKind = "recurring"
	SessionExtra     SessionKind = "extra"
	SessionExam      SessionKind = "exam"
)

// ResolvedSession is a schedulable occurrence on a concrete date.
type ResolvedSession struct {
	ID        string      `json:"id"`
	Subject   string      `json:"subject"`
	StartTime string      `json:"startTime,omitempty"`
	EndTime   string      `json:"endTime,omitempty"`
	Room      string      `json:"room,omitempty"`
	Kind      SessionKind `json:"kind"`
}

// DayView bundles everything the calendar surfaces for one date.
type DayView struct {
	Date     string            `json:"date"`
	Holiday  bool              `json:"holiday"`
	Reason   string            `json:"reason,omitempty"`
	Sessions []ResolvedSession `json:"sessions"`
	Exams    []Exam            `json:"exams"`
}
