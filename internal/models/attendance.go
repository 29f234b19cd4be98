package models

// AttendanceStatus is the recorded state of one session attendance.
type AttendanceStatus string

const (
	StatusPresent AttendanceStatus = "present"
	StatusAbsent  AttendanceStatus = "absent"
	// StatusPending is never stored; it is the answer for a (date, classId)
	// pair with no record.
	StatusPending AttendanceStatus = "pending"
)

// Storable reports whether the status may be written to the ledger.
func (s AttendanceStatus) Storable() bool {
	return s == StatusPresent || s == StatusAbsent
}

// AttendanceRecord is one ledger entry. (Date, ClassID) is unique: marking
// the same pair again replaces the prior record.
type AttendanceRecord struct {
	Date      string           `json:"date"`
	ClassID   string           `json:"classId"`
	Subject   string           `json:"subject"`
	Status    AttendanceStatus `json:"status"`
	Timestamp int64            `json:"timestamp"`
}

// OverallStats aggregates the whole ledger.
type OverallStats struct {
	Total      int `json:"total"`
	Present    int `json:"present"`
	Percentage int `json:"percentage"`
}

// SubjectStats aggregates the ledger for one subject.
type SubjectStats struct {
	Subject    string `json:"subject"`
	Present    int    `json:"present"`
	Total      int    `json:"total"`
	Percentage int    `json:"percentage"`
}

// HistoryDay groups ledger records for a single date.
type HistoryDay struct {
	Date    string             `json:"date"`
	Records []AttendanceRecord `json:"records"`
}
