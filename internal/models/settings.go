package models

// AppSettings is the process-wide, persisted settings singleton.
type AppSettings struct {
	NotificationsEnabled  bool `json:"notificationsEnabled"`
	ReminderMinutesBefore int  `json:"reminderMinutesBefore"`
}

// DefaultSettings returns the settings applied before the user changes anything.
func DefaultSettings() AppSettings {
	return AppSettings{NotificationsEnabled: true, ReminderMinutesBefore: 10}
}

// Notification is the payload handed to the notification sink. ClassID,
// Subject and Date are set only for per-class reminders, where they let the
// user act on the reminder (mark present, mark holiday).
type Notification struct {
	Title   string `json:"title"`
	Body    string `json:"body"`
	ClassID string `json:"classId,omitempty"`
	Subject string `json:"subject,omitempty"`
	Date    string `json:"date,omitempty"`
}
