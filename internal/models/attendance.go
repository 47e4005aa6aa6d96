package models

import "time"

// Attendance status labels.
const (
	StatusHadir = "hadir"
)

// Attendance is one record per (user, calendar day). The composite unique
// index is what guarantees at most one row per user per day, even when two
// scans race on the first check-in.
type Attendance struct {
	ID      uint       `gorm:"primaryKey"`
	UserID  uint       `gorm:"not null;uniqueIndex:idx_attendance_user_date"`
	Date    string     `gorm:"size:10;not null;uniqueIndex:idx_attendance_user_date"` // YYYY-MM-DD
	TimeIn  *time.Time
	TimeOut *time.Time
	Status  string     `gorm:"size:20;default:hadir"`

	CreatedAt time.Time
	UpdatedAt time.Time
}
