package schedule

import (
	"time"

	"classfit/internal/user"
)

const (
	// MaxSchedulesPerDay bounds how many class sessions can exist on one
	// calendar date.
	MaxSchedulesPerDay = 5

	// DefaultMaxTrainees is the roster capacity of a newly created schedule.
	DefaultMaxTrainees = 10
)

type Schedule struct {
	ID          string    `db:"id" json:"id"`
	Date        time.Time `db:"date" json:"date"`
	StartTime   string    `db:"start_time" json:"start_time"`
	EndTime     string    `db:"end_time" json:"end_time"`
	TrainerID   string    `db:"trainer_id" json:"trainer_id"`
	MaxTrainees int       `db:"max_trainees" json:"max_trainees"`
	CreatedAt   time.Time `db:"created_at" json:"created_at"`
	UpdatedAt   time.Time `db:"updated_at" json:"updated_at"`
}

// ScheduleWithTrainer carries the trainer's display fields joined in by the
// repository list queries.
type ScheduleWithTrainer struct {
	Schedule
	TrainerName  string `db:"trainer_name" json:"-"`
	TrainerEmail string `db:"trainer_email" json:"-"`
}

// ScheduleDetails is the read model returned to clients: trainer and trainee
// references resolved to display-safe summaries, never credentials.
type ScheduleDetails struct {
	Schedule
	Trainer  user.Summary   `json:"trainer"`
	Trainees []user.Summary `json:"trainees"`
}

type CreateScheduleRequest struct {
	Date      string `json:"date" binding:"required"`
	StartTime string `json:"start_time" binding:"required"`
	EndTime   string `json:"end_time" binding:"required"`
	TrainerID string `json:"trainer_id" binding:"required"`
}

// NormalizeDate strips the time-of-day so all day-scoped queries work on the
// half-open interval [date, date+24h).
func NormalizeDate(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// ParseDate accepts a plain date or an RFC 3339 timestamp and normalizes it
// to midnight UTC.
func ParseDate(s string) (time.Time, error) {
	if t, err := time.Parse("2006-01-02", s); err == nil {
		return NormalizeDate(t), nil
	}
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return time.Time{}, err
	}
	return NormalizeDate(t), nil
}
