package schedule

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"classfit/internal/user"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
)

type repository struct {
	db *sqlx.DB
}

func NewRepository(db *sqlx.DB) Repository {
	return &repository{db: db}
}

const scheduleColumns = `id, date, start_time, end_time, trainer_id, max_trainees, created_at, updated_at`

const scheduleWithTrainerQuery = `
	SELECT
		s.id,
		s.date,
		s.start_time,
		s.end_time,
		s.trainer_id,
		s.max_trainees,
		s.created_at,
		s.updated_at,
		u.name AS trainer_name,
		u.email AS trainer_email
	FROM schedules s
	JOIN users u ON s.trainer_id = u.id
`

func (r *repository) Create(ctx context.Context, date time.Time, startTime, endTime, trainerID string, maxTrainees int) (*Schedule, error) {
	query := `
		INSERT INTO schedules (id, date, start_time, end_time, trainer_id, max_trainees)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING ` + scheduleColumns

	var s Schedule
	err := r.db.GetContext(ctx, &s, query, uuid.NewString(), date, startTime, endTime, trainerID, maxTrainees)
	if err != nil {
		return nil, err
	}

	return &s, nil
}

func (r *repository) GetByID(ctx context.Context, id string) (*Schedule, error) {
	query := `SELECT ` + scheduleColumns + ` FROM schedules WHERE id = $1`

	var s Schedule
	err := r.db.GetContext(ctx, &s, query, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrScheduleNotFound
		}
		return nil, err
	}

	return &s, nil
}

func (r *repository) CountForDay(ctx context.Context, day time.Time) (int, error) {
	query := `SELECT COUNT(*) FROM schedules WHERE date >= $1 AND date < $2`

	var count int
	err := r.db.GetContext(ctx, &count, query, day, day.Add(24*time.Hour))
	if err != nil {
		return 0, err
	}

	return count, nil
}

func (r *repository) ListAll(ctx context.Context) ([]ScheduleWithTrainer, error) {
	query := scheduleWithTrainerQuery + ` ORDER BY s.date, s.start_time`

	var schedules []ScheduleWithTrainer
	err := r.db.SelectContext(ctx, &schedules, query)
	if err != nil {
		return nil, err
	}

	return schedules, nil
}

func (r *repository) ListByTrainer(ctx context.Context, trainerID string) ([]ScheduleWithTrainer, error) {
	query := scheduleWithTrainerQuery + ` WHERE s.trainer_id = $1 ORDER BY s.date, s.start_time`

	var schedules []ScheduleWithTrainer
	err := r.db.SelectContext(ctx, &schedules, query, trainerID)
	if err != nil {
		return nil, err
	}

	return schedules, nil
}

func (r *repository) ListForDay(ctx context.Context, day time.Time) ([]ScheduleWithTrainer, error) {
	query := scheduleWithTrainerQuery + ` WHERE s.date >= $1 AND s.date < $2 ORDER BY s.start_time`

	var schedules []ScheduleWithTrainer
	err := r.db.SelectContext(ctx, &schedules, query, day, day.Add(24*time.Hour))
	if err != nil {
		return nil, err
	}

	return schedules, nil
}

func (r *repository) ListForDayByTrainer(ctx context.Context, day time.Time, trainerID string) ([]ScheduleWithTrainer, error) {
	query := scheduleWithTrainerQuery + ` WHERE s.date >= $1 AND s.date < $2 AND s.trainer_id = $3 ORDER BY s.start_time`

	var schedules []ScheduleWithTrainer
	err := r.db.SelectContext(ctx, &schedules, query, day, day.Add(24*time.Hour), trainerID)
	if err != nil {
		return nil, err
	}

	return schedules, nil
}

func (r *repository) Roster(ctx context.Context, scheduleID string) ([]user.Summary, error) {
	query := `
		SELECT u.id, u.name, u.email
		FROM schedule_trainees st
		JOIN users u ON st.trainee_id = u.id
		WHERE st.schedule_id = $1
		ORDER BY st.created_at
	`

	var roster []user.Summary
	err := r.db.SelectContext(ctx, &roster, query, scheduleID)
	if err != nil {
		return nil, err
	}

	return roster, nil
}

func (r *repository) RosterSize(ctx context.Context, scheduleID string) (int, error) {
	query := `SELECT COUNT(*) FROM schedule_trainees WHERE schedule_id = $1`

	var count int
	err := r.db.GetContext(ctx, &count, query, scheduleID)
	if err != nil {
		return 0, err
	}

	return count, nil
}

func (r *repository) IsBooked(ctx context.Context, scheduleID, traineeID string) (bool, error) {
	query := `
		SELECT EXISTS(
			SELECT 1 FROM schedule_trainees
			WHERE schedule_id = $1 AND trainee_id = $2
		)
	`

	var exists bool
	err := r.db.GetContext(ctx, &exists, query, scheduleID, traineeID)
	if err != nil {
		return false, err
	}

	return exists, nil
}

// TraineeBusyAt reports whether the trainee already holds a booking on the
// given day with the exact same start-time string. Overlap is string equality,
// not interval math: "09:00" and "09:15" never conflict.
func (r *repository) TraineeBusyAt(ctx context.Context, day time.Time, startTime, traineeID string) (bool, error) {
	query := `
		SELECT EXISTS(
			SELECT 1
			FROM schedules s
			JOIN schedule_trainees st ON st.schedule_id = s.id
			WHERE s.date >= $1 AND s.date < $2
			  AND s.start_time = $3
			  AND st.trainee_id = $4
		)
	`

	var exists bool
	err := r.db.GetContext(ctx, &exists, query, day, day.Add(24*time.Hour), startTime, traineeID)
	if err != nil {
		return false, err
	}

	return exists, nil
}

// AddTrainee appends the trainee while holding a row lock on the schedule, so
// concurrent bookings cannot push the roster past max_trainees.
func (r *repository) AddTrainee(ctx context.Context, scheduleID, traineeID string) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	var maxTrainees int
	err = tx.GetContext(ctx, &maxTrainees, `SELECT max_trainees FROM schedules WHERE id = $1 FOR UPDATE`, scheduleID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return ErrScheduleNotFound
		}
		return err
	}

	var booked bool
	err = tx.GetContext(ctx, &booked,
		`SELECT EXISTS(SELECT 1 FROM schedule_trainees WHERE schedule_id = $1 AND trainee_id = $2)`,
		scheduleID, traineeID)
	if err != nil {
		return err
	}
	if booked {
		return ErrAlreadyBooked
	}

	var count int
	err = tx.GetContext(ctx, &count, `SELECT COUNT(*) FROM schedule_trainees WHERE schedule_id = $1`, scheduleID)
	if err != nil {
		return err
	}
	if count >= maxTrainees {
		return ErrScheduleFull
	}

	if _, err := tx.ExecContext(ctx,
		`INSERT INTO schedule_trainees (schedule_id, trainee_id) VALUES ($1, $2)`,
		scheduleID, traineeID); err != nil {
		return err
	}

	if _, err := tx.ExecContext(ctx,
		`UPDATE schedules SET updated_at = now() WHERE id = $1`, scheduleID); err != nil {
		return err
	}

	return tx.Commit()
}

func (r *repository) RemoveTrainee(ctx context.Context, scheduleID, traineeID string) error {
	result, err := r.db.ExecContext(ctx,
		`DELETE FROM schedule_trainees WHERE schedule_id = $1 AND trainee_id = $2`,
		scheduleID, traineeID)
	if err != nil {
		return err
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rowsAffected == 0 {
		return ErrNotBooked
	}

	_, err = r.db.ExecContext(ctx, `UPDATE schedules SET updated_at = now() WHERE id = $1`, scheduleID)
	return err
}
