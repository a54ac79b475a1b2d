package schedule

import (
	"context"
	"time"

	"classfit/internal/user"
)

type Repository interface {
	Create(ctx context.Context, date time.Time, startTime, endTime, trainerID string, maxTrainees int) (*Schedule, error)
	GetByID(ctx context.Context, id string) (*Schedule, error)
	CountForDay(ctx context.Context, day time.Time) (int, error)

	ListAll(ctx context.Context) ([]ScheduleWithTrainer, error)
	ListByTrainer(ctx context.Context, trainerID string) ([]ScheduleWithTrainer, error)
	ListForDay(ctx context.Context, day time.Time) ([]ScheduleWithTrainer, error)
	ListForDayByTrainer(ctx context.Context, day time.Time, trainerID string) ([]ScheduleWithTrainer, error)

	Roster(ctx context.Context, scheduleID string) ([]user.Summary, error)
	RosterSize(ctx context.Context, scheduleID string) (int, error)
	IsBooked(ctx context.Context, scheduleID, traineeID string) (bool, error)
	TraineeBusyAt(ctx context.Context, day time.Time, startTime, traineeID string) (bool, error)

	AddTrainee(ctx context.Context, scheduleID, traineeID string) error
	RemoveTrainee(ctx context.Context, scheduleID, traineeID string) error
}
