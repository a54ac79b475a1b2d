package schedule

import (
	"context"
	"errors"
	"fmt"

	"classfit/internal/logger"
	"classfit/internal/metrics"
	"classfit/internal/user"
)

var (
	ErrScheduleNotFound  = errors.New("schedule not found")
	ErrTrainerNotFound   = errors.New("trainer not found or user is not a trainer")
	ErrDailyLimitReached = errors.New("daily schedule limit reached")
	ErrInvalidDate       = errors.New("invalid date")
	ErrAlreadyBooked     = errors.New("trainee already booked this schedule")
	ErrScheduleFull      = errors.New("schedule is full")
	ErrTimeConflict      = errors.New("trainee already booked at this time slot")
	ErrNotBooked         = errors.New("trainee has not booked this schedule")
)

// Mailer queues outbound notifications. Satisfied by email.Service.
type Mailer interface {
	Send(ctx context.Context, to, name, subject, body string) error
}

type Service interface {
	Create(ctx context.Context, req CreateScheduleRequest) (*ScheduleDetails, error)
	List(ctx context.Context, callerID string, callerRole user.Role) ([]ScheduleDetails, error)
	ListByDate(ctx context.Context, callerID string, callerRole user.Role, date string) ([]ScheduleDetails, error)
	Book(ctx context.Context, scheduleID, traineeID string) (*ScheduleDetails, error)
	Cancel(ctx context.Context, scheduleID, traineeID string) (*ScheduleDetails, error)
}

type service struct {
	repo     Repository
	userRepo user.Repository
	mailer   Mailer
}

func NewService(repo Repository, userRepo user.Repository, mailer Mailer) Service {
	return &service{
		repo:     repo,
		userRepo: userRepo,
		mailer:   mailer,
	}
}

func (s *service) Create(ctx context.Context, req CreateScheduleRequest) (*ScheduleDetails, error) {
	trainer, err := s.userRepo.FindByID(ctx, req.TrainerID)
	if err != nil || trainer.Role != user.RoleTrainer {
		return nil, ErrTrainerNotFound
	}

	day, err := ParseDate(req.Date)
	if err != nil {
		return nil, ErrInvalidDate
	}

	count, err := s.repo.CountForDay(ctx, day)
	if err != nil {
		return nil, err
	}
	if count >= MaxSchedulesPerDay {
		return nil, ErrDailyLimitReached
	}

	created, err := s.repo.Create(ctx, day, req.StartTime, req.EndTime, req.TrainerID, DefaultMaxTrainees)
	if err != nil {
		return nil, err
	}

	metrics.RecordScheduleCreated()

	return &ScheduleDetails{
		Schedule: *created,
		Trainer:  user.Summary{ID: trainer.ID, Name: trainer.Name, Email: trainer.Email},
		Trainees: []user.Summary{},
	}, nil
}

// List returns all schedules for admins and trainees; trainers only see the
// schedules they teach.
func (s *service) List(ctx context.Context, callerID string, callerRole user.Role) ([]ScheduleDetails, error) {
	var (
		schedules []ScheduleWithTrainer
		err       error
	)

	switch callerRole {
	case user.RoleTrainer:
		schedules, err = s.repo.ListByTrainer(ctx, callerID)
	case user.RoleAdmin, user.RoleTrainee:
		schedules, err = s.repo.ListAll(ctx)
	default:
		schedules, err = s.repo.ListAll(ctx)
	}
	if err != nil {
		return nil, err
	}

	return s.resolveDetails(ctx, schedules)
}

func (s *service) ListByDate(ctx context.Context, callerID string, callerRole user.Role, date string) ([]ScheduleDetails, error) {
	day, err := ParseDate(date)
	if err != nil {
		return nil, ErrInvalidDate
	}

	var schedules []ScheduleWithTrainer
	switch callerRole {
	case user.RoleTrainer:
		schedules, err = s.repo.ListForDayByTrainer(ctx, day, callerID)
	case user.RoleAdmin, user.RoleTrainee:
		schedules, err = s.repo.ListForDay(ctx, day)
	default:
		schedules, err = s.repo.ListForDay(ctx, day)
	}
	if err != nil {
		return nil, err
	}

	return s.resolveDetails(ctx, schedules)
}

// Book runs the rule checks in a fixed order so clients get stable failure
// messages, then lets AddTrainee re-verify capacity and membership under the
// schedule row lock.
func (s *service) Book(ctx context.Context, scheduleID, traineeID string) (*ScheduleDetails, error) {
	sched, err := s.repo.GetByID(ctx, scheduleID)
	if err != nil {
		return nil, err
	}

	booked, err := s.repo.IsBooked(ctx, scheduleID, traineeID)
	if err != nil {
		return nil, err
	}
	if booked {
		return nil, ErrAlreadyBooked
	}

	size, err := s.repo.RosterSize(ctx, scheduleID)
	if err != nil {
		return nil, err
	}
	if size >= sched.MaxTrainees {
		return nil, ErrScheduleFull
	}

	busy, err := s.repo.TraineeBusyAt(ctx, NormalizeDate(sched.Date), sched.StartTime, traineeID)
	if err != nil {
		return nil, err
	}
	if busy {
		return nil, ErrTimeConflict
	}

	if err := s.repo.AddTrainee(ctx, scheduleID, traineeID); err != nil {
		return nil, err
	}

	metrics.RecordBooking("confirmed")
	s.notify(ctx, traineeID, "Class booking confirmed",
		fmt.Sprintf("Your class on %s at %s is booked.", sched.Date.Format("Jan 2, 2006"), sched.StartTime))

	return s.details(ctx, scheduleID)
}

func (s *service) Cancel(ctx context.Context, scheduleID, traineeID string) (*ScheduleDetails, error) {
	sched, err := s.repo.GetByID(ctx, scheduleID)
	if err != nil {
		return nil, err
	}

	if err := s.repo.RemoveTrainee(ctx, scheduleID, traineeID); err != nil {
		return nil, err
	}

	metrics.RecordBookingCancellation()
	s.notify(ctx, traineeID, "Class booking cancelled",
		fmt.Sprintf("Your booking for the class on %s at %s was cancelled.", sched.Date.Format("Jan 2, 2006"), sched.StartTime))

	return s.details(ctx, scheduleID)
}

func (s *service) details(ctx context.Context, scheduleID string) (*ScheduleDetails, error) {
	sched, err := s.repo.GetByID(ctx, scheduleID)
	if err != nil {
		return nil, err
	}

	trainer, err := s.userRepo.FindByID(ctx, sched.TrainerID)
	if err != nil {
		return nil, err
	}

	roster, err := s.repo.Roster(ctx, scheduleID)
	if err != nil {
		return nil, err
	}
	if roster == nil {
		roster = []user.Summary{}
	}

	return &ScheduleDetails{
		Schedule: *sched,
		Trainer:  user.Summary{ID: trainer.ID, Name: trainer.Name, Email: trainer.Email},
		Trainees: roster,
	}, nil
}

func (s *service) resolveDetails(ctx context.Context, schedules []ScheduleWithTrainer) ([]ScheduleDetails, error) {
	details := make([]ScheduleDetails, 0, len(schedules))
	for _, sched := range schedules {
		roster, err := s.repo.Roster(ctx, sched.ID)
		if err != nil {
			return nil, err
		}
		if roster == nil {
			roster = []user.Summary{}
		}
		details = append(details, ScheduleDetails{
			Schedule: sched.Schedule,
			Trainer:  user.Summary{ID: sched.TrainerID, Name: sched.TrainerName, Email: sched.TrainerEmail},
			Trainees: roster,
		})
	}
	return details, nil
}

// notify is best-effort: a booking stands even if the email queue is down.
func (s *service) notify(ctx context.Context, traineeID, subject, body string) {
	if s.mailer == nil {
		return
	}
	trainee, err := s.userRepo.FindByID(ctx, traineeID)
	if err != nil {
		logger.WithError(err).Error("skipping notification, trainee lookup failed")
		return
	}
	if err := s.mailer.Send(ctx, trainee.Email, trainee.Name, subject, body); err != nil {
		logger.WithError(err).Error("failed to queue notification email")
	}
}
