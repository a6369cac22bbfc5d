package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"go.uber.org/zap"

	"github.com/skyward-dev/flightline-api/internal/dto"
	"github.com/skyward-dev/flightline-api/internal/models"
	appErrors "github.com/skyward-dev/flightline-api/pkg/errors"
	"github.com/skyward-dev/flightline-api/pkg/jobs"
)

type bookingRepository interface {
	ListActiveForParticipants(ctx context.Context, exec sqlx.QueryerContext, instructorID, studentID string) ([]models.BookingDetail, error)
	FindDetail(ctx context.Context, id string) (*models.BookingDetail, error)
	CreateWithTx(ctx context.Context, exec sqlx.ExtContext, booking *models.Booking) error
	DeactivateWithTx(ctx context.Context, exec sqlx.ExtContext, id string, noShow bool) error
	BeginTxx(ctx context.Context) (*sqlx.Tx, error)
}

type bookingSlotRepository interface {
	CreateWithTx(ctx context.Context, exec sqlx.ExtContext, slot *models.Slot) error
	UpdateStatusWithTx(ctx context.Context, exec sqlx.ExtContext, id string, status models.SlotStatus, info string) error
	DeleteWithTx(ctx context.Context, exec sqlx.ExtContext, id string) error
}

type bookingStudentRepository interface {
	FindByID(ctx context.Context, id string) (*models.Student, error)
	IncrementNoShow(ctx context.Context, exec sqlx.ExtContext, id string) (int, error)
}

type bookingExerciseRepository interface {
	FindByID(ctx context.Context, id string) (*models.Exercise, error)
}

type suspensionEnqueuer interface {
	Enqueue(job jobs.Job) error
}

// SuspensionJobType identifies queued student suspension work.
const SuspensionJobType = "student.suspend"

// SuspensionPayload carries the student to suspend.
type SuspensionPayload struct {
	StudentID   string `json:"student_id"`
	NoShowCount int    `json:"no_show_count"`
}

// BookingServiceConfig tunes booking policy.
type BookingServiceConfig struct {
	NoShowSuspendThreshold int
	CancellationGrace      time.Duration
}

// BookingService creates and cancels bookings, guarding both participants
// against double-booking.
type BookingService struct {
	bookings  bookingRepository
	slots     bookingSlotRepository
	students  bookingStudentRepository
	exercises bookingExerciseRepository
	queue     suspensionEnqueuer
	cache     *CacheService
	metrics   *MetricsService
	validator *validator.Validate
	logger    *zap.Logger
	cfg       BookingServiceConfig
}

// NewBookingService wires the booking dependencies.
func NewBookingService(bookings bookingRepository, slots bookingSlotRepository, students bookingStudentRepository, exercises bookingExerciseRepository, queue suspensionEnqueuer, cache *CacheService, metrics *MetricsService, validate *validator.Validate, logger *zap.Logger, cfg BookingServiceConfig) *BookingService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.NoShowSuspendThreshold <= 1 {
		cfg.NoShowSuspendThreshold = 2
	}
	if cfg.CancellationGrace <= 0 {
		cfg.CancellationGrace = 24 * time.Hour
	}
	return &BookingService{
		bookings:  bookings,
		slots:     slots,
		students:  students,
		exercises: exercises,
		queue:     queue,
		cache:     cache,
		metrics:   metrics,
		validator: validate,
		logger:    logger,
		cfg:       cfg,
	}
}

// Create books an exercise for a student on the requested interval. The
// conflict check and both inserts run inside one transaction so concurrent
// requests cannot both pass the check and land overlapping bookings.
func (s *BookingService) Create(ctx context.Context, req dto.CreateBookingRequest) (*dto.BookingResponse, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid booking payload")
	}
	if !req.StartAt.Before(req.EndAt) {
		return nil, appErrors.Clone(appErrors.ErrValidation, "booking must end after it starts")
	}

	student, err := s.students.FindByID(ctx, req.StudentID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "student not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load student")
	}
	if student.Standing == models.StandingSuspended {
		return nil, appErrors.Clone(appErrors.ErrSuspended, fmt.Sprintf("%s is suspended and cannot be booked", student.FullName))
	}

	exercise, err := s.exercises.FindByID(ctx, req.ExerciseID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "exercise not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load exercise")
	}
	if exercise.CourseID != req.CourseID {
		return nil, appErrors.Clone(appErrors.ErrValidation, "exercise does not belong to this course")
	}

	tx, err := s.bookings.BeginTxx(ctx)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to open booking transaction")
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	existing, err := s.bookings.ListActiveForParticipants(ctx, tx, req.InstructorID, req.StudentID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load active bookings")
	}
	if conflict := findConflict(existing, req.StartAt, req.EndAt); conflict != nil {
		// The typed conflict error stays wrapped so the handler can surface
		// the offending booking in the 409 body.
		err = appErrors.Wrap(conflict, appErrors.ErrBookingConflict.Code, appErrors.ErrBookingConflict.Status, conflict.Error())
		s.metrics.RecordBookingConflict()
		s.logger.Info("booking rejected",
			zap.String("instructor_id", req.InstructorID),
			zap.String("student_id", req.StudentID),
			zap.String("conflict_booking_id", conflict.Conflict.ID),
		)
		return nil, err
	}

	year, week := req.StartAt.ISOWeek()
	slotStatus := models.SlotStatusTentative
	if req.Confirmed {
		slotStatus = models.SlotStatusBooked
	}
	slot := models.Slot{
		ID:        uuid.NewString(),
		CourseID:  req.CourseID,
		StudentID: req.StudentID,
		Year:      year,
		Week:      week,
		StartAt:   req.StartAt,
		EndAt:     req.EndAt,
		Status:    slotStatus,
	}
	if err = s.slots.CreateWithTx(ctx, tx, &slot); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to reserve slot")
	}

	booking := models.Booking{
		ID:           uuid.NewString(),
		CourseID:     req.CourseID,
		StudentID:    req.StudentID,
		InstructorID: req.InstructorID,
		ExerciseID:   req.ExerciseID,
		SlotID:       slot.ID,
		Confirmed:    req.Confirmed,
		Active:       true,
	}
	if err = s.bookings.CreateWithTx(ctx, tx, &booking); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create booking")
	}

	if err = tx.Commit(); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to commit booking")
	}

	s.metrics.RecordBookingCreated()
	s.invalidateCourse(ctx, req.CourseID)
	s.logger.Info("booking created",
		zap.String("booking_id", booking.ID),
		zap.String("student_id", req.StudentID),
		zap.String("instructor_id", req.InstructorID),
		zap.Bool("confirmed", req.Confirmed),
	)
	return &dto.BookingResponse{Booking: booking, Slot: slot}, nil
}

// findConflict returns the first active booking whose interval touches the
// candidate. Intervals are boundary-inclusive: a booking ending at 11:00
// blocks one starting at 11:00. The snapshot already covers both the
// instructor's and the student's bookings, so one scan protects both sides.
func findConflict(existing []models.BookingDetail, startAt, endAt time.Time) *models.BookingConflictError {
	for i := range existing {
		if existing[i].OverlapsInterval(startAt, endAt) {
			return &models.BookingConflictError{Conflict: existing[i]}
		}
	}
	return nil
}

// Cancel releases a booking. Inside the grace window before the session the
// slot is handed back as an open posting; past it the slot is removed with
// the booking.
func (s *BookingService) Cancel(ctx context.Context, id string) error {
	detail, err := s.bookings.FindDetail(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return appErrors.Clone(appErrors.ErrNotFound, "booking not found")
		}
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load booking")
	}
	if !detail.Active {
		return appErrors.Clone(appErrors.ErrPreconditionFailed, "booking is no longer active")
	}

	tx, err := s.bookings.BeginTxx(ctx)
	if err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to open cancel transaction")
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	if err = s.bookings.DeactivateWithTx(ctx, tx, id, false); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to cancel booking")
	}

	if time.Until(detail.StartAt) >= s.cfg.CancellationGrace {
		err = s.slots.UpdateStatusWithTx(ctx, tx, detail.SlotID, models.SlotStatusOpen, "")
	} else {
		err = s.slots.DeleteWithTx(ctx, tx, detail.SlotID)
	}
	if err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to release slot")
	}

	if err = tx.Commit(); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to commit cancellation")
	}

	s.metrics.RecordBookingCancelled()
	s.invalidateCourse(ctx, detail.CourseID)
	s.logger.Info("booking cancelled", zap.String("booking_id", id), zap.String("slot_id", detail.SlotID))
	return nil
}

// RecordNoShow marks the student absent for a booking, releases the slot,
// and queues a suspension once the no-show count crosses the threshold.
func (s *BookingService) RecordNoShow(ctx context.Context, id string) error {
	detail, err := s.bookings.FindDetail(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return appErrors.Clone(appErrors.ErrNotFound, "booking not found")
		}
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load booking")
	}
	if !detail.Active {
		return appErrors.Clone(appErrors.ErrPreconditionFailed, "booking is no longer active")
	}

	tx, err := s.bookings.BeginTxx(ctx)
	if err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to open no-show transaction")
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	if err = s.bookings.DeactivateWithTx(ctx, tx, id, true); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to record no-show")
	}
	if err = s.slots.DeleteWithTx(ctx, tx, detail.SlotID); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to release slot")
	}

	var count int
	count, err = s.students.IncrementNoShow(ctx, tx, detail.StudentID)
	if err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update no-show count")
	}

	if err = tx.Commit(); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to commit no-show")
	}

	suspend := count >= s.cfg.NoShowSuspendThreshold
	s.metrics.RecordNoShow(suspend)
	if suspend && s.queue != nil {
		job := jobs.Job{
			ID:      uuid.NewString(),
			Type:    SuspensionJobType,
			Payload: SuspensionPayload{StudentID: detail.StudentID, NoShowCount: count},
		}
		if qErr := s.queue.Enqueue(job); qErr != nil {
			s.logger.Error("failed to queue suspension",
				zap.String("student_id", detail.StudentID),
				zap.Error(qErr),
			)
		}
	}

	s.invalidateCourse(ctx, detail.CourseID)
	s.logger.Info("no-show recorded",
		zap.String("booking_id", id),
		zap.String("student_id", detail.StudentID),
		zap.Int("no_show_count", count),
		zap.Bool("suspension_queued", suspend),
	)
	return nil
}

// Find returns one booking with its slot detail.
func (s *BookingService) Find(ctx context.Context, id string) (*models.BookingDetail, error) {
	detail, err := s.bookings.FindDetail(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "booking not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load booking")
	}
	return detail, nil
}

func (s *BookingService) invalidateCourse(ctx context.Context, courseID string) {
	if s.cache == nil {
		return
	}
	_ = s.cache.Invalidate(ctx, fmt.Sprintf("roster:%s:*", courseID))
	_ = s.cache.Invalidate(ctx, fmt.Sprintf("grid:%s:*", courseID))
}
