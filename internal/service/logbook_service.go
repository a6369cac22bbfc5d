package service

import (
	"context"
	"database/sql"
	"errors"

	"go.uber.org/zap"

	"github.com/skyward-dev/flightline-api/internal/dto"
	"github.com/skyward-dev/flightline-api/internal/models"
	appErrors "github.com/skyward-dev/flightline-api/pkg/errors"
)

// PassingGrade is the lowest grade that meets the exercise objective.
const PassingGrade = 1.0

type logbookBookingRepository interface {
	ListByStudent(ctx context.Context, studentID string) ([]models.BookingDetail, error)
}

type logbookStudentRepository interface {
	FindByID(ctx context.Context, id string) (*models.Student, error)
}

// LogbookService assembles a student's session history.
type LogbookService struct {
	bookings logbookBookingRepository
	students logbookStudentRepository
	logger   *zap.Logger
}

// NewLogbookService wires the logbook dependencies.
func NewLogbookService(bookings logbookBookingRepository, students logbookStudentRepository, logger *zap.Logger) *LogbookService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &LogbookService{bookings: bookings, students: students, logger: logger}
}

// Sessions returns the student's logbook, newest first. Each session's
// status variant is decided here, once; handlers and clients never inspect
// raw booking fields.
func (s *LogbookService) Sessions(ctx context.Context, studentID string) (*dto.LogbookResponse, error) {
	if _, err := s.students.FindByID(ctx, studentID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "student not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load student")
	}

	bookings, err := s.bookings.ListByStudent(ctx, studentID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load sessions")
	}

	resp := &dto.LogbookResponse{StudentID: studentID, Sessions: assembleSessions(bookings)}
	return resp, nil
}

// assembleSessions maps bookings to logbook entries. Ungraded no-shows are
// dropped: they count toward suspension but are not sessions.
func assembleSessions(bookings []models.BookingDetail) []models.Session {
	sessions := make([]models.Session, 0, len(bookings))
	for _, b := range bookings {
		status, ok := resolveStatus(b)
		if !ok {
			continue
		}
		sessions = append(sessions, models.Session{
			BookingID:    b.ID,
			ExerciseID:   b.ExerciseID,
			ExerciseName: b.ExerciseName,
			StartAt:      b.StartAt,
			EndAt:        b.EndAt,
			Status:       status,
		})
	}
	return sessions
}

func resolveStatus(b models.BookingDetail) (models.SessionStatus, bool) {
	if b.GradedAt != nil && b.Grade != nil {
		passed := *b.Grade >= PassingGrade
		return models.GradedStatus(*b.Grade, b.GradeNotes, *b.GradedAt, passed), true
	}
	if b.Active {
		return models.BookedStatus(models.BookingRef{
			BookingID:    b.ID,
			InstructorID: b.InstructorID,
			Confirmed:    b.Confirmed,
		}), true
	}
	return models.SessionStatus{}, false
}
