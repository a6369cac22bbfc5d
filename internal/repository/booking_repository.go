package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/skyward-dev/flightline-api/internal/models"
)

const bookingDetailColumns = `b.id, b.course_id, b.student_id, b.instructor_id, b.exercise_id, b.slot_id,
        b.confirmed, b.active, b.no_show, b.grade, b.grade_notes, b.graded_at, b.cancelled_at, b.created_at, b.updated_at,
        sl.start_at, sl.end_at, sl.year, sl.week, st.full_name AS student_name, ex.name AS exercise_name`

const bookingDetailJoins = `FROM bookings b
        JOIN slots sl ON sl.id = b.slot_id
        JOIN students st ON st.id = b.student_id
        JOIN exercises ex ON ex.id = b.exercise_id`

// BookingRepository provides persistence for bookings.
type BookingRepository struct {
	db *sqlx.DB
}

// NewBookingRepository creates a new booking repository.
func NewBookingRepository(db *sqlx.DB) *BookingRepository {
	return &BookingRepository{db: db}
}

// ListActiveForParticipants returns active bookings touching either the
// instructor or the student. This is the snapshot the conflict detector
// scans; pass the booking transaction so the read and the insert share one
// view.
func (r *BookingRepository) ListActiveForParticipants(ctx context.Context, exec sqlx.QueryerContext, instructorID, studentID string) ([]models.BookingDetail, error) {
	if exec == nil {
		exec = r.db
	}
	query := fmt.Sprintf(`SELECT %s %s
        WHERE b.active = true AND (b.instructor_id = $1 OR b.student_id = $2)
        ORDER BY sl.start_at ASC`, bookingDetailColumns, bookingDetailJoins)
	var bookings []models.BookingDetail
	if err := sqlx.SelectContext(ctx, exec, &bookings, query, instructorID, studentID); err != nil {
		return nil, fmt.Errorf("list active bookings for participants: %w", err)
	}
	return bookings, nil
}

// ListWeek returns the bookings of a course week for grid overlays and
// export sheets.
func (r *BookingRepository) ListWeek(ctx context.Context, courseID string, year, week int) ([]models.BookingDetail, error) {
	query := fmt.Sprintf(`SELECT %s %s
        WHERE b.course_id = $1 AND sl.year = $2 AND sl.week = $3 AND b.active = true
        ORDER BY sl.start_at ASC`, bookingDetailColumns, bookingDetailJoins)
	var bookings []models.BookingDetail
	if err := r.db.SelectContext(ctx, &bookings, query, courseID, year, week); err != nil {
		return nil, fmt.Errorf("list week bookings: %w", err)
	}
	return bookings, nil
}

// ListByStudent returns all of a student's bookings, newest first, for
// logbook assembly. Ordinary cancellations are excluded, no-shows kept.
func (r *BookingRepository) ListByStudent(ctx context.Context, studentID string) ([]models.BookingDetail, error) {
	query := fmt.Sprintf(`SELECT %s %s
        WHERE b.student_id = $1 AND (b.active = true OR b.graded_at IS NOT NULL OR b.no_show = true)
        ORDER BY sl.start_at DESC`, bookingDetailColumns, bookingDetailJoins)
	var bookings []models.BookingDetail
	if err := r.db.SelectContext(ctx, &bookings, query, studentID); err != nil {
		return nil, fmt.Errorf("list student bookings: %w", err)
	}
	return bookings, nil
}

// FindDetail loads one booking with its slot interval.
func (r *BookingRepository) FindDetail(ctx context.Context, id string) (*models.BookingDetail, error) {
	query := fmt.Sprintf(`SELECT %s %s WHERE b.id = $1`, bookingDetailColumns, bookingDetailJoins)
	var detail models.BookingDetail
	if err := r.db.GetContext(ctx, &detail, query, id); err != nil {
		return nil, err
	}
	return &detail, nil
}

// CreateWithTx inserts a booking using an existing transaction so that slot
// and booking land atomically.
func (r *BookingRepository) CreateWithTx(ctx context.Context, exec sqlx.ExtContext, booking *models.Booking) error {
	if booking.ID == "" {
		booking.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	if booking.CreatedAt.IsZero() {
		booking.CreatedAt = now
	}
	booking.UpdatedAt = now

	const query = `INSERT INTO bookings (id, course_id, student_id, instructor_id, exercise_id, slot_id, confirmed, active, no_show, grade, grade_notes, graded_at, cancelled_at, created_at, updated_at)
        VALUES (:id, :course_id, :student_id, :instructor_id, :exercise_id, :slot_id, :confirmed, :active, :no_show, :grade, :grade_notes, :graded_at, :cancelled_at, :created_at, :updated_at)`
	if _, err := sqlx.NamedExecContext(ctx, exec, query, booking); err != nil {
		return fmt.Errorf("create booking: %w", err)
	}
	return nil
}

// DeactivateWithTx cancels a booking while retaining it for history. noShow
// marks the cancellation as attributed to student absence.
func (r *BookingRepository) DeactivateWithTx(ctx context.Context, exec sqlx.ExtContext, id string, noShow bool) error {
	now := time.Now().UTC()
	if _, err := exec.ExecContext(ctx,
		`UPDATE bookings SET active = false, no_show = $2, cancelled_at = $3, updated_at = $3 WHERE id = $1`,
		id, noShow, now); err != nil {
		return fmt.Errorf("deactivate booking: %w", err)
	}
	return nil
}

// BeginTxx exposes a transaction for multi-repository writes.
func (r *BookingRepository) BeginTxx(ctx context.Context) (*sqlx.Tx, error) {
	return r.db.BeginTxx(ctx, nil)
}
