package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/skyward-dev/flightline-api/internal/models"
)

// StudentRepository manages persistence for course students and computes
// the per-student scheduling signals consumed by the ranker.
type StudentRepository struct {
	db *sqlx.DB
}

// NewStudentRepository constructs a StudentRepository.
func NewStudentRepository(db *sqlx.DB) *StudentRepository {
	return &StudentRepository{db: db}
}

// ListWithSignals returns the roster segment with derived signals. Rows come
// back in enrolment order; any ranking happens in the service layer. The
// signals are computed fresh on every fetch and never stored.
func (r *StudentRepository) ListWithSignals(ctx context.Context, courseID string, filter models.RosterFilter) ([]models.StudentWithSignals, error) {
	standing, err := standingForFilter(filter)
	if err != nil {
		return nil, err
	}

	const query = `SELECT s.id, s.course_id, s.full_name, s.callsign, s.standing, s.lessons_complete, s.no_show_count,
        s.last_session_at, s.graduated_at, s.created_at, s.updated_at,
        COALESCE(EXTRACT(DAY FROM NOW() - s.last_session_at)::int, 0) AS recency_days,
        (SELECT COUNT(*) FROM slots sl WHERE sl.student_id = s.id AND sl.status = '' AND sl.start_at > NOW()) AS slot_count,
        (SELECT COUNT(*) FROM bookings b WHERE b.student_id = s.id AND b.graded_at IS NOT NULL) AS activity_count,
        (SELECT COUNT(*) FROM bookings b WHERE b.student_id = s.id AND b.graded_at IS NOT NULL AND b.grade >= 1) AS completions,
        COALESCE(s.priority_score, 0) AS score,
        EXISTS (SELECT 1 FROM bookings b WHERE b.student_id = s.id AND b.active = true) AS has_active_booking
        FROM students s
        WHERE s.course_id = $1 AND s.standing = $2
        ORDER BY s.created_at ASC`

	var students []models.StudentWithSignals
	if err := r.db.SelectContext(ctx, &students, query, courseID, standing); err != nil {
		return nil, fmt.Errorf("list students with signals: %w", err)
	}
	return students, nil
}

// FindByID loads a single student.
func (r *StudentRepository) FindByID(ctx context.Context, id string) (*models.Student, error) {
	const query = `SELECT id, course_id, full_name, callsign, standing, lessons_complete, no_show_count, last_session_at, graduated_at, created_at, updated_at
        FROM students WHERE id = $1`
	var student models.Student
	if err := r.db.GetContext(ctx, &student, query, id); err != nil {
		return nil, err
	}
	return &student, nil
}

// IncrementNoShow bumps the student's no-show counter and returns the new
// total.
func (r *StudentRepository) IncrementNoShow(ctx context.Context, exec sqlx.ExtContext, id string) (int, error) {
	row := exec.QueryRowxContext(ctx,
		`UPDATE students SET no_show_count = no_show_count + 1, updated_at = $2 WHERE id = $1 RETURNING no_show_count`,
		id, time.Now().UTC())
	var count int
	if err := row.Scan(&count); err != nil {
		return 0, fmt.Errorf("increment no-show count: %w", err)
	}
	return count, nil
}

// Suspend moves a student to the suspended standing.
func (r *StudentRepository) Suspend(ctx context.Context, id string) error {
	if _, err := r.db.ExecContext(ctx,
		`UPDATE students SET standing = $2, updated_at = $3 WHERE id = $1`,
		id, models.StandingSuspended, time.Now().UTC()); err != nil {
		return fmt.Errorf("suspend student: %w", err)
	}
	return nil
}

// TouchLastSession stamps the student's most recent session time, feeding
// the recency signal.
func (r *StudentRepository) TouchLastSession(ctx context.Context, exec sqlx.ExtContext, id string, at time.Time) error {
	if _, err := exec.ExecContext(ctx,
		`UPDATE students SET last_session_at = $2, updated_at = $3 WHERE id = $1`,
		id, at, time.Now().UTC()); err != nil {
		return fmt.Errorf("touch last session: %w", err)
	}
	return nil
}

func standingForFilter(filter models.RosterFilter) (models.StudentStanding, error) {
	switch filter {
	case models.RosterFilterActive, "":
		return models.StandingActive, nil
	case models.RosterFilterOnHold:
		return models.StandingOnHold, nil
	case models.RosterFilterSuspended:
		return models.StandingSuspended, nil
	case models.RosterFilterGraduates:
		return models.StandingGraduated, nil
	}
	return "", fmt.Errorf("unknown roster filter %q", filter)
}
