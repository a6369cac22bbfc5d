package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/skyward-dev/flightline-api/internal/models"
)

// SlotRepository provides persistence for availability slots.
type SlotRepository struct {
	db *sqlx.DB
}

// NewSlotRepository creates a new slot repository.
func NewSlotRepository(db *sqlx.DB) *SlotRepository {
	return &SlotRepository{db: db}
}

// ListWeek returns the slots for a course-week bucket in roster arrival
// order: students in enrolment order, each student's slots chronological.
// The lane packer depends on this ordering.
func (r *SlotRepository) ListWeek(ctx context.Context, filter models.SlotFilter) ([]models.Slot, error) {
	query := `SELECT sl.id, sl.course_id, sl.student_id, sl.year, sl.week, sl.start_at, sl.end_at, sl.status, sl.status_info, sl.created_at, sl.updated_at
        FROM slots sl
        JOIN students st ON st.id = sl.student_id
        WHERE sl.course_id = $1 AND sl.year = $2 AND sl.week = $3`
	args := []interface{}{filter.CourseID, filter.Year, filter.Week}
	if filter.StudentID != "" {
		query += " AND sl.student_id = $4"
		args = append(args, filter.StudentID)
	}
	query += " ORDER BY st.created_at ASC, sl.start_at ASC"

	var slots []models.Slot
	if err := r.db.SelectContext(ctx, &slots, query, args...); err != nil {
		return nil, fmt.Errorf("list week slots: %w", err)
	}
	return slots, nil
}

// ReplaceWeek supersedes a student's unbooked postings for one week inside a
// single transaction. Slots already claimed by a booking are left alone.
func (r *SlotRepository) ReplaceWeek(ctx context.Context, courseID, studentID string, year, week int, slots []models.Slot) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin replace week: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	if _, err = tx.ExecContext(ctx,
		`DELETE FROM slots WHERE course_id = $1 AND student_id = $2 AND year = $3 AND week = $4 AND status = ''`,
		courseID, studentID, year, week); err != nil {
		return fmt.Errorf("clear week postings: %w", err)
	}

	for i := range slots {
		slot := slots[i]
		slot.CourseID = courseID
		slot.StudentID = studentID
		slot.Year = year
		slot.Week = week
		if err = r.insertSlot(ctx, tx, &slot); err != nil {
			return err
		}
		slots[i] = slot
	}

	if err = tx.Commit(); err != nil {
		return fmt.Errorf("commit replace week: %w", err)
	}
	return nil
}

// CreateWithTx inserts a slot using an existing transaction.
func (r *SlotRepository) CreateWithTx(ctx context.Context, exec sqlx.ExtContext, slot *models.Slot) error {
	return r.insertSlot(ctx, exec, slot)
}

func (r *SlotRepository) insertSlot(ctx context.Context, exec sqlx.ExtContext, slot *models.Slot) error {
	if slot.ID == "" {
		slot.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	if slot.CreatedAt.IsZero() {
		slot.CreatedAt = now
	}
	slot.UpdatedAt = now

	const query = `INSERT INTO slots (id, course_id, student_id, year, week, start_at, end_at, status, status_info, created_at, updated_at)
        VALUES (:id, :course_id, :student_id, :year, :week, :start_at, :end_at, :status, :status_info, :created_at, :updated_at)`
	if _, err := sqlx.NamedExecContext(ctx, exec, query, slot); err != nil {
		return fmt.Errorf("insert slot: %w", err)
	}
	return nil
}

// UpdateStatusWithTx promotes or demotes a slot's booking status.
func (r *SlotRepository) UpdateStatusWithTx(ctx context.Context, exec sqlx.ExtContext, id string, status models.SlotStatus, info string) error {
	if _, err := exec.ExecContext(ctx,
		`UPDATE slots SET status = $2, status_info = $3, updated_at = $4 WHERE id = $1`,
		id, status, info, time.Now().UTC()); err != nil {
		return fmt.Errorf("update slot status: %w", err)
	}
	return nil
}

// DeleteWithTx removes a slot, used when a booking is cancelled past grace.
func (r *SlotRepository) DeleteWithTx(ctx context.Context, exec sqlx.ExtContext, id string) error {
	if _, err := exec.ExecContext(ctx, `DELETE FROM slots WHERE id = $1`, id); err != nil {
		return fmt.Errorf("delete slot: %w", err)
	}
	return nil
}

// DeleteStaleBefore purges open postings whose week has fully passed.
func (r *SlotRepository) DeleteStaleBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	res, err := r.db.ExecContext(ctx,
		`DELETE FROM slots WHERE status = '' AND end_at < $1`, cutoff)
	if err != nil {
		return 0, fmt.Errorf("delete stale slots: %w", err)
	}
	affected, _ := res.RowsAffected()
	return affected, nil
}
