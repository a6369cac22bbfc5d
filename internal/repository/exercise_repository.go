package repository

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/skyward-dev/flightline-api/internal/models"
)

// ExerciseRepository provides read access to the course syllabus.
type ExerciseRepository struct {
	db *sqlx.DB
}

// NewExerciseRepository constructs an ExerciseRepository.
func NewExerciseRepository(db *sqlx.DB) *ExerciseRepository {
	return &ExerciseRepository{db: db}
}

// ListByCourse returns a course's exercises in syllabus order.
func (r *ExerciseRepository) ListByCourse(ctx context.Context, courseID string) ([]models.Exercise, error) {
	const query = `SELECT id, course_id, name, seq, created_at, updated_at FROM exercises WHERE course_id = $1 ORDER BY seq ASC`
	var exercises []models.Exercise
	if err := r.db.SelectContext(ctx, &exercises, query, courseID); err != nil {
		return nil, fmt.Errorf("list exercises: %w", err)
	}
	return exercises, nil
}

// FindByID loads one exercise.
func (r *ExerciseRepository) FindByID(ctx context.Context, id string) (*models.Exercise, error) {
	const query = `SELECT id, course_id, name, seq, created_at, updated_at FROM exercises WHERE id = $1`
	var exercise models.Exercise
	if err := r.db.GetContext(ctx, &exercise, query, id); err != nil {
		return nil, err
	}
	return &exercise, nil
}
