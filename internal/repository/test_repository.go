package repository

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stemsi/exscan-backend/internal/model"
)

var ErrDuplicateTestName = errors.New("teacher already has a test with this name")

// TestRepository handles test data access.
type TestRepository struct {
	pool *pgxpool.Pool
}

// NewTestRepository creates a new TestRepository.
func NewTestRepository(pool *pgxpool.Pool) *TestRepository {
	return &TestRepository{pool: pool}
}

// GetByID retrieves a test by its UUID.
func (r *TestRepository) GetByID(ctx context.Context, id uuid.UUID) (*model.Test, error) {
	t := &model.Test{}
	err := r.pool.QueryRow(ctx,
		`SELECT id, teacher_id, name, created_at
		 FROM tests WHERE id = $1`, id,
	).Scan(&t.ID, &t.TeacherID, &t.Name, &t.CreatedAt)
	if err != nil {
		return nil, err
	}
	return t, nil
}

// ListByTeacher retrieves a teacher's tests, newest first.
func (r *TestRepository) ListByTeacher(ctx context.Context, teacherID int) ([]model.Test, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT id, teacher_id, name, created_at
		 FROM tests WHERE teacher_id = $1
		 ORDER BY created_at DESC`, teacherID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var tests []model.Test
	for rows.Next() {
		var t model.Test
		if err := rows.Scan(&t.ID, &t.TeacherID, &t.Name, &t.CreatedAt); err != nil {
			return nil, err
		}
		tests = append(tests, t)
	}
	return tests, rows.Err()
}

// Create inserts a new test. The name must be unique per teacher.
func (r *TestRepository) Create(ctx context.Context, t *model.Test) error {
	err := r.pool.QueryRow(ctx,
		`INSERT INTO tests (teacher_id, name)
		 VALUES ($1, $2)
		 RETURNING id, created_at`,
		t.TeacherID, t.Name,
	).Scan(&t.ID, &t.CreatedAt)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return ErrDuplicateTestName
		}
		return err
	}
	return nil
}

// UpdateName renames a test, keeping the per-teacher uniqueness.
func (r *TestRepository) UpdateName(ctx context.Context, id uuid.UUID, name string) error {
	_, err := r.pool.Exec(ctx,
		`UPDATE tests SET name = $1 WHERE id = $2`, name, id)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return ErrDuplicateTestName
		}
	}
	return err
}

// Delete removes a test. Questions, answers and submissions cascade at the
// database level.
func (r *TestRepository) Delete(ctx context.Context, id uuid.UUID) error {
	_, err := r.pool.Exec(ctx, `DELETE FROM tests WHERE id = $1`, id)
	return err
}

// OwnerID resolves the owning teacher of a test. Used for ownership checks
// without loading the whole record.
func (r *TestRepository) OwnerID(ctx context.Context, id uuid.UUID) (int, error) {
	var teacherID int
	err := r.pool.QueryRow(ctx,
		`SELECT teacher_id FROM tests WHERE id = $1`, id,
	).Scan(&teacherID)
	return teacherID, err
}

// MaxScore computes the test's maximum achievable score on demand:
// SUM(COALESCE(points, 0)) over its questions.
func (r *TestRepository) MaxScore(ctx context.Context, id uuid.UUID) (int, error) {
	var max int
	err := r.pool.QueryRow(ctx,
		`SELECT COALESCE(SUM(COALESCE(points, 0)), 0)
		 FROM questions WHERE test_id = $1`, id,
	).Scan(&max)
	return max, err
}
