package repository

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stemsi/exscan-backend/internal/model"
)

// SubmissionRepository handles student submission data access.
type SubmissionRepository struct {
	pool *pgxpool.Pool
}

// NewSubmissionRepository creates a new SubmissionRepository.
func NewSubmissionRepository(pool *pgxpool.Pool) *SubmissionRepository {
	return &SubmissionRepository{pool: pool}
}

// GetByID retrieves a submission by its UUID.
func (r *SubmissionRepository) GetByID(ctx context.Context, id uuid.UUID) (*model.Submission, error) {
	s := &model.Submission{}
	err := r.pool.QueryRow(ctx,
		`SELECT id, test_id, student_name, student_group, photo_url, score, created_at
		 FROM submissions WHERE id = $1`, id,
	).Scan(&s.ID, &s.TestID, &s.StudentName, &s.StudentGroup, &s.PhotoURL, &s.Score, &s.CreatedAt)
	if err != nil {
		return nil, err
	}
	return s, nil
}

// Create inserts a new submission with a NULL score.
func (r *SubmissionRepository) Create(ctx context.Context, s *model.Submission) error {
	return r.pool.QueryRow(ctx,
		`INSERT INTO submissions (test_id, student_name, student_group, photo_url)
		 VALUES ($1, $2, $3, $4)
		 RETURNING id, created_at`,
		s.TestID, s.StudentName, s.StudentGroup, s.PhotoURL,
	).Scan(&s.ID, &s.CreatedAt)
}

// SetScore persists the grading result. The single UPDATE makes the
// transition atomic: readers see either NULL or the final integer.
func (r *SubmissionRepository) SetScore(ctx context.Context, id uuid.UUID, score int) error {
	_, err := r.pool.Exec(ctx,
		`UPDATE submissions SET score = $1 WHERE id = $2`, score, id)
	return err
}

// ListByTestWithInfo retrieves a test's submissions annotated with the test
// name and its maximum score, newest first.
func (r *SubmissionRepository) ListByTestWithInfo(ctx context.Context, testID uuid.UUID) ([]model.SubmissionWithTestInfo, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT s.id, s.test_id, s.student_name, s.student_group, s.photo_url, s.score, s.created_at,
		        t.name,
		        COALESCE((SELECT SUM(COALESCE(q.points, 0)) FROM questions q WHERE q.test_id = t.id), 0)
		 FROM submissions s
		 JOIN tests t ON t.id = s.test_id
		 WHERE s.test_id = $1
		 ORDER BY s.created_at DESC`, testID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var subs []model.SubmissionWithTestInfo
	for rows.Next() {
		var s model.SubmissionWithTestInfo
		if err := rows.Scan(&s.ID, &s.TestID, &s.StudentName, &s.StudentGroup, &s.PhotoURL, &s.Score, &s.CreatedAt,
			&s.TestName, &s.MaxScore); err != nil {
			return nil, err
		}
		subs = append(subs, s)
	}
	return subs, rows.Err()
}
