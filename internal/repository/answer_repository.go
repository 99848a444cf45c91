package repository

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stemsi/exscan-backend/internal/model"
)

// AnswerRepository handles answer option data access.
type AnswerRepository struct {
	pool *pgxpool.Pool
}

// NewAnswerRepository creates a new AnswerRepository.
func NewAnswerRepository(pool *pgxpool.Pool) *AnswerRepository {
	return &AnswerRepository{pool: pool}
}

// GetByID retrieves an answer by its UUID.
func (r *AnswerRepository) GetByID(ctx context.Context, id uuid.UUID) (*model.Answer, error) {
	a := &model.Answer{}
	err := r.pool.QueryRow(ctx,
		`SELECT id, question_id, content, is_correct, position_number, created_at
		 FROM answers WHERE id = $1`, id,
	).Scan(&a.ID, &a.QuestionID, &a.Content, &a.IsCorrect, &a.PositionNumber, &a.CreatedAt)
	if err != nil {
		return nil, err
	}
	return a, nil
}

// CountByQuestion returns the number of answers of a question, used to assign
// the next position number.
func (r *AnswerRepository) CountByQuestion(ctx context.Context, questionID uuid.UUID) (int, error) {
	var count int
	err := r.pool.QueryRow(ctx,
		`SELECT COUNT(*) FROM answers WHERE question_id = $1`, questionID,
	).Scan(&count)
	return count, err
}

// Create inserts a new answer option. The (question_id, position_number)
// pair is unique at the storage layer.
func (r *AnswerRepository) Create(ctx context.Context, a *model.Answer) error {
	err := r.pool.QueryRow(ctx,
		`INSERT INTO answers (question_id, content, is_correct, position_number)
		 VALUES ($1, $2, $3, $4)
		 RETURNING id, created_at`,
		a.QuestionID, a.Content, a.IsCorrect, a.PositionNumber,
	).Scan(&a.ID, &a.CreatedAt)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return ErrDuplicatePosition
		}
		return err
	}
	return nil
}

// Update edits an answer's content and correctness flag.
func (r *AnswerRepository) Update(ctx context.Context, id uuid.UUID, content string, isCorrect bool) error {
	_, err := r.pool.Exec(ctx,
		`UPDATE answers SET content = $1, is_correct = $2 WHERE id = $3`,
		content, isCorrect, id)
	return err
}

// Delete removes an answer option.
func (r *AnswerRepository) Delete(ctx context.Context, id uuid.UUID) error {
	_, err := r.pool.Exec(ctx, `DELETE FROM answers WHERE id = $1`, id)
	return err
}

// OwnerID resolves the owning teacher of an answer through its question and
// test.
func (r *AnswerRepository) OwnerID(ctx context.Context, id uuid.UUID) (int, error) {
	var teacherID int
	err := r.pool.QueryRow(ctx,
		`SELECT t.teacher_id
		 FROM answers a
		 JOIN questions q ON q.id = a.question_id
		 JOIN tests t ON t.id = q.test_id
		 WHERE a.id = $1`, id,
	).Scan(&teacherID)
	return teacherID, err
}
