package repository

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stemsi/exscan-backend/internal/model"
)

var ErrDuplicatePosition = errors.New("position number already taken")

// QuestionRepository handles question data access.
type QuestionRepository struct {
	pool *pgxpool.Pool
}

// NewQuestionRepository creates a new QuestionRepository.
func NewQuestionRepository(pool *pgxpool.Pool) *QuestionRepository {
	return &QuestionRepository{pool: pool}
}

// GetByID retrieves a question by its UUID.
func (r *QuestionRepository) GetByID(ctx context.Context, id uuid.UUID) (*model.Question, error) {
	q := &model.Question{}
	err := r.pool.QueryRow(ctx,
		`SELECT id, test_id, content, position_number, type, points, created_at
		 FROM questions WHERE id = $1`, id,
	).Scan(&q.ID, &q.TestID, &q.Content, &q.PositionNumber, &q.Type, &q.Points, &q.CreatedAt)
	if err != nil {
		return nil, err
	}
	return q, nil
}

// ListByTest retrieves all questions of a test in position order.
func (r *QuestionRepository) ListByTest(ctx context.Context, testID uuid.UUID) ([]model.Question, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT id, test_id, content, position_number, type, points, created_at
		 FROM questions WHERE test_id = $1
		 ORDER BY position_number`, testID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var questions []model.Question
	for rows.Next() {
		var q model.Question
		if err := rows.Scan(&q.ID, &q.TestID, &q.Content, &q.PositionNumber, &q.Type, &q.Points, &q.CreatedAt); err != nil {
			return nil, err
		}
		questions = append(questions, q)
	}
	return questions, rows.Err()
}

// ListDetailByTest retrieves a test's questions with their answers, both in
// position order. This is the shape the grid layout, the answer key and the
// sheet renderer all consume.
func (r *QuestionRepository) ListDetailByTest(ctx context.Context, testID uuid.UUID) ([]model.QuestionDetail, error) {
	questions, err := r.ListByTest(ctx, testID)
	if err != nil {
		return nil, err
	}
	if len(questions) == 0 {
		return nil, nil
	}

	rows, err := r.pool.Query(ctx,
		`SELECT a.id, a.question_id, a.content, a.is_correct, a.position_number, a.created_at
		 FROM answers a
		 JOIN questions q ON q.id = a.question_id
		 WHERE q.test_id = $1
		 ORDER BY q.position_number, a.position_number`, testID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	byQuestion := make(map[uuid.UUID][]model.Answer, len(questions))
	for rows.Next() {
		var a model.Answer
		if err := rows.Scan(&a.ID, &a.QuestionID, &a.Content, &a.IsCorrect, &a.PositionNumber, &a.CreatedAt); err != nil {
			return nil, err
		}
		byQuestion[a.QuestionID] = append(byQuestion[a.QuestionID], a)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	details := make([]model.QuestionDetail, len(questions))
	for i, q := range questions {
		details[i] = model.QuestionDetail{Question: q, Answers: byQuestion[q.ID]}
	}
	return details, nil
}

// CountByTest returns the number of questions in a test, used to assign the
// next position number.
func (r *QuestionRepository) CountByTest(ctx context.Context, testID uuid.UUID) (int, error) {
	var count int
	err := r.pool.QueryRow(ctx,
		`SELECT COUNT(*) FROM questions WHERE test_id = $1`, testID,
	).Scan(&count)
	return count, err
}

// Create inserts a new question. The (test_id, position_number) pair is
// unique at the storage layer.
func (r *QuestionRepository) Create(ctx context.Context, q *model.Question) error {
	err := r.pool.QueryRow(ctx,
		`INSERT INTO questions (test_id, content, position_number, type, points)
		 VALUES ($1, $2, $3, $4, $5)
		 RETURNING id, created_at`,
		q.TestID, q.Content, q.PositionNumber, q.Type, q.Points,
	).Scan(&q.ID, &q.CreatedAt)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return ErrDuplicatePosition
		}
		return err
	}
	return nil
}

// UpdateContent edits a question's text.
func (r *QuestionRepository) UpdateContent(ctx context.Context, id uuid.UUID, content string) error {
	_, err := r.pool.Exec(ctx,
		`UPDATE questions SET content = $1 WHERE id = $2`, content, id)
	return err
}

// Delete removes a question. Its answers cascade at the database level.
func (r *QuestionRepository) Delete(ctx context.Context, id uuid.UUID) error {
	_, err := r.pool.Exec(ctx, `DELETE FROM questions WHERE id = $1`, id)
	return err
}

// OwnerID resolves the owning teacher of a question through its test.
func (r *QuestionRepository) OwnerID(ctx context.Context, id uuid.UUID) (int, error) {
	var teacherID int
	err := r.pool.QueryRow(ctx,
		`SELECT t.teacher_id
		 FROM questions q
		 JOIN tests t ON t.id = q.test_id
		 WHERE q.id = $1`, id,
	).Scan(&teacherID)
	return teacherID, err
}
