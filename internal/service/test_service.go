package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/stemsi/exscan-backend/internal/config"
	"github.com/stemsi/exscan-backend/internal/model"
	"github.com/stemsi/exscan-backend/internal/repository"
)

// Domain errors shared by the test/question/answer services.
var (
	ErrNotOwner          = errors.New("not the owner of this resource")
	ErrNotFound          = errors.New("resource not found")
	ErrDuplicateTestName = errors.New("teacher already has a test with this name")
	ErrPositionTaken     = errors.New("position number already taken")
)

// TestService handles test authoring business logic.
type TestService struct {
	testRepo     *repository.TestRepository
	questionRepo *repository.QuestionRepository
	answerRepo   *repository.AnswerRepository
	rdb          *redis.Client
	log          zerolog.Logger
}

// NewTestService creates a new TestService.
func NewTestService(
	testRepo *repository.TestRepository,
	questionRepo *repository.QuestionRepository,
	answerRepo *repository.AnswerRepository,
	rdb *redis.Client,
	log zerolog.Logger,
) *TestService {
	return &TestService{
		testRepo:     testRepo,
		questionRepo: questionRepo,
		answerRepo:   answerRepo,
		rdb:          rdb,
		log:          log.With().Str("component", "test_service").Logger(),
	}
}

// Create inserts a new test with its inline questions and answers. Position
// numbers are assigned from list order, 1-based.
func (s *TestService) Create(ctx context.Context, teacherID int, req *model.CreateTestRequest) (*model.TestDetail, error) {
	test := &model.Test{TeacherID: teacherID, Name: req.Name}
	if err := s.testRepo.Create(ctx, test); err != nil {
		if errors.Is(err, repository.ErrDuplicateTestName) {
			return nil, ErrDuplicateTestName
		}
		return nil, err
	}

	for i, qr := range req.Questions {
		question := &model.Question{
			TestID:         test.ID,
			Content:        qr.Content,
			PositionNumber: i + 1,
			Type:           model.QuestionType(qr.Type),
			Points:         qr.Points,
		}
		if err := s.questionRepo.Create(ctx, question); err != nil {
			return nil, fmt.Errorf("create question %d: %w", i+1, err)
		}
		for j, ar := range qr.Answers {
			answer := &model.Answer{
				QuestionID:     question.ID,
				Content:        ar.Content,
				IsCorrect:      ar.IsCorrect != nil && *ar.IsCorrect,
				PositionNumber: j + 1,
			}
			if err := s.answerRepo.Create(ctx, answer); err != nil {
				return nil, fmt.Errorf("create answer %d of question %d: %w", j+1, i+1, err)
			}
		}
	}

	s.log.Info().
		Str("test_id", test.ID.String()).
		Int("questions", len(req.Questions)).
		Msg("Test created")

	return s.detail(ctx, test)
}

// List retrieves a teacher's tests.
func (s *TestService) List(ctx context.Context, teacherID int) ([]model.Test, error) {
	tests, err := s.testRepo.ListByTeacher(ctx, teacherID)
	if err != nil {
		return nil, err
	}
	if tests == nil {
		tests = []model.Test{}
	}
	return tests, nil
}

// GetDetail retrieves a test with its question tree and max score. Any
// authenticated teacher may read a test; mutation requires ownership.
func (s *TestService) GetDetail(ctx context.Context, id uuid.UUID) (*model.TestDetail, error) {
	test, err := s.testRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return s.detail(ctx, test)
}

// Rename changes a test's name, enforcing ownership and per-teacher name
// uniqueness.
func (s *TestService) Rename(ctx context.Context, teacherID int, id uuid.UUID, name string) (*model.Test, error) {
	if err := s.CheckOwner(ctx, teacherID, id); err != nil {
		return nil, err
	}
	if err := s.testRepo.UpdateName(ctx, id, name); err != nil {
		if errors.Is(err, repository.ErrDuplicateTestName) {
			return nil, ErrDuplicateTestName
		}
		return nil, err
	}
	// The rendered sheet carries the test name in its header.
	s.invalidateSheet(ctx, id)
	return s.testRepo.GetByID(ctx, id)
}

// Delete removes a test and everything under it.
func (s *TestService) Delete(ctx context.Context, teacherID int, id uuid.UUID) error {
	if err := s.CheckOwner(ctx, teacherID, id); err != nil {
		return err
	}
	if err := s.testRepo.Delete(ctx, id); err != nil {
		return err
	}
	s.invalidateSheet(ctx, id)
	s.log.Info().Str("test_id", id.String()).Msg("Test deleted")
	return nil
}

// CheckOwner resolves the test's owning teacher and compares it against the
// caller.
func (s *TestService) CheckOwner(ctx context.Context, teacherID int, id uuid.UUID) error {
	owner, err := s.testRepo.OwnerID(ctx, id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return ErrNotFound
		}
		return err
	}
	if owner != teacherID {
		return ErrNotOwner
	}
	return nil
}

func (s *TestService) detail(ctx context.Context, test *model.Test) (*model.TestDetail, error) {
	questions, err := s.questionRepo.ListDetailByTest(ctx, test.ID)
	if err != nil {
		return nil, fmt.Errorf("list questions: %w", err)
	}
	if questions == nil {
		questions = []model.QuestionDetail{}
	}

	maxScore, err := s.testRepo.MaxScore(ctx, test.ID)
	if err != nil {
		return nil, fmt.Errorf("compute max score: %w", err)
	}

	return &model.TestDetail{Test: *test, Questions: questions, MaxScore: maxScore}, nil
}

// invalidateSheet drops the cached rendered sheet for a test. Called after
// any mutation that changes the printed layout.
func (s *TestService) invalidateSheet(ctx context.Context, testID uuid.UUID) {
	if err := s.rdb.Del(ctx, config.CacheKey.TestSheetKey(testID.String())).Err(); err != nil {
		s.log.Warn().Err(err).Str("test_id", testID.String()).Msg("Sheet cache invalidation failed")
	}
}
