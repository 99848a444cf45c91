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

// QuestionService handles question-level mutations on an existing test.
type QuestionService struct {
	testRepo     *repository.TestRepository
	questionRepo *repository.QuestionRepository
	answerRepo   *repository.AnswerRepository
	rdb          *redis.Client
	log          zerolog.Logger
}

// NewQuestionService creates a new QuestionService.
func NewQuestionService(
	testRepo *repository.TestRepository,
	questionRepo *repository.QuestionRepository,
	answerRepo *repository.AnswerRepository,
	rdb *redis.Client,
	log zerolog.Logger,
) *QuestionService {
	return &QuestionService{
		testRepo:     testRepo,
		questionRepo: questionRepo,
		answerRepo:   answerRepo,
		rdb:          rdb,
		log:          log.With().Str("component", "question_service").Logger(),
	}
}

// AddToTest appends a question at the next free position number.
func (s *QuestionService) AddToTest(ctx context.Context, teacherID int, testID uuid.UUID, req *model.CreateQuestionRequest) (*model.QuestionDetail, error) {
	if err := s.checkTestOwner(ctx, teacherID, testID); err != nil {
		return nil, err
	}

	count, err := s.questionRepo.CountByTest(ctx, testID)
	if err != nil {
		return nil, err
	}

	question := &model.Question{
		TestID:         testID,
		Content:        req.Content,
		PositionNumber: count + 1,
		Type:           model.QuestionType(req.Type),
		Points:         req.Points,
	}
	if err := s.questionRepo.Create(ctx, question); err != nil {
		if errors.Is(err, repository.ErrDuplicatePosition) {
			return nil, ErrPositionTaken
		}
		return nil, err
	}

	detail := &model.QuestionDetail{Question: *question, Answers: []model.Answer{}}
	for i, ar := range req.Answers {
		answer := &model.Answer{
			QuestionID:     question.ID,
			Content:        ar.Content,
			IsCorrect:      ar.IsCorrect != nil && *ar.IsCorrect,
			PositionNumber: i + 1,
		}
		if err := s.answerRepo.Create(ctx, answer); err != nil {
			return nil, fmt.Errorf("create answer %d: %w", i+1, err)
		}
		detail.Answers = append(detail.Answers, *answer)
	}

	s.invalidateSheet(ctx, testID)
	return detail, nil
}

// UpdateContent edits a question's prompt text. Layout is untouched, but the
// cached sheet embeds the prompt listing, so it is still invalidated.
func (s *QuestionService) UpdateContent(ctx context.Context, teacherID int, id uuid.UUID, content string) (*model.Question, error) {
	question, err := s.getOwned(ctx, teacherID, id)
	if err != nil {
		return nil, err
	}
	if err := s.questionRepo.UpdateContent(ctx, id, content); err != nil {
		return nil, err
	}
	question.Content = content
	s.invalidateSheet(ctx, question.TestID)
	return question, nil
}

// Delete removes a question and its answers. Positions of the remaining
// questions are not renumbered; the printed sheet keeps its row labels stable.
func (s *QuestionService) Delete(ctx context.Context, teacherID int, id uuid.UUID) error {
	question, err := s.getOwned(ctx, teacherID, id)
	if err != nil {
		return err
	}
	if err := s.questionRepo.Delete(ctx, id); err != nil {
		return err
	}
	s.invalidateSheet(ctx, question.TestID)
	return nil
}

func (s *QuestionService) checkTestOwner(ctx context.Context, teacherID int, testID uuid.UUID) error {
	owner, err := s.testRepo.OwnerID(ctx, testID)
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

func (s *QuestionService) getOwned(ctx context.Context, teacherID int, id uuid.UUID) (*model.Question, error) {
	owner, err := s.questionRepo.OwnerID(ctx, id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	if owner != teacherID {
		return nil, ErrNotOwner
	}
	return s.questionRepo.GetByID(ctx, id)
}

func (s *QuestionService) invalidateSheet(ctx context.Context, testID uuid.UUID) {
	if err := s.rdb.Del(ctx, config.CacheKey.TestSheetKey(testID.String())).Err(); err != nil {
		s.log.Warn().Err(err).Str("test_id", testID.String()).Msg("Sheet cache invalidation failed")
	}
}
