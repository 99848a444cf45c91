package service

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/stemsi/exscan-backend/internal/config"
	"github.com/stemsi/exscan-backend/internal/model"
	"github.com/stemsi/exscan-backend/internal/repository"
)

// AnswerService handles answer-option mutations on an existing question.
type AnswerService struct {
	questionRepo *repository.QuestionRepository
	answerRepo   *repository.AnswerRepository
	rdb          *redis.Client
	log          zerolog.Logger
}

// NewAnswerService creates a new AnswerService.
func NewAnswerService(
	questionRepo *repository.QuestionRepository,
	answerRepo *repository.AnswerRepository,
	rdb *redis.Client,
	log zerolog.Logger,
) *AnswerService {
	return &AnswerService{
		questionRepo: questionRepo,
		answerRepo:   answerRepo,
		rdb:          rdb,
		log:          log.With().Str("component", "answer_service").Logger(),
	}
}

// AddToQuestion appends an answer option at the next free position number.
func (s *AnswerService) AddToQuestion(ctx context.Context, teacherID int, questionID uuid.UUID, req *model.CreateAnswerRequest) (*model.Answer, error) {
	question, err := s.ownedQuestion(ctx, teacherID, questionID)
	if err != nil {
		return nil, err
	}

	count, err := s.answerRepo.CountByQuestion(ctx, questionID)
	if err != nil {
		return nil, err
	}

	answer := &model.Answer{
		QuestionID:     questionID,
		Content:        req.Content,
		IsCorrect:      req.IsCorrect != nil && *req.IsCorrect,
		PositionNumber: count + 1,
	}
	if err := s.answerRepo.Create(ctx, answer); err != nil {
		if errors.Is(err, repository.ErrDuplicatePosition) {
			return nil, ErrPositionTaken
		}
		return nil, err
	}

	s.invalidateSheet(ctx, question.TestID)
	return answer, nil
}

// Update edits an answer's content and correctness flag.
func (s *AnswerService) Update(ctx context.Context, teacherID int, id uuid.UUID, req *model.UpdateAnswerRequest) (*model.Answer, error) {
	answer, err := s.ownedAnswer(ctx, teacherID, id)
	if err != nil {
		return nil, err
	}

	answer.Content = req.Content
	answer.IsCorrect = req.IsCorrect != nil && *req.IsCorrect
	if err := s.answerRepo.Update(ctx, id, answer.Content, answer.IsCorrect); err != nil {
		return nil, err
	}

	s.invalidateAnswerSheet(ctx, answer.QuestionID)
	return answer, nil
}

// Delete removes an answer option. Remaining options keep their positions.
func (s *AnswerService) Delete(ctx context.Context, teacherID int, id uuid.UUID) error {
	answer, err := s.ownedAnswer(ctx, teacherID, id)
	if err != nil {
		return err
	}
	if err := s.answerRepo.Delete(ctx, id); err != nil {
		return err
	}
	s.invalidateAnswerSheet(ctx, answer.QuestionID)
	return nil
}

func (s *AnswerService) ownedQuestion(ctx context.Context, teacherID int, questionID uuid.UUID) (*model.Question, error) {
	owner, err := s.questionRepo.OwnerID(ctx, questionID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	if owner != teacherID {
		return nil, ErrNotOwner
	}
	return s.questionRepo.GetByID(ctx, questionID)
}

func (s *AnswerService) ownedAnswer(ctx context.Context, teacherID int, id uuid.UUID) (*model.Answer, error) {
	owner, err := s.answerRepo.OwnerID(ctx, id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	if owner != teacherID {
		return nil, ErrNotOwner
	}
	return s.answerRepo.GetByID(ctx, id)
}

func (s *AnswerService) invalidateAnswerSheet(ctx context.Context, questionID uuid.UUID) {
	question, err := s.questionRepo.GetByID(ctx, questionID)
	if err != nil {
		s.log.Warn().Err(err).Str("question_id", questionID.String()).Msg("Sheet cache invalidation lookup failed")
		return
	}
	s.invalidateSheet(ctx, question.TestID)
}

func (s *AnswerService) invalidateSheet(ctx context.Context, testID uuid.UUID) {
	if err := s.rdb.Del(ctx, config.CacheKey.TestSheetKey(testID.String())).Err(); err != nil {
		s.log.Warn().Err(err).Str("test_id", testID.String()).Msg("Sheet cache invalidation failed")
	}
}
