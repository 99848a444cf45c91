package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/rs/zerolog"
	"github.com/stemsi/exscan-backend/internal/model"
	"github.com/stemsi/exscan-backend/internal/scoring"
	"github.com/stemsi/exscan-backend/internal/vision"
)

// Narrow repository views so the grading pipeline is testable without a
// database.
type gradingTestStore interface {
	GetByID(ctx context.Context, id uuid.UUID) (*model.Test, error)
}

type gradingQuestionStore interface {
	ListDetailByTest(ctx context.Context, testID uuid.UUID) ([]model.QuestionDetail, error)
}

type gradingSubmissionStore interface {
	GetByID(ctx context.Context, id uuid.UUID) (*model.Submission, error)
	SetScore(ctx context.Context, id uuid.UUID, score int) error
}

// GradingService runs one grading job end to end: re-fetch the records,
// extract the mark grid from the photo, score it against the answer key and
// persist the result.
type GradingService struct {
	tests          gradingTestStore
	questions      gradingQuestionStore
	submissions    gradingSubmissionStore
	extractor      vision.GridExtractor
	extractTimeout time.Duration
	log            zerolog.Logger
}

// NewGradingService creates a new GradingService.
func NewGradingService(
	tests gradingTestStore,
	questions gradingQuestionStore,
	submissions gradingSubmissionStore,
	extractor vision.GridExtractor,
	extractTimeout time.Duration,
	log zerolog.Logger,
) *GradingService {
	return &GradingService{
		tests:          tests,
		questions:      questions,
		submissions:    submissions,
		extractor:      extractor,
		extractTimeout: extractTimeout,
		log:            log.With().Str("component", "grading_service").Logger(),
	}
}

// Grade executes a queued grading job and returns the awarded score. The job
// carries ids only: either record may have been deleted since enqueue, which
// fails the job. A submission that already has a score is returned as-is.
func (s *GradingService) Grade(ctx context.Context, job model.GradingJob) (int, error) {
	testID, err := uuid.Parse(job.TestID)
	if err != nil {
		return 0, fmt.Errorf("invalid test id %q: %w", job.TestID, err)
	}
	submissionID, err := uuid.Parse(job.SubmissionID)
	if err != nil {
		return 0, fmt.Errorf("invalid submission id %q: %w", job.SubmissionID, err)
	}

	test, err := s.tests.GetByID(ctx, testID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return 0, fmt.Errorf("test %s no longer exists", job.TestID)
		}
		return 0, fmt.Errorf("fetch test: %w", err)
	}

	submission, err := s.submissions.GetByID(ctx, submissionID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return 0, fmt.Errorf("submission %s no longer exists", job.SubmissionID)
		}
		return 0, fmt.Errorf("fetch submission: %w", err)
	}
	if submission.TestID != test.ID {
		return 0, fmt.Errorf("submission %s does not belong to test %s", job.SubmissionID, job.TestID)
	}
	if submission.Score != nil {
		s.log.Info().
			Str("submission_id", job.SubmissionID).
			Int("score", *submission.Score).
			Msg("Submission already graded, skipping")
		return *submission.Score, nil
	}

	extractCtx, cancel := context.WithTimeout(ctx, s.extractTimeout)
	defer cancel()
	marks, err := s.extractor.ExtractGrid(extractCtx, submission.PhotoURL)
	if err != nil {
		return 0, fmt.Errorf("extract grid: %w", err)
	}

	questions, err := s.questions.ListDetailByTest(ctx, test.ID)
	if err != nil {
		return 0, fmt.Errorf("list questions: %w", err)
	}

	key := scoring.BuildAnswerKey(questions)
	score := scoring.Score(marks, key)

	if err := s.submissions.SetScore(ctx, submissionID, score); err != nil {
		return 0, fmt.Errorf("persist score: %w", err)
	}

	s.log.Info().
		Str("submission_id", job.SubmissionID).
		Str("test_id", job.TestID).
		Int("score", score).
		Int("max_score", scoring.MaxScore(key)).
		Msg("Submission graded")

	return score, nil
}
