package service

import (
	"context"
	"encoding/json"
	"errors"
	"mime/multipart"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/stemsi/exscan-backend/internal/config"
	"github.com/stemsi/exscan-backend/internal/model"
	"github.com/stemsi/exscan-backend/internal/repository"
)

// SubmissionService handles answer sheet intake and teacher-facing result
// listings.
type SubmissionService struct {
	submissionRepo *repository.SubmissionRepository
	testRepo       *repository.TestRepository
	storage        *StorageService
	rdb            *redis.Client
	log            zerolog.Logger
}

// NewSubmissionService creates a new SubmissionService.
func NewSubmissionService(
	submissionRepo *repository.SubmissionRepository,
	testRepo *repository.TestRepository,
	storage *StorageService,
	rdb *redis.Client,
	log zerolog.Logger,
) *SubmissionService {
	return &SubmissionService{
		submissionRepo: submissionRepo,
		testRepo:       testRepo,
		storage:        storage,
		rdb:            rdb,
		log:            log.With().Str("component", "submission_service").Logger(),
	}
}

// Create stores the uploaded photo, records the submission with a NULL score
// and enqueues a grading job. The submission is accepted even when the queue
// is unreachable; the record stays ungraded rather than the student losing
// their upload.
func (s *SubmissionService) Create(ctx context.Context, testID uuid.UUID, req *model.CreateSubmissionRequest, file multipart.File, header *multipart.FileHeader) (*model.Submission, error) {
	if _, err := s.testRepo.GetByID(ctx, testID); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}

	photoURL, err := s.storage.SaveSheetPhoto(file, header)
	if err != nil {
		return nil, err
	}

	submission := &model.Submission{
		TestID:       testID,
		StudentName:  req.StudentName,
		StudentGroup: req.StudentGroup,
		PhotoURL:     photoURL,
	}
	if err := s.submissionRepo.Create(ctx, submission); err != nil {
		return nil, err
	}

	s.enqueueGrading(ctx, submission)
	return submission, nil
}

// List retrieves a test's submissions, newest first, for the owning teacher.
func (s *SubmissionService) List(ctx context.Context, teacherID int, testID uuid.UUID) ([]model.SubmissionWithTestInfo, error) {
	owner, err := s.testRepo.OwnerID(ctx, testID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	if owner != teacherID {
		return nil, ErrNotOwner
	}

	submissions, err := s.submissionRepo.ListByTestWithInfo(ctx, testID)
	if err != nil {
		return nil, err
	}
	if submissions == nil {
		submissions = []model.SubmissionWithTestInfo{}
	}
	return submissions, nil
}

func (s *SubmissionService) enqueueGrading(ctx context.Context, submission *model.Submission) {
	job := model.GradingJob{
		TestID:       submission.TestID.String(),
		SubmissionID: submission.ID.String(),
	}
	payload, err := json.Marshal(job)
	if err != nil {
		s.log.Error().Err(err).Msg("Failed to marshal grading job")
		return
	}
	if err := s.rdb.RPush(ctx, config.WorkerKey.GradingQueue, payload).Err(); err != nil {
		s.log.Error().Err(err).
			Str("submission_id", job.SubmissionID).
			Msg("Failed to enqueue grading job; submission stays ungraded")
		return
	}
	s.log.Info().
		Str("submission_id", job.SubmissionID).
		Str("test_id", job.TestID).
		Msg("Grading job enqueued")
}
