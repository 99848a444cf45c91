package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/rs/zerolog"
	"github.com/stemsi/exscan-backend/internal/grid"
	"github.com/stemsi/exscan-backend/internal/model"
)

type stubTestStore struct {
	test *model.Test
}

func (s *stubTestStore) GetByID(_ context.Context, id uuid.UUID) (*model.Test, error) {
	if s.test == nil || s.test.ID != id {
		return nil, pgx.ErrNoRows
	}
	return s.test, nil
}

type stubQuestionStore struct {
	questions []model.QuestionDetail
}

func (s *stubQuestionStore) ListDetailByTest(_ context.Context, _ uuid.UUID) ([]model.QuestionDetail, error) {
	return s.questions, nil
}

type stubSubmissionStore struct {
	submission *model.Submission
	setScore   *int
	setErr     error
}

func (s *stubSubmissionStore) GetByID(_ context.Context, id uuid.UUID) (*model.Submission, error) {
	if s.submission == nil || s.submission.ID != id {
		return nil, pgx.ErrNoRows
	}
	return s.submission, nil
}

func (s *stubSubmissionStore) SetScore(_ context.Context, _ uuid.UUID, score int) error {
	if s.setErr != nil {
		return s.setErr
	}
	s.setScore = &score
	return nil
}

type stubExtractor struct {
	marks grid.Marks
	err   error
}

func (s *stubExtractor) ExtractGrid(_ context.Context, _ string) (grid.Marks, error) {
	return s.marks, s.err
}

func intPtr(n int) *int { return &n }

func question(pos int, points int, correct ...int) model.QuestionDetail {
	correctSet := make(map[int]bool, len(correct))
	for _, c := range correct {
		correctSet[c] = true
	}
	q := model.QuestionDetail{
		Question: model.Question{
			ID:             uuid.New(),
			Content:        "q",
			PositionNumber: pos,
			Type:           model.QuestionTypeMultipleChoice,
			Points:         intPtr(points),
		},
	}
	for i := 1; i <= 4; i++ {
		q.Answers = append(q.Answers, model.Answer{
			ID:             uuid.New(),
			QuestionID:     q.ID,
			Content:        "a",
			IsCorrect:      correctSet[i],
			PositionNumber: i,
		})
	}
	return q
}

func newGradingFixture(extractor *stubExtractor) (*GradingService, *stubSubmissionStore, model.GradingJob) {
	test := &model.Test{ID: uuid.New(), TeacherID: 1, Name: "latihan"}
	submission := &model.Submission{ID: uuid.New(), TestID: test.ID, PhotoURL: "/uploads/x.jpg"}
	submissions := &stubSubmissionStore{submission: submission}
	questions := &stubQuestionStore{questions: []model.QuestionDetail{
		question(1, 2, 2),
		question(2, 3, 1, 3),
	}}
	svc := NewGradingService(
		&stubTestStore{test: test},
		questions,
		submissions,
		extractor,
		time.Second,
		zerolog.Nop(),
	)
	job := model.GradingJob{TestID: test.ID.String(), SubmissionID: submission.ID.String()}
	return svc, submissions, job
}

func TestGradeSuccess(t *testing.T) {
	extractor := &stubExtractor{marks: grid.Marks{1: {2}, 2: {3, 1}}}
	svc, submissions, job := newGradingFixture(extractor)

	score, err := svc.Grade(context.Background(), job)
	if err != nil {
		t.Fatalf("Grade() error = %v", err)
	}
	if score != 5 {
		t.Errorf("score = %d, want 5", score)
	}
	if submissions.setScore == nil || *submissions.setScore != 5 {
		t.Errorf("persisted score = %v, want 5", submissions.setScore)
	}
}

func TestGradePartialMarks(t *testing.T) {
	// Q1 wrong option, Q2 missing one of two required marks: nothing awarded.
	extractor := &stubExtractor{marks: grid.Marks{1: {1}, 2: {1}}}
	svc, submissions, job := newGradingFixture(extractor)

	score, err := svc.Grade(context.Background(), job)
	if err != nil {
		t.Fatalf("Grade() error = %v", err)
	}
	if score != 0 {
		t.Errorf("score = %d, want 0", score)
	}
	if submissions.setScore == nil || *submissions.setScore != 0 {
		t.Errorf("persisted score = %v, want 0", submissions.setScore)
	}
}

func TestGradeExtractorFailureLeavesScoreUnset(t *testing.T) {
	extractor := &stubExtractor{err: errors.New("model unavailable")}
	svc, submissions, job := newGradingFixture(extractor)

	if _, err := svc.Grade(context.Background(), job); err == nil {
		t.Fatal("Grade() expected error, got nil")
	}
	if submissions.setScore != nil {
		t.Errorf("persisted score = %d, want unset", *submissions.setScore)
	}
}

func TestGradeMissingRecords(t *testing.T) {
	extractor := &stubExtractor{marks: grid.Marks{}}
	svc, _, job := newGradingFixture(extractor)

	tests := []struct {
		name string
		job  model.GradingJob
	}{
		{"unknown test", model.GradingJob{TestID: uuid.NewString(), SubmissionID: job.SubmissionID}},
		{"unknown submission", model.GradingJob{TestID: job.TestID, SubmissionID: uuid.NewString()}},
		{"malformed test id", model.GradingJob{TestID: "not-a-uuid", SubmissionID: job.SubmissionID}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := svc.Grade(context.Background(), tt.job); err == nil {
				t.Error("Grade() expected error, got nil")
			}
		})
	}
}

func TestGradeAlreadyGradedIsNoop(t *testing.T) {
	extractor := &stubExtractor{err: errors.New("extractor must not be called")}
	svc, submissions, job := newGradingFixture(extractor)
	submissions.submission.Score = intPtr(4)

	score, err := svc.Grade(context.Background(), job)
	if err != nil {
		t.Fatalf("Grade() error = %v", err)
	}
	if score != 4 {
		t.Errorf("score = %d, want 4", score)
	}
	if submissions.setScore != nil {
		t.Error("SetScore should not be called for an already graded submission")
	}
}
