package model

import (
	"time"

	"github.com/google/uuid"
)

// Submission represents one student's photographed answer sheet for a test.
// Score stays NULL until the background grading job completes; a failed job
// leaves it NULL so the submission can be re-graded externally.
type Submission struct {
	ID           uuid.UUID `json:"id"`
	TestID       uuid.UUID `json:"test_id"`
	StudentName  string    `json:"student_name"`
	StudentGroup string    `json:"student_group"`
	PhotoURL     string    `json:"photo_url"`
	Score        *int      `json:"score"`
	CreatedAt    time.Time `json:"created_at"`
}

// SubmissionWithTestInfo is a submission annotated with its test name and the
// test's maximum score, used for teacher-facing result listings and exports.
type SubmissionWithTestInfo struct {
	Submission
	TestName string `json:"test_name"`
	MaxScore int    `json:"max_score"`
}

// CreateSubmissionRequest carries the multipart form fields accompanying the
// uploaded sheet photo.
type CreateSubmissionRequest struct {
	StudentName  string `form:"student_name" binding:"required,min=1,max=100"`
	StudentGroup string `form:"student_group" binding:"omitempty,max=100"`
}

// GradingJob is the queue payload for one grading unit of work. It carries
// ids only; the worker re-fetches both records, which may have been deleted
// by the time the job runs.
type GradingJob struct {
	TestID       string `json:"test_id"`
	SubmissionID string `json:"submission_id"`
}

// GradingEvent is published on the test's results channel when a grading job
// finishes successfully.
type GradingEvent struct {
	SubmissionID string    `json:"submission_id"`
	TestID       string    `json:"test_id"`
	Score        int       `json:"score"`
	GradedAt     time.Time `json:"graded_at"`
}
