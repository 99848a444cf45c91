package model

import (
	"time"

	"github.com/google/uuid"
)

// QuestionType enumerates the supported question kinds.
type QuestionType string

const (
	QuestionTypeMultipleChoice QuestionType = "MULTIPLE_CHOICE"
	QuestionTypeTrueFalse      QuestionType = "TRUE_FALSE"
)

// Question represents a single test question. PositionNumber is the 1-based
// row index on the printed answer sheet, unique within the test.
type Question struct {
	ID             uuid.UUID    `json:"id"`
	TestID         uuid.UUID    `json:"test_id"`
	Content        string       `json:"content"`
	PositionNumber int          `json:"position_number"`
	Type           QuestionType `json:"type"`
	Points         *int         `json:"points"`
	CreatedAt      time.Time    `json:"created_at"`
}

// QuestionDetail is a question together with its answers in position order.
type QuestionDetail struct {
	Question
	Answers []Answer `json:"answers"`
}

// CreateQuestionRequest is the payload for adding a question to a test.
// Answer positions are assigned from list order.
type CreateQuestionRequest struct {
	Content string                `json:"content" binding:"required,min=1,max=2000"`
	Type    string                `json:"type" binding:"required,oneof=MULTIPLE_CHOICE TRUE_FALSE"`
	Points  *int                  `json:"points" binding:"omitempty,min=0,max=1000"`
	Answers []CreateAnswerRequest `json:"answers" binding:"omitempty,max=26,dive"`
}

// UpdateQuestionRequest is the payload for editing question content.
type UpdateQuestionRequest struct {
	Content string `json:"content" binding:"required,min=1,max=2000"`
}
