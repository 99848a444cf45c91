package model

import (
	"time"

	"github.com/google/uuid"
)

// Answer represents a single answer option. PositionNumber is the 1-based
// column index on the printed answer sheet (1=A, 2=B, ...), unique within
// the question.
type Answer struct {
	ID             uuid.UUID `json:"id"`
	QuestionID     uuid.UUID `json:"question_id"`
	Content        string    `json:"content"`
	IsCorrect      bool      `json:"is_correct"`
	PositionNumber int       `json:"position_number"`
	CreatedAt      time.Time `json:"created_at"`
}

// CreateAnswerRequest is the payload for adding an answer option.
type CreateAnswerRequest struct {
	Content   string `json:"content" binding:"required,min=1,max=1000"`
	IsCorrect *bool  `json:"is_correct" binding:"required"`
}

// UpdateAnswerRequest is the payload for editing an answer option.
type UpdateAnswerRequest struct {
	Content   string `json:"content" binding:"required,min=1,max=1000"`
	IsCorrect *bool  `json:"is_correct" binding:"required"`
}
