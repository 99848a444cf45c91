package model

import (
	"time"

	"github.com/google/uuid"
)

// Test represents an authored test. It owns an ordered set of questions and
// the submissions graded against them.
type Test struct {
	ID        uuid.UUID `json:"id"`
	TeacherID int       `json:"teacher_id"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"created_at"`
}

// TestDetail is a test together with its full question tree and the maximum
// achievable score (sum of question points, computed on demand).
type TestDetail struct {
	Test
	Questions []QuestionDetail `json:"questions"`
	MaxScore  int              `json:"max_score"`
}

// CreateTestRequest is the payload for creating a new test. Questions may be
// provided inline; their positions are assigned from list order.
type CreateTestRequest struct {
	Name      string                  `json:"name" binding:"required,min=1,max=255"`
	Questions []CreateQuestionRequest `json:"questions" binding:"omitempty,dive"`
}

// UpdateTestRequest is the payload for renaming a test.
type UpdateTestRequest struct {
	Name string `json:"name" binding:"required,min=1,max=255"`
}
