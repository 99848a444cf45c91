package scoring

import (
	"testing"

	"github.com/stemsi/exscan-backend/internal/grid"
	"github.com/stemsi/exscan-backend/internal/model"
)

func intPtr(n int) *int { return &n }

func TestScoreSingleQuestion(t *testing.T) {
	key := AnswerKey{
		1: {Correct: []int{2}, Points: 5},
	}

	tests := []struct {
		name  string
		marks grid.Marks
		want  int
	}{
		{"exact match", grid.Marks{1: {2}}, 5},
		{"extra mark before", grid.Marks{1: {1, 2}}, 0},
		{"extra mark after", grid.Marks{1: {2, 3}}, 0},
		{"wrong mark", grid.Marks{1: {1}}, 0},
		{"no marks", grid.Marks{1: {}}, 0},
		{"question missing from grid", grid.Marks{}, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Score(tt.marks, key); got != tt.want {
				t.Errorf("Score() = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestScoreMultiMarkQuestion(t *testing.T) {
	key := AnswerKey{
		1: {Correct: []int{1, 3}, Points: 3},
	}

	if got := Score(grid.Marks{1: {1, 3}}, key); got != 3 {
		t.Errorf("both correct marks = %d, want 3", got)
	}
	// Detection order must not matter.
	if got := Score(grid.Marks{1: {3, 1}}, key); got != 3 {
		t.Errorf("reversed detection order = %d, want 3", got)
	}
	if got := Score(grid.Marks{1: {1}}, key); got != 0 {
		t.Errorf("partial marks = %d, want 0 (no partial credit)", got)
	}
	if got := Score(grid.Marks{1: {1, 2, 3}}, key); got != 0 {
		t.Errorf("extra mark = %d, want 0", got)
	}
}

func TestScoreEndToEndScenario(t *testing.T) {
	// Question 1: 2 points, correct answer at position 1.
	// Question 2: 3 points, correct answers at positions 1 and 3.
	key := AnswerKey{
		1: {Correct: []int{1}, Points: 2},
		2: {Correct: []int{1, 3}, Points: 3},
	}

	tests := []struct {
		name  string
		marks grid.Marks
		want  int
	}{
		{"all correct", grid.Marks{1: {1}, 2: {1, 3}}, 5},
		{"all wrong", grid.Marks{1: {2}, 2: {1}}, 0},
		{"second question missing", grid.Marks{1: {1}}, 2},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Score(tt.marks, key); got != tt.want {
				t.Errorf("Score() = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestScoreToleratesUnknownQuestions(t *testing.T) {
	key := AnswerKey{1: {Correct: []int{1}, Points: 2}}
	marks := grid.Marks{1: {1}, 99: {1, 2, 3}}
	if got := Score(marks, key); got != 2 {
		t.Errorf("Score() with unknown question = %d, want 2", got)
	}
}

func TestScoreQuestionWithoutCorrectAnswers(t *testing.T) {
	key := AnswerKey{1: {Correct: nil, Points: 10}}
	if got := Score(grid.Marks{1: {}}, key); got != 0 {
		t.Errorf("empty marks against empty key = %d, want 0", got)
	}
	if got := Score(grid.Marks{1: {1}}, key); got != 0 {
		t.Errorf("marks against empty key = %d, want 0", got)
	}
}

func TestScoreDeterministicAndBounded(t *testing.T) {
	key := AnswerKey{
		1: {Correct: []int{1}, Points: 2},
		2: {Correct: []int{2}, Points: 3},
		3: {Correct: []int{1, 2}, Points: 4},
	}
	marks := grid.Marks{1: {1}, 2: {2}, 3: {2, 1}, 4: {1}}

	first := Score(marks, key)
	second := Score(marks, key)
	if first != second {
		t.Errorf("Score() not deterministic: %d then %d", first, second)
	}
	if max := MaxScore(key); first > max {
		t.Errorf("Score() = %d exceeds max %d", first, max)
	}
	if first != 9 {
		t.Errorf("Score() = %d, want 9", first)
	}
}

func TestBuildAnswerKey(t *testing.T) {
	questions := []model.QuestionDetail{
		{
			Question: model.Question{PositionNumber: 1, Points: intPtr(2)},
			Answers: []model.Answer{
				{PositionNumber: 1, IsCorrect: true},
				{PositionNumber: 2},
			},
		},
		{
			Question: model.Question{PositionNumber: 2, Points: nil},
			Answers: []model.Answer{
				{PositionNumber: 1, IsCorrect: true},
				{PositionNumber: 2},
				{PositionNumber: 3, IsCorrect: true},
			},
		},
		{
			Question: model.Question{PositionNumber: 3, Points: intPtr(7)},
		},
	}

	key := BuildAnswerKey(questions)

	if qk := key[1]; qk.Points != 2 || len(qk.Correct) != 1 || qk.Correct[0] != 1 {
		t.Errorf("question 1 key = %+v", qk)
	}
	if qk := key[2]; qk.Points != 0 || len(qk.Correct) != 2 || qk.Correct[0] != 1 || qk.Correct[1] != 3 {
		t.Errorf("question 2 key = %+v (nil points should be 0)", qk)
	}
	if qk := key[3]; len(qk.Correct) != 0 || qk.Points != 7 {
		t.Errorf("question 3 key = %+v (answerless question)", qk)
	}
	if got := MaxScore(key); got != 9 {
		t.Errorf("MaxScore() = %d, want 9", got)
	}
}
