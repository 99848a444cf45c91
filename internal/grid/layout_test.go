package grid

import (
	"testing"

	"github.com/stemsi/exscan-backend/internal/model"
)

func question(answerPositions ...int) model.QuestionDetail {
	var q model.QuestionDetail
	for _, p := range answerPositions {
		q.Answers = append(q.Answers, model.Answer{PositionNumber: p})
	}
	return q
}

func TestCompute(t *testing.T) {
	tests := []struct {
		name      string
		questions []model.QuestionDetail
		wantRows  int
		wantCols  int
	}{
		{
			name:     "no questions",
			wantRows: 0,
			wantCols: 0,
		},
		{
			name:      "questions without answers",
			questions: []model.QuestionDetail{question(), question()},
			wantRows:  0,
			wantCols:  0,
		},
		{
			name:      "uniform option counts",
			questions: []model.QuestionDetail{question(1, 2, 3), question(1, 2, 3)},
			wantRows:  2,
			wantCols:  3,
		},
		{
			name:      "widest option set wins",
			questions: []model.QuestionDetail{question(1, 2), question(1, 2, 3, 4), question(1)},
			wantRows:  3,
			wantCols:  4,
		},
		{
			name:      "answerless question skipped but width kept",
			questions: []model.QuestionDetail{question(1, 2, 3), question()},
			wantRows:  1,
			wantCols:  3,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Compute(tt.questions)
			if got.Rows != tt.wantRows || got.Columns != tt.wantCols {
				t.Errorf("Compute() = %dx%d, want %dx%d", got.Rows, got.Columns, tt.wantRows, tt.wantCols)
			}
		})
	}
}

func TestColumnLetter(t *testing.T) {
	tests := []struct {
		offset int
		want   string
	}{
		{0, "A"},
		{1, "B"},
		{25, "Z"},
		{26, "?"},
		{-1, "?"},
	}
	for _, tt := range tests {
		if got := ColumnLetter(tt.offset); got != tt.want {
			t.Errorf("ColumnLetter(%d) = %q, want %q", tt.offset, got, tt.want)
		}
	}
}

func TestOptionLetter(t *testing.T) {
	if got := OptionLetter(0); got != "a" {
		t.Errorf("OptionLetter(0) = %q, want %q", got, "a")
	}
	if got := OptionLetter(2); got != "c" {
		t.Errorf("OptionLetter(2) = %q, want %q", got, "c")
	}
}

func TestRowLabel(t *testing.T) {
	if got := RowLabel(0); got != "1" {
		t.Errorf("RowLabel(0) = %q, want %q", got, "1")
	}
	if got := RowLabel(41); got != "42" {
		t.Errorf("RowLabel(41) = %q, want %q", got, "42")
	}
}
