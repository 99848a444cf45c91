package scoring

import (
	"sort"

	"github.com/stemsi/exscan-backend/internal/grid"
	"github.com/stemsi/exscan-backend/internal/model"
)

// QuestionKey holds the grading data for one question: the positions of its
// correct answers (ascending) and the points awarded for a full match.
type QuestionKey struct {
	Correct []int
	Points  int
}

// AnswerKey maps a 1-based question position number to its grading data.
type AnswerKey map[int]QuestionKey

// BuildAnswerKey derives the answer key from a test's question tree. Answers
// are walked in position order, so correct positions come out ascending. A
// question with no correct answers gets an empty Correct list and can never
// award points. NULL points count as zero.
func BuildAnswerKey(questions []model.QuestionDetail) AnswerKey {
	key := make(AnswerKey, len(questions))
	for _, q := range questions {
		qk := QuestionKey{}
		if q.Points != nil {
			qk.Points = *q.Points
		}
		for _, a := range q.Answers {
			if a.IsCorrect {
				qk.Correct = append(qk.Correct, a.PositionNumber)
			}
		}
		key[q.PositionNumber] = qk
	}
	return key
}

// Score grades extracted marks against an answer key. Full-or-nothing per
// question: the marked positions must match the correct positions exactly as
// a set; any extra, missing, or absent marks award zero for that question.
// Question numbers present in marks but absent from the key are ignored, and
// questions the extraction omitted simply contribute nothing. The result is
// a pure function of its inputs, non-negative, and never exceeds the sum of
// the key's points.
func Score(marks grid.Marks, key AnswerKey) int {
	total := 0
	for position, qk := range key {
		if len(qk.Correct) == 0 {
			continue
		}
		marked, ok := marks[position]
		if !ok {
			continue
		}
		if samePositions(marked, qk.Correct) {
			total += qk.Points
		}
	}
	return total
}

// MaxScore returns the highest score the key can award.
func MaxScore(key AnswerKey) int {
	total := 0
	for _, qk := range key {
		total += qk.Points
	}
	return total
}

// samePositions compares two position lists as sets. The vision model reports
// marks in detection order, so ordering must not affect the comparison.
// Inputs are copied before sorting; callers keep their slices untouched.
func samePositions(a, b []int) bool {
	if len(a) != len(b) {
		return false
	}
	as := append([]int(nil), a...)
	bs := append([]int(nil), b...)
	sort.Ints(as)
	sort.Ints(bs)
	for i := range as {
		if as[i] != bs[i] {
			return false
		}
	}
	return true
}
