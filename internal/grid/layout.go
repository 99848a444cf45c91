package grid

import (
	"strconv"

	"github.com/stemsi/exscan-backend/internal/model"
)

// Marks maps a 1-based question position number to the list of 1-based answer
// positions detected as filled for that question. A missing key means no
// marks were detected for that question. Multiple marks per question are
// legal and appear as a list with more than one entry.
type Marks map[int][]int

// Layout describes the dimensions of the printable answer grid for one test:
// one row per question that has at least one answer, one column per answer
// position up to the widest option set in the test.
type Layout struct {
	Rows    int
	Columns int
}

// Compute derives the grid layout from a test's question tree. A test with no
// questions or no answers yields a degenerate layout (zero rows or columns),
// which renders as an empty grid rather than failing.
func Compute(questions []model.QuestionDetail) Layout {
	var l Layout
	for _, q := range questions {
		if len(q.Answers) == 0 {
			continue
		}
		l.Rows++
		for _, a := range q.Answers {
			if a.PositionNumber > l.Columns {
				l.Columns = a.PositionNumber
			}
		}
	}
	return l
}

// ColumnLetter returns the uppercase header letter for a zero-based column
// offset (0=A, 1=B, ...). Offsets beyond Z are not printable on a sheet;
// answer creation caps option counts at 26 so this stays in range.
func ColumnLetter(offset int) string {
	if offset < 0 || offset >= 26 {
		return "?"
	}
	return string(rune('A' + offset))
}

// OptionLetter returns the lowercase listing label for a zero-based answer
// offset (0=a, 1=b, ...), used in the human-readable question listing.
func OptionLetter(offset int) string {
	if offset < 0 || offset >= 26 {
		return "?"
	}
	return string(rune('a' + offset))
}

// RowLabel returns the printed label for a zero-based row offset.
func RowLabel(offset int) string {
	return strconv.Itoa(offset + 1)
}
