package vision

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/stemsi/exscan-backend/internal/grid"
)

// parseMarks turns a model reply into structured marks. Models wrap replies
// in markdown code fences despite being told not to, so incidental backticks
// and a leading "json" fence label are stripped before parsing. Keys arrive
// as JSON strings and are converted to integers; anything else is a parse
// error for the grading job to report.
func parseMarks(raw string) (grid.Marks, error) {
	cleaned := strings.TrimSpace(raw)
	cleaned = strings.Trim(cleaned, "`")
	cleaned = strings.TrimSpace(strings.TrimPrefix(cleaned, "json"))

	if cleaned == "" {
		return nil, fmt.Errorf("empty extraction reply")
	}

	var byLabel map[string][]int
	if err := json.Unmarshal([]byte(cleaned), &byLabel); err != nil {
		return nil, fmt.Errorf("unmarshal extraction reply: %w", err)
	}

	marks := make(grid.Marks, len(byLabel))
	for label, positions := range byLabel {
		number, err := strconv.Atoi(strings.TrimSpace(label))
		if err != nil {
			return nil, fmt.Errorf("non-numeric question key %q", label)
		}
		marks[number] = positions
	}
	return marks, nil
}
