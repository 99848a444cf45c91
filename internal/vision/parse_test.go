package vision

import (
	"reflect"
	"testing"

	"github.com/stemsi/exscan-backend/internal/grid"
)

func TestParseMarks(t *testing.T) {
	tests := []struct {
		name    string
		raw     string
		want    grid.Marks
		wantErr bool
	}{
		{
			name: "bare json",
			raw:  `{"1": [2], "2": [1, 3], "3": [3]}`,
			want: grid.Marks{1: {2}, 2: {1, 3}, 3: {3}},
		},
		{
			name: "code fenced",
			raw:  "```json\n{\"1\": [2]}\n```",
			want: grid.Marks{1: {2}},
		},
		{
			name: "fence without language label",
			raw:  "```\n{\"4\": []}\n```",
			want: grid.Marks{4: {}},
		},
		{
			name: "surrounding whitespace",
			raw:  "  \n {\"1\": [1]} \n ",
			want: grid.Marks{1: {1}},
		},
		{
			name: "empty grid",
			raw:  `{}`,
			want: grid.Marks{},
		},
		{
			name:    "empty reply",
			raw:     "",
			wantErr: true,
		},
		{
			name:    "prose instead of json",
			raw:     "I could not read the sheet, sorry.",
			wantErr: true,
		},
		{
			name:    "non-numeric key",
			raw:     `{"one": [1]}`,
			wantErr: true,
		},
		{
			name:    "values not lists",
			raw:     `{"1": "A"}`,
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := parseMarks(tt.raw)
			if tt.wantErr {
				if err == nil {
					t.Fatalf("parseMarks(%q) expected error, got %v", tt.raw, got)
				}
				return
			}
			if err != nil {
				t.Fatalf("parseMarks(%q) error: %v", tt.raw, err)
			}
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("parseMarks(%q) = %v, want %v", tt.raw, got, tt.want)
			}
		})
	}
}
