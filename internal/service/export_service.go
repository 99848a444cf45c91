package service

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/xuri/excelize/v2"
)

// ExportService builds spreadsheet exports of a test's grading results.
type ExportService struct {
	submissions *SubmissionService
	log         zerolog.Logger
}

// NewExportService creates a new ExportService.
func NewExportService(submissions *SubmissionService, log zerolog.Logger) *ExportService {
	return &ExportService{
		submissions: submissions,
		log:         log.With().Str("component", "export_service").Logger(),
	}
}

// ResultsWorkbook renders a test's submissions as an XLSX workbook. Ungraded
// submissions export with an empty score cell.
func (s *ExportService) ResultsWorkbook(ctx context.Context, teacherID int, testID uuid.UUID) ([]byte, error) {
	submissions, err := s.submissions.List(ctx, teacherID, testID)
	if err != nil {
		return nil, err
	}

	f := excelize.NewFile()
	defer f.Close()

	const sheet = "Results"
	f.SetSheetName("Sheet1", sheet)

	headers := []string{"Student Name", "Group", "Test", "Score", "Max Score", "Submitted At"}
	for i, h := range headers {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		if err := f.SetCellValue(sheet, cell, h); err != nil {
			return nil, fmt.Errorf("write header: %w", err)
		}
	}

	for row, sub := range submissions {
		values := []any{
			sub.StudentName,
			sub.StudentGroup,
			sub.TestName,
			nil,
			sub.MaxScore,
			sub.CreatedAt.Format("2006-01-02 15:04:05"),
		}
		if sub.Score != nil {
			values[3] = *sub.Score
		}
		for col, v := range values {
			if v == nil {
				continue
			}
			cell, _ := excelize.CoordinatesToCellName(col+1, row+2)
			if err := f.SetCellValue(sheet, cell, v); err != nil {
				return nil, fmt.Errorf("write row %d: %w", row+1, err)
			}
		}
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("serialize workbook: %w", err)
	}
	return buf.Bytes(), nil
}
