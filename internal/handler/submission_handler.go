package handler

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/stemsi/exscan-backend/internal/model"
	"github.com/stemsi/exscan-backend/internal/response"
	"github.com/stemsi/exscan-backend/internal/service"
	"github.com/stemsi/exscan-backend/internal/validator"
)

// SubmissionHandler handles sheet photo intake and result listings.
type SubmissionHandler struct {
	submissionService *service.SubmissionService
	exportService     *service.ExportService
}

// NewSubmissionHandler creates a new SubmissionHandler.
func NewSubmissionHandler(submissionService *service.SubmissionService, exportService *service.ExportService) *SubmissionHandler {
	return &SubmissionHandler{
		submissionService: submissionService,
		exportService:     exportService,
	}
}

// CreateSubmission godoc
// POST /api/v1/public/tests/:test_id/submissions
// Accepts a photographed answer sheet from a student. No authentication:
// students submit with the link or QR code their teacher hands out.
func (h *SubmissionHandler) CreateSubmission(c *gin.Context) {
	testID, ok := parseUUIDParam(c, "test_id")
	if !ok {
		return
	}

	var req model.CreateSubmissionRequest
	if fields := validator.BindForm(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	fileHeader, err := c.FormFile("photo")
	if err != nil {
		response.Fail(c, http.StatusBadRequest, response.ErrFileRequired)
		return
	}
	file, err := fileHeader.Open()
	if err != nil {
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		return
	}
	defer file.Close()

	submission, err := h.submissionService.Create(c.Request.Context(), testID, &req, file, fileHeader)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrNotFound):
			response.Fail(c, http.StatusNotFound, response.ErrNotFound)
		case errors.Is(err, service.ErrUnsupportedFileType):
			response.Fail(c, http.StatusUnsupportedMediaType, response.ErrUnsupportedFile)
		case errors.Is(err, service.ErrFileTooLarge):
			response.Fail(c, http.StatusRequestEntityTooLarge, response.ErrFileTooLarge)
		default:
			response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		}
		return
	}

	response.Success(c, http.StatusCreated, gin.H{"submission": submission})
}

// ListSubmissions godoc
// GET /api/v1/tests/:test_id/submissions
// Lists a test's submissions with scores, newest first.
func (h *SubmissionHandler) ListSubmissions(c *gin.Context) {
	tid, ok := teacherID(c)
	if !ok {
		return
	}
	testID, ok := parseUUIDParam(c, "test_id")
	if !ok {
		return
	}

	submissions, err := h.submissionService.List(c.Request.Context(), tid, testID)
	if err != nil {
		failDomain(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"submissions": submissions})
}

// ExportSubmissions godoc
// GET /api/v1/tests/:test_id/submissions/export
// Downloads a test's results as an XLSX workbook.
func (h *SubmissionHandler) ExportSubmissions(c *gin.Context) {
	tid, ok := teacherID(c)
	if !ok {
		return
	}
	testID, ok := parseUUIDParam(c, "test_id")
	if !ok {
		return
	}

	workbook, err := h.exportService.ResultsWorkbook(c.Request.Context(), tid, testID)
	if err != nil {
		failDomain(c, err)
		return
	}

	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=\"results-%s.xlsx\"", testID))
	c.Data(http.StatusOK, "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet", workbook)
}
