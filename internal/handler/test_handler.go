package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stemsi/exscan-backend/internal/middleware"
	"github.com/stemsi/exscan-backend/internal/model"
	"github.com/stemsi/exscan-backend/internal/response"
	"github.com/stemsi/exscan-backend/internal/service"
	"github.com/stemsi/exscan-backend/internal/validator"
)

// TestHandler handles teacher-facing test management.
type TestHandler struct {
	testService *service.TestService
}

// NewTestHandler creates a new TestHandler.
func NewTestHandler(testService *service.TestService) *TestHandler {
	return &TestHandler{testService: testService}
}

// failDomain translates shared service-layer errors into API responses.
// Handlers call it after ruling out their endpoint-specific errors.
func failDomain(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrNotFound):
		response.Fail(c, http.StatusNotFound, response.ErrNotFound)
	case errors.Is(err, service.ErrNotOwner):
		response.Fail(c, http.StatusForbidden, response.ErrNotTestOwner)
	case errors.Is(err, service.ErrDuplicateTestName):
		response.Fail(c, http.StatusConflict, response.ErrDuplicateTestName)
	case errors.Is(err, service.ErrPositionTaken):
		response.Fail(c, http.StatusConflict, response.ErrPositionTaken)
	default:
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
	}
}

// teacherID extracts the authenticated teacher id, failing the request when
// the JWT middleware did not run.
func teacherID(c *gin.Context) (int, bool) {
	claims := middleware.GetClaims(c)
	if claims == nil {
		response.Fail(c, http.StatusUnauthorized, response.ErrTokenRequired)
		return 0, false
	}
	return claims.TeacherID, true
}

func parseUUIDParam(c *gin.Context, name string) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param(name))
	if err != nil {
		response.Fail(c, http.StatusBadRequest, response.ErrInvalidID)
		return uuid.Nil, false
	}
	return id, true
}

// CreateTest godoc
// POST /api/v1/tests
// Creates a test, optionally with inline questions and answers.
func (h *TestHandler) CreateTest(c *gin.Context) {
	tid, ok := teacherID(c)
	if !ok {
		return
	}

	var req model.CreateTestRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	detail, err := h.testService.Create(c.Request.Context(), tid, &req)
	if err != nil {
		failDomain(c, err)
		return
	}

	response.Success(c, http.StatusCreated, gin.H{"test": detail})
}

// ListTests godoc
// GET /api/v1/tests
// Lists the authenticated teacher's tests.
func (h *TestHandler) ListTests(c *gin.Context) {
	tid, ok := teacherID(c)
	if !ok {
		return
	}

	tests, err := h.testService.List(c.Request.Context(), tid)
	if err != nil {
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"tests": tests})
}

// GetTest godoc
// GET /api/v1/tests/:test_id
// Returns a test with its question tree and max score.
func (h *TestHandler) GetTest(c *gin.Context) {
	if _, ok := teacherID(c); !ok {
		return
	}
	id, ok := parseUUIDParam(c, "test_id")
	if !ok {
		return
	}

	detail, err := h.testService.GetDetail(c.Request.Context(), id)
	if err != nil {
		failDomain(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"test": detail})
}

// UpdateTest godoc
// PUT /api/v1/tests/:test_id
// Renames a test.
func (h *TestHandler) UpdateTest(c *gin.Context) {
	tid, ok := teacherID(c)
	if !ok {
		return
	}
	id, ok := parseUUIDParam(c, "test_id")
	if !ok {
		return
	}

	var req model.UpdateTestRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	test, err := h.testService.Rename(c.Request.Context(), tid, id, req.Name)
	if err != nil {
		failDomain(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"test": test})
}

// DeleteTest godoc
// DELETE /api/v1/tests/:test_id
// Deletes a test and everything under it.
func (h *TestHandler) DeleteTest(c *gin.Context) {
	tid, ok := teacherID(c)
	if !ok {
		return
	}
	id, ok := parseUUIDParam(c, "test_id")
	if !ok {
		return
	}

	if err := h.testService.Delete(c.Request.Context(), tid, id); err != nil {
		failDomain(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"message": "test deleted successfully"})
}
