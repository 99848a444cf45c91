package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/stemsi/exscan-backend/internal/model"
	"github.com/stemsi/exscan-backend/internal/response"
	"github.com/stemsi/exscan-backend/internal/service"
	"github.com/stemsi/exscan-backend/internal/validator"
)

// QuestionHandler handles question management on existing tests.
type QuestionHandler struct {
	questionService *service.QuestionService
}

// NewQuestionHandler creates a new QuestionHandler.
func NewQuestionHandler(questionService *service.QuestionService) *QuestionHandler {
	return &QuestionHandler{questionService: questionService}
}

// AddQuestion godoc
// POST /api/v1/tests/:test_id/questions
// Appends a question at the next free position number.
func (h *QuestionHandler) AddQuestion(c *gin.Context) {
	tid, ok := teacherID(c)
	if !ok {
		return
	}
	testID, ok := parseUUIDParam(c, "test_id")
	if !ok {
		return
	}

	var req model.CreateQuestionRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	question, err := h.questionService.AddToTest(c.Request.Context(), tid, testID, &req)
	if err != nil {
		failDomain(c, err)
		return
	}

	response.Success(c, http.StatusCreated, gin.H{"question": question})
}

// UpdateQuestion godoc
// PUT /api/v1/questions/:question_id
// Edits a question's prompt text.
func (h *QuestionHandler) UpdateQuestion(c *gin.Context) {
	tid, ok := teacherID(c)
	if !ok {
		return
	}
	id, ok := parseUUIDParam(c, "question_id")
	if !ok {
		return
	}

	var req model.UpdateQuestionRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	question, err := h.questionService.UpdateContent(c.Request.Context(), tid, id, req.Content)
	if err != nil {
		failDomain(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"question": question})
}

// DeleteQuestion godoc
// DELETE /api/v1/questions/:question_id
// Deletes a question and its answers.
func (h *QuestionHandler) DeleteQuestion(c *gin.Context) {
	tid, ok := teacherID(c)
	if !ok {
		return
	}
	id, ok := parseUUIDParam(c, "question_id")
	if !ok {
		return
	}

	if err := h.questionService.Delete(c.Request.Context(), tid, id); err != nil {
		failDomain(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"message": "question deleted successfully"})
}
