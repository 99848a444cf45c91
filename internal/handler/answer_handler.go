package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/stemsi/exscan-backend/internal/model"
	"github.com/stemsi/exscan-backend/internal/response"
	"github.com/stemsi/exscan-backend/internal/service"
	"github.com/stemsi/exscan-backend/internal/validator"
)

// AnswerHandler handles answer option management on existing questions.
type AnswerHandler struct {
	answerService *service.AnswerService
}

// NewAnswerHandler creates a new AnswerHandler.
func NewAnswerHandler(answerService *service.AnswerService) *AnswerHandler {
	return &AnswerHandler{answerService: answerService}
}

// AddAnswer godoc
// POST /api/v1/questions/:question_id/answers
// Appends an answer option at the next free position number.
func (h *AnswerHandler) AddAnswer(c *gin.Context) {
	tid, ok := teacherID(c)
	if !ok {
		return
	}
	questionID, ok := parseUUIDParam(c, "question_id")
	if !ok {
		return
	}

	var req model.CreateAnswerRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	answer, err := h.answerService.AddToQuestion(c.Request.Context(), tid, questionID, &req)
	if err != nil {
		failDomain(c, err)
		return
	}

	response.Success(c, http.StatusCreated, gin.H{"answer": answer})
}

// UpdateAnswer godoc
// PUT /api/v1/answers/:answer_id
// Edits an answer's content and correctness flag.
func (h *AnswerHandler) UpdateAnswer(c *gin.Context) {
	tid, ok := teacherID(c)
	if !ok {
		return
	}
	id, ok := parseUUIDParam(c, "answer_id")
	if !ok {
		return
	}

	var req model.UpdateAnswerRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	answer, err := h.answerService.Update(c.Request.Context(), tid, id, &req)
	if err != nil {
		failDomain(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"answer": answer})
}

// DeleteAnswer godoc
// DELETE /api/v1/answers/:answer_id
// Deletes an answer option.
func (h *AnswerHandler) DeleteAnswer(c *gin.Context) {
	tid, ok := teacherID(c)
	if !ok {
		return
	}
	id, ok := parseUUIDParam(c, "answer_id")
	if !ok {
		return
	}

	if err := h.answerService.Delete(c.Request.Context(), tid, id); err != nil {
		failDomain(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"message": "answer deleted successfully"})
}
