package handler

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/stemsi/exscan-backend/internal/response"
	"github.com/stemsi/exscan-backend/internal/service"
)

// SheetHandler serves printable answer sheet PDFs.
type SheetHandler struct {
	sheetService *service.SheetService
}

// NewSheetHandler creates a new SheetHandler.
func NewSheetHandler(sheetService *service.SheetService) *SheetHandler {
	return &SheetHandler{sheetService: sheetService}
}

// GetSheet godoc
// GET /api/v1/tests/:test_id/sheet
// Returns the answer sheet PDF for printing.
func (h *SheetHandler) GetSheet(c *gin.Context) {
	tid, ok := teacherID(c)
	if !ok {
		return
	}
	testID, ok := parseUUIDParam(c, "test_id")
	if !ok {
		return
	}

	pdf, err := h.sheetService.Get(c.Request.Context(), tid, testID)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrNotFound), errors.Is(err, service.ErrNotOwner):
			failDomain(c, err)
		default:
			response.Fail(c, http.StatusInternalServerError, response.ErrSheetRender)
		}
		return
	}

	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=\"answer-sheet-%s.pdf\"", testID))
	c.Data(http.StatusOK, "application/pdf", pdf)
}
