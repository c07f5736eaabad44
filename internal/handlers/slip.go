package handlers

import (
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/raseedhq/raseed-backend/internal/apierr"
	"github.com/raseedhq/raseed-backend/internal/logger"
	"github.com/raseedhq/raseed-backend/internal/services"
	"github.com/raseedhq/raseed-backend/internal/warranty"
)

// Uploaded warranty documents are receipts/manuals; anything bigger is
// almost certainly a mistake.
const maxDocumentBytes = 15 << 20

type SlipHandler struct {
	log         *logger.Logger
	slipService services.SlipService
}

func NewSlipHandler(log *logger.Logger, slipService services.SlipService) *SlipHandler {
	return &SlipHandler{
		log:         log.With("handler", "SlipHandler"),
		slipService: slipService,
	}
}

// POST /api/slip/upload
func (sh *SlipHandler) Upload(c *gin.Context) {
	fileHeader, err := c.FormFile("file")
	if err != nil {
		RespondError(c, http.StatusBadRequest, "bad_request", fmt.Errorf("No file uploaded"))
		return
	}
	if fileHeader.Size > maxDocumentBytes {
		RespondError(c, http.StatusRequestEntityTooLarge, "file_too_large", fmt.Errorf("Document exceeds the size limit"))
		return
	}
	file, err := fileHeader.Open()
	if err != nil {
		RespondError(c, http.StatusBadRequest, "bad_request", err)
		return
	}
	defer file.Close()
	fileBytes, err := io.ReadAll(io.LimitReader(file, maxDocumentBytes+1))
	if err != nil {
		RespondError(c, http.StatusBadRequest, "bad_request", err)
		return
	}

	input := services.UploadSlipInput{
		ProductName:       c.PostForm("product_name"),
		Brand:             c.PostForm("brand"),
		Model:             c.PostForm("model"),
		SerialNumber:      c.PostForm("serial_number"),
		Notes:             c.PostForm("notes"),
		WarrantyStartDate: c.PostForm("warranty_start_date"),
		WarrantyEndDate:   c.PostForm("warranty_end_date"),
		FileName:          fileHeader.Filename,
		FileBytes:         fileBytes,
	}
	slip, err := sh.slipService.UploadSlip(c.Request.Context(), input)
	if err != nil {
		RespondError(c, http.StatusBadRequest, "upload_failed", err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"slip": slip})
}

// GET /api/slip/
func (sh *SlipHandler) List(c *gin.Context) {
	params := warranty.QueryParams{
		SearchTerm:    c.Query("search"),
		StatusFilter:  c.Query("status"),
		SortField:     c.Query("sort"),
		SortDirection: c.Query("direction"),
	}
	result, err := sh.slipService.ListSlips(c.Request.Context(), params)
	if err != nil {
		RespondError(c, http.StatusBadRequest, "list_failed", err)
		return
	}
	RespondOK(c, result)
}

// GET /api/slip/:id
func (sh *SlipHandler) Get(c *gin.Context) {
	slipID, ok := sh.slipID(c)
	if !ok {
		return
	}
	slip, err := sh.slipService.GetSlip(c.Request.Context(), slipID)
	if err != nil {
		sh.respondSlipError(c, err)
		return
	}
	RespondOK(c, gin.H{"slip": slip})
}

// PATCH /api/slip/:id/reminder
func (sh *SlipHandler) SetReminder(c *gin.Context) {
	slipID, ok := sh.slipID(c)
	if !ok {
		return
	}
	var req struct {
		ReminderSet bool `json:"reminder_set"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondError(c, http.StatusBadRequest, "bad_request", err)
		return
	}
	slip, err := sh.slipService.SetReminder(c.Request.Context(), slipID, req.ReminderSet)
	if err != nil {
		sh.respondSlipError(c, err)
		return
	}
	RespondOK(c, gin.H{"slip": slip})
}

// POST /api/slip/:id/transfer
func (sh *SlipHandler) Transfer(c *gin.Context) {
	slipID, ok := sh.slipID(c)
	if !ok {
		return
	}
	var req struct {
		Email string `json:"email"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondError(c, http.StatusBadRequest, "bad_request", err)
		return
	}
	slip, err := sh.slipService.TransferSlip(c.Request.Context(), slipID, req.Email)
	if err != nil {
		sh.respondSlipError(c, err)
		return
	}
	RespondOK(c, gin.H{"message": "Ownership transferred successfully", "slip": slip})
}

// PATCH /api/slip/:id/extend
func (sh *SlipHandler) Extend(c *gin.Context) {
	slipID, ok := sh.slipID(c)
	if !ok {
		return
	}
	var req struct {
		WarrantyEndDate string `json:"warranty_end_date"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondError(c, http.StatusBadRequest, "bad_request", err)
		return
	}
	slip, err := sh.slipService.ExtendWarranty(c.Request.Context(), slipID, req.WarrantyEndDate)
	if err != nil {
		sh.respondSlipError(c, err)
		return
	}
	RespondOK(c, gin.H{"slip": slip})
}

// DELETE /api/slip/:id
func (sh *SlipHandler) Delete(c *gin.Context) {
	slipID, ok := sh.slipID(c)
	if !ok {
		return
	}
	if err := sh.slipService.DeleteSlip(c.Request.Context(), slipID); err != nil {
		sh.respondSlipError(c, err)
		return
	}
	RespondOK(c, gin.H{"success": true})
}

// GET /api/slip/summary
func (sh *SlipHandler) Summary(c *gin.Context) {
	counts, err := sh.slipService.StatusSummary(c.Request.Context())
	if err != nil {
		RespondError(c, http.StatusBadRequest, "summary_failed", err)
		return
	}
	RespondOK(c, gin.H{"counts": counts})
}

func (sh *SlipHandler) slipID(c *gin.Context) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		RespondError(c, http.StatusBadRequest, "bad_request", fmt.Errorf("Invalid slip id"))
		return uuid.Nil, false
	}
	return id, true
}

func (sh *SlipHandler) respondSlipError(c *gin.Context, err error) {
	var aErr *apierr.Error
	if errors.As(err, &aErr) {
		RespondError(c, aErr.Status, aErr.Code, err)
		return
	}
	RespondError(c, http.StatusBadRequest, "slip_error", err)
}
