package handlers

import (
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/raseedhq/raseed-backend/internal/apierr"
	"github.com/raseedhq/raseed-backend/internal/logger"
	"github.com/raseedhq/raseed-backend/internal/services"
)

type RegistrationHandler struct {
	log                 *logger.Logger
	registrationService services.RegistrationService
}

func NewRegistrationHandler(log *logger.Logger, registrationService services.RegistrationService) *RegistrationHandler {
	return &RegistrationHandler{
		log:                 log.With("handler", "RegistrationHandler"),
		registrationService: registrationService,
	}
}

// POST /api/warranty/register
//
// Multipart form submitted by point-of-sale kiosks: a receipt image plus
// the QR payload printed on the warranty card.
func (rh *RegistrationHandler) RegisterWarranty(c *gin.Context) {
	email := c.PostForm("email")
	qrData := c.PostForm("qr_data")
	if qrData == "" {
		RespondError(c, http.StatusBadRequest, "bad_request", fmt.Errorf("Missing qr_data"))
		return
	}

	fileHeader, err := c.FormFile("receipt")
	if err != nil {
		RespondError(c, http.StatusBadRequest, "bad_request", fmt.Errorf("No receipt uploaded"))
		return
	}
	if fileHeader.Size > maxDocumentBytes {
		RespondError(c, http.StatusRequestEntityTooLarge, "file_too_large", fmt.Errorf("Receipt exceeds the size limit"))
		return
	}
	file, err := fileHeader.Open()
	if err != nil {
		RespondError(c, http.StatusBadRequest, "bad_request", err)
		return
	}
	defer file.Close()
	receipt, err := io.ReadAll(io.LimitReader(file, maxDocumentBytes+1))
	if err != nil {
		RespondError(c, http.StatusBadRequest, "bad_request", err)
		return
	}

	slip, err := rh.registrationService.RegisterWarranty(c.Request.Context(), email, qrData, receipt, fileHeader.Filename)
	if err != nil {
		var aErr *apierr.Error
		if errors.As(err, &aErr) {
			RespondError(c, aErr.Status, aErr.Code, err)
			return
		}
		RespondError(c, http.StatusBadRequest, "registration_failed", err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"message": "Warranty registered successfully", "slip": slip})
}
