package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/sonsbeekmedia/competgrade-api/internal/models"
	"github.com/sonsbeekmedia/competgrade-api/pkg/response"
)

type certificationService interface {
	Status(ctx context.Context, activityID, userID int64) ([]models.CertificationItem, error)
}

// CertificationHandler exposes the read-only certification checklist.
type CertificationHandler struct {
	certifications certificationService
}

// NewCertificationHandler constructs handler.
func NewCertificationHandler(certifications certificationService) *CertificationHandler {
	return &CertificationHandler{certifications: certifications}
}

// Status godoc
// @Summary Certification checklist for a user
// @Tags Certifications
// @Produce json
// @Param activityId path int true "Activity id"
// @Param userId path int true "Subject user id"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /activities/{activityId}/users/{userId}/certification [get]
func (h *CertificationHandler) Status(c *gin.Context) {
	activityID, err := pathID(c, "activityId")
	if err != nil {
		response.Error(c, err)
		return
	}
	userID, err := pathID(c, "userId")
	if err != nil {
		response.Error(c, err)
		return
	}

	items, err := h.certifications.Status(c.Request.Context(), activityID, userID)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.JSON(c, http.StatusOK, gin.H{"certifs": items}, nil)
}
