package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/sonsbeekmedia/competgrade-api/internal/models"
	appErrors "github.com/sonsbeekmedia/competgrade-api/pkg/errors"
	"github.com/sonsbeekmedia/competgrade-api/pkg/response"
)

type activityService interface {
	Resolve(ctx context.Context, activityID int64) (*models.Activity, error)
	DeleteActivity(ctx context.Context, actorID, activityID int64) error
}

// ActivityHandler exposes activity endpoints.
type ActivityHandler struct {
	activities activityService
}

// NewActivityHandler constructs handler.
func NewActivityHandler(activities activityService) *ActivityHandler {
	return &ActivityHandler{activities: activities}
}

// Get godoc
// @Summary Fetch an activity
// @Tags Activities
// @Produce json
// @Param activityId path int true "Activity id"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /activities/{activityId} [get]
func (h *ActivityHandler) Get(c *gin.Context) {
	activityID, err := pathID(c, "activityId")
	if err != nil {
		response.Error(c, err)
		return
	}

	activity, err := h.activities.Resolve(c.Request.Context(), activityID)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.JSON(c, http.StatusOK, activity, nil)
}

// Delete godoc
// @Summary Delete an activity and all its dependent records
// @Tags Activities
// @Produce json
// @Param activityId path int true "Activity id"
// @Success 204 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /activities/{activityId} [delete]
func (h *ActivityHandler) Delete(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}
	activityID, err := pathID(c, "activityId")
	if err != nil {
		response.Error(c, err)
		return
	}

	if err := h.activities.DeleteActivity(c.Request.Context(), claims.UserID, activityID); err != nil {
		response.Error(c, err)
		return
	}

	response.NoContent(c)
}
