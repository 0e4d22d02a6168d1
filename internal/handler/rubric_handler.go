package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/sonsbeekmedia/competgrade-api/internal/models"
	appErrors "github.com/sonsbeekmedia/competgrade-api/pkg/errors"
	"github.com/sonsbeekmedia/competgrade-api/pkg/response"
)

type rubricService interface {
	ListRubric(ctx context.Context, activityID int64) ([]models.ScriptWithCriteria, error)
	SaveScript(ctx context.Context, actorID int64, req models.SaveScriptRequest) (int64, error)
	DeleteScript(ctx context.Context, actorID, scriptID int64) error
	SaveCriterium(ctx context.Context, actorID int64, req models.SaveCriteriumRequest) (int64, error)
	DeleteCriterium(ctx context.Context, actorID, criteriumID int64) error
}

// RubricHandler exposes script and criterium management endpoints.
type RubricHandler struct {
	rubric rubricService
}

// NewRubricHandler constructs handler.
func NewRubricHandler(rubric rubricService) *RubricHandler {
	return &RubricHandler{rubric: rubric}
}

// List godoc
// @Summary List an activity's scripts with nested criteria
// @Tags Rubric
// @Produce json
// @Param activityId path int true "Activity id"
// @Success 200 {object} response.Envelope
// @Router /activities/{activityId}/rubric [get]
func (h *RubricHandler) List(c *gin.Context) {
	activityID, err := pathID(c, "activityId")
	if err != nil {
		response.Error(c, err)
		return
	}

	scripts, err := h.rubric.ListRubric(c.Request.Context(), activityID)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.JSON(c, http.StatusOK, gin.H{"scripts": scripts}, nil)
}

// SaveScript godoc
// @Summary Insert or update a script
// @Tags Rubric
// @Accept json
// @Produce json
// @Param activityId path int true "Activity id"
// @Param payload body models.SaveScriptRequest true "Script payload"
// @Success 200 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Router /activities/{activityId}/scripts [post]
func (h *RubricHandler) SaveScript(c *gin.Context) {
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

	var req models.SaveScriptRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid script payload"))
		return
	}
	req.ActivityID = activityID

	scriptID, err := h.rubric.SaveScript(c.Request.Context(), claims.UserID, req)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.JSON(c, http.StatusOK, gin.H{"scriptid": scriptID}, nil)
}

// DeleteScript godoc
// @Summary Delete a script and its criteria
// @Tags Rubric
// @Produce json
// @Param scriptId path int true "Script id"
// @Success 204 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /scripts/{scriptId} [delete]
func (h *RubricHandler) DeleteScript(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}
	scriptID, err := pathID(c, "scriptId")
	if err != nil {
		response.Error(c, err)
		return
	}

	if err := h.rubric.DeleteScript(c.Request.Context(), claims.UserID, scriptID); err != nil {
		response.Error(c, err)
		return
	}

	response.NoContent(c)
}

// SaveCriterium godoc
// @Summary Insert or update a criterium
// @Tags Rubric
// @Accept json
// @Produce json
// @Param activityId path int true "Activity id"
// @Param payload body models.SaveCriteriumRequest true "Criterium payload"
// @Success 200 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Router /activities/{activityId}/criteria [post]
func (h *RubricHandler) SaveCriterium(c *gin.Context) {
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

	var req models.SaveCriteriumRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid criterium payload"))
		return
	}
	req.ActivityID = activityID

	criteriumID, err := h.rubric.SaveCriterium(c.Request.Context(), claims.UserID, req)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.JSON(c, http.StatusOK, gin.H{"criteriumid": criteriumID}, nil)
}

// DeleteCriterium godoc
// @Summary Delete a criterium
// @Tags Rubric
// @Produce json
// @Param criteriumId path int true "Criterium id"
// @Success 204 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /criteria/{criteriumId} [delete]
func (h *RubricHandler) DeleteCriterium(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}
	criteriumID, err := pathID(c, "criteriumId")
	if err != nil {
		response.Error(c, err)
		return
	}

	if err := h.rubric.DeleteCriterium(c.Request.Context(), claims.UserID, criteriumID); err != nil {
		response.Error(c, err)
		return
	}

	response.NoContent(c)
}
