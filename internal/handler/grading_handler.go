package handler

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"path/filepath"

	"github.com/gin-gonic/gin"

	"github.com/sonsbeekmedia/competgrade-api/internal/models"
	appErrors "github.com/sonsbeekmedia/competgrade-api/pkg/errors"
	"github.com/sonsbeekmedia/competgrade-api/pkg/response"
)

type gradingService interface {
	SaveGrade(ctx context.Context, actorID int64, req models.SaveGradeRequest) (int64, error)
	DeleteGrade(ctx context.Context, actorID int64, req models.DeleteGradeRequest) error
	Roster(ctx context.Context, activityID, groupID int64) (*models.Roster, error)
	ExportRoster(ctx context.Context, activityID, groupID int64, format string) ([]byte, string, error)
}

type exportArchiver interface {
	Archive(filename string, payload []byte) (string, error)
	Download(token string) (*os.File, error)
}

// GradingHandler exposes roster and grade endpoints.
type GradingHandler struct {
	grading  gradingService
	archiver exportArchiver
}

// NewGradingHandler constructs handler. The archiver may be nil when
// export archiving is disabled.
func NewGradingHandler(grading gradingService, archiver exportArchiver) *GradingHandler {
	return &GradingHandler{grading: grading, archiver: archiver}
}

// Userlist godoc
// @Summary List gradeable users with their global grade
// @Tags Grading
// @Produce json
// @Param activityId path int true "Activity id"
// @Param groupid query int false "Restrict to group"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /activities/{activityId}/userlist [get]
func (h *GradingHandler) Userlist(c *gin.Context) {
	activityID, err := pathID(c, "activityId")
	if err != nil {
		response.Error(c, err)
		return
	}
	groupID, err := queryID(c, "groupid")
	if err != nil {
		response.Error(c, err)
		return
	}

	roster, err := h.grading.Roster(c.Request.Context(), activityID, groupID)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.JSON(c, http.StatusOK, roster, nil)
}

// SaveGrade godoc
// @Summary Insert or update a grade
// @Tags Grading
// @Accept json
// @Produce json
// @Param activityId path int true "Activity id"
// @Param payload body models.SaveGradeRequest true "Grade payload"
// @Success 200 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /activities/{activityId}/grade [post]
func (h *GradingHandler) SaveGrade(c *gin.Context) {
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

	var req models.SaveGradeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid grade payload"))
		return
	}
	req.ActivityID = activityID

	gradeID, err := h.grading.SaveGrade(c.Request.Context(), claims.UserID, req)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.JSON(c, http.StatusOK, gin.H{"gradeid": gradeID}, nil)
}

// DeleteGrade godoc
// @Summary Delete the grade in a slot
// @Tags Grading
// @Accept json
// @Produce json
// @Param activityId path int true "Activity id"
// @Param payload body models.DeleteGradeRequest true "Slot payload"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /activities/{activityId}/deletegrade [post]
func (h *GradingHandler) DeleteGrade(c *gin.Context) {
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

	var req models.DeleteGradeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	req.ActivityID = activityID

	if err := h.grading.DeleteGrade(c.Request.Context(), claims.UserID, req); err != nil {
		response.Error(c, err)
		return
	}

	response.JSON(c, http.StatusOK, gin.H{"warnings": []string{}}, nil)
}

// Export godoc
// @Summary Export the roster as CSV or PDF
// @Tags Grading
// @Produce octet-stream
// @Param activityId path int true "Activity id"
// @Param format query string true "csv or pdf"
// @Param groupid query int false "Restrict to group"
// @Success 200 {file} file
// @Failure 400 {object} response.Envelope
// @Router /activities/{activityId}/export [get]
func (h *GradingHandler) Export(c *gin.Context) {
	activityID, err := pathID(c, "activityId")
	if err != nil {
		response.Error(c, err)
		return
	}
	groupID, err := queryID(c, "groupid")
	if err != nil {
		response.Error(c, err)
		return
	}
	format := c.DefaultQuery("format", "csv")

	payload, contentType, err := h.grading.ExportRoster(c.Request.Context(), activityID, groupID, format)
	if err != nil {
		response.Error(c, err)
		return
	}

	filename := fmt.Sprintf("roster-%d.%s", activityID, format)
	if h.archiver != nil {
		token, err := h.archiver.Archive(filename, payload)
		if err != nil {
			response.Error(c, err)
			return
		}
		c.Header("X-Export-Token", token)
	}
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	c.Data(http.StatusOK, contentType, payload)
}

// DownloadExport godoc
// @Summary Download an archived roster export by signed token
// @Tags Grading
// @Produce octet-stream
// @Param token query string true "Signed download token"
// @Success 200 {file} file
// @Failure 403 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /exports/download [get]
func (h *GradingHandler) DownloadExport(c *gin.Context) {
	if h.archiver == nil {
		response.Error(c, appErrors.Clone(appErrors.ErrNotFound, "export archive disabled"))
		return
	}
	token := c.Query("token")
	if token == "" {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "token required"))
		return
	}

	file, err := h.archiver.Download(token)
	if err != nil {
		response.Error(c, err)
		return
	}
	defer file.Close() //nolint:errcheck

	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filepath.Base(file.Name())))
	c.File(file.Name())
}
