package handler

import (
	"context"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/sonsbeekmedia/competgrade-api/internal/models"
	appErrors "github.com/sonsbeekmedia/competgrade-api/pkg/errors"
	"github.com/sonsbeekmedia/competgrade-api/pkg/response"
)

type commentService interface {
	SaveComment(ctx context.Context, actorID int64, req models.SaveCommentRequest) (int64, error)
	DeleteComment(ctx context.Context, actorID, commentID int64) (int64, error)
	GetSingle(ctx context.Context, activityID, userID int64, commentType int) (*models.SingleComment, error)
	ListForUser(ctx context.Context, activityID, userID int64) (*models.CommentGroups, error)
}

// CommentHandler exposes comment endpoints.
type CommentHandler struct {
	comments commentService
}

// NewCommentHandler constructs handler.
func NewCommentHandler(comments commentService) *CommentHandler {
	return &CommentHandler{comments: comments}
}

// ListForUser godoc
// @Summary List a user's comments split into self and appraiser buckets
// @Tags Comments
// @Produce json
// @Param activityId path int true "Activity id"
// @Param userId path int true "Subject user id"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /activities/{activityId}/users/{userId}/comments [get]
func (h *CommentHandler) ListForUser(c *gin.Context) {
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

	groups, err := h.comments.ListForUser(c.Request.Context(), activityID, userID)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.JSON(c, http.StatusOK, groups, nil)
}

// Save godoc
// @Summary Insert or update a comment
// @Tags Comments
// @Accept json
// @Produce json
// @Param activityId path int true "Activity id"
// @Param payload body models.SaveCommentRequest true "Comment payload"
// @Success 200 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /activities/{activityId}/comment [post]
func (h *CommentHandler) Save(c *gin.Context) {
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

	var req models.SaveCommentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid comment payload"))
		return
	}
	req.ActivityID = activityID

	commentID, err := h.comments.SaveComment(c.Request.Context(), claims.UserID, req)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.JSON(c, http.StatusOK, gin.H{"commentid": commentID}, nil)
}

// Delete godoc
// @Summary Delete a comment by id
// @Tags Comments
// @Produce json
// @Param commentId path int true "Comment id"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /comments/{commentId}/delete [post]
func (h *CommentHandler) Delete(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}
	commentID, err := pathID(c, "commentId")
	if err != nil {
		response.Error(c, err)
		return
	}

	deleted, err := h.comments.DeleteComment(c.Request.Context(), claims.UserID, commentID)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.JSON(c, http.StatusOK, gin.H{"commentid": deleted}, nil)
}

// GetSingle godoc
// @Summary Fetch the single comment in a slot, or an empty placeholder
// @Tags Comments
// @Produce json
// @Param activityId path int true "Activity id"
// @Param userId path int true "Subject user id"
// @Param type query int false "Comment type, defaults to global"
// @Success 200 {object} response.Envelope
// @Router /activities/{activityId}/users/{userId}/comment [get]
func (h *CommentHandler) GetSingle(c *gin.Context) {
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

	commentType := models.CommentTypeGlobal
	if raw := c.Query("type"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || (parsed != models.CommentTypeAppraisal && parsed != models.CommentTypeGlobal) {
			response.Error(c, appErrors.Clone(appErrors.ErrValidation, "invalid comment type"))
			return
		}
		commentType = parsed
	}

	single, err := h.comments.GetSingle(c.Request.Context(), activityID, userID, commentType)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.JSON(c, http.StatusOK, single, nil)
}
