package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/sonsbeekmedia/competgrade-api/internal/models"
	appErrors "github.com/sonsbeekmedia/competgrade-api/pkg/errors"
)

// HTTPAPI talks to the grading server over its REST surface.
type HTTPAPI struct {
	base   string
	token  string
	client *http.Client
}

// NewHTTPAPI builds an API bound to a base URL and bearer token.
func NewHTTPAPI(base, token string, timeout time.Duration) *HTTPAPI {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &HTTPAPI{
		base:   base,
		token:  token,
		client: &http.Client{Timeout: timeout},
	}
}

type envelope struct {
	Data  json.RawMessage `json:"data"`
	Error *struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

func (a *HTTPAPI) call(ctx context.Context, method, path string, body, dest interface{}) error {
	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encode request: %w", err)
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, a.base+path, reader)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if a.token != "" {
		req.Header.Set("Authorization", "Bearer "+a.token)
	}

	res, err := a.client.Do(req)
	if err != nil {
		return fmt.Errorf("call %s %s: %w", method, path, err)
	}
	defer res.Body.Close() //nolint:errcheck

	var env envelope
	if err := json.NewDecoder(res.Body).Decode(&env); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	if res.StatusCode >= 400 {
		if env.Error != nil {
			return appErrors.New(env.Error.Code, res.StatusCode, env.Error.Message)
		}
		return appErrors.New(appErrors.ErrInternal.Code, res.StatusCode, http.StatusText(res.StatusCode))
	}
	if dest == nil {
		return nil
	}
	if err := json.Unmarshal(env.Data, dest); err != nil {
		return fmt.Errorf("decode payload: %w", err)
	}
	return nil
}

// Roster implements API.
func (a *HTTPAPI) Roster(ctx context.Context, activityID, groupID int64) (*models.Roster, error) {
	var roster models.Roster
	path := fmt.Sprintf("/api/v1/activities/%d/userlist", activityID)
	if groupID > 0 {
		path = fmt.Sprintf("%s?groupid=%d", path, groupID)
	}
	if err := a.call(ctx, http.MethodGet, path, nil, &roster); err != nil {
		return nil, err
	}
	return &roster, nil
}

// SaveGrade implements API.
func (a *HTTPAPI) SaveGrade(ctx context.Context, req models.SaveGradeRequest) (int64, error) {
	var result struct {
		GradeID int64 `json:"gradeid"`
	}
	path := fmt.Sprintf("/api/v1/activities/%d/grade", req.ActivityID)
	if err := a.call(ctx, http.MethodPost, path, req, &result); err != nil {
		return 0, err
	}
	return result.GradeID, nil
}

// DeleteGrade implements API.
func (a *HTTPAPI) DeleteGrade(ctx context.Context, req models.DeleteGradeRequest) error {
	path := fmt.Sprintf("/api/v1/activities/%d/deletegrade", req.ActivityID)
	return a.call(ctx, http.MethodPost, path, req, nil)
}

// Comments implements API.
func (a *HTTPAPI) Comments(ctx context.Context, activityID, userID int64) (*models.CommentGroups, error) {
	var groups models.CommentGroups
	path := fmt.Sprintf("/api/v1/activities/%d/users/%d/comments", activityID, userID)
	if err := a.call(ctx, http.MethodGet, path, nil, &groups); err != nil {
		return nil, err
	}
	return &groups, nil
}

// SaveComment implements API.
func (a *HTTPAPI) SaveComment(ctx context.Context, req models.SaveCommentRequest) (int64, error) {
	var result struct {
		CommentID int64 `json:"commentid"`
	}
	path := fmt.Sprintf("/api/v1/activities/%d/comment", req.ActivityID)
	if err := a.call(ctx, http.MethodPost, path, req, &result); err != nil {
		return 0, err
	}
	return result.CommentID, nil
}

// DeleteComment implements API.
func (a *HTTPAPI) DeleteComment(ctx context.Context, commentID int64) (int64, error) {
	var result struct {
		CommentID int64 `json:"commentid"`
	}
	path := fmt.Sprintf("/api/v1/comments/%d/delete", commentID)
	if err := a.call(ctx, http.MethodPost, path, nil, &result); err != nil {
		return 0, err
	}
	return result.CommentID, nil
}

// SingleComment implements API.
func (a *HTTPAPI) SingleComment(ctx context.Context, activityID, userID int64, commentType int) (*models.SingleComment, error) {
	var single models.SingleComment
	path := fmt.Sprintf("/api/v1/activities/%d/users/%d/comment?type=%d", activityID, userID, commentType)
	if err := a.call(ctx, http.MethodGet, path, nil, &single); err != nil {
		return nil, err
	}
	return &single, nil
}

// Certification implements API.
func (a *HTTPAPI) Certification(ctx context.Context, activityID, userID int64) ([]models.CertificationItem, error) {
	var result struct {
		Certifs []models.CertificationItem `json:"certifs"`
	}
	path := fmt.Sprintf("/api/v1/activities/%d/users/%d/certification", activityID, userID)
	if err := a.call(ctx, http.MethodGet, path, nil, &result); err != nil {
		return nil, err
	}
	return result.Certifs, nil
}
