package controllers

import (
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/cncdesign/cncbackend/config"
	"github.com/cncdesign/cncbackend/dto"
	"github.com/cncdesign/cncbackend/metrics"
	"github.com/cncdesign/cncbackend/models"
	"github.com/cncdesign/cncbackend/repository"
	"github.com/cncdesign/cncbackend/utils"
	"github.com/gin-gonic/gin"
)

// POST /contact
func CreateSubmission(submissions repository.SubmissionStore, policy *utils.AttachmentPolicy, maxAttachments int) gin.HandlerFunc {
	return func(c *gin.Context) {
		var body dto.CreateSubmissionDTO
		if err := c.ShouldBindJSON(&body); err != nil {
			metrics.SubmissionsRejected.WithLabelValues("invalid_body").Inc()
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
			return
		}

		if field := firstMissing(
			requiredField{"name", body.Name},
			requiredField{"email", body.Email},
			requiredField{"phone", body.Phone},
			requiredField{"projectType", body.ProjectType},
			requiredField{"description", body.Description},
		); field != "" {
			metrics.SubmissionsRejected.WithLabelValues("missing_field").Inc()
			c.JSON(http.StatusBadRequest, gin.H{"error": "missing required field", "field": field})
			return
		}

		images := nonBlank(body.Images)
		files := nonBlank(body.Files)
		if maxAttachments > 0 && len(images)+len(files)+len(nonBlank(body.Attachments)) > maxAttachments {
			metrics.SubmissionsRejected.WithLabelValues("too_many_attachments").Inc()
			c.JSON(http.StatusBadRequest, gin.H{"error": "too many attachments", "field": "attachments", "max": maxAttachments})
			return
		}

		classifiedImages, classifiedFiles, err := policy.Classify(body.Attachments)
		if err != nil {
			var attErr *utils.AttachmentError
			if errors.As(err, &attErr) {
				metrics.SubmissionsRejected.WithLabelValues("attachment_type").Inc()
				c.JSON(http.StatusBadRequest, gin.H{
					"error":  "attachment type not allowed",
					"field":  "attachments",
					"index":  attErr.Index,
					"reason": attErr.Reason,
				})
				return
			}
			slog.Error("classify attachments", "path", c.FullPath(), "error", err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to save submission"})
			return
		}

		sub := models.Submission{
			Name:        strings.TrimSpace(body.Name),
			Email:       strings.TrimSpace(body.Email),
			Phone:       strings.TrimSpace(body.Phone),
			ProjectType: body.ProjectType,
			Description: body.Description,
			Budget:      body.Budget,
			Timeline:    body.Timeline,
			Language:    utils.NormalizeLanguage(body.Language),
			Images:      append(images, classifiedImages...),
			Files:       append(files, classifiedFiles...),
			Status:      models.SubmissionStatusPending,
		}

		if err := submissions.Create(c.Request.Context(), &sub); err != nil {
			slog.Error("create submission", "path", c.FullPath(), "error", err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to save submission"})
			return
		}
		metrics.SubmissionsCreated.Inc()

		c.JSON(http.StatusCreated, gin.H{
			"success":     true,
			"id":          sub.ID,
			"imagesCount": len(sub.Images),
			"filesCount":  len(sub.Files),
		})
	}
}

// GET /contact, GET /admin/submissions
func GetSubmissions(submissions repository.SubmissionStore, q config.QueryConfig) gin.HandlerFunc {
	return func(c *gin.Context) {
		filter := repository.SubmissionFilter{ListOptions: listOptions(c, q)}
		if raw := strings.TrimSpace(c.Query("status")); raw != "" {
			status, err := models.ParseSubmissionStatus(raw)
			if err != nil {
				c.JSON(http.StatusBadRequest, gin.H{
					"error":   "invalid status",
					"field":   "status",
					"allowed": models.SubmissionStatuses,
				})
				return
			}
			filter.Status = status
		}

		items, err := submissions.List(c.Request.Context(), filter)
		if err != nil {
			slog.Error("list submissions", "path", c.FullPath(), "error", err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to fetch submissions"})
			return
		}
		c.JSON(http.StatusOK, items)
	}
}

// GET /contact/:id
func GetSubmission(submissions repository.SubmissionStore) gin.HandlerFunc {
	return func(c *gin.Context) {
		sub, err := submissions.Get(c.Request.Context(), c.Param("id"))
		if err != nil {
			if errors.Is(err, repository.ErrNotFound) {
				c.JSON(http.StatusNotFound, gin.H{"error": "submission not found"})
				return
			}
			slog.Error("get submission", "path", c.FullPath(), "error", err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to fetch submission"})
			return
		}
		c.JSON(http.StatusOK, sub)
	}
}

// PATCH /contact/:id/status
func UpdateSubmissionStatus(submissions repository.SubmissionStore) gin.HandlerFunc {
	return func(c *gin.Context) {
		var body dto.UpdateSubmissionStatusDTO
		if err := c.ShouldBindJSON(&body); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "missing required field", "field": "status"})
			return
		}

		status, err := models.ParseSubmissionStatus(strings.TrimSpace(body.Status))
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{
				"error":   "invalid status",
				"field":   "status",
				"allowed": models.SubmissionStatuses,
			})
			return
		}

		sub, err := submissions.UpdateStatus(c.Request.Context(), c.Param("id"), status)
		if err != nil {
			if errors.Is(err, repository.ErrNotFound) {
				c.JSON(http.StatusNotFound, gin.H{"error": "submission not found"})
				return
			}
			slog.Error("update submission status", "path", c.FullPath(), "error", err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to update submission"})
			return
		}
		c.JSON(http.StatusOK, sub)
	}
}

// DELETE /contact?id=, DELETE /contact/:id
func DeleteSubmission(submissions repository.SubmissionStore) gin.HandlerFunc {
	return func(c *gin.Context) {
		id := recordID(c)
		if id == "" {
			c.JSON(http.StatusBadRequest, gin.H{"error": "missing id", "field": "id"})
			return
		}

		if err := submissions.Delete(c.Request.Context(), id); err != nil {
			if errors.Is(err, repository.ErrNotFound) {
				c.JSON(http.StatusNotFound, gin.H{"error": "submission not found"})
				return
			}
			slog.Error("delete submission", "path", c.FullPath(), "error", err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to delete submission"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"message": "submission deleted"})
	}
}
