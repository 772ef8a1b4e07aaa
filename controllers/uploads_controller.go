package controllers

import (
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/cncdesign/cncbackend/metrics"
	"github.com/cncdesign/cncbackend/storage"
	"github.com/cncdesign/cncbackend/utils"
	"github.com/gin-gonic/gin"
)

// multipart framing allowance on top of the file size limit
const uploadOverhead = 1 << 20

const uploadPrefix = "submissions"

// POST /uploads
// Stores one file and returns the reference a client later sends in
// the attachments list of a submission.
func UploadAttachment(store storage.ObjectStore, validator *utils.FileValidator) gin.HandlerFunc {
	return func(c *gin.Context) {
		if store == nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"error": "uploads are not configured"})
			return
		}

		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, validator.MaxSize()+uploadOverhead)
		fh, err := c.FormFile("file")
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "missing file", "field": "file"})
			return
		}

		contentType, err := validator.ValidateFile(fh)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error(), "field": "file"})
			return
		}

		f, err := fh.Open()
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "failed to read file", "field": "file"})
			return
		}
		defer f.Close()

		key := storage.ObjectKey(uploadPrefix, contentType, time.Now())
		url, err := store.Upload(c.Request.Context(), key, f, fh.Size, contentType)
		if err != nil {
			slog.Error("upload attachment", "path", c.FullPath(), "key", key, "error", err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "upload failed"})
			return
		}

		kind := "file"
		if utils.IsImageType(contentType) {
			kind = "image"
		}
		metrics.UploadsStored.WithLabelValues(kind).Inc()

		c.JSON(http.StatusCreated, gin.H{
			"url":         url,
			"key":         key,
			"contentType": contentType,
			"kind":        kind,
			"size":        fh.Size,
		})
	}
}

// DELETE /admin/uploads/*key
// Removes a stored upload, e.g. the attachments of a spam submission.
func DeleteUpload(store storage.ObjectStore) gin.HandlerFunc {
	return func(c *gin.Context) {
		if store == nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"error": "uploads are not configured"})
			return
		}

		key := strings.TrimPrefix(c.Param("key"), "/")
		if !strings.HasPrefix(key, uploadPrefix+"/") || strings.Contains(key, "..") {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid upload key"})
			return
		}

		if err := store.Delete(c.Request.Context(), key); err != nil {
			slog.Error("delete upload", "key", key, "error", err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to delete upload"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"message": "upload deleted"})
	}
}
