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

// GET /projects
func GetProjects(projects repository.ProjectStore, q config.QueryConfig) gin.HandlerFunc {
	return func(c *gin.Context) {
		filter := repository.ProjectFilter{
			ListOptions: listOptions(c, q),
			Category:    strings.TrimSpace(c.Query("category")),
		}
		if b, err := utils.ParseBoolQuery(c.Query("featured")); err == nil && b != nil {
			filter.Featured = b
		}

		items, err := projects.List(c.Request.Context(), filter)
		if err != nil {
			slog.Error("list projects", "path", c.FullPath(), "error", err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to fetch projects"})
			return
		}
		c.JSON(http.StatusOK, items)
	}
}

// GET /projects/:id
func GetProject(projects repository.ProjectStore) gin.HandlerFunc {
	return func(c *gin.Context) {
		p, err := projects.Get(c.Request.Context(), c.Param("id"))
		if err != nil {
			if errors.Is(err, repository.ErrNotFound) {
				c.JSON(http.StatusNotFound, gin.H{"error": "project not found"})
				return
			}
			slog.Error("get project", "path", c.FullPath(), "error", err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to fetch project"})
			return
		}
		c.JSON(http.StatusOK, p)
	}
}

// POST /projects
func AddProject(projects repository.ProjectStore) gin.HandlerFunc {
	return func(c *gin.Context) {
		var body dto.CreateProjectDTO
		if err := c.ShouldBindJSON(&body); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
			return
		}

		materials := nonBlank(body.Materials)
		images := nonBlank(body.Images)
		if field := firstMissing(
			requiredField{"titleEn", body.TitleEn},
			requiredField{"titleAm", body.TitleAm},
			requiredField{"descriptionEn", body.DescriptionEn},
			requiredField{"descriptionAm", body.DescriptionAm},
			requiredField{"category", body.Category},
			requiredField{"materials", strings.Join(materials, "")},
			requiredField{"images", strings.Join(images, "")},
		); field != "" {
			c.JSON(http.StatusBadRequest, gin.H{"error": "missing required field", "field": field})
			return
		}

		p := models.Project{
			TitleEn:       body.TitleEn,
			TitleAm:       body.TitleAm,
			DescriptionEn: body.DescriptionEn,
			DescriptionAm: body.DescriptionAm,
			Category:      strings.TrimSpace(body.Category),
			Materials:     materials,
			Dimensions:    body.Dimensions,
			Images:        images,
			Featured:      body.IsFeatured(),
		}

		if err := projects.Create(c.Request.Context(), &p); err != nil {
			slog.Error("create project", "path", c.FullPath(), "error", err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to save project"})
			return
		}
		metrics.ProjectsCreated.Inc()

		c.JSON(http.StatusCreated, p)
	}
}

// PATCH /projects/:id
func UpdateProject(projects repository.ProjectStore) gin.HandlerFunc {
	return func(c *gin.Context) {
		var body dto.UpdateProjectDTO
		if err := c.ShouldBindJSON(&body); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
			return
		}

		patch := body.ToPatch()
		if patch.Empty() {
			c.JSON(http.StatusBadRequest, gin.H{"error": "no fields to update"})
			return
		}
		if field := blankInPatch(&patch); field != "" {
			c.JSON(http.StatusBadRequest, gin.H{"error": "field cannot be empty", "field": field})
			return
		}

		p, err := projects.Update(c.Request.Context(), c.Param("id"), patch)
		if err != nil {
			if errors.Is(err, repository.ErrNotFound) {
				c.JSON(http.StatusNotFound, gin.H{"error": "project not found"})
				return
			}
			slog.Error("update project", "path", c.FullPath(), "error", err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to update project"})
			return
		}
		c.JSON(http.StatusOK, p)
	}
}

// blankInPatch names the first required field the patch would blank out.
// Blank list entries are dropped from the patch in place.
func blankInPatch(patch *models.ProjectPatch) string {
	for _, f := range []struct {
		name  string
		value *string
	}{
		{"titleEn", patch.TitleEn},
		{"titleAm", patch.TitleAm},
		{"descriptionEn", patch.DescriptionEn},
		{"descriptionAm", patch.DescriptionAm},
		{"category", patch.Category},
	} {
		if f.value != nil && strings.TrimSpace(*f.value) == "" {
			return f.name
		}
	}
	if patch.Materials != nil {
		materials := nonBlank(*patch.Materials)
		if len(materials) == 0 {
			return "materials"
		}
		patch.Materials = &materials
	}
	if patch.Images != nil {
		images := nonBlank(*patch.Images)
		if len(images) == 0 {
			return "images"
		}
		patch.Images = &images
	}
	return ""
}

// DELETE /projects?id=, DELETE /projects/:id
func DeleteProject(projects repository.ProjectStore) gin.HandlerFunc {
	return func(c *gin.Context) {
		id := recordID(c)
		if id == "" {
			c.JSON(http.StatusBadRequest, gin.H{"error": "missing id", "field": "id"})
			return
		}

		if err := projects.Delete(c.Request.Context(), id); err != nil {
			if errors.Is(err, repository.ErrNotFound) {
				c.JSON(http.StatusNotFound, gin.H{"error": "project not found"})
				return
			}
			slog.Error("delete project", "path", c.FullPath(), "error", err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to delete project"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"message": "project deleted"})
	}
}
