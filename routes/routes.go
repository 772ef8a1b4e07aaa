package routes

import (
	"net/http"

	"github.com/cncdesign/cncbackend/config"
	"github.com/cncdesign/cncbackend/controllers"
	"github.com/cncdesign/cncbackend/middleware"
	"github.com/cncdesign/cncbackend/repository"
	"github.com/cncdesign/cncbackend/storage"
	"github.com/cncdesign/cncbackend/utils"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

type Dependencies struct {
	Config  *config.Config
	Stores  *repository.Stores
	Objects storage.ObjectStore // nil disables /uploads
	// NewLimiter builds a fresh limiter for each public write route.
	NewLimiter func() gin.HandlerFunc
	Gatherer   prometheus.Gatherer
}

func Register(r *gin.Engine, d Dependencies) {
	cfg := d.Config
	auth := middleware.AuthMiddleware(cfg.Auth.JWTSecret)
	limit := d.NewLimiter
	if limit == nil {
		limit = func() gin.HandlerFunc { return func(c *gin.Context) { c.Next() } }
	}

	policy := utils.NewAttachmentPolicy(cfg.Uploads.AttachmentMimeTypes)
	validator := utils.NewFileValidator(cfg.Uploads.AllowedExtensions, cfg.Uploads.AllowedMimeTypes, cfg.Uploads.MaxSizeMB)

	r.GET("/ping", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"message": "pong",
		})
	})
	if d.Gatherer != nil {
		r.GET("/metrics", gin.WrapH(promhttp.HandlerFor(d.Gatherer, promhttp.HandlerOpts{})))
	}

	submissions := d.Stores.Submissions
	projects := d.Stores.Projects

	r.POST("/contact", limit(), controllers.CreateSubmission(submissions, policy, cfg.Uploads.MaxAttachmentsPerEntry))
	r.GET("/contact", auth, controllers.GetSubmissions(submissions, cfg.Query))
	r.GET("/contact/:id", auth, controllers.GetSubmission(submissions))
	r.PATCH("/contact/:id/status", auth, controllers.UpdateSubmissionStatus(submissions))
	r.DELETE("/contact", auth, controllers.DeleteSubmission(submissions))
	r.DELETE("/contact/:id", auth, controllers.DeleteSubmission(submissions))

	r.POST("/uploads", limit(), controllers.UploadAttachment(d.Objects, validator))

	r.GET("/projects", controllers.GetProjects(projects, cfg.Query))
	r.GET("/projects/:id", controllers.GetProject(projects))
	r.POST("/projects", auth, controllers.AddProject(projects))
	r.PATCH("/projects/:id", auth, controllers.UpdateProject(projects))
	r.DELETE("/projects", auth, controllers.DeleteProject(projects))
	r.DELETE("/projects/:id", auth, controllers.DeleteProject(projects))

	r.POST("/admin/login", limit(), controllers.Login(d.Stores.Users, cfg.Auth))

	admin := r.Group("/admin")
	admin.Use(auth)
	{
		admin.GET("/verify", controllers.Verify())
		admin.GET("/submissions", controllers.GetSubmissions(submissions, cfg.Query))
		admin.POST("/users/me/password", controllers.ChangeMyPassword(d.Stores.Users))
		admin.DELETE("/uploads/*key", controllers.DeleteUpload(d.Objects))
	}
}
