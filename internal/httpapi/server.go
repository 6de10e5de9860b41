package httpapi

import (
	"errors"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"schoolportal/internal/account"
	"schoolportal/internal/attendance"
	"schoolportal/internal/auth"
	"schoolportal/internal/config"
	"schoolportal/internal/contributors"
	"schoolportal/internal/homework"
	"schoolportal/internal/httpmiddleware"
	"schoolportal/internal/progress"
	"schoolportal/internal/roster"
	"schoolportal/internal/store"
)

// Handler bundles the services behind the REST surface.
type Handler struct {
	cfg          config.App
	accounts     *account.Service
	roster       *roster.Service
	attendance   *attendance.Service
	homework     *homework.Service
	contributors *contributors.Service
	progress     *progress.Service
	db           *store.DB
	redis        *store.Redis
}

// New creates a handler. db and redis are only used for health reporting.
func New(
	cfg config.App,
	accounts *account.Service,
	rosterSvc *roster.Service,
	attendanceSvc *attendance.Service,
	homeworkSvc *homework.Service,
	contributorsSvc *contributors.Service,
	progressSvc *progress.Service,
	db *store.DB,
	redis *store.Redis,
) *Handler {
	return &Handler{
		cfg:          cfg,
		accounts:     accounts,
		roster:       rosterSvc,
		attendance:   attendanceSvc,
		homework:     homeworkSvc,
		contributors: contributorsSvc,
		progress:     progressSvc,
		db:           db,
		redis:        redis,
	}
}

// Router builds the gin engine with middleware and all routes.
func (h *Handler) Router() *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(gin.LoggerWithConfig(gin.LoggerConfig{
		SkipPaths: []string{"/healthz", "/metrics"},
	}))
	r.Use(corsMiddleware())
	r.Use(securityHeaders())
	r.Use(httpmiddleware.NewSimpleTokenBucket(h.cfg.RateLimitPerMin, h.cfg.RateLimitPerMin).GinMiddleware())

	r.GET("/metrics", gin.WrapH(promhttp.Handler()))
	r.GET("/healthz", h.healthz)

	api := r.Group("/api/v1")

	api.POST("/auth/login", h.login)
	api.POST("/auth/register", h.register)
	api.POST("/auth/refresh", h.refresh)
	api.GET("/contributors/all", h.listContributors)

	authed := api.Group("", auth.Bearer(h.cfg.JWTSigningKey, h.cfg.JWTIssuer))

	authed.GET("/student/all", h.listStudents)
	authed.POST("/student/add", h.addStudent)
	authed.PUT("/student/:id", h.updateStudent)
	// The delete route's pluralization differs from the other student routes;
	// deployed clients depend on it, so it stays.
	authed.DELETE("/students/:id", h.deleteStudent)

	authed.POST("/attendance/mark", h.markStudent)
	authed.POST("/attendance/unmark", h.unmarkStudent)
	authed.GET("/attendance/today", h.attendanceToday)
	authed.GET("/attendance/date", h.studentsOnDate)
	authed.GET("/attendance/stats/:studentId", h.studentStats)
	authed.GET("/attendance/:studentId", h.studentHistory)

	authed.GET("/teacher/all", h.listTeachers)
	authed.POST("/teacher/add", h.addTeacher)
	authed.PUT("/teacher/:id", h.updateTeacher)
	authed.DELETE("/teacher/:id", h.deleteTeacher)

	authed.POST("/teacher-attendance/mark", h.markTeacher)
	authed.POST("/teacher-attendance/unmark", h.unmarkTeacher)
	authed.GET("/teacher-attendance/date", h.teachersOnDate)

	authed.GET("/homework/all", h.listHomework)
	authed.POST("/homework/add", h.addHomework)
	authed.PUT("/homework/:id", h.updateHomework)
	authed.DELETE("/homework/:id", h.deleteHomework)

	authed.POST("/contributors/add", h.addContributor)
	authed.PUT("/contributors/:id", h.updateContributor)
	authed.DELETE("/contributors/:id", h.deleteContributor)

	authed.GET("/progress/:mentorId", h.mentorLogs)
	authed.GET("/progress/:mentorId/report", h.mentorReport)
	authed.POST("/progress/add", h.addProgress)
	authed.PUT("/progress/:id", h.updateProgress)
	authed.DELETE("/progress/:id", h.deleteProgress)

	admin := authed.Group("/admin", auth.RequireRole(auth.RoleAdmin))
	admin.GET("/dashboard", h.dashboard)
	admin.GET("/teachers/pending", h.pendingTeachers)
	admin.POST("/teachers/:id/verify", h.verifyTeacher)
	admin.POST("/teachers/:id/reject", h.rejectTeacher)

	return r
}

func (h *Handler) healthz(c *gin.Context) {
	redisHealthy := h.redis.Healthy(c.Request.Context())
	dbHealthy := h.db != nil && h.db.Client.PingContext(c.Request.Context()) == nil
	status := http.StatusOK
	if !redisHealthy || !dbHealthy {
		status = http.StatusServiceUnavailable
	}
	c.JSON(status, gin.H{"status": "ok", "redis": redisHealthy, "db": dbHealthy})
}

// respondError maps service errors onto the status taxonomy.
func respondError(c *gin.Context, err error) {
	var status int
	switch {
	case errors.Is(err, account.ErrValidation),
		errors.Is(err, roster.ErrValidation),
		errors.Is(err, homework.ErrValidation),
		errors.Is(err, contributors.ErrValidation),
		errors.Is(err, progress.ErrValidation),
		errors.Is(err, attendance.ErrInvalidKind):
		status = http.StatusBadRequest
	case errors.Is(err, account.ErrInvalidCredentials),
		errors.Is(err, account.ErrInvalidRefresh):
		status = http.StatusUnauthorized
	case errors.Is(err, account.ErrNotVerified):
		status = http.StatusForbidden
	case errors.Is(err, account.ErrNotFound),
		errors.Is(err, roster.ErrNotFound),
		errors.Is(err, homework.ErrNotFound),
		errors.Is(err, contributors.ErrNotFound),
		errors.Is(err, progress.ErrNotFound),
		errors.Is(err, attendance.ErrUnknownEntity):
		status = http.StatusNotFound
	case errors.Is(err, account.ErrEmailTaken),
		errors.Is(err, roster.ErrDuplicateRoll),
		errors.Is(err, attendance.ErrAlreadyPresent):
		status = http.StatusConflict
	default:
		status = http.StatusInternalServerError
		log.Printf("httpapi: %s %s: %v", c.Request.Method, c.FullPath(), err)
	}
	c.JSON(status, gin.H{"error": err.Error()})
}

// CORS middleware for browser requests.
func corsMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		origin := c.Request.Header.Get("Origin")
		if origin == "" {
			origin = "*"
		}

		c.Header("Access-Control-Allow-Origin", origin)
		c.Header("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		c.Header("Access-Control-Allow-Headers", "Origin, Content-Type, Accept, Authorization")
		c.Header("Access-Control-Allow-Credentials", "true")
		c.Header("Access-Control-Max-Age", "86400")

		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}

		c.Next()
	}
}

// Security headers middleware.
func securityHeaders() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Header("X-Content-Type-Options", "nosniff")
		c.Header("X-Frame-Options", "DENY")
		c.Header("Referrer-Policy", "strict-origin-when-cross-origin")

		if gin.Mode() == gin.ReleaseMode {
			c.Header("Strict-Transport-Security", "max-age=31536000; includeSubDomains")
		}

		c.Next()
	}
}
