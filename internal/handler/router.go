package handler

import (
	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.uber.org/zap"

	"github.com/noah-isme/gestao-escolar-api/internal/middleware"
	appErrors "github.com/noah-isme/gestao-escolar-api/pkg/errors"
	"github.com/noah-isme/gestao-escolar-api/pkg/logger"
	corsmiddleware "github.com/noah-isme/gestao-escolar-api/pkg/middleware/cors"
	reqidmiddleware "github.com/noah-isme/gestao-escolar-api/pkg/middleware/requestid"
	"github.com/noah-isme/gestao-escolar-api/pkg/response"
)

// RouterConfig carries everything the HTTP surface is assembled from.
type RouterConfig struct {
	Logger         *zap.Logger
	AllowedOrigins []string
	EnableDocs     bool
	ExposeMetrics  bool

	Auth        *AuthHandler
	Students    *StudentHandler
	Classes     *ClassHandler
	Enrollments *EnrollmentHandler
	Exports     *ExportHandler
	Metrics     *MetricsHandler

	RequestObserver middleware.RequestObserver
	TokenVerifier   middleware.TokenVerifier
}

// NewRouter builds the gin engine with every route registered.
func NewRouter(cfg RouterConfig) *gin.Engine {
	if cfg.Logger == nil {
		cfg.Logger = zap.NewNop()
	}

	r := gin.New()
	r.Use(middleware.Recovery(cfg.Logger))
	r.Use(reqidmiddleware.Middleware())
	r.Use(logger.GinMiddleware(cfg.Logger))
	r.Use(corsmiddleware.New(cfg.AllowedOrigins))
	r.Use(middleware.Metrics(cfg.RequestObserver))

	r.NoRoute(func(c *gin.Context) {
		response.Error(c, appErrors.Clone(appErrors.ErrNotFound, "Not Found"))
	})

	r.GET("/health", cfg.Metrics.Health)
	r.GET("/ready", cfg.Metrics.Ready)
	if cfg.ExposeMetrics {
		r.GET("/metrics", cfg.Metrics.Prometheus)
	}
	if cfg.EnableDocs {
		r.GET("/docs/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	r.POST("/login", cfg.Auth.Login)

	alunos := r.Group("/alunos")
	alunos.GET("", cfg.Students.List)
	alunos.POST("", cfg.Students.Create)
	alunos.GET("/:id", cfg.Students.Get)
	alunos.PUT("/:id", cfg.Students.Update)
	alunos.DELETE("/:id", cfg.Students.Delete)

	turmas := r.Group("/turmas")
	turmas.GET("", cfg.Classes.List)
	protected := turmas.Group("", middleware.JWT(cfg.TokenVerifier))
	protected.POST("", cfg.Classes.Create)
	protected.PUT("/:id", cfg.Classes.Update)
	protected.DELETE("/:id", cfg.Classes.Delete)

	r.POST("/matriculas", cfg.Enrollments.Enroll)

	export := r.Group("/export")
	export.GET("/alunos", cfg.Exports.Students)
	export.GET("/matriculas", cfg.Exports.Enrollments)

	return r
}
