package http

import (
	"time"

	"github.com/gin-gonic/gin"

	appsvc "slide2pdf/internal/app"
	"slide2pdf/internal/bootstrap"
	"slide2pdf/internal/repository"
	"slide2pdf/internal/transport/http/handler"
	"slide2pdf/internal/transport/http/middleware"
)

func NewRouter(app *bootstrap.App) *gin.Engine {
	gin.SetMode(app.Config.App.GinMode)
	router := gin.New()
	router.Use(gin.Logger(), gin.Recovery())

	var publisher appsvc.RecordPublisher
	if app.Publisher != nil {
		publisher = app.Publisher
	}
	convertService := appsvc.NewConvertService(
		app.Converter,
		app.Registry,
		publisher,
		app.Config.Artifacts.Dir,
		app.Config.Artifacts.ScratchDir,
		app.Config.Convert.MaxFiles,
		app.Config.MaxFileSize(),
	)

	convertHandler := handler.NewConvertHandler(convertService)
	artifactHandler := handler.NewArtifactHandler(app.Registry)
	healthHandler := handler.NewHealthHandler(app)

	router.StaticFile("/", "web/index.html")
	router.Static("/static", "web/static")

	router.POST("/convert", convertHandler.Convert)
	router.POST("/preview", convertHandler.Preview)
	router.POST("/preview-pdf", convertHandler.PreviewPDF)
	router.GET("/download/:id", artifactHandler.Download)
	router.GET("/preview/:id", artifactHandler.Preview)
	router.GET("/health", healthHandler.Check)

	if app.MySQL != nil {
		userRepo := repository.NewUserRepository(app.MySQL)
		recordRepo := repository.NewRecordRepository(app.MySQL)
		authService := appsvc.NewAuthService(
			userRepo,
			app.Config.Auth.JWTSecret,
			time.Duration(app.Config.Auth.JWTExpireMinute)*time.Minute,
		)
		historyService := appsvc.NewHistoryService(recordRepo)
		authHandler := handler.NewAuthHandler(authService)
		adminHandler := handler.NewAdminHandler(historyService)

		v1 := router.Group("/api/v1")
		v1.POST("/auth/login", authHandler.Login)

		adminGroup := v1.Group("/admin")
		adminGroup.Use(middleware.AuthJWT(app.Config.Auth.JWTSecret))
		adminGroup.GET("/records", adminHandler.Records)
		adminGroup.GET("/stats", adminHandler.Stats)
	}

	return router
}
