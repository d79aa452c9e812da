package main

import (
	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.uber.org/zap"

	"github.com/rhindhaugh/Attendance-Dashboard/internal/handler"
	"github.com/rhindhaugh/Attendance-Dashboard/internal/middleware"
	"github.com/rhindhaugh/Attendance-Dashboard/internal/service"
	"github.com/rhindhaugh/Attendance-Dashboard/pkg/logger"
	corsmiddleware "github.com/rhindhaugh/Attendance-Dashboard/pkg/middleware/cors"
	reqidmiddleware "github.com/rhindhaugh/Attendance-Dashboard/pkg/middleware/requestid"
)

type routerDeps struct {
	Logger         *zap.Logger
	Metrics        *service.MetricsService
	Attendance     *handler.AttendanceHandler
	System         *handler.MetricsHandler
	APIPrefix      string
	AllowedOrigins []string
	EnableDocs     bool
}

func newRouter(deps routerDeps) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(reqidmiddleware.Middleware())
	r.Use(logger.GinMiddleware(deps.Logger, "/health", "/ready", "/metrics"))
	r.Use(corsmiddleware.New(deps.AllowedOrigins))
	r.Use(middleware.Metrics(deps.Metrics, "/metrics"))

	r.GET("/health", deps.System.Health)
	r.GET("/ready", deps.System.Ready)
	r.GET("/metrics", deps.System.Prometheus)

	if deps.EnableDocs {
		r.GET("/docs/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	api := r.Group(deps.APIPrefix)
	api.Use(middleware.WithResponseMeta())
	api.GET("/system/metrics", deps.System.Snapshot)

	attendance := api.Group("/attendance")
	attendance.GET("/report", deps.Attendance.Report)
	attendance.GET("/daily", deps.Attendance.Daily)
	attendance.GET("/weekly", deps.Attendance.Weekly)
	attendance.GET("/weekdays", deps.Attendance.Weekdays)
	attendance.GET("/divisions", deps.Attendance.Divisions)
	attendance.GET("/divisions/presence", deps.Attendance.DivisionPresence)
	attendance.GET("/time-of-day", deps.Attendance.TimeOfDay)
	attendance.GET("/employees", deps.Attendance.Employees)
	attendance.GET("/audit", deps.Attendance.Audit)
	attendance.GET("/export", deps.Attendance.Export)
	attendance.POST("/reload", deps.Attendance.Reload)
	attendance.GET("/reload", deps.Attendance.ReloadStatus)

	return r
}
