package main

import (
	"fmt"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.uber.org/zap"

	_ "github.com/uniadmin/uniadmin-api/api/swagger"
	"github.com/uniadmin/uniadmin-api/internal/handler"
	"github.com/uniadmin/uniadmin-api/internal/middleware"
	"github.com/uniadmin/uniadmin-api/internal/repository"
	"github.com/uniadmin/uniadmin-api/internal/service"
	"github.com/uniadmin/uniadmin-api/pkg/cache"
	"github.com/uniadmin/uniadmin-api/pkg/config"
	"github.com/uniadmin/uniadmin-api/pkg/database"
	"github.com/uniadmin/uniadmin-api/pkg/logger"
	corsmiddleware "github.com/uniadmin/uniadmin-api/pkg/middleware/cors"
	reqidmiddleware "github.com/uniadmin/uniadmin-api/pkg/middleware/requestid"
)

// @title UniAdmin API
// @version 1.0.0
// @description Administrative backend for academic, security and help-desk domains
// @BasePath /api/v1
// @schemes http

const (
	roleAdmin       = "ADMIN"
	roleCoordinator = "COORDINATOR"
	roleAuditor     = "AUDITOR"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logr, err := logger.New(cfg)
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer logr.Sync() //nolint:errcheck

	if cfg.Env == config.EnvProduction {
		gin.SetMode(gin.ReleaseMode)
	}

	db, err := database.NewPostgres(cfg.Database)
	if err != nil {
		logr.Fatal("failed to connect to postgres", zap.Error(err))
	}
	defer db.Close()

	redisClient, err := cache.NewRedis(cfg.Redis)
	if err != nil {
		logr.Warn("redis unavailable, report caching disabled", zap.Error(err))
		redisClient = nil
	}

	// repositories
	specialtyRepo := repository.NewSpecialtyRepository(db)
	careerRepo := repository.NewCareerRepository(db)
	cycleRepo := repository.NewCycleRepository(db)
	teacherRepo := repository.NewTeacherRepository(db)
	studentRepo := repository.NewStudentRepository(db)
	subjectRepo := repository.NewSubjectRepository(db)
	periodRepo := repository.NewPeriodRepository(db)
	enrollmentRepo := repository.NewEnrollmentRepository(db)
	teacherSubjectRepo := repository.NewTeacherSubjectRepository(db)
	studentSubjectRepo := repository.NewStudentSubjectRepository(db)
	userRepo := repository.NewUserRepository(db)
	auditRepo := repository.NewAuditRepository(db)
	reportRepo := repository.NewReportRepository(db)
	cacheRepo := repository.NewCacheRepository(redisClient, logr)

	// services
	metricsSvc := service.NewMetricsService()
	auditSvc := service.NewAuditService(auditRepo, logr, cfg.Audit.HistoryLimit)
	authSvc := service.NewAuthService(userRepo, auditRepo, nil, logr, service.AuthConfig{
		AccessTokenSecret:  cfg.JWT.Secret,
		AccessTokenExpiry:  cfg.JWT.Expiration,
		RefreshTokenExpiry: cfg.JWT.RefreshExpiration,
		Issuer:             cfg.JWT.Issuer,
	})
	userSvc := service.NewUserService(userRepo, nil, logr)
	specialtySvc := service.NewSpecialtyService(specialtyRepo, nil, logr)
	careerSvc := service.NewCareerService(careerRepo, specialtyRepo, nil, logr)
	cycleSvc := service.NewCycleService(cycleRepo, nil, logr)
	teacherSvc := service.NewTeacherService(teacherRepo, nil, logr)
	studentSvc := service.NewStudentService(studentRepo, careerRepo, nil, logr)
	subjectSvc := service.NewSubjectService(subjectRepo, careerRepo, cycleRepo, nil, logr)
	periodSvc := service.NewPeriodService(periodRepo, nil, logr)
	enrollmentSvc := service.NewEnrollmentService(db, enrollmentRepo, subjectRepo, studentRepo, periodRepo, nil, logr)
	linkageSvc := service.NewLinkageService(teacherSubjectRepo, studentSubjectRepo, teacherRepo, studentRepo, subjectRepo, nil, logr)
	reportSvc := service.NewReportService(reportRepo, cacheRepo, logr, cfg.Reports.CacheTTL)

	// handlers
	authHandler := handler.NewAuthHandler(authSvc)
	userHandler := handler.NewUserHandler(userSvc, auditSvc)
	specialtyHandler := handler.NewSpecialtyHandler(specialtySvc)
	careerHandler := handler.NewCareerHandler(careerSvc)
	cycleHandler := handler.NewCycleHandler(cycleSvc)
	teacherHandler := handler.NewTeacherHandler(teacherSvc)
	studentHandler := handler.NewStudentHandler(studentSvc)
	subjectHandler := handler.NewSubjectHandler(subjectSvc, auditSvc, reportSvc)
	periodHandler := handler.NewPeriodHandler(periodSvc)
	enrollmentHandler := handler.NewEnrollmentHandler(enrollmentSvc, auditSvc, reportSvc, metricsSvc)
	linkageHandler := handler.NewLinkageHandler(linkageSvc)
	auditHandler := handler.NewAuditHandler(auditSvc)
	reportHandler := handler.NewReportHandler(reportSvc)

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(reqidmiddleware.Middleware())
	r.Use(logger.GinMiddleware(logr))
	r.Use(corsmiddleware.New(cfg.CORS.AllowedOrigins))
	r.Use(middleware.Metrics(metricsSvc))

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	r.GET("/ready", func(c *gin.Context) {
		if err := db.Ping(); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "degraded"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "ready"})
	})
	r.GET("/metrics", gin.WrapH(metricsSvc.Handler()))

	if cfg.Env != config.EnvProduction {
		r.GET("/docs/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	api := r.Group(cfg.APIPrefix)

	auth := api.Group("/auth")
	{
		auth.POST("/login", authHandler.Login)
		auth.POST("/refresh", authHandler.Refresh)
		auth.POST("/logout", middleware.JWT(authSvc), authHandler.Logout)
		auth.PUT("/password", middleware.JWT(authSvc), authHandler.ChangePassword)
	}

	secured := api.Group("")
	secured.Use(middleware.JWT(authSvc))

	admin := secured.Group("")
	admin.Use(middleware.RBAC(roleAdmin))
	{
		admin.POST("/users", userHandler.Create)
		admin.PUT("/users/:id", userHandler.Update)
		admin.DELETE("/users/:id", userHandler.Delete)
		admin.POST("/users/:id/roles", userHandler.AssignRole)
		admin.DELETE("/users/:id/roles", userHandler.RevokeRole)
		admin.GET("/roles", userHandler.ListRoles)
		admin.POST("/roles", userHandler.CreateRole)
		admin.PUT("/roles/:id", userHandler.UpdateRole)
		admin.DELETE("/roles/:id", userHandler.DeleteRole)
	}
	secured.GET("/users", middleware.RBAC(roleAdmin), userHandler.List)
	secured.GET("/users/:id", middleware.RBAC(roleAdmin, "SELF"), userHandler.Get)

	catalog := secured.Group("")
	catalog.Use(middleware.RBAC(roleAdmin, roleCoordinator))
	{
		catalog.POST("/specialties", specialtyHandler.Create)
		catalog.PUT("/specialties/:id", specialtyHandler.Update)
		catalog.DELETE("/specialties/:id", specialtyHandler.Delete)
		catalog.POST("/careers", careerHandler.Create)
		catalog.PUT("/careers/:id", careerHandler.Update)
		catalog.DELETE("/careers/:id", careerHandler.Delete)
		catalog.POST("/cycles", cycleHandler.Create)
		catalog.PUT("/cycles/:id", cycleHandler.Update)
		catalog.DELETE("/cycles/:id", cycleHandler.Delete)
		catalog.POST("/teachers", teacherHandler.Create)
		catalog.PUT("/teachers/:id", teacherHandler.Update)
		catalog.DELETE("/teachers/:id", teacherHandler.Delete)
		catalog.POST("/students", studentHandler.Create)
		catalog.PUT("/students/:id", studentHandler.Update)
		catalog.DELETE("/students/:id", studentHandler.Delete)
		catalog.POST("/subjects", subjectHandler.Create)
		catalog.PUT("/subjects/:id", subjectHandler.Update)
		catalog.DELETE("/subjects/:id", subjectHandler.Delete)
		catalog.POST("/periods", periodHandler.Create)
		catalog.PUT("/periods/:id", periodHandler.Update)
		catalog.PUT("/periods/:id/activate", periodHandler.SetActive)
		catalog.DELETE("/periods/:id", periodHandler.Delete)
		catalog.POST("/teacher-subjects", linkageHandler.CreateTeacherSubject)
		catalog.DELETE("/teacher-subjects/:id", linkageHandler.DeleteTeacherSubject)
		catalog.POST("/student-subjects", linkageHandler.CreateStudentSubject)
		catalog.DELETE("/student-subjects/:id", linkageHandler.DeleteStudentSubject)

		catalog.POST("/enrollments", enrollmentHandler.Enroll)
		catalog.PUT("/enrollments/:id/reassign", enrollmentHandler.Reassign)
		catalog.DELETE("/enrollments/:id", enrollmentHandler.Withdraw)
	}

	// read endpoints are open to every authenticated role
	secured.GET("/specialties", specialtyHandler.List)
	secured.GET("/specialties/:id", specialtyHandler.Get)
	secured.GET("/careers", careerHandler.List)
	secured.GET("/careers/:id", careerHandler.Get)
	secured.GET("/cycles", cycleHandler.List)
	secured.GET("/cycles/:id", cycleHandler.Get)
	secured.GET("/teachers", teacherHandler.List)
	secured.GET("/teachers/:id", teacherHandler.Get)
	secured.GET("/students", studentHandler.List)
	secured.GET("/students/:id", studentHandler.Get)
	secured.GET("/subjects", subjectHandler.List)
	secured.GET("/subjects/:id", subjectHandler.Get)
	secured.GET("/periods", periodHandler.List)
	secured.GET("/periods/:id", periodHandler.Get)
	secured.GET("/enrollments", enrollmentHandler.List)
	secured.GET("/enrollments/:id", enrollmentHandler.Get)
	secured.GET("/teacher-subjects", linkageHandler.ListTeacherSubjects)
	secured.GET("/student-subjects", linkageHandler.ListStudentSubjects)

	reports := secured.Group("/reports")
	{
		reports.GET("/occupancy", reportHandler.SubjectOccupancy)
		reports.GET("/occupancy/export", reportHandler.ExportOccupancy)
		reports.GET("/periods", reportHandler.PeriodSummary)
		reports.GET("/periods/export", reportHandler.ExportPeriodSummary)
		reports.GET("/careers", reportHandler.CareerSummary)
	}

	auditing := secured.Group("")
	auditing.Use(middleware.RBAC(roleAdmin, roleAuditor))
	{
		auditing.GET("/audit-logs", auditHandler.List)
		auditing.GET("/audit-logs/:resource/:id", auditHandler.History)
		auditing.GET("/system-logs", auditHandler.ListEvents)
	}

	addr := fmt.Sprintf(":%d", cfg.Port)
	logr.Sugar().Infow("server starting", "addr", addr, "env", cfg.Env)
	if err := r.Run(addr); err != nil {
		logr.Sugar().Fatalw("server failed", "error", err)
	}
}
