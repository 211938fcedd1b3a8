package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	_ "github.com/matheuspdias/managerclin-public-sub002/api/swagger"
	"github.com/matheuspdias/managerclin-public-sub002/internal/handler"
	"github.com/matheuspdias/managerclin-public-sub002/internal/middleware"
	"github.com/matheuspdias/managerclin-public-sub002/internal/models"
	"github.com/matheuspdias/managerclin-public-sub002/internal/repository"
	"github.com/matheuspdias/managerclin-public-sub002/internal/service"
	"github.com/matheuspdias/managerclin-public-sub002/pkg/cache"
	"github.com/matheuspdias/managerclin-public-sub002/pkg/config"
	"github.com/matheuspdias/managerclin-public-sub002/pkg/database"
	"github.com/matheuspdias/managerclin-public-sub002/pkg/export"
	"github.com/matheuspdias/managerclin-public-sub002/pkg/jobs"
	"github.com/matheuspdias/managerclin-public-sub002/pkg/lock"
	"github.com/matheuspdias/managerclin-public-sub002/pkg/logger"
	corsmiddleware "github.com/matheuspdias/managerclin-public-sub002/pkg/middleware/cors"
	reqidmiddleware "github.com/matheuspdias/managerclin-public-sub002/pkg/middleware/requestid"
	"github.com/matheuspdias/managerclin-public-sub002/pkg/whatsapp"
)

// @title ManagerClin API
// @version 1.0.0
// @description Multi-tenant clinic management API: appointments, patients, practitioners, inventory, finance and WhatsApp campaigns.
// @BasePath /api/v1
// @schemes http
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization

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

	db, err := database.NewPostgres(cfg.Database)
	if err != nil {
		logr.Sugar().Fatalw("failed to connect to postgres", "error", err)
	}
	defer db.Close()

	redisClient, err := cache.NewRedis(cfg.Redis)
	if err != nil {
		logr.Sugar().Fatalw("failed to connect to redis", "error", err)
	}
	defer redisClient.Close()

	validate := validator.New()

	// Repositories.
	userRepo := repository.NewUserRepository(db)
	customerRepo := repository.NewCustomerRepository(db)
	practitionerRepo := repository.NewPractitionerRepository(db)
	workingHoursRepo := repository.NewWorkingHoursRepository(db)
	roomRepo := repository.NewRoomRepository(db)
	serviceRepo := repository.NewServiceRepository(db)
	appointmentRepo := repository.NewAppointmentRepository(db)
	notificationRepo := repository.NewNotificationRepository(db)
	certificateRepo := repository.NewCertificateRepository(db)
	inventoryRepo := repository.NewInventoryRepository(db)
	financeRepo := repository.NewFinanceRepository(db)
	campaignRepo := repository.NewCampaignRepository(db)
	telemedicineRepo := repository.NewTelemedicineRepository(db)
	cacheRepo := repository.NewCacheRepository(redisClient, logr)

	// Cross-cutting services.
	metricsSvc := service.NewMetricsService()
	cacheSvc := service.NewCacheService(cacheRepo, metricsSvc, logr)
	locker := lock.NewLocker(redisClient)
	waClient := whatsapp.NewClient(cfg.WhatsApp)

	authSvc := service.NewAuthService(userRepo, validate, logr, service.AuthConfig{
		AccessTokenSecret:  cfg.JWT.Secret,
		AccessTokenExpiry:  cfg.JWT.Expiration,
		RefreshTokenExpiry: cfg.JWT.RefreshExpiration,
		Issuer:             "managerclin",
	})
	userSvc := service.NewUserService(userRepo, validate, logr)
	customerSvc := service.NewCustomerService(customerRepo, validate, logr)
	practitionerSvc := service.NewPractitionerService(practitionerRepo, workingHoursRepo, validate, logr)
	catalogSvc := service.NewCatalogService(roomRepo, serviceRepo, validate, logr)
	availabilitySvc := service.NewAvailabilityService(
		workingHoursRepo,
		appointmentRepo,
		serviceRepo,
		cacheSvc,
		cfg.Availability.CacheTTL,
		cfg.Availability.DefaultSlotMinutes,
		logr,
	)

	// The notifier queue delivers appointment notifications in the
	// background; the handler closure is bound after the service exists.
	var notificationSvc *service.NotificationService
	notifierQueue := jobs.NewQueue("notifier", func(ctx context.Context, job jobs.Job) error {
		return notificationSvc.ProcessJob(ctx, job)
	}, jobs.QueueConfig{
		Workers:    cfg.Notifier.WorkerConcurrency,
		MaxRetries: cfg.Notifier.WorkerRetries,
		Logger:     logr,
	})
	notificationSvc = service.NewNotificationService(notificationRepo, customerRepo, waClient, notifierQueue, logr)

	var campaignSvc *service.CampaignService
	campaignQueue := jobs.NewQueue("campaigns", func(ctx context.Context, job jobs.Job) error {
		return campaignSvc.ProcessJob(ctx, job)
	}, jobs.QueueConfig{
		Workers:    cfg.Campaigns.WorkerConcurrency,
		MaxRetries: cfg.Campaigns.WorkerRetries,
		Logger:     logr,
	})
	campaignSvc = service.NewCampaignService(
		campaignRepo,
		customerRepo,
		waClient,
		campaignQueue,
		locker,
		userRepo,
		cfg.Campaigns.SendDelay,
		cfg.Campaigns.FinalizeLockTTL,
		validate,
		logr,
	)

	appointmentSvc := service.NewAppointmentService(
		appointmentRepo,
		availabilitySvc,
		customerRepo,
		notificationSvc,
		userRepo,
		validate,
		logr,
	)
	certificateSvc := service.NewCertificateService(
		certificateRepo,
		customerRepo,
		practitionerRepo,
		export.NewPDFExporter(),
		userRepo,
		cfg.Certificates.ClinicName,
		cfg.Certificates.CityName,
		validate,
		logr,
	)
	inventorySvc := service.NewInventoryService(inventoryRepo, validate, logr)
	financeSvc := service.NewFinanceService(financeRepo, export.NewCSVExporter(), validate, logr)
	telemedicineSvc := service.NewTelemedicineService(telemedicineRepo, appointmentRepo, validate, logr)
	dashboardSvc := service.NewDashboardService(
		appointmentRepo,
		customerRepo,
		financeRepo,
		inventoryRepo,
		campaignRepo,
		notificationRepo,
		cacheSvc,
		cfg.Dashboard.CacheTTL,
		logr,
	)

	// Handlers.
	authHandler := handler.NewAuthHandler(authSvc)
	userHandler := handler.NewUserHandler(userSvc)
	customerHandler := handler.NewCustomerHandler(customerSvc)
	practitionerHandler := handler.NewPractitionerHandler(practitionerSvc)
	catalogHandler := handler.NewCatalogHandler(catalogSvc)
	appointmentHandler := handler.NewAppointmentHandler(appointmentSvc, availabilitySvc, notificationSvc)
	certificateHandler := handler.NewCertificateHandler(certificateSvc)
	inventoryHandler := handler.NewInventoryHandler(inventorySvc)
	financeHandler := handler.NewFinanceHandler(financeSvc)
	campaignHandler := handler.NewCampaignHandler(campaignSvc)
	telemedicineHandler := handler.NewTelemedicineHandler(telemedicineSvc)
	dashboardHandler := handler.NewDashboardHandler(dashboardSvc)

	if cfg.Env == config.EnvProduction {
		gin.SetMode(gin.ReleaseMode)
	}

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
		if err := db.PingContext(c.Request.Context()); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "degraded", "database": err.Error()})
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "ready"})
	})
	r.GET("/metrics", gin.WrapH(metricsSvc.Handler()))

	if cfg.Env != config.EnvProduction {
		r.GET("/docs/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	prefix := cfg.APIPrefix
	if prefix == "" {
		prefix = "/api/v1"
	}
	api := r.Group(prefix)

	auth := api.Group("/auth")
	{
		auth.POST("/login", authHandler.Login)
		auth.POST("/refresh", authHandler.Refresh)

		authed := auth.Group("")
		authed.Use(middleware.JWT(authSvc))
		authed.POST("/logout", authHandler.Logout)
		authed.POST("/change-password", authHandler.ChangePassword)
		authed.GET("/me", authHandler.Me)
	}

	protected := api.Group("")
	protected.Use(middleware.JWT(authSvc))

	staff := []models.UserRole{models.RoleSuperAdmin, models.RoleAdmin, models.RolePractitioner, models.RoleReceptionist}
	admins := []models.UserRole{models.RoleSuperAdmin, models.RoleAdmin}

	users := protected.Group("/users")
	users.Use(middleware.RequireRoles(admins...))
	{
		users.GET("", userHandler.List)
		users.GET("/:id", userHandler.Get)
		users.POST("", middleware.Audit(userRepo, "create", "user"), userHandler.Create)
		users.PUT("/:id", middleware.Audit(userRepo, "update", "user"), userHandler.Update)
	}

	customers := protected.Group("/customers")
	customers.Use(middleware.RequireRoles(staff...))
	{
		customers.GET("", customerHandler.List)
		customers.GET("/:id", customerHandler.Get)
		customers.POST("", customerHandler.Create)
		customers.PUT("/:id", customerHandler.Update)
		customers.DELETE("/:id", middleware.RequireRoles(admins...), customerHandler.Delete)
		customers.GET("/:id/certificates", certificateHandler.ListByCustomer)
	}

	practitioners := protected.Group("/practitioners")
	practitioners.Use(middleware.RequireRoles(staff...))
	{
		practitioners.GET("", practitionerHandler.List)
		practitioners.GET("/:id", practitionerHandler.Get)
		practitioners.POST("", middleware.RequireRoles(admins...), practitionerHandler.Create)
		practitioners.PUT("/:id", middleware.RequireRoles(admins...), practitionerHandler.Update)
		practitioners.DELETE("/:id", middleware.RequireRoles(admins...), practitionerHandler.Delete)
		practitioners.GET("/:id/working-hours", practitionerHandler.ListWorkingHours)
		practitioners.PUT("/:id/working-hours", practitionerHandler.SetWorkingHours)
		practitioners.DELETE("/:id/working-hours/:weekday", practitionerHandler.ClearWorkingHours)
		practitioners.GET("/:id/exceptions", practitionerHandler.ListExceptions)
		practitioners.POST("/:id/exceptions", practitionerHandler.CreateException)
		practitioners.DELETE("/:id/exceptions/:exceptionId", practitionerHandler.DeleteException)
	}

	rooms := protected.Group("/rooms")
	rooms.Use(middleware.RequireRoles(staff...))
	{
		rooms.GET("", catalogHandler.ListRooms)
		rooms.GET("/:id", catalogHandler.GetRoom)
		rooms.POST("", middleware.RequireRoles(admins...), catalogHandler.CreateRoom)
		rooms.PUT("/:id", middleware.RequireRoles(admins...), catalogHandler.UpdateRoom)
	}

	services := protected.Group("/services")
	services.Use(middleware.RequireRoles(staff...))
	{
		services.GET("", catalogHandler.ListServices)
		services.GET("/:id", catalogHandler.GetService)
		services.POST("", middleware.RequireRoles(admins...), catalogHandler.CreateService)
		services.PUT("/:id", middleware.RequireRoles(admins...), catalogHandler.UpdateService)
		services.DELETE("/:id", middleware.RequireRoles(admins...), catalogHandler.DeleteService)
	}

	appointments := protected.Group("/appointments")
	appointments.Use(middleware.RequireRoles(staff...))
	{
		appointments.GET("", appointmentHandler.List)
		appointments.GET("/available-slots", appointmentHandler.AvailableSlots)
		appointments.POST("/check-conflicts", appointmentHandler.CheckConflicts)
		appointments.GET("/:id", appointmentHandler.Get)
		appointments.POST("", appointmentHandler.Create)
		appointments.PUT("/:id", appointmentHandler.Update)
		appointments.PATCH("/:id/status", appointmentHandler.UpdateStatus)
		appointments.GET("/:id/notifications", appointmentHandler.ListNotifications)
		appointments.GET("/:id/telemedicine", telemedicineHandler.GetByAppointment)
	}

	certificates := protected.Group("/certificates")
	certificates.Use(middleware.RequireRoles(models.RoleSuperAdmin, models.RoleAdmin, models.RolePractitioner))
	{
		certificates.POST("", certificateHandler.Issue)
		certificates.GET("/:id", certificateHandler.Get)
		certificates.GET("/:id/pdf", certificateHandler.DownloadPDF)
	}

	products := protected.Group("/products")
	products.Use(middleware.RequireRoles(staff...))
	{
		products.GET("", inventoryHandler.ListProducts)
		products.GET("/:id", inventoryHandler.GetProduct)
		products.POST("", middleware.RequireRoles(admins...), inventoryHandler.CreateProduct)
		products.PUT("/:id", middleware.RequireRoles(admins...), inventoryHandler.UpdateProduct)
		products.POST("/:id/movements", inventoryHandler.RecordMovement)
		products.GET("/:id/movements", inventoryHandler.ListMovements)
	}

	finance := protected.Group("/finance")
	finance.Use(middleware.RequireRoles(admins...))
	{
		finance.GET("/transactions", financeHandler.List)
		finance.GET("/transactions/:id", financeHandler.Get)
		finance.POST("/transactions", financeHandler.Create)
		finance.PUT("/transactions/:id", financeHandler.Update)
		finance.DELETE("/transactions/:id", financeHandler.Delete)
		finance.GET("/summary", financeHandler.Summary)
		finance.GET("/export", financeHandler.ExportCSV)
	}

	campaigns := protected.Group("/campaigns")
	campaigns.Use(middleware.RequireRoles(admins...))
	{
		campaigns.GET("", campaignHandler.List)
		campaigns.GET("/:id", campaignHandler.Get)
		campaigns.POST("", campaignHandler.Create)
		campaigns.POST("/:id/dispatch", middleware.Audit(userRepo, "dispatch", "campaign"), campaignHandler.Dispatch)
		campaigns.GET("/:id/progress", campaignHandler.Progress)
	}

	telemedicine := protected.Group("/telemedicine/sessions")
	telemedicine.Use(middleware.RequireRoles(models.RoleSuperAdmin, models.RoleAdmin, models.RolePractitioner))
	{
		telemedicine.POST("", telemedicineHandler.Create)
		telemedicine.GET("/:id", telemedicineHandler.Get)
		telemedicine.POST("/:id/start", telemedicineHandler.Start)
		telemedicine.POST("/:id/finish", telemedicineHandler.Finish)
	}

	if cfg.Dashboard.Enabled {
		dashboard := protected.Group("/dashboard")
		dashboard.Use(middleware.RequireRoles(staff...))
		dashboard.GET("/summary", dashboardHandler.Summary)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if cfg.Notifier.Enabled {
		notifierQueue.Start(ctx)
		defer notifierQueue.Stop()
	}
	if cfg.Campaigns.Enabled {
		campaignQueue.Start(ctx)
		defer campaignQueue.Stop()
	}

	addr := fmt.Sprintf(":%d", cfg.Port)
	srv := &http.Server{
		Addr:              addr,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logr.Sugar().Infow("server starting", "addr", addr, "env", cfg.Env)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logr.Sugar().Fatalw("server failed", "error", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logr.Sugar().Infow("shutting down")
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logr.Sugar().Errorw("graceful shutdown failed", "error", err)
	}
}
