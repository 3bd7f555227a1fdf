package main

import (
	"context"
	"net/http"

	"github.com/gorilla/mux"
	cron "github.com/robfig/cron/v3"
	"github.com/rs/cors"

	"github.com/cleardeed/closing-service/internal/app"
	"github.com/cleardeed/closing-service/internal/clients"
	"github.com/cleardeed/closing-service/internal/config"
	"github.com/cleardeed/closing-service/internal/constants"
	"github.com/cleardeed/closing-service/internal/controllers"
	"github.com/cleardeed/closing-service/internal/middleware"
	"github.com/cleardeed/closing-service/internal/models"
	"github.com/cleardeed/closing-service/internal/repositories"
	"github.com/cleardeed/closing-service/internal/routes"
	"github.com/cleardeed/closing-service/internal/services"
	"github.com/cleardeed/closing-service/internal/stages"
	"github.com/cleardeed/closing-service/internal/utils"
)

func main() {
	utils.InitLogger(constants.AppName)

	cfg, err := config.LoadConfig()
	if err != nil {
		utils.Logger.Fatal("Failed to load config:", err)
	}

	application, err := app.NewApp(cfg)
	if err != nil {
		utils.Logger.Fatal("Failed to initialize closing-service:", err)
	}
	defer application.Close()

	propRepo := repositories.NewPropertyRepository(application.DB)
	userRepo := repositories.NewUserRepository(application.DB)
	outboxRepo := repositories.NewOutboxRepository(application.DB)

	permClient := clients.NewPermissionClient(cfg.PermissionServiceURL, cfg.ServiceAPIKey)
	tsClient := clients.NewTitleSearchClient(cfg.TitleSearchServiceURL, cfg.ServiceAPIKey)

	registry := stages.DefaultRegistry()
	closingService := services.NewClosingService(registry, propRepo, userRepo, outboxRepo, tsClient)

	treeCache := services.NewPermissionTreeCache()
	syncService := services.NewPermissionSyncService(outboxRepo, permClient, treeCache)

	if cfg.SeedTestData {
		if err := app.SeedTestData(context.Background(), userRepo, closingService); err != nil {
			utils.Logger.WithError(err).Fatal("Failed to seed test data")
		}
	}

	propsController := controllers.NewPropertiesController(closingService, userRepo)
	workflowController := controllers.NewWorkflowController(closingService, userRepo)
	healthController := controllers.NewHealthController(application)

	router := mux.NewRouter()

	// Public
	router.HandleFunc(routes.Health, healthController.HealthCheckHandler).Methods(http.MethodGet)

	secured := router.NewRoute().Subrouter()
	secured.Use(middleware.AuthMiddleware(cfg.RSAPublicKey))

	secured.HandleFunc(routes.Properties, propsController.ListPropertiesHandler).Methods(http.MethodGet)
	secured.HandleFunc(routes.PropertyByID, propsController.GetPropertyHandler).Methods(http.MethodGet)
	secured.HandleFunc(routes.PropertyStages, workflowController.StageBoardHandler).Methods(http.MethodGet)
	secured.HandleFunc(routes.PropertyStageStart, workflowController.StartStageHandler).Methods(http.MethodPost)
	secured.HandleFunc(routes.PropertyStageAdvance, workflowController.AdvanceStageHandler).Methods(http.MethodPost)
	secured.HandleFunc(routes.PropertyStageContent, workflowController.StageContentHandler).Methods(http.MethodGet)

	// Title staff only: assignment + visibility configuration
	staff := router.NewRoute().Subrouter()
	staff.Use(
		middleware.AuthMiddleware(cfg.RSAPublicKey),
		middleware.RequireRoles(models.RoleTitleAdmin, models.RoleTitleUser),
	)
	staff.HandleFunc(routes.Properties, propsController.CreatePropertyHandler).Methods(http.MethodPost)
	staff.HandleFunc(routes.PropertyStageAssign, workflowController.AssignTaskHandler).Methods(http.MethodPost)
	staff.HandleFunc(routes.PropertyVisibilitySettings, workflowController.SetVisibilitySettingsHandler).Methods(http.MethodPut)

	// Admin only: workflow options + archival
	admin := router.NewRoute().Subrouter()
	admin.Use(
		middleware.AuthMiddleware(cfg.RSAPublicKey),
		middleware.RequireRoles(models.RoleTitleAdmin),
	)
	admin.HandleFunc(routes.PropertyWorkflowOptions, workflowController.SetWorkflowOptionsHandler).Methods(http.MethodPut)
	admin.HandleFunc(routes.PropertyArchive, propsController.ArchivePropertyHandler).Methods(http.MethodPost)

	c := cron.New()
	_, cronErr := c.AddFunc(constants.OutboxDrainSchedule, func() {
		if e := syncService.RunSyncPass(context.Background()); e != nil {
			utils.Logger.WithError(e).Error("Permission sync pass failed")
		}
	})
	if cronErr != nil {
		utils.Logger.WithError(cronErr).Fatal("Failed to schedule permission sync cron")
	}
	c.Start()

	allowedOrigins := []string{cfg.AppURL}
	if cfg.CORSAllowLocalhost {
		allowedOrigins = append(allowedOrigins, "http://localhost:3000")
	}

	co := cors.New(cors.Options{
		AllowedOrigins:   allowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Authorization", "Content-Type"},
		AllowCredentials: true,
	})

	utils.Logger.Infof("Starting %s on port: %s", cfg.AppName, cfg.AppPort)
	if err := http.ListenAndServe(":"+cfg.AppPort, co.Handler(router)); err != nil {
		utils.Logger.Fatal("closing-service failed to start:", err)
	}
}
