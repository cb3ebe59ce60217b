package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"VCS_FMS_Microservice/internal/history"
	"VCS_FMS_Microservice/internal/inventory"
	maintenance "VCS_FMS_Microservice/internal/maintenance-api"
	"VCS_FMS_Microservice/internal/maintenance-api/api/handler"
	"VCS_FMS_Microservice/internal/maintenance-api/api/routes"
	"VCS_FMS_Microservice/internal/probe"
	"VCS_FMS_Microservice/internal/sweep"
	"VCS_FMS_Microservice/pkg/infra"
	"VCS_FMS_Microservice/pkg/logger"
	"VCS_FMS_Microservice/pkg/remote"
)

func main() {
	appConfig, err := maintenance.LoadConfig("./.env")
	if err != nil {
		log.Fatal(fmt.Sprintf("load config error: %v", err))
	}

	// set up logger
	fileSyncer, err := logger.NewReopenableWriteSyncer("./log/maintenance-api.log")
	if err != nil {
		log.Fatal(fmt.Sprintf("open log file error: %v", err))
	}
	zapLogger := logger.NewLogger(appConfig.Server.LogLevel, fileSyncer).With(zap.String("service.name", "maintenance-api"))
	defer zapLogger.Sync()
	c := make(chan os.Signal, 1)
	signal.Notify(c, syscall.SIGHUP)
	go func() {
		for {
			<-c
			zapLogger.Info("receive logrotate SIGHUP, reloading log file")
			if e := fileSyncer.Reload(); e != nil {
				zapLogger.Error("failed to reload log file", zap.Error(e))
			} else {
				zapLogger.Info("successfully reloaded log file")
			}
		}
	}()

	// set up database
	db, err := infra.NewPostgresConnection(infra.PostgresConfig{
		Host:     appConfig.Postgres.Host,
		Port:     appConfig.Postgres.Port,
		User:     appConfig.Postgres.User,
		Password: appConfig.Postgres.Password,
		DBName:   appConfig.Postgres.DBName,
	})
	if err != nil {
		zapLogger.Fatal("failed to connect to postgres", zap.Error(err))
	} else {
		zapLogger.Info("connected to postgres successfully")
	}
	sqlDB, err := db.DB()
	if err != nil {
		zapLogger.Fatal("failed to get sql.DB from gorm:", zap.Error(err))
	}
	defer sqlDB.Close()

	// set up fleet inventory and probing
	fleet, err := inventory.Load(appConfig.Sweep.InventoryPath)
	if err != nil {
		zapLogger.Fatal("failed to load fleet inventory", zap.Error(err))
	}
	transport := remote.NewSSHTransport(appConfig.Sweep.ConnectTimeout)
	collector := probe.NewCollector(transport, appConfig.Target, zapLogger,
		appConfig.Sweep.ConnectTimeout, appConfig.Sweep.BatchTimeout)

	// set up dependencies
	historyRepo := history.NewRepository(db)
	sweeper := sweep.NewSweeper(collector, zapLogger)
	fleetHandler := handler.NewFleetHandler(zapLogger, sweeper, historyRepo, fleet,
		appConfig.Sweep.Concurrency, appConfig.Sweep.PerHostTimeout)

	// Set up http server
	gin.SetMode(gin.ReleaseMode)
	r := gin.Default()

	routes.AddFleetRoutes(r, fleetHandler)

	srv := &http.Server{
		Addr:    fmt.Sprintf(":%s", appConfig.Server.Port),
		Handler: r,
	}
	go func() {
		zapLogger.Info(fmt.Sprintf("starting server on %s", srv.Addr))
		if e := srv.ListenAndServe(); e != nil && !errors.Is(e, http.ErrServerClosed) {
			zapLogger.Fatal("failed to start server", zap.Error(e))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	zapLogger.Info("shutting down server...")
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err = srv.Shutdown(ctx); err != nil {
		zapLogger.Error("server forced to shutdown:", zap.Error(err))
	}
	zapLogger.Info("server exiting")
}
