package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/skvortsov/todoapp/internal/config"
	"github.com/skvortsov/todoapp/internal/events"
	"github.com/skvortsov/todoapp/internal/httpserver"
	"github.com/skvortsov/todoapp/internal/logging"
	"github.com/skvortsov/todoapp/internal/middleware"
	"github.com/skvortsov/todoapp/internal/models"
	"github.com/skvortsov/todoapp/internal/repo"
	"github.com/skvortsov/todoapp/internal/service"
	"github.com/skvortsov/todoapp/pkg/db"
)

func main() {
	cfg := config.Load()
	config.MustNonEmpty(cfg.DatabaseURL, "DATABASE_URL")
	config.MustNonEmptyBytes(cfg.AccessSecret, "ACCESS_TOKEN_SECRET")
	config.MustNonEmptyBytes(cfg.RefreshSecret, "REFRESH_TOKEN_SECRET")

	logger := logging.New(cfg.LogLevel)

	e := echo.New()
	e.HideBanner = true
	e.Server.ReadTimeout = 10 * time.Second
	e.Server.WriteTimeout = 15 * time.Second
	e.Server.ReadHeaderTimeout = 3 * time.Second

	initCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	gdb, err := db.Open(initCtx, cfg.DatabaseURL)
	cancel()
	if err != nil {
		log.Fatalf("db init error: %v", err)
	}
	if err := gdb.AutoMigrate(&models.User{}, &models.Category{}, &models.Todo{}); err != nil {
		log.Fatalf("db migrate error: %v", err)
	}

	producer := events.NewProducer(cfg.KafkaBrokers)

	r := repo.NewGormRepo(gdb)

	authSvc := &service.AuthService{
		Repo:          r,
		AccessSecret:  cfg.AccessSecret,
		RefreshSecret: cfg.RefreshSecret,
		AccessTTL:     cfg.AccessTTL,
		RefreshTTL:    cfg.RefreshTTL,
		Events:        producer,
	}

	httpserver.Register(e, &httpserver.Deps{
		Logger:     logger,
		Users:      &httpserver.UserHandler{Svc: authSvc},
		Categories: &httpserver.CategoryHandler{Svc: &service.CategoryService{Repo: r}},
		Todos:      &httpserver.TodoHandler{Svc: &service.TodoService{Repo: r, Events: producer}},
		Auth:       middleware.NewAuth(r, cfg.AccessSecret),
		CORSOrigin: cfg.CORSOrigin,
	})

	go func() {
		if err := e.Start(fmt.Sprintf(":%d", cfg.ServerPort)); err != nil && err != http.ErrServerClosed {
			log.Fatalf("echo start: %v", err)
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt)
	<-stop

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := e.Shutdown(shutdownCtx); err != nil {
		logger.Error("echo shutdown", "error", err)
	}
	if err := producer.Close(); err != nil {
		logger.Error("kafka close", "error", err)
	}
	if err := db.Close(gdb); err != nil {
		logger.Error("db close", "error", err)
	}
}
