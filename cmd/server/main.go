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

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"

	"github.com/plashmag/editorial/internal/activity"
	"github.com/plashmag/editorial/internal/auth"
	"github.com/plashmag/editorial/internal/config"
	"github.com/plashmag/editorial/internal/db"
	"github.com/plashmag/editorial/internal/httpserver"
	"github.com/plashmag/editorial/internal/logging"
	"github.com/plashmag/editorial/internal/middleware/csrf"
	"github.com/plashmag/editorial/internal/middleware/loggingmw"
	"github.com/plashmag/editorial/internal/session"
	"github.com/plashmag/editorial/internal/store"
	"github.com/plashmag/editorial/internal/users"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal(err)
	}
	config.MustNonEmpty(cfg.DB_NAME, "DB_NAME")

	logger := logging.New(cfg.LogLevel)

	initCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	database, err := db.Open(initCtx, db.DSN(cfg))
	cancel()
	if err != nil {
		log.Fatalf("db init error: %v", err)
	}

	recorder := activity.NewRecorder(cfg.KafkaBrokers)

	userStore := &store.Users{DB: database}
	tokenStore := &store.RememberTokens{DB: database}

	authSvc := &auth.Service{
		Users:    userStore,
		Tokens:   tokenStore,
		Sessions: session.NewMemoryStore(),
		Activity: recorder,
	}
	userSvc := &users.Service{
		Users:    userStore,
		Activity: recorder,
	}

	e := echo.New()
	e.Pre(middleware.RemoveTrailingSlash())
	e.Use(middleware.Recover(), middleware.RequestID())
	e.Use(loggingmw.RequestLogger(logger))
	e.Use(csrf.Middleware(csrf.Config{
		SkipPaths: []string{"/health/live", "/health/ready"},
	}))

	httpserver.Register(e, &httpserver.Deps{
		AuthSvc:     authSvc,
		AuthHandler: &httpserver.AuthHTTP{Svc: authSvc},
		UserHandler: &httpserver.UsersHTTP{Svc: userSvc},
		Dashboard:   &httpserver.DashboardHTTP{Auth: authSvc, Users: userSvc},
	})

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.ServerPort),
		Handler:      e,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}
	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Printf("http server error: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("shutting down...")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Printf("server shutdown error: %v", err)
	}

	if sqlDB, err := database.DB(); err == nil {
		if err := sqlDB.Close(); err != nil {
			log.Printf("db close error: %v", err)
		}
	} else {
		log.Printf("db() error: %v", err)
	}

	if err := recorder.Close(); err != nil {
		log.Printf("kafka close error: %v", err)
	}

	log.Println("shutdown complete")
}
