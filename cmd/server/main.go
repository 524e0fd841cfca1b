package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"

	"github.com/Skotchmaster/contest_platform/internal/config"
	"github.com/Skotchmaster/contest_platform/internal/es"
	"github.com/Skotchmaster/contest_platform/internal/handlers"
	"github.com/Skotchmaster/contest_platform/internal/logging"
	"github.com/Skotchmaster/contest_platform/internal/middleware/auth"
	"github.com/Skotchmaster/contest_platform/internal/mykafka"
	"github.com/Skotchmaster/contest_platform/internal/service"
	"github.com/Skotchmaster/contest_platform/internal/service/search"
	"github.com/Skotchmaster/contest_platform/internal/storage"
	httpserver "github.com/Skotchmaster/contest_platform/internal/transport/http"
)

func main() {
	configuration, err := config.LoadConfig()
	if err != nil {
		log.Fatal(err)
	}

	logger := logging.New(configuration.LOG_LEVEL)

	ctx := context.Background()
	db, err := config.InitDB(ctx, configuration)
	if err != nil {
		log.Fatalf("db init error: %v", err)
	}

	jwtSecret := []byte(configuration.JWT_SECRET)
	refreshSecret := []byte(configuration.REFRESH_SECRET)

	prod := mykafka.NewProducer(configuration.KAFKA_ADDRESS)

	indexer := &search.Indexer{Index: "contests"}
	if configuration.ES_URL != "" {
		esClient, err := es.NewClient(configuration)
		if err != nil {
			log.Fatalf("elasticsearch init error: %v", err)
		}
		indexer.ES = esClient
	}

	store, err := storage.NewDiskStorage(configuration.UPLOAD_DIR)
	if err != nil {
		log.Fatalf("storage init error: %v", err)
	}

	sessions := &service.SessionService{DB: db, JWTSecret: jwtSecret, RefreshSecret: refreshSecret}
	gate := &auth.Gate{DB: db, JWTSecret: jwtSecret}

	e := echo.New()
	e.HideBanner = true
	e.Pre(middleware.RemoveTrailingSlash())
	e.Use(middleware.Recover(), middleware.RequestID())
	e.Use(func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			req := c.Request()
			c.SetRequest(req.WithContext(logging.IntoContext(req.Context(), logger)))
			return next(c)
		}
	})
	e.HTTPErrorHandler = errorHandler(configuration.Production(), logger)

	deps := httpserver.Deps{
		Gate:            gate,
		AuthHandler:     &handlers.AuthHandler{Sessions: sessions, Producer: prod},
		UserHandler:     &handlers.UserHandler{DB: db},
		AdminHandler:    &handlers.AdminHandler{DB: db},
		ContestHandler:  &handlers.ContestHandler{DB: db, Producer: prod, Indexer: indexer},
		PracticeHandler: &handlers.PracticeHandler{DB: db, Producer: prod},
		UploadHandler:   &handlers.UploadHandler{DB: db, Storage: store, Producer: prod},
		SearchHandler:   &handlers.SearchHandler{Indexer: indexer},
	}
	httpserver.Register(e, &deps)

	srv := &http.Server{
		Addr:         ":" + configuration.PORT,
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

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Printf("server shutdown error: %v", err)
	}

	if sqlDB, err := db.DB(); err == nil {
		if err := sqlDB.Close(); err != nil {
			log.Printf("db close error: %v", err)
		}
	} else {
		log.Printf("db() error: %v", err)
	}

	if err := prod.Close(); err != nil {
		log.Printf("kafka close error: %v", err)
	}

	log.Println("shutdown complete")
}
