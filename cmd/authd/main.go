package main

import (
	"context"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"

	"github.com/Skotchmaster/auth_service/internal/config"
	"github.com/Skotchmaster/auth_service/internal/events"
	"github.com/Skotchmaster/auth_service/internal/httpserver"
	"github.com/Skotchmaster/auth_service/internal/middleware"
	"github.com/Skotchmaster/auth_service/internal/models"
	"github.com/Skotchmaster/auth_service/internal/repo"
	"github.com/Skotchmaster/auth_service/internal/search"
	"github.com/Skotchmaster/auth_service/internal/service"
	pkgdb "github.com/Skotchmaster/auth_service/pkg/db"
	"github.com/Skotchmaster/auth_service/pkg/logging"
	loggingmw "github.com/Skotchmaster/auth_service/pkg/middleware/logging"
	"github.com/Skotchmaster/auth_service/pkg/tokens"
)

func main() {
	if err := godotenv.Load(".env"); err != nil {
		log.Printf("warning: could not load .env: %v", err)
	}

	cfg := config.Load()

	logger := logging.New(cfg.LogLevel).With("service", cfg.ServiceName)
	slog.SetDefault(logger)

	var users repo.UserRepository = repo.NewMemoryRepo()
	if cfg.DatabaseURL != "" {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		db, err := pkgdb.Open(ctx, cfg.DatabaseURL)
		cancel()
		if err != nil {
			log.Fatalf("db open: %v", err)
		}
		if err := db.AutoMigrate(&models.User{}); err != nil {
			log.Fatalf("db migrate: %v", err)
		}
		users = &repo.GormRepo{DB: db}
	} else {
		logger.Warn("DATABASE_URL not set, users are kept in process memory")
	}

	var producer *events.Producer
	if len(cfg.KafkaBrokers) > 0 {
		producer = events.NewProducer(cfg.KafkaBrokers)
	}

	var index *search.UserIndex
	if cfg.ESURL != "" {
		var err error
		index, err = search.NewUserIndex(cfg.ESURL, cfg.ESUser, cfg.ESPassword, "users")
		if err != nil {
			log.Fatalf("elasticsearch: %v", err)
		}
	}

	codec := tokens.NewCodec(cfg.JWTSecret, cfg.AccessTokenTTL)

	svc := &service.AuthService{
		Repo:   users,
		Codec:  codec,
		Events: producer,
		Index:  index,
	}

	e := echo.New()
	e.Pre(echomw.RemoveTrailingSlash())
	e.Use(echomw.Recover())
	e.Use(echomw.RequestID())
	e.Use(loggingmw.RequestLogger(logger))
	e.Use(echomw.CORS())

	httpserver.Register(e, &httpserver.Deps{
		AuthHandler:      &httpserver.AuthHTTP{Svc: svc},
		Gate:             middleware.NewSessionGate(codec, users),
		OpenRegistration: cfg.OpenRegistration,
	})

	srv := &http.Server{
		Addr:              ":" + strconv.Itoa(cfg.ServerPort),
		Handler:           e,
		ReadTimeout:       10 * time.Second,
		WriteTimeout:      15 * time.Second,
		ReadHeaderTimeout: 3 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	go func() {
		log.Printf("auth listening on %s", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("listen: %v", err)
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
	<-stop

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Printf("server shutdown error: %v", err)
	}

	if gr, ok := users.(*repo.GormRepo); ok {
		if sqlDB, err := gr.DB.DB(); err == nil {
			_ = sqlDB.Close()
		}
	}

	if err := producer.Close(); err != nil {
		log.Printf("kafka close error: %v", err)
	}

	log.Println("auth stopped")
}
