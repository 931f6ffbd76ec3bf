package main

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"movie-catalog/internal/auth"
	"movie-catalog/internal/config"
	"movie-catalog/internal/domain"
	apphttp "movie-catalog/internal/http"
	"movie-catalog/internal/repository"
	"movie-catalog/internal/repository/sqlite"
	"movie-catalog/internal/service"
)

func main() {
	logger := logrus.New()
	logger.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})

	cfg, err := config.Load()
	if err != nil {
		logger.Fatalf("load config: %v", err)
	}

	if strings.TrimSpace(cfg.Auth.JWTSecret) == "" {
		logger.Fatalf("auth jwt secret is required")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	db, err := sqlite.Open(cfg.Database.Path)
	if err != nil {
		logger.Fatalf("open database: %v", err)
	}
	defer db.Close()

	userRepo := sqlite.NewUserRepository(db)
	movieRepo := sqlite.NewMovieRepository(db)
	ratingRepo := sqlite.NewRatingRepository(db)

	if err := userRepo.Init(ctx); err != nil {
		logger.Fatalf("init user repository: %v", err)
	}
	if err := movieRepo.Init(ctx); err != nil {
		logger.Fatalf("init movie repository: %v", err)
	}
	if err := ratingRepo.Init(ctx); err != nil {
		logger.Fatalf("init rating repository: %v", err)
	}

	if cfg.Database.SeedPath != "" {
		if err := seedMovies(ctx, movieRepo, cfg.Database.SeedPath, logger); err != nil {
			logger.Fatalf("seed movies: %v", err)
		}
	}

	userService := service.NewUserService(userRepo)
	movieService := service.NewMovieService(movieRepo)
	ratingService := service.NewRatingService(ratingRepo, movieRepo)

	tokens := auth.NewTokenManager(cfg.Auth.JWTSecret, time.Duration(cfg.Auth.TokenTTLMinutes)*time.Minute)

	gin.SetMode(gin.ReleaseMode)
	router := gin.New()
	router.Use(gin.Recovery())
	handler := apphttp.NewHandler(movieService, ratingService, userService, tokens, logger)
	handler.RegisterRoutes(router)

	srv := &http.Server{
		Addr:    cfg.Server.Addr,
		Handler: router,
	}

	go func() {
		logger.Infof("listening on %s", cfg.Server.Addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatalf("http server: %v", err)
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Warnf("http shutdown: %v", err)
	}

	logger.Info("bye")
}

// seedMovies loads catalog entries from a JSON file on first start, standing
// in for the external data-loading process that owns the movies table. It is
// a no-op once the table has rows.
func seedMovies(ctx context.Context, movies repository.MovieRepository, path string, logger *logrus.Logger) error {
	count, err := movies.Count(ctx)
	if err != nil {
		return err
	}
	if count > 0 {
		logger.Infof("movies table already has %d rows, skipping seed", count)
		return nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read seed file: %w", err)
	}

	var entries []struct {
		Title       string `json:"title"`
		Genre       string `json:"genre"`
		ReleaseYear int    `json:"release_year"`
	}
	if err := json.Unmarshal(data, &entries); err != nil {
		return fmt.Errorf("parse seed file: %w", err)
	}

	for _, entry := range entries {
		if strings.TrimSpace(entry.Title) == "" {
			continue
		}
		movie := &domain.Movie{
			Title:       entry.Title,
			Genre:       entry.Genre,
			ReleaseYear: entry.ReleaseYear,
		}
		if _, err := movies.Create(ctx, movie); err != nil {
			return err
		}
	}

	logger.Infof("seeded %d movies from %s", len(entries), path)
	return nil
}
