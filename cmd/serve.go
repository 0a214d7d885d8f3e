package cmd

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/aliirsyaadn/mindful-death/api"
	"github.com/aliirsyaadn/mindful-death/config"
	"github.com/aliirsyaadn/mindful-death/database"
	"github.com/aliirsyaadn/mindful-death/logging"
	"github.com/aliirsyaadn/mindful-death/middleware"
	"github.com/aliirsyaadn/mindful-death/repository"
	"github.com/aliirsyaadn/mindful-death/services"

	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

const shutdownTimeout = 10 * time.Second

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP API",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}

		log, level, err := logging.Init(cfg.Logging)
		if err != nil {
			return fmt.Errorf("failed to initialize logger: %w", err)
		}
		defer log.Sync()

		if file := config.ConfigFile(); file != "" {
			log.Info("Configuration loaded", zap.String("file", file))
		} else {
			log.Warn("No config file found, using defaults and environment")
		}

		config.WatchConfig(log, func(newCfg config.Config) {
			if err := logging.SetLevel(level, newCfg.Logging.Level); err != nil {
				log.Warn("Ignoring log level change", zap.Error(err))
				return
			}
			log.Info("Log level updated", zap.String("level", level.String()))
		})

		return serve(cmd.Context(), cfg, log)
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
}

func serve(ctx context.Context, cfg *config.Config, log *zap.Logger) error {
	catalog, err := catalogFor(cfg)
	if err != nil {
		return err
	}
	if problems := catalog.Validate(); len(problems) > 0 {
		for _, p := range problems {
			log.Error("Invalid assessment definition", zap.String("problem", p))
		}
		return fmt.Errorf("assessment definitions have %d problem(s)", len(problems))
	}
	log.Info("Assessment flow loaded",
		zap.String("flow_id", catalog.FlowID()),
		zap.String("flow_version", catalog.FlowVersion()),
		zap.Int("questions", len(catalog.Questions())),
		zap.Int("factors", len(catalog.Factors())),
	)

	db, err := database.Init(cfg.Database.DSN, log)
	if err != nil {
		return err
	}
	if err := database.Migrate(db); err != nil {
		return err
	}

	sessionRepo := repository.NewSessionRepository(db, log)
	userDataRepo := repository.NewUserDataRepository(db, log)

	controller := services.NewController(catalog, sessionRepo, userDataRepo, log, nil)
	goalService := services.NewGoalService(userDataRepo, log)
	userService := services.NewUserService(userDataRepo, sessionRepo, log)
	handler := api.NewAPIHandler(catalog, controller, goalService, userService, log)

	if cfg.Server.Mode != "" {
		gin.SetMode(cfg.Server.Mode)
	}
	r := gin.New()
	r.SetTrustedProxies(nil)
	r.Use(gin.Recovery())
	r.Use(middleware.RequestLogger(log))
	r.Use(middleware.Cors(cfg.Server.AllowedOrigins))
	api.RegisterRoutes(r, handler)

	port := strings.TrimPrefix(cfg.Server.Port, ":")
	if port == "" {
		log.Warn("Server port not configured, using default 8080")
		port = "8080"
	}
	srv := &http.Server{
		Addr:              ":" + port,
		Handler:           r,
		ReadHeaderTimeout: 5 * time.Second,
	}

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		log.Info("Starting server", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("server failed: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	log.Info("Shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server shutdown failed: %w", err)
	}
	return nil
}
