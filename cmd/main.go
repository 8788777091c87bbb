package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	_ "github.com/lib/pq"
	"github.com/restreamkit/volunteer-system/config"
	"github.com/restreamkit/volunteer-system/db"
	"github.com/restreamkit/volunteer-system/handlers"
	"github.com/restreamkit/volunteer-system/live"
	appMiddleware "github.com/restreamkit/volunteer-system/middleware"
	"github.com/restreamkit/volunteer-system/notify"
	"github.com/restreamkit/volunteer-system/repositories"
	api "github.com/restreamkit/volunteer-system/routes"
	"github.com/restreamkit/volunteer-system/services"
)

func main() {
	// Настройка логгера
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))

	// Загрузка конфигурации
	cfg, err := config.Load()
	if err != nil {
		logger.Error("failed to load configuration", slog.Any("error", err))
		os.Exit(1)
	}
	logger.Info("configuration loaded", slog.Int("port", cfg.ServerPort))

	// Подключение к базе данных
	dbConn, err := db.Connect(cfg.DatabaseURL, 5*time.Second)
	if err != nil {
		logger.Error("failed to connect to database", slog.Any("error", err))
		os.Exit(1)
	}
	defer func() {
		if err := dbConn.Close(); err != nil {
			logger.Error("failed to close database connection", slog.Any("error", err))
		}
	}()
	logger.Info("database connection established")

	// Уведомления в Discord опциональны: без токена работает заглушка.
	var notifier services.Notifier = services.NopNotifier{}
	if cfg.DiscordBotToken != "" {
		discordNotifier, err := notify.NewDiscordNotifier(cfg.DiscordBotToken, cfg.DiscordGuildID, cfg.DiscordAnnounceChannelID, logger)
		if err != nil {
			logger.Error("failed to initialize discord notifier", slog.Any("error", err))
			os.Exit(1)
		}
		defer func() {
			if err := discordNotifier.Close(); err != nil {
				logger.Error("failed to close discord session", slog.Any("error", err))
			}
		}()
		notifier = discordNotifier
		logger.Info("discord notifier initialized")
	}

	// Инициализация WebSocket Hub
	wsHub := live.NewHub()
	go wsHub.Run()
	logger.Info("WebSocket Hub started")

	// Инициализация репозиториев
	txRunner := repositories.NewTxRunner(dbConn)
	userRepo := repositories.NewPostgresUserRepository()
	roleTypeRepo := repositories.NewPostgresRoleTypeRepository()
	bindingRepo := repositories.NewPostgresRoleBindingRepository()
	overrideRepo := repositories.NewPostgresDiscordRoleOverrideRepository()
	disableRepo := repositories.NewPostgresDisabledRoleBindingRepository()
	requestRepo := repositories.NewPostgresRoleRequestRepository()
	signupRepo := repositories.NewPostgresSignupRepository()
	eventRepo := repositories.NewPostgresEventRepository()
	gameRepo := repositories.NewPostgresGameRepository()
	raceRepo := repositories.NewPostgresRaceRepository()
	logger.Info("repositories initialized")

	// Инициализация сервисов
	authorizer := services.NewAuthorizer(eventRepo, gameRepo)
	authService := services.NewAuthService(txRunner, userRepo, cfg.JWTSecretKey, cfg.TokenTTL)
	bindingService := services.NewRoleBindingService(
		txRunner, roleTypeRepo, bindingRepo, overrideRepo, disableRepo, eventRepo, gameRepo, authorizer,
	)
	requestService := services.NewRoleRequestService(
		txRunner, requestRepo, bindingRepo, eventRepo, gameRepo, userRepo, authorizer, notifier, logger,
	)
	signupService := services.NewSignupService(
		txRunner, signupRepo, requestRepo, bindingRepo, disableRepo, raceRepo, eventRepo, userRepo,
		authorizer, notifier, wsHub, logger,
	)
	logger.Info("services initialized")

	// Инициализация обработчиков HTTP
	authenticator := appMiddleware.NewAuthenticator(cfg.JWTSecretKey, authService)
	authHandler := handlers.NewAuthHandler(authService)
	bindingHandler := handlers.NewBindingHandler(bindingService)
	requestHandler := handlers.NewRequestHandler(requestService)
	signupHandler := handlers.NewSignupHandler(signupService)
	webSocketHandler := handlers.NewWebSocketHandler(wsHub)

	router := chi.NewRouter()
	api.SetupRoutes(router, authenticator, authHandler, bindingHandler, requestHandler, signupHandler, webSocketHandler)
	logger.Info("routes configured")

	server := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.ServerPort),
		Handler:      router,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  120 * time.Second,
		ErrorLog:     slog.NewLogLogger(logger.Handler(), slog.LevelError),
	}

	serverErrors := make(chan error, 1)
	go func() {
		logger.Info("starting server", slog.String("address", server.Addr))
		serverErrors <- server.ListenAndServe()
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-serverErrors:
		if !errors.Is(err, http.ErrServerClosed) {
			logger.Error("server error", slog.Any("error", err))
			os.Exit(1)
		}
	case sig := <-quit:
		logger.Info("shutdown signal received", slog.String("signal", sig.String()))

		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := server.Shutdown(ctx); err != nil {
			logger.Error("graceful shutdown failed", slog.Any("error", err))
			if err := server.Close(); err != nil {
				logger.Error("forced server close failed", slog.Any("error", err))
			}
		}
	}
	logger.Info("server stopped")
}
